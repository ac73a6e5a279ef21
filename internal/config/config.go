// Package config 负责加载和管理应用程序的配置。
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// 全局配置变量，存储从配置文件加载的所有设置。
var Conf Config

// Config 是整个应用程序的配置结构体，与 config.yaml 文件结构对应。
type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	JWT           JWTConfig           `mapstructure:"jwt"`
	Admin         AdminConfig         `mapstructure:"admin"`
	Log           LogConfig           `mapstructure:"log"`
	Kafka         KafkaConfig         `mapstructure:"kafka"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	MinIO         MinIOConfig         `mapstructure:"minio"`
	LLM           LLMConfig           `mapstructure:"llm"`
	RAG           RAGConfig           `mapstructure:"rag"`
	Channels      ChannelsConfig      `mapstructure:"channels"`
	Vision        VisionConfig        `mapstructure:"vision"`
	TTS           TTSConfig           `mapstructure:"tts"`
	ChatLog       ChatLogConfig       `mapstructure:"chatlog"`
	Menu          MenuConfig          `mapstructure:"menu"`
	Memory        MemoryConfig        `mapstructure:"memory"`
}

// ServerConfig 存储服务器相关的配置。
type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

// DatabaseConfig 存储所有数据库连接的配置。
type DatabaseConfig struct {
	MySQL MySQLConfig `mapstructure:"mysql"`
	Redis RedisConfig `mapstructure:"redis"`
}

// MySQLConfig 存储 MySQL 数据库的配置。
type MySQLConfig struct {
	DSN string `mapstructure:"dsn"`
}

// RedisConfig 存储 Redis 的配置。
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// JWTConfig 存储 JWT 相关的配置。
type JWTConfig struct {
	Secret                 string `mapstructure:"secret"`
	AccessTokenExpireHours int    `mapstructure:"access_token_expire_hours"`
	RefreshTokenExpireDays int    `mapstructure:"refresh_token_expire_days"`
}

// AdminConfig 存储后台管理账号的配置，密码以 bcrypt 哈希形式保存。
type AdminConfig struct {
	Username     string `mapstructure:"username"`
	PasswordHash string `mapstructure:"password_hash"`
}

// LogConfig 存储日志相关的配置。
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

// KafkaConfig 存储 Kafka 相关的配置。Enabled 为 false 时，
// Facebook 入站消息走同步处理路径。
type KafkaConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Brokers string `mapstructure:"brokers"`
	Topic   string `mapstructure:"topic"`
}

// ElasticsearchConfig 存储 Elasticsearch 相关的配置。
// Enabled 为 false 时，消息搜索退化为 MySQL LIKE 查询。
type ElasticsearchConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Addresses string `mapstructure:"addresses"`
	Username  string `mapstructure:"username"`
	Password  string `mapstructure:"password"`
	IndexName string `mapstructure:"index_name"`
}

// MinIOConfig 存储 MinIO 对象存储的配置。
// Enabled 为 false 时，语音文件落到本地 output_dir。
type MinIOConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UseSSL          bool   `mapstructure:"use_ssl"`
	BucketName      string `mapstructure:"bucket_name"`
}

// LLMConfig 存储大语言模型相关的配置。
type LLMConfig struct {
	APIKey     string              `mapstructure:"api_key"`
	BaseURL    string              `mapstructure:"base_url"`
	Model      string              `mapstructure:"model"`
	Generation LLMGenerationConfig `mapstructure:"generation"`
	Prompt     LLMPromptConfig     `mapstructure:"prompt"`
}

// LLMGenerationConfig 配置生成相关参数（可选）。
type LLMGenerationConfig struct {
	Temperature float64 `mapstructure:"temperature"`
	TopP        float64 `mapstructure:"top_p"`
	MaxTokens   int     `mapstructure:"max_tokens"`
}

// LLMPromptConfig 配置人设提示与兜底文案。
type LLMPromptConfig struct {
	Persona string `mapstructure:"persona"`
	Apology string `mapstructure:"apology"`
}

// RAGConfig 存储餐饮检索服务的配置。Keywords 命中时才触发检索。
type RAGConfig struct {
	BaseURL  string   `mapstructure:"base_url"`
	Keywords []string `mapstructure:"keywords"`
}

// ChannelsConfig 存储各消息渠道的接入配置。
type ChannelsConfig struct {
	Facebook     FacebookConfig     `mapstructure:"facebook"`
	Zalo         ZaloConfig         `mapstructure:"zalo"`
	ZaloPersonal ZaloPersonalConfig `mapstructure:"zalo_personal"`
}

// FacebookConfig 存储 Facebook Messenger 平台的配置。
type FacebookConfig struct {
	VerifyToken string `mapstructure:"verify_token"`
	PageToken   string `mapstructure:"page_token"`
	APIBase     string `mapstructure:"api_base"`
}

// ZaloConfig 存储 Zalo OA 的配置。
type ZaloConfig struct {
	AccessToken string `mapstructure:"access_token"`
	APIBase     string `mapstructure:"api_base"`
}

// ZaloPersonalConfig 存储 Zalo 个人号网关的配置。
type ZaloPersonalConfig struct {
	GatewayBase string `mapstructure:"gateway_base"`
}

// VisionConfig 存储图像识别服务的配置。
type VisionConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	CredentialsFile string `mapstructure:"credentials_file"`
}

// TTSConfig 存储语音合成服务的配置。
type TTSConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	CredentialsFile string `mapstructure:"credentials_file"`
	LanguageCode    string `mapstructure:"language_code"`
	Voice           string `mapstructure:"voice"`
	OutputDir       string `mapstructure:"output_dir"`
	PublicBase      string `mapstructure:"public_base"`
}

// ChatLogConfig 存储对话日志环形缓冲的配置。
type ChatLogConfig struct {
	Path     string `mapstructure:"path"`
	Capacity int    `mapstructure:"capacity"`
}

// MenuConfig 存储菜单文件的配置。
type MenuConfig struct {
	Path string `mapstructure:"path"`
}

// MemoryConfig 存储 webhook 短期对话记忆的配置。
type MemoryConfig struct {
	Turns    int `mapstructure:"turns"`
	TTLHours int `mapstructure:"ttl_hours"`
}

// Init 初始化配置加载，从指定的路径读取 YAML 文件并解析到 Conf 变量中。
func Init(configPath string) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		panic(fmt.Errorf("读取配置文件失败: %w", err))
	}

	if err := viper.Unmarshal(&Conf); err != nil {
		panic(fmt.Errorf("无法将配置解析到结构体中: %w", err))
	}
}
