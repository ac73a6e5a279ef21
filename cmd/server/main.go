// Package main 是应用程序的入口点。
package main

import (
	"bebo-bot-go/internal/channel"
	"bebo-bot-go/internal/config"
	"bebo-bot-go/internal/handler"
	"bebo-bot-go/internal/middleware"
	"bebo-bot-go/internal/pipeline"
	"bebo-bot-go/internal/repository"
	"bebo-bot-go/internal/service"
	"bebo-bot-go/pkg/database"
	"bebo-bot-go/pkg/es"
	"bebo-bot-go/pkg/kafka"
	"bebo-bot-go/pkg/llm"
	"bebo-bot-go/pkg/log"
	"bebo-bot-go/pkg/rag"
	"bebo-bot-go/pkg/storage"
	"bebo-bot-go/pkg/token"
	"bebo-bot-go/pkg/tts"
	"bebo-bot-go/pkg/vision"
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
)

func main() {
	// 1. 初始化配置
	config.Init("./configs/config.yaml")
	cfg := config.Conf

	// 2. 初始化日志记录器
	log.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath)
	defer log.Sync() // 确保在程序退出时刷新所有缓冲的日志条目
	log.Info("日志记录器初始化成功")

	// 3. 初始化数据库和 Redis
	database.InitMySQL(cfg.Database.MySQL.DSN)
	database.InitRedis(cfg.Database.Redis.Addr, cfg.Database.Redis.Password, cfg.Database.Redis.DB)
	if cfg.MinIO.Enabled {
		storage.InitMinIO(cfg.MinIO)
	}
	if cfg.Elasticsearch.Enabled {
		if err := es.InitES(cfg.Elasticsearch); err != nil {
			log.Errorf("es 初始化失败 %s", err)
			return
		}
	}
	if cfg.Kafka.Enabled {
		kafka.InitProducer(cfg.Kafka)
	}

	// 4. 解析可选能力（进程启动时一次性确定，后续不再做存在性检查）
	var labeler service.ImageLabeler
	if cfg.Vision.Enabled {
		l, err := vision.NewLabeler(context.Background(), cfg.Vision)
		if err != nil {
			log.Warnf("Vision 客户端初始化失败，图片识别能力不可用: %v", err)
		} else {
			labeler = l
			defer l.Close()
		}
	}

	var synth service.SpeechSynthesizer
	if cfg.TTS.Enabled {
		s, err := tts.NewSynthesizer(context.Background(), cfg.TTS)
		if err != nil {
			log.Warnf("TTS 客户端初始化失败，语音合成能力不可用: %v", err)
		} else {
			synth = s
			defer s.Close()
		}
	}

	var ragClient rag.Client
	if cfg.RAG.BaseURL != "" {
		ragClient = rag.NewClient(cfg.RAG)
	}

	// 5. 初始化 Repository
	userRepository := repository.NewUserRepository(database.DB)
	sessionRepo := repository.NewSessionRepository(database.DB)
	messageRepo := repository.NewMessageRepository(database.DB)
	memoryRepo := repository.NewMemoryRepository(database.RDB, cfg.Memory.Turns, cfg.Memory.TTLHours)
	chatLogRepo, err := repository.NewChatLogRepository(cfg.ChatLog.Path, cfg.ChatLog.Capacity)
	if err != nil {
		log.Errorf("聊天日志存储初始化失败 %s", err)
		return
	}
	menuRepo, err := repository.NewMenuRepository(cfg.Menu.Path)
	if err != nil {
		log.Errorf("菜单存储初始化失败 %s", err)
		return
	}

	// 6. 初始化 Service (依赖注入)
	jwtManager := token.NewJWTManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpireHours, cfg.JWT.RefreshTokenExpireDays)
	llmClient := llm.NewClient(cfg.LLM)
	replyService := service.NewReplyService(llmClient)
	enrichmentService := service.NewEnrichmentService(ragClient)
	mediaService := service.NewMediaService(labeler, synth, cfg.MinIO, cfg.TTS)
	sessionService := service.NewSessionService(sessionRepo, messageRepo, userRepository)
	chatService := service.NewChatService(sessionRepo, messageRepo, replyService, enrichmentService, cfg.Elasticsearch)
	conversationService := service.NewConversationService(replyService, enrichmentService, mediaService, chatLogRepo)
	menuService := service.NewMenuService(menuRepo)
	adminService := service.NewAdminService(chatLogRepo, messageRepo, cfg.Elasticsearch)
	authService := service.NewAuthService(cfg.Admin, jwtManager)

	// 7. 初始化渠道适配器和入站消息处理管道 (Processor)
	adapters := map[string]channel.Adapter{
		channel.NameFacebook:     channel.NewFacebookAdapter(cfg.Channels.Facebook),
		channel.NameZalo:         channel.NewZaloAdapter(cfg.Channels.Zalo),
		channel.NameZaloPersonal: channel.NewZaloPersonalAdapter(cfg.Channels.ZaloPersonal),
	}
	processor := pipeline.NewProcessor(
		adapters,
		replyService,
		enrichmentService,
		memoryRepo,
		chatLogRepo,
	)

	// 8. 启动后台 Kafka 消费者
	if cfg.Kafka.Enabled {
		go kafka.StartConsumer(cfg.Kafka, processor)
	}

	// 9. 设置 Gin 模式并创建路由引擎
	gin.SetMode(cfg.Server.Mode)
	r := gin.New() // 使用 New() 创建一个不带默认中间件的引擎
	// 添加我们自定义的日志中间件和 Gin 的 Recovery 中间件
	r.Use(middleware.RequestLogger(), gin.Recovery())

	// 10. 注册路由
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"capabilities": gin.H{
				"vision":        mediaService.HasVision(),
				"tts":           mediaService.HasTTS(),
				"rag":           ragClient != nil,
				"kafka":         cfg.Kafka.Enabled,
				"elasticsearch": cfg.Elasticsearch.Enabled,
				"minio":         cfg.MinIO.Enabled,
			},
		})
	})

	// 渠道 webhook 路由
	webhooks := handler.NewWebhookHandler(
		adapters[channel.NameFacebook],
		adapters[channel.NameZalo],
		adapters[channel.NameZaloPersonal],
		processor,
	)
	r.GET("/fb/webhook", webhooks.VerifyFacebook)
	r.POST("/fb/webhook", webhooks.ReceiveFacebook)
	r.POST("/zalo/webhook", webhooks.ReceiveZalo)
	r.POST("/zalo-personal/webhook", webhooks.ReceiveZaloPersonal)

	// 会话存储路由组
	chatMySQL := r.Group("/chat-mysql")
	{
		chatMySQL.GET("/sessions/user/:user_id", handler.NewSessionHandler(sessionService, chatService).ListSessions)
		chatMySQL.POST("/sessions", handler.NewSessionHandler(sessionService, chatService).CreateSession)
		chatMySQL.PUT("/sessions/:id/end", handler.NewSessionHandler(sessionService, chatService).EndSession)
		chatMySQL.DELETE("/sessions/:id", handler.NewSessionHandler(sessionService, chatService).DeleteSession)
		chatMySQL.GET("/messages/:session_id", handler.NewSessionHandler(sessionService, chatService).ListMessages)
		chatMySQL.POST("/messages", handler.NewSessionHandler(sessionService, chatService).SendMessage)
		chatMySQL.GET("/users/:id", handler.NewSessionHandler(sessionService, chatService).GetUser)
		chatMySQL.GET("/stats", handler.NewSessionHandler(sessionService, chatService).GetStats)
	}

	// 单轮对话路由
	r.POST("/chat", handler.NewChatHandler(conversationService).Chat)

	// 菜单路由：读取公开，写入需要管理员权限
	r.GET("/menu", handler.NewMenuHandler(menuService).GetMenu)
	r.POST("/menu", middleware.AuthMiddleware(jwtManager), middleware.AdminAuthMiddleware(), handler.NewMenuHandler(menuService).UpdateMenu)

	// Auth 路由组
	auth := r.Group("/auth")
	{
		auth.POST("/login", handler.NewAuthHandler(authService).Login)
		auth.POST("/refreshToken", handler.NewAuthHandler(authService).RefreshToken)
	}

	// 管理员路由组，需要同时通过认证和管理员授权两个中间件
	admin := r.Group("/admin")
	admin.Use(middleware.AuthMiddleware(jwtManager), middleware.AdminAuthMiddleware())
	{
		admin.GET("/messages", handler.NewAdminHandler(adminService, jwtManager).ListMessages)
		admin.GET("/search", handler.NewAdminHandler(adminService, jwtManager).SearchMessages)
	}
	// WebSocket 连接无法携带自定义 Header，token 放在路径参数中自行校验
	r.GET("/admin/live/:token", handler.NewAdminHandler(adminService, jwtManager).LiveLog)

	// 语音文件等静态资源
	voiceDir := cfg.TTS.OutputDir
	if voiceDir == "" {
		voiceDir = "data"
	}
	r.Static("/data", voiceDir)

	// 11. 启动 HTTP 服务器并实现优雅停机
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: r,
	}

	go func() {
		log.Infof("服务启动于 %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP 服务监听失败: %s\n", err)
		}
	}()

	// 等待中断信号以实现优雅停机
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("接收到停机信号，正在关闭服务...")

	// 设置一个5秒的超时上下文
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// 关闭 HTTP 服务器
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("HTTP 服务器关闭失败: %v", err)
	}

	// Kafka 消费者是一个循环，会在程序退出时自然结束，
	// 不需要在这里手动关闭。
	log.Info("服务已优雅关闭")
}
