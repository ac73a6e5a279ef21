package repository

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"bebo-bot-go/internal/model"
	"bebo-bot-go/pkg/log"
)

// ChatLogRepository 定义了单轮聊天日志环形缓冲的操作接口。
// 日志整体落在一个 JSON 文件里，只保留最近 capacity 条；
// 所有读写都过同一把锁，消除并发读改写的竞态。
type ChatLogRepository interface {
	Append(entry model.LogEntry) error
	List() ([]model.LogEntry, error)
	// Subscribe 返回一个接收新日志的通道和取消订阅的函数，
	// 供后台实时日志推送使用。慢消费者会被跳过而不是阻塞写入。
	Subscribe() (<-chan model.LogEntry, func())
}

type fileChatLogRepository struct {
	path     string
	capacity int

	mu      sync.Mutex
	entries []model.LogEntry

	subMu     sync.Mutex
	subs      map[int]chan model.LogEntry
	nextSubID int
}

// NewChatLogRepository 创建日志仓库并加载已有的日志文件。
// 文件不存在时从空缓冲开始；文件损坏时丢弃旧内容并告警。
func NewChatLogRepository(path string, capacity int) (ChatLogRepository, error) {
	if capacity <= 0 {
		capacity = 1000
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	r := &fileChatLogRepository{
		path:     path,
		capacity: capacity,
		subs:     make(map[int]chan model.LogEntry),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
		return r, nil
	}
	if err := json.Unmarshal(data, &r.entries); err != nil {
		log.Warnf("日志文件 %s 内容损坏，忽略旧内容: %v", path, err)
		r.entries = nil
	}
	if len(r.entries) > capacity {
		r.entries = r.entries[len(r.entries)-capacity:]
	}
	return r, nil
}

// Append 追加一条日志；超出容量时丢弃最旧的记录。
func (r *fileChatLogRepository) Append(entry model.LogEntry) error {
	r.mu.Lock()
	r.entries = append(r.entries, entry)
	if len(r.entries) > r.capacity {
		r.entries = r.entries[len(r.entries)-r.capacity:]
	}
	err := r.persistLocked()
	r.mu.Unlock()

	if err != nil {
		return err
	}

	r.notify(entry)
	return nil
}

// List 返回当前全部日志（从旧到新）。
func (r *fileChatLogRepository) List() ([]model.LogEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.LogEntry, len(r.entries))
	copy(out, r.entries)
	return out, nil
}

// Subscribe 注册一个实时日志订阅者。
func (r *fileChatLogRepository) Subscribe() (<-chan model.LogEntry, func()) {
	r.subMu.Lock()
	defer r.subMu.Unlock()

	id := r.nextSubID
	r.nextSubID++
	ch := make(chan model.LogEntry, 16)
	r.subs[id] = ch

	cancel := func() {
		r.subMu.Lock()
		defer r.subMu.Unlock()
		if sub, ok := r.subs[id]; ok {
			delete(r.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// persistLocked 把内存中的日志整体写回文件，调用方必须持有 mu。
func (r *fileChatLogRepository) persistLocked() error {
	data, err := json.Marshal(r.entries)
	if err != nil {
		return err
	}
	return os.WriteFile(r.path, data, 0o644)
}

// notify 把新日志推给所有订阅者，通道满时直接跳过。
func (r *fileChatLogRepository) notify(entry model.LogEntry) {
	r.subMu.Lock()
	defer r.subMu.Unlock()
	for _, ch := range r.subs {
		select {
		case ch <- entry:
		default:
		}
	}
}
