package cache

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/mediaflow/media"
)

// DefaultCapacity 未显式配置容量时的缓存上限。
const DefaultCapacity = 16

// Entry 一条缓存记录。Store 拥有条目及其载荷；
// 适配器在逐出之后不得再持有载荷引用。
type Entry struct {
	Key        string
	Payload    media.Payload
	Seq        uint64
	InsertedAt time.Time
}

// Stats 缓存运行统计。
type Stats struct {
	Hits      uint64 `json:"hits"`
	Misses    uint64 `json:"misses"`
	Evictions uint64 `json:"evictions"`
	Size      int    `json:"size"`
	Capacity  int    `json:"capacity"`
}

// Store 有界 FIFO 缓存。
// 并发安全；但按契约每个适配器实例同一时刻只有一个逻辑调用方。
type Store struct {
	capacity int
	entries  map[string]*Entry
	order    []string // FIFO 队列，下标 0 为最旧
	seq      uint64

	hits      uint64
	misses    uint64
	evictions uint64

	logger *zap.Logger
	mu     sync.Mutex
}

// NewStore 创建容量为 capacity 的缓存；capacity <= 0 时取 DefaultCapacity。
func NewStore(capacity int, logger *zap.Logger) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		capacity: capacity,
		entries:  make(map[string]*Entry, capacity),
		logger:   logger.Named("cache"),
	}
}

// Get 查找缓存。纯读操作：命中不改变逐出顺序。
// 载荷已被释放的条目视为缺失，并当场移除。
func (s *Store) Get(key string) (media.Payload, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok {
		s.misses++
		return nil, false
	}
	if entry.Payload == nil || entry.Payload.Released() {
		s.logger.Debug("驱逐失效缓存条目", zap.String("key", key))
		s.removeLocked(key)
		s.misses++
		return nil, false
	}
	s.hits++
	return entry.Payload, true
}

// Put 写入缓存。仅在键缺失时插入（首次写入生效）；
// 容量已满时先逐出最早插入的一条并释放其载荷。
// nil 或已释放的载荷直接忽略。
func (s *Store) Put(key string, payload media.Payload) {
	if payload == nil || payload.Released() {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[key]; exists {
		// 键已存在：保留旧载荷，释放新载荷避免悬挂资源。
		payload.Release()
		return
	}

	if len(s.entries) >= s.capacity {
		s.evictOldestLocked()
	}

	s.seq++
	s.entries[key] = &Entry{
		Key:        key,
		Payload:    payload,
		Seq:        s.seq,
		InsertedAt: time.Now(),
	}
	s.order = append(s.order, key)
}

// Len 返回当前条目数。
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Clear 释放全部载荷并清空缓存。
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, entry := range s.entries {
		if entry.Payload != nil {
			entry.Payload.Release()
		}
	}
	s.entries = make(map[string]*Entry, s.capacity)
	s.order = s.order[:0]
}

// Stats 返回运行统计快照。
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Stats{
		Hits:      s.hits,
		Misses:    s.misses,
		Evictions: s.evictions,
		Size:      len(s.entries),
		Capacity:  s.capacity,
	}
}

// evictOldestLocked 逐出 FIFO 队头并释放其载荷。调用方持锁。
func (s *Store) evictOldestLocked() {
	if len(s.order) == 0 {
		return
	}
	oldest := s.order[0]
	s.order = s.order[1:]

	entry, ok := s.entries[oldest]
	if !ok {
		return
	}
	delete(s.entries, oldest)
	s.evictions++
	if entry.Payload != nil {
		entry.Payload.Release()
	}
	s.logger.Debug("FIFO 逐出最旧条目",
		zap.String("key", oldest),
		zap.Duration("age", time.Since(entry.InsertedAt)),
	)
}

// removeLocked 从映射与 FIFO 队列中移除指定键。调用方持锁。
func (s *Store) removeLocked(key string) {
	delete(s.entries, key)
	for i, k := range s.order {
		if k == key {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}
