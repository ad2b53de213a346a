package store

import (
	"context"
	"sync"

	"nutrition-planner/internal/pkg/common"
)

// MemoryStore 行程內的文件儲存
// 作為 Redis 不可用時的退路，也供測試使用；語義與 RedisStore 一致
type MemoryStore struct {
	mu    sync.RWMutex
	kinds map[string]map[string]Document
}

// NewMemoryStore 建立記憶體儲存
func NewMemoryStore() *MemoryStore {
	common.LogInfo("記憶體文件儲存已初始化")
	return &MemoryStore{
		kinds: make(map[string]map[string]Document),
	}
}

// Get 取得文件
func (s *MemoryStore) Get(_ context.Context, kind, id string) (*Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.kinds[kind][id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := doc
	return &copied, nil
}

// Put 寫入文件，Rev 不符時回傳 ErrRevisionMismatch
func (s *MemoryStore) Put(_ context.Context, doc *Document) (*Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	byID, ok := s.kinds[doc.Kind]
	if !ok {
		byID = make(map[string]Document)
		s.kinds[doc.Kind] = byID
	}

	current, exists := byID[doc.ID]
	if exists {
		if doc.Rev == "" {
			return nil, ErrRevisionMismatch
		}
		if doc.Rev != current.Rev {
			return nil, ErrRevisionMismatch
		}
	} else if doc.Rev != "" {
		return nil, ErrRevisionMismatch
	}

	stored := Document{
		ID:   doc.ID,
		Kind: doc.Kind,
		Rev:  newRevision(doc.Rev),
		Data: append([]byte(nil), doc.Data...),
	}
	byID[doc.ID] = stored

	copied := stored
	return &copied, nil
}

// Remove 刪除文件，必須附上目前版本
func (s *MemoryStore) Remove(_ context.Context, kind, id, rev string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.kinds[kind][id]
	if !ok {
		return ErrNotFound
	}
	if rev == "" {
		return ErrRevisionRequired
	}
	if rev != current.Rev {
		return ErrRevisionMismatch
	}
	delete(s.kinds[kind], id)
	return nil
}

// List 列出同種類的所有文件
func (s *MemoryStore) List(_ context.Context, kind string) ([]*Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := make([]*Document, 0, len(s.kinds[kind]))
	for _, doc := range s.kinds[kind] {
		copied := doc
		docs = append(docs, &copied)
	}
	return docs, nil
}

// Ping 永遠可用
func (s *MemoryStore) Ping(_ context.Context) error {
	return nil
}

// Close 清空內容
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.kinds = make(map[string]map[string]Document)
	return nil
}
