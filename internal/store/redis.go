package store

import (
	"context"
	"encoding/json"
	"fmt"

	"nutrition-planner/internal/infrastructure/config"
	"nutrition-planner/internal/pkg/common"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// RedisStore 以 Redis 為後端的文件儲存
// 文件本體連同版本令牌以 JSON 存在單一鍵下，同種類的 ID 另以 set 建索引；
// 樂觀鎖透過 WATCH 交易實作，版本不符即中止寫入
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore 建立 Redis 儲存並測試連線
func NewRedisStore(cfg *config.StoreConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	common.LogInfo("Redis 文件儲存已初始化",
		zap.String("addr", cfg.RedisAddr),
		zap.Int("db", cfg.RedisDB),
	)

	return &RedisStore{
		client: client,
		prefix: cfg.KeyPrefix,
	}, nil
}

func (s *RedisStore) docKey(kind, id string) string {
	return fmt.Sprintf("%s:%s:%s", s.prefix, kind, id)
}

func (s *RedisStore) indexKey(kind string) string {
	return fmt.Sprintf("%s:%s:index", s.prefix, kind)
}

// Get 取得文件
func (s *RedisStore) Get(ctx context.Context, kind, id string) (*Document, error) {
	data, err := s.client.Get(ctx, s.docKey(kind, id)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal document: %w", err)
	}
	return &doc, nil
}

// Put 寫入文件；WATCH 保證版本檢查與寫入的原子性
func (s *RedisStore) Put(ctx context.Context, doc *Document) (*Document, error) {
	key := s.docKey(doc.Kind, doc.ID)
	var stored Document

	txn := func(tx *redis.Tx) error {
		currentData, err := tx.Get(ctx, key).Bytes()
		switch {
		case err == redis.Nil:
			if doc.Rev != "" {
				return ErrRevisionMismatch
			}
		case err != nil:
			return fmt.Errorf("failed to read current document: %w", err)
		default:
			var current Document
			if err := json.Unmarshal(currentData, &current); err != nil {
				return fmt.Errorf("failed to unmarshal current document: %w", err)
			}
			if doc.Rev == "" || doc.Rev != current.Rev {
				return ErrRevisionMismatch
			}
		}

		stored = Document{
			ID:   doc.ID,
			Kind: doc.Kind,
			Rev:  newRevision(doc.Rev),
			Data: doc.Data,
		}
		data, err := json.Marshal(&stored)
		if err != nil {
			return fmt.Errorf("failed to marshal document: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			pipe.SAdd(ctx, s.indexKey(doc.Kind), doc.ID)
			return nil
		})
		return err
	}

	if err := s.client.Watch(ctx, txn, key); err != nil {
		if err == redis.TxFailedErr {
			// 競態下視為版本衝突，由呼叫端重讀
			return nil, ErrRevisionMismatch
		}
		return nil, err
	}

	copied := stored
	return &copied, nil
}

// Remove 刪除文件
func (s *RedisStore) Remove(ctx context.Context, kind, id, rev string) error {
	key := s.docKey(kind, id)

	txn := func(tx *redis.Tx) error {
		currentData, err := tx.Get(ctx, key).Bytes()
		if err == redis.Nil {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to read current document: %w", err)
		}

		var current Document
		if err := json.Unmarshal(currentData, &current); err != nil {
			return fmt.Errorf("failed to unmarshal current document: %w", err)
		}
		if rev == "" {
			return ErrRevisionRequired
		}
		if rev != current.Rev {
			return ErrRevisionMismatch
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key)
			pipe.SRem(ctx, s.indexKey(kind), id)
			return nil
		})
		return err
	}

	if err := s.client.Watch(ctx, txn, key); err != nil {
		if err == redis.TxFailedErr {
			return ErrRevisionMismatch
		}
		return err
	}
	return nil
}

// List 透過索引 set 列出同種類所有文件
func (s *RedisStore) List(ctx context.Context, kind string) ([]*Document, error) {
	ids, err := s.client.SMembers(ctx, s.indexKey(kind)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list document ids: %w", err)
	}

	docs := make([]*Document, 0, len(ids))
	for _, id := range ids {
		doc, err := s.Get(ctx, kind, id)
		if err == ErrNotFound {
			// 索引殘留的 ID，順手清掉
			s.client.SRem(ctx, s.indexKey(kind), id)
			continue
		}
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// Ping 檢查連線
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close 關閉連線
func (s *RedisStore) Close() error {
	common.LogInfo("Redis 文件儲存已關閉")
	return s.client.Close()
}
