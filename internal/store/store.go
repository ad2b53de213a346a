package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// 文件種類
const (
	KindFood   = "food"
	KindRecipe = "recipe"
	KindMenu   = "menu"
)

var (
	// ErrNotFound 指定 ID 的文件不存在
	ErrNotFound = errors.New("document not found")
	// ErrRevisionMismatch 樂觀鎖版本不符，呼叫端需重新讀取後再寫入
	ErrRevisionMismatch = errors.New("document revision mismatch")
	// ErrRevisionRequired 更新既有文件時必須附上目前版本
	ErrRevisionRequired = errors.New("document revision required")
)

// Document 儲存層的文件封裝
// Rev 為樂觀併發控制的版本令牌，每次寫入都會更新
type Document struct {
	ID   string          `json:"id"`
	Kind string          `json:"kind"`
	Rev  string          `json:"rev"`
	Data json.RawMessage `json:"data"`
}

// Store 以字串 ID 為鍵的文件存取介面
// Put 在 doc.Rev 與現存版本不符時回傳 ErrRevisionMismatch；
// doc.Rev 為空視為建立，目標已存在同樣回傳 ErrRevisionMismatch
type Store interface {
	Get(ctx context.Context, kind, id string) (*Document, error)
	Put(ctx context.Context, doc *Document) (*Document, error)
	Remove(ctx context.Context, kind, id, rev string) error
	List(ctx context.Context, kind string) ([]*Document, error)
	Ping(ctx context.Context) error
	Close() error
}

// newRevision 產生下一個版本令牌，格式為「世代-隨機值」
func newRevision(current string) string {
	gen := 1
	if current != "" {
		fmt.Sscanf(current, "%d-", &gen)
		gen++
	}
	return fmt.Sprintf("%d-%s", gen, uuid.New().String()[:8])
}
