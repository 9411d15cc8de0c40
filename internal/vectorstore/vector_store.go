package vectorstore

import (
	"context"
)

// VectorData 单条待写入的向量数据
type VectorData struct {
	ID      string                 // 实体主键，如 chunk_0
	Vector  []float32              // 向量
	Text    string                 // 原始文本
	Payload map[string]interface{} // 附加元数据
}

// SearchResult 单条检索结果。Distance 越小越相似
type SearchResult struct {
	ChunkID  string
	Text     string
	Distance float32
	Metadata map[string]interface{}
}

// VectorStore 向量存储接口
type VectorStore interface {
	// EnsureCollection 确保集合存在并已加载，不存在时创建
	EnsureCollection(ctx context.Context, collection string, dimension int) error

	// Reset 重建集合：已存在则先删除，再创建空集合
	Reset(ctx context.Context, collection string, dimension int) error

	// Exists 检查集合是否存在
	Exists(ctx context.Context, collection string) (bool, error)

	// BatchUpsert 批量写入向量数据
	BatchUpsert(ctx context.Context, collection string, data []*VectorData) error

	// Search 按向量检索 topK 条结果，按距离升序返回
	Search(ctx context.Context, collection string, vector []float32, topK int) ([]*SearchResult, error)

	// Count 返回集合中的实体数量
	Count(ctx context.Context, collection string) (int64, error)
}
