package retrieval

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/lk2023060901/chunkbench/internal/embedding"
	apperrors "github.com/lk2023060901/chunkbench/internal/pkg/errors"
	"github.com/lk2023060901/chunkbench/internal/pkg/logger"
	"github.com/lk2023060901/chunkbench/internal/vectorstore"
)

// ContextSeparator 拼装组合上下文时的分块分隔符
const ContextSeparator = "\n\n---\n\n"

// RetrievedChunk 聚合后的检索结果
type RetrievedChunk struct {
	ChunkID  int    // 分块序号，决定最终排序
	EntityID string // 向量存储中的主键
	Text     string
	Distance float32  // 保留首次命中的距离
	Queries  []string // 命中该分块的查询
	Metadata map[string]interface{}
}

// Retriever 多查询检索聚合器
type Retriever struct {
	embedder embedding.Embedder
	store    vectorstore.VectorStore
	logger   *logger.Logger
}

// NewRetriever 创建 Retriever
func NewRetriever(embedder embedding.Embedder, store vectorstore.VectorStore, lgr *logger.Logger) (*Retriever, error) {
	if embedder == nil {
		return nil, apperrors.NewConfigurationError("embedder is required")
	}
	if store == nil {
		return nil, apperrors.NewConfigurationError("vector store is required")
	}
	if lgr == nil {
		lgr = logger.L()
	}

	return &Retriever{
		embedder: embedder,
		store:    store,
		logger:   lgr,
	}, nil
}

// Retrieve 单查询检索，按距离升序返回 topK 条
func (r *Retriever) Retrieve(ctx context.Context, collection, query string, topK int) ([]*vectorstore.SearchResult, error) {
	vector, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}

	results, err := r.store.Search(ctx, collection, vector, topK)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrRetrievalFailed, "search failed")
	}

	return results, nil
}

// RetrieveMultiQuery 多查询检索聚合。每个查询各取 topKPerQuery 条，
// 按 chunk_id 去重（保留先到的命中），最终按 chunk_id 升序返回，
// 即文档顺序而非相似度顺序
func (r *Retriever) RetrieveMultiQuery(ctx context.Context, collection string, queries []string, topKPerQuery int) ([]*RetrievedChunk, error) {
	if len(queries) == 0 {
		return []*RetrievedChunk{}, nil
	}

	merged := make(map[int]*RetrievedChunk)

	for _, query := range queries {
		results, err := r.Retrieve(ctx, collection, query, topKPerQuery)
		if err != nil {
			return nil, err
		}

		for _, result := range results {
			chunkID, ok := chunkIDOf(result)
			if !ok {
				r.logger.Warn("search result without parseable chunk_id",
					zap.String("entity_id", result.ChunkID))
				continue
			}

			// 同一分块被多个查询命中时保留第一个查询的距离
			if existing, seen := merged[chunkID]; seen {
				existing.Queries = append(existing.Queries, query)
				continue
			}

			merged[chunkID] = &RetrievedChunk{
				ChunkID:  chunkID,
				EntityID: result.ChunkID,
				Text:     result.Text,
				Distance: result.Distance,
				Queries:  []string{query},
				Metadata: result.Metadata,
			}
		}
	}

	chunks := make([]*RetrievedChunk, 0, len(merged))
	for _, c := range merged {
		chunks = append(chunks, c)
	}

	sort.Slice(chunks, func(i, j int) bool {
		return chunks[i].ChunkID < chunks[j].ChunkID
	})

	r.logger.Info("multi-query retrieval completed",
		zap.String("collection", collection),
		zap.Int("queries", len(queries)),
		zap.Int("unique_chunks", len(chunks)))

	return chunks, nil
}

// CombinedContext 把聚合结果按文档顺序拼成下游可用的上下文
func CombinedContext(chunks []*RetrievedChunk) string {
	if len(chunks) == 0 {
		return ""
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	return strings.Join(texts, ContextSeparator)
}

// chunkIDOf 从结果中解析分块序号。优先读元数据里的 chunk_id，
// 退回解析主键 chunk_<n>
func chunkIDOf(result *vectorstore.SearchResult) (int, bool) {
	if result.Metadata != nil {
		switch v := result.Metadata["chunk_id"].(type) {
		case int:
			return v, true
		case int64:
			return int(v), true
		case float64:
			return int(v), true
		}
	}

	if id, found := strings.CutPrefix(result.ChunkID, "chunk_"); found {
		if n, err := strconv.Atoi(id); err == nil {
			return n, true
		}
	}

	return 0, false
}
