package retrieval

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/lk2023060901/chunkbench/internal/chunk"
	"github.com/lk2023060901/chunkbench/internal/embedding"
	apperrors "github.com/lk2023060901/chunkbench/internal/pkg/errors"
	"github.com/lk2023060901/chunkbench/internal/pkg/logger"
	"github.com/lk2023060901/chunkbench/internal/vectorstore"
)

// Indexer 把分块结果向量化后写入向量存储
type Indexer struct {
	embedder embedding.Embedder
	store    vectorstore.VectorStore
	logger   *logger.Logger
}

// NewIndexer 创建 Indexer
func NewIndexer(embedder embedding.Embedder, store vectorstore.VectorStore, lgr *logger.Logger) (*Indexer, error) {
	if embedder == nil {
		return nil, apperrors.NewConfigurationError("embedder is required")
	}
	if store == nil {
		return nil, apperrors.NewConfigurationError("vector store is required")
	}
	if lgr == nil {
		lgr = logger.L()
	}

	return &Indexer{
		embedder: embedder,
		store:    store,
		logger:   lgr,
	}, nil
}

// Index 将分块写入集合。集合会先重建，保证一次运行内
// chunk_id 与实体一一对应
func (idx *Indexer) Index(ctx context.Context, collection string, chunks []*chunk.Chunk) error {
	if err := idx.store.Reset(ctx, collection, idx.embedder.Dimension()); err != nil {
		return err
	}

	if len(chunks) == 0 {
		idx.logger.Warn("no chunks to index",
			zap.String("collection", collection))
		return nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	vectors, err := idx.embedder.BatchEmbed(ctx, texts)
	if err != nil {
		return err
	}

	if len(vectors) != len(chunks) {
		return apperrors.New(apperrors.ErrEmbeddingFailed,
			fmt.Sprintf("expected %d vectors, got %d", len(chunks), len(vectors)))
	}

	data := make([]*vectorstore.VectorData, len(chunks))
	for i, c := range chunks {
		data[i] = &vectorstore.VectorData{
			ID:      EntityID(c.ID),
			Vector:  vectors[i],
			Text:    c.Text,
			Payload: chunkPayload(c),
		}
	}

	if err := idx.store.BatchUpsert(ctx, collection, data); err != nil {
		return err
	}

	idx.logger.Info("chunks indexed",
		zap.String("collection", collection),
		zap.Int("chunks", len(chunks)))

	return nil
}

// EntityID 分块在向量存储中的主键
func EntityID(chunkID int) string {
	return fmt.Sprintf("chunk_%d", chunkID)
}

// chunkPayload 构建写入存储的元数据：分块自身字段加上策略元数据
func chunkPayload(c *chunk.Chunk) map[string]interface{} {
	payload := map[string]interface{}{
		"chunk_id":    c.ID,
		"start_char":  c.StartChar,
		"end_char":    c.EndChar,
		"token_count": c.TokenCount,
	}

	if c.Metadata != nil {
		for k, v := range c.Metadata.ToMap() {
			payload[k] = v
		}
	}

	return payload
}
