package vectorstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/milvus-io/milvus/client/v2/column"
	"go.uber.org/zap"

	apperrors "github.com/lk2023060901/chunkbench/internal/pkg/errors"
	"github.com/lk2023060901/chunkbench/internal/pkg/logger"
	"github.com/lk2023060901/chunkbench/internal/pkg/milvus"
)

const (
	fieldID        = "id"
	fieldEmbedding = "embedding"
	fieldText      = "text"
	fieldMetadata  = "metadata"

	maxIDLength   = 128
	maxTextLength = 65535

	// 单次插入的批大小
	insertBatchSize = 100
)

// MilvusStore VectorStore 的 Milvus 实现。集合统一使用
// id(VarChar 主键) + embedding(FloatVector) + text + metadata(JSON)
// 四字段 Schema，COSINE 度量
type MilvusStore struct {
	client *milvus.Client
	logger *logger.Logger
}

// NewMilvusStore 创建 Milvus 向量存储
func NewMilvusStore(client *milvus.Client, lgr *logger.Logger) (*MilvusStore, error) {
	if client == nil {
		return nil, apperrors.NewConfigurationError("milvus client is required")
	}

	if lgr == nil {
		lgr = logger.L()
	}

	return &MilvusStore{
		client: client,
		logger: lgr,
	}, nil
}

// EnsureCollection 确保集合存在并已加载
func (s *MilvusStore) EnsureCollection(ctx context.Context, collection string, dimension int) error {
	exists, err := s.client.HasCollection(ctx, collection)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrVectorInsertFailed, "failed to check collection")
	}

	if !exists {
		if err := s.createCollection(ctx, collection, dimension); err != nil {
			return err
		}
	}

	if err := s.client.LoadCollection(ctx, collection, false); err != nil {
		return apperrors.Wrap(err, apperrors.ErrVectorInsertFailed, "failed to load collection")
	}

	return nil
}

// Reset 重建集合：已存在则删除后重新创建
func (s *MilvusStore) Reset(ctx context.Context, collection string, dimension int) error {
	exists, err := s.client.HasCollection(ctx, collection)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCollectionReset, "failed to check collection")
	}

	if exists {
		if err := s.client.DropCollection(ctx, collection); err != nil {
			return apperrors.Wrap(err, apperrors.ErrCollectionReset, "failed to drop collection")
		}
		s.logger.Info("existing collection dropped",
			zap.String("collection", collection))
	}

	if err := s.createCollection(ctx, collection, dimension); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCollectionReset, "failed to recreate collection")
	}

	return s.client.LoadCollection(ctx, collection, false)
}

// Exists 检查集合是否存在
func (s *MilvusStore) Exists(ctx context.Context, collection string) (bool, error) {
	return s.client.HasCollection(ctx, collection)
}

// BatchUpsert 批量写入向量数据，内部按固定批大小分批插入
func (s *MilvusStore) BatchUpsert(ctx context.Context, collection string, data []*VectorData) error {
	if len(data) == 0 {
		return nil
	}

	dimension := len(data[0].Vector)

	for _, batch := range milvus.ChunkSlice(data, insertBatchSize) {
		ids := make([]string, len(batch))
		vectors := make([][]float32, len(batch))
		texts := make([]string, len(batch))
		payloads := make([][]byte, len(batch))

		for i, d := range batch {
			if len(d.Vector) != dimension {
				return apperrors.New(apperrors.ErrVectorInsertFailed,
					fmt.Sprintf("vector %s has dimension %d, expected %d", d.ID, len(d.Vector), dimension))
			}

			encoded, err := encodePayload(d.Payload)
			if err != nil {
				return apperrors.Wrap(err, apperrors.ErrVectorInsertFailed, "failed to encode payload")
			}

			ids[i] = d.ID
			vectors[i] = d.Vector
			texts[i] = d.Text
			payloads[i] = encoded
		}

		columns := []column.Column{
			milvus.BuildVarCharColumn(fieldID, ids),
			milvus.BuildFloatVectorColumn(fieldEmbedding, dimension, vectors),
			milvus.BuildVarCharColumn(fieldText, texts),
			milvus.BuildJSONColumn(fieldMetadata, payloads),
		}

		if _, err := s.client.Insert(ctx, collection, columns); err != nil {
			return apperrors.Wrap(err, apperrors.ErrVectorInsertFailed, "failed to insert batch")
		}
	}

	if err := s.client.Flush(ctx, collection, false); err != nil {
		return apperrors.Wrap(err, apperrors.ErrVectorInsertFailed, "failed to flush collection")
	}

	s.logger.Info("vectors upserted",
		zap.String("collection", collection),
		zap.Int("count", len(data)))

	return nil
}

// Search 按向量检索 topK 条结果
func (s *MilvusStore) Search(ctx context.Context, collection string, vector []float32, topK int) ([]*SearchResult, error) {
	hits, err := s.client.Search(ctx, collection, [][]float32{vector}, fieldEmbedding, topK, &milvus.SearchOptions{
		OutputFields: []string{fieldText, fieldMetadata},
	})
	if err != nil {
		if milvus.IsNotFound(err) {
			return nil, apperrors.Wrap(err, apperrors.ErrCollectionNotFound, collection)
		}
		return nil, apperrors.Wrap(err, apperrors.ErrVectorSearchFailed, "search failed")
	}

	if len(hits) == 0 {
		return []*SearchResult{}, nil
	}

	results := make([]*SearchResult, 0, len(hits[0]))
	for _, hit := range hits[0] {
		id, ok := hit.ID.(string)
		if !ok {
			return nil, apperrors.New(apperrors.ErrVectorSearchFailed,
				fmt.Sprintf("unexpected id type %T", hit.ID))
		}

		result := &SearchResult{
			ChunkID:  id,
			Distance: scoreToDistance(hit.Score),
			Metadata: map[string]interface{}{},
		}

		if text, ok := hit.Fields[fieldText].(string); ok {
			result.Text = text
		}

		if raw, ok := hit.Fields[fieldMetadata].([]byte); ok {
			if meta, err := decodePayload(raw); err == nil {
				result.Metadata = meta
			}
		}

		results = append(results, result)
	}

	return results, nil
}

// Count 返回集合中的实体数量
func (s *MilvusStore) Count(ctx context.Context, collection string) (int64, error) {
	rows, err := s.client.Query(ctx, collection, `id != ""`, &milvus.QueryOptions{
		OutputFields: []string{"count(*)"},
	})
	if err != nil {
		if milvus.IsNotFound(err) {
			return 0, apperrors.Wrap(err, apperrors.ErrCollectionNotFound, collection)
		}
		return 0, apperrors.Wrap(err, apperrors.ErrVectorSearchFailed, "count failed")
	}

	if len(rows) == 0 {
		return 0, nil
	}

	if count, ok := rows[0].Fields["count(*)"].(int64); ok {
		return count, nil
	}

	return 0, nil
}

// createCollection 按统一 Schema 创建集合并建索引
func (s *MilvusStore) createCollection(ctx context.Context, collection string, dimension int) error {
	schema, err := milvus.NewSchemaBuilder(collection, "document chunks with embeddings").
		AddVarCharField(fieldID, maxIDLength, true).
		AddFloatVectorField(fieldEmbedding, dimension).
		AddVarCharField(fieldText, maxTextLength, false).
		AddJSONField(fieldMetadata).
		Build()
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrVectorInsertFailed, "invalid collection schema")
	}

	if err := s.client.CreateCollection(ctx, schema); err != nil {
		return apperrors.Wrap(err, apperrors.ErrVectorInsertFailed, "failed to create collection")
	}

	if err := s.client.CreateIndex(ctx, collection, fieldEmbedding, &milvus.IndexOptions{
		IndexType:  milvus.IndexTypeAutoIndex,
		MetricType: milvus.MetricTypeCosine,
	}); err != nil {
		return apperrors.Wrap(err, apperrors.ErrVectorInsertFailed, "failed to create index")
	}

	s.logger.Info("collection created",
		zap.String("collection", collection),
		zap.Int("dimension", dimension))

	return nil
}

// scoreToDistance 把 COSINE 相似度转换为距离，越小越相似
func scoreToDistance(score float32) float32 {
	return 1 - score
}

// encodePayload 序列化元数据。nil 序列化为空对象
func encodePayload(payload map[string]interface{}) ([]byte, error) {
	if payload == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(payload)
}

// decodePayload 反序列化元数据
func decodePayload(raw []byte) (map[string]interface{}, error) {
	meta := make(map[string]interface{})
	if len(raw) == 0 {
		return meta, nil
	}
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, err
	}
	return meta, nil
}
