package milvus

import (
	"context"

	"github.com/milvus-io/milvus/client/v2/entity"
	"github.com/milvus-io/milvus/client/v2/milvusclient"
	"go.uber.org/zap"
)

// SearchOptions 搜索选项
type SearchOptions struct {
	OutputFields []string
	Expr         string
	Offset       int
}

// SearchHit 单条搜索命中
type SearchHit struct {
	ID     interface{}
	Score  float32
	Fields map[string]interface{}
}

// Search 向量搜索。每个查询向量各返回一组按相似度排序的命中
func (c *Client) Search(ctx context.Context, collectionName string, vectors [][]float32, vectorField string, topK int, opts *SearchOptions) ([][]SearchHit, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return nil, ErrClientClosed
	}

	if collectionName == "" {
		return nil, ErrInvalidCollectionName
	}

	if len(vectors) == 0 {
		return nil, ErrInvalidVectorData
	}

	if vectorField == "" {
		return nil, ErrInvalidFieldName
	}

	entityVectors := make([]entity.Vector, len(vectors))
	for i, vec := range vectors {
		entityVectors[i] = entity.FloatVector(vec)
	}

	searchOpt := milvusclient.NewSearchOption(collectionName, topK, entityVectors).
		WithANNSField(vectorField)

	if opts != nil {
		if len(opts.OutputFields) > 0 {
			searchOpt.WithOutputFields(opts.OutputFields...)
		}
		if opts.Expr != "" {
			searchOpt.WithFilter(opts.Expr)
		}
		if opts.Offset > 0 {
			searchOpt.WithOffset(opts.Offset)
		}
	}

	var resultSets []milvusclient.ResultSet
	err := c.execWithRetry(ctx, "Search", func(ctx context.Context) error {
		var err error
		resultSets, err = c.client.Search(ctx, searchOpt)
		return err
	})

	if err != nil {
		c.logger.Error("failed to search",
			zap.String("collection", collectionName),
			zap.String("vector_field", vectorField),
			zap.Error(err))
		return nil, WrapError("Search", err, collectionName, vectorField)
	}

	results := make([][]SearchHit, len(resultSets))
	for i, rs := range resultSets {
		results[i] = make([]SearchHit, rs.ResultCount)
		for j := 0; j < rs.ResultCount; j++ {
			id, _ := rs.IDs.Get(j)

			hit := SearchHit{
				ID:     id,
				Score:  rs.Scores[j],
				Fields: make(map[string]interface{}),
			}

			if opts != nil {
				for _, fieldName := range opts.OutputFields {
					if col := rs.GetColumn(fieldName); col != nil {
						val, _ := col.Get(j)
						hit.Fields[fieldName] = val
					}
				}
			}

			results[i][j] = hit
		}
	}

	c.logger.Info("search completed successfully",
		zap.String("collection", collectionName),
		zap.Int("queries", len(vectors)),
		zap.Int("top_k", topK))

	return results, nil
}
