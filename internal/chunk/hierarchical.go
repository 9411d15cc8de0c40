package chunk

import (
	"context"
	"strings"

	"go.uber.org/zap"

	apperrors "github.com/lk2023060901/chunkbench/internal/pkg/errors"
	"github.com/lk2023060901/chunkbench/internal/pkg/logger"
)

// HierarchicalChunker 父子两级分块器。先把文档切成互不重叠的
// 大父块，再把每个父块切成互不重叠的小子块。只有子块进入
// 检索链路，父块全文随子块元数据携带，供下游拼装上下文
type HierarchicalChunker struct {
	tokenizer  *Tokenizer
	parentSize int
	childSize  int
	logger     *logger.Logger
}

// HierarchicalChunkerConfig 层级分块器配置
type HierarchicalChunkerConfig struct {
	ParentChunkSize int // 父块的 token 数量，必须大于子块
	ChildChunkSize  int // 子块的 token 数量
}

// NewHierarchicalChunker 创建层级分块器
func NewHierarchicalChunker(tokenizer *Tokenizer, cfg *HierarchicalChunkerConfig, lgr *logger.Logger) (*HierarchicalChunker, error) {
	if tokenizer == nil {
		return nil, apperrors.New(apperrors.ErrChunkInvalidConfig, "tokenizer is required")
	}

	if cfg == nil {
		cfg = &HierarchicalChunkerConfig{
			ParentChunkSize: 1000,
			ChildChunkSize:  300,
		}
	}

	if cfg.ChildChunkSize <= 0 {
		return nil, apperrors.New(apperrors.ErrChunkInvalidConfig, "child_chunk_size must be positive")
	}

	if cfg.ParentChunkSize <= cfg.ChildChunkSize {
		return nil, apperrors.New(apperrors.ErrChunkInvalidConfig, "parent_chunk_size must be greater than child_chunk_size")
	}

	if lgr == nil {
		lgr = logger.L()
	}

	return &HierarchicalChunker{
		tokenizer:  tokenizer,
		parentSize: cfg.ParentChunkSize,
		childSize:  cfg.ChildChunkSize,
		logger:     lgr,
	}, nil
}

// Chunk 返回全部子块。子块 ID 跨父块全局递增，保证同一次运行内
// 唯一且反映文档顺序
func (c *HierarchicalChunker) Chunk(ctx context.Context, text string) ([]*Chunk, error) {
	if strings.TrimSpace(text) == "" {
		return []*Chunk{}, nil
	}

	tokens := c.tokenizer.Encode(text)
	totalTokens := len(tokens)

	if totalTokens == 0 {
		return []*Chunk{}, nil
	}

	charRatio := float64(len(text)) / float64(totalTokens)

	chunks := make([]*Chunk, 0, (totalTokens+c.childSize-1)/c.childSize)
	chunkID := 0
	parentID := 0
	parentCount := 0

	for parentStart := 0; parentStart < totalTokens; parentStart += c.parentSize {
		parentEnd := parentStart + c.parentSize
		if parentEnd > totalTokens {
			parentEnd = totalTokens
		}

		parentTokens := tokens[parentStart:parentEnd]
		parentText := c.tokenizer.Decode(parentTokens)
		parentCount++

		childIDInParent := 0
		for childStart := 0; childStart < len(parentTokens); childStart += c.childSize {
			childEnd := childStart + c.childSize
			if childEnd > len(parentTokens) {
				childEnd = len(parentTokens)
			}

			childTokens := parentTokens[childStart:childEnd]
			childText := c.tokenizer.Decode(childTokens)

			tokenStart := parentStart + childStart
			tokenEnd := parentStart + childEnd

			chunks = append(chunks, &Chunk{
				ID:         chunkID,
				Text:       childText,
				StartChar:  int(float64(tokenStart) * charRatio),
				EndChar:    int(float64(tokenEnd) * charRatio),
				TokenCount: len(childTokens),
				Metadata: &HierarchicalMeta{
					ParentID:         parentID,
					ChildIDInParent:  childIDInParent,
					ParentText:       parentText,
					ParentTokenCount: len(parentTokens),
					ChildSize:        c.childSize,
					TokenStart:       tokenStart,
					TokenEnd:         tokenEnd,
				},
			})

			chunkID++
			childIDInParent++
		}

		parentID++
	}

	c.logger.Info("hierarchical chunking completed",
		zap.Int("total_tokens", totalTokens),
		zap.Int("parents", parentCount),
		zap.Int("children", len(chunks)),
		zap.Int("parent_size", c.parentSize),
		zap.Int("child_size", c.childSize))

	return chunks, nil
}

// Strategy 返回分块策略
func (c *HierarchicalChunker) Strategy() Strategy {
	return StrategyHierarchical
}
