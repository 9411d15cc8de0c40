package chunk

import (
	"context"
	"strings"

	"go.uber.org/zap"

	apperrors "github.com/lk2023060901/chunkbench/internal/pkg/errors"
	"github.com/lk2023060901/chunkbench/internal/pkg/logger"
)

// FixedChunker 固定大小带重叠的分块器。将整篇文档的 token 流切成
// 等大的窗口，相邻窗口按配置比例向前重叠
type FixedChunker struct {
	tokenizer         *Tokenizer
	chunkSize         int
	overlapPercentage float64
	overlapTokens     int
	logger            *logger.Logger
}

// FixedChunkerConfig 固定分块器配置
type FixedChunkerConfig struct {
	ChunkSize         int     // 每块的目标 token 数量
	OverlapPercentage float64 // 重叠比例，范围 [0, 0.5]
}

// NewFixedChunker 创建固定分块器
func NewFixedChunker(tokenizer *Tokenizer, cfg *FixedChunkerConfig, lgr *logger.Logger) (*FixedChunker, error) {
	if tokenizer == nil {
		return nil, apperrors.New(apperrors.ErrChunkInvalidConfig, "tokenizer is required")
	}

	if cfg == nil {
		cfg = &FixedChunkerConfig{
			ChunkSize:         300,
			OverlapPercentage: 0.2,
		}
	}

	if cfg.ChunkSize <= 0 {
		return nil, apperrors.New(apperrors.ErrChunkInvalidConfig, "chunk_size must be positive")
	}

	if cfg.OverlapPercentage < 0 || cfg.OverlapPercentage > 0.5 {
		return nil, apperrors.New(apperrors.ErrChunkInvalidConfig, "overlap_percentage must be in [0, 0.5]")
	}

	if lgr == nil {
		lgr = logger.L()
	}

	return &FixedChunker{
		tokenizer:         tokenizer,
		chunkSize:         cfg.ChunkSize,
		overlapPercentage: cfg.OverlapPercentage,
		overlapTokens:     int(float64(cfg.ChunkSize) * cfg.OverlapPercentage),
		logger:            lgr,
	}, nil
}

// Chunk 将文本切成固定大小的重叠块。游标每次前进整个 chunkSize，
// 重叠只把下一个窗口的起点向前拉，不会重复推进已经走过的 token
func (c *FixedChunker) Chunk(ctx context.Context, text string) ([]*Chunk, error) {
	if strings.TrimSpace(text) == "" {
		return []*Chunk{}, nil
	}

	tokens := c.tokenizer.Encode(text)
	totalTokens := len(tokens)

	if totalTokens == 0 {
		return []*Chunk{}, nil
	}

	// 字符位置按 token 均匀分布插值，只是近似
	charRatio := float64(len(text)) / float64(totalTokens)

	chunks := make([]*Chunk, 0, (totalTokens+c.chunkSize-1)/c.chunkSize)
	chunkID := 0
	position := 0

	for position < totalTokens {
		start := position - c.overlapTokens
		if start < 0 {
			start = 0
		}

		end := position + c.chunkSize
		if end > totalTokens {
			end = totalTokens
		}

		chunkTokens := tokens[start:end]
		chunkText := c.tokenizer.Decode(chunkTokens)

		overlap := c.overlapTokens
		if chunkID == 0 {
			overlap = 0
		}

		chunks = append(chunks, &Chunk{
			ID:         chunkID,
			Text:       chunkText,
			StartChar:  int(float64(start) * charRatio),
			EndChar:    int(float64(end) * charRatio),
			TokenCount: len(chunkTokens),
			Metadata: &FixedMeta{
				ChunkSize:     c.chunkSize,
				OverlapTokens: overlap,
				TokenStart:    start,
				TokenEnd:      end,
			},
		})

		chunkID++
		position = end
	}

	c.logger.Info("fixed chunking completed",
		zap.Int("total_tokens", totalTokens),
		zap.Int("chunks", len(chunks)),
		zap.Int("chunk_size", c.chunkSize),
		zap.Int("overlap_tokens", c.overlapTokens))

	return chunks, nil
}

// Strategy 返回分块策略
func (c *FixedChunker) Strategy() Strategy {
	return StrategyFixed
}

// ChunkSize 返回配置的块大小
func (c *FixedChunker) ChunkSize() int {
	return c.chunkSize
}

// OverlapTokens 返回推导出的重叠 token 数量
func (c *FixedChunker) OverlapTokens() int {
	return c.overlapTokens
}
