package chunk

import (
	"context"
	"strings"

	"go.uber.org/zap"

	apperrors "github.com/lk2023060901/chunkbench/internal/pkg/errors"
	"github.com/lk2023060901/chunkbench/internal/pkg/logger"
)

// SemanticChunker 语义分块器。按句子边界切分文本，再贪心地把
// 整句聚合成块：达到目标大小立即产出，追加句子会越过硬上限时
// 先行产出。块大小可变，但句子永远不会被切断
type SemanticChunker struct {
	tokenizer       *Tokenizer
	targetChunkSize int
	minChunkSize    int
	maxChunkSize    int
	logger          *logger.Logger
}

// SemanticChunkerConfig 语义分块器配置。MinChunkSize 只是建议值，
// 用于统计报告，最后一块可以小于它
type SemanticChunkerConfig struct {
	TargetChunkSize int // 理想的每块 token 数量
	MinChunkSize    int // 建议的最小 token 数量（不强制）
	MaxChunkSize    int // 硬上限（单句超限除外）
}

// NewSemanticChunker 创建语义分块器
func NewSemanticChunker(tokenizer *Tokenizer, cfg *SemanticChunkerConfig, lgr *logger.Logger) (*SemanticChunker, error) {
	if tokenizer == nil {
		return nil, apperrors.New(apperrors.ErrChunkInvalidConfig, "tokenizer is required")
	}

	if cfg == nil {
		cfg = &SemanticChunkerConfig{
			TargetChunkSize: 300,
			MinChunkSize:    200,
			MaxChunkSize:    500,
		}
	}

	if cfg.TargetChunkSize <= 0 {
		return nil, apperrors.New(apperrors.ErrChunkInvalidConfig, "target_chunk_size must be positive")
	}

	if cfg.MaxChunkSize <= 0 {
		return nil, apperrors.New(apperrors.ErrChunkInvalidConfig, "max_chunk_size must be positive")
	}

	if cfg.MinChunkSize > cfg.MaxChunkSize {
		return nil, apperrors.New(apperrors.ErrChunkInvalidConfig, "min_chunk_size cannot exceed max_chunk_size")
	}

	if lgr == nil {
		lgr = logger.L()
	}

	return &SemanticChunker{
		tokenizer:       tokenizer,
		targetChunkSize: cfg.TargetChunkSize,
		minChunkSize:    cfg.MinChunkSize,
		maxChunkSize:    cfg.MaxChunkSize,
		logger:          lgr,
	}, nil
}

// Chunk 将文本按句子聚合成语义块。单独一句超过 maxChunkSize 时
// 无法再切，按超大块产出（保句子完整优先于严格限长）
func (c *SemanticChunker) Chunk(ctx context.Context, text string) ([]*Chunk, error) {
	if strings.TrimSpace(text) == "" {
		return []*Chunk{}, nil
	}

	sentences := SplitSentences(text)
	if len(sentences) == 0 {
		return []*Chunk{}, nil
	}

	chunks := make([]*Chunk, 0)
	var pending []string
	currentTokens := 0
	chunkID := 0
	charPosition := 0
	tokenPosition := 0

	flush := func() {
		if len(pending) == 0 {
			return
		}
		ck := c.buildChunk(pending, chunkID, charPosition, tokenPosition)
		chunks = append(chunks, ck)
		chunkID++
		charPosition += len(ck.Text)
		tokenPosition += ck.TokenCount
		pending = nil
		currentTokens = 0
	}

	for _, sentence := range sentences {
		sentenceTokens := c.tokenizer.Count(sentence)

		// 追加会越过硬上限时先产出当前组
		if currentTokens+sentenceTokens > c.maxChunkSize && len(pending) > 0 {
			flush()
		}

		pending = append(pending, sentence)
		currentTokens += sentenceTokens

		// 达到目标大小立即产出，不等到上限
		if currentTokens >= c.targetChunkSize {
			flush()
		}
	}

	// 剩余句子作为最后一块，即使小于 minChunkSize
	flush()

	c.logger.Info("semantic chunking completed",
		zap.Int("sentences", len(sentences)),
		zap.Int("chunks", len(chunks)),
		zap.Int("target_size", c.targetChunkSize))

	return chunks, nil
}

// buildChunk 把一组句子拼成块，句子之间用单个空格连接
func (c *SemanticChunker) buildChunk(sentences []string, chunkID, startChar, tokenStart int) *Chunk {
	text := strings.Join(sentences, " ")
	tokenCount := c.tokenizer.Count(text)

	return &Chunk{
		ID:         chunkID,
		Text:       text,
		StartChar:  startChar,
		EndChar:    startChar + len(text),
		TokenCount: tokenCount,
		Metadata: &SemanticMeta{
			SentenceCount: len(sentences),
			TargetSize:    c.targetChunkSize,
			TokenStart:    tokenStart,
			TokenEnd:      tokenStart + tokenCount,
		},
	}
}

// Strategy 返回分块策略
func (c *SemanticChunker) Strategy() Strategy {
	return StrategySemantic
}
