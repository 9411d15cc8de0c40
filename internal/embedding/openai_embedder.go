package embedding

import (
	"context"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	apperrors "github.com/lk2023060901/chunkbench/internal/pkg/errors"
	"github.com/lk2023060901/chunkbench/internal/pkg/logger"
	"github.com/lk2023060901/chunkbench/internal/pkg/workerpool"
)

// 单次 API 请求的文本数量上限
const defaultEmbedBatchSize = 32

// OpenAIEmbedder OpenAI Embedder 实现
type OpenAIEmbedder struct {
	client    *openai.Client
	model     string
	dimension int
	batchSize int
	pool      *workerpool.Pool
	logger    *logger.Logger
}

// OpenAIEmbedderConfig OpenAI Embedder 配置
type OpenAIEmbedderConfig struct {
	APIKey    string
	BaseURL   string
	Model     string
	Dimension int
	BatchSize int // 单次请求的文本数量，默认 32
	Workers   int // 并发请求数，小于 2 时串行
}

// NewOpenAIEmbedder 创建 OpenAI Embedder
func NewOpenAIEmbedder(cfg *OpenAIEmbedderConfig, lgr *logger.Logger) (*OpenAIEmbedder, error) {
	if cfg == nil {
		return nil, apperrors.New(apperrors.ErrEmbeddingInvalidConfig, "config is required")
	}

	if cfg.APIKey == "" {
		return nil, apperrors.New(apperrors.ErrEmbeddingInvalidConfig, "api key is required")
	}

	if cfg.Model == "" {
		cfg.Model = string(openai.SmallEmbedding3) // text-embedding-3-small
	}

	if cfg.Dimension == 0 {
		cfg.Dimension = 1536
	}

	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultEmbedBatchSize
	}

	if lgr == nil {
		lgr = logger.L()
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	client := openai.NewClientWithConfig(clientCfg)

	var pool *workerpool.Pool
	if cfg.Workers > 1 {
		var err error
		pool, err = workerpool.New(&workerpool.Config{Size: cfg.Workers}, lgr)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrEmbeddingInvalidConfig, "failed to create worker pool")
		}
	}

	lgr.Info("openai embedder created",
		zap.String("model", cfg.Model),
		zap.Int("dimension", cfg.Dimension),
		zap.Int("batch_size", cfg.BatchSize),
		zap.Int("workers", cfg.Workers))

	return &OpenAIEmbedder{
		client:    client,
		model:     cfg.Model,
		dimension: cfg.Dimension,
		batchSize: cfg.BatchSize,
		pool:      pool,
		logger:    lgr,
	}, nil
}

// Embed 对单个文本生成向量
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := e.BatchEmbed(ctx, []string{text})
	if err != nil {
		return nil, err
	}

	if len(embeddings) == 0 {
		return nil, apperrors.New(apperrors.ErrEmbeddingFailed, "no embedding generated")
	}

	return embeddings[0], nil
}

// BatchEmbed 批量生成向量，结果顺序与输入一致。
// 文本按 batchSize 切分，配置了 worker 池时各批并发请求
func (e *OpenAIEmbedder) BatchEmbed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	batches := splitBatches(texts, e.batchSize)
	results := make([][][]float32, len(batches))

	if e.pool == nil || len(batches) == 1 {
		for i, batch := range batches {
			embeddings, err := e.embedBatch(ctx, batch)
			if err != nil {
				return nil, err
			}
			results[i] = embeddings
		}
	} else {
		tasks := make([]func() error, len(batches))
		for i, batch := range batches {
			i, batch := i, batch
			tasks[i] = func() error {
				embeddings, err := e.embedBatch(ctx, batch)
				if err != nil {
					return err
				}
				results[i] = embeddings
				return nil
			}
		}
		if err := e.pool.Run(tasks); err != nil {
			return nil, err
		}
	}

	embeddings := make([][]float32, 0, len(texts))
	for _, r := range results {
		embeddings = append(embeddings, r...)
	}

	e.logger.Info("embeddings created successfully",
		zap.Int("count", len(embeddings)),
		zap.Int("batches", len(batches)))

	return embeddings, nil
}

func (e *OpenAIEmbedder) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	req := openai.EmbeddingRequestStrings{
		Input:      texts,
		Model:      openai.EmbeddingModel(e.model),
		Dimensions: e.dimension,
	}

	resp, err := e.client.CreateEmbeddings(ctx, req)
	if err != nil {
		e.logger.Error("failed to create embeddings",
			zap.Error(err),
			zap.Int("text_count", len(texts)))
		return nil, apperrors.Wrap(err, apperrors.ErrEmbeddingFailed, "failed to create embeddings")
	}

	embeddings := make([][]float32, len(resp.Data))
	for i, data := range resp.Data {
		embeddings[i] = data.Embedding
	}

	return embeddings, nil
}

// Dimension 返回向量维度
func (e *OpenAIEmbedder) Dimension() int {
	return e.dimension
}

// Model 返回模型名称
func (e *OpenAIEmbedder) Model() string {
	return e.model
}

// Close 释放内部 worker 池
func (e *OpenAIEmbedder) Close() {
	if e.pool != nil {
		e.pool.Shutdown()
	}
}

// splitBatches 把 texts 按 size 切成子切片
func splitBatches(texts []string, size int) [][]string {
	batches := make([][]string, 0, (len(texts)+size-1)/size)
	for start := 0; start < len(texts); start += size {
		end := start + size
		if end > len(texts) {
			end = len(texts)
		}
		batches = append(batches, texts[start:end])
	}
	return batches
}
