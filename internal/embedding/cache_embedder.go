package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/lk2023060901/chunkbench/internal/pkg/errors"
	"github.com/lk2023060901/chunkbench/internal/pkg/logger"
)

// Cache 缓存后端的最小接口，由 redis.Client 实现
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
}

// CacheEmbedder 带缓存的 Embedder 装饰器。缓存键为模型名 + 文本
// 的 sha256，缓存失败只记日志，不影响向量化结果
type CacheEmbedder struct {
	embedder Embedder
	cache    Cache
	ttl      time.Duration
	prefix   string
	logger   *logger.Logger
}

// CacheEmbedderConfig 缓存配置
type CacheEmbedderConfig struct {
	TTL    time.Duration // 缓存过期时间
	Prefix string        // 缓存键前缀
}

// NewCacheEmbedder 创建带缓存的 Embedder。cache 为 nil 时直通底层
func NewCacheEmbedder(embedder Embedder, cache Cache, cfg *CacheEmbedderConfig, lgr *logger.Logger) *CacheEmbedder {
	if cfg == nil {
		cfg = &CacheEmbedderConfig{}
	}

	if cfg.TTL == 0 {
		cfg.TTL = 24 * time.Hour
	}

	if cfg.Prefix == "" {
		cfg.Prefix = "chunkbench:embedding:"
	}

	if lgr == nil {
		lgr = logger.L()
	}

	return &CacheEmbedder{
		embedder: embedder,
		cache:    cache,
		ttl:      cfg.TTL,
		prefix:   cfg.Prefix,
		logger:   lgr,
	}
}

// Embed 对单个文本生成向量（带缓存）
func (e *CacheEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	cacheKey := e.cacheKey(text)

	if e.cache != nil {
		if cached, err := e.getFromCache(ctx, cacheKey); err == nil {
			e.logger.Debug("embedding cache hit",
				zap.String("cache_key", cacheKey))
			return cached, nil
		}
	}

	embedding, err := e.embedder.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	if e.cache != nil {
		if err := e.setToCache(ctx, cacheKey, embedding); err != nil {
			e.logger.Warn("failed to cache embedding",
				zap.String("cache_key", cacheKey),
				zap.Error(err))
		}
	}

	return embedding, nil
}

// BatchEmbed 批量生成向量（带缓存）。只对未命中的文本调用底层
// Embedder，返回结果仍与输入顺序一致
func (e *CacheEmbedder) BatchEmbed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	results := make([][]float32, len(texts))
	missingIndices := make([]int, 0)
	missingTexts := make([]string, 0)

	if e.cache != nil {
		for i, text := range texts {
			if cached, err := e.getFromCache(ctx, e.cacheKey(text)); err == nil {
				results[i] = cached
			} else {
				missingIndices = append(missingIndices, i)
				missingTexts = append(missingTexts, text)
			}
		}

		e.logger.Debug("batch embedding cache stats",
			zap.Int("total", len(texts)),
			zap.Int("cache_hits", len(texts)-len(missingTexts)),
			zap.Int("cache_misses", len(missingTexts)))
	} else {
		missingIndices = make([]int, len(texts))
		missingTexts = texts
		for i := range texts {
			missingIndices[i] = i
		}
	}

	if len(missingTexts) == 0 {
		return results, nil
	}

	embeddings, err := e.embedder.BatchEmbed(ctx, missingTexts)
	if err != nil {
		return nil, err
	}

	if len(embeddings) != len(missingTexts) {
		return nil, apperrors.New(apperrors.ErrEmbeddingFailed,
			fmt.Sprintf("expected %d embeddings, got %d", len(missingTexts), len(embeddings)))
	}

	for i, embedding := range embeddings {
		idx := missingIndices[i]
		results[idx] = embedding

		if e.cache != nil {
			cacheKey := e.cacheKey(missingTexts[i])
			if err := e.setToCache(ctx, cacheKey, embedding); err != nil {
				e.logger.Warn("failed to cache embedding",
					zap.String("cache_key", cacheKey),
					zap.Error(err))
			}
		}
	}

	return results, nil
}

// Dimension 返回向量维度
func (e *CacheEmbedder) Dimension() int {
	return e.embedder.Dimension()
}

// Model 返回模型名称
func (e *CacheEmbedder) Model() string {
	return e.embedder.Model()
}

// cacheKey 生成缓存键
func (e *CacheEmbedder) cacheKey(text string) string {
	hash := sha256.Sum256([]byte(text))
	return fmt.Sprintf("%s%s:%s", e.prefix, e.Model(), hex.EncodeToString(hash[:]))
}

// getFromCache 从缓存获取向量
func (e *CacheEmbedder) getFromCache(ctx context.Context, key string) ([]float32, error) {
	data, err := e.cache.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	var embedding []float32
	if err := json.Unmarshal([]byte(data), &embedding); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached embedding: %w", err)
	}

	return embedding, nil
}

// setToCache 将向量写入缓存
func (e *CacheEmbedder) setToCache(ctx context.Context, key string, embedding []float32) error {
	data, err := json.Marshal(embedding)
	if err != nil {
		return fmt.Errorf("failed to marshal embedding: %w", err)
	}

	return e.cache.Set(ctx, key, string(data), e.ttl)
}
