package chunk

import (
	"fmt"

	apperrors "github.com/lk2023060901/chunkbench/internal/pkg/errors"
	"github.com/lk2023060901/chunkbench/internal/pkg/logger"
)

// FactoryConfig 汇总三种策略的分块参数
type FactoryConfig struct {
	Fixed        *FixedChunkerConfig
	Semantic     *SemanticChunkerConfig
	Hierarchical *HierarchicalChunkerConfig
}

// Factory 按策略名创建分块器，所有分块器共享同一个 Tokenizer
type Factory struct {
	tokenizer *Tokenizer
	config    *FactoryConfig
	logger    *logger.Logger
}

// NewFactory 创建分块器工厂。config 为 nil 时每种策略使用默认参数
func NewFactory(tokenizer *Tokenizer, config *FactoryConfig, lgr *logger.Logger) (*Factory, error) {
	if tokenizer == nil {
		return nil, apperrors.New(apperrors.ErrChunkInvalidConfig, "tokenizer is required")
	}

	if config == nil {
		config = &FactoryConfig{}
	}

	if lgr == nil {
		lgr = logger.L()
	}

	return &Factory{
		tokenizer: tokenizer,
		config:    config,
		logger:    lgr,
	}, nil
}

// CreateChunker 根据策略创建分块器
func (f *Factory) CreateChunker(strategy Strategy) (Chunker, error) {
	switch strategy {
	case StrategyFixed:
		return NewFixedChunker(f.tokenizer, f.config.Fixed, f.logger)
	case StrategySemantic:
		return NewSemanticChunker(f.tokenizer, f.config.Semantic, f.logger)
	case StrategyHierarchical:
		return NewHierarchicalChunker(f.tokenizer, f.config.Hierarchical, f.logger)
	default:
		return nil, apperrors.New(apperrors.ErrUnsupportedStrategy,
			fmt.Sprintf("unsupported chunking strategy: %s", strategy))
	}
}

// CreateAll 创建全部三种策略的分块器，用于多策略对比
func (f *Factory) CreateAll() (map[Strategy]Chunker, error) {
	strategies := []Strategy{StrategyFixed, StrategySemantic, StrategyHierarchical}
	chunkers := make(map[Strategy]Chunker, len(strategies))

	for _, s := range strategies {
		chunker, err := f.CreateChunker(s)
		if err != nil {
			return nil, err
		}
		chunkers[s] = chunker
	}

	return chunkers, nil
}
