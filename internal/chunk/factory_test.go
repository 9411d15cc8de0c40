package chunk

import (
	"testing"

	apperrors "github.com/lk2023060901/chunkbench/internal/pkg/errors"
)

func TestFactory_CreateChunker(t *testing.T) {
	tok := mustTokenizer(t)
	factory, err := NewFactory(tok, nil, nil)
	if err != nil {
		t.Fatalf("NewFactory failed: %v", err)
	}

	for _, s := range []Strategy{StrategyFixed, StrategySemantic, StrategyHierarchical} {
		chunker, err := factory.CreateChunker(s)
		if err != nil {
			t.Errorf("CreateChunker(%s) failed: %v", s, err)
			continue
		}
		if chunker.Strategy() != s {
			t.Errorf("Expected strategy %s, got %s", s, chunker.Strategy())
		}
	}
}

func TestFactory_UnsupportedStrategy(t *testing.T) {
	tok := mustTokenizer(t)
	factory, _ := NewFactory(tok, nil, nil)

	_, err := factory.CreateChunker(Strategy("recursive"))
	if err == nil {
		t.Fatal("Expected error for unsupported strategy, got nil")
	}
	if apperrors.ExtractCode(err) != apperrors.ErrUnsupportedStrategy {
		t.Errorf("Expected code %d, got %d", apperrors.ErrUnsupportedStrategy, apperrors.ExtractCode(err))
	}
}

func TestFactory_CreateAll(t *testing.T) {
	tok := mustTokenizer(t)
	factory, _ := NewFactory(tok, &FactoryConfig{
		Fixed:        &FixedChunkerConfig{ChunkSize: 200, OverlapPercentage: 0.1},
		Semantic:     &SemanticChunkerConfig{TargetChunkSize: 200, MinChunkSize: 100, MaxChunkSize: 400},
		Hierarchical: &HierarchicalChunkerConfig{ParentChunkSize: 800, ChildChunkSize: 200},
	}, nil)

	chunkers, err := factory.CreateAll()
	if err != nil {
		t.Fatalf("CreateAll failed: %v", err)
	}
	if len(chunkers) != 3 {
		t.Errorf("Expected 3 chunkers, got %d", len(chunkers))
	}
}

func TestFactory_InvalidStrategyConfig(t *testing.T) {
	tok := mustTokenizer(t)
	factory, _ := NewFactory(tok, &FactoryConfig{
		Fixed: &FixedChunkerConfig{ChunkSize: -1},
	}, nil)

	if _, err := factory.CreateChunker(StrategyFixed); err == nil {
		t.Fatal("Expected error for invalid fixed config, got nil")
	}
}
