package embedding

import (
	"testing"

	apperrors "github.com/lk2023060901/chunkbench/internal/pkg/errors"
)

func TestSplitBatches(t *testing.T) {
	texts := []string{"a", "b", "c", "d", "e"}

	batches := splitBatches(texts, 2)
	if len(batches) != 3 {
		t.Fatalf("Expected 3 batches, got %d", len(batches))
	}
	if len(batches[0]) != 2 || len(batches[1]) != 2 || len(batches[2]) != 1 {
		t.Errorf("Unexpected batch sizes: %d, %d, %d",
			len(batches[0]), len(batches[1]), len(batches[2]))
	}

	// 顺序必须保持
	if batches[2][0] != "e" {
		t.Errorf("Expected last element e, got %s", batches[2][0])
	}
}

func TestSplitBatches_SingleBatch(t *testing.T) {
	batches := splitBatches([]string{"a", "b"}, 32)
	if len(batches) != 1 {
		t.Fatalf("Expected 1 batch, got %d", len(batches))
	}
}

func TestNewOpenAIEmbedder_Validation(t *testing.T) {
	if _, err := NewOpenAIEmbedder(nil, nil); apperrors.ExtractCode(err) != apperrors.ErrEmbeddingInvalidConfig {
		t.Errorf("Expected invalid config code, got %v", err)
	}
	if _, err := NewOpenAIEmbedder(&OpenAIEmbedderConfig{}, nil); apperrors.ExtractCode(err) != apperrors.ErrEmbeddingInvalidConfig {
		t.Errorf("Expected invalid config code for missing api key, got %v", err)
	}
}

func TestNewOpenAIEmbedder_Defaults(t *testing.T) {
	e, err := NewOpenAIEmbedder(&OpenAIEmbedderConfig{APIKey: "sk-test"}, nil)
	if err != nil {
		t.Fatalf("NewOpenAIEmbedder failed: %v", err)
	}
	defer e.Close()

	if e.Model() != "text-embedding-3-small" {
		t.Errorf("Expected default model, got %s", e.Model())
	}
	if e.Dimension() != 1536 {
		t.Errorf("Expected dimension 1536, got %d", e.Dimension())
	}
	if e.batchSize != defaultEmbedBatchSize {
		t.Errorf("Expected batch size %d, got %d", defaultEmbedBatchSize, e.batchSize)
	}
}
