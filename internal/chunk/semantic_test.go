package chunk

import (
	"context"
	"strings"
	"testing"

	apperrors "github.com/lk2023060901/chunkbench/internal/pkg/errors"
)

func TestSemanticChunker_Grouping(t *testing.T) {
	tok := mustTokenizer(t)
	chunker, err := NewSemanticChunker(tok, &SemanticChunkerConfig{
		TargetChunkSize: 30,
		MinChunkSize:    10,
		MaxChunkSize:    50,
	}, nil)
	if err != nil {
		t.Fatalf("NewSemanticChunker failed: %v", err)
	}

	text := strings.Repeat("Chunking splits long documents into pieces. Each piece becomes a retrieval unit. ", 10)
	sentences := SplitSentences(text)

	chunks, err := chunker.Chunk(context.Background(), text)
	if err != nil {
		t.Fatalf("Chunk failed: %v", err)
	}

	if len(chunks) == 0 {
		t.Fatal("Expected chunks, got none")
	}

	// 所有句子都要进入某个块，且不重复
	totalSentences := 0
	for _, c := range chunks {
		meta, ok := c.Metadata.(*SemanticMeta)
		if !ok {
			t.Fatalf("Expected *SemanticMeta, got %T", c.Metadata)
		}
		totalSentences += meta.SentenceCount
	}
	if totalSentences != len(sentences) {
		t.Errorf("Expected %d sentences across chunks, got %d", len(sentences), totalSentences)
	}

	// 块内句子用单个空格连接，整体拼回后句子顺序不变
	joined := strings.Join(collectTexts(chunks), " ")
	pos := 0
	for i, s := range sentences {
		idx := strings.Index(joined[pos:], s)
		if idx < 0 {
			t.Fatalf("Sentence %d not found in order: %q", i, s)
		}
		pos += idx + len(s)
	}

	// token 跨度按块累计，相邻块首尾相接
	prevEnd := 0
	for i, c := range chunks {
		meta := c.Metadata.(*SemanticMeta)
		if meta.TokenStart != prevEnd {
			t.Errorf("Chunk %d: expected token_start %d, got %d", i, prevEnd, meta.TokenStart)
		}
		if meta.TokenEnd-meta.TokenStart != c.TokenCount {
			t.Errorf("Chunk %d: span does not match token_count", i)
		}
		prevEnd = meta.TokenEnd
	}
}

func TestSemanticChunker_MaxBound(t *testing.T) {
	tok := mustTokenizer(t)
	maxSize := 40
	chunker, _ := NewSemanticChunker(tok, &SemanticChunkerConfig{
		TargetChunkSize: 25,
		MinChunkSize:    5,
		MaxChunkSize:    maxSize,
	}, nil)

	text := strings.Repeat("Short sentence here. Another short one follows. ", 20)
	chunks, err := chunker.Chunk(context.Background(), text)
	if err != nil {
		t.Fatalf("Chunk failed: %v", err)
	}

	// 多句组成的块不得超过硬上限
	for i, c := range chunks {
		meta := c.Metadata.(*SemanticMeta)
		if meta.SentenceCount > 1 && c.TokenCount > maxSize {
			t.Errorf("Chunk %d: %d tokens exceeds max %d with %d sentences",
				i, c.TokenCount, maxSize, meta.SentenceCount)
		}
	}
}

func TestSemanticChunker_OversizedSentence(t *testing.T) {
	tok := mustTokenizer(t)
	chunker, _ := NewSemanticChunker(tok, &SemanticChunkerConfig{
		TargetChunkSize: 10,
		MinChunkSize:    2,
		MaxChunkSize:    15,
	}, nil)

	// 一整句没有边界标点，超过上限也必须整句产出
	text := strings.Repeat("word ", 100)
	chunks, err := chunker.Chunk(context.Background(), text)
	if err != nil {
		t.Fatalf("Chunk failed: %v", err)
	}

	if len(chunks) != 1 {
		t.Fatalf("Expected 1 oversized chunk, got %d", len(chunks))
	}

	meta := chunks[0].Metadata.(*SemanticMeta)
	if meta.SentenceCount != 1 {
		t.Errorf("Expected sentence_count 1, got %d", meta.SentenceCount)
	}
	if chunks[0].TokenCount <= 15 {
		t.Errorf("Expected chunk to exceed max size, got %d tokens", chunks[0].TokenCount)
	}
}

func TestSemanticChunker_FinalFlushUnderMin(t *testing.T) {
	tok := mustTokenizer(t)
	chunker, _ := NewSemanticChunker(tok, &SemanticChunkerConfig{
		TargetChunkSize: 100,
		MinChunkSize:    50,
		MaxChunkSize:    150,
	}, nil)

	// 全文远小于 minChunkSize，仍要产出最后一块
	text := "One tiny sentence."
	chunks, err := chunker.Chunk(context.Background(), text)
	if err != nil {
		t.Fatalf("Chunk failed: %v", err)
	}

	if len(chunks) != 1 {
		t.Fatalf("Expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].TokenCount >= 50 {
		t.Errorf("Expected final chunk below min size, got %d tokens", chunks[0].TokenCount)
	}
}

func TestSemanticChunker_EmptyInput(t *testing.T) {
	tok := mustTokenizer(t)
	chunker, _ := NewSemanticChunker(tok, nil, nil)

	chunks, err := chunker.Chunk(context.Background(), "  \n ")
	if err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
	if chunks == nil || len(chunks) != 0 {
		t.Errorf("Expected empty non-nil slice, got %v", chunks)
	}
}

func TestSemanticChunker_InvalidConfig(t *testing.T) {
	tok := mustTokenizer(t)

	tests := []struct {
		name string
		cfg  *SemanticChunkerConfig
	}{
		{"zero target", &SemanticChunkerConfig{TargetChunkSize: 0, MinChunkSize: 10, MaxChunkSize: 50}},
		{"zero max", &SemanticChunkerConfig{TargetChunkSize: 30, MinChunkSize: 10, MaxChunkSize: 0}},
		{"min above max", &SemanticChunkerConfig{TargetChunkSize: 30, MinChunkSize: 60, MaxChunkSize: 50}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSemanticChunker(tok, tt.cfg, nil)
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			if apperrors.ExtractCode(err) != apperrors.ErrChunkInvalidConfig {
				t.Errorf("Expected code %d, got %d", apperrors.ErrChunkInvalidConfig, apperrors.ExtractCode(err))
			}
		})
	}
}

func collectTexts(chunks []*Chunk) []string {
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	return texts
}
