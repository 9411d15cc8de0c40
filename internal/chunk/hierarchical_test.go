package chunk

import (
	"context"
	"strings"
	"testing"

	apperrors "github.com/lk2023060901/chunkbench/internal/pkg/errors"
)

func TestHierarchicalChunker_Structure(t *testing.T) {
	tok := mustTokenizer(t)
	chunker, err := NewHierarchicalChunker(tok, &HierarchicalChunkerConfig{
		ParentChunkSize: 100,
		ChildChunkSize:  30,
	}, nil)
	if err != nil {
		t.Fatalf("NewHierarchicalChunker failed: %v", err)
	}

	text := strings.Repeat("Hierarchical chunking keeps small pieces searchable and large context handy. ", 40)
	totalTokens := tok.Count(text)

	chunks, err := chunker.Chunk(context.Background(), text)
	if err != nil {
		t.Fatalf("Chunk failed: %v", err)
	}

	if len(chunks) == 0 {
		t.Fatal("Expected chunks, got none")
	}

	// 全局子块 ID 连续递增
	for i, c := range chunks {
		if c.ID != i {
			t.Errorf("Chunk %d: expected global ID %d, got %d", i, i, c.ID)
		}
	}

	// 每个父块内的子块跨度首尾相接，铺满整个父块
	parentSpans := make(map[int][2]int)
	parentTexts := make(map[int]string)
	prevParent := -1
	prevChildInParent := -1
	prevEnd := 0

	for i, c := range chunks {
		meta, ok := c.Metadata.(*HierarchicalMeta)
		if !ok {
			t.Fatalf("Chunk %d: expected *HierarchicalMeta, got %T", i, c.Metadata)
		}

		if meta.ParentID != prevParent {
			// 新父块：子块序号从 0 重新计数，跨度从父块起点开始
			if meta.ChildIDInParent != 0 {
				t.Errorf("Chunk %d: expected child_id_in_parent 0 at parent start, got %d", i, meta.ChildIDInParent)
			}
			if meta.TokenStart != meta.ParentID*100 {
				t.Errorf("Chunk %d: expected token_start %d, got %d", i, meta.ParentID*100, meta.TokenStart)
			}
			prevParent = meta.ParentID
		} else {
			if meta.ChildIDInParent != prevChildInParent+1 {
				t.Errorf("Chunk %d: expected child_id_in_parent %d, got %d", i, prevChildInParent+1, meta.ChildIDInParent)
			}
			if meta.TokenStart != prevEnd {
				t.Errorf("Chunk %d: expected token_start %d, got %d", i, prevEnd, meta.TokenStart)
			}
		}

		if c.TokenCount != meta.TokenEnd-meta.TokenStart {
			t.Errorf("Chunk %d: token_count %d does not match span [%d, %d)",
				i, c.TokenCount, meta.TokenStart, meta.TokenEnd)
		}

		// 同一个父块的所有子块携带相同的父块全文
		if existing, ok := parentTexts[meta.ParentID]; ok {
			if existing != meta.ParentText {
				t.Errorf("Chunk %d: parent_text differs within parent %d", i, meta.ParentID)
			}
		} else {
			parentTexts[meta.ParentID] = meta.ParentText
		}

		span := parentSpans[meta.ParentID]
		if span == [2]int{} {
			span = [2]int{meta.TokenStart, meta.TokenEnd}
		} else {
			if meta.TokenEnd > span[1] {
				span[1] = meta.TokenEnd
			}
		}
		parentSpans[meta.ParentID] = span

		prevChildInParent = meta.ChildIDInParent
		prevEnd = meta.TokenEnd
	}

	// 父块数量等于 ceil(total/parentSize)
	expectedParents := (totalTokens + 99) / 100
	if len(parentSpans) != expectedParents {
		t.Errorf("Expected %d parents, got %d", expectedParents, len(parentSpans))
	}

	// 最后一个子块覆盖到文档末尾
	last := chunks[len(chunks)-1].Metadata.(*HierarchicalMeta)
	if last.TokenEnd != totalTokens {
		t.Errorf("Expected last token_end %d, got %d", totalTokens, last.TokenEnd)
	}

	// 父块 token 数不超过配置大小
	for i, c := range chunks {
		meta := c.Metadata.(*HierarchicalMeta)
		if meta.ParentTokenCount <= 0 || meta.ParentTokenCount > 100 {
			t.Errorf("Chunk %d: parent_token_count %d out of range", i, meta.ParentTokenCount)
		}
		if meta.ParentText == "" {
			t.Errorf("Chunk %d: empty parent_text", i)
		}
	}
}

func TestHierarchicalChunker_SmallDocument(t *testing.T) {
	tok := mustTokenizer(t)
	chunker, _ := NewHierarchicalChunker(tok, &HierarchicalChunkerConfig{
		ParentChunkSize: 1000,
		ChildChunkSize:  300,
	}, nil)

	// 文档比子块还小：一个父块一个子块
	text := "Tiny document."
	chunks, err := chunker.Chunk(context.Background(), text)
	if err != nil {
		t.Fatalf("Chunk failed: %v", err)
	}

	if len(chunks) != 1 {
		t.Fatalf("Expected 1 chunk, got %d", len(chunks))
	}

	meta := chunks[0].Metadata.(*HierarchicalMeta)
	if meta.ParentID != 0 || meta.ChildIDInParent != 0 {
		t.Errorf("Expected parent 0 child 0, got parent %d child %d", meta.ParentID, meta.ChildIDInParent)
	}
}

func TestHierarchicalChunker_EmptyInput(t *testing.T) {
	tok := mustTokenizer(t)
	chunker, _ := NewHierarchicalChunker(tok, nil, nil)

	chunks, err := chunker.Chunk(context.Background(), "\t \n")
	if err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
	if chunks == nil || len(chunks) != 0 {
		t.Errorf("Expected empty non-nil slice, got %v", chunks)
	}
}

func TestHierarchicalChunker_InvalidConfig(t *testing.T) {
	tok := mustTokenizer(t)

	tests := []struct {
		name string
		cfg  *HierarchicalChunkerConfig
	}{
		{"zero child", &HierarchicalChunkerConfig{ParentChunkSize: 1000, ChildChunkSize: 0}},
		{"parent equals child", &HierarchicalChunkerConfig{ParentChunkSize: 300, ChildChunkSize: 300}},
		{"parent below child", &HierarchicalChunkerConfig{ParentChunkSize: 100, ChildChunkSize: 300}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewHierarchicalChunker(tok, tt.cfg, nil)
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			if apperrors.ExtractCode(err) != apperrors.ErrChunkInvalidConfig {
				t.Errorf("Expected code %d, got %d", apperrors.ErrChunkInvalidConfig, apperrors.ExtractCode(err))
			}
		})
	}
}
