package retrieval

import (
	"context"
	"testing"

	"github.com/lk2023060901/chunkbench/internal/vectorstore"
)

// fakeEmbedder 按查询文本返回固定向量
type fakeEmbedder struct{}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return []float32{float32(len(text)), 1}, nil
}

func (f *fakeEmbedder) BatchEmbed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = []float32{float32(len(t)), 1}
	}
	return out, nil
}

func (f *fakeEmbedder) Dimension() int { return 2 }
func (f *fakeEmbedder) Model() string  { return "fake" }

// fakeStore 按预设的查询到结果映射应答检索
type fakeStore struct {
	// 每次 Search 调用依次弹出一组结果
	resultQueue [][]*vectorstore.SearchResult
	upserted    map[string][]*vectorstore.VectorData
	resets      []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{upserted: make(map[string][]*vectorstore.VectorData)}
}

func (s *fakeStore) EnsureCollection(ctx context.Context, collection string, dimension int) error {
	return nil
}

func (s *fakeStore) Reset(ctx context.Context, collection string, dimension int) error {
	s.resets = append(s.resets, collection)
	s.upserted[collection] = nil
	return nil
}

func (s *fakeStore) Exists(ctx context.Context, collection string) (bool, error) {
	return true, nil
}

func (s *fakeStore) BatchUpsert(ctx context.Context, collection string, data []*vectorstore.VectorData) error {
	s.upserted[collection] = append(s.upserted[collection], data...)
	return nil
}

func (s *fakeStore) Search(ctx context.Context, collection string, vector []float32, topK int) ([]*vectorstore.SearchResult, error) {
	if len(s.resultQueue) == 0 {
		return []*vectorstore.SearchResult{}, nil
	}
	results := s.resultQueue[0]
	s.resultQueue = s.resultQueue[1:]
	return results, nil
}

func (s *fakeStore) Count(ctx context.Context, collection string) (int64, error) {
	return int64(len(s.upserted[collection])), nil
}

func hit(chunkID int, entityID, text string, distance float32) *vectorstore.SearchResult {
	return &vectorstore.SearchResult{
		ChunkID:  entityID,
		Text:     text,
		Distance: distance,
		Metadata: map[string]interface{}{"chunk_id": float64(chunkID)},
	}
}

func TestRetrieveMultiQuery_DedupKeepsFirst(t *testing.T) {
	store := newFakeStore()
	// 第二个查询对 chunk 5 给出了更近的距离，但聚合保留第一次命中
	store.resultQueue = [][]*vectorstore.SearchResult{
		{hit(5, "chunk_5", "shared chunk", 0.4), hit(2, "chunk_2", "early chunk", 0.1)},
		{hit(5, "chunk_5", "shared chunk", 0.05), hit(9, "chunk_9", "late chunk", 0.3)},
	}

	retriever, err := NewRetriever(&fakeEmbedder{}, store, nil)
	if err != nil {
		t.Fatalf("NewRetriever failed: %v", err)
	}

	chunks, err := retriever.RetrieveMultiQuery(context.Background(), "col", []string{"q1", "q2"}, 2)
	if err != nil {
		t.Fatalf("RetrieveMultiQuery failed: %v", err)
	}

	if len(chunks) != 3 {
		t.Fatalf("Expected 3 unique chunks, got %d", len(chunks))
	}

	// 按 chunk_id 升序，即文档顺序
	expectedOrder := []int{2, 5, 9}
	for i, c := range chunks {
		if c.ChunkID != expectedOrder[i] {
			t.Errorf("Position %d: expected chunk %d, got %d", i, expectedOrder[i], c.ChunkID)
		}
	}

	// chunk 5 保留首个查询的距离 0.4，并记录两个查询
	for _, c := range chunks {
		if c.ChunkID == 5 {
			if c.Distance != 0.4 {
				t.Errorf("Expected first-hit distance 0.4, got %f", c.Distance)
			}
			if len(c.Queries) != 2 {
				t.Errorf("Expected 2 queries for shared chunk, got %d", len(c.Queries))
			}
		}
	}
}

func TestRetrieveMultiQuery_SingleQueryOrdering(t *testing.T) {
	store := newFakeStore()
	// 检索按距离返回，聚合必须重排为文档顺序
	store.resultQueue = [][]*vectorstore.SearchResult{
		{hit(7, "chunk_7", "seventh", 0.1), hit(1, "chunk_1", "first", 0.2), hit(4, "chunk_4", "fourth", 0.3)},
	}

	retriever, _ := NewRetriever(&fakeEmbedder{}, store, nil)

	chunks, err := retriever.RetrieveMultiQuery(context.Background(), "col", []string{"q"}, 3)
	if err != nil {
		t.Fatalf("RetrieveMultiQuery failed: %v", err)
	}

	if len(chunks) != 3 {
		t.Fatalf("Expected 3 chunks, got %d", len(chunks))
	}
	if chunks[0].ChunkID != 1 || chunks[1].ChunkID != 4 || chunks[2].ChunkID != 7 {
		t.Errorf("Chunks not in document order: %d, %d, %d",
			chunks[0].ChunkID, chunks[1].ChunkID, chunks[2].ChunkID)
	}
}

func TestRetrieveMultiQuery_SingleQueryMatchesRetrieve(t *testing.T) {
	results := []*vectorstore.SearchResult{
		hit(7, "chunk_7", "seventh", 0.1),
		hit(1, "chunk_1", "first", 0.2),
	}

	direct := newFakeStore()
	direct.resultQueue = [][]*vectorstore.SearchResult{results}
	multi := newFakeStore()
	multi.resultQueue = [][]*vectorstore.SearchResult{results}

	directRetriever, _ := NewRetriever(&fakeEmbedder{}, direct, nil)
	multiRetriever, _ := NewRetriever(&fakeEmbedder{}, multi, nil)

	singleResults, err := directRetriever.Retrieve(context.Background(), "col", "q", 2)
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}

	chunks, err := multiRetriever.RetrieveMultiQuery(context.Background(), "col", []string{"q"}, 2)
	if err != nil {
		t.Fatalf("RetrieveMultiQuery failed: %v", err)
	}

	// 单查询的聚合结果必须与直接检索覆盖同一组分块
	if len(chunks) != len(singleResults) {
		t.Fatalf("Expected %d chunks, got %d", len(singleResults), len(chunks))
	}

	got := make(map[string]bool, len(chunks))
	for _, c := range chunks {
		got[c.EntityID] = true
	}
	for _, r := range singleResults {
		if !got[r.ChunkID] {
			t.Errorf("Chunk %s missing from multi-query result", r.ChunkID)
		}
	}
}

func TestRetrieveMultiQuery_EmptyQueries(t *testing.T) {
	retriever, _ := NewRetriever(&fakeEmbedder{}, newFakeStore(), nil)

	chunks, err := retriever.RetrieveMultiQuery(context.Background(), "col", nil, 5)
	if err != nil {
		t.Fatalf("RetrieveMultiQuery failed: %v", err)
	}
	if len(chunks) != 0 {
		t.Errorf("Expected no chunks, got %d", len(chunks))
	}
}

func TestRetrieveMultiQuery_EmptyResults(t *testing.T) {
	retriever, _ := NewRetriever(&fakeEmbedder{}, newFakeStore(), nil)

	chunks, err := retriever.RetrieveMultiQuery(context.Background(), "col", []string{"q1", "q2"}, 5)
	if err != nil {
		t.Fatalf("RetrieveMultiQuery failed: %v", err)
	}
	if chunks == nil || len(chunks) != 0 {
		t.Errorf("Expected empty non-nil slice, got %v", chunks)
	}
}

func TestRetrieveMultiQuery_FallbackToEntityID(t *testing.T) {
	store := newFakeStore()
	// 元数据缺少 chunk_id 时从主键解析
	store.resultQueue = [][]*vectorstore.SearchResult{
		{
			{ChunkID: "chunk_3", Text: "three", Distance: 0.1, Metadata: map[string]interface{}{}},
			{ChunkID: "chunk_0", Text: "zero", Distance: 0.2, Metadata: nil},
		},
	}

	retriever, _ := NewRetriever(&fakeEmbedder{}, store, nil)

	chunks, err := retriever.RetrieveMultiQuery(context.Background(), "col", []string{"q"}, 2)
	if err != nil {
		t.Fatalf("RetrieveMultiQuery failed: %v", err)
	}

	if len(chunks) != 2 {
		t.Fatalf("Expected 2 chunks, got %d", len(chunks))
	}
	if chunks[0].ChunkID != 0 || chunks[1].ChunkID != 3 {
		t.Errorf("Unexpected order: %d, %d", chunks[0].ChunkID, chunks[1].ChunkID)
	}
}

func TestCombinedContext(t *testing.T) {
	chunks := []*RetrievedChunk{
		{ChunkID: 0, Text: "first part"},
		{ChunkID: 3, Text: "second part"},
	}

	combined := CombinedContext(chunks)
	expected := "first part\n\n---\n\nsecond part"
	if combined != expected {
		t.Errorf("Expected %q, got %q", expected, combined)
	}

	if CombinedContext(nil) != "" {
		t.Error("Expected empty context for no chunks")
	}
}
