package chunk

import (
	"testing"
)

func TestComputeStats(t *testing.T) {
	chunks := []*Chunk{
		{Text: "aaaa", TokenCount: 10},
		{Text: "bbbbbbbb", TokenCount: 20},
		{Text: "cc", TokenCount: 30},
	}

	stats := ComputeStats(chunks)

	if stats.NumChunks != 3 {
		t.Errorf("Expected 3 chunks, got %d", stats.NumChunks)
	}
	if stats.TotalTokens != 60 {
		t.Errorf("Expected 60 total tokens, got %d", stats.TotalTokens)
	}
	if stats.AvgTokensPerChunk != 20 {
		t.Errorf("Expected avg 20 tokens, got %f", stats.AvgTokensPerChunk)
	}
	if stats.MinTokens != 10 || stats.MaxTokens != 30 {
		t.Errorf("Expected min 10 max 30, got min %d max %d", stats.MinTokens, stats.MaxTokens)
	}
	if stats.TotalChars != 14 {
		t.Errorf("Expected 14 total chars, got %d", stats.TotalChars)
	}
}

func TestComputeStats_Empty(t *testing.T) {
	stats := ComputeStats(nil)
	if stats.NumChunks != 0 || stats.TotalTokens != 0 {
		t.Errorf("Expected zero stats, got %+v", stats)
	}
}

func TestEstimateCost(t *testing.T) {
	tok := mustTokenizer(t)
	text := "Estimate the processing cost of this sentence."

	estimate := tok.EstimateCost(text, "claude-sonnet-4")

	if estimate.InputTokens != tok.Count(text) {
		t.Errorf("Expected %d input tokens, got %d", tok.Count(text), estimate.InputTokens)
	}
	if estimate.EstimatedOutputTokens != estimate.InputTokens*20/100 {
		t.Errorf("Expected output tokens at 20%% of input, got %d", estimate.EstimatedOutputTokens)
	}
	if estimate.TotalCost != estimate.InputCost+estimate.OutputCost {
		t.Errorf("Total cost %f does not equal input %f + output %f",
			estimate.TotalCost, estimate.InputCost, estimate.OutputCost)
	}
	if estimate.InputCost <= 0 {
		t.Errorf("Expected positive input cost, got %f", estimate.InputCost)
	}
}

func TestEstimateCost_UnknownModelFallsBack(t *testing.T) {
	tok := mustTokenizer(t)
	text := "Same text, two models."

	known := tok.EstimateCost(text, "claude-sonnet-4")
	unknown := tok.EstimateCost(text, "some-future-model")

	if known.TotalCost != unknown.TotalCost {
		t.Errorf("Expected unknown model to use default pricing: %f vs %f",
			known.TotalCost, unknown.TotalCost)
	}
}

func TestAnalyze(t *testing.T) {
	tok := mustTokenizer(t)
	text := "one two three\nfour five"

	analysis := tok.Analyze(text, "sample")

	if analysis.Label != "sample" {
		t.Errorf("Expected label sample, got %q", analysis.Label)
	}
	if analysis.Words != 5 {
		t.Errorf("Expected 5 words, got %d", analysis.Words)
	}
	if analysis.Lines != 2 {
		t.Errorf("Expected 2 lines, got %d", analysis.Lines)
	}
	if analysis.Characters != len(text) {
		t.Errorf("Expected %d characters, got %d", len(text), analysis.Characters)
	}
	if analysis.Tokens <= 0 {
		t.Errorf("Expected positive token count, got %d", analysis.Tokens)
	}
}
