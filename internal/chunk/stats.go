package chunk

// Stats 一次分块运行的汇总统计
type Stats struct {
	NumChunks         int     `json:"num_chunks"`
	TotalTokens       int     `json:"total_tokens"`
	AvgTokensPerChunk float64 `json:"avg_tokens_per_chunk"`
	MinTokens         int     `json:"min_tokens"`
	MaxTokens         int     `json:"max_tokens"`
	AvgCharsPerChunk  float64 `json:"avg_chars_per_chunk"`
	TotalChars        int     `json:"total_chars"`
}

// ComputeStats 计算分块统计。空输入返回零值
func ComputeStats(chunks []*Chunk) *Stats {
	if len(chunks) == 0 {
		return &Stats{}
	}

	stats := &Stats{
		NumChunks: len(chunks),
		MinTokens: chunks[0].TokenCount,
		MaxTokens: chunks[0].TokenCount,
	}

	for _, c := range chunks {
		stats.TotalTokens += c.TokenCount
		stats.TotalChars += len(c.Text)

		if c.TokenCount < stats.MinTokens {
			stats.MinTokens = c.TokenCount
		}
		if c.TokenCount > stats.MaxTokens {
			stats.MaxTokens = c.TokenCount
		}
	}

	stats.AvgTokensPerChunk = float64(stats.TotalTokens) / float64(len(chunks))
	stats.AvgCharsPerChunk = float64(stats.TotalChars) / float64(len(chunks))

	return stats
}
