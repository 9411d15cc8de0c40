package chunk

import "strings"

// modelPricing 每 token 的美元单价
type modelPricing struct {
	Input  float64
	Output float64
}

// 主流模型定价表（每 token）
var pricingTable = map[string]modelPricing{
	"claude-sonnet-4": {Input: 0.000003, Output: 0.000015},
	"claude-opus-4":   {Input: 0.000015, Output: 0.000075},
	"claude-haiku":    {Input: 0.00000025, Output: 0.00000125},
}

// DefaultCostModel 成本估算的默认模型
const DefaultCostModel = "claude-sonnet-4"

// CostEstimate 处理一段文本的 API 成本估算
type CostEstimate struct {
	InputTokens           int     `json:"input_tokens"`
	EstimatedOutputTokens int     `json:"estimated_output_tokens"`
	InputCost             float64 `json:"input_cost"`
	OutputCost            float64 `json:"output_cost"`
	TotalCost             float64 `json:"total_cost"`
	CostPer1KTokens       float64 `json:"cost_per_1k_tokens"`
}

// TextAnalysis 文本的 token 构成分析
type TextAnalysis struct {
	Label         string  `json:"label"`
	Characters    int     `json:"characters"`
	Lines         int     `json:"lines"`
	Words         int     `json:"words"`
	Tokens        int     `json:"tokens"`
	CharsPerToken float64 `json:"chars_per_token"`
	TokensPerWord float64 `json:"tokens_per_word"`
}

// EstimateCost 估算用指定模型处理文本的成本。
// 抽取类任务的输出按输入的 20% 估算。未知模型按默认模型计价
func (t *Tokenizer) EstimateCost(text, model string) *CostEstimate {
	rates, ok := pricingTable[model]
	if !ok {
		rates = pricingTable[DefaultCostModel]
	}

	tokens := t.Count(text)
	outputTokens := tokens * 20 / 100

	estimate := &CostEstimate{
		InputTokens:           tokens,
		EstimatedOutputTokens: outputTokens,
		InputCost:             float64(tokens) * rates.Input,
		OutputCost:            float64(outputTokens) * rates.Output,
	}
	estimate.TotalCost = estimate.InputCost + estimate.OutputCost

	if tokens > 0 {
		estimate.CostPer1KTokens = estimate.TotalCost / float64(tokens) * 1000
	}

	return estimate
}

// Analyze 统计文本的字符、行、词与 token 构成
func (t *Tokenizer) Analyze(text, label string) *TextAnalysis {
	tokens := t.Count(text)
	words := len(strings.Fields(text))

	analysis := &TextAnalysis{
		Label:      label,
		Characters: len(text),
		Lines:      len(strings.Split(text, "\n")),
		Words:      words,
		Tokens:     tokens,
	}

	if tokens > 0 {
		analysis.CharsPerToken = float64(analysis.Characters) / float64(tokens)
	}
	if words > 0 {
		analysis.TokensPerWord = float64(tokens) / float64(words)
	}

	return analysis
}
