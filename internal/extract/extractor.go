package extract

import (
	"context"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	apperrors "github.com/lk2023060901/chunkbench/internal/pkg/errors"
	"github.com/lk2023060901/chunkbench/internal/pkg/logger"
	"github.com/lk2023060901/chunkbench/internal/retrieval"
)

// 模型每 token 的美元单价
const (
	inputCostPerToken  = 0.000003
	outputCostPerToken = 0.000015
)

// Usage 一次抽取调用的 token 与成本统计
type Usage struct {
	InputTokens  int     `json:"input_tokens"`
	OutputTokens int     `json:"output_tokens"`
	InputCost    float64 `json:"input_cost"`
	OutputCost   float64 `json:"output_cost"`
	TotalCost    float64 `json:"total_cost"`
}

// Result 结构化抽取结果
type Result struct {
	Fields        map[string]interface{} `json:"extraction"`
	Raw           string                 `json:"raw_response"`
	Usage         *Usage                 `json:"usage"`
	NumChunksUsed int                    `json:"num_chunks_used"`
	StopReason    string                 `json:"stop_reason"`
}

// Extractor 从检索出的分块上下文中抽取结构化字段
type Extractor struct {
	client MessageClient
	logger *logger.Logger
}

// NewExtractor 创建 Extractor
func NewExtractor(client MessageClient, lgr *logger.Logger) (*Extractor, error) {
	if client == nil {
		return nil, apperrors.NewConfigurationError("message client is required")
	}
	if lgr == nil {
		lgr = logger.L()
	}

	return &Extractor{
		client: client,
		logger: lgr,
	}, nil
}

// ExtractFromChunks 从聚合后的分块中抽取信贷协议条款。
// promptTemplate 为空时使用默认模板，模板中用 %s 占位上下文
func (e *Extractor) ExtractFromChunks(ctx context.Context, chunks []*retrieval.RetrievedChunk, promptTemplate string) (*Result, error) {
	context_ := combineChunks(chunks)

	var prompt string
	if promptTemplate == "" {
		prompt = buildDefaultPrompt(context_)
	} else {
		prompt = fmt.Sprintf(promptTemplate, context_)
	}

	return e.extract(ctx, prompt, len(chunks))
}

// ExtractFromText 直接从全文抽取，作为分块检索的基线对照
func (e *Extractor) ExtractFromText(ctx context.Context, text string) (*Result, error) {
	// 约 10 万 token 的粗略上限
	const maxChars = 400000
	if len(text) > maxChars {
		e.logger.Warn("truncating document for extraction",
			zap.Int("original_chars", len(text)),
			zap.Int("max_chars", maxChars))
		text = text[:maxChars]
	}

	return e.extract(ctx, buildDefaultPrompt(text), 0)
}

func (e *Extractor) extract(ctx context.Context, prompt string, numChunks int) (*Result, error) {
	msg, err := e.client.CreateMessage(ctx, prompt)
	if err != nil {
		return nil, err
	}

	fields, err := parseJSONResponse(msg.Text)
	if err != nil {
		return nil, err
	}

	usage := &Usage{
		InputTokens:  msg.InputTokens,
		OutputTokens: msg.OutputTokens,
		InputCost:    float64(msg.InputTokens) * inputCostPerToken,
		OutputCost:   float64(msg.OutputTokens) * outputCostPerToken,
	}
	usage.TotalCost = usage.InputCost + usage.OutputCost

	e.logger.Info("extraction completed",
		zap.Int("num_chunks", numChunks),
		zap.Int("input_tokens", usage.InputTokens),
		zap.Int("output_tokens", usage.OutputTokens),
		zap.Float64("total_cost", usage.TotalCost))

	return &Result{
		Fields:        fields,
		Raw:           msg.Text,
		Usage:         usage,
		NumChunksUsed: numChunks,
		StopReason:    msg.StopReason,
	}, nil
}

// combineChunks 把分块拼成带编号的上下文
func combineChunks(chunks []*retrieval.RetrievedChunk) string {
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = fmt.Sprintf("[Chunk %d]\n%s", i+1, c.Text)
	}
	return strings.Join(texts, "\n\n")
}

// buildDefaultPrompt 构建默认的条款抽取提示词
func buildDefaultPrompt(context string) string {
	return fmt.Sprintf(`Extract credit agreement terms from the following document chunks and return as JSON.

Extract these fields:
- borrower: {name, entity_type, jurisdiction}
- lender: [{name, role, commitment}] (array if multiple)
- loan_details: {total_amount, facility_type, purpose, currency}
- interest_terms: {base_rate, margin, total_rate, payment_frequency}
- maturity: {effective_date, maturity_date, term}
- fees: {origination_fee, commitment_fee}
- financial_covenants: [array of covenant descriptions]
- collateral: [array of collateral descriptions]

Document chunks:

%s

Return ONLY valid JSON with the extracted information. If a field is not found, use null.
`, context)
}

// parseJSONResponse 从模型应答中提取 JSON 对象。模型可能在 JSON
// 前后输出说明文字，取首个 { 到最后一个 } 之间的内容解析
func parseJSONResponse(text string) (map[string]interface{}, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")

	if start < 0 || end <= start {
		return nil, apperrors.New(apperrors.ErrExtractionBadResponse, "no JSON object in response")
	}

	candidate := text[start : end+1]
	if !gjson.Valid(candidate) {
		return nil, apperrors.New(apperrors.ErrExtractionBadResponse, "invalid JSON in response")
	}

	parsed, ok := gjson.Parse(candidate).Value().(map[string]interface{})
	if !ok {
		return nil, apperrors.New(apperrors.ErrExtractionBadResponse, "response JSON is not an object")
	}

	return parsed, nil
}
