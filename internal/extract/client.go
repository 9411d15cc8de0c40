package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	apperrors "github.com/lk2023060901/chunkbench/internal/pkg/errors"
)

// DefaultBaseURL Anthropic API 地址
const DefaultBaseURL = "https://api.anthropic.com"

// DefaultModel 默认抽取模型
const DefaultModel = "claude-sonnet-4-5-20250929"

// Message 模型的一次应答
type Message struct {
	Text         string
	StopReason   string
	InputTokens  int
	OutputTokens int
}

// MessageClient 大模型消息接口，便于测试替换
type MessageClient interface {
	CreateMessage(ctx context.Context, prompt string) (*Message, error)
}

// AnthropicClient Anthropic Messages API 客户端
type AnthropicClient struct {
	apiKey    string
	baseURL   string
	model     string
	maxTokens int
	client    *http.Client
}

// AnthropicClientConfig 客户端配置
type AnthropicClientConfig struct {
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int
	Timeout   time.Duration
}

// NewAnthropicClient 创建 Anthropic 客户端
func NewAnthropicClient(cfg *AnthropicClientConfig) (*AnthropicClient, error) {
	if cfg == nil || cfg.APIKey == "" {
		return nil, apperrors.NewConfigurationError("anthropic api key is required")
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 4096
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 120 * time.Second
	}

	return &AnthropicClient{
		apiKey:    cfg.APIKey,
		baseURL:   cfg.BaseURL,
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		client:    &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// Anthropic 内部请求结构
type anthropicRequest struct {
	Model       string             `json:"model"`
	Messages    []anthropicMessage `json:"messages"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float64            `json:"temperature"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Anthropic 内部响应结构
type anthropicResponse struct {
	Content    []anthropicContent `json:"content"`
	StopReason string             `json:"stop_reason"`
	Usage      anthropicUsage     `json:"usage"`
}

type anthropicContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type anthropicUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// CreateMessage 发送一条用户消息并返回应答。抽取任务要求确定性，
// temperature 固定为 0
func (c *AnthropicClient) CreateMessage(ctx context.Context, prompt string) (*Message, error) {
	reqBody, err := json.Marshal(anthropicRequest{
		Model:       c.model,
		MaxTokens:   c.maxTokens,
		Temperature: 0,
		Messages: []anthropicMessage{
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrExtractionFailed, "marshal request failed")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrExtractionFailed, "create request failed")
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", "2023-06-01")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrExtractionFailed, "request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrExtractionFailed, "read response failed")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.New(apperrors.ErrExtractionFailed,
			fmt.Sprintf("api returned status %d: %s", resp.StatusCode, string(body)))
	}

	var apiResp anthropicResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrExtractionBadResponse, "unmarshal response failed")
	}

	if len(apiResp.Content) == 0 {
		return nil, apperrors.New(apperrors.ErrExtractionBadResponse, "empty response content")
	}

	return &Message{
		Text:         apiResp.Content[0].Text,
		StopReason:   apiResp.StopReason,
		InputTokens:  apiResp.Usage.InputTokens,
		OutputTokens: apiResp.Usage.OutputTokens,
	}, nil
}
