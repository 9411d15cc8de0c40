package chunk

import (
	"github.com/pkoukk/tiktoken-go"

	apperrors "github.com/lk2023060901/chunkbench/internal/pkg/errors"
)

// DefaultEncoding 默认编码方式（OpenAI cl100k_base）
const DefaultEncoding = "cl100k_base"

// Tokenizer tiktoken 编码器适配。所有分块器与成本估算必须共享
// 同一个实例，保证 token 计数可比
type Tokenizer struct {
	encoding *tiktoken.Tiktoken
	name     string
}

// NewTokenizer 创建 Tokenizer。encodingName 为空时使用 cl100k_base
func NewTokenizer(encodingName string) (*Tokenizer, error) {
	if encodingName == "" {
		encodingName = DefaultEncoding
	}

	encoding, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		return nil, apperrors.NewTokenizationError(err)
	}

	return &Tokenizer{
		encoding: encoding,
		name:     encodingName,
	}, nil
}

// Encode 将文本编码为 token id 序列
func (t *Tokenizer) Encode(text string) []int {
	return t.encoding.Encode(text, nil, nil)
}

// Decode 将 token id 序列解码为文本
func (t *Tokenizer) Decode(ids []int) string {
	return t.encoding.Decode(ids)
}

// Count 返回文本的 token 数量
func (t *Tokenizer) Count(text string) int {
	return len(t.encoding.Encode(text, nil, nil))
}

// Name 返回编码方式名称
func (t *Tokenizer) Name() string {
	return t.name
}
