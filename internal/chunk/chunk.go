package chunk

import (
	"context"
)

// Strategy 分块策略标识
type Strategy string

const (
	StrategyFixed        Strategy = "fixed"
	StrategySemantic     Strategy = "semantic"
	StrategyHierarchical Strategy = "hierarchical"
)

// Chunk 文本分块值对象，由分块器创建后不再修改
type Chunk struct {
	ID         int    // 同一次分块运行内从 0 开始单调递增
	Text       string // 块内容
	StartChar  int    // 在原文中的近似起始字符位置（线性插值）
	EndChar    int    // 在原文中的近似结束字符位置
	TokenCount int    // Token 数量，创建时等于 len(tokenize(Text))
	Metadata   Metadata
}

// Metadata 策略相关的分块元数据。内部使用封闭的结构体，
// 跨越存储边界时通过 ToMap 转换为开放映射
type Metadata interface {
	// Strategy 返回产生该分块的策略
	Strategy() Strategy

	// ToMap 转换为存储边界使用的开放映射
	ToMap() map[string]interface{}
}

// Chunker 文本分块接口
type Chunker interface {
	// Chunk 将文本分块。空文本或纯空白文本返回空切片
	Chunk(ctx context.Context, text string) ([]*Chunk, error)

	// Strategy 返回分块策略
	Strategy() Strategy
}

// FixedMeta 固定大小分块的元数据
type FixedMeta struct {
	ChunkSize     int // 配置的块大小
	OverlapTokens int // 与前一块的重叠 token 数（首块为 0）
	TokenStart    int // 在原文 token 流中的起始位置
	TokenEnd      int // 在原文 token 流中的结束位置
}

func (m *FixedMeta) Strategy() Strategy { return StrategyFixed }

func (m *FixedMeta) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"strategy":       string(StrategyFixed),
		"chunk_size":     m.ChunkSize,
		"overlap_tokens": m.OverlapTokens,
		"token_start":    m.TokenStart,
		"token_end":      m.TokenEnd,
	}
}

// SemanticMeta 语义分块的元数据
type SemanticMeta struct {
	SentenceCount int // 该块包含的句子数量
	TargetSize    int // 配置的目标块大小
	TokenStart    int // 按块 token 数累计的起始位置
	TokenEnd      int
}

func (m *SemanticMeta) Strategy() Strategy { return StrategySemantic }

func (m *SemanticMeta) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"strategy":       string(StrategySemantic),
		"sentence_count": m.SentenceCount,
		"target_size":    m.TargetSize,
		"token_start":    m.TokenStart,
		"token_end":      m.TokenEnd,
	}
}

// HierarchicalMeta 层级分块的元数据。父块全文只随元数据传递，
// 用于下游上下文拼装，本身不做向量化
type HierarchicalMeta struct {
	ParentID         int    // 父块序号（从 0 开始递增）
	ChildIDInParent  int    // 在父块内的子块序号（每个父块重新从 0 开始）
	ParentText       string // 父块全文
	ParentTokenCount int    // 父块 token 数量
	ChildSize        int    // 配置的子块大小
	TokenStart       int    // 在原文 token 流中的起始位置（父偏移 + 子偏移）
	TokenEnd         int
}

func (m *HierarchicalMeta) Strategy() Strategy { return StrategyHierarchical }

func (m *HierarchicalMeta) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"strategy":           string(StrategyHierarchical),
		"parent_id":          m.ParentID,
		"child_id_in_parent": m.ChildIDInParent,
		"parent_text":        m.ParentText,
		"parent_token_count": m.ParentTokenCount,
		"child_size":         m.ChildSize,
		"token_start":        m.TokenStart,
		"token_end":          m.TokenEnd,
	}
}
