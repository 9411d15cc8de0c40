package milvus

import "time"

// IndexType 索引类型
type IndexType string

const (
	IndexTypeFlat      IndexType = "FLAT"
	IndexTypeIVFFlat   IndexType = "IVF_FLAT"
	IndexTypeHNSW      IndexType = "HNSW"
	IndexTypeAutoIndex IndexType = "AUTOINDEX"
)

func (it IndexType) String() string {
	return string(it)
}

// MetricType 距离度量类型
type MetricType string

const (
	MetricTypeL2     MetricType = "L2"
	MetricTypeIP     MetricType = "IP"
	MetricTypeCosine MetricType = "COSINE"
)

func (mt MetricType) String() string {
	return string(mt)
}

// 默认值
const (
	DefaultRetries          = 3
	DefaultRetryDelay       = time.Second
	MaxCollectionNameLength = 255
)
