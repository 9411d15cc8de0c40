package conf

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Tokenizer TokenizerConfig `mapstructure:"tokenizer"`
	Chunking  ChunkingConfig  `mapstructure:"chunking"`
	Milvus    MilvusConfig    `mapstructure:"milvus"`
	Embedding EmbeddingConfig `mapstructure:"embedding"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Extractor ExtractorConfig `mapstructure:"extractor"`
	Retrieval RetrievalConfig `mapstructure:"retrieval"`
	Log       LogConfig       `mapstructure:"log"`
}

type TokenizerConfig struct {
	Encoding string `mapstructure:"encoding"` // 默认 cl100k_base
}

type ChunkingConfig struct {
	Fixed        FixedChunkConfig        `mapstructure:"fixed"`
	Semantic     SemanticChunkConfig     `mapstructure:"semantic"`
	Hierarchical HierarchicalChunkConfig `mapstructure:"hierarchical"`
}

type FixedChunkConfig struct {
	ChunkSize         int     `mapstructure:"chunk_size"`
	OverlapPercentage float64 `mapstructure:"overlap_percentage"`
}

type SemanticChunkConfig struct {
	TargetChunkSize int `mapstructure:"target_chunk_size"`
	MinChunkSize    int `mapstructure:"min_chunk_size"`
	MaxChunkSize    int `mapstructure:"max_chunk_size"`
}

type HierarchicalChunkConfig struct {
	ParentSize int `mapstructure:"parent_size"`
	ChildSize  int `mapstructure:"child_size"`
}

type MilvusConfig struct {
	Address  string        `mapstructure:"address"`
	Username string        `mapstructure:"username"`
	Password string        `mapstructure:"password"`
	Database string        `mapstructure:"database"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type EmbeddingConfig struct {
	APIKey    string        `mapstructure:"api_key"`
	BaseURL   string        `mapstructure:"base_url"`
	Model     string        `mapstructure:"model"`
	Dimension int           `mapstructure:"dimension"`
	BatchSize int           `mapstructure:"batch_size"`
	Workers   int           `mapstructure:"workers"`
	CacheTTL  time.Duration `mapstructure:"cache_ttl"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Enabled  bool   `mapstructure:"enabled"`
}

type ExtractorConfig struct {
	APIKey    string `mapstructure:"api_key"`
	BaseURL   string `mapstructure:"base_url"`
	Model     string `mapstructure:"model"`
	MaxTokens int    `mapstructure:"max_tokens"`
}

type RetrievalConfig struct {
	TopKPerQuery int `mapstructure:"top_k_per_query"`
}

type LogConfig struct {
	Level            string        `mapstructure:"level"`
	Format           string        `mapstructure:"format"`
	Output           string        `mapstructure:"output"`
	File             FileLogConfig `mapstructure:"file"`
	EnableCaller     bool          `mapstructure:"enablecaller"`
	EnableStacktrace bool          `mapstructure:"enablestacktrace"`
}

type FileLogConfig struct {
	Filename   string `mapstructure:"filename"`
	MaxSize    int    `mapstructure:"maxsize"`
	MaxAge     int    `mapstructure:"maxage"`
	MaxBackups int    `mapstructure:"maxbackups"`
	Compress   bool   `mapstructure:"compress"`
}

func LoadConfig(path string) (*Config, error) {
	viper.SetConfigFile(path)
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate 加载后立即校验配置，参数非法时直接启动失败
func (c *Config) Validate() error {
	if c.Chunking.Fixed.ChunkSize <= 0 {
		return fmt.Errorf("chunking.fixed.chunk_size must be positive, got %d", c.Chunking.Fixed.ChunkSize)
	}
	if c.Chunking.Fixed.OverlapPercentage < 0 || c.Chunking.Fixed.OverlapPercentage >= 1 {
		return fmt.Errorf("chunking.fixed.overlap_percentage must be in [0, 1), got %f", c.Chunking.Fixed.OverlapPercentage)
	}
	if c.Chunking.Semantic.TargetChunkSize <= 0 || c.Chunking.Semantic.MaxChunkSize <= 0 {
		return fmt.Errorf("chunking.semantic sizes must be positive")
	}
	if c.Chunking.Semantic.MinChunkSize > c.Chunking.Semantic.MaxChunkSize {
		return fmt.Errorf("chunking.semantic.min_chunk_size %d exceeds max_chunk_size %d",
			c.Chunking.Semantic.MinChunkSize, c.Chunking.Semantic.MaxChunkSize)
	}
	if c.Chunking.Hierarchical.ChildSize <= 0 {
		return fmt.Errorf("chunking.hierarchical.child_size must be positive, got %d", c.Chunking.Hierarchical.ChildSize)
	}
	if c.Chunking.Hierarchical.ParentSize <= c.Chunking.Hierarchical.ChildSize {
		return fmt.Errorf("chunking.hierarchical.parent_size %d must exceed child_size %d",
			c.Chunking.Hierarchical.ParentSize, c.Chunking.Hierarchical.ChildSize)
	}
	if c.Retrieval.TopKPerQuery <= 0 {
		return fmt.Errorf("retrieval.top_k_per_query must be positive, got %d", c.Retrieval.TopKPerQuery)
	}
	if c.Embedding.Dimension <= 0 {
		return fmt.Errorf("embedding.dimension must be positive, got %d", c.Embedding.Dimension)
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Tokenizer.Encoding == "" {
		c.Tokenizer.Encoding = "cl100k_base"
	}
	if c.Chunking.Fixed.ChunkSize == 0 {
		c.Chunking.Fixed.ChunkSize = 300
		c.Chunking.Fixed.OverlapPercentage = 0.2
	}
	if c.Chunking.Semantic.TargetChunkSize == 0 {
		c.Chunking.Semantic.TargetChunkSize = 300
		c.Chunking.Semantic.MinChunkSize = 200
		c.Chunking.Semantic.MaxChunkSize = 500
	}
	if c.Chunking.Hierarchical.ParentSize == 0 {
		c.Chunking.Hierarchical.ParentSize = 1000
		c.Chunking.Hierarchical.ChildSize = 300
	}
	if c.Retrieval.TopKPerQuery == 0 {
		c.Retrieval.TopKPerQuery = 5
	}
	if c.Embedding.Model == "" {
		c.Embedding.Model = "text-embedding-3-small"
	}
	if c.Embedding.Dimension == 0 {
		c.Embedding.Dimension = 1536
	}
	if c.Embedding.BatchSize == 0 {
		c.Embedding.BatchSize = 32
	}
	if c.Embedding.Workers == 0 {
		c.Embedding.Workers = 4
	}
}
