package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/lk2023060901/chunkbench/internal/chunk"
	"github.com/lk2023060901/chunkbench/internal/conf"
	"github.com/lk2023060901/chunkbench/internal/embedding"
	"github.com/lk2023060901/chunkbench/internal/extract"
	"github.com/lk2023060901/chunkbench/internal/pkg/logger"
	"github.com/lk2023060901/chunkbench/internal/pkg/milvus"
	"github.com/lk2023060901/chunkbench/internal/pkg/redis"
	"github.com/lk2023060901/chunkbench/internal/retrieval"
	"github.com/lk2023060901/chunkbench/internal/vectorstore"
	"go.uber.org/zap"
)

var (
	configFile = flag.String("config", "config.yaml", "config file path")
	inputFile  = flag.String("file", "", "document text file to process")
	docName    = flag.String("doc", "", "collection name prefix, defaults to the input file name")
	runExtract = flag.Bool("extract", false, "run structured extraction on the retrieved context")
)

// 默认查询集，用于三种分块策略的检索对比
var defaultQueries = []string{
	"Who is the borrower and what is their entity type?",
	"Who is the lender?",
	"What is the total loan amount?",
	"What are the interest rate terms?",
	"What is the maturity date?",
}

func main() {
	flag.Parse()

	// Load configuration
	config, err := conf.LoadConfig(*configFile)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize logger with config
	logConfig := &logger.Config{
		Level:            config.Log.Level,
		Format:           config.Log.Format,
		Output:           config.Log.Output,
		EnableCaller:     config.Log.EnableCaller,
		EnableStacktrace: config.Log.EnableStacktrace,
		File: logger.FileConfig{
			Filename:   config.Log.File.Filename,
			MaxSize:    config.Log.File.MaxSize,
			MaxAge:     config.Log.File.MaxAge,
			MaxBackups: config.Log.File.MaxBackups,
			Compress:   config.Log.File.Compress,
		},
	}

	log, err := logger.New(logConfig)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer log.Sync()

	// Initialize global logger
	if err := logger.InitGlobal(logConfig); err != nil {
		log.Fatal("failed to initialize global logger", zap.Error(err))
	}

	if *inputFile == "" {
		log.Fatal("input file is required, pass -file <path>")
	}

	raw, err := os.ReadFile(*inputFile)
	if err != nil {
		log.Fatal("failed to read input file", zap.String("file", *inputFile), zap.Error(err))
	}
	text := string(raw)

	doc := *docName
	if doc == "" {
		base := filepath.Base(*inputFile)
		doc = strings.TrimSuffix(base, filepath.Ext(base))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize tokenizer and chunkers
	tokenizer, err := chunk.NewTokenizer(config.Tokenizer.Encoding)
	if err != nil {
		log.Fatal("failed to create tokenizer", zap.Error(err))
	}

	factory, err := chunk.NewFactory(tokenizer, &chunk.FactoryConfig{
		Fixed: &chunk.FixedChunkerConfig{
			ChunkSize:         config.Chunking.Fixed.ChunkSize,
			OverlapPercentage: config.Chunking.Fixed.OverlapPercentage,
		},
		Semantic: &chunk.SemanticChunkerConfig{
			TargetChunkSize: config.Chunking.Semantic.TargetChunkSize,
			MinChunkSize:    config.Chunking.Semantic.MinChunkSize,
			MaxChunkSize:    config.Chunking.Semantic.MaxChunkSize,
		},
		Hierarchical: &chunk.HierarchicalChunkerConfig{
			ParentChunkSize: config.Chunking.Hierarchical.ParentSize,
			ChildChunkSize:  config.Chunking.Hierarchical.ChildSize,
		},
	}, log)
	if err != nil {
		log.Fatal("failed to create chunker factory", zap.Error(err))
	}

	chunkers, err := factory.CreateAll()
	if err != nil {
		log.Fatal("failed to create chunkers", zap.Error(err))
	}

	runID := uuid.NewString()

	// Document profile and cost estimate before any API calls
	analysis := tokenizer.Analyze(text, doc)
	log.Info("document loaded",
		zap.String("run_id", runID),
		zap.String("doc", doc),
		zap.Int("characters", analysis.Characters),
		zap.Int("lines", analysis.Lines),
		zap.Int("words", analysis.Words),
		zap.Int("tokens", analysis.Tokens),
		zap.Float64("chars_per_token", analysis.CharsPerToken))

	estimate := tokenizer.EstimateCost(text, chunk.DefaultCostModel)
	log.Info("full document extraction cost estimate",
		zap.String("model", chunk.DefaultCostModel),
		zap.Int("input_tokens", estimate.InputTokens),
		zap.Float64("total_cost", estimate.TotalCost))

	// Initialize vector store
	milvusClient, err := milvus.New(ctx, &milvus.Config{
		Address:        config.Milvus.Address,
		Username:       config.Milvus.Username,
		Password:       config.Milvus.Password,
		Database:       config.Milvus.Database,
		RequestTimeout: config.Milvus.Timeout,
	}, log)
	if err != nil {
		log.Fatal("failed to connect to milvus", zap.Error(err))
	}
	defer milvusClient.Close(context.Background())

	store, err := vectorstore.NewMilvusStore(milvusClient, log)
	if err != nil {
		log.Fatal("failed to create vector store", zap.Error(err))
	}

	// Initialize embedder, optionally wrapped with a redis cache
	openaiEmbedder, err := embedding.NewOpenAIEmbedder(&embedding.OpenAIEmbedderConfig{
		APIKey:    config.Embedding.APIKey,
		BaseURL:   config.Embedding.BaseURL,
		Model:     config.Embedding.Model,
		Dimension: config.Embedding.Dimension,
		BatchSize: config.Embedding.BatchSize,
		Workers:   config.Embedding.Workers,
	}, log)
	if err != nil {
		log.Fatal("failed to create embedder", zap.Error(err))
	}
	defer openaiEmbedder.Close()

	var embedder embedding.Embedder = openaiEmbedder
	if config.Redis.Enabled {
		redisCfg := redis.DefaultConfig()
		redisCfg.Addr = config.Redis.Addr
		redisCfg.Password = config.Redis.Password
		redisCfg.DB = config.Redis.DB

		redisClient, err := redis.New(redisCfg, log)
		if err != nil {
			log.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer redisClient.Close()

		embedder = embedding.NewCacheEmbedder(openaiEmbedder, redisClient,
			&embedding.CacheEmbedderConfig{TTL: config.Embedding.CacheTTL}, log)
	}

	indexer, err := retrieval.NewIndexer(embedder, store, log)
	if err != nil {
		log.Fatal("failed to create indexer", zap.Error(err))
	}

	retriever, err := retrieval.NewRetriever(embedder, store, log)
	if err != nil {
		log.Fatal("failed to create retriever", zap.Error(err))
	}

	var extractor *extract.Extractor
	if *runExtract {
		client, err := extract.NewAnthropicClient(&extract.AnthropicClientConfig{
			APIKey:    config.Extractor.APIKey,
			BaseURL:   config.Extractor.BaseURL,
			Model:     config.Extractor.Model,
			MaxTokens: config.Extractor.MaxTokens,
		})
		if err != nil {
			log.Fatal("failed to create extraction client", zap.Error(err))
		}
		extractor, err = extract.NewExtractor(client, log)
		if err != nil {
			log.Fatal("failed to create extractor", zap.Error(err))
		}
	}

	// Run the full pipeline once per strategy so results are comparable
	strategies := []chunk.Strategy{chunk.StrategyFixed, chunk.StrategySemantic, chunk.StrategyHierarchical}
	for _, strategy := range strategies {
		if err := runStrategy(ctx, log, config, strategy, chunkers[strategy],
			doc, text, indexer, retriever, store, extractor); err != nil {
			log.Fatal("pipeline failed",
				zap.String("strategy", string(strategy)),
				zap.Error(err))
		}
	}

	log.Info("all strategies completed",
		zap.String("run_id", runID),
		zap.String("doc", doc))
}

// runStrategy 用单个策略完成分块、建库、检索，extractor 非 nil 时再做抽取
func runStrategy(
	ctx context.Context,
	log *logger.Logger,
	config *conf.Config,
	strategy chunk.Strategy,
	chunker chunk.Chunker,
	doc string,
	text string,
	indexer *retrieval.Indexer,
	retriever *retrieval.Retriever,
	store vectorstore.VectorStore,
	extractor *extract.Extractor,
) error {
	chunks, err := chunker.Chunk(ctx, text)
	if err != nil {
		return err
	}

	stats := chunk.ComputeStats(chunks)
	log.Info("chunking completed",
		zap.String("strategy", string(strategy)),
		zap.Int("num_chunks", stats.NumChunks),
		zap.Int("total_tokens", stats.TotalTokens),
		zap.Float64("avg_tokens", stats.AvgTokensPerChunk),
		zap.Int("min_tokens", stats.MinTokens),
		zap.Int("max_tokens", stats.MaxTokens))

	collection := fmt.Sprintf("%s_%s", doc, strategy)
	if err := indexer.Index(ctx, collection, chunks); err != nil {
		return err
	}

	count, err := store.Count(ctx, collection)
	if err != nil {
		return err
	}
	log.Info("collection indexed",
		zap.String("collection", collection),
		zap.Int64("entities", count))

	retrieved, err := retriever.RetrieveMultiQuery(ctx, collection, defaultQueries, config.Retrieval.TopKPerQuery)
	if err != nil {
		return err
	}
	log.Info("retrieval completed",
		zap.String("collection", collection),
		zap.Int("num_queries", len(defaultQueries)),
		zap.Int("unique_chunks", len(retrieved)))

	if extractor == nil {
		return nil
	}

	result, err := extractor.ExtractFromChunks(ctx, retrieved, "")
	if err != nil {
		return err
	}
	log.Info("extraction completed",
		zap.String("strategy", string(strategy)),
		zap.Int("num_fields", len(result.Fields)),
		zap.Int("num_chunks_used", result.NumChunksUsed),
		zap.Float64("total_cost", result.Usage.TotalCost),
		zap.Any("extraction", result.Fields))

	return nil
}
