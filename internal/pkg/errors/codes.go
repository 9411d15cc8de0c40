package errors

// Error codes for different modules
const (
	// Success
	Success = 0

	// Common errors (1000-1999)
	ErrInternalServer       = 1000
	ErrInvalidParams        = 1001
	ErrNotFound             = 1002
	ErrInvalidConfiguration = 1003

	// Chunking errors (2000-2999)
	ErrTokenizationFailed  = 2000
	ErrSentenceSplitFailed = 2001
	ErrUnsupportedStrategy = 2002
	ErrChunkInvalidConfig  = 2003

	// Vector store errors (3000-3999)
	ErrCollectionNotFound = 3000
	ErrCollectionExists   = 3001
	ErrVectorInsertFailed = 3002
	ErrVectorSearchFailed = 3003
	ErrCollectionReset    = 3004

	// Embedding errors (4000-4999)
	ErrEmbeddingFailed        = 4000
	ErrEmbeddingInvalidConfig = 4001

	// Retrieval errors (5000-5999)
	ErrRetrievalFailed = 5000

	// Extraction errors (6000-6999)
	ErrExtractionFailed      = 6000
	ErrExtractionBadResponse = 6001
)

// messages maps error codes to human-readable messages
var messages = map[int]string{
	Success: "success",

	ErrInternalServer:       "internal error",
	ErrInvalidParams:        "invalid parameters",
	ErrNotFound:             "resource not found",
	ErrInvalidConfiguration: "invalid configuration",

	ErrTokenizationFailed:  "tokenization failed",
	ErrSentenceSplitFailed: "sentence splitting failed",
	ErrUnsupportedStrategy: "unsupported chunking strategy",
	ErrChunkInvalidConfig:  "invalid chunker configuration",

	ErrCollectionNotFound: "collection not found",
	ErrCollectionExists:   "collection already exists",
	ErrVectorInsertFailed: "vector insert failed",
	ErrVectorSearchFailed: "vector search failed",
	ErrCollectionReset:    "collection reset failed",

	ErrEmbeddingFailed:        "embedding generation failed",
	ErrEmbeddingInvalidConfig: "invalid embedder configuration",

	ErrRetrievalFailed: "retrieval failed",

	ErrExtractionFailed:      "extraction failed",
	ErrExtractionBadResponse: "extraction returned malformed response",
}

// GetMessage returns the message for a given error code
func GetMessage(code int) string {
	if msg, ok := messages[code]; ok {
		return msg
	}
	return "unknown error"
}

// IsSuccess checks if the code represents success
func IsSuccess(code int) bool {
	return code == Success
}
