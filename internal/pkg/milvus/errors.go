package milvus

import (
	"errors"
	"fmt"
	"strings"
)

// Predefined errors
var (
	// ErrCollectionNotFound indicates that the collection does not exist
	ErrCollectionNotFound = errors.New("milvus: collection not found")

	// ErrCollectionExists indicates that the collection already exists
	ErrCollectionExists = errors.New("milvus: collection already exists")

	// ErrInvalidCollectionName indicates that the collection name is invalid
	ErrInvalidCollectionName = errors.New("milvus: invalid collection name")

	// ErrInvalidFieldName indicates that the field name is invalid
	ErrInvalidFieldName = errors.New("milvus: invalid field name")

	// ErrInvalidConfig indicates that the configuration is invalid
	ErrInvalidConfig = errors.New("milvus: invalid config")

	// ErrInvalidSchema indicates that the schema is invalid
	ErrInvalidSchema = errors.New("milvus: invalid schema")

	// ErrInvalidData indicates that the data is invalid
	ErrInvalidData = errors.New("milvus: invalid data")

	// ErrInvalidVectorData indicates that the vector data is invalid
	ErrInvalidVectorData = errors.New("milvus: invalid vector data")

	// ErrInvalidExpression indicates that the expression is invalid
	ErrInvalidExpression = errors.New("milvus: invalid expression")

	// ErrInvalidIndexType indicates that the index type is invalid
	ErrInvalidIndexType = errors.New("milvus: invalid index type")

	// ErrConnectionFailed indicates that the connection to Milvus failed
	ErrConnectionFailed = errors.New("milvus: connection failed")

	// ErrOperationTimeout indicates that an operation timed out
	ErrOperationTimeout = errors.New("milvus: operation timeout")

	// ErrClientClosed indicates that the client is closed
	ErrClientClosed = errors.New("milvus: client is closed")
)

// Error represents a Milvus error with additional context
type Error struct {
	Op         string // Operation that failed
	Collection string // Collection name (if applicable)
	Field      string // Field name (if applicable)
	Err        error  // Original error
}

// Error returns the error message
func (e *Error) Error() string {
	var msg string

	switch {
	case e.Collection != "" && e.Field != "":
		msg = fmt.Sprintf("milvus: %s failed for collection=%s, field=%s", e.Op, e.Collection, e.Field)
	case e.Collection != "":
		msg = fmt.Sprintf("milvus: %s failed for collection=%s", e.Op, e.Collection)
	case e.Field != "":
		msg = fmt.Sprintf("milvus: %s failed for field=%s", e.Op, e.Field)
	default:
		msg = fmt.Sprintf("milvus: %s failed", e.Op)
	}

	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}

	return msg
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Err
}

// WrapError wraps an error with operation and collection context
func WrapError(op string, err error, collection, field string) error {
	if err == nil {
		return nil
	}

	return &Error{
		Op:         op,
		Collection: collection,
		Field:      field,
		Err:        err,
	}
}

// IsNotFound checks if the error is a "not found" error
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, ErrCollectionNotFound) {
		return true
	}

	return containsAny(err.Error(), []string{
		"not found",
		"not exist",
		"doesn't exist",
		"does not exist",
	})
}

// IsAlreadyExists checks if the error is an "already exists" error
func IsAlreadyExists(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, ErrCollectionExists) {
		return true
	}

	return containsAny(err.Error(), []string{
		"already exist",
		"duplicate",
	})
}

// IsTimeout checks if the error is a timeout error
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, ErrOperationTimeout) {
		return true
	}

	return containsAny(err.Error(), []string{
		"timeout",
		"timed out",
		"deadline exceeded",
	})
}

// IsConnectionFailed checks if the error is a connection error
func IsConnectionFailed(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, ErrConnectionFailed) {
		return true
	}

	return containsAny(err.Error(), []string{
		"connection",
		"connect",
		"dial",
		"network",
		"unreachable",
	})
}

// containsAny checks if the string contains any of the substrings
func containsAny(s string, substrs []string) bool {
	for _, substr := range substrs {
		if strings.Contains(s, substr) {
			return true
		}
	}
	return false
}
