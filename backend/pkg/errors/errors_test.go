package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNotFound(t *testing.T) {
	err := NewNotFound("Topic", map[string]interface{}{"key": "go"})
	assert.True(t, IsNotFound(err))
	assert.False(t, IsAmbiguousResult(err))
	assert.Equal(t, "Topic", err.Label)
	assert.Contains(t, err.Error(), "not_found")
	assert.Contains(t, err.Error(), "Topic")
}

func TestAmbiguousResult(t *testing.T) {
	err := NewAmbiguousResult("User", map[string]interface{}{"displayName": "Sam"})
	assert.True(t, IsAmbiguousResult(err))
	assert.False(t, IsNotFound(err))
}

func TestConfiguration(t *testing.T) {
	err := NewConfiguration("invalid label \"Bad Label\"")
	assert.True(t, IsConfiguration(err))
	assert.Contains(t, err.Error(), "invalid label")
}

func TestStorageUnavailable_WrapsCause(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := NewStorageUnavailable("verify connectivity", cause)
	assert.True(t, IsStorageUnavailable(err))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "verify connectivity")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestIsErrorType_WalksWrappedErrors(t *testing.T) {
	inner := NewNotFound("Resource", nil)
	wrapped := fmt.Errorf("loading page: %w", inner)
	assert.True(t, IsNotFound(wrapped))
	assert.False(t, IsConfiguration(wrapped))
}

func TestIsErrorType_PlainErrors(t *testing.T) {
	assert.False(t, IsNotFound(stderrors.New("plain")))
	assert.False(t, IsNotFound(nil))
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(NewStorageUnavailable("run statement", stderrors.New("timeout"))))
	assert.False(t, IsRetryable(NewNotFound("Topic", nil)))
	assert.False(t, IsRetryable(NewAmbiguousResult("Topic", nil)))
	assert.False(t, IsRetryable(NewConfiguration("bad field")))
}
