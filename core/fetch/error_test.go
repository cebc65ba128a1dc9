package fetch

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRetryableByKind(t *testing.T) {
	tests := []struct {
		kind      Kind
		retryable bool
	}{
		{KindRateLimited, true},
		{KindNetwork, true},
		{KindNotFound, false},
		{KindAuthFailed, false},
		{KindUnsupported, false},
		{KindDataIntegrity, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			err := NewError("fmp", tt.kind, nil)
			assert.Equal(t, tt.retryable, err.Retryable())
			assert.Equal(t, tt.retryable, IsRetryable(err))
		})
	}
}

func TestKindOfUnwrapsChain(t *testing.T) {
	inner := NewError("polygon", KindRateLimited, errors.New("429"))
	wrapped := fmt.Errorf("fetch quote: %w", inner)

	assert.Equal(t, KindRateLimited, KindOf(wrapped))
	assert.True(t, IsRetryable(wrapped))
}

func TestKindOfPlainError(t *testing.T) {
	// Unclassified errors default to the retryable network kind.
	assert.Equal(t, KindNetwork, KindOf(errors.New("boom")))
	// But IsRetryable demands an explicit classification.
	assert.False(t, IsRetryable(errors.New("boom")))
}

func TestClassifyStatus(t *testing.T) {
	assert.Equal(t, KindRateLimited, classifyStatus(429))
	assert.Equal(t, KindAuthFailed, classifyStatus(401))
	assert.Equal(t, KindAuthFailed, classifyStatus(403))
	assert.Equal(t, KindNotFound, classifyStatus(404))
	assert.Equal(t, KindNetwork, classifyStatus(500))
	assert.Equal(t, KindNetwork, classifyStatus(503))
	assert.Equal(t, KindDataIntegrity, classifyStatus(418))
}

func TestErrorMessageIncludesContext(t *testing.T) {
	err := &Error{Source: "fmp", Kind: KindRateLimited, StatusCode: 429, Err: errors.New("slow down")}
	msg := err.Error()
	assert.Contains(t, msg, "fmp")
	assert.Contains(t, msg, "rate_limited")
	assert.Contains(t, msg, "429")
}
