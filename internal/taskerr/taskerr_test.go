package taskerr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		httpStatus int
		code       int
		wantKind   Kind
		wantRetry  bool
	}{
		{"permission code", http.StatusOK, 99991672, KindPermissionDenied, false},
		{"not found code", http.StatusOK, 99991663, KindNotFound, false},
		{"rate limit code", http.StatusOK, 99991400, KindRateLimited, true},
		{"code wins over status", http.StatusInternalServerError, 99991663, KindNotFound, false},
		{"bad request", http.StatusBadRequest, 0, KindInvalidParameter, false},
		{"unauthorized", http.StatusUnauthorized, 0, KindPermissionDenied, false},
		{"forbidden", http.StatusForbidden, 0, KindPermissionDenied, false},
		{"not found status", http.StatusNotFound, 0, KindNotFound, false},
		{"too many requests", http.StatusTooManyRequests, 0, KindRateLimited, true},
		{"server error", http.StatusInternalServerError, 0, KindTransport, true},
		{"bad gateway", http.StatusBadGateway, 0, KindTransport, true},
		{"unrecognized", http.StatusTeapot, 7, KindUnknown, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Classify(tt.httpStatus, tt.code, "boom")
			assert.Equal(t, tt.wantKind, err.Kind)
			assert.Equal(t, tt.wantRetry, err.Retryable)
		})
	}
}

func TestClassifyKeepsDiagnostics(t *testing.T) {
	err := Classify(http.StatusTeapot, 424242, "something odd")
	assert.Equal(t, KindUnknown, err.Kind)
	assert.False(t, err.Retryable)
	assert.Equal(t, 424242, err.Code)
	assert.Equal(t, http.StatusTeapot, err.HTTPStatus)
	assert.Equal(t, "something odd", err.Message)
	assert.Contains(t, err.Error(), "424242")
	assert.Contains(t, err.Error(), "something odd")
}

func TestFromTransport(t *testing.T) {
	cancelled := FromTransport(context.Canceled)
	assert.Equal(t, KindCancelled, cancelled.Kind)
	assert.False(t, cancelled.Retryable)
	assert.True(t, errors.Is(cancelled, context.Canceled))

	deadline := FromTransport(fmt.Errorf("get: %w", context.DeadlineExceeded))
	assert.Equal(t, KindCancelled, deadline.Kind)

	reset := FromTransport(errors.New("connection reset by peer"))
	assert.Equal(t, KindTransport, reset.Kind)
	assert.True(t, reset.Retryable)
}

func TestExhausted(t *testing.T) {
	last := Classify(http.StatusTooManyRequests, 99991400, "slow down")
	err := Exhausted(last, 5)

	assert.Equal(t, KindRetryBudgetExceeded, err.Kind)
	assert.False(t, err.Retryable)
	assert.True(t, err.RetriesExhausted)
	assert.Equal(t, 5, err.Attempts)
	assert.Equal(t, 99991400, err.Code)

	// The original classification stays reachable.
	var inner *Error
	require.True(t, errors.As(errors.Unwrap(err), &inner))
	assert.Equal(t, KindRateLimited, inner.Kind)
}

func TestHelpers(t *testing.T) {
	assert.Equal(t, KindNotFound, KindOf(New(KindNotFound, "gone")))
	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))
	assert.Equal(t, KindUnknown, KindOf(nil))

	assert.True(t, Retryable(Classify(http.StatusServiceUnavailable, 0, "")))
	assert.False(t, Retryable(errors.New("plain")))

	assert.True(t, IsNotFound(fmt.Errorf("wrapped: %w", New(KindNotFound, "gone"))))
	assert.False(t, IsNotFound(New(KindTransport, "net")))
	assert.True(t, IsCancelled(FromTransport(context.Canceled)))
}
