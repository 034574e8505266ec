package providers

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BaSui01/mediaflow/internal/ctxkeys"
	"github.com/BaSui01/mediaflow/media"
)

func TestMapStatus(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		wantCode  media.ErrorCode
		wantRetry bool
	}{
		{"bad request", http.StatusBadRequest, `{"error":"text is empty"}`, media.ErrArgument, false},
		{"unauthorized", http.StatusUnauthorized, "nope", media.ErrConfiguration, false},
		{"forbidden", http.StatusForbidden, "nope", media.ErrConfiguration, false},
		{"request timeout", http.StatusRequestTimeout, "slow", media.ErrTimeout, false},
		{"rate limited", http.StatusTooManyRequests, "slow down", media.ErrUnavailable, true},
		{"warming up", http.StatusServiceUnavailable, "loading model", media.ErrUnavailable, true},
		{"bad gateway", http.StatusBadGateway, "upstream died", media.ErrUnavailable, true},
		{"teapot", http.StatusTeapot, "short and stout", media.ErrProtocol, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := MapStatus(tt.status, []byte(tt.body), "stub")
			assert.Equal(t, tt.wantCode, err.Code)
			assert.Equal(t, tt.wantRetry, err.Retryable)
			assert.Equal(t, tt.status, err.HTTPStatus)
			assert.Equal(t, "stub", err.Provider)
		})
	}
}

func TestMapStatus_CanonicalMessages(t *testing.T) {
	err := MapStatus(http.StatusUnauthorized, []byte("ignored detail"), "stub")
	assert.Equal(t, "invalid credential", err.Message)

	err = MapStatus(http.StatusServiceUnavailable, []byte("ignored detail"), "stub")
	assert.Equal(t, "model warming up, retry", err.Message)
}

func TestMapStatus_EmptyBodyUsesStatusText(t *testing.T) {
	err := MapStatus(http.StatusBadGateway, nil, "stub")
	assert.Equal(t, http.StatusText(http.StatusBadGateway), err.Message)
}

func TestMapStatus_TruncatesOversizedBody(t *testing.T) {
	err := MapStatus(http.StatusTeapot, []byte(strings.Repeat("x", 4096)), "stub")
	require.LessOrEqual(t, len(err.Message), maxErrorBody)
}

func TestChoose(t *testing.T) {
	assert.Equal(t, "req", Choose("req", "cfg", "default"))
	assert.Equal(t, "cfg", Choose("", "cfg", "default"))
	assert.Equal(t, "default", Choose("", "", "default"))
	assert.Equal(t, "", Choose())
}

func TestCredential_ContextOverrideWins(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, "configured", Credential(ctx, "configured"))

	ctx = ctxkeys.WithCredential(ctx, "  override  ")
	assert.Equal(t, "override", Credential(ctx, "configured"))

	ctx = ctxkeys.WithCredential(context.Background(), "   ")
	assert.Equal(t, "configured", Credential(ctx, "configured"))
}
