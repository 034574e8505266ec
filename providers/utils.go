package providers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/BaSui01/mediaflow/internal/ctxkeys"
	"github.com/BaSui01/mediaflow/internal/tlsutil"
)

// probeTimeout 可用性探测的固定超时。探测只回答"现在能不能用"，
// 不值得占用完整的请求超时预算。
const probeTimeout = 5 * time.Second

// ProbeClient 返回用于可用性探测的短超时 HTTP 客户端。
func ProbeClient(transport http.RoundTripper) *http.Client {
	if transport != nil {
		return &http.Client{Transport: transport, Timeout: probeTimeout}
	}
	return tlsutil.SecureHTTPClient(probeTimeout)
}

// Choose selects the first non-empty value in priority order:
// request-level override first, adapter configuration second, the
// provider-specific default last.
func Choose(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// FormatSpeed renders a speed multiplier as a cache-key component.
// Two decimals are enough to tell the supported steps apart.
func FormatSpeed(speed float64) string {
	return strconv.FormatFloat(speed, 'f', 2, 64)
}

// Credential resolves the credential for one request. A per-request
// override carried in the context wins over the configured value.
func Credential(ctx context.Context, configured string) string {
	if override, ok := ctxkeys.Credential(ctx); ok {
		if trimmed := strings.TrimSpace(override); trimmed != "" {
			return trimmed
		}
	}
	return configured
}
