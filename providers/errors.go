package providers

import (
	"net/http"
	"strings"

	"github.com/BaSui01/mediaflow/media"
)

// maxErrorBody 限制纳入错误消息的响应体长度，避免日志被超长报文撑爆。
const maxErrorBody = 512

// MapStatus maps an HTTP failure status to the typed error taxonomy.
// Every adapter funnels non-success responses through here so the same
// status always yields the same error code regardless of backend.
func MapStatus(status int, body []byte, provider string) *media.Error {
	msg := strings.TrimSpace(string(body))
	if len(msg) > maxErrorBody {
		msg = msg[:maxErrorBody]
	}
	if msg == "" {
		msg = http.StatusText(status)
	}

	switch status {
	case http.StatusBadRequest:
		return media.NewError(media.ErrArgument, msg).
			WithHTTPStatus(status).WithProvider(provider)
	case http.StatusUnauthorized, http.StatusForbidden:
		return media.NewError(media.ErrConfiguration, "invalid credential").
			WithHTTPStatus(status).WithProvider(provider)
	case http.StatusRequestTimeout:
		return media.NewError(media.ErrTimeout, msg).
			WithHTTPStatus(status).WithProvider(provider)
	case http.StatusTooManyRequests:
		return media.NewError(media.ErrUnavailable, msg).
			WithHTTPStatus(status).WithRetryable(true).WithProvider(provider)
	case http.StatusServiceUnavailable:
		return media.NewError(media.ErrUnavailable, "model warming up, retry").
			WithHTTPStatus(status).WithRetryable(true).WithProvider(provider)
	default:
		if status >= 500 {
			return media.NewError(media.ErrUnavailable, msg).
				WithHTTPStatus(status).WithRetryable(true).WithProvider(provider)
		}
		return media.NewError(media.ErrProtocol, msg).
			WithHTTPStatus(status).WithProvider(provider)
	}
}
