// Package normalize classifies provider responses by content shape and
// extracts the final media payload, fetching it through the request
// bridge when the response only carries a URL.
package normalize

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/BaSui01/mediaflow/media"
	"github.com/BaSui01/mediaflow/media/bridge"
)

// Kind identifies the shape of a provider response.
type Kind int

const (
	// KindUnknown is the zero value; Parse never returns it.
	KindUnknown Kind = iota
	// KindBinary marks a response whose body is the media payload itself.
	KindBinary
	// KindJSON marks a structured response that points at the payload
	// through a URL field.
	KindJSON
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case KindBinary:
		return "binary"
	case KindJSON:
		return "json"
	default:
		return "unknown"
	}
}

// Normalized is the tagged result of classifying a response. Exactly one
// of Media (KindBinary) or MediaURL (KindJSON) is populated.
type Normalized struct {
	Kind     Kind
	Media    []byte
	MediaURL string
	Status   string
}

// jsonEnvelope is the permissive schema for structured responses. The
// URL is extracted in fixed priority order: the flat field first, the
// nested one second.
type jsonEnvelope struct {
	Status        string `json:"status"`
	OutputFileURL string `json:"output_file_url"`
	Output        struct {
		URL string `json:"url"`
	} `json:"output"`
}

// Classify decides the response shape from the declared content type,
// falling back to sniffing the body when the header is absent or opaque.
func Classify(contentType string, body []byte) Kind {
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		switch {
		case strings.HasPrefix(mediaType, "audio/"),
			strings.HasPrefix(mediaType, "video/"),
			strings.HasPrefix(mediaType, "image/"),
			mediaType == "application/octet-stream",
			mediaType == "application/ogg":
			return KindBinary
		case mediaType == "application/json",
			mediaType == "text/json",
			strings.HasSuffix(mediaType, "+json"):
			return KindJSON
		}
	}
	trimmed := bytes.TrimLeft(body, " \t\r\n")
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		return KindJSON
	}
	return KindBinary
}

// Parse classifies resp and extracts either the raw payload or the media
// URL. A structured response whose status reports failure, or which
// yields no URL, fails with a protocol error; malformed JSON fails with
// a decode error.
func Parse(resp *bridge.Response) (*Normalized, error) {
	if resp == nil || len(resp.Body) == 0 {
		return nil, media.NewError(media.ErrDecode, "empty response payload")
	}

	kind := Classify(resp.Header.Get("Content-Type"), resp.Body)
	if kind == KindBinary {
		return &Normalized{Kind: KindBinary, Media: resp.Body}, nil
	}

	var envelope jsonEnvelope
	if err := json.Unmarshal(resp.Body, &envelope); err != nil {
		return nil, media.NewError(media.ErrDecode, "malformed structured response").WithCause(err)
	}
	if envelope.Status != "" && !strings.Contains(strings.ToLower(envelope.Status), "success") {
		return nil, media.NewError(media.ErrProtocol,
			fmt.Sprintf("backend reported generation status %q", envelope.Status))
	}

	mediaURL := envelope.OutputFileURL
	if mediaURL == "" {
		mediaURL = envelope.Output.URL
	}
	if mediaURL == "" {
		return nil, media.NewError(media.ErrProtocol, "structured response carries no media url")
	}
	return &Normalized{Kind: KindJSON, MediaURL: mediaURL, Status: envelope.Status}, nil
}

// Fetch retrieves the payload a structured response points at. Relative
// URLs are resolved against base. The secondary exchange goes through
// the same bridge as the primary one and is therefore subject to the
// adapter's cancellation flag and timeout budget.
func Fetch(ctx context.Context, b *bridge.Bridge, base string, n *Normalized) ([]byte, error) {
	if n.Kind == KindBinary {
		return n.Media, nil
	}

	target, err := url.Parse(n.MediaURL)
	if err != nil {
		return nil, media.NewError(media.ErrProtocol,
			fmt.Sprintf("unparseable media url %q", n.MediaURL)).WithCause(err)
	}
	if !target.IsAbs() {
		baseURL, err := url.Parse(base)
		if err != nil {
			return nil, media.NewError(media.ErrConfiguration,
				fmt.Sprintf("invalid base url %q", base)).WithCause(err)
		}
		target = baseURL.ResolveReference(target)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, media.NewError(media.ErrProtocol, "build media fetch request").WithCause(err)
	}
	resp, err := b.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	if resp.Status < 200 || resp.Status > 299 {
		return nil, media.NewError(media.ErrProtocol,
			fmt.Sprintf("media fetch returned status %d", resp.Status)).
			WithHTTPStatus(resp.Status)
	}
	if len(resp.Body) == 0 {
		return nil, media.NewError(media.ErrDecode, "media fetch returned empty payload")
	}
	return resp.Body, nil
}

// Resolve combines Parse and Fetch: it turns a raw provider response
// into final media bytes regardless of which shape the backend chose.
func Resolve(ctx context.Context, b *bridge.Bridge, base string, resp *bridge.Response) ([]byte, error) {
	n, err := Parse(resp)
	if err != nil {
		return nil, err
	}
	return Fetch(ctx, b, base, n)
}
