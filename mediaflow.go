// Package mediaflow provides a top-level convenience entry point that wires
// configuration into the speech-to-text, text-to-speech, and vision
// capability adapters.
//
// Usage:
//
//	import "github.com/BaSui01/mediaflow"
//
//	cfg := config.MustLoad("config.yaml")
//	svc, err := mediaflow.New(*cfg, mediaflow.WithLogger(logger))
//	text, err := svc.STT.Transcribe(ctx, &media.TranscribeRequest{Audio: wav})
//
// A capability whose required credential is absent from the configuration is
// left nil on Services; callers check the field they need before use.
package mediaflow

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/BaSui01/mediaflow/config"
	"github.com/BaSui01/mediaflow/factory"
	"github.com/BaSui01/mediaflow/media"
	"github.com/BaSui01/mediaflow/media/bridge"
	"github.com/BaSui01/mediaflow/media/observability"
)

// Option configures the services built by New.
type Option func(*options)

type options struct {
	logger  *zap.Logger
	clock   bridge.Clock
	metrics *observability.Metrics
}

// WithLogger sets a custom zap logger. Defaults to zap.NewNop().
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithClock overrides the scheduling clock driving the adapters' polling
// loops. Defaults to the system clock.
func WithClock(clock bridge.Clock) Option {
	return func(o *options) { o.clock = clock }
}

// WithMetrics instruments every built adapter with the given collector.
func WithMetrics(m *observability.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// Services bundles the capability adapters built from one configuration.
// Fields for capabilities skipped by the factory are nil.
type Services struct {
	STT    media.Transcriber
	TTS    media.Synthesizer
	Vision media.Vision
}

// New builds the capability adapters from cfg. A capability missing its
// required credential is skipped with a warning rather than failing the
// whole construction; a mistyped provider identifier fails.
func New(cfg config.Config, opts ...Option) (*Services, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}

	suite, err := factory.NewSuite(cfg, o.clock, o.logger)
	if err != nil {
		return nil, err
	}

	svc := &Services{
		STT:    suite.STT,
		TTS:    suite.TTS,
		Vision: suite.Vision,
	}
	if o.metrics != nil {
		for _, v := range svc.adapters() {
			if in, ok := v.(interface {
				Instrument(*observability.Metrics)
			}); ok {
				in.Instrument(o.metrics)
			}
		}
	}
	return svc, nil
}

// Ping probes every configured capability's backend concurrently and returns
// the first failure, typed UNAVAILABLE and retryable.
func (s *Services) Ping(ctx context.Context) error {
	type prober interface {
		IsAvailable(ctx context.Context) bool
		Name() string
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, v := range s.adapters() {
		p, ok := v.(prober)
		if !ok {
			continue
		}
		g.Go(func() error {
			if !p.IsAvailable(ctx) {
				return media.NewError(media.ErrUnavailable,
					fmt.Sprintf("%s backend did not answer its readiness probe", p.Name())).
					WithProvider(p.Name()).
					WithRetryable(true)
			}
			return nil
		})
	}
	return g.Wait()
}

// Close cancels in-flight operations and releases cached payloads.
// Safe to call more than once.
func (s *Services) Close() {
	for _, v := range s.adapters() {
		if c, ok := v.(interface{ Cancel() }); ok {
			c.Cancel()
		}
		if c, ok := v.(interface{ Close() }); ok {
			c.Close()
		}
	}
}

// adapters returns the non-nil capability adapters.
func (s *Services) adapters() []any {
	var out []any
	if s.STT != nil {
		out = append(out, s.STT)
	}
	if s.TTS != nil {
		out = append(out, s.TTS)
	}
	if s.Vision != nil {
		out = append(out, s.Vision)
	}
	return out
}
