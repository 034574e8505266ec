package media

import "context"

// Speed multiplier bounds shared by all synthesizer backends.
const (
	MinSpeed = 0.25
	MaxSpeed = 2.0
)

// ClampSpeed clamps a speed multiplier to [MinSpeed, MaxSpeed].
func ClampSpeed(multiplier float64) float64 {
	switch {
	case multiplier < MinSpeed:
		return MinSpeed
	case multiplier > MaxSpeed:
		return MaxSpeed
	default:
		return multiplier
	}
}

// Transcriber is the speech-to-text capability contract.
//
// Implementations fail with an ARGUMENT_ERROR when the request audio is
// empty and with a CONFIGURATION_ERROR when a required credential is
// missing. One instance handles one request at a time; Cancel aborts the
// in-flight exchange at the next poll tick.
type Transcriber interface {
	// Transcribe converts audio bytes into text.
	Transcribe(ctx context.Context, req *TranscribeRequest) (string, error)

	// TranscribeWithConfidence converts audio into a scored result. When
	// req.ExpectedText is set, the similarity against it folds into the
	// confidence and both land in the result metadata.
	TranscribeWithConfidence(ctx context.Context, req *TranscribeRequest) (*TranscriptionResult, error)

	// IsAvailable probes backend readiness with a short-deadline request
	// outside the operation slot. Probe failures degrade to false, never
	// to an error.
	IsAvailable(ctx context.Context) bool

	// Cancel raises the cooperative cancellation flag on the in-flight
	// operation, if any.
	Cancel()

	// Name returns the provider identifier.
	Name() string
}

// Synthesizer is the text-to-speech capability contract.
type Synthesizer interface {
	// Synthesize converts text into a decoded audio clip. Results are
	// cached on (text, voice, language, speed) when caching is enabled.
	Synthesize(ctx context.Context, req *SynthesizeRequest) (*Clip, error)

	// ListVoices returns the voices the backend offers.
	ListVoices(ctx context.Context) ([]Voice, error)

	// SetSpeed sets the playback speed multiplier, clamped to
	// [MinSpeed, MaxSpeed], and returns the applied value. Backends
	// without speed support log a warning and ignore it.
	SetSpeed(multiplier float64) float64

	// IsAvailable probes backend readiness with a short-deadline request
	// outside the operation slot.
	IsAvailable(ctx context.Context) bool

	// Cancel raises the cooperative cancellation flag on the in-flight
	// operation, if any.
	Cancel()

	// Name returns the provider identifier.
	Name() string
}

// Vision is the image+text inference capability contract.
type Vision interface {
	// Generate answers a prompt about an image. The image is normalized to
	// a fixed square JPEG before transmission. An empty prompt or image
	// fails with an ARGUMENT_ERROR before any network call.
	Generate(ctx context.Context, req *VisionRequest) (string, error)

	// ModelName returns the configured model identifier.
	ModelName() string

	// IsAvailable probes backend readiness with a short-deadline request
	// outside the operation slot.
	IsAvailable(ctx context.Context) bool

	// Name returns the provider identifier.
	Name() string
}
