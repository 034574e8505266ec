package score

import (
	"strings"
	"testing"
	"time"

	"pgregory.net/rapid"
)

func TestProperty_SimilarityStaysInUnitRange(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		a := rapid.String().Draw(rt, "a")
		b := rapid.String().Draw(rt, "b")

		got := Similarity(a, b)
		if got < 0.0 || got > 1.0 {
			rt.Fatalf("Similarity(%q, %q) = %v, outside [0,1]", a, b, got)
		}
	})
}

func TestProperty_SimilarityIsSymmetric(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		a := rapid.String().Draw(rt, "a")
		b := rapid.String().Draw(rt, "b")

		if Similarity(a, b) != Similarity(b, a) {
			rt.Fatalf("Similarity not symmetric for %q / %q", a, b)
		}
	})
}

func TestProperty_SimilaritySelfIsOne(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		a := rapid.StringMatching(`[a-zA-Z0-9 ]{1,40}`).Draw(rt, "a")
		if strings.TrimSpace(a) == "" {
			// 空白串按 0.0 处理，不属于本性质
			return
		}
		if got := Similarity(a, a); got != 1.0 {
			rt.Fatalf("Similarity(%q, %q) = %v, want 1.0", a, a, got)
		}
	})
}

func TestProperty_ConfidenceStaysInUnitRange(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		transcript := rapid.String().Draw(rt, "transcript")
		expected := rapid.String().Draw(rt, "expected")
		ms := rapid.Int64Range(0, 10_000).Draw(rt, "duration_ms")

		got := Confidence(transcript, expected, time.Duration(ms)*time.Millisecond)
		if got < 0.0 || got > 1.0 {
			rt.Fatalf("Confidence(%q, %q, %dms) = %v, outside [0,1]",
				transcript, expected, ms, got)
		}
	})
}
