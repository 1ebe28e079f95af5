package host

import (
	"fmt"
	"os"
)

// DefaultHost is the deterministic, in-memory Capability used by `run` and
// `repl` by default and by every interpreter test (spec.md §4.6, §9's "tests
// inject a deterministic fake"). Knowledge always returns no records; Listen
// returns a configured fixture or nil; Say prints a transcription.
type DefaultHost struct {
	Sink           *Sink
	ListenFixtures []string // consumed in order, one per Listen() call
	nowFn          func() int64
}

// NewDefaultHost builds a DefaultHost writing to stdout with no output cap.
func NewDefaultHost() *DefaultHost {
	return &DefaultHost{Sink: NewSink(os.Stdout, 0)}
}

// Print writes text to the sink followed by a newline.
func (h *DefaultHost) Print(text string) {
	h.Sink.WriteLine(text)
}

// Knowledge always returns an empty result set: the default host has no
// backing record store.
func (h *DefaultHost) Knowledge(query string, filters map[string]interface{}) ([]Record, error) {
	return []Record{}, nil
}

// Say prints a deterministic transcription of the spoken text to the sink.
func (h *DefaultHost) Say(text string, emotion, voiceID *string, speed *float64) error {
	if emotion != nil {
		h.Sink.WriteLine(fmt.Sprintf("[say:%s] %s", *emotion, text))
	} else {
		h.Sink.WriteLine(fmt.Sprintf("[say] %s", text))
	}
	return nil
}

// Listen returns the next configured fixture string, or nil if exhausted.
func (h *DefaultHost) Listen(timeout *float64, language *string) (*string, error) {
	if len(h.ListenFixtures) == 0 {
		return nil, nil
	}
	next := h.ListenFixtures[0]
	h.ListenFixtures = h.ListenFixtures[1:]
	return &next, nil
}

// OptimizeSelf is a no-op: the default host has no optimisation backend.
func (h *DefaultHost) OptimizeSelf(metric string, target float64, strategy *string) error {
	return nil
}

// Now returns milliseconds since the Unix epoch, or a fixed value from
// WithClock for deterministic tests.
func (h *DefaultHost) Now() int64 {
	if h.nowFn != nil {
		return h.nowFn()
	}
	return realNowMillis()
}

// WithClock overrides the clock used by Now, for deterministic tests.
func (h *DefaultHost) WithClock(fn func() int64) *DefaultHost {
	h.nowFn = fn
	return h
}
