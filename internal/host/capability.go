// Package host defines the capability surface NexusLang programs call out
// through (spec.md §4.6). The interpreter never talks to a database, a
// websocket, or the clock directly — it calls Capability methods, and a
// DefaultHost or a backed implementation (knowledge_store.go, voice_bridge.go)
// decides what actually happens. Tests inject a deterministic fake.
package host

// Record is one knowledge-store hit: at least title, summary, confidence,
// and source, per spec.md §4.3's knowledge() contract.
type Record = map[string]interface{}

// Capability is the pluggable intrinsic surface. A host that does not
// implement a given capability is expected to degrade to the documented
// no-op behaviour (spec.md §4.6) rather than erroring.
type Capability interface {
	// Print writes a textual rendering of a value to the output sink,
	// followed by a newline.
	Print(text string)

	// Knowledge returns knowledge records matching query and filters.
	// DefaultHost never fails and returns an empty slice; a backed host may
	// return an error, which the interpreter turns into an empty result.
	Knowledge(query string, filters map[string]interface{}) ([]Record, error)

	// Say invokes voice output. Absent capabilities print a transcription
	// to the sink instead of erroring.
	Say(text string, emotion, voiceID *string, speed *float64) error

	// Listen invokes voice input, returning a fixture string or nil.
	Listen(timeout *float64, language *string) (*string, error)

	// OptimizeSelf is a declarative directive with no required observable
	// effect beyond being invoked.
	OptimizeSelf(metric string, target float64, strategy *string) error

	// Now returns milliseconds since the Unix epoch, the shared clock
	// source for both the language's now() intrinsic and --benchmark.
	Now() int64
}
