// Package clock provides the deterministic sequence-number and timestamp
// generators the normalizer uses to stamp canonical events. Stamping is
// injected rather than read from time.Now so that normalizer output is
// reproducible in tests and does not depend on wall-clock jitter between
// chunks arriving over the same connection.
package clock

import "time"

// SeqFunc returns the next sequence number. Successive calls must return a
// dense, strictly increasing sequence starting at 0.
type SeqFunc func() uint64

// TSFunc returns the next synthetic timestamp. Successive calls must return
// a non-decreasing sequence.
type TSFunc func() time.Time

// DefaultOrigin is the synthetic epoch used when no origin is supplied.
var DefaultOrigin = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// DefaultStep is the synthetic tick duration used when no step is supplied.
const DefaultStep = time.Millisecond

// NewSeq returns a SeqFunc starting at 0 and incrementing by 1 per call.
// The returned function is not safe for concurrent use; each stream owns
// its own generator.
func NewSeq() SeqFunc {
	var next uint64
	return func() uint64 {
		v := next
		next++
		return v
	}
}

// NewDeterministicTS returns a TSFunc producing origin, origin+step,
// origin+2*step, ... on successive calls.
func NewDeterministicTS(origin time.Time, step time.Duration) TSFunc {
	var k int64
	return func() time.Time {
		ts := origin.Add(time.Duration(k) * step)
		k++
		return ts
	}
}

// Generators bundles the two generators a normalizer needs for one stream.
type Generators struct {
	Seq SeqFunc
	TS  TSFunc
}

// NewGenerators builds the default generator pair: a fresh zero-based
// sequence counter and a deterministic timestamp generator anchored at
// DefaultOrigin with DefaultStep spacing.
func NewGenerators() Generators {
	return Generators{Seq: NewSeq(), TS: NewDeterministicTS(DefaultOrigin, DefaultStep)}
}

// NewGeneratorsWithOrigin builds a generator pair anchored at a custom
// origin and step, for callers that need a specific synthetic timeline.
func NewGeneratorsWithOrigin(origin time.Time, step time.Duration) Generators {
	return Generators{Seq: NewSeq(), TS: NewDeterministicTS(origin, step)}
}
