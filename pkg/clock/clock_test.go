package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewSeqStartsAtZeroAndIncrements(t *testing.T) {
	seq := NewSeq()
	require.Equal(t, uint64(0), seq())
	require.Equal(t, uint64(1), seq())
	require.Equal(t, uint64(2), seq())
}

func TestNewDeterministicTSAdvancesByStep(t *testing.T) {
	origin := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	ts := NewDeterministicTS(origin, time.Millisecond)

	require.Equal(t, origin, ts())
	require.Equal(t, origin.Add(time.Millisecond), ts())
	require.Equal(t, origin.Add(2*time.Millisecond), ts())
}

func TestNewGeneratorsUsesDefaults(t *testing.T) {
	gens := NewGenerators()
	require.Equal(t, uint64(0), gens.Seq())
	require.Equal(t, DefaultOrigin, gens.TS())
}

func TestEachSeqGeneratorIsIndependent(t *testing.T) {
	a := NewSeq()
	b := NewSeq()
	a()
	a()
	require.Equal(t, uint64(0), b(), "a fresh generator must not share state with another stream's generator")
}
