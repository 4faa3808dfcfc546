package language

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HiddenPCOfficial/biotica/internal/rng"
)

func TestInitialLexiconCoversAllConcepts(t *testing.T) {
	c := NewCommunication(42, rng.New(1))
	require.Len(t, c.Lexicon, len(Concepts))
	for _, concept := range Concepts {
		assert.NotEmpty(t, c.Token(concept))
	}
}

func TestLexiconDeterministicPerSeed(t *testing.T) {
	a := NewCommunication(42, rng.New(1))
	b := NewCommunication(42, rng.New(1))
	assert.Equal(t, a.Lexicon, b.Lexicon)

	other := NewCommunication(42, rng.New(2))
	assert.NotEqual(t, a.Lexicon, other.Lexicon, "different rng draws diverge")
}

func TestGrammarTracksPopulation(t *testing.T) {
	c := NewCommunication(1, rng.New(1))
	r := rng.New(9)
	for i := 0; i < 400; i++ {
		c.UpdateGrammar(200, 0, r)
	}
	assert.Equal(t, 3, c.GrammarLevel, "large stable population reaches full grammar")

	for i := 0; i < 400; i++ {
		c.UpdateGrammar(10, 0, r)
	}
	assert.Equal(t, 0, c.GrammarLevel, "collapse shrinks grammar")
}

func TestDriftMutatesSomeTokens(t *testing.T) {
	c := NewCommunication(7, rng.New(3))
	before := make(map[Concept]string, len(c.Lexicon))
	for k, v := range c.Lexicon {
		before[k] = v
	}

	r := rng.New(11)
	changed := 0
	for i := 0; i < 40; i++ {
		c.Drift(uint64(i)*DriftInterval, r)
	}
	for k, v := range before {
		if c.Lexicon[k] != v {
			changed++
		}
	}
	assert.Greater(t, changed, 0, "repeated drift passes mutate tokens")
	for _, tok := range c.Lexicon {
		assert.NotEmpty(t, tok)
	}
}

func TestBorrowRespectsCooldown(t *testing.T) {
	receiver := NewCommunication(1, rng.New(1))
	donor := NewCommunication(2, rng.New(2))
	r := rng.New(5)

	// Full intensity copies every concept.
	require.True(t, Borrow(receiver, donor, 1.0, 100, r))
	assert.Equal(t, donor.Lexicon, receiver.Lexicon)
	assert.Equal(t, uint64(100), receiver.LastBorrowTick)

	// Inside the cooldown nothing moves.
	donor.Lexicon[ConceptFire] = "zzz"
	assert.False(t, Borrow(receiver, donor, 1.0, 120, r))
	assert.NotEqual(t, "zzz", receiver.Lexicon[ConceptFire])

	// Past the cooldown borrowing resumes.
	assert.True(t, Borrow(receiver, donor, 1.0, 161, r))
	assert.Equal(t, "zzz", receiver.Lexicon[ConceptFire])
}

func TestComposeTruncatesByGrammar(t *testing.T) {
	c := NewCommunication(1, rng.New(1))
	r := rng.New(4)
	concepts := []Concept{ConceptFood, ConceptWater, ConceptDanger, ConceptEarth}

	c.GrammarLevel = 0
	utterance := c.Compose(concepts, r)
	assert.LessOrEqual(t, len(strings.Fields(utterance)), 2)

	c.GrammarLevel = 1
	utterance = c.Compose(concepts, r)
	assert.LessOrEqual(t, len(strings.Fields(utterance)), 3)

	c.GrammarLevel = 3
	utterance = c.Compose(concepts, r)
	assert.GreaterOrEqual(t, len(strings.Fields(utterance)), 4)
}

func TestStateRoundTrip(t *testing.T) {
	c := NewCommunication(42, rng.New(1))
	c.GrammarLevel = 2
	c.Drift(260, rng.New(2))

	restored := HydrateState(c.ExportState())
	assert.Equal(t, c.Lexicon, restored.Lexicon)
	assert.Equal(t, c.GrammarLevel, restored.GrammarLevel)
	assert.Equal(t, c.LastDriftTick, restored.LastDriftTick)
}
