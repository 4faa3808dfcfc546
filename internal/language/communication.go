// Package language provides per-faction lexicons: token invention, lexical
// drift, cross-faction borrowing, and utterance composition.
package language

import (
	"sort"
	"strings"

	"github.com/HiddenPCOfficial/biotica/internal/rng"
)

// Concept enumerates the ten core lexicon concepts.
type Concept string

const (
	ConceptFood    Concept = "FOOD"
	ConceptWater   Concept = "WATER"
	ConceptDanger  Concept = "DANGER"
	ConceptShelter Concept = "SHELTER"
	ConceptTrade   Concept = "TRADE"
	ConceptMate    Concept = "MATE"
	ConceptGod     Concept = "GOD"
	ConceptLaw     Concept = "LAW"
	ConceptFire    Concept = "FIRE"
	ConceptEarth   Concept = "EARTH"
)

// Concepts lists every concept in stable order.
var Concepts = []Concept{
	ConceptFood, ConceptWater, ConceptDanger, ConceptShelter, ConceptTrade,
	ConceptMate, ConceptGod, ConceptLaw, ConceptFire, ConceptEarth,
}

// Tick intervals for grammar and lexical evolution.
const (
	GrammarInterval = 120
	DriftInterval   = 260
	BorrowCooldown  = 60
)

// driftChance is the per-concept mutation probability at each drift pass.
const driftChance = 0.08

var onsetSyllables = []string{
	"ka", "tu", "mo", "ri", "sha", "ne", "go", "vu", "li", "da",
	"pe", "so", "ya", "ki", "ru", "ta",
}

var codaSyllables = []string{
	"n", "sh", "ra", "k", "mi", "lo", "t", "va", "su", "m",
	"re", "ni", "ga", "do", "la", "ze",
}

// driftAlphabet supplies characters for replace/insert mutations.
const driftAlphabet = "aeiougklmnrstvz"

// Communication is one faction's language state.
type Communication struct {
	Lexicon       map[Concept]string `json:"lexicon"`
	GrammarLevel  int                `json:"grammar_level"` // 0..3
	LastDriftTick uint64             `json:"last_drift_tick"`
	LastBorrowTick uint64            `json:"last_borrow_tick"`
}

// NewCommunication builds the initial lexicon for a faction. Tokens are
// seeded from the world seed and concept index so two factions founded on the
// same world still diverge through the rng draw.
func NewCommunication(seed uint32, r *rng.Rng) *Communication {
	lex := make(map[Concept]string, len(Concepts))
	for i, c := range Concepts {
		onset := onsetSyllables[(int(seed)+i*7+r.NextInt(len(onsetSyllables)))%len(onsetSyllables)]
		coda := codaSyllables[(int(seed)*3+i*11+r.NextInt(len(codaSyllables)))%len(codaSyllables)]
		lex[c] = onset + coda
	}
	return &Communication{Lexicon: lex}
}

// Token returns the faction's token for the concept.
func (c *Communication) Token(concept Concept) string { return c.Lexicon[concept] }

// grammarTarget derives the target grammar level from population.
func grammarTarget(population int) int {
	switch {
	case population <= 18:
		return 0
	case population <= 45:
		return 1
	case population <= 90:
		return 2
	default:
		return 3
	}
}

// UpdateGrammar nudges the grammar level toward the population-derived
// target, modulated by social stability. Runs on the grammar interval.
func (c *Communication) UpdateGrammar(population int, stress float64, r *rng.Rng) {
	target := grammarTarget(population)
	stability := 1 - stress
	if stability < 0 {
		stability = 0
	}
	if c.GrammarLevel < target && r.Chance(0.2*stability) {
		c.GrammarLevel++
	} else if c.GrammarLevel > target && r.Chance(0.15) {
		c.GrammarLevel--
	}
	if c.GrammarLevel < 0 {
		c.GrammarLevel = 0
	}
	if c.GrammarLevel > 3 {
		c.GrammarLevel = 3
	}
}

// Drift mutates each token with the drift probability: one character is
// replaced, inserted, or deleted. Runs on the drift interval.
func (c *Communication) Drift(tick uint64, r *rng.Rng) {
	for _, concept := range Concepts {
		if !r.Chance(driftChance) {
			continue
		}
		c.Lexicon[concept] = mutateToken(c.Lexicon[concept], r)
	}
	c.LastDriftTick = tick
}

func mutateToken(tok string, r *rng.Rng) string {
	if tok == "" {
		return string(driftAlphabet[r.NextInt(len(driftAlphabet))])
	}
	pos := r.NextInt(len(tok))
	ch := string(driftAlphabet[r.NextInt(len(driftAlphabet))])
	switch r.NextInt(3) {
	case 0: // replace
		return tok[:pos] + ch + tok[pos+1:]
	case 1: // insert
		return tok[:pos] + ch + tok[pos:]
	default: // delete
		if len(tok) <= 2 {
			return tok
		}
		return tok[:pos] + tok[pos+1:]
	}
}

// Borrow copies donor tokens into the receiver with per-concept probability
// equal to the contact intensity. The receiver must be past its borrow
// cooldown; returns whether any token moved.
func Borrow(receiver, donor *Communication, intensity float64, tick uint64, r *rng.Rng) bool {
	if tick < receiver.LastBorrowTick+BorrowCooldown && receiver.LastBorrowTick != 0 {
		return false
	}
	if intensity < 0 {
		intensity = 0
	}
	if intensity > 1 {
		intensity = 1
	}
	borrowed := false
	for _, concept := range Concepts {
		if r.Chance(intensity) {
			receiver.Lexicon[concept] = donor.Lexicon[concept]
			borrowed = true
		}
	}
	if borrowed {
		receiver.LastBorrowTick = tick
	}
	return borrowed
}

// Compose builds an utterance from the tokens for the selected concepts,
// decorated by grammar-level particles. Grammar 0 truncates to two tokens,
// grammar 1 to three.
func (c *Communication) Compose(concepts []Concept, r *rng.Rng) string {
	tokens := make([]string, 0, len(concepts)+2)
	for _, concept := range concepts {
		if tok := c.Lexicon[concept]; tok != "" {
			tokens = append(tokens, tok)
		}
	}

	if c.GrammarLevel >= 1 && r.Chance(0.4) {
		tokens = append(tokens, c.Lexicon[ConceptLaw])
	}
	if c.GrammarLevel >= 2 && r.Chance(0.35) {
		tokens = append([]string{c.Lexicon[ConceptGod]}, tokens...)
	}
	if c.GrammarLevel >= 2 && r.Chance(0.25) {
		tokens = append(tokens, c.Lexicon[ConceptShelter])
	}

	limit := len(tokens)
	switch c.GrammarLevel {
	case 0:
		limit = 2
	case 1:
		limit = 3
	}
	if len(tokens) > limit {
		tokens = tokens[:limit]
	}
	return strings.Join(tokens, " ")
}

// State is the plain-data export of one faction's language.
type State struct {
	Lexicon        map[string]string `json:"lexicon"`
	GrammarLevel   int               `json:"grammar_level"`
	LastDriftTick  uint64            `json:"last_drift_tick"`
	LastBorrowTick uint64            `json:"last_borrow_tick"`
}

// ExportState returns a deep copy of the language state.
func (c *Communication) ExportState() State {
	lex := make(map[string]string, len(c.Lexicon))
	for k, v := range c.Lexicon {
		lex[string(k)] = v
	}
	return State{
		Lexicon:        lex,
		GrammarLevel:   c.GrammarLevel,
		LastDriftTick:  c.LastDriftTick,
		LastBorrowTick: c.LastBorrowTick,
	}
}

// HydrateState restores a language state.
func HydrateState(st State) *Communication {
	lex := make(map[Concept]string, len(st.Lexicon))
	keys := make([]string, 0, len(st.Lexicon))
	for k := range st.Lexicon {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		lex[Concept(k)] = st.Lexicon[k]
	}
	return &Communication{
		Lexicon:        lex,
		GrammarLevel:   st.GrammarLevel,
		LastDriftTick:  st.LastDriftTick,
		LastBorrowTick: st.LastBorrowTick,
	}
}
