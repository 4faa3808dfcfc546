package cognition

import (
	"fmt"

	"github.com/HiddenPCOfficial/biotica/internal/language"
	"github.com/HiddenPCOfficial/biotica/internal/rng"
)

// DialogueLine is a deterministic plan-bound utterance: the raw faction
// tokens plus a fallback gloss used when no narrative collaborator responds.
type DialogueLine struct {
	Tokens        string `json:"tokens"`
	FallbackGloss string `json:"fallback_gloss"`
}

// intentConcepts maps each intent to the concepts its dialogue draws on.
var intentConcepts = map[Intent][]language.Concept{
	IntentExplore:         {language.ConceptEarth, language.ConceptDanger},
	IntentGather:          {language.ConceptFood, language.ConceptEarth},
	IntentFarm:            {language.ConceptFood, language.ConceptEarth, language.ConceptWater},
	IntentBuild:           {language.ConceptShelter, language.ConceptEarth},
	IntentFortify:         {language.ConceptShelter, language.ConceptDanger},
	IntentMigrate:         {language.ConceptWater, language.ConceptEarth},
	IntentTrade:           {language.ConceptTrade, language.ConceptFood},
	IntentDefend:          {language.ConceptDanger, language.ConceptShelter},
	IntentInvent:          {language.ConceptFire, language.ConceptEarth},
	IntentWrite:           {language.ConceptLaw, language.ConceptGod},
	IntentNegotiate:       {language.ConceptTrade, language.ConceptLaw},
	IntentExpandTerritory: {language.ConceptEarth, language.ConceptLaw},
	IntentDomesticate:     {language.ConceptMate, language.ConceptFood},
	IntentHunt:            {language.ConceptFood, language.ConceptDanger},
}

// intentGlossTemplates are the deterministic fallback lines, one per intent.
var intentGlossTemplates = map[Intent]string{
	IntentExplore:         "speaks of unknown ground beyond the %s",
	IntentGather:          "points toward food near the %s",
	IntentFarm:            "speaks of tending the soil at the %s",
	IntentBuild:           "calls for shelter to rise at the %s",
	IntentFortify:         "warns that the border at the %s must hold",
	IntentMigrate:         "urges the kin to move toward the %s",
	IntentTrade:           "offers goods in exchange near the %s",
	IntentDefend:          "calls the guard to the %s",
	IntentInvent:          "describes a new making at the %s",
	IntentWrite:           "recites what must be written at the %s",
	IntentNegotiate:       "seeks terms of accord at the %s",
	IntentExpandTerritory: "claims the ground out to the %s",
	IntentDomesticate:     "speaks softly of the beasts near the %s",
	IntentHunt:            "tracks prey toward the %s",
}

// BindDialogue composes the plan-bound dialogue line for an intent: tokens
// from the faction lexicon plus the deterministic gloss.
func BindDialogue(intent Intent, comm *language.Communication, placeName string, r *rng.Rng) DialogueLine {
	concepts := ConceptsFor(intent)
	tmpl, ok := intentGlossTemplates[intent]
	if !ok {
		tmpl = "gestures toward the %s"
	}
	return DialogueLine{
		Tokens:        comm.Compose(concepts, r),
		FallbackGloss: fmt.Sprintf(tmpl, placeName),
	}
}

// ConceptsFor returns the utterance concepts for an intent.
func ConceptsFor(intent Intent) []language.Concept {
	if c, ok := intentConcepts[intent]; ok {
		return c
	}
	return []language.Concept{language.ConceptEarth}
}
