package cognition

import (
	"testing"

	"github.com/HiddenPCOfficial/biotica/internal/language"
	"github.com/HiddenPCOfficial/biotica/internal/rng"
)

func newTestComm(t *testing.T) *language.Communication {
	t.Helper()
	return language.NewCommunication(42, rng.New(1))
}
