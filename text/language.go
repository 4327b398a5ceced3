package text

import (
	"unicode"

	"github.com/fwojciec/relay"
)

// Script associates a language tag with the code points that identify it.
type Script struct {
	Language relay.Language
	Table    *unicode.RangeTable
}

// Detector tags text with the first script whose code points appear in it.
type Detector struct {
	primary relay.Language
	scripts []Script
}

// NewDetector returns a Detector that checks scripts in order and falls back
// to primary when none match.
func NewDetector(primary relay.Language, scripts ...Script) *Detector {
	return &Detector{primary: primary, scripts: scripts}
}

// DefaultDetector distinguishes English (primary) from Bengali script.
func DefaultDetector() *Detector {
	return NewDetector(relay.LanguageEnglish, Script{Language: relay.LanguageBengali, Table: unicode.Bengali})
}

// Detect returns the language tag for s. It never fails.
func (d *Detector) Detect(s string) relay.Language {
	for _, sc := range d.scripts {
		for _, r := range s {
			if unicode.Is(sc.Table, r) {
				return sc.Language
			}
		}
	}
	return d.primary
}
