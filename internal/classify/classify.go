// Package classify maps contact modes and frequencies to semantic
// categories using injected lookup tables.
package classify

import (
	"fmt"
	"strings"
)

// ModeClass is the semantic category of an operating mode.
type ModeClass int

const (
	ModeOther ModeClass = iota
	ModeDigital
	ModeVoice
)

func (c ModeClass) String() string {
	switch c {
	case ModeDigital:
		return "digital"
	case ModeVoice:
		return "voice"
	default:
		return "other"
	}
}

// Tables holds the mode lookup sets. All matching is case-insensitive;
// the tables come from configuration and are not mutated after load.
type Tables struct {
	Digital     []string          // concrete digital modes/submodes (FT8, RTTY, ...)
	DigitalMain []string          // umbrella digital modes whose submode is the display label
	Voice       []string          // voice modes/submodes (SSB, USB, FM, ...)
	Special     map[string]string // "MODE" or "MODE/SUBMODE" to a short display label
}

// Classify returns the semantic category for a mode/submode pair.
// Digital tokens are checked before voice tokens; anything else is Other.
func (t Tables) Classify(mode, submode string) ModeClass {
	mode = strings.ToUpper(strings.TrimSpace(mode))
	submode = strings.ToUpper(strings.TrimSpace(submode))

	if t.isDigital(submode) || t.isDigital(mode) {
		return ModeDigital
	}
	if contains(t.Voice, submode) || contains(t.Voice, mode) {
		return ModeVoice
	}
	return ModeOther
}

func (t Tables) isDigital(token string) bool {
	return contains(t.Digital, token) || contains(t.DigitalMain, token)
}

// Label resolves the short display label for a mode/submode pair. The
// special-handling table wins, then umbrella digital modes collapse to
// their submode, then a classified submode stands alone; the combined
// form is the fallback.
func (t Tables) Label(mode, submode string) string {
	mode = strings.ToUpper(strings.TrimSpace(mode))
	submode = strings.ToUpper(strings.TrimSpace(submode))

	if label, ok := t.lookupSpecial(mode); ok {
		return label
	}
	if label, ok := t.lookupSpecial(mode + "/" + submode); ok {
		return label
	}

	if contains(t.DigitalMain, mode) {
		if submode != "" {
			return submode
		}
		return mode
	}

	if submode != "" && submode != mode {
		// A submode that classifies on its own is the interesting part.
		if t.isDigital(submode) || contains(t.Voice, submode) {
			return submode
		}
		return truncate(mode+"/"+submode, 10)
	}
	return truncate(mode, 8)
}

func (t Tables) lookupSpecial(key string) (string, bool) {
	for k, v := range t.Special {
		if strings.EqualFold(k, key) {
			return v, true
		}
	}
	return "", false
}

func contains(set []string, token string) bool {
	if token == "" {
		return false
	}
	for _, s := range set {
		if strings.EqualFold(s, token) {
			return true
		}
	}
	return false
}

func truncate(s string, max int) string {
	if len(s) > max {
		return s[:max]
	}
	return s
}

// BandRange is one closed frequency interval [LowMHz, HighMHz] with its
// band label.
type BandRange struct {
	LowMHz  float64 `mapstructure:"low"`
	HighMHz float64 `mapstructure:"high"`
	Label   string  `mapstructure:"label"`
}

// BandPlan is an ordered list of disjoint band intervals.
type BandPlan []BandRange

// Validate checks the plan invariants once at configuration load: each
// interval well-formed and labeled, the list sorted ascending and disjoint.
func (p BandPlan) Validate() error {
	for i, b := range p {
		if b.Label == "" {
			return fmt.Errorf("band %d: empty label", i)
		}
		if b.LowMHz <= 0 || b.HighMHz <= b.LowMHz {
			return fmt.Errorf("band %q: invalid range [%g, %g]", b.Label, b.LowMHz, b.HighMHz)
		}
		if i > 0 && b.LowMHz <= p[i-1].HighMHz {
			return fmt.Errorf("band %q overlaps %q", b.Label, p[i-1].Label)
		}
	}
	return nil
}

// BandFor returns the label of the first interval containing the
// frequency, or the empty string when no interval matches. Interval
// bounds are inclusive on both ends.
func (p BandPlan) BandFor(freqMHz float64) string {
	for _, b := range p {
		if freqMHz >= b.LowMHz && freqMHz <= b.HighMHz {
			return b.Label
		}
	}
	return ""
}
