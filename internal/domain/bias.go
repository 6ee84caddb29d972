package domain

// BiasCategory is the classification outcome for a piece of job-description text.
type BiasCategory string

const (
	BiasUnset     BiasCategory = ""
	BiasMasculine BiasCategory = "masculine"
	BiasFeminine  BiasCategory = "feminine"
	BiasNeutral   BiasCategory = "neutral"
)

// Valid reports whether c is one of the three classified categories.
func (c BiasCategory) Valid() bool {
	switch c {
	case BiasMasculine, BiasFeminine, BiasNeutral:
		return true
	default:
		return false
	}
}

// OrNeutral returns c, or BiasNeutral when c is unset or unknown.
func (c BiasCategory) OrNeutral() BiasCategory {
	if c.Valid() {
		return c
	}
	return BiasNeutral
}

// Direction returns the human-readable coding label used in prompts and fallbacks.
func (c BiasCategory) Direction() string {
	switch c {
	case BiasMasculine:
		return "masculine-coded"
	case BiasFeminine:
		return "feminine-coded"
	default:
		return "neutral"
	}
}
