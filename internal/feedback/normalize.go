package feedback

import (
	"strings"
	"unicode"
)

// Fields holds the raw labeled values read from an analysis reply.
type Fields struct {
	Sentiment string
	Urgency   string
	Emotion   string
	Category  string
}

// Normalize maps raw fields onto the closed sets.
//
// Matching ignores case, spacing, punctuation and markdown emphasis, so
// "**very negative**" reads as Very Negative. An unknown category falls into
// Other; an unknown sentiment or urgency is a ParseError because neither set
// has a catch-all member.
func (f Fields) Normalize(raw string) (Attributes, error) {
	sentiment, ok := ParseSentiment(f.Sentiment)
	if !ok {
		return Attributes{}, &ParseError{Field: "Sentiment", Reason: "unknown value " + quote(f.Sentiment), Raw: raw}
	}
	urgency, ok := ParseUrgency(f.Urgency)
	if !ok {
		return Attributes{}, &ParseError{Field: "Urgency", Reason: "unknown value " + quote(f.Urgency), Raw: raw}
	}
	category, ok := ParseCategory(f.Category)
	if !ok {
		category = CategoryOther
	}
	emotion := stripEmphasis(f.Emotion)
	if emotion == "" {
		return Attributes{}, &ParseError{Field: "Emotion", Reason: "empty value", Raw: raw}
	}
	return Attributes{
		Sentiment: sentiment,
		Urgency:   urgency,
		Emotion:   emotion,
		Category:  category,
	}, nil
}

// ParseSentiment returns the closed-set member matching s.
func ParseSentiment(s string) (Sentiment, bool) {
	k := labelKey(s)
	for _, v := range Sentiments {
		if labelKey(string(v)) == k {
			return v, true
		}
	}
	return "", false
}

// ParseUrgency returns the closed-set member matching s.
func ParseUrgency(s string) (Urgency, bool) {
	k := labelKey(s)
	for _, v := range Urgencies {
		if labelKey(string(v)) == k {
			return v, true
		}
	}
	return "", false
}

// ParseCategory returns the closed-set member matching s.
func ParseCategory(s string) (Category, bool) {
	k := labelKey(s)
	for _, v := range Categories {
		if labelKey(string(v)) == k {
			return v, true
		}
	}
	return "", false
}

// labelKey lowercases s and drops everything that is not a letter.
func labelKey(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) {
			sb.WriteRune(unicode.ToLower(r))
		}
	}
	return sb.String()
}

func stripEmphasis(s string) string {
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(s), "*_`\"'"))
}

func quote(s string) string {
	return `"` + s + `"`
}
