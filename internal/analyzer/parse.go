package analyzer

import (
	"strings"

	"github.com/MikeSquared-Agency/steward/internal/feedback"
)

const (
	markerSentiment = "Sentiment:"
	markerUrgency   = "Urgency:"
	markerEmotion   = "Emotion:"
	markerCategory  = "Category:"
)

// ParseFields reads the four labeled lines out of an analysis reply.
// Each value runs from its marker to the next newline, or to the end of the
// text. A missing marker or a blank value is a *feedback.ParseError.
func ParseFields(raw string) (feedback.Fields, error) {
	var f feedback.Fields
	for _, field := range []struct {
		marker string
		dst    *string
	}{
		{markerSentiment, &f.Sentiment},
		{markerUrgency, &f.Urgency},
		{markerEmotion, &f.Emotion},
		{markerCategory, &f.Category},
	} {
		v, err := extract(raw, field.marker)
		if err != nil {
			return feedback.Fields{}, err
		}
		*field.dst = v
	}
	return f, nil
}

func extract(raw, marker string) (string, error) {
	name := strings.TrimSuffix(marker, ":")

	i := strings.Index(raw, marker)
	if i < 0 {
		return "", &feedback.ParseError{Field: name, Reason: "marker missing", Raw: raw}
	}
	rest := raw[i+len(marker):]
	if j := strings.IndexByte(rest, '\n'); j >= 0 {
		rest = rest[:j]
	}

	v := strings.TrimSpace(rest)
	if v == "" {
		return "", &feedback.ParseError{Field: name, Reason: "empty value", Raw: raw}
	}
	return v, nil
}
