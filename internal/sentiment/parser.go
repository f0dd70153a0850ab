package sentiment

import "strings"

// ParseLabels extracts sentiment and tone labels from a free-form model
// response such as "Sentiment: Positive\nTone: Friendly". The first line
// containing "sentiment" and the first containing "tone" (case-insensitive)
// are used; the label is everything after the last colon, trimmed. A label
// stays nil when no line matches. Unparseable responses are not an error.
func ParseLabels(text string) (sentiment, tone *string) {
	for _, line := range strings.Split(text, "\n") {
		lower := strings.ToLower(line)
		if sentiment == nil && strings.Contains(lower, "sentiment") {
			sentiment = labelAfterColon(line)
		}
		if tone == nil && strings.Contains(lower, "tone") {
			tone = labelAfterColon(line)
		}
	}
	return sentiment, tone
}

func labelAfterColon(line string) *string {
	label := line
	if i := strings.LastIndex(line, ":"); i >= 0 {
		label = line[i+1:]
	}
	label = strings.TrimSpace(label)
	return &label
}
