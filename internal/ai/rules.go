package ai

import "strings"

// Ordered token lists for the fallback classifier. Matching is plain
// substring search on the lower-cased text, affirmative list first.
var (
	affirmTokens = []string{"yes", "yep", "yeah", "sure", "ok", "okay", "can", "will", "i can", "i'll", "i will", "agree", "affirmative", "works for me"}
	negTokens    = []string{"no", "nah", "not", "can't", "cannot", "won't", "will not", "nope", "never", "refuse"}
)

// RuleClassify labels text without the AI backend. Deterministic, no
// side effects. Empty text is Neutral.
func RuleClassify(text string) Label {
	if text == "" {
		return Neutral
	}

	t := strings.ToLower(text)

	for _, tok := range affirmTokens {
		if strings.Contains(t, tok) {
			return Agree
		}
	}
	for _, tok := range negTokens {
		if strings.Contains(t, tok) {
			return Disagree
		}
	}

	return Neutral
}
