package gateway

import (
	"encoding/json"
	"regexp"
)

var (
	fencedJSONRe = regexp.MustCompile("```(?:json)?\\s*\\n?([\\s\\S]*?)\\n?\\s*```")
	braceSpanRe  = regexp.MustCompile(`(\{[\s\S]*\})`)
)

// ExtractJSON recovers a JSON object from raw model output. It tries the text as-is,
// then the body of a markdown code fence, then the span from the first '{' to the
// last '}'. It returns nil when none of those decode to an object; malformed JSON is
// never repaired.
func ExtractJSON(text string) map[string]any {
	if obj, ok := decodeObject(text); ok {
		return obj
	}
	for _, re := range []*regexp.Regexp{fencedJSONRe, braceSpanRe} {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if obj, ok := decodeObject(m[1]); ok {
			return obj
		}
	}
	return nil
}

func decodeObject(s string) (map[string]any, bool) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(s), &obj); err != nil || obj == nil {
		return nil, false
	}
	return obj, true
}
