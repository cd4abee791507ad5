package businessflow

import (
	"encoding/json"
	"strings"

	"github.com/amirphl/Kushinada-Labeling/models"
)

// ParseTagText converts a pasted, loosely formatted text blob into a deduplicated
// ordered list of tag definitions. Two shapes are accepted:
//
//	[{"short_point": [{"tag": ..., "title1": ..., ...}, ...]}, ...]
//	{"short_point": [...], "long_point": ...}
//
// Input is frequently pasted from Python literal syntax (single quotes,
// None/True/False), so a strict JSON parse is attempted first and, on failure,
// retried after a blind token substitution pass. The substitution is lossy for
// apostrophes inside string values; that is an accepted limitation, not a bug
// to fix with a real grammar.
func ParseTagText(raw string) ([]models.TagDefinition, error) {
	root, ok := parseStrictOrSanitized(raw)
	if !ok {
		return nil, ErrMalformedTagText
	}

	var defs []models.TagDefinition
	seen := make(map[string]bool)

	collect := func(entry map[string]any) {
		points, _ := entry["short_point"].([]any)
		for _, p := range points {
			obj, ok := p.(map[string]any)
			if !ok {
				continue
			}
			tag := stringField(obj, "tag")
			if tag == "" || seen[tag] {
				continue
			}
			seen[tag] = true
			defs = append(defs, models.TagDefinition{
				Tag:     tag,
				Title1:  stringField(obj, "title1"),
				Title2:  stringField(obj, "title2"),
				Content: stringField(obj, "content"),
			})
		}
	}

	switch v := root.(type) {
	case []any:
		for _, item := range v {
			if entry, ok := item.(map[string]any); ok {
				collect(entry)
			}
		}
	case map[string]any:
		collect(v)
	default:
		return nil, ErrMalformedTagText
	}

	if len(defs) == 0 {
		return nil, ErrNoTagsFound
	}
	return defs, nil
}

func parseStrictOrSanitized(raw string) (any, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, false
	}

	var root any
	if err := json.Unmarshal([]byte(trimmed), &root); err == nil {
		return root, true
	}

	if err := json.Unmarshal([]byte(sanitizeTagText(trimmed)), &root); err == nil {
		return root, true
	}
	return nil, false
}

// sanitizeTagText rewrites Python literal tokens into their JSON equivalents.
// Plain substring replacement, on purpose: content strings containing
// apostrophes can be corrupted by the quote swap.
func sanitizeTagText(raw string) string {
	r := strings.NewReplacer(
		"'", `"`,
		"None", "null",
		"True", "true",
		"False", "false",
	)
	return r.Replace(raw)
}

func stringField(obj map[string]any, key string) string {
	s, _ := obj[key].(string)
	return s
}
