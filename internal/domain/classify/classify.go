// Package classify maps outcome codes (PLOs) to skill categories and
// canonicalises free-text category spellings.
package classify

import (
	"regexp"
	"strings"
)

// Canonical category labels.
const (
	HardSkill  = "hard skill"
	SoftSkill  = "soft skill"
	MultiSkill = "multi-skill"
)

var (
	hardCodes = map[string]struct{}{"PLO1": {}, "PLO2": {}}
	softCodes = map[string]struct{}{"PLO3": {}, "PLO4": {}}

	separators = regexp.MustCompile(`[_ ]+`)

	synonyms = map[string]string{
		"hardskill":   HardSkill,
		"hard-skill":  HardSkill,
		"hard":        HardSkill,
		"softskill":   SoftSkill,
		"soft-skill":  SoftSkill,
		"soft":        SoftSkill,
		"multi":       MultiSkill,
		"multi-skill": MultiSkill,
		"multiskill":  MultiSkill,
	}
)

// ComputeCategory classifies a set of outcome codes. Codes are matched
// case-insensitively and unknown codes are ignored.
func ComputeCategory(codes []string) string {
	var hard, soft bool
	for _, c := range codes {
		c = strings.ToUpper(strings.TrimSpace(c))
		if _, ok := hardCodes[c]; ok {
			hard = true
		}
		if _, ok := softCodes[c]; ok {
			soft = true
		}
	}
	switch {
	case hard && soft:
		return MultiSkill
	case hard:
		return HardSkill
	case soft:
		return SoftSkill
	default:
		return ""
	}
}

// NormalizeCategory maps a free-text category to its canonical label.
// Unrecognised input is returned lowercased and trimmed. The result is a
// fixed point: NormalizeCategory(NormalizeCategory(x)) == NormalizeCategory(x).
func NormalizeCategory(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	if canonical, ok := synonyms[separators.ReplaceAllString(s, "-")]; ok {
		return canonical
	}
	return s
}

// NormalizeCodes upper-cases, trims and de-duplicates outcome codes, dropping blanks.
// A single comma separated string is accepted as well as a list.
func NormalizeCodes(codes []string) []string {
	seen := make(map[string]struct{}, len(codes))
	out := make([]string, 0, len(codes))
	for _, c := range codes {
		for _, part := range strings.Split(c, ",") {
			part = strings.ToUpper(strings.TrimSpace(part))
			if part == "" {
				continue
			}
			if _, dup := seen[part]; dup {
				continue
			}
			seen[part] = struct{}{}
			out = append(out, part)
		}
	}
	return out
}
