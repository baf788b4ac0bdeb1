package cdm

import (
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
)

// normalizeName lowercases a name and strips everything but letters and
// digits, so "Customer_Account" and "customerAccount" compare equal.
func normalizeName(name string) string {
	var b strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

// similarity returns a normalized edit-distance similarity in [0, 1] between
// two already-normalized names: 1 for equal strings, 0 for entirely
// different ones.
func similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	if a == "" || b == "" {
		return 0
	}

	longest := len(a)
	if len(b) > longest {
		longest = len(b)
	}

	distance := levenshtein.ComputeDistance(a, b)
	return 1 - float64(distance)/float64(longest)
}

// nameSimilarity scores a diagram name against a template's display name,
// logical name, and synonyms, returning the best similarity. A trailing
// plural "s" on the diagram name is also tried, since diagrams routinely
// pluralize entity names ("Customers", "Orders").
func nameSimilarity(name string, tpl Template) float64 {
	normalized := normalizeName(name)
	candidates := []string{normalized}
	if len(normalized) > 3 && strings.HasSuffix(normalized, "s") {
		candidates = append(candidates, strings.TrimSuffix(normalized, "s"))
	}

	best := 0.0
	for _, candidate := range candidates {
		if s := similarity(candidate, normalizeName(tpl.DisplayName)); s > best {
			best = s
		}
		if s := similarity(candidate, tpl.LogicalName); s > best {
			best = s
		}
		for _, synonym := range tpl.Synonyms {
			if s := similarity(candidate, synonym); s > best {
				best = s
			}
		}
	}
	return best
}
