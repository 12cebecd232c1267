package utils

import (
	"math"
	"regexp"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

var (
	nonAlnum    = regexp.MustCompile(`[^\p{L}\p{N}]+`)
	trademarkRe = regexp.MustCompile(`[™®©]`)
)

// separators are the punctuation marks a slug may drop without losing identity.
const separators = "-_.,:;'’\"()[]&/!?"

// NormalizeName lowercases a title and collapses punctuation into single spaces.
func NormalizeName(name string) string {
	lowered := strings.ToLower(trademarkRe.ReplaceAllString(name, ""))
	return strings.TrimSpace(nonAlnum.ReplaceAllString(lowered, " "))
}

// Slug converts a title into a lowercase dash-separated path segment.
// Letters and digits of any script are kept.
func Slug(name string) string {
	return strings.ReplaceAll(NormalizeName(name), " ", "-")
}

// KeySlug is Slug for use as an identifier. When the slug would be empty, or
// would drop symbols such as "+" or "#", a short hash of the raw name is
// appended so "C++" and "C" stay distinct.
func KeySlug(name string) string {
	slug := Slug(name)
	if slug != "" && !hasSignificantSymbols(trademarkRe.ReplaceAllString(name, "")) {
		return slug
	}
	trimmed := strings.ToLower(strings.TrimSpace(name))
	if trimmed == "" {
		return ""
	}
	hash := uuid.NewSHA1(uuid.NameSpaceURL, []byte(trimmed)).String()[:8]
	if slug == "" {
		return hash
	}
	return slug + "-" + hash
}

func hasSignificantSymbols(name string) bool {
	return strings.IndexFunc(name, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r) && !unicode.IsSpace(r) &&
			!strings.ContainsRune(separators, r)
	}) >= 0
}

// NameSimilarity scores how closely two titles match on a 0..1 scale.
// Identical normalized names score 1; otherwise the cosine of their
// token-count vectors is returned.
func NameSimilarity(a, b string) float64 {
	na, nb := NormalizeName(a), NormalizeName(b)
	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return 1
	}

	ca := tokenCounts(na)
	cb := tokenCounts(nb)
	var dot, normA, normB float64
	for token, count := range ca {
		normA += count * count
		dot += count * cb[token]
	}
	for _, count := range cb {
		normB += count * count
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	score := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	// Keep anything short of an exact match below 1.
	return math.Min(score, 0.99)
}

func tokenCounts(normalized string) map[string]float64 {
	counts := make(map[string]float64)
	for _, token := range strings.Fields(normalized) {
		counts[token]++
	}
	return counts
}
