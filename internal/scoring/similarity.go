package scoring

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Scorer grades free-text answers against a reference answer. It is
// stateless and safe to share across sessions.
type Scorer struct {
	encoder TextEncoder
}

// NewScorer builds a scorer. A nil encoder falls back to the lexical
// n-gram encoder.
func NewScorer(encoder TextEncoder) *Scorer {
	if encoder == nil {
		encoder = NewNGramEncoder()
	}
	return &Scorer{encoder: encoder}
}

// typoTable fixes a small set of misspellings seen in real submissions
// before tokenization.
var typoTable = map[string]string{
	"asnwer":   "answer",
	"fike":     "file",
	"delte":    "delete",
	"usedd":    "used",
	"mdoal":    "model",
	"dtaabase": "database",
}

var stopWords = map[string]struct{}{
	"the": {}, "is": {}, "a": {}, "an": {}, "and": {}, "to": {},
	"of": {}, "it": {}, "that": {}, "this": {}, "in": {}, "on": {},
	"for": {}, "with": {}, "by": {}, "at": {},
}

var wordPattern = regexp.MustCompile(`\b\w+\b`)

const (
	fuzzyMatchCutoff    = 0.8
	irrelevanceHardGate = 0.7
	irrelevanceSoftGate = 0.5
	irrelevancePenalty  = 0.3
	parrotOverlapLimit  = 0.7
	parrotFactor        = 0.2

	weightConcept  = 0.6
	weightSequence = 0.2
	weightVector   = 0.2
)

func normalizeText(text string) string {
	text = strings.ToLower(strings.TrimSpace(text))
	for wrong, right := range typoTable {
		text = strings.ReplaceAll(text, wrong, right)
	}
	return text
}

func meaningfulTokens(text string) map[string]struct{} {
	tokens := make(map[string]struct{})
	for _, tok := range wordPattern.FindAllString(text, -1) {
		if _, stop := stopWords[tok]; stop {
			continue
		}
		tokens[tok] = struct{}{}
	}
	return tokens
}

// correctTokens maps each user token onto its closest reference token when
// the fuzzy ratio clears the cutoff; unmatched tokens pass through.
func correctTokens(userTokens, referenceTokens map[string]struct{}) map[string]struct{} {
	corrected := make(map[string]struct{}, len(userTokens))
	for tok := range userTokens {
		if _, ok := referenceTokens[tok]; ok {
			corrected[tok] = struct{}{}
			continue
		}
		if match, ok := closestToken(tok, referenceTokens, fuzzyMatchCutoff); ok {
			corrected[match] = struct{}{}
		} else {
			corrected[tok] = struct{}{}
		}
	}
	return corrected
}

func closestToken(token string, candidates map[string]struct{}, cutoff float64) (string, bool) {
	// Sorted iteration keeps ties stable: equal ratios resolve to the
	// lexicographically smallest candidate instead of map order.
	sorted := make([]string, 0, len(candidates))
	for candidate := range candidates {
		sorted = append(sorted, candidate)
	}
	sort.Strings(sorted)

	best := ""
	bestRatio := cutoff
	for _, candidate := range sorted {
		ratio := sequenceRatio(token, candidate)
		if ratio < cutoff {
			continue
		}
		if ratio > bestRatio || best == "" {
			best = candidate
			bestRatio = ratio
		}
	}
	return best, best != ""
}

// Score returns a similarity in [0,1] between a submitted answer and the
// reference answer. Deterministic for identical inputs.
func (s *Scorer) Score(userText, referenceText, questionText string) float64 {
	cleanUser := normalizeText(userText)
	cleanReference := normalizeText(referenceText)
	cleanQuestion := normalizeText(questionText)

	if len(cleanUser) < 2 {
		return 0.0
	}

	userTokens := meaningfulTokens(cleanUser)
	referenceTokens := meaningfulTokens(cleanReference)
	userTokens = correctTokens(userTokens, referenceTokens)

	// Irrelevance check: a high share of tokens outside the reference
	// vocabulary means the answer is talking about something else.
	irrelevantPenalty := 0.0
	if len(referenceTokens) > 0 && len(userTokens) > 0 {
		unexpected := 0
		for tok := range userTokens {
			if _, ok := referenceTokens[tok]; !ok {
				unexpected++
			}
		}
		ratio := float64(unexpected) / float64(len(userTokens))
		if ratio > irrelevanceHardGate {
			return 0.1
		}
		if ratio > irrelevanceSoftGate {
			irrelevantPenalty = irrelevancePenalty
		}
	}

	vectorScore := s.encoder.Similarity(cleanUser, cleanReference)

	conceptScore := 0.0
	if len(referenceTokens) > 0 {
		intersection := 0
		for tok := range userTokens {
			if _, ok := referenceTokens[tok]; ok {
				intersection++
			}
		}
		conceptScore = float64(intersection) / float64(len(referenceTokens))
	}

	seqScore := sequenceRatio(cleanUser, cleanReference)

	parrotPenalty := 1.0
	if questionText != "" {
		questionTokens := meaningfulTokens(cleanQuestion)
		if len(questionTokens) > 0 && len(userTokens) > 0 && len(userTokens) < 10 {
			overlap := 0
			for tok := range userTokens {
				if _, ok := questionTokens[tok]; ok {
					overlap++
				}
			}
			if float64(overlap)/float64(len(userTokens)) > parrotOverlapLimit {
				parrotPenalty = parrotFactor
			}
		}
	}

	base := conceptScore*weightConcept + seqScore*weightSequence + vectorScore*weightVector
	final := base*parrotPenalty - irrelevantPenalty

	// Near-exact keyword coverage beats the blended estimate.
	if conceptScore > 0.9 {
		final = maxFloat(final, 0.95)
	}

	return clamp01(final)
}

// Explain produces rule-based feedback for a graded answer, ending with the
// reference answer.
func (s *Scorer) Explain(userText, referenceText, questionText string) string {
	userClean := strings.TrimSpace(userText)
	referenceClean := strings.TrimSpace(referenceText)

	if userClean == "" {
		return "You didn't provide an answer. The correct answer is essential to understand this concept."
	}
	if strings.EqualFold(userClean, referenceClean) {
		return "Perfect! Your answer exactly matches what we were looking for."
	}

	userTokens := meaningfulTokens(strings.ToLower(userClean))
	referenceTokens := meaningfulTokens(strings.ToLower(referenceClean))

	var missing []string
	for tok := range referenceTokens {
		if _, ok := userTokens[tok]; !ok {
			missing = append(missing, tok)
		}
	}
	sort.Strings(missing)

	extra := 0
	for tok := range userTokens {
		if _, ok := referenceTokens[tok]; !ok {
			extra++
		}
	}

	var parts []string
	if len(missing) > 0 {
		top := missing
		if len(top) > 3 {
			top = top[:3]
		}
		parts = append(parts, fmt.Sprintf("You missed key concepts like '%s'.", strings.Join(top, ", ")))
	}
	if extra > 0 && len(referenceTokens) > 0 && len(userTokens) > 0 {
		if float64(extra)/float64(len(userTokens)) > 0.5 {
			parts = append(parts, "Your answer included information that wasn't quite relevant to the specific question.")
		}
	}
	if float64(len(userTokens)) < float64(len(referenceTokens))*0.5 {
		parts = append(parts, "Your response was a bit too brief. Try to elaborate more to fully cover the topic.")
	}
	if questionText != "" && len(userTokens) > 0 {
		questionTokens := meaningfulTokens(strings.ToLower(questionText))
		overlap := 0
		for tok := range userTokens {
			if _, ok := questionTokens[tok]; ok {
				overlap++
			}
		}
		if float64(overlap)/float64(len(userTokens)) > 0.8 {
			parts = append(parts, "It looks like you mostly repeated words from the question. Try to explain in your own words.")
		}
	}

	if len(parts) == 0 {
		return fmt.Sprintf("Your answer is close! Compare it with the suggested answer to see the precise phrasing: '%s'.", referenceClean)
	}
	return fmt.Sprintf("%s The correct answer is: '%s'.", strings.Join(parts, " "), referenceClean)
}

// sequenceRatio is the Ratcliff/Obershelp similarity of two strings:
// twice the number of matching characters over the total length.
func sequenceRatio(a, b string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}
	matches := matchingChars([]byte(a), []byte(b))
	return 2.0 * float64(matches) / float64(len(a)+len(b))
}

// matchingChars recursively sums the longest common substring and the
// matches on either side of it.
func matchingChars(a, b []byte) int {
	bestLen, bestA, bestB := 0, 0, 0
	// lengths[j] holds the common-suffix length ending at a[i-1], b[j-1].
	lengths := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		prevDiag := 0
		for j := 1; j <= len(b); j++ {
			tmp := lengths[j]
			if a[i-1] == b[j-1] {
				lengths[j] = prevDiag + 1
				if lengths[j] > bestLen {
					bestLen = lengths[j]
					bestA = i - bestLen
					bestB = j - bestLen
				}
			} else {
				lengths[j] = 0
			}
			prevDiag = tmp
		}
	}
	if bestLen == 0 {
		return 0
	}
	total := bestLen
	total += matchingChars(a[:bestA], b[:bestB])
	total += matchingChars(a[bestA+bestLen:], b[bestB+bestLen:])
	return total
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
