package engine

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/remedia/remedia/internal/domain/repertory"
)

// Text match strengths, strongest first. Anything below the configured floor
// is treated as no match.
const (
	strengthExact     = 100
	strengthWordMatch = 90
	strengthSubstring = 70
	strengthPrefix    = 50
)

// Matcher maps a normalized case onto repertory rubrics. Stage 2.
//
// Two passes: resolved symptom codes are matched against rubric linkage
// directly, and only when that yields nothing does the matcher fall back to
// scanning the repertory with the text ladder. Placeholder symptoms only ever
// participate in the text pass since their codes exist nowhere.
type Matcher struct {
	rubrics RubricSource
	cfg     Config
}

func NewMatcher(rubrics RubricSource, cfg Config) *Matcher {
	return &Matcher{rubrics: rubrics, cfg: cfg}
}

// Match scores and selects rubrics for the profile. The result is never nil;
// an empty repertory yields StateUnresolved rather than an error, and the
// facade decides whether that is fatal.
func (m *Matcher) Match(ctx context.Context, profile *CaseProfile, repertoryName string) (*MatchResult, error) {
	symptoms := profile.All()
	if len(symptoms) == 0 {
		return &MatchResult{State: StateUnresolved}, nil
	}

	matches, err := m.linkedPass(ctx, symptoms)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		if matches, err = m.textPass(ctx, symptoms, repertoryName); err != nil {
			return nil, err
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Confidence != matches[j].Confidence {
			return matches[i].Confidence > matches[j].Confidence
		}
		return matches[i].Rubric.Text < matches[j].Rubric.Text
	})

	result := &MatchResult{Matches: matches}
	for i := range matches {
		if matches[i].Confidence >= m.cfg.AutoSelectThreshold {
			matches[i].AutoSelected = true
			result.Selected = append(result.Selected, matches[i])
		}
	}

	switch {
	case len(result.Selected) > 0:
		result.State = StateResolved
	case len(matches) > 0:
		// Nothing cleared the threshold. Take the strongest few anyway so a
		// borderline case still produces suggestions instead of nothing.
		n := m.cfg.FallbackTopN
		if n > len(matches) {
			n = len(matches)
		}
		result.Selected = matches[:n]
		result.State = StateFallbackUsed
	default:
		result.State = StateUnresolved
	}
	return result, nil
}

// linkedPass matches resolved symptom codes against rubric linkage.
// Confidence is the fraction of the rubric's own linked-symptom set the case
// covers, so a rubric linking exactly one case symptom scores 100 no matter
// how broad the rest of the case is.
func (m *Matcher) linkedPass(ctx context.Context, symptoms []CaseSymptom) ([]RubricMatch, error) {
	caseCodes := make(map[string]bool, len(symptoms))
	var codes []string
	for _, s := range symptoms {
		if !s.Placeholder {
			caseCodes[s.Code] = true
			codes = append(codes, s.Code)
		}
	}
	if len(codes) == 0 {
		return nil, nil
	}

	rubrics, err := m.rubrics.ListByLinkedCodes(ctx, codes)
	if err != nil {
		return nil, fmt.Errorf("rubric lookup by linked codes: %w", err)
	}

	var matches []RubricMatch
	for _, r := range rubrics {
		if len(r.LinkedSymptoms) == 0 {
			continue
		}
		var matched []string
		for _, c := range r.LinkedSymptoms {
			if caseCodes[c] {
				matched = append(matched, c)
			}
		}
		if len(matched) == 0 {
			continue
		}
		matches = append(matches, RubricMatch{
			Rubric:          r,
			MatchedSymptoms: matched,
			Confidence:      float64(len(matched)) / float64(len(r.LinkedSymptoms)) * 100,
		})
	}
	return matches, nil
}

// textPass scans every rubric of the repertory with the tiered ladder.
func (m *Matcher) textPass(ctx context.Context, symptoms []CaseSymptom, repertoryName string) ([]RubricMatch, error) {
	rubrics, err := m.rubrics.ListByRepertory(ctx, repertoryName)
	if err != nil {
		return nil, fmt.Errorf("rubric scan for repertory %q: %w", repertoryName, err)
	}

	var matches []RubricMatch
	for _, r := range rubrics {
		var strengths []symptomStrength
		for _, s := range symptoms {
			strength := matchStrength(s.Name, r.Text)
			if strength >= m.cfg.MatchFloor {
				strengths = append(strengths, symptomStrength{code: s.Code, strength: strength, weight: s.Weight})
			}
		}
		if match, ok := m.buildMatch(r, strengths, len(symptoms)); ok {
			matches = append(matches, match)
		}
	}
	return matches, nil
}

type symptomStrength struct {
	code     string
	strength float64
	weight   float64
}

// buildMatch folds per-symptom text strengths into one rubric confidence:
// the weight-averaged strength scaled by the fraction of case symptoms the
// rubric covers, boosted when more than one symptom matches convincingly.
// Only the text pass uses this; the linked pass rates linked-set coverage.
func (m *Matcher) buildMatch(r *repertory.Rubric, strengths []symptomStrength, totalSymptoms int) (RubricMatch, bool) {
	if len(strengths) == 0 || totalSymptoms == 0 {
		return RubricMatch{}, false
	}

	var sumW, sumSW float64
	var convincing int
	codes := make([]string, 0, len(strengths))
	for _, ss := range strengths {
		sumW += ss.weight
		sumSW += ss.strength * ss.weight
		if ss.strength > strengthPrefix {
			convincing++
		}
		codes = append(codes, ss.code)
	}
	if sumW == 0 {
		return RubricMatch{}, false
	}

	confidence := (sumSW / sumW) * (float64(len(strengths)) / float64(totalSymptoms))
	if convincing > 1 {
		confidence *= m.cfg.MultiMatchBoost
	}
	if confidence > 100 {
		confidence = 100
	}
	if confidence < 0 {
		confidence = 0
	}

	return RubricMatch{
		Rubric:          r,
		MatchedSymptoms: codes,
		Confidence:      confidence,
	}, true
}

// matchStrength rates how well a symptom name matches a rubric text. Tiers,
// strongest first: exact text, whole-phrase on word boundaries, bare
// substring, then shared word prefixes.
func matchStrength(symptom, rubricText string) float64 {
	s := strings.ToLower(strings.TrimSpace(symptom))
	t := strings.ToLower(rubricText)
	if s == "" || t == "" {
		return 0
	}
	if s == t {
		return strengthExact
	}
	if containsPhrase(t, s) {
		return strengthWordMatch
	}
	if strings.Contains(t, s) {
		return strengthSubstring
	}
	if prefixOverlap(s, t) {
		return strengthPrefix
	}
	return 0
}

// containsPhrase reports whether phrase occurs in text bounded by non-letter
// characters on both sides.
func containsPhrase(text, phrase string) bool {
	for from := 0; ; {
		idx := strings.Index(text[from:], phrase)
		if idx < 0 {
			return false
		}
		start := from + idx
		end := start + len(phrase)
		leftOK := start == 0 || !isWordChar(rune(text[start-1]))
		rightOK := end == len(text) || !isWordChar(rune(text[end]))
		if leftOK && rightOK {
			return true
		}
		from = start + 1
	}
}

func isWordChar(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// prefixOverlap reports whether at least half of the symptom's significant
// words (four letters or more) prefix a word of the rubric text.
func prefixOverlap(symptom, text string) bool {
	symWords := significantWords(symptom)
	if len(symWords) == 0 {
		return false
	}
	textWords := strings.FieldsFunc(text, func(r rune) bool { return !isWordChar(r) })

	var hits int
	for _, sw := range symWords {
		for _, tw := range textWords {
			if strings.HasPrefix(tw, sw) || strings.HasPrefix(sw, tw) && len(tw) >= 4 {
				hits++
				break
			}
		}
	}
	return hits*2 >= len(symWords)
}

func significantWords(s string) []string {
	var out []string
	for _, w := range strings.FieldsFunc(s, func(r rune) bool { return !isWordChar(r) }) {
		if len(w) >= 4 {
			out = append(out, w)
		}
	}
	return out
}
