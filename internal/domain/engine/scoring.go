package engine

import (
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/remedia/remedia/internal/domain/repertory"
)

// Scorer turns the pooled candidates into fully scored remedies. Stage 4.
// Scoring is a pure function of the profile, the pool, and the config; it
// never touches storage.
type Scorer struct {
	cfg Config
}

func NewScorer(cfg Config) *Scorer {
	return &Scorer{cfg: cfg}
}

// Score computes base score, all bonuses, and the initial confidence band for
// every pooled remedy. The result is sorted by final score descending, remedy
// name ascending.
func (s *Scorer) Score(profile *CaseProfile, pool []RemedyScore, remedies map[uuid.UUID]*repertory.Remedy) []FinalScore {
	symptoms := profile.All()
	scores := make([]FinalScore, 0, len(pool))

	for _, cand := range pool {
		remedy := remedies[cand.RemedyID]
		if remedy == nil {
			continue
		}

		fs := FinalScore{
			RemedyID:    cand.RemedyID,
			RemedyName:  cand.RemedyName,
			RubricCount: len(cand.Grades),
		}

		matchedCodes := make(map[string]bool)
		for _, g := range cand.Grades {
			fs.MatchedRubrics = append(fs.MatchedRubrics, g.RubricText)
			mult := s.cfg.GradeMultiplier(g.Grade)
			for _, code := range g.SymptomCodes {
				matchedCodes[code] = true
				fs.BaseScore += float64(g.Grade) * profile.WeightByCode(code) * mult
			}
		}
		for code := range matchedCodes {
			fs.MatchedSymptoms = append(fs.MatchedSymptoms, code)
		}
		sort.Strings(fs.MatchedSymptoms)

		fs.ConstitutionBonus = s.constitutionBonus(profile, remedy)
		fs.ModalityBonus = s.modalityBonus(profile, remedy)
		fs.PathologyBonus = s.pathologyBonus(profile, remedy)
		fs.KeynoteBonus = s.keynoteBonus(profile, remedy)
		fs.CoverageBonus = s.coverageBonus(len(matchedCodes), len(symptoms))

		fs.Recompute()
		fs.Confidence = s.ConfidenceFor(fs.FinalScore, fs.RubricCount)
		scores = append(scores, fs)
	}

	sortScores(scores)
	return scores
}

func sortScores(scores []FinalScore) {
	sort.SliceStable(scores, func(i, j int) bool {
		if scores[i].FinalScore != scores[j].FinalScore {
			return scores[i].FinalScore > scores[j].FinalScore
		}
		return scores[i].RemedyName < scores[j].RemedyName
	})
}

// ConfidenceFor maps a final score into its band. A remedy matching many
// rubrics is upgraded one band since broad coverage is itself evidence.
func (s *Scorer) ConfidenceFor(score float64, rubricCount int) Confidence {
	var band Confidence
	switch {
	case score >= s.cfg.VeryHighCutoff:
		band = ConfidenceVeryHigh
	case score >= s.cfg.HighCutoff:
		band = ConfidenceHigh
	case score >= s.cfg.MediumCutoff:
		band = ConfidenceMedium
	default:
		band = ConfidenceLow
	}

	if rubricCount >= s.cfg.BreadthRubricCount {
		switch band {
		case ConfidenceLow:
			band = ConfidenceMedium
		case ConfidenceMedium:
			band = ConfidenceHigh
		case ConfidenceHigh:
			band = ConfidenceVeryHigh
		}
	}
	return band
}

func (s *Scorer) constitutionBonus(profile *CaseProfile, remedy *repertory.Remedy) float64 {
	var bonus float64
	for _, trait := range remedy.ConstitutionTraits {
		for _, sym := range profile.Mental {
			if termsOverlap(trait, sym.Name) {
				bonus += s.cfg.ConstitutionMentalBonus
				break
			}
		}
	}
	for _, trait := range remedy.ConstitutionTraits {
		for _, sym := range profile.General {
			if termsOverlap(trait, sym.Name) {
				bonus += s.cfg.ConstitutionGeneralBonus
				break
			}
		}
	}
	return bonus
}

func (s *Scorer) modalityBonus(profile *CaseProfile, remedy *repertory.Remedy) float64 {
	var bonus float64
	for _, sym := range profile.Modalities {
		switch sym.Polarity {
		case "worse":
			if anyTermOverlaps(remedy.WorseFrom, sym.Name) {
				bonus += s.cfg.ModalityWorseBonus
			}
		case "better":
			if anyTermOverlaps(remedy.BetterFrom, sym.Name) {
				bonus += s.cfg.ModalityBetterBonus
			}
		}
	}
	return bonus
}

// pathologyBonus is flat: the remedy either covers the clinical picture or it
// does not, regardless of how many tags agree.
func (s *Scorer) pathologyBonus(profile *CaseProfile, remedy *repertory.Remedy) float64 {
	for _, tag := range profile.PathologyTags {
		if anyTermOverlaps(remedy.ClinicalIndications, tag) {
			return s.cfg.PathologyBonus
		}
	}
	return 0
}

func (s *Scorer) keynoteBonus(profile *CaseProfile, remedy *repertory.Remedy) float64 {
	var bonus float64
	for _, keynote := range remedy.Keynotes {
		matched := false
		for _, sym := range profile.Mental {
			if termsOverlap(keynote, sym.Name) {
				bonus += s.cfg.KeynoteMentalBonus
				matched = true
				break
			}
		}
		if matched {
			continue
		}
		for _, sym := range append(profile.General, profile.Particular...) {
			if termsOverlap(keynote, sym.Name) {
				bonus += s.cfg.KeynoteOtherBonus
				break
			}
		}
	}
	return bonus
}

func (s *Scorer) coverageBonus(matched, total int) float64 {
	if total == 0 {
		return 0
	}
	fraction := float64(matched) / float64(total)
	switch {
	case fraction >= s.cfg.CoverageHighThreshold:
		return s.cfg.CoverageHighBonus
	case fraction >= s.cfg.CoverageMidThreshold:
		return s.cfg.CoverageMidBonus
	default:
		return 0
	}
}

// termsOverlap reports a loose textual agreement between two clinical terms:
// one contains the other as a phrase, or they share a significant word.
func termsOverlap(a, b string) bool {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return false
	}
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return true
	}
	for _, wa := range significantWords(a) {
		for _, wb := range significantWords(b) {
			if wa == wb {
				return true
			}
		}
	}
	return false
}

func anyTermOverlaps(terms []string, name string) bool {
	for _, t := range terms {
		if termsOverlap(t, name) {
			return true
		}
	}
	return false
}
