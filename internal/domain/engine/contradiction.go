package engine

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/remedia/remedia/internal/domain/repertory"
)

// Contradiction screens the ranked candidates for known remedy
// incompatibilities and for recent repetition of the same remedy. Stage 6.
// Findings attach as warnings with a score penalty; nothing is ever removed
// from the list here.
type Contradiction struct {
	cfg    Config
	scorer *Scorer
}

func NewContradiction(cfg Config) *Contradiction {
	return &Contradiction{cfg: cfg, scorer: NewScorer(cfg)}
}

// Screen mutates the scores in place. A clean case leaves every score with a
// zero penalty and a nil warning list.
func (c *Contradiction) Screen(now time.Time, scores []FinalScore, remedies map[uuid.UUID]*repertory.Remedy, history []HistoryEntry) {
	partners := incompatiblePartners(scores, remedies)

	for i := range scores {
		fs := &scores[i]
		touched := false

		for _, other := range partners[strings.ToLower(fs.RemedyName)] {
			fs.Warnings = append(fs.Warnings, Warning{
				Type:     WarningIncompatibility,
				Severity: SeverityHigh,
				Message:  fmt.Sprintf("%s is incompatible with co-suggested %s", fs.RemedyName, other),
			})
			fs.ContradictionPenalty += c.cfg.IncompatibilityPenalty
			touched = true
		}

		if entry, ok := recentUse(now, fs.RemedyName, history, c.cfg.HistoryLookback); ok {
			fs.Warnings = append(fs.Warnings, Warning{
				Type:     WarningRepetition,
				Severity: SeverityMedium,
				Message: fmt.Sprintf("%s was already prescribed on %s",
					fs.RemedyName, entry.Date.Format("2006-01-02")),
			})
			fs.ContradictionPenalty += c.cfg.RepetitionPenalty
			touched = true
		}

		if touched {
			fs.Recompute()
			fs.Confidence = c.scorer.ConfidenceFor(fs.FinalScore, fs.RubricCount)
		}
	}

	sortScores(scores)
}

// incompatiblePartners maps each candidate (lowered name) to the display
// names of its incompatible co-candidates, sorted for deterministic warning
// order. A listing on either side of a pair flags both members; reference
// data rarely records the relation mutually.
func incompatiblePartners(scores []FinalScore, remedies map[uuid.UUID]*repertory.Remedy) map[string][]string {
	display := make(map[string]string, len(scores)) // lowered -> display
	for _, fs := range scores {
		display[strings.ToLower(fs.RemedyName)] = fs.RemedyName
	}

	paired := make(map[string]map[string]bool)
	link := func(a, b string) {
		if paired[a] == nil {
			paired[a] = make(map[string]bool)
		}
		paired[a][b] = true
	}
	for _, fs := range scores {
		remedy := remedies[fs.RemedyID]
		if remedy == nil {
			continue
		}
		self := strings.ToLower(fs.RemedyName)
		for _, incompat := range remedy.Incompatibles {
			key := strings.ToLower(strings.TrimSpace(incompat))
			if key == "" || key == self {
				continue
			}
			if _, ok := display[key]; ok {
				link(self, key)
				link(key, self)
			}
		}
	}

	partners := make(map[string][]string, len(paired))
	for name, set := range paired {
		for other := range set {
			partners[name] = append(partners[name], display[other])
		}
		sort.Strings(partners[name])
	}
	return partners
}

// recentUse returns the most recent history entry for the remedy strictly
// inside the lookback window. An entry sitting exactly on the window boundary
// is already outside it.
func recentUse(now time.Time, remedyName string, history []HistoryEntry, lookback time.Duration) (HistoryEntry, bool) {
	name := strings.ToLower(remedyName)
	var (
		latest HistoryEntry
		found  bool
	)
	for _, h := range history {
		if strings.ToLower(h.RemedyName) != name {
			continue
		}
		if now.Sub(h.Date) >= lookback || h.Date.After(now) {
			continue
		}
		if !found || h.Date.After(latest.Date) {
			latest = h
			found = true
		}
	}
	return latest, found
}
