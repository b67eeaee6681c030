// Package retrieval implements the scoring and search engine behind the
// codemap query tools: the relevance scorer, the agent suggester, and the
// document search.
//
// Every operation is a pure read over the immutable index tables (plus, for
// search, on-demand file reads), so the engine is safe for concurrent use.
package retrieval

import (
	"sort"
	"strings"

	"github.com/mapache-labs/codemap/internal/index"
)

const (
	maxRelevantSubsystems = 5
	maxFileSubsystems     = 3
	maxSuggestedFiles     = 10
)

// SubsystemMatch is one scored subsystem with the keywords that matched,
// kept for explainability.
type SubsystemMatch struct {
	Subsystem       string   `json:"subsystem"`
	Name            string   `json:"name"`
	Score           int      `json:"score"`
	MatchedKeywords []string `json:"matched_keywords"`
	Files           []string `json:"files"`
}

// RelevanceResult is the envelope returned by find_relevant_context.
type RelevanceResult struct {
	Task               string           `json:"task"`
	RelevantSubsystems []SubsystemMatch `json:"relevant_subsystems"`
	SuggestedFiles     []string         `json:"suggested_files"`
}

// Scorer maps free-text task descriptions to ranked subsystems.
type Scorer struct {
	idx *index.Index
}

// NewScorer creates a relevance scorer over the subsystem index.
func NewScorer(idx *index.Index) *Scorer {
	return &Scorer{idx: idx}
}

// FindRelevantContext scores every subsystem against the task description:
// +1 per keyword occurring as a substring of the lower-cased text (each
// keyword counts at most once), +2 if the subsystem's display name occurs.
// Zero-score subsystems are dropped; the rest sort by score descending with
// ties keeping load order. The top 5 are returned, and a deduplicated file
// list is built from the top 3 in rank order, capped at 10 entries.
func (sc *Scorer) FindRelevantContext(task string) *RelevanceResult {
	taskLower := strings.ToLower(task)

	var matches []SubsystemMatch
	for _, sub := range sc.idx.Subsystems() {
		score := 0
		var matched []string

		for _, kw := range sub.Keywords {
			if strings.Contains(taskLower, kw) {
				score++
				matched = append(matched, kw)
			}
		}
		if sub.LowerName() != "" && strings.Contains(taskLower, sub.LowerName()) {
			score += 2
		}

		if score == 0 {
			continue
		}

		files := make([]string, 0, len(sub.Files))
		for _, f := range sub.Files {
			files = append(files, sc.idx.QualifyFile(f))
		}
		matches = append(matches, SubsystemMatch{
			Subsystem:       sub.Key,
			Name:            sub.Name,
			Score:           score,
			MatchedKeywords: matched,
			Files:           files,
		})
	}

	// Stable keeps load order on ties, required for reproducible ranking.
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	var suggested []string
	seen := make(map[string]bool)
	for _, m := range matches[:min(len(matches), maxFileSubsystems)] {
		for _, f := range m.Files {
			if seen[f] {
				continue
			}
			seen[f] = true
			suggested = append(suggested, f)
		}
	}
	if len(suggested) > maxSuggestedFiles {
		suggested = suggested[:maxSuggestedFiles]
	}

	return &RelevanceResult{
		Task:               task,
		RelevantSubsystems: matches[:min(len(matches), maxRelevantSubsystems)],
		SuggestedFiles:     suggested,
	}
}
