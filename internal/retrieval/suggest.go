package retrieval

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/mapache-labs/codemap/internal/index"
)

const maxSuggestedAgents = 3

// Confidence tiers derived from the top agent score.
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
	ConfidenceNone   = "none"
)

var wordPattern = regexp.MustCompile(`\b\w+\b`)

// AgentMatch is one scored agent with the triggers that fired.
type AgentMatch struct {
	Agent           string   `json:"agent"`
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	Tier            string   `json:"tier"`
	Score           float64  `json:"score"`
	MatchedTriggers []string `json:"matched_triggers"`
}

// SuggestResult is the envelope returned by suggest_agent.
type SuggestResult struct {
	Task            string       `json:"task"`
	Recommendation  string       `json:"recommendation,omitempty"`
	Confidence      string       `json:"confidence"`
	SuggestedAgents []AgentMatch `json:"suggested_agents"`
	ShouldInvoke    bool         `json:"should_invoke"`
	Disambiguation  string       `json:"disambiguation,omitempty"`
}

// Suggester maps free-text task descriptions to ranked agents using
// uniqueness-weighted trigger matching against the registry.
type Suggester struct {
	reg *index.Registry
}

// NewSuggester creates an agent suggester over the registry.
func NewSuggester(reg *index.Registry) *Suggester {
	return &Suggester{reg: reg}
}

// SuggestAgent scores every agent against the task description.
//
// Single-word triggers match only as whole words of the tokenized text, so
// "ui" does not fire inside "build". Multi-word triggers match as literal
// substrings with exact word order. A matched trigger contributes
// wordCount * (1 + 1/agentCount): triggers listed by fewer agents carry more
// signal, up to 2x base value when unique. A flat +0.5 is added when any
// input token longer than 3 characters appears in the agent's description.
func (sg *Suggester) SuggestAgent(task string) *SuggestResult {
	taskLower := strings.ToLower(task)
	tokens := wordPattern.FindAllString(taskLower, -1)

	wordSet := make(map[string]bool, len(tokens))
	for _, w := range tokens {
		wordSet[w] = true
	}

	var matches []AgentMatch
	for i := range sg.reg.Agents() {
		agent := &sg.reg.Agents()[i]
		score := 0.0
		var matchedTriggers []string

		for _, trig := range agent.Triggers {
			var matched bool
			if trig.Single() {
				matched = wordSet[trig.Raw]
			} else {
				matched = strings.Contains(taskLower, trig.Raw)
			}
			if !matched {
				continue
			}

			base := float64(trig.WordCount())
			uniqueness := 1.0 / float64(sg.reg.AgentCount(trig.Raw))
			score += base * (1.0 + uniqueness)
			matchedTriggers = append(matchedTriggers, trig.Raw)
		}

		// Weak, non-exclusive signal: the description mentions something
		// from the task.
		for word := range wordSet {
			if len(word) > 3 && strings.Contains(agent.LowerDescription(), word) {
				score += 0.5
				break
			}
		}

		if score == 0 {
			continue
		}
		matches = append(matches, AgentMatch{
			Agent:           agent.ID,
			Name:            agent.Name,
			Description:     agent.Description,
			Tier:            agent.Tier,
			Score:           score,
			MatchedTriggers: matchedTriggers,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	result := &SuggestResult{
		Task:            task,
		Confidence:      ConfidenceNone,
		SuggestedAgents: matches[:min(len(matches), maxSuggestedAgents)],
	}
	if len(matches) > 0 {
		result.Recommendation = matches[0].Agent
		result.Confidence = confidenceFor(matches[0].Score)
	}
	result.ShouldInvoke = result.Confidence == ConfidenceHigh || result.Confidence == ConfidenceMedium

	// An exact tie at the top is resolved by asking for more information,
	// not by an arbitrary pick.
	if len(matches) >= 2 && matches[0].Score == matches[1].Score {
		var tied []string
		for _, m := range matches {
			if m.Score == matches[0].Score {
				tied = append(tied, m.Agent)
			}
		}
		result.Disambiguation = fmt.Sprintf(
			"Tied between %s. Check which files you're modifying to decide.",
			strings.Join(tied, ", "),
		)
	}

	return result
}

func confidenceFor(topScore float64) string {
	switch {
	case topScore >= 4:
		return ConfidenceHigh
	case topScore >= 2:
		return ConfidenceMedium
	case topScore >= 1:
		return ConfidenceLow
	default:
		return ConfidenceNone
	}
}
