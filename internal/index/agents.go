package index

import (
	"strings"

	"github.com/mapache-labs/codemap/internal/config"
)

// Trigger is a precomputed, tagged trigger phrase. Single-word triggers
// match on whole-word membership; multi-word phrases match as literal
// substrings. The split happens once at load time, not per query.
type Trigger struct {
	Raw   string
	Words []string
}

// Single reports whether this trigger is a one-word trigger.
func (t Trigger) Single() bool { return len(t.Words) == 1 }

// WordCount returns the number of words in the trigger phrase.
func (t Trigger) WordCount() int { return len(t.Words) }

// Agent is one registered specialist with derived trigger state.
type Agent struct {
	ID          string
	Name        string
	Description string
	Triggers    []Trigger
	Tier        string

	// lowerDescription is the description lower-cased once for the weak
	// description-match signal.
	lowerDescription string
}

// LowerDescription returns the agent description lower-cased.
func (a *Agent) LowerDescription() string { return a.lowerDescription }

// RawTriggers returns the trigger phrases as plain strings, in load order.
func (a *Agent) RawTriggers() []string {
	raw := make([]string, len(a.Triggers))
	for i, t := range a.Triggers {
		raw[i] = t.Raw
	}
	return raw
}

// Registry is the immutable agent table with its derived trigger-frequency
// statistics. agentCount is a pure function of the static data, so it is
// computed once here and never per query.
type Registry struct {
	agents     []Agent
	agentCount map[string]int
}

// NewRegistry builds the agent registry from configuration.
func NewRegistry(cfg *config.Config) *Registry {
	reg := &Registry{agentCount: make(map[string]int)}

	for _, ac := range cfg.Agents {
		agent := Agent{
			ID:               ac.ID,
			Name:             ac.Name,
			Description:      ac.Description,
			Tier:             ac.Tier,
			lowerDescription: strings.ToLower(ac.Description),
		}
		for _, raw := range ac.Triggers {
			agent.Triggers = append(agent.Triggers, Trigger{
				Raw:   raw,
				Words: strings.Fields(raw),
			})
		}
		reg.agents = append(reg.agents, agent)

		// Count distinct agents per trigger: a trigger listed twice by
		// the same agent still counts once.
		seen := make(map[string]bool, len(ac.Triggers))
		for _, raw := range ac.Triggers {
			if seen[raw] {
				continue
			}
			seen[raw] = true
			reg.agentCount[raw]++
		}
	}

	return reg
}

// Agents returns all agents in load order. Callers must not mutate the
// returned slice.
func (r *Registry) Agents() []Agent { return r.agents }

// Len returns the number of registered agents.
func (r *Registry) Len() int { return len(r.agents) }

// AgentCount returns how many distinct agents list the exact trigger
// phrase. Unknown triggers report 1 so the uniqueness weight stays bounded.
func (r *Registry) AgentCount(trigger string) int {
	if n := r.agentCount[trigger]; n > 0 {
		return n
	}
	return 1
}
