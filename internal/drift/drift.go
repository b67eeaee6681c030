// Package drift detects context drift: recent commits that touch a
// subsystem's code without updating its documentation, and debugging-heavy
// sessions that may warrant doc updates.
//
// The checker is a scanner, not an analyzer: it reports raw findings and
// lets the caller decide what to do with them. Every failure degrades to an
// empty finding; a drift check never blocks a session.
package drift

import (
	"context"
	"os/exec"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/mapache-labs/codemap/internal/config"
	"github.com/mapache-labs/codemap/internal/index"
	"go.uber.org/zap"
)

const (
	maxCommits = 10
	gitTimeout = 2 * time.Second

	// PriorityHigh findings recommend an immediate doc update;
	// PriorityMedium findings are worth mentioning; low-priority
	// subsystems are suppressed entirely.
	PriorityHigh   = "high"
	PriorityMedium = "medium"

	// maxShows is how many sessions a warning is shown before it
	// auto-dismisses (until new commits arrive).
	maxShows = 2
)

// Finding is one subsystem flagged for code/doc drift.
type Finding struct {
	Subsystem    string   `json:"subsystem"`
	Priority     string   `json:"priority"`
	CodeFiles    []string `json:"code_files"`
	ExpectedDocs []string `json:"expected_docs"`
}

// Report is the full result of a drift check.
type Report struct {
	Findings   []Finding     `json:"findings,omitempty"`
	Session    *SessionScore `json:"session,omitempty"`
	TimesShown int           `json:"times_shown"`
	MaxShows   int           `json:"max_shows"`
}

// Empty reports whether the check produced nothing worth surfacing.
func (r *Report) Empty() bool {
	return len(r.Findings) == 0 && r.Session == nil
}

// Checker runs drift detection against a repository and the session logs.
type Checker struct {
	idx      *index.Index
	cfg      config.Drift
	store    *StateStore
	repoRoot string
	logger   *zap.Logger

	// headSHA is overridable in tests; the default shells out to git.
	headSHA func(ctx context.Context) string
	// commitFiles is overridable in tests; the default parses git log.
	commitFiles func(ctx context.Context) []string
}

// NewChecker creates a drift checker. store may be nil, in which case the
// dismiss counter is not persisted and every check reports fresh.
func NewChecker(idx *index.Index, cfg config.Drift, store *StateStore, repoRoot string, logger *zap.Logger) *Checker {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Checker{idx: idx, cfg: cfg, store: store, repoRoot: repoRoot, logger: logger}
	c.headSHA = c.gitHeadSHA
	c.commitFiles = c.gitCommitFiles
	return c
}

// Check runs the full drift scan and applies the auto-dismiss counter.
func (c *Checker) Check(ctx context.Context) *Report {
	report := &Report{MaxShows: maxShows}

	findings := c.detectDrift(ctx)
	head := c.headSHA(ctx)
	report.Findings, report.TimesShown = c.applyDismissState(findings, head)

	// Only surface sessions past the debugging-intensity threshold.
	if score := c.scoreSessions(); score != nil && score.Score >= debugScoreThreshold {
		report.Session = score
	}

	return report
}

// Dismiss marks the current HEAD as dismissed so its warnings stop showing.
func (c *Checker) Dismiss(ctx context.Context) (string, error) {
	head := c.headSHA(ctx)
	if head == "" || c.store == nil {
		return "", nil
	}
	if err := c.store.Save(State{HeadSHA: head, TimesShown: maxShows}); err != nil {
		return "", err
	}
	return head, nil
}

// detectDrift flags subsystems whose code was touched in the recent commits
// while none of their docs were. Only subsystems with both code patterns and
// doc basenames participate.
func (c *Checker) detectDrift(ctx context.Context) []Finding {
	files := c.commitFiles(ctx)
	if len(files) == 0 {
		return nil
	}

	touchedDocs := make(map[string]bool)
	var codeFiles []string
	basePrefix := c.idx.BasePath()
	if basePrefix != "" && !strings.HasSuffix(basePrefix, "/") {
		basePrefix += "/"
	}
	docsPrefix := strings.TrimSuffix(c.idx.DocsDir(), "/") + "/"

	for _, f := range files {
		switch {
		case strings.HasPrefix(f, docsPrefix) && strings.HasSuffix(f, ".md"):
			touchedDocs[path.Base(f)] = true
		case f == "CLAUDE.md":
			touchedDocs["CLAUDE.md"] = true
		case basePrefix == "" || strings.HasPrefix(f, basePrefix):
			if !strings.HasSuffix(f, ".md") {
				codeFiles = append(codeFiles, strings.TrimPrefix(f, basePrefix))
			}
		}
	}

	var findings []Finding
	seenDocs := make(map[string]bool)
	for _, sub := range c.idx.Subsystems() {
		if len(sub.CodePatterns) == 0 || len(sub.DocBasenames) == 0 {
			continue
		}

		var matched []string
		for _, cf := range codeFiles {
			if matchesPattern(cf, sub.CodePatterns) {
				matched = append(matched, cf)
			}
		}
		if len(matched) == 0 {
			continue
		}

		var missing []string
		for _, d := range sub.DocBasenames {
			if !touchedDocs[d] && !seenDocs[d] {
				missing = append(missing, d)
			}
		}
		if len(missing) == 0 {
			continue
		}

		priority := c.cfg.Priorities[sub.Key]
		if priority != PriorityHigh && priority != PriorityMedium {
			continue
		}

		for _, d := range missing {
			seenDocs[d] = true
		}
		sort.Strings(matched)
		findings = append(findings, Finding{
			Subsystem:    sub.Key,
			Priority:     priority,
			CodeFiles:    matched[:min(len(matched), 3)],
			ExpectedDocs: missing[:min(len(missing), 3)],
		})
	}

	return findings
}

// matchesPattern reports whether a changed file falls under any of the
// subsystem's code patterns. Patterns ending in "/" are directory prefixes;
// the rest match exactly or as a path suffix.
func matchesPattern(file string, patterns []string) bool {
	for _, p := range patterns {
		if strings.HasSuffix(p, "/") {
			if strings.HasPrefix(file, p) {
				return true
			}
		} else if file == p || strings.HasSuffix(file, "/"+p) {
			return true
		}
	}
	return false
}

// applyDismissState counts how many sessions the current warnings have been
// shown and suppresses them past the limit. New commits reset the counter;
// a clean check clears the state entirely. Returns the surviving findings
// and the updated show counter.
func (c *Checker) applyDismissState(findings []Finding, head string) ([]Finding, int) {
	if c.store == nil {
		return findings, 0
	}

	state, err := c.store.Load()
	if err != nil {
		c.logger.Warn("drift state load failed", zap.Error(err))
		return findings, 0
	}

	if len(findings) == 0 {
		if state != (State{}) {
			if err := c.store.Clear(); err != nil {
				c.logger.Warn("drift state clear failed", zap.Error(err))
			}
		}
		return nil, 0
	}
	if head == "" {
		return findings, state.TimesShown
	}

	if state.HeadSHA == head {
		if state.TimesShown >= maxShows {
			return nil, state.TimesShown
		}
		state.TimesShown++
	} else {
		state = State{HeadSHA: head, TimesShown: 1}
	}
	if err := c.store.Save(state); err != nil {
		c.logger.Warn("drift state save failed", zap.Error(err))
	}
	return findings, state.TimesShown
}

// gitHeadSHA returns the current HEAD commit, or "" on any failure.
func (c *Checker) gitHeadSHA(ctx context.Context) string {
	ctx, cancel := context.WithTimeout(ctx, gitTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", "rev-parse", "HEAD")
	cmd.Dir = c.repoRoot
	out, err := cmd.Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}

// gitCommitFiles returns every file path named in the last maxCommits
// commits. Commit SHA lines from --format=%H are filtered out.
func (c *Checker) gitCommitFiles(ctx context.Context) []string {
	ctx, cancel := context.WithTimeout(ctx, gitTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", "log",
		"--max-count=10", "--name-only", "--format=%H")
	cmd.Dir = c.repoRoot
	out, err := cmd.Output()
	if err != nil {
		c.logger.Debug("git log failed", zap.Error(err))
		return nil
	}

	var files []string
	for _, line := range strings.Split(string(out), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || isCommitSHA(line) {
			continue
		}
		files = append(files, line)
	}
	return files
}

func isCommitSHA(line string) bool {
	if len(line) != 40 {
		return false
	}
	for _, r := range line {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') {
			return false
		}
	}
	return true
}
