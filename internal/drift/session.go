package drift

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const (
	maxSessions        = 3
	maxLinesPerSession = 5000
	minSessionBytes    = 1024

	debugScoreThreshold = 50

	// toolWindow is how far back an edit counts toward an edit-build cycle.
	toolWindow = 5
)

// debugKeywords mark a user prompt as debugging-related.
var debugKeywords = []string{
	"fix", "bug", "wrong", "broken", "doesn't work", "not working",
	"still not", "why does", "why is", "issue", "crash", "exception",
	"error", "nil pointer", "panic",
}

// SessionScore summarizes the debugging intensity of one session transcript.
type SessionScore struct {
	Score           int `json:"score"`
	EditBuildCycles int `json:"edit_build_cycles"`
	DebugPrompts    int `json:"debug_prompts"`
	BuildCount      int `json:"build_count"`
}

// transcriptLine is the subset of a session transcript entry we care about.
type transcriptLine struct {
	Type    string `json:"type"`
	Message struct {
		Content json.RawMessage `json:"content"`
	} `json:"message"`
}

type contentItem struct {
	Type  string `json:"type"`
	Text  string `json:"text"`
	Name  string `json:"name"`
	Input struct {
		Command string `json:"command"`
	} `json:"input"`
}

// scoreSessions finds the most debugging-heavy of the recent session
// transcripts. Returns nil when no qualifying session exists.
func (c *Checker) scoreSessions() *SessionScore {
	dirs, err := os.ReadDir(c.cfg.SessionsDir)
	if err != nil {
		return nil
	}

	type candidate struct {
		path  string
		mtime time.Time
	}
	var candidates []candidate
	for _, d := range dirs {
		if !d.IsDir() {
			continue
		}
		if c.cfg.ProjectFilter != "" && !strings.Contains(d.Name(), c.cfg.ProjectFilter) {
			continue
		}
		entries, err := os.ReadDir(filepath.Join(c.cfg.SessionsDir, d.Name()))
		if err != nil {
			continue
		}
		for _, e := range entries {
			if e.IsDir() || filepath.Ext(e.Name()) != ".jsonl" || strings.HasPrefix(e.Name(), "agent-") {
				continue
			}
			fi, err := e.Info()
			if err != nil || fi.Size() < minSessionBytes {
				continue
			}
			candidates = append(candidates, candidate{
				path:  filepath.Join(c.cfg.SessionsDir, d.Name(), e.Name()),
				mtime: fi.ModTime(),
			})
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].mtime.After(candidates[j].mtime)
	})

	// The newest file is likely the session running this very check.
	if len(candidates) > 0 && time.Since(candidates[0].mtime) < time.Minute {
		candidates = candidates[1:]
	}

	var best *SessionScore
	for _, cand := range candidates[:min(len(candidates), maxSessions)] {
		score := c.scoreSession(cand.path)
		if score != nil && (best == nil || score.Score > best.Score) {
			best = score
		}
	}
	return best
}

// scoreSession scores a single transcript for debugging intensity:
// min(100, cycles*10 + debugPrompts*5 + 30 when builds > 5).
func (c *Checker) scoreSession(path string) *SessionScore {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	var (
		buildCount   int
		debugPrompts int
		cycles       int
		recentTools  []string
	)

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		if lineNum > maxLinesPerSession {
			break
		}

		var entry transcriptLine
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			continue
		}

		switch entry.Type {
		case "user":
			if text := userText(entry.Message.Content); text != "" {
				for _, kw := range debugKeywords {
					if strings.Contains(text, kw) {
						debugPrompts++
						break
					}
				}
			}
		case "assistant":
			var items []contentItem
			if err := json.Unmarshal(entry.Message.Content, &items); err != nil {
				continue
			}
			for _, item := range items {
				if item.Type != "tool_use" {
					continue
				}
				switch {
				case item.Name == "Edit" || item.Name == "Write":
					recentTools = append(recentTools, "edit")
				case item.Name == "Bash" && c.isBuildCommand(item.Input.Command):
					buildCount++
					if hasRecentEdit(recentTools) {
						cycles++
					}
					recentTools = append(recentTools, "build")
				default:
					recentTools = append(recentTools, "other")
				}
			}
		}
	}

	score := cycles*10 + debugPrompts*5
	if buildCount > 5 {
		score += 30
	}
	if score > 100 {
		score = 100
	}

	return &SessionScore{
		Score:           score,
		EditBuildCycles: cycles,
		DebugPrompts:    debugPrompts,
		BuildCount:      buildCount,
	}
}

func (c *Checker) isBuildCommand(cmd string) bool {
	for _, b := range c.cfg.BuildCommands {
		if strings.Contains(cmd, b) {
			return true
		}
	}
	return false
}

func hasRecentEdit(tools []string) bool {
	start := max(0, len(tools)-toolWindow)
	for _, t := range tools[start:] {
		if t == "edit" {
			return true
		}
	}
	return false
}

// userText extracts the first real text block from a user message, which
// may be a plain string or a list of content items. IDE and system blocks
// are skipped.
func userText(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.ToLower(s)
	}

	var items []contentItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return ""
	}
	for _, item := range items {
		if item.Type != "text" {
			continue
		}
		if strings.HasPrefix(item.Text, "<ide_") || strings.HasPrefix(item.Text, "<system") {
			continue
		}
		return strings.ToLower(item.Text)
	}
	return ""
}
