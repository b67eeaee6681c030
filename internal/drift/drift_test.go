package drift

import (
	"context"
	"testing"

	"github.com/mapache-labs/codemap/internal/config"
	"github.com/mapache-labs/codemap/internal/index"
)

func driftIndex() *index.Index {
	return index.New(&config.Config{
		BasePath: "src",
		DocsDir:  "docs/context",
		Subsystems: []config.Subsystem{
			{
				Key:      "networking",
				Name:     "Networking",
				Keywords: []string{"network"},
				Files:    []string{"netcode/", "docs/context/networking.md"},
			},
			{
				Key:      "rendering",
				Name:     "Rendering",
				Keywords: []string{"render"},
				Files:    []string{"gfx/renderer.go", "docs/context/rendering.md"},
			},
			{
				// No doc entry: never participates in drift detection.
				Key:      "tools",
				Name:     "Tools",
				Keywords: []string{"tool"},
				Files:    []string{"tools/"},
			},
		},
	})
}

func driftConfig() config.Drift {
	return config.Drift{
		Priorities: map[string]string{
			"networking": "high",
			"rendering":  "medium",
		},
	}
}

// newTestChecker builds a checker with git access stubbed out.
func newTestChecker(t *testing.T, store *StateStore, head string, files []string) *Checker {
	t.Helper()
	c := NewChecker(driftIndex(), driftConfig(), store, t.TempDir(), nil)
	c.headSHA = func(ctx context.Context) string { return head }
	c.commitFiles = func(ctx context.Context) []string { return files }
	return c
}

func TestDetectDrift_CodeWithoutDocs(t *testing.T) {
	c := newTestChecker(t, nil, "abc", []string{
		"src/netcode/transport.go",
		"src/netcode/rollback.go",
	})

	findings := c.detectDrift(context.Background())
	if len(findings) != 1 {
		t.Fatalf("findings = %+v, want 1", findings)
	}

	f := findings[0]
	if f.Subsystem != "networking" || f.Priority != PriorityHigh {
		t.Errorf("finding = %+v, want networking/high", f)
	}
	if len(f.CodeFiles) != 2 || f.CodeFiles[0] != "netcode/rollback.go" {
		t.Errorf("code files = %v, want both netcode files sorted", f.CodeFiles)
	}
	if len(f.ExpectedDocs) != 1 || f.ExpectedDocs[0] != "networking.md" {
		t.Errorf("expected docs = %v, want [networking.md]", f.ExpectedDocs)
	}
}

func TestDetectDrift_DocUpdateSilencesFinding(t *testing.T) {
	c := newTestChecker(t, nil, "abc", []string{
		"src/netcode/transport.go",
		"docs/context/networking.md",
	})

	if findings := c.detectDrift(context.Background()); len(findings) != 0 {
		t.Errorf("findings = %+v, want none when the doc was touched too", findings)
	}
}

func TestDetectDrift_ExactFilePattern(t *testing.T) {
	c := newTestChecker(t, nil, "abc", []string{"src/gfx/renderer.go"})

	findings := c.detectDrift(context.Background())
	if len(findings) != 1 || findings[0].Subsystem != "rendering" {
		t.Fatalf("findings = %+v, want rendering", findings)
	}
	if findings[0].Priority != PriorityMedium {
		t.Errorf("priority = %q, want medium", findings[0].Priority)
	}
}

func TestDetectDrift_LowPrioritySuppressed(t *testing.T) {
	c := newTestChecker(t, nil, "abc", []string{"src/netcode/transport.go"})
	c.cfg.Priorities = map[string]string{"networking": "low"}

	if findings := c.detectDrift(context.Background()); len(findings) != 0 {
		t.Errorf("findings = %+v, want low priority suppressed", findings)
	}
}

func TestDetectDrift_NoCommits(t *testing.T) {
	c := newTestChecker(t, nil, "", nil)
	if findings := c.detectDrift(context.Background()); findings != nil {
		t.Errorf("findings = %+v, want nil without commits", findings)
	}
}

func TestDetectDrift_FilesOutsideBasePathIgnored(t *testing.T) {
	c := newTestChecker(t, nil, "abc", []string{
		"third_party/netcode/transport.go",
		"README.md",
	})
	if findings := c.detectDrift(context.Background()); len(findings) != 0 {
		t.Errorf("findings = %+v, want none for files outside the base path", findings)
	}
}

func TestMatchesPattern(t *testing.T) {
	tests := []struct {
		file     string
		patterns []string
		want     bool
	}{
		{"netcode/transport.go", []string{"netcode/"}, true},
		{"netcode_v2/transport.go", []string{"netcode/"}, false},
		{"gfx/renderer.go", []string{"gfx/renderer.go"}, true},
		{"deep/gfx/renderer.go", []string{"gfx/renderer.go"}, true},
		{"renderer.go", []string{"gfx/renderer.go"}, false},
		{"anything.go", nil, false},
	}
	for _, tt := range tests {
		if got := matchesPattern(tt.file, tt.patterns); got != tt.want {
			t.Errorf("matchesPattern(%q, %v) = %v, want %v", tt.file, tt.patterns, got, tt.want)
		}
	}
}

// --- Dismiss state lifecycle ---

func TestCheck_DismissCounterLifecycle(t *testing.T) {
	store, err := OpenStateStore(t.TempDir())
	if err != nil {
		t.Fatalf("open state store: %v", err)
	}
	defer store.Close()

	c := newTestChecker(t, store, "head-1", []string{"src/netcode/transport.go"})
	ctx := context.Background()

	// First check shows the warning.
	r := c.Check(ctx)
	if len(r.Findings) != 1 || r.TimesShown != 1 {
		t.Fatalf("check 1 = %d findings, shown %d, want 1/1", len(r.Findings), r.TimesShown)
	}

	// Second check at the same HEAD increments the counter.
	r = c.Check(ctx)
	if len(r.Findings) != 1 || r.TimesShown != 2 {
		t.Fatalf("check 2 = %d findings, shown %d, want 1/2", len(r.Findings), r.TimesShown)
	}

	// Third check auto-dismisses: the drift is still there, but stale.
	r = c.Check(ctx)
	if len(r.Findings) != 0 {
		t.Fatalf("check 3 findings = %+v, want suppressed", r.Findings)
	}
	if !r.Empty() {
		t.Error("suppressed report should be empty")
	}

	// A new commit resets the counter and shows the warning again.
	c.headSHA = func(ctx context.Context) string { return "head-2" }
	r = c.Check(ctx)
	if len(r.Findings) != 1 || r.TimesShown != 1 {
		t.Fatalf("after new head = %d findings, shown %d, want 1/1", len(r.Findings), r.TimesShown)
	}
}

func TestCheck_CleanCheckClearsState(t *testing.T) {
	store, err := OpenStateStore(t.TempDir())
	if err != nil {
		t.Fatalf("open state store: %v", err)
	}
	defer store.Close()

	c := newTestChecker(t, store, "head-1", []string{"src/netcode/transport.go"})
	ctx := context.Background()
	c.Check(ctx)

	// The docs caught up: no drift, state cleared.
	c.commitFiles = func(ctx context.Context) []string {
		return []string{"src/netcode/transport.go", "docs/context/networking.md"}
	}
	r := c.Check(ctx)
	if !r.Empty() {
		t.Fatalf("report = %+v, want empty", r)
	}

	st, err := store.Load()
	if err != nil {
		t.Fatalf("load state: %v", err)
	}
	if st != (State{}) {
		t.Errorf("state = %+v, want cleared", st)
	}
}

func TestDismiss_PersistsMaxShows(t *testing.T) {
	store, err := OpenStateStore(t.TempDir())
	if err != nil {
		t.Fatalf("open state store: %v", err)
	}
	defer store.Close()

	c := newTestChecker(t, store, "head-1", []string{"src/netcode/transport.go"})
	ctx := context.Background()

	head, err := c.Dismiss(ctx)
	if err != nil {
		t.Fatalf("Dismiss failed: %v", err)
	}
	if head != "head-1" {
		t.Errorf("dismissed head = %q, want head-1", head)
	}

	// The warning stays suppressed at this HEAD.
	if r := c.Check(ctx); len(r.Findings) != 0 {
		t.Errorf("findings after dismiss = %+v, want none", r.Findings)
	}
}

func TestDismiss_NoStoreOrHead(t *testing.T) {
	c := newTestChecker(t, nil, "", nil)
	head, err := c.Dismiss(context.Background())
	if err != nil || head != "" {
		t.Errorf("Dismiss = (%q, %v), want empty no-op", head, err)
	}
}

func TestCheck_NilStoreAlwaysShows(t *testing.T) {
	c := newTestChecker(t, nil, "head-1", []string{"src/netcode/transport.go"})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		r := c.Check(ctx)
		if len(r.Findings) != 1 {
			t.Fatalf("check %d findings = %+v, want fresh warning without a store", i+1, r.Findings)
		}
	}
}

// --- StateStore ---

func TestStateStore_RoundTrip(t *testing.T) {
	store, err := OpenStateStore(t.TempDir())
	if err != nil {
		t.Fatalf("open state store: %v", err)
	}
	defer store.Close()

	// Fresh store reports zero state.
	st, err := store.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if st != (State{}) {
		t.Errorf("fresh state = %+v, want zero", st)
	}

	if err := store.Save(State{HeadSHA: "abc123", TimesShown: 1}); err != nil {
		t.Fatalf("save: %v", err)
	}
	st, err = store.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if st.HeadSHA != "abc123" || st.TimesShown != 1 {
		t.Errorf("state = %+v, want abc123/1", st)
	}

	// Save upserts the single row.
	if err := store.Save(State{HeadSHA: "def456", TimesShown: 2}); err != nil {
		t.Fatalf("save: %v", err)
	}
	st, _ = store.Load()
	if st.HeadSHA != "def456" || st.TimesShown != 2 {
		t.Errorf("state = %+v, want def456/2", st)
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	st, _ = store.Load()
	if st != (State{}) {
		t.Errorf("state after clear = %+v, want zero", st)
	}
}

func TestIsCommitSHA(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{"0123456789abcdef0123456789abcdef01234567", true},
		{"0123456789ABCDEF0123456789abcdef01234567", false},
		{"netcode/transport.go", false},
		{"0123456789abcdef0123456789abcdef0123456", false},
	}
	for _, tt := range tests {
		if got := isCommitSHA(tt.line); got != tt.want {
			t.Errorf("isCommitSHA(%q) = %v, want %v", tt.line, got, tt.want)
		}
	}
}
