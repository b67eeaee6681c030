package index

import (
	"errors"
	"reflect"
	"testing"

	"github.com/mapache-labs/codemap/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		BasePath: "src",
		DocsDir:  "docs/context",
		Subsystems: []config.Subsystem{
			{
				Key:         "networking",
				Name:        "Networking",
				Description: "Multiplayer sync and transport",
				Keywords:    []string{"network", "sync", "multiplayer"},
				Files:       []string{"netcode/", "netcode/transport.go", "docs/context/networking.md"},
			},
			{
				Key:         "rendering",
				Name:        "Rendering",
				Description: "Draw pipeline",
				Keywords:    []string{"render", "draw"},
				Files:       []string{"gfx/", "docs/context/rendering.md"},
			},
		},
	}
}

func TestNew_SplitsDocAndCodePatterns(t *testing.T) {
	idx := New(testConfig())

	net := idx.Lookup("networking")
	if net == nil {
		t.Fatal("Lookup(networking) returned nil")
	}

	wantCode := []string{"netcode/", "netcode/transport.go"}
	if !reflect.DeepEqual(net.CodePatterns, wantCode) {
		t.Errorf("CodePatterns = %v, want %v", net.CodePatterns, wantCode)
	}
	wantDocs := []string{"networking.md"}
	if !reflect.DeepEqual(net.DocBasenames, wantDocs) {
		t.Errorf("DocBasenames = %v, want %v", net.DocBasenames, wantDocs)
	}
	if net.LowerName() != "networking" {
		t.Errorf("LowerName = %q, want %q", net.LowerName(), "networking")
	}
}

func TestIsDocPath(t *testing.T) {
	tests := []struct {
		docsDir string
		file    string
		want    bool
	}{
		{"docs/context", "docs/context/networking.md", true},
		{"docs/context", "docs/context/notes.txt", true},
		{"docs/context", "docs/context/diagram.png", false},
		{"docs/context", "netcode/transport.go", false},
		{"docs/context", "docs/contextual/networking.md", false},
		{"", "docs/context/networking.md", false},
	}
	for _, tt := range tests {
		if got := isDocPath(tt.docsDir, tt.file); got != tt.want {
			t.Errorf("isDocPath(%q, %q) = %v, want %v", tt.docsDir, tt.file, got, tt.want)
		}
	}
}

func TestKeys_PreservesLoadOrder(t *testing.T) {
	idx := New(testConfig())
	want := []string{"networking", "rendering"}
	if got := idx.Keys(); !reflect.DeepEqual(got, want) {
		t.Errorf("Keys = %v, want %v", got, want)
	}
}

func TestFilesFor_QualifiesWithBasePath(t *testing.T) {
	idx := New(testConfig())

	files, err := idx.FilesFor("networking")
	if err != nil {
		t.Fatalf("FilesFor failed: %v", err)
	}

	if files.Subsystem != "networking" || files.Name != "Networking" {
		t.Errorf("header = %q/%q, want networking/Networking", files.Subsystem, files.Name)
	}
	want := []string{"src/netcode/", "src/netcode/transport.go", "src/docs/context/networking.md"}
	if !reflect.DeepEqual(files.Files, want) {
		t.Errorf("Files = %v, want %v", files.Files, want)
	}
}

func TestFilesFor_EmptyBasePath(t *testing.T) {
	cfg := testConfig()
	cfg.BasePath = ""
	idx := New(cfg)

	files, err := idx.FilesFor("rendering")
	if err != nil {
		t.Fatalf("FilesFor failed: %v", err)
	}
	want := []string{"gfx/", "docs/context/rendering.md"}
	if !reflect.DeepEqual(files.Files, want) {
		t.Errorf("Files = %v, want unqualified %v", files.Files, want)
	}
}

func TestFilesFor_UnknownKey(t *testing.T) {
	idx := New(testConfig())

	_, err := idx.FilesFor("audio")
	if err == nil {
		t.Fatal("expected error for unknown subsystem")
	}

	var unknown *UnknownSubsystemError
	if !errors.As(err, &unknown) {
		t.Fatalf("error type = %T, want *UnknownSubsystemError", err)
	}
	if unknown.Key != "audio" {
		t.Errorf("Key = %q, want %q", unknown.Key, "audio")
	}
	// The error must carry every valid key so the caller can self-correct.
	if !reflect.DeepEqual(unknown.Available, idx.Keys()) {
		t.Errorf("Available = %v, want %v", unknown.Available, idx.Keys())
	}
}

// --- Registry ---

func registryConfig() *config.Config {
	return &config.Config{
		Subsystems: []config.Subsystem{{Key: "x", Name: "X"}},
		Agents: []config.Agent{
			{
				ID:          "ui-and-ux-agent",
				Name:        "UI and UX Agent",
				Description: "Screens and widgets.",
				Triggers:    []string{"ui", "menu"},
				Tier:        "sonnet",
			},
			{
				ID:          "systems-designer",
				Name:        "Systems Designer",
				Description: "Core mechanics and balance.",
				Triggers:    []string{"ui", "balance tuning"},
				Tier:        "opus",
			},
		},
	}
}

func TestNewRegistry_AgentCount(t *testing.T) {
	reg := NewRegistry(registryConfig())

	if reg.Len() != 2 {
		t.Fatalf("Len = %d, want 2", reg.Len())
	}
	// "ui" is listed by both agents, "menu" by one.
	if got := reg.AgentCount("ui"); got != 2 {
		t.Errorf("AgentCount(ui) = %d, want 2", got)
	}
	if got := reg.AgentCount("menu"); got != 1 {
		t.Errorf("AgentCount(menu) = %d, want 1", got)
	}
	if got := reg.AgentCount("balance tuning"); got != 1 {
		t.Errorf("AgentCount(balance tuning) = %d, want 1", got)
	}
}

func TestNewRegistry_AgentCountUnknownTrigger(t *testing.T) {
	reg := NewRegistry(registryConfig())
	if got := reg.AgentCount("never-listed"); got != 1 {
		t.Errorf("AgentCount(unknown) = %d, want 1", got)
	}
}

func TestNewRegistry_DuplicateTriggerWithinAgentCountsOnce(t *testing.T) {
	cfg := registryConfig()
	cfg.Agents[0].Triggers = []string{"ui", "ui", "menu"}
	reg := NewRegistry(cfg)

	// Still two distinct agents listing "ui", not three.
	if got := reg.AgentCount("ui"); got != 2 {
		t.Errorf("AgentCount(ui) = %d, want 2", got)
	}
}

func TestTrigger_WordSplit(t *testing.T) {
	reg := NewRegistry(registryConfig())

	designer := reg.Agents()[1]
	if len(designer.Triggers) != 2 {
		t.Fatalf("trigger count = %d, want 2", len(designer.Triggers))
	}

	single, multi := designer.Triggers[0], designer.Triggers[1]
	if !single.Single() || single.WordCount() != 1 {
		t.Errorf("trigger %q: Single=%v WordCount=%d, want single-word", single.Raw, single.Single(), single.WordCount())
	}
	if multi.Single() || multi.WordCount() != 2 {
		t.Errorf("trigger %q: Single=%v WordCount=%d, want 2-word phrase", multi.Raw, multi.Single(), multi.WordCount())
	}
}

func TestRawTriggers(t *testing.T) {
	reg := NewRegistry(registryConfig())
	got := reg.Agents()[0].RawTriggers()
	want := []string{"ui", "menu"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("RawTriggers = %v, want %v", got, want)
	}
}
