// Package index holds the immutable in-memory tables the retrieval engine
// queries: the Subsystem Index and the Agent Registry.
//
// Both tables are built once from configuration at process start and never
// mutated afterwards, so they are safe to share across concurrent tool
// handlers without locking.
package index

import (
	"fmt"
	"path"
	"strings"

	"github.com/mapache-labs/codemap/internal/config"
)

// Subsystem is one indexed slice of the codebase, with derived fields
// precomputed at load time.
type Subsystem struct {
	Key         string
	Name        string
	Description string
	Keywords    []string
	// Files in load order: exact paths, directory prefixes ending in "/",
	// and documentation paths.
	Files []string

	// lowerName is the display name lower-cased once for scoring.
	lowerName string
	// CodePatterns and DocBasenames split Files for the drift checker:
	// documentation entries become basenames, everything else is a code
	// pattern kept verbatim.
	CodePatterns []string
	DocBasenames []string
}

// LowerName returns the subsystem display name lower-cased.
func (s *Subsystem) LowerName() string { return s.lowerName }

// Index is the immutable subsystem table, preserving load order.
type Index struct {
	subsystems []Subsystem
	byKey      map[string]*Subsystem
	basePath   string
	docsDir    string
}

// UnknownSubsystemError reports a lookup with a key not in the index. It
// carries the complete list of valid keys so the caller can self-correct.
type UnknownSubsystemError struct {
	Key       string
	Available []string
}

func (e *UnknownSubsystemError) Error() string {
	return fmt.Sprintf("unknown subsystem: %s", e.Key)
}

// New builds the subsystem index from configuration.
func New(cfg *config.Config) *Index {
	idx := &Index{
		byKey:    make(map[string]*Subsystem, len(cfg.Subsystems)),
		basePath: cfg.BasePath,
		docsDir:  cfg.DocsDir,
	}

	for _, sc := range cfg.Subsystems {
		sub := Subsystem{
			Key:         sc.Key,
			Name:        sc.Name,
			Description: sc.Description,
			Keywords:    append([]string(nil), sc.Keywords...),
			Files:       append([]string(nil), sc.Files...),
			lowerName:   strings.ToLower(sc.Name),
		}
		for _, f := range sub.Files {
			if isDocPath(cfg.DocsDir, f) {
				sub.DocBasenames = append(sub.DocBasenames, path.Base(f))
			} else {
				sub.CodePatterns = append(sub.CodePatterns, f)
			}
		}
		idx.subsystems = append(idx.subsystems, sub)
	}
	for i := range idx.subsystems {
		idx.byKey[idx.subsystems[i].Key] = &idx.subsystems[i]
	}

	return idx
}

// isDocPath reports whether a file entry is a documentation path: it lives
// under the docs dir and has a document extension.
func isDocPath(docsDir, file string) bool {
	if docsDir == "" {
		return false
	}
	if !strings.HasPrefix(file, strings.TrimSuffix(docsDir, "/")+"/") {
		return false
	}
	switch path.Ext(file) {
	case ".md", ".txt":
		return true
	}
	return false
}

// Subsystems returns all subsystems in load order. Callers must not mutate
// the returned slice.
func (idx *Index) Subsystems() []Subsystem { return idx.subsystems }

// Len returns the number of indexed subsystems.
func (idx *Index) Len() int { return len(idx.subsystems) }

// Lookup returns the subsystem for key, or nil.
func (idx *Index) Lookup(key string) *Subsystem { return idx.byKey[key] }

// Keys returns all subsystem keys in load order.
func (idx *Index) Keys() []string {
	keys := make([]string, 0, len(idx.subsystems))
	for _, s := range idx.subsystems {
		keys = append(keys, s.Key)
	}
	return keys
}

// BasePath returns the base path used to qualify code patterns.
func (idx *Index) BasePath() string { return idx.basePath }

// DocsDir returns the context documents directory.
func (idx *Index) DocsDir() string { return idx.docsDir }

// QualifyFile prefixes a relative file pattern with the base path.
func (idx *Index) QualifyFile(file string) string {
	if idx.basePath == "" {
		return file
	}
	return idx.basePath + "/" + file
}

// SubsystemFiles is the result of a files-for-subsystem lookup.
type SubsystemFiles struct {
	Subsystem   string   `json:"subsystem"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Files       []string `json:"files"`
}

// FilesFor returns the fully-qualified file list for key. An unknown key
// yields an *UnknownSubsystemError naming every valid key, never a silent
// empty result.
func (idx *Index) FilesFor(key string) (*SubsystemFiles, error) {
	sub := idx.byKey[key]
	if sub == nil {
		return nil, &UnknownSubsystemError{Key: key, Available: idx.Keys()}
	}

	files := make([]string, 0, len(sub.Files))
	for _, f := range sub.Files {
		files = append(files, idx.QualifyFile(f))
	}

	return &SubsystemFiles{
		Subsystem:   sub.Key,
		Name:        sub.Name,
		Description: sub.Description,
		Files:       files,
	}, nil
}
