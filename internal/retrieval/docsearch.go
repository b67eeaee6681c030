package retrieval

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mapache-labs/codemap/internal/index"
)

const maxMatchesPerDocument = 10

// ErrDocsDirMissing reports that the context documents directory does not
// exist. It surfaces as a structured error payload, never a crash.
var ErrDocsDirMissing = errors.New("context documents directory not found")

// LineMatch is one matching line with its surrounding context block.
type LineMatch struct {
	LineNumber int    `json:"line_number"`
	Context    string `json:"context"`
}

// DocumentMatches holds the matches found in one document. Matches is capped
// at 10 records; TotalMatches is the true occurrence count.
type DocumentMatches struct {
	Document     string      `json:"document"`
	Path         string      `json:"path"`
	Matches      []LineMatch `json:"matches"`
	TotalMatches int         `json:"total_matches"`
}

// SubsystemRef is a subsystem cross-referenced by a document search. Either
// the name/description matched, or exactly one keyword did.
type SubsystemRef struct {
	Subsystem      string `json:"subsystem"`
	Name           string `json:"name"`
	Description    string `json:"description,omitempty"`
	MatchedKeyword string `json:"matched_keyword,omitempty"`
}

// SearchResult is the envelope returned by search_context_documents.
type SearchResult struct {
	Query            string            `json:"query"`
	DocumentMatches  []DocumentMatches `json:"document_matches"`
	SubsystemMatches []SubsystemRef    `json:"subsystem_matches"`
}

// DocumentInfo is one entry in the document listing.
type DocumentInfo struct {
	Name        string `json:"name"`
	Path        string `json:"path"`
	SizeBytes   int64  `json:"size_bytes"`
	Modified    string `json:"modified"`
	Description string `json:"description,omitempty"`
}

// DocumentListing is the envelope returned by get_context_files.
type DocumentListing struct {
	Directory string         `json:"context_directory"`
	Files     []DocumentInfo `json:"files"`
}

// DocSearch scans the context documents directory and cross-references the
// subsystem index. Documents are read on demand at query time, not cached.
type DocSearch struct {
	idx     *index.Index
	docsDir string
	// docDescriptions maps a document stem to its configured description.
	docDescriptions map[string]string
}

// NewDocSearch creates a document search over docsDir.
func NewDocSearch(idx *index.Index, docsDir string, descriptions map[string]string) *DocSearch {
	return &DocSearch{idx: idx, docsDir: docsDir, docDescriptions: descriptions}
}

// listDocFiles returns the document filenames in sorted order, so results
// are deterministic across runs.
func (ds *DocSearch) listDocFiles() ([]string, error) {
	entries, err := os.ReadDir(ds.docsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrDocsDirMissing
		}
		return nil, err
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch filepath.Ext(e.Name()) {
		case ".md", ".txt":
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Search finds every case-insensitive occurrence of query across all
// documents, returning each matching line with 2 lines of context on both
// sides. Unreadable documents are skipped silently; one bad file never
// fails the whole search.
func (ds *DocSearch) Search(query string) (*SearchResult, error) {
	names, err := ds.listDocFiles()
	if err != nil {
		return nil, err
	}

	queryLower := strings.ToLower(query)
	result := &SearchResult{Query: query}

	for _, name := range names {
		docPath := filepath.Join(ds.docsDir, name)
		data, err := os.ReadFile(docPath)
		if err != nil {
			continue
		}

		lines := strings.Split(string(data), "\n")
		var matches []LineMatch
		total := 0
		for i, line := range lines {
			if !strings.Contains(strings.ToLower(line), queryLower) {
				continue
			}
			total++
			if len(matches) >= maxMatchesPerDocument {
				continue
			}
			start := max(0, i-2)
			end := min(len(lines), i+3)
			matches = append(matches, LineMatch{
				LineNumber: i + 1,
				Context:    strings.Join(lines[start:end], "\n"),
			})
		}

		if total > 0 {
			result.DocumentMatches = append(result.DocumentMatches, DocumentMatches{
				Document:     stem(name),
				Path:         docPath,
				Matches:      matches,
				TotalMatches: total,
			})
		}
	}

	result.SubsystemMatches = ds.crossReference(queryLower)
	return result, nil
}

// crossReference reports subsystems whose name or description contains the
// query, or failing that, whose first matching keyword does. The keyword
// scan stops at the first hit per subsystem.
func (ds *DocSearch) crossReference(queryLower string) []SubsystemRef {
	var refs []SubsystemRef
	for _, sub := range ds.idx.Subsystems() {
		if strings.Contains(sub.LowerName(), queryLower) ||
			strings.Contains(strings.ToLower(sub.Description), queryLower) {
			refs = append(refs, SubsystemRef{
				Subsystem:   sub.Key,
				Name:        sub.Name,
				Description: sub.Description,
			})
			continue
		}
		for _, kw := range sub.Keywords {
			if strings.Contains(strings.ToLower(kw), queryLower) {
				refs = append(refs, SubsystemRef{
					Subsystem:      sub.Key,
					Name:           sub.Name,
					MatchedKeyword: kw,
				})
				break
			}
		}
	}
	return refs
}

// List returns the available context documents with light static metadata.
func (ds *DocSearch) List() (*DocumentListing, error) {
	names, err := ds.listDocFiles()
	if err != nil {
		return nil, err
	}

	listing := &DocumentListing{Directory: ds.docsDir}
	for _, name := range names {
		docPath := filepath.Join(ds.docsDir, name)
		info := DocumentInfo{
			Name:        stem(name),
			Path:        docPath,
			Description: ds.docDescriptions[stem(name)],
		}
		if fi, err := os.Stat(docPath); err == nil {
			info.SizeBytes = fi.Size()
			info.Modified = fi.ModTime().UTC().Format("2006-01-02T15:04:05Z")
		}
		listing.Files = append(listing.Files, info)
	}
	return listing, nil
}

// stem strips the extension from a document filename.
func stem(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}
