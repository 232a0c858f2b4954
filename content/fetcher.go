package content

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/lixenwraith/heartscroll/constants"
)

//go:embed default.yaml
var defaultDocument []byte

// Fetcher resolves the content of one section
// Implementations must honour ctx cancellation and be safe for concurrent use
type Fetcher interface {
	Fetch(ctx context.Context, sectionID string) (Section, error)
}

// ParseDocument decodes a YAML content document, rejecting unknown fields
func ParseDocument(data []byte) (Document, error) {
	var doc Document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return Document{}, fmt.Errorf("decode content: %w", err)
	}
	if err := doc.Validate(); err != nil {
		return Document{}, fmt.Errorf("invalid content: %w", err)
	}
	return doc, nil
}

// DefaultDocument returns the built-in content
func DefaultDocument() (Document, error) {
	return ParseDocument(defaultDocument)
}

// FileFetcher reads sections from a YAML document on disk
// An empty path serves the built-in document
// The file is re-read on every fetch so edits are picked up by reloads
type FileFetcher struct {
	path string
}

// NewFileFetcher creates a fetcher for path
func NewFileFetcher(path string) *FileFetcher {
	return &FileFetcher{path: path}
}

// Path returns the watched file path, empty for the built-in document
func (f *FileFetcher) Path() string {
	return f.path
}

func (f *FileFetcher) Fetch(ctx context.Context, sectionID string) (Section, error) {
	if err := ctx.Err(); err != nil {
		return Section{}, err
	}

	data := defaultDocument
	if f.path != "" {
		info, err := os.Stat(f.path)
		if err != nil {
			return Section{}, fmt.Errorf("stat content file: %w", err)
		}
		if info.Size() > constants.MaxContentBytes {
			return Section{}, fmt.Errorf("content file %s exceeds %d bytes", f.path, constants.MaxContentBytes)
		}
		if data, err = os.ReadFile(f.path); err != nil {
			return Section{}, fmt.Errorf("read content file: %w", err)
		}
	}

	doc, err := ParseDocument(data)
	if err != nil {
		return Section{}, err
	}
	return doc.Section(sectionID)
}
