package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pfrederiksen/statscrape/internal/config"
	"github.com/pfrederiksen/statscrape/internal/markup"
	"github.com/pfrederiksen/statscrape/internal/table"
)

const (
	RawPageFile    = "webpage.html"
	PrettyPageFile = "webpage_pretty.txt"
)

// Storage handles writing crawl output below a root directory
type Storage struct {
	root    string
	dialect table.Dialect
}

// New creates a new Storage instance rooted at root, creating it if needed.
func New(root string, dialect table.Dialect) (*Storage, error) {
	root, err := config.ExpandHome(root)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	return &Storage{
		root:    root,
		dialect: dialect,
	}, nil
}

// Root returns the output root.
func (s *Storage) Root() string {
	return s.root
}

// Dir creates (if needed) and returns root/parts...
func (s *Storage) Dir(parts ...string) (string, error) {
	dir := filepath.Join(append([]string{s.root}, parts...)...)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating directory: %w", err)
	}
	return dir, nil
}

// WriteTable encodes t into dir/<key>.csv and returns the path written.
func (s *Storage) WriteTable(dir string, t table.Table) (string, error) {
	data, err := table.Marshal(t, s.dialect)
	if err != nil {
		return "", fmt.Errorf("encoding table %s: %w", t.Key, err)
	}
	path := filepath.Join(dir, t.FileName())
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("writing table: %w", err)
	}
	return path, nil
}

// WritePage stores the raw page and an indented dump of it in dir.
func (s *Storage) WritePage(dir string, raw []byte) error {
	if err := os.WriteFile(filepath.Join(dir, RawPageFile), raw, 0644); err != nil {
		return fmt.Errorf("writing page: %w", err)
	}

	pretty, err := markup.Pretty(raw)
	if err != nil {
		return fmt.Errorf("formatting page: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, PrettyPageFile), pretty, 0644); err != nil {
		return fmt.Errorf("writing page dump: %w", err)
	}
	return nil
}
