// Copyright © 2024 The moqls authors

package lsp

import (
	"sync"

	"github.com/rjmurillo/moq.autocomplete/analysis"
	"github.com/rjmurillo/moq.autocomplete/config"
	"github.com/rjmurillo/moq.autocomplete/csharp"
	"github.com/rjmurillo/moq.autocomplete/syntax"
)

// Document represents an open text document tracked by the LSP server.
// The tree and model always belong to Content; both are replaced together
// on every change and never mutated afterwards.
type Document struct {
	mu       sync.Mutex
	URI      string
	Version  int32
	Content  string
	tree     *syntax.Tree
	model    *analysis.Model
	parseErr error
}

// parse rebuilds the syntax tree and semantic model for the current content.
func (d *Document) parse(cfg *config.Config) {
	tree, err := csharp.ParseString(uriToPath(d.URI), d.Content)
	d.parseErr = err
	if err != nil {
		log.Errorf("parse %s: %s", d.URI, err)
		d.tree, d.model = nil, nil
		return
	}
	d.tree = tree
	d.model = analysis.Build(tree, cfg)
}

// snapshot returns the immutable state of the current version. The tree is
// nil when the document could not be parsed.
func (d *Document) snapshot() (*syntax.Tree, *analysis.Model, int32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.tree, d.model, d.Version
}

// DocumentStore manages open documents with thread-safe access.
type DocumentStore struct {
	cfg  *config.Config
	mu   sync.RWMutex
	docs map[string]*Document
}

// NewDocumentStore creates an empty document store. Documents are analyzed
// with cfg.
func NewDocumentStore(cfg *config.Config) *DocumentStore {
	if cfg == nil {
		cfg = config.Default()
	}
	return &DocumentStore{cfg: cfg, docs: make(map[string]*Document)}
}

// Open adds a document to the store and parses it.
func (s *DocumentStore) Open(uri string, version int32, content string) *Document {
	doc := &Document{
		URI:     uri,
		Version: version,
		Content: content,
	}
	doc.parse(s.cfg)
	s.mu.Lock()
	s.docs[uri] = doc
	s.mu.Unlock()
	return doc
}

// Change updates a document's content (full sync) and re-parses it.
// Out-of-order versions are ignored.
func (s *DocumentStore) Change(uri string, version int32, content string) *Document {
	s.mu.Lock()
	doc, ok := s.docs[uri]
	if !ok {
		doc = &Document{URI: uri}
		s.docs[uri] = doc
	}
	s.mu.Unlock()

	doc.mu.Lock()
	defer doc.mu.Unlock()
	if ok && version != 0 && version < doc.Version {
		return doc
	}
	doc.Version = version
	doc.Content = content
	doc.parse(s.cfg)
	return doc
}

// Close removes a document from the store.
func (s *DocumentStore) Close(uri string) {
	s.mu.Lock()
	delete(s.docs, uri)
	s.mu.Unlock()
}

// Get retrieves a document by URI. Returns nil if not found.
func (s *DocumentStore) Get(uri string) *Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.docs[uri]
}
