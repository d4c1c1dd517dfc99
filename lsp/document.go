// Copyright © 2024 The Shelly authors

package lsp

import (
	"sort"
	"sync"
)

// Document is an open text document.  Its content replaces the file on disk
// during analysis.
type Document struct {
	URI     string
	Path    string
	Version int32
	Content string
}

// DocumentStore manages open documents with thread-safe access.
type DocumentStore struct {
	mu   sync.RWMutex
	docs map[string]*Document
}

// NewDocumentStore creates an empty document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{docs: make(map[string]*Document)}
}

// Open adds a document to the store.
func (s *DocumentStore) Open(uri string, version int32, content string) *Document {
	doc := &Document{
		URI:     uri,
		Path:    canonicalize(uriToPath(uri)),
		Version: version,
		Content: content,
	}
	s.mu.Lock()
	s.docs[uri] = doc
	s.mu.Unlock()
	return doc
}

// Change replaces the content of a document, opening it if needed.
func (s *DocumentStore) Change(uri string, version int32, content string) *Document {
	s.mu.Lock()
	doc, ok := s.docs[uri]
	if ok {
		doc.Version = version
		doc.Content = content
	}
	s.mu.Unlock()
	if !ok {
		return s.Open(uri, version, content)
	}
	return doc
}

// Get returns the document with the given URI or nil.
func (s *DocumentStore) Get(uri string) *Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.docs[uri]
}

// Close removes a document from the store.
func (s *DocumentStore) Close(uri string) {
	s.mu.Lock()
	delete(s.docs, uri)
	s.mu.Unlock()
}

// All returns the open documents ordered by URI.
func (s *DocumentStore) All() []*Document {
	s.mu.RLock()
	docs := make([]*Document, 0, len(s.docs))
	for _, d := range s.docs {
		docs = append(docs, d)
	}
	s.mu.RUnlock()
	sort.Slice(docs, func(i, j int) bool { return docs[i].URI < docs[j].URI })
	return docs
}

// Overlay maps the path of every open document to its content.
func (s *DocumentStore) Overlay() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	overlay := make(map[string]string, len(s.docs))
	for _, d := range s.docs {
		overlay[d.Path] = d.Content
	}
	return overlay
}
