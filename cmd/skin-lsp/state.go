// state.go
//
// ROLE: Server/document data structures and construction.
//
// What lives here
//   - server struct: the mutex-guarded map of open documents plus the
//     shared *skinlang.Analyzer.
//   - docState: per-document text the server has been told about via
//     didOpen/didChange.
//   - newServer() and (*server).snapshotDoc().
//
// What does NOT live here
//   - No transport/framing, no LSP feature handlers.
//
// Grounded on _examples/daios-ai-msg/cmd/msg-lsp/state.go: same
// server{mu sync.RWMutex; docs map[string]*docState} shape, generalized
// to hold a *skinlang.Analyzer in place of the original interpreter.
package main

import (
	"sync"

	"github.com/skinlang/skinls/internal/hostfs"
	"github.com/skinlang/skinls/internal/skinlang"
)

type docState struct {
	uri  string
	text string
}

type server struct {
	mu   sync.RWMutex
	docs map[string]*docState
	an   *skinlang.Analyzer
}

func newServer(repoRoot string) *server {
	probe := hostfs.New()
	s := &server{
		docs: make(map[string]*docState),
	}
	s.an = skinlang.NewAnalyzer(probe, editorAwareDocs{s}, nil)
	_ = s.an.LoadRepo(repoRoot)
	return s
}

// editorAwareDocs backs skinlang.DocumentProvider with whichever text is
// freshest: an open editor buffer if the server has one, otherwise disk.
type editorAwareDocs struct {
	s *server
}

func (d editorAwareDocs) Get(uri string) (string, bool) {
	d.s.mu.RLock()
	doc := d.s.docs[uri]
	d.s.mu.RUnlock()
	if doc != nil {
		return doc.text, true
	}
	return hostfs.New().ReadFile(uri)
}

// snapshotDoc returns the open buffer's text for uri, if any.
func (s *server) snapshotDoc(uri string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d := s.docs[uri]
	if d == nil {
		return "", false
	}
	return d.text, true
}
