// document.go — the Document Manager: per-URI cached parses,
// byte-offset/line-col conversion, and token-at-position lookup.
//
// Grounded on _examples/daios-ai-msg/cmd/msg-lsp/core.go's per-document
// cache and UTF-16 position math (there: one *docState per URI holding
// source+AST+line index; here: one *Document plus a LineIndex, refreshed
// at most once per 500ms and only when the text has changed, the same gate
// the file index uses).
package skinlang

import (
	"time"
)

// cachedDoc pairs a parsed Document with its LineIndex and refresh bookkeeping.
type cachedDoc struct {
	doc        *Document
	lines      *LineIndex
	lastRefresh time.Time
	version    int
}

// DocumentProvider abstracts where a URI's source text comes from: an
// LSP server backs this with open-buffer text, the CLI backs it with
// FSProbe.ReadFile.
type DocumentProvider interface {
	Get(uri string) (string, bool)
}

// DocumentManager owns the per-URI parse cache.
type DocumentManager struct {
	clock Clock
	docs  map[string]*cachedDoc
}

func NewDocumentManager(clock Clock) *DocumentManager {
	return &DocumentManager{clock: clock, docs: map[string]*cachedDoc{}}
}

// Get returns the cached Document for uri, parsing text the first time
// it's seen. It never re-parses on its own — callers drive refresh via
// Refresh below, which reparses no more than once per 500ms and only
// when the source has actually changed.
func (m *DocumentManager) Get(uri, text string) *Document {
	c := m.docs[uri]
	if c == nil {
		c = &cachedDoc{}
		m.docs[uri] = c
	}
	if c.doc == nil || c.doc.Source != text {
		c.doc = ParseDocument(uri, text)
		c.lines = NewLineIndex(text)
		c.lastRefresh = m.clock.Now()
		c.version++
	}
	return c.doc
}

// Refresh re-parses uri's text if at least 500ms elapsed since the last
// refresh and the text actually differs from the cached source; returns
// whether a reparse happened.
func (m *DocumentManager) Refresh(uri, text string) bool {
	c := m.docs[uri]
	if c != nil && c.doc != nil && c.doc.Source == text {
		return false
	}
	if c != nil && !c.lastRefresh.IsZero() && m.clock.Now().Sub(c.lastRefresh) < 500*time.Millisecond {
		return false
	}
	m.Get(uri, text)
	return true
}

// Lines returns the LineIndex for uri's most recently parsed text, or nil
// if uri has never been parsed.
func (m *DocumentManager) Lines(uri string) *LineIndex {
	if c := m.docs[uri]; c != nil {
		return c.lines
	}
	return nil
}

// Forget drops a document from the cache (e.g. textDocument/didClose).
func (m *DocumentManager) Forget(uri string) { delete(m.docs, uri) }

// FindTokenAtPosition resolves a line/col position to a tagged token:
// TagName, AttributeName, AttributeValue, or Invalid.
func FindTokenAtPosition(doc *Document, lines *LineIndex, pos Position) PositionToken {
	offset := lines.PositionToOffset(pos)
	tags, _ := ScanTags(doc.Source)
	for _, t := range tags {
		if offset < t.Span.StartByte || offset > t.Span.EndByte {
			continue
		}
		var attrNames []string
		for _, a := range t.Attrs {
			attrNames = append(attrNames, a.Name)
		}
		// Tag-name region: just after "<" (or "</") and before the first space.
		nameStart := t.Span.StartByte + 1
		if t.Closing {
			nameStart++
		}
		nameEnd := nameStart + len(t.Name)
		if offset >= nameStart && offset <= nameEnd {
			return PositionToken{Kind: TokTagName, Tag: t.Name, Attrs: attrNames}
		}
		for i, a := range t.Attrs {
			if offset >= a.NameSpan.StartByte && offset <= a.NameSpan.EndByte {
				return PositionToken{Kind: TokAttributeName, Tag: t.Name, AttrIndex: i, Attrs: attrNames}
			}
			if offset >= a.ValueSpan.StartByte && offset <= a.ValueSpan.EndByte {
				before := ""
				if offset >= a.ValueSpan.StartByte {
					before = doc.Source[a.ValueSpan.StartByte:offset]
				}
				return PositionToken{Kind: TokAttributeValue, Tag: t.Name, AttrIndex: i, Attrs: attrNames, ValueBeforeCursor: before}
			}
		}
		return PositionToken{Kind: TokInvalid, Tag: t.Name, Attrs: attrNames}
	}
	return PositionToken{Kind: TokInvalid}
}
