// features.go
//
// ROLE: LSP feature handlers — thin adapters over internal/skinlang.Analyzer
// implementing the language-server surface.
//
// Grounded on _examples/daios-ai-msg/cmd/msg-lsp/features.go's
// onXxx(id, paramsRaw) handler shape; the bodies differ entirely since
// they delegate to the skin analyzer instead of the original interpreter.
package main

import (
	"encoding/json"
	"path"
)

func (s *server) onInitialize(id json.RawMessage, paramsRaw json.RawMessage) {
	var params InitializeParams
	_ = json.Unmarshal(paramsRaw, &params)
	if params.RootURI != "" {
		s.an.LoadRepo(params.RootURI)
	}

	result := InitializeResult{
		Capabilities: ServerCapabilities{
			TextDocumentSync: TextDocumentSyncOptions{OpenClose: true, Change: 1},
			HoverProvider:      true,
			DefinitionProvider: true,
			CompletionProvider: &struct {
				TriggerCharacters []string `json:"triggerCharacters"`
			}{TriggerCharacters: []string{".", "/", "<", " ", "\"", "$", "[", ":", "@", "?"}},
			ReferencesProvider: true,
			ColorProvider:      true,
			RenameProvider:     map[string]any{"prepareProvider": true},
		},
		ServerInfo: map[string]string{"name": "skin-lsp", "version": "0.1"},
	}
	s.sendResponse(id, result, nil)
}

func (s *server) indexOwningPack(uri string) {
	if root, ok := s.an.FindSkinPackRootFor(path.Dir(uri)); ok {
		s.an.IndexSkinPack(root)
	} else {
		s.an.IndexSkinPack(uri)
	}
}

func (s *server) onDidOpen(raw json.RawMessage) {
	var params struct {
		TextDocument TextDocumentItem `json:"textDocument"`
	}
	_ = json.Unmarshal(raw, &params)

	s.mu.Lock()
	s.docs[params.TextDocument.URI] = &docState{uri: params.TextDocument.URI, text: params.TextDocument.Text}
	s.mu.Unlock()

	s.indexOwningPack(params.TextDocument.URI)
	s.publishDiagnostics(params.TextDocument.URI)
}

func (s *server) onDidChange(raw json.RawMessage) {
	var params struct {
		TextDocument struct {
			URI string `json:"uri"`
		} `json:"textDocument"`
		ContentChanges []TextDocumentContentChangeEvent `json:"contentChanges"`
	}
	_ = json.Unmarshal(raw, &params)
	if len(params.ContentChanges) == 0 {
		return
	}
	// Full-sync only (see TextDocumentSyncOptions.Change above): the last
	// change event carries the entire document text.
	text := params.ContentChanges[len(params.ContentChanges)-1].Text

	s.mu.Lock()
	s.docs[params.TextDocument.URI] = &docState{uri: params.TextDocument.URI, text: text}
	s.mu.Unlock()

	s.an.RefreshDocument(params.TextDocument.URI, text)
	s.publishDiagnostics(params.TextDocument.URI)
}

func (s *server) onDidClose(raw json.RawMessage) {
	var params struct {
		TextDocument TextDocumentIdentifier `json:"textDocument"`
	}
	_ = json.Unmarshal(raw, &params)
	s.mu.Lock()
	delete(s.docs, params.TextDocument.URI)
	s.mu.Unlock()
}

func (s *server) onHover(id json.RawMessage, paramsRaw json.RawMessage) {
	var params struct {
		TextDocument TextDocumentIdentifier `json:"textDocument"`
		Position     Position               `json:"position"`
	}
	_ = json.Unmarshal(paramsRaw, &params)

	text, ok := s.an.FindHover(params.TextDocument.URI, toEnginePos(params.Position))
	if !ok {
		s.sendResponse(id, nil, nil)
		return
	}
	s.sendResponse(id, Hover{Contents: MarkupContent{Kind: "markdown", Value: text}}, nil)
}

func (s *server) onDefinition(id json.RawMessage, paramsRaw json.RawMessage) {
	var params struct {
		TextDocument TextDocumentIdentifier `json:"textDocument"`
		Position     Position               `json:"position"`
	}
	_ = json.Unmarshal(paramsRaw, &params)

	locs := s.an.FindDefinitions(params.TextDocument.URI, toEnginePos(params.Position))
	if len(locs) == 0 {
		s.sendResponse(id, nil, nil)
		return
	}
	wire := make([]Location, 0, len(locs))
	for _, l := range locs {
		wire = append(wire, fromEngineLocation(l))
	}
	s.sendResponse(id, wire, nil)
}

func (s *server) onReferences(id json.RawMessage, paramsRaw json.RawMessage) {
	var params struct {
		TextDocument TextDocumentIdentifier `json:"textDocument"`
		Position     Position               `json:"position"`
	}
	_ = json.Unmarshal(paramsRaw, &params)

	locs := s.an.FindReferences(params.TextDocument.URI, toEnginePos(params.Position))
	wire := make([]Location, 0, len(locs))
	for _, l := range locs {
		wire = append(wire, fromEngineLocation(l))
	}
	s.sendResponse(id, wire, nil)
}

func (s *server) onCompletion(id json.RawMessage, paramsRaw json.RawMessage) {
	var params struct {
		TextDocument TextDocumentIdentifier `json:"textDocument"`
		Position     Position               `json:"position"`
	}
	_ = json.Unmarshal(paramsRaw, &params)

	items := s.an.FindCompletions(params.TextDocument.URI, toEnginePos(params.Position))
	wire := make([]CompletionItem, 0, len(items))
	for _, it := range items {
		wire = append(wire, CompletionItem{
			Label:      it.Label,
			Kind:       completionItemKind(it.Kind),
			Detail:     it.Detail,
			InsertText: it.InsertText,
			Preselect:  it.Preselect,
		})
	}
	s.sendResponse(id, wire, nil)
}

// completionItemKind maps skinlang.CompletionItem.Kind (a free-form
// domain label) onto the LSP CompletionItemKind enum.
func completionItemKind(kind string) int {
	switch kind {
	case "class":
		return 7 // Class
	case "attribute", "property":
		return 10 // Property
	case "enum":
		return 13 // Enum
	case "color":
		return 16 // Color
	case "style", "shape", "form":
		return 22 // Struct
	case "image", "file":
		return 17 // File
	case "variable":
		return 6 // Variable
	case "keyword":
		return 14 // Keyword
	case "value":
		return 12 // Value
	case "snippet":
		return 15 // Snippet
	case "package":
		return 9 // Module
	default:
		return 1 // Text
	}
}

func (s *server) onPrepareRename(id json.RawMessage, paramsRaw json.RawMessage) {
	var params struct {
		TextDocument TextDocumentIdentifier `json:"textDocument"`
		Position     Position               `json:"position"`
	}
	_ = json.Unmarshal(paramsRaw, &params)

	rng, text, ok := s.an.PrepareRename(params.TextDocument.URI, toEnginePos(params.Position))
	if !ok {
		s.sendResponse(id, nil, &ResponseError{Code: -32803, Message: "cannot rename here"})
		return
	}
	s.sendResponse(id, struct {
		Range       Range  `json:"range"`
		Placeholder string `json:"placeholder"`
	}{Range: fromEngineRange(rng), Placeholder: text}, nil)
}

func (s *server) onRename(id json.RawMessage, paramsRaw json.RawMessage) {
	var params RenameParams
	_ = json.Unmarshal(paramsRaw, &params)

	rng, _, ok := s.an.PrepareRename(params.TextDocument.URI, toEnginePos(params.Position))
	if !ok {
		s.sendResponse(id, nil, &ResponseError{Code: -32803, Message: "cannot rename here"})
		return
	}
	edits := []TextEdit{{Range: fromEngineRange(rng), NewText: params.NewName}}
	for _, ref := range s.an.FindReferences(params.TextDocument.URI, toEnginePos(params.Position)) {
		if ref.URI == params.TextDocument.URI && ref.Start == rng.Start {
			continue
		}
		edits = append(edits, TextEdit{Range: Range{Start: fromEnginePos(ref.Start), End: fromEnginePos(ref.End)}, NewText: params.NewName})
	}
	s.sendResponse(id, WorkspaceEdit{Changes: map[string][]TextEdit{params.TextDocument.URI: edits}}, nil)
}

// onDocumentColor and onColorPresentation exist to satisfy
// ColorProvider's advertised capability. The Skin Document Checker tracks
// color literals only transiently (per-diagnostic), not as a queryable
// index, so these return the empty set rather than a fabricated one.
func (s *server) onDocumentColor(id json.RawMessage, _ json.RawMessage) {
	s.sendResponse(id, []ColorInformation{}, nil)
}

func (s *server) onColorPresentation(id json.RawMessage, _ json.RawMessage) {
	s.sendResponse(id, []any{}, nil)
}
