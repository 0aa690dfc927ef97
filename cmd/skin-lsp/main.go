// cmd/skin-lsp/main.go
//
// ROLE: Executable entrypoint and JSON-RPC dispatch loop.
//
// What lives here
//   - Process startup and server construction.
//   - Framed JSON-RPC read loop from stdin, write to stdout.
//   - Method routing: decode -> switch on req.Method -> delegate to
//     server handlers in features.go.
//
// What does NOT live here
//   - No language features, no document state. Keep this file small so
//     the transport can be swapped without touching feature logic.
//
// Grounded on _examples/daios-ai-msg/cmd/msg-lsp/main.go's dispatch-loop
// shape.
package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

func main() {
	repoRoot := ""
	if len(os.Args) > 1 {
		repoRoot = os.Args[1]
	}
	s := newServer(repoRoot)
	in := bufio.NewReader(os.Stdin)

	for {
		msgBytes, err := readMsg(in)
		if err != nil {
			if err != io.EOF {
				fmt.Fprintln(os.Stderr, "read error:", err)
			}
			return
		}

		var req Request
		if err := json.Unmarshal(msgBytes, &req); err != nil {
			continue
		}

		switch req.Method {
		case "initialize":
			s.onInitialize(req.ID, req.Params)
		case "initialized":
			// no-op
		case "shutdown":
			s.sendResponse(req.ID, nil, nil)
		case "exit":
			return

		case "textDocument/didOpen":
			s.onDidOpen(req.Params)
		case "textDocument/didChange":
			s.onDidChange(req.Params)
		case "textDocument/didClose":
			s.onDidClose(req.Params)

		case "textDocument/hover":
			s.onHover(req.ID, req.Params)
		case "textDocument/definition":
			s.onDefinition(req.ID, req.Params)
		case "textDocument/completion":
			s.onCompletion(req.ID, req.Params)
		case "textDocument/references":
			s.onReferences(req.ID, req.Params)
		case "textDocument/prepareRename":
			s.onPrepareRename(req.ID, req.Params)
		case "textDocument/rename":
			s.onRename(req.ID, req.Params)
		case "textDocument/documentColor":
			s.onDocumentColor(req.ID, req.Params)
		case "textDocument/colorPresentation":
			s.onColorPresentation(req.ID, req.Params)

		default:
			if len(req.ID) > 0 {
				s.sendResponse(req.ID, nil, &ResponseError{Code: -32601, Message: "method not found"})
			}
		}
	}
}
