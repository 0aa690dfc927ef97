// core.go
//
// ROLE: Transport (stdio Content-Length framing) plus the small amount of
// position/diagnostic marshaling shared by every feature handler.
//
// Grounded on _examples/daios-ai-msg/cmd/msg-lsp/core.go's
// readMsg/writeMsg/sendResponse/notify quartet — the framing logic here
// is unchanged in shape, only the document/analysis types it carries
// differ.
package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/skinlang/skinls/internal/skinlang"
)

var stdoutSink io.Writer = os.Stdout

func init() {
	if strings.HasSuffix(os.Args[0], ".test") && os.Getenv("SKINLSP_STDOUT") == "" {
		stdoutSink = io.Discard
	}
}

func readMsg(r *bufio.Reader) ([]byte, error) {
	var contentLen int
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return nil, err
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}
		if i := strings.IndexByte(line, ':'); i >= 0 {
			key := strings.ToLower(strings.TrimSpace(line[:i]))
			val := strings.TrimSpace(line[i+1:])
			if key == "content-length" {
				_, _ = fmt.Sscanf(val, "%d", &contentLen)
			}
		}
	}
	if contentLen <= 0 {
		return nil, io.EOF
	}
	buf := make([]byte, contentLen)
	_, err := io.ReadFull(r, buf)
	return buf, err
}

func writeMsg(w io.Writer, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var b bytes.Buffer
	fmt.Fprintf(&b, "Content-Length: %d\r\n\r\n", len(body))
	b.Write(body)
	_, err = w.Write(b.Bytes())
	return err
}

func (s *server) sendResponse(id json.RawMessage, result any, respErr *ResponseError) {
	if respErr == nil && result == nil {
		_ = writeMsg(stdoutSink, Response{JSONRPC: "2.0", ID: id, Result: json.RawMessage("null")})
		return
	}
	_ = writeMsg(stdoutSink, Response{JSONRPC: "2.0", ID: id, Result: result, Error: respErr})
}

func (s *server) notify(method string, params any) {
	_ = writeMsg(stdoutSink, map[string]any{
		"jsonrpc": "2.0",
		"method":  method,
		"params":  params,
	})
}

// ----- Position/range conversion -----
//
// skinlang.Position and the wire Position share the exact same shape (a
// 0-based line and a UTF-16 column); only the field names differ.

func toEnginePos(p Position) skinlang.Position {
	return skinlang.Position{Line: p.Line, Col: p.Character}
}

func fromEnginePos(p skinlang.Position) Position {
	return Position{Line: p.Line, Character: p.Col}
}

func fromEngineRange(r skinlang.Range) Range {
	return Range{Start: fromEnginePos(r.Start), End: fromEnginePos(r.End)}
}

func fromEngineLocation(l skinlang.Location) Location {
	return Location{URI: l.URI, Range: Range{Start: fromEnginePos(l.Start), End: fromEnginePos(l.End)}}
}

func fromEngineDiagnostic(d skinlang.Diagnostic) Diagnostic {
	sev := 1
	if d.Severity == skinlang.SevWarning {
		sev = 2
	}
	wire := Diagnostic{
		Range:    fromEngineRange(d.Range),
		Severity: sev,
		Source:   "skinlint",
		Message:  d.Message,
	}
	for _, r := range d.Related {
		wire.RelatedInformation = append(wire.RelatedInformation, DiagnosticRelated{
			Location: fromEngineLocation(r.Location),
			Message:  r.Message,
		})
	}
	return wire
}

// publishDiagnostics runs the checker over uri in cooperative Budget
// slices, yielding roughly every 500ms, and pushes the final diagnostic
// list once the walk completes; an empty list clears whatever
// the editor was showing. It runs in its own goroutine, releasing the
// Analyzer's lock between slices, so a large document's validation never
// blocks the read loop from handling a hover or a newer didChange while it
// runs. If a newer edit bumps the check epoch before this run finishes,
// CheckDocumentCooperative reports it stale and this goroutine drops the
// result rather than publishing something already superseded. Each
// completed run logs its correlation id to stderr alongside the publish,
// so a later run's log line can be matched back to the didChange that
// triggered it.
func (s *server) publishDiagnostics(uri string) {
	run := s.an.BeginCheckRun()
	go func() {
		for {
			diags, done, stale := s.an.CheckDocumentCooperative(uri, run)
			if !done {
				continue
			}
			if stale {
				return // a later edit's own run will publish instead
			}
			fmt.Fprintf(os.Stderr, "check %s: %s -> %d diagnostic(s)\n", run.ID, uri, len(diags))
			wire := make([]Diagnostic, 0, len(diags))
			for _, d := range diags {
				wire = append(wire, fromEngineDiagnostic(d))
			}
			s.notify("textDocument/publishDiagnostics", PublishDiagnosticsParams{URI: uri, Diagnostics: wire})
			return
		}
	}()
}
