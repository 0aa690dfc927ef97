// cmd/skin-repl/main.go
//
// ROLE: Interactive REPL for the skin expression evaluator and the
// analyzer's variable-resolution/IntelliSense queries — useful for
// debugging the resolver against a loaded skin pack without an editor.
//
// Grounded on _examples/daios-ai-msg/cmd/msg/main.go's cmdRepl: same
// liner.NewLiner() loop, history file, Ctrl+C/SIGTERM handling,
// ":"-prefixed commands, and colorized output shape; the evaluated
// language differs (skin expressions and analyzer queries instead of the
// original interpreter's language).
package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/peterh/liner"

	"github.com/skinlang/skinls/internal/hostfs"
	"github.com/skinlang/skinls/internal/skinlang"
)

const (
	appName     = "skin-repl"
	historyFile = ".skin_repl_history"
	prompt      = "skin> "
)

var banner = "Skin Language REPL\n" +
	"Enter a skin expression to evaluate it, or a ':' command. Type :help for commands.\n" +
	"Ctrl+C cancels input, Ctrl+D exits."

var helpText = `
Commands:
  :load <repoRoot>            load repo.json + class model from repoRoot
  :open <skin.xml path>       index the skin pack that owns this file
  :check <uri>                run the checker and print its diagnostics
  :hover <uri> <line> <col>   show hover text at a 1-based line/col
  :def <uri> <line> <col>     go to definition at a 1-based line/col
  :refs <uri> <line> <col>    find references at a 1-based line/col
  :quit                       exit the REPL

Anything else is evaluated as a skin expression, e.g. "1 + 2 * 3".
`

func red(s string) string   { return "\x1b[31m" + s + "\x1b[0m" }
func green(s string) string { return "\x1b[32m" + s + "\x1b[0m" }

func main() {
	fmt.Println(banner)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigc)
	go func() {
		<-sigc
		ln.Close()
		os.Exit(130)
	}()

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}

	probe := hostfs.New()
	an := skinlang.NewAnalyzer(probe, hostfs.DocumentProvider{Probe: probe}, nil)

	for {
		line, err := ln.Prompt(prompt)
		if err != nil {
			if err == io.EOF {
				fmt.Println()
			}
			break
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		ln.AppendHistory(line)

		if strings.HasPrefix(line, ":") {
			if !dispatch(an, line) {
				break
			}
			continue
		}

		v, err := skinlang.EvaluateExpression(line)
		if err != nil {
			fmt.Fprintln(os.Stderr, red(err.Error()))
			continue
		}
		fmt.Println(green(v.String()))
	}
}

// dispatch runs one ':' command; returns false to stop the REPL loop.
func dispatch(an *skinlang.Analyzer, line string) bool {
	fields := strings.Fields(line)
	cmd := strings.ToLower(fields[0])
	args := fields[1:]

	switch cmd {
	case ":quit":
		return false
	case ":help":
		fmt.Println(helpText)
	case ":load":
		if len(args) != 1 {
			fmt.Fprintln(os.Stderr, "usage: :load <repoRoot>")
			return true
		}
		if err := an.LoadRepo(args[0]); err != nil {
			fmt.Fprintln(os.Stderr, red(err.Error()))
			return true
		}
		fmt.Println("class model loaded")
	case ":open":
		if len(args) != 1 {
			fmt.Fprintln(os.Stderr, "usage: :open <skin.xml path>")
			return true
		}
		root, ok := an.FindSkinPackRootFor(filepath.Dir(args[0]))
		if !ok {
			root = args[0]
		}
		an.IndexSkinPack(root)
		fmt.Printf("indexed skin pack rooted at %s\n", root)
	case ":check":
		if len(args) != 1 {
			fmt.Fprintln(os.Stderr, "usage: :check <uri>")
			return true
		}
		diags := an.CheckDocument(args[0])
		if len(diags) == 0 {
			fmt.Println("no diagnostics")
		}
		for _, d := range diags {
			fmt.Println(skinlang.FormatCLILine(args[0], d))
		}
	case ":hover":
		pos, uri, ok := parsePositionCmd(args)
		if !ok {
			fmt.Fprintln(os.Stderr, "usage: :hover <uri> <line> <col>")
			return true
		}
		text, found := an.FindHover(uri, pos)
		if !found {
			fmt.Println("(no hover)")
			return true
		}
		fmt.Println(text)
	case ":def":
		pos, uri, ok := parsePositionCmd(args)
		if !ok {
			fmt.Fprintln(os.Stderr, "usage: :def <uri> <line> <col>")
			return true
		}
		printLocations(an.FindDefinitions(uri, pos))
	case ":refs":
		pos, uri, ok := parsePositionCmd(args)
		if !ok {
			fmt.Fprintln(os.Stderr, "usage: :refs <uri> <line> <col>")
			return true
		}
		printLocations(an.FindReferences(uri, pos))
	default:
		fmt.Printf("unknown command %q. Type :help.\n", cmd)
	}
	return true
}

func printLocations(locs []skinlang.Location) {
	if len(locs) == 0 {
		fmt.Println("(none)")
		return
	}
	for _, l := range locs {
		fmt.Printf("%s:%d:%d\n", l.URI, l.Start.Line+1, l.Start.Col+1)
	}
}

// parsePositionCmd parses "<uri> <1-based-line> <1-based-col>" into a
// 0-based skinlang.Position.
func parsePositionCmd(args []string) (skinlang.Position, string, bool) {
	if len(args) != 3 {
		return skinlang.Position{}, "", false
	}
	line, err1 := strconv.Atoi(args[1])
	col, err2 := strconv.Atoi(args[2])
	if err1 != nil || err2 != nil || line < 1 || col < 1 {
		return skinlang.Position{}, "", false
	}
	return skinlang.Position{Line: line - 1, Col: col - 1}, args[0], true
}
