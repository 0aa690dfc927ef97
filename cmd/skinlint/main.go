// cmd/skinlint/main.go
//
// ROLE: Batch CLI runner: discover every skin pack under a repository,
// validate it, print diagnostics in the fixed line format, and exit 1
// iff any error was found.
//
// Grounded on eykd-prosemark-go/cmd/root.go's single cobra.Command{RunE}
// shape (there: a multi-subcommand tree; here: one root command carrying
// every flag, since skinlint has exactly one job).
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/skinlang/skinls/internal/hostfs"
	"github.com/skinlang/skinls/internal/skinlang"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var ignore string
	var repoRoot string

	cmd := &cobra.Command{
		Use:           "skinlint [path...]",
		Short:         "Validate skin packs against a class model",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			patterns := strings.Fields(ignore)
			exitCode, err := run(cmd, args, repoRoot, patterns)
			if err != nil {
				return err
			}
			if exitCode != 0 {
				os.Exit(exitCode)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&ignore, "ignore", "", "space-separated path substrings to skip")
	cmd.Flags().StringVar(&repoRoot, "root", "", "repository root (default: nearest ancestor with repo.json, else cwd)")
	return cmd
}

func run(cmd *cobra.Command, args []string, repoRoot string, ignorePatterns []string) (int, error) {
	probe := hostfs.New()

	if repoRoot == "" {
		fh := skinlang.NewFilesystemHelper(probe)
		start := "."
		if len(args) > 0 {
			start = args[0]
			if !probe.IsDir(start) {
				start = filepath.Dir(start)
			}
		}
		if found, ok := fh.FindRepoRoot(start, "repo.json"); ok {
			repoRoot = found
		} else {
			repoRoot = "."
		}
	}

	an := skinlang.NewAnalyzer(probe, hostfs.DocumentProvider{Probe: probe}, nil)
	if err := an.LoadRepo(repoRoot); err != nil {
		return 0, fmt.Errorf("loading class model: %w", err)
	}

	roots := discoverSkinPackRoots(probe, an, repoRoot)
	for _, r := range roots {
		an.IndexSkinPack(r)
	}

	started := time.Now()
	var errCount, warnCount int
	for _, uri := range sortedURIs(an.IndexedDocuments()) {
		if ignored(uri, ignorePatterns) {
			continue
		}
		for _, d := range an.CheckDocument(uri) {
			line := skinlang.FormatCLILine(uri, d)
			fmt.Fprintln(cmd.OutOrStdout(), line)
			if d.Severity == skinlang.SevError {
				errCount++
			} else {
				warnCount++
			}
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Total Errors: %d\n", errCount)
	fmt.Fprintf(cmd.OutOrStdout(), "Total Warnings: %d\n", warnCount)
	fmt.Fprintf(cmd.OutOrStdout(), "Finished in %s\n", time.Since(started))

	if errCount > 0 {
		return 1, nil
	}
	return 0, nil
}

// discoverSkinPackRoots finds every skin.xml under the repo's configured
// skins/ locations, as named by repo.json's "skins" key.
func discoverSkinPackRoots(probe hostfs.Probe, an *skinlang.Analyzer, repoRoot string) []string {
	fh := skinlang.NewFilesystemHelper(probe)
	var roots []string
	for _, loc := range an.Config().Skins {
		dir := filepath.ToSlash(filepath.Join(repoRoot, loc))
		fh.WalkDir(dir, func(p string) bool {
			if strings.HasSuffix(p, "/skin.xml") || p == "skin.xml" {
				roots = append(roots, p)
			}
			return true
		})
	}
	return roots
}

func ignored(uri string, patterns []string) bool {
	abs, err := filepath.Abs(uri)
	if err != nil {
		abs = uri
	}
	for _, p := range patterns {
		if strings.Contains(abs, p) {
			return true
		}
	}
	return false
}

func sortedURIs(uris []string) []string {
	out := append([]string(nil), uris...)
	sort.Strings(out)
	return out
}
