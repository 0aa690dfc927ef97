// fs.go — the Filesystem Helper: repo-root discovery, repo.json-driven
// path resolution, and directory walking.
//
// The core never touches the real filesystem directly: it consumes a
// document provider, a filesystem probe, and a clock as collaborators,
// so every operation here is phrased against the small FSProbe interface
// below rather than package os. A production embedding wires FSProbe to
// real os calls (see internal/hostfs.Probe, shared by cmd/skin-lsp,
// cmd/skinlint and cmd/skin-repl); tests wire it to an in-memory fake.
package skinlang

import (
	"path"
	"strings"
	"time"
)

// FSProbe is the filesystem collaborator interface the core depends on.
// Paths are slash-separated, repo-relative-or-absolute strings; this
// package never joins with the OS path separator directly so the same
// probe can back either a real filesystem or an in-memory one in tests.
type FSProbe interface {
	Exists(path string) bool
	ModTime(path string) (time.Time, bool)
	ReadFile(path string) (string, bool)
	ReadDir(dir string) ([]string, bool) // entry names, not full paths
	IsDir(path string) bool
}

// Clock is the second collaborator interface: a source of "now", used
// for the 500ms refresh-debounce in document.go and the Budget slices in
// budget.go.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock is the trivial Clock backed by time.Now.
var SystemClock Clock = systemClock{}

// FilesystemHelper resolves repo-relative structure: the skin-pack root
// marker, repo.json, and class-model file locations.
type FilesystemHelper struct {
	probe FSProbe
}

func NewFilesystemHelper(probe FSProbe) *FilesystemHelper {
	return &FilesystemHelper{probe: probe}
}

// FindRepoRoot walks up from dir looking for marker (typically
// repo.json), returning the directory containing it.
func (h *FilesystemHelper) FindRepoRoot(dir, marker string) (string, bool) {
	dir = path.Clean(dir)
	for {
		if h.probe.Exists(joinSlash(dir, marker)) {
			return dir, true
		}
		parent := path.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// FindSkinPackRoot walks up from a file's directory until a skin.xml is
// found.
func (h *FilesystemHelper) FindSkinPackRoot(fileDir string) (string, bool) {
	return h.FindRepoRoot(fileDir, "skin.xml")
}

func joinSlash(dir, name string) string {
	if dir == "" || dir == "." {
		return name
	}
	return strings.TrimRight(dir, "/") + "/" + name
}

// WalkDir visits every file under dir (recursively) via the probe,
// calling fn with each file's full path. Directory entries starting with
// '.' are skipped. fn returning false stops descent into that entry only
// when it names a directory.
func (h *FilesystemHelper) WalkDir(dir string, fn func(path string) bool) {
	entries, ok := h.probe.ReadDir(dir)
	if !ok {
		return
	}
	for _, name := range entries {
		if strings.HasPrefix(name, ".") {
			continue
		}
		full := joinSlash(dir, name)
		if h.probe.IsDir(full) {
			if fn(full) {
				h.WalkDir(full, fn)
			}
			continue
		}
		fn(full)
	}
}
