// analyzer.go — the top-level Analyzer state: concentrates every mutable
// global cache in a single value. Owns the class model, the cross-file
// definition parser, the document manager, the variable resolver and
// checker, plus the check-epoch/budget cooperative-scheduling
// primitives.
//
// Grounded on _examples/daios-ai-msg/cmd/msg-lsp/state.go's single-
// struct-plus-mutex shape (there: one server{mu sync.RWMutex; docs
// map[string]*docState}; here: the same shape generalized to the richer
// skin-analysis state). Uses github.com/google/uuid to mint a
// correlation id per check run, the way a production LSP server would
// tag its own diagnostics-publish events for log correlation.
package skinlang

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Analyzer is the process-wide, mutex-guarded owner of every shared
// cache.
type Analyzer struct {
	mu sync.RWMutex

	probe FSProbe
	clock Clock

	cm       *ClassModel
	dp       *SkinDefinitionParser
	docs     *DocumentManager
	varRes   *VariableResolver
	checker  *Checker

	repoRoot string
	config   RepoConfig

	checkEpoch  int
	checkStates map[string]*checkState
}

// NewAnalyzer wires every collaborator: a document provider, a
// filesystem probe, and a clock are the only external inputs the core
// depends on.
func NewAnalyzer(probe FSProbe, docs DocumentProvider, clock Clock) *Analyzer {
	if clock == nil {
		clock = SystemClock
	}
	a := &Analyzer{probe: probe, clock: clock, config: DefaultRepoConfig(), checkStates: map[string]*checkState{}}
	a.cm = NewClassModel(probe)
	a.dp = NewSkinDefinitionParser(probe, docs)
	a.dp.SetClassModel(a.cm)
	a.docs = NewDocumentManager(clock)
	a.varRes = NewVariableResolver(a.dp)
	a.checker = NewChecker(a.cm, a.dp, a.varRes)
	return a
}

// CheckRun is one invocation of check_document, tagged with a correlation
// id for log/telemetry correlation across the debounce/epoch boundary —
// cmd/skin-lsp/core.go's publishDiagnostics logs ID alongside each
// completed run so a stderr line can be traced back to the edit that
// triggered it.
type CheckRun struct {
	ID      string
	Epoch   int
	Started time.Time
}

// BeginCheckRun bumps the check epoch — the cancellation primitive
// bumped whenever a new validation for any document arrives — and
// returns a correlation-tagged run descriptor.
func (a *Analyzer) BeginCheckRun() CheckRun {
	a.mu.Lock()
	a.checkEpoch++
	epoch := a.checkEpoch
	a.mu.Unlock()
	return CheckRun{ID: uuid.NewString(), Epoch: epoch, Started: a.clock.Now()}
}

// IsStale reports whether run's epoch has been superseded by a later
// BeginCheckRun call — an in-flight walk consults this before resuming a
// yielded chunk.
func (a *Analyzer) IsStale(run CheckRun) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return run.Epoch != a.checkEpoch
}

// LoadRepo reads repoRoot/repo.json (if any; it does not search parent
// directories) and loads both class-model files.
func (a *Analyzer) LoadRepo(repoRoot string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.repoRoot = repoRoot
	cfg, err := LoadRepoConfig(a.probe, joinSlash(repoRoot, "repo.json"))
	if err != nil {
		return err
	}
	a.config = cfg
	a.dp.SetRepoConfig(repoRoot, cfg)

	var classModelDir string
	if len(cfg.ClassModels) > 0 {
		classModelDir = cfg.ClassModels[0]
	} else {
		classModelDir = "classmodels/"
	}
	elementsPath := joinSlash(joinSlash(repoRoot, classModelDir), SkinElementsModelFile)
	stylesPath := joinSlash(joinSlash(repoRoot, classModelDir), VisualStylesModelFile)
	elemErr := a.cm.LoadClassModel(elementsPath)
	styleErr := a.cm.LoadStyleModel(stylesPath)
	if elemErr != nil {
		return elemErr
	}
	return styleErr
}

// IndexSkinPack indexes one skin pack's skin.xml and everything it
// reaches via Include/Import.
func (a *Analyzer) IndexSkinPack(rootSkinXMLURI string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.dp.IndexSkinPack(rootSkinXMLURI)
}

// FindSkinPackRootFor locates the skin.xml governing fileDir, so a
// collaborator that only knows "a file was opened" (an editor, the CLI)
// can find the right argument for IndexSkinPack.
func (a *Analyzer) FindSkinPackRootFor(fileDir string) (string, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.dp.FindSkinPackRootFor(fileDir)
}

// IndexedDocuments returns every URI currently indexed by IndexSkinPack
// calls so far, letting a batch collaborator (cmd/skinlint) discover what
// to run CheckDocument over without duplicating the include/import walk.
func (a *Analyzer) IndexedDocuments() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	uris := make([]string, 0, len(a.dp.infos))
	for uri := range a.dp.infos {
		uris = append(uris, uri)
	}
	return uris
}

// Config returns the currently loaded repository configuration
// (skins/classmodels/translations search paths).
func (a *Analyzer) Config() RepoConfig {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.config
}

// CheckDocument runs a full, synchronous validation of uri and returns
// its sorted diagnostics.
func (a *Analyzer) CheckDocument(uri string) []Diagnostic {
	a.mu.RLock()
	defer a.mu.RUnlock()
	diags := a.checker.CheckDocument(uri)
	SortDiagnostics(diags)
	return diags
}

// CheckDocumentCooperative runs at most one Budget slice of uri's
// validation, letting a caller that can interleave other editor requests
// between
// slices — skin-lsp's request loop — avoid blocking on one large
// document's entire walk. run must come from BeginCheckRun. done is true
// once diags holds the complete, sorted result (which may legitimately be
// empty for a clean document). stale is true if the epoch moved on since
// run started, in which case the in-progress state has been dropped and
// the caller should abandon this run rather than resume or publish it.
func (a *Analyzer) CheckDocumentCooperative(uri string, run CheckRun) (diags []Diagnostic, done, stale bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if run.Epoch != a.checkEpoch {
		delete(a.checkStates, uri)
		return nil, true, true
	}
	st := a.checkStates[uri]
	if st == nil {
		st = a.checker.newCheckState(uri)
		a.checkStates[uri] = st
	}
	budget := NewBudget(a.clock, DefaultBudgetSlice)
	if !a.checker.stepCheck(st, budget) {
		return nil, false, false
	}
	delete(a.checkStates, uri)
	SortDiagnostics(st.diags)
	return st.diags, true, false
}

// FindCompletions delegates to the IntelliSense Provider.
func (a *Analyzer) FindCompletions(uri string, pos Position) []CompletionItem {
	a.mu.RLock()
	defer a.mu.RUnlock()
	ip := NewIntelliSenseProvider(a.cm, a.dp, a.varRes)
	return ip.FindCompletions(uri, pos)
}

// FindHover delegates to the IntelliSense Provider.
func (a *Analyzer) FindHover(uri string, pos Position) (string, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	ip := NewIntelliSenseProvider(a.cm, a.dp, a.varRes)
	return ip.FindHover(uri, pos)
}

// FindDefinitions delegates to the IntelliSense Provider.
func (a *Analyzer) FindDefinitions(uri string, pos Position) []Location {
	a.mu.RLock()
	defer a.mu.RUnlock()
	ip := NewIntelliSenseProvider(a.cm, a.dp, a.varRes)
	return ip.FindDefinitions(uri, pos)
}

// FindReferences delegates to the IntelliSense Provider.
func (a *Analyzer) FindReferences(uri string, pos Position) []Location {
	a.mu.RLock()
	defer a.mu.RUnlock()
	ip := NewIntelliSenseProvider(a.cm, a.dp, a.varRes)
	return ip.FindReferences(uri, pos)
}

// PrepareRename delegates to the IntelliSense Provider.
func (a *Analyzer) PrepareRename(uri string, pos Position) (Range, string, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	ip := NewIntelliSenseProvider(a.cm, a.dp, a.varRes)
	return ip.PrepareRename(uri, pos)
}

// RefreshDocument reparses uri's text under the 500ms/changed-text debounce
// gate, then re-indexes its SkinFileInfo. It is the only path that
// mutates per-file caches outside of initial indexing.
func (a *Analyzer) RefreshDocument(uri, text string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.docs.Refresh(uri, text) {
		return
	}
	// Re-index this single file's SkinFileInfo in place; the include/import
	// graph around it is assumed stable between edits (a structural change
	// there requires a fresh IndexSkinPack call).
	delete(a.dp.infos, uri)
	delete(a.dp.docCache, uri)
	ns := a.dp.namespaces[uri]
	a.dp.indexFile(uri, ns, false)
	// Any in-progress cooperative check walk for uri now points at a stale
	// *Document; drop it rather than resume it against the reparsed tree.
	delete(a.checkStates, uri)
}
