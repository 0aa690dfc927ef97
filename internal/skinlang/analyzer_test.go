package skinlang

import (
	"testing"
	"time"
)

const analyzerClassModelXML = `<Root>
<Model.Class Name="Element" Class:Abstract="true">
  <List x:id="members">
    <Model.Member Name="name" Type="String"/>
  </List>
</Model.Class>
<Model.Class Name="Skin" Class:Parent="Element">
  <Attributes x:id="attributes" Class:ChildGroup="root"/>
</Model.Class>
<Model.Class Name="Styles" Class:Parent="Element">
  <Attributes x:id="attributes" Class:SchemaGroups="root" Class:ChildGroup="styles"/>
</Model.Class>
<Model.Class Name="Style" Class:Parent="Element">
  <Attributes x:id="attributes" Class:SchemaGroups="styles"/>
</Model.Class>
</Root>`

func newTestAnalyzer(t *testing.T, probe *fakeProbe, clock Clock) *Analyzer {
	t.Helper()
	probe.put("classmodels/Skin Elements.classModel", analyzerClassModelXML)
	probe.put("classmodels/Visual Styles.classModel", `<Root></Root>`)
	a := NewAnalyzer(probe, docProvider{probe}, clock)
	if err := a.LoadRepo(""); err != nil {
		t.Fatalf("LoadRepo: %v", err)
	}
	return a
}

func TestAnalyzer_LoadRepoAppliesDefaultsWhenRepoJSONMissing(t *testing.T) {
	probe := newFakeProbe()
	a := newTestAnalyzer(t, probe, nil)
	if len(a.config.Skins) != 1 || a.config.Skins[0] != "skins/" {
		t.Fatalf("want default skins config, got %v", a.config.Skins)
	}
	if !a.cm.IsClassModelLoaded() {
		t.Fatalf("expected the class model to load from the default classmodels/ dir")
	}
}

func TestAnalyzer_LoadRepoFailsOnMissingClassModel(t *testing.T) {
	probe := newFakeProbe()
	a := NewAnalyzer(probe, docProvider{probe}, nil)
	if err := a.LoadRepo(""); err == nil {
		t.Fatalf("expected an error when no class model files exist")
	}
}

func TestAnalyzer_BeginCheckRunBumpsEpochMonotonically(t *testing.T) {
	probe := newFakeProbe()
	a := newTestAnalyzer(t, probe, nil)
	r1 := a.BeginCheckRun()
	r2 := a.BeginCheckRun()
	if r2.Epoch <= r1.Epoch {
		t.Fatalf("want a strictly increasing epoch, got %d then %d", r1.Epoch, r2.Epoch)
	}
	if r1.ID == r2.ID {
		t.Fatalf("expected distinct correlation ids per run")
	}
}

func TestAnalyzer_IsStaleAfterANewerRunBegins(t *testing.T) {
	probe := newFakeProbe()
	a := newTestAnalyzer(t, probe, nil)
	r1 := a.BeginCheckRun()
	if a.IsStale(r1) {
		t.Fatalf("a run should not be stale immediately after it begins")
	}
	a.BeginCheckRun()
	if !a.IsStale(r1) {
		t.Fatalf("r1 should be stale once a later run has begun")
	}
}

func TestAnalyzer_CheckDocumentReturnsSortedDiagnostics(t *testing.T) {
	probe := newFakeProbe()
	a := newTestAnalyzer(t, probe, nil)
	probe.put("skin.xml", `<Skin>
<Unknown1/>
<Unknown2/>
</Skin>`)
	a.IndexSkinPack("skin.xml")
	diags := a.CheckDocument("skin.xml")
	for i := 1; i < len(diags); i++ {
		if diags[i].Range.Start.Less(diags[i-1].Range.Start) {
			t.Fatalf("diagnostics are not sorted: %v", diags)
		}
	}
	if len(diags) < 2 {
		t.Fatalf("expected at least two unknown-element diagnostics, got %v", diags)
	}
}

func TestAnalyzer_RefreshDocumentSkipsWithinDebounceWindow(t *testing.T) {
	probe := newFakeProbe()
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	a := newTestAnalyzer(t, probe, clock)
	probe.put("skin.xml", `<Skin><Styles/></Skin>`)
	a.IndexSkinPack("skin.xml")

	// The DocumentProvider wired into the Analyzer is backed by the same
	// probe here, mirroring an LSP server whose open-buffer store and its
	// wired DocumentProvider are the same underlying state.
	textA := `<Skin><Styles><Style name="A"/></Styles></Skin>`
	probe.put("skin.xml", textA)
	a.RefreshDocument("skin.xml", textA)
	info := a.dp.FindSkinFileInfo("skin.xml")
	if _, ok := info.Definitions[DefStyle]["A"]; !ok {
		t.Fatalf("expected the first refresh to re-index immediately")
	}

	clock.advance(100 * time.Millisecond) // inside the 500ms debounce window
	textB := `<Skin><Styles><Style name="B"/></Styles></Skin>`
	probe.put("skin.xml", textB)
	a.RefreshDocument("skin.xml", textB)
	info = a.dp.FindSkinFileInfo("skin.xml")
	if _, ok := info.Definitions[DefStyle]["B"]; ok {
		t.Fatalf("a refresh inside the debounce window should have been skipped")
	}

	clock.advance(600 * time.Millisecond) // past the debounce window
	textC := `<Skin><Styles><Style name="C"/></Styles></Skin>`
	probe.put("skin.xml", textC)
	a.RefreshDocument("skin.xml", textC)
	info = a.dp.FindSkinFileInfo("skin.xml")
	if _, ok := info.Definitions[DefStyle]["C"]; !ok {
		t.Fatalf("expected a refresh past the debounce window to re-index")
	}
}

func TestAnalyzer_CheckDocumentCooperativeMatchesCheckDocument(t *testing.T) {
	probe := newFakeProbe()
	a := newTestAnalyzer(t, probe, nil)
	probe.put("skin.xml", `<Skin>
<Unknown1/>
<Unknown2/>
</Skin>`)
	a.IndexSkinPack("skin.xml")

	want := a.CheckDocument("skin.xml")

	run := a.BeginCheckRun()
	var got []Diagnostic
	for {
		diags, done, stale := a.CheckDocumentCooperative("skin.xml", run)
		if stale {
			t.Fatalf("a freshly begun run must not be stale")
		}
		if done {
			got = diags
			break
		}
	}
	if len(got) != len(want) {
		t.Fatalf("cooperative check returned %d diagnostics, synchronous check returned %d: %v vs %v", len(got), len(want), got, want)
	}
	for i := range want {
		if got[i].Message != want[i].Message {
			t.Fatalf("diagnostic %d differs: got %q want %q", i, got[i].Message, want[i].Message)
		}
	}
}

// stepClock advances by delta every time Now is called, standing in for
// real wall-clock time passing as stepCheck polls the budget between
// nodes — a plain fakeClock never moves on its own, so it can't exercise
// mid-walk exhaustion the way this needs to.
type stepClock struct {
	now   time.Time
	delta time.Duration
}

func (c *stepClock) Now() time.Time {
	t := c.now
	c.now = c.now.Add(c.delta)
	return t
}

func TestAnalyzer_CheckDocumentCooperativeYieldsAcrossBudgetSlices(t *testing.T) {
	probe := newFakeProbe()
	clock := &stepClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), delta: 300 * time.Millisecond}
	a := newTestAnalyzer(t, probe, clock)
	probe.put("skin.xml", `<Skin>
<Unknown1/>
<Unknown2/>
<Unknown3/>
</Skin>`)
	a.IndexSkinPack("skin.xml")

	run := a.BeginCheckRun()
	slices := 0
	var diags []Diagnostic
	for {
		var done, stale bool
		diags, done, stale = a.CheckDocumentCooperative("skin.xml", run)
		slices++
		if stale {
			t.Fatalf("a freshly begun run must not be stale")
		}
		if done {
			break
		}
		if slices > 10 {
			t.Fatalf("walk did not converge after 10 budget slices")
		}
	}
	if len(diags) != 3 {
		t.Fatalf("expected 3 unknown-element diagnostics, got %v", diags)
	}
	if slices < 2 {
		t.Fatalf("expected the walk to span multiple budget slices with a fast-advancing clock, took %d", slices)
	}
}

func TestAnalyzer_CheckDocumentCooperativeAbandonsStaleRun(t *testing.T) {
	probe := newFakeProbe()
	a := newTestAnalyzer(t, probe, nil)
	probe.put("skin.xml", `<Skin><Unknown1/></Skin>`)
	a.IndexSkinPack("skin.xml")

	run := a.BeginCheckRun()
	a.BeginCheckRun() // a newer edit supersedes run's epoch

	diags, done, stale := a.CheckDocumentCooperative("skin.xml", run)
	if !stale || !done || diags != nil {
		t.Fatalf("expected a stale, done, nil-diagnostics result for a superseded run, got diags=%v done=%v stale=%v", diags, done, stale)
	}
}

func TestAnalyzer_FindCompletionsDelegatesToIntelliSenseProvider(t *testing.T) {
	probe := newFakeProbe()
	a := newTestAnalyzer(t, probe, nil)
	probe.put("skin.xml", `<Skin><Styles/></Skin>`)
	a.IndexSkinPack("skin.xml")

	src := `<Skin><Styles/></Skin>`
	items := a.FindCompletions("skin.xml", posAt(src, "<Styles", 1))
	var labels []string
	for _, it := range items {
		labels = append(labels, it.Label)
	}
	found := false
	for _, l := range labels {
		if l == "Styles" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected Styles to be offered as a valid Skin child, got %v", labels)
	}
}
