package skinlang

import (
	"strings"
	"testing"
)

// testCheckerClassModelXML gives every element used below a home in a
// schema-group tree shaped like the real one: Skin only accepts
// pack-level children (Styles/Resources/Include/...), Views only accept
// other Views.
const testCheckerClassModelXML = `<Root>
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
  <List x:id="members">
    <Model.Member Name="inherit" Type="StyleArray"/>
    <Model.Member Name="textsize" Type="Int"/>
    <Model.Member Name="color" Type=""/>
  </List>
</Model.Class>
<Model.Class Name="Resources" Class:Parent="Element">
  <Attributes x:id="attributes" Class:SchemaGroups="root" Class:ChildGroup="resources"/>
</Model.Class>
<Model.Class Name="Color" Class:Parent="Element">
  <Attributes x:id="attributes" Class:SchemaGroups="resources"/>
  <List x:id="members">
    <Model.Member Name="value" Type="Color"/>
  </List>
</Model.Class>
<Model.Class Name="Include" Class:Parent="Element">
  <Attributes x:id="attributes" Class:SchemaGroups="root"/>
</Model.Class>
<Model.Class Name="View" Class:Parent="Element">
  <Attributes x:id="attributes" Class:SchemaGroups="root views" Class:ChildGroup="views"/>
  <List x:id="members">
    <Model.Member Name="style" Type="StyleArray"/>
    <Model.Member Name="backgroundcolor" Type="Color"/>
  </List>
</Model.Class>
<Model.Class Name="Label" Class:Parent="View">
  <Attributes x:id="attributes" Class:SchemaGroups="views"/>
</Model.Class>
<Model.Class Name="Button" Class:Parent="View">
  <Attributes x:id="attributes" Class:SchemaGroups="views"/>
</Model.Class>
<Model.Class Name="Slider" Class:Parent="View">
  <Attributes x:id="attributes" Class:SchemaGroups="views"/>
  <List x:id="members">
    <Model.Member Name="width" Type="Int"/>
    <Model.Member Name="height" Type="Int"/>
  </List>
</Model.Class>
<Model.Class Name="Delegate" Class:Parent="Element">
  <Attributes x:id="attributes" Class:SchemaGroups="views"/>
  <List x:id="members">
    <Model.Member Name="name" Type="String"/>
    <Model.Member Name="form.name" Type="Form"/>
    <Model.Member Name="style" Type="StyleArray"/>
  </List>
</Model.Class>
<Model.Class Name="Form" Class:Parent="Element">
  <Attributes x:id="attributes" Class:SchemaGroups="root"/>
</Model.Class>
<Model.Class Name="define" Class:Parent="Element">
  <Attributes x:id="attributes" Class:SchemaGroups="root views"/>
</Model.Class>
</Root>`

func newCheckerFixture(t *testing.T, files map[string]string) (*Checker, *SkinDefinitionParser, *fakeProbe) {
	t.Helper()
	probe := newFakeProbe()
	probe.put("classmodels/Skin Elements.classModel", testCheckerClassModelXML)
	probe.put("classmodels/Visual Styles.classModel", `<Root></Root>`)
	for name, content := range files {
		probe.put(name, content)
	}
	cm := NewClassModel(probe)
	if err := cm.LoadClassModel("classmodels/Skin Elements.classModel"); err != nil {
		t.Fatalf("LoadClassModel: %v", err)
	}
	if err := cm.LoadStyleModel("classmodels/Visual Styles.classModel"); err != nil {
		t.Fatalf("LoadStyleModel: %v", err)
	}
	dp := NewSkinDefinitionParser(probe, nil)
	dp.SetRepoConfig("", DefaultRepoConfig())
	vr := NewVariableResolver(dp)
	return NewChecker(cm, dp, vr), dp, probe
}

func findDiag(diags []Diagnostic, substr string) *Diagnostic {
	for i := range diags {
		if strings.Contains(diags[i].Message, substr) {
			return &diags[i]
		}
	}
	return nil
}

func TestChecker_MissingClassModelShortCircuits(t *testing.T) {
	probe := newFakeProbe()
	probe.put("skin.xml", `<Skin></Skin>`)
	cm := NewClassModel(probe)
	dp := NewSkinDefinitionParser(probe, nil)
	dp.IndexSkinPack("skin.xml")
	c := NewChecker(cm, dp, NewVariableResolver(dp))
	diags := c.CheckDocument("skin.xml")
	if len(diags) != 1 || diags[0].Message != "class model could not be found" {
		t.Fatalf("want single global error, got %v", diags)
	}
}

func TestChecker_EmptyAttributeWarning(t *testing.T) {
	c, dp, _ := newCheckerFixture(t, map[string]string{
		"skin.xml": `<Skin><Styles><Style name="My." color=""/></Styles></Skin>`,
	})
	dp.IndexSkinPack("skin.xml")
	diags := c.CheckDocument("skin.xml")
	d := findDiag(diags, "has no value")
	if d == nil {
		t.Fatalf("expected an empty-attribute warning, got %v", diags)
	}
	if d.Severity != SevWarning {
		t.Fatalf("want SevWarning, got %v", d.Severity)
	}
}

func TestChecker_ElementNotValidChildProducesError(t *testing.T) {
	c, dp, _ := newCheckerFixture(t, map[string]string{
		"skin.xml": `<Skin><Button style="native"/></Skin>`,
	})
	dp.IndexSkinPack("skin.xml")
	diags := c.CheckDocument("skin.xml")
	d := findDiag(diags, `not a valid child for "Skin"`)
	if d == nil {
		t.Fatalf("expected a not-a-valid-child error, got %v", diags)
	}
	if d.Severity != SevError {
		t.Fatalf("want SevError, got %v", d.Severity)
	}
}

func TestChecker_UnknownElementProducesError(t *testing.T) {
	c, dp, _ := newCheckerFixture(t, map[string]string{
		"skin.xml": `<Skin><Frobnicator/></Skin>`,
	})
	dp.IndexSkinPack("skin.xml")
	diags := c.CheckDocument("skin.xml")
	d := findDiag(diags, `Unknown element "Frobnicator"`)
	if d == nil {
		t.Fatalf("expected an unknown-element error, got %v", diags)
	}
}

func TestChecker_UnclosedTagIsReported(t *testing.T) {
	c, dp, _ := newCheckerFixture(t, map[string]string{
		"skin.xml": "<Skin>\n  <Variant>\n</Skin>",
	})
	dp.IndexSkinPack("skin.xml")
	diags := c.CheckDocument("skin.xml")
	if findDiag(diags, `Unknown element "Variant"`) == nil {
		t.Fatalf("expected Variant to be reported unknown, got %v", diags)
	}
	if findDiag(diags, "No closing tag found for <Variant>") == nil {
		t.Fatalf("expected an unclosed-tag diagnostic, got %v", diags)
	}
}

func TestChecker_MalformedProcessingInstructionIsReported(t *testing.T) {
	c, dp, _ := newCheckerFixture(t, map[string]string{
		"skin.xml": "<Skin><?platform mac></Skin>",
	})
	dp.IndexSkinPack("skin.xml")
	diags := c.CheckDocument("skin.xml")
	if findDiag(diags, "Malformed processing instruction") == nil {
		t.Fatalf("expected a malformed-processing-instruction diagnostic, got %v", diags)
	}
}

func TestChecker_WellFormedProcessingInstructionIsNotReported(t *testing.T) {
	c, dp, _ := newCheckerFixture(t, map[string]string{
		"skin.xml": "<Skin><?platform mac?></Skin>",
	})
	dp.IndexSkinPack("skin.xml")
	diags := c.CheckDocument("skin.xml")
	if findDiag(diags, "Malformed processing instruction") != nil {
		t.Fatalf("did not expect a malformed-processing-instruction diagnostic, got %v", diags)
	}
}

func TestChecker_UnknownStyleReferenceProducesError(t *testing.T) {
	c, dp, _ := newCheckerFixture(t, map[string]string{
		"skin.xml": `<Skin><Styles/><Button style="Missing"/></Skin>`,
	})
	dp.IndexSkinPack("skin.xml")
	diags := c.CheckDocument("skin.xml")
	d := findDiag(diags, `No definition found for style "Missing"`)
	if d == nil {
		t.Fatalf("expected a missing-style error, got %v", diags)
	}
}

func TestChecker_DuplicateDefinitionCarriesRelatedInfo(t *testing.T) {
	c, dp, _ := newCheckerFixture(t, map[string]string{
		"skin.xml": `<Skin><Styles><Style name="Base"/><Style name="Base"/></Styles></Skin>`,
	})
	dp.IndexSkinPack("skin.xml")
	diags := c.CheckDocument("skin.xml")
	d := findDiag(diags, `"Base" is already defined`)
	if d == nil {
		t.Fatalf("expected a duplicate-definition error, got %v", diags)
	}
	if len(d.Related) != 1 {
		t.Fatalf("expected one related location, got %v", d.Related)
	}
}

func TestChecker_OverrideSuppressesDuplicateAcrossFiles(t *testing.T) {
	c, dp, _ := newCheckerFixture(t, map[string]string{
		"skin.xml": `<Skin>
			<Include url="base.xml" name="Base"/>
			<Include url="patch.xml" name="Patch"/>
		</Skin>`,
		"base.xml":  `<Skin><Styles><Style name="X"/></Styles></Skin>`,
		"patch.xml": `<Skin><Styles><Style name="X" override="true"/></Styles></Skin>`,
	})
	dp.IndexSkinPack("skin.xml")

	locs := dp.LookupDefinition("skin.xml", DefStyle, "X")
	if len(locs) != 1 || locs[0].URI != "patch.xml" {
		t.Fatalf("expected exactly the overriding location, got %v", locs)
	}
	baseDiags := c.CheckDocument("base.xml")
	if findDiag(baseDiags, "already defined") != nil {
		t.Fatalf("override should suppress the duplicate-definition diagnostic, got %v", baseDiags)
	}
}

func TestChecker_UnknownAttributeError(t *testing.T) {
	c, dp, _ := newCheckerFixture(t, map[string]string{
		"skin.xml": `<Skin><Styles><Style name="Base" bogusattr="1"/></Styles></Skin>`,
	})
	dp.IndexSkinPack("skin.xml")
	diags := c.CheckDocument("skin.xml")
	if findDiag(diags, `Unknown attribute "bogusattr"`) == nil {
		t.Fatalf("expected an unknown-attribute error, got %v", diags)
	}
}

func TestChecker_AttributeCaseCorrectionWarning(t *testing.T) {
	c, dp, _ := newCheckerFixture(t, map[string]string{
		"skin.xml": `<Skin><Resources><Color Name="Red" value="#FF0000"/></Resources></Skin>`,
	})
	dp.IndexSkinPack("skin.xml")
	diags := c.CheckDocument("skin.xml")
	if findDiag(diags, `did you mean "name"`) == nil {
		t.Fatalf("expected a casing-correction warning, got %v", diags)
	}
}

func TestChecker_ColorAcceptsHexAndNamedButRejectsUnknown(t *testing.T) {
	c, dp, _ := newCheckerFixture(t, map[string]string{
		"skin.xml": `<Skin><View backgroundcolor="#FF00FF00"/><View backgroundcolor="white"/><View backgroundcolor="notacolor"/></Skin>`,
	})
	dp.IndexSkinPack("skin.xml")
	diags := c.CheckDocument("skin.xml")
	if findDiag(diags, `No definition found for color "notacolor"`) == nil {
		t.Fatalf("expected an undefined-color error, got %v", diags)
	}
	if findDiag(diags, `color "#FF00FF00"`) != nil || findDiag(diags, `color "white"`) != nil {
		t.Fatalf("hex and named colors should not error, got %v", diags)
	}
}

func TestChecker_ResourceColorReferenceIsValidated(t *testing.T) {
	c, dp, _ := newCheckerFixture(t, map[string]string{
		"skin.xml": `<Skin>
			<Resources><Color name="Brand" value="#112233"/></Resources>
			<View backgroundcolor="$Brand"/>
			<View backgroundcolor="$Missing"/>
		</Skin>`,
	})
	dp.IndexSkinPack("skin.xml")
	diags := c.CheckDocument("skin.xml")
	if findDiag(diags, `color "$Brand"`) != nil {
		t.Fatalf("a defined resource color must not be reported, got %v", diags)
	}
}

func TestChecker_DelegateNameSuggestsFormName(t *testing.T) {
	c, dp, _ := newCheckerFixture(t, map[string]string{
		"skin.xml": `<Skin><Delegate name="Content"/></Skin>`,
	})
	dp.IndexSkinPack("skin.xml")
	diags := c.CheckDocument("skin.xml")
	if findDiag(diags, "Did you mean form.name?") == nil {
		t.Fatalf("expected the form.name suggestion, got %v", diags)
	}
}

func TestChecker_CommandNameAndCategoryMustBeSetTogether(t *testing.T) {
	c, dp, _ := newCheckerFixture(t, map[string]string{
		"skin.xml": `<Skin><Button command.name="Play"/></Skin>`,
	})
	dp.IndexSkinPack("skin.xml")
	diags := c.CheckDocument("skin.xml")
	if findDiag(diags, "command.name and command.category should be set together") == nil {
		t.Fatalf("expected the command pairing warning, got %v", diags)
	}
}

func TestChecker_SliderDefaultStyleWarnsOnBothDimensions(t *testing.T) {
	c, dp, _ := newCheckerFixture(t, map[string]string{
		"skin.xml": `<Skin><Slider width="10" height="10"/></Skin>`,
	})
	dp.IndexSkinPack("skin.xml")
	diags := c.CheckDocument("skin.xml")
	if findDiag(diags, "should not set both width and height") == nil {
		t.Fatalf("expected the slider sizing warning, got %v", diags)
	}
}

func TestChecker_MalformedIntegerIsAnError(t *testing.T) {
	c, dp, _ := newCheckerFixture(t, map[string]string{
		"skin.xml": `<Skin><Styles><Style name="Base" textsize="huge"/></Styles></Skin>`,
	})
	dp.IndexSkinPack("skin.xml")
	diags := c.CheckDocument("skin.xml")
	if findDiag(diags, "Expected an integer") == nil {
		t.Fatalf("expected an integer-format error, got %v", diags)
	}
}

func TestChecker_MissingIncludedFileIsSilentlyIgnored(t *testing.T) {
	c, dp, _ := newCheckerFixture(t, map[string]string{
		"skin.xml": `<Skin><Include url="ghost.xml" name="Ghost"/></Skin>`,
	})
	dp.IndexSkinPack("skin.xml")
	diags := c.CheckDocument("skin.xml")
	for _, d := range diags {
		if strings.Contains(d.Message, "ghost.xml") {
			t.Fatalf("a missing included file must contribute nothing, got %v", d)
		}
	}
}
