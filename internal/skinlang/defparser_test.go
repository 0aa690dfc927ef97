package skinlang

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestParser(t *testing.T, files map[string]string) *SkinDefinitionParser {
	t.Helper()
	probe := newFakeProbe()
	for name, content := range files {
		probe.put(name, content)
	}
	p := NewSkinDefinitionParser(probe, nil)
	p.SetRepoConfig("", DefaultRepoConfig())
	return p
}

func TestSkinDefinitionParser_IndexSkinPack_FollowsIncludeGraph(t *testing.T) {
	p := newTestParser(t, map[string]string{
		"skin.xml":    `<Skin><Include url="colors.xml" name="Base"/></Skin>`,
		"colors.xml":  `<Skin><Resources><Color name="Red" value="#f00"/></Resources></Skin>`,
	})
	p.IndexSkinPack("skin.xml")

	require.NotNil(t, p.FindSkinFileInfo("skin.xml"))
	require.NotNil(t, p.FindSkinFileInfo("colors.xml"))
	assert.True(t, p.IsResourceColorDefined("skin.xml", "$Red"))
}

func TestSkinDefinitionParser_MissingIncludeIsSilentlyIgnored(t *testing.T) {
	p := newTestParser(t, map[string]string{
		"skin.xml": `<Skin><Include url="missing.xml" name="X"/></Skin>`,
	})
	assert.NotPanics(t, func() { p.IndexSkinPack("skin.xml") })
	assert.Nil(t, p.FindSkinFileInfo("missing.xml"))
}

func TestSkinDefinitionParser_OverrideWinsAcrossFiles(t *testing.T) {
	p := newTestParser(t, map[string]string{
		"skin.xml": `<Skin>
			<Include url="base.xml" name="Base"/>
			<Include url="patch.xml" name="Patch"/>
		</Skin>`,
		"base.xml":  `<Skin><Styles><Style name="Button"/></Styles></Skin>`,
		"patch.xml": `<Skin><Styles><Style name="Button" override="true"/></Styles></Skin>`,
	})
	p.IndexSkinPack("skin.xml")

	locs := p.LookupDefinition("skin.xml", DefStyle, "Button")
	require.Len(t, locs, 1, "override should collapse to exactly one winner")
	assert.Equal(t, "patch.xml", locs[0].URI)
}

func TestSkinDefinitionParser_NamespaceQualification(t *testing.T) {
	assert.Equal(t, "NS/Button", Qualify("NS", "Button", DefStyle))
	assert.Equal(t, "NS2/Button", Qualify("NS", "NS2/Button", DefStyle))
	assert.Equal(t, "Button", Qualify("NS", "/Button", DefStyle))
	assert.Equal(t, "Button", Qualify("", "Button", DefStyle))
	assert.Equal(t, "red", Qualify("NS", "red", DefColor), "colors are never namespace-qualified")
}

func TestSkinDefinitionParser_ExternalPatternMatching(t *testing.T) {
	p := newTestParser(t, map[string]string{
		"skin.xml": `<Skin><External name="plugin.*"/></Skin>`,
	})
	p.IndexSkinPack("skin.xml")
	assert.True(t, p.IsDefined("skin.xml", DefStyle, "plugin.Button"))
	assert.False(t, p.IsDefinedStrict("skin.xml", DefStyle, "plugin.Button"))
	assert.False(t, p.IsDefined("skin.xml", DefStyle, "notmatched"))
}

func TestGlobToRegex_DollarPrefixAnchorsStartOnly(t *testing.T) {
	re := globToRegex("$foo*")
	assert.True(t, re.MatchString("$foo bar and more"))
	assert.False(t, re.MatchString("prefix $foo"))
}

func TestGlobToRegex_PlainPatternAnchorsBothEnds(t *testing.T) {
	re := globToRegex("plugin.*")
	assert.True(t, re.MatchString("plugin.Button"))
	assert.False(t, re.MatchString("myplugin.Button"))
}
