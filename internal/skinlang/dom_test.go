package skinlang

import "testing"

func TestParseDocument_BasicTree(t *testing.T) {
	src := `<Skin><Layout style="foo"><View name="bar"/></Layout></Skin>`
	doc := ParseDocument("skin.xml", src)
	if doc.ParseErr != nil {
		t.Fatalf("unexpected parse error: %v", doc.ParseErr)
	}
	root := doc.Root()
	if root == nil || root.Name != "Skin" {
		t.Fatalf("expected Skin root, got %+v", root)
	}
	layout := doc.ChildByName(root.ID, "Layout")
	if layout == nil {
		t.Fatalf("expected a Layout child")
	}
	if layout.AttrValue("style") != "foo" {
		t.Fatalf("want style=foo, got %q", layout.AttrValue("style"))
	}
	view := doc.ChildByName(layout.ID, "View")
	if view == nil || view.AttrValue("name") != "bar" {
		t.Fatalf("expected View name=bar, got %+v", view)
	}
}

func TestParseDocument_UnclosedTag(t *testing.T) {
	src := `<Skin><Layout style="foo"></Skin>`
	doc := ParseDocument("skin.xml", src)
	if len(doc.UnclosedTags) != 1 || doc.UnclosedTags[0].Name != "Layout" {
		t.Fatalf("expected one unclosed Layout tag, got %+v", doc.UnclosedTags)
	}
}

func TestParseDocument_DanglingCloseTag(t *testing.T) {
	src := `<Skin></Layout></Skin>`
	doc := ParseDocument("skin.xml", src)
	if len(doc.DanglingTags) != 1 || doc.DanglingTags[0].Name != "Layout" {
		t.Fatalf("expected one dangling Layout close, got %+v", doc.DanglingTags)
	}
}

func TestParseDocument_ProcessingInstructionIsAChildNode(t *testing.T) {
	src := `<Skin><?platform mac?><Layout/><?platform?></Skin>`
	doc := ParseDocument("skin.xml", src)
	root := doc.Root()
	var pis int
	for _, c := range doc.ChildrenOf(root.ID) {
		if c.Kind == KindProcInst {
			pis++
		}
	}
	if pis != 2 {
		t.Fatalf("want 2 processing-instruction children, got %d", pis)
	}
}

func TestScanTags_RecoversAttributeByteSpans(t *testing.T) {
	src := `<View name="hello"/>`
	tags, _ := ScanTags(src)
	if len(tags) != 1 {
		t.Fatalf("want 1 tag, got %d", len(tags))
	}
	a, ok := func() (Attribute, bool) {
		for _, at := range tags[0].Attrs {
			if at.Name == "name" {
				return at, true
			}
		}
		return Attribute{}, false
	}()
	if !ok {
		t.Fatalf("expected a name attribute")
	}
	if src[a.ValueSpan.StartByte:a.ValueSpan.EndByte] != "hello" {
		t.Fatalf("value span mismatch: %q", src[a.ValueSpan.StartByte:a.ValueSpan.EndByte])
	}
}
