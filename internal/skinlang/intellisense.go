// intellisense.go — the IntelliSense Provider: hover, attribute-type-
// directed completion, go-to-definition, find-references, and
// prepare-rename.
//
// Grounded on _examples/daios-ai-msg/introspection.go's "encode a typed
// value into a documentation-shaped string" pattern (here: ClassModel doc
// extractors feeding hover text) and _examples/daios-ai-msg/printer.go's
// dispatch-by-kind pretty printer shape (here: dispatch-by-
// AttributeTypeMask completion).
package skinlang

import (
	"path"
	"sort"
	"strings"
)

// CompletionItem is one suggestion offered to the editor.
type CompletionItem struct {
	Label      string
	Kind       string // "class", "attribute", "enum", "color", "style", "image", "variable", "snippet", ...
	Preselect  bool
	InsertText string
	Detail     string
}

// IntelliSenseProvider answers the editor-facing hover/completion/
// navigation queries.
type IntelliSenseProvider struct {
	cm *ClassModel
	dp *SkinDefinitionParser
	vr *VariableResolver
}

func NewIntelliSenseProvider(cm *ClassModel, dp *SkinDefinitionParser, vr *VariableResolver) *IntelliSenseProvider {
	return &IntelliSenseProvider{cm: cm, dp: dp, vr: vr}
}

// elementAtPosition finds the innermost tag whose opening-tag span
// contains offset — the DOM Helper equivalent of "element under cursor".
func elementAtPosition(doc *Document, lines *LineIndex, pos Position) *Element {
	offset := lines.PositionToOffset(pos)
	var best *Element
	for i := range doc.Nodes {
		n := &doc.Nodes[i]
		if n.Kind != KindElement {
			continue
		}
		if offset >= n.OpenSpan.StartByte && offset <= n.OpenSpan.EndByte {
			if best == nil || n.OpenSpan.Len() < best.OpenSpan.Len() {
				best = n
			}
		}
	}
	return best
}

// --- Hover ---

func (ip *IntelliSenseProvider) FindHover(uri string, pos Position) (string, bool) {
	doc := ip.dp.DocumentFor(uri)
	if doc == nil {
		return "", false
	}
	lines := NewLineIndex(doc.Source)
	tok := FindTokenAtPosition(doc, lines, pos)
	switch tok.Kind {
	case TokTagName:
		brief, detailed, _ := ip.cm.ClassDoc(tok.Tag)
		if brief == "" && detailed == "" {
			return "", false
		}
		return strings.TrimSpace(brief + "\n\n" + detailed), true
	case TokAttributeName:
		if tok.AttrIndex < 0 || tok.AttrIndex >= len(tok.Attrs) {
			return "", false
		}
		d := ip.cm.AttributeDoc(tok.Tag, tok.Attrs[tok.AttrIndex])
		return d, d != ""
	case TokAttributeValue:
		el := elementAtPosition(doc, lines, pos)
		if el == nil || tok.AttrIndex >= len(el.Attrs) {
			return "", false
		}
		a := el.Attrs[tok.AttrIndex]
		if strings.HasPrefix(a.Value, "$") {
			vals := ip.vr.ResolveVariable(ElemRef{URI: uri, ID: el.ID}, a.Value)
			if len(vals) == 0 {
				return "", false
			}
			return "possible values: " + strings.Join(vals, ", "), true
		}
		mask, definingElem := ip.cm.FindAttributeType(el.Name, a.Name)
		if mask.Has(TEnum) {
			return ip.cm.EnumDoc(definingElem + "." + a.Name), true
		}
		return "", false
	}
	return "", false
}

// --- Go to definition ---

func (ip *IntelliSenseProvider) FindDefinitions(uri string, pos Position) []Location {
	doc := ip.dp.DocumentFor(uri)
	if doc == nil {
		return nil
	}
	lines := NewLineIndex(doc.Source)
	tok := FindTokenAtPosition(doc, lines, pos)
	el := elementAtPosition(doc, lines, pos)
	if el == nil {
		return nil
	}
	info := ip.dp.FindSkinFileInfo(uri)
	ns := ""
	if info != nil {
		ns = info.Namespace
	}

	if tok.Kind == TokAttributeName && strings.EqualFold(el.Name, "define") {
		return []Location{locOf(uri, lines, el.Span)}
	}
	if tok.Kind != TokAttributeValue || tok.AttrIndex >= len(el.Attrs) {
		return nil
	}
	a := el.Attrs[tok.AttrIndex]

	if strings.HasPrefix(a.Value, "$") {
		varName := strings.TrimPrefix(a.Value, "$")
		var out []Location
		for _, s := range ip.vr.DefinitionSites(ElemRef{URI: uri, ID: el.ID}, varName) {
			d := ip.dp.DocumentFor(s.URI)
			if d == nil {
				continue
			}
			el2 := d.Node(s.ID)
			if el2 == nil {
				continue
			}
			out = append(out, locOf(s.URI, NewLineIndex(d.Source), el2.Span))
		}
		return out
	}

	mask, _ := ip.cm.FindAttributeType(el.Name, a.Name)
	if mask.HasAny(TUri) {
		resolved := ip.dp.ResolveURI(a.Value, uri)
		if ip.dp.probe.Exists(resolved) {
			return []Location{{URI: resolved}}
		}
	}
	kind, ok := definitionKindForMask(mask)
	if !ok {
		return nil
	}
	value := a.Value
	if a.Name == "form.name" && mask.HasAny(TStyleArray) {
		// StyleArray-typed values resolve per whitespace-separated token
		// around the cursor.
	}
	if mask.HasAny(TStyleArray) {
		value = tokenAtCursor(a.Value, tok.ValueBeforeCursor)
	}
	if locs := ip.dp.LookupDefinition(uri, kind, Qualify(ns, value, kind)); len(locs) > 0 {
		return locs
	}
	return ip.dp.LookupDefinition(uri, kind, value)
}

func tokenAtCursor(value, before string) string {
	fields := strings.Fields(value)
	idx := len(strings.Fields(before))
	if idx > 0 && idx <= len(fields) {
		return fields[idx-1]
	}
	if len(fields) > 0 {
		return fields[0]
	}
	return value
}

// --- Find references ---

func (ip *IntelliSenseProvider) FindReferences(uri string, pos Position) []Location {
	defs := ip.FindDefinitions(uri, pos)
	if len(defs) == 0 {
		return nil
	}
	doc := ip.dp.DocumentFor(uri)
	lines := NewLineIndex(doc.Source)
	el := elementAtPosition(doc, lines, pos)
	tok := FindTokenAtPosition(doc, lines, pos)
	if el == nil || tok.Kind != TokAttributeValue || tok.AttrIndex >= len(el.Attrs) {
		return defs
	}
	target := el.Attrs[tok.AttrIndex].Value
	name := strings.TrimPrefix(target, "$")

	isDef := func(loc Location) bool {
		for _, d := range defs {
			if d == loc {
				return true
			}
		}
		return false
	}

	var out []Location
	ip.dp.ForEachFileInScope(uri, ScopeOptions{AllowForeignNamespaces: true}, func(info *SkinFileInfo) bool {
		d := ip.dp.DocumentFor(info.URI)
		if d == nil {
			return false
		}
		dl := NewLineIndex(d.Source)
		for i := range d.Nodes {
			n := &d.Nodes[i]
			if n.Kind != KindElement {
				continue
			}
			for _, at := range n.Attrs {
				if at.Value != target && at.Value != name {
					continue
				}
				loc := locOf(info.URI, dl, at.ValueSpan)
				if strings.HasPrefix(target, "$") {
					out = append(out, loc)
					continue
				}
				mask, _ := ip.cm.FindAttributeType(n.Name, at.Name)
				kind, ok := definitionKindForMask(mask)
				if !ok {
					continue
				}
				for _, r := range ip.dp.LookupDefinition(info.URI, kind, Qualify(info.Namespace, at.Value, kind)) {
					if isDef(r) {
						out = append(out, loc)
						break
					}
				}
			}
		}
		return false
	})
	return out
}

// --- Prepare rename ---

func (ip *IntelliSenseProvider) PrepareRename(uri string, pos Position) (Range, string, bool) {
	doc := ip.dp.DocumentFor(uri)
	if doc == nil {
		return Range{}, "", false
	}
	lines := NewLineIndex(doc.Source)
	el := elementAtPosition(doc, lines, pos)
	tok := FindTokenAtPosition(doc, lines, pos)
	if el == nil || tok.Kind != TokAttributeValue || tok.AttrIndex >= len(el.Attrs) {
		return Range{}, "", false
	}
	a := el.Attrs[tok.AttrIndex]
	return lines.SpanToRange(a.ValueSpan), a.Value, true
}

// --- Completion ---

var procInstVocabulary = []string{"platform", "xstring", "language", "defined", "config", "desktop_platform", "not"}

func (ip *IntelliSenseProvider) FindCompletions(uri string, pos Position) []CompletionItem {
	doc := ip.dp.DocumentFor(uri)
	if doc == nil {
		return nil
	}
	lines := NewLineIndex(doc.Source)
	tok := FindTokenAtPosition(doc, lines, pos)
	info := ip.dp.FindSkinFileInfo(uri)
	ns := ""
	if info != nil {
		ns = info.Namespace
	}
	el := elementAtPosition(doc, lines, pos)

	var items []CompletionItem
	if len(doc.UnclosedTags) > 0 {
		offset := lines.PositionToOffset(pos)
		last := doc.UnclosedTags[len(doc.UnclosedTags)-1]
		if offset >= last.Span.EndByte {
			items = append(items, CompletionItem{Label: "/" + last.Name + ">", Kind: "snippet", Preselect: true, InsertText: "/" + last.Name + ">"})
		}
	}

	switch tok.Kind {
	case TokTagName:
		if strings.HasPrefix(tok.Tag, "?") {
			for _, v := range procInstVocabulary {
				items = append(items, CompletionItem{Label: v, Kind: "keyword"})
			}
			return items
		}
		parentName := "Skin"
		if el != nil {
			if p := doc.Node(el.Parent); p != nil {
				parentName = p.Name
			}
		}
		for _, name := range ip.cm.FindSkinElementDefinitions("", true) {
			if ip.cm.IsSkinElementValidInScope(parentName, name) {
				items = append(items, CompletionItem{Label: name, Kind: "class"})
			}
		}
		return items
	case TokAttributeName:
		valid := ip.cm.FindValidAttributes(tok.Tag)
		present := map[string]bool{}
		for _, a := range tok.Attrs {
			present[a] = true
		}
		var names []string
		for n := range valid {
			names = append(names, n)
		}
		sort.Strings(names)
		for _, n := range names {
			if !present[n] {
				items = append(items, CompletionItem{Label: n, Kind: "attribute"})
			}
		}
		return items
	case TokAttributeValue:
		return ip.completeValue(uri, ns, doc, lines, el, tok)
	}
	return items
}

func (ip *IntelliSenseProvider) completeValue(uri, ns string, doc *Document, lines *LineIndex, el *Element, tok PositionToken) []CompletionItem {
	var items []CompletionItem
	if el == nil || tok.AttrIndex >= len(el.Attrs) {
		return items
	}
	a := el.Attrs[tok.AttrIndex]

	if strings.EqualFold(el.Name, "define") {
		for _, kw := range []string{"@property:", "@select:", "@eval:"} {
			items = append(items, CompletionItem{Label: kw, Kind: "keyword"})
		}
	}

	if strings.Contains(tok.ValueBeforeCursor, "$") || a.Value == "$" {
		prefix := tok.ValueBeforeCursor[strings.LastIndex(tok.ValueBeforeCursor, "$")+1:]
		for _, v := range ip.vr.GetVariablesInScope(ElemRef{URI: uri, ID: el.ID}, prefix) {
			items = append(items, CompletionItem{Label: v, Kind: "variable"})
		}
		return items
	}

	mask, _ := ip.cm.FindAttributeType(el.Name, a.Name)
	switch {
	case mask.HasAny(TBool):
		items = append(items, CompletionItem{Label: "true", Kind: "value"}, CompletionItem{Label: "false", Kind: "value"})
	case mask.HasAny(TEnum):
		siblings := map[string]string{}
		for _, s := range el.Attrs {
			siblings[s.Name] = s.Value
		}
		for _, e := range ip.cm.FindValidEnumEntries(el.Name, a.Name, siblings) {
			items = append(items, CompletionItem{Label: e, Kind: "enum"})
		}
	case mask.HasAny(TColor):
		d, err := loadBuiltinDefaults()
		if err == nil {
			var names []string
			for n := range d.DefaultColors {
				names = append(names, n)
			}
			sort.Strings(names)
			for _, n := range names {
				items = append(items, CompletionItem{Label: n, Kind: "color", Detail: d.DefaultColors[n]})
			}
		}
		for _, n := range ip.dp.FindDefinitions(uri, DefColor, "") {
			items = append(items, CompletionItem{Label: n, Kind: "color"})
		}
	case mask.HasAny(TStyle | TStyleArray):
		for _, n := range ip.dp.FindDefinitions(uri, DefStyle, "") {
			items = append(items, CompletionItem{Label: n, Kind: "style"})
		}
	case mask.HasAny(TImage):
		for _, n := range ip.dp.FindDefinitions(uri, DefImage, "") {
			items = append(items, CompletionItem{Label: n, Kind: "image"})
		}
	case mask.HasAny(TShape):
		for _, n := range ip.dp.FindDefinitions(uri, DefShape, "") {
			items = append(items, CompletionItem{Label: n, Kind: "shape"})
		}
	case mask.HasAny(TFont):
		for _, n := range ip.dp.FindDefinitions(uri, DefFont, "") {
			items = append(items, CompletionItem{Label: n, Kind: "font"})
		}
	case mask.HasAny(TForm):
		forceQualified := a.Name == "form.name"
		for _, n := range ip.dp.FindDefinitions(uri, DefForm, "") {
			if forceQualified && ns != "" && !strings.Contains(n, "/") {
				continue
			}
			items = append(items, CompletionItem{Label: n, Kind: "form"})
		}
	case mask.HasAny(TUri):
		dir := path.Dir(ip.dp.ResolveURI(".", uri))
		if strings.EqualFold(el.Name, "Import") && strings.EqualFold(a.Name, "url") {
			for _, loc := range ip.dp.config.Skins {
				entries, ok := ip.dp.probe.ReadDir(path.Join(ip.dp.repoRoot, loc))
				if !ok {
					continue
				}
				for _, e := range entries {
					items = append(items, CompletionItem{Label: "@" + e, Kind: "package"})
				}
			}
			return items
		}
		entries, ok := ip.dp.probe.ReadDir(dir)
		if ok {
			for _, e := range entries {
				items = append(items, CompletionItem{Label: e, Kind: "file"})
			}
		}
	}
	return items
}
