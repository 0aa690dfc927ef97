// checker.go — the Skin Document Checker: walks a parsed skin document
// and emits the full diagnostic set (structural, scoping, attribute-name,
// attribute-value, reference, URI, and heuristic warnings).
//
// Grounded on an exhaustive per-element/per-value-type rule list and on
// _examples/daios-ai-msg/errors.go's "one recover() per unit of work, log
// and continue" propagation policy: an exception during a per-element
// check is caught, logged, counted as one error, and the walk continues.
package skinlang

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
)

// Checker implements the Skin Document Checker.
type Checker struct {
	cm *ClassModel
	dp *SkinDefinitionParser
	vr *VariableResolver
}

func NewChecker(cm *ClassModel, dp *SkinDefinitionParser, vr *VariableResolver) *Checker {
	return &Checker{cm: cm, dp: dp, vr: vr}
}

// checkStage marks which part of one document's CheckDocument run a
// checkState has reached.
type checkStage int

const (
	stageWalk checkStage = iota
	stageTrailer
	stageDone
)

// checkState is the resumable state of one document's CheckDocument run: a
// DFS stack standing in for the call stack a plain recursive walk would
// use, plus the stage that comes after it, so a chunk boundary can pause
// and resume mid-document without losing progress or reordering
// diagnostics.
type checkState struct {
	uri    string
	doc    *Document
	lines  *LineIndex
	info   *SkinFileInfo
	isRoot bool

	stack []NodeID
	stage checkStage
	diags []Diagnostic

	// colorPicker is scoped to this single CheckDocument/CheckDocumentCooperative
	// run rather than living on the Checker, so concurrent runs (e.g. two
	// documents checked under Analyzer's RLock at once) never share a map.
	colorPicker map[string]map[string]string
}

// newCheckState resolves uri's parsed document and pre-loads the walk
// stack with its root's children (root itself is never passed to
// checkElement, matching CheckDocument's previous recursive shape).
func (c *Checker) newCheckState(uri string) *checkState {
	st := &checkState{uri: uri, stage: stageDone, colorPicker: map[string]map[string]string{}}
	if !c.cm.IsClassModelLoaded() {
		st.diags = []Diagnostic{{Severity: SevError, Message: "class model could not be found"}}
		return st
	}
	doc := c.dp.DocumentFor(uri)
	info := c.dp.FindSkinFileInfo(uri)
	if doc == nil || info == nil {
		return st
	}
	root := doc.Root()
	if root == nil {
		return st
	}
	st.doc = doc
	st.lines = NewLineIndex(doc.Source)
	st.info = info
	st.isRoot = strings.HasSuffix(uri, "skin.xml")
	if !st.isRoot && !c.dp.isInAnyIncludeGraph(uri) {
		st.diags = append(st.diags, Diagnostic{Severity: SevWarning, Message: "file is not reachable from its skin pack's root", Source: "skinlint"})
	}
	st.stack = pushChildren(nil, root)
	st.stage = stageWalk
	return st
}

// pushChildren appends el's children onto stack in reverse order, so the
// first child is the next one popped — the same order a recursive preorder
// walk visits them in.
func pushChildren(stack []NodeID, el *Element) []NodeID {
	for i := len(el.Children) - 1; i >= 0; i-- {
		stack = append(stack, el.Children[i])
	}
	return stack
}

// stepCheck advances st by at most one Budget slice. It returns true once
// the walk and every trailer (unclosed/dangling/duplicate/external) have
// run; a nil budget never yields, so it always returns true after doing
// all remaining work in one call.
func (c *Checker) stepCheck(st *checkState, budget *Budget) bool {
	if st.stage == stageWalk {
		for len(st.stack) > 0 {
			if budget.Exhausted() {
				return false
			}
			id := st.stack[len(st.stack)-1]
			st.stack = st.stack[:len(st.stack)-1]
			el := st.doc.Node(id)
			if el == nil {
				continue
			}
			parent := st.doc.Node(el.Parent)
			if parent == nil {
				continue
			}
			func() {
				defer func() {
					if r := recover(); r != nil {
						fmt.Fprintf(os.Stderr, "skinlint: internal error checking <%s> in %s: %v\n", el.Name, st.uri, r)
						st.diags = append(st.diags, Diagnostic{Severity: SevError, Message: fmt.Sprintf("internal error checking <%s>: %v", el.Name, r), Source: "skinlint"})
					}
				}()
				c.checkElement(st.doc, st.lines, st.uri, st.info, parent, el, &st.diags, st.colorPicker)
			}()
			st.stack = pushChildren(st.stack, el)
		}
		st.stage = stageTrailer
	}
	if st.stage == stageTrailer {
		c.appendTrailerDiagnostics(st)
		st.stage = stageDone
	}
	return true
}

func (c *Checker) appendTrailerDiagnostics(st *checkState) {
	doc, lines, info := st.doc, st.lines, st.info
	for _, ut := range doc.UnclosedTags {
		sev := SevError
		msg := fmt.Sprintf("No closing tag found for <%s>.", ut.Name)
		if strings.EqualFold(ut.Name, "?xstring") {
			sev = SevWarning
		}
		st.diags = append(st.diags, Diagnostic{Severity: sev, Range: lines.SpanToRange(ut.Span), Message: msg, Source: "skinlint"})
	}
	for _, dt := range doc.DanglingTags {
		st.diags = append(st.diags, Diagnostic{Severity: SevError, Range: lines.SpanToRange(dt.Span), Message: fmt.Sprintf("Dangling tag </%s> found.", dt.Name), Source: "skinlint"})
	}
	for _, span := range doc.MalformedProcInsts {
		st.diags = append(st.diags, Diagnostic{Severity: SevError, Range: lines.SpanToRange(span), Message: "Malformed processing instruction.", Source: "skinlint"})
	}
	for _, d := range info.DuplicateDefinitions {
		st.diags = append(st.diags, Diagnostic{
			Severity: SevError,
			Range:    d.Range,
			Message:  fmt.Sprintf("%s \"%s\" is already defined.", capitalize(d.Kind.String()), d.Name),
			Source:   "skinlint",
			Related:  []RelatedInfo{{Location: d.Other, Message: "other definition here"}},
		})
	}
	if st.isRoot {
		for _, req := range c.dp.ComputeExternalRequests(c.cm) {
			st.diags = append(st.diags, Diagnostic{
				Severity: SevError,
				Range:    Range{Start: req.Location.Start, End: req.Location.End},
				Message:  fmt.Sprintf("No definition found for %s \"%s\".", req.Kind.String(), req.Name),
				Source:   "skinlint",
				Related:  []RelatedInfo{{Location: req.Location, Message: "requested here"}},
			})
		}
	}
}

// CheckDocument runs every remaining chunk of the walk synchronously.
// Batch callers (skinlint, skin-repl, tests) that
// never need to interleave other work between slices use this directly; an
// editor server that does should drive the same state via
// Analyzer.CheckDocumentCooperative instead.
func (c *Checker) CheckDocument(uri string) []Diagnostic {
	st := c.newCheckState(uri)
	for !c.stepCheck(st, nil) {
	}
	return st.diags
}

func (p *SkinDefinitionParser) isInAnyIncludeGraph(uri string) bool {
	found := false
	for _, children := range p.includeGraph {
		for _, c := range children {
			if c == uri {
				found = true
			}
		}
	}
	return found
}

func (c *Checker) checkElement(doc *Document, lines *LineIndex, uri string, info *SkinFileInfo, parent, el *Element, diags *[]Diagnostic, colorPicker map[string]map[string]string) {
	if el.Kind == KindProcInst {
		return
	}
	rng := lines.SpanToRange(el.OpenSpan)

	if strings.EqualFold(el.Name, "default") && !strings.EqualFold(parent.Name, "switch") {
		*diags = append(*diags, Diagnostic{Severity: SevWarning, Range: rng, Message: "\"default\" outside a <switch> — did you mean to use switch?", Source: "skinlint"})
	}
	if strings.EqualFold(el.Name, "externals") && !strings.HasSuffix(uri, "skin.xml") {
		*diags = append(*diags, Diagnostic{Severity: SevError, Range: rng, Message: "<externals> is only allowed in skin-root files.", Source: "skinlint"})
	}

	known := c.cm.class(el.Name) != nil
	if !known {
		if ci := c.findCaseInsensitiveClass(el.Name); ci != "" {
			*diags = append(*diags, Diagnostic{Severity: SevWarning, Range: rng, Message: fmt.Sprintf("Incorrect casing: did you mean \"%s\"?", ci), Source: "skinlint"})
		} else {
			*diags = append(*diags, Diagnostic{Severity: SevError, Range: rng, Message: "Unknown element \"" + el.Name + "\".", Source: "skinlint"})
		}
	} else if !c.cm.IsSkinElementValidInScope(parent.Name, el.Name) {
		*diags = append(*diags, Diagnostic{Severity: SevError, Range: rng, Message: fmt.Sprintf("Element \"%s\" is not a valid child for \"%s\".", el.Name, parent.Name), Source: "skinlint"})
	}

	if strings.EqualFold(el.Name, "Delegate") {
		if el.AttrValue("form.name") == "" && el.AttrValue("name") != "" {
			*diags = append(*diags, Diagnostic{Severity: SevWarning, Range: rng, Message: "Did you mean form.name?", Source: "skinlint"})
		}
	}
	_, hasCmdName := el.Attr("command.name")
	_, hasCmdCat := el.Attr("command.category")
	if hasCmdName != hasCmdCat {
		*diags = append(*diags, Diagnostic{Severity: SevWarning, Range: rng, Message: "command.name and command.category should be set together.", Source: "skinlint"})
	}

	valid := c.cm.FindValidAttributes(el.Name)
	isDefine := strings.EqualFold(el.Name, "define")
	seen := map[string]bool{}
	for _, a := range el.Attrs {
		nameRng := lines.SpanToRange(a.NameSpan)
		if seen[a.Name] {
			*diags = append(*diags, Diagnostic{Severity: SevError, Range: nameRng, Message: fmt.Sprintf("Attribute \"%s\" is defined more than once.", a.Name), Source: "skinlint"})
			continue
		}
		seen[a.Name] = true
		if isDefine || strings.HasPrefix(strings.ToLower(a.Name), "data.") {
			continue
		}
		mask, matched, corrected := lookupAttribute(valid, a.Name)
		switch {
		case !matched:
			*diags = append(*diags, Diagnostic{Severity: SevError, Range: nameRng, Message: "Unknown attribute \"" + a.Name + "\".", Source: "skinlint"})
			continue
		case corrected != a.Name:
			*diags = append(*diags, Diagnostic{Severity: SevWarning, Range: nameRng, Message: fmt.Sprintf("Incorrect casing: did you mean \"%s\"?", corrected), Source: "skinlint"})
		}
		c.checkAttributeValue(doc, lines, uri, info, el, a, mask, diags, colorPicker)
	}

	if strings.EqualFold(el.Name, "Slider") {
		style := el.AttrValue("style")
		if style == "" {
			_, hasW := el.Attr("width")
			_, hasH := el.Attr("height")
			if hasW && hasH {
				*diags = append(*diags, Diagnostic{Severity: SevWarning, Range: rng, Message: "Slider with default style should not set both width and height.", Source: "skinlint"})
			}
		}
	}
	if strings.EqualFold(el.Name, "Delegate") {
		if el.AttrValue("style") != "" {
			*diags = append(*diags, Diagnostic{Severity: SevWarning, Range: lines.SpanToRange(mustAttrSpan(el, "style")), Message: "Style needs to be defined by the referenced Form.", Source: "skinlint"})
		}
	}
}

func mustAttrSpan(el *Element, name string) Span {
	if a, ok := el.Attr(name); ok {
		return a.ValueSpan
	}
	return Span{}
}

// findCaseInsensitiveClass returns a known class name matching name
// case-insensitively, or "".
func (c *Checker) findCaseInsensitiveClass(name string) string {
	for k := range c.cm.classes {
		if strings.EqualFold(k, name) && k != name {
			return k
		}
	}
	return ""
}

// lookupAttribute tries case-sensitive, then underscore-insensitive, then
// case-insensitive matching, in that order.
func lookupAttribute(valid map[string]AttributeTypeMask, name string) (mask AttributeTypeMask, matched bool, corrected string) {
	if m, ok := valid[name]; ok {
		return m, true, name
	}
	stripped := strings.ReplaceAll(name, "_", "")
	for k, m := range valid {
		if strings.ReplaceAll(k, "_", "") == stripped {
			return m, true, k
		}
	}
	for k, m := range valid {
		if strings.EqualFold(k, name) {
			return m, true, k
		}
	}
	return NoType, false, name
}

func (c *Checker) checkAttributeValue(doc *Document, lines *LineIndex, uri string, info *SkinFileInfo, el *Element, a Attribute, mask AttributeTypeMask, diags *[]Diagnostic, colorPicker map[string]map[string]string) {
	valRng := lines.SpanToRange(a.ValueSpan)
	if a.Value == "" {
		if a.Name == "name" || !mask.Has(TString) {
			*diags = append(*diags, Diagnostic{Severity: SevWarning, Range: valRng, Message: fmt.Sprintf("%s has no value. Consider removing it.", a.Name), Source: "skinlint"})
		}
		return
	}
	if strings.Contains(a.Value, "@eval:") || strings.Contains(a.Value, "@select:") || strings.Contains(a.Value, "@property:") {
		if !strings.EqualFold(el.Name, "define") {
			*diags = append(*diags, Diagnostic{Severity: SevError, Range: valRng, Message: "@eval:/@select:/@property: expressions are only allowed inside <define>.", Source: "skinlint"})
			return
		}
	}

	if mask.HasAny(TColor) && strings.HasPrefix(a.Value, "$") && c.dp.IsResourceColorDefined(uri, a.Value) {
		// A "$C"-form resource color is a definition lookup, not a
		// local-scope variable — it never goes through the resolver.
		return
	}

	if strings.HasPrefix(a.Value, "$") {
		values := c.vr.ResolveVariable(ElemRef{URI: uri, ID: el.ID}, a.Value)
		for _, v := range values {
			if v == a.Value {
				continue // unresolved: silently accepted, may come from an outer scope
			}
			c.checkConcreteValue(doc, lines, uri, info, el, a, v, valRng, mask, diags, colorPicker)
		}
		return
	}

	if isVariableSlot(el.Name, a.Name) {
		if !strings.HasPrefix(a.Value, "$") {
			*diags = append(*diags, Diagnostic{Severity: SevWarning, Range: valRng, Message: "Missing '$' prefix for variable.", Source: "skinlint"})
			if c.vr.GetVariablesInScope(ElemRef{URI: uri, ID: el.ID}, a.Value) != nil {
				*diags = append(*diags, Diagnostic{Severity: SevWarning, Range: valRng, Message: "This seems to be a variable.", Source: "skinlint"})
			}
		}
		return
	}

	c.checkConcreteValue(doc, lines, uri, info, el, a, a.Value, valRng, mask, diags, colorPicker)
}

func isVariableSlot(elem, attr string) bool {
	return strings.EqualFold(attr, "variable") &&
		(strings.EqualFold(elem, "if") || strings.EqualFold(elem, "switch") || strings.EqualFold(elem, "foreach") || strings.EqualFold(elem, "styleselector"))
}

// checkConcreteValue runs one check per bit of mask, accepting on first
// success and reporting only if every bit's check fails.
func (c *Checker) checkConcreteValue(doc *Document, lines *LineIndex, uri string, info *SkinFileInfo, el *Element, a Attribute, value string, rng Range, mask AttributeTypeMask, diags *[]Diagnostic, colorPicker map[string]map[string]string) {
	if mask == NoType {
		return
	}
	var firstErr *Diagnostic
	for _, bit := range mask.Bits() {
		if d := c.checkBit(doc, lines, uri, info, el, a, value, rng, bit, colorPicker); d != nil {
			if firstErr == nil {
				firstErr = d
			}
			continue
		}
		return
	}
	if firstErr != nil {
		*diags = append(*diags, *firstErr)
	}
}

var intRE = regexp.MustCompile(`^-?\d+$`)
var floatRE = regexp.MustCompile(`^[+-]?\d+(\.\d+)?$`)
var hexColorRE = regexp.MustCompile(`^#([0-9A-Fa-f]{3}|[0-9A-Fa-f]{4}|[0-9A-Fa-f]{6}|[0-9A-Fa-f]{8})$`)
var funcColorRE = regexp.MustCompile(`^(hsla?|hsva?|rgba?)\(([^()]*)\)$`)

func (c *Checker) checkBit(doc *Document, lines *LineIndex, uri string, info *SkinFileInfo, el *Element, a Attribute, value string, rng Range, bit AttributeTypeMask, colorPicker map[string]map[string]string) *Diagnostic {
	switch bit {
	case TBool:
		if strings.EqualFold(value, "true") || strings.EqualFold(value, "false") {
			return nil
		}
		return &Diagnostic{Severity: SevError, Range: rng, Message: "Expected a boolean (true/false).", Source: "skinlint"}
	case TInt:
		if intRE.MatchString(value) || strings.Contains(value, "@property:") {
			return nil
		}
		if intRE.MatchString(strings.TrimSpace(value)) {
			return &Diagnostic{Severity: SevWarning, Range: rng, Message: "Value contains spaces.", Source: "skinlint"}
		}
		return &Diagnostic{Severity: SevError, Range: rng, Message: "Expected an integer.", Source: "skinlint"}
	case TFloat, TFontSize:
		v := value
		if bit == TFontSize {
			v = strings.TrimPrefix(v, "+")
		}
		if floatRE.MatchString(v) {
			return nil
		}
		return &Diagnostic{Severity: SevError, Range: rng, Message: "Expected a number.", Source: "skinlint"}
	case TDuration:
		v := strings.TrimSuffix(value, "ms")
		if floatRE.MatchString(v) {
			return nil
		}
		return &Diagnostic{Severity: SevError, Range: rng, Message: "Expected a duration.", Source: "skinlint"}
	case TColor:
		return c.checkColor(uri, value, rng, colorPicker)
	case TSize:
		return checkNumList(value, 1, 4, rng, "size")
	case TRect:
		return checkNumList(value, 4, 4, rng, "rect")
	case TPoint:
		return checkNumList(value, 2, 2, rng, "point")
	case TPoint3D:
		return checkNumList(value, 3, 3, rng, "point3d")
	case TStyle:
		if value == "native" || c.dp.IsDefined(uri, DefStyle, Qualify(info.Namespace, value, DefStyle)) || c.dp.IsDefined(uri, DefStyle, value) {
			return nil
		}
		return &Diagnostic{Severity: SevError, Range: rng, Message: fmt.Sprintf("No definition found for style \"%s\".", value), Source: "skinlint"}
	case TStyleArray:
		for _, tok := range strings.Fields(value) {
			if tok == "native" || c.dp.IsDefined(uri, DefStyle, Qualify(info.Namespace, tok, DefStyle)) || c.dp.IsDefined(uri, DefStyle, tok) {
				continue
			}
			return &Diagnostic{Severity: SevError, Range: rng, Message: fmt.Sprintf("No definition found for style \"%s\".", tok), Source: "skinlint"}
		}
		return nil
	case TImage:
		if c.dp.IsDefined(uri, DefImage, Qualify(info.Namespace, value, DefImage)) || c.dp.IsDefined(uri, DefImage, value) {
			return nil
		}
		return &Diagnostic{Severity: SevError, Range: rng, Message: fmt.Sprintf("No definition found for image \"%s\".", value), Source: "skinlint"}
	case TFont:
		if c.dp.IsDefined(uri, DefFont, value) {
			return nil
		}
		return &Diagnostic{Severity: SevError, Range: rng, Message: fmt.Sprintf("No definition found for font \"%s\".", value), Source: "skinlint"}
	case TShape:
		if c.dp.IsDefined(uri, DefShape, Qualify(info.Namespace, value, DefShape)) || c.dp.IsDefined(uri, DefShape, value) {
			return nil
		}
		return &Diagnostic{Severity: SevError, Range: rng, Message: fmt.Sprintf("No definition found for shape \"%s\".", value), Source: "skinlint"}
	case TEnum:
		return c.checkEnum(el, a, value, rng)
	case TForm:
		return c.checkForm(doc, lines, uri, info, el, a, value, rng)
	case TUri:
		return c.checkURI(uri, value, rng)
	case TStrNone:
		if value == "none" {
			return nil
		}
		return &Diagnostic{Severity: SevError, Range: rng, Message: "Expected \"none\".", Source: "skinlint"}
	case TStrForever:
		if value == "forever" {
			return nil
		}
		return &Diagnostic{Severity: SevError, Range: rng, Message: "Expected \"forever\".", Source: "skinlint"}
	case TString:
		return nil
	default:
		return nil
	}
}

func checkNumList(value string, min, max int, rng Range, kind string) *Diagnostic {
	parts := strings.Split(value, ",")
	if len(parts) < min || len(parts) > max {
		return &Diagnostic{Severity: SevError, Range: rng, Message: fmt.Sprintf("Expected a %s (%d to %d comma-separated numbers).", kind, min, max), Source: "skinlint"}
	}
	for _, p := range parts {
		if !floatRE.MatchString(strings.TrimSpace(p)) {
			return &Diagnostic{Severity: SevError, Range: rng, Message: fmt.Sprintf("Expected a %s.", kind), Source: "skinlint"}
		}
	}
	return nil
}

func (c *Checker) checkColor(uri, value string, rng Range, colorPicker map[string]map[string]string) *Diagnostic {
	if hexColorRE.MatchString(value) || funcColorRE.MatchString(value) {
		rememberColor(colorPicker, uri, value, value)
		return nil
	}
	d, err := loadBuiltinDefaults()
	if err == nil {
		if hex, ok := d.DefaultColors[strings.ToLower(value)]; ok {
			rememberColor(colorPicker, uri, value, hex)
			return nil
		}
	}
	if c.dp.IsDefined(uri, DefColor, value) {
		return nil
	}
	return &Diagnostic{Severity: SevError, Range: rng, Message: fmt.Sprintf("No definition found for color \"%s\".", value), Source: "skinlint"}
}

// rememberColor records one color literal's normalized form for the
// duration of a single CheckDocument run. There is no document-lifetime
// color index, so colorPicker is caller-owned per run rather than kept
// on the Checker, which would otherwise be shared across concurrent
// runs.
func rememberColor(colorPicker map[string]map[string]string, uri, raw, normalized string) {
	m := colorPicker[uri]
	if m == nil {
		m = map[string]string{}
		colorPicker[uri] = m
	}
	m[raw] = normalized
}

func (c *Checker) checkEnum(el *Element, a Attribute, value string, rng Range) *Diagnostic {
	siblings := map[string]string{}
	for _, s := range el.Attrs {
		siblings[s.Name] = s.Value
	}
	entries := c.cm.FindValidEnumEntries(el.Name, a.Name, siblings)
	for _, tok := range strings.Fields(value) {
		if !enumMatches(entries, tok) {
			return &Diagnostic{Severity: SevError, Range: rng, Message: fmt.Sprintf("\"%s\" is not a valid value for %s.", tok, a.Name), Source: "skinlint"}
		}
	}
	return nil
}

func enumMatches(entries []string, tok string) bool {
	for _, e := range entries {
		if e == tok || strings.ReplaceAll(e, "_", "") == strings.ReplaceAll(tok, "_", "") {
			return true
		}
	}
	return false
}

func (c *Checker) checkForm(doc *Document, lines *LineIndex, uri string, info *SkinFileInfo, el *Element, a Attribute, value string, rng Range) *Diagnostic {
	if a.Name == "form.name" {
		qualified := Qualify(info.Namespace, value, DefForm)
		if c.dp.IsDefined(uri, DefForm, qualified) {
			return nil
		}
		if c.dp.IsDefined(uri, DefForm, value) {
			return &Diagnostic{Severity: SevWarning, Range: rng, Message: fmt.Sprintf("Did you mean %s?", qualified), Source: "skinlint"}
		}
		return &Diagnostic{Severity: SevError, Range: rng, Message: fmt.Sprintf("No definition found for form \"%s\".", value), Source: "skinlint"}
	}
	if !c.dp.IsDefined(uri, DefForm, value) && !c.dp.IsDefined(uri, DefForm, Qualify(info.Namespace, value, DefForm)) {
		return &Diagnostic{Severity: SevError, Range: rng, Message: fmt.Sprintf("No definition found for form \"%s\".", value), Source: "skinlint"}
	}
	deps := info.FormDependencies[value]
	scopeDefines := map[string]bool{}
	for _, d := range info.FormDefines[value] {
		scopeDefines[d.Name] = true
	}
	for _, dep := range deps {
		if !scopeDefines[dep.Name] {
			return &Diagnostic{
				Severity: SevError, Range: rng,
				Message: fmt.Sprintf("No definition found for variable %s.", dep.Name),
				Source:  "skinlint",
				Related: []RelatedInfo{{Location: locOf(dep.Scope.URI, lines, mustSpan(doc, dep.Scope.ID)), Message: "used here"}},
			}
		}
	}
	return nil
}

func mustSpan(doc *Document, id NodeID) Span {
	if n := doc.Node(id); n != nil {
		return n.Span
	}
	return Span{}
}

func (c *Checker) checkURI(uri, value string, rng Range) *Diagnostic {
	for _, prefix := range []string{"https://", "http://", "local://$", "object://"} {
		if strings.HasPrefix(value, prefix) {
			return nil
		}
	}
	resolved := c.dp.ResolveURI(value, uri)
	if c.dp.probe.Exists(resolved) {
		return nil
	}
	return &Diagnostic{Severity: SevError, Range: rng, Message: fmt.Sprintf("File not found: %s", value), Source: "skinlint"}
}

// SortDiagnostics enforces a deterministic order for callers that
// accumulate diagnostics out of document order (e.g. across a scheduler
// yield boundary).
func SortDiagnostics(diags []Diagnostic) {
	sort.SliceStable(diags, func(i, j int) bool {
		return diags[i].Range.Start.Less(diags[j].Range.Start)
	})
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
