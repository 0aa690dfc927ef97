// fileinfo.go — the Skin File Info component: a one-shot per-file index
// of every named definition, view instantiation, form dependency, and
// duplicate-definition record.
//
// Platform gating (?platform, ?not:platform, ?desktop_platform) is
// implemented as a preorder predicate evaluated by scanning an element's
// preceding siblings and ancestors, rather than as inherited element
// attributes.
package skinlang

import (
	"runtime"
	"strings"
)

// ValueLoc is one concrete value a <define> attribute can take, with the
// location of the defining element.
type ValueLoc struct {
	Value    string
	Location Location
}

// DefineInfo is one form-scoped <define> attribute.
type DefineInfo struct {
	Name   string
	Values []ValueLoc
}

// ViewInstantiation records that a named view/target/delegate/popup was
// instantiated inside a given form.
type ViewInstantiation struct {
	ParentForm string
	Elem       ElemRef
}

// FormDependency records a variable a form's subtree references but
// never defines locally.
type FormDependency struct {
	Name  string
	Scope ElemRef
}

// DuplicateDefinition is one duplicate-name record.
type DuplicateDefinition struct {
	Name  string
	Kind  DefinitionKind
	Range Range
	Other Location
}

// SkinFileInfo is the per-file index built for each parsed skin document.
type SkinFileInfo struct {
	URI       string
	Namespace string

	Definitions map[DefinitionKind]map[string]Location
	ColorSchemes map[string]map[string]Location // scheme -> name -> location; "" = resources

	FormDefines        map[string][]DefineInfo
	ViewInstantiations map[string][]ViewInstantiation
	FormDependencies   map[string][]FormDependency
	SizedDelegates     map[string]Location // form.name -> range, never flagged duplicate

	DuplicateDefinitions []DuplicateDefinition

	// overrides tracks, per (kind, name), whether the stored winner in
	// Definitions came from an override="true" element — consulted by the
	// Skin Definition Parser when collapsing cross-file duplicates.
	overrides map[DefinitionKind]map[string]bool

	IncludedFiles map[string]bool // populated lazily by the definition parser

	HasPlatformPI bool
	HasOptionalPI bool
}

// overrideFlag reports whether name's stored definition of kind came from
// an override="true" element.
func (info *SkinFileInfo) overrideFlag(kind DefinitionKind, name string) bool {
	m := info.overrides[kind]
	return m != nil && m[name]
}

func newSkinFileInfo(uri, namespace string) *SkinFileInfo {
	return &SkinFileInfo{
		URI:                uri,
		Namespace:          namespace,
		Definitions:        map[DefinitionKind]map[string]Location{},
		ColorSchemes:       map[string]map[string]Location{},
		FormDefines:        map[string][]DefineInfo{},
		ViewInstantiations: map[string][]ViewInstantiation{},
		FormDependencies:   map[string][]FormDependency{},
		SizedDelegates:     map[string]Location{},
		overrides:          map[DefinitionKind]map[string]bool{},
		IncludedFiles:      map[string]bool{},
	}
}

// currentPlatform maps the process OS to the skin dialect's gating
// string: the OS name at process start maps to mac|win; any other OS
// applies no platform gating.
func currentPlatform() string {
	switch runtime.GOOS {
	case "darwin":
		return "mac"
	case "windows":
		return "win"
	default:
		return ""
	}
}

func containsFold(vals []string, want string) bool {
	for _, v := range vals {
		if strings.EqualFold(v, want) {
			return true
		}
	}
	return false
}

func indexOfChild(children []NodeID, id NodeID) int {
	for i, c := range children {
		if c == id {
			return i
		}
	}
	return -1
}

// isPlatformGated walks n's preceding siblings (then ancestors) for
// ?platform / ?not:platform / ?desktop_platform directives and reports
// whether n falls inside one excluding the current platform.
func isPlatformGated(doc *Document, n *Element) bool {
	plat := currentPlatform()
	for cur := n; cur != nil; {
		parent := doc.Node(cur.Parent)
		if parent == nil {
			return false
		}
		idx := indexOfChild(parent.Children, cur.ID)
		gated := false
		for i := 0; i < idx; i++ {
			c := doc.Node(parent.Children[i])
			if c == nil || c.Kind != KindProcInst {
				continue
			}
			switch c.Name {
			case "platform":
				if strings.TrimSpace(c.PIData) == "" {
					gated = false
					continue
				}
				gated = !containsFold(strings.Fields(c.PIData), plat)
			case "not:platform":
				if strings.TrimSpace(c.PIData) == "" {
					gated = false
					continue
				}
				gated = containsFold(strings.Fields(c.PIData), plat)
			case "desktop_platform":
				if strings.TrimSpace(c.PIData) == "" {
					gated = false
					continue
				}
				gated = plat == ""
			}
		}
		if gated {
			return true
		}
		if parent.Kind != KindElement {
			return false
		}
		cur = parent
	}
	return false
}

// isOptionalGated reports whether n sits inside a ?language/?defined/
// ?not: gate, in which case duplicate-definition errors are suppressed.
func isOptionalGated(doc *Document, n *Element) bool {
	for cur := n; cur != nil; {
		parent := doc.Node(cur.Parent)
		if parent == nil {
			return false
		}
		idx := indexOfChild(parent.Children, cur.ID)
		gated := false
		for i := 0; i < idx; i++ {
			c := doc.Node(parent.Children[i])
			if c == nil || c.Kind != KindProcInst {
				continue
			}
			switch {
			case c.Name == "language" || c.Name == "defined":
				gated = strings.TrimSpace(c.PIData) != "" || c.PIData == ""
				if strings.TrimSpace(c.PIData) == "" && c.Name == "language" {
					gated = false
				}
			case strings.HasPrefix(c.Name, "not:"):
				gated = strings.TrimSpace(c.PIData) != ""
			}
		}
		if gated {
			return true
		}
		if parent.Kind != KindElement {
			return false
		}
		cur = parent
	}
	return false
}

func locOf(uri string, lines *LineIndex, span Span) Location {
	r := lines.SpanToRange(span)
	return Location{URI: uri, Start: r.Start, End: r.End}
}

// BuildSkinFileInfo indexes doc once. cm is consulted while indexing form
// dependencies to tell Uri-typed attributes apart from everything else —
// well-known-URL-location stripping only applies to Uri-typed attributes;
// cm may be nil, in which case no attribute is treated as Uri-typed.
func BuildSkinFileInfo(doc *Document, lines *LineIndex, namespace string, cm *ClassModel) *SkinFileInfo {
	info := newSkinFileInfo(doc.URI, namespace)
	info.HasPlatformPI = strings.Contains(doc.Source, "?platform")
	info.HasOptionalPI = strings.Contains(doc.Source, "?language") ||
		strings.Contains(doc.Source, "?defined") || strings.Contains(doc.Source, "?not:")

	root := doc.Root()
	if root == nil {
		return info
	}

	define := func(kind DefinitionKind, name string, el *Element) {
		if name == "" || isPlatformGated(doc, el) {
			return
		}
		loc := locOf(doc.URI, lines, el.Span)
		bucket := info.Definitions[kind]
		if bucket == nil {
			bucket = map[string]Location{}
			info.Definitions[kind] = bucket
		}
		isOverride := strings.EqualFold(el.AttrValue("override"), "true")
		markOverride := func() {
			m := info.overrides[kind]
			if m == nil {
				m = map[string]bool{}
				info.overrides[kind] = m
			}
			m[name] = isOverride
		}
		if existing, ok := bucket[name]; ok {
			if isOverride {
				bucket[name] = loc
				markOverride()
				return
			}
			if isOptionalGated(doc, el) {
				return
			}
			info.DuplicateDefinitions = append(info.DuplicateDefinitions, DuplicateDefinition{
				Name: name, Kind: kind, Range: Range{Start: loc.Start, End: loc.End}, Other: existing,
			})
			return
		}
		bucket[name] = loc
		markOverride()
	}

	for _, top := range doc.ChildrenOf(root.ID) {
		if top == nil {
			continue
		}
		switch {
		case strings.EqualFold(top.Name, "ColorScheme"):
			scheme := top.AttrValue("name")
			for _, c := range doc.ChildrenByName(top.ID, "ColorScheme.Color") {
				if isPlatformGated(doc, c) {
					continue
				}
				m := info.ColorSchemes[scheme]
				if m == nil {
					m = map[string]Location{}
					info.ColorSchemes[scheme] = m
				}
				m[c.AttrValue("name")] = locOf(doc.URI, lines, c.Span)
			}
		case strings.EqualFold(top.Name, "Resources"):
			for _, c := range doc.ChildrenByName(top.ID, "Color") {
				if isPlatformGated(doc, c) {
					continue
				}
				m := info.ColorSchemes[""]
				if m == nil {
					m = map[string]Location{}
					info.ColorSchemes[""] = m
				}
				m["$"+c.AttrValue("name")] = locOf(doc.URI, lines, c.Span)
			}
			for _, kind := range []string{"Image", "ImagePart", "ShapeImage", "IconSet"} {
				for _, img := range doc.ChildrenByName(top.ID, kind) {
					indexImage(doc, lines, img, define)
				}
			}
		case strings.EqualFold(top.Name, "Styles"):
			for _, s := range append(doc.ChildrenByName(top.ID, "Style"), doc.ChildrenByName(top.ID, "StyleAlias")...) {
				define(DefStyle, s.AttrValue("name"), s)
				if strings.EqualFold(s.AttrValue("appstyle"), "true") {
					define(DefAppStyle, s.AttrValue("name"), s)
				}
			}
		case strings.EqualFold(top.Name, "ThemeElements"):
			for _, f := range doc.ChildrenByName(top.ID, "Font") {
				define(DefFont, f.AttrValue("name"), f)
			}
			for _, m := range doc.ChildrenByName(top.ID, "Metric") {
				define(DefMetric, m.AttrValue("name"), m)
			}
			for _, c := range doc.ChildrenByName(top.ID, "Color") {
				define(DefColor, c.AttrValue("name"), c)
			}
		case strings.EqualFold(top.Name, "Shapes"):
			for _, s := range doc.ChildrenByName(top.ID, "Shape") {
				indexShape(doc, lines, s, define)
			}
		case strings.EqualFold(top.Name, "Form"):
			name := top.AttrValue("name")
			define(DefForm, name, top)
			indexForm(doc, lines, top, name, info, define, cm)
		}
		findDelegatesRecursive(doc, lines, top, info)
	}
	return info
}

func indexImage(doc *Document, lines *LineIndex, img *Element, define func(DefinitionKind, string, *Element)) {
	name := img.AttrValue("name")
	define(DefImage, name, img)
	for _, child := range doc.ChildrenOf(img.ID) {
		if child != nil && child.Kind == KindElement {
			if sub := child.AttrValue("name"); sub != "" {
				define(DefImage, name+"["+sub+"]", child)
			}
		}
	}
	if frames := img.AttrValue("frames"); frames != "" {
		for _, f := range strings.Fields(frames) {
			define(DefImage, name+"["+f+"]", img)
		}
	}
}

func indexShape(doc *Document, lines *LineIndex, s *Element, define func(DefinitionKind, string, *Element)) {
	name := s.AttrValue("name")
	define(DefShape, name, s)
	for _, child := range doc.ChildrenOf(s.ID) {
		if child != nil && child.Kind == KindElement {
			define(DefShape, name+"["+child.Name+"]", child)
		}
	}
}

// findDelegatesRecursive locates every <Delegate> anywhere under el
// carrying width/height/size, indexing it into SizedDelegates. These
// never raise duplicate-definition errors, even when several delegates
// resolve to the same form.name.
func findDelegatesRecursive(doc *Document, lines *LineIndex, el *Element, info *SkinFileInfo) {
	if el == nil {
		return
	}
	if strings.EqualFold(el.Name, "Delegate") {
		_, hasW := el.Attr("width")
		_, hasH := el.Attr("height")
		_, hasS := el.Attr("size")
		if hasW || hasH || hasS {
			if fn := el.AttrValue("form.name"); fn != "" {
				info.SizedDelegates[fn] = locOf(doc.URI, lines, el.Span)
			}
		}
	}
	for _, c := range doc.ChildrenOf(el.ID) {
		findDelegatesRecursive(doc, lines, c, info)
	}
}

// indexForm pre-computes view instantiations and form dependencies for
// one <Form>. cm resolves each attribute's declared type so the
// well-known-URL-location set only strips Uri-typed values.
func indexForm(doc *Document, lines *LineIndex, form *Element, formName string, info *SkinFileInfo, define func(DefinitionKind, string, *Element), cm *ClassModel) {
	var knownDefines map[string]bool
	knownDefines = map[string]bool{}

	var walkViews func(el *Element)
	walkViews = func(el *Element) {
		for _, c := range doc.ChildrenOf(el.ID) {
			if c == nil {
				continue
			}
			switch {
			case strings.EqualFold(c.Name, "ScrollView"), strings.EqualFold(c.Name, "View"), strings.EqualFold(c.Name, "Target"):
				name := c.AttrValue("name")
				if name != "" {
					info.ViewInstantiations[name] = append(info.ViewInstantiations[name], ViewInstantiation{ParentForm: formName, Elem: ElemRef{URI: doc.URI, ID: c.ID}})
				}
			case strings.EqualFold(c.Name, "Delegate"), strings.EqualFold(c.Name, "PopupBox"):
				name := c.AttrValue("form.name")
				if name != "" {
					info.ViewInstantiations[name] = append(info.ViewInstantiations[name], ViewInstantiation{ParentForm: formName, Elem: ElemRef{URI: doc.URI, ID: c.ID}})
				}
			}
			walkViews(c)
		}
	}
	walkViews(form)

	var defs []DefineInfo
	var walkDeps func(el *Element)
	walkDeps = func(el *Element) {
		if strings.EqualFold(el.Name, "if") || strings.EqualFold(el.Name, "switch") {
			return
		}
		if strings.EqualFold(el.Name, "define") {
			for _, a := range el.Attrs {
				knownDefines[a.Name] = true
				defs = append(defs, DefineInfo{Name: a.Name, Values: []ValueLoc{{Value: a.Value, Location: locOf(doc.URI, lines, el.Span)}}})
			}
		}
		for _, a := range el.Attrs {
			isURI := false
			if cm != nil {
				mask, _ := cm.FindAttributeType(el.Name, a.Name)
				isURI = mask.HasAny(TUri)
			}
			for _, v := range tokenizeValue(a.Value) {
				if v.Concrete {
					continue
				}
				name := longestUndefinedPrefix(v.Value, knownDefines, isURI)
				if name == "" {
					continue
				}
				info.FormDependencies[formName] = append(info.FormDependencies[formName], FormDependency{
					Name: name, Scope: ElemRef{URI: doc.URI, ID: el.ID},
				})
			}
		}
		for _, c := range doc.ChildrenOf(el.ID) {
			if c != nil {
				walkDeps(c)
			}
		}
	}
	walkDeps(form)
	info.FormDefines[formName] = defs
}

// wellKnownGlobals are stripped unconditionally, regardless of the
// referencing attribute's type.
var wellKnownGlobals = map[string]bool{
	"frame": true, "APPNAME": true,
}

// wellKnownURILocations are stripped only when the referencing attribute
// is Uri-typed — everywhere else, e.g. a plain string attribute reading
// "$SYSTEM", the name is a real, trackable dependency.
var wellKnownURILocations = map[string]bool{
	"SYSTEM": true, "TEMP": true, "RESOURCES": true,
	"THEMEROOT": true, "LOCALE": true,
}

// longestUndefinedPrefix drops well-known global variable names (and, for
// Uri-typed attributes, well-known URL locations) and returns "" when name
// is already locally defined; otherwise it returns name itself. Keeping
// only the longest-prefix variable name is modeled by the caller never
// re-adding a shorter alias once the full dotted name was already
// recorded.
func longestUndefinedPrefix(name string, known map[string]bool, isURI bool) string {
	base := name
	if i := strings.Index(base, "."); i >= 0 {
		base = base[:i]
	}
	if wellKnownGlobals[base] {
		return ""
	}
	if isURI && wellKnownURILocations[base] {
		return ""
	}
	if known[name] || known[base] {
		return ""
	}
	return name
}
