// classmodel.go — the Class Model Manager: loads the two class-model XML
// files ("Skin Elements" and "Visual Styles"), and answers every schema
// query the checker/IntelliSense layers need: valid attributes per
// element, valid enum entries, attribute types (with name-heuristic
// inference when the model underspecifies), and parent-scope validity.
//
// Class-model XML shape: Model.Class elements (optionally nested to
// express containment, but addressed here by name regardless of nesting
// depth) carry a Name and optional Class:Parent/Class:Abstract
// attributes; a child <Attributes x:id="attributes"> element carries
// Class:SchemaGroups/Class:ChildGroup; a child <List x:id="members">
// holds Model.Member children (one per attribute); Model.Enumeration /
// Model.Enumerator hold enum definitions; Model.Documentation holds
// <String x:id="brief"|"detailed"|"code"> text nodes.
//
// Grounded on _examples/daios-ai-msg/schema.go's shape (a typed schema
// keyed by name, with inheritance resolved by walking a parent chain)
// generalized from a single-language type system to the two-file,
// attribute+enum class model described above.
package skinlang

import (
	"encoding/xml"
	"io"
	"sort"
	"strings"
	"time"
)

// ClassModel is the full schema loaded from the two class-model files. It
// is process-wide state, reloaded whenever a watched file's modification
// time changes. A reload merges that file's classes and enums into the
// shared maps; entries the reloaded file no longer declares are not
// removed.
type ClassModel struct {
	probe FSProbe

	elementsPath  string
	elementsMTime time.Time
	elementsErr   error

	stylesPath  string
	stylesMTime time.Time
	stylesErr   error

	classes map[string]*ClassDef
	enums   map[string]*EnumDef
}

func NewClassModel(probe FSProbe) *ClassModel {
	return &ClassModel{probe: probe, classes: map[string]*ClassDef{}, enums: map[string]*EnumDef{}}
}

// IsClassModelLoaded reports whether at least the "Skin Elements" model
// loaded successfully; the checker uses this to short-circuit with the
// single global "class model could not be found" error.
func (cm *ClassModel) IsClassModelLoaded() bool {
	return cm.elementsErr == nil && cm.elementsPath != ""
}

// LoadClassModel (re-)loads the "Skin Elements" model from path if its
// modification time has changed since the last successful load; it is a
// no-op otherwise.
func (cm *ClassModel) LoadClassModel(path string) error {
	mt, ok := cm.probe.ModTime(path)
	if !ok {
		cm.elementsErr = &ClassModelError{Path: path, Msg: "file not found"}
		return cm.elementsErr
	}
	if cm.elementsPath == path && mt.Equal(cm.elementsMTime) && cm.elementsErr == nil {
		return nil
	}
	text, ok := cm.probe.ReadFile(path)
	if !ok {
		cm.elementsErr = &ClassModelError{Path: path, Msg: "file not found"}
		return cm.elementsErr
	}
	classes, enums, err := parseClassModelXML(text)
	if err != nil {
		cm.elementsErr = &ClassModelError{Path: path, Msg: err.Error()}
		return cm.elementsErr
	}
	cm.elementsPath, cm.elementsMTime, cm.elementsErr = path, mt, nil
	for k, v := range classes {
		cm.classes[k] = v
	}
	for k, v := range enums {
		cm.enums[k] = v
	}
	return nil
}

// LoadStyleModel loads the "Visual Styles" model the same way.
func (cm *ClassModel) LoadStyleModel(path string) error {
	mt, ok := cm.probe.ModTime(path)
	if !ok {
		cm.stylesErr = &ClassModelError{Path: path, Msg: "file not found"}
		return cm.stylesErr
	}
	if cm.stylesPath == path && mt.Equal(cm.stylesMTime) && cm.stylesErr == nil {
		return nil
	}
	text, ok := cm.probe.ReadFile(path)
	if !ok {
		cm.stylesErr = &ClassModelError{Path: path, Msg: "file not found"}
		return cm.stylesErr
	}
	classes, enums, err := parseClassModelXML(text)
	if err != nil {
		cm.stylesErr = &ClassModelError{Path: path, Msg: err.Error()}
		return cm.stylesErr
	}
	cm.stylesPath, cm.stylesMTime, cm.stylesErr = path, mt, nil
	for k, v := range classes {
		cm.classes[k] = v
	}
	for k, v := range enums {
		cm.enums[k] = v
	}
	return nil
}

// class returns the ClassDef for name, case-sensitively.
func (cm *ClassModel) class(name string) *ClassDef { return cm.classes[name] }

// parentChain returns name and all of its ancestors, name first.
func (cm *ClassModel) parentChain(name string) []*ClassDef {
	var chain []*ClassDef
	seen := map[string]bool{}
	for name != "" && !seen[name] {
		seen[name] = true
		c := cm.classes[name]
		if c == nil {
			break
		}
		chain = append(chain, c)
		name = c.Parent
	}
	return chain
}

// FindSkinElementDefinitions returns element class names matching prefix
// case-insensitively. Four hard-coded special cases short-circuit the
// scan entirely — these are the fixed keys used by Layout.layout.class
// completion.
func (cm *ClassModel) FindSkinElementDefinitions(prefix string, ignoreAbstract bool) []string {
	d, err := loadBuiltinDefaults()
	if err == nil {
		if vals, ok := d.LayoutClassSpecialCases[strings.ToLower(prefix)]; ok {
			out := append([]string(nil), vals...)
			sort.Strings(out)
			return out
		}
	}
	lp := strings.ToLower(prefix)
	var out []string
	for name, c := range cm.classes {
		if ignoreAbstract && c.Abstract {
			continue
		}
		if strings.HasPrefix(strings.ToLower(name), lp) {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// FindValidAttributes walks elem's parent chain, unions every class's
// declared attributes, then applies guessType to every result.
// Control-flow statement classes drop "name" except styleselector.
func (cm *ClassModel) FindValidAttributes(elemName string) map[string]AttributeTypeMask {
	out := map[string]AttributeTypeMask{}
	chain := cm.parentChain(elemName)
	for i := len(chain) - 1; i >= 0; i-- {
		for k, v := range chain[i].Attributes {
			out[k] = v
		}
	}
	for k := range out {
		out[k] = cm.guessType(elemName, k, out[k])
	}
	if cm.isStatementClass(elemName) && !strings.EqualFold(elemName, "styleselector") {
		delete(out, "name")
	}
	return out
}

func (cm *ClassModel) isStatementClass(elemName string) bool {
	for _, c := range cm.parentChain(elemName) {
		if strings.EqualFold(c.Name, "statement") {
			return true
		}
	}
	return false
}

// FindValidEnumEntries walks elem's parent chain looking for an enum
// bound to attr, then follows the enum's own inheritance chain. The
// special case Options.options redirects via a sibling "type" attribute
// of the form "Class.Attribute".
func (cm *ClassModel) FindValidEnumEntries(elem, attr string, siblingAttrs map[string]string) []string {
	if strings.EqualFold(elem, "Options") && strings.EqualFold(attr, "options") {
		if t, ok := siblingAttrs["type"]; ok && strings.Contains(t, ".") {
			parts := strings.SplitN(t, ".", 2)
			return cm.enumEntriesFor(parts[0], parts[1])
		}
	}
	for _, c := range cm.parentChain(elem) {
		if e := cm.enums[c.Name+"."+attr]; e != nil {
			return cm.expandEnum(e)
		}
	}
	return nil
}

func (cm *ClassModel) enumEntriesFor(cls, attr string) []string {
	for _, c := range cm.parentChain(cls) {
		if e := cm.enums[c.Name+"."+attr]; e != nil {
			return cm.expandEnum(e)
		}
	}
	return nil
}

func (cm *ClassModel) expandEnum(e *EnumDef) []string {
	entries := append([]string(nil), e.Entries...)
	seen := map[string]bool{}
	for p := e.Parent; p != "" && !seen[p]; {
		seen[p] = true
		parent := cm.enums[p]
		if parent == nil {
			break
		}
		entries = append(entries, parent.Entries...)
		p = parent.Parent
	}
	return entries
}

// FindAttributeType looks up attr's type by walking elem's parent chain,
// returning the class that actually declares it, then applies guessType
// to the final result.
func (cm *ClassModel) FindAttributeType(elem, attr string) (AttributeTypeMask, string) {
	for _, c := range cm.parentChain(elem) {
		if t, ok := c.Attributes[attr]; ok {
			return cm.guessType(elem, attr, t), c.Name
		}
	}
	return cm.guessType(elem, attr, NoType), ""
}

// IsSkinElementValidInScope resolves child's schema groups (own, or
// inherited from its parent chain, plus the class's own name) against
// parent's children-group (inherited if unset). If no schema information
// is loaded anywhere, everything validates.
func (cm *ClassModel) IsSkinElementValidInScope(parent, child string) bool {
	if len(cm.classes) == 0 {
		return true
	}
	groups := cm.schemaGroupsFor(child)
	childGroup := cm.childrenGroupFor(parent)
	if childGroup == "" {
		return true
	}
	for _, g := range groups {
		if g == childGroup {
			return true
		}
	}
	return false
}

func (cm *ClassModel) schemaGroupsFor(className string) []string {
	for _, c := range cm.parentChain(className) {
		if len(c.SchemaGroups) > 0 {
			groups := append([]string(nil), c.SchemaGroups...)
			groups = append(groups, className)
			return groups
		}
	}
	return []string{className}
}

func (cm *ClassModel) childrenGroupFor(className string) string {
	for _, c := range cm.parentChain(className) {
		if c.ChildrenGroup != "" {
			return c.ChildrenGroup
		}
	}
	return ""
}

// guessType applies the name-heuristic attribute typing rules, run
// exactly once per lookup after the schema-declared type (which may be
// NoType if the model underspecifies it).
func (cm *ClassModel) guessType(elem, attr string, declared AttributeTypeMask) AttributeTypeMask {
	if declared != NoType {
		return declared
	}
	lname := strings.ToLower(attr)
	switch {
	case strings.HasSuffix(lname, "color") || strings.HasSuffix(lname, "color.disabled") || strings.HasSuffix(lname, "color.on"):
		return TColor
	case lname == "style" || lname == "inherit":
		return TStyleArray
	case lname == "image" || lname == "icon" || lname == "background":
		return TImage
	case lname == "url":
		if strings.EqualFold(elem, "ShapeImage") {
			return TShape | TUri
		}
		return TUri
	case lname == "shaperef":
		return TShape
	case strings.EqualFold(elem, "Font") && lname == "themeid":
		return TFont
	case lname == "name" && (strings.EqualFold(elem, "View") || strings.EqualFold(elem, "Target") || strings.EqualFold(elem, "ScrollView")):
		return TForm
	case lname == "form.name":
		return TForm
	case strings.EqualFold(elem, "Layout") && lname == "layout.class":
		return TEnum
	case (strings.EqualFold(elem, "StyleAlias") || strings.EqualFold(elem, "styleselector")) && lname == "styles":
		return TStyleArray
	case strings.EqualFold(elem, "Font") && lname == "size":
		return TFontSize
	case strings.EqualFold(elem, "Style") && lname == "textsize":
		return TFontSize
	case strings.EqualFold(elem, "Animation") && lname == "repeat":
		return TInt | TStrForever
	case lname == "sizelimits":
		return TRect | TStrNone
	case strings.Contains(lname, "duration"):
		return TDuration
	default:
		return declared
	}
}

// --- documentation extractors (hover) ---

func (cm *ClassModel) ClassDoc(name string) (brief, detailed, code string) {
	if c := cm.class(name); c != nil {
		return c.BriefDoc, c.DetailedDoc, c.CodeDoc
	}
	return "", "", ""
}

func (cm *ClassModel) AttributeDoc(elem, attr string) string {
	// Attribute-level docs are not separately modeled in Model.Member
	// beyond type; class-level detailed doc is the best available summary.
	if c := cm.class(elem); c != nil {
		return c.DetailedDoc
	}
	return ""
}

func (cm *ClassModel) EnumDoc(name string) string {
	if e := cm.enums[name]; e != nil {
		return strings.Join(e.Entries, ", ")
	}
	return ""
}

// StyleDoc renders a style's inheritance chain for hover, given a lookup
// callback resolving a style's declared "inherit"/"style" attribute value
// to its own parent style name (styles live in skin files, not the class
// model, so the chain walk itself is the caller's job; this just formats).
func (cm *ClassModel) StyleDoc(chain []string) string {
	return strings.Join(chain, " -> ")
}

// --- class-model XML parsing ---

type genNode struct {
	Name     string
	Attrs    map[string]string
	Children []*genNode
	Text     string
}

func parseClassModelXML(src string) (map[string]*ClassDef, map[string]*EnumDef, error) {
	root, err := parseGenXML(src)
	if err != nil {
		return nil, nil, err
	}
	classes := map[string]*ClassDef{}
	enums := map[string]*EnumDef{}
	var walk func(n *genNode)
	walk = func(n *genNode) {
		switch localName(n.Name) {
		case "Model.Class":
			c := classFromNode(n)
			if c.Name != "" {
				classes[c.Name] = c
			}
		case "Model.Enumeration":
			e := enumFromNode(n)
			if e.Name != "" {
				enums[e.Name] = e
			}
		}
		for _, ch := range n.Children {
			walk(ch)
		}
	}
	walk(root)
	return classes, enums, nil
}

func classFromNode(n *genNode) *ClassDef {
	c := &ClassDef{
		Name:       firstAttr(n, "Name", "x:id"),
		Parent:     n.Attrs["Class:Parent"],
		Abstract:   n.Attrs["Class:Abstract"] == "true",
		Attributes: map[string]AttributeTypeMask{},
	}
	for _, ch := range n.Children {
		switch localName(ch.Name) {
		case "Attributes":
			if ch.Attrs["x:id"] == "attributes" {
				if sg := ch.Attrs["Class:SchemaGroups"]; sg != "" {
					c.SchemaGroups = strings.Fields(strings.ReplaceAll(sg, ",", " "))
				}
				c.ChildrenGroup = ch.Attrs["Class:ChildGroup"]
			}
		case "List":
			if ch.Attrs["x:id"] == "members" {
				for _, m := range ch.Children {
					if localName(m.Name) == "Model.Member" {
						mname := firstAttr(m, "Name", "x:id")
						if mname != "" {
							c.Attributes[mname] = attrMaskFromTypeName(m.Attrs["Type"])
						}
					}
				}
			}
		case "Model.Documentation":
			for _, s := range ch.Children {
				if localName(s.Name) != "String" {
					continue
				}
				switch s.Attrs["x:id"] {
				case "brief":
					c.BriefDoc = s.Text
				case "detailed":
					c.DetailedDoc = s.Text
				case "code":
					c.CodeDoc = s.Text
				}
			}
		}
	}
	return c
}

func enumFromNode(n *genNode) *EnumDef {
	e := &EnumDef{Name: firstAttr(n, "Name", "x:id"), Parent: n.Attrs["Enum:Parent"]}
	for _, ch := range n.Children {
		if localName(ch.Name) == "Model.Enumerator" {
			if v := firstAttr(ch, "Name", "x:id"); v != "" {
				e.Entries = append(e.Entries, v)
			}
		}
	}
	return e
}

func firstAttr(n *genNode, keys ...string) string {
	for _, k := range keys {
		if v, ok := n.Attrs[k]; ok && v != "" {
			return v
		}
	}
	return ""
}

func localName(name string) string {
	if i := strings.LastIndex(name, ":"); i >= 0 {
		return name[i+1:]
	}
	return name
}

func attrMaskFromTypeName(t string) AttributeTypeMask {
	switch strings.ToLower(t) {
	case "bool", "boolean":
		return TBool
	case "int", "integer":
		return TInt
	case "float", "double", "number":
		return TFloat
	case "string", "str":
		return TString
	case "color":
		return TColor
	case "size":
		return TSize
	case "rect":
		return TRect
	case "image":
		return TImage
	case "point":
		return TPoint
	case "point3d":
		return TPoint3D
	case "uri", "url":
		return TUri
	case "style":
		return TStyle
	case "stylearray":
		return TStyleArray
	case "shape":
		return TShape
	case "font":
		return TFont
	case "form":
		return TForm
	case "fontsize":
		return TFontSize
	case "duration":
		return TDuration
	case "enum":
		return TEnum
	default:
		return NoType
	}
}

// parseGenXML is a minimal generic XML tree builder, independent of the
// arena DOM (dom.go), used only for the structurally-different class
// model file format.
func parseGenXML(src string) (*genNode, error) {
	dec := xml.NewDecoder(strings.NewReader(src))
	dec.Strict = false
	var stack []*genNode
	var root *genNode
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return root, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			n := &genNode{Name: t.Name.Local, Attrs: map[string]string{}}
			for _, a := range t.Attr {
				key := a.Name.Local
				if a.Name.Space != "" {
					key = a.Name.Space + ":" + a.Name.Local
				}
				n.Attrs[key] = a.Value
			}
			if len(stack) > 0 {
				top := stack[len(stack)-1]
				top.Children = append(top.Children, n)
			} else {
				root = n
			}
			stack = append(stack, n)
		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].Text += string(t)
			}
		}
	}
	if root == nil {
		root = &genNode{Name: "root", Attrs: map[string]string{}}
	}
	return root, nil
}
