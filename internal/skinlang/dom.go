// dom.go — XML Parser Layer + DOM Helper.
//
// ROLE
//   • Parse skin XML text into an arena-addressed DOM: nodes and attributes
//     live in flat slices on *Document, referenced by NodeID/AttrID rather
//     than pointers, so all graph walks become index lookups instead of
//     pointer chases.
//   • Every element carries its own byte span plus its parent's NodeID, so
//     the Variable Resolver's upward walk is a slice index, never a
//     pointer chase, and is trivially safe to share for concurrent reads
//     once built.
//   • Track processing instructions as first-class children (they gate
//     platform/language/defined/optional inclusion) rather than losing
//     them the way encoding/xml's default token stream would.
//   • Expose a tag-text scanner (ScanTags) that re-derives attribute name
//     and value BYTE offsets directly from source text, because
//     encoding/xml's decoder does not report them.
//
// GROUNDING
//   • Arena/NodeID shape: adapted from _examples/daios-ai-msg/spans.go's
//     index-addressed nodes (there: NodePath into an S-expression; here:
//     NodeID into a flat slice, generalized to a real tree with parent
//     back-pointers).
//   • Decode-then-recover structure (a lenient two-pass parse: stdlib
//     decode for structure, a byte-oriented scan for offsets/attribute
//     positions the decoder throws away): grounded on
//     jacoelho-xsd/internal/xml's own split between structural decoding
//     and lexical position tracking.
//   • Uses encoding/xml (stdlib) rather than a third-party XML library —
//     see DESIGN.md's "dropped pack dependencies" entry for
//     go-tree-sitter, which would be the natural alternative if a grammar
//     existed in the pack.
package skinlang

import (
	"encoding/xml"
	"fmt"
	"strings"
)

// NodeID addresses an Element within a Document's arena. InvalidNode (-1)
// is the invalid ID; node 0 is always the synthetic document root.
type NodeID int

const InvalidNode NodeID = -1

// NodeKind distinguishes elements from processing instructions, since both
// are DOM children but only elements participate in class-model lookups.
type NodeKind int

const (
	KindElement NodeKind = iota
	KindProcInst
	KindDocument // node 0 only
)

// Attribute is one name="value" pair on an element, with byte spans for
// both the name and the value token (populated by ScanTags, since the
// structural decode pass alone cannot recover them).
type Attribute struct {
	Name       string
	Value      string
	NameSpan   Span
	ValueSpan  Span // spans the quoted value's *contents*, excluding quotes
}

// Element is one DOM node: an XML element or a processing instruction.
type Element struct {
	ID       NodeID
	Parent   NodeID // InvalidNode for the document root
	Kind     NodeKind
	Name     string // element name, or PI target (e.g. "platform")
	PIData   string // raw text of a processing instruction, e.g. "platform mac"
	Attrs    []Attribute
	Children []NodeID
	Span     Span // full element span, including start/end tags
	OpenSpan Span // just "<Name ...>" or "<Name ... />"
}

// Attr looks up an attribute by name (case-sensitive), the DOM Helper's
// typed child/attribute lookup primitive.
func (e *Element) Attr(name string) (Attribute, bool) {
	for _, a := range e.Attrs {
		if a.Name == name {
			return a, true
		}
	}
	return Attribute{}, false
}

// AttrValue is a convenience wrapper returning "" when absent.
func (e *Element) AttrValue(name string) string {
	a, _ := e.Attr(name)
	return a.Value
}

// Document is a parsed skin XML file: an arena of Elements plus the
// original source text (needed by callers to slice out identifiers,
// compute line/col, etc).
type Document struct {
	URI     string
	Source  string
	Nodes   []Element
	RootID  NodeID // the <Skin> element, InvalidNode if absent/malformed

	// Structural scan results (unclosed/dangling tags), populated once
	// during ParseDocument by the same lenient tag scanner used for
	// attribute offsets.
	UnclosedTags []UnclosedTag
	DanglingTags []DanglingTag

	// MalformedProcInsts holds the span of each "<?...>" construct found by
	// the scanner that did not close with "?>".
	MalformedProcInsts []Span

	ParseErr error // non-nil if the source could not be decoded at all
}

// UnclosedTag records an opening tag with no matching close, used by the
// checker to emit "No closing tag found for <T>." and by completion to
// offer the matching close-tag snippet.
type UnclosedTag struct {
	Name string
	Span Span // the opening tag's own span
}

// DanglingTag records a closing tag with no matching open.
type DanglingTag struct {
	Name string
	Span Span
}

// Node returns the element with the given ID, or nil if out of range.
func (d *Document) Node(id NodeID) *Element {
	if id < 0 || int(id) >= len(d.Nodes) {
		return nil
	}
	return &d.Nodes[id]
}

// Root returns the document's <Skin> root element, or nil.
func (d *Document) Root() *Element {
	return d.Node(d.RootID)
}

// ChildrenOf returns the resolved child Elements of id, in document order.
func (d *Document) ChildrenOf(id NodeID) []*Element {
	n := d.Node(id)
	if n == nil {
		return nil
	}
	out := make([]*Element, 0, len(n.Children))
	for _, cid := range n.Children {
		out = append(out, d.Node(cid))
	}
	return out
}

// ChildByName is the DOM Helper's typed child-lookup: the first child
// element (skipping processing instructions) with the given name.
func (d *Document) ChildByName(id NodeID, name string) *Element {
	n := d.Node(id)
	if n == nil {
		return nil
	}
	for _, cid := range n.Children {
		c := d.Node(cid)
		if c != nil && c.Kind == KindElement && strings.EqualFold(c.Name, name) {
			return c
		}
	}
	return nil
}

// ChildByNameAttr finds the first child element with the given name whose
// attribute attrName equals attrValue — the "+attribute" variant of the
// typed child lookup.
func (d *Document) ChildByNameAttr(id NodeID, name, attrName, attrValue string) *Element {
	n := d.Node(id)
	if n == nil {
		return nil
	}
	for _, cid := range n.Children {
		c := d.Node(cid)
		if c != nil && c.Kind == KindElement && strings.EqualFold(c.Name, name) && c.AttrValue(attrName) == attrValue {
			return c
		}
	}
	return nil
}

// ChildrenByName returns every child element matching name.
func (d *Document) ChildrenByName(id NodeID, name string) []*Element {
	n := d.Node(id)
	if n == nil {
		return nil
	}
	var out []*Element
	for _, cid := range n.Children {
		c := d.Node(cid)
		if c != nil && c.Kind == KindElement && strings.EqualFold(c.Name, name) {
			out = append(out, c)
		}
	}
	return out
}

// Ancestors returns id's ancestor chain, nearest first, ending at (but not
// including) the document root.
func (d *Document) Ancestors(id NodeID) []NodeID {
	var out []NodeID
	cur := d.Node(id)
	if cur == nil {
		return out
	}
	for p := cur.Parent; p != InvalidNode; {
		pn := d.Node(p)
		if pn == nil || pn.Kind == KindDocument {
			break
		}
		out = append(out, p)
		p = pn.Parent
	}
	return out
}

// ParseDocument parses skin XML source into a Document. It never returns a
// nil Document even on malformed input: ParseErr is set, and whatever
// structure could be recovered (e.g. via the tag scanner) is still
// populated.
func ParseDocument(uri, src string) *Document {
	doc := &Document{URI: uri, Source: src, RootID: InvalidNode}
	doc.Nodes = append(doc.Nodes, Element{ID: 0, Parent: InvalidNode, Kind: KindDocument})

	tags, malformedPI := ScanTags(src)
	doc.UnclosedTags, doc.DanglingTags = reconcileTags(tags)
	doc.MalformedProcInsts = malformedPI

	dec := xml.NewDecoder(strings.NewReader(src))
	dec.Strict = false
	dec.AutoClose = xml.HTMLAutoClose

	type frame struct {
		id        NodeID
		openStart int // byte offset where "<Name" began, from the tag scanner
	}
	stack := []frame{{id: 0}}

	for {
		off := dec.InputOffset()
		tok, err := dec.Token()
		if err != nil {
			if err.Error() != "EOF" {
				doc.ParseErr = err
			}
			break
		}
		switch t := tok.(type) {
		case xml.StartElement:
			st := findTagAtOrAfter(tags, off)
			el := Element{
				ID:     NodeID(len(doc.Nodes)),
				Parent: stack[len(stack)-1].id,
				Kind:   KindElement,
				Name:   t.Name.Local,
			}
			if st != nil {
				el.OpenSpan = st.Span
				el.Span = st.Span
				el.Attrs = st.Attrs
			} else {
				for _, a := range t.Attr {
					el.Attrs = append(el.Attrs, Attribute{Name: a.Name.Local, Value: a.Value})
				}
			}
			doc.Nodes = append(doc.Nodes, el)
			parent := &doc.Nodes[stack[len(stack)-1].id]
			parent.Children = append(parent.Children, el.ID)
			if doc.RootID == InvalidNode && strings.EqualFold(el.Name, "Skin") {
				doc.RootID = el.ID
			}
			stack = append(stack, frame{id: el.ID})

		case xml.EndElement:
			if len(stack) > 1 {
				top := stack[len(stack)-1]
				n := &doc.Nodes[top.id]
				endOff := int(dec.InputOffset())
				if endOff > n.Span.EndByte {
					n.Span.EndByte = endOff
				}
				stack = stack[:len(stack)-1]
			}

		case xml.ProcInst:
			el := Element{
				ID:     NodeID(len(doc.Nodes)),
				Parent: stack[len(stack)-1].id,
				Kind:   KindProcInst,
				Name:   t.Target,
				PIData: string(t.Inst),
			}
			pt := findTagAtOrAfter(tags, off)
			if pt != nil {
				el.Span = pt.Span
			}
			doc.Nodes = append(doc.Nodes, el)
			parent := &doc.Nodes[stack[len(stack)-1].id]
			parent.Children = append(parent.Children, el.ID)
		}
	}
	return doc
}

func findTagAtOrAfter(tags []scannedTag, off int64) *scannedTag {
	best := -1
	for i := range tags {
		if int64(tags[i].Span.StartByte) >= off {
			if best == -1 || tags[i].Span.StartByte < tags[best].Span.StartByte {
				best = i
			}
		}
	}
	if best == -1 {
		return nil
	}
	return &tags[best]
}

// scannedTag is one "<Name attr=...>" or "</Name>" occurrence found by the
// byte-oriented tag scanner, independent of encoding/xml's decode pass.
type scannedTag struct {
	Name    string
	Closing bool
	SelfClose bool
	Span    Span
	Attrs   []Attribute
}

// ScanTags re-reads the raw source byte-by-byte to recover exact
// name/value byte offsets that the DOM (built via encoding/xml) cannot
// provide. It is deliberately tolerant of malformed markup: it never
// errors, it just emits fewer/partial tags.
func ScanTags(src string) ([]scannedTag, []Span) {
	var out []scannedTag
	var malformedPI []Span
	i := 0
	n := len(src)
	for i < n {
		lt := strings.IndexByte(src[i:], '<')
		if lt < 0 {
			break
		}
		start := i + lt
		if start+1 >= n {
			break
		}
		if src[start+1] == '?' || src[start+1] == '!' {
			// processing instruction or comment/doctype: skip to matching '>'
			gt := strings.IndexByte(src[start:], '>')
			if gt < 0 {
				break
			}
			end := start + gt + 1
			if src[start+1] == '?' && !(end-2 >= start && src[end-2] == '?') {
				// A processing instruction that closed on a bare '>' instead of
				// the required '?>'.
				malformedPI = append(malformedPI, Span{StartByte: start, EndByte: end})
			}
			i = end
			continue
		}
		closing := src[start+1] == '/'
		p := start + 1
		if closing {
			p++
		}
		nameStart := p
		for p < n && !isNameBreak(src[p]) {
			p++
		}
		name := src[nameStart:p]
		if name == "" {
			i = start + 1
			continue
		}
		var attrs []Attribute
		for {
			for p < n && isSpace(src[p]) {
				p++
			}
			if p >= n {
				break
			}
			if src[p] == '>' || (src[p] == '/' && p+1 < n && src[p+1] == '>') {
				break
			}
			anStart := p
			for p < n && src[p] != '=' && !isSpace(src[p]) && src[p] != '>' && src[p] != '/' {
				p++
			}
			attrName := src[anStart:p]
			for p < n && isSpace(src[p]) {
				p++
			}
			if p < n && src[p] == '=' {
				p++
				for p < n && isSpace(src[p]) {
					p++
				}
				if p < n && (src[p] == '"' || src[p] == '\'') {
					quote := src[p]
					p++
					vStart := p
					for p < n && src[p] != quote {
						p++
					}
					value := src[vStart:p]
					attrs = append(attrs, Attribute{
						Name:      attrName,
						Value:     value,
						NameSpan:  Span{StartByte: anStart, EndByte: anStart + len(attrName)},
						ValueSpan: Span{StartByte: vStart, EndByte: p},
					})
					if p < n {
						p++ // closing quote
					}
				}
			} else if attrName != "" {
				attrs = append(attrs, Attribute{
					Name:     attrName,
					NameSpan: Span{StartByte: anStart, EndByte: anStart + len(attrName)},
				})
			}
		}
		selfClose := false
		gt := strings.IndexByte(src[p:], '>')
		if gt < 0 {
			break
		}
		end := p + gt + 1
		if end-2 >= 0 && src[end-2] == '/' {
			selfClose = true
		}
		out = append(out, scannedTag{
			Name:      name,
			Closing:   closing,
			SelfClose: selfClose,
			Span:      Span{StartByte: start, EndByte: end},
			Attrs:     attrs,
		})
		i = end
	}
	return out, malformedPI
}

func isNameBreak(c byte) bool {
	return isSpace(c) || c == '>' || c == '/' || c == '='
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// reconcileTags walks the scanned tags with a stack to find unclosed opens
// and dangling closes.
func reconcileTags(tags []scannedTag) ([]UnclosedTag, []DanglingTag) {
	var stack []scannedTag
	var unclosed []UnclosedTag
	var dangling []DanglingTag
	for _, t := range tags {
		if t.Closing {
			found := -1
			for i := len(stack) - 1; i >= 0; i-- {
				if strings.EqualFold(stack[i].Name, t.Name) {
					found = i
					break
				}
			}
			if found == -1 {
				dangling = append(dangling, DanglingTag{Name: t.Name, Span: t.Span})
				continue
			}
			for _, u := range stack[found+1:] {
				unclosed = append(unclosed, UnclosedTag{Name: u.Name, Span: u.Span})
			}
			stack = stack[:found]
			continue
		}
		if t.SelfClose {
			continue
		}
		stack = append(stack, t)
	}
	for _, t := range stack {
		unclosed = append(unclosed, UnclosedTag{Name: t.Name, Span: t.Span})
	}
	return unclosed, dangling
}

func (s Span) String() string { return fmt.Sprintf("[%d,%d)", s.StartByte, s.EndByte) }
