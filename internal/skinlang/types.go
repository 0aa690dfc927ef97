// types.go — the shared data model for the skin-language engine.
//
// Every other file in this package builds on the types declared here:
// the attribute type bitmask, class/enum schema records, the definition
// taxonomy, diagnostics, and the token kinds produced by position lookups.
// Kept deliberately free of parsing/resolution logic so it can be imported
// by every other file without cycles.
package skinlang

import "strings"

// AttributeTypeMask is a bitset over the attribute value kinds a class
// model can assign to an attribute. NoType is the identity under
// bitwise-OR; every other bit is a mutually exclusive "kind tag" that can
// be combined with others to form a composite type such as Shape|Uri.
type AttributeTypeMask uint32

const (
	NoType AttributeTypeMask = 0
	TBool  AttributeTypeMask = 1 << iota
	TInt
	TFloat
	TString
	TEnum
	TColor
	TSize
	TRect
	TImage
	TPoint
	TPoint3D
	TUri
	TStyle
	TStyleArray
	TShape
	TFont
	TForm
	TFontSize
	TDuration
	TStrNone
	TStrForever
)

// Has reports whether every bit set in want is also set in m.
func (m AttributeTypeMask) Has(want AttributeTypeMask) bool { return m&want == want }

// HasAny reports whether m shares any bit with want.
func (m AttributeTypeMask) HasAny(want AttributeTypeMask) bool { return m&want != 0 }

// Bits returns the individual single-bit masks set in m, in ascending order.
// Used by the checker to run "one check per bit, accept if any passes".
func (m AttributeTypeMask) Bits() []AttributeTypeMask {
	var out []AttributeTypeMask
	for b := AttributeTypeMask(1); b != 0; b <<= 1 {
		if m&b != 0 {
			out = append(out, b)
		}
	}
	return out
}

func (m AttributeTypeMask) String() string {
	if m == NoType {
		return "NoType"
	}
	names := map[AttributeTypeMask]string{
		TBool: "Bool", TInt: "Int", TFloat: "Float", TString: "String",
		TEnum: "Enum", TColor: "Color", TSize: "Size", TRect: "Rect",
		TImage: "Image", TPoint: "Point", TPoint3D: "Point3D", TUri: "Uri",
		TStyle: "Style", TStyleArray: "StyleArray", TShape: "Shape",
		TFont: "Font", TForm: "Form", TFontSize: "FontSize",
		TDuration: "Duration", TStrNone: "StrNone", TStrForever: "StrForever",
	}
	var parts []string
	for _, b := range m.Bits() {
		if n, ok := names[b]; ok {
			parts = append(parts, n)
		}
	}
	return strings.Join(parts, "|")
}

// ClassDef is one element class from a loaded class model.
type ClassDef struct {
	Name           string
	Parent         string // "" if root
	Abstract       bool
	Attributes     map[string]AttributeTypeMask
	SchemaGroups   []string // "" (nil) means "inherit from parent, plus own name"
	ChildrenGroup  string   // "" means "inherit from parent"
	BriefDoc       string
	DetailedDoc    string
	CodeDoc        string
}

// EnumDef is one enumeration from a loaded class model.
type EnumDef struct {
	Name    string
	Entries []string
	Parent  string // dotted "Class.attribute" key of an inherited enum, or ""
}

// DefinitionKind tags the flavor of a named definition.
type DefinitionKind int

const (
	DefColor DefinitionKind = iota
	DefStyle
	DefAppStyle
	DefImage
	DefShape
	DefFont
	DefMetric
	DefForm
	DefSizedDelegate
	DefVariable
)

func (k DefinitionKind) String() string {
	switch k {
	case DefColor:
		return "color"
	case DefStyle:
		return "style"
	case DefAppStyle:
		return "appstyle"
	case DefImage:
		return "image"
	case DefShape:
		return "shape"
	case DefFont:
		return "font"
	case DefMetric:
		return "metric"
	case DefForm:
		return "form"
	case DefSizedDelegate:
		return "sized delegate"
	case DefVariable:
		return "variable"
	default:
		return "unknown"
	}
}

// Qualifiable reports whether names of this kind participate in NS/Name
// namespace qualification. Color and Font are never qualified.
func (k DefinitionKind) Qualifiable() bool {
	return k != DefColor && k != DefFont
}

// Location pins a diagnostic or definition to a byte range in a document.
type Location struct {
	URI   string
	Start Position
	End   Position
}

// Position is a 0-based line/column pair (columns in UTF-16 code units,
// matching the LSP wire contract).
type Position struct {
	Line, Col int
}

func (p Position) Less(o Position) bool {
	if p.Line != o.Line {
		return p.Line < o.Line
	}
	return p.Col < o.Col
}

type Range struct {
	Start, End Position
}

// Severity mirrors LSP diagnostic severities; only Error and Warning are used.
type Severity int

const (
	SevError Severity = iota + 1
	SevWarning
)

// RelatedInfo attaches a secondary location/message to a Diagnostic, used
// for "other definition here", "did you mean", etc.
type RelatedInfo struct {
	Location Location
	Message  string
}

// Diagnostic is the unit of validator output.
type Diagnostic struct {
	Severity Severity
	Range    Range
	Message  string
	Source   string
	Related  []RelatedInfo
}

// TokenKind tags what a find-token-at-position query landed on.
type TokenKind int

const (
	TokInvalid TokenKind = iota
	TokTagName
	TokAttributeName
	TokAttributeValue
)

// PositionToken is the tagged variant produced by FindTokenAtPosition.
type PositionToken struct {
	Kind            TokenKind
	Tag             string
	AttrIndex       int      // index into Attrs, valid for AttributeName/AttributeValue
	Attrs           []string // attribute names already present on the tag
	ValueBeforeCursor string // text of the attribute value up to the cursor
}
