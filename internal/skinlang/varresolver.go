// varresolver.go — the Variable Resolver: expands `$name` tokens inside an
// attribute value to the finite set of concrete strings reachable via
// define/foreach/styleselector sites and form-instantiation back-edges.
//
// The cycle-guard-via-visited-set and worklist-of-"resolution worlds"
// pattern is adapted from _examples/daios-ai-msg/modules.go's
// canonical-cache + call-stack cycle detection, applied here to DOM scope
// traversal instead of module imports.
package skinlang

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// varTok is one piece of a partially-resolved value: either literal text
// or an unresolved "$name" reference.
type varTok struct {
	Value    string
	Concrete bool
}

// ScopeProvider is the cross-file collaborator the resolver needs for the
// form-instantiation back-edge walk: when the scope walk reaches a Form
// ancestor, it jumps to every view-instantiation site that names that
// form. Implemented by SkinDefinitionParser once files are indexed.
type ScopeProvider interface {
	ViewInstantiationSites(formName string) []ElemRef
	DocumentFor(uri string) *Document
}

// ElemRef addresses one element in one document, the unit the resolver's
// visited-set and worklist operate over.
type ElemRef struct {
	URI string
	ID  NodeID
}

// VariableResolver expands $-token references against lexically scoped
// define/foreach/styleselector sites.
type VariableResolver struct {
	scope ScopeProvider
}

func NewVariableResolver(scope ScopeProvider) *VariableResolver {
	return &VariableResolver{scope: scope}
}

var varNameRE = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.]*`)

// tokenizeValue splits value on '$' boundaries into literal/variable
// varToks, e.g. "Row_$i" -> [{"Row_",true}, {"i",false}].
func tokenizeValue(value string) []varTok {
	var out []varTok
	for {
		i := strings.IndexByte(value, '$')
		if i < 0 {
			if value != "" {
				out = append(out, varTok{Value: value, Concrete: true})
			}
			return out
		}
		if i > 0 {
			out = append(out, varTok{Value: value[:i], Concrete: true})
		}
		rest := value[i+1:]
		m := varNameRE.FindString(rest)
		if m == "" {
			out = append(out, varTok{Value: "$", Concrete: true})
			value = rest
			continue
		}
		out = append(out, varTok{Value: m, Concrete: false})
		value = rest[len(m):]
	}
}

// defineSite is one variable->candidate-values contribution collected by
// getDefines, tagged with the scope it came from for diagnostics.
type defineSite struct {
	Values []string
	Scope  ElemRef
}

// getDefines walks upward from ref, collecting define/foreach/
// styleselector contributions, and follows Form-boundary back-edges into
// view-instantiation sites. visited guards against cycles: a set of
// (uri, element_start) keys already visited.
func (r *VariableResolver) getDefines(ref ElemRef, visited map[string]bool) map[string][]defineSite {
	out := map[string][]defineSite{}
	doc := r.scope.DocumentFor(ref.URI)
	if doc == nil {
		return out
	}
	key := ref.URI + "#" + func() string {
		if n := doc.Node(ref.ID); n != nil {
			return strconv.Itoa(n.Span.StartByte)
		}
		return strconv.Itoa(int(ref.ID))
	}()
	if visited[key] {
		return out
	}
	visited[key] = true

	child := doc.Node(ref.ID)
	if child == nil {
		return out
	}
	for {
		parent := doc.Node(child.Parent)
		if parent == nil || parent.Kind == KindDocument {
			break
		}
		// A <define>/<foreach>/<styleselector> contributes to every descendant
		// in its subtree, whether it is a sibling of the node we ascended
		// from or (for foreach/styleselector) the very container we're
		// ascending out of.
		for _, sibID := range parent.Children {
			if sibID == child.ID {
				continue
			}
			if sib := doc.Node(sibID); sib != nil {
				r.collectLocalDefines(doc, sib, out, ref.URI)
			}
		}
		r.collectLocalDefines(doc, parent, out, ref.URI)

		if strings.EqualFold(parent.Name, "Form") {
			formName := parent.AttrValue("name")
			if formName != "" {
				for _, site := range r.scope.ViewInstantiationSites(formName) {
					sub := r.getDefines(site, visited)
					mergeDefineSites(out, sub)
				}
			}
		}
		child = parent
	}
	return out
}

func mergeDefineSites(dst, src map[string][]defineSite) {
	for k, v := range src {
		dst[k] = append(dst[k], v...)
	}
}

// collectLocalDefines handles a single element's own contribution:
// <define>, <foreach>, <styleselector>.
func (r *VariableResolver) collectLocalDefines(doc *Document, n *Element, out map[string][]defineSite, uri string) {
	switch {
	case strings.EqualFold(n.Name, "define"):
		for _, a := range n.Attrs {
			val := a.Value
			if (strings.Contains(val, "@eval:") || strings.Contains(val, "@select:")) && !strings.Contains(val, "(") {
				val = "(" + val + ")"
			}
			out[a.Name] = append(out[a.Name], defineSite{Values: []string{val}, Scope: ElemRef{URI: uri, ID: n.ID}})
		}
	case strings.EqualFold(n.Name, "foreach"):
		v := n.AttrValue("variable")
		v = strings.TrimPrefix(v, "$")
		if v == "" {
			return
		}
		if inAttr, ok := n.Attr("in"); ok {
			vals := splitForeachList(inAttr.Value)
			out[v] = append(out[v], defineSite{Values: vals, Scope: ElemRef{URI: uri, ID: n.ID}})
			return
		}
		startS, hasStart := n.Attr("start")
		countS, hasCount := n.Attr("count")
		if hasStart && hasCount {
			start, errS := strconv.Atoi(startS.Value)
			count, errC := strconv.Atoi(countS.Value)
			if errS == nil && errC == nil && count <= 100 {
				vals := make([]string, 0, count)
				for i := 0; i < count; i++ {
					vals = append(vals, strconv.Itoa(start+i))
				}
				out[v] = append(out[v], defineSite{Values: vals, Scope: ElemRef{URI: uri, ID: n.ID}})
				return
			}
			out[v] = append(out[v], defineSite{
				Values: []string{"@foreach:(" + startS.Value + "," + countS.Value + ")"},
				Scope:  ElemRef{URI: uri, ID: n.ID},
			})
		}
	case strings.EqualFold(n.Name, "styleselector"):
		v := strings.TrimPrefix(n.AttrValue("variable"), "$")
		if v == "" {
			return
		}
		vals := strings.Fields(n.AttrValue("styles"))
		out[v] = append(out[v], defineSite{Values: vals, Scope: ElemRef{URI: uri, ID: n.ID}})
	}
}

func splitForeachList(s string) []string {
	s = strings.ReplaceAll(s, ",", " ")
	return strings.Fields(s)
}

// ResolveVariable expands value against the scope reachable from ref,
// returning the deduplicated set of fully concrete strings, or [value]
// itself if resolution could not complete.
func (r *VariableResolver) ResolveVariable(ref ElemRef, value string) []string {
	defines := r.getDefines(ref, map[string]bool{})
	toks := tokenizeValue(value)
	results := []string{""}
	for _, t := range toks {
		if t.Concrete {
			for i := range results {
				results[i] += t.Value
			}
			continue
		}
		candidates := r.resolveVarName(t.Value, defines)
		if len(candidates) == 0 {
			candidates = []string{"$" + t.Value}
		}
		var next []string
		for _, prefix := range results {
			for _, c := range candidates {
				if strings.Contains(c, "$"+t.Value) {
					// never substitute X by a value containing $X.
					continue
				}
				expanded := r.fixedPointExpand(c, defines, map[string]bool{t.Value: true})
				for _, e := range expanded {
					next = append(next, prefix+e)
				}
			}
		}
		if len(next) == 0 {
			next = []string{value}
			results = dedupe(next)
			return results
		}
		results = next
	}
	return dedupe(results)
}

// fixedPointExpand re-resolves a candidate value that itself contains
// further $tokens, to a fixed point, guarded against re-entering a
// variable already on the current substitution chain.
func (r *VariableResolver) fixedPointExpand(val string, defines map[string][]defineSite, chain map[string]bool) []string {
	if !strings.Contains(val, "$") {
		return []string{val}
	}
	toks := tokenizeValue(val)
	results := []string{""}
	for _, t := range toks {
		if t.Concrete {
			for i := range results {
				results[i] += t.Value
			}
			continue
		}
		if chain[t.Value] {
			for i := range results {
				results[i] += "$" + t.Value
			}
			continue
		}
		candidates := r.resolveVarName(t.Value, defines)
		if len(candidates) == 0 {
			for i := range results {
				results[i] += "$" + t.Value
			}
			continue
		}
		nextChain := map[string]bool{t.Value: true}
		for k, v := range chain {
			nextChain[k] = v
		}
		var next []string
		for _, prefix := range results {
			for _, c := range candidates {
				for _, e := range r.fixedPointExpand(c, defines, nextChain) {
					next = append(next, prefix+e)
				}
			}
		}
		results = next
	}
	return results
}

// resolveVarName implements the longest-name-match heuristic: reduce
// candidates by the shortest matching postfix length observed among
// defined keys, trying theme-metric resolution first.
func (r *VariableResolver) resolveVarName(name string, defines map[string][]defineSite) []string {
	if vals, ok := defines[name]; ok {
		return flattenDefineValues(vals)
	}
	if strings.HasPrefix(name, "Theme.") {
		if v, ok := r.resolveThemeMetric(strings.TrimPrefix(name, "Theme.")); ok {
			return []string{v}
		}
	}
	// Longest-postfix match: try progressively shorter dotted suffixes.
	best := -1
	var bestVals []string
	for key, sites := range defines {
		if key == name {
			continue
		}
		if strings.HasSuffix(name, "."+key) || strings.HasSuffix(key, "."+name) {
			l := len(key)
			if best == -1 || l < best {
				best = l
				bestVals = flattenDefineValues(sites)
			}
		}
	}
	return bestVals
}

func (r *VariableResolver) resolveThemeMetric(metric string) (string, bool) {
	d, err := loadBuiltinDefaults()
	if err != nil {
		return "", false
	}
	for _, m := range d.ThemeMetrics {
		if strings.EqualFold(m, metric) {
			return "0", true // concrete placeholder; actual metric values live in the theme, not the static model
		}
	}
	return "", false
}

func flattenDefineValues(sites []defineSite) []string {
	var out []string
	for _, s := range sites {
		out = append(out, s.Values...)
	}
	return dedupe(out)
}

func dedupe(vals []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, v := range vals {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}

// DefinitionSites returns the scope elements that contribute a value to
// name, reachable from ref — the go-to-definition/find-references entry
// point for "$name" attribute values.
func (r *VariableResolver) DefinitionSites(ref ElemRef, name string) []ElemRef {
	defines := r.getDefines(ref, map[string]bool{})
	sites, ok := defines[name]
	if !ok {
		return nil
	}
	out := make([]ElemRef, 0, len(sites))
	for _, s := range sites {
		out = append(out, s.Scope)
	}
	return out
}

// GetVariablesInScope returns every variable name defined in ref's scope
// whose name begins with prefix (the text after the last '$'), used to
// drive completion for "$" attribute values.
func (r *VariableResolver) GetVariablesInScope(ref ElemRef, prefix string) []string {
	defines := r.getDefines(ref, map[string]bool{})
	var out []string
	for k := range defines {
		if strings.HasPrefix(k, prefix) {
			out = append(out, k)
		}
	}
	if d, err := loadBuiltinDefaults(); err == nil {
		for _, m := range d.ThemeMetrics {
			full := "Theme." + m
			if strings.HasPrefix(full, prefix) {
				out = append(out, full)
			}
		}
	}
	sort.Strings(out)
	return out
}
