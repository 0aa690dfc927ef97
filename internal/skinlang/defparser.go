// defparser.go — the Skin Definition Parser: cross-file scope resolution
// over the include/import graph rooted at a skin pack's skin.xml —
// is_defined, lookup_definition, find_definitions, namespace
// qualification, and External-pattern matching.
//
// Grounded on _examples/daios-ai-msg/modules.go's canonical-cache +
// cycle-detection-via-visited-set pattern (there: resolving module
// imports to a single canonical AST per path; here: resolving skin-pack
// Include/Import URLs to a single canonical SkinFileInfo per URI, with
// the same "already indexed, skip" short-circuit).
package skinlang

import (
	"path"
	"regexp"
	"sort"
	"strings"
)

// externalPattern is one repo-wide <External name="pat*"/> declaration.
type externalPattern struct {
	Name  string
	Regex *regexp.Regexp
	Elem  ElemRef
}

// ExternalRequest is one occurrence of an unresolved value matching an
// external pattern, recorded for root-file "not defined" reporting.
type ExternalRequest struct {
	Name     string
	Kind     DefinitionKind
	Location Location
}

// ScopeOptions tunes ForEachFileInScope's traversal.
type ScopeOptions struct {
	AllowForeignNamespaces bool
}

// SkinDefinitionParser is the cross-file scope authority: it owns the
// per-URI SkinFileInfo/Document cache and answers every scope query the
// checker and IntelliSense provider need.
type SkinDefinitionParser struct {
	probe FSProbe
	docs  DocumentProvider
	fs    *FilesystemHelper
	config RepoConfig
	repoRoot string

	// cm, when set via SetClassModel, lets indexFile resolve an
	// attribute's Uri-typedness while indexing form dependencies, so
	// well-known-URL-location stripping only applies to Uri-typed
	// attributes. nil in tests that exercise scope resolution without a
	// class model.
	cm *ClassModel

	infos        map[string]*SkinFileInfo
	docCache     map[string]*Document
	namespaces   map[string]string
	includeGraph map[string][]string
	packRootOf   map[string]string
	externals    map[string][]externalPattern

	currentPackRoot string
}

func NewSkinDefinitionParser(probe FSProbe, docs DocumentProvider) *SkinDefinitionParser {
	return &SkinDefinitionParser{
		probe:        probe,
		docs:         docs,
		fs:           NewFilesystemHelper(probe),
		config:       DefaultRepoConfig(),
		infos:        map[string]*SkinFileInfo{},
		docCache:     map[string]*Document{},
		namespaces:   map[string]string{},
		includeGraph: map[string][]string{},
		packRootOf:   map[string]string{},
		externals:    map[string][]externalPattern{},
	}
}

// SetRepoConfig installs the repo.json-derived configuration and its root
// directory.
func (p *SkinDefinitionParser) SetRepoConfig(repoRoot string, cfg RepoConfig) {
	p.repoRoot, p.config = repoRoot, cfg
}

func (p *SkinDefinitionParser) readText(uri string) (string, bool) {
	if p.docs != nil {
		if t, ok := p.docs.Get(uri); ok {
			return t, true
		}
	}
	return p.probe.ReadFile(uri)
}

// FindSkinPackRootFor delegates to the Filesystem Helper's root
// discovery.
func (p *SkinDefinitionParser) FindSkinPackRootFor(fileDir string) (string, bool) {
	return p.fs.FindSkinPackRoot(fileDir)
}

// ResolveURI resolves a reference against configured skins locations
// when it starts with "@pack", collapses ".."-relative paths, and
// otherwise resolves it relative to base.
func (p *SkinDefinitionParser) ResolveURI(ref, baseURI string) string {
	if ref == "" {
		return ref
	}
	if strings.HasPrefix(ref, "@") {
		pack := strings.TrimPrefix(ref, "@")
		for _, loc := range p.config.Skins {
			candidate := path.Join(p.repoRoot, loc, pack, "skin.xml")
			if p.probe.Exists(candidate) {
				return candidate
			}
		}
		base := "skins/"
		if len(p.config.Skins) > 0 {
			base = p.config.Skins[0]
		}
		return path.Join(p.repoRoot, base, pack, "skin.xml")
	}
	if strings.HasPrefix(ref, "/") {
		return path.Join(p.repoRoot, strings.TrimPrefix(ref, "/"))
	}
	return path.Clean(path.Join(path.Dir(baseURI), ref))
}

// Qualify prepends "NS/" unless value already contains '/', starts with
// '/' (explicit empty namespace), or kind is non-qualifiable.
func Qualify(namespace, value string, kind DefinitionKind) string {
	if namespace == "" || !kind.Qualifiable() {
		return value
	}
	if strings.HasPrefix(value, "/") {
		return strings.TrimPrefix(value, "/")
	}
	if strings.Contains(value, "/") {
		return value
	}
	return namespace + "/" + value
}

// SetClassModel wires the Class Model Manager in so indexFile can check
// attribute types while indexing; the two are constructed independently
// by NewAnalyzer, so this closes the loop after both exist.
func (p *SkinDefinitionParser) SetClassModel(cm *ClassModel) { p.cm = cm }

// IndexSkinPack parses rootSkinXMLURI and everything it reaches via
// Include/Import, populating the per-URI cache.
func (p *SkinDefinitionParser) IndexSkinPack(rootSkinXMLURI string) {
	p.currentPackRoot = rootSkinXMLURI
	p.indexFile(rootSkinXMLURI, "", false)
}

func (p *SkinDefinitionParser) indexFile(uri, namespace string, imported bool) {
	if p.infos[uri] != nil {
		return
	}
	text, ok := p.readText(uri)
	if !ok {
		// Missing imported/included files are silently ignored.
		return
	}
	doc := ParseDocument(uri, text)
	lines := NewLineIndex(text)
	p.docCache[uri] = doc
	info := BuildSkinFileInfo(doc, lines, namespace, p.cm)
	p.infos[uri] = info
	p.namespaces[uri] = namespace
	p.packRootOf[uri] = p.currentPackRoot

	root := doc.Root()
	if root == nil {
		return
	}
	for _, ext := range doc.ChildrenByName(root.ID, "External") {
		pat := ext.AttrValue("name")
		p.externals[p.currentPackRoot] = append(p.externals[p.currentPackRoot], externalPattern{
			Name: pat, Regex: globToRegex(pat), Elem: ElemRef{URI: uri, ID: ext.ID},
		})
	}
	for _, inc := range doc.ChildrenByName(root.ID, "Include") {
		childURI := p.ResolveURI(inc.AttrValue("url"), uri)
		childNS := inc.AttrValue("name")
		p.includeGraph[uri] = append(p.includeGraph[uri], childURI)
		p.indexFile(childURI, childNS, imported)
		if info.IncludedFiles == nil {
			info.IncludedFiles = map[string]bool{}
		}
		info.IncludedFiles[childURI] = true
	}
	if !imported {
		for _, imp := range doc.ChildrenByName(root.ID, "Import") {
			packURI := p.ResolveURI(imp.AttrValue("url"), uri)
			p.indexFile(packURI, namespace, true)
		}
	}
}

// globToRegex converts an External glob to an anchored regex: '*' -> '.*',
// every other metacharacter escaped, anchored at both ends unless the
// pattern begins with '$' (a variable pattern, anchored at start only).
func globToRegex(glob string) *regexp.Regexp {
	var b strings.Builder
	anchorEnd := !strings.HasPrefix(glob, "$")
	b.WriteString("^")
	for _, r := range glob {
		if r == '*' {
			b.WriteString(".*")
			continue
		}
		b.WriteString(regexp.QuoteMeta(string(r)))
	}
	if anchorEnd {
		b.WriteString("$")
	}
	re, err := regexp.Compile(b.String())
	if err != nil {
		return regexp.MustCompile("$^") // matches nothing
	}
	return re
}

func (p *SkinDefinitionParser) matchExternalPattern(uri, name string) (Location, bool) {
	root := p.packRootOf[uri]
	for _, ext := range p.externals[root] {
		if ext.Regex.MatchString(name) {
			doc := p.docCache[ext.Elem.URI]
			if doc == nil {
				continue
			}
			el := doc.Node(ext.Elem.ID)
			if el == nil {
				continue
			}
			lines := NewLineIndex(doc.Source)
			return locOf(ext.Elem.URI, lines, el.Span), true
		}
	}
	return Location{}, false
}

// ForEachFileInScope visits uri's own info first, depth-first through its
// include graph, then every remaining file sharing the same pack root.
// fn returning true stops the traversal early.
func (p *SkinDefinitionParser) ForEachFileInScope(uri string, opts ScopeOptions, fn func(*SkinFileInfo) bool) {
	root := p.packRootOf[uri]
	visited := map[string]bool{}
	var walk func(u string) bool
	walk = func(u string) bool {
		if visited[u] {
			return false
		}
		visited[u] = true
		info := p.infos[u]
		if info == nil {
			return false
		}
		if fn(info) {
			return true
		}
		for _, child := range p.includeGraph[u] {
			if walk(child) {
				return true
			}
		}
		return false
	}
	if walk(uri) {
		return
	}
	ownNS := p.namespaces[uri]
	var others []string
	for u := range p.infos {
		others = append(others, u)
	}
	sort.Strings(others)
	for _, u := range others {
		if visited[u] || p.packRootOf[u] != root {
			continue
		}
		info := p.infos[u]
		if info.Namespace != "" && info.Namespace != ownNS && !opts.AllowForeignNamespaces {
			continue
		}
		if fn(info) {
			return
		}
	}
}

type lookupHit struct {
	loc      Location
	override bool
}

// LookupDefinition resolves a non-variable definition name: gathers
// every scope hit, then collapses to the single override winner when
// exactly one exists.
func (p *SkinDefinitionParser) LookupDefinition(uri string, kind DefinitionKind, name string) []Location {
	var hits []lookupHit
	p.ForEachFileInScope(uri, ScopeOptions{}, func(info *SkinFileInfo) bool {
		bucket := info.Definitions[kind]
		if bucket == nil {
			return false
		}
		if loc, ok := bucket[name]; ok {
			hits = append(hits, lookupHit{loc: loc, override: info.overrideFlag(kind, name)})
		}
		return false
	})
	if len(hits) == 0 {
		if loc, ok := p.matchExternalPattern(uri, name); ok {
			return []Location{loc}
		}
		return nil
	}
	var overrides []lookupHit
	for _, h := range hits {
		if h.override {
			overrides = append(overrides, h)
		}
	}
	if len(overrides) == 1 {
		return []Location{overrides[0].loc}
	}
	out := make([]Location, len(hits))
	for i, h := range hits {
		out[i] = h.loc
	}
	return out
}

// IsResourceColorDefined reports whether name (expected in the "$C"-form
// resource colors are stored under) exists in any color scheme reachable
// from uri's scope, resource colors ("" scheme) included.
func (p *SkinDefinitionParser) IsResourceColorDefined(uri, name string) bool {
	found := false
	p.ForEachFileInScope(uri, ScopeOptions{}, func(info *SkinFileInfo) bool {
		for _, scheme := range info.ColorSchemes {
			if _, ok := scheme[name]; ok {
				found = true
				return true
			}
		}
		return false
	})
	return found
}

// IsDefined additionally consults External patterns.
func (p *SkinDefinitionParser) IsDefined(uri string, kind DefinitionKind, name string) bool {
	if p.IsDefinedStrict(uri, kind, name) {
		return true
	}
	_, ok := p.matchExternalPattern(uri, name)
	return ok
}

// IsDefinedStrict is the plain scope traversal without External fallback.
func (p *SkinDefinitionParser) IsDefinedStrict(uri string, kind DefinitionKind, name string) bool {
	found := false
	p.ForEachFileInScope(uri, ScopeOptions{}, func(info *SkinFileInfo) bool {
		bucket := info.Definitions[kind]
		if bucket == nil {
			return false
		}
		if _, ok := bucket[name]; ok {
			found = true
			return true
		}
		return false
	})
	return found
}

// FindDefinitions enumerates completions: deduplicated names across
// scope, own namespace stripped when present.
func (p *SkinDefinitionParser) FindDefinitions(uri string, kind DefinitionKind, prefix string) []string {
	ownNS := p.namespaces[uri]
	seen := map[string]bool{}
	var out []string
	p.ForEachFileInScope(uri, ScopeOptions{AllowForeignNamespaces: true}, func(info *SkinFileInfo) bool {
		for name := range info.Definitions[kind] {
			display := name
			if idx := strings.Index(display, "/"); idx >= 0 && display[:idx] == ownNS {
				display = display[idx+1:]
			}
			if prefix != "" && !strings.Contains(strings.ToLower(display), strings.ToLower(prefix)) {
				// Attribute-name completion filters by substring, not prefix;
				// definition-name completion inherits the same laxity.
				continue
			}
			if !seen[display] {
				seen[display] = true
				out = append(out, display)
			}
		}
		return false
	})
	sort.Strings(out)
	return out
}

// FindSkinFileInfo returns the cached info for uri, or nil.
func (p *SkinDefinitionParser) FindSkinFileInfo(uri string) *SkinFileInfo { return p.infos[uri] }

// DocumentFor implements ScopeProvider.
func (p *SkinDefinitionParser) DocumentFor(uri string) *Document { return p.docCache[uri] }

// ViewInstantiationSites implements ScopeProvider, scanning every indexed
// file's view-instantiation table for the form-boundary walk.
func (p *SkinDefinitionParser) ViewInstantiationSites(formName string) []ElemRef {
	var out []ElemRef
	for _, info := range p.infos {
		for _, vi := range info.ViewInstantiations[formName] {
			out = append(out, vi.Elem)
		}
	}
	return out
}

func definitionKindForMask(mask AttributeTypeMask) (DefinitionKind, bool) {
	switch {
	case mask.HasAny(TStyle | TStyleArray):
		return DefStyle, true
	case mask.HasAny(TImage):
		return DefImage, true
	case mask.HasAny(TShape):
		return DefShape, true
	case mask.HasAny(TFont):
		return DefFont, true
	case mask.HasAny(TForm):
		return DefForm, true
	case mask.HasAny(TColor):
		return DefColor, true
	default:
		return 0, false
	}
}

// ComputeExternalRequests scans every attribute of a definition-valued
// type whose value is not strictly defined, but matches a repo External
// pattern; each becomes a pending request reported at the root file.
func (p *SkinDefinitionParser) ComputeExternalRequests(cm *ClassModel) []ExternalRequest {
	var out []ExternalRequest
	var uris []string
	for u := range p.docCache {
		uris = append(uris, u)
	}
	sort.Strings(uris)
	for _, uri := range uris {
		doc := p.docCache[uri]
		lines := NewLineIndex(doc.Source)
		var walk func(id NodeID)
		walk = func(id NodeID) {
			el := doc.Node(id)
			if el == nil || el.Kind != KindElement {
				return
			}
			for _, a := range el.Attrs {
				mask, _ := cm.FindAttributeType(el.Name, a.Name)
				kind, ok := definitionKindForMask(mask)
				if !ok || a.Value == "" {
					continue
				}
				if p.IsDefinedStrict(uri, kind, a.Value) {
					continue
				}
				if _, matched := p.matchExternalPattern(uri, a.Value); matched {
					out = append(out, ExternalRequest{Name: a.Value, Kind: kind, Location: locOf(uri, lines, a.ValueSpan)})
				}
			}
			for _, c := range el.Children {
				walk(c)
			}
		}
		walk(doc.RootID)
	}
	return out
}
