// defaults.go — decodes the embedded tables of default colors, theme
// metrics, the localized-language list and the Layout.layout.class
// special cases. The class-model files are not read for these tables, so
// the embedded copy is their only source.
//
// Uses gopkg.in/yaml.v3 (from eykd-prosemark-go) rather than a Go literal
// map so the fallback tables are auditable/editable independently of
// code.
package skinlang

import (
	_ "embed"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

type builtinDefaults struct {
	DefaultColors           map[string]string   `yaml:"defaultColors"`
	ThemeMetrics            []string             `yaml:"themeMetrics"`
	Languages               []string             `yaml:"languages"`
	LayoutClassSpecialCases map[string][]string `yaml:"layoutClassSpecialCases"`
}

var (
	builtinOnce sync.Once
	builtin     builtinDefaults
	builtinErr  error
)

func loadBuiltinDefaults() (builtinDefaults, error) {
	builtinOnce.Do(func() {
		builtinErr = yaml.Unmarshal(defaultsYAML, &builtin)
	})
	return builtin, builtinErr
}
