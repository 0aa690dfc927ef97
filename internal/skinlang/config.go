// config.go — repo.json loading (repository configuration).
//
// The format is JSON with exactly three optional array keys; encoding/json
// is the right tool (no schema validation, defaulting, or environment
// overlay is called for), so no third-party config library is substituted
// here.
package skinlang

import "encoding/json"

// RepoConfig is the decoded shape of repo.json.
type RepoConfig struct {
	Skins       []string `json:"skins"`
	ClassModels []string `json:"classmodels"`
	Translations []string `json:"translations"`
}

// DefaultRepoConfig is applied per-field when repo.json omits a key:
// missing entries default to skins/, classmodels/, translations/.
func DefaultRepoConfig() RepoConfig {
	return RepoConfig{
		Skins:        []string{"skins/"},
		ClassModels:  []string{"classmodels/"},
		Translations: []string{"translations/"},
	}
}

// LoadRepoConfig reads and decodes repo.json at path via probe, applying
// per-field defaults for omitted keys. A missing file yields the full
// default config with no error (repo.json is optional).
func LoadRepoConfig(probe FSProbe, path string) (RepoConfig, error) {
	cfg := DefaultRepoConfig()
	text, ok := probe.ReadFile(path)
	if !ok {
		return cfg, nil
	}
	var raw struct {
		Skins        []string `json:"skins"`
		ClassModels  []string `json:"classmodels"`
		Translations []string `json:"translations"`
	}
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return cfg, err
	}
	if raw.Skins != nil {
		cfg.Skins = raw.Skins
	}
	if raw.ClassModels != nil {
		cfg.ClassModels = raw.ClassModels
	}
	if raw.Translations != nil {
		cfg.Translations = raw.Translations
	}
	return cfg, nil
}

// SkinElementsModelFile and VisualStylesModelFile are the two fixed
// filenames the class-model files must carry.
const (
	SkinElementsModelFile = "Skin Elements.classModel"
	VisualStylesModelFile = "Visual Styles.classModel"
)
