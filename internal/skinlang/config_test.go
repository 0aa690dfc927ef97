package skinlang

import "testing"

func TestLoadRepoConfig_MissingFileYieldsDefaults(t *testing.T) {
	probe := newFakeProbe()
	cfg, err := LoadRepoConfig(probe, "repo.json")
	if err != nil {
		t.Fatalf("LoadRepoConfig: %v", err)
	}
	want := DefaultRepoConfig()
	if len(cfg.Skins) != 1 || cfg.Skins[0] != want.Skins[0] {
		t.Fatalf("want default skins %v, got %v", want.Skins, cfg.Skins)
	}
	if len(cfg.ClassModels) != 1 || cfg.ClassModels[0] != want.ClassModels[0] {
		t.Fatalf("want default classmodels %v, got %v", want.ClassModels, cfg.ClassModels)
	}
	if len(cfg.Translations) != 1 || cfg.Translations[0] != want.Translations[0] {
		t.Fatalf("want default translations %v, got %v", want.Translations, cfg.Translations)
	}
}

func TestLoadRepoConfig_PerFieldDefaultsForOmittedKeys(t *testing.T) {
	probe := newFakeProbe()
	probe.put("repo.json", `{"skins": ["custom-skins/"]}`)
	cfg, err := LoadRepoConfig(probe, "repo.json")
	if err != nil {
		t.Fatalf("LoadRepoConfig: %v", err)
	}
	if len(cfg.Skins) != 1 || cfg.Skins[0] != "custom-skins/" {
		t.Fatalf("want overridden skins, got %v", cfg.Skins)
	}
	if len(cfg.ClassModels) != 1 || cfg.ClassModels[0] != "classmodels/" {
		t.Fatalf("want default classmodels for the omitted key, got %v", cfg.ClassModels)
	}
	if len(cfg.Translations) != 1 || cfg.Translations[0] != "translations/" {
		t.Fatalf("want default translations for the omitted key, got %v", cfg.Translations)
	}
}

func TestLoadRepoConfig_AllKeysOverridden(t *testing.T) {
	probe := newFakeProbe()
	probe.put("repo.json", `{
		"skins": ["a/", "b/"],
		"classmodels": ["models/"],
		"translations": ["i18n/"]
	}`)
	cfg, err := LoadRepoConfig(probe, "repo.json")
	if err != nil {
		t.Fatalf("LoadRepoConfig: %v", err)
	}
	if len(cfg.Skins) != 2 || cfg.Skins[0] != "a/" || cfg.Skins[1] != "b/" {
		t.Fatalf("want both overridden skins entries, got %v", cfg.Skins)
	}
	if len(cfg.ClassModels) != 1 || cfg.ClassModels[0] != "models/" {
		t.Fatalf("want overridden classmodels, got %v", cfg.ClassModels)
	}
	if len(cfg.Translations) != 1 || cfg.Translations[0] != "i18n/" {
		t.Fatalf("want overridden translations, got %v", cfg.Translations)
	}
}

func TestLoadRepoConfig_MalformedJSONReturnsDefaultsAndError(t *testing.T) {
	probe := newFakeProbe()
	probe.put("repo.json", `{not valid json`)
	cfg, err := LoadRepoConfig(probe, "repo.json")
	if err == nil {
		t.Fatalf("expected an error for malformed repo.json")
	}
	want := DefaultRepoConfig()
	if len(cfg.Skins) != 1 || cfg.Skins[0] != want.Skins[0] {
		t.Fatalf("want the default config returned alongside the error, got %v", cfg.Skins)
	}
}
