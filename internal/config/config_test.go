package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte(body), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func TestLoad_DefaultWhenMissing(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	def := DefaultConfig()
	if cfg.FormulaMaxChars != def.FormulaMaxChars {
		t.Fatalf("FormulaMaxChars = %d, want %d", cfg.FormulaMaxChars, def.FormulaMaxChars)
	}
	if cfg.HTTPPort != 5000 {
		t.Errorf("HTTPPort = %d, want 5000", cfg.HTTPPort)
	}
	if cfg.RateLimitPerMinute != 100 {
		t.Errorf("RateLimitPerMinute = %d, want 100", cfg.RateLimitPerMinute)
	}
	if len(cfg.ParameterSamples) != 2 || cfg.ParameterSamples[0] != 0 || cfg.ParameterSamples[1] != 1 {
		t.Errorf("ParameterSamples = %v, want [0 1]", cfg.ParameterSamples)
	}
}

func TestLoad_OverridesFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	writeConfig(t, tmpDir, `{"formula_max_chars": 500, "http_port": 8080, "log_level": "DEBUG"}`)

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.FormulaMaxChars != 500 {
		t.Fatalf("FormulaMaxChars = %d, want %d", cfg.FormulaMaxChars, 500)
	}
	if cfg.HTTPPort != 8080 {
		t.Errorf("HTTPPort = %d, want 8080", cfg.HTTPPort)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "debug")
	}
	if cfg.HTTPBind != "127.0.0.1" {
		t.Errorf("HTTPBind = %q, want default", cfg.HTTPBind)
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	writeConfig(t, tmpDir, `{not json}`)

	if _, err := Load(tmpDir); err == nil {
		t.Fatalf("Load() expected error, got nil")
	}
}

func TestLoad_ParameterSamplesReplaced(t *testing.T) {
	tmpDir := t.TempDir()
	writeConfig(t, tmpDir, `{"parameter_samples": [-1, 0, 2]}`)

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(cfg.ParameterSamples) != 3 || cfg.ParameterSamples[0] != -1 || cfg.ParameterSamples[2] != 2 {
		t.Errorf("ParameterSamples = %v, want [-1 0 2]", cfg.ParameterSamples)
	}
}

func TestLoad_DisabledTools(t *testing.T) {
	tmpDir := t.TempDir()
	writeConfig(t, tmpDir, `{"disabled_tools": ["math_purge", "math_history"]}`)

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(cfg.DisabledTools) != 2 {
		t.Fatalf("DisabledTools length = %d, want 2", len(cfg.DisabledTools))
	}
	if cfg.DisabledTools[0] != "math_purge" {
		t.Errorf("DisabledTools[0] = %q, want %q", cfg.DisabledTools[0], "math_purge")
	}
}

func TestLoadWithRepo_BothPresent(t *testing.T) {
	globalDir := t.TempDir()
	repoRoot := t.TempDir()

	writeConfig(t, globalDir, `{"formula_max_chars": 800, "disabled_tools": ["math_purge"]}`)
	writeConfig(t, filepath.Join(repoRoot, ".algenova"), `{"formula_max_chars": 300, "disabled_tools": ["math_history"]}`)

	cfg, err := LoadWithRepo(globalDir, repoRoot)
	if err != nil {
		t.Fatalf("LoadWithRepo() error = %v", err)
	}
	if cfg.FormulaMaxChars != 300 {
		t.Errorf("FormulaMaxChars = %d, want 300 (repo override)", cfg.FormulaMaxChars)
	}
	if len(cfg.DisabledTools) != 2 {
		t.Errorf("DisabledTools length = %d, want 2", len(cfg.DisabledTools))
	}
}

func TestLoadWithRepo_NeitherPresent(t *testing.T) {
	cfg, err := LoadWithRepo(t.TempDir(), t.TempDir())
	if err != nil {
		t.Fatalf("LoadWithRepo() error = %v", err)
	}
	if cfg.FormulaMaxChars != 2000 {
		t.Errorf("FormulaMaxChars = %d, want 2000", cfg.FormulaMaxChars)
	}
	if len(cfg.DisabledTools) != 0 {
		t.Errorf("DisabledTools = %v, want empty", cfg.DisabledTools)
	}
}

func TestMerge_ScalarOverride(t *testing.T) {
	base := &Config{FormulaMaxChars: 1000, DBMaxOpenConns: 5, HTTPBind: "127.0.0.1"}
	overlay := &Config{FormulaMaxChars: 50, HTTPBind: "0.0.0.0"}

	result := Merge(base, overlay)

	if result.FormulaMaxChars != 50 {
		t.Errorf("FormulaMaxChars = %d, want 50 (overlay)", result.FormulaMaxChars)
	}
	if result.DBMaxOpenConns != 5 {
		t.Errorf("DBMaxOpenConns = %d, want 5 (base, overlay is zero)", result.DBMaxOpenConns)
	}
	if result.HTTPBind != "0.0.0.0" {
		t.Errorf("HTTPBind = %q, want overlay value", result.HTTPBind)
	}
}

func TestMerge_BooleanOr(t *testing.T) {
	result := Merge(&Config{DisableHistory: true}, &Config{DisableMarkup: true})

	if !result.DisableHistory {
		t.Error("DisableHistory should be true (base OR overlay)")
	}
	if !result.DisableMarkup {
		t.Error("DisableMarkup should be true (base OR overlay)")
	}
}

func TestMerge_ArrayMergeDedup(t *testing.T) {
	base := &Config{DisabledTools: []string{"math_purge", "math_fetch"}}
	overlay := &Config{DisabledTools: []string{" math_fetch ", "math_history"}}

	result := Merge(base, overlay)

	if len(result.DisabledTools) != 3 {
		t.Fatalf("DisabledTools = %v, want 3 merged entries", result.DisabledTools)
	}
	has := make(map[string]bool)
	for _, s := range result.DisabledTools {
		has[s] = true
	}
	for _, want := range []string{"math_purge", "math_fetch", "math_history"} {
		if !has[want] {
			t.Errorf("DisabledTools missing %q", want)
		}
	}
}

func TestFindRepoConfig_InParentDir(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := writeConfig(t, filepath.Join(tmpDir, ".algenova"), `{}`)

	subdir := filepath.Join(tmpDir, "subdir", "deeper")
	if err := os.MkdirAll(subdir, 0755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}

	if found := FindRepoConfig(subdir); found != configPath {
		t.Errorf("FindRepoConfig() = %q, want %q", found, configPath)
	}
}

func TestFindRepoConfig_NotFound(t *testing.T) {
	if found := FindRepoConfig(t.TempDir()); found != "" {
		t.Errorf("FindRepoConfig() = %q, want empty string", found)
	}
}
