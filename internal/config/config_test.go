package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/silverl/distill/internal/distillerr"
	"github.com/silverl/distill/pkg/model"
)

// writeProjectConfig drops a .distill/<name> config file into dir.
func writeProjectConfig(t *testing.T, dir, name, content string) {
	t.Helper()
	configDir := filepath.Join(dir, ".distill")
	require.NoError(t, os.MkdirAll(configDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(configDir, name), []byte(content), 0644))
}

// isolateGlobalConfig points the global config layer at an empty temp
// directory so a developer's real ~/.config/distill never leaks into a
// test.
func isolateGlobalConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	return dir
}

func TestLoadDefaults(t *testing.T) {
	isolateGlobalConfig(t)

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "./distilled", cfg.Output.Directory)
	assert.Equal(t, 30, cfg.Sessions.SinceDays)
	assert.Equal(t, "reflective", cfg.Journal.Style)
	assert.Equal(t, 500, cfg.Journal.TargetWordCount)
	assert.Equal(t, 14, cfg.Journal.MemoryWindowDays)
	assert.Equal(t, 1200, cfg.Blog.TargetWordCount)
	assert.Equal(t, "subprocess", cfg.LLM.Backend)
	assert.Equal(t, 120, cfg.LLM.TimeoutSeconds)
}

func TestLoadProjectConfig(t *testing.T) {
	isolateGlobalConfig(t)
	dir := t.TempDir()
	writeProjectConfig(t, dir, "distill.json", `{
		"output": {"directory": "/tmp/distill-out"},
		"journal": {"style": "dev-journal", "targetWordCount": 800}
	}`)

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/distill-out", cfg.Output.Directory)
	assert.Equal(t, "dev-journal", cfg.Journal.Style)
	assert.Equal(t, 800, cfg.Journal.TargetWordCount)
	// Untouched fields keep their defaults.
	assert.Equal(t, 14, cfg.Journal.MemoryWindowDays)
}

func TestLoadJSONCComments(t *testing.T) {
	isolateGlobalConfig(t)
	dir := t.TempDir()
	writeProjectConfig(t, dir, "distill.jsonc", `{
		// the directory everything lands in
		"output": {"directory": "/tmp/commented"},
		/* block comment */
		"blog": {"includeDiagrams": true}
	}`)

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/commented", cfg.Output.Directory)
	assert.True(t, cfg.Blog.IncludeDiagrams)
}

func TestLoadRejectsUnknownTopLevelKey(t *testing.T) {
	isolateGlobalConfig(t)
	dir := t.TempDir()
	writeProjectConfig(t, dir, "distill.json", `{"outptu": {"directory": "/typo"}}`)

	_, err := Load(dir)
	require.Error(t, err)
	assert.True(t, errors.Is(err, distillerr.UnknownConfigKey))
}

func TestProjectConfigOverridesGlobal(t *testing.T) {
	globalHome := isolateGlobalConfig(t)
	globalDir := filepath.Join(globalHome, "distill")
	require.NoError(t, os.MkdirAll(globalDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(globalDir, "distill.json"), []byte(`{
		"journal": {"style": "global-style", "targetWordCount": 300},
		"blog": {"targetWordCount": 900}
	}`), 0644))

	dir := t.TempDir()
	writeProjectConfig(t, dir, "distill.json", `{"journal": {"style": "project-style"}}`)

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "project-style", cfg.Journal.Style)
	// Values only the global layer set survive.
	assert.Equal(t, 300, cfg.Journal.TargetWordCount)
	assert.Equal(t, 900, cfg.Blog.TargetWordCount)
}

func TestEnvOverridesProviderKeysAndModel(t *testing.T) {
	isolateGlobalConfig(t)
	t.Setenv("ANTHROPIC_API_KEY", "sk-test-123")
	t.Setenv("DISTILL_MODEL", "anthropic/claude-sonnet-4")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "sk-test-123", cfg.LLM.Providers["anthropic"].APIKey)
	assert.Equal(t, "anthropic/claude-sonnet-4", cfg.LLM.Model)
}

func TestEnvDoesNotClobberExplicitAPIKey(t *testing.T) {
	isolateGlobalConfig(t)
	t.Setenv("OPENAI_API_KEY", "sk-env")
	dir := t.TempDir()
	writeProjectConfig(t, dir, "distill.json", `{
		"llm": {"providers": {"openai": {"apiKey": "sk-explicit"}}}
	}`)

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "sk-explicit", cfg.LLM.Providers["openai"].APIKey)
}

func TestMergeConfigMapsMergeKeyByKey(t *testing.T) {
	target := defaultConfig()
	target.Publishers["vault"] = model.PublisherConfig{Type: "vault", Enabled: true}

	source := &model.Config{
		Publishers: map[string]model.PublisherConfig{
			"cms": {Type: "cms", Enabled: true, Target: "https://cms.example.com"},
		},
	}
	mergeConfig(target, source)

	assert.Len(t, target.Publishers, 2)
	assert.Equal(t, "vault", target.Publishers["vault"].Type)
	assert.Equal(t, "https://cms.example.com", target.Publishers["cms"].Target)
}

func TestMergeConfigSlicesReplaceWholesale(t *testing.T) {
	target := defaultConfig()
	target.Sessions.Sources = []string{"/old/root"}

	source := &model.Config{
		Sessions: model.SessionsConfig{Sources: []string{"/new/a", "/new/b"}},
	}
	mergeConfig(target, source)

	assert.Equal(t, []string{"/new/a", "/new/b"}, target.Sessions.Sources)
}

func TestSaveRoundTrip(t *testing.T) {
	isolateGlobalConfig(t)
	dir := t.TempDir()
	cfg := defaultConfig()
	cfg.Output.Directory = filepath.Join(dir, "out")
	cfg.Projects = []model.ProjectDescriptor{{Name: "alpha", Description: "the alpha project"}}

	path := filepath.Join(dir, ".distill", "distill.json")
	require.NoError(t, Save(cfg, path))

	loaded, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, cfg.Output.Directory, loaded.Output.Directory)
	require.Len(t, loaded.Projects, 1)
	assert.Equal(t, "alpha", loaded.Projects[0].Name)
}

func TestMissingConfigFilesAreNotAnError(t *testing.T) {
	isolateGlobalConfig(t)
	_, err := Load(t.TempDir())
	assert.NoError(t, err)
}

func TestStripJSONComments(t *testing.T) {
	in := []byte("{\n// line comment\n\"a\": 1, /* block */ \"b\": 2\n}")
	out := stripJSONComments(in)
	assert.NotContains(t, string(out), "line comment")
	assert.NotContains(t, string(out), "block")
}
