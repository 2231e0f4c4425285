package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/silverl/distill/internal/distillerr"
	"github.com/silverl/distill/pkg/model"
)

// Load loads configuration from multiple sources, in priority order:
//  1. Built-in defaults
//  2. Global config (~/.config/distill/)
//  3. Project config (<directory>/.distill/)
//  4. Environment variables
func Load(directory string) (*model.Config, error) {
	config := defaultConfig()

	globalPath := GetPaths().Config
	if err := loadConfigFile(filepath.Join(globalPath, "distill.json"), config); err != nil {
		return nil, err
	}
	if err := loadConfigFile(filepath.Join(globalPath, "distill.jsonc"), config); err != nil {
		return nil, err
	}

	if directory != "" {
		if err := loadConfigFile(filepath.Join(directory, ".distill", "distill.json"), config); err != nil {
			return nil, err
		}
		if err := loadConfigFile(filepath.Join(directory, ".distill", "distill.jsonc"), config); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// defaultConfig returns the built-in defaults merged over by file and
// environment layers.
func defaultConfig() *model.Config {
	return &model.Config{
		Output: model.OutputConfig{Directory: "./distilled"},
		Sessions: model.SessionsConfig{
			SinceDays: 30,
		},
		Journal: model.JournalConfig{
			Style:            "reflective",
			TargetWordCount:  500,
			MemoryWindowDays: 14,
		},
		Blog: model.BlogConfig{
			TargetWordCount: 1200,
		},
		LLM: model.LLMConfig{
			Backend:        "subprocess",
			TimeoutSeconds: 120,
			Providers:      make(map[string]model.ProviderConfig),
		},
		Publishers: make(map[string]model.PublisherConfig),
	}
}

// loadConfigFile loads and merges a single config file. A missing file is
// not an error; a present file with an unknown top-level key is.
func loadConfigFile(path string, config *model.Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}

	data = stripJSONComments(data)

	var fileConfig model.Config
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&fileConfig); err != nil {
		return fmt.Errorf("%s: %w: %v", path, distillerr.UnknownConfigKey, err)
	}

	mergeConfig(config, &fileConfig)
	return nil
}

// stripJSONComments removes // and /* */ comments from JSONC source.
func stripJSONComments(data []byte) []byte {
	singleLine := regexp.MustCompile(`//.*$`)
	lines := bytes.Split(data, []byte("\n"))
	for i, line := range lines {
		lines[i] = singleLine.ReplaceAll(line, nil)
	}
	data = bytes.Join(lines, []byte("\n"))

	multiLine := regexp.MustCompile(`/\*[\s\S]*?\*/`)
	return multiLine.ReplaceAll(data, nil)
}

// mergeConfig merges source into target, field by field. Maps are merged
// key by key; slices and scalars are replaced wholesale when present.
func mergeConfig(target, source *model.Config) {
	if source.Output.Directory != "" {
		target.Output.Directory = source.Output.Directory
	}

	if len(source.Sessions.Sources) > 0 {
		target.Sessions.Sources = source.Sessions.Sources
	}
	if source.Sessions.IncludeGlobal {
		target.Sessions.IncludeGlobal = true
	}
	if source.Sessions.SinceDays != 0 {
		target.Sessions.SinceDays = source.Sessions.SinceDays
	}

	if len(source.Intake.Feeds) > 0 {
		target.Intake.Feeds = source.Intake.Feeds
	}
	if source.Intake.BrowserHistoryPath != "" {
		target.Intake.BrowserHistoryPath = source.Intake.BrowserHistoryPath
	}
	if source.Intake.NewslettersPath != "" {
		target.Intake.NewslettersPath = source.Intake.NewslettersPath
	}

	if source.Journal.Style != "" {
		target.Journal.Style = source.Journal.Style
	}
	if source.Journal.TargetWordCount != 0 {
		target.Journal.TargetWordCount = source.Journal.TargetWordCount
	}
	if source.Journal.MemoryWindowDays != 0 {
		target.Journal.MemoryWindowDays = source.Journal.MemoryWindowDays
	}

	if source.Blog.TargetWordCount != 0 {
		target.Blog.TargetWordCount = source.Blog.TargetWordCount
	}
	if source.Blog.IncludeDiagrams {
		target.Blog.IncludeDiagrams = true
	}
	if len(source.Blog.Platforms) > 0 {
		target.Blog.Platforms = source.Blog.Platforms
	}

	if len(source.Projects) > 0 {
		target.Projects = source.Projects
	}

	if source.LLM.Backend != "" {
		target.LLM.Backend = source.LLM.Backend
	}
	if source.LLM.Model != "" {
		target.LLM.Model = source.LLM.Model
	}
	if source.LLM.TimeoutSeconds != 0 {
		target.LLM.TimeoutSeconds = source.LLM.TimeoutSeconds
	}
	if len(source.LLM.Subprocess.Command) > 0 {
		target.LLM.Subprocess = source.LLM.Subprocess
	}
	if source.LLM.HTTP.Endpoint != "" {
		target.LLM.HTTP = source.LLM.HTTP
	}
	if source.LLM.Providers != nil {
		if target.LLM.Providers == nil {
			target.LLM.Providers = make(map[string]model.ProviderConfig)
		}
		for k, v := range source.LLM.Providers {
			target.LLM.Providers[k] = v
		}
	}

	if source.Publishers != nil {
		if target.Publishers == nil {
			target.Publishers = make(map[string]model.PublisherConfig)
		}
		for k, v := range source.Publishers {
			target.Publishers[k] = v
		}
	}
}

// applyEnvOverrides applies the highest-priority configuration layer.
func applyEnvOverrides(config *model.Config) {
	providerEnvMap := map[string]string{
		"anthropic": "ANTHROPIC_API_KEY",
		"openai":    "OPENAI_API_KEY",
	}

	for provider, envVar := range providerEnvMap {
		apiKey := os.Getenv(envVar)
		if apiKey == "" {
			continue
		}
		if config.LLM.Providers == nil {
			config.LLM.Providers = make(map[string]model.ProviderConfig)
		}
		p := config.LLM.Providers[provider]
		if p.APIKey == "" {
			p.APIKey = apiKey
			config.LLM.Providers[provider] = p
		}
	}

	if m := os.Getenv("DISTILL_MODEL"); m != "" {
		config.LLM.Model = m
	}
}

// Save writes config as indented JSON to path, creating parent directories
// as needed.
func Save(config *model.Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
