package config

import (
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
	"relloyd/focustrack/models"
)

var (
	defaultCategoryRulesFilePath = "category-rules.yaml"
	categoryRulesFileName        = "category-rules.yaml"
)

// Embed the default rule lists into the binary at compile time
//
//go:embed category-rules.yaml
var embeddedRules embed.FS

// CategoryRulesConfig represents the YAML structure
type CategoryRulesConfig struct {
	Categories models.MapCategoryDomains `yaml:"categories"` // category: [domain1, domain2, ...]
}

// LoadCategoryRules returns the category rule lists. A user-supplied file in
// the app home dir overrides the embedded defaults; when it is absent the
// embedded lists are used.
func LoadCategoryRules() (models.MapCategoryDomains, error) {
	filePath, err := FnDefaultCreateAppHomeDirAndGetConfigFilePath(defaultCategoryRulesFilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create home directory for category-rules config file: %w", err)
	}

	_, err = os.Stat(filePath)
	if err != nil && errors.Is(err, fs.ErrNotExist) {
		return loadEmbeddedRules()
	}

	yamlFile, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("error reading category rules file: %w", err)
	}

	return parseCategoryRules(yamlFile)
}

// loadEmbeddedRules reads the embedded default rule lists.
func loadEmbeddedRules() (models.MapCategoryDomains, error) {
	file, err := embeddedRules.Open(categoryRulesFileName)
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded rules file: %w", err)
	}
	defer func(file fs.File) {
		_ = file.Close()
	}(file)

	b, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded rules file: %w", err)
	}

	return parseCategoryRules(b)
}

func parseCategoryRules(b []byte) (models.MapCategoryDomains, error) {
	var cfg CategoryRulesConfig
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling category rules: %w", err)
	}
	if len(cfg.Categories) == 0 {
		return nil, fmt.Errorf("category rules are empty")
	}
	return cfg.Categories, nil
}
