// Package config loads the ignore-pattern configuration document for d2p.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/d2ptools/d2p/internal/types"
	"github.com/d2ptools/d2p/internal/utils"
)

const (
	// DefaultConfigFileName is looked up in the working directory when no
	// explicit configuration path is provided.
	DefaultConfigFileName = "d2p.json"

	// errorConfigMissingFormat reports an explicitly requested configuration file that does not exist.
	errorConfigMissingFormat = "config file not found: %s"
	// errorConfigStatFormat reports a failure to inspect the configuration path.
	errorConfigStatFormat = "stat configuration %s: %w"
	// errorConfigIsDirectoryFormat reports a configuration path that is a directory.
	errorConfigIsDirectoryFormat = "configuration path %s is a directory"
	// errorConfigReadFormat reports a failure to read the configuration document.
	errorConfigReadFormat = "read configuration from %s: %w"
	// errorConfigDecodeFormat reports a failure to decode the configuration document.
	errorConfigDecodeFormat = "decode configuration from %s: %w"
)

// Settings holds the two named glob-pattern lists the traversal consumes.
// The original IGNORE_DIRS and IGNORE_FILES document keys match these fields
// case-insensitively.
type Settings struct {
	IgnoreDirectories []string `mapstructure:"ignore_dirs"`
	IgnoreFiles       []string `mapstructure:"ignore_files"`
}

// DefaultSettings returns the built-in ignore-pattern lists used when no
// configuration document is supplied.
func DefaultSettings() Settings {
	return Settings{
		IgnoreDirectories: []string{
			".git",
			".hg",
			".svn",
			".idea",
			".vscode",
			"__pycache__",
			".pytest_cache",
			".mypy_cache",
			".ipynb_checkpoints",
			"node_modules",
			"build",
			"dist",
			"target",
			"venv",
			".venv",
			"*.egg-info",
		},
		IgnoreFiles: []string{
			".DS_Store",
			".gitignore",
			"*.pyc",
			"*.pyo",
			"*.so",
			"*.o",
			"*.a",
			"*.dll",
			"*.exe",
			"*.bin",
			"*.lock",
			"*.log",
		},
	}
}

// LoadSettings resolves and loads the configuration document.
//
// An explicit file path must exist; a missing explicit path is a fatal error
// naming the attempted location. Without an explicit path, a
// DefaultConfigFileName in the working directory is used when present, and
// the built-in defaults apply otherwise.
func LoadSettings(workingDirectory string, explicitFilePath string) (Settings, error) {
	if explicitFilePath != "" {
		resolvedPath := explicitFilePath
		if !filepath.IsAbs(resolvedPath) {
			resolvedPath = filepath.Join(workingDirectory, resolvedPath)
		}
		return loadSettingsFromPath(resolvedPath, true)
	}

	localPath := filepath.Join(workingDirectory, DefaultConfigFileName)
	if _, statError := os.Stat(localPath); statError != nil {
		if os.IsNotExist(statError) {
			return DefaultSettings(), nil
		}
		return Settings{}, fmt.Errorf(errorConfigStatFormat, localPath, statError)
	}
	return loadSettingsFromPath(localPath, false)
}

// loadSettingsFromPath reads and decodes one configuration document.
func loadSettingsFromPath(configFilePath string, mustExist bool) (Settings, error) {
	fileInformation, statError := os.Stat(configFilePath)
	if statError != nil {
		if os.IsNotExist(statError) && mustExist {
			return Settings{}, fmt.Errorf(errorConfigMissingFormat, configFilePath)
		}
		return Settings{}, fmt.Errorf(errorConfigStatFormat, configFilePath, statError)
	}
	if fileInformation.IsDir() {
		return Settings{}, fmt.Errorf(errorConfigIsDirectoryFormat, configFilePath)
	}

	reader := viper.New()
	reader.SetConfigFile(configFilePath)
	if readError := reader.ReadInConfig(); readError != nil {
		return Settings{}, fmt.Errorf(errorConfigReadFormat, configFilePath, readError)
	}
	var loadedSettings Settings
	if decodeError := reader.Unmarshal(&loadedSettings); decodeError != nil {
		return Settings{}, fmt.Errorf(errorConfigDecodeFormat, configFilePath, decodeError)
	}
	return loadedSettings, nil
}

// WithOverrides unions the invocation-time ignore entries into the loaded
// lists. Duplicates are removed while the original ordering is preserved.
func (settings Settings) WithOverrides(extraDirectoryPatterns []string, extraFilePatterns []string) Settings {
	result := settings
	result.IgnoreDirectories = utils.DeduplicatePatterns(append(append([]string{}, settings.IgnoreDirectories...), extraDirectoryPatterns...))
	result.IgnoreFiles = utils.DeduplicatePatterns(append(append([]string{}, settings.IgnoreFiles...), extraFilePatterns...))
	return result
}

// ToIgnoreConfiguration converts the settings into the traversal's pattern sets.
func (settings Settings) ToIgnoreConfiguration() types.IgnoreConfiguration {
	return types.IgnoreConfiguration{
		DirectoryPatterns: settings.IgnoreDirectories,
		FilePatterns:      settings.IgnoreFiles,
	}
}
