package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/temirov/fuse/internal/utils"
)

// LoadOptions controls how application configuration is discovered.
type LoadOptions struct {
	WorkingDirectory string
	ExplicitFilePath string
	// HomeDirectory overrides os.UserHomeDir when set.
	HomeDirectory string
}

// ApplicationConfiguration holds defaults applied before command line flags.
// Unset pointer fields leave the built-in default in place.
type ApplicationConfiguration struct {
	Format          string             `mapstructure:"format"`
	LineNumbers     *bool              `mapstructure:"line_numbers"`
	TableOfContents string             `mapstructure:"toc"`
	AbsolutePaths   *bool              `mapstructure:"absolute_paths"`
	Copy            *bool              `mapstructure:"copy"`
	Summary         *bool              `mapstructure:"summary"`
	Tokens          TokenConfiguration `mapstructure:"tokens"`
	Paths           PathConfiguration  `mapstructure:"paths"`
	// Sources lists the files that contributed, in load order.
	Sources []string `mapstructure:"-"`
}

// TokenConfiguration controls token counting defaults.
type TokenConfiguration struct {
	Enabled *bool  `mapstructure:"enabled"`
	Model   string `mapstructure:"model"`
}

// PathConfiguration configures selection rules for traversal.
type PathConfiguration struct {
	Extensions      []string `mapstructure:"extensions"`
	Ignore          []string `mapstructure:"ignore"`
	IncludeHidden   *bool    `mapstructure:"include_hidden"`
	IgnoreFilesOnly *bool    `mapstructure:"ignore_files_only"`
	UseGitignore    *bool    `mapstructure:"use_gitignore"`
	IncludeGit      *bool    `mapstructure:"include_git"`
	FollowSymlinks  *bool    `mapstructure:"follow_symlinks"`
}

// GlobalConfigurationPath returns the global configuration file below homeDirectory.
func GlobalConfigurationPath(homeDirectory string) string {
	return filepath.Join(homeDirectory, utils.GlobalConfigDirectoryName, utils.GlobalConfigFileName)
}

// LoadApplicationConfiguration loads configuration from the global file and
// then the local (or explicit) file, the latter overriding the former.
func LoadApplicationConfiguration(options LoadOptions) (ApplicationConfiguration, error) {
	workingDirectory := options.WorkingDirectory
	if workingDirectory == "" {
		currentDirectory, err := os.Getwd()
		if err != nil {
			return ApplicationConfiguration{}, fmt.Errorf("determine working directory: %w", err)
		}
		workingDirectory = currentDirectory
	}

	var merged ApplicationConfiguration

	homeDirectory := options.HomeDirectory
	if homeDirectory == "" {
		if resolvedHome, err := os.UserHomeDir(); err == nil {
			homeDirectory = resolvedHome
		}
	}
	if homeDirectory != "" {
		globalPath := GlobalConfigurationPath(homeDirectory)
		globalConfig, found, loadErr := loadConfigurationFromPath(globalPath, false)
		if loadErr != nil {
			return ApplicationConfiguration{}, loadErr
		}
		if found {
			merged = merged.Merge(globalConfig)
			merged.Sources = append(merged.Sources, globalPath)
		}
	}

	localPath, explicit := resolveLocalConfigPath(workingDirectory, options.ExplicitFilePath)
	localConfig, found, loadErr := loadConfigurationFromPath(localPath, explicit)
	if loadErr != nil {
		return ApplicationConfiguration{}, loadErr
	}
	if found {
		merged = merged.Merge(localConfig)
		merged.Sources = append(merged.Sources, localPath)
	}

	merged.Paths.Extensions = utils.NormalizeExtensions(merged.Paths.Extensions)
	merged.Paths.Ignore = utils.DeduplicatePatterns(merged.Paths.Ignore)

	return merged, nil
}

func resolveLocalConfigPath(workingDirectory, explicitPath string) (string, bool) {
	if explicitPath != "" {
		if filepath.IsAbs(explicitPath) {
			return explicitPath, true
		}
		return filepath.Join(workingDirectory, explicitPath), true
	}
	return filepath.Join(workingDirectory, utils.ConfigFileName), false
}

// loadConfigurationFromPath reads one YAML file. A missing file is an error
// only when it was requested explicitly.
func loadConfigurationFromPath(path string, required bool) (ApplicationConfiguration, bool, error) {
	info, statErr := os.Stat(path)
	if statErr != nil {
		if os.IsNotExist(statErr) && !required {
			return ApplicationConfiguration{}, false, nil
		}
		return ApplicationConfiguration{}, false, fmt.Errorf("stat configuration %s: %w", path, statErr)
	}
	if info.IsDir() {
		return ApplicationConfiguration{}, false, fmt.Errorf("configuration path %s is a directory", path)
	}

	reader := viper.New()
	reader.SetConfigFile(path)
	reader.SetConfigType("yaml")
	if readErr := reader.ReadInConfig(); readErr != nil {
		return ApplicationConfiguration{}, false, fmt.Errorf("read configuration from %s: %w", path, readErr)
	}
	var config ApplicationConfiguration
	if decodeErr := reader.Unmarshal(&config); decodeErr != nil {
		return ApplicationConfiguration{}, false, fmt.Errorf("decode configuration from %s: %w", path, decodeErr)
	}
	return config, true, nil
}

// Merge overlays override onto the receiver returning the combined configuration.
func (config ApplicationConfiguration) Merge(override ApplicationConfiguration) ApplicationConfiguration {
	result := config
	if override.Format != "" {
		result.Format = override.Format
	}
	if override.TableOfContents != "" {
		result.TableOfContents = override.TableOfContents
	}
	result.LineNumbers = overlayBool(result.LineNumbers, override.LineNumbers)
	result.AbsolutePaths = overlayBool(result.AbsolutePaths, override.AbsolutePaths)
	result.Copy = overlayBool(result.Copy, override.Copy)
	result.Summary = overlayBool(result.Summary, override.Summary)
	result.Tokens = result.Tokens.merge(override.Tokens)
	result.Paths = result.Paths.merge(override.Paths)
	result.Sources = append([]string{}, config.Sources...)
	return result
}

func (config TokenConfiguration) merge(override TokenConfiguration) TokenConfiguration {
	result := config
	result.Enabled = overlayBool(result.Enabled, override.Enabled)
	if override.Model != "" {
		result.Model = override.Model
	}
	return result
}

func (config PathConfiguration) merge(override PathConfiguration) PathConfiguration {
	result := config
	if len(override.Extensions) > 0 {
		result.Extensions = append([]string{}, override.Extensions...)
	}
	if len(override.Ignore) > 0 {
		result.Ignore = append([]string{}, utils.DeduplicatePatterns(override.Ignore)...)
	}
	result.IncludeHidden = overlayBool(result.IncludeHidden, override.IncludeHidden)
	result.IgnoreFilesOnly = overlayBool(result.IgnoreFilesOnly, override.IgnoreFilesOnly)
	result.UseGitignore = overlayBool(result.UseGitignore, override.UseGitignore)
	result.IncludeGit = overlayBool(result.IncludeGit, override.IncludeGit)
	result.FollowSymlinks = overlayBool(result.FollowSymlinks, override.FollowSymlinks)
	return result
}

// BoolOr dereferences value, falling back when it is unset.
func BoolOr(value *bool, fallback bool) bool {
	if value == nil {
		return fallback
	}
	return *value
}

func overlayBool(base *bool, override *bool) *bool {
	if override == nil {
		return base
	}
	return cloneBool(override)
}

func cloneBool(value *bool) *bool {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}
