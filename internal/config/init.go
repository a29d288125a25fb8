package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/temirov/fuse/internal/utils"
)

// InitTarget identifies where configuration should be initialized.
type InitTarget string

const (
	// InitTargetLocal writes configuration into the working directory.
	InitTargetLocal InitTarget = "local"
	// InitTargetGlobal writes configuration into the global configuration directory.
	InitTargetGlobal InitTarget = "global"

	defaultConfigurationTemplate = `# fuse configuration. Command line flags override these values.
# format: default | markdown | xml
format: default
line_numbers: false
# toc: "" (no tree) | full | dirs | files
toc: ""
absolute_paths: false
copy: false
summary: false
tokens:
  enabled: false
  model: gpt-4o
paths:
  # extensions: [go, md]
  extensions: []
  ignore: []
  include_hidden: false
  ignore_files_only: false
  use_gitignore: true
  include_git: false
  follow_symlinks: false
`
)

// InitOptions controls how configuration initialization behaves.
type InitOptions struct {
	Target           InitTarget
	Force            bool
	WorkingDirectory string
	HomeDirectory    string
}

// ParseInitTarget validates a target name given on the command line.
func ParseInitTarget(value string) (InitTarget, error) {
	switch InitTarget(value) {
	case "", InitTargetLocal:
		return InitTargetLocal, nil
	case InitTargetGlobal:
		return InitTargetGlobal, nil
	}
	return "", fmt.Errorf("unsupported init target %q", value)
}

// InitializeConfiguration writes the default configuration to the requested target.
func InitializeConfiguration(options InitOptions) (string, error) {
	target := options.Target
	if target == "" {
		target = InitTargetLocal
	}
	var destinationPath string
	switch target {
	case InitTargetLocal:
		workingDirectory := options.WorkingDirectory
		if workingDirectory == "" {
			current, err := os.Getwd()
			if err != nil {
				return "", fmt.Errorf("determine working directory for configuration: %w", err)
			}
			workingDirectory = current
		}
		destinationPath = filepath.Join(workingDirectory, utils.ConfigFileName)
	case InitTargetGlobal:
		homeDirectory := options.HomeDirectory
		if homeDirectory == "" {
			resolvedHome, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("resolve home directory for configuration: %w", err)
			}
			homeDirectory = resolvedHome
		}
		destinationPath = GlobalConfigurationPath(homeDirectory)
		configurationDirectory := filepath.Dir(destinationPath)
		if err := os.MkdirAll(configurationDirectory, 0o755); err != nil {
			return "", fmt.Errorf("create configuration directory %s: %w", configurationDirectory, err)
		}
	default:
		return "", fmt.Errorf("unsupported init target %q", target)
	}

	if _, err := os.Stat(destinationPath); err == nil {
		if !options.Force {
			return "", fmt.Errorf("configuration file already exists at %s", destinationPath)
		}
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("inspect configuration path %s: %w", destinationPath, err)
	}

	if err := os.WriteFile(destinationPath, []byte(defaultConfigurationTemplate), 0o600); err != nil {
		return "", fmt.Errorf("write configuration to %s: %w", destinationPath, err)
	}

	return destinationPath, nil
}
