// conf/utils.go - filesystem path helpers
package conf

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// GetDefaultConfigPaths returns the OS-specific directories searched for config.yaml.
func GetDefaultConfigPaths() ([]string, error) {
	var configPaths []string

	exePath, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("error fetching executable path: %w", err)
	}
	exeDir := filepath.Dir(exePath)

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("error fetching user home directory: %w", err)
	}

	switch runtime.GOOS {
	case "windows":
		configPaths = []string{
			exeDir,
			filepath.Join(homeDir, "AppData", "Roaming", "soir"),
		}
	default:
		configPaths = []string{
			filepath.Join(homeDir, ".config", "soir"),
			"/etc/soir",
		}
	}

	return configPaths, nil
}

// GetBasePath expands environment variables and a leading "~" in path.
func GetBasePath(path string) string {
	expanded := os.ExpandEnv(path)
	if strings.HasPrefix(expanded, "~") {
		if homeDir, err := os.UserHomeDir(); err == nil {
			expanded = filepath.Join(homeDir, strings.TrimPrefix(expanded, "~"))
		}
	}
	return expanded
}
