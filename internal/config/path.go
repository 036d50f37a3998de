package config

import (
	"os"
	"path/filepath"
	"runtime"
)

const (
	envConfigDir  = "ASSEMBLY_CONFIG_DIR"
	settingsFile  = "settings.toml"
	historyFile   = "history.json"
	appDirName    = "assembly"
	fallbackLocal = ".assembly"
)

// Dir resolves the directory holding settings and history. The
// ASSEMBLY_CONFIG_DIR override wins, then XDG_CONFIG_HOME on unix-like
// systems, then the per-OS default under the home directory.
func Dir() string {
	if v := os.Getenv(envConfigDir); v != "" {
		return v
	}
	if runtime.GOOS != "windows" && runtime.GOOS != "darwin" {
		if xdg := os.Getenv("XDG_CONFIG_HOME"); filepath.IsAbs(xdg) {
			return filepath.Join(xdg, appDirName)
		}
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return fallbackLocal
	}
	return filepath.Join(append([]string{home}, osConfigRoot()...)...)
}

func osConfigRoot() []string {
	switch runtime.GOOS {
	case "darwin":
		return []string{"Library", "Application Support", appDirName}
	case "windows":
		return []string{"AppData", "Roaming", appDirName}
	default:
		return []string{".config", appDirName}
	}
}

func SettingsPath() string { return filepath.Join(Dir(), settingsFile) }

func HistoryPath() string { return filepath.Join(Dir(), historyFile) }
