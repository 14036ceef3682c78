package utils

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/charmbracelet/log"
)

// PathResolver locates word lists and datasets relative to the places a
// wordrank binary is usually run from.
type PathResolver struct {
	executableDir string
	configDir     string
}

// NewPathResolver creates a path resolver for the running executable.
// appName names the per-user config directory.
func NewPathResolver(appName string) (*PathResolver, error) {
	execPath, err := os.Executable()
	if err != nil {
		return nil, err
	}
	execPath, err = filepath.EvalSymlinks(execPath)
	if err != nil {
		return nil, err
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Warnf("Could not determine home directory: %v", err)
		homeDir = os.TempDir()
	}

	pr := &PathResolver{
		executableDir: filepath.Dir(execPath),
		configDir:     platformConfigDir(homeDir, appName),
	}
	log.Debugf("PathResolver initialized: execDir=%s, configDir=%s", pr.executableDir, pr.configDir)
	return pr, nil
}

// platformConfigDir returns the appropriate config directory for the platform
func platformConfigDir(homeDir, appName string) string {
	switch runtime.GOOS {
	case "linux":
		if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
			return filepath.Join(configHome, appName)
		}
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, appName)
		}
		return filepath.Join(homeDir, "AppData", "Roaming", appName)
	}
	return filepath.Join(homeDir, ".config", appName)
}

// ConfigDir returns the per-user config directory
func (pr *PathResolver) ConfigDir() string {
	return pr.configDir
}

// Candidates lists where a relative path is looked up, in order:
// the working directory, next to the executable, its parent, then the config dir.
func (pr *PathResolver) Candidates(path string) []string {
	if filepath.IsAbs(path) {
		return []string{path}
	}
	var candidates []string
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(cwd, path))
	}
	return append(candidates,
		filepath.Join(pr.executableDir, path),
		filepath.Join(filepath.Dir(pr.executableDir), path),
		filepath.Join(pr.configDir, path),
	)
}

// Resolve returns the first existing candidate for path. When none exists
// path is returned unchanged so the caller reports the name the user gave.
func (pr *PathResolver) Resolve(path string) string {
	for _, candidate := range pr.Candidates(path) {
		if FileExists(candidate) {
			log.Debugf("Resolved %s to %s", path, candidate)
			return candidate
		}
		log.Debugf("Path candidate not found: %s", candidate)
	}
	return path
}
