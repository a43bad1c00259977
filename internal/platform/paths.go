// Package platform resolves where nametag keeps config, data, and downloaded exports on each OS.
package platform

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// defaultAppName is used when no app name is configured.
const defaultAppName = "nametag"

// ErrEmptyBaseDir reports a missing OS base directory.
var ErrEmptyBaseDir = errors.New("empty base dir")

// Paths lists every location nametag reads or writes.
type Paths struct {
	ConfigPath string
	// AssetDir holds optional user overrides for the template and lookup tables.
	AssetDir  string
	DataDir   string
	DBPath    string
	OutputDir string
	// ExportDir lives under the cache dir: the results export can always be downloaded again.
	ExportDir string
}

// Options defines optional settings for configuration.
type Options struct {
	AppName string
	DevMode bool
}

// BaseDirs are the per-user roots that app directories are created under.
type BaseDirs struct {
	Config string
	Data   string
	Cache  string
}

// DefaultPaths returns default paths.
func DefaultPaths() (Paths, error) {
	return DefaultPathsWithOptions(Options{AppName: defaultAppName})
}

// DefaultPathsWithOptions resolves paths for the current OS and user.
func DefaultPathsWithOptions(opts Options) (Paths, error) {
	appName := strings.TrimSpace(opts.AppName)
	if appName == "" {
		appName = defaultAppName
	}
	if opts.DevMode {
		appName += "-dev"
	}

	base, err := userBaseDirs(runtime.GOOS)
	if err != nil {
		return Paths{}, err
	}
	env := map[string]string{}
	for _, key := range []string{"XDG_CONFIG_HOME", "XDG_DATA_HOME", "XDG_CACHE_HOME", "APPDATA", "LOCALAPPDATA"} {
		env[key] = os.Getenv(key)
	}
	return PathsFor(runtime.GOOS, env, base, appName)
}

// userBaseDirs asks the OS for the per-user config, data, and cache roots.
func userBaseDirs(goos string) (BaseDirs, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return BaseDirs{}, fmt.Errorf("user config dir: %w", err)
	}
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return BaseDirs{}, fmt.Errorf("user cache dir: %w", err)
	}
	base := BaseDirs{Config: configDir, Data: configDir, Cache: cacheDir}
	switch goos {
	case "linux":
		home, err := os.UserHomeDir()
		if err != nil {
			return BaseDirs{}, fmt.Errorf("user home dir: %w", err)
		}
		base.Data = filepath.Join(home, ".local", "share")
	case "windows":
		base.Data = cacheDir
	}
	return base, nil
}

// PathsFor derives app paths from base dirs, honoring XDG and Windows env overrides.
func PathsFor(goos string, env map[string]string, base BaseDirs, appName string) (Paths, error) {
	if base.Config == "" || base.Data == "" {
		return Paths{}, ErrEmptyBaseDir
	}
	if base.Cache == "" {
		base.Cache = base.Data
	}
	appName = strings.TrimSpace(appName)
	if appName == "" {
		return Paths{}, fmt.Errorf("empty app name")
	}

	override := func(dst *string, key string) {
		if v := strings.TrimSpace(env[key]); v != "" {
			*dst = v
		}
	}
	switch goos {
	case "linux", "freebsd", "openbsd", "netbsd":
		override(&base.Config, "XDG_CONFIG_HOME")
		override(&base.Data, "XDG_DATA_HOME")
		override(&base.Cache, "XDG_CACHE_HOME")
	case "windows":
		override(&base.Config, "APPDATA")
		override(&base.Data, "LOCALAPPDATA")
		override(&base.Cache, "LOCALAPPDATA")
	}

	configDir := filepath.Join(base.Config, appName)
	dataDir := filepath.Join(base.Data, appName)
	exportDir := filepath.Join(base.Cache, appName, "export")
	if goos == "windows" {
		// LOCALAPPDATA holds both data and cache; keep the export beside the database.
		exportDir = filepath.Join(dataDir, "export")
	}
	return Paths{
		ConfigPath: filepath.Join(configDir, "config.toml"),
		AssetDir:   filepath.Join(configDir, "assets"),
		DataDir:    dataDir,
		DBPath:     filepath.Join(dataDir, appName+".db"),
		OutputDir:  filepath.Join(dataDir, "output"),
		ExportDir:  exportDir,
	}, nil
}

// Asset returns the first override file in AssetDir that exists, trying names in order.
func (p Paths) Asset(names ...string) (string, bool) {
	if p.AssetDir == "" {
		return "", false
	}
	for _, name := range names {
		path := filepath.Join(p.AssetDir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, true
		}
	}
	return "", false
}
