package appconfig

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"gopkg.in/ini.v1"
)

// EnvPrefix marks environment variables that override file settings.
// Section and key are joined with a double underscore, so
// PROFITEROLE_AWS__SSO_REGION overrides aws.sso_region.
const EnvPrefix = "PROFITEROLE_"

// ErrMissingConfig reports an absent settings file or a required setting
// with no value in any layer.
var ErrMissingConfig = errors.New("missing configuration")

type Settings struct {
	AWS   AWSSettings  `koanf:"aws"`
	Paths PathSettings `koanf:"paths"`
}

// AWSSettings mirrors the [aws] section of the settings file.
type AWSSettings struct {
	SSOProfile    string `koanf:"sso_profile"`
	SSOStartURL   string `koanf:"sso_start_url"`
	SSORegion     string `koanf:"sso_region"`
	DefaultRegion string `koanf:"default_region"`
	OutputFormat  string `koanf:"output_format"`
}

// PathSettings mirrors the [paths] section of the settings file. Folder and
// file names are resolved under the user's home directory by ResolvePaths.
type PathSettings struct {
	AWSFolderName       string `koanf:"aws_folder_name"`
	ConfigFileName      string `koanf:"config_file"`
	CredentialsFileName string `koanf:"credentials_file"`
	SSOCacheFolder      string `koanf:"sso_cache_folder"`
}

var settingsDefaults = map[string]interface{}{
	"aws.output_format":      "json",
	"paths.aws_folder_name":  ".aws",
	"paths.config_file":      "config",
	"paths.credentials_file": "credentials",
	"paths.sso_cache_folder": "sso/cache",
}

// requiredSettings have no sensible default; they must come from the
// settings file or the environment.
var requiredSettings = []string{
	"aws.sso_profile",
	"aws.sso_start_url",
	"aws.sso_region",
	"aws.default_region",
}

// LoadSettings reads the settings source at path and layers it in order:
// built-in defaults, then file values, then PROFITEROLE_ environment
// overrides. INI is the conventional format; .yaml/.yml files are accepted
// with the same section.key layout.
func LoadSettings(path string) (*Settings, error) {
	slog.Debug("Checking for settings file", "path", path)
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: settings file %s: %v", ErrMissingConfig, path, err)
	}

	k := koanf.New(".")
	if err := k.Load(confmap.Provider(settingsDefaults, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}
	if err := loadSettingsFile(k, path); err != nil {
		return nil, err
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", envToSettingsKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment overrides: %w", err)
	}

	var settings Settings
	if err := k.Unmarshal("", &settings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal settings: %w", err)
	}

	for _, key := range requiredSettings {
		if k.String(key) == "" {
			return nil, fmt.Errorf("%w: required setting %q is not set", ErrMissingConfig, key)
		}
	}

	slog.Debug("Loaded settings", "path", path)
	return &settings, nil
}

func loadSettingsFile(k *koanf.Koanf, path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		slog.Debug("Loading YAML settings file", "path", path)
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return fmt.Errorf("failed to load settings file %s: %w", path, err)
		}
	default:
		slog.Debug("Loading INI settings file", "path", path)
		cfg, err := ini.Load(path)
		if err != nil {
			return fmt.Errorf("failed to load settings file %s: %w", path, err)
		}
		if err := k.Load(confmap.Provider(flattenINI(cfg), "."), nil); err != nil {
			return fmt.Errorf("failed to merge settings file %s: %w", path, err)
		}
	}

	return nil
}

// flattenINI turns [section] key=value pairs into dotted section.key entries
// so the INI file layers like any other koanf source.
func flattenINI(cfg *ini.File) map[string]interface{} {
	flat := make(map[string]interface{})

	for _, section := range cfg.Sections() {
		prefix := strings.ToLower(section.Name()) + "."
		if section.Name() == ini.DefaultSection {
			prefix = ""
		}
		for _, key := range section.Keys() {
			flat[prefix+strings.ToLower(key.Name())] = key.Value()
		}
	}

	return flat
}

func envToSettingsKey(name string) string {
	name = strings.TrimPrefix(name, EnvPrefix)
	return strings.ReplaceAll(strings.ToLower(name), "__", ".")
}
