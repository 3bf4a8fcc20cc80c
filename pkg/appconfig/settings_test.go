package appconfig

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const validSettingsINI = `[aws]
sso_profile = dev-sso
sso_start_url = https://example.awsapps.com/start
sso_region = us-east-1
default_region = eu-west-1
`

func TestLoadSettings(t *testing.T) {
	resetLogging()
	tests := []struct {
		name     string
		fileName string
		content  string
		missing  bool
		env      map[string]string
		wantErr  bool
		sentinel error
		verify   func(t *testing.T, settings *Settings)
	}{
		{
			name:     "Valid INI settings with defaults",
			fileName: "config.ini",
			content: validSettingsINI + `
[paths]
aws_folder_name = .aws-test
`,
			verify: func(t *testing.T, settings *Settings) {
				if settings.AWS.SSOProfile != "dev-sso" {
					t.Errorf("SSOProfile mismatch: got %v, want %v", settings.AWS.SSOProfile, "dev-sso")
				}
				if settings.AWS.SSOStartURL != "https://example.awsapps.com/start" {
					t.Errorf("SSOStartURL mismatch: got %v", settings.AWS.SSOStartURL)
				}
				if settings.AWS.SSORegion != "us-east-1" {
					t.Errorf("SSORegion mismatch: got %v", settings.AWS.SSORegion)
				}
				if settings.AWS.DefaultRegion != "eu-west-1" {
					t.Errorf("DefaultRegion mismatch: got %v", settings.AWS.DefaultRegion)
				}
				if settings.AWS.OutputFormat != "json" {
					t.Errorf("OutputFormat default mismatch: got %v, want %v", settings.AWS.OutputFormat, "json")
				}
				if settings.Paths.AWSFolderName != ".aws-test" {
					t.Errorf("AWSFolderName mismatch: got %v, want %v", settings.Paths.AWSFolderName, ".aws-test")
				}
				if settings.Paths.ConfigFileName != "config" {
					t.Errorf("ConfigFileName default mismatch: got %v", settings.Paths.ConfigFileName)
				}
				if settings.Paths.CredentialsFileName != "credentials" {
					t.Errorf("CredentialsFileName default mismatch: got %v", settings.Paths.CredentialsFileName)
				}
				if settings.Paths.SSOCacheFolder != "sso/cache" {
					t.Errorf("SSOCacheFolder default mismatch: got %v", settings.Paths.SSOCacheFolder)
				}
			},
		},
		{
			name:     "Valid YAML settings",
			fileName: "config.yaml",
			content: `aws:
  sso_profile: dev-sso
  sso_start_url: https://example.awsapps.com/start
  sso_region: us-east-1
  default_region: eu-west-1
  output_format: table
`,
			verify: func(t *testing.T, settings *Settings) {
				if settings.AWS.OutputFormat != "table" {
					t.Errorf("OutputFormat mismatch: got %v, want %v", settings.AWS.OutputFormat, "table")
				}
				if settings.Paths.AWSFolderName != ".aws" {
					t.Errorf("AWSFolderName default mismatch: got %v", settings.Paths.AWSFolderName)
				}
			},
		},
		{
			name:     "Environment overrides file",
			fileName: "config.ini",
			content:  validSettingsINI,
			env: map[string]string{
				"PROFITEROLE_AWS__SSO_REGION":    "ap-southeast-2",
				"PROFITEROLE_PATHS__CONFIG_FILE": "config-test",
			},
			verify: func(t *testing.T, settings *Settings) {
				if settings.AWS.SSORegion != "ap-southeast-2" {
					t.Errorf("SSORegion override mismatch: got %v, want %v", settings.AWS.SSORegion, "ap-southeast-2")
				}
				if settings.Paths.ConfigFileName != "config-test" {
					t.Errorf("ConfigFileName override mismatch: got %v, want %v", settings.Paths.ConfigFileName, "config-test")
				}
				if settings.AWS.SSOProfile != "dev-sso" {
					t.Errorf("SSOProfile mismatch: got %v", settings.AWS.SSOProfile)
				}
			},
		},
		{
			name:     "Missing settings file",
			missing:  true,
			wantErr:  true,
			sentinel: ErrMissingConfig,
		},
		{
			name:     "Missing required setting",
			fileName: "config.ini",
			content: `[aws]
sso_profile = dev-sso
sso_region = us-east-1
`,
			wantErr:  true,
			sentinel: ErrMissingConfig,
		},
		{
			name:     "Malformed INI",
			fileName: "config.ini",
			content:  "this is not an ini file",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fileName := tt.fileName
			if fileName == "" {
				fileName = "config.ini"
			}
			path := filepath.Join(t.TempDir(), fileName)
			if !tt.missing {
				if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
					t.Fatalf("Failed to write settings file: %v", err)
				}
			}
			for key, value := range tt.env {
				t.Setenv(key, value)
			}

			settings, err := LoadSettings(path)
			if (err != nil) != tt.wantErr {
				t.Errorf("LoadSettings() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.sentinel != nil && !errors.Is(err, tt.sentinel) {
				t.Errorf("LoadSettings() error = %v, want %v", err, tt.sentinel)
			}

			if err == nil && tt.verify != nil {
				tt.verify(t, settings)
			}
		})
	}
}
