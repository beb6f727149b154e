package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/yveskaufmann/huebridge/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigFromDefaultPath(t *testing.T) {
	tests := []struct {
		name           string
		configPath     string // environment variable value
		setupFile      bool
		wantErr        bool
		expectedErrMsg string
	}{
		{
			name:       "loads config from custom path via CONFIG_PATH env var",
			configPath: "", // Will be set to temp file
			setupFile:  true,
			wantErr:    false,
		},
		{
			name:           "returns error when custom config file not found",
			configPath:     "/nonexistent/config.yaml",
			wantErr:        true,
			expectedErrMsg: "config file not found at \"/nonexistent/config.yaml\"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Set up temp file if needed
			var tempFile string
			if tt.setupFile {
				tmpDir := t.TempDir()
				tempFile = filepath.Join(tmpDir, "config.yaml")
				err := os.WriteFile(tempFile, []byte(testutils.ValidBridgeConfigYAML()), 0644)
				require.NoError(t, err)
				tt.configPath = tempFile
			}

			// Set up environment variable
			var cleanup func()
			if tt.configPath != "" {
				cleanup = testutils.SetEnv(t, "CONFIG_PATH", tt.configPath)
			} else {
				cleanup = testutils.SetEnv(t, "CONFIG_PATH", "")
			}
			defer cleanup()

			// Execute the function
			config, err := LoadConfigFromDefaultPath()

			// Assert results
			if tt.wantErr {
				require.Error(t, err)
				if tt.expectedErrMsg != "" {
					assert.Contains(t, err.Error(), tt.expectedErrMsg)
				}
				assert.Nil(t, config)
			} else {
				require.NoError(t, err)
				require.NotNil(t, config)

				assert.Equal(t, "Test Bridge", config.Bridge.Name)
				assert.Equal(t, "aa:bb:cc:11:22:33", config.Bridge.MAC)
				assert.Len(t, config.Z2M.Servers, 1)
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name           string
		fileContent    string
		wantErr        bool
		expectedErrMsg string
	}{
		{
			name:        "loads valid config successfully",
			fileContent: testutils.ValidBridgeConfigYAML(),
			wantErr:     false,
		},
		{
			name:           "returns error for invalid YAML",
			fileContent:    testutils.InvalidBridgeConfigYAML("malformed-yaml"),
			wantErr:        true,
			expectedErrMsg: "failed to decode config file",
		},
		{
			name:           "returns error for missing bridge name",
			fileContent:    testutils.InvalidBridgeConfigYAML("missing-name"),
			wantErr:        true,
			expectedErrMsg: "invalid config in file",
		},
		{
			name:           "returns error for missing bridge mac",
			fileContent:    testutils.InvalidBridgeConfigYAML("missing-mac"),
			wantErr:        true,
			expectedErrMsg: "invalid config in file",
		},
		{
			name:           "returns error for z2m server with no url",
			fileContent:    testutils.InvalidBridgeConfigYAML("bad-z2m-url"),
			wantErr:        true,
			expectedErrMsg: "invalid config in file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			configPath := filepath.Join(tmpDir, "config.yaml")
			err := os.WriteFile(configPath, []byte(tt.fileContent), 0644)
			require.NoError(t, err)

			config, err := LoadConfig(configPath)

			if tt.wantErr {
				require.Error(t, err)
				if tt.expectedErrMsg != "" {
					assert.Contains(t, err.Error(), tt.expectedErrMsg)
				}
				assert.Nil(t, config)
			} else {
				require.NoError(t, err)
				require.NotNil(t, config)
				assert.Equal(t, "Test Bridge", config.Bridge.Name)
				assert.Equal(t, DefaultHTTPPort, config.Bridge.HTTPPort)
				assert.Equal(t, DefaultEntmPort, config.Bridge.EntmPort)
			}
		})
	}
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	config, err := LoadConfig("/nonexistent/path/config.yaml")

	require.Error(t, err)
	assert.Nil(t, config)
	assert.Contains(t, err.Error(), "config file not found at \"/nonexistent/path/config.yaml\"")
	assert.Contains(t, err.Error(), "Please create your config file by copying the example:")
}

func TestLoadConfig_FileOpenError(t *testing.T) {
	tmpDir := t.TempDir()
	dirAsFile := filepath.Join(tmpDir, "config.yaml")
	err := os.Mkdir(dirAsFile, 0755)
	require.NoError(t, err)

	config, err := LoadConfig(dirAsFile)

	require.Error(t, err)
	assert.Nil(t, config)
	assert.Contains(t, err.Error(), "failed to decode config file")
	assert.NotContains(t, err.Error(), "Please create your config file by copying the example:")
}

func TestZ2MServer_GetURL(t *testing.T) {
	srv := Z2MServer{URL: "ws://localhost:8080"}
	u, err := srv.GetURL()
	require.NoError(t, err)
	assert.Equal(t, "/api", u.Path)
	assert.Equal(t, "your-secret-token", u.Query().Get("token"))
}

func TestZ2MServer_GetURL_AlreadyHasAPISuffixAndToken(t *testing.T) {
	srv := Z2MServer{URL: "ws://localhost:8080/api?token=mysecret"}
	u, err := srv.GetURL()
	require.NoError(t, err)
	assert.Equal(t, "/api", u.Path)
	assert.Equal(t, "mysecret", u.Query().Get("token"))
}

func TestZ2MServer_GetSanitizedURL_RedactsNonDefaultToken(t *testing.T) {
	srv := Z2MServer{URL: "ws://localhost:8080/api?token=mysecret"}
	s, err := srv.GetSanitizedURL()
	require.NoError(t, err)
	assert.Contains(t, s, "token=%3C%3CREDACTED%3E%3E")
}

func TestZ2MServer_GetSanitizedURL_KeepsDefaultToken(t *testing.T) {
	srv := Z2MServer{URL: "ws://localhost:8080"}
	s, err := srv.GetSanitizedURL()
	require.NoError(t, err)
	assert.Contains(t, s, "token=your-secret-token")
}
