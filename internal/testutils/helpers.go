package testutils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockFileSystem creates an in-memory filesystem for testing
func MockFileSystem(t *testing.T) afero.Fs {
	return afero.NewMemMapFs()
}

// CreateTempFile creates a temporary file in the mock filesystem with content
func CreateTempFile(t *testing.T, fs afero.Fs, path, content string) {
	err := afero.WriteFile(fs, path, []byte(content), 0644)
	require.NoError(t, err)
}

// MockHTTPResponse creates a mock HTTP response for testing
func MockHTTPResponse(statusCode int, body interface{}) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(statusCode)
		if body != nil {
			switch v := body.(type) {
			case string:
				w.Write([]byte(v))
			default:
				json.NewEncoder(w).Encode(v)
			}
		}
	}))
}

// SetEnv sets environment variable and returns cleanup function
func SetEnv(t *testing.T, key, value string) func() {
	original := os.Getenv(key)
	os.Setenv(key, value)
	return func() {
		if original == "" {
			os.Unsetenv(key)
		} else {
			os.Setenv(key, original)
		}
	}
}

// AssertErrorContains checks that error contains expected message
func AssertErrorContains(t *testing.T, err error, expectedMessage string) {
	require.Error(t, err)
	assert.Contains(t, err.Error(), expectedMessage)
}

// AssertNoError is a convenience wrapper for assert.NoError
func AssertNoError(t *testing.T, err error) {
	assert.NoError(t, err)
}

// FixedTimeProvider provides a fixed time for testing time-dependent code
type FixedTimeProvider struct {
	fixedTime time.Time
}

func NewFixedTimeProvider(fixedTime time.Time) *FixedTimeProvider {
	return &FixedTimeProvider{fixedTime: fixedTime}
}

func (f *FixedTimeProvider) Now() time.Time {
	return f.fixedTime
}

// ValidBridgeConfigYAML returns a minimal valid bridge config.yaml for tests.
func ValidBridgeConfigYAML() string {
	return `bridge:
  name: "Test Bridge"
  mac: "aa:bb:cc:11:22:33"
  ipaddress: "10.0.0.5"
  timezone: "Europe/Berlin"
bifrost:
  state_file: "state.yaml"
  cert_file: "cert.pem"
z2m:
  servers:
    main:
      url: "ws://localhost:8080"
rooms: {}`
}

// InvalidBridgeConfigYAML returns invalid YAML config for testing error cases.
func InvalidBridgeConfigYAML(errorType string) string {
	switch errorType {
	case "missing-name":
		return `bridge:
  mac: "aa:bb:cc:11:22:33"
z2m:
  servers: {}`
	case "missing-mac":
		return `bridge:
  name: "Test Bridge"
z2m:
  servers: {}`
	case "bad-z2m-url":
		return `bridge:
  name: "Test Bridge"
  mac: "aa:bb:cc:11:22:33"
z2m:
  servers:
    main:
      url: ""`
	case "malformed-yaml":
		return `bridge:
  name: "Test Bridge"
  mac: [invalid`
	default:
		return ""
	}
}
