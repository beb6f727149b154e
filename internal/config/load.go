package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

func LoadConfigFromDefaultPath() (*Config, error) {

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "/etc/huebridge/config.yaml"
	}

	return LoadConfig(configPath)
}

func LoadConfig(path string) (*Config, error) {

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found at %q\n\n"+
				"Please create your config file by copying the example:\n"+
				"  cp configs/config.example.yaml configs/config.yaml\n"+
				"Then edit configs/config.yaml with your bridge identity and z2m servers.\n"+
				"See README.md for detailed setup instructions", path)
		}
		return nil, fmt.Errorf("failed to open config file %q: %w", path, err)
	}
	defer file.Close()

	var config Config
	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(&config); err != nil {
		return nil, fmt.Errorf("failed to decode config file %q: %w", path, err)
	}

	config.applyDefaults()

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid config in file %q: %w", path, err)
	}

	return &config, nil
}

// applyDefaults fills the handful of fields the original bridge's config
// loader defaults rather than requires (bifrost.state_file,
// bifrost.cert_file, the three bridge ports).
func (c *Config) applyDefaults() {
	if c.Bridge.HTTPPort == 0 {
		c.Bridge.HTTPPort = DefaultHTTPPort
	}
	if c.Bridge.HTTPSPort == 0 {
		c.Bridge.HTTPSPort = DefaultHTTPSPort
	}
	if c.Bridge.EntmPort == 0 {
		c.Bridge.EntmPort = DefaultEntmPort
	}
	if c.Bifrost.StateFile == "" {
		c.Bifrost.StateFile = "state.yaml"
	}
	if c.Bifrost.CertFile == "" {
		c.Bifrost.CertFile = "cert.pem"
	}
}

func (c *Config) validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Bridge.Name == "" {
		return errors.New("bridge.name is required")
	}
	if c.Bridge.MAC == "" {
		return errors.New("bridge.mac is required")
	}

	for name, srv := range c.Z2M.Servers {
		if srv.URL == "" {
			return fmt.Errorf("z2m server %q: url is required", name)
		}
		if _, err := url.Parse(srv.URL); err != nil {
			return fmt.Errorf("z2m server %q: invalid url: %w", name, err)
		}
	}

	return nil
}

// GetURL applies the z2m compatibility rules from spec.md §4.G step 1: a
// websocket URL that doesn't already end in "/api" gets it appended (so a
// z2m 1.x "/" endpoint and a 2.x "/api" endpoint both work), and a URL with
// no "token" query parameter gets z2m's own unset-token fallback appended.
func (s Z2MServer) GetURL() (*url.URL, error) {
	u, err := url.Parse(s.URL)
	if err != nil {
		return nil, fmt.Errorf("z2m: invalid server url %q: %w", s.URL, err)
	}

	if !strings.HasSuffix(u.Path, "/api") {
		u.Path = strings.TrimSuffix(u.Path, "/") + "/api"
	}

	q := u.Query()
	if !q.Has("token") {
		q.Set("token", "your-secret-token")
	}
	u.RawQuery = q.Encode()

	return u, nil
}

// GetSanitizedURL is GetURL's string form with any non-default token
// blanked out, safe to pass to the logger.
func (s Z2MServer) GetSanitizedURL() (string, error) {
	u, err := s.GetURL()
	if err != nil {
		return "", err
	}

	q := u.Query()
	if tok := q.Get("token"); tok != "" && tok != "your-secret-token" {
		q.Set("token", "<<REDACTED>>")
		u.RawQuery = q.Encode()
	}

	return u.String(), nil
}
