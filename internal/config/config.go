package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/driftstream/driftstream-cli/internal/keyring"
	"gopkg.in/yaml.v3"
)

const (
	ServiceName = "drift-cli"

	tokenKey       = "access_token"
	usernameKey    = "username"
	currentUserKey = "current_user"
)

// Config is the on-disk CLI configuration.
type Config struct {
	Host      string `yaml:"host"`
	APIPort   int    `yaml:"api_port"`
	ProjectID string `yaml:"project_id"`
	Timeout   int    `yaml:"timeout"`
	Mock      bool   `yaml:"mock"`
}

var (
	globalConfig *Config
	secrets      *keyring.Manager
)

// Init loads the configuration file, writing defaults on first run, and
// prepares the keyring-backed session store.
func Init(configFile string) error {
	secrets = keyring.NewManager(keyring.DefaultFilePath(), keyring.MasterPasswordFromEnv())

	globalConfig = &Config{
		Host:      "localhost",
		APIPort:   8080,
		ProjectID: "123",
		Timeout:   30,
	}

	if err := os.MkdirAll(filepath.Dir(configFile), 0o750); err != nil {
		return fmt.Errorf("failed to create config directory: %v", err)
	}

	if _, err := os.Stat(configFile); err == nil {
		data, err := os.ReadFile(configFile)
		if err != nil {
			return fmt.Errorf("failed to read config file: %v", err)
		}
		if err := yaml.Unmarshal(data, globalConfig); err != nil {
			return fmt.Errorf("failed to parse config file: %v", err)
		}
	} else {
		data, err := yaml.Marshal(globalConfig)
		if err != nil {
			return fmt.Errorf("failed to marshal default config: %v", err)
		}
		if err := os.WriteFile(configFile, data, 0o600); err != nil {
			return fmt.Errorf("failed to write default config file: %v", err)
		}
	}

	return nil
}

// GetConfig returns the loaded configuration.
func GetConfig() *Config {
	return globalConfig
}

// BaseURL returns the backend base URL, with the API port substituted onto
// the configured host.
func (c *Config) BaseURL() string {
	host := c.Host
	if i := strings.LastIndex(host, ":"); i > 0 && !strings.Contains(host[i:], "/") {
		host = host[:i]
	}
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "http://" + host
	}
	return fmt.Sprintf("%s:%d/api/v1", host, c.APIPort)
}

// ProjectURL builds a project-scoped API URL for the given path suffix.
func (c *Config) ProjectURL(path string) string {
	return fmt.Sprintf("%s/project/%s%s", c.BaseURL(), c.ProjectID, path)
}

// DefaultConfigPath returns the default config file location.
func DefaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "driftstream", "config.yaml")
	}
	return filepath.Join(homeDir, ".driftstream", "config.yaml")
}

// StoreSession persists the login session in the keyring.
func StoreSession(username, token string) error {
	if err := secrets.Set(ServiceName, currentUserKey, username); err != nil {
		return fmt.Errorf("failed to store current user: %v", err)
	}
	if err := secrets.Set(ServiceName, username+":"+usernameKey, username); err != nil {
		return fmt.Errorf("failed to store username: %v", err)
	}
	if err := secrets.Set(ServiceName, username+":"+tokenKey, token); err != nil {
		return fmt.Errorf("failed to store token: %v", err)
	}
	return nil
}

// GetUsername returns the currently logged-in user.
func GetUsername() (string, error) {
	username, err := secrets.Get(ServiceName, currentUserKey)
	if err != nil || username == "" {
		return "", fmt.Errorf("no user logged in")
	}
	return username, nil
}

// GetToken returns the stored bearer token for the given user.
func GetToken(username string) (string, error) {
	token, err := secrets.Get(ServiceName, username+":"+tokenKey)
	if err != nil || token == "" {
		return "", fmt.Errorf("no valid token found")
	}
	return token, nil
}

// ClearSession removes all stored credentials for the given user.
func ClearSession(username string) error {
	_ = secrets.Delete(ServiceName, username+":"+tokenKey)
	_ = secrets.Delete(ServiceName, username+":"+usernameKey)
	_ = secrets.Delete(ServiceName, currentUserKey)
	return nil
}

// ClearCurrentSession clears the session of whoever is logged in, if anyone.
func ClearCurrentSession() {
	if username, err := GetUsername(); err == nil {
		_ = ClearSession(username)
	}
}
