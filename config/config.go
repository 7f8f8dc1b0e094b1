package config

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

// AppDir is the directory name under the user config directory.
const AppDir = "atlascore"

// SharedName is the service name of the shared cross-service config file.
const SharedName = "atlassian"

// Defaults holds optional per-service query defaults.
type Defaults struct {
	// Scope is a query fragment AND-ed onto every user query.
	Scope string `yaml:"scope"`

	// MaxResults caps search result pages.
	MaxResults int `yaml:"max_results"`

	// Fields restricts which fields search results carry.
	Fields []string `yaml:"fields"`
}

// Service is the schema of one service config file.
type Service struct {
	URL      string `yaml:"url"`
	Email    string `yaml:"email"`
	Username string `yaml:"username"`
	Token    string `yaml:"token"`
	Password string `yaml:"password"`

	// Defaults apply to every query against this service.
	Defaults Defaults `yaml:"defaults"`

	// Overrides replace Defaults per project key (Jira) or space key
	// (Confluence).
	Overrides map[string]Defaults `yaml:"overrides"`
}

// PermissionError indicates a config file is readable by others.
type PermissionError struct {
	Path string
	Mode fs.FileMode
}

// Error implements the error interface.
func (e *PermissionError) Error() string {
	return fmt.Sprintf("config file %s has mode %04o, must be owner-only (0600)", e.Path, e.Mode.Perm())
}

// Dir returns the config directory, creating nothing.
func Dir() string {
	return filepath.Join(xdg.ConfigHome, AppDir)
}

// Path returns the config file path for a service.
func Path(service string) string {
	return filepath.Join(Dir(), service+".yaml")
}

// Load reads the config file for a service. A missing file is not an error;
// it returns (nil, nil) so callers fall through to lower-priority sources.
func Load(service string) (*Service, error) {
	return LoadFile(Path(service))
}

// LoadFile reads a service config from an explicit path.
func LoadFile(path string) (*Service, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("stat config %s: %w", path, err)
	}

	// Credential-bearing files must be restricted to owner read/write.
	if info.Mode().Perm()&0o077 != 0 {
		return nil, &PermissionError{Path: path, Mode: info.Mode()}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var svc Service
	if err := yaml.Unmarshal(data, &svc); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	return &svc, nil
}

// DefaultsFor returns the effective defaults for a project or space key.
// Override fields that are set replace the corresponding default; unset
// fields fall through.
func (s *Service) DefaultsFor(key string) Defaults {
	if s == nil {
		return Defaults{}
	}
	effective := s.Defaults
	override, ok := s.Overrides[key]
	if !ok {
		return effective
	}
	if override.Scope != "" {
		effective.Scope = override.Scope
	}
	if override.MaxResults != 0 {
		effective.MaxResults = override.MaxResults
	}
	if len(override.Fields) > 0 {
		effective.Fields = override.Fields
	}
	return effective
}
