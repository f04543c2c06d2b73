package settings

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DatasetOverride holds per-dataset session preferences.
type DatasetOverride struct {
	PreferredEmbedding string `yaml:"preferred_embedding,omitempty"`
	View               string `yaml:"view,omitempty"`
}

// Session is the per-user settings file. Everything here is a preference;
// absent values fall back to dataset config or defaults.
type Session struct {
	PreferredEmbedding string                     `yaml:"preferred_embedding,omitempty"`
	Datasets           map[string]DatasetOverride `yaml:"datasets,omitempty"`
	PlainOutput        bool                       `yaml:"plain_output,omitempty"`
}

// EmbeddingFor returns the session's preferred embedding for a dataset:
// the per-dataset override if set, else the global session preference.
func (s *Session) EmbeddingFor(dataset string) string {
	if s == nil {
		return ""
	}
	if o, ok := s.Datasets[dataset]; ok && o.PreferredEmbedding != "" {
		return o.PreferredEmbedding
	}
	return s.PreferredEmbedding
}

// ViewFor returns the session's preferred view name for a dataset, if any.
func (s *Session) ViewFor(dataset string) string {
	if s == nil {
		return ""
	}
	if o, ok := s.Datasets[dataset]; ok {
		return o.View
	}
	return ""
}

// LoadSession reads session settings from a specified path. A missing file
// yields empty settings, not an error.
func LoadSession(path string) (*Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Session{}, nil
		}
		return nil, err
	}
	var s Session
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// LoadDefaultSession reads ~/.config/trellis/settings.yaml, falling back to
// empty settings when it does not exist.
func LoadDefaultSession() (*Session, string, error) {
	path, err := defaultSessionPath()
	if err != nil {
		return nil, "", err
	}
	s, err := LoadSession(path)
	return s, path, err
}

// SaveSession writes settings to the given path, creating directories as
// needed.
func SaveSession(path string, s *Session) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultSessionPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "trellis", "settings.yaml"), nil
}
