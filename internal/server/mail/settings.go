// Package mail keeps the outgoing mail server settings and sends the
// account notices of the user administration endpoints.
package mail

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"path/filepath"
	"sync"
)

// SettingsFileName is stored inside the server work directory.
const SettingsFileName = "mailserver.json"

// Settings describe the SMTP server used for notices. Instance is the public
// URL of this server, quoted in the messages.
type Settings struct {
	Server       string `json:"server"`
	Port         string `json:"port"`
	User         string `json:"user"`
	Password     string `json:"password"`
	From         string `json:"from"`
	Instance     string `json:"instance"`
	Authenticate bool   `json:"authenticate"`
	TLS          bool   `json:"tls"`
}

// Configured reports whether enough is set to attempt delivery.
func (s Settings) Configured() bool {
	return s.Server != "" && s.From != ""
}

// Addr is the host:port to dial; port 25 when none is set.
func (s Settings) Addr() string {
	port := s.Port
	if port == "" {
		port = "25"
	}
	return net.JoinHostPort(s.Server, port)
}

// SettingsStore reads and writes the settings file.
type SettingsStore struct {
	path string
	mu   sync.Mutex
}

func NewSettingsStore(workDir string) *SettingsStore {
	return &SettingsStore{path: filepath.Join(workDir, SettingsFileName)}
}

func (s *SettingsStore) Path() string {
	return s.path
}

// Load returns the stored settings, writing empty defaults first when the
// file does not exist yet.
func (s *SettingsStore) Load() (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		if err := s.write(Settings{}); err != nil {
			return Settings{}, err
		}
		return Settings{}, nil
	}
	if err != nil {
		return Settings{}, fmt.Errorf("read mail settings: %w", err)
	}

	var settings Settings
	if err := json.Unmarshal(data, &settings); err != nil {
		return Settings{}, fmt.Errorf("parse mail settings: %w", err)
	}
	return settings, nil
}

// Save replaces the stored settings.
func (s *SettingsStore) Save(settings Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(settings)
}

func (s *SettingsStore) write(settings Settings) error {
	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write mail settings: %w", err)
	}
	return nil
}
