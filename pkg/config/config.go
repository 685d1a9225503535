// Package config persists the last-used server between runs.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog/log"
)

const (
	DefaultHost = "192.168.0.103"
	DefaultPort = 9999
	DefaultUser = "anonymous"
)

// Config holds the persisted server address.
type Config struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// Store manages the on-disk config file. A missing or unreadable file is
// never fatal; defaults take over silently.
type Store struct {
	config   Config
	filePath string
	mu       sync.RWMutex
}

// NewStore loads the config from dataDir, falling back to defaults.
func NewStore(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	store := &Store{
		config:   defaultConfig(),
		filePath: filepath.Join(dataDir, "config.json"),
	}

	if err := store.load(); err != nil {
		if !os.IsNotExist(err) {
			log.Warn().Err(err).Str("path", store.filePath).Msg("config unreadable, using defaults")
		}
	}
	return store, nil
}

func defaultConfig() Config {
	return Config{Host: DefaultHost, Port: DefaultPort}
}

func (s *Store) load() error {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return err
	}
	if cfg.Host == "" || cfg.Port <= 0 {
		return fmt.Errorf("config %s missing host or port", s.filePath)
	}
	s.config = cfg
	return nil
}

func (s *Store) save() error {
	data, err := json.MarshalIndent(s.config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(s.filePath, data, 0600)
}

// Get returns the current config.
func (s *Store) Get() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config
}

// SetServer records a new server address and persists it.
func (s *Store) SetServer(host string, port int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.config.Host = host
	s.config.Port = port
	return s.save()
}

// GetDataDir returns the directory the config file lives in.
func (s *Store) GetDataDir() string {
	return filepath.Dir(s.filePath)
}
