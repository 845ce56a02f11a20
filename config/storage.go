package config

import (
	"fmt"
	"net/url"
)

// StorageConfig defines where batch runs and their outcomes are recorded
type StorageConfig struct {
	Backend string `hcl:"backend,optional"` // "memory", "sqlite" or "postgres"
	Path    string `hcl:"path,optional"`    // SQLite file path (default: ".curator/store.db")
	DSN     string `hcl:"dsn,optional"`     // Postgres connection string
}

// Defaults fills in default values for unset fields
func (s *StorageConfig) Defaults() {
	if s.Backend == "" {
		s.Backend = "memory"
	}
	if s.Backend == "sqlite" && s.Path == "" {
		s.Path = ".curator/store.db"
	}
}

func (s *StorageConfig) Validate() error {
	switch s.Backend {
	case "memory", "sqlite":
		return nil
	case "postgres":
		if s.DSN == "" {
			return fmt.Errorf("postgres backend requires dsn")
		}
		return nil
	default:
		return fmt.Errorf("unknown backend '%s' (expected 'memory', 'sqlite' or 'postgres')", s.Backend)
	}
}

// ProgressConfig enables publishing batch progress to a websocket endpoint
type ProgressConfig struct {
	WebsocketURL string `hcl:"websocket_url"`
}

func (p *ProgressConfig) Validate() error {
	u, err := url.Parse(p.WebsocketURL)
	if err != nil {
		return fmt.Errorf("invalid websocket_url: %w", err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return fmt.Errorf("websocket_url must use ws:// or wss://, got '%s'", p.WebsocketURL)
	}
	return nil
}
