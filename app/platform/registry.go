package platform

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yml
var defaultsYML []byte

// Registry holds the known platform adapters. Built-in defaults are
// embedded; an override directory can add platforms or replace the
// built-in entries without a rebuild.
type Registry struct {
	overrideDir string
	cache       map[string]*Platform
	mu          sync.RWMutex
}

func NewRegistry(overrideDir string) *Registry {
	return &Registry{
		overrideDir: overrideDir,
		cache:       make(map[string]*Platform),
	}
}

func (r *Registry) Run() error {
	defaults := make(map[string]*Platform)
	if err := yaml.Unmarshal(defaultsYML, &defaults); err != nil {
		return fmt.Errorf("failed to parse embedded platform defaults: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for name, p := range defaults {
		p.Name = name
		r.cache[name] = p
	}

	if r.overrideDir == "" {
		return nil
	}
	if _, err := os.Stat(r.overrideDir); os.IsNotExist(err) {
		return nil
	}

	files, err := filepath.Glob(filepath.Join(r.overrideDir, "*.yml"))
	if err != nil {
		return fmt.Errorf("failed to find platform override files: %w", err)
	}

	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", file, err)
		}

		var p Platform
		if err := yaml.Unmarshal(data, &p); err != nil {
			return fmt.Errorf("failed to parse %s: %w", file, err)
		}

		fileName := filepath.Base(file)
		p.Name = strings.TrimSuffix(fileName, ".yml")
		r.cache[p.Name] = &p

		slog.Debug("Platform override loaded", "platform", p.Name, "file", file)
	}

	return nil
}

// Lookup returns the adapter for a platform name. Unknown platforms get
// the generic "ical" adapter so a new upstream never breaks a sync.
func (r *Registry) Lookup(name string) *Platform {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if p, ok := r.cache[name]; ok {
		return p
	}
	if p, ok := r.cache["ical"]; ok {
		return p
	}
	return &Platform{Name: name, FallbackColor: "#7b8794"}
}

func (r *Registry) GetPlatformCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.cache)
}
