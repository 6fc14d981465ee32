package hosts

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Host directory: maps the "person visited" form field to a contact address
// so the front desk can notify the host that their visitor has arrived.

type Host struct {
	Name  string `yaml:"name"`
	Email string `yaml:"email"`
}

type directoryFile struct {
	Hosts []Host `yaml:"hosts"`
}

type Directory struct {
	mu     sync.RWMutex
	byName map[string]Host
	logger *slog.Logger
}

func NewDirectory() *Directory {
	return &Directory{
		byName: make(map[string]Host),
		logger: slog.With("component", "hosts"),
	}
}

// LoadFile reads the host directory from a YAML file. A missing file is not
// an error; notifications are simply disabled until one is provided.
func (d *Directory) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			d.logger.Info("Host directory file not found, notifications disabled", "path", path)
			return nil
		}
		return fmt.Errorf("failed to read hosts file: %w", err)
	}

	var file directoryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse hosts file: %w", err)
	}

	d.mu.Lock()
	d.byName = make(map[string]Host, len(file.Hosts))
	for _, h := range file.Hosts {
		d.byName[normalize(h.Name)] = h
	}
	d.mu.Unlock()

	d.logger.Info("Host directory loaded", "path", path, "hosts", len(file.Hosts))
	return nil
}

// Find looks up a host by the name a visitor typed. Matching is
// case-insensitive on the trimmed name.
func (d *Directory) Find(name string) (Host, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	h, ok := d.byName[normalize(name)]
	return h, ok
}

func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.byName)
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
