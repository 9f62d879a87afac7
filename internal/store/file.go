package store

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/iwvelando/car-cost-forecast/pkg/costmodel"
	"gopkg.in/yaml.v3"
)

// FileStore keeps presets in a single YAML or TOML file, chosen by extension.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore returns a store backed by path. The file is created on the
// first Save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) isTOML() bool {
	return strings.EqualFold(filepath.Ext(s.path), ".toml")
}

func (s *FileStore) read() (map[string]costmodel.Parameters, error) {
	presets := make(map[string]costmodel.Parameters)
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return presets, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading presets: %w", err)
	}

	if s.isTOML() {
		if _, err := toml.Decode(string(data), &presets); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", s.path, err)
		}
		return presets, nil
	}
	if err := yaml.Unmarshal(data, &presets); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", s.path, err)
	}
	if presets == nil {
		presets = make(map[string]costmodel.Parameters)
	}
	return presets, nil
}

func (s *FileStore) write(presets map[string]costmodel.Parameters) error {
	var buf bytes.Buffer
	if s.isTOML() {
		if err := toml.NewEncoder(&buf).Encode(presets); err != nil {
			return fmt.Errorf("encoding presets: %w", err)
		}
	} else {
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(presets); err != nil {
			return fmt.Errorf("encoding presets: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("encoding presets: %w", err)
		}
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("creating preset dir: %w", err)
		}
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("writing presets: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replacing presets: %w", err)
	}
	return nil
}

// Save stores params under name, replacing any existing preset.
func (s *FileStore) Save(_ context.Context, name string, params costmodel.Parameters) error {
	name, err := normalizeName(name)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	presets, err := s.read()
	if err != nil {
		return err
	}
	presets[name] = params
	return s.write(presets)
}

// Load returns the preset stored under name.
func (s *FileStore) Load(_ context.Context, name string) (costmodel.Parameters, error) {
	name, err := normalizeName(name)
	if err != nil {
		return costmodel.Parameters{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	presets, err := s.read()
	if err != nil {
		return costmodel.Parameters{}, err
	}
	params, ok := presets[name]
	if !ok {
		return costmodel.Parameters{}, notFound(name)
	}
	return params, nil
}

// Delete removes the preset stored under name.
func (s *FileStore) Delete(_ context.Context, name string) error {
	name, err := normalizeName(name)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	presets, err := s.read()
	if err != nil {
		return err
	}
	if _, ok := presets[name]; !ok {
		return notFound(name)
	}
	delete(presets, name)
	return s.write(presets)
}

// List returns the preset names in alphabetical order.
func (s *FileStore) List(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	presets, err := s.read()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Close is a no-op; the file is only open while reading or writing.
func (s *FileStore) Close() error {
	return nil
}
