package profiles

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/character-quiz/backend/internal/models"
)

// LoadFile reads a single JSON character profile.
func LoadFile(path string) (*models.CharacterProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates a JSON character profile.
func Parse(data []byte) (*models.CharacterProfile, error) {
	var p models.CharacterProfile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse profile JSON: %w", err)
	}
	p.Name = strings.TrimSpace(p.Name)
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// FileSource serves profiles from a directory of *.json files. The directory
// is read on every call so edits show up without a restart.
type FileSource struct {
	dir string
}

func NewFileSource(dir string) *FileSource {
	return &FileSource{dir: dir}
}

func (f *FileSource) Get(ctx context.Context, name string) (*models.CharacterProfile, error) {
	all, err := f.loadAll(ctx)
	if err != nil {
		return nil, err
	}
	if p, ok := all[strings.ToLower(strings.TrimSpace(name))]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
}

func (f *FileSource) List(ctx context.Context) ([]string, error) {
	all, err := f.loadAll(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(all))
	for _, p := range all {
		names = append(names, p.Name)
	}
	sort.Strings(names)
	return names, nil
}

func (f *FileSource) loadAll(ctx context.Context) (map[string]*models.CharacterProfile, error) {
	paths, err := filepath.Glob(filepath.Join(f.dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("list profiles in %s: %w", f.dir, err)
	}

	out := make(map[string]*models.CharacterProfile, len(paths))
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p, err := LoadFile(path)
		if err != nil {
			log.Printf("[profiles] skipping %s: %v", path, err)
			continue
		}
		key := strings.ToLower(p.Name)
		if _, dup := out[key]; dup {
			log.Printf("[profiles] duplicate profile name %q in %s, keeping first", p.Name, path)
			continue
		}
		out[key] = p
	}
	return out, nil
}
