package profiles

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/character-quiz/backend/internal/models"
)

func writeProfile(t *testing.T, dir, file, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, file), []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", file, err)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"full profile", `{"name":"Eric","bio":["studying"],"style":{"all":["direct"]}}`, false},
		{"name only", `{"name":"Eric"}`, false},
		{"missing name", `{"bio":["a line"]}`, true},
		{"blank name", `{"name":"   "}`, true},
		{"malformed json", `{"name":`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.body))
			if (err != nil) != tt.wantErr {
				t.Errorf("Parse err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	if _, err := Parse([]byte(`{"name":""}`)); !errors.Is(err, models.ErrProfileNameRequired) {
		t.Errorf("empty name err = %v, want ErrProfileNameRequired", err)
	}
}

func TestFileSource(t *testing.T) {
	dir := t.TempDir()
	writeProfile(t, dir, "eric.json", `{"name":"Eric","bio":["studying computer science at a university"]}`)
	writeProfile(t, dir, "ada.json", `{"name":" Ada ","knowledge":["Rust"]}`)
	writeProfile(t, dir, "broken.json", `{"name":`)
	writeProfile(t, dir, "notes.txt", `{"name":"Hidden"}`)

	src := NewFileSource(dir)
	ctx := context.Background()

	names, err := src.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(names) != 2 || names[0] != "Ada" || names[1] != "Eric" {
		t.Errorf("List = %v, want [Ada Eric]", names)
	}

	p, err := src.Get(ctx, "ERIC")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if p.Name != "Eric" || len(p.Bio) != 1 {
		t.Errorf("Get = %+v", p)
	}

	if _, err := src.Get(ctx, "Hidden"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(Hidden) err = %v, want ErrNotFound", err)
	}
}

type mapSource map[string]*models.CharacterProfile

func (m mapSource) Get(ctx context.Context, name string) (*models.CharacterProfile, error) {
	if p, ok := m[name]; ok {
		return p, nil
	}
	return nil, ErrNotFound
}

func (m mapSource) List(ctx context.Context) ([]string, error) {
	var names []string
	for n := range m {
		names = append(names, n)
	}
	return names, nil
}

type failingSource struct{}

func (failingSource) Get(context.Context, string) (*models.CharacterProfile, error) {
	return nil, errors.New("database down")
}

func (failingSource) List(context.Context) ([]string, error) {
	return nil, errors.New("database down")
}

func TestChainSource(t *testing.T) {
	first := mapSource{"Eric": {Name: "Eric", Bio: []string{"from first"}}}
	second := mapSource{
		"Eric": {Name: "Eric", Bio: []string{"from second"}},
		"Ada":  {Name: "Ada"},
	}
	chain := ChainSource{first, second}
	ctx := context.Background()

	p, err := chain.Get(ctx, "Eric")
	if err != nil || p.Bio[0] != "from first" {
		t.Errorf("Get(Eric) = %+v, %v; want first source", p, err)
	}
	if p, err := chain.Get(ctx, "Ada"); err != nil || p.Name != "Ada" {
		t.Errorf("Get(Ada) = %+v, %v", p, err)
	}
	if _, err := chain.Get(ctx, "Nobody"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(Nobody) err = %v, want ErrNotFound", err)
	}

	names, err := chain.List(ctx)
	if err != nil || len(names) != 2 || names[0] != "Ada" || names[1] != "Eric" {
		t.Errorf("List = %v, %v; want [Ada Eric]", names, err)
	}

	broken := ChainSource{failingSource{}, second}
	if _, err := broken.Get(ctx, "Ada"); err == nil || errors.Is(err, ErrNotFound) {
		t.Errorf("Get through failing source err = %v, want the source error", err)
	}
}
