package profiles

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/character-quiz/backend/internal/models"
)

var ErrNotFound = errors.New("character profile not found")

// Source looks character profiles up by name.
type Source interface {
	Get(ctx context.Context, name string) (*models.CharacterProfile, error)
	List(ctx context.Context) ([]string, error)
}

// ChainSource asks each source in order; the first hit wins.
type ChainSource []Source

func (c ChainSource) Get(ctx context.Context, name string) (*models.CharacterProfile, error) {
	for _, src := range c {
		p, err := src.Get(ctx, name)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
}

func (c ChainSource) List(ctx context.Context) ([]string, error) {
	seen := make(map[string]bool)
	var names []string
	for _, src := range c {
		list, err := src.List(ctx)
		if err != nil {
			return nil, err
		}
		for _, n := range list {
			if !seen[n] {
				seen[n] = true
				names = append(names, n)
			}
		}
	}
	sort.Strings(names)
	return names, nil
}
