package profiles

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/character-quiz/backend/internal/models"
)

// Store keeps profiles in the character_profiles table as JSONB documents.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Get(ctx context.Context, name string) (*models.CharacterProfile, error) {
	var doc []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT profile FROM character_profiles WHERE LOWER(name) = LOWER($1)`,
		name,
	).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return Parse(doc)
}

func (s *Store) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM character_profiles ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("scan profile name: %w", err)
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

// Upsert stores p, replacing any profile whose name matches case-insensitively.
// The stored name takes p's spelling.
func (s *Store) Upsert(ctx context.Context, p models.CharacterProfile) error {
	if err := p.Validate(); err != nil {
		return err
	}
	doc, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert: %w", err)
	}
	defer tx.Rollback()

	if err := upsertProfile(ctx, tx, p.Name, doc); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert: %w", err)
	}
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// upsertProfile matches on LOWER(name) so it agrees with the unique index;
// ON CONFLICT (name) would miss a row stored under different casing.
func upsertProfile(ctx context.Context, ex execer, name string, doc []byte) error {
	res, err := ex.ExecContext(ctx,
		`UPDATE character_profiles SET name = $1, profile = $2, updated_at = NOW()
		 WHERE LOWER(name) = LOWER($1)`,
		name, doc,
	)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	if n > 0 {
		return nil
	}

	if _, err := ex.ExecContext(ctx,
		`INSERT INTO character_profiles (name, profile, updated_at) VALUES ($1, $2, NOW())`,
		name, doc,
	); err != nil {
		return fmt.Errorf("insert profile: %w", err)
	}
	return nil
}
