package models

import (
	"errors"
	"strings"
)

var ErrProfileNameRequired = errors.New("character profile name is required")

// CharacterProfile is the persona a quiz is generated from. Only Name is
// required; every other field may be empty.
type CharacterProfile struct {
	Name      string       `json:"name"`
	Bio       []string     `json:"bio,omitempty"`
	Knowledge []string     `json:"knowledge,omitempty"`
	Style     ProfileStyle `json:"style"`
	Lore      []string     `json:"lore,omitempty"`
	Topics    []string     `json:"topics,omitempty"`
}

type ProfileStyle struct {
	All []string `json:"all,omitempty"`
}

func (p CharacterProfile) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrProfileNameRequired
	}
	return nil
}
