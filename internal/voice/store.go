package voice

// file: internal/voice/store.go

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

// Store holds the profile for the lifetime of the process.
type Store struct {
	profile Profile
}

// NewStore validates p and freezes a private copy of it.
func NewStore(p Profile) (*Store, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Store{profile: p.Clone()}, nil
}

// NewDefaultStore returns a store over the built-in profile.
func NewDefaultStore() *Store {
	return &Store{profile: Default()}
}

// Get returns the profile. The returned value shares no memory with the store.
func (s *Store) Get() Profile {
	return s.profile.Clone()
}

// Load reads a profile document from path. Files ending in .json are decoded as JSON,
// everything else as YAML. Fields absent from the file are required, not defaulted.
func Load(path string) (Profile, error) {
	// #nosec G304 -- Path comes from configuration.
	data, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, errors.Wrapf(err, "failed to read profile file: %s", path)
	}

	var p Profile
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(data, &p)
	} else {
		err = yaml.Unmarshal(data, &p)
	}
	if err != nil {
		return Profile{}, errors.Wrapf(err, "failed to parse profile file: %s", path)
	}
	if err := p.Validate(); err != nil {
		return Profile{}, errors.Wrapf(err, "invalid profile file: %s", path)
	}
	return p, nil
}

// Open returns a store for path, or the built-in profile when path is empty.
func Open(path string) (*Store, error) {
	if path == "" {
		return NewDefaultStore(), nil
	}
	p, err := Load(path)
	if err != nil {
		return nil, err
	}
	return NewStore(p)
}
