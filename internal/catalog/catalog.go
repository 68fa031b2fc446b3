// Package catalog maps request keys (prompt names, resource URIs, tool names) to content
// rendered from a voice.Profile. Catalogs hold no transport knowledge: every adapter asks
// the same catalogs and translates their errors with mcperrors.
package catalog

// file: internal/catalog/catalog.go

import (
	"github.com/cockroachdb/errors"
	"github.com/dkoosis/voicestyle/internal/logging"
	"github.com/dkoosis/voicestyle/internal/mcperrors"
	"github.com/dkoosis/voicestyle/internal/schema"
	"github.com/dkoosis/voicestyle/internal/voice"
)

// Set bundles the three catalogs built from one profile.
type Set struct {
	Prompts   *Prompts
	Resources *Resources
	Tools     *Tools
}

// New builds every catalog from profile.
func New(profile voice.Profile, logger logging.Logger) (*Set, error) {
	prompts, err := NewPrompts(profile)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build prompt catalog")
	}
	resources, err := NewResources(profile)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build resource catalog")
	}
	tools, err := NewTools(profile, prompts, schema.NewValidator(logger))
	if err != nil {
		return nil, errors.Wrap(err, "failed to build tool catalog")
	}
	return &Set{Prompts: prompts, Resources: resources, Tools: tools}, nil
}

// Check returns a NotFoundError when key is not registered in the catalog for kind.
func (s *Set) Check(kind mcperrors.Kind, key string) error {
	var ok bool
	switch kind {
	case mcperrors.KindPrompt:
		_, ok = s.Prompts.byName[key]
	case mcperrors.KindResource:
		_, ok = s.Resources.byURI[key]
	case mcperrors.KindTool:
		_, ok = s.Tools.byName[key]
	default:
		return errors.Newf("unknown catalog kind %q", kind)
	}
	if !ok {
		return mcperrors.NewNotFound(kind, key)
	}
	return nil
}

// index maps keys to their registration position, rejecting invalid or duplicate keys.
func index(kind schema.EntityType, keys []string) (map[string]int, error) {
	idx := make(map[string]int, len(keys))
	for i, k := range keys {
		if err := schema.ValidateName(kind, k); err != nil {
			return nil, err
		}
		if _, dup := idx[k]; dup {
			return nil, errors.Newf("duplicate %s key %q", kind, k)
		}
		idx[k] = i
	}
	return idx, nil
}
