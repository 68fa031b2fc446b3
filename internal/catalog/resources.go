package catalog

// file: internal/catalog/resources.go

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/dkoosis/voicestyle/internal/mcperrors"
	"github.com/dkoosis/voicestyle/internal/schema"
	"github.com/dkoosis/voicestyle/internal/voice"
)

// Resource URIs.
const (
	ResourceFullProfile    = "voice://matt/full-profile"
	ResourceSignatureMoves = "voice://matt/signature-moves"
	ResourceBannedElements = "voice://matt/banned-elements"
)

// MIME types used by the resources.
const (
	MIMEJSON = "application/json"
	MIMEText = "text/plain"
)

// ResourceInfo is the listing entry for a resource.
type ResourceInfo struct {
	URI         string
	Name        string
	Description string
	MIMEType    string
}

// ResourceContent is the body of a read resource.
type ResourceContent struct {
	URI      string
	MIMEType string
	Text     string
}

type resourceEntry struct {
	info ResourceInfo
	text string
}

// Resources is the resource catalog. Bodies are rendered once at construction.
type Resources struct {
	entries []resourceEntry
	byURI   map[string]int
}

// NewResources builds the resource catalog over profile.
func NewResources(profile voice.Profile) (*Resources, error) {
	doc, err := profile.MarshalDocument()
	if err != nil {
		return nil, errors.Wrap(err, "failed to render full profile resource")
	}
	entries := []resourceEntry{
		{
			info: ResourceInfo{
				URI:         ResourceFullProfile,
				Name:        "Full Voice Profile",
				Description: "Complete voice, style, and tone profile",
				MIMEType:    MIMEJSON,
			},
			text: string(doc),
		},
		{
			info: ResourceInfo{
				URI:         ResourceSignatureMoves,
				Name:        "Signature Moves",
				Description: "List of signature writing moves",
				MIMEType:    MIMEText,
			},
			text: strings.Join(profile.Voice.SignatureMoves, "\n"),
		},
		{
			info: ResourceInfo{
				URI:         ResourceBannedElements,
				Name:        "Banned Elements",
				Description: "List of banned phrases and patterns",
				MIMEType:    MIMEText,
			},
			text: strings.Join(profile.Voice.Banned, "\n"),
		},
	}
	keys := make([]string, len(entries))
	for i, e := range entries {
		keys[i] = e.info.URI
	}
	byURI, err := index(schema.EntityTypeResource, keys)
	if err != nil {
		return nil, err
	}
	return &Resources{entries: entries, byURI: byURI}, nil
}

// List returns every resource in registration order.
func (r *Resources) List() []ResourceInfo {
	out := make([]ResourceInfo, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.info
	}
	return out
}

// Read returns the resource at uri, or a NotFoundError.
func (r *Resources) Read(uri string) (ResourceContent, error) {
	i, ok := r.byURI[uri]
	if !ok {
		return ResourceContent{}, mcperrors.NewNotFound(mcperrors.KindResource, uri)
	}
	e := r.entries[i]
	return ResourceContent{URI: e.info.URI, MIMEType: e.info.MIMEType, Text: e.text}, nil
}
