package voice

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestStore_Get_ReturnsSameValueEveryCall(t *testing.T) {
	s := NewDefaultStore()
	if diff := cmp.Diff(s.Get(), s.Get()); diff != "" {
		t.Fatalf("Get() changed between calls (-first +second):\n%s", diff)
	}
}

func TestStore_Get_CallerMutationDoesNotLeak(t *testing.T) {
	s := NewDefaultStore()
	p := s.Get()
	p.Voice.SignatureMoves[0] = "mutated"
	p.Voice.Banned = append(p.Voice.Banned, "extra")

	fresh := s.Get()
	assert.Equal(t, "One strong line per section", fresh.Voice.SignatureMoves[0])
	assert.Len(t, fresh.Voice.Banned, 5)
}

func TestNewStore_CopiesInput(t *testing.T) {
	p := Default()
	s, err := NewStore(p)
	require.NoError(t, err)

	p.Voice.Banned[0] = "changed after construction"
	assert.Equal(t, "Hypophora", s.Get().Voice.Banned[0])
}

func TestProfile_MarshalDocument_MatchesOriginalLayout(t *testing.T) {
	doc, err := Default().MarshalDocument()
	require.NoError(t, err)

	text := string(doc)
	assert.Contains(t, text, "\"Real examples > metaphors\"", "'>' must not be HTML escaped.")
	assert.Contains(t, text, "\n  \"voice\": {\n    \"tone\": ")
	assert.NotContains(t, text, "\n\n")
	assert.Less(t, strings.Index(text, "\"name\""), strings.Index(text, "\"version\""))
	assert.Less(t, strings.Index(text, "\"paragraphs\""), strings.Index(text, "\"spacing\""))

	var roundTrip Profile
	require.NoError(t, json.Unmarshal(doc, &roundTrip))
	if diff := cmp.Diff(Default(), roundTrip); diff != "" {
		t.Fatalf("document does not round-trip (-want +got):\n%s", diff)
	}
}

func TestProfile_FormattingRules_DeclaredOrder(t *testing.T) {
	rules := Default().FormattingRules()
	require.Len(t, rules, 5)
	labels := make([]string, len(rules))
	for i, r := range rules {
		labels[i] = r.Label
	}
	assert.Equal(t, []string{"Paragraphs", "Headings", "Emphasis", "Quotes", "Spacing"}, labels)
	assert.Equal(t, "1–3 lines", rules[0].Value)
}

func TestProfile_Validate(t *testing.T) {
	require.NoError(t, Default().Validate())

	p := Default()
	p.Voice.Tone = ""
	assert.ErrorContains(t, p.Validate(), "voice.tone")

	p = Default()
	p.Voice.Banned = nil
	assert.ErrorContains(t, p.Validate(), "voice.banned")

	p = Default()
	p.Voice.Formatting.Quotes = ""
	assert.ErrorContains(t, p.Validate(), "voice.formatting.quotes")
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	t.Run("EmptyPathUsesDefault", func(t *testing.T) {
		s, err := Open("")
		require.NoError(t, err)
		assert.Equal(t, Default(), s.Get())
	})

	t.Run("YAML", func(t *testing.T) {
		want := Default()
		want.Name = "Someone Else"
		data, err := yaml.Marshal(want)
		require.NoError(t, err)
		path := filepath.Join(dir, "profile.yaml")
		require.NoError(t, os.WriteFile(path, data, 0o600))

		s, err := Open(path)
		require.NoError(t, err)
		if diff := cmp.Diff(want, s.Get()); diff != "" {
			t.Fatalf("loaded profile mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("JSON", func(t *testing.T) {
		doc, err := Default().MarshalDocument()
		require.NoError(t, err)
		path := filepath.Join(dir, "profile.json")
		require.NoError(t, os.WriteFile(path, doc, 0o600))

		s, err := Open(path)
		require.NoError(t, err)
		assert.Equal(t, Default(), s.Get())
	})

	t.Run("IncompleteFileRejected", func(t *testing.T) {
		path := filepath.Join(dir, "partial.yaml")
		require.NoError(t, os.WriteFile(path, []byte("name: partial\nvoice:\n  tone: dry\n"), 0o600))
		_, err := Open(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid profile file")
	})

	t.Run("MissingFile", func(t *testing.T) {
		_, err := Open(filepath.Join(dir, "missing.yaml"))
		require.Error(t, err)
	})
}
