// file: cmd/voicestyle/main_test.go
package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/dkoosis/voicestyle/internal/voice"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestProfileCmd_JSONMatchesDocument(t *testing.T) {
	out, err := execute(t, "profile")
	require.NoError(t, err)
	doc, err := voice.Default().MarshalDocument()
	require.NoError(t, err)
	assert.Equal(t, string(doc)+"\n", out)
}

func TestProfileCmd_YAMLRoundTrips(t *testing.T) {
	out, err := execute(t, "profile", "--format", "yaml")
	require.NoError(t, err)
	var p voice.Profile
	require.NoError(t, yaml.Unmarshal([]byte(out), &p))
	assert.Equal(t, voice.Default(), p)
}

func TestProfileCmd_UnknownFormatFails(t *testing.T) {
	_, err := execute(t, "profile", "--format", "xml")
	require.Error(t, err)
}

func TestProfileCmd_UsesConfiguredProfile(t *testing.T) {
	dir := t.TempDir()
	p := voice.Default()
	p.Name = "Someone Else"
	data, err := yaml.Marshal(p)
	require.NoError(t, err)
	profilePath := filepath.Join(dir, "profile.yaml")
	require.NoError(t, os.WriteFile(profilePath, data, 0o600))
	configPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("profile:\n  path: "+profilePath+"\n"), 0o600))

	out, err := execute(t, "profile", "--config", configPath)
	require.NoError(t, err)
	assert.Contains(t, out, `"name": "Someone Else"`)
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "voicestyle "+Version)
}

func TestNormalizeTransports(t *testing.T) {
	got, err := normalizeTransports([]string{"http", "stdio", "http"})
	require.NoError(t, err)
	assert.Equal(t, []string{"http", "stdio"}, got)

	got, err = normalizeTransports(nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"stdio"}, got)

	_, err = normalizeTransports([]string{"stdio", "dispatch"})
	require.Error(t, err)

	_, err = normalizeTransports([]string{"grpc"})
	require.Error(t, err)
}

func TestServeCmd_InvalidPortFailsBeforeServing(t *testing.T) {
	_, err := execute(t, "serve", "--transport", "http", "--port", "70000")
	require.Error(t, err)
}
