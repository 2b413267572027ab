package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OFFIS-RIT/idisland/pkg/export"
)

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	require.NoError(t, cmd.Execute())
	return out.String()
}

func generateArgs(dir string, extra ...string) []string {
	args := []string{
		"generate",
		"--out", dir,
		"--seed", "42",
		"--islands", "6",
		"--anomaly-percentage", "50",
		"--as-of", "2024-01-01",
	}
	return append(args, extra...)
}

func TestGenerateWritesBothPhases(t *testing.T) {
	dir := t.TempDir()
	out := execute(t, generateArgs(dir, "--nquads")...)

	assert.Contains(t, out, "islands: 6")
	for _, sub := range []string{"synthetic_data", "anomalies_data"} {
		assert.FileExists(t, filepath.Join(dir, sub, "graph.json.zst"))
		assert.FileExists(t, filepath.Join(dir, sub, "graph.nq"))
	}
}

func TestGenerateIsReproducible(t *testing.T) {
	first, second := t.TempDir(), t.TempDir()
	execute(t, generateArgs(first, "--nquads")...)
	execute(t, generateArgs(second, "--nquads")...)

	for _, sub := range []string{"synthetic_data", "anomalies_data"} {
		a, err := os.ReadFile(filepath.Join(first, sub, "graph.nq"))
		require.NoError(t, err)
		b, err := os.ReadFile(filepath.Join(second, sub, "graph.nq"))
		require.NoError(t, err)
		assert.Equal(t, a, b, sub)
	}
}

func TestInspectAndExport(t *testing.T) {
	dir := t.TempDir()
	execute(t, generateArgs(dir)...)

	out := execute(t, "inspect", "--dir", dir, "--phase", "clean")
	assert.Contains(t, out, "Island 0")
	assert.Contains(t, out, "base")

	labels := execute(t, "inspect", "--dir", dir, "--anomalies")
	assert.Len(t, strings.Split(strings.TrimSpace(labels), "\n"), 3)

	nq := execute(t, "export", "--dir", dir)
	triples, err := export.ParseNQuads(strings.NewReader(nq))
	require.NoError(t, err)
	g, err := export.FromTriples(triples, export.DefaultBaseURI)
	require.NoError(t, err)
	assert.Positive(t, g.NodeCount())

	first := strings.Fields(strings.SplitN(out, "\n  base", 2)[1])[0]
	node := execute(t, "inspect", "--dir", dir, "--node", first)
	assert.True(t, strings.HasPrefix(node, "Identity "+first), node)

	similar := execute(t, "similar", first, "--dir", dir, "--limit", "3")
	assert.Len(t, strings.Split(strings.TrimSpace(similar), "\n"), 3)
}

func TestProfileWithFlagOverride(t *testing.T) {
	dir := t.TempDir()
	profile := filepath.Join(dir, "profile.yaml")
	require.NoError(t, os.WriteFile(profile, []byte(`
seed: 7
islands: 2
anomaly_percentage: 0
as_of: "2024-01-01"
max_identities: 3
`), 0o644))

	out := execute(t, "generate", "--out", dir, "--profile", profile, "--islands", "4")
	assert.Contains(t, out, "islands: 4")
	assert.NotContains(t, out, "anomalies:")
}

func TestLoadProfileRejectsUnknownFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")
	require.NoError(t, os.WriteFile(path, []byte("islandz: 3\n"), 0o644))
	_, err := loadProfile(path)
	assert.Error(t, err)
}

func TestGenerateRejectsBadDate(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"generate", "--out", t.TempDir(), "--as-of", "yesterday"})
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	assert.Error(t, cmd.Execute())
}
