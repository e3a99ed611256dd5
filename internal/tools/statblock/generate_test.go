package statblock

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beastforge/beastforge/pkg/bestiary"
	"github.com/beastforge/beastforge/pkg/logging"
)

// fixtureCorpus builds a corpus of template records keyed by URL, with the
// record title substituted in.
func fixtureCorpus(t *testing.T, titles map[string]string) *bestiary.Corpus {
	t.Helper()
	var b strings.Builder
	b.WriteString("{")
	first := true
	for key, title := range titles {
		if !first {
			b.WriteString(",")
		}
		first = false
		record := strings.Replace(fmt.Sprintf(recordTemplate, ""),
			`"title2": "Test Monster"`, `"title2": "`+title+`"`, 1)
		fmt.Fprintf(&b, "%q: %s", key, record)
	}
	b.WriteString("}")

	corpus, err := bestiary.Parse([]byte(b.String()), "fixture")
	require.NoError(t, err)
	return corpus
}

func TestConvertWritesOneFilePerRecord(t *testing.T) {
	dir := t.TempDir()
	corpus := fixtureCorpus(t, map[string]string{
		"https://aonprd.com/MonsterDisplay.aspx?ItemName=Wolf":   "Wolf",
		"https://aonprd.com/MonsterDisplay.aspx?ItemName=Donkey": "Donkey",
	})

	g := New(WithOutputDir(dir))
	summary, err := g.Convert(context.Background(), corpus)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 2, summary.Written)
	assert.Zero(t, summary.Skipped)
	assert.Zero(t, summary.Failed)

	for _, name := range []string{"Wolf.md", "Donkey.md"} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(string(data), "---\nstatblock: inline\n"))
		assert.Contains(t, string(data), "# Source Link")
	}
}

func TestConvertNeverOverwrites(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "Wolf.md")
	require.NoError(t, os.WriteFile(existing, []byte("hand-edited notes"), 0o644))

	corpus := fixtureCorpus(t, map[string]string{
		"https://aonprd.com/MonsterDisplay.aspx?ItemName=Wolf": "Wolf",
	})

	g := New(WithOutputDir(dir))
	summary, err := g.Convert(context.Background(), corpus)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Skipped)
	assert.Zero(t, summary.Written)

	data, err := os.ReadFile(existing)
	require.NoError(t, err)
	assert.Equal(t, "hand-edited notes", string(data))
}

func TestConvertSkipsMalformedRecords(t *testing.T) {
	dir := t.TempDir()
	corpus, err := bestiary.Parse([]byte(`{
		"https://aonprd.com/MonsterDisplay.aspx?ItemName=Broken": {"title2": "Broken"}
	}`), "fixture")
	require.NoError(t, err)

	g := New(WithOutputDir(dir))
	summary, err := g.Convert(context.Background(), corpus)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Failed)
	assert.Zero(t, summary.Written)
	assert.NoFileExists(t, filepath.Join(dir, "Broken.md"))
}

func TestConvertLogsSkippedRecordKey(t *testing.T) {
	dir := t.TempDir()
	corpus, err := bestiary.Parse([]byte(`{
		"https://aonprd.com/MonsterDisplay.aspx?ItemName=Broken": {"title2": "Broken"}
	}`), "fixture")
	require.NoError(t, err)

	tl := logging.NewTestLogger(t)
	ctx := logging.WithLogger(context.Background(), tl.Logger)

	g := New(WithOutputDir(dir))
	summary, err := g.Convert(ctx, corpus)
	require.NoError(t, err)
	require.Equal(t, 1, summary.Failed)

	assert.True(t, tl.Contains("ItemName=Broken"))
	assert.True(t, tl.Contains("Skipping record"))
}

func TestConvertNPCPrefix(t *testing.T) {
	dir := t.TempDir()
	corpus := fixtureCorpus(t, map[string]string{
		"https://aonprd.com/NPCDisplay.aspx?ItemName=Bandit": "Bandit",
	})

	g := New(WithOutputDir(dir))
	_, err := g.Convert(context.Background(), corpus)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "NPC Bandit.md"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "name: NPC Bandit\n")
}

func TestConvertSanitizesSlashInTitle(t *testing.T) {
	dir := t.TempDir()
	corpus := fixtureCorpus(t, map[string]string{
		"https://aonprd.com/MonsterDisplay.aspx?ItemName=Demon": "Babau/Blood Demon",
	})

	g := New(WithOutputDir(dir))
	_, err := g.Convert(context.Background(), corpus)
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(dir, "Babau or Blood Demon.md"))
}

func TestConvertClean(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "stale.md"), []byte("old"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("keep"), 0o644))
	subdir := filepath.Join(dir, "archive")
	require.NoError(t, os.Mkdir(subdir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(subdir, "kept.md"), []byte("keep"), 0o644))

	corpus := fixtureCorpus(t, map[string]string{
		"https://aonprd.com/MonsterDisplay.aspx?ItemName=Wolf": "Wolf",
	})

	g := New(WithOutputDir(dir), WithClean(true))
	summary, err := g.Convert(context.Background(), corpus)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Written)

	assert.NoFileExists(t, filepath.Join(dir, "stale.md"))
	assert.FileExists(t, filepath.Join(dir, "notes.txt"))
	assert.FileExists(t, filepath.Join(subdir, "kept.md"))
	assert.FileExists(t, filepath.Join(dir, "Wolf.md"))
}

func TestConvertReportsSources(t *testing.T) {
	dir := t.TempDir()
	corpus := fixtureCorpus(t, map[string]string{
		"https://aonprd.com/MonsterDisplay.aspx?ItemName=Wolf": "Wolf",
	})

	g := New(WithOutputDir(dir))
	summary, err := g.Convert(context.Background(), corpus)
	require.NoError(t, err)

	assert.Equal(t, []string{"Bestiary"}, summary.Sources)
	assert.Empty(t, summary.UnknownKeys)
}

func TestWriteOne(t *testing.T) {
	corpus := fixtureCorpus(t, map[string]string{
		"https://aonprd.com/MonsterDisplay.aspx?ItemName=Wolf": "Wolf",
	})
	entry, err := corpus.At(0)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, New().WriteOne(&buf, entry))

	out := buf.String()
	assert.Contains(t, out, "name: Wolf\n")
	// Stdout mode omits the source link section.
	assert.NotContains(t, out, "# Source Link")
}

func TestWriteTestDoc(t *testing.T) {
	parent := t.TempDir()
	outputDir := filepath.Join(parent, "bestiary")
	require.NoError(t, os.Mkdir(outputDir, 0o755))

	g := New(WithOutputDir(outputDir))
	path, err := g.WriteTestDoc("Wolf")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(parent, "Wolf_test.md"), path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "```statblock\nmonster: Wolf\n```\n", string(data))
}
