package feed_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/memora/internal/feed"
	"github.com/vytor/memora/internal/models"
)

func TestReadYAML(t *testing.T) {
	file, err := feed.ReadYAML(strings.NewReader(`
deck: Mi Glosario
entries:
  - front: hola
    back: mba'éichapa
    notes: greeting
  - front: agua
    back: "y"
`))
	require.NoError(t, err)
	assert.Equal(t, "Mi Glosario", file.Deck)
	assert.Equal(t, []models.ItemEntry{
		{Front: "hola", Back: "mba'éichapa", Notes: "greeting"},
		{Front: "agua", Back: "y"},
	}, file.Entries)
}

func TestReadYAML_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "unknown field", input: "entries:\n  - front: a\n    back: b\n    colour: red\n"},
		{name: "too long", input: "entries:\n  - front: " + strings.Repeat("x", 256) + "\n    back: b\n"},
		{name: "not a list", input: "entries: nope\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := feed.ReadYAML(strings.NewReader(tt.input))
			assert.Error(t, err)
		})
	}
}

func TestReadYAML_KeepsBlankEntriesForSync(t *testing.T) {
	file, err := feed.ReadYAML(strings.NewReader("entries:\n  - front: \"\"\n    back: tata\n  - front: agua\n    back: \"y\"\n"))
	require.NoError(t, err)
	assert.Len(t, file.Entries, 2)
}

func TestReadYAML_Empty(t *testing.T) {
	file, err := feed.ReadYAML(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, file.Entries)
}

func TestReadCSV_GuessesDelimiterAndHeaders(t *testing.T) {
	input := "\ufeffes;gn;notas\nhola;mba'éichapa;saludo\n agua ; y \n;vacío\n"
	file, err := feed.ReadCSV(strings.NewReader(input), 0)
	require.NoError(t, err)
	require.Len(t, file.Entries, 3)
	assert.Equal(t, models.ItemEntry{Front: "hola", Back: "mba'éichapa", Notes: "saludo"}, file.Entries[0])
	assert.Equal(t, models.ItemEntry{Front: "agua", Back: "y"}, file.Entries[1])
	assert.Equal(t, "", file.Entries[2].Front)
}

func TestReadCSV_MissingColumns(t *testing.T) {
	_, err := feed.ReadCSV(strings.NewReader("word,meaning\na,b\n"), ',')
	assert.ErrorContains(t, err, "front and back")
}

func TestLoad_ByExtension(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "glossary.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("front,back\nsol,kuarahy\n"), 0o600))
	yamlPath := filepath.Join(dir, "glossary.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("entries:\n  - front: luna\n    back: jasy\n"), 0o600))

	fromCSV, err := feed.Load(csvPath)
	require.NoError(t, err)
	assert.Equal(t, "kuarahy", fromCSV.Entries[0].Back)

	fromYAML, err := feed.Load(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, "jasy", fromYAML.Entries[0].Back)

	_, err = feed.Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
