package dictionary

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLookupCaseInsensitive(t *testing.T) {
	d := New(map[string]string{"Tech": "Tecnología", "  Go  ": "Go"})

	value, ok := d.Lookup("tech")
	require.True(t, ok)
	assert.Equal(t, "Tecnología", value)

	value, ok = d.Lookup("TECH ")
	require.True(t, ok)
	assert.Equal(t, "Tecnología", value)

	_, ok = d.Lookup("news")
	assert.False(t, ok)
	assert.Equal(t, 2, d.Len())
}

func TestNilDictionary(t *testing.T) {
	var d *Dictionary
	_, ok := d.Lookup("anything")
	assert.False(t, ok)
	assert.Equal(t, 0, d.Len())
	assert.Equal(t, "", d.Source())
}

func TestReadCSV(t *testing.T) {
	input := "translation,notes,Term\nTecnología,curated,tech\nNoticias,,News\n,,empty\n"
	d, err := ReadCSV(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, 2, d.Len())
	value, ok := d.Lookup("NEWS")
	require.True(t, ok)
	assert.Equal(t, "Noticias", value)
}

func TestReadCSVMissingColumn(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("source,target\na,b\n"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingColumn))
}

func TestReadCSVEmpty(t *testing.T) {
	d, err := ReadCSV(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, 0, d.Len())
}

func TestLoadMissingFileIsNotAnError(t *testing.T) {
	d, err := Load(t.TempDir(), "es")
	require.NoError(t, err)
	assert.Equal(t, 0, d.Len())
	assert.Empty(t, d.Source())

	d, err = Load("", "es")
	require.NoError(t, err)
	assert.Equal(t, 0, d.Len())
}

func TestLoadPrefersCSV(t *testing.T) {
	dir := t.TempDir()
	csvPath := writeFile(t, dir, "es.csv", "term,translation\ntech,Tecnología\n")
	writeFile(t, dir, "es.toml", "source_lang = \"en\"\ntarget_lang = \"es\"\n[translations]\ntech = \"Tecno\"\n")

	d, err := Load(dir, "es")
	require.NoError(t, err)
	assert.Equal(t, csvPath, d.Source())

	value, _ := d.Lookup("tech")
	assert.Equal(t, "Tecnología", value)
}

func TestLoadTOML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "fr.toml", "source_lang = \"en\"\ntarget_lang = \"fr\"\n\n[translations]\n\"Open Source\" = \"Logiciel libre\"\n")

	d, err := Load(dir, "fr")
	require.NoError(t, err)

	value, ok := d.Lookup("open source")
	require.True(t, ok)
	assert.Equal(t, "Logiciel libre", value)
}

func TestLoadMalformedTOML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "de.toml", "[translations\nbroken")

	_, err := Load(dir, "de")
	assert.Error(t, err)
}
