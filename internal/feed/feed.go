// Package feed reads glossary exports into item entries for syncing.
package feed

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vytor/memora/internal/models"
	"github.com/vytor/memora/internal/validation"
)

// File is the layout of a glossary export.
type File struct {
	Deck    string             `json:"deck" yaml:"deck"`
	Entries []models.ItemEntry `json:"entries" yaml:"entries"`
}

var (
	frontHeaders = []string{"front", "es", "spanish", "español", "source"}
	backHeaders  = []string{"back", "gn", "guarani", "guaraní", "target"}
	notesHeaders = []string{"notes", "nota", "notas", "comment"}
)

// Load reads path as YAML or CSV depending on its extension.
func Load(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".tsv", ".txt":
		return ReadCSV(f, 0)
	default:
		return ReadYAML(f)
	}
}

// ReadYAML decodes a File and validates every entry.
func ReadYAML(r io.Reader) (*File, error) {
	var file File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode feed: %w", err)
	}
	if err := validate(file.Entries); err != nil {
		return nil, err
	}
	return &file, nil
}

// ReadCSV reads rows with a header naming the front, back and optional
// notes columns. A zero delimiter is guessed from the header line.
func ReadCSV(r io.Reader, delimiter rune) (*File, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	text := strings.TrimPrefix(string(data), "\ufeff")
	if delimiter == 0 {
		delimiter = guessDelimiter(firstLine(text))
	}

	cr := csv.NewReader(strings.NewReader(text))
	cr.Comma = delimiter
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := map[string]int{}
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	front, okFront := pick(cols, frontHeaders)
	back, okBack := pick(cols, backHeaders)
	if !okFront || !okBack {
		return nil, fmt.Errorf("header must name front and back columns (e.g. front,back[,notes]), got %v", header)
	}
	notes, hasNotes := pick(cols, notesHeaders)

	var file File
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		e := models.ItemEntry{Front: field(rec, front), Back: field(rec, back)}
		if hasNotes {
			e.Notes = field(rec, notes)
		}
		file.Entries = append(file.Entries, e)
	}
	if err := validate(file.Entries); err != nil {
		return nil, err
	}
	return &file, nil
}

func validate(entries []models.ItemEntry) error {
	v := validation.New()
	for i, e := range entries {
		if err := v.Struct(e); err != nil {
			return fmt.Errorf("entry %d: %w", i+1, err)
		}
	}
	return nil
}

func pick(cols map[string]int, names []string) (int, bool) {
	for _, n := range names {
		if i, ok := cols[n]; ok {
			return i, true
		}
	}
	return 0, false
}

func field(rec []string, i int) string {
	if i < len(rec) {
		return strings.TrimSpace(rec[i])
	}
	return ""
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func guessDelimiter(line string) rune {
	for _, d := range []rune{',', ';', '\t', '|'} {
		if strings.ContainsRune(line, d) {
			return d
		}
	}
	return ','
}
