// Package snapshot reads and writes the CSV interchange file holding one ingestion run.
package snapshot

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"digicards/internal/catalog"
)

// Null is written in place of an absent value.
const Null = "Null"

// Header is the fixed column order of a snapshot file.
var Header = []string{
	"card_number",
	"name",
	"card_type",
	"rarity",
	"color_one",
	"color_two",
	"color_three",
	"image_url",
	"cost",
	"stage",
	"attribute",
	"type_one",
	"type_two",
	"evolution_cost_one",
	"evolution_cost_two",
	"effect",
	"evolution_effect",
	"security_effect",
	"collection_abbreviation",
	"collection_name",
	"dp",
	"is_alternate_art",
	"level",
}

var ErrHeader = errors.New("unexpected snapshot header")

// RowError describes a malformed snapshot row.
type RowError struct {
	Line   int
	Column string
	Err    error
}

func (e *RowError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("snapshot line %d: %s", e.Line, e.Err.Error())
	}
	return fmt.Sprintf("snapshot line %d, column %s: %s", e.Line, e.Column, e.Err.Error())
}

func (e *RowError) Unwrap() error {
	return e.Err
}

func formatText(t catalog.Text) string {
	if !t.Valid {
		return Null
	}
	return t.V
}

func formatNumber(n catalog.Number) string {
	if !n.Valid {
		return Null
	}
	return strconv.FormatInt(n.V, 10)
}

func formatFlag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func row(r catalog.CardRecord) []string {
	return []string{
		r.CardNumber,
		r.Name,
		r.CardType,
		r.Rarity,
		r.ColorOne,
		formatText(r.ColorTwo),
		formatText(r.ColorThree),
		formatText(r.ImageUrl),
		formatNumber(r.Cost),
		formatText(r.Stage),
		formatText(r.Attribute),
		formatText(r.TypeOne),
		formatText(r.TypeTwo),
		formatNumber(r.EvolutionCostOne),
		formatNumber(r.EvolutionCostTwo),
		formatText(r.Effect),
		formatText(r.EvolutionEffect),
		formatText(r.SecurityEffect),
		r.Collection.Abbreviation,
		r.Collection.Name,
		formatNumber(r.DP),
		formatFlag(r.IsAlternateArt),
		formatText(r.Level),
	}
}

// Write encodes a snapshot with its header.
func Write(w io.Writer, snapshot catalog.Snapshot) error {
	writer := csv.NewWriter(w)
	err := writer.Write(Header)
	if err != nil {
		return err
	}
	for _, r := range snapshot {
		err = writer.Write(row(r))
		if err != nil {
			return fmt.Errorf("write %s: %w", r.CardNumber, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteFile writes a snapshot to path, the file is replaced atomically.
func WriteFile(path string, snapshot catalog.Snapshot) error {
	dir := filepath.Dir(path)
	err := os.MkdirAll(dir, 0755)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	err = Write(tmp, snapshot)
	if err != nil {
		tmp.Close()
		return err
	}
	err = tmp.Close()
	if err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// decoder turns the cells of one row into a record, remembering the first failure.
type decoder struct {
	cells []string
	line  int
	err   error
}

func (d *decoder) fail(column int, err error) {
	if d.err == nil {
		d.err = &RowError{Line: d.line, Column: Header[column], Err: err}
	}
}

func isNull(s string) bool {
	return strings.EqualFold(s, Null)
}

func (d *decoder) required(column int) string {
	v := d.cells[column]
	if v == "" || isNull(v) {
		d.fail(column, errors.New("value is required"))
	}
	return v
}

func (d *decoder) text(column int) catalog.Text {
	v := d.cells[column]
	if isNull(v) {
		return catalog.Absent
	}
	return catalog.Present(v)
}

func (d *decoder) number(column int) catalog.Number {
	v := d.cells[column]
	if isNull(v) {
		return catalog.AbsentNumber
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		d.fail(column, fmt.Errorf("invalid integer %q", v))
		return catalog.AbsentNumber
	}
	return catalog.PresentNumber(n)
}

func (d *decoder) flag(column int) bool {
	switch d.cells[column] {
	case "1":
		return true
	case "0":
		return false
	}
	d.fail(column, fmt.Errorf("invalid flag %q", d.cells[column]))
	return false
}

func (d *decoder) record() (catalog.CardRecord, error) {
	r := catalog.CardRecord{
		CardNumber:       d.required(0),
		Name:             d.required(1),
		CardType:         d.required(2),
		Rarity:           d.required(3),
		ColorOne:         d.required(4),
		ColorTwo:         d.text(5),
		ColorThree:       d.text(6),
		ImageUrl:         d.text(7),
		Cost:             d.number(8),
		Stage:            d.text(9),
		Attribute:        d.text(10),
		TypeOne:          d.text(11),
		TypeTwo:          d.text(12),
		EvolutionCostOne: d.number(13),
		EvolutionCostTwo: d.number(14),
		Effect:           d.text(15),
		EvolutionEffect:  d.text(16),
		SecurityEffect:   d.text(17),
		Collection: catalog.CollectionKey{
			Abbreviation: d.required(18),
			Name:         d.required(19),
		},
		DP:             d.number(20),
		IsAlternateArt: d.flag(21),
		Level:          d.text(22),
	}
	if d.err != nil {
		return catalog.CardRecord{}, d.err
	}
	return r, nil
}

// Read decodes a snapshot, the header must match Header exactly.
func Read(r io.Reader) (catalog.Snapshot, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = len(Header)

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: file is empty", ErrHeader)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrHeader, err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	for i, column := range Header {
		if header[i] != column {
			return nil, fmt.Errorf("%w: column %d is %q, expected %q", ErrHeader, i+1, header[i], column)
		}
	}

	var snapshot catalog.Snapshot
	for {
		cells, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read snapshot: %w", err)
		}
		line, _ := reader.FieldPos(0)

		d := decoder{cells: cells, line: line}
		record, err := d.record()
		if err != nil {
			return nil, err
		}
		snapshot = append(snapshot, record)
	}
	return snapshot, nil
}

// ReadFile reads the snapshot stored at path.
func ReadFile(path string) (catalog.Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f)
}
