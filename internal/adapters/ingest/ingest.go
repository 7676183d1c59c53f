// Package ingest reads batches of ranked matchups from CSV and JSON Lines.
//
// Every row carries one label field and one or more places. A place is
// empty, holds a single participant ID, or holds several tied IDs.
package ingest

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/okian/multielo/internal/domain/model"
)

// Batch is a set of matchups sharing one label field.
type Batch struct {
	LabelField string
	Matchups   []model.Matchup
}

// ReadFile reads a batch from path, choosing the format by extension:
// .csv, or .jsonl / .ndjson.
func ReadFile(path string, opts ...Option) (Batch, error) {
	f, err := os.Open(path)
	if err != nil {
		return Batch{}, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return ReadCSV(f, opts...)
	case ".jsonl", ".ndjson":
		return ReadJSONL(f, opts...)
	default:
		return Batch{}, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
}

// ReadCSV reads a header row followed by one matchup per row. The label
// column may sit anywhere; every other column is a place, in header order.
func ReadCSV(r io.Reader, opts ...Option) (Batch, error) {
	o := newOptions(opts)

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return Batch{}, fmt.Errorf("%w: missing header row", ErrMalformedBatch)
	}
	if err != nil {
		return Batch{}, fmt.Errorf("read csv header: %w", err)
	}

	labelCol := -1
	for i, h := range header {
		if strings.TrimSpace(h) == o.labelField {
			if labelCol >= 0 {
				return Batch{}, fmt.Errorf("%w: label field %q appears twice", ErrMalformedBatch, o.labelField)
			}
			labelCol = i
		}
	}
	if labelCol < 0 {
		return Batch{}, fmt.Errorf("%w: label field %q not in header", ErrMalformedBatch, o.labelField)
	}
	if len(header) < 2 {
		return Batch{}, fmt.Errorf("%w: no place columns", ErrMalformedBatch)
	}

	b := Batch{LabelField: o.labelField}
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Batch{}, fmt.Errorf("read csv line %d: %w", line, err)
		}
		if len(rec) != len(header) {
			return Batch{}, fmt.Errorf("%w: line %d has %d fields, header has %d", ErrMalformedBatch, line, len(rec), len(header))
		}

		m := model.Matchup{Label: strings.TrimSpace(rec[labelCol])}
		for i, cell := range rec {
			if i == labelCol {
				continue
			}
			m.Places = append(m.Places, splitTie(cell, o.tieSeparator))
		}
		b.Matchups = append(b.Matchups, m)
	}
	return b, nil
}

func splitTie(cell, sep string) []string {
	return compact(strings.Split(cell, sep))
}

// jsonPlace accepts a place written as null, "id" or ["id", ...].
type jsonPlace []string

func (p *jsonPlace) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*p = nil
		return nil
	case len(data) > 0 && data[0] == '"':
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		*p = compact([]string{id})
		return nil
	default:
		var ids []string
		if err := json.Unmarshal(data, &ids); err != nil {
			return err
		}
		*p = compact(ids)
		return nil
	}
}

func compact(ids []string) []string {
	var out []string
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			out = append(out, id)
		}
	}
	return out
}

// ReadJSONL reads one JSON object per line:
//
//	{"date": "2020-04-05", "id": "m-7", "places": [["Lisa", "Bart"], [], "Homer"]}
//
// The label key is the configured label field. Blank lines are ignored.
func ReadJSONL(r io.Reader, opts ...Option) (Batch, error) {
	o := newOptions(opts)
	b := Batch{LabelField: o.labelField}

	s := bufio.NewScanner(r)
	// Allow larger lines than the default 64K.
	buf := make([]byte, 0, 1024*1024)
	s.Buffer(buf, 8*1024*1024)

	for line := 1; s.Scan(); line++ {
		raw := bytes.TrimSpace(s.Bytes())
		if len(raw) == 0 {
			continue
		}

		var fields map[string]json.RawMessage
		if err := json.Unmarshal(raw, &fields); err != nil {
			return Batch{}, fmt.Errorf("%w: line %d: %v", ErrMalformedBatch, line, err)
		}

		labelRaw, ok := fields[o.labelField]
		if !ok {
			return Batch{}, fmt.Errorf("%w: line %d has no %q field", ErrMalformedBatch, line, o.labelField)
		}
		label, err := scalarString(labelRaw)
		if err != nil {
			return Batch{}, fmt.Errorf("%w: line %d label: %v", ErrMalformedBatch, line, err)
		}

		var places []jsonPlace
		if p, ok := fields["places"]; ok {
			if err := json.Unmarshal(p, &places); err != nil {
				return Batch{}, fmt.Errorf("%w: line %d places: %v", ErrMalformedBatch, line, err)
			}
		}
		if len(places) == 0 {
			return Batch{}, fmt.Errorf("%w: line %d has no places", ErrMalformedBatch, line)
		}

		m := model.Matchup{Label: label}
		if id, ok := fields["id"]; ok {
			if m.ID, err = scalarString(id); err != nil {
				return Batch{}, fmt.Errorf("%w: line %d id: %v", ErrMalformedBatch, line, err)
			}
		}
		for _, p := range places {
			m.Places = append(m.Places, []string(p))
		}
		b.Matchups = append(b.Matchups, m)
	}
	if err := s.Err(); err != nil {
		return Batch{}, err
	}
	return b, nil
}

// scalarString renders a JSON string or number as text.
func scalarString(raw json.RawMessage) (string, error) {
	var v any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return "", err
	}
	switch x := v.(type) {
	case string:
		return x, nil
	case json.Number:
		return x.String(), nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("expected a string or number, got %T", v)
	}
}
