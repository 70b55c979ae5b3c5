package outage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ErrMissingYearsSection is returned when the source document has no "years" mapping.
// There is nothing to aggregate in that case, so the whole load fails.
var ErrMissingYearsSection = errors.New(`dataset has no "years" section`)

// Document is the on-disk dataset: year (as a string) -> days
type Document struct {
	Years map[string]*RawYear `json:"years"`
}

// RawYear holds the days of one year as they appear in the source document
type RawYear struct {
	Year int               `json:"year,omitempty"`
	Days map[string]RawDay `json:"days"`
}

// ParseDocument decodes a dataset document and checks that the years section exists.
// Entries of the wrong type inside the years section do not fail the decode.
func ParseDocument(r io.Reader) (*Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode dataset: %w", err)
	}
	if doc.Years == nil {
		return nil, ErrMissingYearsSection
	}
	return &doc, nil
}

// Encode writes the document as indented JSON
func (d *Document) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(d)
}

// UnmarshalJSON decodes a year. A value that is not an object, or a days section
// that is not an object, leaves Days nil so the year is skipped.
func (y *RawYear) UnmarshalJSON(data []byte) error {
	*y = RawYear{}

	var raw struct {
		Year json.RawMessage `json:"year"`
		Days json.RawMessage `json:"days"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}
	y.Year = lenientInt(raw.Year)

	var days map[string]RawDay
	if err := json.Unmarshal(raw.Days, &days); err == nil {
		y.Days = days
	}
	return nil
}

// UnmarshalJSON decodes a day. Rows of the wrong type become empty intervals, which
// NormalizeInterval drops, and a non-numeric outage_count reads as 0.
func (d *RawDay) UnmarshalJSON(data []byte) error {
	*d = RawDay{}

	var raw struct {
		Intervals   json.RawMessage `json:"intervals"`
		OutageCount json.RawMessage `json:"outage_count"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}
	d.OutageCount = lenientInt(raw.OutageCount)

	var rows []json.RawMessage
	if err := json.Unmarshal(raw.Intervals, &rows); err != nil || rows == nil {
		return nil
	}
	d.Intervals = make([]RawInterval, len(rows))
	for i, row := range rows {
		if err := json.Unmarshal(row, &d.Intervals[i]); err != nil {
			d.Intervals[i] = RawInterval{}
		}
	}
	return nil
}

// UnmarshalJSON decodes an interval row. Anything but a string bound reads as "".
func (iv *RawInterval) UnmarshalJSON(data []byte) error {
	*iv = RawInterval{}

	var raw struct {
		From json.RawMessage `json:"from"`
		To   json.RawMessage `json:"to"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}
	iv.From = lenientString(raw.From)
	iv.To = lenientString(raw.To)
	return nil
}

func lenientString(data json.RawMessage) string {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return ""
	}
	return s
}

func lenientInt(data json.RawMessage) int {
	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		return 0
	}
	return int(n)
}
