package eventlog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/encoding/charmap"
)

var (
	// ErrEmptyCSV is returned when the export has no header row
	ErrEmptyCSV = errors.New("csv has no header")
	// ErrColumnNotFound is returned when a required column is missing from the header
	ErrColumnNotFound = errors.New("csv column not found")
)

// Encoding is the character set of the export file
type Encoding string

const (
	EncodingUTF8  Encoding = "utf8"
	EncodingCP866 Encoding = "cp866"
)

// ParseEncoding maps a flag value to an Encoding
func ParseEncoding(s string) (Encoding, error) {
	switch strings.ToLower(strings.ReplaceAll(s, "-", "")) {
	case "utf8", "":
		return EncodingUTF8, nil
	case "cp866", "ibm866", "oem":
		return EncodingCP866, nil
	}
	return "", fmt.Errorf("unsupported encoding %q", s)
}

var dateTimeLayouts = []string{
	"02.01.2006 15:04:05",
	"02.01.2006 15:04",
	"02.01.06 15:04:05",
	"02.01.06 15:04",
}

func parseEventTime(s string) (time.Time, bool) {
	s = strings.Trim(strings.TrimSpace(s), `"`)
	for _, layout := range dateTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

type columns struct {
	event, dateTime, source, computer, description int
}

// last is the highest column index a row must reach
func (c columns) last() int {
	return max(c.event, c.dateTime, c.source, c.computer, c.description)
}

// findColumn returns the first header that starts with one of the candidates,
// compared case-insensitively
func findColumn(header []string, candidates ...string) (int, error) {
	for _, cand := range candidates {
		cand = strings.ToLower(cand)
		for i, h := range header {
			if strings.HasPrefix(strings.ToLower(strings.TrimSpace(h)), cand) {
				return i, nil
			}
		}
	}
	return 0, fmt.Errorf("%w: %s", ErrColumnNotFound, strings.Join(candidates, "/"))
}

func locateColumns(header []string) (columns, error) {
	var (
		c   columns
		err error
	)
	if c.event, err = findColumn(header, "event"); err != nil {
		return c, err
	}
	if c.dateTime, err = findColumn(header, "date time", "datetime"); err != nil {
		return c, err
	}
	if c.source, err = findColumn(header, "source"); err != nil {
		return c, err
	}
	if c.computer, err = findColumn(header, "computername", "computer"); err != nil {
		return c, err
	}
	if c.description, err = findColumn(header, "description", "описание"); err != nil {
		return c, err
	}
	return c, nil
}

// ReadCSV reads an event log export and keeps the 6005 and 6008 events, sorted by time.
// Rows that are too short, carry a non-numeric event id or an unparseable timestamp
// are skipped.
func ReadCSV(r io.Reader, enc Encoding) ([]Event, error) {
	if enc == EncodingCP866 {
		r = charmap.CodePage866.NewDecoder().Reader(r)
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyCSV
		}
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	cols, err := locateColumns(header)
	if err != nil {
		return nil, err
	}

	var events []Event
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				continue
			}
			return nil, fmt.Errorf("failed to read csv: %w", err)
		}
		if len(row) <= cols.last() {
			continue
		}

		id, err := strconv.Atoi(strings.Trim(strings.TrimSpace(row[cols.event]), `"`))
		if err != nil {
			continue
		}
		if id != EventLogStarted && id != EventUnexpectedReboot {
			continue
		}

		t, ok := parseEventTime(row[cols.dateTime])
		if !ok {
			continue
		}

		events = append(events, Event{
			Time:        t,
			EventID:     id,
			Source:      strings.TrimSpace(row[cols.source]),
			Computer:    strings.TrimSpace(row[cols.computer]),
			Description: strings.TrimSpace(row[cols.description]),
		})
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Time.Before(events[j].Time)
	})

	return events, nil
}
