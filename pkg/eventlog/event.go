// Package eventlog turns Windows system event log exports into the outage dataset
// consumed by pkg/outage. Event 6008 ("the previous system shutdown was unexpected")
// carries both ends of an outage: its own timestamp is the boot after power returned and
// its description names the moment the machine went down.
package eventlog

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// Event ids kept from the export
const (
	EventLogStarted       = 6005
	EventUnexpectedReboot = 6008
)

// TimeLayout is how naive local timestamps are written to JSON
const TimeLayout = "2006-01-02T15:04:05"

// Event is one row of the export. Times carry no zone; they are held in UTC so the
// wall clock round-trips unchanged.
type Event struct {
	Time        time.Time
	EventID     int
	Source      string
	Computer    string
	Description string
}

type eventJSON struct {
	DateTime    string `json:"datetime"`
	EventID     int    `json:"event_id"`
	Source      string `json:"source"`
	Computer    string `json:"computer"`
	Description string `json:"description"`
}

// MarshalJSON writes the event with a naive ISO timestamp
func (e Event) MarshalJSON() ([]byte, error) {
	return json.Marshal(eventJSON{
		DateTime:    e.Time.Format(TimeLayout),
		EventID:     e.EventID,
		Source:      e.Source,
		Computer:    e.Computer,
		Description: e.Description,
	})
}

// UnmarshalJSON reads an event written by MarshalJSON
func (e *Event) UnmarshalJSON(b []byte) error {
	var ej eventJSON
	if err := json.Unmarshal(b, &ej); err != nil {
		return err
	}

	var t time.Time
	if ej.DateTime != "" {
		parsed, err := time.ParseInLocation(TimeLayout, ej.DateTime, time.UTC)
		if err != nil {
			return fmt.Errorf("invalid event datetime %q: %w", ej.DateTime, err)
		}
		t = parsed
	}

	*e = Event{
		Time:        t,
		EventID:     ej.EventID,
		Source:      ej.Source,
		Computer:    ej.Computer,
		Description: ej.Description,
	}
	return nil
}

// WriteEventsJSON writes events as an indented JSON list
func WriteEventsJSON(w io.Writer, events []Event) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if events == nil {
		events = []Event{}
	}
	return enc.Encode(events)
}

// ReadEventsJSON reads a JSON list of events
func ReadEventsJSON(r io.Reader) ([]Event, error) {
	var events []Event
	if err := json.NewDecoder(r).Decode(&events); err != nil {
		return nil, fmt.Errorf("failed to decode events: %w", err)
	}
	return events, nil
}
