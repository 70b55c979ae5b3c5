package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/chrissnell/powerstats/internal/constants"
	"github.com/chrissnell/powerstats/internal/log"
	"github.com/chrissnell/powerstats/pkg/eventlog"
	"github.com/chrissnell/powerstats/pkg/outage"
)

func main() {
	var (
		csvFile    = flag.String("csv", "", "Event log CSV export to read")
		encoding   = flag.String("encoding", "cp866", "Encoding of the CSV export: cp866 or utf8")
		eventsFile = flag.String("events-json", "", "Read events from a JSON list instead of a CSV export")
		dumpEvents = flag.String("dump-events", "", "Also write the filtered events as a JSON list to this file")
		mergeGap   = flag.Duration("merge-gap", 0, "Merge outages separated by no more than this gap")
		outFile    = flag.String("out", constants.DefaultDatasetFile, "Dataset file to write")
		debug      = flag.Bool("debug", false, "Turn on debugging output")
	)
	flag.Parse()

	if (*csvFile == "") == (*eventsFile == "") {
		fmt.Fprintf(os.Stderr, "Usage: %s (-csv <export.csv> | -events-json <events.json>) [-out %s]\n", os.Args[0], constants.DefaultDatasetFile)
		flag.PrintDefaults()
		os.Exit(1)
	}

	if err := log.Init(*debug); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	events, err := readEvents(*csvFile, *encoding, *eventsFile)
	if err != nil {
		log.Fatalf("Failed to read events: %v", err)
	}
	log.Infow("events loaded", "count", len(events))

	if *dumpEvents != "" {
		if err := writeFile(*dumpEvents, func(w io.Writer) error { return eventlog.WriteEventsJSON(w, events) }); err != nil {
			log.Fatalf("Failed to write events: %v", err)
		}
		log.Infof("Events written to %s", *dumpEvents)
	}

	spans, st := eventlog.ExtractIntervals(events)
	log.Infow("outage intervals extracted",
		"unexpected_reboots", st.UnexpectedReboots,
		"spans", st.Spans,
		"no_shutdown_time", st.NoShutdownTime,
		"bad_order", st.BadOrder,
	)

	merged := eventlog.MergeSpans(spans, *mergeGap)
	log.Infof("%d outages after merging (gap %s)", len(merged), *mergeGap)

	doc := eventlog.BuildDocument(merged)
	stats := eventlog.GlobalStats(merged, doc)
	log.Infow("dataset built",
		"total_outages", stats.TotalOutages,
		"days_with_outages", stats.DaysWithOutages,
		"total_minutes", int(stats.TotalMinutes),
		"total_hours", outage.Hours(stats.TotalMinutes),
	)

	if err := writeFile(*outFile, doc.Encode); err != nil {
		log.Fatalf("Failed to write dataset: %v", err)
	}
	log.Infof("Dataset written to %s", *outFile)
}

func readEvents(csvFile, encoding, eventsFile string) ([]eventlog.Event, error) {
	if eventsFile != "" {
		f, err := os.Open(eventsFile)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return eventlog.ReadEventsJSON(f)
	}

	enc, err := eventlog.ParseEncoding(encoding)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(csvFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return eventlog.ReadCSV(f, enc)
}

// writeFile writes through a temporary file in the same directory and renames it into
// place, so readers never see a partial file
func writeFile(path string, write func(w io.Writer) error) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move %s into place: %w", path, err)
	}
	return nil
}
