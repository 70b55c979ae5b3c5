// Package constants defines application-wide constants and version information.
package constants

import (
	"runtime"
	"time"
)

// Version holds the application version information
const Version = "1.0-" + runtime.GOOS + "/" + runtime.GOARCH

// DefaultDatasetFile is the file name the outage builder writes and the server reads
const DefaultDatasetFile = "power_stats_all_years.json"

// DefaultHTTPTimeout bounds a single fetch of a remote dataset
const DefaultHTTPTimeout = 30 * time.Second
