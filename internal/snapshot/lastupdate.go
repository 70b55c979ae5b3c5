package snapshot

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

// The export job appends a line like "Последнее обновление: 02.11.2025 10:20:05,17"
var lastUpdatePattern = regexp.MustCompile(`(\d{2}\.\d{2}\.\d{4}\s+\d{2}:\d{2}(?::\d{2})?(?:[.,]\d+)?)\s*$`)

// ReadLastUpdate reads the "last export" label file. When a timestamp closes the text
// only the timestamp is returned, with a decimal comma turned into a point; otherwise
// the whole trimmed text is.
func ReadLastUpdate(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read last update file: %w", err)
	}
	return ParseLastUpdate(string(data)), nil
}

// ParseLastUpdate extracts the export timestamp from the label text
func ParseLastUpdate(text string) string {
	text = strings.TrimSpace(strings.TrimPrefix(text, "\ufeff"))
	if m := lastUpdatePattern.FindStringSubmatch(text); m != nil {
		return strings.Replace(m[1], ",", ".", 1)
	}
	return text
}
