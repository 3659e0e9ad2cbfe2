package modules

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// ThumbnailManifest is the structured result of the thumbnail module: a
// JSON object listing every generated image, emitted on stdout.
type ThumbnailManifest struct {
	Thumbnails []ThumbnailEntry `json:"thumbnails"`
}

type ThumbnailEntry struct {
	Path      string   `json:"path"`
	Timestamp *float64 `json:"timestamp,omitempty"`
}

// ParseThumbnailManifest decodes the manifest from the module's captured
// stdout. The module may print progress lines before the manifest, so when
// the full output is not a single JSON document the last line that decodes
// as a manifest wins.
func ParseThumbnailManifest(output []byte) (*ThumbnailManifest, error) {
	var manifest ThumbnailManifest
	if err := json.Unmarshal(bytes.TrimSpace(output), &manifest); err == nil && manifest.Thumbnails != nil {
		return &manifest, nil
	}

	var lines []string
	scanner := bufio.NewScanner(bytes.NewReader(output))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}

	for i := len(lines) - 1; i >= 0; i-- {
		var m ThumbnailManifest
		if err := json.Unmarshal([]byte(lines[i]), &m); err == nil && m.Thumbnails != nil {
			return &m, nil
		}
	}

	return nil, fmt.Errorf("no thumbnail manifest found in module output")
}
