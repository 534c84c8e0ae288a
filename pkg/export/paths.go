// Package export produces the downloadable artifacts (spreadsheets, CSV
// extracts) referenced by the optimizer responses, and the public paths
// those responses advertise.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const stampLayout = "2006-01-02_150405"

// Artifact timestamps are quoted in Gulf time regardless of where the
// service runs.
var dubai = func() *time.Location {
	loc, err := time.LoadLocation("Asia/Dubai")
	if err != nil {
		return time.FixedZone("GST", 4*60*60)
	}
	return loc
}()

// NowStamp returns the public download path for a freshly produced
// artifact, e.g. /files/outputs/deal_picker_plan_2026-08-31_142501.xlsx.
func NowStamp(prefix, ext string) string {
	return fmt.Sprintf("/files/outputs/%s_%s.%s", prefix, time.Now().In(dubai).Format(stampLayout), ext)
}

// Exporter materializes artifacts under BaseDir, which the server exposes
// at /files/.
type Exporter struct {
	BaseDir string
}

// Resolve maps a public /files/ path onto the local filesystem and makes
// sure its directory exists.
func (e Exporter) Resolve(public string) (string, error) {
	rel := strings.TrimPrefix(public, "/files/")
	p := filepath.Join(e.BaseDir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return "", err
	}
	return p, nil
}
