// Package export turns record lists into delimited text for download.
package export

import (
	"strings"
	"time"

	"github.com/ncanzani/salesdeck/internal/backend"
)

// leadColumns is the fixed export order.
var leadColumns = []string{"id", "phone", "name", "email", "interest", "stage", "created_at", "notes"}

// stageLabels maps the wire stage values to the labels operators see.
var stageLabels = map[string]string{
	backend.StageNew:       "New",
	backend.StageContacted: "Contacted",
	backend.StageQualified: "Qualified",
	backend.StageConverted: "Converted",
	backend.StageLost:      "Lost",
}

// StageLabel returns the human-readable label for a lead stage. Unknown
// stages pass through unchanged rather than disappearing from the export.
func StageLabel(stage string) string {
	if label, ok := stageLabels[stage]; ok {
		return label
	}
	return stage
}

// LeadsCSV renders leads as CSV with a header row. Every field is wrapped in
// double quotes with embedded quotes doubled, so the output round-trips
// through any standard CSV reader. Absent optional fields export as empty
// strings.
func LeadsCSV(leads []backend.Lead) string {
	var b strings.Builder
	writeRow(&b, leadColumns)
	for _, l := range leads {
		writeRow(&b, []string{
			l.ID,
			l.Phone,
			l.ContactName,
			l.Email,
			l.Interest,
			StageLabel(l.Stage),
			l.CreatedAt.UTC().Format(time.RFC3339),
			l.Notes,
		})
	}
	return b.String()
}

func writeRow(b *strings.Builder, fields []string) {
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(f, `"`, `""`))
		b.WriteByte('"')
	}
	b.WriteByte('\n')
}
