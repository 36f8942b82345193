package dump

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Iron-Ham/foldlog/internal/modlog"
)

// Export formats.
const (
	FormatJSON = "json"
	FormatText = "text"
	FormatCSV  = "csv"
	FormatYAML = "yaml"
)

// ExportFormats returns the supported export format names.
func ExportFormats() []string {
	return []string{FormatJSON, FormatText, FormatCSV, FormatYAML}
}

// exportEntry is the flat export form of an entry. Unlike the persisted
// entry it carries the module.
type exportEntry struct {
	Timestamp   int64  `json:"timestamp" yaml:"timestamp"`
	Level       string `json:"level" yaml:"level"`
	Module      string `json:"module" yaml:"module"`
	Message     string `json:"message,omitempty" yaml:"message,omitempty"`
	FrameNumber int64  `json:"frame_number" yaml:"frame_number"`
	FrameTitle  string `json:"frame_title,omitempty" yaml:"frame_title,omitempty"`
	Details     string `json:"frame_details,omitempty" yaml:"frame_details,omitempty"`
	Provisional bool   `json:"provisional,omitempty" yaml:"provisional,omitempty"`
}

func toExport(e modlog.Entry) exportEntry {
	out := exportEntry{
		Timestamp:   e.Timestamp,
		Level:       e.Level.String(),
		Module:      e.Module,
		Message:     e.Message,
		FrameNumber: e.FrameNumber,
	}
	if e.Frame != nil {
		out.FrameTitle = e.Frame.Title
		out.Details = e.Frame.Details
		out.Provisional = !e.Frame.IsComplete
	}
	return out
}

// ExportEntries writes entries to w in the given format.
func ExportEntries(w io.Writer, entries []modlog.Entry, format string) error {
	rows := make([]exportEntry, len(entries))
	for i, e := range entries {
		rows[i] = toExport(e)
	}

	switch strings.ToLower(format) {
	case FormatJSON:
		return exportJSON(w, rows)
	case FormatText:
		return exportText(w, rows)
	case FormatCSV:
		return exportCSV(w, rows)
	case FormatYAML:
		return exportYAML(w, rows)
	default:
		return fmt.Errorf("unsupported export format: %s (supported: %s)", format, strings.Join(ExportFormats(), ", "))
	}
}

func exportJSON(w io.Writer, rows []exportEntry) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(rows)
}

func exportYAML(w io.Writer, rows []exportEntry) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(rows); err != nil {
		return fmt.Errorf("failed to write YAML: %w", err)
	}
	return encoder.Close()
}

// exportText writes one line per entry:
// [TIMESTAMP] LEVEL module - MESSAGE (frame N)
// followed by indented frame details.
func exportText(w io.Writer, rows []exportEntry) error {
	for _, r := range rows {
		text := r.Message
		if text == "" {
			text = r.FrameTitle
		}
		line := fmt.Sprintf("[%s] %-10s %s - %s (frame %d)", FormatMicros(r.Timestamp), r.Level, r.Module, text, r.FrameNumber)
		if r.Provisional {
			line += " [provisional]"
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return fmt.Errorf("failed to write text entry: %w", err)
		}
		if r.Details == "" {
			continue
		}
		for _, d := range strings.Split(r.Details, "\n") {
			if _, err := fmt.Fprintln(w, "    "+d); err != nil {
				return fmt.Errorf("failed to write text entry: %w", err)
			}
		}
	}
	return nil
}

func exportCSV(w io.Writer, rows []exportEntry) error {
	writer := csv.NewWriter(w)

	headers := []string{"timestamp", "level", "module", "message", "frame_number", "frame_title", "frame_details", "provisional"}
	if err := writer.Write(headers); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, r := range rows {
		record := []string{
			strconv.FormatInt(r.Timestamp, 10),
			r.Level,
			r.Module,
			r.Message,
			strconv.FormatInt(r.FrameNumber, 10),
			r.FrameTitle,
			r.Details,
			strconv.FormatBool(r.Provisional),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// FormatMicros renders a monotonic microsecond timestamp as seconds with
// millisecond precision, e.g. "12.345s".
func FormatMicros(us int64) string {
	return fmt.Sprintf("%d.%03ds", us/1_000_000, (us%1_000_000)/1000)
}
