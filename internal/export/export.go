// Package export handles exporting session results to various formats.
package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/alienxp03/panelist/internal/core"
)

// Format represents an export format.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatPDF      Format = "pdf"
	FormatJSON     Format = "json"
)

// Exporter defines the interface for exporting session results.
type Exporter interface {
	Export(result *core.SessionResult, w io.Writer) error
	FileExtension() string
}

// GetExporter returns an exporter for the given format.
func GetExporter(format Format) (Exporter, error) {
	switch format {
	case FormatMarkdown:
		return &MarkdownExporter{}, nil
	case FormatPDF:
		return &PDFExporter{}, nil
	case FormatJSON:
		return &JSONExporter{}, nil
	default:
		return nil, fmt.Errorf("unsupported export format: %s", format)
	}
}

// GenerateFilename creates a filename for the export.
func GenerateFilename(result *core.SessionResult, ext string) string {
	// Sanitize topic for filename
	topic := result.Spec.Topic
	if len(topic) > 50 {
		topic = topic[:50]
	}

	// Replace unsafe characters
	replacer := strings.NewReplacer(
		" ", "_",
		"/", "-",
		"\\", "-",
		":", "-",
		"*", "",
		"?", "",
		"\"", "",
		"<", "",
		">", "",
		"|", "",
	)
	topic = replacer.Replace(topic)

	timestamp := result.StartTime.Format("20060102")
	return fmt.Sprintf("session_%s_%s.%s", timestamp, topic, ext)
}

// Helper to format the speaker line of a message
func formatSpeaker(msg core.Message) string {
	if !msg.FromPersona() {
		return "Moderator"
	}
	if msg.Avatar != "" {
		return fmt.Sprintf("%s %s", msg.Avatar, msg.PersonaName)
	}
	return msg.PersonaName
}

// Helper to format duration
func formatDuration(start, end time.Time) string {
	d := end.Sub(start)
	if d < time.Minute {
		return fmt.Sprintf("%d seconds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%d minutes", int(d.Minutes()))
	}
	return fmt.Sprintf("%.1f hours", d.Hours())
}

// Helper to label a transcript round
func roundTitle(round int) string {
	if round == 0 {
		return "Initial Reactions"
	}
	return fmt.Sprintf("Round %d", round)
}

// groupByRound splits a transcript into per-round slices, preserving
// order, and returns the highest round seen.
func groupByRound(transcript []core.Message) (map[int][]core.Message, int) {
	rounds := make(map[int][]core.Message)
	maxRound := 0
	for _, m := range transcript {
		rounds[m.Round] = append(rounds[m.Round], m)
		if m.Round > maxRound {
			maxRound = m.Round
		}
	}
	return rounds, maxRound
}
