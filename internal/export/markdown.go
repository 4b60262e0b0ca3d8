package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/alienxp03/panelist/internal/core"
)

// MarkdownExporter exports session results to Markdown format.
type MarkdownExporter struct{}

// Export writes the session result as Markdown.
func (e *MarkdownExporter) Export(result *core.SessionResult, w io.Writer) error {
	var sb strings.Builder

	// Title
	sb.WriteString(fmt.Sprintf("# %s\n\n", result.Spec.Topic))

	// Metadata
	sb.WriteString("## Session Information\n\n")
	sb.WriteString(fmt.Sprintf("- **ID:** `%s`\n", result.SessionID))
	sb.WriteString(fmt.Sprintf("- **Type:** %s\n", result.Spec.Type))
	sb.WriteString(fmt.Sprintf("- **Status:** %s\n", result.Status))
	sb.WriteString(fmt.Sprintf("- **Participants:** %d\n", len(result.Spec.ParticipantIDs)))
	sb.WriteString(fmt.Sprintf("- **Started:** %s\n", result.StartTime.Format("January 2, 2006 at 3:04 PM")))
	sb.WriteString(fmt.Sprintf("- **Duration:** %s\n", formatDuration(result.StartTime, result.EndTime)))
	if len(result.Spec.Goals) > 0 {
		sb.WriteString(fmt.Sprintf("- **Goals:** %s\n", strings.Join(result.Spec.Goals, "; ")))
	}
	sb.WriteString("\n")

	// Transcript
	sb.WriteString("## Discussion\n\n")

	if len(result.Transcript) == 0 {
		sb.WriteString("*No messages recorded.*\n\n")
	} else {
		rounds, maxRound := groupByRound(result.Transcript)
		for r := 0; r <= maxRound; r++ {
			msgs := rounds[r]
			if len(msgs) == 0 {
				continue
			}

			sb.WriteString(fmt.Sprintf("### %s\n\n", roundTitle(r)))
			for _, msg := range msgs {
				sb.WriteString(fmt.Sprintf("#### %s\n\n", formatSpeaker(msg)))
				sb.WriteString(fmt.Sprintf("*%s, sentiment %s (%.2f)*\n\n",
					msg.CreatedAt.Format("3:04 PM"), msg.Sentiment, msg.SentimentScore))
				sb.WriteString(msg.Content)
				if msg.Fallback {
					sb.WriteString("\n\n*(substituted after a generation failure)*")
				}
				sb.WriteString("\n\n---\n\n")
			}
		}
	}

	// Summary
	if result.Summary != "" {
		sb.WriteString("## Summary\n\n")
		sb.WriteString(result.Summary)
		sb.WriteString("\n\n")
	}

	// Metrics
	m := result.Metrics
	sb.WriteString("## Metrics\n\n")
	sb.WriteString(fmt.Sprintf("- **Messages:** %d\n", m.TotalMessages))
	sb.WriteString(fmt.Sprintf("- **Sentiment:** %d positive / %d neutral / %d negative\n",
		m.Distribution.Positive, m.Distribution.Neutral, m.Distribution.Negative))
	sb.WriteString(fmt.Sprintf("- **Average sentiment:** %.2f\n", m.AverageSentiment))
	sb.WriteString(fmt.Sprintf("- **NPS:** %.1f\n", m.NPS))
	sb.WriteString(fmt.Sprintf("- **CSAT:** %.1f\n", m.CSAT))
	sb.WriteString(fmt.Sprintf("- **Sentiment shift:** %+.2f\n", m.SentimentShift))
	sb.WriteString("\n")

	if len(m.Insights) > 0 {
		sb.WriteString("### Insights\n\n")
		for _, insight := range m.Insights {
			sb.WriteString(fmt.Sprintf("- %s\n", insight))
		}
		sb.WriteString("\n")
	}

	if len(m.Recommendations) > 0 {
		sb.WriteString("### Recommendations\n\n")
		for _, rec := range m.Recommendations {
			sb.WriteString(fmt.Sprintf("- %s\n", rec))
		}
		sb.WriteString("\n")
	}

	// Footer
	sb.WriteString("---\n\n")
	sb.WriteString("*Exported from panelist*\n")

	_, err := w.Write([]byte(sb.String()))
	return err
}

// FileExtension returns the file extension for Markdown.
func (e *MarkdownExporter) FileExtension() string {
	return "md"
}
