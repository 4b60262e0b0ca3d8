package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/alienxp03/panelist/internal/core"
)

// PDFExporter exports session results to PDF format.
type PDFExporter struct{}

// Export writes the session result as PDF.
func (e *PDFExporter) Export(result *core.SessionResult, w io.Writer) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)

	// Add first page
	pdf.AddPage()

	// Title
	pdf.SetFont("Arial", "B", 18)
	pdf.MultiCell(0, 10, e.sanitizeText(result.Spec.Topic), "", "C", false)
	pdf.Ln(5)

	// Metadata section
	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 8, "Session Information")
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 10)
	id := result.SessionID
	if len(id) > 8 {
		id = id[:8] + "..."
	}
	e.addMetadataRow(pdf, "ID:", id)
	e.addMetadataRow(pdf, "Type:", string(result.Spec.Type))
	e.addMetadataRow(pdf, "Status:", string(result.Status))
	e.addMetadataRow(pdf, "Participants:", fmt.Sprintf("%d", len(result.Spec.ParticipantIDs)))
	e.addMetadataRow(pdf, "Started:", result.StartTime.Format("January 2, 2006 at 3:04 PM"))
	e.addMetadataRow(pdf, "Duration:", formatDuration(result.StartTime, result.EndTime))
	pdf.Ln(5)

	// Transcript
	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 8, "Discussion")
	pdf.Ln(8)

	if len(result.Transcript) == 0 {
		pdf.SetFont("Arial", "I", 10)
		pdf.Cell(0, 6, "No messages recorded.")
		pdf.Ln(6)
	} else {
		rounds, maxRound := groupByRound(result.Transcript)
		for r := 0; r <= maxRound; r++ {
			msgs := rounds[r]
			if len(msgs) == 0 {
				continue
			}

			if pdf.GetY() > 250 {
				pdf.AddPage()
			}
			pdf.SetFont("Arial", "B", 11)
			pdf.Cell(0, 7, roundTitle(r))
			pdf.Ln(7)

			for _, msg := range msgs {
				if pdf.GetY() > 250 {
					pdf.AddPage()
				}

				// Speaker header colored by sentiment class
				switch msg.Sentiment {
				case core.SentimentPositive:
					pdf.SetFillColor(200, 255, 200) // Light green
				case core.SentimentNegative:
					pdf.SetFillColor(255, 200, 200) // Light red
				default:
					pdf.SetFillColor(230, 230, 230) // Light gray
				}

				pdf.SetFont("Arial", "B", 10)
				speaker := msg.PersonaName
				if !msg.FromPersona() {
					speaker = "Moderator"
				}
				header := fmt.Sprintf("%s (%s, %.2f)", speaker, msg.Sentiment, msg.SentimentScore)
				pdf.CellFormat(0, 7, e.sanitizeText(header), "", 1, "", true, 0, "")

				// Message content
				pdf.SetFont("Arial", "", 9)
				pdf.SetFillColor(255, 255, 255)
				pdf.MultiCell(0, 5, e.sanitizeText(msg.Content), "", "", false)
				pdf.Ln(5)
			}
		}
	}

	// Summary
	if result.Summary != "" {
		if pdf.GetY() > 230 {
			pdf.AddPage()
		}

		pdf.SetFont("Arial", "B", 12)
		pdf.Cell(0, 8, "Summary")
		pdf.Ln(8)

		pdf.SetFont("Arial", "", 10)
		pdf.MultiCell(0, 5, e.sanitizeText(result.Summary), "", "", false)
		pdf.Ln(3)
	}

	// Metrics
	if pdf.GetY() > 230 {
		pdf.AddPage()
	}

	m := result.Metrics
	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 8, "Metrics")
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 10)
	e.addMetadataRow(pdf, "Messages:", fmt.Sprintf("%d", m.TotalMessages))
	e.addMetadataRow(pdf, "Sentiment:", fmt.Sprintf("%d positive / %d neutral / %d negative",
		m.Distribution.Positive, m.Distribution.Neutral, m.Distribution.Negative))
	e.addMetadataRow(pdf, "Average:", fmt.Sprintf("%.2f", m.AverageSentiment))
	e.addMetadataRow(pdf, "NPS:", fmt.Sprintf("%.1f", m.NPS))
	e.addMetadataRow(pdf, "CSAT:", fmt.Sprintf("%.1f", m.CSAT))
	e.addMetadataRow(pdf, "Shift:", fmt.Sprintf("%+.2f", m.SentimentShift))

	if len(m.Insights) > 0 {
		pdf.Ln(3)
		pdf.SetFont("Arial", "B", 10)
		pdf.Cell(0, 6, "Insights")
		pdf.Ln(6)
		pdf.SetFont("Arial", "", 9)
		for _, insight := range m.Insights {
			pdf.MultiCell(0, 5, "- "+e.sanitizeText(insight), "", "", false)
		}
	}

	if len(m.Recommendations) > 0 {
		pdf.Ln(3)
		pdf.SetFont("Arial", "B", 10)
		pdf.Cell(0, 6, "Recommendations")
		pdf.Ln(6)
		pdf.SetFont("Arial", "", 9)
		for _, rec := range m.Recommendations {
			pdf.MultiCell(0, 5, "- "+e.sanitizeText(rec), "", "", false)
		}
	}

	// Footer
	pdf.SetY(-15)
	pdf.SetFont("Arial", "I", 8)
	pdf.CellFormat(0, 10, "Exported from panelist", "", 0, "C", false, 0, "")

	return pdf.Output(w)
}

// FileExtension returns the file extension for PDF.
func (e *PDFExporter) FileExtension() string {
	return "pdf"
}

// Helper to add a metadata row
func (e *PDFExporter) addMetadataRow(pdf *gofpdf.Fpdf, label, value string) {
	pdf.SetFont("Arial", "B", 10)
	pdf.Cell(30, 5, label)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 5, value)
	pdf.Ln(5)
}

// Sanitize text for PDF (remove problematic characters)
func (e *PDFExporter) sanitizeText(text string) string {
	// gofpdf uses Windows-1252 encoding by default
	// Replace common Unicode characters that might cause issues
	replacer := strings.NewReplacer(
		"‘", "'", // Left single quote
		"’", "'", // Right single quote
		"“", "\"", // Left double quote
		"”", "\"", // Right double quote
		"–", "-", // En dash
		"—", "--", // Em dash
		"…", "...", // Ellipsis
		"•", "*", // Bullet
		" ", " ", // Non-breaking space
	)
	out := replacer.Replace(text)

	// Strip any remaining multi-byte runes (emoji avatars and the like)
	var b strings.Builder
	for _, r := range out {
		if r < 256 {
			b.WriteRune(r)
		}
	}
	return b.String()
}
