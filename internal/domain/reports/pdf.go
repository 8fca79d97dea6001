package reports

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"

	"appraisal/internal/domain/appraisal"
	"appraisal/internal/domain/directory"
)

// WriteAppraisalPDF renders a completed appraisal form for printing or
// filing. The layout follows the paper form: header, participants,
// competency tables, the overall assessment block.
func WriteAppraisalPDF(w io.Writer, a *appraisal.Appraisal, employee, appraiser *directory.User) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Staff Performance Appraisal")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 7, fmt.Sprintf("Employee: %s (%s)", employee.Name, employee.StaffID))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Role: %s    Division: %s", employee.Role, employee.Division))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Appraiser: %s (%s)", appraiser.Name, appraiser.StaffID))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Period: %s to %s    Status: %s",
		a.PeriodStart.Format("2006-01-02"), a.PeriodEnd.Format("2006-01-02"), a.Status))
	pdf.Ln(10)

	writeCompetencySet(pdf, "Core Competencies", &a.Document.CoreCompetencies)
	writeCompetencySet(pdf, "Non-Core Competencies", &a.Document.NonCore)

	overall := a.Document.Overall
	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(0, 9, "Overall Assessment")
	pdf.Ln(9)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 7, fmt.Sprintf("Performance Score: %.2f", overall.PerformanceScore))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Core Competencies Average: %.2f", overall.CoreCompetencies))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Non-Core Competencies Average: %.2f", overall.NonCoreCompetencies))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Total: %.2f    Percentage: %.0f%%", overall.Total, overall.Percentage))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Rating: %d (%s)", overall.Rating, overall.RatingDescription))
	pdf.Ln(10)

	if a.Document.AppraiserComments != "" {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 8, "Appraiser Comments")
		pdf.Ln(8)
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 6, a.Document.AppraiserComments, "", "L", false)
		pdf.Ln(4)
	}

	return pdf.Output(w)
}

func writeCompetencySet(pdf *gofpdf.Fpdf, title string, set *appraisal.CompetencySet) {
	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(0, 9, title)
	pdf.Ln(9)

	for _, name := range set.GroupNames() {
		group := set.Groups[name]
		pdf.SetFont("Helvetica", "B", 11)
		pdf.Cell(0, 7, labelFor(name))
		pdf.Ln(7)
		pdf.SetFont("Helvetica", "", 10)
		for _, item := range group.ItemNames() {
			entry := group.Items[item]
			pdf.Cell(110, 6, "  "+labelFor(item))
			pdf.Cell(30, 6, fmt.Sprintf("weight %.1f", entry.Weight))
			pdf.Cell(0, 6, fmt.Sprintf("score %.1f", entry.Score))
			pdf.Ln(6)
		}
		pdf.SetFont("Helvetica", "I", 10)
		pdf.Cell(0, 6, fmt.Sprintf("  total %.2f, average %.2f", group.Total, group.Average))
		pdf.Ln(7)
	}

	pdf.SetFont("Helvetica", "B", 11)
	pdf.Cell(0, 7, fmt.Sprintf("Set average: %.2f", set.Average))
	pdf.Ln(10)
}

// labelFor turns a camelCase field key into a printable heading.
func labelFor(key string) string {
	out := make([]rune, 0, len(key)+4)
	for i, r := range key {
		if i == 0 {
			if r >= 'a' && r <= 'z' {
				r -= 'a' - 'A'
			}
			out = append(out, r)
			continue
		}
		if r >= 'A' && r <= 'Z' {
			out = append(out, ' ')
		}
		out = append(out, r)
	}
	return string(out)
}
