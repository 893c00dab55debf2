package reports

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/jung-kurt/gofpdf"

	"hrportal/internal/domain/compliance"
)

var evaluationHeader = []string{"employee_id", "employee_name", "category", "depot", "status", "approved", "pending", "expired", "submitted", "total"}

var depotHeader = []string{"depot", "employees", "approved", "total", "compliance_percent"}

type Summary struct {
	Employees  int `json:"employees"`
	Complete   int `json:"complete"`
	Pending    int `json:"pending"`
	Incomplete int `json:"incomplete"`
	Percent    int `json:"compliancePercent"`
}

func Summarize(evals []compliance.Evaluation) Summary {
	var s Summary
	approved, total := 0, 0
	for _, eval := range evals {
		s.Employees++
		switch eval.Status {
		case compliance.OverallComplete:
			s.Complete++
		case compliance.OverallPending:
			s.Pending++
		default:
			s.Incomplete++
		}
		approved += eval.Progress.Approved
		total += eval.Progress.Total
	}
	s.Percent = compliance.CompliancePercent(approved, total)
	return s
}

func WriteEvaluationsCSV(w io.Writer, evals []compliance.Evaluation) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(evaluationHeader); err != nil {
		return err
	}
	for _, eval := range evals {
		p := eval.Progress
		row := []string{
			eval.EmployeeID, eval.EmployeeName, string(eval.Category), eval.Depot, string(eval.Status),
			strconv.Itoa(p.Approved), strconv.Itoa(p.Pending), strconv.Itoa(p.Expired), strconv.Itoa(p.Submitted), strconv.Itoa(p.Total),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func WriteDepotsCSV(w io.Writer, depots []compliance.DepotCompliance) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(depotHeader); err != nil {
		return err
	}
	for _, d := range depots {
		row := []string{d.Depot, strconv.Itoa(d.EmployeeCount), strconv.Itoa(d.ApprovedSum), strconv.Itoa(d.TotalSum), strconv.Itoa(d.CompliancePercent)}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WritePDF renders the depot rollup followed by one line per employee.
func WritePDF(w io.Writer, evals []compliance.Evaluation, depots []compliance.DepotCompliance, generatedAt time.Time) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Requirement Compliance", false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Requirement Compliance")
	pdf.Ln(10)
	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 6, "Generated: "+generatedAt.Format("2006-01-02 15:04"))
	pdf.Ln(10)

	summary := Summarize(evals)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 7, fmt.Sprintf("Employees: %d   Complete: %d   Pending: %d   Incomplete: %d   Overall: %d%%",
		summary.Employees, summary.Complete, summary.Pending, summary.Incomplete, summary.Percent))
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "By depot")
	pdf.Ln(9)
	tableRow(pdf, true, []float64{70, 30, 30, 30, 30}, "Depot", "Employees", "Approved", "Total", "Percent")
	for _, d := range depots {
		tableRow(pdf, false, []float64{70, 30, 30, 30, 30},
			d.Depot, strconv.Itoa(d.EmployeeCount), strconv.Itoa(d.ApprovedSum), strconv.Itoa(d.TotalSum), strconv.Itoa(d.CompliancePercent)+"%")
	}
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "By employee")
	pdf.Ln(9)
	tableRow(pdf, true, []float64{60, 40, 30, 30, 30}, "Employee", "Depot", "Status", "Approved", "Total")
	for _, eval := range evals {
		tableRow(pdf, false, []float64{60, 40, 30, 30, 30},
			eval.EmployeeName, eval.Depot, string(eval.Status), strconv.Itoa(eval.Progress.Approved), strconv.Itoa(eval.Progress.Total))
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render compliance pdf: %w", err)
	}
	return nil
}

func tableRow(pdf *gofpdf.Fpdf, header bool, widths []float64, cells ...string) {
	style := ""
	if header {
		style = "B"
	}
	pdf.SetFont("Helvetica", style, 10)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	for i, cell := range cells {
		pdf.CellFormat(widths[i], 7, tr(cell), "1", 0, "L", header, 0, "")
	}
	pdf.Ln(-1)
}
