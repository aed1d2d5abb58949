/*
Package report renders payroll runs for finance.

PURPOSE:
  A run's remittance lines say how much is owed to each authority. Finance
  wants them as a PDF to file and as CSV to import into the ledger. The
  payslip PDF gives one employee their own deduction breakdown.

FORMATS:
  RenderRemittancePDF: A4 table of remittance lines plus run totals
  WriteRemittanceCSV:  one row per config, then a TOTAL row
  RenderPayslipPDF:    gross, each deduction (employee/employer) and net

  Amounts are rendered with two decimals. Arithmetic stays in decimal
  until formatting, so totals always match the sum of the rows.

SEE ALSO:
  - payroll/types.go: Run, Remittance, RunTotals
*/
package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
	"github.com/warp/deduction-engine/payroll"
)

// =============================================================================
// CSV
// =============================================================================

var remittanceHeader = []string{"config_id", "name", "employee", "employer", "total", "payable"}

// WriteRemittanceCSV writes the remittance table of run to w.
func WriteRemittanceCSV(w io.Writer, run payroll.Run) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(remittanceHeader); err != nil {
		return fmt.Errorf("write remittance header: %w", err)
	}

	var employee, employer, total decimal.Decimal
	for _, rem := range run.Remittances {
		row := []string{
			string(rem.ConfigID),
			rem.Name,
			money(rem.Employee),
			money(rem.Employer),
			money(rem.Total),
			money(rem.Payable()),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write remittance %s: %w", rem.ConfigID, err)
		}
		employee = employee.Add(rem.Employee)
		employer = employer.Add(rem.Employer)
		total = total.Add(rem.Total)
	}

	if err := writer.Write([]string{"", "TOTAL", money(employee), money(employer), money(total), money(employee.Add(employer))}); err != nil {
		return fmt.Errorf("write remittance total: %w", err)
	}

	writer.Flush()
	return writer.Error()
}

// =============================================================================
// PDF
// =============================================================================

// RenderRemittancePDF renders the remittance table and run totals.
func RenderRemittancePDF(run payroll.Run) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Remittance "+run.ID, false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Statutory Remittance")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 7, fmt.Sprintf("Run: %s", run.ID))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Date: %s", run.CreatedAt.Format("2006-01-02 15:04 MST")))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Employees: %d", run.Totals.Employees))
	pdf.Ln(10)

	widths := []float64{70, 30, 30, 30, 30}
	pdf.SetFont("Helvetica", "B", 10)
	for i, h := range []string{"Deduction", "Employee", "Employer", "Total", "Payable"} {
		align := "R"
		if i == 0 {
			align = "L"
		}
		pdf.CellFormat(widths[i], 8, h, "B", 0, align, false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	for _, rem := range run.Remittances {
		pdf.CellFormat(widths[0], 7, rem.Name, "", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 7, money(rem.Employee), "", 0, "R", false, 0, "")
		pdf.CellFormat(widths[2], 7, money(rem.Employer), "", 0, "R", false, 0, "")
		pdf.CellFormat(widths[3], 7, money(rem.Total), "", 0, "R", false, 0, "")
		pdf.CellFormat(widths[4], 7, money(rem.Payable()), "", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}
	pdf.Ln(6)

	t := run.Totals
	pdf.SetFont("Helvetica", "B", 11)
	summary := []struct {
		label  string
		amount decimal.Decimal
	}{
		{"Gross pay", t.Gross},
		{"Employee deductions", t.EmployeeDeductions},
		{"Employer contributions", t.EmployerContributions},
		{"Net pay", t.NetPay},
	}
	for _, line := range summary {
		pdf.CellFormat(70, 7, line.label, "", 0, "L", false, 0, "")
		pdf.CellFormat(30, 7, money(line.amount), "", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	return output(pdf)
}

// RenderPayslipPDF renders one employee's deductions from a run.
func RenderPayslipPDF(run payroll.Run, employeeID string) ([]byte, error) {
	res, ok := run.Result(employeeID)
	if !ok {
		return nil, payroll.EmployeeNotFound(employeeID)
	}
	st := res.Statement

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Payslip")
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Employee: %s (%s)", res.Name, res.EmployeeID))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Run: %s, %s", run.ID, run.CreatedAt.Format("2006-01-02")))
	pdf.Ln(10)
	pdf.Cell(0, 8, fmt.Sprintf("Gross: %s", money(st.Gross)))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(80, 7, "Deduction", "B", 0, "L", false, 0, "")
	pdf.CellFormat(35, 7, "Employee", "B", 0, "R", false, 0, "")
	pdf.CellFormat(35, 7, "Employer", "B", 0, "R", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Helvetica", "", 10)
	for _, line := range st.Results {
		pdf.CellFormat(80, 7, line.Name, "", 0, "L", false, 0, "")
		pdf.CellFormat(35, 7, money(line.EmployeeDeduction), "", 0, "R", false, 0, "")
		pdf.CellFormat(35, 7, money(line.EmployerPortion), "", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Deductions: %s", money(st.TotalEmployee)))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Net: %s", money(st.NetPay)))

	return output(pdf)
}

func output(pdf *gofpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}
