package report

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/go-pdf/fpdf"
)

// RenderPDF renders a single-page A4 report. The core fonts only cover
// Latin-1, so text goes through the cp1252 translator.
func RenderPDF(r Report) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(Title, true)
	pdf.SetMargins(20, 20, 20)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetTextColor(21, 101, 192)
	pdf.MultiCell(0, 8, tr(Title), "B", "C", false)
	pdf.Ln(6)

	pdf.SetTextColor(51, 51, 51)
	info := []struct{ label, value string }{
		{"Responsável", r.Result.GuardianName},
		{"Criança", r.ChildDisplayName()},
		{"Idade", r.Result.ChildAge + " anos"},
		{"Data", r.Date()},
	}
	for _, row := range info {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(35, 7, tr(row.label+":"), "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		pdf.CellFormat(0, 7, tr(row.value), "", 1, "L", false, 0, "")
	}
	pdf.Ln(6)

	pdf.SetFillColor(92, 107, 192)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 28)
	pdf.CellFormat(0, 16, tr(strconv.Itoa(r.Result.Score)+" pontos"), "", 1, "C", true, 0, "")
	pdf.SetFont("Helvetica", "", 16)
	pdf.CellFormat(0, 10, tr(r.Result.TierLabel), "", 1, "C", true, 0, "")
	pdf.Ln(8)

	pdf.SetTextColor(51, 51, 51)
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 8, tr("Interpretação do Resultado"), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.MultiCell(0, 6, tr(r.Result.Message), "", "L", false)
	pdf.Ln(10)

	pdf.SetTextColor(102, 102, 102)
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(0, 5, tr("Aviso Importante:"), "T", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.MultiCell(0, 5, tr(disclaimer), "", "C", false)
	pdf.MultiCell(0, 5, tr(adviceLine), "", "C", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render report pdf: %w", err)
	}
	return buf.Bytes(), nil
}
