package handlers

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"

	"p9e.in/sitecore/models"
	"p9e.in/sitecore/pkg/rules"
)

var financeColumns = []string{"Finance ID", "Project", "Total Invested", "Able To Bill", "Pending", "Expenses", "Revenue", "Updated At"}

// ExportSummary downloads the portfolio summary with one row per finance
// record. ?format=csv gives CSV, anything else XLSX.
func (h *FinanceHandler) ExportSummary(w http.ResponseWriter, r *http.Request) {
	records, err := h.svc.ListFinances(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	summary := rules.AggregateFinances(records)
	stamp := time.Now().Format("20060102_150405")

	if r.URL.Query().Get("format") == "csv" {
		data, err := createFinanceCSV(summary, records)
		if err != nil {
			log.Error().Err(err).Msg("generate finance csv")
			http.Error(w, "Failed to generate CSV file", http.StatusInternalServerError)
			return
		}
		writeDownload(w, "text/csv", fmt.Sprintf("finance_summary_%s.csv", stamp), data)
		return
	}

	f, err := createFinanceWorkbook(summary, records)
	if err != nil {
		log.Error().Err(err).Msg("generate finance workbook")
		http.Error(w, "Failed to generate Excel file", http.StatusInternalServerError)
		return
	}
	defer f.Close()

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		log.Error().Err(err).Msg("write finance workbook")
		http.Error(w, "Failed to generate Excel file", http.StatusInternalServerError)
		return
	}
	writeDownload(w, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		fmt.Sprintf("finance_summary_%s.xlsx", stamp), buf.Bytes())
}

func writeDownload(w http.ResponseWriter, contentType, filename string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func financeRow(f *models.Finance) []interface{} {
	return []interface{}{
		f.ID.String(),
		f.ProjectID.String(),
		f.TotalInvested,
		f.AbleToBill,
		f.Pending(),
		len(f.Expenses),
		len(f.Revenue),
		f.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func summaryRows(s rules.FinanceSummary) [][2]interface{} {
	return [][2]interface{}{
		{"Total Invested", s.TotalInvested},
		{"Able To Bill", s.AbleToBill},
		{"Pending", s.Pending},
		{"Efficiency (%)", s.Efficiency},
		{"Projects", s.ProjectCount},
	}
}

// createFinanceWorkbook lays out the summary block on top and the records
// table below it.
func createFinanceWorkbook(summary rules.FinanceSummary, records []models.Finance) (*excelize.File, error) {
	f := excelize.NewFile()
	sheetName := "Finance Summary"

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	titleStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 16},
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
	})
	if err != nil {
		return nil, err
	}
	f.SetCellValue(sheetName, "A1", "Portfolio Finance Summary")
	f.SetCellStyle(sheetName, "A1", "A1", titleStyle)
	f.SetCellValue(sheetName, "A2", fmt.Sprintf("Generated: %s", time.Now().UTC().Format(time.RFC3339)))

	labelStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E7E6E6"}, Pattern: 1},
	})
	if err != nil {
		return nil, err
	}
	row := 4
	for _, kv := range summaryRows(summary) {
		keyCell, _ := excelize.CoordinatesToCellName(1, row)
		valueCell, _ := excelize.CoordinatesToCellName(2, row)
		f.SetCellValue(sheetName, keyCell, kv[0])
		f.SetCellStyle(sheetName, keyCell, keyCell, labelStyle)
		f.SetCellValue(sheetName, valueCell, kv[1])
		row++
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return nil, err
	}
	headerRow := row + 1
	for col, label := range financeColumns {
		cell, _ := excelize.CoordinatesToCellName(col+1, headerRow)
		f.SetCellValue(sheetName, cell, label)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
		colName, _ := excelize.ColumnNumberToName(col + 1)
		f.SetColWidth(sheetName, colName, colName, 20)
	}

	for i := range records {
		cell, _ := excelize.CoordinatesToCellName(1, headerRow+1+i)
		values := financeRow(&records[i])
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func createFinanceCSV(summary rules.FinanceSummary, records []models.Finance) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	for _, kv := range summaryRows(summary) {
		if err := w.Write([]string{fmt.Sprint(kv[0]), fmt.Sprint(kv[1])}); err != nil {
			return nil, err
		}
	}
	if err := w.Write(nil); err != nil {
		return nil, err
	}
	if err := w.Write(financeColumns); err != nil {
		return nil, err
	}
	for i := range records {
		values := financeRow(&records[i])
		line := make([]string, len(values))
		for j, v := range values {
			line[j] = fmt.Sprint(v)
		}
		if err := w.Write(line); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
