package funding

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"
)

// Format is a funding history export format
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ContentType returns the MIME type served for the format
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv"
}

var exportColumns = []string{"ID", "Date", "Project ID", "Project", "Amount (USD)", "Funder", "Transaction Hash"}

const (
	exportSheet      = "Funding History"
	exportDateFormat = "2006-01-02"
)

// Export writes the filtered funding history to w
func (s *Service) Export(ctx context.Context, filter Filter, format Format, w io.Writer) error {
	if format != FormatCSV && format != FormatXLSX {
		return fmt.Errorf("%w: %q", ErrInvalidFormat, format)
	}
	history, err := s.repo.List(ctx, filter)
	if err != nil {
		return err
	}
	if format == FormatXLSX {
		return writeXLSX(w, history)
	}
	return writeCSV(w, history)
}

func writeCSV(w io.Writer, history []*FundingEvent) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(exportColumns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, e := range history {
		record := []string{
			e.ID,
			e.Timestamp.Format(exportDateFormat),
			e.ProjectID,
			e.ProjectTitle,
			strconv.FormatFloat(e.Amount, 'f', -1, 64),
			e.FunderWallet,
			e.TxHash,
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

func writeXLSX(w io.Writer, history []*FundingEvent) error {
	file := excelize.NewFile()
	defer file.Close()

	if err := file.SetSheetName("Sheet1", exportSheet); err != nil {
		return err
	}

	headerStyle, err := file.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"4472C4"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	currency := "$#,##0"
	amountStyle, err := file.NewStyle(&excelize.Style{CustomNumFmt: &currency})
	if err != nil {
		return err
	}
	dateFormat := "yyyy-mm-dd"
	dateStyle, err := file.NewStyle(&excelize.Style{CustomNumFmt: &dateFormat})
	if err != nil {
		return err
	}

	for i, col := range exportColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := file.SetCellValue(exportSheet, cell, col); err != nil {
			return err
		}
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(exportColumns), 1)
	if err := file.SetCellStyle(exportSheet, "A1", lastHeader, headerStyle); err != nil {
		return err
	}

	for i, e := range history {
		row := i + 2
		values := []any{e.ID, e.Timestamp, e.ProjectID, e.ProjectTitle, e.Amount, e.FunderWallet, e.TxHash}
		for j, v := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, row)
			if err := file.SetCellValue(exportSheet, cell, v); err != nil {
				return fmt.Errorf("failed to set cell value: %w", err)
			}
		}
		dateCell, _ := excelize.CoordinatesToCellName(2, row)
		amountCell, _ := excelize.CoordinatesToCellName(5, row)
		if err := file.SetCellStyle(exportSheet, dateCell, dateCell, dateStyle); err != nil {
			return err
		}
		if err := file.SetCellStyle(exportSheet, amountCell, amountCell, amountStyle); err != nil {
			return err
		}
	}

	if err := file.SetPanes(exportSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return err
	}
	if len(history) > 0 {
		if err := file.AutoFilter(exportSheet, "A1:"+lastHeader, nil); err != nil {
			return err
		}
	}
	widths := map[string]float64{"A": 12, "B": 12, "C": 12, "D": 50, "E": 14, "F": 20, "G": 68}
	for col, width := range widths {
		if err := file.SetColWidth(exportSheet, col, col, width); err != nil {
			return err
		}
	}

	return file.Write(w)
}
