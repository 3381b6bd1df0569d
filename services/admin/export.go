package admin

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"visapoint/models"
)

const exportSheet = "Applications"

var exportHeader = []any{
	"Reference", "Created", "Name", "Email", "Phone", "Visa Type", "Nationality",
	"Travellers", "Traveller Names", "Travel Date", "Total", "Currency",
	"Paid", "Status", "Order ID", "Transaction ID",
}

// ExportApplications writes the filtered applications as an XLSX workbook.
func (s *Service) ExportApplications(ctx context.Context, filter models.ApplicationFilter, w io.Writer) (int, error) {
	apps, err := s.store.Applications.List(ctx, filter)
	if err != nil {
		return 0, err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return 0, err
	}
	if err := f.SetSheetRow(exportSheet, "A1", &exportHeader); err != nil {
		return 0, err
	}
	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		_ = f.SetRowStyle(exportSheet, 1, 1, style)
	}

	for i, app := range apps {
		names := make([]string, 0, len(app.Travellers))
		for _, t := range app.Travellers {
			names = append(names, t.FullName())
		}
		row := []any{
			app.ReferenceID,
			app.CreatedAt.Format("2006-01-02 15:04"),
			app.Name,
			app.Email,
			app.Phone,
			app.VisaType,
			app.Nationality,
			app.NumberOfTravellers,
			strings.Join(names, ", "),
			app.TravelDate,
			app.TotalPrice,
			app.Currency,
			yesNo(app.Paid),
			app.Status,
			app.OrderID,
			app.TransactionID,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return 0, err
		}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return 0, fmt.Errorf("failed to write export row: %w", err)
		}
	}

	if err := f.Write(w); err != nil {
		return 0, fmt.Errorf("failed to write export: %w", err)
	}
	return len(apps), nil
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
