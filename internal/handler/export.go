package handler

import (
	"fmt"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"github.com/mmynk/flatwise/internal/service"
)

const ledgerSheet = "Ledger"

var ledgerHeaders = []string{"Recorded", "Direction", "Counterparty", "Item", "Amount", "Paid"}

// ExportHandler writes a user's ledger as an XLSX workbook.
type ExportHandler struct {
	users *service.UserService
}

func NewExportHandler(s *service.UserService) *ExportHandler {
	return &ExportHandler{users: s}
}

type ledgerRow struct {
	recorded     int64
	direction    string
	counterparty string
	item         string
	amount       float64
	paid         bool
}

// ledgerRows flattens credits and debts into rows ordered by recording time.
func ledgerRows(ledger *service.UserLedger) []ledgerRow {
	names := make(map[string]string, len(ledger.Items))
	for _, item := range ledger.Items {
		names[item.ID] = item.Name
	}
	itemName := func(id string) string {
		if name, ok := names[id]; ok {
			return name
		}
		return id
	}

	rows := make([]ledgerRow, 0, len(ledger.Credits)+len(ledger.Debts))
	for _, t := range ledger.Credits {
		rows = append(rows, ledgerRow{t.CreatedAt, "credit", t.DebtorID, itemName(t.ItemID), t.Amount, t.Paid})
	}
	for _, t := range ledger.Debts {
		rows = append(rows, ledgerRow{t.CreatedAt, "debt", t.CreditorID, itemName(t.ItemID), -t.Amount, t.Paid})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].recorded < rows[j].recorded })
	return rows
}

// buildLedgerWorkbook renders rows into a single-sheet workbook.
func buildLedgerWorkbook(rows []ledgerRow) (*excelize.File, error) {
	f := excelize.NewFile()
	if _, err := f.NewSheet(ledgerSheet); err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to drop default sheet: %w", err)
	}
	index, err := f.GetSheetIndex(ledgerSheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)

	for i, h := range ledgerHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(ledgerSheet, cell, h); err != nil {
			return nil, err
		}
	}

	for idx, r := range rows {
		row := idx + 2
		values := []any{
			time.Unix(r.recorded, 0).UTC().Format("2006-01-02 15:04"),
			r.direction,
			r.counterparty,
			r.item,
			r.amount,
			r.paid,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(ledgerSheet, cell, v); err != nil {
				return nil, err
			}
		}
	}

	if len(rows) > 0 {
		style, err := f.NewStyle(&excelize.Style{NumFmt: 2})
		if err != nil {
			return nil, err
		}
		if err := f.SetCellStyle(ledgerSheet, "E2", fmt.Sprintf("E%d", len(rows)+1), style); err != nil {
			return nil, err
		}
	}

	_ = f.SetColWidth(ledgerSheet, "A", "A", 18)
	_ = f.SetColWidth(ledgerSheet, "B", "B", 10)
	_ = f.SetColWidth(ledgerSheet, "C", "D", 38)
	_ = f.SetColWidth(ledgerSheet, "E", "F", 12)
	return f, nil
}

// Export handles GET /transactions/:id/export.xlsx where :id is the user.
func (h *ExportHandler) Export(c *gin.Context) {
	ledger, err := h.users.Transactions(c.Request.Context(), actor(c), c.Param("id"))
	if err != nil {
		Error(c, err)
		return
	}

	f, err := buildLedgerWorkbook(ledgerRows(ledger))
	if err != nil {
		Error(c, err)
		return
	}
	defer f.Close()

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"ledger_%s_%s.xlsx\"",
		ledger.User.ID, time.Now().Format("20060102")))

	if err := f.Write(c.Writer); err != nil {
		_ = c.Error(fmt.Errorf("failed to write workbook: %w", err))
	}
}
