// Package export moves the dataset across the program boundary: CSV for
// spreadsheets, JSON snapshots for backup and restore.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"

	"tally/internal/category"
	"tally/internal/core"
)

// csvRow is the spreadsheet-facing shape of a transaction. Category
// holds the display name, not the id, so exported files read naturally.
type csvRow struct {
	Date        string `csv:"Date"`
	Type        string `csv:"Type"`
	Category    string `csv:"Category"`
	Description string `csv:"Description"`
	Amount      string `csv:"Amount"`
}

// WriteCSV streams transactions as CSV. Dates are ISO so the file
// round-trips; amounts are fixed to two decimals.
func WriteCSV(w io.Writer, transactions []core.Transaction, categories *category.Registry) error {
	rows := make([]csvRow, 0, len(transactions))
	for _, tx := range transactions {
		rows = append(rows, csvRow{
			Date:        tx.Date.String(),
			Type:        string(tx.Type),
			Category:    categories.Name(tx.Category),
			Description: tx.Description,
			Amount:      tx.Amount.StringFixed(2),
		})
	}
	if err := gocsv.Marshal(rows, w); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

// TransactionDraft is one parsed CSV row. The category arrives as a
// display name; the caller resolves it against the registry before
// creating a transaction.
type TransactionDraft struct {
	Date         core.Date
	Type         core.TransactionType
	CategoryName string
	Description  string
	Amount       decimal.Decimal
}

// ParseCSV reads transaction drafts back out of an exported file. The
// first bad row aborts the parse; imports are all-or-nothing.
func ParseCSV(r io.Reader) ([]TransactionDraft, error) {
	var rows []csvRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	drafts := make([]TransactionDraft, 0, len(rows))
	for i, row := range rows {
		draft, err := draftFromRow(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		drafts = append(drafts, draft)
	}
	return drafts, nil
}

func draftFromRow(row csvRow) (TransactionDraft, error) {
	date, err := core.ParseDate("Date", strings.TrimSpace(row.Date))
	if err != nil {
		return TransactionDraft{}, err
	}

	txType := core.TransactionType(strings.ToLower(strings.TrimSpace(row.Type)))
	if !txType.Valid() {
		return TransactionDraft{}, fmt.Errorf("type %q: %w", row.Type, core.ErrInvalidType)
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(row.Amount))
	if err != nil {
		return TransactionDraft{}, fmt.Errorf("amount %q: %w", row.Amount, core.ErrInvalidAmount)
	}
	if amount.IsNegative() {
		return TransactionDraft{}, fmt.Errorf("amount %q: %w", row.Amount, core.ErrInvalidAmount)
	}

	return TransactionDraft{
		Date:         date,
		Type:         txType,
		CategoryName: strings.TrimSpace(row.Category),
		Description:  strings.TrimSpace(row.Description),
		Amount:       amount,
	}, nil
}
