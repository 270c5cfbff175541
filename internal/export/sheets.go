package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"furniture-catalog/internal/domain"
)

// SheetsExporter overwrites one sheet of a spreadsheet with the budget export.
type SheetsExporter struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheet         string
	log           *slog.Logger
}

// NewSheetsExporter builds the Sheets client. Callers pass credentials as
// options, e.g. option.WithCredentialsFile.
func NewSheetsExporter(ctx context.Context, spreadsheetID, sheet string, log *slog.Logger, opts ...option.ClientOption) (*SheetsExporter, error) {
	spreadsheetID = strings.TrimSpace(spreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	if sheet == "" {
		sheet = "Budget"
	}
	if log == nil {
		log = slog.Default()
	}

	opts = append([]option.ClientOption{option.WithScopes(gsheet.SpreadsheetsScope)}, opts...)
	svc, err := gsheet.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return &SheetsExporter{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheet:         sheet,
		log:           log.With("component", "sheets"),
	}, nil
}

// Export clears the sheet and writes the rows of snap starting at A1.
// It returns the number of rows written, header and total included.
func (e *SheetsExporter) Export(ctx context.Context, snap *domain.BudgetSnapshot) (int, error) {
	rows := Rows(snap)
	values := make([][]any, len(rows))
	for i, r := range rows {
		values[i] = make([]any, len(r))
		for j, cell := range r {
			values[i][j] = cell
		}
	}

	if _, err := e.svc.Spreadsheets.Values.Clear(e.spreadsheetID, e.sheet, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do(); err != nil {
		return 0, fmt.Errorf("clear %s: %w", e.sheet, err)
	}

	rng := fmt.Sprintf("%s!A1", e.sheet)
	vr := &gsheet.ValueRange{Range: rng, Values: values}
	if _, err := e.svc.Spreadsheets.Values.Update(e.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do(); err != nil {
		return 0, fmt.Errorf("update %s: %w", rng, err)
	}

	e.log.InfoContext(ctx, "budget exported to sheets", "spreadsheet_id", e.spreadsheetID, "rows", len(values))
	return len(values), nil
}
