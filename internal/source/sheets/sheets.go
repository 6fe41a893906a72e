package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"spendboard/internal/source"
)

// Client reads each table from its own sheet of one spreadsheet.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheets        map[source.Table]string
}

var (
	_ source.TableReader = (*Client)(nil)
	_ source.Describer   = (*Client)(nil)
)

// Config selects the spreadsheet, sheet names and service account
// credentials (inline JSON takes precedence over a file path).
type Config struct {
	SpreadsheetID   string
	Sheets          map[source.Table]string
	CredentialsJSON string
	CredentialsFile string
}

// DefaultSheets are the tab names used when none are configured.
func DefaultSheets() map[source.Table]string {
	return map[source.Table]string{
		source.FactoryTable:  "工厂数据总览",
		source.SupplierTable: "供应商采购数据汇总",
		source.CategoryTable: "Subcategory Spend汇总",
	}
}

func New(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	svc, err := newSheetsService(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	sheets := DefaultSheets()
	for t, name := range cfg.Sheets {
		if strings.TrimSpace(name) != "" {
			sheets[t] = strings.TrimSpace(name)
		}
	}
	return &Client{svc: svc, spreadsheetID: cfg.SpreadsheetID, sheets: sheets}, nil
}

func newSheetsService(ctx context.Context, cfg Config) (*gsheet.Service, error) {
	var credentialsJSON []byte
	switch {
	case strings.TrimSpace(cfg.CredentialsJSON) != "":
		credentialsJSON = []byte(cfg.CredentialsJSON)
	case strings.TrimSpace(cfg.CredentialsFile) != "":
		b, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = b
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	slog.InfoContext(ctx, "Creating Google Sheets service",
		"credentials_size", len(credentialsJSON),
		"scope", gsheet.SpreadsheetsReadonlyScope)

	return gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsReadonlyScope))
}

func (c *Client) Describe() string {
	return "sheets:" + c.spreadsheetID
}

func (c *Client) ReadTable(ctx context.Context, t source.Table) ([][]string, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	name, ok := c.sheets[t]
	if !ok {
		return nil, fmt.Errorf("%w: %s", source.ErrTableNotFound, t)
	}
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, name).
		ValueRenderOption("FORMATTED_VALUE").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", name, err)
	}
	return valuesToRows(resp.Values), nil
}

// valuesToRows pads every row to the header width; the API drops trailing
// empty cells.
func valuesToRows(values [][]interface{}) [][]string {
	if len(values) == 0 {
		return nil
	}
	width := 0
	for _, row := range values {
		if len(row) > width {
			width = len(row)
		}
	}
	out := make([][]string, 0, len(values))
	for _, row := range values {
		cols := toStrings(row)
		for len(cols) < width {
			cols = append(cols, "")
		}
		out = append(out, cols)
	}
	for len(out) > 0 && blank(out[len(out)-1]) {
		out = out[:len(out)-1]
	}
	return out
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func blank(row []string) bool {
	for _, c := range row {
		if c != "" {
			return false
		}
	}
	return true
}
