package storage

import (
	"context"
	"fmt"
	"log"
	"os"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"payment-alerts/backend/internal/payment/domain"
)

// sheetRange covers the twelve record columns.
const sheetRange = "A:L"

// SheetsStore appends payment records to a Google Sheets spreadsheet using a
// service account.
type SheetsStore struct {
	svc     *sheets.Service
	sheetID string
}

// NewSheetsStore builds a Sheets-backed store. Credentials come from credsJSON
// when non-empty, otherwise from the service-account key file at credsPath.
// It ensures the header row exists so a brand-new spreadsheet is usable.
func NewSheetsStore(ctx context.Context, sheetID, credsPath, credsJSON string) (*SheetsStore, error) {
	data := []byte(credsJSON)
	if len(data) == 0 {
		b, err := os.ReadFile(credsPath)
		if err != nil {
			return nil, fmt.Errorf("read google credentials: %w", err)
		}
		data = b
	}

	jwt, err := google.JWTConfigFromJSON(data, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parse google credentials: %w", err)
	}
	svc, err := sheets.NewService(ctx, option.WithHTTPClient(jwt.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("init sheets client: %w", err)
	}

	s := &SheetsStore{svc: svc, sheetID: sheetID}
	if err := s.ensureHeaders(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Append adds one record as a new row below the existing data.
func (s *SheetsStore) Append(ctx context.Context, p domain.Payment) (AppendResult, error) {
	row := recordToRow(p)
	values := make([]interface{}, len(row))
	for i, v := range row {
		values[i] = v
	}
	_, err := s.svc.Spreadsheets.Values.
		Append(s.sheetID, sheetRange, &sheets.ValueRange{Values: [][]interface{}{values}}).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return AppendResult{Method: MethodGoogleSheets}, fmt.Errorf("append sheet row: %w", err)
	}
	return AppendResult{Success: true, Method: MethodGoogleSheets, Message: "logged to Google Sheets"}, nil
}

// List reads all data rows. Header and blank rows are filtered out so callers
// only see records.
func (s *SheetsStore) List(ctx context.Context) ([]domain.Payment, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(s.sheetID, sheetRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read sheet rows: %w", err)
	}

	records := make([]domain.Payment, 0, len(resp.Values))
	for _, raw := range resp.Values {
		row := make([]string, len(raw))
		for i, cell := range raw {
			row[i] = fmt.Sprint(cell)
		}
		if len(row) == 0 || !isDataRow(row[0]) {
			continue
		}
		records = append(records, rowToRecord(row))
	}
	return records, nil
}

func (s *SheetsStore) ensureHeaders(ctx context.Context) error {
	resp, err := s.svc.Spreadsheets.Values.Get(s.sheetID, "1:1").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read sheet header: %w", err)
	}
	if len(resp.Values) > 0 && len(resp.Values[0]) >= len(columnHeaders) {
		return nil
	}

	header := make([]interface{}, len(columnHeaders))
	for i, h := range columnHeaders {
		header[i] = h
	}
	_, err = s.svc.Spreadsheets.Values.
		Update(s.sheetID, "A1", &sheets.ValueRange{Values: [][]interface{}{header}}).
		ValueInputOption("RAW").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("write sheet header: %w", err)
	}
	log.Printf("storage: wrote header row to sheet %s", s.sheetID)
	return nil
}
