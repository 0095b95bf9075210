package cmd

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"inventory/pkg/models"
)

// draftFile is the JSON layout accepted by "ingest draft". It differs from
// models.Draft only in taking the issue date as a plain string.
type draftFile struct {
	Supplier      models.DraftSupplier `json:"supplier"`
	InvoiceNumber string               `json:"invoice_number"`
	Series        string               `json:"series"`
	IssueDate     string               `json:"issue_date"`
	TotalAmount   decimal.Decimal      `json:"total_amount"`
	Items         []models.DraftItem   `json:"items"`
}

// parseDraftFile decodes a draft document. issue_date may be a calendar date
// (2006-01-02) or an RFC 3339 timestamp, whose calendar date is kept.
func parseDraftFile(data []byte) (*models.Draft, error) {
	var f draftFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("invalid draft JSON: %w", err)
	}

	draft := &models.Draft{
		Supplier:      f.Supplier,
		InvoiceNumber: strings.TrimSpace(f.InvoiceNumber),
		Series:        strings.TrimSpace(f.Series),
		TotalAmount:   f.TotalAmount,
		Items:         f.Items,
	}

	if raw := strings.TrimSpace(f.IssueDate); raw != "" {
		date, err := parseCalendarDate(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid issue_date %q: %w", raw, err)
		}
		draft.IssueDate = &date
	}
	return draft, nil
}

func parseCalendarDate(raw string) (time.Time, error) {
	if d, err := time.Parse("2006-01-02", raw); err == nil {
		return d, nil
	}
	ts, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC), nil
}
