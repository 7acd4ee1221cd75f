package ingestion

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// FundRecord is one raw fund master row before standardization. Sizes are in
// the reported currency, not USD.
type FundRecord struct {
	FundID             string
	FundName           string
	ManagerName        string
	FundType           string
	Strategy           string
	VintageYear        *int
	InceptionDate      *time.Time
	FundSizeMillions   *float64
	Currency           string
	TargetSizeMillions *float64
	Status             string
	Geography          string
	SectorFocus        string
	Administrator      *string
	LastUpdated        *time.Time
}

// LoadFundCSV reads the fund master file. Columns are addressed by header
// name, so column order does not matter. Empty cells become nil.
func LoadFundCSV(path string) ([]FundRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open fund csv: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read fund csv header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{"fund_id", "fund_name", "manager_name"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("fund csv missing column %q", required)
		}
	}

	var records []FundRecord
	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read fund csv row: %w", err)
		}
		line++

		cell := func(name string) string {
			i, ok := cols[name]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}

		rec := FundRecord{
			FundID:      cell("fund_id"),
			FundName:    cell("fund_name"),
			ManagerName: cell("manager_name"),
			FundType:    cell("fund_type"),
			Strategy:    cell("strategy"),
			Currency:    cell("currency"),
			Status:      cell("status"),
			Geography:   cell("geography"),
			SectorFocus: cell("sector_focus"),
		}
		if admin := cell("administrator"); admin != "" {
			rec.Administrator = &admin
		}

		if rec.VintageYear, err = parseOptionalInt(cell("vintage_year")); err != nil {
			return nil, fmt.Errorf("fund csv line %d vintage_year: %w", line, err)
		}
		if rec.FundSizeMillions, err = parseOptionalFloat(cell("fund_size_millions")); err != nil {
			return nil, fmt.Errorf("fund csv line %d fund_size_millions: %w", line, err)
		}
		if rec.TargetSizeMillions, err = parseOptionalFloat(cell("target_size_millions")); err != nil {
			return nil, fmt.Errorf("fund csv line %d target_size_millions: %w", line, err)
		}
		if rec.InceptionDate, err = parseOptionalDate(cell("inception_date")); err != nil {
			return nil, fmt.Errorf("fund csv line %d inception_date: %w", line, err)
		}
		if rec.LastUpdated, err = parseOptionalTimestamp(cell("last_updated")); err != nil {
			return nil, fmt.Errorf("fund csv line %d last_updated: %w", line, err)
		}

		records = append(records, rec)
	}

	return records, nil
}

func parseOptionalInt(s string) (*int, error) {
	if s == "" {
		return nil, nil
	}
	// Spreadsheet exports sometimes write integers as "2021.0"
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("parse int %q: %w", s, err)
	}
	v := int(f)
	return &v, nil
}

func parseOptionalFloat(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("parse float %q: %w", s, err)
	}
	return &v, nil
}

func parseOptionalDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, fmt.Errorf("parse date %q: %w", s, err)
	}
	t = t.UTC()
	return &t, nil
}

// parseOptionalTimestamp accepts a date or a full RFC 3339 timestamp.
func parseOptionalTimestamp(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, fmt.Errorf("parse timestamp %q", s)
}
