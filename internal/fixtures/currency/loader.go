package currency

import (
	_ "embed"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

//go:embed meta.csv
var metaCSV string

// Meta is the display metadata of one currency code.
type Meta struct {
	Code   string
	Name   string
	Symbol string
}

// LoadCurrencyMetaCSV loads currency metadata from a CSV file or embedded content.
// If path is empty, it uses the embedded CSV content.
func LoadCurrencyMetaCSV(path string) ([]Meta, error) {
	var r io.Reader

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open file: %w", err)
		}
		defer f.Close() //nolint:errcheck
		r = f
	} else {
		r = strings.NewReader(metaCSV)
	}

	return parseCurrencyMetaCSV(r)
}

// Catalog indexes the embedded metadata by code.
func Catalog() (map[string]Meta, error) {
	metas, err := LoadCurrencyMetaCSV("")
	if err != nil {
		return nil, err
	}
	out := make(map[string]Meta, len(metas))
	for _, m := range metas {
		out[m.Code] = m
	}
	return out, nil
}

func parseCurrencyMetaCSV(r io.Reader) ([]Meta, error) {
	csvReader := csv.NewReader(r)
	csvReader.FieldsPerRecord = -1
	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, err
	}

	var metas []Meta
	for i, rec := range records {
		if i == 0 {
			if len(rec) < 3 {
				return nil, fmt.Errorf("invalid CSV format: expected at least 3 columns, got %d", len(rec))
			}
			continue // header
		}
		// malformed rows are skipped
		if len(rec) < 3 || len(strings.TrimSpace(rec[0])) != 3 {
			continue
		}
		metas = append(metas, Meta{
			Code:   strings.ToUpper(strings.TrimSpace(rec[0])),
			Name:   strings.TrimSpace(rec[1]),
			Symbol: strings.TrimSpace(rec[2]),
		})
	}
	return metas, nil
}
