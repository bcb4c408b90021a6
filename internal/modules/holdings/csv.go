package holdings

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nlagos/folio/internal/domain"
)

// ImportCSV parses a tabular import source. The header must carry the
// five base columns (any order, extra columns ignored); missing columns
// are reported together as a MissingColumnsError. Numeric fields with
// non-numeric content fail with a ValidationError naming the field.
// Derived fields are never read from the source.
func ImportCSV(r io.Reader) ([]domain.RawHolding, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, &domain.MissingColumnsError{Missing: domain.RequiredColumns}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}

	var missing []string
	for _, col := range domain.RequiredColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, &domain.MissingColumnsError{Missing: missing}
	}

	var raws []domain.RawHolding
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row %d: %w", len(raws)+2, err)
		}

		raw := domain.RawHolding{
			AssetID:  strings.TrimSpace(record[index[domain.ColAsset]]),
			Category: strings.TrimSpace(record[index[domain.ColCategory]]),
		}
		for _, f := range []struct {
			col  string
			dest *float64
		}{
			{domain.ColQuantity, &raw.Quantity},
			{domain.ColPurchasePrice, &raw.PurchasePrice},
			{domain.ColCurrentPrice, &raw.CurrentPrice},
		} {
			value, err := strconv.ParseFloat(strings.TrimSpace(record[index[f.col]]), 64)
			if err != nil {
				return nil, &domain.ValidationError{AssetID: raw.AssetID, Field: f.col, Reason: "must be numeric"}
			}
			*f.dest = value
		}
		raws = append(raws, raw)
	}
	return raws, nil
}

// ExportCSV writes the five base columns of each holding. Derived fields
// are recomputed on re-import, so exporting them would only invite drift.
func ExportCSV(w io.Writer, holdings []domain.Holding) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(domain.RequiredColumns); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, h := range holdings {
		record := []string{
			h.AssetID,
			h.Category,
			formatFloat(h.Quantity),
			formatFloat(h.PurchasePrice),
			formatFloat(h.CurrentPrice),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteTemplateCSV writes the two-row import template.
func WriteTemplateCSV(w io.Writer) error {
	records := domain.TemplateRecords()
	writer := csv.NewWriter(w)
	if err := writer.Write(domain.RequiredColumns); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, raw := range records {
		record := []string{
			raw.AssetID,
			raw.Category,
			formatFloat(raw.Quantity),
			formatFloat(raw.PurchasePrice),
			formatFloat(raw.CurrentPrice),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// formatFloat renders without a forced decimal point so whole quantities
// round-trip as written (10, not 10.000000).
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
