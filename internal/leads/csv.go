// Package leads loads the recipient list produced by the scraping/export
// stage. The export columns are Company Name, Contact Person, Email,
// Industry, Location, with an optional ID column; header matching is
// case-insensitive.
package leads

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/ignite/outreach-tracker/internal/domain"
)

// CSVSource reads leads from a CSV file. It implements the send loop's
// LeadSource contract and preserves file order.
type CSVSource struct {
	path string
}

// NewCSVSource creates a source over the given file path.
func NewCSVSource(path string) *CSVSource {
	return &CSVSource{path: path}
}

// Leads parses the file. Rows missing an email are returned as-is; the
// send loop decides how to handle them (skip and log).
func (s *CSVSource) Leads(ctx context.Context) ([]domain.Lead, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("leads: opening %s: %w", s.path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // tolerate ragged exports

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("leads: reading header: %w", err)
	}
	cols := columnIndex(header)

	var out []domain.Lead
	for i := 0; ; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("leads: reading row %d: %w", i+1, err)
		}

		lead := domain.Lead{
			ID:       cols.get(row, "id"),
			Company:  cols.get(row, "company name"),
			Contact:  cols.get(row, "contact person"),
			Email:    cols.get(row, "email"),
			Industry: cols.get(row, "industry"),
			Location: cols.get(row, "location"),
		}
		if lead.ID == "" {
			lead.ID = strconv.Itoa(i)
		}
		out = append(out, lead)
	}
	return out, nil
}

type index map[string]int

func columnIndex(header []string) index {
	idx := make(index, len(header))
	for i, name := range header {
		idx[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return idx
}

func (idx index) get(row []string, name string) string {
	i, ok := idx[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
