// Package report writes a probing round in terminal, JSON and spreadsheet
// formats for the command-line client.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/hamed0406/sitestatus/internal/domain"
)

type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatXLSX  Format = "xlsx"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatTable, FormatJSON, FormatXLSX:
		return f, nil
	case "":
		return FormatTable, nil
	default:
		return "", fmt.Errorf("unknown format %q (want table, json or xlsx)", s)
	}
}

// Report is one round plus the metadata printed alongside it.
type Report struct {
	RoundID   string             `json:"round_id"`
	CheckedAt time.Time          `json:"checked_at"`
	Counts    domain.Counts      `json:"counts"`
	Rows      []domain.StatusRow `json:"rows"`
}

func New(roundID string, checkedAt time.Time, rows domain.Round) Report {
	return Report{RoundID: roundID, CheckedAt: checkedAt, Counts: rows.Counts(), Rows: rows}
}

func Write(w io.Writer, f Format, r Report) error {
	switch f {
	case FormatJSON:
		return WriteJSON(w, r)
	case FormatXLSX:
		return WriteXLSX(w, r)
	default:
		return WriteTable(w, r)
	}
}

func WriteTable(w io.Writer, r Report) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DOMAIN\tSTATUS\t")
	for _, row := range r.Rows {
		fmt.Fprintf(tw, "%s\t%s %s\t\n", row.Domain, row.Outcome.Indicator(), row.Outcome)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\n%d healthy, %d erroring, %d unreachable (round %s, %s)\n",
		r.Counts.Healthy, r.Counts.Erroring, r.Counts.Unreachable,
		r.RoundID, r.CheckedAt.Format(time.RFC3339))
	return err
}

func WriteJSON(w io.Writer, r Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

const sheetName = "Status"

// WriteXLSX writes a workbook with one row per domain and a fill colour per
// outcome.
func WriteXLSX(w io.Writer, r Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	fills := map[domain.Outcome]string{
		domain.Healthy:     "C6EFCE",
		domain.Erroring:    "FFEB9C",
		domain.Unreachable: "FFC7CE",
	}
	styles := make(map[domain.Outcome]int, len(fills))
	for o, color := range fills {
		id, err := f.NewStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{color}},
		})
		if err != nil {
			return fmt.Errorf("outcome style: %w", err)
		}
		styles[o] = id
	}

	if err := f.SetSheetRow(sheetName, "A1", &[]any{"Domain", "Status"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := f.SetCellStyle(sheetName, "A1", "B1", header); err != nil {
		return fmt.Errorf("style header: %w", err)
	}
	for i, row := range r.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheetName, cell, &[]any{row.Domain, row.Outcome.String()}); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
		status, _ := excelize.CoordinatesToCellName(2, i+2)
		if err := f.SetCellStyle(sheetName, status, status, styles[row.Outcome]); err != nil {
			return fmt.Errorf("style row %d: %w", i, err)
		}
	}
	if err := f.SetColWidth(sheetName, "A", "A", 32); err != nil {
		return err
	}

	summary := len(r.Rows) + 3
	cell, _ := excelize.CoordinatesToCellName(1, summary)
	if err := f.SetSheetRow(sheetName, cell, &[]any{"Checked at", r.CheckedAt.UTC().Format(time.RFC3339)}); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	cell, _ = excelize.CoordinatesToCellName(1, summary+1)
	if err := f.SetSheetRow(sheetName, cell, &[]any{"Round", r.RoundID}); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}

	_, err = f.WriteTo(w)
	return err
}
