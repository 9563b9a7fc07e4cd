// Package transactions ingests transaction CSVs and flags amount outliers.
package transactions

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/stat"
)

// ErrMissingAmountColumn reports a CSV without the required "amount" column.
var ErrMissingAmountColumn = errors.New("transactions: CSV must have an \"amount\" column")

// Transaction is one CSV row with its parsed amount.
type Transaction struct {
	// Line is the 1-based CSV line the row came from (header is line 1).
	Line   int
	Amount float64
	// Fields maps header names to the raw cell values, preserved for display.
	Fields map[string]string
}

// Set is a parsed transaction file.
type Set struct {
	Columns []string
	Rows    []Transaction
	// Errors collects per-line parse problems; they do not abort the ingest.
	Errors []error
}

// ReadCSV parses a transaction file. The first row is the header and must
// contain an "amount" column (case-insensitive). Malformed rows are recorded
// in Set.Errors and skipped.
func ReadCSV(r io.Reader) (Set, error) {
	cr := csv.NewReader(bufio.NewReader(r))
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return Set{}, ErrMissingAmountColumn
	}
	if err != nil {
		return Set{}, fmt.Errorf("read header: %w", err)
	}
	amountIdx := -1
	columns := make([]string, len(header))
	for i, name := range header {
		columns[i] = strings.TrimSpace(name)
		if strings.EqualFold(columns[i], "amount") {
			amountIdx = i
		}
	}
	if amountIdx < 0 {
		return Set{Columns: columns}, ErrMissingAmountColumn
	}

	set := Set{Columns: columns}
	line := 1
	for {
		line++
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			set.Errors = append(set.Errors, fmt.Errorf("line %d: %w", line, err))
			continue
		}
		if amountIdx >= len(rec) {
			set.Errors = append(set.Errors, fmt.Errorf("line %d: missing amount cell", line))
			continue
		}
		amount, err := parseAmount(rec[amountIdx])
		if err != nil {
			set.Errors = append(set.Errors, fmt.Errorf("line %d amount: %w", line, err))
			continue
		}
		fields := make(map[string]string, len(columns))
		for i, col := range columns {
			if i < len(rec) {
				fields[col] = rec[i]
			}
		}
		set.Rows = append(set.Rows, Transaction{Line: line, Amount: amount, Fields: fields})
	}
	return set, nil
}

func parseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %q: %w", s, err)
	}
	return v, nil
}

// Report summarizes an outlier scan over a transaction set.
type Report struct {
	// Count is the number of flagged transactions.
	Count int
	// Threshold is mean + 3*stddev of the amounts.
	Threshold float64
	Mean      float64
	StdDev    float64
	Flagged   []Transaction
}

// DetectOutliers flags every transaction whose amount exceeds the
// mean + 3*stddev threshold. StdDev is the sample (n-1) deviation. Fewer than
// two rows cannot establish a spread and yield an empty report.
func DetectOutliers(set Set) Report {
	if len(set.Rows) < 2 {
		return Report{}
	}
	amounts := make([]float64, len(set.Rows))
	for i, tx := range set.Rows {
		amounts[i] = tx.Amount
	}
	mean := stat.Mean(amounts, nil)
	stddev := stat.StdDev(amounts, nil)
	threshold := mean + 3*stddev

	rep := Report{Threshold: threshold, Mean: mean, StdDev: stddev}
	for _, tx := range set.Rows {
		if tx.Amount > threshold {
			rep.Flagged = append(rep.Flagged, tx)
		}
	}
	rep.Count = len(rep.Flagged)
	return rep
}
