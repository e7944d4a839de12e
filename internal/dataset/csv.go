package dataset

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

type csvLoader struct{}

func (csvLoader) CanLoad(filename string) bool {
	name := strings.ToLower(filename)
	return strings.HasSuffix(name, ".csv") || strings.HasSuffix(name, ".tsv") || strings.HasSuffix(name, ".txt")
}

func (csvLoader) Load(filename string, content []byte, opt Options) (*Dataset, error) {
	if opt.Delimiter == 0 {
		opt.Delimiter = sniffDelimiter(filename)
	}
	return ReadCSV(bytes.NewReader(content), opt)
}

// ReadCSV reads a header row followed by data rows. An empty input yields an
// empty dataset.
func ReadCSV(src io.Reader, opt Options) (*Dataset, error) {
	r := csv.NewReader(src)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	if opt.Delimiter != 0 {
		r.Comma = opt.Delimiter
	}
	// Trimming would swallow empty fields between tab delimiters.
	r.TrimLeadingSpace = r.Comma != '\t' && r.Comma != ' '

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return FromRecords(nil, nil, opt), nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	header = append([]string(nil), header...)

	var rows [][]string
	for {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row %d: %w", len(rows)+1, err)
		}
		rows = append(rows, rec)
	}
	return FromRecords(header, rows, opt), nil
}

func sniffDelimiter(filename string) rune {
	if strings.HasSuffix(strings.ToLower(filename), ".tsv") {
		return '\t'
	}
	return ','
}

// parseNumeric accepts plain decimal and scientific notation. Separators are only
// rewritten when configured, so "1,5" stays text unless DecimalSeparator is ','.
func parseNumeric(s string, opt Options) (float64, bool) {
	raw := s
	if opt.ThousandsSeparator != 0 && opt.ThousandsSeparator != opt.DecimalSeparator {
		raw = strings.ReplaceAll(raw, string(opt.ThousandsSeparator), "")
	}
	if dec := opt.DecimalSeparator; dec != 0 && dec != '.' {
		if strings.Contains(raw, ".") {
			return 0, false
		}
		raw = strings.ReplaceAll(raw, string(dec), ".")
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
