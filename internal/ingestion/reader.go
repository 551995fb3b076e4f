package ingestion

import (
	"bytes"
	"encoding/csv"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/yungbote/transcriptomics-backend/internal/platform/apierr"
)

// Format is the declared layout of an uploaded tabular file.
type Format int

const (
	// FormatInfer sniffs the delimiter from the first line.
	FormatInfer Format = iota
	FormatCSV
	FormatTSV
)

func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return FormatInfer, nil
	case "csv":
		return FormatCSV, nil
	case "tsv":
		return FormatTSV, nil
	}
	return FormatInfer, apierr.BadRequest("unknown file format %q, expected csv or tsv", s)
}

func (f Format) comma() rune {
	if f == FormatTSV {
		return '\t'
	}
	return ','
}

func (f Format) String() string {
	switch f {
	case FormatCSV:
		return "csv"
	case FormatTSV:
		return "tsv"
	}
	return "inferred"
}

// sniffFormat guesses the delimiter from the first line of data. When both
// delimiters appear the more frequent one wins; tabs win ties since comma is
// the more likely literal character inside a field.
func sniffFormat(data []byte) (Format, error) {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}
	tabs := bytes.Count(line, []byte{'\t'})
	commas := bytes.Count(line, []byte{','})
	switch {
	case tabs == 0 && commas == 0:
		return FormatInfer, apierr.BadRequest("could not infer delimiter: first line contains neither tabs nor commas")
	case tabs >= commas:
		return FormatTSV, nil
	default:
		return FormatCSV, nil
	}
}

// readTable splits data with the given format, inferring it first when asked.
// The returned rows all have the same number of fields; a declared format
// that disagrees with the file's actual structure is rejected rather than
// collapsed into a one-column table.
func readTable(data []byte, format Format) (header []string, rows [][]string, err error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil, apierr.BadRequest("file is empty")
	}
	if format == FormatInfer {
		format, err = sniffFormat(data)
		if err != nil {
			return nil, nil, err
		}
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = format.comma()

	header, err = r.Read()
	if err != nil {
		if err == io.EOF {
			return nil, nil, apierr.BadRequest("file is empty")
		}
		return nil, nil, apierr.BadRequest("error parsing data: %v", err)
	}
	if len(header) == 1 {
		other := ','
		if format.comma() == ',' {
			other = '\t'
		}
		if strings.ContainsRune(header[0], other) {
			return nil, nil, apierr.BadRequest(
				"file declared as %s but its header is %q-delimited", format, other)
		}
	}

	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, apierr.BadRequest("error parsing data: %v", err)
		}
		rows = append(rows, rec)
	}
	if len(rows) == 0 {
		return nil, nil, apierr.BadRequest("file has a header but no data rows")
	}
	return header, rows, nil
}

// findDuplicate returns the first repeated value in ids, if any.
func findDuplicate(ids []string) (string, bool) {
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			return id, true
		}
		seen[id] = struct{}{}
	}
	return "", false
}

// parseCount coerces one matrix cell to a non-negative integer count.
// Decimal representations are accepted and truncated, matching how the
// counts land in the raw_count column.
func parseCount(cell, gene, sample string) (int64, error) {
	s := strings.TrimSpace(cell)
	if s == "" {
		return 0, apierr.BadRequest("empty count for gene %q, sample %q", gene, sample)
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		if v < 0 {
			return 0, apierr.BadRequest("negative count %d for gene %q, sample %q", v, gene, sample)
		}
		return v, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, apierr.BadRequest("non-numeric count %q for gene %q, sample %q", cell, gene, sample)
	}
	if f < 0 {
		return 0, apierr.BadRequest("negative count %v for gene %q, sample %q", f, gene, sample)
	}
	return int64(f), nil
}

// parseValue coerces one detailed-file cell to a non-negative number.
func parseValue(cell, gene, column string) (float64, error) {
	s := strings.TrimSpace(cell)
	if s == "" {
		return 0, apierr.BadRequest("empty value in column %q for feature %q", column, gene)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, apierr.BadRequest("non-numeric value %q in column %q for feature %q", cell, column, gene)
	}
	if f < 0 {
		return 0, apierr.BadRequest("negative value %v in column %q for feature %q", f, column, gene)
	}
	return f, nil
}
