package ingestion

import (
	"strconv"
	"strings"

	"github.com/yungbote/transcriptomics-backend/internal/platform/apierr"
)

// GeneLengthTable maps gene identifiers to lengths in bases. Order holds the
// file's row order for deterministic iteration.
type GeneLengthTable struct {
	Order   []string
	Lengths map[string]float64
}

// ParseGeneLengths reads a two-column (gene identifier, length) table.
// Exactly one length column is required; lengths must be positive numbers.
func ParseGeneLengths(data []byte) (*GeneLengthTable, error) {
	header, rows, err := readTable(data, FormatInfer)
	if err != nil {
		return nil, err
	}
	if len(header) != 2 {
		return nil, apierr.BadRequest(
			"gene lengths file should contain exactly one column of gene lengths, got %d columns", len(header)-1)
	}

	gl := &GeneLengthTable{
		Order:   make([]string, 0, len(rows)),
		Lengths: make(map[string]float64, len(rows)),
	}
	for _, rec := range rows {
		gene := rec[0]
		if _, ok := gl.Lengths[gene]; ok {
			return nil, apierr.BadRequest("duplicate gene %q in gene lengths file", gene)
		}
		s := strings.TrimSpace(rec[1])
		length, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, apierr.BadRequest("non-numeric length %q for gene %q", rec[1], gene)
		}
		if length <= 0 {
			return nil, apierr.BadRequest("non-positive length %v for gene %q", length, gene)
		}
		gl.Order = append(gl.Order, gene)
		gl.Lengths[gene] = length
	}
	return gl, nil
}
