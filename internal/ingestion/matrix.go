package ingestion

import (
	"github.com/yungbote/transcriptomics-backend/internal/platform/apierr"
)

// MatrixTable is a parsed raw-count matrix: genes down the rows, samples
// across the columns. Counts is indexed [gene][sample], aligned with the
// Genes and Samples slices.
type MatrixTable struct {
	Genes   []string
	Samples []string
	Counts  [][]int64
}

// ParseMatrix reads a multi-sample count matrix. The delimiter is inferred
// from the header line. The first column holds the gene identifier; every
// remaining header field names a sample. Duplicate gene or sample
// identifiers and non-numeric cells are rejected.
func ParseMatrix(data []byte) (*MatrixTable, error) {
	header, rows, err := readTable(data, FormatInfer)
	if err != nil {
		return nil, err
	}
	if len(header) < 2 {
		return nil, apierr.BadRequest("count matrix needs a gene column and at least one sample column")
	}
	samples := header[1:]
	if dup, ok := findDuplicate(samples); ok {
		return nil, apierr.BadRequest("duplicate values found in the Sample ID row: %q", dup)
	}

	mt := &MatrixTable{
		Genes:   make([]string, 0, len(rows)),
		Samples: samples,
		Counts:  make([][]int64, 0, len(rows)),
	}
	for _, rec := range rows {
		gene := rec[0]
		counts := make([]int64, len(samples))
		for j, cell := range rec[1:] {
			v, err := parseCount(cell, gene, samples[j])
			if err != nil {
				return nil, err
			}
			counts[j] = v
		}
		mt.Genes = append(mt.Genes, gene)
		mt.Counts = append(mt.Counts, counts)
	}
	if dup, ok := findDuplicate(mt.Genes); ok {
		return nil, apierr.BadRequest("duplicate values found in the Gene ID column: %q", dup)
	}
	return mt, nil
}
