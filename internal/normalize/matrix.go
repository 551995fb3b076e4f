package normalize

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/floats"
)

// ErrNoCommonGenes is returned by length-aware methods when the count matrix
// and the gene-length table share no genes.
var ErrNoCommonGenes = errors.New("no common genes between counts and gene lengths")

// Matrix is a dense gene × sample table of expression values. Data is
// indexed [gene][sample], aligned with Genes and Samples. The engine treats
// matrices as immutable inputs and always allocates its outputs.
type Matrix struct {
	Genes   []string
	Samples []string
	Data    [][]float64
}

// NewMatrix allocates a zero-filled matrix with the given axes.
func NewMatrix(genes, samples []string) *Matrix {
	data := make([][]float64, len(genes))
	for i := range data {
		data[i] = make([]float64, len(samples))
	}
	return &Matrix{Genes: genes, Samples: samples, Data: data}
}

func (m *Matrix) clone() *Matrix {
	out := &Matrix{
		Genes:   append([]string(nil), m.Genes...),
		Samples: append([]string(nil), m.Samples...),
		Data:    make([][]float64, len(m.Data)),
	}
	for i, row := range m.Data {
		out.Data[i] = append([]float64(nil), row...)
	}
	return out
}

// column copies sample column j into dst, which must have len(m.Genes).
func (m *Matrix) column(dst []float64, j int) {
	for i, row := range m.Data {
		dst[i] = row[j]
	}
}

// libSizes returns the per-sample library sizes (column totals).
func (m *Matrix) libSizes() []float64 {
	sizes := make([]float64, len(m.Samples))
	for _, row := range m.Data {
		floats.Add(sizes, row)
	}
	return sizes
}

// dropZeroTotals removes genes whose total count across samples is zero and
// samples whose total count across genes is zero. Removed rows and columns
// are absent from the result, not retained as nulls.
func (m *Matrix) dropZeroTotals() *Matrix {
	rowSums := make([]float64, len(m.Genes))
	colSums := make([]float64, len(m.Samples))
	for i, row := range m.Data {
		rowSums[i] = floats.Sum(row)
		floats.Add(colSums, row)
	}

	keepGenes := make([]int, 0, len(m.Genes))
	for i := range m.Genes {
		if rowSums[i] != 0 {
			keepGenes = append(keepGenes, i)
		}
	}
	keepSamples := make([]int, 0, len(m.Samples))
	for j := range m.Samples {
		if colSums[j] != 0 {
			keepSamples = append(keepSamples, j)
		}
	}
	if len(keepGenes) == len(m.Genes) && len(keepSamples) == len(m.Samples) {
		return m
	}

	out := &Matrix{
		Genes:   make([]string, len(keepGenes)),
		Samples: make([]string, len(keepSamples)),
		Data:    make([][]float64, len(keepGenes)),
	}
	for jj, j := range keepSamples {
		out.Samples[jj] = m.Samples[j]
	}
	for ii, i := range keepGenes {
		out.Genes[ii] = m.Genes[i]
		row := make([]float64, len(keepSamples))
		for jj, j := range keepSamples {
			row[jj] = m.Data[i][j]
		}
		out.Data[ii] = row
	}
	return out
}

// alignLengths restricts m to the genes present in both the matrix and the
// length table, in matrix gene order, returning the matching length vector.
func (m *Matrix) alignLengths(lengths map[string]float64) (*Matrix, []float64, error) {
	keep := make([]int, 0, len(m.Genes))
	for i, gene := range m.Genes {
		if _, ok := lengths[gene]; ok {
			keep = append(keep, i)
		}
	}
	if len(keep) == 0 {
		return nil, nil, ErrNoCommonGenes
	}

	out := &Matrix{
		Genes:   make([]string, len(keep)),
		Samples: m.Samples,
		Data:    make([][]float64, len(keep)),
	}
	lens := make([]float64, len(keep))
	for ii, i := range keep {
		out.Genes[ii] = m.Genes[i]
		out.Data[ii] = m.Data[i]
		lens[ii] = lengths[m.Genes[i]]
	}
	return out, lens, nil
}

// rpk divides every count by its gene length in kilobases.
func (m *Matrix) rpk(lengths []float64) *Matrix {
	out := NewMatrix(m.Genes, m.Samples)
	for i, row := range m.Data {
		scaled := lengths[i] / lengthScale
		for j, v := range row {
			out.Data[i][j] = v / scaled
		}
	}
	return out
}

// Cell is one flattened (gene, sample, value) triple.
type Cell struct {
	Gene   string
	Sample string
	Value  float64
}

// Flatten lists every finite cell of the matrix in gene-major order. NaN
// cells (for example a TPM column with a zero scaling factor) are dropped
// rather than surfaced as nulls.
func (m *Matrix) Flatten() []Cell {
	out := make([]Cell, 0, len(m.Genes)*len(m.Samples))
	for i, row := range m.Data {
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			out = append(out, Cell{Gene: m.Genes[i], Sample: m.Samples[j], Value: v})
		}
	}
	return out
}
