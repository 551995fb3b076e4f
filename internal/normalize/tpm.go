package normalize

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

const (
	// lengthScale converts gene lengths in bases to kilobases.
	lengthScale = 1000.0
	// libraryScale is the per-million scaling of TPM factors.
	libraryScale = 1e6
)

// TPM computes Transcripts Per Million for every (gene, sample) pair.
// Zero-total genes and samples are dropped first, then the matrix is
// restricted to genes with a known length. A sample whose RPK total is zero
// produces NaN for that column instead of a division error; those cells are
// dropped again on Flatten.
func TPM(m *Matrix, lengths map[string]float64, parallel int) (*Matrix, error) {
	filtered := m.dropZeroTotals()
	aligned, lens, err := filtered.alignLengths(lengths)
	if err != nil {
		return nil, err
	}
	rpk := aligned.rpk(lens)

	out := NewMatrix(rpk.Genes, rpk.Samples)
	_ = mapColumns(len(rpk.Samples), parallel, func(j int) error {
		col := make([]float64, len(rpk.Genes))
		rpk.column(col, j)
		factor := floats.Sum(col) / libraryScale
		for i := range col {
			if factor == 0 {
				out.Data[i][j] = math.NaN()
			} else {
				out.Data[i][j] = col[i] / factor
			}
		}
		return nil
	})
	return out, nil
}
