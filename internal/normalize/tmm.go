package normalize

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// ErrEmptyMatrix is returned when nothing is left to normalize after the
// zero-total gene and sample filters.
var ErrEmptyMatrix = errors.New("count matrix is empty after filtering zero-total genes and samples")

// TMMOptions tunes the trimmed mean of M-values computation. The defaults
// follow the conventional edgeR parameterization.
type TMMOptions struct {
	// LogRatioTrim is the total fraction of genes dropped by M-value
	// extremity, split evenly between the top and bottom.
	LogRatioTrim float64
	// SumTrim is the total fraction of surviving genes dropped by A-value
	// extremity, split evenly between the top and bottom.
	SumTrim float64
	// Weighted enables inverse-variance weights 1/(rel_i + rel_ref) on the
	// M-values; otherwise all genes weigh equally.
	Weighted bool
}

func DefaultTMMOptions() TMMOptions {
	return TMMOptions{LogRatioTrim: 0.3, SumTrim: 0.05, Weighted: true}
}

// TMMResult holds a normalized matrix together with the factors that
// produced it, so callers can inspect the scale correction per sample.
type TMMResult struct {
	Matrix *Matrix
	// RawFactors are the per-sample factors before the geometric-mean
	// adjustment; the reference sample's raw factor is exactly 1.
	RawFactors []float64
	// Factors are the adjusted factors actually applied; their product is 1
	// across samples, keeping the transform library-size-neutral.
	Factors  []float64
	RefIndex int
}

// TMM normalizes raw counts by the trimmed mean of M-values against a single
// reference sample, then rescales to the mean library size.
func TMM(m *Matrix, opts TMMOptions, parallel int) (*TMMResult, error) {
	filtered := m.dropZeroTotals()
	return tmmOf(filtered, opts, parallel)
}

// GeTMM converts counts to reads-per-kilobase using the supplied gene
// lengths and runs the full TMM procedure on the RPK matrix.
func GeTMM(m *Matrix, lengths map[string]float64, opts TMMOptions, parallel int) (*TMMResult, error) {
	filtered := m.dropZeroTotals()
	aligned, lens, err := filtered.alignLengths(lengths)
	if err != nil {
		return nil, err
	}
	return tmmOf(aligned.rpk(lens), opts, parallel)
}

func tmmOf(m *Matrix, opts TMMOptions, parallel int) (*TMMResult, error) {
	if len(m.Genes) == 0 || len(m.Samples) == 0 {
		return nil, ErrEmptyMatrix
	}

	lib := m.libSizes()
	ref := refColumn(lib)

	raw := make([]float64, len(m.Samples))
	err := mapColumns(len(m.Samples), parallel, func(j int) error {
		if j == ref {
			raw[j] = 1
			return nil
		}
		f, err := sampleFactor(m, lib, j, ref, opts)
		if err != nil {
			return err
		}
		raw[j] = f
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Divide by the geometric mean so the factors multiply to 1.
	logs := make([]float64, len(raw))
	for i, f := range raw {
		logs[i] = math.Log(f)
	}
	geomean := math.Exp(stat.Mean(logs, nil))
	factors := make([]float64, len(raw))
	for i, f := range raw {
		factors[i] = f / geomean
	}

	meanLib := stat.Mean(lib, nil)
	out := NewMatrix(m.Genes, m.Samples)
	for i, row := range m.Data {
		for j, v := range row {
			out.Data[i][j] = v / lib[j] / factors[j] * meanLib
		}
	}
	return &TMMResult{Matrix: out, RawFactors: raw, Factors: factors, RefIndex: ref}, nil
}

// refColumn picks the sample whose library size is closest to the median
// library size. Exact-distance ties go to the earliest column, which is
// deterministic because callers fix the sample order before normalizing.
func refColumn(lib []float64) int {
	sorted := append([]float64(nil), lib...)
	sort.Float64s(sorted)
	var median float64
	n := len(sorted)
	if n%2 == 1 {
		median = sorted[n/2]
	} else {
		median = (sorted[n/2-1] + sorted[n/2]) / 2
	}

	best := 0
	bestDist := math.Abs(lib[0] - median)
	for j := 1; j < len(lib); j++ {
		if d := math.Abs(lib[j] - median); d < bestDist {
			best, bestDist = j, d
		}
	}
	return best
}

// sampleFactor computes the unadjusted TMM normalization factor for sample j
// against the reference column.
func sampleFactor(m *Matrix, lib []float64, j, ref int, opts TMMOptions) (float64, error) {
	var ms, as, ws []float64
	for _, row := range m.Data {
		x, y := row[j], row[ref]
		if x <= 0 || y <= 0 {
			continue
		}
		relI := x / lib[j]
		relR := y / lib[ref]
		ms = append(ms, math.Log2(relI)-math.Log2(relR))
		as = append(as, 0.5*(math.Log2(relI)+math.Log2(relR)))
		if opts.Weighted {
			ws = append(ws, 1/(relI+relR))
		} else {
			ws = append(ws, 1)
		}
	}
	if len(ms) == 0 {
		return 0, fmt.Errorf("sample %q shares no positively expressed genes with reference sample %q",
			m.Samples[j], m.Samples[ref])
	}

	keep := trimExtremes(ms, opts.LogRatioTrim, allIndices(len(ms)))
	keep = trimExtremes(as, opts.SumTrim, keep)

	kept := len(keep)
	trimmedM := make([]float64, kept)
	trimmedW := make([]float64, kept)
	for i, idx := range keep {
		trimmedM[i] = ms[idx]
		trimmedW[i] = ws[idx]
	}
	return math.Exp2(stat.Mean(trimmedM, trimmedW)), nil
}

func allIndices(n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return idx
}

// trimExtremes drops a fraction of the candidate indices, split evenly
// between the lowest and highest values of vals, and returns the survivors
// in their original order.
func trimExtremes(vals []float64, fraction float64, candidates []int) []int {
	n := len(candidates)
	drop := int(math.Floor(float64(n) * fraction / 2))
	if drop == 0 {
		return candidates
	}

	byVal := append([]int(nil), candidates...)
	sort.SliceStable(byVal, func(a, b int) bool { return vals[byVal[a]] < vals[byVal[b]] })
	dropped := make(map[int]struct{}, 2*drop)
	for _, idx := range byVal[:drop] {
		dropped[idx] = struct{}{}
	}
	for _, idx := range byVal[n-drop:] {
		dropped[idx] = struct{}{}
	}

	keep := make([]int, 0, n-2*drop)
	for _, idx := range candidates {
		if _, ok := dropped[idx]; !ok {
			keep = append(keep, idx)
		}
	}
	return keep
}
