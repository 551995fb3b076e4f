package ingestion

import (
	"strings"

	"github.com/yungbote/transcriptomics-backend/internal/domain"
	"github.com/yungbote/transcriptomics-backend/internal/platform/apierr"
)

// ColumnMapping names the source columns of a single-sample detailed file.
// FeatureCol is mandatory; each count column is optional and, when left
// empty, that count type is simply absent from the parsed result. A non-empty
// mapping that names a column missing from the file's header is a hard error.
type ColumnMapping struct {
	FeatureCol    string
	RawCountCol   string
	TPMCountCol   string
	TMMCountCol   string
	GETMMCountCol string
	FPKMCountCol  string
}

func (m ColumnMapping) countCols() map[domain.CountType]string {
	cols := make(map[domain.CountType]string, 5)
	for t, col := range map[domain.CountType]string{
		domain.CountRaw:   m.RawCountCol,
		domain.CountTPM:   m.TPMCountCol,
		domain.CountTMM:   m.TMMCountCol,
		domain.CountGETMM: m.GETMMCountCol,
		domain.CountFPKM:  m.FPKMCountCol,
	} {
		if col != "" {
			cols[t] = col
		}
	}
	return cols
}

// SampleTable is a parsed single-sample detailed file: one row per feature,
// with a value vector per mapped count type, aligned with Features.
type SampleTable struct {
	Features []string
	Values   map[domain.CountType][]float64
}

// ParseSample reads a single-sample detailed file. format may be FormatInfer.
// Every mapped column must exist in the header; duplicate feature
// identifiers and non-numeric mapped cells are rejected.
func ParseSample(data []byte, format Format, mapping ColumnMapping) (*SampleTable, error) {
	if strings.TrimSpace(mapping.FeatureCol) == "" {
		return nil, apierr.BadRequest("a feature column mapping is required")
	}

	header, rows, err := readTable(data, format)
	if err != nil {
		return nil, err
	}

	colIdx := make(map[string]int, len(header))
	for i, name := range header {
		colIdx[name] = i
	}

	countCols := mapping.countCols()
	var missing []string
	if _, ok := colIdx[mapping.FeatureCol]; !ok {
		missing = append(missing, mapping.FeatureCol)
	}
	for _, t := range domain.CountTypes {
		col, mapped := countCols[t]
		if !mapped {
			continue
		}
		if _, ok := colIdx[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, apierr.BadRequest(
			"the following provided column mappings are not in the data: %s", strings.Join(missing, ", "))
	}

	st := &SampleTable{
		Features: make([]string, 0, len(rows)),
		Values:   make(map[domain.CountType][]float64, len(countCols)),
	}
	featureIdx := colIdx[mapping.FeatureCol]
	for _, rec := range rows {
		feature := rec[featureIdx]
		for t, col := range countCols {
			v, err := parseValue(rec[colIdx[col]], feature, col)
			if err != nil {
				return nil, err
			}
			st.Values[t] = append(st.Values[t], v)
		}
		st.Features = append(st.Features, feature)
	}
	if dup, ok := findDuplicate(st.Features); ok {
		return nil, apierr.BadRequest("duplicate values found in the feature column: %q", dup)
	}
	return st, nil
}
