package domain

// CountType names one of the five per-record quantity columns.
type CountType string

const (
	CountRaw   CountType = "raw"
	CountTPM   CountType = "tpm"
	CountTMM   CountType = "tmm"
	CountGETMM CountType = "getmm"
	CountFPKM  CountType = "fpkm"
)

// CountTypes lists every recognized count type in column order.
var CountTypes = []CountType{CountRaw, CountTPM, CountTMM, CountGETMM, CountFPKM}

func (t CountType) Valid() bool {
	switch t {
	case CountRaw, CountTPM, CountTMM, CountGETMM, CountFPKM:
		return true
	}
	return false
}

// Column returns the gene_expressions column holding this count type.
func (t CountType) Column() string { return string(t) + "_count" }

// GeneExpression is one (gene, sample, experiment) observation. Each of the
// five count fields is independently nullable; ingestions that carry only a
// subset of them merge into existing rows instead of replacing them.
type GeneExpression struct {
	GeneCode           string   `gorm:"column:gene_code;primaryKey;size:255" json:"gene_code"`
	SampleID           string   `gorm:"column:sample_id;primaryKey;size:255" json:"sample_id"`
	ExperimentResultID string   `gorm:"column:experiment_result_id;primaryKey;size:255" json:"experiment_result_id"`
	RawCount           *int64   `gorm:"column:raw_count" json:"raw_count,omitempty"`
	TPMCount           *float64 `gorm:"column:tpm_count" json:"tpm_count,omitempty"`
	TMMCount           *float64 `gorm:"column:tmm_count" json:"tmm_count,omitempty"`
	GETMMCount         *float64 `gorm:"column:getmm_count" json:"getmm_count,omitempty"`
	FPKMCount          *float64 `gorm:"column:fpkm_count" json:"fpkm_count,omitempty"`
}

func (GeneExpression) TableName() string { return "gene_expressions" }

// Count returns the value stored for the given count type, or nil.
func (g *GeneExpression) Count(t CountType) *float64 {
	switch t {
	case CountRaw:
		if g.RawCount == nil {
			return nil
		}
		v := float64(*g.RawCount)
		return &v
	case CountTPM:
		return g.TPMCount
	case CountTMM:
		return g.TMMCount
	case CountGETMM:
		return g.GETMMCount
	case CountFPKM:
		return g.FPKMCount
	}
	return nil
}

// SetCount stores v under the given count type. Raw counts are truncated to
// the integer column.
func (g *GeneExpression) SetCount(t CountType, v float64) {
	switch t {
	case CountRaw:
		iv := int64(v)
		g.RawCount = &iv
	case CountTPM:
		g.TPMCount = &v
	case CountTMM:
		g.TMMCount = &v
	case CountGETMM:
		g.GETMMCount = &v
	case CountFPKM:
		g.FPKMCount = &v
	}
}
