package ingestion

import (
	"testing"

	"github.com/yungbote/transcriptomics-backend/internal/domain"
)

func TestMatrixToExpressionsSetsOnlyNamedType(t *testing.T) {
	mt := &MatrixTable{
		Genes:   []string{"G1", "G2"},
		Samples: []string{"S1"},
		Counts:  [][]int64{{10}, {5}},
	}
	records := MatrixToExpressions(mt, "E1", domain.CountTPM)
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	for _, r := range records {
		if r.ExperimentResultID != "E1" {
			t.Fatalf("experiment = %q", r.ExperimentResultID)
		}
		if r.TPMCount == nil {
			t.Fatal("tpm_count should be set")
		}
		if r.RawCount != nil || r.TMMCount != nil || r.GETMMCount != nil || r.FPKMCount != nil {
			t.Fatalf("record %s/%s carries fields beyond the named count type", r.GeneCode, r.SampleID)
		}
	}
	if *records[1].TPMCount != 5 {
		t.Fatalf("G2 tpm = %v", *records[1].TPMCount)
	}
}

func TestSampleToExpressionsSetsMappedTypes(t *testing.T) {
	st := &SampleTable{
		Features: []string{"G1"},
		Values: map[domain.CountType][]float64{
			domain.CountRaw: {12.9},
			domain.CountTPM: {3.25},
		},
	}
	records := SampleToExpressions(st, "E1", "S1")
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	r := records[0]
	if r.SampleID != "S1" || r.GeneCode != "G1" {
		t.Fatalf("key = %s/%s", r.GeneCode, r.SampleID)
	}
	if r.RawCount == nil || *r.RawCount != 12 {
		t.Fatalf("raw = %v, want truncated 12", r.RawCount)
	}
	if r.TPMCount == nil || *r.TPMCount != 3.25 {
		t.Fatalf("tpm = %v", r.TPMCount)
	}
	if r.TMMCount != nil || r.GETMMCount != nil || r.FPKMCount != nil {
		t.Fatal("unmapped count types must stay null")
	}
}
