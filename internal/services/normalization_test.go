package services_test

import (
	"context"
	"math"
	"testing"

	"github.com/yungbote/transcriptomics-backend/internal/domain"
	"github.com/yungbote/transcriptomics-backend/internal/platform/apierr"
	"github.com/yungbote/transcriptomics-backend/internal/services"
)

const lengthsFile = "gene_id,length\nG1,1000\nG2,2000\n"

func ingestRawMatrix(t *testing.T, f *fixture, experimentID string) {
	t.Helper()
	f.createExperiment(t, experimentID)
	if _, err := f.ingestion.IngestMatrix(context.Background(), services.MatrixIngestRequest{
		ExperimentResultID: experimentID,
		Data:               []byte(rawMatrix),
	}); err != nil {
		t.Fatalf("IngestMatrix: %v", err)
	}
}

func TestNormalizeTMMEndToEnd(t *testing.T) {
	f := newFixture(t)
	ingestRawMatrix(t, f, "E1")
	ctx := context.Background()

	rows := f.storedRows(t, "E1")
	if len(rows) != 4 {
		t.Fatalf("stored %d raw records, want 4", len(rows))
	}
	for _, r := range rows {
		if r.RawCount == nil || r.TMMCount != nil {
			t.Fatalf("pre-normalization row %s/%s = %+v", r.GeneCode, r.SampleID, r)
		}
	}

	n, err := f.normalization.Normalize(ctx, services.NormalizeRequest{
		ExperimentResultID: "E1",
		Method:             domain.CountTMM,
	})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if n != 4 {
		t.Fatalf("records = %d, want 4", n)
	}

	rows = f.storedRows(t, "E1")
	for _, r := range rows {
		if r.TMMCount == nil {
			t.Fatalf("row %s/%s missing tmm_count after normalization", r.GeneCode, r.SampleID)
		}
		v := *r.TMMCount
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("tmm %s/%s = %v", r.GeneCode, r.SampleID, v)
		}
		if r.RawCount == nil {
			t.Fatalf("row %s/%s lost its raw count", r.GeneCode, r.SampleID)
		}
	}
	// Raw values are exactly what was ingested.
	byKey := map[string]int64{}
	for _, r := range rows {
		byKey[r.GeneCode+"/"+r.SampleID] = *r.RawCount
	}
	want := map[string]int64{"G1/S1": 10, "G1/S2": 20, "G2/S1": 5, "G2/S2": 0}
	for k, v := range want {
		if byKey[k] != v {
			t.Fatalf("raw %s = %d, want %d", k, byKey[k], v)
		}
	}
}

func TestNormalizeTPMWritesBack(t *testing.T) {
	f := newFixture(t)
	ingestRawMatrix(t, f, "E1")

	if _, err := f.normalization.Normalize(context.Background(), services.NormalizeRequest{
		ExperimentResultID: "E1",
		Method:             domain.CountTPM,
		GeneLengths:        []byte(lengthsFile),
	}); err != nil {
		t.Fatalf("Normalize: %v", err)
	}

	sums := map[string]float64{}
	for _, r := range f.storedRows(t, "E1") {
		if r.TPMCount != nil {
			sums[r.SampleID] += *r.TPMCount
		}
	}
	for sample, sum := range sums {
		if math.Abs(sum-1e6) > 1e-6 {
			t.Fatalf("sample %s tpm sums to %v, want 1e6", sample, sum)
		}
	}
	if len(sums) != 2 {
		t.Fatalf("tpm written for %d samples, want 2", len(sums))
	}
}

func TestNormalizeTPMRequiresLengths(t *testing.T) {
	f := newFixture(t)
	ingestRawMatrix(t, f, "E1")

	_, err := f.normalization.Normalize(context.Background(), services.NormalizeRequest{
		ExperimentResultID: "E1",
		Method:             domain.CountTPM,
	})
	if !apierr.Is(err, apierr.CodeBadRequest) {
		t.Fatalf("err = %v, want bad_request", err)
	}
}

func TestNormalizeGeTMMNoCommonGenes(t *testing.T) {
	f := newFixture(t)
	ingestRawMatrix(t, f, "E1")

	_, err := f.normalization.Normalize(context.Background(), services.NormalizeRequest{
		ExperimentResultID: "E1",
		Method:             domain.CountGETMM,
		GeneLengths:        []byte("gene_id,length\nZZ,500\n"),
	})
	if !apierr.Is(err, apierr.CodeBadRequest) {
		t.Fatalf("err = %v, want bad_request", err)
	}
}

func TestNormalizeFPKMNotImplemented(t *testing.T) {
	f := newFixture(t)
	_, err := f.normalization.Normalize(context.Background(), services.NormalizeRequest{
		ExperimentResultID: "E1",
		Method:             domain.CountFPKM,
	})
	if !apierr.Is(err, apierr.CodeNotImplemented) {
		t.Fatalf("err = %v, want not_implemented", err)
	}
}

func TestNormalizeUnknownMethod(t *testing.T) {
	f := newFixture(t)
	_, err := f.normalization.Normalize(context.Background(), services.NormalizeRequest{
		ExperimentResultID: "E1",
		Method:             domain.CountType("quantile"),
	})
	if !apierr.Is(err, apierr.CodeBadRequest) {
		t.Fatalf("err = %v, want bad_request", err)
	}
}

func TestNormalizeWithoutRawCounts(t *testing.T) {
	f := newFixture(t)
	f.createExperiment(t, "E1")

	_, err := f.normalization.Normalize(context.Background(), services.NormalizeRequest{
		ExperimentResultID: "E1",
		Method:             domain.CountTMM,
	})
	if !apierr.Is(err, apierr.CodeNotFound) {
		t.Fatalf("err = %v, want not_found", err)
	}
}
