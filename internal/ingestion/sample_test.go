package ingestion

import (
	"strings"
	"testing"

	"github.com/yungbote/transcriptomics-backend/internal/domain"
	"github.com/yungbote/transcriptomics-backend/internal/platform/apierr"
)

func TestParseSampleMappedSubset(t *testing.T) {
	data := []byte("gene_id,est_counts,tpm,eff_length\nG1,10,1.5,900\nG2,0,0.0,1200\n")
	st, err := ParseSample(data, FormatInfer, ColumnMapping{
		FeatureCol:  "gene_id",
		RawCountCol: "est_counts",
		TPMCountCol: "tpm",
	})
	if err != nil {
		t.Fatalf("ParseSample: %v", err)
	}
	if len(st.Features) != 2 {
		t.Fatalf("features = %v", st.Features)
	}
	if _, ok := st.Values[domain.CountFPKM]; ok {
		t.Fatal("unmapped count type should be absent from Values")
	}
	if got := st.Values[domain.CountRaw][0]; got != 10 {
		t.Fatalf("raw[0] = %v, want 10", got)
	}
	if got := st.Values[domain.CountTPM][1]; got != 0 {
		t.Fatalf("tpm[1] = %v, want 0", got)
	}
}

func TestParseSampleMissingMappedColumns(t *testing.T) {
	data := []byte("gene_id,est_counts\nG1,10\n")
	_, err := ParseSample(data, FormatInfer, ColumnMapping{
		FeatureCol:   "gene_id",
		RawCountCol:  "counts",
		FPKMCountCol: "fpkm",
	})
	if !apierr.Is(err, apierr.CodeBadRequest) {
		t.Fatalf("err = %v, want bad_request", err)
	}
	msg := err.Error()
	if !strings.Contains(msg, "counts") || !strings.Contains(msg, "fpkm") {
		t.Fatalf("error should list every missing mapping: %q", msg)
	}
	if strings.Contains(msg, "gene_id") {
		t.Fatalf("present columns must not be reported missing: %q", msg)
	}
}

func TestParseSampleFeatureColRequired(t *testing.T) {
	_, err := ParseSample([]byte("a,b\n1,2\n"), FormatInfer, ColumnMapping{RawCountCol: "b"})
	if !apierr.Is(err, apierr.CodeBadRequest) {
		t.Fatalf("err = %v, want bad_request", err)
	}
}

func TestParseSampleDuplicateFeature(t *testing.T) {
	data := []byte("gene_id,tpm\nG1,1\nG1,2\n")
	_, err := ParseSample(data, FormatInfer, ColumnMapping{FeatureCol: "gene_id", TPMCountCol: "tpm"})
	if !apierr.Is(err, apierr.CodeBadRequest) {
		t.Fatalf("err = %v, want bad_request", err)
	}
	if !strings.Contains(err.Error(), "G1") {
		t.Fatalf("error should name the duplicate feature: %v", err)
	}
}

func TestParseSampleDeclaredFormatMismatch(t *testing.T) {
	data := []byte("gene_id\ttpm\nG1\t1.5\n")
	_, err := ParseSample(data, FormatCSV, ColumnMapping{FeatureCol: "gene_id", TPMCountCol: "tpm"})
	if !apierr.Is(err, apierr.CodeBadRequest) {
		t.Fatalf("err = %v, want bad_request for csv-declared tsv data", err)
	}
}

func TestParseSampleNegativeValue(t *testing.T) {
	data := []byte("gene_id,tpm\nG1,-1.5\n")
	_, err := ParseSample(data, FormatInfer, ColumnMapping{FeatureCol: "gene_id", TPMCountCol: "tpm"})
	if !apierr.Is(err, apierr.CodeBadRequest) {
		t.Fatalf("err = %v, want bad_request", err)
	}
	msg := err.Error()
	if !strings.Contains(msg, "G1") || !strings.Contains(msg, "tpm") {
		t.Fatalf("error should name feature and column: %q", msg)
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat("TSV"); err != nil || f != FormatTSV {
		t.Fatalf("ParseFormat(TSV) = %v, %v", f, err)
	}
	if f, err := ParseFormat(""); err != nil || f != FormatInfer {
		t.Fatalf("ParseFormat(empty) = %v, %v", f, err)
	}
	if _, err := ParseFormat("xlsx"); !apierr.Is(err, apierr.CodeBadRequest) {
		t.Fatalf("ParseFormat(xlsx) err = %v, want bad_request", err)
	}
}
