package services_test

import (
	"context"
	"testing"

	"github.com/yungbote/transcriptomics-backend/internal/data/repos/expression"
	"github.com/yungbote/transcriptomics-backend/internal/domain"
	"github.com/yungbote/transcriptomics-backend/internal/platform/apierr"
	"github.com/yungbote/transcriptomics-backend/internal/services"
)

func TestQueryExpressionsProjectsMethod(t *testing.T) {
	f := newFixture(t)
	ingestRawMatrix(t, f, "E1")
	ctx := context.Background()

	if _, err := f.normalization.Normalize(ctx, services.NormalizeRequest{
		ExperimentResultID: "E1",
		Method:             domain.CountTMM,
	}); err != nil {
		t.Fatalf("Normalize: %v", err)
	}

	tmm := domain.CountTMM
	records, total, err := f.queries.Expressions(ctx, expression.QueryFilter{
		Experiments: []string{"E1"},
		CountType:   &tmm,
	})
	if err != nil {
		t.Fatalf("Expressions: %v", err)
	}
	if total != 4 {
		t.Fatalf("total = %d, want 4", total)
	}
	for _, r := range records {
		if r.Method != "tmm" {
			t.Fatalf("method = %q", r.Method)
		}
		if r.Count == nil {
			t.Fatalf("record %s/%s has no projected count", r.GeneCode, r.SampleID)
		}
	}
}

func TestQueryExpressionsDefaultsToRaw(t *testing.T) {
	f := newFixture(t)
	ingestRawMatrix(t, f, "E1")

	records, _, err := f.queries.Expressions(context.Background(), expression.QueryFilter{
		Genes:     []string{"G1"},
		SampleIDs: []string{"S2"},
	})
	if err != nil {
		t.Fatalf("Expressions: %v", err)
	}
	if len(records) != 1 || records[0].Method != "raw" {
		t.Fatalf("records = %+v", records)
	}
	if records[0].Count == nil || *records[0].Count != 20 {
		t.Fatalf("count = %v, want 20", records[0].Count)
	}
}

func TestQueryExpressionsEmptyIsNotFound(t *testing.T) {
	f := newFixture(t)
	_, _, err := f.queries.Expressions(context.Background(), expression.QueryFilter{
		Genes: []string{"nope"},
	})
	if !apierr.Is(err, apierr.CodeNotFound) {
		t.Fatalf("err = %v, want not_found", err)
	}
}

func TestQueryExpressionsAllEmptyPage(t *testing.T) {
	f := newFixture(t)
	rows, total, err := f.queries.ExpressionsAll(context.Background(), expression.Pagination{Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("ExpressionsAll: %v", err)
	}
	if total != 0 || len(rows) != 0 {
		t.Fatalf("rows=%d total=%d, want an empty page", len(rows), total)
	}
}

func TestExperimentSamplesAndFeatures(t *testing.T) {
	f := newFixture(t)
	ingestRawMatrix(t, f, "E1")
	ctx := context.Background()

	samples, total, err := f.experiments.Samples(ctx, "E1", expression.Pagination{Page: 1, PageSize: 100})
	if err != nil {
		t.Fatalf("Samples: %v", err)
	}
	if total != 2 || samples[0] != "S1" {
		t.Fatalf("samples = %v (total %d)", samples, total)
	}

	features, total, err := f.experiments.Features(ctx, "E1", expression.Pagination{Page: 1, PageSize: 100})
	if err != nil {
		t.Fatalf("Features: %v", err)
	}
	if total != 2 || features[1] != "G2" {
		t.Fatalf("features = %v (total %d)", features, total)
	}

	if _, _, err := f.experiments.Samples(ctx, "empty", expression.Pagination{}); !apierr.Is(err, apierr.CodeNotFound) {
		t.Fatalf("err = %v, want not_found for an experiment with no rows", err)
	}
}
