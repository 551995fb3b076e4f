package expression_test

import (
	"context"
	"testing"

	"github.com/yungbote/transcriptomics-backend/internal/data/repos/expression"
	"github.com/yungbote/transcriptomics-backend/internal/data/repos/testutil"
	"github.com/yungbote/transcriptomics-backend/internal/domain"
	"github.com/yungbote/transcriptomics-backend/internal/platform/apierr"
)

func TestExperimentCreateAndGet(t *testing.T) {
	db := testutil.DB(t)
	repo := expression.NewExperimentRepo(db, testutil.Logger(t))
	ctx := context.Background()

	exp := &domain.ExperimentResult{
		ExperimentResultID: "E1",
		AssemblyID:         testutil.PtrString("GCF_000001405.40"),
		AssemblyName:       testutil.PtrString("GRCh38.p14"),
	}
	if err := repo.Create(ctx, nil, exp); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := repo.GetByID(ctx, nil, "E1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got == nil || got.ExperimentResultID != "E1" {
		t.Fatalf("got = %+v", got)
	}
	if got.AssemblyName == nil || *got.AssemblyName != "GRCh38.p14" {
		t.Fatalf("assembly name = %v", got.AssemblyName)
	}
}

func TestExperimentGetMissingReturnsNil(t *testing.T) {
	db := testutil.DB(t)
	repo := expression.NewExperimentRepo(db, testutil.Logger(t))

	got, err := repo.GetByID(context.Background(), nil, "nope")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got != nil {
		t.Fatalf("got = %+v, want nil for a missing id", got)
	}
}

func TestExperimentDuplicateCreateConflicts(t *testing.T) {
	db := testutil.DB(t)
	repo := expression.NewExperimentRepo(db, testutil.Logger(t))
	ctx := context.Background()

	first := &domain.ExperimentResult{
		ExperimentResultID: "E1",
		AssemblyName:       testutil.PtrString("GRCh38"),
	}
	if err := repo.Create(ctx, nil, first); err != nil {
		t.Fatalf("Create: %v", err)
	}

	err := repo.Create(ctx, nil, &domain.ExperimentResult{ExperimentResultID: "E1"})
	if !apierr.Is(err, apierr.CodeConflict) {
		t.Fatalf("err = %v, want conflict", err)
	}

	// The original row is untouched by the failed create.
	got, err := repo.GetByID(ctx, nil, "E1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.AssemblyName == nil || *got.AssemblyName != "GRCh38" {
		t.Fatalf("assembly name = %v, want the original value", got.AssemblyName)
	}
}

func TestExperimentUpdateAssembly(t *testing.T) {
	db := testutil.DB(t)
	repo := expression.NewExperimentRepo(db, testutil.Logger(t))
	ctx := context.Background()

	exp := &domain.ExperimentResult{
		ExperimentResultID: "E1",
		AssemblyID:         testutil.PtrString("old-id"),
		AssemblyName:       testutil.PtrString("old-name"),
	}
	if err := repo.Create(ctx, nil, exp); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := repo.UpdateAssembly(ctx, nil, "E1", nil, testutil.PtrString("new-name")); err != nil {
		t.Fatalf("UpdateAssembly: %v", err)
	}
	got, err := repo.GetByID(ctx, nil, "E1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.AssemblyName == nil || *got.AssemblyName != "new-name" {
		t.Fatalf("assembly name = %v", got.AssemblyName)
	}
	if got.AssemblyID == nil || *got.AssemblyID != "old-id" {
		t.Fatalf("assembly id = %v, a nil update must not clear it", got.AssemblyID)
	}

	if err := repo.UpdateAssembly(ctx, nil, "missing", testutil.PtrString("x"), nil); !apierr.Is(err, apierr.CodeNotFound) {
		t.Fatalf("err = %v, want not_found", err)
	}
}

func TestExperimentDeleteCascadesExpressions(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	experiments := expression.NewExperimentRepo(db, log)
	expressions := expression.NewGeneExpressionRepo(db, log)
	ctx := context.Background()

	if err := experiments.Create(ctx, nil, &domain.ExperimentResult{ExperimentResultID: "E1"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	rows := []*domain.GeneExpression{
		{GeneCode: "G1", SampleID: "S1", ExperimentResultID: "E1", RawCount: testutil.PtrInt64(10)},
		{GeneCode: "G2", SampleID: "S1", ExperimentResultID: "E1", RawCount: testutil.PtrInt64(5)},
	}
	if _, err := expressions.Upsert(ctx, nil, rows); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	if err := experiments.Delete(ctx, nil, "E1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	_, total, err := expressions.Query(ctx, nil, expression.QueryFilter{Experiments: []string{"E1"}})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if total != 0 {
		t.Fatalf("total = %d, want expression rows gone with the experiment", total)
	}

	if err := experiments.Delete(ctx, nil, "E1"); !apierr.Is(err, apierr.CodeNotFound) {
		t.Fatalf("err = %v, want not_found on second delete", err)
	}
}
