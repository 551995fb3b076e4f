package ingestion

import (
	"github.com/yungbote/transcriptomics-backend/internal/domain"
)

// MatrixToExpressions flattens a parsed count matrix into one record per
// (gene, sample) cell. Only the column for countType is populated; matrices
// of pre-normalized values are ingested by naming their count type.
func MatrixToExpressions(mt *MatrixTable, experimentID string, countType domain.CountType) []*domain.GeneExpression {
	out := make([]*domain.GeneExpression, 0, len(mt.Genes)*len(mt.Samples))
	for i, gene := range mt.Genes {
		for j, sample := range mt.Samples {
			expr := &domain.GeneExpression{
				GeneCode:           gene,
				SampleID:           sample,
				ExperimentResultID: experimentID,
			}
			expr.SetCount(countType, float64(mt.Counts[i][j]))
			out = append(out, expr)
		}
	}
	return out
}

// SampleToExpressions projects a parsed single-sample table into one record
// per feature row. Every count type parsed from the file is populated;
// unmapped types stay null so a later merge cannot clobber them.
func SampleToExpressions(st *SampleTable, experimentID, sampleID string) []*domain.GeneExpression {
	out := make([]*domain.GeneExpression, 0, len(st.Features))
	for i, feature := range st.Features {
		expr := &domain.GeneExpression{
			GeneCode:           feature,
			SampleID:           sampleID,
			ExperimentResultID: experimentID,
		}
		for t, values := range st.Values {
			expr.SetCount(t, values[i])
		}
		out = append(out, expr)
	}
	return out
}
