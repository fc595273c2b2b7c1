package adapters

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yieldcurve_backend/internal/feature/yieldcurve/domain"
	"yieldcurve_backend/internal/feature/yieldcurve/domain/entity"
)

func sampleCurve(date int, yield float64) *entity.Curve {
	return &entity.Curve{
		Date: day(2025, 1, date),
		Kind: entity.CurveOfficial,
		Points: []entity.CurvePoint{
			{Tenure: 1, Yield: 12.1, Label: entity.LabelOneYearTBill, IssueDate: day(2025, 1, 13), MaturityDate: day(2026, 1, 12)},
			{Tenure: 2, Yield: yield, Label: "FXD1/2020/05", BondID: 1, IssueDate: day(2020, 5, 4), MaturityDate: day(2027, 1, 14)},
			{Tenure: 3, Yield: yield + 0.3, Label: entity.LabelInterpolated, Interpolated: true},
		},
	}
}

func TestCurvePostgres_SaveAndLatestBefore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := NewCurveRepository(setupTestDB(t))

	require.NoError(t, repo.Save(ctx, sampleCurve(14, 13.4)))
	require.NoError(t, repo.Save(ctx, sampleCurve(15, 13.5)))

	got, err := repo.LatestBefore(ctx, entity.CurveOfficial, day(2025, 1, 16))
	require.NoError(t, err)
	assert.Equal(t, day(2025, 1, 15), got.Date)
	assert.Equal(t, sampleCurve(15, 13.5).Points, got.Points)

	got, err = repo.LatestBefore(ctx, entity.CurveOfficial, day(2025, 1, 15))
	require.NoError(t, err)
	assert.Equal(t, day(2025, 1, 14), got.Date)

	_, err = repo.LatestBefore(ctx, entity.CurveOfficial, day(2025, 1, 14))
	assert.ErrorIs(t, err, domain.ErrCurveNotFound)

	_, err = repo.LatestBefore(ctx, entity.CurveQuoted, day(2025, 1, 16))
	assert.ErrorIs(t, err, domain.ErrCurveNotFound)
}

func TestCurvePostgres_SaveReplaces(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := NewCurveRepository(setupTestDB(t))

	require.NoError(t, repo.Save(ctx, sampleCurve(15, 13.5)))
	replacement := sampleCurve(15, 13.6)
	replacement.Points = replacement.Points[:2]
	require.NoError(t, repo.Save(ctx, replacement))

	got, err := repo.LatestBefore(ctx, entity.CurveOfficial, day(2025, 1, 16))
	require.NoError(t, err)
	require.Len(t, got.Points, 2)
	assert.Equal(t, 13.6, got.Points[1].Yield)
}
