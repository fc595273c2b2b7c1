package adapters

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"yieldcurve_backend/internal/feature/yieldcurve/domain"
	"yieldcurve_backend/internal/feature/yieldcurve/domain/entity"
)

// seedLiveBond は maturity に償還する FXD 銘柄を登録し、その ID を返します。
func seedLiveBond(t *testing.T, db *gorm.DB, issueNo string, maturity time.Time) uint {
	t.Helper()
	b := entity.Bond{
		ISIN:         "KE" + issueNo[len(issueNo)-4:] + "000000",
		IssueNo:      issueNo,
		IssueDate:    day(2020, 1, 6),
		MaturityDate: maturity,
		Category:     entity.CategoryFXD,
	}
	require.NoError(t, NewBondRepository(db).Create(context.Background(), &b))
	return b.ID
}

// seedTwoBonds は ID 1, 2 の未償還銘柄を登録します。
func seedTwoBonds(t *testing.T, db *gorm.DB) {
	t.Helper()
	require.Equal(t, uint(1), seedLiveBond(t, db, "FXD1/2020/0001", day(2030, 2, 18)))
	require.Equal(t, uint(2), seedLiveBond(t, db, "FXD1/2020/0002", day(2032, 5, 10)))
}

func TestImpliedYieldPostgres_InsertBatchAndRead(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := setupTestDB(t)
	seedTwoBonds(t, db)
	repo := NewImpliedYieldRepository(db)

	d1 := day(2025, 1, 14)
	d2 := day(2025, 1, 15)
	require.NoError(t, repo.InsertBatch(ctx, d1, []entity.ImpliedYield{{BondID: 1, Yield: 13.0}, {BondID: 2, Yield: 14.0}}))
	require.NoError(t, repo.InsertBatch(ctx, d2, []entity.ImpliedYield{{BondID: 1, Yield: 13.1}}))

	got, err := repo.Get(ctx, 1, d2)
	require.NoError(t, err)
	assert.Equal(t, 13.1, got.Yield)
	assert.Equal(t, d2, got.YieldDate)

	_, err = repo.Get(ctx, 2, d2)
	assert.ErrorIs(t, err, domain.ErrImpliedYieldNotFound)

	prev, err := repo.LatestBefore(ctx, 1, day(2025, 1, 16))
	require.NoError(t, err)
	assert.Equal(t, 13.1, prev.Yield)

	prev, err = repo.LatestBefore(ctx, 2, day(2025, 1, 16))
	require.NoError(t, err)
	assert.Equal(t, 14.0, prev.Yield)
	assert.Equal(t, d1, prev.YieldDate)

	_, err = repo.LatestBefore(ctx, 1, d1)
	assert.ErrorIs(t, err, domain.ErrImpliedYieldNotFound)

	exists, err := repo.ExistsAnyForDate(ctx, d2)
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = repo.ExistsAnyForDate(ctx, day(2025, 1, 16))
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestImpliedYieldPostgres_InsertBatch_GlobalLock(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	date := day(2025, 1, 16)

	tests := []struct {
		name         string
		setupFunc    func(t *testing.T, repo *impliedYieldPostgres)
		rows         []entity.ImpliedYield
		expectedErr  error
		validateFunc func(t *testing.T, db *impliedYieldPostgres)
	}{
		{
			name: "failure: second confirmation with different bonds",
			setupFunc: func(t *testing.T, repo *impliedYieldPostgres) {
				require.NoError(t, repo.InsertBatch(ctx, date, []entity.ImpliedYield{{BondID: 1, Yield: 13.2}}))
			},
			rows:        []entity.ImpliedYield{{BondID: 2, Yield: 14.1}},
			expectedErr: domain.ErrAlreadyConfirmedForDate,
			validateFunc: func(t *testing.T, repo *impliedYieldPostgres) {
				_, err := repo.Get(ctx, 2, date)
				assert.ErrorIs(t, err, domain.ErrImpliedYieldNotFound)
			},
		},
		{
			name: "failure: lock row without yields still blocks",
			setupFunc: func(t *testing.T, repo *impliedYieldPostgres) {
				require.NoError(t, repo.db.Create(&ImpliedYieldConfirmationModel{YieldDate: date, ConfirmedAt: date}).Error)
			},
			rows:        []entity.ImpliedYield{{BondID: 1, Yield: 13.2}},
			expectedErr: domain.ErrAlreadyConfirmedForDate,
		},
		{
			name:        "failure: duplicate bond rolls back the whole batch",
			setupFunc:   func(t *testing.T, repo *impliedYieldPostgres) {},
			rows:        []entity.ImpliedYield{{BondID: 1, Yield: 13.2}, {BondID: 1, Yield: 13.3}},
			expectedErr: domain.ErrAlreadyConfirmedForDate,
			validateFunc: func(t *testing.T, repo *impliedYieldPostgres) {
				exists, err := repo.ExistsAnyForDate(ctx, date)
				require.NoError(t, err)
				assert.False(t, exists, "lock row must be rolled back with the rows")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			db := setupTestDB(t)
			seedTwoBonds(t, db)
			repo := NewImpliedYieldRepository(db)
			tt.setupFunc(t, repo)

			err := repo.InsertBatch(ctx, date, tt.rows)
			assert.ErrorIs(t, err, tt.expectedErr)
			if tt.validateFunc != nil {
				tt.validateFunc(t, repo)
			}
		})
	}
}

// TestImpliedYieldPostgres_InsertBatch_UnknownBond は未登録・償還済み銘柄を含む確定が日付をロックしないことを検証します。
func TestImpliedYieldPostgres_InsertBatch_UnknownBond(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	date := day(2025, 1, 16)

	tests := []struct {
		name        string
		rows        func(live, matured, dueToday uint) []entity.ImpliedYield
		expectedErr error
	}{
		{
			name: "failure: unregistered bond id",
			rows: func(live, matured, dueToday uint) []entity.ImpliedYield {
				return []entity.ImpliedYield{{BondID: 999999, Yield: 13.2}}
			},
			expectedErr: domain.ErrUnknownBond,
		},
		{
			name: "failure: bond matured before the date",
			rows: func(live, matured, dueToday uint) []entity.ImpliedYield {
				return []entity.ImpliedYield{{BondID: matured, Yield: 13.2}}
			},
			expectedErr: domain.ErrUnknownBond,
		},
		{
			name: "failure: one unknown bond rolls back the live ones",
			rows: func(live, matured, dueToday uint) []entity.ImpliedYield {
				return []entity.ImpliedYield{{BondID: live, Yield: 13.2}, {BondID: 999999, Yield: 14.0}}
			},
			expectedErr: domain.ErrUnknownBond,
		},
		{
			name: "success: bond maturing on the date is still accepted",
			rows: func(live, matured, dueToday uint) []entity.ImpliedYield {
				return []entity.ImpliedYield{{BondID: live, Yield: 13.2}, {BondID: dueToday, Yield: 11.9}}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			db := setupTestDB(t)
			live := seedLiveBond(t, db, "FXD1/2020/0010", day(2030, 2, 18))
			matured := seedLiveBond(t, db, "FXD1/2015/0011", day(2025, 1, 15))
			dueToday := seedLiveBond(t, db, "FXD1/2019/0012", date)
			repo := NewImpliedYieldRepository(db)

			err := repo.InsertBatch(ctx, date, tt.rows(live, matured, dueToday))
			if tt.expectedErr == nil {
				require.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.expectedErr)

			exists, err := repo.ExistsAnyForDate(ctx, date)
			require.NoError(t, err)
			assert.False(t, exists, "rejected batch must not lock the date")

			// 正しい銘柄での確定はそのまま通る
			require.NoError(t, repo.InsertBatch(ctx, date, []entity.ImpliedYield{{BondID: live, Yield: 13.2}}))
			got, err := repo.Get(ctx, live, date)
			require.NoError(t, err)
			assert.Equal(t, 13.2, got.Yield)
		})
	}
}
