package adapters

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"yieldcurve_backend/internal/feature/yieldcurve/domain"
	"yieldcurve_backend/internal/feature/yieldcurve/domain/entity"
	"yieldcurve_backend/internal/feature/yieldcurve/usecase"
)

// insertBatchSize は一括 INSERT 1回あたりの行数です。
const insertBatchSize = 500

type impliedYieldPostgres struct {
	db *gorm.DB
}

var _ usecase.ImpliedYieldRepository = (*impliedYieldPostgres)(nil)

// NewImpliedYieldRepository は implied yield リポジトリを生成します。
func NewImpliedYieldRepository(db *gorm.DB) *impliedYieldPostgres {
	return &impliedYieldPostgres{db: db}
}

type ImpliedYieldModel struct {
	ID        uint      `gorm:"primaryKey"`
	BondID    uint      `gorm:"not null;uniqueIndex:idx_implied_yield_bond_date,priority:1"`
	YieldDate time.Time `gorm:"not null;uniqueIndex:idx_implied_yield_bond_date,priority:2;index"`
	Yield     float64   `gorm:"not null"`
	CreatedAt time.Time
}

func (ImpliedYieldModel) TableName() string {
	return "implied_yields"
}

// ImpliedYieldConfirmationModel は日付単位の確定ロックです。
// 主キーが日付なので、同時に走った2つ目の確定は一意制約で失敗します。
type ImpliedYieldConfirmationModel struct {
	YieldDate   time.Time `gorm:"primaryKey"`
	Bonds       int       `gorm:"not null"`
	ConfirmedAt time.Time `gorm:"not null"`
}

func (ImpliedYieldConfirmationModel) TableName() string {
	return "implied_yield_confirmations"
}

func (m ImpliedYieldModel) ToEntity() entity.ImpliedYield {
	return entity.ImpliedYield{
		ID:        m.ID,
		BondID:    m.BondID,
		YieldDate: m.YieldDate.UTC(),
		Yield:     m.Yield,
	}
}

func (r *impliedYieldPostgres) Get(ctx context.Context, bondID uint, date time.Time) (*entity.ImpliedYield, error) {
	var m ImpliedYieldModel
	err := r.db.WithContext(ctx).
		Where("bond_id = ? AND yield_date = ?", bondID, entity.DateOf(date)).
		First(&m).Error
	return toImpliedYield(m, err)
}

func (r *impliedYieldPostgres) LatestBefore(ctx context.Context, bondID uint, date time.Time) (*entity.ImpliedYield, error) {
	var m ImpliedYieldModel
	err := r.db.WithContext(ctx).
		Where("bond_id = ? AND yield_date < ?", bondID, entity.DateOf(date)).
		Order("yield_date DESC").
		First(&m).Error
	return toImpliedYield(m, err)
}

func (r *impliedYieldPostgres) ExistsAnyForDate(ctx context.Context, date time.Time) (bool, error) {
	return existsAnyForDate(r.db.WithContext(ctx), entity.DateOf(date))
}

// InsertBatch は確定ロックと全行を1トランザクションで保存します。
// 既に確定済み、または同時に確定された場合は domain.ErrAlreadyConfirmedForDate です。
// 未登録・償還済みの銘柄が1件でもあれば domain.ErrUnknownBond でロックを取らずに戻します。
func (r *impliedYieldPostgres) InsertBatch(ctx context.Context, date time.Time, rows []entity.ImpliedYield) error {
	date = entity.DateOf(date)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		exists, err := existsAnyForDate(tx, date)
		if err != nil {
			return err
		}
		if exists {
			return domain.ErrAlreadyConfirmedForDate
		}

		if err := checkLiveBonds(tx, date, rows); err != nil {
			return err
		}

		lock := ImpliedYieldConfirmationModel{YieldDate: date, Bonds: len(rows), ConfirmedAt: time.Now().UTC()}
		if err := tx.Create(&lock).Error; err != nil {
			if isDuplicateKey(err) {
				return domain.ErrAlreadyConfirmedForDate
			}
			return err
		}

		if len(rows) == 0 {
			return nil
		}
		ms := make([]ImpliedYieldModel, 0, len(rows))
		for _, e := range rows {
			ms = append(ms, ImpliedYieldModel{BondID: e.BondID, YieldDate: date, Yield: e.Yield})
		}
		if err := tx.CreateInBatches(&ms, insertBatchSize).Error; err != nil {
			if isDuplicateKey(err) {
				return domain.ErrAlreadyConfirmedForDate
			}
			return err
		}
		return nil
	})
}

// checkLiveBonds は rows の銘柄がすべて登録済みで date 時点で未償還かを確認します。
func checkLiveBonds(db *gorm.DB, date time.Time, rows []entity.ImpliedYield) error {
	if len(rows) == 0 {
		return nil
	}
	ids := make([]uint, 0, len(rows))
	seen := make(map[uint]struct{}, len(rows))
	for _, e := range rows {
		if _, ok := seen[e.BondID]; ok {
			continue
		}
		seen[e.BondID] = struct{}{}
		ids = append(ids, e.BondID)
	}

	var live []uint
	if err := db.Model(&BondModel{}).
		Where("id IN ? AND maturity_date >= ?", ids, date).
		Pluck("id", &live).Error; err != nil {
		return err
	}
	if len(live) == len(ids) {
		return nil
	}
	for _, id := range live {
		delete(seen, id)
	}
	missing := make([]uint, 0, len(seen))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			missing = append(missing, id)
		}
	}
	return fmt.Errorf("%w: bond ids %v", domain.ErrUnknownBond, missing)
}

func existsAnyForDate(db *gorm.DB, date time.Time) (bool, error) {
	var count int64
	if err := db.Model(&ImpliedYieldModel{}).Where("yield_date = ?", date).Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return true, nil
	}
	if err := db.Model(&ImpliedYieldConfirmationModel{}).Where("yield_date = ?", date).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func toImpliedYield(m ImpliedYieldModel, err error) (*entity.ImpliedYield, error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrImpliedYieldNotFound
	}
	if err != nil {
		return nil, err
	}
	e := m.ToEntity()
	return &e, nil
}
