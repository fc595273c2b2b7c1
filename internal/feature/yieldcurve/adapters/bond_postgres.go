package adapters

import (
	"context"
	"time"

	"gorm.io/gorm"

	"yieldcurve_backend/internal/feature/yieldcurve/domain"
	"yieldcurve_backend/internal/feature/yieldcurve/domain/entity"
	"yieldcurve_backend/internal/feature/yieldcurve/usecase"
)

type bondPostgres struct {
	db *gorm.DB
}

var _ usecase.BondRepository = (*bondPostgres)(nil)

// NewBondRepository は銘柄リポジトリを生成します（DI用のコンストラクタ）。
func NewBondRepository(db *gorm.DB) *bondPostgres {
	return &bondPostgres{db: db}
}

type BondModel struct {
	ID               uint      `gorm:"primaryKey"`
	ISIN             string    `gorm:"size:12;not null;uniqueIndex"`
	IssueNo          string    `gorm:"size:32;not null;uniqueIndex"`
	IssueDate        time.Time `gorm:"not null"`
	MaturityDate     time.Time `gorm:"not null;index"`
	OutstandingValue float64   `gorm:"not null;default:0"`
	CouponType       string    `gorm:"size:16"`
	CouponRate       float64   `gorm:"not null;default:0"`
	Category         string    `gorm:"size:8;not null;index"`
	IsBenchmark      bool      `gorm:"not null;default:false"`
}

func (BondModel) TableName() string {
	return "bonds"
}

func toBondModel(e entity.Bond) BondModel {
	return BondModel{
		ID:               e.ID,
		ISIN:             e.ISIN,
		IssueNo:          e.IssueNo,
		IssueDate:        entity.DateOf(e.IssueDate),
		MaturityDate:     entity.DateOf(e.MaturityDate),
		OutstandingValue: e.OutstandingValue,
		CouponType:       e.CouponType,
		CouponRate:       e.CouponRate,
		Category:         string(e.Category),
		IsBenchmark:      e.IsBenchmark,
	}
}

func (m BondModel) ToEntity() entity.Bond {
	return entity.Bond{
		ID:               m.ID,
		ISIN:             m.ISIN,
		IssueNo:          m.IssueNo,
		IssueDate:        m.IssueDate.UTC(),
		MaturityDate:     m.MaturityDate.UTC(),
		OutstandingValue: m.OutstandingValue,
		CouponType:       m.CouponType,
		CouponRate:       m.CouponRate,
		Category:         entity.BondCategory(m.Category),
		IsBenchmark:      m.IsBenchmark,
	}
}

// Create は銘柄を登録します。ISIN・発行番号の重複は domain.ErrDuplicateBond です。
func (r *bondPostgres) Create(ctx context.Context, b *entity.Bond) error {
	m := toBondModel(*b)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		if isDuplicateKey(err) {
			return domain.ErrDuplicateBond
		}
		return err
	}
	b.ID = m.ID
	return nil
}

// ListNonMatured は date 以降に償還する銘柄を償還日・ID順で返します。
func (r *bondPostgres) ListNonMatured(ctx context.Context, date time.Time, category entity.BondCategory) ([]entity.Bond, error) {
	var rows []BondModel
	q := r.db.WithContext(ctx).
		Where("maturity_date >= ?", entity.DateOf(date)).
		Order("maturity_date ASC, id ASC")
	if category != "" {
		q = q.Where("category = ?", string(category))
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]entity.Bond, 0, len(rows))
	for _, m := range rows {
		out = append(out, m.ToEntity())
	}
	return out, nil
}
