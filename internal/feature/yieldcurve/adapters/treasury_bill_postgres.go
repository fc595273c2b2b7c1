package adapters

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"yieldcurve_backend/internal/feature/yieldcurve/domain"
	"yieldcurve_backend/internal/feature/yieldcurve/domain/entity"
	"yieldcurve_backend/internal/feature/yieldcurve/usecase"
)

type treasuryBillPostgres struct {
	db *gorm.DB
}

var _ usecase.TreasuryBillRepository = (*treasuryBillPostgres)(nil)

func NewTreasuryBillRepository(db *gorm.DB) *treasuryBillPostgres {
	return &treasuryBillPostgres{db: db}
}

type TreasuryBillModel struct {
	ID           uint      `gorm:"primaryKey"`
	IssueDate    time.Time `gorm:"not null;uniqueIndex:idx_tbill_issue_tenor,priority:1"`
	TenorDays    int       `gorm:"not null;uniqueIndex:idx_tbill_issue_tenor,priority:2"`
	MaturityDate time.Time `gorm:"not null"`
	Yield        float64   `gorm:"not null"`
}

func (TreasuryBillModel) TableName() string {
	return "treasury_bills"
}

func (m TreasuryBillModel) ToEntity() entity.TreasuryBill {
	return entity.TreasuryBill{
		ID:           m.ID,
		IssueDate:    m.IssueDate.UTC(),
		MaturityDate: m.MaturityDate.UTC(),
		TenorDays:    m.TenorDays,
		Yield:        m.Yield,
	}
}

// GetForCycle は [start, end] に発行された期間 tenorDays 以上の T-bill のうち最新のものを返します。
func (r *treasuryBillPostgres) GetForCycle(ctx context.Context, tenorDays int, start, end time.Time) (*entity.TreasuryBill, error) {
	var m TreasuryBillModel
	err := r.db.WithContext(ctx).
		Where("tenor_days >= ? AND issue_date >= ? AND issue_date <= ?", tenorDays, entity.DateOf(start), entity.DateOf(end)).
		Order("issue_date DESC, id DESC").
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrTreasuryBillNotFound
	}
	if err != nil {
		return nil, err
	}
	e := m.ToEntity()
	return &e, nil
}

// Create は T-bill を登録します。発行日・期間の重複は domain.ErrDuplicateTreasuryBill です。
func (r *treasuryBillPostgres) Create(ctx context.Context, bill *entity.TreasuryBill) error {
	m := TreasuryBillModel{
		IssueDate:    entity.DateOf(bill.IssueDate),
		TenorDays:    bill.TenorDays,
		MaturityDate: entity.DateOf(bill.MaturityDate),
		Yield:        bill.Yield,
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		if isDuplicateKey(err) {
			return domain.ErrDuplicateTreasuryBill
		}
		return err
	}
	bill.ID = m.ID
	return nil
}
