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

type quotationPostgres struct {
	db *gorm.DB
}

var _ usecase.QuotationRepository = (*quotationPostgres)(nil)

// NewQuotationRepository は気配リポジトリを生成します。
func NewQuotationRepository(db *gorm.DB) *quotationPostgres {
	return &quotationPostgres{db: db}
}

type QuotationModel struct {
	ID            uint      `gorm:"primaryKey"`
	BondID        uint      `gorm:"not null;index:idx_quotation_bond_date,priority:1"`
	QuoteDate     time.Time `gorm:"not null;index:idx_quotation_bond_date,priority:2"`
	InstitutionID uint      `gorm:"not null;index"`
	BuyingYield   float64   `gorm:"not null"`
	SellingYield  float64   `gorm:"not null"`
	BuyVolume     int64     `gorm:"not null;default:0"`
	SellVolume    int64     `gorm:"not null;default:0"`
	CreatedAt     time.Time `gorm:"not null"`
}

func (QuotationModel) TableName() string {
	return "quotations"
}

func toQuotationModel(e entity.Quotation) QuotationModel {
	return QuotationModel{
		ID:            e.ID,
		BondID:        e.BondID,
		QuoteDate:     e.QuoteDate(),
		InstitutionID: e.InstitutionID,
		BuyingYield:   e.BuyingYield,
		SellingYield:  e.SellingYield,
		BuyVolume:     e.BuyVolume,
		SellVolume:    e.SellVolume,
		CreatedAt:     e.CreatedAt.UTC(),
	}
}

func (m QuotationModel) ToEntity() entity.Quotation {
	return entity.Quotation{
		ID:            m.ID,
		BondID:        m.BondID,
		InstitutionID: m.InstitutionID,
		BuyingYield:   m.BuyingYield,
		SellingYield:  m.SellingYield,
		BuyVolume:     m.BuyVolume,
		SellVolume:    m.SellVolume,
		CreatedAt:     m.CreatedAt.UTC(),
	}
}

// ListForDate は銘柄の当日の気配を登録順で返します。
func (r *quotationPostgres) ListForDate(ctx context.Context, bondID uint, date time.Time) ([]entity.Quotation, error) {
	var rows []QuotationModel
	err := r.db.WithContext(ctx).
		Where("bond_id = ? AND quote_date = ?", bondID, entity.DateOf(date)).
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]entity.Quotation, 0, len(rows))
	for _, m := range rows {
		out = append(out, m.ToEntity())
	}
	return out, nil
}

// Create は気配を登録し、採番された ID を q に設定します。
func (r *quotationPostgres) Create(ctx context.Context, q *entity.Quotation) error {
	m := toQuotationModel(*q)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return err
	}
	q.ID = m.ID
	return nil
}

// FindByID はIDをキーに気配を検索します。
// 該当がなければ domain.ErrQuotationNotFound を返します。
func (r *quotationPostgres) FindByID(ctx context.Context, id uint) (*entity.Quotation, error) {
	var m QuotationModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrQuotationNotFound
		}
		return nil, err
	}
	e := m.ToEntity()
	return &e, nil
}

// Update は利回りと数量のみを更新します。登録日時は変えません。
func (r *quotationPostgres) Update(ctx context.Context, q *entity.Quotation) error {
	res := r.db.WithContext(ctx).Model(&QuotationModel{}).
		Where("id = ?", q.ID).
		Updates(map[string]any{
			"buying_yield":  q.BuyingYield,
			"selling_yield": q.SellingYield,
			"buy_volume":    q.BuyVolume,
			"sell_volume":   q.SellVolume,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrQuotationNotFound
	}
	return nil
}
