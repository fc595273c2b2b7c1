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

type curvePostgres struct {
	db *gorm.DB
}

var _ usecase.CurveRepository = (*curvePostgres)(nil)

// NewCurveRepository は公表済みカーブのリポジトリを生成します。
func NewCurveRepository(db *gorm.DB) *curvePostgres {
	return &curvePostgres{db: db}
}

type CurvePointModel struct {
	ID           uint      `gorm:"primaryKey"`
	CurveDate    time.Time `gorm:"not null;uniqueIndex:idx_curve_point,priority:1"`
	Kind         string    `gorm:"size:16;not null;uniqueIndex:idx_curve_point,priority:2"`
	Seq          int       `gorm:"not null;uniqueIndex:idx_curve_point,priority:3"`
	Tenure       float64   `gorm:"not null"`
	Yield        float64   `gorm:"not null"`
	Label        string    `gorm:"size:64;not null"`
	BondID       *uint
	IssueDate    *time.Time
	MaturityDate *time.Time
	Interpolated bool `gorm:"not null;default:false"`
}

func (CurvePointModel) TableName() string {
	return "curve_points"
}

func toCurvePointModel(c *entity.Curve, seq int, p entity.CurvePoint) CurvePointModel {
	m := CurvePointModel{
		CurveDate:    entity.DateOf(c.Date),
		Kind:         string(c.Kind),
		Seq:          seq,
		Tenure:       p.Tenure,
		Yield:        p.Yield,
		Label:        p.Label,
		Interpolated: p.Interpolated,
	}
	if p.BondID != 0 {
		id := p.BondID
		m.BondID = &id
	}
	if !p.IssueDate.IsZero() {
		d := entity.DateOf(p.IssueDate)
		m.IssueDate = &d
	}
	if !p.MaturityDate.IsZero() {
		d := entity.DateOf(p.MaturityDate)
		m.MaturityDate = &d
	}
	return m
}

func (m CurvePointModel) ToEntity() entity.CurvePoint {
	p := entity.CurvePoint{
		Tenure:       m.Tenure,
		Yield:        m.Yield,
		Label:        m.Label,
		Interpolated: m.Interpolated,
	}
	if m.BondID != nil {
		p.BondID = *m.BondID
	}
	if m.IssueDate != nil {
		p.IssueDate = m.IssueDate.UTC()
	}
	if m.MaturityDate != nil {
		p.MaturityDate = m.MaturityDate.UTC()
	}
	return p
}

// Save は同じ日付・種別のカーブを削除してから保存し直します。
func (r *curvePostgres) Save(ctx context.Context, curve *entity.Curve) error {
	date := entity.DateOf(curve.Date)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("curve_date = ? AND kind = ?", date, string(curve.Kind)).
			Delete(&CurvePointModel{}).Error; err != nil {
			return err
		}
		if len(curve.Points) == 0 {
			return nil
		}
		ms := make([]CurvePointModel, 0, len(curve.Points))
		for i, p := range curve.Points {
			ms = append(ms, toCurvePointModel(curve, i, p))
		}
		return tx.Create(&ms).Error
	})
}

// LatestBefore は date より前で最新の、指定種別のカーブを返します。
func (r *curvePostgres) LatestBefore(ctx context.Context, kind entity.CurveKind, date time.Time) (*entity.Curve, error) {
	db := r.db.WithContext(ctx)

	var head CurvePointModel
	err := db.Where("kind = ? AND curve_date < ?", string(kind), entity.DateOf(date)).
		Order("curve_date DESC").
		First(&head).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrCurveNotFound
	}
	if err != nil {
		return nil, err
	}

	var rows []CurvePointModel
	if err := db.Where("kind = ? AND curve_date = ?", string(kind), head.CurveDate).
		Order("seq ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	curve := &entity.Curve{Date: head.CurveDate.UTC(), Kind: kind, Points: make([]entity.CurvePoint, 0, len(rows))}
	for _, m := range rows {
		curve.Points = append(curve.Points, m.ToEntity())
	}
	return curve, nil
}
