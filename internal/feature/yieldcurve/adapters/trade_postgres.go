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

type tradePostgres struct {
	db *gorm.DB
}

var _ usecase.TradeRepository = (*tradePostgres)(nil)

// NewTradeRepository は約定バッチのリポジトリを生成します。
func NewTradeRepository(db *gorm.DB) *tradePostgres {
	return &tradePostgres{db: db}
}

type TradeBatchModel struct {
	ID          uint      `gorm:"primaryKey"`
	TradeDate   time.Time `gorm:"not null;index"`
	Status      string    `gorm:"size:16;not null"`
	CreatedAt   time.Time `gorm:"not null"`
	ConfirmedAt *time.Time
	Lines       []TradeLineModel `gorm:"foreignKey:BatchID"`
}

func (TradeBatchModel) TableName() string {
	return "trade_batches"
}

type TradeLineModel struct {
	ID              uint      `gorm:"primaryKey"`
	BatchID         uint      `gorm:"not null;index"`
	BondID          uint      `gorm:"not null;index:idx_trade_line_bond_date,priority:1"`
	TradeDate       time.Time `gorm:"not null;index:idx_trade_line_bond_date,priority:2"`
	Side            string    `gorm:"size:4;not null"`
	ExecutedSize    int64     `gorm:"not null"`
	Yield           float64   `gorm:"not null"`
	TransactionTime time.Time
	Confirmed       bool `gorm:"not null;default:false"`
}

func (TradeLineModel) TableName() string {
	return "trade_lines"
}

// TradeBatchConfirmationModel は約定日ごとの確定ロックです。
// 主キーが約定日なので、同じ日の2つ目の確定は一意制約で失敗します。
type TradeBatchConfirmationModel struct {
	TradeDate   time.Time `gorm:"primaryKey"`
	BatchID     uint      `gorm:"not null"`
	ConfirmedAt time.Time `gorm:"not null"`
}

func (TradeBatchConfirmationModel) TableName() string {
	return "trade_batch_confirmations"
}

func (m TradeLineModel) ToEntity() entity.TradeLine {
	return entity.TradeLine{
		ID:              m.ID,
		BatchID:         m.BatchID,
		BondID:          m.BondID,
		Side:            entity.TradeSide(m.Side),
		ExecutedSize:    m.ExecutedSize,
		Yield:           m.Yield,
		TransactionTime: m.TransactionTime.UTC(),
		TradeDate:       m.TradeDate.UTC(),
	}
}

func (m TradeBatchModel) ToEntity() entity.TradeBatch {
	lines := make([]entity.TradeLine, 0, len(m.Lines))
	for _, l := range m.Lines {
		lines = append(lines, l.ToEntity())
	}
	var confirmedAt *time.Time
	if m.ConfirmedAt != nil {
		t := m.ConfirmedAt.UTC()
		confirmedAt = &t
	}
	return entity.TradeBatch{
		ID:          m.ID,
		TradeDate:   m.TradeDate.UTC(),
		Status:      entity.TradeBatchStatus(m.Status),
		Lines:       lines,
		CreatedAt:   m.CreatedAt.UTC(),
		ConfirmedAt: confirmedAt,
	}
}

// ListForDate は確定済みバッチの約定のみを返します。
func (r *tradePostgres) ListForDate(ctx context.Context, bondID uint, date time.Time) ([]entity.TradeLine, error) {
	var rows []TradeLineModel
	err := r.db.WithContext(ctx).
		Where("bond_id = ? AND trade_date = ? AND confirmed = ?", bondID, entity.DateOf(date), true).
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]entity.TradeLine, 0, len(rows))
	for _, m := range rows {
		out = append(out, m.ToEntity())
	}
	return out, nil
}

// StageBatch はバッチと明細を未確定のまま保存します。
func (r *tradePostgres) StageBatch(ctx context.Context, batch *entity.TradeBatch) error {
	m := TradeBatchModel{
		TradeDate: entity.DateOf(batch.TradeDate),
		Status:    string(entity.BatchStaged),
		CreatedAt: batch.CreatedAt.UTC(),
	}
	for _, l := range batch.Lines {
		m.Lines = append(m.Lines, TradeLineModel{
			BondID:          l.BondID,
			TradeDate:       entity.DateOf(batch.TradeDate),
			Side:            string(l.Side),
			ExecutedSize:    l.ExecutedSize,
			Yield:           l.Yield,
			TransactionTime: l.TransactionTime.UTC(),
		})
	}
	// バッチと明細は同じトランザクションで作る（GORM の関連付け保存）
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return err
	}
	batch.ID = m.ID
	batch.Status = entity.BatchStaged
	for i := range batch.Lines {
		batch.Lines[i].ID = m.Lines[i].ID
		batch.Lines[i].BatchID = m.ID
	}
	return nil
}

// ConfirmBatch はバッチを確定し、明細を利回り計算の対象にします。
func (r *tradePostgres) ConfirmBatch(ctx context.Context, batchID uint, confirmedAt time.Time) (*entity.TradeBatch, error) {
	var out entity.TradeBatch
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m TradeBatchModel
		if err := tx.First(&m, batchID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrTradeBatchNotFound
			}
			return err
		}
		duplicate := &domain.DuplicateTradeBatchError{TradeDate: m.TradeDate.UTC()}

		var locked int64
		if err := tx.Model(&TradeBatchConfirmationModel{}).Where("trade_date = ?", m.TradeDate).Count(&locked).Error; err != nil {
			return err
		}
		if locked > 0 {
			return duplicate
		}
		lock := TradeBatchConfirmationModel{TradeDate: m.TradeDate, BatchID: m.ID, ConfirmedAt: confirmedAt.UTC()}
		if err := tx.Create(&lock).Error; err != nil {
			if isDuplicateKey(err) {
				return duplicate
			}
			return err
		}

		at := confirmedAt.UTC()
		if err := tx.Model(&m).Updates(map[string]any{
			"status":       string(entity.BatchConfirmed),
			"confirmed_at": at,
		}).Error; err != nil {
			return err
		}
		if err := tx.Model(&TradeLineModel{}).Where("batch_id = ?", m.ID).Update("confirmed", true).Error; err != nil {
			return err
		}

		if err := tx.Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).First(&m, m.ID).Error; err != nil {
			return err
		}
		out = m.ToEntity()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
