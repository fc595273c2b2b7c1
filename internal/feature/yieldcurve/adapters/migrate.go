package adapters

import "gorm.io/gorm"

// Models はマイグレーション対象のモデル一覧です。
func Models() []any {
	return []any{
		&BondModel{},
		&QuotationModel{},
		&TradeBatchModel{},
		&TradeLineModel{},
		&TradeBatchConfirmationModel{},
		&ImpliedYieldModel{},
		&ImpliedYieldConfirmationModel{},
		&TreasuryBillModel{},
		&CurvePointModel{},
	}
}

// AutoMigrate は全テーブルを作成・更新します。
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}
