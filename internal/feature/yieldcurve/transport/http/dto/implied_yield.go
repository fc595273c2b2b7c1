package dto

import "yieldcurve_backend/internal/feature/yieldcurve/domain/entity"

// SelectionResponse は1銘柄の判定結果です。候補が無い場合 traded / quoted は null です。
type SelectionResponse struct {
	BondID   uint     `json:"bond_id"`
	IssueNo  string   `json:"issue_no"`
	Traded   *float64 `json:"traded"`
	Quoted   *float64 `json:"quoted"`
	Previous float64  `json:"previous"`
	Selected float64  `json:"selected"`
	Source   string   `json:"source"`
	Reason   string   `json:"reason"`
	Status   string   `json:"status"`
}

type SkippedBondResponse struct {
	BondID  uint   `json:"bond_id"`
	IssueNo string `json:"issue_no"`
	Reason  string `json:"reason"`
}

// DraftResponse は GET /implied-yields/draft のレスポンスです。
type DraftResponse struct {
	Date             string                `json:"date"`
	TBillVariance    float64               `json:"tbill_variance"`
	AlreadyConfirmed bool                  `json:"already_confirmed"`
	Selections       []SelectionResponse   `json:"selections"`
	Skipped          []SkippedBondResponse `json:"skipped"`
}

func NewDraftResponse(run *entity.DraftRun) DraftResponse {
	out := DraftResponse{
		Date:             formatDate(run.Date),
		TBillVariance:    run.TBillVariance,
		AlreadyConfirmed: run.AlreadyConfirmed,
		Selections:       make([]SelectionResponse, 0, len(run.Selections)),
		Skipped:          make([]SkippedBondResponse, 0, len(run.Skipped)),
	}
	for _, s := range run.Selections {
		out.Selections = append(out.Selections, SelectionResponse{
			BondID:   s.BondID,
			IssueNo:  s.IssueNo,
			Traded:   s.Traded,
			Quoted:   s.Quoted,
			Previous: s.Previous,
			Selected: s.Selected,
			Source:   string(s.Source),
			Reason:   s.Reason,
			Status:   string(s.Status),
		})
	}
	for _, s := range run.Skipped {
		out.Skipped = append(out.Skipped, SkippedBondResponse{BondID: s.BondID, IssueNo: s.IssueNo, Reason: s.Reason})
	}
	return out
}

// ConfirmSelectionRequest はオペレーターが確定する1銘柄分の値です。
type ConfirmSelectionRequest struct {
	BondID uint     `json:"bond_id" binding:"required"`
	Yield  *float64 `json:"yield" binding:"required"`
}

// ConfirmRequest は POST /implied-yields/confirm のリクエストボディです。
// 空の selections は usecase 側で拒否されます。
type ConfirmRequest struct {
	Date       string                    `json:"date" binding:"required"`
	Selections []ConfirmSelectionRequest `json:"selections" binding:"dive"`
}

// ToEntities はリクエストを確定値のリストに変換します。
func (r ConfirmRequest) ToEntities() []entity.ConfirmedSelection {
	out := make([]entity.ConfirmedSelection, 0, len(r.Selections))
	for _, s := range r.Selections {
		out = append(out, entity.ConfirmedSelection{BondID: s.BondID, Yield: *s.Yield})
	}
	return out
}

// ConfirmResponse は確定成功時のレスポンスです。
type ConfirmResponse struct {
	Date      string `json:"date"`
	Confirmed int    `json:"confirmed"`
}
