package dto

import "yieldcurve_backend/internal/feature/yieldcurve/domain/entity"

// CurvePointResponse はカーブ上の1点です。
type CurvePointResponse struct {
	Tenure       float64 `json:"tenure"`
	Yield        float64 `json:"yield"`
	Label        string  `json:"label"`
	BondID       uint    `json:"bond_id,omitempty"`
	IssueDate    string  `json:"issue_date,omitempty"`
	MaturityDate string  `json:"maturity_date,omitempty"`
	Interpolated bool    `json:"interpolated"`
}

// CurveResponse は GET /curves/{official,quoted} のレスポンスです。
type CurveResponse struct {
	Date   string               `json:"date"`
	Kind   string               `json:"kind"`
	Points []CurvePointResponse `json:"points"`
}

func NewCurveResponse(c *entity.Curve) CurveResponse {
	out := CurveResponse{
		Date:   formatDate(c.Date),
		Kind:   string(c.Kind),
		Points: make([]CurvePointResponse, 0, len(c.Points)),
	}
	for _, p := range c.Points {
		out.Points = append(out.Points, CurvePointResponse{
			Tenure:       p.Tenure,
			Yield:        p.Yield,
			Label:        p.Label,
			BondID:       p.BondID,
			IssueDate:    formatDate(p.IssueDate),
			MaturityDate: formatDate(p.MaturityDate),
			Interpolated: p.Interpolated,
		})
	}
	return out
}
