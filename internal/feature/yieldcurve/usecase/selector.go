package usecase

import (
	"context"
	"math"
	"sort"
	"time"

	"yieldcurve_backend/internal/feature/yieldcurve/domain/entity"
	"yieldcurve_backend/internal/feature/yieldcurve/domain/yieldmath"
)

// BucketResult は1つのバケットがカーブに追加する内容です。
type BucketResult struct {
	Points []entity.CurvePoint
	// NeedsInterpolation はバケット下限を補間で埋める必要があるときに true です。
	NeedsInterpolation bool
}

type candidate struct {
	bond   entity.Bond
	tenure float64
}

// SelectBucket はバケット r を代表する銘柄を選びます。
//
// 残存期間がちょうど下限の銘柄があればそれだけでバケットが決まります（発行残高の小さい方を優先）。
// なければ利回りの取れる未使用候補をすべて点として追加し、下限を補間対象にします。
// 点になった銘柄は used に記録し、2つのバケットで使われないようにします。
func SelectBucket(
	ctx context.Context,
	date time.Time,
	r entity.BenchmarkRange,
	bonds []entity.Bond,
	used map[uint]struct{},
	source YieldSource,
) (BucketResult, error) {
	candidates := bucketCandidates(date, r, bonds, used)
	if len(candidates) == 0 {
		return BucketResult{NeedsInterpolation: true}, nil
	}

	if exact, ok := exactMatch(candidates, r.LowerBound); ok {
		y, found, err := source.Yield(ctx, exact.bond, date)
		if err != nil {
			return BucketResult{}, err
		}
		if !found {
			return BucketResult{NeedsInterpolation: true}, nil
		}
		used[exact.bond.ID] = struct{}{}
		return BucketResult{Points: []entity.CurvePoint{bondPoint(exact, y)}}, nil
	}

	res := BucketResult{NeedsInterpolation: true}
	for _, c := range candidates {
		y, found, err := source.Yield(ctx, c.bond, date)
		if err != nil {
			return BucketResult{}, err
		}
		if !found {
			continue
		}
		used[c.bond.ID] = struct{}{}
		res.Points = append(res.Points, bondPoint(c, y))
	}
	return res, nil
}

// bucketCandidates は整数年に切り捨てた残存期間が r に入る未使用銘柄を、残存期間・ID順で返します。
func bucketCandidates(date time.Time, r entity.BenchmarkRange, bonds []entity.Bond, used map[uint]struct{}) []candidate {
	var out []candidate
	for _, b := range bonds {
		if _, taken := used[b.ID]; taken {
			continue
		}
		tenure := yieldmath.YearsToMaturity(b.MaturityDate, date)
		if r.Contains(math.Floor(tenure)) {
			out = append(out, candidate{bond: b, tenure: tenure})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].tenure != out[j].tenure {
			return out[i].tenure < out[j].tenure
		}
		return out[i].bond.ID < out[j].bond.ID
	})
	return out
}

// exactMatch は残存期間がちょうど lower の候補のうち、発行残高が最小（同値ならID最小）のものを返します。
func exactMatch(candidates []candidate, lower float64) (candidate, bool) {
	var best candidate
	found := false
	for _, c := range candidates {
		if c.tenure != lower {
			continue
		}
		if !found ||
			c.bond.OutstandingValue < best.bond.OutstandingValue ||
			(c.bond.OutstandingValue == best.bond.OutstandingValue && c.bond.ID < best.bond.ID) {
			best = c
			found = true
		}
	}
	return best, found
}

func bondPoint(c candidate, y float64) entity.CurvePoint {
	return entity.CurvePoint{
		Tenure:       c.tenure,
		Yield:        y,
		Label:        c.bond.IssueNo,
		BondID:       c.bond.ID,
		IssueDate:    c.bond.IssueDate,
		MaturityDate: c.bond.MaturityDate,
	}
}
