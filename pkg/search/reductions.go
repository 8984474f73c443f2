package search

import "math"

// maxReductionDepth/maxReductionMoveCount bound the precomputed LMR tables. Depths and
// move-counts beyond the bounds clamp to the last row/column.
const (
	maxReductionDepth     = 64
	maxReductionMoveCount = 64
)

// pvReductions[d][mc] holds the PV-node reduction and nonPVReductions[d][mc] the non-PV one;
// init fills each from its own log(depth)*log(moveCount) formula.
var pvReductions [maxReductionDepth + 1][maxReductionMoveCount + 1]int
var nonPVReductions [maxReductionDepth + 1][maxReductionMoveCount + 1]int

func init() {
	for d := 1; d <= maxReductionDepth; d++ {
		for mc := 1; mc <= maxReductionMoveCount; mc++ {
			ld, lm := math.Log(float64(d)), math.Log(float64(mc))
			pvReductions[d][mc] = int(ld * lm / 3.0)
			nonPVReductions[d][mc] = int(0.33 + ld*lm/2.25)
		}
	}
}

// lmrReduction computes the late-move reduction: the base table value for (pv,
// improving, depth, moveNumber), bumped by one in the non-improving non-PV case when large,
// increased by one for a non-PV cut node or a negative-history move, decreased by one when
// the moved piece is escaping a losing capture.
func lmrReduction(pvNode, improving bool, depth, moveNumber int, cutNode bool, history int32, escapesCapture bool) int {
	d := clampIdx(depth, maxReductionDepth)
	mc := clampIdx(moveNumber, maxReductionMoveCount)

	var r int
	if pvNode {
		r = pvReductions[d][mc]
	} else {
		r = nonPVReductions[d][mc]
		if r >= 2 && !improving {
			r++
		}
	}

	if !pvNode && cutNode {
		r++
	}
	if history < 0 {
		r++
	}
	if escapesCapture {
		r--
	}
	if r < 0 {
		r = 0
	}
	return r
}

func clampIdx(v, max int) int {
	if v < 1 {
		return 1
	}
	if v > max {
		return max
	}
	return v
}
