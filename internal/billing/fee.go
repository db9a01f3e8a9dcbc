package billing

import "github.com/stemsi/tuition-backend/internal/model"

// CycleFee is the amount due for one cycle of a class.
//
// In PER_SESSION mode the base fee is a per-session price and is multiplied
// by the cycle's session count. In PER_CYCLE mode the base fee already is
// the cycle price. Any other mode is treated as PER_SESSION, the default.
func CycleFee(baseFee int64, cycle model.CycleType, mode model.FeeMode) int64 {
	if mode == model.FeePerCycle {
		return baseFee
	}
	return baseFee * int64(SessionsPerCycle(cycle))
}
