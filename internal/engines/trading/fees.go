package trading

import "github.com/vivekxkt/trading-app/internal/models"

// Indian equity delivery charge schedule. Rates apply to the order's
// turnover (quantity times price); only the final cash movement is
// rounded, never the individual components.
const (
	brokerageRate = 0.0003
	brokerageCap  = 20.0
	sttRate       = 0.00025
	exchangeRate  = 0.0000345
	sebiRate      = 0.000001
	stampRate     = 0.00003
	gstRate       = 0.18
	dpCharge      = 13.5
)

// ComputeCharges prices the full fee stack for one order. STT and the
// depository charge apply to sells only, stamp duty to buys only, and
// GST is levied on brokerage plus the exchange fee.
func ComputeCharges(side models.Side, quantity, price float64) models.Charges {
	turnover := quantity * price

	brokerage := turnover * brokerageRate
	if brokerage > brokerageCap {
		brokerage = brokerageCap
	}

	var stt, stamp, dp float64
	if side == models.SideSell {
		stt = turnover * sttRate
		dp = dpCharge
	}
	if side == models.SideBuy {
		stamp = turnover * stampRate
	}

	exchange := turnover * exchangeRate
	sebi := turnover * sebiRate
	gst := gstRate * (brokerage + exchange)

	return models.Charges{
		Turnover:  turnover,
		Brokerage: brokerage,
		STT:       stt,
		Exchange:  exchange,
		SEBI:      sebi,
		StampDuty: stamp,
		GST:       gst,
		DPCharges: dp,
		Total:     brokerage + stt + exchange + sebi + stamp + gst + dp,
	}
}
