package trading

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vivekxkt/trading-app/internal/models"
)

func TestComputeChargesBuyBreakdown(t *testing.T) {
	t.Parallel()

	// 10 shares at 500: turnover 5000.
	c := ComputeCharges(models.SideBuy, 10, 500)

	assert.InDelta(t, 5000.0, c.Turnover, 1e-9)
	assert.InDelta(t, 1.5, c.Brokerage, 1e-9)
	assert.InDelta(t, 0.0, c.STT, 1e-9)
	assert.InDelta(t, 0.1725, c.Exchange, 1e-9)
	assert.InDelta(t, 0.005, c.SEBI, 1e-9)
	assert.InDelta(t, 0.15, c.StampDuty, 1e-9)
	assert.InDelta(t, 0.3011, c.GST, 1e-4)
	assert.InDelta(t, 0.0, c.DPCharges, 1e-9)
	assert.InDelta(t, 2.1285, c.Total, 1e-3)
}

func TestComputeChargesSellSideComponents(t *testing.T) {
	t.Parallel()

	buy := ComputeCharges(models.SideBuy, 10, 500)
	sell := ComputeCharges(models.SideSell, 10, 500)

	assert.Zero(t, buy.STT)
	assert.Zero(t, buy.DPCharges)
	assert.InDelta(t, 5000*0.00025, sell.STT, 1e-9)
	assert.Equal(t, 13.5, sell.DPCharges)

	assert.InDelta(t, 5000*0.00003, buy.StampDuty, 1e-9)
	assert.Zero(t, sell.StampDuty)

	// Shared components match across sides.
	assert.Equal(t, buy.Brokerage, sell.Brokerage)
	assert.Equal(t, buy.Exchange, sell.Exchange)
	assert.Equal(t, buy.SEBI, sell.SEBI)
	assert.Equal(t, buy.GST, sell.GST)
}

func TestComputeChargesBrokerageCap(t *testing.T) {
	t.Parallel()

	// Turnover 100000 would mean 30 in brokerage uncapped.
	c := ComputeCharges(models.SideBuy, 100, 1000)
	assert.Equal(t, 20.0, c.Brokerage)

	// Just under the cap threshold of 66666.67 turnover.
	small := ComputeCharges(models.SideBuy, 10, 6000)
	assert.InDelta(t, 60000*0.0003, small.Brokerage, 1e-9)
	assert.Less(t, small.Brokerage, 20.0)
}

func TestComputeChargesTotalIsComponentSum(t *testing.T) {
	t.Parallel()

	for _, side := range []models.Side{models.SideBuy, models.SideSell} {
		c := ComputeCharges(side, 37, 1234.56)
		sum := c.Brokerage + c.STT + c.Exchange + c.SEBI + c.StampDuty + c.GST + c.DPCharges
		assert.InDelta(t, sum, c.Total, 1e-12)
	}
}

func TestComputeChargesMonotonicInTurnover(t *testing.T) {
	t.Parallel()

	for _, side := range []models.Side{models.SideBuy, models.SideSell} {
		prev := ComputeCharges(side, 1, 100).Total
		for q := 2.0; q <= 2000; q += 37 {
			next := ComputeCharges(side, q, 100).Total
			assert.Greater(t, next, prev, "side %s quantity %.0f", side, q)
			prev = next
		}
	}
}
