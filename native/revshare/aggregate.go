package revshare

import "math/big"

// HolderShareInput pairs a holder with the share to apply in a simulation.
type HolderShareInput struct {
	Holder   [20]byte
	ShareBps uint32
}

func (e *Engine) aggregateOfferings(issuer [20]byte, metrics *AggregatedMetrics) error {
	count, err := e.state.RevShareOfferingCount(issuer)
	if err != nil {
		return err
	}
	for i := uint32(0); i < count; i++ {
		offering, err := e.loadOffering(issuer, i)
		if err != nil {
			return err
		}
		summary, err := e.state.RevShareAuditSummary(offering.Token)
		if err != nil {
			return err
		}
		deposited, err := e.state.RevShareTotalDeposited(offering.Token)
		if err != nil {
			return err
		}
		metrics.TotalReportedRevenue.Add(metrics.TotalReportedRevenue, summary.TotalRevenue)
		metrics.TotalDepositedRevenue.Add(metrics.TotalDepositedRevenue, deposited)
		metrics.TotalReportCount += summary.ReportCount
		metrics.OfferingCount++
	}
	return nil
}

// IssuerAggregation sums reporting and deposit activity across every offering
// currently held by the issuer. Read-only.
func (e *Engine) IssuerAggregation(issuer [20]byte) (*AggregatedMetrics, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	metrics := &AggregatedMetrics{
		TotalReportedRevenue:  big.NewInt(0),
		TotalDepositedRevenue: big.NewInt(0),
	}
	if err := e.aggregateOfferings(issuer, metrics); err != nil {
		return nil, err
	}
	return metrics, nil
}

// PlatformAggregation sums activity over the global issuer index, bounded at
// MaxAggregationIssuers to keep the scan cheap. Read-only.
func (e *Engine) PlatformAggregation() (*AggregatedMetrics, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	issuers, err := e.AllIssuers()
	if err != nil {
		return nil, err
	}
	metrics := &AggregatedMetrics{
		TotalReportedRevenue:  big.NewInt(0),
		TotalDepositedRevenue: big.NewInt(0),
	}
	for _, issuer := range issuers {
		if err := e.aggregateOfferings(issuer, metrics); err != nil {
			return nil, err
		}
	}
	return metrics, nil
}

// AllIssuers returns the global issuer index in registration order, capped at
// MaxAggregationIssuers.
func (e *Engine) AllIssuers() ([][20]byte, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	issuers, err := e.state.RevShareIssuers()
	if err != nil {
		return nil, err
	}
	if len(issuers) > MaxAggregationIssuers {
		issuers = issuers[:MaxAggregationIssuers]
	}
	return issuers, nil
}

// SimulateDistribution previews what each supplied holder would receive if
// amount were distributed under the offering's rounding mode. Pure preview:
// no balances move, no cursors advance, no events fire.
func (e *Engine) SimulateDistribution(issuer, token [20]byte, amount *big.Int, shares []HolderShareInput) (*SimulationResult, error) {
	if _, _, err := e.requireIssuer(issuer, token); err != nil {
		return nil, err
	}
	if amount == nil || amount.Sign() < 0 {
		return nil, ErrInvalidAmount
	}
	mode, err := e.state.RevShareRoundingMode(token)
	if err != nil {
		return nil, err
	}
	result := &SimulationResult{
		TotalDistributed: big.NewInt(0),
		Payouts:          make([]HolderPayout, 0, len(shares)),
	}
	for _, share := range shares {
		if share.ShareBps > BpsDenominator {
			return nil, ErrInvalidShareBps
		}
		payout := ComputeShare(amount, share.ShareBps, mode)
		result.TotalDistributed.Add(result.TotalDistributed, payout)
		result.Payouts = append(result.Payouts, HolderPayout{Holder: share.Holder, Amount: payout})
	}
	return result, nil
}

// DistributionPreview computes a single holder's payout from balance figures
// supplied by the caller and emits the calculation event. The share fraction
// comes from the offering record.
func (e *Engine) DistributionPreview(token, holder [20]byte, totalRevenue, totalSupply, holderBalance *big.Int) (*big.Int, error) {
	offering, err := e.offeringByToken(token)
	if err != nil {
		return nil, err
	}
	payout, err := DistributionAmount(totalRevenue, totalSupply, holderBalance, offering.RevenueShareBps)
	if err != nil {
		return nil, err
	}
	e.emit(NewDistributionCalculatedEvent(token, holder, totalRevenue, totalSupply, holderBalance, payout, offering.RevenueShareBps))
	return payout, nil
}
