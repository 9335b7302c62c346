package revshare

import "math/big"

// SetConcentrationLimit configures the per-offering concentration guardrail.
// A maxBps of zero disables it regardless of the enforce flag. The previous
// configuration is overwritten without history.
func (e *Engine) SetConcentrationLimit(caller, token [20]byte, maxBps uint32, enforce bool) error {
	if err := e.guard(); err != nil {
		return err
	}
	if _, _, err := e.requireIssuer(caller, token); err != nil {
		return err
	}
	return e.state.RevShareSetConcentrationLimit(token, &ConcentrationLimitConfig{MaxBps: maxBps, Enforce: enforce})
}

// GetConcentrationLimit returns the token's guardrail configuration, if set.
func (e *Engine) GetConcentrationLimit(token [20]byte) (*ConcentrationLimitConfig, bool, error) {
	if e == nil || e.state == nil {
		return nil, false, errNilState
	}
	return e.state.RevShareConcentrationLimit(token)
}

// ReportConcentration records the observed top-holder concentration for the
// token. Last write wins. When the reported value exceeds the configured
// limit a warning event is emitted, but the report itself always succeeds;
// enforcement happens only inside ReportRevenue.
func (e *Engine) ReportConcentration(caller, token [20]byte, bps uint32) error {
	if err := e.guard(); err != nil {
		return err
	}
	issuer, _, err := e.requireIssuer(caller, token)
	if err != nil {
		return err
	}
	if bps > BpsDenominator {
		return ErrInvalidShareBps
	}
	if err := e.state.RevShareSetLastConcentration(token, bps); err != nil {
		return err
	}
	if cfg, ok, err := e.state.RevShareConcentrationLimit(token); err != nil {
		return err
	} else if ok && cfg.MaxBps > 0 && bps > cfg.MaxBps {
		e.emit(NewConcentrationWarningEvent(issuer, token, bps, cfg.MaxBps))
	}
	return nil
}

// GetLastConcentration returns the most recently reported concentration for
// the token.
func (e *Engine) GetLastConcentration(token [20]byte) (uint32, bool, error) {
	if e == nil || e.state == nil {
		return 0, false, errNilState
	}
	return e.state.RevShareLastConcentration(token)
}

func (e *Engine) concentrationBlocked(token [20]byte) (bool, error) {
	testnet, err := e.state.RevShareTestnetMode()
	if err != nil {
		return false, err
	}
	if testnet {
		return false, nil
	}
	cfg, ok, err := e.state.RevShareConcentrationLimit(token)
	if err != nil || !ok {
		return false, err
	}
	if !cfg.Enforce || cfg.MaxBps == 0 {
		return false, nil
	}
	last, reported, err := e.state.RevShareLastConcentration(token)
	if err != nil {
		return false, err
	}
	return reported && last > cfg.MaxBps, nil
}

// ReportRevenue records revenue for a period on the audit trail. This ledger
// is deliberately independent of the deposit ledger: a report moves no funds
// and creates no claims, and the two totals are allowed to diverge.
//
// Order of checks: minimum threshold (below-threshold event, no state
// change), concentration enforcement, then the report itself. The first
// report for a period is recorded and added to the audit summary and the
// per-period revenue index; a repeat report is rejected with an event unless
// override is set, in which case the index is adjusted from the old amount
// to the new one. The audit summary is strictly additive and is never
// reduced by overrides.
func (e *Engine) ReportRevenue(caller, token [20]byte, payoutAsset string, amount *big.Int, periodID uint64, override bool) error {
	if err := e.guard(); err != nil {
		return err
	}
	issuer, index, err := e.requireIssuer(caller, token)
	if err != nil {
		return err
	}
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	if periodID == 0 {
		return ErrInvalidPeriodID
	}
	normalized, err := NormalizeAsset(payoutAsset)
	if err != nil {
		return err
	}
	offering, err := e.loadOffering(issuer, index)
	if err != nil {
		return err
	}
	if offering.PayoutAsset != normalized {
		return ErrPayoutAssetMismatch
	}
	blacklist, err := e.state.RevShareBlacklist(token)
	if err != nil {
		return err
	}

	min, err := e.state.RevShareMinThreshold(token)
	if err != nil {
		return err
	}
	if min.Sign() > 0 && amount.Cmp(min) < 0 {
		e.emit(newReportEvent(EventTypeBelowThreshold, issuer, token, normalized, amount, periodID, blacklist))
		return nil
	}
	if blocked, err := e.concentrationBlocked(token); err != nil {
		return err
	} else if blocked {
		return ErrConcentrationLimitExceeded
	}

	existing, reported, err := e.state.RevShareReport(token, periodID)
	if err != nil {
		return err
	}
	if reported && !override {
		e.emit(newReportEvent(EventTypeReportRejected, issuer, token, normalized, amount, periodID, blacklist))
		return nil
	}

	report := &RevenueReport{Amount: cloneBigInt(amount), ReportedAt: e.now()}
	if err := e.state.RevShareSetReport(token, periodID, report); err != nil {
		return err
	}
	if !reported {
		summary, err := e.state.RevShareAuditSummary(token)
		if err != nil {
			return err
		}
		summary.TotalRevenue.Add(summary.TotalRevenue, amount)
		summary.ReportCount++
		if err := e.state.RevShareSetAuditSummary(token, summary); err != nil {
			return err
		}
		e.emit(newReportEvent(EventTypeRevenueReported, issuer, token, normalized, amount, periodID, blacklist))
		return nil
	}

	evt := newReportEvent(EventTypeReportOverridden, issuer, token, normalized, amount, periodID, blacklist)
	evt.Attributes["previousAmount"] = amountString(existing.Amount)
	e.emit(evt)
	return nil
}

// SetMinRevenueThreshold sets the floor below which reports are acknowledged
// with an event but not recorded. A nil or zero min disables the floor.
func (e *Engine) SetMinRevenueThreshold(caller, token [20]byte, min *big.Int) error {
	if err := e.guard(); err != nil {
		return err
	}
	issuer, _, err := e.requireIssuer(caller, token)
	if err != nil {
		return err
	}
	if min != nil && min.Sign() < 0 {
		return ErrInvalidAmount
	}
	if err := e.state.RevShareSetMinThreshold(token, cloneBigInt(min)); err != nil {
		return err
	}
	e.emit(newEvent(EventTypeMinThresholdSet, map[string]string{
		"issuer": addrHex(issuer),
		"token":  addrHex(token),
		"min":    amountString(min),
	}))
	return nil
}

// GetMinRevenueThreshold returns the token's minimum report threshold.
func (e *Engine) GetMinRevenueThreshold(token [20]byte) (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	return e.state.RevShareMinThreshold(token)
}

// GetAuditSummary returns the strictly additive reporting aggregate for the
// caller's offering.
func (e *Engine) GetAuditSummary(issuer, token [20]byte) (*AuditSummary, error) {
	if _, _, err := e.requireIssuer(issuer, token); err != nil {
		return nil, err
	}
	return e.state.RevShareAuditSummary(token)
}

// GetRevenueByPeriod returns the reported amount for the period, if any.
func (e *Engine) GetRevenueByPeriod(token [20]byte, periodID uint64) (*big.Int, bool, error) {
	if e == nil || e.state == nil {
		return nil, false, errNilState
	}
	report, ok, err := e.state.RevShareReport(token, periodID)
	if err != nil || !ok {
		return nil, false, err
	}
	return cloneBigInt(report.Amount), true, nil
}

// GetRevenueRange sums the reported amounts for period IDs in [from, to],
// skipping unreported periods.
func (e *Engine) GetRevenueRange(token [20]byte, from, to uint64) (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	if from == 0 || to < from {
		return nil, ErrInvalidPeriodID
	}
	total := big.NewInt(0)
	for periodID := from; periodID <= to; periodID++ {
		report, ok, err := e.state.RevShareReport(token, periodID)
		if err != nil {
			return nil, err
		}
		if ok {
			total.Add(total, report.Amount)
		}
	}
	return total, nil
}

// requireIssuerOrAdmin authorizes the eligibility-list operations: the
// token's current issuer and the global admin may both manage the lists.
func (e *Engine) requireIssuerOrAdmin(caller, token [20]byte) error {
	if _, _, err := e.requireIssuer(caller, token); err == nil {
		return nil
	}
	admin, ok, err := e.state.RevShareAdmin()
	if err != nil {
		return err
	}
	if ok && admin == caller {
		// The token must still exist for list management.
		if _, _, exists, err := e.state.RevShareTokenIssuer(token); err != nil {
			return err
		} else if exists {
			return nil
		}
	}
	return ErrOfferingNotFound
}

func appendUnique(list [][20]byte, addr [20]byte) ([][20]byte, bool) {
	for _, existing := range list {
		if existing == addr {
			return list, false
		}
	}
	return append(list, addr), true
}

func removeAddr(list [][20]byte, addr [20]byte) ([][20]byte, bool) {
	for i, existing := range list {
		if existing == addr {
			return append(list[:i], list[i+1:]...), true
		}
	}
	return list, false
}

// AddToBlacklist bars the holder from claiming on the token. Idempotent;
// insertion order is preserved for deterministic listing.
func (e *Engine) AddToBlacklist(caller, token, holder [20]byte) error {
	if err := e.guard(); err != nil {
		return err
	}
	if err := e.requireIssuerOrAdmin(caller, token); err != nil {
		return err
	}
	list, err := e.state.RevShareBlacklist(token)
	if err != nil {
		return err
	}
	list, added := appendUnique(list, holder)
	if !added {
		return nil
	}
	if err := e.state.RevShareSetBlacklist(token, list); err != nil {
		return err
	}
	e.emit(newEvent(EventTypeBlacklistAdded, map[string]string{
		"token":  addrHex(token),
		"holder": addrHex(holder),
	}))
	return nil
}

// RemoveFromBlacklist lifts the claim bar. Idempotent.
func (e *Engine) RemoveFromBlacklist(caller, token, holder [20]byte) error {
	if err := e.guard(); err != nil {
		return err
	}
	if err := e.requireIssuerOrAdmin(caller, token); err != nil {
		return err
	}
	list, err := e.state.RevShareBlacklist(token)
	if err != nil {
		return err
	}
	list, removed := removeAddr(list, holder)
	if !removed {
		return nil
	}
	if err := e.state.RevShareSetBlacklist(token, list); err != nil {
		return err
	}
	e.emit(newEvent(EventTypeBlacklistRemoved, map[string]string{
		"token":  addrHex(token),
		"holder": addrHex(holder),
	}))
	return nil
}

// GetBlacklist returns the token's blacklist in insertion order.
func (e *Engine) GetBlacklist(token [20]byte) ([][20]byte, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	return e.state.RevShareBlacklist(token)
}

// AddToWhitelist marks the holder as vetted. The whitelist is advisory for
// off-chain tooling only; claims never consult it, and the blacklist wins
// unconditionally when a holder appears on both.
func (e *Engine) AddToWhitelist(caller, token, holder [20]byte) error {
	if err := e.guard(); err != nil {
		return err
	}
	if err := e.requireIssuerOrAdmin(caller, token); err != nil {
		return err
	}
	list, err := e.state.RevShareWhitelist(token)
	if err != nil {
		return err
	}
	list, added := appendUnique(list, holder)
	if !added {
		return nil
	}
	if err := e.state.RevShareSetWhitelist(token, list); err != nil {
		return err
	}
	e.emit(newEvent(EventTypeWhitelistAdded, map[string]string{
		"token":  addrHex(token),
		"holder": addrHex(holder),
	}))
	return nil
}

// RemoveFromWhitelist drops the holder from the advisory list. Idempotent.
func (e *Engine) RemoveFromWhitelist(caller, token, holder [20]byte) error {
	if err := e.guard(); err != nil {
		return err
	}
	if err := e.requireIssuerOrAdmin(caller, token); err != nil {
		return err
	}
	list, err := e.state.RevShareWhitelist(token)
	if err != nil {
		return err
	}
	list, removed := removeAddr(list, holder)
	if !removed {
		return nil
	}
	if err := e.state.RevShareSetWhitelist(token, list); err != nil {
		return err
	}
	e.emit(newEvent(EventTypeWhitelistRemoved, map[string]string{
		"token":  addrHex(token),
		"holder": addrHex(holder),
	}))
	return nil
}

// GetWhitelist returns the token's whitelist in insertion order.
func (e *Engine) GetWhitelist(token [20]byte) ([][20]byte, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	return e.state.RevShareWhitelist(token)
}

// IsBlacklisted reports whether the holder is barred from claiming.
func (e *Engine) IsBlacklisted(token, holder [20]byte) (bool, error) {
	if e == nil || e.state == nil {
		return false, errNilState
	}
	return e.isBlacklisted(token, holder)
}
