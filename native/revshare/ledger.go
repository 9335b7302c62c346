package revshare

import (
	"math/big"
	"strconv"
)

// DepositRevenue records a revenue period for the token and moves the funds
// from the issuer's balance into the module vault. The payment asset is
// locked by the first deposit; every later deposit must use the same asset.
// Period IDs are caller-chosen but must be nonzero and unused; deposit order,
// not ID order, is what claims follow.
func (e *Engine) DepositRevenue(caller, token [20]byte, paymentAsset string, amount *big.Int, periodID uint64) error {
	return e.deposit(caller, token, paymentAsset, amount, periodID, 0, false)
}

// DepositRevenueWithSnapshot is DepositRevenue plus a strictly increasing
// snapshot reference for offerings that opted into snapshot distribution.
func (e *Engine) DepositRevenueWithSnapshot(caller, token [20]byte, paymentAsset string, amount *big.Int, periodID, snapshotRef uint64) error {
	return e.deposit(caller, token, paymentAsset, amount, periodID, snapshotRef, true)
}

func (e *Engine) deposit(caller, token [20]byte, paymentAsset string, amount *big.Int, periodID, snapshotRef uint64, withSnapshot bool) error {
	if err := e.guard(); err != nil {
		return err
	}
	issuer, _, err := e.requireIssuer(caller, token)
	if err != nil {
		return err
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	if periodID == 0 {
		return ErrInvalidPeriodID
	}
	normalized, err := NormalizeAsset(paymentAsset)
	if err != nil {
		return err
	}
	locked, hasLocked, err := e.state.RevSharePaymentAsset(token)
	if err != nil {
		return err
	}
	if hasLocked && locked != normalized {
		return ErrPaymentAssetMismatch
	}
	if withSnapshot {
		enabled, err := e.state.RevShareSnapshotEnabled(token)
		if err != nil {
			return err
		}
		if !enabled {
			return ErrSnapshotNotEnabled
		}
		lastRef, err := e.state.RevShareLastSnapshotRef(token)
		if err != nil {
			return err
		}
		if snapshotRef <= lastRef {
			return ErrOutdatedSnapshot
		}
	}
	if _, exists, err := e.state.RevSharePeriodGet(token, periodID); err != nil {
		return err
	} else if exists {
		return ErrPeriodAlreadyDeposited
	}

	vault, err := e.state.RevShareVaultAddress(normalized)
	if err != nil {
		return err
	}
	if err := e.transferAsset(issuer, vault, normalized, amount); err != nil {
		return err
	}

	record := &PeriodRecord{
		Token:       token,
		PeriodID:    periodID,
		Revenue:     cloneBigInt(amount),
		DepositTime: e.now(),
	}
	if err := e.state.RevSharePeriodPut(record); err != nil {
		return err
	}
	seq, err := e.state.RevSharePeriodCount(token)
	if err != nil {
		return err
	}
	if err := e.state.RevShareSetPeriodAt(token, seq, periodID); err != nil {
		return err
	}
	if err := e.state.RevShareSetPeriodCount(token, seq+1); err != nil {
		return err
	}
	total, err := e.state.RevShareTotalDeposited(token)
	if err != nil {
		return err
	}
	if err := e.state.RevShareSetTotalDeposited(token, new(big.Int).Add(total, amount)); err != nil {
		return err
	}
	if !hasLocked {
		if err := e.state.RevShareSetPaymentAsset(token, normalized); err != nil {
			return err
		}
	}
	if withSnapshot {
		if err := e.state.RevShareSetLastSnapshotRef(token, snapshotRef); err != nil {
			return err
		}
	}
	e.emit(NewRevenueDepositedEvent(issuer, token, normalized, amount, periodID))
	if withSnapshot {
		e.emit(NewSnapshotDepositEvent(issuer, token, normalized, amount, periodID, snapshotRef))
	}
	return nil
}

// SetSnapshotConfig opts the offering in or out of snapshot-based deposits.
func (e *Engine) SetSnapshotConfig(caller, token [20]byte, enabled bool) error {
	if err := e.guard(); err != nil {
		return err
	}
	issuer, _, err := e.requireIssuer(caller, token)
	if err != nil {
		return err
	}
	if err := e.state.RevShareSetSnapshotEnabled(token, enabled); err != nil {
		return err
	}
	e.emit(newEvent(EventTypeSnapshotConfig, map[string]string{
		"issuer":  addrHex(issuer),
		"token":   addrHex(token),
		"enabled": strconv.FormatBool(enabled),
	}))
	return nil
}

// GetSnapshotConfig reports whether snapshot deposits are enabled for the
// token.
func (e *Engine) GetSnapshotConfig(token [20]byte) (bool, error) {
	if e == nil || e.state == nil {
		return false, errNilState
	}
	return e.state.RevShareSnapshotEnabled(token)
}

// GetLastSnapshotRef returns the highest snapshot reference recorded for the
// token; zero means no snapshot deposit has happened yet.
func (e *Engine) GetLastSnapshotRef(token [20]byte) (uint64, error) {
	if e == nil || e.state == nil {
		return 0, errNilState
	}
	return e.state.RevShareLastSnapshotRef(token)
}

// GetPeriodCount returns how many revenue periods have been deposited for the
// token.
func (e *Engine) GetPeriodCount(token [20]byte) (uint32, error) {
	if e == nil || e.state == nil {
		return 0, errNilState
	}
	return e.state.RevSharePeriodCount(token)
}

// GetTotalDeposited returns the cumulative deposited revenue for the token.
func (e *Engine) GetTotalDeposited(token [20]byte) (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	return e.state.RevShareTotalDeposited(token)
}

// GetPeriod returns the deposited record for the given period ID.
func (e *Engine) GetPeriod(token [20]byte, periodID uint64) (*PeriodRecord, bool, error) {
	if e == nil || e.state == nil {
		return nil, false, errNilState
	}
	return e.state.RevSharePeriodGet(token, periodID)
}

// SetHolderShare assigns the holder's payout fraction for the token. Shares
// are mutable and independent across holders; the engine does not require
// them to sum to any particular total.
func (e *Engine) SetHolderShare(caller, token, holder [20]byte, shareBps uint32) error {
	if err := e.guard(); err != nil {
		return err
	}
	issuer, _, err := e.requireIssuer(caller, token)
	if err != nil {
		return err
	}
	if shareBps > BpsDenominator {
		return ErrInvalidShareBps
	}
	if err := e.state.RevShareSetHolderShare(token, holder, shareBps); err != nil {
		return err
	}
	e.emit(NewHolderShareSetEvent(issuer, token, holder, shareBps))
	return nil
}

// GetHolderShare returns the holder's configured share in basis points; zero
// when none has been set.
func (e *Engine) GetHolderShare(token, holder [20]byte) (uint32, error) {
	if e == nil || e.state == nil {
		return 0, errNilState
	}
	return e.state.RevShareHolderShare(token, holder)
}

// SetClaimDelay configures the per-token window during which a freshly
// deposited period cannot yet be claimed.
func (e *Engine) SetClaimDelay(caller, token [20]byte, delaySecs uint64) error {
	if err := e.guard(); err != nil {
		return err
	}
	issuer, _, err := e.requireIssuer(caller, token)
	if err != nil {
		return err
	}
	if err := e.state.RevShareSetClaimDelay(token, delaySecs); err != nil {
		return err
	}
	e.emit(NewClaimDelaySetEvent(issuer, token, delaySecs))
	return nil
}

// GetClaimDelay returns the token's claim delay in seconds.
func (e *Engine) GetClaimDelay(token [20]byte) (uint64, error) {
	if e == nil || e.state == nil {
		return 0, errNilState
	}
	return e.state.RevShareClaimDelay(token)
}

// SetRoundingMode configures how fractional payouts round for the token.
func (e *Engine) SetRoundingMode(caller, token [20]byte, mode RoundingMode) error {
	if err := e.guard(); err != nil {
		return err
	}
	issuer, _, err := e.requireIssuer(caller, token)
	if err != nil {
		return err
	}
	if !mode.Valid() {
		return ErrInvalidAmount
	}
	if err := e.state.RevShareSetRoundingMode(token, mode); err != nil {
		return err
	}
	e.emit(newEvent(EventTypeRoundingModeSet, map[string]string{
		"issuer": addrHex(issuer),
		"token":  addrHex(token),
		"mode":   strconv.FormatUint(uint64(mode), 10),
	}))
	return nil
}

// GetRoundingMode returns the token's rounding mode, defaulting to
// truncation.
func (e *Engine) GetRoundingMode(token [20]byte) (RoundingMode, error) {
	if e == nil || e.state == nil {
		return RoundingTruncation, errNilState
	}
	return e.state.RevShareRoundingMode(token)
}

// eligiblePeriods walks the deposit-order sequence from the holder's cursor
// and returns the periods a claim would settle right now: it stops at the
// period count, at the cap, or at the first period still inside the claim
// delay window. Stopping (rather than skipping) keeps payouts in strict
// deposit order.
func (e *Engine) eligiblePeriods(token, holder [20]byte, maxPeriods uint32) (start uint32, records []*PeriodRecord, err error) {
	if maxPeriods == 0 || maxPeriods > MaxClaimPeriods {
		maxPeriods = MaxClaimPeriods
	}
	cursor, err := e.state.RevShareClaimCursor(token, holder)
	if err != nil {
		return 0, nil, err
	}
	count, err := e.state.RevSharePeriodCount(token)
	if err != nil {
		return 0, nil, err
	}
	delay, err := e.state.RevShareClaimDelay(token)
	if err != nil {
		return 0, nil, err
	}
	now := e.now()
	for seq := cursor; seq < count && uint32(len(records)) < maxPeriods; seq++ {
		periodID, ok, err := e.state.RevSharePeriodAt(token, seq)
		if err != nil {
			return 0, nil, err
		}
		if !ok {
			break
		}
		record, ok, err := e.state.RevSharePeriodGet(token, periodID)
		if err != nil {
			return 0, nil, err
		}
		if !ok {
			break
		}
		if delay > 0 && now < record.DepositTime+delay {
			break
		}
		records = append(records, record)
	}
	return cursor, records, nil
}

func (e *Engine) isBlacklisted(token, holder [20]byte) (bool, error) {
	list, err := e.state.RevShareBlacklist(token)
	if err != nil {
		return false, err
	}
	for _, addr := range list {
		if addr == holder {
			return true, nil
		}
	}
	return false, nil
}

// Claim settles the holder's pending periods for the token in deposit order
// and pays the aggregate out of the module vault in a single transfer. A zero
// maxPeriods means the cap. A holder with nothing currently claimable gets
// (0, nil) and an untouched cursor; repeat calls are harmless. The cursor
// advances past every examined period, including ones whose payout rounded
// to zero, so no period is ever settled twice.
func (e *Engine) Claim(holder, token [20]byte, maxPeriods uint32) (*big.Int, error) {
	if err := e.guard(); err != nil {
		return nil, err
	}
	offering, err := e.offeringByToken(token)
	if err != nil {
		return nil, err
	}
	blacklisted, err := e.isBlacklisted(token, holder)
	if err != nil {
		return nil, err
	}
	if blacklisted {
		return nil, ErrHolderBlacklisted
	}
	shareBps, err := e.state.RevShareHolderShare(token, holder)
	if err != nil {
		return nil, err
	}
	if shareBps == 0 {
		return nil, ErrNoPendingClaims
	}
	cursor, records, err := e.eligiblePeriods(token, holder, maxPeriods)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return big.NewInt(0), nil
	}
	mode, err := e.state.RevShareRoundingMode(token)
	if err != nil {
		return nil, err
	}
	total := big.NewInt(0)
	periodIDs := make([]uint64, 0, len(records))
	for _, record := range records {
		total.Add(total, ComputeShare(record.Revenue, shareBps, mode))
		periodIDs = append(periodIDs, record.PeriodID)
	}
	asset, hasAsset, err := e.state.RevSharePaymentAsset(token)
	if err != nil {
		return nil, err
	}
	if !hasAsset {
		asset = offering.PayoutAsset
	}
	if total.Sign() > 0 {
		vault, err := e.state.RevShareVaultAddress(asset)
		if err != nil {
			return nil, err
		}
		if err := e.transferAsset(vault, holder, asset, total); err != nil {
			return nil, err
		}
	}
	if err := e.state.RevShareSetClaimCursor(token, holder, cursor+uint32(len(records))); err != nil {
		return nil, err
	}
	e.emit(NewClaimedEvent(holder, token, total, periodIDs))
	return total, nil
}

// GetClaimable previews what Claim would pay the holder right now without
// changing any state. It honors the claim-delay gate and the per-call cap.
func (e *Engine) GetClaimable(token, holder [20]byte) (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	shareBps, err := e.state.RevShareHolderShare(token, holder)
	if err != nil {
		return nil, err
	}
	if shareBps == 0 {
		return big.NewInt(0), nil
	}
	_, records, err := e.eligiblePeriods(token, holder, 0)
	if err != nil {
		return nil, err
	}
	mode, err := e.state.RevShareRoundingMode(token)
	if err != nil {
		return nil, err
	}
	total := big.NewInt(0)
	for _, record := range records {
		total.Add(total, ComputeShare(record.Revenue, shareBps, mode))
	}
	return total, nil
}

// GetPendingPeriods lists the period IDs the holder has not yet claimed, in
// deposit order, without applying the delay gate or the per-call cap.
func (e *Engine) GetPendingPeriods(token, holder [20]byte) ([]uint64, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	cursor, err := e.state.RevShareClaimCursor(token, holder)
	if err != nil {
		return nil, err
	}
	count, err := e.state.RevSharePeriodCount(token)
	if err != nil {
		return nil, err
	}
	pending := make([]uint64, 0)
	for seq := cursor; seq < count; seq++ {
		periodID, ok, err := e.state.RevSharePeriodAt(token, seq)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		pending = append(pending, periodID)
	}
	return pending, nil
}
