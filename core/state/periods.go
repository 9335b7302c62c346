package state

import (
	"fmt"
	"math/big"

	"revora/native/revshare"
)

type storedPeriod struct {
	Token       [20]byte
	PeriodID    uint64
	Revenue     *big.Int
	DepositTime uint64
}

func newStoredPeriod(rec *revshare.PeriodRecord) *storedPeriod {
	if rec == nil {
		return nil
	}
	revenue := big.NewInt(0)
	if rec.Revenue != nil {
		revenue = new(big.Int).Set(rec.Revenue)
	}
	return &storedPeriod{
		Token:       rec.Token,
		PeriodID:    rec.PeriodID,
		Revenue:     revenue,
		DepositTime: rec.DepositTime,
	}
}

func (s *storedPeriod) toPeriod() *revshare.PeriodRecord {
	revenue := big.NewInt(0)
	if s.Revenue != nil {
		revenue = new(big.Int).Set(s.Revenue)
	}
	return &revshare.PeriodRecord{
		Token:       s.Token,
		PeriodID:    s.PeriodID,
		Revenue:     revenue,
		DepositTime: s.DepositTime,
	}
}

func periodRecordKey(token [20]byte, periodID uint64) []byte {
	return storageKey(periodRecordPrefix, token[:], uint64Key(periodID))
}

// RevSharePeriodPut stores a deposited revenue period.
func (m *Manager) RevSharePeriodPut(rec *revshare.PeriodRecord) error {
	if rec == nil {
		return fmt.Errorf("state: nil period record")
	}
	return m.writeRLP(periodRecordKey(rec.Token, rec.PeriodID), newStoredPeriod(rec))
}

// RevSharePeriodGet loads a deposited period by ID.
func (m *Manager) RevSharePeriodGet(token [20]byte, periodID uint64) (*revshare.PeriodRecord, bool, error) {
	stored := new(storedPeriod)
	ok, err := m.loadRLP(periodRecordKey(token, periodID), stored)
	if err != nil || !ok {
		return nil, false, err
	}
	return stored.toPeriod(), true, nil
}

// RevSharePeriodCount returns how many periods have been deposited for the
// token.
func (m *Manager) RevSharePeriodCount(token [20]byte) (uint32, error) {
	count, err := m.loadUint64(storageKey(periodCountPrefix, token[:]))
	return uint32(count), err
}

// RevShareSetPeriodCount overwrites the token's period count.
func (m *Manager) RevShareSetPeriodCount(token [20]byte, count uint32) error {
	return m.writeUint64(storageKey(periodCountPrefix, token[:]), uint64(count))
}

// RevSharePeriodAt resolves a deposit-order sequence slot to its period ID.
func (m *Manager) RevSharePeriodAt(token [20]byte, seq uint32) (uint64, bool, error) {
	var periodID uint64
	ok, err := m.loadRLP(storageKey(periodSeqPrefix, token[:], uint32Key(seq)), &periodID)
	if err != nil || !ok {
		return 0, false, err
	}
	return periodID, true, nil
}

// RevShareSetPeriodAt records the period ID at a deposit-order slot.
func (m *Manager) RevShareSetPeriodAt(token [20]byte, seq uint32, periodID uint64) error {
	return m.writeUint64(storageKey(periodSeqPrefix, token[:], uint32Key(seq)), periodID)
}

// RevShareTotalDeposited returns the token's cumulative deposited revenue.
func (m *Manager) RevShareTotalDeposited(token [20]byte) (*big.Int, error) {
	return m.loadBigInt(storageKey(totalDepositPrefix, token[:]))
}

// RevShareSetTotalDeposited overwrites the token's cumulative deposited
// revenue.
func (m *Manager) RevShareSetTotalDeposited(token [20]byte, total *big.Int) error {
	return m.writeBigInt(storageKey(totalDepositPrefix, token[:]), total)
}

// RevSharePaymentAsset returns the asset locked by the token's first deposit.
func (m *Manager) RevSharePaymentAsset(token [20]byte) (string, bool, error) {
	var asset string
	ok, err := m.loadRLP(storageKey(paymentAssetPrefix, token[:]), &asset)
	if err != nil || !ok {
		return "", false, err
	}
	return asset, true, nil
}

// RevShareSetPaymentAsset locks the token's payment asset.
func (m *Manager) RevShareSetPaymentAsset(token [20]byte, asset string) error {
	return m.writeRLP(storageKey(paymentAssetPrefix, token[:]), asset)
}

// RevShareSnapshotEnabled reports whether snapshot deposits are enabled.
func (m *Manager) RevShareSnapshotEnabled(token [20]byte) (bool, error) {
	return m.loadBool(storageKey(snapshotFlagPrefix, token[:]))
}

// RevShareSetSnapshotEnabled toggles snapshot deposits for the token.
func (m *Manager) RevShareSetSnapshotEnabled(token [20]byte, enabled bool) error {
	return m.writeBool(storageKey(snapshotFlagPrefix, token[:]), enabled)
}

// RevShareLastSnapshotRef returns the highest recorded snapshot reference.
func (m *Manager) RevShareLastSnapshotRef(token [20]byte) (uint64, error) {
	return m.loadUint64(storageKey(snapshotRefPrefix, token[:]))
}

// RevShareSetLastSnapshotRef overwrites the token's snapshot reference.
func (m *Manager) RevShareSetLastSnapshotRef(token [20]byte, ref uint64) error {
	return m.writeUint64(storageKey(snapshotRefPrefix, token[:]), ref)
}

// RevShareHolderShare returns the holder's share in basis points; zero when
// unset.
func (m *Manager) RevShareHolderShare(token, holder [20]byte) (uint32, error) {
	share, err := m.loadUint64(storageKey(holderSharePrefix, token[:], holder[:]))
	return uint32(share), err
}

// RevShareSetHolderShare overwrites the holder's share.
func (m *Manager) RevShareSetHolderShare(token, holder [20]byte, shareBps uint32) error {
	return m.writeUint64(storageKey(holderSharePrefix, token[:], holder[:]), uint64(shareBps))
}

// RevShareClaimCursor returns the holder's position in the token's
// deposit-order sequence; zero when the holder has never claimed.
func (m *Manager) RevShareClaimCursor(token, holder [20]byte) (uint32, error) {
	cursor, err := m.loadUint64(storageKey(claimCursorPrefix, token[:], holder[:]))
	return uint32(cursor), err
}

// RevShareSetClaimCursor advances the holder's claim cursor.
func (m *Manager) RevShareSetClaimCursor(token, holder [20]byte, cursor uint32) error {
	return m.writeUint64(storageKey(claimCursorPrefix, token[:], holder[:]), uint64(cursor))
}

// RevShareClaimDelay returns the token's claim delay in seconds.
func (m *Manager) RevShareClaimDelay(token [20]byte) (uint64, error) {
	return m.loadUint64(storageKey(claimDelayPrefix, token[:]))
}

// RevShareSetClaimDelay overwrites the token's claim delay.
func (m *Manager) RevShareSetClaimDelay(token [20]byte, delaySecs uint64) error {
	return m.writeUint64(storageKey(claimDelayPrefix, token[:]), delaySecs)
}

// RevShareRoundingMode returns the token's rounding mode, defaulting to
// truncation when unset or out of range.
func (m *Manager) RevShareRoundingMode(token [20]byte) (revshare.RoundingMode, error) {
	raw, err := m.loadUint64(storageKey(roundingModePrefix, token[:]))
	if err != nil {
		return revshare.RoundingTruncation, err
	}
	mode := revshare.RoundingMode(raw)
	if !mode.Valid() {
		return revshare.RoundingTruncation, nil
	}
	return mode, nil
}

// RevShareSetRoundingMode overwrites the token's rounding mode.
func (m *Manager) RevShareSetRoundingMode(token [20]byte, mode revshare.RoundingMode) error {
	return m.writeUint64(storageKey(roundingModePrefix, token[:]), uint64(mode))
}
