package revshare

import (
	"fmt"
	"math/big"
	"time"

	"revora/core/events"
	"revora/core/types"
	"revora/native/common"
)

const (
	// MaxClaimPeriods bounds how many periods a single claim call may settle.
	MaxClaimPeriods = 50
	// MaxPageLimit bounds offering pagination.
	MaxPageLimit = 20
	// MaxMetadataBytes bounds free-form offering metadata.
	MaxMetadataBytes = 256
	// MaxPlatformFeeBps caps the platform fee at 50%.
	MaxPlatformFeeBps = 5000
	// MaxAggregationIssuers bounds platform-wide aggregation scans.
	MaxAggregationIssuers = 50
)

// engineState is the persistence surface the engine requires. The state
// manager in core/state implements it; tests substitute an in-memory mock.
// Accessors return copies the engine may mutate freely.
type engineState interface {
	common.GateView

	// Offering registry.
	RevShareOfferingPut(issuer [20]byte, index uint32, o *Offering) error
	RevShareOfferingGet(issuer [20]byte, index uint32) (*Offering, bool, error)
	RevShareOfferingDelete(issuer [20]byte, index uint32) error
	RevShareOfferingCount(issuer [20]byte) (uint32, error)
	RevShareSetOfferingCount(issuer [20]byte, count uint32) error
	RevShareTokenIssuer(token [20]byte) (issuer [20]byte, index uint32, ok bool, err error)
	RevShareSetTokenIssuer(token [20]byte, issuer [20]byte, index uint32) error
	RevShareMetadata(token [20]byte) (string, bool, error)
	RevShareSetMetadata(token [20]byte, metadata string) error
	RevShareIssuers() ([][20]byte, error)
	RevShareAddIssuer(issuer [20]byte) error

	// Issuer transfer.
	RevSharePendingTransfer(token [20]byte) ([20]byte, bool, error)
	RevShareSetPendingTransfer(token [20]byte, newIssuer [20]byte) error
	RevShareDeletePendingTransfer(token [20]byte) error

	// Period revenue ledger.
	RevSharePeriodPut(rec *PeriodRecord) error
	RevSharePeriodGet(token [20]byte, periodID uint64) (*PeriodRecord, bool, error)
	RevSharePeriodCount(token [20]byte) (uint32, error)
	RevShareSetPeriodCount(token [20]byte, count uint32) error
	RevSharePeriodAt(token [20]byte, seq uint32) (uint64, bool, error)
	RevShareSetPeriodAt(token [20]byte, seq uint32, periodID uint64) error
	RevShareTotalDeposited(token [20]byte) (*big.Int, error)
	RevShareSetTotalDeposited(token [20]byte, total *big.Int) error
	RevSharePaymentAsset(token [20]byte) (string, bool, error)
	RevShareSetPaymentAsset(token [20]byte, asset string) error
	RevShareSnapshotEnabled(token [20]byte) (bool, error)
	RevShareSetSnapshotEnabled(token [20]byte, enabled bool) error
	RevShareLastSnapshotRef(token [20]byte) (uint64, error)
	RevShareSetLastSnapshotRef(token [20]byte, ref uint64) error

	// Claims.
	RevShareHolderShare(token, holder [20]byte) (uint32, error)
	RevShareSetHolderShare(token, holder [20]byte, shareBps uint32) error
	RevShareClaimCursor(token, holder [20]byte) (uint32, error)
	RevShareSetClaimCursor(token, holder [20]byte, cursor uint32) error
	RevShareClaimDelay(token [20]byte) (uint64, error)
	RevShareSetClaimDelay(token [20]byte, delaySecs uint64) error
	RevShareRoundingMode(token [20]byte) (RoundingMode, error)
	RevShareSetRoundingMode(token [20]byte, mode RoundingMode) error

	// Reporting.
	RevShareConcentrationLimit(token [20]byte) (*ConcentrationLimitConfig, bool, error)
	RevShareSetConcentrationLimit(token [20]byte, cfg *ConcentrationLimitConfig) error
	RevShareLastConcentration(token [20]byte) (uint32, bool, error)
	RevShareSetLastConcentration(token [20]byte, bps uint32) error
	RevShareAuditSummary(token [20]byte) (*AuditSummary, error)
	RevShareSetAuditSummary(token [20]byte, summary *AuditSummary) error
	RevShareReport(token [20]byte, periodID uint64) (*RevenueReport, bool, error)
	RevShareSetReport(token [20]byte, periodID uint64, report *RevenueReport) error
	RevShareMinThreshold(token [20]byte) (*big.Int, error)
	RevShareSetMinThreshold(token [20]byte, min *big.Int) error

	// Eligibility lists.
	RevShareBlacklist(token [20]byte) ([][20]byte, error)
	RevShareSetBlacklist(token [20]byte, list [][20]byte) error
	RevShareWhitelist(token [20]byte) ([][20]byte, error)
	RevShareSetWhitelist(token [20]byte, list [][20]byte) error

	// Administration.
	RevShareAdmin() ([20]byte, bool, error)
	RevShareSetAdmin(addr [20]byte) error
	RevShareSafety() ([20]byte, bool, error)
	RevShareSetSafety(addr [20]byte) error
	RevShareSetPaused(paused bool) error
	RevShareSetFrozen(frozen bool) error
	RevShareTestnetMode() (bool, error)
	RevShareSetTestnetMode(enabled bool) error
	RevSharePlatformFee() (uint32, error)
	RevShareSetPlatformFee(bps uint32) error
	RevShareMultisig() (owners [][20]byte, threshold uint32, ok bool, err error)
	RevShareSetMultisig(owners [][20]byte, threshold uint32) error
	RevShareProposal(id uint32) (*Proposal, bool, error)
	RevShareProposalPut(p *Proposal) error
	RevShareProposalCount() (uint32, error)
	RevShareSetProposalCount(count uint32) error

	// Balances.
	RevShareBalance(asset string, addr [20]byte) (*big.Int, error)
	RevShareSetBalance(asset string, addr [20]byte, amount *big.Int) error
	RevShareVaultAddress(asset string) ([20]byte, error)
}

type revshareEvent struct {
	evt *types.Event
}

func (e revshareEvent) EventType() string {
	if e.evt == nil {
		return ""
	}
	return e.evt.Type
}

func (e revshareEvent) Event() *types.Event { return e.evt }

// Engine wires the revenue-share business logic with external state and event
// emitters. All validation happens here; the state manager only stores and
// retrieves typed records.
type Engine struct {
	state   engineState
	emitter events.Emitter
	nowFn   func() uint64
}

// NewEngine creates an engine with a no-op emitter. Callers can override the
// emitter via SetEmitter.
func NewEngine() *Engine {
	return &Engine{
		emitter: events.NoopEmitter{},
		nowFn:   func() uint64 { return uint64(time.Now().Unix()) },
	}
}

// SetState configures the state backend used by the engine.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetEmitter configures the event emitter used by the engine. Passing nil
// resets the emitter to a no-op implementation.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// SetNowFunc overrides the time source used by the engine. Primarily intended
// for tests to provide deterministic timestamps.
func (e *Engine) SetNowFunc(now func() uint64) {
	if now == nil {
		e.nowFn = func() uint64 { return uint64(time.Now().Unix()) }
		return
	}
	e.nowFn = now
}

func (e *Engine) emit(event *types.Event) {
	if e == nil || e.emitter == nil || event == nil {
		return
	}
	e.emitter.Emit(revshareEvent{evt: event})
}

func (e *Engine) now() uint64 {
	if e == nil || e.nowFn == nil {
		return uint64(time.Now().Unix())
	}
	return e.nowFn()
}

// guard rejects mutations while a global gate is active. Every mutating
// operation calls it before touching any other state.
func (e *Engine) guard() error {
	if e == nil || e.state == nil {
		return errNilState
	}
	return common.Guard(e.state)
}

// requireIssuer resolves the token's current issuer and checks the caller
// against it. A wrong caller gets ErrOfferingNotFound, the same failure as a
// nonexistent token, so stale issuers learn nothing after a transfer.
func (e *Engine) requireIssuer(caller, token [20]byte) (issuer [20]byte, index uint32, err error) {
	if e == nil || e.state == nil {
		return issuer, 0, errNilState
	}
	issuer, index, ok, err := e.state.RevShareTokenIssuer(token)
	if err != nil {
		return issuer, 0, err
	}
	if !ok || issuer != caller {
		return issuer, 0, ErrOfferingNotFound
	}
	return issuer, index, nil
}

func (e *Engine) loadOffering(issuer [20]byte, index uint32) (*Offering, error) {
	offering, ok, err := e.state.RevShareOfferingGet(issuer, index)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrOfferingNotFound
	}
	return offering, nil
}

// offeringByToken resolves a token to its offering record through the reverse
// index without any caller check. Used by holder-facing reads.
func (e *Engine) offeringByToken(token [20]byte) (*Offering, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	issuer, index, ok, err := e.state.RevShareTokenIssuer(token)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrOfferingNotFound
	}
	return e.loadOffering(issuer, index)
}

// transferAsset moves amount between two accounts of the given asset. A zero
// amount is a no-op; the caller has already validated sign and asset symbol.
func (e *Engine) transferAsset(from, to [20]byte, asset string, amount *big.Int) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	amt := cloneBigInt(amount)
	if amt.Sign() == 0 {
		return nil
	}
	if amt.Sign() < 0 {
		return fmt.Errorf("%w: negative transfer", ErrInvalidAmount)
	}
	fromBal, err := e.state.RevShareBalance(asset, from)
	if err != nil {
		return err
	}
	if fromBal.Cmp(amt) < 0 {
		return ErrInsufficientBalance
	}
	toBal, err := e.state.RevShareBalance(asset, to)
	if err != nil {
		return err
	}
	if err := e.state.RevShareSetBalance(asset, from, new(big.Int).Sub(fromBal, amt)); err != nil {
		return err
	}
	return e.state.RevShareSetBalance(asset, to, new(big.Int).Add(toBal, amt))
}

// RegisterOffering records a new revenue-share arrangement for token under the
// caller's issuer index and points the token's reverse index at it. Repeat
// registrations are allowed; the reverse index always tracks the newest
// record.
func (e *Engine) RegisterOffering(issuer, token [20]byte, revenueShareBps uint32, payoutAsset string) (*Offering, error) {
	if err := e.guard(); err != nil {
		return nil, err
	}
	testnet, err := e.state.RevShareTestnetMode()
	if err != nil {
		return nil, err
	}
	if !testnet && revenueShareBps > BpsDenominator {
		return nil, ErrInvalidRevenueShareBps
	}
	normalized, err := NormalizeAsset(payoutAsset)
	if err != nil {
		return nil, err
	}
	count, err := e.state.RevShareOfferingCount(issuer)
	if err != nil {
		return nil, err
	}
	offering := &Offering{
		Issuer:          issuer,
		Token:           token,
		RevenueShareBps: revenueShareBps,
		PayoutAsset:     normalized,
	}
	if err := e.state.RevShareOfferingPut(issuer, count, offering); err != nil {
		return nil, err
	}
	if err := e.state.RevShareSetOfferingCount(issuer, count+1); err != nil {
		return nil, err
	}
	if err := e.state.RevShareSetTokenIssuer(token, issuer, count); err != nil {
		return nil, err
	}
	if err := e.state.RevShareAddIssuer(issuer); err != nil {
		return nil, err
	}
	e.emit(NewOfferingRegisteredEvent(offering))
	return offering.Clone(), nil
}

// GetOffering returns the offering for (issuer, token) when the issuer is the
// token's current issuer of record.
func (e *Engine) GetOffering(issuer, token [20]byte) (*Offering, error) {
	resolved, index, err := e.requireIssuer(issuer, token)
	if err != nil {
		return nil, err
	}
	return e.loadOffering(resolved, index)
}

// GetOfferingCount returns how many offerings the issuer has registered,
// including records moved in by accepted transfers.
func (e *Engine) GetOfferingCount(issuer [20]byte) (uint32, error) {
	if e == nil || e.state == nil {
		return 0, errNilState
	}
	return e.state.RevShareOfferingCount(issuer)
}

// GetOfferingsPage returns up to limit offerings starting at the start index
// along with the cursor for the next page. A zero limit (or one above the
// page cap) is clamped to MaxPageLimit. The next cursor equals the issuer's
// offering count once the final page has been served.
func (e *Engine) GetOfferingsPage(issuer [20]byte, start, limit uint32) ([]*Offering, uint32, error) {
	if e == nil || e.state == nil {
		return nil, 0, errNilState
	}
	if limit == 0 || limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	count, err := e.state.RevShareOfferingCount(issuer)
	if err != nil {
		return nil, 0, err
	}
	if start >= count {
		return nil, count, nil
	}
	end := start + limit
	if end > count {
		end = count
	}
	page := make([]*Offering, 0, end-start)
	for i := start; i < end; i++ {
		offering, err := e.loadOffering(issuer, i)
		if err != nil {
			return nil, 0, err
		}
		page = append(page, offering)
	}
	return page, end, nil
}

// ListOfferings returns every offering registered under the issuer in index
// order.
func (e *Engine) ListOfferings(issuer [20]byte) ([]*Offering, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	count, err := e.state.RevShareOfferingCount(issuer)
	if err != nil {
		return nil, err
	}
	offerings := make([]*Offering, 0, count)
	for i := uint32(0); i < count; i++ {
		offering, err := e.loadOffering(issuer, i)
		if err != nil {
			return nil, err
		}
		offerings = append(offerings, offering)
	}
	return offerings, nil
}

// SetOfferingMetadata attaches a free-form description to the token. The
// first write and later updates emit distinct events.
func (e *Engine) SetOfferingMetadata(caller, token [20]byte, metadata string) error {
	if err := e.guard(); err != nil {
		return err
	}
	if len(metadata) > MaxMetadataBytes {
		return ErrMetadataTooLarge
	}
	if _, _, err := e.requireIssuer(caller, token); err != nil {
		return err
	}
	_, existed, err := e.state.RevShareMetadata(token)
	if err != nil {
		return err
	}
	if err := e.state.RevShareSetMetadata(token, metadata); err != nil {
		return err
	}
	eventType := EventTypeMetadataSet
	if existed {
		eventType = EventTypeMetadataUpdated
	}
	e.emit(newEvent(eventType, map[string]string{
		"issuer": addrHex(caller),
		"token":  addrHex(token),
	}))
	return nil
}

// GetOfferingMetadata returns the token's metadata string; missing metadata
// reads as empty.
func (e *Engine) GetOfferingMetadata(token [20]byte) (string, error) {
	if e == nil || e.state == nil {
		return "", errNilState
	}
	metadata, _, err := e.state.RevShareMetadata(token)
	return metadata, err
}
