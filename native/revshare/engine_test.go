package revshare_test

import (
	"errors"
	"math/big"
	"testing"

	"revora/core/events"
	"revora/core/state"
	"revora/native/common"
	"revora/native/revshare"
	"revora/storage"
)

var (
	adminAddr  = addr(0xA0)
	safetyAddr = addr(0xA1)
	issuerAddr = addr(0x01)
	tokenAddr  = addr(0x02)
	holderAddr = addr(0x03)
)

func addr(b byte) [20]byte {
	var a [20]byte
	a[19] = b
	return a
}

type testEnv struct {
	engine   *revshare.Engine
	manager  *state.Manager
	recorder *events.Recorder
	now      uint64
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		engine:   revshare.NewEngine(),
		manager:  state.NewManager(storage.NewMemDB()),
		recorder: events.NewRecorder(),
		now:      1_700_000_000,
	}
	env.engine.SetState(env.manager)
	env.engine.SetEmitter(env.recorder)
	env.engine.SetNowFunc(func() uint64 { return env.now })
	if err := env.engine.Initialize(adminAddr, safetyAddr); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	return env
}

func (env *testEnv) fund(t *testing.T, asset string, to [20]byte, amount int64) {
	t.Helper()
	if err := env.engine.Mint(adminAddr, asset, to, big.NewInt(amount)); err != nil {
		t.Fatalf("mint %s to %x: %v", asset, to, err)
	}
}

func (env *testEnv) register(t *testing.T, issuer, token [20]byte, bps uint32) {
	t.Helper()
	if _, err := env.engine.RegisterOffering(issuer, token, bps, "USDC"); err != nil {
		t.Fatalf("register offering: %v", err)
	}
}

func (env *testEnv) balance(t *testing.T, asset string, of [20]byte) *big.Int {
	t.Helper()
	balance, err := env.engine.BalanceOf(asset, of)
	if err != nil {
		t.Fatalf("balance of %x: %v", of, err)
	}
	return balance
}

func TestRegisterOfferingValidatesBps(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.engine.RegisterOffering(issuerAddr, tokenAddr, 10_001, "USDC"); !errors.Is(err, revshare.ErrInvalidRevenueShareBps) {
		t.Fatalf("expected bps error, got %v", err)
	}
	if err := env.engine.SetTestnetMode(adminAddr, true); err != nil {
		t.Fatalf("testnet mode: %v", err)
	}
	if _, err := env.engine.RegisterOffering(issuerAddr, tokenAddr, 10_001, "USDC"); err != nil {
		t.Fatalf("testnet mode must skip bps validation: %v", err)
	}
}

func TestRegisterOfferingNormalizesAsset(t *testing.T) {
	env := newTestEnv(t)
	offering, err := env.engine.RegisterOffering(issuerAddr, tokenAddr, 2500, "  usdc ")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if offering.PayoutAsset != "USDC" {
		t.Fatalf("expected normalized asset, got %q", offering.PayoutAsset)
	}
	if _, err := env.engine.RegisterOffering(issuerAddr, addr(0x22), 2500, ""); !errors.Is(err, revshare.ErrInvalidAsset) {
		t.Fatalf("expected asset error, got %v", err)
	}
}

func TestLifecycleDepositAndClaim(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, issuerAddr, tokenAddr, 2500)
	env.fund(t, "USDC", issuerAddr, 1_000_000)

	if err := env.engine.SetHolderShare(issuerAddr, tokenAddr, holderAddr, 2500); err != nil {
		t.Fatalf("set holder share: %v", err)
	}
	if err := env.engine.DepositRevenue(issuerAddr, tokenAddr, "USDC", big.NewInt(1_000_000), 1); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if got := env.balance(t, "USDC", issuerAddr); got.Sign() != 0 {
		t.Fatalf("issuer balance after deposit: %s", got)
	}

	claimable, err := env.engine.GetClaimable(tokenAddr, holderAddr)
	if err != nil {
		t.Fatalf("claimable: %v", err)
	}
	if claimable.Cmp(big.NewInt(250_000)) != 0 {
		t.Fatalf("expected 250000 claimable, got %s", claimable)
	}

	payout, err := env.engine.Claim(holderAddr, tokenAddr, 0)
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if payout.Cmp(big.NewInt(250_000)) != 0 {
		t.Fatalf("expected 250000 payout, got %s", payout)
	}
	if got := env.balance(t, "USDC", holderAddr); got.Cmp(big.NewInt(250_000)) != 0 {
		t.Fatalf("holder balance after claim: %s", got)
	}

	// A repeat claim is benign and moves nothing.
	payout, err = env.engine.Claim(holderAddr, tokenAddr, 0)
	if err != nil {
		t.Fatalf("repeat claim: %v", err)
	}
	if payout.Sign() != 0 {
		t.Fatalf("repeat claim paid %s", payout)
	}
	if got := env.balance(t, "USDC", holderAddr); got.Cmp(big.NewInt(250_000)) != 0 {
		t.Fatalf("holder balance changed on repeat claim: %s", got)
	}
	claims := env.recorder.ByType(revshare.EventTypeClaimed)
	if len(claims) != 1 {
		t.Fatalf("expected a single claim event, got %d", len(claims))
	}
}

func TestDuplicatePeriodRejected(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, issuerAddr, tokenAddr, 2500)
	env.fund(t, "USDC", issuerAddr, 2_000)
	if err := env.engine.DepositRevenue(issuerAddr, tokenAddr, "USDC", big.NewInt(1_000), 1); err != nil {
		t.Fatalf("first deposit: %v", err)
	}
	if err := env.engine.DepositRevenue(issuerAddr, tokenAddr, "USDC", big.NewInt(1_000), 1); !errors.Is(err, revshare.ErrPeriodAlreadyDeposited) {
		t.Fatalf("expected duplicate period error, got %v", err)
	}
	if got := env.balance(t, "USDC", issuerAddr); got.Cmp(big.NewInt(1_000)) != 0 {
		t.Fatalf("failed deposit must not move funds: %s", got)
	}
}

func TestPaymentAssetLockedByFirstDeposit(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, issuerAddr, tokenAddr, 2500)
	env.fund(t, "USDC", issuerAddr, 1_000)
	env.fund(t, "EURC", issuerAddr, 1_000)
	if err := env.engine.DepositRevenue(issuerAddr, tokenAddr, "USDC", big.NewInt(500), 1); err != nil {
		t.Fatalf("first deposit: %v", err)
	}
	if err := env.engine.DepositRevenue(issuerAddr, tokenAddr, "EURC", big.NewInt(500), 2); !errors.Is(err, revshare.ErrPaymentAssetMismatch) {
		t.Fatalf("expected asset mismatch, got %v", err)
	}
}

func TestDepositValidation(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, issuerAddr, tokenAddr, 2500)
	env.fund(t, "USDC", issuerAddr, 100)
	if err := env.engine.DepositRevenue(issuerAddr, tokenAddr, "USDC", big.NewInt(0), 1); !errors.Is(err, revshare.ErrInvalidAmount) {
		t.Fatalf("zero amount: %v", err)
	}
	if err := env.engine.DepositRevenue(issuerAddr, tokenAddr, "USDC", big.NewInt(10), 0); !errors.Is(err, revshare.ErrInvalidPeriodID) {
		t.Fatalf("zero period id: %v", err)
	}
	if err := env.engine.DepositRevenue(issuerAddr, tokenAddr, "USDC", big.NewInt(1_000), 1); !errors.Is(err, revshare.ErrInsufficientBalance) {
		t.Fatalf("expected insufficient balance, got %v", err)
	}
	if err := env.engine.DepositRevenue(addr(0x55), tokenAddr, "USDC", big.NewInt(10), 1); !errors.Is(err, revshare.ErrOfferingNotFound) {
		t.Fatalf("non-issuer deposit: %v", err)
	}
}

func TestClaimsFollowDepositOrderNotPeriodOrder(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, issuerAddr, tokenAddr, 2500)
	env.fund(t, "USDC", issuerAddr, 3_000)
	for _, periodID := range []uint64{5, 3, 9} {
		if err := env.engine.DepositRevenue(issuerAddr, tokenAddr, "USDC", big.NewInt(1_000), periodID); err != nil {
			t.Fatalf("deposit period %d: %v", periodID, err)
		}
	}
	pending, err := env.engine.GetPendingPeriods(tokenAddr, holderAddr)
	if err != nil {
		t.Fatalf("pending periods: %v", err)
	}
	want := []uint64{5, 3, 9}
	if len(pending) != len(want) {
		t.Fatalf("pending = %v", pending)
	}
	for i := range want {
		if pending[i] != want[i] {
			t.Fatalf("pending[%d] = %d, want %d", i, pending[i], want[i])
		}
	}
}

func TestClaimDelayStopsNeverSkips(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, issuerAddr, tokenAddr, 2500)
	env.fund(t, "USDC", issuerAddr, 2_000)
	if err := env.engine.SetHolderShare(issuerAddr, tokenAddr, holderAddr, 10_000); err != nil {
		t.Fatalf("share: %v", err)
	}
	if err := env.engine.SetClaimDelay(issuerAddr, tokenAddr, 3600); err != nil {
		t.Fatalf("delay: %v", err)
	}
	if err := env.engine.DepositRevenue(issuerAddr, tokenAddr, "USDC", big.NewInt(1_000), 1); err != nil {
		t.Fatalf("deposit 1: %v", err)
	}
	env.now += 7200
	if err := env.engine.DepositRevenue(issuerAddr, tokenAddr, "USDC", big.NewInt(1_000), 2); err != nil {
		t.Fatalf("deposit 2: %v", err)
	}

	// Period 1 matured; period 2 is still inside the window. The walk stops
	// at period 2 even though only period 1 pays out.
	payout, err := env.engine.Claim(holderAddr, tokenAddr, 0)
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if payout.Cmp(big.NewInt(1_000)) != 0 {
		t.Fatalf("expected 1000 payout, got %s", payout)
	}

	env.now += 3600
	payout, err = env.engine.Claim(holderAddr, tokenAddr, 0)
	if err != nil {
		t.Fatalf("second claim: %v", err)
	}
	if payout.Cmp(big.NewInt(1_000)) != 0 {
		t.Fatalf("expected second 1000 payout, got %s", payout)
	}
}

func TestClaimRequiresShare(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, issuerAddr, tokenAddr, 2500)
	env.fund(t, "USDC", issuerAddr, 1_000)
	if err := env.engine.DepositRevenue(issuerAddr, tokenAddr, "USDC", big.NewInt(1_000), 1); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if _, err := env.engine.Claim(holderAddr, tokenAddr, 0); !errors.Is(err, revshare.ErrNoPendingClaims) {
		t.Fatalf("expected no-pending-claims, got %v", err)
	}
}

func TestBlacklistBlocksClaim(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, issuerAddr, tokenAddr, 2500)
	env.fund(t, "USDC", issuerAddr, 1_000)
	if err := env.engine.SetHolderShare(issuerAddr, tokenAddr, holderAddr, 5_000); err != nil {
		t.Fatalf("share: %v", err)
	}
	if err := env.engine.DepositRevenue(issuerAddr, tokenAddr, "USDC", big.NewInt(1_000), 1); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if err := env.engine.AddToBlacklist(issuerAddr, tokenAddr, holderAddr); err != nil {
		t.Fatalf("blacklist: %v", err)
	}
	if _, err := env.engine.Claim(holderAddr, tokenAddr, 0); !errors.Is(err, revshare.ErrHolderBlacklisted) {
		t.Fatalf("expected blacklist error, got %v", err)
	}
	if err := env.engine.RemoveFromBlacklist(adminAddr, tokenAddr, holderAddr); err != nil {
		t.Fatalf("unblacklist as admin: %v", err)
	}
	payout, err := env.engine.Claim(holderAddr, tokenAddr, 0)
	if err != nil {
		t.Fatalf("claim after removal: %v", err)
	}
	if payout.Cmp(big.NewInt(500)) != 0 {
		t.Fatalf("expected 500 payout, got %s", payout)
	}
}

func TestSelfTransfer(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, issuerAddr, tokenAddr, 2500)
	if err := env.engine.ProposeTransfer(issuerAddr, tokenAddr, issuerAddr); err != nil {
		t.Fatalf("propose self transfer: %v", err)
	}
	if err := env.engine.AcceptTransfer(issuerAddr, tokenAddr); err != nil {
		t.Fatalf("accept self transfer: %v", err)
	}
	issuer, err := env.engine.CurrentIssuer(tokenAddr)
	if err != nil || issuer != issuerAddr {
		t.Fatalf("issuer after self transfer: %x err=%v", issuer, err)
	}
	count, _ := env.engine.GetOfferingCount(issuerAddr)
	if count != 1 {
		t.Fatalf("offering count after self transfer: %d", count)
	}
}

func TestAuthorityHandoff(t *testing.T) {
	env := newTestEnv(t)
	newIssuer := addr(0x44)
	otherToken := addr(0x45)
	env.register(t, issuerAddr, tokenAddr, 2500)
	env.register(t, issuerAddr, otherToken, 1000)

	if err := env.engine.ProposeTransfer(issuerAddr, tokenAddr, newIssuer); err != nil {
		t.Fatalf("propose: %v", err)
	}
	if err := env.engine.ProposeTransfer(issuerAddr, tokenAddr, newIssuer); !errors.Is(err, revshare.ErrTransferPending) {
		t.Fatalf("second propose: %v", err)
	}
	if err := env.engine.AcceptTransfer(addr(0x99), tokenAddr); !errors.Is(err, revshare.ErrUnauthorizedTransferAccept) {
		t.Fatalf("stranger accept: %v", err)
	}
	if err := env.engine.AcceptTransfer(newIssuer, tokenAddr); err != nil {
		t.Fatalf("accept: %v", err)
	}

	// Old issuer is locked out indistinguishably from nonexistence.
	if err := env.engine.SetHolderShare(issuerAddr, tokenAddr, holderAddr, 100); !errors.Is(err, revshare.ErrOfferingNotFound) {
		t.Fatalf("old issuer must be locked out, got %v", err)
	}
	if err := env.engine.SetHolderShare(newIssuer, tokenAddr, holderAddr, 100); err != nil {
		t.Fatalf("new issuer op: %v", err)
	}

	oldCount, _ := env.engine.GetOfferingCount(issuerAddr)
	newCount, _ := env.engine.GetOfferingCount(newIssuer)
	if oldCount != 1 || newCount != 1 {
		t.Fatalf("counts after handoff: old=%d new=%d", oldCount, newCount)
	}
	// The swapped-in record must still resolve through the reverse index.
	if _, err := env.engine.GetOffering(issuerAddr, otherToken); err != nil {
		t.Fatalf("swapped offering lookup: %v", err)
	}
}

func TestCancelTransferOnlyCurrentIssuer(t *testing.T) {
	env := newTestEnv(t)
	newIssuer := addr(0x44)
	env.register(t, issuerAddr, tokenAddr, 2500)
	if err := env.engine.ProposeTransfer(issuerAddr, tokenAddr, newIssuer); err != nil {
		t.Fatalf("propose: %v", err)
	}
	if err := env.engine.CancelTransfer(newIssuer, tokenAddr); !errors.Is(err, revshare.ErrOfferingNotFound) {
		t.Fatalf("proposed issuer cancel: %v", err)
	}
	if err := env.engine.CancelTransfer(issuerAddr, tokenAddr); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if err := env.engine.AcceptTransfer(newIssuer, tokenAddr); !errors.Is(err, revshare.ErrNoTransferPending) {
		t.Fatalf("accept after cancel: %v", err)
	}
}

func TestConcentrationEnforcement(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, issuerAddr, tokenAddr, 2500)
	if err := env.engine.SetConcentrationLimit(issuerAddr, tokenAddr, 3000, true); err != nil {
		t.Fatalf("set limit: %v", err)
	}
	if err := env.engine.ReportConcentration(issuerAddr, tokenAddr, 4500); err != nil {
		t.Fatalf("report concentration: %v", err)
	}
	if warnings := env.recorder.ByType(revshare.EventTypeConcentrationWarning); len(warnings) != 1 {
		t.Fatalf("expected one warning event, got %d", len(warnings))
	}
	err := env.engine.ReportRevenue(issuerAddr, tokenAddr, "USDC", big.NewInt(1_000), 1, false)
	if !errors.Is(err, revshare.ErrConcentrationLimitExceeded) {
		t.Fatalf("expected concentration rejection, got %v", err)
	}

	// Dropping below the limit unblocks reporting.
	if err := env.engine.ReportConcentration(issuerAddr, tokenAddr, 2000); err != nil {
		t.Fatalf("report lower concentration: %v", err)
	}
	if err := env.engine.ReportRevenue(issuerAddr, tokenAddr, "USDC", big.NewInt(1_000), 1, false); err != nil {
		t.Fatalf("report revenue: %v", err)
	}

	// Testnet mode skips enforcement entirely.
	if err := env.engine.ReportConcentration(issuerAddr, tokenAddr, 9000); err != nil {
		t.Fatalf("report high concentration: %v", err)
	}
	if err := env.engine.SetTestnetMode(adminAddr, true); err != nil {
		t.Fatalf("testnet: %v", err)
	}
	if err := env.engine.ReportRevenue(issuerAddr, tokenAddr, "USDC", big.NewInt(1_000), 2, false); err != nil {
		t.Fatalf("testnet report: %v", err)
	}
}

func TestReportRevenueAuditTrail(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, issuerAddr, tokenAddr, 2500)
	if err := env.engine.ReportRevenue(issuerAddr, tokenAddr, "USDC", big.NewInt(5_000), 1, false); err != nil {
		t.Fatalf("report: %v", err)
	}
	summary, err := env.engine.GetAuditSummary(issuerAddr, tokenAddr)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.TotalRevenue.Cmp(big.NewInt(5_000)) != 0 || summary.ReportCount != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	// A repeat without override is acknowledged but recorded nowhere.
	if err := env.engine.ReportRevenue(issuerAddr, tokenAddr, "USDC", big.NewInt(9_000), 1, false); err != nil {
		t.Fatalf("repeat report: %v", err)
	}
	if rejected := env.recorder.ByType(revshare.EventTypeReportRejected); len(rejected) != 1 {
		t.Fatalf("expected one rejected event, got %d", len(rejected))
	}
	amount, ok, _ := env.engine.GetRevenueByPeriod(tokenAddr, 1)
	if !ok || amount.Cmp(big.NewInt(5_000)) != 0 {
		t.Fatalf("period amount after rejected repeat: %s ok=%v", amount, ok)
	}

	// Override replaces the per-period amount; the summary stays additive.
	if err := env.engine.ReportRevenue(issuerAddr, tokenAddr, "USDC", big.NewInt(9_000), 1, true); err != nil {
		t.Fatalf("override report: %v", err)
	}
	amount, ok, _ = env.engine.GetRevenueByPeriod(tokenAddr, 1)
	if !ok || amount.Cmp(big.NewInt(9_000)) != 0 {
		t.Fatalf("period amount after override: %s ok=%v", amount, ok)
	}
	summary, _ = env.engine.GetAuditSummary(issuerAddr, tokenAddr)
	if summary.ReportCount != 1 {
		t.Fatalf("override must not inflate report count: %d", summary.ReportCount)
	}

	if err := env.engine.ReportRevenue(issuerAddr, tokenAddr, "EURC", big.NewInt(1), 2, false); !errors.Is(err, revshare.ErrPayoutAssetMismatch) {
		t.Fatalf("wrong payout asset: %v", err)
	}
}

func TestMinRevenueThreshold(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, issuerAddr, tokenAddr, 2500)
	if err := env.engine.SetMinRevenueThreshold(issuerAddr, tokenAddr, big.NewInt(1_000)); err != nil {
		t.Fatalf("set threshold: %v", err)
	}
	if err := env.engine.ReportRevenue(issuerAddr, tokenAddr, "USDC", big.NewInt(999), 1, false); err != nil {
		t.Fatalf("below-threshold report: %v", err)
	}
	if below := env.recorder.ByType(revshare.EventTypeBelowThreshold); len(below) != 1 {
		t.Fatalf("expected below-threshold event, got %d", len(below))
	}
	summary, _ := env.engine.GetAuditSummary(issuerAddr, tokenAddr)
	if summary.ReportCount != 0 {
		t.Fatalf("below-threshold report must not be recorded")
	}
	if _, ok, _ := env.engine.GetRevenueByPeriod(tokenAddr, 1); ok {
		t.Fatalf("below-threshold report must not hit the index")
	}
}

func TestRevenueRange(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, issuerAddr, tokenAddr, 2500)
	for periodID, amount := range map[uint64]int64{1: 100, 2: 200, 4: 400} {
		if err := env.engine.ReportRevenue(issuerAddr, tokenAddr, "USDC", big.NewInt(amount), periodID, false); err != nil {
			t.Fatalf("report %d: %v", periodID, err)
		}
	}
	total, err := env.engine.GetRevenueRange(tokenAddr, 1, 4)
	if err != nil {
		t.Fatalf("range: %v", err)
	}
	if total.Cmp(big.NewInt(700)) != 0 {
		t.Fatalf("range total = %s", total)
	}
	if _, err := env.engine.GetRevenueRange(tokenAddr, 3, 1); !errors.Is(err, revshare.ErrInvalidPeriodID) {
		t.Fatalf("inverted range: %v", err)
	}
}

func TestPauseAndFreezeGates(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, issuerAddr, tokenAddr, 2500)
	env.fund(t, "USDC", issuerAddr, 1_000)

	if err := env.engine.Pause(safetyAddr); err != nil {
		t.Fatalf("pause by safety: %v", err)
	}
	if err := env.engine.DepositRevenue(issuerAddr, tokenAddr, "USDC", big.NewInt(100), 1); !errors.Is(err, common.ErrPaused) {
		t.Fatalf("expected paused, got %v", err)
	}
	// Reads stay open while paused.
	if _, err := env.engine.GetOffering(issuerAddr, tokenAddr); err != nil {
		t.Fatalf("read while paused: %v", err)
	}
	if err := env.engine.Unpause(adminAddr); err != nil {
		t.Fatalf("unpause: %v", err)
	}
	if err := env.engine.DepositRevenue(issuerAddr, tokenAddr, "USDC", big.NewInt(100), 1); err != nil {
		t.Fatalf("deposit after unpause: %v", err)
	}

	if err := env.engine.Freeze(adminAddr); err != nil {
		t.Fatalf("freeze: %v", err)
	}
	if err := env.engine.DepositRevenue(issuerAddr, tokenAddr, "USDC", big.NewInt(100), 2); !errors.Is(err, common.ErrFrozen) {
		t.Fatalf("expected frozen, got %v", err)
	}
	if err := env.engine.Unpause(adminAddr); !errors.Is(err, common.ErrFrozen) {
		t.Fatalf("freeze must be permanent, got %v", err)
	}
}

func TestPauseAuthorization(t *testing.T) {
	env := newTestEnv(t)
	if err := env.engine.Pause(holderAddr); !errors.Is(err, revshare.ErrNotAuthorized) {
		t.Fatalf("stranger pause: %v", err)
	}
	if err := env.engine.Freeze(safetyAddr); !errors.Is(err, revshare.ErrNotAuthorized) {
		t.Fatalf("safety freeze: %v", err)
	}
}

func TestInitializeOnce(t *testing.T) {
	env := newTestEnv(t)
	if err := env.engine.Initialize(adminAddr, safetyAddr); !errors.Is(err, revshare.ErrAlreadyInitialized) {
		t.Fatalf("second initialize: %v", err)
	}
}

func TestSnapshotDeposits(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, issuerAddr, tokenAddr, 2500)
	env.fund(t, "USDC", issuerAddr, 3_000)

	err := env.engine.DepositRevenueWithSnapshot(issuerAddr, tokenAddr, "USDC", big.NewInt(1_000), 1, 10)
	if !errors.Is(err, revshare.ErrSnapshotNotEnabled) {
		t.Fatalf("snapshot deposit without opt-in: %v", err)
	}
	if err := env.engine.SetSnapshotConfig(issuerAddr, tokenAddr, true); err != nil {
		t.Fatalf("enable snapshots: %v", err)
	}
	if err := env.engine.DepositRevenueWithSnapshot(issuerAddr, tokenAddr, "USDC", big.NewInt(1_000), 1, 10); err != nil {
		t.Fatalf("snapshot deposit: %v", err)
	}
	err = env.engine.DepositRevenueWithSnapshot(issuerAddr, tokenAddr, "USDC", big.NewInt(1_000), 2, 10)
	if !errors.Is(err, revshare.ErrOutdatedSnapshot) {
		t.Fatalf("stale snapshot ref: %v", err)
	}
	if err := env.engine.DepositRevenueWithSnapshot(issuerAddr, tokenAddr, "USDC", big.NewInt(1_000), 2, 11); err != nil {
		t.Fatalf("next snapshot deposit: %v", err)
	}
	ref, _ := env.engine.GetLastSnapshotRef(tokenAddr)
	if ref != 11 {
		t.Fatalf("last snapshot ref = %d", ref)
	}
}

func TestOfferingPagination(t *testing.T) {
	env := newTestEnv(t)
	for i := byte(0); i < 25; i++ {
		env.register(t, issuerAddr, addr(0x80+i), 100)
	}
	page, next, err := env.engine.GetOfferingsPage(issuerAddr, 0, 100)
	if err != nil {
		t.Fatalf("page: %v", err)
	}
	if len(page) != 20 || next != 20 {
		t.Fatalf("page len=%d next=%d", len(page), next)
	}
	page, next, err = env.engine.GetOfferingsPage(issuerAddr, next, 0)
	if err != nil {
		t.Fatalf("second page: %v", err)
	}
	if len(page) != 5 || next != 25 {
		t.Fatalf("second page len=%d next=%d", len(page), next)
	}
}

func TestOfferingMetadata(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, issuerAddr, tokenAddr, 2500)
	long := make([]byte, revshare.MaxMetadataBytes+1)
	if err := env.engine.SetOfferingMetadata(issuerAddr, tokenAddr, string(long)); !errors.Is(err, revshare.ErrMetadataTooLarge) {
		t.Fatalf("oversized metadata: %v", err)
	}
	if err := env.engine.SetOfferingMetadata(issuerAddr, tokenAddr, "series A revenue note"); err != nil {
		t.Fatalf("set metadata: %v", err)
	}
	if err := env.engine.SetOfferingMetadata(issuerAddr, tokenAddr, "series A revenue note, amended"); err != nil {
		t.Fatalf("update metadata: %v", err)
	}
	if set := env.recorder.ByType(revshare.EventTypeMetadataSet); len(set) != 1 {
		t.Fatalf("expected one set event, got %d", len(set))
	}
	if updated := env.recorder.ByType(revshare.EventTypeMetadataUpdated); len(updated) != 1 {
		t.Fatalf("expected one updated event, got %d", len(updated))
	}
	metadata, err := env.engine.GetOfferingMetadata(tokenAddr)
	if err != nil || metadata != "series A revenue note, amended" {
		t.Fatalf("metadata = %q err=%v", metadata, err)
	}
}

func TestPlatformFee(t *testing.T) {
	env := newTestEnv(t)
	if err := env.engine.SetPlatformFee(adminAddr, 5_001); !errors.Is(err, revshare.ErrInvalidFeeBps) {
		t.Fatalf("over-cap fee: %v", err)
	}
	if err := env.engine.SetPlatformFee(adminAddr, 250); err != nil {
		t.Fatalf("set fee: %v", err)
	}
	fee, err := env.engine.CalculatePlatformFee(big.NewInt(1_000_000))
	if err != nil {
		t.Fatalf("calculate fee: %v", err)
	}
	if fee.Cmp(big.NewInt(25_000)) != 0 {
		t.Fatalf("fee = %s", fee)
	}
}

func TestMultisigFlow(t *testing.T) {
	env := newTestEnv(t)
	ownerA, ownerB, ownerC := addr(0x61), addr(0x62), addr(0x63)
	owners := [][20]byte{ownerA, ownerB, ownerC}

	if err := env.engine.InitMultisig(adminAddr, owners, 4); !errors.Is(err, revshare.ErrInvalidThreshold) {
		t.Fatalf("bad threshold: %v", err)
	}
	if err := env.engine.InitMultisig(adminAddr, owners, 2); err != nil {
		t.Fatalf("init multisig: %v", err)
	}
	if err := env.engine.InitMultisig(adminAddr, owners, 2); !errors.Is(err, revshare.ErrMultisigAlreadyInitialized) {
		t.Fatalf("second init: %v", err)
	}

	// Direct freeze and admin rotation are now disabled.
	if err := env.engine.Freeze(adminAddr); !errors.Is(err, revshare.ErrMultisigEnabled) {
		t.Fatalf("direct freeze: %v", err)
	}
	if err := env.engine.SetAdmin(adminAddr, ownerA); !errors.Is(err, revshare.ErrMultisigEnabled) {
		t.Fatalf("direct set admin: %v", err)
	}

	id, err := env.engine.ProposeAction(ownerA, revshare.ProposalAction{Kind: revshare.ProposalFreeze})
	if err != nil {
		t.Fatalf("propose: %v", err)
	}
	if _, err := env.engine.ProposeAction(holderAddr, revshare.ProposalAction{Kind: revshare.ProposalFreeze}); !errors.Is(err, revshare.ErrNotOwner) {
		t.Fatalf("non-owner propose: %v", err)
	}
	if err := env.engine.ExecuteAction(ownerA, id); !errors.Is(err, revshare.ErrThresholdNotMet) {
		t.Fatalf("premature execute: %v", err)
	}
	if err := env.engine.ApproveAction(ownerA, id); err != nil {
		t.Fatalf("idempotent self approve: %v", err)
	}
	if err := env.engine.ExecuteAction(ownerA, id); !errors.Is(err, revshare.ErrThresholdNotMet) {
		t.Fatalf("execute after duplicate approval: %v", err)
	}
	if err := env.engine.ApproveAction(ownerB, id); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if err := env.engine.ExecuteAction(ownerC, id); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if err := env.engine.ExecuteAction(ownerC, id); !errors.Is(err, common.ErrFrozen) {
		t.Fatalf("post-freeze execute: %v", err)
	}

	proposal, ok, _ := env.engine.GetProposal(id)
	if !ok || !proposal.Executed {
		t.Fatalf("proposal not marked executed: %+v", proposal)
	}
}

func TestSimulateDistribution(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, issuerAddr, tokenAddr, 2500)
	if err := env.engine.SetRoundingMode(issuerAddr, tokenAddr, revshare.RoundingHalfUp); err != nil {
		t.Fatalf("rounding mode: %v", err)
	}
	result, err := env.engine.SimulateDistribution(issuerAddr, tokenAddr, big.NewInt(1_001), []revshare.HolderShareInput{
		{Holder: addr(0x71), ShareBps: 5_000},
		{Holder: addr(0x72), ShareBps: 2_500},
	})
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}
	// 1001*0.5 = 500.5 rounds to 501; 1001*0.25 = 250.25 rounds to 250.
	if result.Payouts[0].Amount.Cmp(big.NewInt(501)) != 0 {
		t.Fatalf("payout 0 = %s", result.Payouts[0].Amount)
	}
	if result.Payouts[1].Amount.Cmp(big.NewInt(250)) != 0 {
		t.Fatalf("payout 1 = %s", result.Payouts[1].Amount)
	}
	if result.TotalDistributed.Cmp(big.NewInt(751)) != 0 {
		t.Fatalf("total = %s", result.TotalDistributed)
	}
}

func TestAggregation(t *testing.T) {
	env := newTestEnv(t)
	otherToken := addr(0x46)
	env.register(t, issuerAddr, tokenAddr, 2500)
	env.register(t, issuerAddr, otherToken, 1000)
	env.fund(t, "USDC", issuerAddr, 5_000)

	if err := env.engine.DepositRevenue(issuerAddr, tokenAddr, "USDC", big.NewInt(2_000), 1); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if err := env.engine.ReportRevenue(issuerAddr, otherToken, "USDC", big.NewInt(3_000), 1, false); err != nil {
		t.Fatalf("report: %v", err)
	}

	metrics, err := env.engine.IssuerAggregation(issuerAddr)
	if err != nil {
		t.Fatalf("issuer aggregation: %v", err)
	}
	if metrics.OfferingCount != 2 {
		t.Fatalf("offering count = %d", metrics.OfferingCount)
	}
	if metrics.TotalDepositedRevenue.Cmp(big.NewInt(2_000)) != 0 {
		t.Fatalf("deposited = %s", metrics.TotalDepositedRevenue)
	}
	if metrics.TotalReportedRevenue.Cmp(big.NewInt(3_000)) != 0 {
		t.Fatalf("reported = %s", metrics.TotalReportedRevenue)
	}

	platform, err := env.engine.PlatformAggregation()
	if err != nil {
		t.Fatalf("platform aggregation: %v", err)
	}
	if platform.TotalReportCount != 1 || platform.OfferingCount != 2 {
		t.Fatalf("platform metrics: %+v", platform)
	}
}
