package revshare

import (
	"encoding/hex"
	"math/big"
	"strconv"
	"strings"

	"revora/core/types"
)

const (
	EventTypeInitialized     = "revshare.initialized"
	EventTypePaused          = "revshare.paused"
	EventTypeUnpaused        = "revshare.unpaused"
	EventTypeFrozen          = "revshare.frozen"
	EventTypeTestnetMode     = "revshare.testnet_mode"
	EventTypePlatformFeeSet  = "revshare.platform_fee_set"
	EventTypeProposalCreated = "revshare.proposal_created"
	EventTypeProposalApprove = "revshare.proposal_approved"
	EventTypeProposalExecute = "revshare.proposal_executed"

	EventTypeOfferingRegistered = "revshare.offering_registered"
	EventTypeMetadataSet        = "revshare.metadata_set"
	EventTypeMetadataUpdated    = "revshare.metadata_updated"

	EventTypeTransferProposed  = "revshare.transfer_proposed"
	EventTypeTransferAccepted  = "revshare.transfer_accepted"
	EventTypeTransferCancelled = "revshare.transfer_cancelled"

	EventTypeRevenueDeposited = "revshare.revenue_deposited"
	EventTypeSnapshotDeposit  = "revshare.snapshot_deposit"
	EventTypeSnapshotConfig   = "revshare.snapshot_config"
	EventTypeHolderShareSet   = "revshare.holder_share_set"
	EventTypeClaimDelaySet    = "revshare.claim_delay_set"
	EventTypeRoundingModeSet  = "revshare.rounding_mode_set"
	EventTypeClaimed          = "revshare.claimed"

	EventTypeConcentrationWarning = "revshare.concentration_warning"
	EventTypeRevenueReported      = "revshare.revenue_reported"
	EventTypeReportOverridden     = "revshare.report_overridden"
	EventTypeReportRejected       = "revshare.report_rejected"
	EventTypeBelowThreshold       = "revshare.report_below_threshold"
	EventTypeMinThresholdSet      = "revshare.min_threshold_set"

	EventTypeBlacklistAdded    = "revshare.blacklist_added"
	EventTypeBlacklistRemoved  = "revshare.blacklist_removed"
	EventTypeWhitelistAdded    = "revshare.whitelist_added"
	EventTypeWhitelistRemoved  = "revshare.whitelist_removed"
	EventTypeDistributionCalcd = "revshare.distribution_calculated"
)

func addrHex(addr [20]byte) string {
	return hex.EncodeToString(addr[:])
}

func amountString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

func addrListString(addrs [][20]byte) string {
	parts := make([]string, 0, len(addrs))
	for _, a := range addrs {
		parts = append(parts, addrHex(a))
	}
	return strings.Join(parts, ",")
}

func newEvent(eventType string, attrs map[string]string) *types.Event {
	if attrs == nil {
		attrs = make(map[string]string)
	}
	return &types.Event{Type: eventType, Attributes: attrs}
}

// NewOfferingRegisteredEvent returns the canonical payload for a newly
// registered offering.
func NewOfferingRegisteredEvent(o *Offering) *types.Event {
	if o == nil {
		return newEvent(EventTypeOfferingRegistered, nil)
	}
	return newEvent(EventTypeOfferingRegistered, map[string]string{
		"issuer":          addrHex(o.Issuer),
		"token":           addrHex(o.Token),
		"revenueShareBps": strconv.FormatUint(uint64(o.RevenueShareBps), 10),
		"payoutAsset":     o.PayoutAsset,
	})
}

// NewTransferProposedEvent is emitted when the current issuer opens a
// two-step control transfer.
func NewTransferProposedEvent(token, currentIssuer, newIssuer [20]byte) *types.Event {
	return newEvent(EventTypeTransferProposed, map[string]string{
		"token":     addrHex(token),
		"issuer":    addrHex(currentIssuer),
		"newIssuer": addrHex(newIssuer),
	})
}

// NewTransferAcceptedEvent is emitted when a pending transfer completes.
func NewTransferAcceptedEvent(token, oldIssuer, newIssuer [20]byte) *types.Event {
	return newEvent(EventTypeTransferAccepted, map[string]string{
		"token":     addrHex(token),
		"oldIssuer": addrHex(oldIssuer),
		"newIssuer": addrHex(newIssuer),
	})
}

// NewTransferCancelledEvent is emitted when the current issuer withdraws a
// pending transfer.
func NewTransferCancelledEvent(token, currentIssuer, proposed [20]byte) *types.Event {
	return newEvent(EventTypeTransferCancelled, map[string]string{
		"token":     addrHex(token),
		"issuer":    addrHex(currentIssuer),
		"newIssuer": addrHex(proposed),
	})
}

// NewRevenueDepositedEvent is emitted for every accepted period deposit.
func NewRevenueDepositedEvent(issuer, token [20]byte, asset string, amount *big.Int, periodID uint64) *types.Event {
	return newEvent(EventTypeRevenueDeposited, map[string]string{
		"issuer":   addrHex(issuer),
		"token":    addrHex(token),
		"asset":    asset,
		"amount":   amountString(amount),
		"periodId": strconv.FormatUint(periodID, 10),
	})
}

// NewSnapshotDepositEvent is emitted on top of the regular deposit event for
// snapshot-based deposits.
func NewSnapshotDepositEvent(issuer, token [20]byte, asset string, amount *big.Int, periodID, snapshotRef uint64) *types.Event {
	return newEvent(EventTypeSnapshotDeposit, map[string]string{
		"issuer":      addrHex(issuer),
		"token":       addrHex(token),
		"asset":       asset,
		"amount":      amountString(amount),
		"periodId":    strconv.FormatUint(periodID, 10),
		"snapshotRef": strconv.FormatUint(snapshotRef, 10),
	})
}

// NewClaimedEvent lists the claimed period IDs and the aggregate payout.
func NewClaimedEvent(holder, token [20]byte, payout *big.Int, periods []uint64) *types.Event {
	ids := make([]string, 0, len(periods))
	for _, p := range periods {
		ids = append(ids, strconv.FormatUint(p, 10))
	}
	return newEvent(EventTypeClaimed, map[string]string{
		"holder":  addrHex(holder),
		"token":   addrHex(token),
		"payout":  amountString(payout),
		"periods": strings.Join(ids, ","),
	})
}

// NewHolderShareSetEvent records a holder share assignment.
func NewHolderShareSetEvent(issuer, token, holder [20]byte, shareBps uint32) *types.Event {
	return newEvent(EventTypeHolderShareSet, map[string]string{
		"issuer":   addrHex(issuer),
		"token":    addrHex(token),
		"holder":   addrHex(holder),
		"shareBps": strconv.FormatUint(uint64(shareBps), 10),
	})
}

// NewConcentrationWarningEvent is emitted when a reported concentration
// exceeds the configured limit; it never blocks the report itself.
func NewConcentrationWarningEvent(issuer, token [20]byte, reportedBps, maxBps uint32) *types.Event {
	return newEvent(EventTypeConcentrationWarning, map[string]string{
		"issuer":      addrHex(issuer),
		"token":       addrHex(token),
		"reportedBps": strconv.FormatUint(uint64(reportedBps), 10),
		"maxBps":      strconv.FormatUint(uint64(maxBps), 10),
	})
}

// newReportEvent builds the shared payload for the reporting-path events.
// The blacklist snapshot rides along so off-chain distribution engines can
// filter recipients in the same atomic step.
func newReportEvent(eventType string, issuer, token [20]byte, asset string, amount *big.Int, periodID uint64, blacklist [][20]byte) *types.Event {
	return newEvent(eventType, map[string]string{
		"issuer":    addrHex(issuer),
		"token":     addrHex(token),
		"asset":     asset,
		"amount":    amountString(amount),
		"periodId":  strconv.FormatUint(periodID, 10),
		"blacklist": addrListString(blacklist),
	})
}

// NewClaimDelaySetEvent records a claim-delay change.
func NewClaimDelaySetEvent(issuer, token [20]byte, delaySecs uint64) *types.Event {
	return newEvent(EventTypeClaimDelaySet, map[string]string{
		"issuer":    addrHex(issuer),
		"token":     addrHex(token),
		"delaySecs": strconv.FormatUint(delaySecs, 10),
	})
}

// NewDistributionCalculatedEvent records the inputs and outcome of a
// distribution calculation.
func NewDistributionCalculatedEvent(token, holder [20]byte, totalRevenue, totalSupply, holderBalance, payout *big.Int, shareBps uint32) *types.Event {
	return newEvent(EventTypeDistributionCalcd, map[string]string{
		"token":         addrHex(token),
		"holder":        addrHex(holder),
		"totalRevenue":  amountString(totalRevenue),
		"totalSupply":   amountString(totalSupply),
		"holderBalance": amountString(holderBalance),
		"shareBps":      strconv.FormatUint(uint64(shareBps), 10),
		"payout":        amountString(payout),
	})
}
