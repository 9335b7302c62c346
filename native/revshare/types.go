package revshare

import (
	"fmt"
	"math/big"
	"strings"
)

// RoundingMode selects how fractional payouts are handled during share
// computation.
type RoundingMode uint8

const (
	// RoundingTruncation truncates toward zero: share = amount*bps/10000.
	RoundingTruncation RoundingMode = iota
	// RoundingHalfUp rounds to nearest, ties away from zero.
	RoundingHalfUp
)

// Valid reports whether the mode is within the supported range.
func (m RoundingMode) Valid() bool {
	switch m {
	case RoundingTruncation, RoundingHalfUp:
		return true
	default:
		return false
	}
}

// Offering is a registered revenue-share arrangement between an issuer and a
// token. The record is immutable after registration except for the issuer
// field, which moves atomically when a two-step control transfer is accepted.
type Offering struct {
	Issuer          [20]byte
	Token           [20]byte
	RevenueShareBps uint32
	PayoutAsset     string
}

// Clone returns a copy the caller can mutate without affecting stored state.
func (o *Offering) Clone() *Offering {
	if o == nil {
		return nil
	}
	clone := *o
	return &clone
}

// PeriodRecord captures one deposited revenue period. Deposit order, not
// period ID order, governs claim order.
type PeriodRecord struct {
	Token       [20]byte
	PeriodID    uint64
	Revenue     *big.Int
	DepositTime uint64
}

// ConcentrationLimitConfig is the per-offering guardrail configuration.
// MaxBps of zero disables the guardrail entirely.
type ConcentrationLimitConfig struct {
	MaxBps  uint32
	Enforce bool
}

// AuditSummary is the strictly additive per-offering reporting aggregate. It
// tracks reported revenue, which is independent of the deposited/claimable
// ledger and may diverge from it; reconciliation is an off-chain concern.
type AuditSummary struct {
	TotalRevenue *big.Int
	ReportCount  uint64
}

// Clone returns a deep copy of the summary.
func (s *AuditSummary) Clone() *AuditSummary {
	if s == nil {
		return nil
	}
	clone := *s
	if s.TotalRevenue != nil {
		clone.TotalRevenue = new(big.Int).Set(s.TotalRevenue)
	} else {
		clone.TotalRevenue = big.NewInt(0)
	}
	return &clone
}

// RevenueReport is one audit-trail entry recorded by ReportRevenue.
type RevenueReport struct {
	Amount     *big.Int
	ReportedAt uint64
}

// AggregatedMetrics summarizes reporting and deposit activity across
// offerings.
type AggregatedMetrics struct {
	TotalReportedRevenue  *big.Int
	TotalDepositedRevenue *big.Int
	TotalReportCount      uint64
	OfferingCount         uint32
}

// HolderPayout pairs a holder with a computed payout amount.
type HolderPayout struct {
	Holder [20]byte
	Amount *big.Int
}

// SimulationResult is the outcome of a read-only distribution preview.
type SimulationResult struct {
	TotalDistributed *big.Int
	Payouts          []HolderPayout
}

// ProposalKind enumerates the administrative actions executable through the
// multisig flow.
type ProposalKind uint8

const (
	ProposalSetAdmin ProposalKind = iota
	ProposalFreeze
	ProposalSetThreshold
	ProposalAddOwner
	ProposalRemoveOwner
)

// ProposalAction is the payload of a multisig proposal. Address carries the
// target for SetAdmin/AddOwner/RemoveOwner; Threshold carries the new value
// for SetThreshold.
type ProposalAction struct {
	Kind      ProposalKind
	Address   [20]byte
	Threshold uint32
}

// Proposal is a pending or executed multisig administrative action. The
// proposer's approval is recorded at creation time.
type Proposal struct {
	ID        uint32
	Action    ProposalAction
	Proposer  [20]byte
	Approvals [][20]byte
	Executed  bool
}

// Clone returns a deep copy of the proposal.
func (p *Proposal) Clone() *Proposal {
	if p == nil {
		return nil
	}
	clone := *p
	clone.Approvals = make([][20]byte, len(p.Approvals))
	copy(clone.Approvals, p.Approvals)
	return &clone
}

// NormalizeAsset canonicalizes a payment asset symbol (e.g. "usdc" -> "USDC").
func NormalizeAsset(symbol string) (string, error) {
	trimmed := strings.ToUpper(strings.TrimSpace(symbol))
	if trimmed == "" || len(trimmed) > 16 {
		return "", fmt.Errorf("%w: %q", ErrInvalidAsset, symbol)
	}
	return trimmed, nil
}
