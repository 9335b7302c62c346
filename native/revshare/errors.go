package revshare

import "errors"

var (
	errNilState = errors.New("revshare engine: state not configured")

	// ErrNotInitialized is returned when an administrative operation runs
	// before Initialize has set the admin.
	ErrNotInitialized = errors.New("revshare: not initialized")
	// ErrAlreadyInitialized is returned by a second Initialize call.
	ErrAlreadyInitialized = errors.New("revshare: already initialized")
	// ErrNotAuthorized is returned when the caller does not hold the role an
	// administrative operation requires.
	ErrNotAuthorized = errors.New("revshare: caller not authorized")

	// ErrInvalidRevenueShareBps is returned when an offering's cumulative
	// share exceeds 10000 basis points.
	ErrInvalidRevenueShareBps = errors.New("revshare: revenue share bps out of range")
	// ErrInvalidShareBps is returned when a holder share exceeds 10000.
	ErrInvalidShareBps = errors.New("revshare: holder share bps out of range")
	// ErrInvalidAsset is returned for empty or oversized asset symbols.
	ErrInvalidAsset = errors.New("revshare: invalid asset symbol")
	// ErrInvalidAmount is returned for amounts outside the allowed range
	// (non-positive deposits, negative reports).
	ErrInvalidAmount = errors.New("revshare: invalid amount")
	// ErrInvalidPeriodID is returned for the reserved period ID zero.
	ErrInvalidPeriodID = errors.New("revshare: invalid period id")
	// ErrMetadataTooLarge is returned when offering metadata exceeds the
	// maximum length.
	ErrMetadataTooLarge = errors.New("revshare: metadata too large")

	// ErrOfferingNotFound is returned when no offering exists for the token,
	// or when the caller does not resolve as its current issuer. The two are
	// deliberately indistinguishable: after a control transfer the old
	// issuer's calls fail as if the offering did not exist.
	ErrOfferingNotFound = errors.New("revshare: offering not found")

	// ErrTransferPending is returned by a propose while another transfer is
	// live for the token.
	ErrTransferPending = errors.New("revshare: issuer transfer already pending")
	// ErrNoTransferPending is returned by accept/cancel with nothing pending.
	ErrNoTransferPending = errors.New("revshare: no issuer transfer pending")
	// ErrUnauthorizedTransferAccept is returned when an accept caller is not
	// the proposed new issuer.
	ErrUnauthorizedTransferAccept = errors.New("revshare: caller may not accept this transfer")

	// ErrPeriodAlreadyDeposited is returned on a duplicate period deposit.
	// Repeats are errors, not no-ops; idempotency is the caller's concern.
	ErrPeriodAlreadyDeposited = errors.New("revshare: revenue already deposited for period")
	// ErrPaymentAssetMismatch is returned when a deposit uses a different
	// asset than the one locked by the first deposit.
	ErrPaymentAssetMismatch = errors.New("revshare: payment asset mismatch")
	// ErrPayoutAssetMismatch is returned when the supplied asset does not
	// match the offering's configured payout asset.
	ErrPayoutAssetMismatch = errors.New("revshare: payout asset mismatch")
	// ErrInsufficientBalance is returned when the issuer cannot cover a
	// deposit.
	ErrInsufficientBalance = errors.New("revshare: insufficient balance")

	// ErrHolderBlacklisted is returned when a blacklisted holder claims.
	ErrHolderBlacklisted = errors.New("revshare: holder blacklisted")
	// ErrNoPendingClaims is returned when the holder has no share configured.
	ErrNoPendingClaims = errors.New("revshare: no pending claims")

	// ErrConcentrationLimitExceeded is returned by ReportRevenue when
	// enforcement is on and the last reported concentration exceeds the
	// configured maximum.
	ErrConcentrationLimitExceeded = errors.New("revshare: concentration limit exceeded")

	// ErrSnapshotNotEnabled is returned by snapshot deposits when the
	// offering has not opted in.
	ErrSnapshotNotEnabled = errors.New("revshare: snapshot distribution not enabled")
	// ErrOutdatedSnapshot is returned when a snapshot reference does not
	// strictly increase.
	ErrOutdatedSnapshot = errors.New("revshare: outdated snapshot reference")

	// ErrInvalidFeeBps is returned when the platform fee exceeds the cap.
	ErrInvalidFeeBps = errors.New("revshare: platform fee bps out of range")

	// ErrMultisigNotInitialized is returned by multisig operations before
	// InitMultisig.
	ErrMultisigNotInitialized = errors.New("revshare: multisig not initialized")
	// ErrMultisigAlreadyInitialized is returned by a second InitMultisig.
	ErrMultisigAlreadyInitialized = errors.New("revshare: multisig already initialized")
	// ErrMultisigEnabled is returned by direct Freeze/SetAdmin once the
	// multisig flow owns those actions.
	ErrMultisigEnabled = errors.New("revshare: action requires a multisig proposal")
	// ErrInvalidThreshold is returned for a zero threshold or one above the
	// owner count.
	ErrInvalidThreshold = errors.New("revshare: invalid multisig threshold")
	// ErrNotOwner is returned when a multisig caller is not an owner.
	ErrNotOwner = errors.New("revshare: caller is not a multisig owner")
	// ErrProposalNotFound is returned for an unknown proposal ID.
	ErrProposalNotFound = errors.New("revshare: proposal not found")
	// ErrProposalExecuted is returned when acting on an executed proposal.
	ErrProposalExecuted = errors.New("revshare: proposal already executed")
	// ErrThresholdNotMet is returned by execute before enough approvals.
	ErrThresholdNotMet = errors.New("revshare: approval threshold not met")
)
