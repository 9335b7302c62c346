package state

// Key prefixes. Every stored record's key is keccak256(prefix || parts), so
// prefixes only need to be unique, not structured.
const (
	vaultLabel    = "revora/vault/"
	balancePrefix = "revora/balance/"

	offeringRecordPrefix = "revora/offering/record/"
	offeringCountPrefix  = "revora/offering/count/"
	tokenIssuerPrefix    = "revora/offering/token-issuer/"
	metadataPrefix       = "revora/offering/metadata/"
	issuerIndexKey       = "revora/offering/issuers"

	pendingTransferPrefix = "revora/transfer/pending/"

	periodRecordPrefix   = "revora/period/record/"
	periodCountPrefix    = "revora/period/count/"
	periodSeqPrefix      = "revora/period/seq/"
	totalDepositPrefix   = "revora/period/total/"
	paymentAssetPrefix   = "revora/period/payment-asset/"
	snapshotFlagPrefix   = "revora/period/snapshot-enabled/"
	snapshotRefPrefix    = "revora/period/snapshot-ref/"
	holderSharePrefix    = "revora/claim/share/"
	claimCursorPrefix    = "revora/claim/cursor/"
	claimDelayPrefix     = "revora/claim/delay/"
	roundingModePrefix   = "revora/claim/rounding/"
	concentrationPrefix  = "revora/report/concentration-limit/"
	lastReportedPrefix   = "revora/report/last-concentration/"
	auditSummaryPrefix   = "revora/report/summary/"
	revenueReportPrefix  = "revora/report/record/"
	minThresholdPrefix   = "revora/report/min-threshold/"
	blacklistPrefix      = "revora/list/blacklist/"
	whitelistPrefix      = "revora/list/whitelist/"

	adminKey          = "revora/admin/address"
	safetyKey         = "revora/admin/safety"
	pausedKey         = "revora/admin/paused"
	frozenKey         = "revora/admin/frozen"
	testnetKey        = "revora/admin/testnet"
	platformFeeKey    = "revora/admin/platform-fee"
	multisigKey       = "revora/admin/multisig"
	proposalPrefix    = "revora/admin/proposal/"
	proposalCountKey  = "revora/admin/proposal-count"
)
