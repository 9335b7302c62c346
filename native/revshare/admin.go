package revshare

import (
	"math/big"
	"strconv"

	"revora/native/common"
)

// frozenGuard is the gate applied to administrative controls. They honor the
// one-way freeze but not the pause, otherwise Unpause could never run.
func (e *Engine) frozenGuard() error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if e.state.IsFrozen() {
		return common.ErrFrozen
	}
	return nil
}

// Initialize sets the admin and optional safety role exactly once. The zero
// address for safety means no safety role is configured.
func (e *Engine) Initialize(admin, safety [20]byte) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if _, ok, err := e.state.RevShareAdmin(); err != nil {
		return err
	} else if ok {
		return ErrAlreadyInitialized
	}
	if err := e.state.RevShareSetAdmin(admin); err != nil {
		return err
	}
	if safety != ([20]byte{}) {
		if err := e.state.RevShareSetSafety(safety); err != nil {
			return err
		}
	}
	if err := e.state.RevShareSetPaused(false); err != nil {
		return err
	}
	e.emit(newEvent(EventTypeInitialized, map[string]string{
		"admin":  addrHex(admin),
		"safety": addrHex(safety),
	}))
	return nil
}

func (e *Engine) requireAdmin(caller [20]byte) error {
	admin, ok, err := e.state.RevShareAdmin()
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotInitialized
	}
	if admin != caller {
		return ErrNotAuthorized
	}
	return nil
}

func (e *Engine) requireAdminOrSafety(caller [20]byte) error {
	if err := e.requireAdmin(caller); err == nil {
		return nil
	} else if err == ErrNotInitialized {
		return err
	}
	safety, ok, err := e.state.RevShareSafety()
	if err != nil {
		return err
	}
	if ok && safety == caller {
		return nil
	}
	return ErrNotAuthorized
}

// Pause halts all domain mutations reversibly. Admin or safety role.
func (e *Engine) Pause(caller [20]byte) error {
	if err := e.frozenGuard(); err != nil {
		return err
	}
	if err := e.requireAdminOrSafety(caller); err != nil {
		return err
	}
	if err := e.state.RevShareSetPaused(true); err != nil {
		return err
	}
	e.emit(newEvent(EventTypePaused, map[string]string{"caller": addrHex(caller)}))
	return nil
}

// Unpause lifts the pause. Admin or safety role.
func (e *Engine) Unpause(caller [20]byte) error {
	if err := e.frozenGuard(); err != nil {
		return err
	}
	if err := e.requireAdminOrSafety(caller); err != nil {
		return err
	}
	if err := e.state.RevShareSetPaused(false); err != nil {
		return err
	}
	e.emit(newEvent(EventTypeUnpaused, map[string]string{"caller": addrHex(caller)}))
	return nil
}

// Freeze permanently halts all mutations. Admin only, and only while the
// multisig flow has not taken ownership of the action.
func (e *Engine) Freeze(caller [20]byte) error {
	if err := e.frozenGuard(); err != nil {
		return err
	}
	if err := e.requireAdmin(caller); err != nil {
		return err
	}
	if _, _, ok, err := e.state.RevShareMultisig(); err != nil {
		return err
	} else if ok {
		return ErrMultisigEnabled
	}
	if err := e.state.RevShareSetFrozen(true); err != nil {
		return err
	}
	e.emit(newEvent(EventTypeFrozen, map[string]string{"caller": addrHex(caller)}))
	return nil
}

// SetAdmin hands the admin role to a new address. Disabled once the multisig
// flow is initialized.
func (e *Engine) SetAdmin(caller, newAdmin [20]byte) error {
	if err := e.frozenGuard(); err != nil {
		return err
	}
	if err := e.requireAdmin(caller); err != nil {
		return err
	}
	if _, _, ok, err := e.state.RevShareMultisig(); err != nil {
		return err
	} else if ok {
		return ErrMultisigEnabled
	}
	return e.state.RevShareSetAdmin(newAdmin)
}

// SetTestnetMode relaxes registration bps validation and disables
// concentration enforcement. Admin only.
func (e *Engine) SetTestnetMode(caller [20]byte, enabled bool) error {
	if err := e.frozenGuard(); err != nil {
		return err
	}
	if err := e.requireAdmin(caller); err != nil {
		return err
	}
	if err := e.state.RevShareSetTestnetMode(enabled); err != nil {
		return err
	}
	e.emit(newEvent(EventTypeTestnetMode, map[string]string{
		"enabled": strconv.FormatBool(enabled),
	}))
	return nil
}

// TestnetMode reports whether the relaxed-validation mode is active.
func (e *Engine) TestnetMode() (bool, error) {
	if e == nil || e.state == nil {
		return false, errNilState
	}
	return e.state.RevShareTestnetMode()
}

// SetPlatformFee sets the global platform fee, capped at MaxPlatformFeeBps.
func (e *Engine) SetPlatformFee(caller [20]byte, bps uint32) error {
	if err := e.frozenGuard(); err != nil {
		return err
	}
	if err := e.requireAdmin(caller); err != nil {
		return err
	}
	if bps > MaxPlatformFeeBps {
		return ErrInvalidFeeBps
	}
	if err := e.state.RevShareSetPlatformFee(bps); err != nil {
		return err
	}
	e.emit(newEvent(EventTypePlatformFeeSet, map[string]string{
		"bps": strconv.FormatUint(uint64(bps), 10),
	}))
	return nil
}

// PlatformFee returns the configured global fee in basis points.
func (e *Engine) PlatformFee() (uint32, error) {
	if e == nil || e.state == nil {
		return 0, errNilState
	}
	return e.state.RevSharePlatformFee()
}

// CalculatePlatformFee returns the fee due on amount under the configured
// global fee, truncated toward zero.
func (e *Engine) CalculatePlatformFee(amount *big.Int) (*big.Int, error) {
	fee, err := e.PlatformFee()
	if err != nil {
		return nil, err
	}
	return ComputeShare(amount, fee, RoundingTruncation), nil
}

// InitMultisig hands administrative control of freeze and admin rotation to
// an owner set with an approval threshold. Admin only, once.
func (e *Engine) InitMultisig(caller [20]byte, owners [][20]byte, threshold uint32) error {
	if err := e.frozenGuard(); err != nil {
		return err
	}
	if err := e.requireAdmin(caller); err != nil {
		return err
	}
	if _, _, ok, err := e.state.RevShareMultisig(); err != nil {
		return err
	} else if ok {
		return ErrMultisigAlreadyInitialized
	}
	unique := make([][20]byte, 0, len(owners))
	for _, owner := range owners {
		unique, _ = appendUnique(unique, owner)
	}
	if threshold == 0 || uint32(len(unique)) < threshold {
		return ErrInvalidThreshold
	}
	return e.state.RevShareSetMultisig(unique, threshold)
}

func (e *Engine) requireOwner(caller [20]byte) (owners [][20]byte, threshold uint32, err error) {
	owners, threshold, ok, err := e.state.RevShareMultisig()
	if err != nil {
		return nil, 0, err
	}
	if !ok {
		return nil, 0, ErrMultisigNotInitialized
	}
	for _, owner := range owners {
		if owner == caller {
			return owners, threshold, nil
		}
	}
	return nil, 0, ErrNotOwner
}

// ProposeAction opens a multisig proposal. The proposer's approval is
// recorded immediately, so a threshold of one can execute right away.
func (e *Engine) ProposeAction(caller [20]byte, action ProposalAction) (uint32, error) {
	if err := e.frozenGuard(); err != nil {
		return 0, err
	}
	if _, _, err := e.requireOwner(caller); err != nil {
		return 0, err
	}
	count, err := e.state.RevShareProposalCount()
	if err != nil {
		return 0, err
	}
	proposal := &Proposal{
		ID:        count + 1,
		Action:    action,
		Proposer:  caller,
		Approvals: [][20]byte{caller},
	}
	if err := e.state.RevShareProposalPut(proposal); err != nil {
		return 0, err
	}
	if err := e.state.RevShareSetProposalCount(proposal.ID); err != nil {
		return 0, err
	}
	e.emit(newEvent(EventTypeProposalCreated, map[string]string{
		"id":       strconv.FormatUint(uint64(proposal.ID), 10),
		"kind":     strconv.FormatUint(uint64(action.Kind), 10),
		"proposer": addrHex(caller),
	}))
	return proposal.ID, nil
}

// ApproveAction records the caller's approval. Idempotent per owner.
func (e *Engine) ApproveAction(caller [20]byte, id uint32) error {
	if err := e.frozenGuard(); err != nil {
		return err
	}
	if _, _, err := e.requireOwner(caller); err != nil {
		return err
	}
	proposal, ok, err := e.state.RevShareProposal(id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrProposalNotFound
	}
	if proposal.Executed {
		return ErrProposalExecuted
	}
	approvals, added := appendUnique(proposal.Approvals, caller)
	if !added {
		return nil
	}
	proposal.Approvals = approvals
	if err := e.state.RevShareProposalPut(proposal); err != nil {
		return err
	}
	e.emit(newEvent(EventTypeProposalApprove, map[string]string{
		"id":       strconv.FormatUint(uint64(id), 10),
		"approver": addrHex(caller),
	}))
	return nil
}

// ExecuteAction applies a proposal once it has reached the approval
// threshold.
func (e *Engine) ExecuteAction(caller [20]byte, id uint32) error {
	if err := e.frozenGuard(); err != nil {
		return err
	}
	owners, threshold, err := e.requireOwner(caller)
	if err != nil {
		return err
	}
	proposal, ok, err := e.state.RevShareProposal(id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrProposalNotFound
	}
	if proposal.Executed {
		return ErrProposalExecuted
	}
	if uint32(len(proposal.Approvals)) < threshold {
		return ErrThresholdNotMet
	}

	switch proposal.Action.Kind {
	case ProposalSetAdmin:
		if err := e.state.RevShareSetAdmin(proposal.Action.Address); err != nil {
			return err
		}
	case ProposalFreeze:
		if err := e.state.RevShareSetFrozen(true); err != nil {
			return err
		}
		e.emit(newEvent(EventTypeFrozen, map[string]string{"caller": addrHex(caller)}))
	case ProposalSetThreshold:
		next := proposal.Action.Threshold
		if next == 0 || uint32(len(owners)) < next {
			return ErrInvalidThreshold
		}
		if err := e.state.RevShareSetMultisig(owners, next); err != nil {
			return err
		}
	case ProposalAddOwner:
		updated, _ := appendUnique(owners, proposal.Action.Address)
		if err := e.state.RevShareSetMultisig(updated, threshold); err != nil {
			return err
		}
	case ProposalRemoveOwner:
		updated, removed := removeAddr(owners, proposal.Action.Address)
		if !removed {
			return ErrNotOwner
		}
		if uint32(len(updated)) < threshold {
			return ErrInvalidThreshold
		}
		if err := e.state.RevShareSetMultisig(updated, threshold); err != nil {
			return err
		}
	default:
		return ErrProposalNotFound
	}

	proposal.Executed = true
	if err := e.state.RevShareProposalPut(proposal); err != nil {
		return err
	}
	e.emit(newEvent(EventTypeProposalExecute, map[string]string{
		"id":       strconv.FormatUint(uint64(id), 10),
		"executor": addrHex(caller),
	}))
	return nil
}

// Mint credits an account balance out of thin air. Admin only; the daemon's
// funding path for issuer accounts, standing in for an external settlement
// rail.
func (e *Engine) Mint(caller [20]byte, asset string, to [20]byte, amount *big.Int) error {
	if err := e.frozenGuard(); err != nil {
		return err
	}
	if err := e.requireAdmin(caller); err != nil {
		return err
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	normalized, err := NormalizeAsset(asset)
	if err != nil {
		return err
	}
	balance, err := e.state.RevShareBalance(normalized, to)
	if err != nil {
		return err
	}
	return e.state.RevShareSetBalance(normalized, to, new(big.Int).Add(balance, amount))
}

// BalanceOf returns the account's balance in the given asset.
func (e *Engine) BalanceOf(asset string, addr [20]byte) (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	normalized, err := NormalizeAsset(asset)
	if err != nil {
		return nil, err
	}
	return e.state.RevShareBalance(normalized, addr)
}

// GetProposal returns a multisig proposal by ID.
func (e *Engine) GetProposal(id uint32) (*Proposal, bool, error) {
	if e == nil || e.state == nil {
		return nil, false, errNilState
	}
	return e.state.RevShareProposal(id)
}
