package state

import (
	"fmt"

	"revora/native/revshare"
)

type storedMultisig struct {
	Owners    [][20]byte
	Threshold uint32
}

type storedProposal struct {
	ID        uint32
	Kind      uint8
	Address   [20]byte
	Threshold uint32
	Proposer  [20]byte
	Approvals [][20]byte
	Executed  bool
}

// RevShareAdmin returns the configured admin address, if one is set.
func (m *Manager) RevShareAdmin() ([20]byte, bool, error) {
	return m.loadAddress(storageKey(adminKey))
}

// RevShareSetAdmin overwrites the admin address.
func (m *Manager) RevShareSetAdmin(addr [20]byte) error {
	return m.writeRLP(storageKey(adminKey), addr)
}

// RevShareSafety returns the configured safety address, if one is set.
func (m *Manager) RevShareSafety() ([20]byte, bool, error) {
	return m.loadAddress(storageKey(safetyKey))
}

// RevShareSetSafety overwrites the safety address.
func (m *Manager) RevShareSetSafety(addr [20]byte) error {
	return m.writeRLP(storageKey(safetyKey), addr)
}

// IsPaused reports the reversible pause gate. Read failures surface as
// paused, failing closed.
func (m *Manager) IsPaused() bool {
	paused, err := m.loadBool(storageKey(pausedKey))
	if err != nil {
		return true
	}
	return paused
}

// RevShareSetPaused toggles the pause gate.
func (m *Manager) RevShareSetPaused(paused bool) error {
	return m.writeBool(storageKey(pausedKey), paused)
}

// IsFrozen reports the one-way freeze gate. Read failures surface as frozen,
// failing closed.
func (m *Manager) IsFrozen() bool {
	frozen, err := m.loadBool(storageKey(frozenKey))
	if err != nil {
		return true
	}
	return frozen
}

// RevShareSetFrozen sets the freeze gate. The engine only ever sets it true.
func (m *Manager) RevShareSetFrozen(frozen bool) error {
	return m.writeBool(storageKey(frozenKey), frozen)
}

// RevShareTestnetMode reports the relaxed-validation flag.
func (m *Manager) RevShareTestnetMode() (bool, error) {
	return m.loadBool(storageKey(testnetKey))
}

// RevShareSetTestnetMode toggles the relaxed-validation flag.
func (m *Manager) RevShareSetTestnetMode(enabled bool) error {
	return m.writeBool(storageKey(testnetKey), enabled)
}

// RevSharePlatformFee returns the global platform fee in basis points.
func (m *Manager) RevSharePlatformFee() (uint32, error) {
	fee, err := m.loadUint64(storageKey(platformFeeKey))
	return uint32(fee), err
}

// RevShareSetPlatformFee overwrites the global platform fee.
func (m *Manager) RevShareSetPlatformFee(bps uint32) error {
	return m.writeUint64(storageKey(platformFeeKey), uint64(bps))
}

// RevShareMultisig returns the owner set and threshold, if initialized.
func (m *Manager) RevShareMultisig() ([][20]byte, uint32, bool, error) {
	stored := new(storedMultisig)
	ok, err := m.loadRLP(storageKey(multisigKey), stored)
	if err != nil || !ok {
		return nil, 0, false, err
	}
	return stored.Owners, stored.Threshold, true, nil
}

// RevShareSetMultisig overwrites the owner set and threshold.
func (m *Manager) RevShareSetMultisig(owners [][20]byte, threshold uint32) error {
	return m.writeRLP(storageKey(multisigKey), &storedMultisig{Owners: owners, Threshold: threshold})
}

// RevShareProposal loads a multisig proposal by ID.
func (m *Manager) RevShareProposal(id uint32) (*revshare.Proposal, bool, error) {
	stored := new(storedProposal)
	ok, err := m.loadRLP(storageKey(proposalPrefix, uint32Key(id)), stored)
	if err != nil || !ok {
		return nil, false, err
	}
	return &revshare.Proposal{
		ID: stored.ID,
		Action: revshare.ProposalAction{
			Kind:      revshare.ProposalKind(stored.Kind),
			Address:   stored.Address,
			Threshold: stored.Threshold,
		},
		Proposer:  stored.Proposer,
		Approvals: stored.Approvals,
		Executed:  stored.Executed,
	}, true, nil
}

// RevShareProposalPut stores a multisig proposal.
func (m *Manager) RevShareProposalPut(p *revshare.Proposal) error {
	if p == nil {
		return fmt.Errorf("state: nil proposal")
	}
	return m.writeRLP(storageKey(proposalPrefix, uint32Key(p.ID)), &storedProposal{
		ID:        p.ID,
		Kind:      uint8(p.Action.Kind),
		Address:   p.Action.Address,
		Threshold: p.Action.Threshold,
		Proposer:  p.Proposer,
		Approvals: p.Approvals,
		Executed:  p.Executed,
	})
}

// RevShareProposalCount returns the highest assigned proposal ID.
func (m *Manager) RevShareProposalCount() (uint32, error) {
	count, err := m.loadUint64(storageKey(proposalCountKey))
	return uint32(count), err
}

// RevShareSetProposalCount overwrites the proposal counter.
func (m *Manager) RevShareSetProposalCount(count uint32) error {
	return m.writeUint64(storageKey(proposalCountKey), uint64(count))
}
