package revshare

// ProposeTransfer opens a two-step issuer handoff for the token. Only one
// transfer may be pending per token. Proposing to the current issuer is
// allowed and serves as a no-op handoff that still exercises the full flow.
func (e *Engine) ProposeTransfer(caller, token, newIssuer [20]byte) error {
	if err := e.guard(); err != nil {
		return err
	}
	issuer, _, err := e.requireIssuer(caller, token)
	if err != nil {
		return err
	}
	if _, pending, err := e.state.RevSharePendingTransfer(token); err != nil {
		return err
	} else if pending {
		return ErrTransferPending
	}
	if err := e.state.RevShareSetPendingTransfer(token, newIssuer); err != nil {
		return err
	}
	e.emit(NewTransferProposedEvent(token, issuer, newIssuer))
	return nil
}

// AcceptTransfer completes a pending handoff. The caller must be the proposed
// new issuer. The offering record moves from the old issuer's index to the
// new issuer's next slot; the hole in the old index is filled by swapping the
// last record in, so indexes stay dense.
func (e *Engine) AcceptTransfer(caller, token [20]byte) error {
	if err := e.guard(); err != nil {
		return err
	}
	proposed, pending, err := e.state.RevSharePendingTransfer(token)
	if err != nil {
		return err
	}
	if !pending {
		return ErrNoTransferPending
	}
	if caller != proposed {
		return ErrUnauthorizedTransferAccept
	}
	oldIssuer, oldIndex, ok, err := e.state.RevShareTokenIssuer(token)
	if err != nil {
		return err
	}
	if !ok {
		return ErrOfferingNotFound
	}
	offering, err := e.loadOffering(oldIssuer, oldIndex)
	if err != nil {
		return err
	}

	oldCount, err := e.state.RevShareOfferingCount(oldIssuer)
	if err != nil {
		return err
	}
	last := oldCount - 1
	if oldIndex != last {
		moved, err := e.loadOffering(oldIssuer, last)
		if err != nil {
			return err
		}
		if err := e.state.RevShareOfferingPut(oldIssuer, oldIndex, moved); err != nil {
			return err
		}
		if err := e.state.RevShareSetTokenIssuer(moved.Token, oldIssuer, oldIndex); err != nil {
			return err
		}
	}
	if err := e.state.RevShareOfferingDelete(oldIssuer, last); err != nil {
		return err
	}
	if err := e.state.RevShareSetOfferingCount(oldIssuer, last); err != nil {
		return err
	}

	newCount, err := e.state.RevShareOfferingCount(proposed)
	if err != nil {
		return err
	}
	offering.Issuer = proposed
	if err := e.state.RevShareOfferingPut(proposed, newCount, offering); err != nil {
		return err
	}
	if err := e.state.RevShareSetOfferingCount(proposed, newCount+1); err != nil {
		return err
	}
	if err := e.state.RevShareSetTokenIssuer(token, proposed, newCount); err != nil {
		return err
	}
	if err := e.state.RevShareAddIssuer(proposed); err != nil {
		return err
	}
	if err := e.state.RevShareDeletePendingTransfer(token); err != nil {
		return err
	}
	e.emit(NewTransferAcceptedEvent(token, oldIssuer, proposed))
	return nil
}

// CancelTransfer withdraws a pending handoff. Only the current issuer may
// cancel; the proposed new issuer cannot.
func (e *Engine) CancelTransfer(caller, token [20]byte) error {
	if err := e.guard(); err != nil {
		return err
	}
	issuer, _, err := e.requireIssuer(caller, token)
	if err != nil {
		return err
	}
	proposed, pending, err := e.state.RevSharePendingTransfer(token)
	if err != nil {
		return err
	}
	if !pending {
		return ErrNoTransferPending
	}
	if err := e.state.RevShareDeletePendingTransfer(token); err != nil {
		return err
	}
	e.emit(NewTransferCancelledEvent(token, issuer, proposed))
	return nil
}

// GetPendingTransfer returns the proposed new issuer for the token, if any.
func (e *Engine) GetPendingTransfer(token [20]byte) ([20]byte, bool, error) {
	if e == nil || e.state == nil {
		return [20]byte{}, false, errNilState
	}
	return e.state.RevSharePendingTransfer(token)
}

// CurrentIssuer resolves the token's issuer of record.
func (e *Engine) CurrentIssuer(token [20]byte) ([20]byte, error) {
	if e == nil || e.state == nil {
		return [20]byte{}, errNilState
	}
	issuer, _, ok, err := e.state.RevShareTokenIssuer(token)
	if err != nil {
		return [20]byte{}, err
	}
	if !ok {
		return [20]byte{}, ErrOfferingNotFound
	}
	return issuer, nil
}
