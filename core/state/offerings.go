package state

import (
	"fmt"

	"revora/native/revshare"
)

type storedOffering struct {
	Issuer          [20]byte
	Token           [20]byte
	RevenueShareBps uint32
	PayoutAsset     string
}

func newStoredOffering(o *revshare.Offering) *storedOffering {
	if o == nil {
		return nil
	}
	return &storedOffering{
		Issuer:          o.Issuer,
		Token:           o.Token,
		RevenueShareBps: o.RevenueShareBps,
		PayoutAsset:     o.PayoutAsset,
	}
}

func (s *storedOffering) toOffering() *revshare.Offering {
	return &revshare.Offering{
		Issuer:          s.Issuer,
		Token:           s.Token,
		RevenueShareBps: s.RevenueShareBps,
		PayoutAsset:     s.PayoutAsset,
	}
}

type storedTokenIssuer struct {
	Issuer [20]byte
	Index  uint32
}

func offeringRecordKey(issuer [20]byte, index uint32) []byte {
	return storageKey(offeringRecordPrefix, issuer[:], uint32Key(index))
}

// RevShareOfferingPut stores the offering at the issuer's given index.
func (m *Manager) RevShareOfferingPut(issuer [20]byte, index uint32, o *revshare.Offering) error {
	if o == nil {
		return fmt.Errorf("state: nil offering")
	}
	return m.writeRLP(offeringRecordKey(issuer, index), newStoredOffering(o))
}

// RevShareOfferingGet loads the offering at the issuer's given index.
func (m *Manager) RevShareOfferingGet(issuer [20]byte, index uint32) (*revshare.Offering, bool, error) {
	stored := new(storedOffering)
	ok, err := m.loadRLP(offeringRecordKey(issuer, index), stored)
	if err != nil || !ok {
		return nil, false, err
	}
	return stored.toOffering(), true, nil
}

// RevShareOfferingDelete removes the offering slot at the issuer's index.
func (m *Manager) RevShareOfferingDelete(issuer [20]byte, index uint32) error {
	return m.db.Delete(offeringRecordKey(issuer, index))
}

// RevShareOfferingCount returns the issuer's dense offering count.
func (m *Manager) RevShareOfferingCount(issuer [20]byte) (uint32, error) {
	count, err := m.loadUint64(storageKey(offeringCountPrefix, issuer[:]))
	return uint32(count), err
}

// RevShareSetOfferingCount overwrites the issuer's offering count.
func (m *Manager) RevShareSetOfferingCount(issuer [20]byte, count uint32) error {
	return m.writeUint64(storageKey(offeringCountPrefix, issuer[:]), uint64(count))
}

// RevShareTokenIssuer resolves the token's reverse index to its issuer of
// record and the slot within that issuer's offering list.
func (m *Manager) RevShareTokenIssuer(token [20]byte) ([20]byte, uint32, bool, error) {
	stored := new(storedTokenIssuer)
	ok, err := m.loadRLP(storageKey(tokenIssuerPrefix, token[:]), stored)
	if err != nil || !ok {
		return [20]byte{}, 0, false, err
	}
	return stored.Issuer, stored.Index, true, nil
}

// RevShareSetTokenIssuer points the token's reverse index at (issuer, index).
func (m *Manager) RevShareSetTokenIssuer(token [20]byte, issuer [20]byte, index uint32) error {
	return m.writeRLP(storageKey(tokenIssuerPrefix, token[:]), &storedTokenIssuer{Issuer: issuer, Index: index})
}

// RevShareMetadata returns the token's metadata string, if set.
func (m *Manager) RevShareMetadata(token [20]byte) (string, bool, error) {
	var metadata string
	ok, err := m.loadRLP(storageKey(metadataPrefix, token[:]), &metadata)
	if err != nil || !ok {
		return "", false, err
	}
	return metadata, true, nil
}

// RevShareSetMetadata overwrites the token's metadata string.
func (m *Manager) RevShareSetMetadata(token [20]byte, metadata string) error {
	return m.writeRLP(storageKey(metadataPrefix, token[:]), metadata)
}

// RevShareIssuers returns the global issuer index in registration order.
func (m *Manager) RevShareIssuers() ([][20]byte, error) {
	return m.loadAddressList(storageKey(issuerIndexKey))
}

// RevShareAddIssuer appends the issuer to the global index if absent.
func (m *Manager) RevShareAddIssuer(issuer [20]byte) error {
	list, err := m.RevShareIssuers()
	if err != nil {
		return err
	}
	for _, existing := range list {
		if existing == issuer {
			return nil
		}
	}
	return m.writeRLP(storageKey(issuerIndexKey), append(list, issuer))
}

// RevSharePendingTransfer returns the proposed new issuer for the token, if a
// transfer is pending.
func (m *Manager) RevSharePendingTransfer(token [20]byte) ([20]byte, bool, error) {
	return m.loadAddress(storageKey(pendingTransferPrefix, token[:]))
}

// RevShareSetPendingTransfer records a pending issuer transfer.
func (m *Manager) RevShareSetPendingTransfer(token [20]byte, newIssuer [20]byte) error {
	return m.writeRLP(storageKey(pendingTransferPrefix, token[:]), newIssuer)
}

// RevShareDeletePendingTransfer clears the token's pending transfer.
func (m *Manager) RevShareDeletePendingTransfer(token [20]byte) error {
	return m.db.Delete(storageKey(pendingTransferPrefix, token[:]))
}
