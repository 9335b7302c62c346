package state

import (
	"fmt"
	"math/big"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"

	"revora/storage"
)

// Manager provides typed access to ledger state over a raw key-value
// database. Keys are keccak256 hashes of a string prefix plus the binary key
// parts; values are RLP. All business decisions live in the engine; the
// manager only stores and retrieves records.
type Manager struct {
	db storage.Database
}

// NewManager wraps the given database.
func NewManager(db storage.Database) *Manager {
	return &Manager{db: db}
}

func storageKey(prefix string, parts ...[]byte) []byte {
	size := len(prefix)
	for _, part := range parts {
		size += len(part)
	}
	buf := make([]byte, 0, size)
	buf = append(buf, prefix...)
	for _, part := range parts {
		buf = append(buf, part...)
	}
	return ethcrypto.Keccak256(buf)
}

func (m *Manager) loadRLP(key []byte, out interface{}) (bool, error) {
	data, err := m.db.Get(key)
	if err != nil {
		return false, err
	}
	if len(data) == 0 {
		return false, nil
	}
	if err := rlp.DecodeBytes(data, out); err != nil {
		return false, fmt.Errorf("state: decode record: %w", err)
	}
	return true, nil
}

func (m *Manager) writeRLP(key []byte, value interface{}) error {
	encoded, err := rlp.EncodeToBytes(value)
	if err != nil {
		return fmt.Errorf("state: encode record: %w", err)
	}
	return m.db.Put(key, encoded)
}

func (m *Manager) loadUint64(key []byte) (uint64, error) {
	var value uint64
	ok, err := m.loadRLP(key, &value)
	if err != nil || !ok {
		return 0, err
	}
	return value, nil
}

func (m *Manager) writeUint64(key []byte, value uint64) error {
	return m.writeRLP(key, value)
}

func (m *Manager) loadBool(key []byte) (bool, error) {
	var value bool
	ok, err := m.loadRLP(key, &value)
	if err != nil || !ok {
		return false, err
	}
	return value, nil
}

func (m *Manager) writeBool(key []byte, value bool) error {
	return m.writeRLP(key, value)
}

func (m *Manager) loadBigInt(key []byte) (*big.Int, error) {
	value := new(big.Int)
	ok, err := m.loadRLP(key, value)
	if err != nil {
		return nil, err
	}
	if !ok {
		return big.NewInt(0), nil
	}
	return value, nil
}

func (m *Manager) writeBigInt(key []byte, value *big.Int) error {
	if value == nil {
		value = big.NewInt(0)
	}
	if value.Sign() < 0 {
		return fmt.Errorf("state: negative amount")
	}
	return m.writeRLP(key, value)
}

func (m *Manager) loadAddress(key []byte) ([20]byte, bool, error) {
	var value [20]byte
	ok, err := m.loadRLP(key, &value)
	return value, ok, err
}

func (m *Manager) loadAddressList(key []byte) ([][20]byte, error) {
	var list [][20]byte
	if _, err := m.loadRLP(key, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func uint32Key(v uint32) []byte {
	return []byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)}
}

func uint64Key(v uint64) []byte {
	return []byte{
		byte(v >> 56), byte(v >> 48), byte(v >> 40), byte(v >> 32),
		byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v),
	}
}

// RevShareVaultAddress derives the module vault account for an asset. The
// address is the first 20 bytes of keccak256 over a fixed label, so every
// node derives the same vault without any registry.
func (m *Manager) RevShareVaultAddress(asset string) ([20]byte, error) {
	if asset == "" {
		return [20]byte{}, fmt.Errorf("state: empty asset symbol")
	}
	hash := ethcrypto.Keccak256([]byte(vaultLabel + asset))
	var addr [20]byte
	copy(addr[:], hash[:20])
	return addr, nil
}

// RevShareBalance returns the account's balance in the given asset. Missing
// balances read as zero.
func (m *Manager) RevShareBalance(asset string, addr [20]byte) (*big.Int, error) {
	return m.loadBigInt(storageKey(balancePrefix, []byte(asset), addr[:]))
}

// RevShareSetBalance overwrites the account's balance in the given asset.
func (m *Manager) RevShareSetBalance(asset string, addr [20]byte, amount *big.Int) error {
	return m.writeBigInt(storageKey(balancePrefix, []byte(asset), addr[:]), amount)
}
