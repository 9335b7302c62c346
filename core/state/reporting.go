package state

import (
	"fmt"
	"math/big"

	"revora/native/revshare"
)

type storedLimit struct {
	MaxBps  uint32
	Enforce bool
}

type storedSummary struct {
	TotalRevenue *big.Int
	ReportCount  uint64
}

type storedReport struct {
	Amount     *big.Int
	ReportedAt uint64
}

// RevShareConcentrationLimit returns the token's guardrail configuration.
func (m *Manager) RevShareConcentrationLimit(token [20]byte) (*revshare.ConcentrationLimitConfig, bool, error) {
	stored := new(storedLimit)
	ok, err := m.loadRLP(storageKey(concentrationPrefix, token[:]), stored)
	if err != nil || !ok {
		return nil, false, err
	}
	return &revshare.ConcentrationLimitConfig{MaxBps: stored.MaxBps, Enforce: stored.Enforce}, true, nil
}

// RevShareSetConcentrationLimit overwrites the token's guardrail
// configuration.
func (m *Manager) RevShareSetConcentrationLimit(token [20]byte, cfg *revshare.ConcentrationLimitConfig) error {
	if cfg == nil {
		return fmt.Errorf("state: nil concentration config")
	}
	return m.writeRLP(storageKey(concentrationPrefix, token[:]), &storedLimit{MaxBps: cfg.MaxBps, Enforce: cfg.Enforce})
}

// RevShareLastConcentration returns the most recent reported concentration.
func (m *Manager) RevShareLastConcentration(token [20]byte) (uint32, bool, error) {
	var bps uint64
	ok, err := m.loadRLP(storageKey(lastReportedPrefix, token[:]), &bps)
	if err != nil || !ok {
		return 0, false, err
	}
	return uint32(bps), true, nil
}

// RevShareSetLastConcentration overwrites the reported concentration.
func (m *Manager) RevShareSetLastConcentration(token [20]byte, bps uint32) error {
	return m.writeUint64(storageKey(lastReportedPrefix, token[:]), uint64(bps))
}

// RevShareAuditSummary returns the token's reporting aggregate. A missing
// summary reads as zeroed, never nil.
func (m *Manager) RevShareAuditSummary(token [20]byte) (*revshare.AuditSummary, error) {
	stored := new(storedSummary)
	ok, err := m.loadRLP(storageKey(auditSummaryPrefix, token[:]), stored)
	if err != nil {
		return nil, err
	}
	if !ok {
		return &revshare.AuditSummary{TotalRevenue: big.NewInt(0)}, nil
	}
	total := big.NewInt(0)
	if stored.TotalRevenue != nil {
		total = new(big.Int).Set(stored.TotalRevenue)
	}
	return &revshare.AuditSummary{TotalRevenue: total, ReportCount: stored.ReportCount}, nil
}

// RevShareSetAuditSummary overwrites the token's reporting aggregate.
func (m *Manager) RevShareSetAuditSummary(token [20]byte, summary *revshare.AuditSummary) error {
	if summary == nil {
		return fmt.Errorf("state: nil audit summary")
	}
	total := big.NewInt(0)
	if summary.TotalRevenue != nil {
		total = new(big.Int).Set(summary.TotalRevenue)
	}
	return m.writeRLP(storageKey(auditSummaryPrefix, token[:]), &storedSummary{TotalRevenue: total, ReportCount: summary.ReportCount})
}

// RevShareReport returns the recorded report for a period, if any.
func (m *Manager) RevShareReport(token [20]byte, periodID uint64) (*revshare.RevenueReport, bool, error) {
	stored := new(storedReport)
	ok, err := m.loadRLP(storageKey(revenueReportPrefix, token[:], uint64Key(periodID)), stored)
	if err != nil || !ok {
		return nil, false, err
	}
	amount := big.NewInt(0)
	if stored.Amount != nil {
		amount = new(big.Int).Set(stored.Amount)
	}
	return &revshare.RevenueReport{Amount: amount, ReportedAt: stored.ReportedAt}, true, nil
}

// RevShareSetReport overwrites the recorded report for a period.
func (m *Manager) RevShareSetReport(token [20]byte, periodID uint64, report *revshare.RevenueReport) error {
	if report == nil {
		return fmt.Errorf("state: nil revenue report")
	}
	amount := big.NewInt(0)
	if report.Amount != nil {
		amount = new(big.Int).Set(report.Amount)
	}
	return m.writeRLP(storageKey(revenueReportPrefix, token[:], uint64Key(periodID)), &storedReport{Amount: amount, ReportedAt: report.ReportedAt})
}

// RevShareMinThreshold returns the token's minimum report threshold; zero
// when unset.
func (m *Manager) RevShareMinThreshold(token [20]byte) (*big.Int, error) {
	return m.loadBigInt(storageKey(minThresholdPrefix, token[:]))
}

// RevShareSetMinThreshold overwrites the token's minimum report threshold.
func (m *Manager) RevShareSetMinThreshold(token [20]byte, min *big.Int) error {
	return m.writeBigInt(storageKey(minThresholdPrefix, token[:]), min)
}

// RevShareBlacklist returns the token's blacklist in insertion order.
func (m *Manager) RevShareBlacklist(token [20]byte) ([][20]byte, error) {
	return m.loadAddressList(storageKey(blacklistPrefix, token[:]))
}

// RevShareSetBlacklist overwrites the token's blacklist.
func (m *Manager) RevShareSetBlacklist(token [20]byte, list [][20]byte) error {
	return m.writeRLP(storageKey(blacklistPrefix, token[:]), list)
}

// RevShareWhitelist returns the token's whitelist in insertion order.
func (m *Manager) RevShareWhitelist(token [20]byte) ([][20]byte, error) {
	return m.loadAddressList(storageKey(whitelistPrefix, token[:]))
}

// RevShareSetWhitelist overwrites the token's whitelist.
func (m *Manager) RevShareSetWhitelist(token [20]byte, list [][20]byte) error {
	return m.writeRLP(storageKey(whitelistPrefix, token[:]), list)
}
