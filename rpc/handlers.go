package rpc

import (
	"net/http"

	"revora/core/events"
	"revora/core/types"
	"revora/native/revshare"
)

type handlerFunc func(http.ResponseWriter, *RPCRequest)

type methodEntry struct {
	fn       handlerFunc
	mutating bool
}

func (s *Server) lookup(method string) (handlerFunc, bool, bool) {
	table := map[string]methodEntry{
		"revshare_initialize":                 {s.handleInitialize, true},
		"revshare_registerOffering":           {s.handleRegisterOffering, true},
		"revshare_setOfferingMetadata":        {s.handleSetOfferingMetadata, true},
		"revshare_proposeTransfer":            {s.handleProposeTransfer, true},
		"revshare_acceptTransfer":             {s.handleAcceptTransfer, true},
		"revshare_cancelTransfer":             {s.handleCancelTransfer, true},
		"revshare_depositRevenue":             {s.handleDepositRevenue, true},
		"revshare_depositRevenueWithSnapshot": {s.handleDepositRevenueWithSnapshot, true},
		"revshare_setSnapshotConfig":          {s.handleSetSnapshotConfig, true},
		"revshare_setHolderShare":             {s.handleSetHolderShare, true},
		"revshare_setClaimDelay":              {s.handleSetClaimDelay, true},
		"revshare_setRoundingMode":            {s.handleSetRoundingMode, true},
		"revshare_claim":                      {s.handleClaim, true},
		"revshare_setConcentrationLimit":      {s.handleSetConcentrationLimit, true},
		"revshare_reportConcentration":        {s.handleReportConcentration, true},
		"revshare_reportRevenue":              {s.handleReportRevenue, true},
		"revshare_setMinRevenueThreshold":     {s.handleSetMinRevenueThreshold, true},
		"revshare_addToBlacklist":             {s.handleAddToBlacklist, true},
		"revshare_removeFromBlacklist":        {s.handleRemoveFromBlacklist, true},
		"revshare_addToWhitelist":             {s.handleAddToWhitelist, true},
		"revshare_removeFromWhitelist":        {s.handleRemoveFromWhitelist, true},
		"revshare_pause":                      {s.handlePause, true},
		"revshare_unpause":                    {s.handleUnpause, true},
		"revshare_freeze":                     {s.handleFreeze, true},
		"revshare_setTestnetMode":             {s.handleSetTestnetMode, true},
		"revshare_setPlatformFee":             {s.handleSetPlatformFee, true},
		"revshare_setAdmin":                   {s.handleSetAdmin, true},
		"revshare_initMultisig":               {s.handleInitMultisig, true},
		"revshare_proposeAction":              {s.handleProposeAction, true},
		"revshare_approveAction":              {s.handleApproveAction, true},
		"revshare_executeAction":              {s.handleExecuteAction, true},
		"revshare_mint":                       {s.handleMint, true},

		"revshare_getOffering":            {s.handleGetOffering, false},
		"revshare_getOfferingCount":       {s.handleGetOfferingCount, false},
		"revshare_listOfferings":          {s.handleListOfferings, false},
		"revshare_getOfferingsPage":       {s.handleGetOfferingsPage, false},
		"revshare_getOfferingMetadata":    {s.handleGetOfferingMetadata, false},
		"revshare_getPendingTransfer":     {s.handleGetPendingTransfer, false},
		"revshare_currentIssuer":          {s.handleCurrentIssuer, false},
		"revshare_getClaimable":           {s.handleGetClaimable, false},
		"revshare_getPendingPeriods":      {s.handleGetPendingPeriods, false},
		"revshare_getPeriodCount":         {s.handleGetPeriodCount, false},
		"revshare_getTotalDeposited":      {s.handleGetTotalDeposited, false},
		"revshare_getSnapshotConfig":      {s.handleGetSnapshotConfig, false},
		"revshare_getAuditSummary":        {s.handleGetAuditSummary, false},
		"revshare_getRevenueByPeriod":     {s.handleGetRevenueByPeriod, false},
		"revshare_getRevenueRange":        {s.handleGetRevenueRange, false},
		"revshare_getBlacklist":           {s.handleGetBlacklist, false},
		"revshare_getWhitelist":           {s.handleGetWhitelist, false},
		"revshare_getConcentrationLimit":  {s.handleGetConcentrationLimit, false},
		"revshare_platformFee":            {s.handlePlatformFee, false},
		"revshare_calculatePlatformFee":   {s.handleCalculatePlatformFee, false},
		"revshare_issuerAggregation":      {s.handleIssuerAggregation, false},
		"revshare_platformAggregation":    {s.handlePlatformAggregation, false},
		"revshare_allIssuers":             {s.handleAllIssuers, false},
		"revshare_simulateDistribution":   {s.handleSimulateDistribution, false},
		"revshare_distributionPreview":    {s.handleDistributionPreview, false},
		"revshare_getHolderShare":         {s.handleGetHolderShare, false},
		"revshare_getClaimDelay":          {s.handleGetClaimDelay, false},
		"revshare_getRoundingMode":        {s.handleGetRoundingMode, false},
		"revshare_getMinRevenueThreshold": {s.handleGetMinRevenueThreshold, false},
		"revshare_getLastConcentration":   {s.handleGetLastConcentration, false},
		"revshare_getPeriod":              {s.handleGetPeriod, false},
		"revshare_getProposal":            {s.handleGetProposal, false},
		"revshare_isBlacklisted":          {s.handleIsBlacklisted, false},
		"revshare_testnetMode":            {s.handleTestnetMode, false},
		"revshare_balanceOf":              {s.handleBalanceOf, false},
		"revshare_events":                 {s.handleEvents, false},
	}
	entry, ok := table[method]
	if !ok {
		return nil, false, false
	}
	return entry.fn, entry.mutating, true
}

type offeringResult struct {
	Issuer          Address `json:"issuer"`
	Token           Address `json:"token"`
	RevenueShareBps uint32  `json:"revenueShareBps"`
	PayoutAsset     string  `json:"payoutAsset"`
}

func newOfferingResult(o *revshare.Offering) offeringResult {
	return offeringResult{
		Issuer:          Address(o.Issuer),
		Token:           Address(o.Token),
		RevenueShareBps: o.RevenueShareBps,
		PayoutAsset:     o.PayoutAsset,
	}
}

func (s *Server) handleInitialize(w http.ResponseWriter, req *RPCRequest) {
	var params struct {
		Admin  Address `json:"admin"`
		Safety Address `json:"safety"`
	}
	if err := decodeParams(req, &params); err != nil {
		s.writeParamError(w, req, err)
		return
	}
	if err := s.engine.Initialize(params.Admin, params.Safety); err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, true)
}

func (s *Server) handleRegisterOffering(w http.ResponseWriter, req *RPCRequest) {
	var params struct {
		Caller          Address `json:"caller"`
		Token           Address `json:"token"`
		RevenueShareBps uint32  `json:"revenueShareBps"`
		PayoutAsset     string  `json:"payoutAsset"`
	}
	if err := decodeParams(req, &params); err != nil {
		s.writeParamError(w, req, err)
		return
	}
	offering, err := s.engine.RegisterOffering(params.Caller, params.Token, params.RevenueShareBps, params.PayoutAsset)
	if err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, newOfferingResult(offering))
}

func (s *Server) handleSetOfferingMetadata(w http.ResponseWriter, req *RPCRequest) {
	var params struct {
		Caller   Address `json:"caller"`
		Token    Address `json:"token"`
		Metadata string  `json:"metadata"`
	}
	if err := decodeParams(req, &params); err != nil {
		s.writeParamError(w, req, err)
		return
	}
	if err := s.engine.SetOfferingMetadata(params.Caller, params.Token, params.Metadata); err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, true)
}

func (s *Server) handleProposeTransfer(w http.ResponseWriter, req *RPCRequest) {
	var params struct {
		Caller    Address `json:"caller"`
		Token     Address `json:"token"`
		NewIssuer Address `json:"newIssuer"`
	}
	if err := decodeParams(req, &params); err != nil {
		s.writeParamError(w, req, err)
		return
	}
	if err := s.engine.ProposeTransfer(params.Caller, params.Token, params.NewIssuer); err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, true)
}

type callerTokenParams struct {
	Caller Address `json:"caller"`
	Token  Address `json:"token"`
}

func (s *Server) handleAcceptTransfer(w http.ResponseWriter, req *RPCRequest) {
	var params callerTokenParams
	if err := decodeParams(req, &params); err != nil {
		s.writeParamError(w, req, err)
		return
	}
	if err := s.engine.AcceptTransfer(params.Caller, params.Token); err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, true)
}

func (s *Server) handleCancelTransfer(w http.ResponseWriter, req *RPCRequest) {
	var params callerTokenParams
	if err := decodeParams(req, &params); err != nil {
		s.writeParamError(w, req, err)
		return
	}
	if err := s.engine.CancelTransfer(params.Caller, params.Token); err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, true)
}

type depositParams struct {
	Caller       Address `json:"caller"`
	Token        Address `json:"token"`
	PaymentAsset string  `json:"paymentAsset"`
	Amount       Amount  `json:"amount"`
	PeriodID     uint64  `json:"periodId"`
	SnapshotRef  uint64  `json:"snapshotRef"`
}

func (s *Server) handleDepositRevenue(w http.ResponseWriter, req *RPCRequest) {
	var params depositParams
	if err := decodeParams(req, &params); err != nil {
		s.writeParamError(w, req, err)
		return
	}
	if err := s.engine.DepositRevenue(params.Caller, params.Token, params.PaymentAsset, params.Amount.Int(), params.PeriodID); err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, true)
}

func (s *Server) handleDepositRevenueWithSnapshot(w http.ResponseWriter, req *RPCRequest) {
	var params depositParams
	if err := decodeParams(req, &params); err != nil {
		s.writeParamError(w, req, err)
		return
	}
	if err := s.engine.DepositRevenueWithSnapshot(params.Caller, params.Token, params.PaymentAsset, params.Amount.Int(), params.PeriodID, params.SnapshotRef); err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, true)
}

func (s *Server) handleSetSnapshotConfig(w http.ResponseWriter, req *RPCRequest) {
	var params struct {
		Caller  Address `json:"caller"`
		Token   Address `json:"token"`
		Enabled bool    `json:"enabled"`
	}
	if err := decodeParams(req, &params); err != nil {
		s.writeParamError(w, req, err)
		return
	}
	if err := s.engine.SetSnapshotConfig(params.Caller, params.Token, params.Enabled); err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, true)
}

func (s *Server) handleSetHolderShare(w http.ResponseWriter, req *RPCRequest) {
	var params struct {
		Caller   Address `json:"caller"`
		Token    Address `json:"token"`
		Holder   Address `json:"holder"`
		ShareBps uint32  `json:"shareBps"`
	}
	if err := decodeParams(req, &params); err != nil {
		s.writeParamError(w, req, err)
		return
	}
	if err := s.engine.SetHolderShare(params.Caller, params.Token, params.Holder, params.ShareBps); err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, true)
}

func (s *Server) handleSetClaimDelay(w http.ResponseWriter, req *RPCRequest) {
	var params struct {
		Caller    Address `json:"caller"`
		Token     Address `json:"token"`
		DelaySecs uint64  `json:"delaySecs"`
	}
	if err := decodeParams(req, &params); err != nil {
		s.writeParamError(w, req, err)
		return
	}
	if err := s.engine.SetClaimDelay(params.Caller, params.Token, params.DelaySecs); err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, true)
}

func (s *Server) handleSetRoundingMode(w http.ResponseWriter, req *RPCRequest) {
	var params struct {
		Caller Address `json:"caller"`
		Token  Address `json:"token"`
		Mode   uint8   `json:"mode"`
	}
	if err := decodeParams(req, &params); err != nil {
		s.writeParamError(w, req, err)
		return
	}
	if err := s.engine.SetRoundingMode(params.Caller, params.Token, revshare.RoundingMode(params.Mode)); err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, true)
}

func (s *Server) handleClaim(w http.ResponseWriter, req *RPCRequest) {
	var params struct {
		Caller     Address `json:"caller"`
		Token      Address `json:"token"`
		MaxPeriods uint32  `json:"maxPeriods"`
	}
	if err := decodeParams(req, &params); err != nil {
		s.writeParamError(w, req, err)
		return
	}
	payout, err := s.engine.Claim(params.Caller, params.Token, params.MaxPeriods)
	if err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, map[string]interface{}{"payout": NewAmount(payout)})
}

func (s *Server) handleSetConcentrationLimit(w http.ResponseWriter, req *RPCRequest) {
	var params struct {
		Caller  Address `json:"caller"`
		Token   Address `json:"token"`
		MaxBps  uint32  `json:"maxBps"`
		Enforce bool    `json:"enforce"`
	}
	if err := decodeParams(req, &params); err != nil {
		s.writeParamError(w, req, err)
		return
	}
	if err := s.engine.SetConcentrationLimit(params.Caller, params.Token, params.MaxBps, params.Enforce); err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, true)
}

func (s *Server) handleReportConcentration(w http.ResponseWriter, req *RPCRequest) {
	var params struct {
		Caller Address `json:"caller"`
		Token  Address `json:"token"`
		Bps    uint32  `json:"bps"`
	}
	if err := decodeParams(req, &params); err != nil {
		s.writeParamError(w, req, err)
		return
	}
	if err := s.engine.ReportConcentration(params.Caller, params.Token, params.Bps); err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, true)
}

func (s *Server) handleReportRevenue(w http.ResponseWriter, req *RPCRequest) {
	var params struct {
		Caller      Address `json:"caller"`
		Token       Address `json:"token"`
		PayoutAsset string  `json:"payoutAsset"`
		Amount      Amount  `json:"amount"`
		PeriodID    uint64  `json:"periodId"`
		Override    bool    `json:"override"`
	}
	if err := decodeParams(req, &params); err != nil {
		s.writeParamError(w, req, err)
		return
	}
	if err := s.engine.ReportRevenue(params.Caller, params.Token, params.PayoutAsset, params.Amount.Int(), params.PeriodID, params.Override); err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, true)
}

func (s *Server) handleSetMinRevenueThreshold(w http.ResponseWriter, req *RPCRequest) {
	var params struct {
		Caller Address `json:"caller"`
		Token  Address `json:"token"`
		Min    Amount  `json:"min"`
	}
	if err := decodeParams(req, &params); err != nil {
		s.writeParamError(w, req, err)
		return
	}
	if err := s.engine.SetMinRevenueThreshold(params.Caller, params.Token, params.Min.Int()); err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, true)
}

type listParams struct {
	Caller Address `json:"caller"`
	Token  Address `json:"token"`
	Holder Address `json:"holder"`
}

func (s *Server) handleAddToBlacklist(w http.ResponseWriter, req *RPCRequest) {
	var params listParams
	if err := decodeParams(req, &params); err != nil {
		s.writeParamError(w, req, err)
		return
	}
	if err := s.engine.AddToBlacklist(params.Caller, params.Token, params.Holder); err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, true)
}

func (s *Server) handleRemoveFromBlacklist(w http.ResponseWriter, req *RPCRequest) {
	var params listParams
	if err := decodeParams(req, &params); err != nil {
		s.writeParamError(w, req, err)
		return
	}
	if err := s.engine.RemoveFromBlacklist(params.Caller, params.Token, params.Holder); err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, true)
}

func (s *Server) handleAddToWhitelist(w http.ResponseWriter, req *RPCRequest) {
	var params listParams
	if err := decodeParams(req, &params); err != nil {
		s.writeParamError(w, req, err)
		return
	}
	if err := s.engine.AddToWhitelist(params.Caller, params.Token, params.Holder); err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, true)
}

func (s *Server) handleRemoveFromWhitelist(w http.ResponseWriter, req *RPCRequest) {
	var params listParams
	if err := decodeParams(req, &params); err != nil {
		s.writeParamError(w, req, err)
		return
	}
	if err := s.engine.RemoveFromWhitelist(params.Caller, params.Token, params.Holder); err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, true)
}

type callerParams struct {
	Caller Address `json:"caller"`
}

func (s *Server) handlePause(w http.ResponseWriter, req *RPCRequest) {
	var params callerParams
	if err := decodeParams(req, &params); err != nil {
		s.writeParamError(w, req, err)
		return
	}
	if err := s.engine.Pause(params.Caller); err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, true)
}

func (s *Server) handleUnpause(w http.ResponseWriter, req *RPCRequest) {
	var params callerParams
	if err := decodeParams(req, &params); err != nil {
		s.writeParamError(w, req, err)
		return
	}
	if err := s.engine.Unpause(params.Caller); err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, true)
}

func (s *Server) handleFreeze(w http.ResponseWriter, req *RPCRequest) {
	var params callerParams
	if err := decodeParams(req, &params); err != nil {
		s.writeParamError(w, req, err)
		return
	}
	if err := s.engine.Freeze(params.Caller); err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, true)
}

func (s *Server) handleSetTestnetMode(w http.ResponseWriter, req *RPCRequest) {
	var params struct {
		Caller  Address `json:"caller"`
		Enabled bool    `json:"enabled"`
	}
	if err := decodeParams(req, &params); err != nil {
		s.writeParamError(w, req, err)
		return
	}
	if err := s.engine.SetTestnetMode(params.Caller, params.Enabled); err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, true)
}

func (s *Server) handleSetPlatformFee(w http.ResponseWriter, req *RPCRequest) {
	var params struct {
		Caller Address `json:"caller"`
		Bps    uint32  `json:"bps"`
	}
	if err := decodeParams(req, &params); err != nil {
		s.writeParamError(w, req, err)
		return
	}
	if err := s.engine.SetPlatformFee(params.Caller, params.Bps); err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, true)
}

func (s *Server) handleSetAdmin(w http.ResponseWriter, req *RPCRequest) {
	var params struct {
		Caller   Address `json:"caller"`
		NewAdmin Address `json:"newAdmin"`
	}
	if err := decodeParams(req, &params); err != nil {
		s.writeParamError(w, req, err)
		return
	}
	if err := s.engine.SetAdmin(params.Caller, params.NewAdmin); err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, true)
}

func (s *Server) handleInitMultisig(w http.ResponseWriter, req *RPCRequest) {
	var params struct {
		Caller    Address   `json:"caller"`
		Owners    []Address `json:"owners"`
		Threshold uint32    `json:"threshold"`
	}
	if err := decodeParams(req, &params); err != nil {
		s.writeParamError(w, req, err)
		return
	}
	owners := make([][20]byte, len(params.Owners))
	for i, owner := range params.Owners {
		owners[i] = owner
	}
	if err := s.engine.InitMultisig(params.Caller, owners, params.Threshold); err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, true)
}

func (s *Server) handleProposeAction(w http.ResponseWriter, req *RPCRequest) {
	var params struct {
		Caller    Address `json:"caller"`
		Kind      uint8   `json:"kind"`
		Address   Address `json:"address"`
		Threshold uint32  `json:"threshold"`
	}
	if err := decodeParams(req, &params); err != nil {
		s.writeParamError(w, req, err)
		return
	}
	id, err := s.engine.ProposeAction(params.Caller, revshare.ProposalAction{
		Kind:      revshare.ProposalKind(params.Kind),
		Address:   params.Address,
		Threshold: params.Threshold,
	})
	if err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, map[string]interface{}{"id": id})
}

func (s *Server) handleApproveAction(w http.ResponseWriter, req *RPCRequest) {
	var params struct {
		Caller Address `json:"caller"`
		ID     uint32  `json:"id"`
	}
	if err := decodeParams(req, &params); err != nil {
		s.writeParamError(w, req, err)
		return
	}
	if err := s.engine.ApproveAction(params.Caller, params.ID); err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, true)
}

func (s *Server) handleExecuteAction(w http.ResponseWriter, req *RPCRequest) {
	var params struct {
		Caller Address `json:"caller"`
		ID     uint32  `json:"id"`
	}
	if err := decodeParams(req, &params); err != nil {
		s.writeParamError(w, req, err)
		return
	}
	if err := s.engine.ExecuteAction(params.Caller, params.ID); err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, true)
}

func (s *Server) handleMint(w http.ResponseWriter, req *RPCRequest) {
	var params struct {
		Caller Address `json:"caller"`
		Asset  string  `json:"asset"`
		To     Address `json:"to"`
		Amount Amount  `json:"amount"`
	}
	if err := decodeParams(req, &params); err != nil {
		s.writeParamError(w, req, err)
		return
	}
	if err := s.engine.Mint(params.Caller, params.Asset, params.To, params.Amount.Int()); err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, true)
}

type issuerTokenParams struct {
	Issuer Address `json:"issuer"`
	Token  Address `json:"token"`
}

func (s *Server) handleGetOffering(w http.ResponseWriter, req *RPCRequest) {
	var params issuerTokenParams
	if err := decodeParams(req, &params); err != nil {
		s.writeParamError(w, req, err)
		return
	}
	offering, err := s.engine.GetOffering(params.Issuer, params.Token)
	if err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, newOfferingResult(offering))
}

func (s *Server) handleGetOfferingCount(w http.ResponseWriter, req *RPCRequest) {
	var params struct {
		Issuer Address `json:"issuer"`
	}
	if err := decodeParams(req, &params); err != nil {
		s.writeParamError(w, req, err)
		return
	}
	count, err := s.engine.GetOfferingCount(params.Issuer)
	if err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, map[string]interface{}{"count": count})
}

func (s *Server) handleListOfferings(w http.ResponseWriter, req *RPCRequest) {
	var params struct {
		Issuer Address `json:"issuer"`
	}
	if err := decodeParams(req, &params); err != nil {
		s.writeParamError(w, req, err)
		return
	}
	offerings, err := s.engine.ListOfferings(params.Issuer)
	if err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	out := make([]offeringResult, len(offerings))
	for i, offering := range offerings {
		out[i] = newOfferingResult(offering)
	}
	writeResult(w, req.ID, out)
}

func (s *Server) handleGetOfferingsPage(w http.ResponseWriter, req *RPCRequest) {
	var params struct {
		Issuer Address `json:"issuer"`
		Start  uint32  `json:"start"`
		Limit  uint32  `json:"limit"`
	}
	if err := decodeParams(req, &params); err != nil {
		s.writeParamError(w, req, err)
		return
	}
	page, next, err := s.engine.GetOfferingsPage(params.Issuer, params.Start, params.Limit)
	if err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	out := make([]offeringResult, len(page))
	for i, offering := range page {
		out[i] = newOfferingResult(offering)
	}
	writeResult(w, req.ID, map[string]interface{}{"offerings": out, "next": next})
}

type tokenParams struct {
	Token Address `json:"token"`
}

func (s *Server) handleGetOfferingMetadata(w http.ResponseWriter, req *RPCRequest) {
	var params tokenParams
	if err := decodeParams(req, &params); err != nil {
		s.writeParamError(w, req, err)
		return
	}
	metadata, err := s.engine.GetOfferingMetadata(params.Token)
	if err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, map[string]interface{}{"metadata": metadata})
}

func (s *Server) handleGetPendingTransfer(w http.ResponseWriter, req *RPCRequest) {
	var params tokenParams
	if err := decodeParams(req, &params); err != nil {
		s.writeParamError(w, req, err)
		return
	}
	newIssuer, pending, err := s.engine.GetPendingTransfer(params.Token)
	if err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	result := map[string]interface{}{"pending": pending}
	if pending {
		result["newIssuer"] = Address(newIssuer)
	}
	writeResult(w, req.ID, result)
}

func (s *Server) handleCurrentIssuer(w http.ResponseWriter, req *RPCRequest) {
	var params tokenParams
	if err := decodeParams(req, &params); err != nil {
		s.writeParamError(w, req, err)
		return
	}
	issuer, err := s.engine.CurrentIssuer(params.Token)
	if err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, map[string]interface{}{"issuer": Address(issuer)})
}

type tokenHolderParams struct {
	Token  Address `json:"token"`
	Holder Address `json:"holder"`
}

func (s *Server) handleGetClaimable(w http.ResponseWriter, req *RPCRequest) {
	var params tokenHolderParams
	if err := decodeParams(req, &params); err != nil {
		s.writeParamError(w, req, err)
		return
	}
	claimable, err := s.engine.GetClaimable(params.Token, params.Holder)
	if err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, map[string]interface{}{"claimable": NewAmount(claimable)})
}

func (s *Server) handleGetPendingPeriods(w http.ResponseWriter, req *RPCRequest) {
	var params tokenHolderParams
	if err := decodeParams(req, &params); err != nil {
		s.writeParamError(w, req, err)
		return
	}
	pending, err := s.engine.GetPendingPeriods(params.Token, params.Holder)
	if err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, map[string]interface{}{"periods": pending})
}

func (s *Server) handleGetPeriodCount(w http.ResponseWriter, req *RPCRequest) {
	var params tokenParams
	if err := decodeParams(req, &params); err != nil {
		s.writeParamError(w, req, err)
		return
	}
	count, err := s.engine.GetPeriodCount(params.Token)
	if err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, map[string]interface{}{"count": count})
}

func (s *Server) handleGetTotalDeposited(w http.ResponseWriter, req *RPCRequest) {
	var params tokenParams
	if err := decodeParams(req, &params); err != nil {
		s.writeParamError(w, req, err)
		return
	}
	total, err := s.engine.GetTotalDeposited(params.Token)
	if err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, map[string]interface{}{"total": NewAmount(total)})
}

func (s *Server) handleGetSnapshotConfig(w http.ResponseWriter, req *RPCRequest) {
	var params tokenParams
	if err := decodeParams(req, &params); err != nil {
		s.writeParamError(w, req, err)
		return
	}
	enabled, err := s.engine.GetSnapshotConfig(params.Token)
	if err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	ref, err := s.engine.GetLastSnapshotRef(params.Token)
	if err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, map[string]interface{}{"enabled": enabled, "lastSnapshotRef": ref})
}

func (s *Server) handleGetAuditSummary(w http.ResponseWriter, req *RPCRequest) {
	var params issuerTokenParams
	if err := decodeParams(req, &params); err != nil {
		s.writeParamError(w, req, err)
		return
	}
	summary, err := s.engine.GetAuditSummary(params.Issuer, params.Token)
	if err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, map[string]interface{}{
		"totalRevenue": NewAmount(summary.TotalRevenue),
		"reportCount":  summary.ReportCount,
	})
}

func (s *Server) handleGetRevenueByPeriod(w http.ResponseWriter, req *RPCRequest) {
	var params struct {
		Token    Address `json:"token"`
		PeriodID uint64  `json:"periodId"`
	}
	if err := decodeParams(req, &params); err != nil {
		s.writeParamError(w, req, err)
		return
	}
	amount, ok, err := s.engine.GetRevenueByPeriod(params.Token, params.PeriodID)
	if err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	result := map[string]interface{}{"reported": ok}
	if ok {
		result["amount"] = NewAmount(amount)
	}
	writeResult(w, req.ID, result)
}

func (s *Server) handleGetRevenueRange(w http.ResponseWriter, req *RPCRequest) {
	var params struct {
		Token Address `json:"token"`
		From  uint64  `json:"from"`
		To    uint64  `json:"to"`
	}
	if err := decodeParams(req, &params); err != nil {
		s.writeParamError(w, req, err)
		return
	}
	total, err := s.engine.GetRevenueRange(params.Token, params.From, params.To)
	if err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, map[string]interface{}{"total": NewAmount(total)})
}

func (s *Server) handleGetBlacklist(w http.ResponseWriter, req *RPCRequest) {
	var params tokenParams
	if err := decodeParams(req, &params); err != nil {
		s.writeParamError(w, req, err)
		return
	}
	list, err := s.engine.GetBlacklist(params.Token)
	if err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, addressList(list))
}

func (s *Server) handleGetWhitelist(w http.ResponseWriter, req *RPCRequest) {
	var params tokenParams
	if err := decodeParams(req, &params); err != nil {
		s.writeParamError(w, req, err)
		return
	}
	list, err := s.engine.GetWhitelist(params.Token)
	if err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, addressList(list))
}

func (s *Server) handleGetConcentrationLimit(w http.ResponseWriter, req *RPCRequest) {
	var params tokenParams
	if err := decodeParams(req, &params); err != nil {
		s.writeParamError(w, req, err)
		return
	}
	cfg, ok, err := s.engine.GetConcentrationLimit(params.Token)
	if err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	result := map[string]interface{}{"configured": ok}
	if ok {
		result["maxBps"] = cfg.MaxBps
		result["enforce"] = cfg.Enforce
	}
	writeResult(w, req.ID, result)
}

func (s *Server) handlePlatformFee(w http.ResponseWriter, req *RPCRequest) {
	fee, err := s.engine.PlatformFee()
	if err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, map[string]interface{}{"bps": fee})
}

func (s *Server) handleCalculatePlatformFee(w http.ResponseWriter, req *RPCRequest) {
	var params struct {
		Amount Amount `json:"amount"`
	}
	if err := decodeParams(req, &params); err != nil {
		s.writeParamError(w, req, err)
		return
	}
	fee, err := s.engine.CalculatePlatformFee(params.Amount.Int())
	if err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, map[string]interface{}{"fee": NewAmount(fee)})
}

func metricsResult(m *revshare.AggregatedMetrics) map[string]interface{} {
	return map[string]interface{}{
		"totalReportedRevenue":  NewAmount(m.TotalReportedRevenue),
		"totalDepositedRevenue": NewAmount(m.TotalDepositedRevenue),
		"totalReportCount":      m.TotalReportCount,
		"offeringCount":         m.OfferingCount,
	}
}

func (s *Server) handleIssuerAggregation(w http.ResponseWriter, req *RPCRequest) {
	var params struct {
		Issuer Address `json:"issuer"`
	}
	if err := decodeParams(req, &params); err != nil {
		s.writeParamError(w, req, err)
		return
	}
	metrics, err := s.engine.IssuerAggregation(params.Issuer)
	if err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, metricsResult(metrics))
}

func (s *Server) handlePlatformAggregation(w http.ResponseWriter, req *RPCRequest) {
	metrics, err := s.engine.PlatformAggregation()
	if err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, metricsResult(metrics))
}

func (s *Server) handleAllIssuers(w http.ResponseWriter, req *RPCRequest) {
	issuers, err := s.engine.AllIssuers()
	if err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, addressList(issuers))
}

func (s *Server) handleSimulateDistribution(w http.ResponseWriter, req *RPCRequest) {
	var params struct {
		Issuer Address `json:"issuer"`
		Token  Address `json:"token"`
		Amount Amount  `json:"amount"`
		Shares []struct {
			Holder   Address `json:"holder"`
			ShareBps uint32  `json:"shareBps"`
		} `json:"shares"`
	}
	if err := decodeParams(req, &params); err != nil {
		s.writeParamError(w, req, err)
		return
	}
	shares := make([]revshare.HolderShareInput, len(params.Shares))
	for i, share := range params.Shares {
		shares[i] = revshare.HolderShareInput{Holder: share.Holder, ShareBps: share.ShareBps}
	}
	result, err := s.engine.SimulateDistribution(params.Issuer, params.Token, params.Amount.Int(), shares)
	if err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	payouts := make([]map[string]interface{}, len(result.Payouts))
	for i, payout := range result.Payouts {
		payouts[i] = map[string]interface{}{
			"holder": Address(payout.Holder),
			"amount": NewAmount(payout.Amount),
		}
	}
	writeResult(w, req.ID, map[string]interface{}{
		"totalDistributed": NewAmount(result.TotalDistributed),
		"payouts":          payouts,
	})
}

func (s *Server) handleBalanceOf(w http.ResponseWriter, req *RPCRequest) {
	var params struct {
		Asset   string  `json:"asset"`
		Address Address `json:"address"`
	}
	if err := decodeParams(req, &params); err != nil {
		s.writeParamError(w, req, err)
		return
	}
	balance, err := s.engine.BalanceOf(params.Asset, params.Address)
	if err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, map[string]interface{}{"balance": NewAmount(balance)})
}

func (s *Server) handleDistributionPreview(w http.ResponseWriter, req *RPCRequest) {
	var params struct {
		Token         Address `json:"token"`
		Holder        Address `json:"holder"`
		TotalRevenue  Amount  `json:"totalRevenue"`
		TotalSupply   Amount  `json:"totalSupply"`
		HolderBalance Amount  `json:"holderBalance"`
	}
	if err := decodeParams(req, &params); err != nil {
		s.writeParamError(w, req, err)
		return
	}
	amount, err := s.engine.DistributionPreview(params.Token, params.Holder, params.TotalRevenue.Int(), params.TotalSupply.Int(), params.HolderBalance.Int())
	if err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, map[string]interface{}{"amount": NewAmount(amount)})
}

func (s *Server) handleGetHolderShare(w http.ResponseWriter, req *RPCRequest) {
	var params tokenHolderParams
	if err := decodeParams(req, &params); err != nil {
		s.writeParamError(w, req, err)
		return
	}
	share, err := s.engine.GetHolderShare(params.Token, params.Holder)
	if err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, map[string]interface{}{"shareBps": share})
}

func (s *Server) handleGetClaimDelay(w http.ResponseWriter, req *RPCRequest) {
	var params tokenParams
	if err := decodeParams(req, &params); err != nil {
		s.writeParamError(w, req, err)
		return
	}
	delay, err := s.engine.GetClaimDelay(params.Token)
	if err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, map[string]interface{}{"delaySecs": delay})
}

func (s *Server) handleGetRoundingMode(w http.ResponseWriter, req *RPCRequest) {
	var params tokenParams
	if err := decodeParams(req, &params); err != nil {
		s.writeParamError(w, req, err)
		return
	}
	mode, err := s.engine.GetRoundingMode(params.Token)
	if err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, map[string]interface{}{"mode": uint8(mode)})
}

func (s *Server) handleGetMinRevenueThreshold(w http.ResponseWriter, req *RPCRequest) {
	var params tokenParams
	if err := decodeParams(req, &params); err != nil {
		s.writeParamError(w, req, err)
		return
	}
	min, err := s.engine.GetMinRevenueThreshold(params.Token)
	if err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, map[string]interface{}{"min": NewAmount(min)})
}

func (s *Server) handleGetLastConcentration(w http.ResponseWriter, req *RPCRequest) {
	var params tokenParams
	if err := decodeParams(req, &params); err != nil {
		s.writeParamError(w, req, err)
		return
	}
	bps, ok, err := s.engine.GetLastConcentration(params.Token)
	if err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	result := map[string]interface{}{"reported": ok}
	if ok {
		result["bps"] = bps
	}
	writeResult(w, req.ID, result)
}

func (s *Server) handleGetPeriod(w http.ResponseWriter, req *RPCRequest) {
	var params struct {
		Token    Address `json:"token"`
		PeriodID uint64  `json:"periodId"`
	}
	if err := decodeParams(req, &params); err != nil {
		s.writeParamError(w, req, err)
		return
	}
	record, ok, err := s.engine.GetPeriod(params.Token, params.PeriodID)
	if err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	result := map[string]interface{}{"deposited": ok}
	if ok {
		result["revenue"] = NewAmount(record.Revenue)
		result["depositTime"] = record.DepositTime
	}
	writeResult(w, req.ID, result)
}

func (s *Server) handleGetProposal(w http.ResponseWriter, req *RPCRequest) {
	var params struct {
		ID uint32 `json:"id"`
	}
	if err := decodeParams(req, &params); err != nil {
		s.writeParamError(w, req, err)
		return
	}
	proposal, ok, err := s.engine.GetProposal(params.ID)
	if err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	result := map[string]interface{}{"found": ok}
	if ok {
		result["id"] = proposal.ID
		result["kind"] = uint8(proposal.Action.Kind)
		result["address"] = Address(proposal.Action.Address)
		result["threshold"] = proposal.Action.Threshold
		result["proposer"] = Address(proposal.Proposer)
		result["approvals"] = addressList(proposal.Approvals)
		result["executed"] = proposal.Executed
	}
	writeResult(w, req.ID, result)
}

func (s *Server) handleIsBlacklisted(w http.ResponseWriter, req *RPCRequest) {
	var params tokenHolderParams
	if err := decodeParams(req, &params); err != nil {
		s.writeParamError(w, req, err)
		return
	}
	blocked, err := s.engine.IsBlacklisted(params.Token, params.Holder)
	if err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, map[string]interface{}{"blacklisted": blocked})
}

func (s *Server) handleTestnetMode(w http.ResponseWriter, req *RPCRequest) {
	enabled, err := s.engine.TestnetMode()
	if err != nil {
		s.writeEngineError(w, req, err)
		return
	}
	writeResult(w, req.ID, map[string]interface{}{"enabled": enabled})
}

// handleEvents serves the recorded event feed, optionally filtered by type.
func (s *Server) handleEvents(w http.ResponseWriter, req *RPCRequest) {
	var params struct {
		Type string `json:"type"`
	}
	if len(req.Params) > 0 {
		if err := decodeParams(req, &params); err != nil {
			s.writeParamError(w, req, err)
			return
		}
	}
	if s.recorder == nil {
		writeResult(w, req.ID, []*types.Event{})
		return
	}
	var recorded []events.Event
	if params.Type != "" {
		recorded = s.recorder.ByType(params.Type)
	} else {
		recorded = s.recorder.Events()
	}
	out := make([]*types.Event, 0, len(recorded))
	for _, evt := range recorded {
		if carrier, ok := evt.(interface{ Event() *types.Event }); ok {
			out = append(out, carrier.Event())
		}
	}
	writeResult(w, req.ID, out)
}
