package rpc

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"revora/core/events"
	"revora/core/state"
	"revora/native/revshare"
	"revora/storage"
)

const testToken = "test-rpc-token"

func newTestServer(t *testing.T) (*httptest.Server, *revshare.Engine) {
	t.Helper()
	manager := state.NewManager(storage.NewMemDB())
	engine := revshare.NewEngine()
	engine.SetState(manager)
	engine.SetEmitter(events.NewRecorder())
	srv := NewServer(engine, nil, testToken, nil)
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts, engine
}

func rpcAddr(b byte) string {
	var raw [20]byte
	raw[19] = b
	return "0x" + hex.EncodeToString(raw[:])
}

func engineAddr(b byte) [20]byte {
	var raw [20]byte
	raw[19] = b
	return raw
}

func call(t *testing.T, ts *httptest.Server, token, method string, params interface{}) (*http.Response, RPCResponse) {
	t.Helper()
	payload := map[string]interface{}{
		"jsonrpc": jsonRPCVersion,
		"id":      1,
		"method":  method,
	}
	if params != nil {
		payload["params"] = []interface{}{params}
	}
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, ts.URL+"/", bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded RPCResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func resultMap(t *testing.T, decoded RPCResponse) map[string]interface{} {
	t.Helper()
	require.Nil(t, decoded.Error)
	out, ok := decoded.Result.(map[string]interface{})
	require.True(t, ok, "result is not an object: %T", decoded.Result)
	return out
}

func TestMethodNotFound(t *testing.T) {
	ts, _ := newTestServer(t)
	resp, decoded := call(t, ts, "", "revshare_noSuchMethod", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.NotNil(t, decoded.Error)
	require.Equal(t, codeMethodNotFound, decoded.Error.Code)
}

func TestMutationsRequireAuth(t *testing.T) {
	ts, _ := newTestServer(t)
	params := map[string]interface{}{
		"admin":  rpcAddr(0xA0),
		"safety": rpcAddr(0xA1),
	}

	resp, decoded := call(t, ts, "", "revshare_initialize", params)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.NotNil(t, decoded.Error)
	require.Equal(t, codeUnauthorized, decoded.Error.Code)

	resp, decoded = call(t, ts, "wrong-token", "revshare_initialize", params)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.NotNil(t, decoded.Error)

	resp, decoded = call(t, ts, testToken, "revshare_initialize", params)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Nil(t, decoded.Error)
}

func TestReadsOpenWithoutToken(t *testing.T) {
	ts, engine := newTestServer(t)
	require.NoError(t, engine.Initialize(engineAddr(0xA0), engineAddr(0xA1)))

	_, decoded := call(t, ts, "", "revshare_getOfferingCount", map[string]interface{}{
		"issuer": rpcAddr(0x01),
	})
	result := resultMap(t, decoded)
	require.Equal(t, float64(0), result["count"])
}

func TestRegisterDepositClaimRoundTrip(t *testing.T) {
	ts, engine := newTestServer(t)
	require.NoError(t, engine.Initialize(engineAddr(0xA0), engineAddr(0xA1)))

	issuer := rpcAddr(0x01)
	token := rpcAddr(0x02)
	holder := rpcAddr(0x03)

	_, decoded := call(t, ts, testToken, "revshare_registerOffering", map[string]interface{}{
		"caller":          issuer,
		"token":           token,
		"revenueShareBps": 2500,
		"payoutAsset":     "usdc",
	})
	offering := resultMap(t, decoded)
	require.Equal(t, "USDC", offering["payoutAsset"])
	require.Equal(t, issuer, offering["issuer"])

	_, decoded = call(t, ts, testToken, "revshare_mint", map[string]interface{}{
		"caller": rpcAddr(0xA0),
		"asset":  "USDC",
		"to":     issuer,
		"amount": "1000000",
	})
	require.Nil(t, decoded.Error)

	_, decoded = call(t, ts, testToken, "revshare_setHolderShare", map[string]interface{}{
		"caller":   issuer,
		"token":    token,
		"holder":   holder,
		"shareBps": 2500,
	})
	require.Nil(t, decoded.Error)

	_, decoded = call(t, ts, testToken, "revshare_depositRevenue", map[string]interface{}{
		"caller":       issuer,
		"token":        token,
		"paymentAsset": "USDC",
		"amount":       "1000000",
		"periodId":     1,
	})
	require.Nil(t, decoded.Error)

	_, decoded = call(t, ts, "", "revshare_getClaimable", map[string]interface{}{
		"token":  token,
		"holder": holder,
	})
	require.Equal(t, "250000", resultMap(t, decoded)["claimable"])

	_, decoded = call(t, ts, testToken, "revshare_claim", map[string]interface{}{
		"caller":     holder,
		"token":      token,
		"maxPeriods": 0,
	})
	require.Equal(t, "250000", resultMap(t, decoded)["payout"])

	_, decoded = call(t, ts, "", "revshare_balanceOf", map[string]interface{}{
		"asset":   "USDC",
		"address": holder,
	})
	require.Equal(t, "250000", resultMap(t, decoded)["balance"])
}

func TestEngineErrorsSurfaceAsServerErrors(t *testing.T) {
	ts, engine := newTestServer(t)
	require.NoError(t, engine.Initialize(engineAddr(0xA0), engineAddr(0xA1)))

	resp, decoded := call(t, ts, "", "revshare_getOffering", map[string]interface{}{
		"issuer": rpcAddr(0x01),
		"token":  rpcAddr(0x02),
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotNil(t, decoded.Error)
	require.Equal(t, codeServerError, decoded.Error.Code)
	require.Equal(t, revshare.ErrOfferingNotFound.Error(), decoded.Error.Message)
}

func TestInvalidParamsRejected(t *testing.T) {
	ts, _ := newTestServer(t)
	resp, decoded := call(t, ts, "", "revshare_getOffering", map[string]interface{}{
		"issuer": "not-an-address",
		"token":  rpcAddr(0x02),
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.NotNil(t, decoded.Error)
	require.Equal(t, codeInvalidParams, decoded.Error.Code)
}

func TestHealthAndMetricsEndpoints(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := ts.Client().Get(ts.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = ts.Client().Get(ts.URL + "/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}
