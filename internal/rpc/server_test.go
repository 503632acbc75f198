package rpc

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"testing"

	"github.com/Klingon-tech/tokenview/config"
	"github.com/Klingon-tech/tokenview/internal/ledger"
	"github.com/Klingon-tech/tokenview/internal/ledger/ledgertest"
	klog "github.com/Klingon-tech/tokenview/internal/log"
	"github.com/Klingon-tech/tokenview/internal/storage"
	"github.com/Klingon-tech/tokenview/internal/token"
	"github.com/Klingon-tech/tokenview/pkg/types"
)

const anonymousText = "2vxsx-fae"

// testEnv holds all components for an RPC test.
type testEnv struct {
	server     *Server
	ledger     *ledgertest.Ledger
	svc        *ledger.Service
	tokenStore *token.Store
	url        string
	db         storage.DB
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return setupTestEnvWithConfig(t, config.RPCConfig{}, true)
}

func setupTestEnvWithConfig(t *testing.T, rpcCfg config.RPCConfig, tracking bool) *testEnv {
	t.Helper()
	klog.Init("error", false, "")

	fake := ledgertest.NewWithICP()
	fake.SetBalance(ledgertest.ICPLedger, types.Account{Owner: types.AnonymousPrincipal}, big.NewInt(123_456_789))

	svc := ledger.NewService(fake, nil)
	db := storage.NewMemory()

	srv := New("127.0.0.1:0", svc, rpcCfg)
	srv.SetInfo(Info{Version: "test", Network: "local", LedgerURL: "http://ledger.test"})

	var ts *token.Store
	if tracking {
		ts = token.NewStore(db)
		srv.SetTokenStore(ts)
	}
	if err := srv.Start(); err != nil {
		t.Fatalf("start rpc: %v", err)
	}
	t.Cleanup(func() { srv.Stop() })

	return &testEnv{
		server:     srv,
		ledger:     fake,
		svc:        svc,
		tokenStore: ts,
		url:        fmt.Sprintf("http://%s/", srv.Addr()),
		db:         db,
	}
}

func rpcCall(t *testing.T, url, method string, params interface{}) Response {
	t.Helper()
	req := Request{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      1,
	}
	body, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}

	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("post %s: %v", method, err)
	}
	defer resp.Body.Close()

	var rpcResp Response
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return rpcResp
}

// decodeResult re-decodes a generic result into a typed struct.
func decodeResult(t *testing.T, resp Response, target interface{}) {
	t.Helper()
	if resp.Error != nil {
		t.Fatalf("unexpected error: %d %s", resp.Error.Code, resp.Error.Message)
	}
	data, err := json.Marshal(resp.Result)
	if err != nil {
		t.Fatalf("marshal result: %v", err)
	}
	if err := json.Unmarshal(data, target); err != nil {
		t.Fatalf("unmarshal result: %v", err)
	}
}

func expectError(t *testing.T, resp Response, code int) {
	t.Helper()
	if resp.Error == nil {
		t.Fatalf("expected error %d, got result %v", code, resp.Result)
	}
	if resp.Error.Code != code {
		t.Errorf("error code = %d, want %d (%s)", resp.Error.Code, code, resp.Error.Message)
	}
}

// ── Account ─────────────────────────────────────────────────────────────

func TestRPC_AccountGetIdentifier(t *testing.T) {
	env := setupTestEnv(t)

	tests := []struct {
		name string
		sub  string
		want string
	}{
		{"default", "", "1c7a48ba6a562aa9eaa2481a9049cdf0433b9738c992d698c31d8abf89cadc79"},
		{"explicit zero", strings.Repeat("0", 64), "1c7a48ba6a562aa9eaa2481a9049cdf0433b9738c992d698c31d8abf89cadc79"},
		{"subaccount one", "01", "b8fab0be4ad596a3739ab93e7316a8647ee72e167709441da49ce9171828629d"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := rpcCall(t, env.url, "account_getIdentifier", AccountParam{Owner: anonymousText, Subaccount: tt.sub})
			var result AccountIdentifierResult
			decodeResult(t, resp, &result)

			if result.AccountIdentifier != tt.want {
				t.Errorf("account_identifier = %q, want %q", result.AccountIdentifier, tt.want)
			}
			if len(result.Subaccount) != 64 {
				t.Errorf("subaccount length = %d, want 64", len(result.Subaccount))
			}
			if result.Owner != anonymousText {
				t.Errorf("owner = %q, want %q", result.Owner, anonymousText)
			}
		})
	}
}

func TestRPC_AccountGetIdentifier_InvalidParams(t *testing.T) {
	env := setupTestEnv(t)

	tests := []struct {
		name   string
		params interface{}
	}{
		{"no params", nil},
		{"missing owner", AccountParam{}},
		{"bad owner", AccountParam{Owner: "not-a-principal"}},
		{"bad checksum", AccountParam{Owner: "2vxsx-fad"}},
		{"bad subaccount", AccountParam{Owner: anonymousText, Subaccount: "zz"}},
		{"long subaccount", AccountParam{Owner: anonymousText, Subaccount: strings.Repeat("1", 65)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := rpcCall(t, env.url, "account_getIdentifier", tt.params)
			expectError(t, resp, CodeInvalidParams)
		})
	}
}

func TestRPC_AccountEncode(t *testing.T) {
	env := setupTestEnv(t)

	resp := rpcCall(t, env.url, "account_encode", AccountParam{Owner: anonymousText})
	var def AccountEncodeResult
	decodeResult(t, resp, &def)
	if def.Account != anonymousText || !def.Default || def.Subaccount != "" {
		t.Errorf("default account = %+v", def)
	}

	resp = rpcCall(t, env.url, "account_encode", AccountParam{Owner: anonymousText, Subaccount: "1"})
	var sub AccountEncodeResult
	decodeResult(t, resp, &sub)
	if sub.Account != "2vxsx-fae-22yutvy.1" {
		t.Errorf("account = %q, want %q", sub.Account, "2vxsx-fae-22yutvy.1")
	}
	if sub.Default {
		t.Error("subaccount 1 should not be default")
	}
}

func TestRPC_AccountValidateIdentifier(t *testing.T) {
	env := setupTestEnv(t)

	valid := "1C7A48BA6A562AA9EAA2481A9049CDF0433B9738C992D698C31D8ABF89CADC79"
	resp := rpcCall(t, env.url, "account_validateIdentifier", AccountIdentifierParam{AccountIdentifier: valid})
	var ok ValidateIdentifierResult
	decodeResult(t, resp, &ok)
	if !ok.Valid {
		t.Fatalf("expected valid, got error %q", ok.Error)
	}
	if ok.AccountIdentifier != strings.ToLower(valid) {
		t.Errorf("account_identifier = %q, want lowercase", ok.AccountIdentifier)
	}

	bad := "0c7a48ba6a562aa9eaa2481a9049cdf0433b9738c992d698c31d8abf89cadc79"
	resp = rpcCall(t, env.url, "account_validateIdentifier", AccountIdentifierParam{AccountIdentifier: bad})
	var notOK ValidateIdentifierResult
	decodeResult(t, resp, &notOK)
	if notOK.Valid {
		t.Error("checksum mismatch should be invalid")
	}
	if notOK.Error == "" {
		t.Error("invalid result should carry an error")
	}

	resp = rpcCall(t, env.url, "account_validateIdentifier", AccountIdentifierParam{})
	expectError(t, resp, CodeInvalidParams)
}

// ── Token ───────────────────────────────────────────────────────────────

func TestRPC_TokenGetInfo(t *testing.T) {
	env := setupTestEnv(t)

	resp := rpcCall(t, env.url, "token_getInfo", TokenIDParam{TokenID: ledgertest.ICPLedger})
	var info TokenInfoResult
	decodeResult(t, resp, &info)

	if info.Symbol != "ICP" || info.Decimals != 8 || info.Fallback {
		t.Errorf("token info = %+v", info)
	}
	if info.Tracked {
		t.Error("token should not be tracked yet")
	}
}

func TestRPC_TokenGetInfo_Fallback(t *testing.T) {
	env := setupTestEnv(t)

	resp := rpcCall(t, env.url, "token_getInfo", TokenIDParam{TokenID: ledgertest.CKBTCLedger})
	var info TokenInfoResult
	decodeResult(t, resp, &info)

	if !info.Fallback {
		t.Error("unknown ledger should report fallback metadata")
	}
	if info.Name != token.FallbackName || info.Symbol != token.FallbackSymbol || info.Decimals != token.FallbackDecimals {
		t.Errorf("fallback = %+v", info)
	}

	// Fallback is not cached: once the ledger answers, real metadata shows.
	env.ledger.AddToken(ledgertest.CKBTCLedger, token.Metadata{Name: "ckBTC", Symbol: "ckBTC", Decimals: 8})
	resp = rpcCall(t, env.url, "token_getInfo", TokenIDParam{TokenID: ledgertest.CKBTCLedger})
	var recovered TokenInfoResult
	decodeResult(t, resp, &recovered)
	if recovered.Fallback || recovered.Symbol != "ckBTC" {
		t.Errorf("after recovery = %+v", recovered)
	}
}

func TestRPC_TokenGetInfo_RealMetadataMatchingFallbackValues(t *testing.T) {
	env := setupTestEnv(t)
	env.ledger.AddToken(ledgertest.CKBTCLedger, token.Fallback())

	resp := rpcCall(t, env.url, "token_getInfo", TokenIDParam{TokenID: ledgertest.CKBTCLedger})
	var info TokenInfoResult
	decodeResult(t, resp, &info)

	if info.Fallback {
		t.Errorf("ledger-provided metadata reported as fallback: %+v", info)
	}
	if info.Name != token.FallbackName || info.Decimals != token.FallbackDecimals {
		t.Errorf("token info = %+v", info)
	}
}

// failingHasDB fails every Has lookup.
type failingHasDB struct {
	storage.DB
}

func (failingHasDB) Has([]byte) (bool, error) {
	return false, errors.New("disk unavailable")
}

func TestRPC_TokenGetInfo_TrackedLookupFails(t *testing.T) {
	klog.Init("error", false, "")

	svc := ledger.NewService(ledgertest.NewWithICP(), nil)
	srv := New("127.0.0.1:0", svc, config.RPCConfig{})
	srv.SetTokenStore(token.NewStore(failingHasDB{DB: storage.NewMemory()}))
	if err := srv.Start(); err != nil {
		t.Fatalf("start rpc: %v", err)
	}
	t.Cleanup(func() { srv.Stop() })

	resp := rpcCall(t, fmt.Sprintf("http://%s/", srv.Addr()), "token_getInfo", TokenIDParam{TokenID: ledgertest.ICPLedger})
	var info TokenInfoResult
	decodeResult(t, resp, &info)

	if info.Symbol != "ICP" || info.Fallback {
		t.Errorf("token info = %+v", info)
	}
	if info.Tracked {
		t.Error("failed lookup reported as tracked")
	}
}

func TestRPC_TokenGetInfo_InvalidTokenID(t *testing.T) {
	env := setupTestEnv(t)

	for _, id := range []string{"", "nope", "ryjl3-tyaaa-aaaaa-aaaba-cab"} {
		resp := rpcCall(t, env.url, "token_getInfo", TokenIDParam{TokenID: id})
		expectError(t, resp, CodeInvalidParams)
	}
}

func TestRPC_TokenGetBalance(t *testing.T) {
	env := setupTestEnv(t)

	resp := rpcCall(t, env.url, "token_getBalance", BalanceParam{
		TokenID: ledgertest.ICPLedger,
		Owner:   anonymousText,
	})
	var bal BalanceResult
	decodeResult(t, resp, &bal)

	if bal.Raw != "123456789" {
		t.Errorf("raw = %q, want %q", bal.Raw, "123456789")
	}
	if bal.Formatted != "1.23456789" {
		t.Errorf("formatted = %q, want %q", bal.Formatted, "1.23456789")
	}
	if bal.Symbol != "ICP" || bal.Account != anonymousText {
		t.Errorf("balance = %+v", bal)
	}
}

func TestRPC_TokenGetBalance_ZeroSubaccountMatchesDefault(t *testing.T) {
	env := setupTestEnv(t)

	resp := rpcCall(t, env.url, "token_getBalance", BalanceParam{
		TokenID:    ledgertest.ICPLedger,
		Owner:      anonymousText,
		Subaccount: strings.Repeat("0", 64),
	})
	var bal BalanceResult
	decodeResult(t, resp, &bal)
	if bal.Raw != "123456789" {
		t.Errorf("raw = %q, want %q", bal.Raw, "123456789")
	}
}

func TestRPC_TokenGetBalance_LargeValue(t *testing.T) {
	env := setupTestEnv(t)

	huge, _ := new(big.Int).SetString("340282366920938463463374607431768211456", 10)
	env.ledger.SetBalance(ledgertest.ICPLedger, types.Account{Owner: types.AnonymousPrincipal}, huge)

	resp := rpcCall(t, env.url, "token_getBalance", BalanceParam{TokenID: ledgertest.ICPLedger, Owner: anonymousText})
	var bal BalanceResult
	decodeResult(t, resp, &bal)
	if bal.Raw != huge.String() {
		t.Errorf("raw = %q, want %q", bal.Raw, huge.String())
	}
	if bal.Formatted != "3402823669209384634633746074317.68211456" {
		t.Errorf("formatted = %q", bal.Formatted)
	}
}

func TestRPC_TokenGetBalance_RemoteFailure(t *testing.T) {
	env := setupTestEnv(t)
	env.ledger.FailBalances(errors.New("replica unavailable"))

	resp := rpcCall(t, env.url, "token_getBalance", BalanceParam{TokenID: ledgertest.ICPLedger, Owner: anonymousText})
	expectError(t, resp, CodeRemoteFailure)

	want := "failed to fetch balance for token " + ledgertest.ICPLedger
	if !strings.Contains(resp.Error.Message, want) {
		t.Errorf("message = %q, want it to contain %q", resp.Error.Message, want)
	}
	if !strings.Contains(resp.Error.Message, "replica unavailable") {
		t.Errorf("message = %q, want underlying cause", resp.Error.Message)
	}
}

func TestRPC_TokenGetBalance_InvalidOwner(t *testing.T) {
	env := setupTestEnv(t)

	resp := rpcCall(t, env.url, "token_getBalance", BalanceParam{TokenID: ledgertest.ICPLedger, Owner: "bogus"})
	expectError(t, resp, CodeInvalidParams)
	if env.ledger.BalanceCalls() != 0 {
		t.Errorf("balance calls = %d, want 0", env.ledger.BalanceCalls())
	}
}

func TestRPC_TokenTrackListUntrack(t *testing.T) {
	env := setupTestEnv(t)

	resp := rpcCall(t, env.url, "token_track", TrackParam{TokenID: ledgertest.ICPLedger, Label: "icp"})
	var tracked TrackedTokenResult
	decodeResult(t, resp, &tracked)
	if tracked.TokenID != ledgertest.ICPLedger || tracked.Label != "icp" || tracked.AddedAt == 0 {
		t.Errorf("tracked = %+v", tracked)
	}

	rpcCall(t, env.url, "token_track", TrackParam{TokenID: ledgertest.CKBTCLedger})

	resp = rpcCall(t, env.url, "token_list", nil)
	var list TokenListResult
	decodeResult(t, resp, &list)
	if len(list.Tokens) != 2 {
		t.Fatalf("tokens = %d, want 2", len(list.Tokens))
	}
	byID := make(map[string]TrackedTokenResult)
	for _, tt := range list.Tokens {
		byID[tt.TokenID] = tt
	}
	if icp := byID[ledgertest.ICPLedger]; icp.Symbol != "ICP" || icp.Label != "icp" {
		t.Errorf("icp entry = %+v", icp)
	}
	if ck := byID[ledgertest.CKBTCLedger]; !ck.Fallback {
		t.Errorf("ckBTC entry should use fallback metadata: %+v", ck)
	}

	resp = rpcCall(t, env.url, "token_getInfo", TokenIDParam{TokenID: ledgertest.ICPLedger})
	var info TokenInfoResult
	decodeResult(t, resp, &info)
	if !info.Tracked {
		t.Error("token_getInfo should report tracked")
	}

	resp = rpcCall(t, env.url, "token_untrack", TokenIDParam{TokenID: ledgertest.ICPLedger})
	var untrack UntrackResult
	decodeResult(t, resp, &untrack)
	if !untrack.Removed {
		t.Error("first untrack should report removed")
	}

	resp = rpcCall(t, env.url, "token_untrack", TokenIDParam{TokenID: ledgertest.ICPLedger})
	decodeResult(t, resp, &untrack)
	if untrack.Removed {
		t.Error("second untrack should not report removed")
	}

	resp = rpcCall(t, env.url, "token_list", nil)
	decodeResult(t, resp, &list)
	if len(list.Tokens) != 1 {
		t.Errorf("tokens after untrack = %d, want 1", len(list.Tokens))
	}
}

func TestRPC_TokenTrack_Invalid(t *testing.T) {
	env := setupTestEnv(t)

	resp := rpcCall(t, env.url, "token_track", TrackParam{TokenID: "not-a-ledger"})
	expectError(t, resp, CodeInvalidParams)

	resp = rpcCall(t, env.url, "token_track", TrackParam{})
	expectError(t, resp, CodeInvalidParams)
}

func TestRPC_TokenList_Empty(t *testing.T) {
	env := setupTestEnv(t)

	resp := rpcCall(t, env.url, "token_list", nil)
	var list TokenListResult
	decodeResult(t, resp, &list)
	if list.Tokens == nil || len(list.Tokens) != 0 {
		t.Errorf("tokens = %v, want empty non-nil", list.Tokens)
	}
}

func TestRPC_TrackingDisabled(t *testing.T) {
	env := setupTestEnvWithConfig(t, config.RPCConfig{}, false)

	for _, method := range []string{"token_list", "token_track", "token_untrack"} {
		t.Run(method, func(t *testing.T) {
			resp := rpcCall(t, env.url, method, TrackParam{TokenID: ledgertest.ICPLedger})
			expectError(t, resp, CodeNotFound)
		})
	}

	resp := rpcCall(t, env.url, "token_getInfo", TokenIDParam{TokenID: ledgertest.ICPLedger})
	var info TokenInfoResult
	decodeResult(t, resp, &info)
	if info.Tracked {
		t.Error("tracked should be false without a store")
	}
}

// ── Gateway ─────────────────────────────────────────────────────────────

func TestRPC_GatewayGetInfo(t *testing.T) {
	env := setupTestEnv(t)

	rpcCall(t, env.url, "token_getInfo", TokenIDParam{TokenID: ledgertest.ICPLedger})
	rpcCall(t, env.url, "token_track", TrackParam{TokenID: ledgertest.ICPLedger})

	resp := rpcCall(t, env.url, "gateway_getInfo", nil)
	var info GatewayInfoResult
	decodeResult(t, resp, &info)

	if info.Version != "test" || info.Network != "local" || info.LedgerURL != "http://ledger.test" {
		t.Errorf("info = %+v", info)
	}
	if info.CachedTokens != 1 {
		t.Errorf("cached_tokens = %d, want 1", info.CachedTokens)
	}
	if !info.Tracking || info.TrackedTokens != 1 {
		t.Errorf("tracking = %v, tracked_tokens = %d", info.Tracking, info.TrackedTokens)
	}
}

// ── Protocol ────────────────────────────────────────────────────────────

func TestRPC_MethodNotFound(t *testing.T) {
	env := setupTestEnv(t)

	resp := rpcCall(t, env.url, "chain_getInfo", nil)
	expectError(t, resp, CodeMethodNotFound)
}

func TestRPC_InvalidJSON(t *testing.T) {
	env := setupTestEnv(t)

	resp, err := http.Post(env.url, "application/json", strings.NewReader("{not json"))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()

	var rpcResp Response
	json.NewDecoder(resp.Body).Decode(&rpcResp)
	expectError(t, rpcResp, CodeParseError)
}

func TestRPC_WrongVersion(t *testing.T) {
	env := setupTestEnv(t)

	body := `{"jsonrpc":"1.0","method":"gateway_getInfo","id":1}`
	resp, err := http.Post(env.url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()

	var rpcResp Response
	json.NewDecoder(resp.Body).Decode(&rpcResp)
	expectError(t, rpcResp, CodeInvalidRequest)
}

func TestRPC_GetMethodRejected(t *testing.T) {
	env := setupTestEnv(t)

	resp, err := http.Get(env.url)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()

	var rpcResp Response
	json.NewDecoder(resp.Body).Decode(&rpcResp)
	expectError(t, rpcResp, CodeInvalidRequest)
}

func TestRPC_BodyTooLarge(t *testing.T) {
	env := setupTestEnv(t)

	body := `{"jsonrpc":"2.0","method":"gateway_getInfo","params":"` + strings.Repeat("x", maxBodySize) + `","id":1}`
	resp, err := http.Post(env.url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()

	var rpcResp Response
	json.NewDecoder(resp.Body).Decode(&rpcResp)
	expectError(t, rpcResp, CodeInvalidRequest)
}

// --- IP Filtering ---

func TestRPC_IPFilter_Allowed(t *testing.T) {
	env := setupTestEnvWithConfig(t, config.RPCConfig{
		AllowedIPs: []string{"127.0.0.1"},
	}, true)

	resp := rpcCall(t, env.url, "gateway_getInfo", nil)
	if resp.Error != nil {
		t.Errorf("expected success for 127.0.0.1, got error: %s", resp.Error.Message)
	}
}

func TestRPC_IPFilter_Blocked(t *testing.T) {
	env := setupTestEnvWithConfig(t, config.RPCConfig{
		AllowedIPs: []string{"10.0.0.0/8"},
	}, true)

	req := Request{JSONRPC: "2.0", Method: "gateway_getInfo", ID: 1}
	body, _ := json.Marshal(req)
	resp, err := http.Post(env.url, "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403, got %d", resp.StatusCode)
	}
}

func TestRPC_IPFilter_Empty_AllowsAll(t *testing.T) {
	env := setupTestEnvWithConfig(t, config.RPCConfig{AllowedIPs: nil}, true)

	resp := rpcCall(t, env.url, "gateway_getInfo", nil)
	if resp.Error != nil {
		t.Errorf("empty AllowedIPs should allow all: %s", resp.Error.Message)
	}
}

func TestParseAllowedIPs(t *testing.T) {
	nets := parseAllowedIPs([]string{"127.0.0.1", "10.0.0.0/8", "::1", "garbage"})
	if len(nets) != 3 {
		t.Fatalf("nets = %d, want 3", len(nets))
	}
	if ones, _ := nets[0].Mask.Size(); ones != 32 {
		t.Errorf("ipv4 mask = /%d, want /32", ones)
	}
	if ones, _ := nets[2].Mask.Size(); ones != 128 {
		t.Errorf("ipv6 mask = /%d, want /128", ones)
	}
}

// --- CORS ---

func corsRequest(t *testing.T, url, method, origin string) *http.Response {
	t.Helper()
	req := Request{JSONRPC: "2.0", Method: "gateway_getInfo", ID: 1}
	body, _ := json.Marshal(req)
	httpReq, _ := http.NewRequest(method, url, bytes.NewReader(body))
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Origin", origin)

	resp, err := http.DefaultClient.Do(httpReq)
	if err != nil {
		t.Fatalf("%s: %v", method, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestRPC_CORS_WildcardOrigin(t *testing.T) {
	env := setupTestEnvWithConfig(t, config.RPCConfig{CORSOrigins: []string{"*"}}, true)

	resp := corsRequest(t, env.url, http.MethodPost, "http://example.com")
	if origin := resp.Header.Get("Access-Control-Allow-Origin"); origin != "*" {
		t.Errorf("CORS origin = %q, want %q", origin, "*")
	}
}

func TestRPC_CORS_SpecificOrigin(t *testing.T) {
	env := setupTestEnvWithConfig(t, config.RPCConfig{CORSOrigins: []string{"http://myapp.com"}}, true)

	resp := corsRequest(t, env.url, http.MethodPost, "http://myapp.com")
	if origin := resp.Header.Get("Access-Control-Allow-Origin"); origin != "http://myapp.com" {
		t.Errorf("CORS origin = %q, want %q", origin, "http://myapp.com")
	}

	resp2 := corsRequest(t, env.url, http.MethodPost, "http://evil.com")
	if origin := resp2.Header.Get("Access-Control-Allow-Origin"); origin != "" {
		t.Errorf("non-matching origin should have no CORS header, got %q", origin)
	}
}

func TestRPC_CORS_Preflight(t *testing.T) {
	env := setupTestEnvWithConfig(t, config.RPCConfig{CORSOrigins: []string{"*"}}, true)

	resp := corsRequest(t, env.url, http.MethodOptions, "http://example.com")
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("preflight status = %d, want 204", resp.StatusCode)
	}
	if resp.Header.Get("Access-Control-Allow-Methods") == "" {
		t.Error("preflight should have Allow-Methods header")
	}
}

func TestRPC_CORS_Disabled(t *testing.T) {
	env := setupTestEnvWithConfig(t, config.RPCConfig{CORSOrigins: nil}, true)

	resp := corsRequest(t, env.url, http.MethodPost, "http://example.com")
	if origin := resp.Header.Get("Access-Control-Allow-Origin"); origin != "" {
		t.Errorf("disabled CORS should have no origin header, got %q", origin)
	}
}
