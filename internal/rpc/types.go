package rpc

// JSON-RPC 2.0 error codes.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
	CodeNotFound       = -32000
	// CodeRemoteFailure reports that the ledger could not answer.
	CodeRemoteFailure = -32001
)

// Request is a JSON-RPC 2.0 request.
type Request struct {
	JSONRPC string      `json:"jsonrpc"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params"`
	ID      interface{} `json:"id"`
}

// Response is a JSON-RPC 2.0 response.
type Response struct {
	JSONRPC string      `json:"jsonrpc"`
	Result  interface{} `json:"result,omitempty"`
	Error   *Error      `json:"error,omitempty"`
	ID      interface{} `json:"id"`
}

// Error is a JSON-RPC 2.0 error object.
type Error struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ── Param types ─────────────────────────────────────────────────────────

// AccountParam names an account by owner principal text and an optional
// subaccount (up to 64 hex characters).
type AccountParam struct {
	Owner      string `json:"owner"`
	Subaccount string `json:"subaccount,omitempty"`
}

// AccountIdentifierParam is used by account_validateIdentifier.
type AccountIdentifierParam struct {
	AccountIdentifier string `json:"account_identifier"`
}

// TokenIDParam is used by endpoints that take a single token ledger id.
type TokenIDParam struct {
	TokenID string `json:"token_id"`
}

// BalanceParam is used by token_getBalance.
type BalanceParam struct {
	TokenID    string `json:"token_id"`
	Owner      string `json:"owner"`
	Subaccount string `json:"subaccount,omitempty"`
}

// TrackParam is used by token_track.
type TrackParam struct {
	TokenID string `json:"token_id"`
	Label   string `json:"label,omitempty"`
}

// ── Result types ────────────────────────────────────────────────────────

// AccountIdentifierResult is returned by account_getIdentifier.
type AccountIdentifierResult struct {
	Owner             string `json:"owner"`
	Subaccount        string `json:"subaccount"`
	Account           string `json:"account"`
	AccountIdentifier string `json:"account_identifier"`
}

// AccountEncodeResult is returned by account_encode.
type AccountEncodeResult struct {
	Account    string `json:"account"`
	Owner      string `json:"owner"`
	Subaccount string `json:"subaccount,omitempty"`
	Default    bool   `json:"default"`
}

// ValidateIdentifierResult is returned by account_validateIdentifier.
type ValidateIdentifierResult struct {
	Valid             bool   `json:"valid"`
	AccountIdentifier string `json:"account_identifier,omitempty"`
	Error             string `json:"error,omitempty"`
}

// TokenInfoResult describes a token ledger.
type TokenInfoResult struct {
	TokenID  string `json:"token_id"`
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals uint8  `json:"decimals"`
	Fallback bool   `json:"fallback,omitempty"`
	Tracked  bool   `json:"tracked"`
}

// BalanceResult is returned by token_getBalance. Raw is a decimal string so
// values beyond 2^53 survive JSON clients.
type BalanceResult struct {
	TokenID   string `json:"token_id"`
	Account   string `json:"account"`
	Raw       string `json:"raw"`
	Formatted string `json:"formatted"`
	Name      string `json:"name"`
	Symbol    string `json:"symbol"`
	Decimals  uint8  `json:"decimals"`
	Fallback  bool   `json:"fallback,omitempty"`
}

// TrackedTokenResult is a tracked token enriched with metadata.
type TrackedTokenResult struct {
	TokenID  string `json:"token_id"`
	Label    string `json:"label,omitempty"`
	AddedAt  int64  `json:"added_at"`
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals uint8  `json:"decimals"`
	Fallback bool   `json:"fallback,omitempty"`
}

// TokenListResult is returned by token_list.
type TokenListResult struct {
	Tokens []TrackedTokenResult `json:"tokens"`
}

// UntrackResult is returned by token_untrack.
type UntrackResult struct {
	TokenID string `json:"token_id"`
	Removed bool   `json:"removed"`
}

// GatewayInfoResult is returned by gateway_getInfo.
type GatewayInfoResult struct {
	Version       string `json:"version"`
	Network       string `json:"network"`
	LedgerURL     string `json:"ledger_url"`
	CachedTokens  int    `json:"cached_tokens"`
	TrackedTokens int    `json:"tracked_tokens"`
	Tracking      bool   `json:"tracking"`
}
