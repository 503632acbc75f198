package rpc

import (
	"context"
	"errors"
	"fmt"

	"github.com/Klingon-tech/tokenview/internal/ledger"
	"github.com/Klingon-tech/tokenview/internal/storage"
	"github.com/Klingon-tech/tokenview/pkg/crypto"
	"github.com/Klingon-tech/tokenview/pkg/types"
	"golang.org/x/sync/errgroup"
)

// maxListFetches bounds concurrent metadata lookups in token_list.
const maxListFetches = 8

// ── Account endpoints ───────────────────────────────────────────────────

func (s *Server) handleAccountGetIdentifier(req *Request) (interface{}, *Error) {
	var params AccountParam
	if err := parseParams(req, &params); err != nil {
		return nil, err
	}
	acct, rpcErr := parseAccount(params.Owner, params.Subaccount)
	if rpcErr != nil {
		return nil, rpcErr
	}

	id, err := crypto.AccountIdentifierOf(acct)
	if err != nil {
		return nil, &Error{Code: CodeInvalidParams, Message: err.Error()}
	}
	return &AccountIdentifierResult{
		Owner:             acct.Owner.Text(),
		Subaccount:        acct.EffectiveSubaccount().Hex(),
		Account:           acct.String(),
		AccountIdentifier: id.Hex(),
	}, nil
}

func (s *Server) handleAccountEncode(req *Request) (interface{}, *Error) {
	var params AccountParam
	if err := parseParams(req, &params); err != nil {
		return nil, err
	}
	acct, rpcErr := parseAccount(params.Owner, params.Subaccount)
	if rpcErr != nil {
		return nil, rpcErr
	}

	res := &AccountEncodeResult{
		Account: acct.String(),
		Owner:   acct.Owner.Text(),
		Default: acct.IsDefault(),
	}
	if !acct.IsDefault() {
		res.Subaccount = acct.EffectiveSubaccount().Hex()
	}
	return res, nil
}

func (s *Server) handleAccountValidateIdentifier(req *Request) (interface{}, *Error) {
	var params AccountIdentifierParam
	if err := parseParams(req, &params); err != nil {
		return nil, err
	}
	if params.AccountIdentifier == "" {
		return nil, &Error{Code: CodeInvalidParams, Message: "account_identifier is required"}
	}

	id, err := types.ParseAccountIdentifier(params.AccountIdentifier)
	if err != nil {
		return &ValidateIdentifierResult{Valid: false, Error: err.Error()}, nil
	}
	return &ValidateIdentifierResult{Valid: true, AccountIdentifier: id.Hex()}, nil
}

// ── Token endpoints ─────────────────────────────────────────────────────

func (s *Server) handleTokenGetInfo(ctx context.Context, req *Request) (interface{}, *Error) {
	var params TokenIDParam
	if err := parseParams(req, &params); err != nil {
		return nil, err
	}
	tokenID, rpcErr := parseTokenID(params.TokenID)
	if rpcErr != nil {
		return nil, rpcErr
	}

	meta, known := s.svc.Metadata(ctx, tokenID)
	res := &TokenInfoResult{
		TokenID:  tokenID,
		Name:     meta.Name,
		Symbol:   meta.Symbol,
		Decimals: meta.Decimals,
		Fallback: !known,
	}
	if s.tokenStore != nil {
		tracked, err := s.tokenStore.Has(tokenID)
		if err != nil {
			s.logger.Debug().Err(err).Str("token_id", tokenID).Msg("Tracked lookup failed")
		}
		res.Tracked = tracked
	}
	return res, nil
}

func (s *Server) handleTokenGetBalance(ctx context.Context, req *Request) (interface{}, *Error) {
	var params BalanceParam
	if err := parseParams(req, &params); err != nil {
		return nil, err
	}
	tokenID, rpcErr := parseTokenID(params.TokenID)
	if rpcErr != nil {
		return nil, rpcErr
	}
	acct, rpcErr := parseAccount(params.Owner, params.Subaccount)
	if rpcErr != nil {
		return nil, rpcErr
	}

	bal, err := s.svc.DisplayBalance(ctx, tokenID, acct.Owner, acct.Subaccount)
	if err != nil {
		return nil, serviceError(err)
	}
	return &BalanceResult{
		TokenID:   bal.TokenID,
		Account:   bal.Account.String(),
		Raw:       bal.Raw.String(),
		Formatted: bal.Formatted,
		Name:      bal.Name,
		Symbol:    bal.Symbol,
		Decimals:  bal.Decimals,
		Fallback:  bal.Fallback,
	}, nil
}

func (s *Server) handleTokenList(ctx context.Context, _ *Request) (interface{}, *Error) {
	if err := s.requireTokenStore(); err != nil {
		return nil, err
	}

	list, err := s.tokenStore.List()
	if err != nil {
		return nil, &Error{Code: CodeInternalError, Message: fmt.Sprintf("list tokens: %v", err)}
	}

	results := make([]TrackedTokenResult, len(list))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxListFetches)
	for i, tt := range list {
		i, tt := i, tt
		g.Go(func() error {
			meta, known := s.svc.Metadata(gctx, tt.LedgerID)
			results[i] = TrackedTokenResult{
				TokenID:  tt.LedgerID,
				Label:    tt.Label,
				AddedAt:  tt.AddedAt,
				Name:     meta.Name,
				Symbol:   meta.Symbol,
				Decimals: meta.Decimals,
				Fallback: !known,
			}
			return nil
		})
	}
	_ = g.Wait()

	return &TokenListResult{Tokens: results}, nil
}

func (s *Server) handleTokenTrack(req *Request) (interface{}, *Error) {
	if err := s.requireTokenStore(); err != nil {
		return nil, err
	}

	var params TrackParam
	if err := parseParams(req, &params); err != nil {
		return nil, err
	}
	if params.TokenID == "" {
		return nil, &Error{Code: CodeInvalidParams, Message: "token_id is required"}
	}

	tt, err := s.tokenStore.Track(params.TokenID, params.Label)
	if err != nil {
		if errors.Is(err, types.ErrInvalidIdentity) {
			return nil, &Error{Code: CodeInvalidParams, Message: fmt.Sprintf("invalid token_id: %v", err)}
		}
		return nil, &Error{Code: CodeInternalError, Message: fmt.Sprintf("track token: %v", err)}
	}
	s.logger.Info().Str("token_id", tt.LedgerID).Msg("Token tracked")

	return &TrackedTokenResult{
		TokenID: tt.LedgerID,
		Label:   tt.Label,
		AddedAt: tt.AddedAt,
	}, nil
}

func (s *Server) handleTokenUntrack(req *Request) (interface{}, *Error) {
	if err := s.requireTokenStore(); err != nil {
		return nil, err
	}

	var params TokenIDParam
	if err := parseParams(req, &params); err != nil {
		return nil, err
	}
	tokenID, rpcErr := parseTokenID(params.TokenID)
	if rpcErr != nil {
		return nil, rpcErr
	}

	had, err := s.tokenStore.Has(tokenID)
	if err != nil {
		return nil, &Error{Code: CodeInternalError, Message: fmt.Sprintf("untrack token: %v", err)}
	}
	if err := s.tokenStore.Delete(tokenID); err != nil {
		return nil, &Error{Code: CodeInternalError, Message: fmt.Sprintf("untrack token: %v", err)}
	}
	return &UntrackResult{TokenID: tokenID, Removed: had}, nil
}

// ── Gateway endpoints ───────────────────────────────────────────────────

func (s *Server) handleGatewayGetInfo(_ *Request) (interface{}, *Error) {
	res := &GatewayInfoResult{
		Version:      s.info.Version,
		Network:      s.info.Network,
		LedgerURL:    s.info.LedgerURL,
		CachedTokens: s.svc.Cache().Len(),
		Tracking:     s.tokenStore != nil,
	}
	if s.tokenStore != nil {
		if list, err := s.tokenStore.List(); err == nil {
			res.TrackedTokens = len(list)
		}
	}
	return res, nil
}

// ── Helpers ─────────────────────────────────────────────────────────────

func (s *Server) requireTokenStore() *Error {
	if s.tokenStore == nil {
		return &Error{Code: CodeNotFound, Message: "token tracking not enabled"}
	}
	return nil
}

// parseAccount decodes an owner principal and optional subaccount hex.
func parseAccount(owner, subHex string) (types.Account, *Error) {
	if owner == "" {
		return types.Account{}, &Error{Code: CodeInvalidParams, Message: "owner is required"}
	}
	p, err := types.ParsePrincipal(owner)
	if err != nil {
		return types.Account{}, &Error{Code: CodeInvalidParams, Message: fmt.Sprintf("invalid owner: %v", err)}
	}
	if subHex == "" {
		return types.Account{Owner: p}, nil
	}
	sub, err := types.ParseSubaccount(subHex)
	if err != nil {
		return types.Account{}, &Error{Code: CodeInvalidParams, Message: fmt.Sprintf("invalid subaccount: %v", err)}
	}
	return types.NewAccount(p, &sub), nil
}

// parseTokenID validates a ledger principal and returns its canonical text.
func parseTokenID(s string) (string, *Error) {
	if s == "" {
		return "", &Error{Code: CodeInvalidParams, Message: "token_id is required"}
	}
	p, err := types.ParsePrincipal(s)
	if err != nil {
		return "", &Error{Code: CodeInvalidParams, Message: fmt.Sprintf("invalid token_id: %v", err)}
	}
	return p.Text(), nil
}

// serviceError maps façade errors onto JSON-RPC error objects.
func serviceError(err error) *Error {
	switch {
	case errors.Is(err, ledger.ErrRemoteQuery):
		return &Error{Code: CodeRemoteFailure, Message: err.Error()}
	case errors.Is(err, types.ErrInvalidIdentity):
		return &Error{Code: CodeInvalidParams, Message: err.Error()}
	case errors.Is(err, storage.ErrNotFound):
		return &Error{Code: CodeNotFound, Message: err.Error()}
	default:
		return &Error{Code: CodeInternalError, Message: err.Error()}
	}
}
