package rpc

import (
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"strings"

	"dexledger/crypto"
	"dexledger/native/faucet"
	"dexledger/native/router"
	"dexledger/venue"
)

type executeTradeParams struct {
	Account  string `json:"account"`
	Side     string `json:"side"`
	Quantity string `json:"quantity"`
	BaseIn   string `json:"baseIn,omitempty"`
	QuoteIn  string `json:"quoteIn,omitempty"`
}

type transferResult struct {
	Symbol string `json:"symbol"`
	Amount string `json:"amount"`
}

type executeTradeResult struct {
	Account       string           `json:"account"`
	OrderSequence uint64           `json:"orderSequence"`
	BaseOut       string           `json:"baseOut"`
	QuoteOut      string           `json:"quoteOut"`
	RewardOut     string           `json:"rewardOut"`
	Transfers     []transferResult `json:"transfers"`
}

func singleParam(req *RPCRequest, out interface{}) error {
	if len(req.Params) != 1 {
		return errors.New("exactly one parameter object expected")
	}
	return json.Unmarshal(req.Params[0], out)
}

func parseOptionalAmount(raw string) (*big.Int, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return big.NewInt(0), nil
	}
	amount, ok := new(big.Int).SetString(trimmed, 10)
	if !ok || amount.Sign() < 0 {
		return nil, errors.New("invalid amount " + raw)
	}
	return amount, nil
}

func amountField(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

func (s *Server) handleExecuteTrade(w http.ResponseWriter, req *RPCRequest) {
	var params executeTradeParams
	if err := singleParam(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	account, err := crypto.DecodeAddress(params.Account)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	side, err := router.ParseSide(params.Side)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	quantity, err := parseOptionalAmount(params.Quantity)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	baseIn, err := parseOptionalAmount(params.BaseIn)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	quoteIn, err := parseOptionalAmount(params.QuoteIn)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}

	orderParams := router.OrderParams{Side: side, Quantity: quantity, BaseIn: baseIn, QuoteIn: quoteIn}
	result, err := s.ledger.ExecuteTrade(s.venue, account, orderParams)
	if err != nil {
		var rejection *venue.RejectionError
		if errors.As(err, &rejection) {
			writeError(w, http.StatusOK, req.ID, codeVenueRejected, "venue_rejected", rejection.Message)
			return
		}
		writeError(w, http.StatusBadRequest, req.ID, codeServerError, "trade_failed", err.Error())
		return
	}

	transfers := make([]transferResult, 0, 3)
	for _, leg := range s.ledger.Transfers(result) {
		transfers = append(transfers, transferResult{Symbol: leg.Symbol, Amount: leg.Amount.String()})
	}
	writeResult(w, req.ID, executeTradeResult{
		Account:       account.String(),
		OrderSequence: result.OrderSequence,
		BaseOut:       amountField(result.BaseOut),
		QuoteOut:      amountField(result.QuoteOut),
		RewardOut:     amountField(result.RewardOut),
		Transfers:     transfers,
	})
}

type faucetMintParams struct {
	Asset   string `json:"asset"`
	Account string `json:"account"`
}

type faucetMintResult struct {
	Asset   string `json:"asset"`
	Account string `json:"account"`
	Minted  bool   `json:"minted"`
	Amount  string `json:"amount"`
	Period  uint64 `json:"period"`
}

func (s *Server) handleFaucetMint(w http.ResponseWriter, req *RPCRequest) {
	var params faucetMintParams
	if err := singleParam(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	account, err := crypto.DecodeAddress(params.Account)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	outcome, period, err := s.ledger.RequestFaucetMint(params.Asset, account)
	if err != nil {
		if errors.Is(err, faucet.ErrUnknownAsset) {
			writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, req.ID, codeServerError, "faucet_failed", err.Error())
		return
	}
	writeResult(w, req.ID, faucetMintResult{
		Asset:   strings.ToUpper(strings.TrimSpace(params.Asset)),
		Account: account.String(),
		Minted:  outcome.Minted,
		Amount:  amountField(outcome.Amount),
		Period:  period,
	})
}

type userStateParams struct {
	Account string `json:"account"`
}

type userStateResult struct {
	Account          string            `json:"account"`
	SwapCount        uint64            `json:"swapCount"`
	LastFaucetPeriod map[string]uint64 `json:"lastFaucetPeriod"`
}

func (s *Server) handleUserState(w http.ResponseWriter, req *RPCRequest) {
	var params userStateParams
	if err := singleParam(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	account, err := crypto.DecodeAddress(params.Account)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, "invalid_params", err.Error())
		return
	}
	state, err := s.ledger.QueryUserState(account)
	if err != nil {
		writeError(w, http.StatusInternalServerError, req.ID, codeServerError, "query_failed", err.Error())
		return
	}
	writeResult(w, req.ID, userStateResult{
		Account:          account.String(),
		SwapCount:        state.SwapCount,
		LastFaucetPeriod: state.LastFaucetPeriod,
	})
}

type seedVenueResult struct {
	Seeded bool `json:"seeded"`
}

func (s *Server) handleSeedVenue(w http.ResponseWriter, req *RPCRequest) {
	if err := s.ledger.SeedVenue(s.venue); err != nil {
		if errors.Is(err, router.ErrAlreadySeeded) {
			writeError(w, http.StatusConflict, req.ID, codeAlreadySeeded, "already_seeded", err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, req.ID, codeServerError, "seed_failed", err.Error())
		return
	}
	writeResult(w, req.ID, seedVenueResult{Seeded: true})
}
