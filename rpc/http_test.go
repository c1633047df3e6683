package rpc

import (
	"bytes"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"dexledger/core"
	"dexledger/crypto"
	"dexledger/native/router"
	"dexledger/storage"
)

type stubPeriods struct {
	period uint64
}

func (s *stubPeriods) Current() uint64 { return s.period }

type stubVenue struct {
	fillBase  *big.Int
	fillQuote *big.Int
}

func (v *stubVenue) PlaceMarketOrder(sequence uint64, quantity *big.Int, side router.Side, baseIn, quoteIn *big.Int) (*big.Int, *big.Int, error) {
	return v.fillBase, v.fillQuote, nil
}

func (v *stubVenue) PlaceLimitOrder(sequence uint64, price, quantity *big.Int, side router.Side, expiry uint64) error {
	return nil
}

func (v *stubVenue) DepositBase(amount *big.Int) error  { return nil }
func (v *stubVenue) DepositQuote(amount *big.Int) error { return nil }

func newTestServer(t *testing.T) *Server {
	t.Helper()
	params := core.Params{
		BaseSymbol:        "DEX",
		QuoteSymbol:       "ZUSD",
		BaseFaucetAmount:  big.NewInt(1000),
		QuoteFaucetAmount: big.NewInt(100),
		RewardSymbol:      "DRP",
		RewardUnit:        big.NewInt(1),
		Seed: router.SeedConfig{
			BaseDeposit:  big.NewInt(10),
			QuoteDeposit: big.NewInt(10),
			AskPrice:     big.NewInt(1),
			AskQuantity:  big.NewInt(1),
			BidPrice:     big.NewInt(1),
			BidQuantity:  big.NewInt(1),
			OrderExpiry:  60,
		},
	}
	ledger, err := core.NewLedger(storage.NewMemDB(), params, &stubPeriods{period: 3})
	if err != nil {
		t.Fatalf("new ledger: %v", err)
	}
	return NewServer(ledger, &stubVenue{fillBase: big.NewInt(5), fillQuote: big.NewInt(0)})
}

func postRPC(t *testing.T, server *Server, method string, params interface{}) RPCResponse {
	t.Helper()
	var rawParams []json.RawMessage
	if params != nil {
		encoded, err := json.Marshal(params)
		if err != nil {
			t.Fatalf("marshal params: %v", err)
		}
		rawParams = []json.RawMessage{encoded}
	}
	body, err := json.Marshal(RPCRequest{JSONRPC: jsonRPCVersion, Method: method, Params: rawParams, ID: 1})
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	server.handle(rec, req)

	var resp RPCResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func testAccount() string {
	raw := make([]byte, crypto.AddressLength)
	raw[0] = 0x11
	return crypto.MustNewAddress(raw).String()
}

func TestExecuteTradeEndpoint(t *testing.T) {
	server := newTestServer(t)
	account := testAccount()

	resp := postRPC(t, server, "dex_executeTrade", executeTradeParams{
		Account:  account,
		Side:     "buy",
		Quantity: "5",
		QuoteIn:  "50",
	})
	if resp.Error != nil {
		t.Fatalf("unexpected error: %+v", resp.Error)
	}
	encoded, _ := json.Marshal(resp.Result)
	var result executeTradeResult
	if err := json.Unmarshal(encoded, &result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if result.OrderSequence != 1 || result.BaseOut != "5" || result.RewardOut != "0" {
		t.Fatalf("unexpected result %+v", result)
	}
	if len(result.Transfers) != 1 || result.Transfers[0].Symbol != "DEX" {
		t.Fatalf("zero legs must be suppressed: %+v", result.Transfers)
	}
}

func TestFaucetMintEndpoint(t *testing.T) {
	server := newTestServer(t)
	account := testAccount()

	resp := postRPC(t, server, "dex_faucetMint", faucetMintParams{Asset: "ZUSD", Account: account})
	if resp.Error != nil {
		t.Fatalf("unexpected error: %+v", resp.Error)
	}
	encoded, _ := json.Marshal(resp.Result)
	var result faucetMintResult
	if err := json.Unmarshal(encoded, &result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if !result.Minted || result.Amount != "100" || result.Period != 3 {
		t.Fatalf("unexpected result %+v", result)
	}

	// Second request in the same period resolves to a zero-value outcome.
	resp = postRPC(t, server, "dex_faucetMint", faucetMintParams{Asset: "ZUSD", Account: account})
	encoded, _ = json.Marshal(resp.Result)
	if err := json.Unmarshal(encoded, &result); err != nil {
		t.Fatalf("decode repeat result: %v", err)
	}
	if result.Minted || result.Amount != "0" {
		t.Fatalf("expected already-minted outcome, got %+v", result)
	}
}

func TestFaucetMintUnknownAsset(t *testing.T) {
	server := newTestServer(t)
	resp := postRPC(t, server, "dex_faucetMint", faucetMintParams{Asset: "BTC", Account: testAccount()})
	if resp.Error == nil || resp.Error.Code != codeInvalidParams {
		t.Fatalf("expected invalid params error, got %+v", resp.Error)
	}
}

func TestUserStateEndpoint(t *testing.T) {
	server := newTestServer(t)
	account := testAccount()

	postRPC(t, server, "dex_executeTrade", executeTradeParams{Account: account, Side: "buy", Quantity: "1", QuoteIn: "10"})
	resp := postRPC(t, server, "dex_userState", userStateParams{Account: account})
	if resp.Error != nil {
		t.Fatalf("unexpected error: %+v", resp.Error)
	}
	encoded, _ := json.Marshal(resp.Result)
	var result userStateResult
	if err := json.Unmarshal(encoded, &result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if result.SwapCount != 1 {
		t.Fatalf("unexpected swap count %d", result.SwapCount)
	}
}

func TestMethodNotFound(t *testing.T) {
	server := newTestServer(t)
	resp := postRPC(t, server, "dex_unknown", nil)
	if resp.Error == nil || resp.Error.Code != codeMethodNotFound {
		t.Fatalf("expected method_not_found, got %+v", resp.Error)
	}
}

func TestInvalidAccountRejected(t *testing.T) {
	server := newTestServer(t)
	resp := postRPC(t, server, "dex_userState", userStateParams{Account: "nhb1qqqqqq"})
	if resp.Error == nil || resp.Error.Code != codeInvalidParams {
		t.Fatalf("expected invalid params, got %+v", resp.Error)
	}
}

func TestSeedVenueEndpoint(t *testing.T) {
	server := newTestServer(t)
	resp := postRPC(t, server, "dex_seedVenue", nil)
	if resp.Error != nil {
		t.Fatalf("unexpected error: %+v", resp.Error)
	}
	resp = postRPC(t, server, "dex_seedVenue", nil)
	if resp.Error == nil || resp.Error.Code != codeAlreadySeeded {
		t.Fatalf("expected already_seeded, got %+v", resp.Error)
	}
}
