// Package venue adapts the external order-matching engine's JSON-RPC surface
// to the router's Venue interface. The engine itself is a separate trust
// boundary: this client only moves orders in and filled amounts out.
package venue

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"time"

	"dexledger/native/router"
)

const (
	jsonRPCVersion = "2.0"
	defaultTimeout = 10 * time.Second
)

// RejectionError carries the venue's rejection reason unchanged so callers
// can surface it verbatim.
type RejectionError struct {
	Code    int
	Message string
}

func (e *RejectionError) Error() string {
	return e.Message
}

// Client is an HTTP JSON-RPC client for a remote order-book engine.
type Client struct {
	url        string
	httpClient *http.Client
	nextID     uint64
}

// NewClient constructs a client for the engine at the supplied URL.
func NewClient(url string) *Client {
	return &Client{
		url:        strings.TrimRight(strings.TrimSpace(url), "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
	ID      uint64        `json:"id"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

func (c *Client) call(method string, params []interface{}, out interface{}) error {
	if c == nil || c.url == "" {
		return fmt.Errorf("venue: client not configured")
	}
	c.nextID++
	payload, err := json.Marshal(rpcRequest{JSONRPC: jsonRPCVersion, Method: method, Params: params, ID: c.nextID})
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Post(c.url, "application/json", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("venue: %s: %w", method, err)
	}
	defer resp.Body.Close()

	var decoded rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return fmt.Errorf("venue: %s: decode response: %w", method, err)
	}
	if decoded.Error != nil {
		return &RejectionError{Code: decoded.Error.Code, Message: decoded.Error.Message}
	}
	if out == nil {
		return nil
	}
	if len(decoded.Result) == 0 {
		return fmt.Errorf("venue: %s: empty result", method)
	}
	return json.Unmarshal(decoded.Result, out)
}

func amountParam(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

func parseAmount(label, raw string) (*big.Int, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return big.NewInt(0), nil
	}
	amount, ok := new(big.Int).SetString(trimmed, 10)
	if !ok {
		return nil, fmt.Errorf("venue: invalid %s amount %q", label, raw)
	}
	return amount, nil
}

type marketOrderParams struct {
	Sequence uint64 `json:"sequence"`
	Quantity string `json:"quantity"`
	Side     string `json:"side"`
	BaseIn   string `json:"baseIn"`
	QuoteIn  string `json:"quoteIn"`
}

type marketOrderResult struct {
	BaseOut  string `json:"baseOut"`
	QuoteOut string `json:"quoteOut"`
}

// PlaceMarketOrder submits a market order tagged with the router's sequence
// and returns the filled amounts. Partial fills come back as-is.
func (c *Client) PlaceMarketOrder(sequence uint64, quantity *big.Int, side router.Side, baseIn, quoteIn *big.Int) (*big.Int, *big.Int, error) {
	params := marketOrderParams{
		Sequence: sequence,
		Quantity: amountParam(quantity),
		Side:     string(side),
		BaseIn:   amountParam(baseIn),
		QuoteIn:  amountParam(quoteIn),
	}
	var result marketOrderResult
	if err := c.call("engine_placeMarketOrder", []interface{}{params}, &result); err != nil {
		return nil, nil, err
	}
	baseOut, err := parseAmount("base", result.BaseOut)
	if err != nil {
		return nil, nil, err
	}
	quoteOut, err := parseAmount("quote", result.QuoteOut)
	if err != nil {
		return nil, nil, err
	}
	return baseOut, quoteOut, nil
}

type limitOrderParams struct {
	Sequence uint64 `json:"sequence"`
	Price    string `json:"price"`
	Quantity string `json:"quantity"`
	Side     string `json:"side"`
	Expiry   uint64 `json:"expiry"`
}

// PlaceLimitOrder submits a standing order during venue seeding.
func (c *Client) PlaceLimitOrder(sequence uint64, price, quantity *big.Int, side router.Side, expiry uint64) error {
	params := limitOrderParams{
		Sequence: sequence,
		Price:    amountParam(price),
		Quantity: amountParam(quantity),
		Side:     string(side),
		Expiry:   expiry,
	}
	return c.call("engine_placeLimitOrder", []interface{}{params}, nil)
}

type depositParams struct {
	Amount string `json:"amount"`
}

// DepositBase funds the venue with base units during seeding.
func (c *Client) DepositBase(amount *big.Int) error {
	return c.call("engine_depositBase", []interface{}{depositParams{Amount: amountParam(amount)}}, nil)
}

// DepositQuote funds the venue with quote units during seeding.
func (c *Client) DepositQuote(amount *big.Int) error {
	return c.call("engine_depositQuote", []interface{}{depositParams{Amount: amountParam(amount)}}, nil)
}

var _ router.Venue = (*Client)(nil)
