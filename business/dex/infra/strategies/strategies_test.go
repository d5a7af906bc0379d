package strategies

import (
	"bytes"
	"encoding/json"
	"io"
	"math"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/fd1az/quote-engine/business/dex/domain"
)

const (
	weth = "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"
	usdc = "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"
)

func testParams(baseURL string) domain.Params {
	return domain.Params{
		Chain: domain.Chain{
			Name:          "ethereum",
			ID:            1,
			KyberSlug:     "ethereum",
			OpenOceanSlug: "eth",
			QuoterAddress: "0x61fFE014bA17989E743c5F6cB21bF9697530B21e",
		},
		TokenIn:     domain.Token{Symbol: "WETH", Address: weth, Decimals: 18},
		TokenOut:    domain.Token{Symbol: "USDC", Address: usdc, Decimals: 6},
		AmountIn:    new(big.Int).Mul(big.NewInt(2), big.NewInt(1e18)),
		UserAddress: "0x0000000000000000000000000000000000000001",
		SlippageBps: 50,
		Credentials: domain.Credentials{APIKey: "key", Secret: "secret", Passphrase: "pass", ProjectID: "proj"},
		Gas:         domain.GasContext{GweiPrice: 20, NativeUSD: 3000},
		BaseURL:     baseURL,
		Now:         func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) },
	}
}

// execute builds, sends and parses one strategy call.
func execute(t *testing.T, s domain.Strategy, p domain.Params) (domain.Quote, error) {
	t.Helper()
	req, err := s.Build(p)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	httpReq, err := http.NewRequest(req.Method, req.URL, bytes.NewReader(req.Body))
	if err != nil {
		t.Fatalf("bad request: %v", err)
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}
	resp, err := http.DefaultClient.Do(httpReq)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return s.Parse(body, p)
}

func TestStrategies_BuildAndParse(t *testing.T) {
	// 150000 gas units at 20 gwei and $3000 native.
	const unitsGasUSD = 9.0

	tests := []struct {
		name      string
		strategy  domain.Strategy
		method    string
		path      string
		check     func(t *testing.T, r *http.Request, body []byte)
		response  string
		amountOut float64
		gasUSD    float64
	}{
		{
			name:     "1inch",
			strategy: OneInch(),
			method:   http.MethodGet,
			path:     "/1/quote",
			check: func(t *testing.T, r *http.Request, _ []byte) {
				if got := r.Header.Get("Authorization"); got != "Bearer key" {
					t.Errorf("authorization = %q", got)
				}
				if r.URL.Query().Get("amount") != "2000000000000000000" {
					t.Errorf("amount = %q", r.URL.Query().Get("amount"))
				}
			},
			response:  `{"dstAmount":"6000000000","gas":150000}`,
			amountOut: 6000,
			gasUSD:    unitsGasUSD,
		},
		{
			name:     "0x",
			strategy: ZeroX(),
			method:   http.MethodGet,
			path:     "/swap/permit2/price",
			check: func(t *testing.T, r *http.Request, _ []byte) {
				if r.Header.Get("0x-api-key") != "key" || r.Header.Get("0x-version") != "v2" {
					t.Errorf("missing 0x headers: %v", r.Header)
				}
				if r.URL.Query().Get("sellAmount") != "2000000000000000000" {
					t.Errorf("sellAmount = %q", r.URL.Query().Get("sellAmount"))
				}
			},
			// 1e15 wei at $3000
			response:  `{"liquidityAvailable":true,"buyAmount":"5990000000","totalNetworkFee":"1000000000000000"}`,
			amountOut: 5990,
			gasUSD:    3,
		},
		{
			name:     "paraswap",
			strategy: Paraswap(),
			method:   http.MethodGet,
			path:     "/prices",
			check: func(t *testing.T, r *http.Request, _ []byte) {
				q := r.URL.Query()
				if q.Get("srcDecimals") != "18" || q.Get("destDecimals") != "6" || q.Get("network") != "1" {
					t.Errorf("unexpected query %v", q)
				}
			},
			response:  `{"priceRoute":{"destAmount":"5995500000","gasCostUSD":"4.25"}}`,
			amountOut: 5995.5,
			gasUSD:    4.25,
		},
		{
			name:     "kyberswap",
			strategy: KyberSwap(),
			method:   http.MethodGet,
			path:     "/ethereum/api/v1/routes",
			check: func(t *testing.T, r *http.Request, _ []byte) {
				if r.Header.Get("x-client-id") != "key" {
					t.Errorf("missing client id")
				}
			},
			response:  `{"code":0,"data":{"routeSummary":{"amountOut":"6001000000","gasUsd":"2.5"}}}`,
			amountOut: 6001,
			gasUSD:    2.5,
		},
		{
			name:     "okx",
			strategy: OKX(),
			method:   http.MethodGet,
			path:     okxQuotePath,
			check: func(t *testing.T, r *http.Request, _ []byte) {
				ts := r.Header.Get("OK-ACCESS-TIMESTAMP")
				if ts != "2026-01-02T03:04:05.000Z" {
					t.Errorf("timestamp = %q", ts)
				}
				want := SignOKX("secret", ts, http.MethodGet, r.URL.RequestURI(), "")
				if got := r.Header.Get("OK-ACCESS-SIGN"); got != want {
					t.Errorf("signature = %q, want %q", got, want)
				}
				if r.Header.Get("OK-ACCESS-PASSPHRASE") != "pass" || r.Header.Get("OK-ACCESS-PROJECT") != "proj" {
					t.Errorf("missing okx headers")
				}
			},
			response:  `{"code":"0","data":[{"toTokenAmount":"5980000000","estimateGasFee":"150000"}]}`,
			amountOut: 5980,
			gasUSD:    unitsGasUSD,
		},
		{
			name:     "odos",
			strategy: Odos(),
			method:   http.MethodPost,
			path:     "/sor/quote/v2",
			check: func(t *testing.T, _ *http.Request, body []byte) {
				var req odosQuoteRequest
				if err := json.Unmarshal(body, &req); err != nil {
					t.Errorf("bad body: %v", err)
					return
				}
				if req.ChainID != 1 || req.InputTokens[0].Amount != "2000000000000000000" || req.SlippageLimitPercent != 0.5 {
					t.Errorf("unexpected body %+v", req)
				}
			},
			response:  `{"outAmounts":["5999000000"],"gasEstimateValue":1.75}`,
			amountOut: 5999,
			gasUSD:    1.75,
		},
		{
			name:     "openocean",
			strategy: OpenOcean(),
			method:   http.MethodGet,
			path:     "/eth/quote",
			check: func(t *testing.T, r *http.Request, _ []byte) {
				if got := r.URL.Query().Get("gasPriceDecimals"); got != "20000000000" {
					t.Errorf("gasPriceDecimals = %q", got)
				}
			},
			response:  `{"code":200,"data":{"outAmount":"5990000000","estimatedGas":"150000"}}`,
			amountOut: 5990,
			gasUSD:    unitsGasUSD,
		},
		{
			name:     "lifi",
			strategy: LiFi(),
			method:   http.MethodGet,
			path:     "/quote",
			check: func(t *testing.T, r *http.Request, _ []byte) {
				q := r.URL.Query()
				if q.Get("fromChain") != "1" || q.Get("toChain") != "1" || q.Get("slippage") != "0.005" {
					t.Errorf("unexpected query %v", q)
				}
			},
			response:  `{"estimate":{"toAmount":"5970000000","gasCosts":[{"amountUSD":"1.5"},{"amountUSD":"0.5"}]}}`,
			amountOut: 5970,
			gasUSD:    2,
		},
		{
			name:     "jupiter",
			strategy: Jupiter(),
			method:   http.MethodGet,
			path:     "/quote",
			check: func(t *testing.T, r *http.Request, _ []byte) {
				if r.URL.Query().Get("slippageBps") != "50" {
					t.Errorf("slippageBps = %q", r.URL.Query().Get("slippageBps"))
				}
			},
			response:  `{"outAmount":"1234500000"}`,
			amountOut: 1234.5,
			gasUSD:    0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				body, _ := io.ReadAll(r.Body)
				if r.Method != tt.method {
					t.Errorf("method = %s, want %s", r.Method, tt.method)
				}
				if r.URL.Path != tt.path {
					t.Errorf("path = %s, want %s", r.URL.Path, tt.path)
				}
				tt.check(t, r, body)
				w.Write([]byte(tt.response))
			}))
			defer srv.Close()

			q, err := execute(t, tt.strategy, testParams(srv.URL))
			if err != nil {
				t.Fatalf("parse failed: %v", err)
			}
			if math.Abs(q.AmountOut-tt.amountOut) > 1e-9 {
				t.Errorf("amount out = %v, want %v", q.AmountOut, tt.amountOut)
			}
			if math.Abs(q.GasFeeUSD-tt.gasUSD) > 1e-9 {
				t.Errorf("gas = %v, want %v", q.GasFeeUSD, tt.gasUSD)
			}
			if q.Strategy != tt.strategy.Name {
				t.Errorf("strategy = %q, want %q", q.Strategy, tt.strategy.Name)
			}
			if strings.Contains(string(q.Raw), "secret") || strings.Contains(string(q.Raw), "pass") {
				t.Error("raw payload must not carry credentials")
			}
		})
	}
}

func TestStrategies_VendorRejections(t *testing.T) {
	p := testParams("")
	tests := []struct {
		name     string
		strategy domain.Strategy
		body     string
	}{
		{name: "0x no liquidity", strategy: ZeroX(), body: `{"liquidityAvailable":false}`},
		{name: "paraswap error", strategy: Paraswap(), body: `{"error":"No routes found"}`},
		{name: "kyber code", strategy: KyberSwap(), body: `{"code":4008,"message":"route not found"}`},
		{name: "okx code", strategy: OKX(), body: `{"code":"82000","msg":"insufficient liquidity","data":[]}`},
		{name: "odos detail", strategy: Odos(), body: `{"detail":"no path"}`},
		{name: "openocean code", strategy: OpenOcean(), body: `{"code":500,"error":"bad"}`},
		{name: "lifi message", strategy: LiFi(), body: `{"message":"No available quotes"}`},
		{name: "jupiter error", strategy: Jupiter(), body: `{"error":"no route","errorCode":"COULD_NOT_FIND_ANY_ROUTE"}`},
		{name: "1inch fractional amount", strategy: OneInch(), body: `{"dstAmount":"12.5"}`},
		{name: "malformed json", strategy: OneInch(), body: `{"dstAmount":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.strategy.Parse([]byte(tt.body), p); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestStrategies_BuildRejectsZeroAmount(t *testing.T) {
	p := testParams("")
	p.AmountIn = big.NewInt(0)
	for name, s := range Registry() {
		if _, err := s.Build(p); err == nil {
			t.Errorf("%s: expected error for zero amount", name)
		}
	}
}

func TestOKX_RequiresCredentials(t *testing.T) {
	p := testParams("")
	p.Credentials = domain.Credentials{}
	if _, err := OKX().Build(p); err == nil {
		t.Error("expected error without credentials")
	}
}

func TestUniswapV3_BestFeeTier(t *testing.T) {
	outputs := quoterABI.Methods[quoteMethod].Outputs

	encode := func(out, gas int64) string {
		packed, err := outputs.Pack(big.NewInt(out), big.NewInt(1), uint32(2), big.NewInt(gas))
		if err != nil {
			t.Errorf("pack failed: %v", err)
		}
		return hexutil.Encode(packed)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var calls []rpcCall
		if err := json.NewDecoder(r.Body).Decode(&calls); err != nil {
			t.Errorf("bad batch: %v", err)
			return
		}
		if len(calls) != len(uniswapFeeTiers) {
			t.Errorf("expected %d calls, got %d", len(uniswapFeeTiers), len(calls))
		}
		resp := make([]map[string]any, 0, len(calls))
		for _, c := range calls {
			if c.Method != "eth_call" {
				t.Errorf("method = %s", c.Method)
			}
			switch c.ID {
			case FeeTier005:
				resp = append(resp, map[string]any{"jsonrpc": "2.0", "id": c.ID, "result": encode(5_900_000_000, 120_000)})
			case FeeTier030:
				resp = append(resp, map[string]any{"jsonrpc": "2.0", "id": c.ID, "result": encode(5_950_000_000, 150_000)})
			default:
				resp = append(resp, map[string]any{"jsonrpc": "2.0", "id": c.ID, "error": map[string]any{"code": -32000, "message": "execution reverted"}})
			}
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	q, err := execute(t, UniswapV3(), testParams(srv.URL))
	if err != nil {
		t.Fatalf("quote failed: %v", err)
	}
	if q.AmountOut != 5950 {
		t.Errorf("amount out = %v, want 5950", q.AmountOut)
	}
	if math.Abs(q.GasFeeUSD-9) > 1e-9 {
		t.Errorf("gas = %v, want 9", q.GasFeeUSD)
	}
}

func TestCanonical(t *testing.T) {
	reg := Registry()
	for _, name := range []string{"1inch", "OneInch", "zerox", "Kyber", "uniswap", "JUP", "okx"} {
		if _, ok := reg[Canonical(name)]; !ok {
			t.Errorf("%s did not resolve to a strategy", name)
		}
	}
	if len(reg) != 10 {
		t.Errorf("expected 10 strategies, got %d", len(reg))
	}
}
