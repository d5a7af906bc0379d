package strategies

import (
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/fd1az/quote-engine/business/dex/domain"
)

// Fee tiers in Uniswap V3 (in hundredths of a bip)
const (
	FeeTier001 = 100   // 0.01%
	FeeTier005 = 500   // 0.05%
	FeeTier030 = 3000  // 0.30%
	FeeTier100 = 10000 // 1.00%
)

// uniswapFeeTiers are probed in one JSON-RPC batch; the best output wins.
var uniswapFeeTiers = []int{FeeTier005, FeeTier030, FeeTier100, FeeTier001}

// QuoterV2ABI is the ABI for the Uniswap V3 QuoterV2 contract.
// Only includes quoteExactInputSingle which we use for quotes.
const QuoterV2ABI = `[
	{
		"inputs": [
			{
				"components": [
					{"internalType": "address", "name": "tokenIn", "type": "address"},
					{"internalType": "address", "name": "tokenOut", "type": "address"},
					{"internalType": "uint256", "name": "amountIn", "type": "uint256"},
					{"internalType": "uint24", "name": "fee", "type": "uint24"},
					{"internalType": "uint160", "name": "sqrtPriceLimitX96", "type": "uint160"}
				],
				"internalType": "struct IQuoterV2.QuoteExactInputSingleParams",
				"name": "params",
				"type": "tuple"
			}
		],
		"name": "quoteExactInputSingle",
		"outputs": [
			{"internalType": "uint256", "name": "amountOut", "type": "uint256"},
			{"internalType": "uint160", "name": "sqrtPriceX96After", "type": "uint160"},
			{"internalType": "uint32", "name": "initializedTicksCrossed", "type": "uint32"},
			{"internalType": "uint256", "name": "gasEstimate", "type": "uint256"}
		],
		"stateMutability": "nonpayable",
		"type": "function"
	}
]`

const quoteMethod = "quoteExactInputSingle"

var quoterABI = mustParseABI(QuoterV2ABI)

func mustParseABI(def string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(def))
	if err != nil {
		panic("strategies: invalid quoter ABI: " + err.Error())
	}
	return parsed
}

// QuoteExactInputSingleParams represents the input params for quoteExactInputSingle.
type QuoteExactInputSingleParams struct {
	TokenIn           common.Address
	TokenOut          common.Address
	AmountIn          *big.Int
	Fee               *big.Int // uint24
	SqrtPriceLimitX96 *big.Int // uint160, 0 for no limit
}

type rpcCall struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type callObject struct {
	To   string `json:"to"`
	Data string `json:"data"`
}

type rpcResponse struct {
	ID     int    `json:"id"`
	Result string `json:"result"`
	Error  *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// UniswapV3 quotes on-chain through QuoterV2 with eth_call. Every fee tier is
// one call in a single JSON-RPC batch. Gas is reported in units.
func UniswapV3() domain.Strategy {
	return domain.Strategy{
		Name: "uniswap_v3",
		Build: func(p domain.Params) (domain.Request, error) {
			if err := checkAmount(p); err != nil {
				return domain.Request{}, err
			}
			rpc := p.Chain.RPCURL
			if p.BaseURL != "" {
				rpc = p.BaseURL
			}
			if err := require(map[string]string{"rpc url": rpc, "quoter address": p.Chain.QuoterAddress}); err != nil {
				return domain.Request{}, err
			}
			for _, addr := range []string{p.Chain.QuoterAddress, p.TokenIn.Address, p.TokenOut.Address} {
				if !common.IsHexAddress(addr) {
					return domain.Request{}, fmt.Errorf("%w: invalid address %q", errMissing, addr)
				}
			}

			calls := make([]rpcCall, 0, len(uniswapFeeTiers))
			for _, tier := range uniswapFeeTiers {
				data, err := quoterABI.Pack(quoteMethod, QuoteExactInputSingleParams{
					TokenIn:           common.HexToAddress(p.TokenIn.Address),
					TokenOut:          common.HexToAddress(p.TokenOut.Address),
					AmountIn:          p.AmountIn,
					Fee:               big.NewInt(int64(tier)),
					SqrtPriceLimitX96: big.NewInt(0),
				})
				if err != nil {
					return domain.Request{}, fmt.Errorf("failed to encode call: %w", err)
				}
				calls = append(calls, rpcCall{
					JSONRPC: "2.0",
					ID:      tier,
					Method:  "eth_call",
					Params:  []any{callObject{To: common.HexToAddress(p.Chain.QuoterAddress).Hex(), Data: hexutil.Encode(data)}, "latest"},
				})
			}

			body, err := json.Marshal(calls)
			if err != nil {
				return domain.Request{}, err
			}
			return domain.Request{
				Method:  http.MethodPost,
				URL:     rpc,
				Headers: map[string]string{"Content-Type": "application/json"},
				Body:    body,
			}, nil
		},
		Parse: func(body []byte, p domain.Params) (domain.Quote, error) {
			var responses []rpcResponse
			if err := json.Unmarshal(body, &responses); err != nil {
				return domain.Quote{}, err
			}

			var (
				bestOut *big.Int
				bestGas *big.Int
			)
			for _, r := range responses {
				if r.Error != nil || r.Result == "" || r.Result == "0x" {
					// Pool missing for this tier.
					continue
				}
				raw, err := hexutil.Decode(r.Result)
				if err != nil {
					continue
				}
				outputs, err := quoterABI.Unpack(quoteMethod, raw)
				if err != nil || len(outputs) < 4 {
					continue
				}
				out, ok := outputs[0].(*big.Int)
				if !ok {
					continue
				}
				gas, _ := outputs[3].(*big.Int)
				if bestOut == nil || out.Cmp(bestOut) > 0 {
					bestOut, bestGas = out, gas
				}
			}
			if bestOut == nil {
				return domain.Quote{}, errNoRoute
			}

			var gasUnits float64
			if bestGas != nil {
				gasUnits, _ = new(big.Float).SetInt(bestGas).Float64()
			}
			return quoteFromInt("uniswap_v3", bestOut, p, p.Gas.GasUnitsToUSD(gasUnits), body), nil
		},
	}
}
