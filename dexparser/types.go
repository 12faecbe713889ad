package dexparser

import (
	"math/big"
	"time"

	"github.com/shopspring/decimal"
)

type Protocol string

const (
	RAYDIUM           Protocol = "RaydiumAmmV4"
	RAYDIUM_CPMM      Protocol = "RaydiumCpmm"
	RAYDIUM_CLMM      Protocol = "RaydiumClmm"
	RAYDIUM_LAUNCHLAB Protocol = "RaydiumLaunchLab"
	ORCA              Protocol = "OrcaWhirlpool"
	METEORA           Protocol = "MeteoraDlmm"
	METEORA_POOLS     Protocol = "MeteoraPools"
	METEORA_DBC       Protocol = "MeteoraDbc"
	METEORA_DAMM_V2   Protocol = "MeteoraDammV2"
	PUMP_FUN          Protocol = "Pumpfun"
	PUMPFUN_AMM       Protocol = "PumpSwap"
	JUPITER           Protocol = "Jupiter"
	OKX               Protocol = "OkxDexRouter"
	UNKNOWN           Protocol = "Unknown"
)

// Provenance records which path produced an event.
type Provenance string

const (
	ProvenanceDecoder   Provenance = "decoder"
	ProvenanceLog       Provenance = "log"
	ProvenanceHeuristic Provenance = "heuristic"
)

type TxStatus string

const (
	TxStatusSuccess TxStatus = "success"
	TxStatusFailed  TxStatus = "failed"
	TxStatusUnknown TxStatus = "unknown"
)

// TokenView is one side of an event: raw amount plus mint metadata.
type TokenView struct {
	Mint     string  `json:"mint"`
	Amount   uint64  `json:"amount"`
	Decimals uint8   `json:"decimals"`
	UIAmount float64 `json:"uiAmount"`
}

func newTokenView(mint string, amount uint64, decimals uint8) TokenView {
	return TokenView{
		Mint:     mint,
		Amount:   amount,
		Decimals: decimals,
		UIAmount: uiAmount(amount, decimals),
	}
}

func uiAmount(raw uint64, decimals uint8) float64 {
	d := decimal.NewFromBigInt(new(big.Int).SetUint64(raw), -int32(decimals))
	f, _ := d.Float64()
	return f
}

func uiDelta(raw int64, decimals uint8) float64 {
	d := decimal.NewFromInt(raw).Shift(-int32(decimals))
	f, _ := d.Float64()
	return f
}

type Trade struct {
	Amm         string     `json:"amm"`
	Program     string     `json:"program,omitempty"`
	Pool        string     `json:"pool,omitempty"`
	InputToken  TokenView  `json:"inputToken"`
	OutputToken TokenView  `json:"outputToken"`
	User        string     `json:"user,omitempty"`
	Idx         string     `json:"idx"`
	Route       []string   `json:"route,omitempty"`
	Fee         *TokenView `json:"fee,omitempty"`
	ZeroOutput  bool       `json:"zeroOutput,omitempty"`
	Provenance  Provenance `json:"provenance,omitempty"`
	Warnings    []string   `json:"warnings,omitempty"`
}

type LiquidityKind string

const (
	LiquidityAdd    LiquidityKind = "ADD"
	LiquidityRemove LiquidityKind = "REMOVE"
)

type LiquidityEvent struct {
	Type       LiquidityKind `json:"type"`
	Amm        string        `json:"amm"`
	Program    string        `json:"program,omitempty"`
	Pool       string        `json:"pool,omitempty"`
	Token0     TokenView     `json:"token0"`
	Token1     TokenView     `json:"token1"`
	LPMint     string        `json:"lpMint,omitempty"`
	LPAmount   uint64        `json:"lpAmount,omitempty"`
	Idx        string        `json:"idx"`
	Provenance Provenance    `json:"provenance,omitempty"`
	Warnings   []string      `json:"warnings,omitempty"`
}

type Transfer struct {
	Token       TokenView  `json:"token"`
	Source      string     `json:"source"`
	Destination string     `json:"destination"`
	Authority   string     `json:"authority,omitempty"`
	Idx         string     `json:"idx"`
	Provenance  Provenance `json:"provenance,omitempty"`
}

// BalanceChange is a signed signer-side delta for one mint.
type BalanceChange struct {
	Mint     string  `json:"mint"`
	RawDelta int64   `json:"rawDelta"`
	Decimals uint8   `json:"decimals"`
	UIDelta  float64 `json:"uiDelta"`
}

type ParseResult struct {
	State               bool             `json:"state"`
	Trades              []Trade          `json:"trades"`
	Liquidities         []LiquidityEvent `json:"liquidities"`
	Transfers           []Transfer       `json:"transfers"`
	AggregateTrade      *Trade           `json:"aggregateTrade,omitempty"`
	Fee                 TokenView        `json:"fee"`
	ComputeUnits        uint64           `json:"computeUnits"`
	TxStatus            TxStatus         `json:"txStatus"`
	SolBalanceChange    *BalanceChange   `json:"solBalanceChange,omitempty"`
	TokenBalanceChanges []BalanceChange  `json:"tokenBalanceChanges,omitempty"`
	Slot                uint64           `json:"slot"`
	Timestamp           time.Time        `json:"timestamp"`
	Signature           string           `json:"signature,omitempty"`
	Signers             []string         `json:"signers,omitempty"`
	Error               string           `json:"error,omitempty"`
}

type BlockResult struct {
	Slot         uint64         `json:"slot"`
	BlockTime    *time.Time     `json:"blockTime,omitempty"`
	Transactions []*ParseResult `json:"transactions"`
}
