package dexparser

import (
	"github.com/gagliardetto/solana-go"
)

// Raydium v4 instruction tags (single-byte, pre-anchor program).
const (
	raydiumV4Deposit     byte = 3
	raydiumV4Withdraw    byte = 4
	raydiumV4SwapBaseIn  byte = 9
	raydiumV4SwapBaseOut byte = 11
)

// raydiumV4Decoder handles the tag-dispatched v4 AMM. The anchor-based
// Raydium programs (CPMM, CLMM, LaunchLab) go through ammDecoder instead.
type raydiumV4Decoder struct{}

func (d *raydiumV4Decoder) CanDecode(_ *TransactionView, _ int, ix solana.CompiledInstruction) bool {
	return len(ix.Data) > 0
}

func (d *raydiumV4Decoder) Decode(v *TransactionView, index int, ix solana.CompiledInstruction, inner []solana.CompiledInstruction) ([]DecodedIntent, error) {
	program, err := v.ProgramID(ix)
	if err != nil {
		return nil, err
	}
	legs := collectTransferLegs(v, inner)
	mints, burns := collectMintBurnLegs(v, inner)

	var kind IntentKind
	switch {
	case ix.Data[0] == raydiumV4SwapBaseIn || ix.Data[0] == raydiumV4SwapBaseOut:
		kind = IntentSwap
	case ix.Data[0] == raydiumV4Deposit || len(mints) > 0:
		kind = IntentAddLiquidity
	case ix.Data[0] == raydiumV4Withdraw || len(burns) > 0:
		kind = IntentRemoveLiquidity
	default:
		kind = IntentSwap
	}

	// swap/deposit/withdraw all carry the amm pool at account position 1
	pool := ""
	if len(ix.Accounts) > 1 {
		if pk, err := v.Account(ix.Accounts[1]); err == nil {
			pool = pk.String()
		}
	}

	if kind == IntentSwap {
		intent := swapIntentFromLegs(RAYDIUM, program, pool, index, legs)
		if intent == nil {
			return nil, nil
		}
		return []DecodedIntent{*intent}, nil
	}

	intent := liquidityIntentFromLegs(kind, RAYDIUM, program, pool, index, legs)
	if intent == nil {
		return nil, nil
	}
	if kind == IntentAddLiquidity && len(mints) > 0 {
		intent.LP = IntentLeg{Account: mints[0].Account.String(), Mint: mints[0].Mint.String(), Amount: mints[0].Amount}
	}
	if kind == IntentRemoveLiquidity && len(burns) > 0 {
		intent.LP = IntentLeg{Account: burns[0].Account.String(), Mint: burns[0].Mint.String(), Amount: burns[0].Amount}
	}
	return []DecodedIntent{*intent}, nil
}

func raydiumDescriptors() []*ProtocolDescriptor {
	return []*ProtocolDescriptor{
		{
			Name:         RAYDIUM,
			Programs:     []solana.PublicKey{RAYDIUM_V4_PROGRAM_ID, RAYDIUM_AMM_PROGRAM_ID},
			Capabilities: CapTrades | CapLiquidity,
			Decoder:      &raydiumV4Decoder{},
		},
		{
			Name:         RAYDIUM_CPMM,
			Programs:     []solana.PublicKey{RAYDIUM_CPMM_PROGRAM_ID},
			Capabilities: CapTrades | CapLiquidity,
			Decoder:      &ammDecoder{proto: RAYDIUM_CPMM, poolIndex: 3},
		},
		{
			Name:         RAYDIUM_CLMM,
			Programs:     []solana.PublicKey{RAYDIUM_CONCENTRATED_LIQUIDITY_PROGRAM_ID},
			Capabilities: CapTrades | CapLiquidity,
			Decoder:      &ammDecoder{proto: RAYDIUM_CLMM, poolIndex: 2},
		},
		{
			Name:         RAYDIUM_LAUNCHLAB,
			Programs:     []solana.PublicKey{RAYDIUM_LAUNCHLAB_PROGRAM_ID},
			Capabilities: CapTrades,
			Decoder:      &ammDecoder{proto: RAYDIUM_LAUNCHLAB, poolIndex: -1},
		},
	}
}
