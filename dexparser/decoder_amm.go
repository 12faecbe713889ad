package dexparser

import (
	"crypto/sha256"

	"github.com/gagliardetto/solana-go"
)

func anchorDiscriminator8(name string) [8]byte {
	// first 8 bytes of sha256("global:"+name)
	sum := sha256.Sum256([]byte("global:" + name))
	var out [8]byte
	copy(out[:], sum[:8])
	return out
}

func anchorSet(names ...string) map[[8]byte]struct{} {
	m := make(map[[8]byte]struct{}, len(names))
	for _, n := range names {
		m[anchorDiscriminator8(n)] = struct{}{}
	}
	return m
}

func dataPrefix8(data []byte) (prefix [8]byte, ok bool) {
	if len(data) < 8 {
		return prefix, false
	}
	copy(prefix[:], data[:8])
	return prefix, true
}

// Anchor method names that add or remove pool liquidity, across the AMM
// families we decode.
var addLiquidityAnchors = anchorSet(
	"add_liquidity_by_strategy2",
	"add_liquidity_by_strategy",
	"add_liquidity_with_slippage",
	"add_liquidity",
	"increase_liquidity",
	"increase_liquidity_v2",
	"deposit",
)

var removeLiquidityAnchors = anchorSet(
	"remove_liquidity",
	"remove_liquidity_by_strategy",
	"remove_liquidity_by_strategy2",
	"decrease_liquidity",
	"decrease_liquidity_v2",
	"close_position",
	"withdraw",
	"withdraw_liquidity",
	"withdraw_one",
	"withdraw_one_token",
	"claim_and_withdraw",
)

// ammDecoder is the leg-harvesting decoder shared by all anchor-based AMMs.
// It classifies an instruction as add/remove liquidity or a swap, then sizes
// the sides from the SPL transfer CPIs underneath it.
type ammDecoder struct {
	proto     Protocol
	poolIndex int // position of the pool account in a swap instruction, -1 unknown
}

func (d *ammDecoder) CanDecode(_ *TransactionView, _ int, ix solana.CompiledInstruction) bool {
	return len(ix.Data) > 0
}

func (d *ammDecoder) Decode(v *TransactionView, index int, ix solana.CompiledInstruction, inner []solana.CompiledInstruction) ([]DecodedIntent, error) {
	program, err := v.ProgramID(ix)
	if err != nil {
		return nil, err
	}
	legs := collectTransferLegs(v, inner)
	mints, burns := collectMintBurnLegs(v, inner)

	kind := d.classify(ix.Data, len(mints) > 0, len(burns) > 0)
	pool := d.pool(v, ix)

	switch kind {
	case IntentAddLiquidity, IntentRemoveLiquidity:
		intent := liquidityIntentFromLegs(kind, d.proto, program, pool, index, legs)
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
	default:
		intent := swapIntentFromLegs(d.proto, program, pool, index, legs)
		if intent == nil {
			return nil, nil
		}
		return []DecodedIntent{*intent}, nil
	}
}

// classify applies the precedence used across the pipeline: token burns mean
// remove, token mints mean add, then anchor names, then swap.
func (d *ammDecoder) classify(data []byte, hasMint, hasBurn bool) IntentKind {
	if hasBurn {
		return IntentRemoveLiquidity
	}
	if hasMint {
		return IntentAddLiquidity
	}
	if prefix, ok := dataPrefix8(data); ok {
		if _, hit := addLiquidityAnchors[prefix]; hit {
			return IntentAddLiquidity
		}
		if _, hit := removeLiquidityAnchors[prefix]; hit {
			return IntentRemoveLiquidity
		}
	}
	return IntentSwap
}

func (d *ammDecoder) pool(v *TransactionView, ix solana.CompiledInstruction) string {
	if d.poolIndex < 0 || d.poolIndex >= len(ix.Accounts) {
		return ""
	}
	pk, err := v.Account(ix.Accounts[d.poolIndex])
	if err != nil {
		return ""
	}
	return pk.String()
}

// swapIntentFromLegs builds one swap intent: the first harvested leg is the
// user-to-pool input, the last is the pool-to-user output. A lone leg becomes
// a zero-output swap.
func swapIntentFromLegs(proto Protocol, program solana.PublicKey, pool string, index int, legs []transferLeg) *DecodedIntent {
	if len(legs) == 0 {
		return nil
	}
	in := legs[0]
	intent := &DecodedIntent{
		Protocol:         proto,
		Program:          program,
		Kind:             IntentSwap,
		Pool:             pool,
		Idx:              outerIdx(index),
		InstructionIndex: index,
		Provenance:       ProvenanceDecoder,
		Declared:         true,
		In:               in.asIntentLeg(in.source),
	}
	if len(legs) > 1 {
		out := legs[len(legs)-1]
		intent.Out = out.asIntentLeg(out.destination)
	}
	return intent
}

func liquidityIntentFromLegs(kind IntentKind, proto Protocol, program solana.PublicKey, pool string, index int, legs []transferLeg) *DecodedIntent {
	if len(legs) == 0 {
		return nil
	}
	intent := &DecodedIntent{
		Protocol:         proto,
		Program:          program,
		Kind:             kind,
		Pool:             pool,
		Idx:              outerIdx(index),
		InstructionIndex: index,
		Provenance:       ProvenanceDecoder,
		Declared:         true,
	}
	first := legs[0]
	if kind == IntentAddLiquidity {
		intent.In = first.asIntentLeg(first.source)
	} else {
		intent.In = first.asIntentLeg(first.destination)
	}
	for _, leg := range legs[1:] {
		if leg.mint != intent.In.Mint {
			if kind == IntentAddLiquidity {
				intent.Out = leg.asIntentLeg(leg.source)
			} else {
				intent.Out = leg.asIntentLeg(leg.destination)
			}
			break
		}
	}
	return intent
}
