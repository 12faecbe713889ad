package dexparser

import (
	"github.com/gagliardetto/solana-go"
)

var orcaTwoHopAnchors = anchorSet("two_hop_swap", "two_hop_swap_v2")

// orcaDecoder extends the shared AMM decoder with whirlpool two-hop swaps,
// which execute both hops under a single outer instruction.
type orcaDecoder struct {
	ammDecoder
}

func (d *orcaDecoder) Decode(v *TransactionView, index int, ix solana.CompiledInstruction, inner []solana.CompiledInstruction) ([]DecodedIntent, error) {
	prefix, ok := dataPrefix8(ix.Data)
	if !ok {
		return d.ammDecoder.Decode(v, index, ix, inner)
	}
	if _, twoHop := orcaTwoHopAnchors[prefix]; !twoHop {
		return d.ammDecoder.Decode(v, index, ix, inner)
	}

	program, err := v.ProgramID(ix)
	if err != nil {
		return nil, err
	}
	legs := collectTransferLegs(v, inner)
	if len(legs) < 4 {
		// Degenerate two-hop; fall back to a single first/last pairing.
		intent := swapIntentFromLegs(ORCA, program, "", index, legs)
		if intent == nil {
			return nil, nil
		}
		return []DecodedIntent{*intent}, nil
	}

	// Each hop contributes an (in, out) transfer pair in execution order.
	first := swapIntentFromLegs(ORCA, program, "", index, legs[:2])
	second := swapIntentFromLegs(ORCA, program, "", index, legs[2:4])
	first.Idx = innerIdx(index, legs[0].innerPos)
	second.Idx = innerIdx(index, legs[2].innerPos)
	return []DecodedIntent{*first, *second}, nil
}

func orcaDescriptor() *ProtocolDescriptor {
	return &ProtocolDescriptor{
		Name:         ORCA,
		Programs:     []solana.PublicKey{ORCA_PROGRAM_ID},
		Capabilities: CapTrades | CapLiquidity,
		Decoder:      &orcaDecoder{ammDecoder{proto: ORCA, poolIndex: 2}},
	}
}

func meteoraDescriptors() []*ProtocolDescriptor {
	return []*ProtocolDescriptor{
		{
			Name:         METEORA,
			Programs:     []solana.PublicKey{METEORA_DLMM_PROGRAM_ID},
			Capabilities: CapTrades | CapLiquidity,
			Decoder:      &ammDecoder{proto: METEORA, poolIndex: 0},
		},
		{
			Name:         METEORA_POOLS,
			Programs:     []solana.PublicKey{METEORA_POOLS_PROGRAM_ID},
			Capabilities: CapTrades | CapLiquidity,
			Decoder:      &ammDecoder{proto: METEORA_POOLS, poolIndex: 0},
		},
		{
			Name:         METEORA_DBC,
			Programs:     []solana.PublicKey{METEORA_DBC_PROGRAM_ID},
			Capabilities: CapTrades,
			Decoder:      &ammDecoder{proto: METEORA_DBC, poolIndex: -1},
		},
		{
			Name:         METEORA_DAMM_V2,
			Programs:     []solana.PublicKey{METEORA_DAMM_V2_PROGRAM_ID},
			Capabilities: CapTrades | CapLiquidity,
			Decoder:      &ammDecoder{proto: METEORA_DAMM_V2, poolIndex: 1},
		},
	}
}
