package dexparser

import (
	"math/big"

	"github.com/gagliardetto/solana-go"
)

// heuristicIntents recognizes swap-shaped activity under an instruction whose
// program has no decoder. It nets the SPL transfer legs per token account;
// exactly one net-negative and one net-positive account reads as a swap,
// deltas all in one direction read as a transfer, anything else is ignored.
// At most one intent comes out of one instruction. Two kinds of account never
// count: the fee payer's native-token accounts, and intermediate routing
// accounts that appear as both a source and a destination among the legs.
func heuristicIntents(v *TransactionView, index int, _ solana.CompiledInstruction, inner []solana.CompiledInstruction) []DecodedIntent {
	legs := collectTransferLegs(v, inner)
	if len(legs) == 0 {
		return nil
	}

	signer := v.FeePayer().String()
	nativeMint := NATIVE_SOL_MINT_PROGRAM_ID.String()

	sources := make(map[string]bool, len(legs))
	destinations := make(map[string]bool, len(legs))
	for _, leg := range legs {
		sources[leg.source] = true
		destinations[leg.destination] = true
	}

	excluded := func(addr string) bool {
		if sources[addr] && destinations[addr] {
			return true
		}
		info, ok := v.TokenAccount(addr)
		return ok && info.Owner == signer && info.Mint == nativeMint
	}

	net := make(map[string]*big.Int)
	mints := make(map[string]string)
	var order []string
	bump := func(addr, mint string, amount uint64, negative bool) {
		if addr == "" || excluded(addr) {
			return
		}
		acc, ok := net[addr]
		if !ok {
			acc = new(big.Int)
			net[addr] = acc
			order = append(order, addr)
		}
		d := new(big.Int).SetUint64(amount)
		if negative {
			acc.Sub(acc, d)
		} else {
			acc.Add(acc, d)
		}
		if mints[addr] == "" {
			if info, ok := v.TokenAccount(addr); ok && info.Mint != "" {
				mints[addr] = info.Mint
			} else {
				mints[addr] = mint
			}
		}
	}
	for _, leg := range legs {
		bump(leg.source, leg.mint, leg.amount, true)
		bump(leg.destination, leg.mint, leg.amount, false)
	}

	var negatives, positives []string
	for _, addr := range order {
		switch net[addr].Sign() {
		case -1:
			negatives = append(negatives, addr)
		case 1:
			positives = append(positives, addr)
		}
	}

	if len(negatives) == 1 && len(positives) == 1 {
		inAddr, outAddr := negatives[0], positives[0]
		in := IntentLeg{
			Account:  inAddr,
			Mint:     mints[inAddr],
			Amount:   new(big.Int).Abs(net[inAddr]).Uint64(),
			Decimals: v.Decimals(mints[inAddr]),
		}
		out := IntentLeg{
			Account:  outAddr,
			Mint:     mints[outAddr],
			Amount:   net[outAddr].Uint64(),
			Decimals: v.Decimals(mints[outAddr]),
		}
		return []DecodedIntent{{
			Protocol:         UNKNOWN,
			Kind:             IntentSwap,
			Idx:              outerIdx(index),
			InstructionIndex: index,
			Provenance:       ProvenanceHeuristic,
			In:               in,
			Out:              out,
		}}
	}

	if len(negatives) == 0 || len(positives) == 0 {
		// One-directional movement: surface the largest leg as a transfer.
		largest := legs[0]
		for _, leg := range legs[1:] {
			if leg.amount > largest.amount {
				largest = leg
			}
		}
		return []DecodedIntent{{
			Protocol:         UNKNOWN,
			Kind:             IntentTransfer,
			Idx:              outerIdx(index),
			InstructionIndex: index,
			Provenance:       ProvenanceHeuristic,
			Declared:         true,
			In:               largest.asIntentLeg(""),
		}}
	}

	return nil
}
