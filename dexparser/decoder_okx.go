package dexparser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/gagliardetto/solana-go"
)

var (
	OKX_SWAP_DISCRIMINATOR                 = [8]byte{248, 198, 158, 145, 225, 117, 135, 200}
	OKX_SWAP2_DISCRIMINATOR                = [8]byte{65, 75, 63, 76, 235, 91, 91, 136}
	OKX_COMMISSION_SPL_SWAP2_DISCRIMINATOR = [8]byte{173, 131, 78, 38, 150, 165, 123, 15}
	OKX_SWAP3_DISCRIMINATOR                = [8]byte{19, 44, 130, 148, 72, 56, 44, 238}
)

var okxAggregateRe = regexp.MustCompile(`after_source_balance:\s*\d+.*?source_token_change:\s*(\d+),\s*destination_token_change:\s*(\d+)`)

// okxDecoder uses the router's own log lines as the authoritative aggregate:
// source_token_change / destination_token_change are the net route amounts.
// When the logs carry no aggregate the CPI transfer legs are harvested
// instead.
type okxDecoder struct{}

func (d *okxDecoder) CanDecode(_ *TransactionView, _ int, ix solana.CompiledInstruction) bool {
	return len(ix.Data) >= 8
}

func (d *okxDecoder) Decode(v *TransactionView, index int, ix solana.CompiledInstruction, inner []solana.CompiledInstruction) ([]DecodedIntent, error) {
	program, err := v.ProgramID(ix)
	if err != nil {
		return nil, err
	}

	if intent := d.aggregateFromLogs(v, index, ix, program); intent != nil {
		return []DecodedIntent{*intent}, nil
	}

	intent := swapIntentFromLegs(OKX, program, "", index, collectTransferLegs(v, inner))
	if intent == nil {
		return nil, nil
	}
	return []DecodedIntent{*intent}, nil
}

// In the router's swap layout the accounts align as
// [0] payer, [1] src token acct, [2] dst token acct, [3] source mint,
// [4] destination mint. Indices are guarded against layout changes.
func (d *okxDecoder) aggregateFromLogs(v *TransactionView, index int, ix solana.CompiledInstruction, program solana.PublicKey) *DecodedIntent {
	if len(ix.Accounts) < 5 {
		return nil
	}
	srcAcct, err := v.Account(ix.Accounts[1])
	if err != nil {
		return nil
	}
	dstAcct, err := v.Account(ix.Accounts[2])
	if err != nil {
		return nil
	}
	srcMint, err := v.Account(ix.Accounts[3])
	if err != nil {
		return nil
	}
	dstMint, err := v.Account(ix.Accounts[4])
	if err != nil {
		return nil
	}
	if srcMint.IsZero() || dstMint.IsZero() {
		return nil
	}

	var srcDelta, dstDelta uint64
	for _, line := range v.Logs() {
		if !strings.Contains(line, "Program log:") || !strings.Contains(line, "source_token_change") {
			continue
		}
		if m := okxAggregateRe.FindStringSubmatch(line); len(m) == 3 {
			if n, err := strconv.ParseUint(m[1], 10, 64); err == nil {
				srcDelta = n
			}
			if n, err := strconv.ParseUint(m[2], 10, 64); err == nil {
				dstDelta = n
			}
		}
	}
	if srcDelta == 0 && dstDelta == 0 {
		return nil
	}

	inDec := v.Decimals(srcMint.String())
	if srcMint.Equals(NATIVE_SOL_MINT_PROGRAM_ID) && inDec == 0 {
		inDec = 9
	}

	return &DecodedIntent{
		Protocol:         OKX,
		Program:          program,
		Kind:             IntentSwap,
		Idx:              outerIdx(index),
		InstructionIndex: index,
		Provenance:       ProvenanceLog,
		Declared:         true,
		In: IntentLeg{
			Account:  srcAcct.String(),
			Mint:     srcMint.String(),
			Amount:   srcDelta,
			Decimals: inDec,
		},
		Out: IntentLeg{
			Account:  dstAcct.String(),
			Mint:     dstMint.String(),
			Amount:   dstDelta,
			Decimals: v.Decimals(dstMint.String()),
		},
	}
}

func okxDescriptor() *ProtocolDescriptor {
	return &ProtocolDescriptor{
		Name:         OKX,
		Programs:     []solana.PublicKey{OKX_DEX_ROUTER_PROGRAM_ID},
		Capabilities: CapTrades,
		Decoder:      &okxDecoder{},
	}
}
