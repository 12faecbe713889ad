package dexparser

import (
	"bytes"
	"fmt"

	ag_binary "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
)

// Anchor event discriminator for the Jupiter route event.
var JupiterRouteEventDiscriminator = [16]byte{228, 69, 165, 46, 81, 203, 154, 29, 64, 198, 205, 232, 38, 8, 113, 226}

type JupiterSwapEvent struct {
	Amm          solana.PublicKey
	InputMint    solana.PublicKey
	InputAmount  uint64
	OutputMint   solana.PublicKey
	OutputAmount uint64
}

// jupiterDecoder decodes the per-hop route events Jupiter emits via self-CPI.
// Every event becomes one hop intent, so a routed trade aggregates the same
// way a sequence of direct AMM trades would. Without events, transfer legs
// under the route are harvested as a single intent.
type jupiterDecoder struct{}

func (d *jupiterDecoder) CanDecode(_ *TransactionView, _ int, ix solana.CompiledInstruction) bool {
	return len(ix.Data) > 0
}

func (d *jupiterDecoder) Decode(v *TransactionView, index int, ix solana.CompiledInstruction, inner []solana.CompiledInstruction) ([]DecodedIntent, error) {
	program, err := v.ProgramID(ix)
	if err != nil {
		return nil, err
	}

	var intents []DecodedIntent
	for pos, innerIx := range inner {
		progID, err := v.ProgramID(innerIx)
		if err != nil || !progID.Equals(program) {
			continue
		}
		event, err := parseJupiterRouteEvent(innerIx)
		if err != nil {
			return nil, err
		}
		if event == nil {
			continue
		}
		intents = append(intents, DecodedIntent{
			Protocol:         JUPITER,
			Program:          program,
			Kind:             IntentSwap,
			Pool:             event.Amm.String(),
			Idx:              innerIdx(index, pos),
			InstructionIndex: index,
			Provenance:       ProvenanceDecoder,
			Declared:         true,
			In: IntentLeg{
				Mint:     event.InputMint.String(),
				Amount:   event.InputAmount,
				Decimals: v.Decimals(event.InputMint.String()),
			},
			Out: IntentLeg{
				Mint:     event.OutputMint.String(),
				Amount:   event.OutputAmount,
				Decimals: v.Decimals(event.OutputMint.String()),
			},
		})
	}
	if len(intents) > 0 {
		return intents, nil
	}

	intent := swapIntentFromLegs(JUPITER, program, "", index, collectTransferLegs(v, inner))
	if intent == nil {
		return nil, nil
	}
	return []DecodedIntent{*intent}, nil
}

func parseJupiterRouteEvent(ix solana.CompiledInstruction) (*JupiterSwapEvent, error) {
	raw, err := base58.Decode(ix.Data.String())
	if err != nil || len(raw) < 16 {
		return nil, nil
	}
	if !bytes.Equal(raw[:16], JupiterRouteEventDiscriminator[:]) {
		return nil, nil
	}

	var event JupiterSwapEvent
	decoder := ag_binary.NewBorshDecoder(raw[16:])
	if err := decoder.Decode(&event); err != nil {
		return nil, &DecodeError{What: "jupiter route event", Err: fmt.Errorf("borsh: %w", err)}
	}
	return &event, nil
}

func jupiterDescriptor() *ProtocolDescriptor {
	return &ProtocolDescriptor{
		Name:         JUPITER,
		Programs:     []solana.PublicKey{JUPITER_PROGRAM_ID, JUPITER_DCA_PROGRAM_ID},
		Capabilities: CapTrades,
		Decoder:      &jupiterDecoder{},
	}
}
