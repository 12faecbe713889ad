package dexparser

import (
	"bytes"
	"fmt"

	ag_binary "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
)

// Anchor event CPI discriminator for the Pump.fun bonding-curve TradeEvent.
var PumpfunTradeEventDiscriminator = [16]byte{228, 69, 165, 46, 81, 203, 154, 29, 189, 219, 127, 211, 78, 230, 97, 238}

type PumpfunTradeEvent struct {
	Mint                 solana.PublicKey
	SolAmount            uint64
	TokenAmount          uint64
	IsBuy                bool
	User                 solana.PublicKey
	Timestamp            int64
	VirtualSolReserves   uint64
	VirtualTokenReserves uint64
}

// pumpfunDecoder prefers the TradeEvent emitted via self-CPI, which carries
// authoritative amounts. Without it, transfer legs are harvested like any
// other AMM.
type pumpfunDecoder struct{}

func (d *pumpfunDecoder) CanDecode(_ *TransactionView, _ int, ix solana.CompiledInstruction) bool {
	return len(ix.Data) > 0
}

func (d *pumpfunDecoder) Decode(v *TransactionView, index int, ix solana.CompiledInstruction, inner []solana.CompiledInstruction) ([]DecodedIntent, error) {
	program, err := v.ProgramID(ix)
	if err != nil {
		return nil, err
	}

	for _, innerIx := range inner {
		progID, err := v.ProgramID(innerIx)
		if err != nil || !progID.Equals(program) {
			continue
		}
		event, err := parsePumpfunTradeEvent(innerIx)
		if err != nil {
			return nil, err
		}
		if event == nil {
			continue
		}

		intent := &DecodedIntent{
			Protocol:         PUMP_FUN,
			Program:          program,
			Kind:             IntentSwap,
			Idx:              outerIdx(index),
			InstructionIndex: index,
			Provenance:       ProvenanceDecoder,
			Declared:         true,
		}
		sol := IntentLeg{
			Mint:     NATIVE_SOL_MINT_PROGRAM_ID.String(),
			Amount:   event.SolAmount,
			Decimals: 9,
		}
		token := IntentLeg{
			Mint:     event.Mint.String(),
			Amount:   event.TokenAmount,
			Decimals: v.Decimals(event.Mint.String()),
		}
		if event.IsBuy {
			intent.In, intent.Out = sol, token
		} else {
			intent.In, intent.Out = token, sol
		}
		return []DecodedIntent{*intent}, nil
	}

	intent := swapIntentFromLegs(PUMP_FUN, program, "", index, collectTransferLegs(v, inner))
	if intent == nil {
		return nil, nil
	}
	return []DecodedIntent{*intent}, nil
}

func parsePumpfunTradeEvent(ix solana.CompiledInstruction) (*PumpfunTradeEvent, error) {
	raw, err := base58.Decode(ix.Data.String())
	if err != nil || len(raw) < 16 {
		return nil, nil
	}
	if !bytes.Equal(raw[:16], PumpfunTradeEventDiscriminator[:]) {
		return nil, nil
	}

	var event PumpfunTradeEvent
	decoder := ag_binary.NewBorshDecoder(raw[16:])
	if err := decoder.Decode(&event); err != nil {
		return nil, &DecodeError{What: "pumpfun trade event", Err: fmt.Errorf("borsh: %w", err)}
	}
	return &event, nil
}

func pumpfunDescriptor() *ProtocolDescriptor {
	return &ProtocolDescriptor{
		Name:         PUMP_FUN,
		Programs:     []solana.PublicKey{PUMP_FUN_PROGRAM_ID},
		Capabilities: CapTrades,
		Decoder:      &pumpfunDecoder{},
	}
}

func pumpswapDescriptor() *ProtocolDescriptor {
	return &ProtocolDescriptor{
		Name:         PUMPFUN_AMM,
		Programs:     []solana.PublicKey{PUMPFUN_AMM_PROGRAM_ID},
		Capabilities: CapTrades | CapLiquidity,
		Decoder:      &ammDecoder{proto: PUMPFUN_AMM, poolIndex: 0},
	}
}
