package dexparser

import (
	"strconv"

	"github.com/gagliardetto/solana-go"
	"github.com/vladislavgrisyuk/solana-dex-parser-r/spltoken"
)

type IntentKind int

const (
	IntentSwap IntentKind = iota
	IntentAddLiquidity
	IntentRemoveLiquidity
	IntentTransfer
)

// IntentLeg is one token movement of an intent. Account is the token account
// measured by the reconciler; it may be empty when the decoder could not
// nominate one.
type IntentLeg struct {
	Account     string
	Mint        string
	Amount      uint64
	Decimals    uint8
	Source      string
	Destination string
	Authority   string
}

// DecodedIntent is a decoder's claim about what one instruction did, before
// reconciliation against balance snapshots. In/Out are the swap sides, or the
// two pool tokens of a liquidity op, or just In for a transfer. Declared
// marks amounts taken from the payload, an anchor event or program logs.
type DecodedIntent struct {
	Protocol         Protocol
	Program          solana.PublicKey
	Kind             IntentKind
	Pool             string
	Idx              string
	InstructionIndex int
	Provenance       Provenance
	Declared         bool

	In  IntentLeg
	Out IntentLeg
	LP  IntentLeg
}

// Decoder is one protocol family's instruction decoder. CanDecode is a cheap
// recognition check; Decode may fail on corrupt payloads and that failure is
// absorbed per instruction.
type Decoder interface {
	CanDecode(v *TransactionView, index int, ix solana.CompiledInstruction) bool
	Decode(v *TransactionView, index int, ix solana.CompiledInstruction, inner []solana.CompiledInstruction) ([]DecodedIntent, error)
}

func outerIdx(index int) string { return strconv.Itoa(index) }

func innerIdx(index, pos int) string {
	return strconv.Itoa(index) + "-" + strconv.Itoa(pos)
}

// transferLeg is an SPL transfer CPI harvested under an outer instruction.
type transferLeg struct {
	source      string
	destination string
	authority   string
	mint        string
	amount      uint64
	decimals    uint8
	innerPos    int
}

func (l transferLeg) asIntentLeg(account string) IntentLeg {
	return IntentLeg{
		Account:     account,
		Mint:        l.mint,
		Amount:      l.amount,
		Decimals:    l.decimals,
		Source:      l.source,
		Destination: l.destination,
		Authority:   l.authority,
	}
}

// collectTransferLegs harvests SPL Transfer/TransferChecked CPIs in order.
// Mints and decimals for plain transfers come from the view's token maps.
func collectTransferLegs(v *TransactionView, inner []solana.CompiledInstruction) []transferLeg {
	var legs []transferLeg
	for pos, ix := range inner {
		progID, err := v.ProgramID(ix)
		if err != nil || !isTokenProgram(progID) {
			continue
		}
		accounts, err := v.resolveAccounts(ix)
		if err != nil {
			continue
		}
		tr, err := spltoken.DecodeTransfer(accounts, ix.Data)
		if err != nil || tr == nil {
			continue
		}

		leg := transferLeg{
			source:      tr.Source.String(),
			destination: tr.Destination.String(),
			authority:   tr.Authority.String(),
			amount:      tr.Amount,
			innerPos:    pos,
		}
		if tr.Checked {
			leg.mint = tr.Mint.String()
			leg.decimals = tr.Decimals
		} else {
			// Prefer destination mint (usual case), else source.
			if info, ok := v.TokenAccount(leg.destination); ok && info.Mint != "" {
				leg.mint = info.Mint
				leg.decimals = info.Decimals
			} else if info, ok := v.TokenAccount(leg.source); ok && info.Mint != "" {
				leg.mint = info.Mint
				leg.decimals = info.Decimals
			}
		}
		if leg.mint != "" && leg.decimals == 0 {
			leg.decimals = v.Decimals(leg.mint)
		}
		legs = append(legs, leg)
	}
	return legs
}

// collectMintBurnLegs harvests MintTo/Burn CPIs, used to size LP sides of
// liquidity operations.
func collectMintBurnLegs(v *TransactionView, inner []solana.CompiledInstruction) (mints, burns []spltoken.MintBurn) {
	for _, ix := range inner {
		progID, err := v.ProgramID(ix)
		if err != nil || !isTokenProgram(progID) {
			continue
		}
		accounts, err := v.resolveAccounts(ix)
		if err != nil {
			continue
		}
		mb, err := spltoken.DecodeMintBurn(accounts, ix.Data)
		if err != nil || mb == nil {
			continue
		}
		if mb.Burn {
			burns = append(burns, *mb)
		} else {
			mints = append(mints, *mb)
		}
	}
	return mints, burns
}
