// Package spltoken decodes the SPL Token (and Token-2022) instruction
// layouts the pipeline cares about: transfers, mints and burns.
package spltoken

import (
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// Instruction opcodes shared by Token and Token-2022.
const (
	OpInitializeMint  byte = 0
	OpTransfer        byte = 3
	OpMintTo          byte = 7
	OpBurn            byte = 8
	OpCloseAccount    byte = 9
	OpTransferChecked byte = 12
	OpMintToChecked   byte = 14
	OpBurnChecked     byte = 15
)

func IsTokenProgram(pk solana.PublicKey) bool {
	return pk.Equals(solana.TokenProgramID) || pk.Equals(solana.Token2022ProgramID)
}

// Transfer is a decoded Transfer(3) or TransferChecked(12).
type Transfer struct {
	Source      solana.PublicKey
	Destination solana.PublicKey
	Authority   solana.PublicKey
	Mint        solana.PublicKey // zero for plain Transfer
	Amount      uint64
	Decimals    uint8 // meaningful only when Checked
	Checked     bool
}

// DecodeTransfer decodes a token transfer from resolved instruction accounts
// and raw data. It returns nil for non-transfer opcodes.
func DecodeTransfer(accounts []solana.PublicKey, data []byte) (*Transfer, error) {
	if len(data) == 0 {
		return nil, nil
	}
	switch data[0] {
	case OpTransfer:
		if len(data) < 9 {
			return nil, fmt.Errorf("transfer data too short: %d", len(data))
		}
		if len(accounts) < 3 {
			return nil, fmt.Errorf("transfer expects 3 accounts, got %d", len(accounts))
		}
		return &Transfer{
			Source:      accounts[0],
			Destination: accounts[1],
			Authority:   accounts[2],
			Amount:      binary.LittleEndian.Uint64(data[1:9]),
		}, nil
	case OpTransferChecked:
		if len(data) < 10 {
			return nil, fmt.Errorf("transferChecked data too short: %d", len(data))
		}
		if len(accounts) < 4 {
			return nil, fmt.Errorf("transferChecked expects 4 accounts, got %d", len(accounts))
		}
		return &Transfer{
			Source:      accounts[0],
			Mint:        accounts[1],
			Destination: accounts[2],
			Authority:   accounts[3],
			Amount:      binary.LittleEndian.Uint64(data[1:9]),
			Decimals:    data[9],
			Checked:     true,
		}, nil
	}
	return nil, nil
}

// MintBurn is a decoded MintTo(7/14) or Burn(8/15).
type MintBurn struct {
	Account   solana.PublicKey // token account minted to / burned from
	Mint      solana.PublicKey
	Authority solana.PublicKey
	Amount    uint64
	Burn      bool
}

// DecodeMintBurn decodes a mint or burn from resolved instruction accounts
// and raw data. It returns nil for other opcodes.
func DecodeMintBurn(accounts []solana.PublicKey, data []byte) (*MintBurn, error) {
	if len(data) < 9 {
		return nil, nil
	}
	switch data[0] {
	case OpMintTo, OpMintToChecked:
		if len(accounts) < 3 {
			return nil, fmt.Errorf("mintTo expects 3 accounts, got %d", len(accounts))
		}
		return &MintBurn{
			Mint:      accounts[0],
			Account:   accounts[1],
			Authority: accounts[2],
			Amount:    binary.LittleEndian.Uint64(data[1:9]),
		}, nil
	case OpBurn, OpBurnChecked:
		if len(accounts) < 3 {
			return nil, fmt.Errorf("burn expects 3 accounts, got %d", len(accounts))
		}
		return &MintBurn{
			Account:   accounts[0],
			Mint:      accounts[1],
			Authority: accounts[2],
			Amount:    binary.LittleEndian.Uint64(data[1:9]),
			Burn:      true,
		}, nil
	}
	return nil, nil
}
