package dexparser

import (
	"crypto/rand"
	"encoding/binary"
	"time"

	"github.com/AlekSi/pointer"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/vladislavgrisyuk/solana-dex-parser-r/spltoken"
)

func randomKey() solana.PublicKey {
	var pk solana.PublicKey
	_, _ = rand.Read(pk[:])
	return pk
}

// txFixture assembles a transaction and its meta from structured parts.
type txFixture struct {
	keys         []solana.PublicKey
	instructions []solana.CompiledInstruction
	inner        map[int][]solana.CompiledInstruction
	pre          []rpc.TokenBalance
	post         []rpc.TokenBalance
	preLamports  []uint64
	postLamports []uint64
	logs         []string
	fee          uint64
	computeUnits uint64
	txErr        interface{}
}

func (f *txFixture) build() (*solana.Transaction, *rpc.TransactionMeta) {
	var sig solana.Signature
	_, _ = rand.Read(sig[:])

	tx := &solana.Transaction{
		Signatures: []solana.Signature{sig},
		Message: solana.Message{
			Header: solana.MessageHeader{
				NumRequiredSignatures: 1,
			},
			AccountKeys:  f.keys,
			Instructions: f.instructions,
		},
	}

	meta := &rpc.TransactionMeta{
		Err:               f.txErr,
		Fee:               f.fee,
		PreBalances:       f.preLamports,
		PostBalances:      f.postLamports,
		PreTokenBalances:  f.pre,
		PostTokenBalances: f.post,
		LogMessages:       f.logs,
	}
	if f.computeUnits > 0 {
		meta.ComputeUnitsConsumed = pointer.ToUint64(f.computeUnits)
	}
	for index, instructions := range f.inner {
		converted := make([]rpc.CompiledInstruction, len(instructions))
		for i, ix := range instructions {
			converted[i] = rpc.CompiledInstruction{
				ProgramIDIndex: ix.ProgramIDIndex,
				Accounts:       ix.Accounts,
				Data:           ix.Data,
			}
		}
		meta.InnerInstructions = append(meta.InnerInstructions, rpc.InnerInstruction{
			Index:        uint16(index),
			Instructions: converted,
		})
	}
	return tx, meta
}

func (f *txFixture) view() (*TransactionView, error) {
	tx, meta := f.build()
	return NewTransactionViewFromParts(tx, meta, 12345, time.Unix(1724932800, 0))
}

func (f *txFixture) mustView() *TransactionView {
	v, err := f.view()
	if err != nil {
		panic(err)
	}
	return v
}

func tokenBalance(accountIndex uint16, mint, owner solana.PublicKey, amount string, decimals uint8) rpc.TokenBalance {
	o := owner
	return rpc.TokenBalance{
		AccountIndex: accountIndex,
		Mint:         mint,
		Owner:        &o,
		UiTokenAmount: &rpc.UiTokenAmount{
			Amount:   amount,
			Decimals: decimals,
		},
	}
}

func transferIx(program, src, dst, auth uint16, amount uint64) solana.CompiledInstruction {
	data := make([]byte, 9)
	data[0] = spltoken.OpTransfer
	binary.LittleEndian.PutUint64(data[1:], amount)
	return solana.CompiledInstruction{
		ProgramIDIndex: program,
		Accounts:       []uint16{src, dst, auth},
		Data:           solana.Base58(data),
	}
}

func transferCheckedIx(program, src, mint, dst, auth uint16, amount uint64, decimals uint8) solana.CompiledInstruction {
	data := make([]byte, 10)
	data[0] = spltoken.OpTransferChecked
	binary.LittleEndian.PutUint64(data[1:], amount)
	data[9] = decimals
	return solana.CompiledInstruction{
		ProgramIDIndex: program,
		Accounts:       []uint16{src, mint, dst, auth},
		Data:           solana.Base58(data),
	}
}

func mintToIx(program, mint, dst, auth uint16, amount uint64) solana.CompiledInstruction {
	data := make([]byte, 9)
	data[0] = spltoken.OpMintTo
	binary.LittleEndian.PutUint64(data[1:], amount)
	return solana.CompiledInstruction{
		ProgramIDIndex: program,
		Accounts:       []uint16{mint, dst, auth},
		Data:           solana.Base58(data),
	}
}

func burnIx(program, account, mint, auth uint16, amount uint64) solana.CompiledInstruction {
	data := make([]byte, 9)
	data[0] = spltoken.OpBurn
	binary.LittleEndian.PutUint64(data[1:], amount)
	return solana.CompiledInstruction{
		ProgramIDIndex: program,
		Accounts:       []uint16{account, mint, auth},
		Data:           solana.Base58(data),
	}
}

func anchorIx(program uint16, method string, accounts ...uint16) solana.CompiledInstruction {
	disc := anchorDiscriminator8(method)
	return solana.CompiledInstruction{
		ProgramIDIndex: program,
		Accounts:       accounts,
		Data:           solana.Base58(disc[:]),
	}
}

func rawIx(program uint16, data []byte, accounts ...uint16) solana.CompiledInstruction {
	return solana.CompiledInstruction{
		ProgramIDIndex: program,
		Accounts:       accounts,
		Data:           solana.Base58(data),
	}
}

func u64le(v uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, v)
	return b
}
