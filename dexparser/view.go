package dexparser

import (
	"strconv"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/vladislavgrisyuk/solana-dex-parser-r/spltoken"
)

// TokenAccountInfo is what the transaction itself reveals about a token
// account: its mint, decimals and owner, when known.
type TokenAccountInfo struct {
	Mint     string
	Decimals uint8
	Owner    string
}

// TransactionView is the read-only, index-resolved form of one transaction
// that every downstream stage consumes. Account keys include addresses loaded
// through lookup tables, appended writable-first the way the runtime orders
// them.
type TransactionView struct {
	Slot      uint64
	BlockTime time.Time

	txMeta         *rpc.TransactionMeta
	txInfo         *solana.Transaction
	allAccountKeys solana.PublicKeySlice

	splTokenInfoMap  map[string]TokenAccountInfo
	splDecimalsMap   map[string]uint8
	preTokenAmounts  map[string]uint64
	postTokenAmounts map[string]uint64
}

func NewTransactionView(tx *rpc.GetTransactionResult) (*TransactionView, error) {
	if tx == nil {
		return nil, decodeErrorf("transaction result is nil")
	}
	if tx.Transaction == nil {
		return nil, decodeErrorf("transaction envelope is missing")
	}
	txInfo, err := tx.Transaction.GetTransaction()
	if err != nil {
		return nil, &UnsupportedEncodingError{Err: err}
	}

	var blockTime time.Time
	if tx.BlockTime != nil {
		blockTime = tx.BlockTime.Time()
	}
	return NewTransactionViewFromParts(txInfo, tx.Meta, tx.Slot, blockTime)
}

func NewTransactionViewFromParts(tx *solana.Transaction, txMeta *rpc.TransactionMeta, slot uint64, blockTime time.Time) (*TransactionView, error) {
	if tx == nil {
		return nil, decodeErrorf("transaction is nil")
	}
	if txMeta == nil {
		return nil, decodeErrorf("transaction meta is missing")
	}

	allAccountKeys := append(solana.PublicKeySlice{}, tx.Message.AccountKeys...)
	allAccountKeys = append(allAccountKeys, txMeta.LoadedAddresses.Writable...)
	allAccountKeys = append(allAccountKeys, txMeta.LoadedAddresses.ReadOnly...)
	if len(allAccountKeys) == 0 {
		return nil, decodeErrorf("transaction has no account keys")
	}

	v := &TransactionView{
		Slot:           slot,
		BlockTime:      blockTime,
		txMeta:         txMeta,
		txInfo:         tx,
		allAccountKeys: allAccountKeys,
	}

	if err := v.extractTokenAccounts(); err != nil {
		return nil, &DecodeError{What: "token account map", Err: err}
	}
	v.extractMintDecimals()
	v.extractBalanceSnapshots()

	return v, nil
}

func (v *TransactionView) Meta() *rpc.TransactionMeta       { return v.txMeta }
func (v *TransactionView) Transaction() *solana.Transaction { return v.txInfo }
func (v *TransactionView) AccountKeys() solana.PublicKeySlice {
	return v.allAccountKeys
}

func (v *TransactionView) Instructions() []solana.CompiledInstruction {
	return v.txInfo.Message.Instructions
}

// InnerInstructions returns the CPI group attached to the outer instruction
// at index, or nil. The rpc package carries its own instruction type, so the
// group is converted field by field.
func (v *TransactionView) InnerInstructions(index int) []solana.CompiledInstruction {
	for _, inner := range v.txMeta.InnerInstructions {
		if inner.Index == uint16(index) {
			result := make([]solana.CompiledInstruction, len(inner.Instructions))
			for i, inst := range inner.Instructions {
				result[i] = convertRPCInstruction(inst)
			}
			return result
		}
	}
	return nil
}

func convertRPCInstruction(inst rpc.CompiledInstruction) solana.CompiledInstruction {
	return solana.CompiledInstruction{
		ProgramIDIndex: inst.ProgramIDIndex,
		Accounts:       inst.Accounts,
		Data:           inst.Data,
	}
}

func (v *TransactionView) Account(idx uint16) (solana.PublicKey, error) {
	if int(idx) >= len(v.allAccountKeys) {
		return solana.PublicKey{}, decodeErrorf("account index %d out of range (%d keys)", idx, len(v.allAccountKeys))
	}
	return v.allAccountKeys[idx], nil
}

// resolveAccounts maps an instruction's account indices onto the flat key
// table, failing on any out-of-range index.
func (v *TransactionView) resolveAccounts(ix solana.CompiledInstruction) ([]solana.PublicKey, error) {
	out := make([]solana.PublicKey, len(ix.Accounts))
	for i, idx := range ix.Accounts {
		pk, err := v.Account(idx)
		if err != nil {
			return nil, err
		}
		out[i] = pk
	}
	return out, nil
}

func (v *TransactionView) ProgramID(ix solana.CompiledInstruction) (solana.PublicKey, error) {
	return v.Account(ix.ProgramIDIndex)
}

func (v *TransactionView) Signature() solana.Signature {
	if len(v.txInfo.Signatures) == 0 {
		return solana.Signature{}
	}
	return v.txInfo.Signatures[0]
}

func (v *TransactionView) Signers() []solana.PublicKey {
	n := int(v.txInfo.Message.Header.NumRequiredSignatures)
	if n == 0 || n > len(v.allAccountKeys) {
		n = 1
	}
	return v.allAccountKeys[:n]
}

// FeePayer is the first signer.
func (v *TransactionView) FeePayer() solana.PublicKey {
	return v.allAccountKeys[0]
}

func (v *TransactionView) Fee() uint64 { return v.txMeta.Fee }

func (v *TransactionView) ComputeUnits() uint64 {
	if v.txMeta.ComputeUnitsConsumed == nil {
		return 0
	}
	return *v.txMeta.ComputeUnitsConsumed
}

func (v *TransactionView) Status() TxStatus {
	if v.txMeta.Err == nil {
		return TxStatusSuccess
	}
	return TxStatusFailed
}

func (v *TransactionView) Logs() []string { return v.txMeta.LogMessages }

// TokenAccount reports the mint/decimals/owner of a token account address.
func (v *TransactionView) TokenAccount(addr string) (TokenAccountInfo, bool) {
	info, ok := v.splTokenInfoMap[addr]
	return info, ok
}

// Decimals resolves the decimals of a mint from the balance snapshots.
// Unknown mints report 0.
func (v *TransactionView) Decimals(mint string) uint8 {
	return v.splDecimalsMap[mint]
}

func (v *TransactionView) preAmount(addr string) uint64  { return v.preTokenAmounts[addr] }
func (v *TransactionView) postAmount(addr string) uint64 { return v.postTokenAmounts[addr] }

// extractTokenAccounts builds token-account → (mint, decimals, owner) from
// both PRE and POST balances, then backfills mints from transfer instructions
// when one side is already known.
func (v *TransactionView) extractTokenAccounts() error {
	infoMap := make(map[string]TokenAccountInfo)

	seed := func(balances []rpc.TokenBalance) {
		for _, b := range balances {
			if b.Mint.IsZero() || int(b.AccountIndex) >= len(v.allAccountKeys) {
				continue
			}
			accountKey := v.allAccountKeys[b.AccountIndex].String()
			info := TokenAccountInfo{Mint: b.Mint.String()}
			if b.UiTokenAmount != nil {
				info.Decimals = b.UiTokenAmount.Decimals
			}
			if b.Owner != nil {
				info.Owner = b.Owner.String()
			}
			infoMap[accountKey] = info
		}
	}
	seed(v.txMeta.PreTokenBalances)
	seed(v.txMeta.PostTokenBalances)

	backfill := func(ix solana.CompiledInstruction) {
		if int(ix.ProgramIDIndex) >= len(v.allAccountKeys) {
			return
		}
		if !isTokenProgram(v.allAccountKeys[ix.ProgramIDIndex]) {
			return
		}
		accounts, err := v.resolveAccounts(ix)
		if err != nil {
			return
		}
		tr, err := spltoken.DecodeTransfer(accounts, ix.Data)
		if err != nil || tr == nil {
			return
		}
		src := tr.Source.String()
		dst := tr.Destination.String()
		sInfo := infoMap[src]
		dInfo := infoMap[dst]
		if tr.Checked {
			mint := tr.Mint.String()
			if sInfo.Mint == "" {
				infoMap[src] = TokenAccountInfo{Mint: mint, Decimals: tr.Decimals, Owner: sInfo.Owner}
			}
			if dInfo.Mint == "" {
				infoMap[dst] = TokenAccountInfo{Mint: mint, Decimals: tr.Decimals, Owner: dInfo.Owner}
			}
			return
		}
		// Plain Transfer: both sides share a mint, so propagate the known one.
		switch {
		case sInfo.Mint != "" && dInfo.Mint == "":
			infoMap[dst] = TokenAccountInfo{Mint: sInfo.Mint, Decimals: sInfo.Decimals, Owner: dInfo.Owner}
		case dInfo.Mint != "" && sInfo.Mint == "":
			infoMap[src] = TokenAccountInfo{Mint: dInfo.Mint, Decimals: dInfo.Decimals, Owner: sInfo.Owner}
		}
	}

	for _, ix := range v.txInfo.Message.Instructions {
		backfill(ix)
	}
	for _, innerSet := range v.txMeta.InnerInstructions {
		for _, ix := range innerSet.Instructions {
			backfill(convertRPCInstruction(ix))
		}
	}

	v.splTokenInfoMap = infoMap
	return nil
}

func (v *TransactionView) extractMintDecimals() {
	mintToDecimals := make(map[string]uint8)

	for _, b := range v.txMeta.PreTokenBalances {
		if !b.Mint.IsZero() && b.UiTokenAmount != nil {
			mintToDecimals[b.Mint.String()] = b.UiTokenAmount.Decimals
		}
	}
	for _, b := range v.txMeta.PostTokenBalances {
		if !b.Mint.IsZero() && b.UiTokenAmount != nil {
			mintToDecimals[b.Mint.String()] = b.UiTokenAmount.Decimals
		}
	}

	// Native SOL (9 decimals)
	if _, exists := mintToDecimals[NATIVE_SOL_MINT_PROGRAM_ID.String()]; !exists {
		mintToDecimals[NATIVE_SOL_MINT_PROGRAM_ID.String()] = 9
	}

	v.splDecimalsMap = mintToDecimals
}

// extractBalanceSnapshots captures raw token amounts per account address.
// An account missing from one side simply has no entry there, which the
// reconciler treats as zero.
func (v *TransactionView) extractBalanceSnapshots() {
	v.preTokenAmounts = snapshotAmounts(v.allAccountKeys, v.txMeta.PreTokenBalances)
	v.postTokenAmounts = snapshotAmounts(v.allAccountKeys, v.txMeta.PostTokenBalances)
}

func snapshotAmounts(keys solana.PublicKeySlice, balances []rpc.TokenBalance) map[string]uint64 {
	out := make(map[string]uint64, len(balances))
	for _, b := range balances {
		if int(b.AccountIndex) >= len(keys) || b.UiTokenAmount == nil {
			continue
		}
		amt, err := strconv.ParseUint(b.UiTokenAmount.Amount, 10, 64)
		if err != nil {
			continue
		}
		out[keys[b.AccountIndex].String()] = amt
	}
	return out
}
