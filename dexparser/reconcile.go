package dexparser

import (
	"fmt"
	"math"
	"math/big"
	"sort"
)

// reconcileLeg resolves the final amount for one intent leg. Declared amounts
// stay authoritative; the balance delta of the nominated account is a
// cross-check that produces a non-fatal warning on disagreement. A leg
// without a nominated account is taken as declared.
func (v *TransactionView) reconcileLeg(leg IntentLeg, declared bool) (TokenView, string) {
	decimals := leg.Decimals
	if decimals == 0 && leg.Mint != "" {
		decimals = v.Decimals(leg.Mint)
	}

	if leg.Account == "" {
		return newTokenView(leg.Mint, leg.Amount, decimals), ""
	}

	// Accounts created or closed mid-transaction miss one snapshot side;
	// the missing side counts as zero.
	pre := v.preAmount(leg.Account)
	post := v.postAmount(leg.Account)
	var delta uint64
	if post >= pre {
		delta = post - pre
	} else {
		delta = pre - post
	}

	if !declared {
		amount := leg.Amount
		if amount == 0 {
			amount = delta
		}
		return newTokenView(leg.Mint, amount, decimals), ""
	}

	var warning string
	if delta != 0 && delta != leg.Amount {
		warning = fmt.Sprintf("reconciliation mismatch: account %s declared %d, balance delta %d", leg.Account, leg.Amount, delta)
	}
	return newTokenView(leg.Mint, leg.Amount, decimals), warning
}

// accountDelta is the signed raw balance change of a token account across the
// transaction.
func (v *TransactionView) accountDelta(addr string) *big.Int {
	pre := new(big.Int).SetUint64(v.preAmount(addr))
	post := new(big.Int).SetUint64(v.postAmount(addr))
	return post.Sub(post, pre)
}

// signerSolChange is the fee payer's lamport delta, fee included.
func (v *TransactionView) signerSolChange() *BalanceChange {
	meta := v.txMeta
	if len(meta.PreBalances) == 0 || len(meta.PostBalances) == 0 {
		return nil
	}
	delta := new(big.Int).SetUint64(meta.PostBalances[0])
	delta.Sub(delta, new(big.Int).SetUint64(meta.PreBalances[0]))
	raw := clampInt64(delta)
	return &BalanceChange{
		Mint:     NATIVE_SOL_MINT_PROGRAM_ID.String(),
		RawDelta: raw,
		Decimals: 9,
		UIDelta:  uiDelta(raw, 9),
	}
}

// signerTokenChanges sums per-mint deltas over the fee payer's token
// accounts.
func (v *TransactionView) signerTokenChanges() []BalanceChange {
	signer := v.FeePayer().String()
	perMint := make(map[string]*big.Int)
	var order []string

	for addr, info := range v.splTokenInfoMap {
		if info.Owner != signer || info.Mint == "" {
			continue
		}
		delta := v.accountDelta(addr)
		if delta.Sign() == 0 {
			continue
		}
		if acc, ok := perMint[info.Mint]; ok {
			acc.Add(acc, delta)
		} else {
			perMint[info.Mint] = delta
			order = append(order, info.Mint)
		}
	}

	sort.Strings(order)

	var out []BalanceChange
	for _, mint := range order {
		delta := perMint[mint]
		if delta.Sign() == 0 {
			continue
		}
		decimals := v.Decimals(mint)
		raw := clampInt64(delta)
		out = append(out, BalanceChange{
			Mint:     mint,
			RawDelta: raw,
			Decimals: decimals,
			UIDelta:  uiDelta(raw, decimals),
		})
	}
	return out
}

func clampInt64(n *big.Int) int64 {
	if n.IsInt64() {
		return n.Int64()
	}
	if n.Sign() > 0 {
		return math.MaxInt64
	}
	return math.MinInt64
}
