package dexparser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hop(amm, inMint string, inAmt uint64, outMint string, outAmt uint64, idx string) Trade {
	return Trade{
		Amm:         amm,
		Idx:         idx,
		InputToken:  TokenView{Mint: inMint, Amount: inAmt},
		OutputToken: TokenView{Mint: outMint, Amount: outAmt},
		ZeroOutput:  outAmt == 0,
		Provenance:  ProvenanceDecoder,
	}
}

func TestDedupeTradesKeepsFirst(t *testing.T) {
	trades := []Trade{
		hop("RaydiumAmmV4", "A", 100, "B", 200, "0"),
		hop("RaydiumAmmV4", "A", 999, "B", 999, "0"),
		hop("OrcaWhirlpool", "B", 200, "C", 300, "1"),
	}

	out := dedupeTrades(trades)
	require.Len(t, out, 2)
	assert.Equal(t, uint64(100), out[0].InputToken.Amount)
	assert.Equal(t, "OrcaWhirlpool", out[1].Amm)
}

func TestAggregateSingleTrade(t *testing.T) {
	direct := hop("RaydiumAmmV4", "A", 100, "B", 200, "0")
	direct.Program = RAYDIUM_V4_PROGRAM_ID.String()
	direct.Pool = "pool"

	agg := aggregateTrades([]Trade{direct})
	require.NotNil(t, agg)
	assert.Equal(t, "RaydiumAmmV4", agg.Amm)
	assert.Equal(t, []string{"RaydiumAmmV4"}, agg.Route)
	assert.Equal(t, direct.Program, agg.Program)
	assert.Equal(t, "pool", agg.Pool)
	assert.Equal(t, uint64(100), agg.InputToken.Amount)
	assert.Equal(t, uint64(200), agg.OutputToken.Amount)
}

func TestAggregateChainsHops(t *testing.T) {
	trades := []Trade{
		hop("RaydiumAmmV4", "A", 100, "B", 200, "0"),
		hop("OrcaWhirlpool", "B", 200, "C", 300, "1"),
		hop("MeteoraDlmm", "C", 300, "D", 400, "2"),
	}

	agg := aggregateTrades(trades)
	require.NotNil(t, agg)
	assert.Equal(t, "RaydiumAmmV4 -> OrcaWhirlpool -> MeteoraDlmm", agg.Amm)
	assert.Equal(t, []string{"RaydiumAmmV4", "OrcaWhirlpool", "MeteoraDlmm"}, agg.Route)
	assert.Equal(t, "A", agg.InputToken.Mint)
	assert.Equal(t, uint64(100), agg.InputToken.Amount)
	assert.Equal(t, "D", agg.OutputToken.Mint)
	assert.Equal(t, uint64(400), agg.OutputToken.Amount)
	// composite routes carry no single program or pool
	assert.Empty(t, agg.Program)
	assert.Empty(t, agg.Pool)
}

func TestAggregatePrefersLongestRoute(t *testing.T) {
	trades := []Trade{
		hop("Pumpfun", "X", 5000, "Y", 1, "0"),
		hop("RaydiumAmmV4", "A", 100, "B", 200, "1"),
		hop("OrcaWhirlpool", "B", 200, "C", 300, "2"),
	}

	agg := aggregateTrades(trades)
	require.NotNil(t, agg)
	assert.Equal(t, []string{"RaydiumAmmV4", "OrcaWhirlpool"}, agg.Route)
	assert.Equal(t, "A", agg.InputToken.Mint)
}

func TestAggregateEqualRoutesKeepEarlier(t *testing.T) {
	// equal-length disjoint routes keep the earlier one, regardless of size
	trades := []Trade{
		hop("RaydiumAmmV4", "A", 100, "B", 200, "0"),
		hop("OrcaWhirlpool", "X", 900, "Y", 50, "1"),
	}

	agg := aggregateTrades(trades)
	require.NotNil(t, agg)
	assert.Equal(t, []string{"RaydiumAmmV4"}, agg.Route)
	assert.Equal(t, "A", agg.InputToken.Mint)
}

func TestAggregateZeroOutputHopDoesNotChain(t *testing.T) {
	trades := []Trade{
		hop("RaydiumAmmV4", "A", 100, "B", 0, "0"),
		hop("OrcaWhirlpool", "B", 200, "C", 300, "1"),
	}

	agg := aggregateTrades(trades)
	require.NotNil(t, agg)
	// zero-output hops terminate a route, so the two stay disjoint
	assert.Len(t, agg.Route, 1)
}

func TestAggregateMergesWarningsAndProvenance(t *testing.T) {
	first := hop("RaydiumAmmV4", "A", 100, "B", 200, "0")
	first.Warnings = []string{"w1"}
	second := hop("OkxDexRouter", "B", 200, "C", 300, "1")
	second.Provenance = ProvenanceLog
	second.Warnings = []string{"w2"}

	agg := aggregateTrades([]Trade{first, second})
	require.NotNil(t, agg)
	assert.Equal(t, []string{"w1", "w2"}, agg.Warnings)
	assert.Equal(t, ProvenanceLog, agg.Provenance)
}

func TestAggregateEmpty(t *testing.T) {
	assert.Nil(t, aggregateTrades(nil))
}

func TestAttachTradeFee(t *testing.T) {
	agg := &Trade{Amm: "RaydiumAmmV4"}
	attachTradeFee(agg, newTokenView(NATIVE_SOL_MINT_PROGRAM_ID.String(), 5000, 9))

	require.NotNil(t, agg.Fee)
	assert.Equal(t, uint64(5000), agg.Fee.Amount)
	assert.Equal(t, uint8(9), agg.Fee.Decimals)

	attachTradeFee(nil, TokenView{})
}
