package dexparser

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeuristicAmbiguousShapeIsIgnored(t *testing.T) {
	signer := randomKey()
	unknownProgram := randomKey()
	userA := randomKey()
	vaultA := randomKey()
	vaultB := randomKey()
	userB := randomKey()
	mintA := randomKey()
	mintB := randomKey()

	keys := []solana.PublicKey{
		signer, userA, vaultA, vaultB, userB,
		solana.TokenProgramID, unknownProgram,
	}
	f := &txFixture{
		keys: keys,
		instructions: []solana.CompiledInstruction{
			rawIx(6, []byte{1, 2, 3}, 0, 1, 2, 3, 4),
		},
		inner: map[int][]solana.CompiledInstruction{
			0: {
				transferIx(5, 1, 2, 0, 100),
				transferIx(5, 3, 4, 0, 250),
			},
		},
		pre: []rpc.TokenBalance{
			tokenBalance(1, mintA, signer, "100", 6),
			tokenBalance(2, mintA, randomKey(), "0", 6),
			tokenBalance(3, mintB, randomKey(), "250", 6),
			tokenBalance(4, mintB, signer, "0", 6),
		},
		post: []rpc.TokenBalance{
			tokenBalance(1, mintA, signer, "0", 6),
			tokenBalance(2, mintA, randomKey(), "100", 6),
			tokenBalance(3, mintB, randomKey(), "0", 6),
			tokenBalance(4, mintB, signer, "250", 6),
		},
	}
	v := f.mustView()

	// vault accounts net to zero only when payments cancel; here each vault
	// nets nonzero, so narrow the shape with a pass-through intermediate.
	intents := heuristicIntents(v, 0, v.Instructions()[0], v.InnerInstructions(0))
	require.Len(t, intents, 0)
}

func TestHeuristicSwapViaPassThrough(t *testing.T) {
	signer := randomKey()
	unknownProgram := randomKey()
	userA := randomKey()
	hub := randomKey()
	userB := randomKey()
	mintA := randomKey()
	mintB := randomKey()

	keys := []solana.PublicKey{
		signer, userA, hub, userB,
		solana.TokenProgramID, unknownProgram, mintA, mintB,
	}
	f := &txFixture{
		keys: keys,
		instructions: []solana.CompiledInstruction{
			rawIx(5, []byte{7}, 0, 1, 2, 3),
		},
		inner: map[int][]solana.CompiledInstruction{
			0: {
				// the hub appears as both source and destination, so it is
				// excluded from netting even though it nets nonzero
				transferCheckedIx(4, 1, 6, 2, 0, 250, 6),
				transferCheckedIx(4, 2, 7, 3, 0, 400, 6),
			},
		},
		pre: []rpc.TokenBalance{
			tokenBalance(1, mintA, signer, "250", 6),
			tokenBalance(3, mintB, signer, "0", 6),
		},
		post: []rpc.TokenBalance{
			tokenBalance(1, mintA, signer, "0", 6),
			tokenBalance(3, mintB, signer, "400", 6),
		},
	}
	v := f.mustView()

	intents := heuristicIntents(v, 0, v.Instructions()[0], v.InnerInstructions(0))
	require.Len(t, intents, 1)

	intent := intents[0]
	assert.Equal(t, UNKNOWN, intent.Protocol)
	assert.Equal(t, IntentSwap, intent.Kind)
	assert.Equal(t, ProvenanceHeuristic, intent.Provenance)
	assert.False(t, intent.Declared)
	assert.Equal(t, userA.String(), intent.In.Account)
	assert.Equal(t, mintA.String(), intent.In.Mint)
	assert.Equal(t, uint64(250), intent.In.Amount)
	assert.Equal(t, userB.String(), intent.Out.Account)
	assert.Equal(t, mintB.String(), intent.Out.Mint)
	assert.Equal(t, uint64(400), intent.Out.Amount)
}

func TestHeuristicOneDirectionalIsTransfer(t *testing.T) {
	signer := randomKey()
	unknownProgram := randomKey()
	src := randomKey()
	dstOne := randomKey()
	dstTwo := randomKey()

	keys := []solana.PublicKey{
		signer, src, dstOne, dstTwo,
		solana.TokenProgramID, unknownProgram,
	}
	f := &txFixture{
		keys: keys,
		instructions: []solana.CompiledInstruction{
			rawIx(5, []byte{7}, 0, 1, 2, 3),
		},
		inner: map[int][]solana.CompiledInstruction{
			0: {
				// the excluded signer wrapped SOL account funds two
				// destinations, so every counted delta is positive
				transferIx(4, 1, 2, 0, 30),
				transferIx(4, 1, 3, 0, 90),
			},
		},
		pre: []rpc.TokenBalance{
			tokenBalance(1, NATIVE_SOL_MINT_PROGRAM_ID, signer, "120", 9),
		},
		post: []rpc.TokenBalance{
			tokenBalance(1, NATIVE_SOL_MINT_PROGRAM_ID, signer, "0", 9),
		},
	}
	v := f.mustView()

	intents := heuristicIntents(v, 0, v.Instructions()[0], v.InnerInstructions(0))
	require.Len(t, intents, 1)

	intent := intents[0]
	assert.Equal(t, IntentTransfer, intent.Kind)
	assert.Equal(t, ProvenanceHeuristic, intent.Provenance)
	assert.Equal(t, uint64(90), intent.In.Amount)
	assert.Equal(t, src.String(), intent.In.Source)
	assert.Equal(t, dstTwo.String(), intent.In.Destination)
}

func TestHeuristicExcludesSignerNativeAccounts(t *testing.T) {
	signer := randomKey()
	unknownProgram := randomKey()
	wsolA := randomKey()
	wsolB := randomKey()
	poolToken := randomKey()
	userToken := randomKey()
	mint := randomKey()

	keys := []solana.PublicKey{
		signer, wsolA, wsolB, poolToken, userToken,
		solana.TokenProgramID, unknownProgram,
	}
	f := &txFixture{
		keys: keys,
		instructions: []solana.CompiledInstruction{
			rawIx(6, []byte{7}, 0, 1, 2, 3, 4),
		},
		inner: map[int][]solana.CompiledInstruction{
			0: {
				// wrapped SOL shuffling between the signer's own accounts
				// is excluded from netting, leaving only the token flow
				transferIx(5, 1, 2, 0, 1_000),
				transferIx(5, 3, 4, 0, 500),
			},
		},
		pre: []rpc.TokenBalance{
			tokenBalance(1, NATIVE_SOL_MINT_PROGRAM_ID, signer, "1000", 9),
			tokenBalance(2, NATIVE_SOL_MINT_PROGRAM_ID, signer, "0", 9),
			tokenBalance(3, mint, randomKey(), "500", 6),
			tokenBalance(4, mint, signer, "0", 6),
		},
		post: []rpc.TokenBalance{
			tokenBalance(1, NATIVE_SOL_MINT_PROGRAM_ID, signer, "0", 9),
			tokenBalance(2, NATIVE_SOL_MINT_PROGRAM_ID, signer, "1000", 9),
			tokenBalance(3, mint, randomKey(), "0", 6),
			tokenBalance(4, mint, signer, "500", 6),
		},
	}
	v := f.mustView()

	intents := heuristicIntents(v, 0, v.Instructions()[0], v.InnerInstructions(0))
	require.Len(t, intents, 1)
	assert.Equal(t, IntentSwap, intents[0].Kind)
	assert.Equal(t, poolToken.String(), intents[0].In.Account)
	assert.Equal(t, userToken.String(), intents[0].Out.Account)
	// both sides sharing one mint still counts as a best-effort swap
	assert.Equal(t, mint.String(), intents[0].In.Mint)
	assert.Equal(t, mint.String(), intents[0].Out.Mint)
}

func TestHeuristicNoLegs(t *testing.T) {
	signer := randomKey()
	f := &txFixture{
		keys: []solana.PublicKey{signer, randomKey()},
		instructions: []solana.CompiledInstruction{
			rawIx(1, []byte{7}, 0),
		},
	}
	v := f.mustView()

	assert.Nil(t, heuristicIntents(v, 0, v.Instructions()[0], nil))
}
