package dexparser

import (
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/sirupsen/logrus"
	"github.com/vladislavgrisyuk/solana-dex-parser-r/spltoken"
)

// Parser runs the decode pipeline. It is stateless across transactions and
// safe for concurrent use.
type Parser struct {
	registry *Registry
	log      *logrus.Logger
}

type Option func(*Parser)

func WithRegistry(r *Registry) Option {
	return func(p *Parser) { p.registry = r }
}

func WithLogger(log *logrus.Logger) Option {
	return func(p *Parser) { p.log = log }
}

func NewParser(opts ...Option) *Parser {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{
		TimestampFormat: "2006-01-02 15:04:05",
		FullTimestamp:   true,
	})

	p := &Parser{
		registry: DefaultRegistry(),
		log:      log,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ParseTransaction decodes one fetched transaction. View-building failures
// follow cfg.ThrowError: either an error return or a state=false result.
func (p *Parser) ParseTransaction(tx *rpc.GetTransactionResult, cfg *ParseConfig) (*ParseResult, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	v, err := NewTransactionView(tx)
	if err != nil {
		return p.failure(err, cfg)
	}
	return p.parseView(v, cfg), nil
}

// ParseTransactionFromParts decodes an already-rehydrated transaction plus
// its meta.
func (p *Parser) ParseTransactionFromParts(tx *solana.Transaction, meta *rpc.TransactionMeta, slot uint64, blockTime time.Time, cfg *ParseConfig) (*ParseResult, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	v, err := NewTransactionViewFromParts(tx, meta, slot, blockTime)
	if err != nil {
		return p.failure(err, cfg)
	}
	return p.parseView(v, cfg), nil
}

func (p *Parser) failure(err error, cfg *ParseConfig) (*ParseResult, error) {
	if cfg.ThrowError {
		return nil, err
	}
	return failureResult(err), nil
}

func failureResult(err error) *ParseResult {
	return &ParseResult{
		State:       false,
		Trades:      []Trade{},
		Liquidities: []LiquidityEvent{},
		Transfers:   []Transfer{},
		TxStatus:    TxStatusUnknown,
		Error:       err.Error(),
	}
}

func (p *Parser) parseView(v *TransactionView, cfg *ParseConfig) (res *ParseResult) {
	res = newResult(v)

	defer func() {
		if r := recover(); r != nil {
			err := &InternalInvariantError{What: fmt.Sprintf("panic while parsing %s: %v", res.Signature, r)}
			p.log.Error(err.Error())
			res = failureResult(err)
		}
	}()

	for i, ix := range v.Instructions() {
		progID, err := v.ProgramID(ix)
		if err != nil {
			p.log.Warnf("instruction %d skipped: %s", i, err)
			continue
		}
		if !cfg.programAllowed(progID) || isSystemProgram(progID) {
			continue
		}
		inner := v.InnerInstructions(i)

		if isTokenProgram(progID) {
			p.appendTokenTransfer(v, res, i, ix)
			continue
		}

		if desc, ok := p.registry.Match(progID); ok && desc.Decoder.CanDecode(v, i, ix) {
			intents, err := desc.Decoder.Decode(v, i, ix, inner)
			if err != nil {
				p.log.Warnf("%s decode failed at instruction %d: %s", desc.Name, i, err)
				if cfg.TryUnknownDex {
					intents = heuristicIntents(v, i, ix, inner)
				}
			}
			buildEvents(v, res, intents)
			continue
		}

		if cfg.TryUnknownDex {
			buildEvents(v, res, heuristicIntents(v, i, ix, inner))
		}
	}

	res.Trades = dedupeTrades(res.Trades)
	if cfg.AggregateTrades && len(res.Trades) > 0 {
		res.AggregateTrade = aggregateTrades(res.Trades)
		attachTradeFee(res.AggregateTrade, res.Fee)
	}
	res.SolBalanceChange = v.signerSolChange()
	res.TokenBalanceChanges = v.signerTokenChanges()
	return res
}

// appendTokenTransfer surfaces a top-level SPL transfer on the transfer
// stream.
func (p *Parser) appendTokenTransfer(v *TransactionView, res *ParseResult, index int, ix solana.CompiledInstruction) {
	accounts, err := v.resolveAccounts(ix)
	if err != nil {
		p.log.Warnf("token instruction %d skipped: %s", index, err)
		return
	}
	tr, err := spltoken.DecodeTransfer(accounts, ix.Data)
	if err != nil || tr == nil {
		return
	}

	leg := IntentLeg{
		Mint:        tr.Mint.String(),
		Amount:      tr.Amount,
		Decimals:    tr.Decimals,
		Source:      tr.Source.String(),
		Destination: tr.Destination.String(),
		Authority:   tr.Authority.String(),
	}
	if !tr.Checked {
		leg.Mint = ""
		if info, ok := v.TokenAccount(leg.Destination); ok && info.Mint != "" {
			leg.Mint = info.Mint
			leg.Decimals = info.Decimals
		} else if info, ok := v.TokenAccount(leg.Source); ok && info.Mint != "" {
			leg.Mint = info.Mint
			leg.Decimals = info.Decimals
		}
	}

	buildEvents(v, res, []DecodedIntent{{
		Kind:             IntentTransfer,
		Idx:              outerIdx(index),
		InstructionIndex: index,
		Provenance:       ProvenanceDecoder,
		Declared:         true,
		In:               leg,
	}})
}

func newResult(v *TransactionView) *ParseResult {
	signers := v.Signers()
	signerStrs := make([]string, len(signers))
	for i, s := range signers {
		signerStrs[i] = s.String()
	}

	return &ParseResult{
		State:        true,
		Trades:       []Trade{},
		Liquidities:  []LiquidityEvent{},
		Transfers:    []Transfer{},
		Fee:          newTokenView(NATIVE_SOL_MINT_PROGRAM_ID.String(), v.Fee(), 9),
		ComputeUnits: v.ComputeUnits(),
		TxStatus:     v.Status(),
		Slot:         v.Slot,
		Timestamp:    v.BlockTime,
		Signature:    v.Signature().String(),
		Signers:      signerStrs,
	}
}
