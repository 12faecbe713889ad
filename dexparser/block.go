package dexparser

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/AlekSi/pointer"
	"github.com/gagliardetto/solana-go/rpc"
)

// ParseBlock decodes every transaction of a fetched block with a bounded
// worker pool. Results keep the block's transaction order; one failing
// transaction becomes a state=false element and never stops its neighbors.
// Cancellation is honored between dispatches, so in-flight transactions run
// to completion.
func (p *Parser) ParseBlock(ctx context.Context, slot uint64, block *rpc.GetBlockResult, cfg *ParseConfig) (*BlockResult, error) {
	if block == nil {
		return nil, decodeErrorf("block result is nil")
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}

	res := &BlockResult{
		Slot:         slot,
		Transactions: make([]*ParseResult, len(block.Transactions)),
	}
	var blockTime time.Time
	if block.BlockTime != nil {
		blockTime = block.BlockTime.Time()
		res.BlockTime = pointer.ToTime(blockTime)
	}

	err := p.runPool(ctx, len(block.Transactions), func(i int) {
		txw := block.Transactions[i]
		tx, err := txw.GetTransaction()
		if err != nil {
			res.Transactions[i] = failureResult(&UnsupportedEncodingError{Err: err})
			return
		}
		result, perr := p.parseIsolated(func() (*ParseResult, error) {
			return p.ParseTransactionFromParts(tx, txw.Meta, slot, blockTime, blockCfg(cfg))
		})
		if perr != nil {
			result = failureResult(perr)
		}
		res.Transactions[i] = result
	})
	if err != nil {
		return res, err
	}
	return res, nil
}

// ParseBlockTransactions decodes a slice of individually fetched transactions
// with the same pool and isolation rules as ParseBlock.
func (p *Parser) ParseBlockTransactions(ctx context.Context, txs []*rpc.GetTransactionResult, cfg *ParseConfig) ([]*ParseResult, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	results := make([]*ParseResult, len(txs))
	err := p.runPool(ctx, len(txs), func(i int) {
		result, perr := p.parseIsolated(func() (*ParseResult, error) {
			return p.ParseTransaction(txs[i], blockCfg(cfg))
		})
		if perr != nil {
			result = failureResult(perr)
		}
		results[i] = result
	})
	return results, err
}

// runPool dispatches n indexed jobs over a bounded set of workers. A
// cancelled context stops dispatching and is returned; already-claimed jobs
// finish.
func (p *Parser) runPool(ctx context.Context, n int, job func(int)) error {
	if n == 0 {
		return ctx.Err()
	}

	workers := runtime.GOMAXPROCS(0)
	if workers > n {
		workers = n
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				job(i)
			}
		}()
	}

dispatch:
	for i := 0; i < n; i++ {
		select {
		case <-ctx.Done():
			break dispatch
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()
	return ctx.Err()
}

// parseIsolated shields the pool from a panicking decode path.
func (p *Parser) parseIsolated(run func() (*ParseResult, error)) (result *ParseResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Errorf("transaction parse panicked: %v", r)
			result = nil
			err = &InternalInvariantError{What: "panic during block transaction parse"}
		}
	}()
	return run()
}

// blockCfg disables ThrowError: block parsing always isolates per-transaction
// failures.
func blockCfg(cfg *ParseConfig) *ParseConfig {
	if !cfg.ThrowError {
		return cfg
	}
	c := *cfg
	c.ThrowError = false
	return &c
}
