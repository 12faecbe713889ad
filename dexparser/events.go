package dexparser

// buildEvents converts decoded intents into result events, resolving amounts
// through the reconciler. Events land in instruction order because intents
// arrive in instruction order.
func buildEvents(v *TransactionView, res *ParseResult, intents []DecodedIntent) {
	for _, intent := range intents {
		switch intent.Kind {
		case IntentSwap:
			res.Trades = append(res.Trades, buildTrade(v, intent))
		case IntentAddLiquidity, IntentRemoveLiquidity:
			res.Liquidities = append(res.Liquidities, buildLiquidity(v, intent))
		case IntentTransfer:
			res.Transfers = append(res.Transfers, buildTransfer(v, intent))
		}
	}
}

func buildTrade(v *TransactionView, intent DecodedIntent) Trade {
	in, inWarn := v.reconcileLeg(intent.In, intent.Declared)
	out, outWarn := v.reconcileLeg(intent.Out, intent.Declared)

	trade := Trade{
		Amm:         string(intent.Protocol),
		Program:     intent.Program.String(),
		Pool:        intent.Pool,
		InputToken:  in,
		OutputToken: out,
		User:        v.FeePayer().String(),
		Idx:         intent.Idx,
		Provenance:  intent.Provenance,
	}
	if out.Amount == 0 {
		trade.ZeroOutput = true
	}
	if inWarn != "" {
		trade.Warnings = append(trade.Warnings, inWarn)
	}
	if outWarn != "" {
		trade.Warnings = append(trade.Warnings, outWarn)
	}
	return trade
}

func buildLiquidity(v *TransactionView, intent DecodedIntent) LiquidityEvent {
	token0, warn0 := v.reconcileLeg(intent.In, intent.Declared)
	token1, warn1 := v.reconcileLeg(intent.Out, intent.Declared)

	kind := LiquidityAdd
	if intent.Kind == IntentRemoveLiquidity {
		kind = LiquidityRemove
	}

	event := LiquidityEvent{
		Type:       kind,
		Amm:        string(intent.Protocol),
		Program:    intent.Program.String(),
		Pool:       intent.Pool,
		Token0:     token0,
		Token1:     token1,
		LPMint:     intent.LP.Mint,
		LPAmount:   intent.LP.Amount,
		Idx:        intent.Idx,
		Provenance: intent.Provenance,
	}
	if warn0 != "" {
		event.Warnings = append(event.Warnings, warn0)
	}
	if warn1 != "" {
		event.Warnings = append(event.Warnings, warn1)
	}
	return event
}

func buildTransfer(v *TransactionView, intent DecodedIntent) Transfer {
	token, _ := v.reconcileLeg(intent.In, intent.Declared)
	return Transfer{
		Token:       token,
		Source:      intent.In.Source,
		Destination: intent.In.Destination,
		Authority:   intent.In.Authority,
		Idx:         intent.Idx,
		Provenance:  intent.Provenance,
	}
}
