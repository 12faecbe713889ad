package dexparser

import "strings"

// dedupeTrades removes duplicate trades by ordering key, keeping the first
// occurrence. Routers that re-surface an inner leg produce such duplicates.
func dedupeTrades(trades []Trade) []Trade {
	seen := make(map[string]bool, len(trades))
	out := trades[:0]
	for _, t := range trades {
		key := t.Amm + "|" + t.Idx
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, t)
	}
	return out
}

// aggregateTrades folds the trade list into one route-level trade. Hops chain
// when one trade's output mint feeds the next trade's input mint, in
// instruction order. Among disjoint routes the longest wins; equal-length
// routes keep the earlier one.
func aggregateTrades(trades []Trade) *Trade {
	if len(trades) == 0 {
		return nil
	}

	var routes [][]Trade
	for _, t := range trades {
		extended := false
		if t.InputToken.Mint != "" {
			for i := range routes {
				last := routes[i][len(routes[i])-1]
				if !last.ZeroOutput && last.OutputToken.Mint != "" && last.OutputToken.Mint == t.InputToken.Mint {
					routes[i] = append(routes[i], t)
					extended = true
					break
				}
			}
		}
		if !extended {
			routes = append(routes, []Trade{t})
		}
	}

	best := routes[0]
	for _, route := range routes[1:] {
		if len(route) > len(best) {
			best = route
		}
	}

	first := best[0]
	last := best[len(best)-1]

	agg := Trade{
		Amm:         routeName(best),
		InputToken:  first.InputToken,
		OutputToken: last.OutputToken,
		User:        first.User,
		Idx:         first.Idx,
		Route:       routeProtocols(best),
		ZeroOutput:  last.ZeroOutput,
		Provenance:  routeProvenance(best),
	}
	if len(best) == 1 {
		agg.Program = first.Program
		agg.Pool = first.Pool
	}
	for _, hop := range best {
		agg.Warnings = append(agg.Warnings, hop.Warnings...)
	}
	return &agg
}

func routeProtocols(route []Trade) []string {
	names := make([]string, 0, len(route))
	for _, hop := range route {
		names = append(names, hop.Amm)
	}
	return names
}

// routeName is the single protocol for a direct trade, or a composite marker
// joining the hop protocols for a routed one.
func routeName(route []Trade) string {
	if len(route) == 1 {
		return route[0].Amm
	}
	return strings.Join(routeProtocols(route), " -> ")
}

func routeProvenance(route []Trade) Provenance {
	provenance := ProvenanceDecoder
	for _, hop := range route {
		if hop.Provenance == ProvenanceHeuristic {
			return ProvenanceHeuristic
		}
		if hop.Provenance == ProvenanceLog {
			provenance = ProvenanceLog
		}
	}
	return provenance
}

// attachTradeFee stamps the network fee onto the aggregate trade.
func attachTradeFee(agg *Trade, fee TokenView) {
	if agg == nil {
		return
	}
	f := fee
	agg.Fee = &f
}
