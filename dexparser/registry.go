package dexparser

import "github.com/gagliardetto/solana-go"

type Capability uint8

const (
	CapTrades Capability = 1 << iota
	CapLiquidity
	CapTransfers
)

func (c Capability) Has(cap Capability) bool { return c&cap != 0 }

// ProtocolDescriptor binds a protocol name to its on-chain programs and the
// decoder that understands them.
type ProtocolDescriptor struct {
	Name         Protocol
	Programs     []solana.PublicKey
	Capabilities Capability
	Decoder      Decoder
}

// Registry maps program IDs to protocol descriptors. It is built once and
// read concurrently; Register is not safe after the registry is shared.
type Registry struct {
	byProgram map[solana.PublicKey]*ProtocolDescriptor
}

func NewRegistry(descriptors ...*ProtocolDescriptor) *Registry {
	r := &Registry{byProgram: make(map[solana.PublicKey]*ProtocolDescriptor)}
	for _, d := range descriptors {
		r.Register(d)
	}
	return r
}

func (r *Registry) Register(d *ProtocolDescriptor) {
	for _, program := range d.Programs {
		r.byProgram[program] = d
	}
}

func (r *Registry) Match(program solana.PublicKey) (*ProtocolDescriptor, bool) {
	d, ok := r.byProgram[program]
	return d, ok
}

func (r *Registry) Protocols() []*ProtocolDescriptor {
	seen := make(map[Protocol]bool)
	var out []*ProtocolDescriptor
	for _, d := range r.byProgram {
		if !seen[d.Name] {
			seen[d.Name] = true
			out = append(out, d)
		}
	}
	return out
}

var defaultRegistry = NewRegistry(
	raydiumDescriptors()...,
)

func init() {
	defaultRegistry.Register(orcaDescriptor())
	for _, d := range meteoraDescriptors() {
		defaultRegistry.Register(d)
	}
	defaultRegistry.Register(pumpfunDescriptor())
	defaultRegistry.Register(pumpswapDescriptor())
	defaultRegistry.Register(jupiterDescriptor())
	defaultRegistry.Register(okxDescriptor())
}

// DefaultRegistry returns the shared registry of all built-in protocols.
// Callers that need a custom protocol set should build their own via
// NewRegistry.
func DefaultRegistry() *Registry { return defaultRegistry }
