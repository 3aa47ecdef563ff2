package ixurl

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/AnyUserName/ixurl/internal/hasher"
)

// ShardStrategy selects how a builder with several domains picks one.
type ShardStrategy int

const (
	// ShardNone always uses the first domain.
	ShardNone ShardStrategy = iota
	// ShardCRC hashes the escaped path, so one image always maps to one domain.
	ShardCRC
	// ShardCycle visits the domains round-robin across calls.
	ShardCycle
)

func (s ShardStrategy) String() string {
	switch s {
	case ShardCRC:
		return "crc"
	case ShardCycle:
		return "cycle"
	default:
		return "none"
	}
}

// ParseShardStrategy maps "none", "crc" and "cycle" (any case) to a strategy.
func ParseShardStrategy(s string) (ShardStrategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return ShardNone, nil
	case "crc":
		return ShardCRC, nil
	case "cycle":
		return ShardCycle, nil
	}
	return ShardNone, fmt.Errorf("unknown shard strategy %q (want none, crc or cycle)", s)
}

// DomainSelector returns the index of the domain to use for an escaped
// path, given the number of configured domains (always > 1). Selectors
// that keep state must be safe for concurrent use.
type DomainSelector func(path string, domains int) int

// SelectFirst always picks the first domain.
func SelectFirst(string, int) int { return 0 }

// Crc32 returns the IEEE CRC-32 of s, as used by ShardCRC.
func Crc32(s string) uint32 { return hasher.Crc32(s) }

// SelectCRC picks the domain by the CRC-32 of the path.
func SelectCRC(path string, domains int) int {
	return int(hasher.Crc32(path) % uint32(domains))
}

// NewCycleSelector returns a round-robin selector with its own cursor.
// The cursor advances atomically once per call.
func NewCycleSelector() DomainSelector {
	var cursor atomic.Uint64
	return func(_ string, domains int) int {
		next := cursor.Add(1) - 1
		return int(next % uint64(domains))
	}
}

// Selector returns a fresh selector implementing the strategy.
func (s ShardStrategy) Selector() DomainSelector {
	switch s {
	case ShardCRC:
		return SelectCRC
	case ShardCycle:
		return NewCycleSelector()
	default:
		return SelectFirst
	}
}
