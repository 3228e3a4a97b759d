package mmdb

// EntryRef is an opaque reference to a located data-section entry,
// produced by a search engine's Lookup and redeemed with EntryStream.
// Its numeric value has no meaning outside the engine that issued it.
type EntryRef uint64

// LookupResult is the outcome of a search-tree walk. PrefixLen is the raw
// prefix length in the tree's own bit terms; the Reader re-expresses it
// for IPv4 queries against IPv6-indexed databases.
type LookupResult struct {
	Found     bool
	PrefixLen int
	Entry     EntryRef // valid only when Found
}

// Engine is the search-tree collaborator behind a Reader: it walks the
// on-disk trie and flattens located entries into node streams. Engines
// must be safe for concurrent lookups as long as every call gets its own
// stream; the Reader serializes Close against in-flight calls.
type Engine interface {
	// Lookup walks the search tree for addr. An address family the
	// database does not index is reported with *FamilyError.
	Lookup(addr Addr) (LookupResult, error)

	// EntryStream flattens the entry's node sequence, with pointers
	// already resolved, into a fresh single-use stream.
	EntryStream(entry EntryRef) (*NodeStream, error)

	// MetadataStream returns a fresh single-use stream over the metadata
	// section's node sequence.
	MetadataStream() *NodeStream

	Close() error
}

// EngineOpener builds an Engine over the memory-mapped database bytes.
// The bytes stay valid, and read-only, until the Reader is closed.
type EngineOpener func(data []byte) (Engine, error)
