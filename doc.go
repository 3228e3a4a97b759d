/*
Package mmdb looks up IP addresses in MaxMind-format geolocation and
attribute databases and returns records as generic, dynamically shaped
values.

The package owns three concerns:

1. Address normalization. Textual and packed binary addresses become a
canonical family-tagged Addr. No implicit IPv4-to-IPv6 mapping is
performed; a 4-in-6 literal stays a 16-byte IPv6 address.

2. Value decoding. A search engine flattens a located entry into a
pre-order stream of typed nodes; DecodeStream walks that stream once,
recursively materializing maps, arrays, strings, byte strings, floats,
unsigned integers up to 128 bits, signed 32-bit integers and booleans
into a closed tagged Value. Declared container sizes are enforced
exactly, unknown type tags and premature exhaustion are CorruptError,
and nesting is bounded so a corrupt database cannot blow the stack.

3. Lookup normalization and lifecycle. Reader owns a read-only memory
mapping of the database file plus the Engine built over it, adjusts
prefix lengths for IPv4 queries against IPv6-indexed trees, decodes the
nine-field metadata snapshot, and turns into a deterministic ErrClosed
source once closed.

The search-tree walk itself is deliberately external: Reader talks to it
through the Engine interface, and the mmdbtest subpackage provides an
in-memory engine for tests.

# Concurrency

Lookups are pure, non-blocking computations over the read-only mapping
and may run concurrently; every call owns its own node-stream cursor.
Close waits for in-flight lookups, transitions exactly once, and is a
no-op afterwards.
*/
package mmdb
