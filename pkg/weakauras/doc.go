// Package weakauras ingests WeakAuras import strings and merges the
// decoded aura definitions into the SavedVariables file the game client
// reads at launch. The package is the core of a mass-import tool; it
// contains no UI and performs no scheduling of its own.
//
// The moving parts, in dependency order:
//
//   - LuaValue: a tagged tree of Lua values that distinguishes the four
//     semantic table shapes (scalar, pure array, pure hash, mixed).
//     Preserving the array/hash distinction end to end is load-bearing:
//     the game silently rejects files where an implicit array index was
//     rewritten as an explicit string key.
//   - Decoder: recognizes the three historical import-string encodings,
//     drives the wire codec, and assembles a WeakAura from the
//     transmission envelope.
//   - ParseSavedVariables / Serialize: a hand-written parser for the Lua
//     subset the game writer emits, and its byte-deterministic inverse.
//   - BuildChildrenHierarchy: reconstructs parent/child relations from a
//     flat transmission payload.
//   - Manager: owns the on-disk state, detects category-granular
//     conflicts against incoming auras, applies per-conflict resolutions,
//     and saves atomically with a backup.
//
// All mutation of a Manager is single-threaded by design; a host that
// wants background execution wraps whole operations and keeps snapshots
// on its side of the boundary.
package weakauras
