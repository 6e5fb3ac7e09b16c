// Package cli wires the raffle bot together behind a cobra command:
// configuration, session loading, browser assembly, storage, and the entry
// loop itself.
package cli
