// Package bot drives the raffle entry loop: collect the full listing, enter
// every raffle the account hasn't joined yet (oldest first, with a delay
// between submissions), record a run report, and either stop or sleep until
// the next pass. Cancellation comes from the context; there is no retry
// policy, a failed submission ends the pass.
package bot
