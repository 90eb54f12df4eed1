// Package invariant provides debug-only precondition checks for tests and
// fuzz targets exercising package fairrw's Waiter lifecycle.
//
// Nothing in fairrw's production acquire/release path imports this
// package: the protocol's wait-free and lock-free progress bounds (see
// SPEC_FULL.md section 5) would be invalidated by an unconditional branch
// and string-format call on every spin iteration. Tests that want to catch
// a misused Waiter (an AcquireRead on a Waiter still StateHoldingWrite, for
// instance) call Check directly instead.
package invariant

// Check panics with a message that ends in msg if cond is false and the
// binary was built with the fairrw_debug build tag; otherwise it does
// nothing. Build with
//
//	go test -tags fairrw_debug ./...
//
// to enable it.
func Check(cond bool, msg string) {
	check(cond, msg)
}
