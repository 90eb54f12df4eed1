//go:build !fairrw_debug

package invariant

func check(cond bool, msg string) {}
