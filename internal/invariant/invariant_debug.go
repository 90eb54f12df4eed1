//go:build fairrw_debug

package invariant

func check(cond bool, msg string) {
	if !cond {
		panic("fairrw: invariant violated: " + msg)
	}
}
