package invariant

import "testing"

// Check's panic behaviour is controlled by the fairrw_debug build tag, so
// this only exercises the no-op/panic case the default build is compiled
// with. Run "go test -tags fairrw_debug ./..." to exercise the other one.
func TestCheckDoesNotPanicOnTrue(t *testing.T) {
	Check(true, "should never fire")
}
