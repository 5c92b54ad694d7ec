package bot

import (
	"context"
	"testing"
)

// testContext stands in for (*testing.T).Context, which requires Go 1.24;
// the build toolchain is Go 1.21. Same semantics: a context canceled when
// the test's cleanup phase runs.
func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return ctx
}
