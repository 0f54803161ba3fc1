package process

// Notes:
// - KillProcessGroup: we only test with an invalid PID to verify the function
//   doesn't panic. Real kill behavior is exercised by the converter
//   cancellation test in the root package.
// - Cannot test with PID 0 (kills current process group) or real PIDs.
// These are acceptable gaps: we test observable behavior, not syscall internals.

import (
	"os/exec"
	"testing"
)

func TestKillProcessGroup_InvalidPID(t *testing.T) {
	t.Parallel()

	KillProcessGroup(999999999)
}

func TestIsolate_SetsAttributes(t *testing.T) {
	t.Parallel()

	cmd := exec.Command("true")
	Isolate(cmd)
	if cmd.SysProcAttr == nil {
		t.Fatal("Isolate() left SysProcAttr nil")
	}

	// Idempotent on an already configured command
	Isolate(cmd)
}
