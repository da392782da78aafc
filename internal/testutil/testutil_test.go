package testutil

import (
	"errors"
	"os"
	"os/exec"
	"testing"
)

// TestAssertNoError verifies that AssertNoError executes without panicking.
// Note: Testing t.Errorf/t.Fatalf calls requires a mock testing.T implementation
// which adds complexity. These helpers are best validated through integration
// tests where they're actually used.
func TestAssertNoError(t *testing.T) {
	t.Parallel()

	AssertNoError(t, nil)
}

func TestAssertNoError_FailurePath(t *testing.T) {
	t.Parallel()

	if os.Getenv("TESTUTIL_ASSERT_NO_ERROR_FAIL") == "1" {
		AssertNoError(t, errors.New("boom"))
		return
	}

	cmd := exec.Command(os.Args[0], "-test.run=^TestAssertNoError_FailurePath$")
	cmd.Env = append(os.Environ(), "TESTUTIL_ASSERT_NO_ERROR_FAIL=1")
	err := cmd.Run()
	if err == nil {
		t.Fatal("expected subprocess to fail when error is non-nil")
	}
}

func TestAssertError(t *testing.T) {
	t.Parallel()

	AssertError(t, errors.New("test error"))
}

func TestAssertError_FailurePath(t *testing.T) {
	t.Parallel()

	if os.Getenv("TESTUTIL_ASSERT_ERROR_FAIL") == "1" {
		AssertError(t, nil)
		return
	}

	cmd := exec.Command(os.Args[0], "-test.run=^TestAssertError_FailurePath$")
	cmd.Env = append(os.Environ(), "TESTUTIL_ASSERT_ERROR_FAIL=1")
	err := cmd.Run()
	if err == nil {
		t.Fatal("expected subprocess to fail when error is nil")
	}
}
