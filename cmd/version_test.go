package cmd

import (
	"strings"
	"testing"

	"github.com/rnwolfe/cram/internal/version"
)

func TestVersionCommand(t *testing.T) {
	out := captureStdout(t, func() {
		if err := runVersion(nil, nil); err != nil {
			t.Fatalf("runVersion: %v", err)
		}
	})

	if !strings.Contains(out, "cram") {
		t.Errorf("expected binary name in output, got %q", out)
	}
	if !strings.Contains(out, version.Short()) {
		t.Errorf("expected version %q in output, got %q", version.Short(), out)
	}
}
