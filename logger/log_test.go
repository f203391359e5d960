package logger_test

import (
	"strings"
	"testing"

	"github.com/Project-Muteki/nc1020/logger"
)

func TestRepeatCollapses(t *testing.T) {
	logger.Clear()
	logger.Log("hal", "load_nor_page(3) failed")
	logger.Log("hal", "load_nor_page(3) failed")
	logger.Log("hal", "load_nor_page(3) failed")

	var b strings.Builder
	logger.Write(&b)

	out := b.String()
	if strings.Count(out, "\n") != 1 {
		t.Fatalf("expected repeats to collapse into a single line, got %q", out)
	}
	if !strings.Contains(out, "(x3)") {
		t.Fatalf("expected repeat count in output, got %q", out)
	}
}

func TestDistinctEntriesDoNotCollapse(t *testing.T) {
	logger.Clear()
	logger.Log("flash", "unexpected write at step 0")
	logger.Log("flash", "unexpected write at step 1")

	var b strings.Builder
	logger.Write(&b)
	if strings.Count(b.String(), "\n") != 2 {
		t.Fatalf("expected two distinct lines, got %q", b.String())
	}
}
