package envutil

import (
	"testing"
	"time"
)

func TestReaders(t *testing.T) {
	t.Setenv("EDH_TEST_INT", "42")
	t.Setenv("EDH_TEST_BAD_INT", "x")
	t.Setenv("EDH_TEST_BOOL", "Yes")
	t.Setenv("EDH_TEST_DUR", "90s")
	t.Setenv("EDH_TEST_LIST", "a, ,b,")
	t.Setenv("EDH_TEST_FLOAT", "0.25")

	if Int("EDH_TEST_INT", 1) != 42 || Int("EDH_TEST_BAD_INT", 7) != 7 || Int("EDH_TEST_UNSET", 3) != 3 {
		t.Fatalf("Int mismatch")
	}
	if !Bool("EDH_TEST_BOOL", false) || Bool("EDH_TEST_UNSET", false) {
		t.Fatalf("Bool mismatch")
	}
	if Duration("EDH_TEST_DUR", 0) != 90*time.Second {
		t.Fatalf("Duration mismatch")
	}
	if got := List("EDH_TEST_LIST", nil); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("List mismatch: %#v", got)
	}
	if Float("EDH_TEST_FLOAT", 1) != 0.25 {
		t.Fatalf("Float mismatch")
	}
	if String("EDH_TEST_UNSET", "def") != "def" {
		t.Fatalf("String default mismatch")
	}
}
