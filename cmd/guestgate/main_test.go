package main

import "testing"

func TestEnvInt(t *testing.T) {
	if got := envInt("GUESTGATE_TEST_UNSET", 42); got != 42 {
		t.Errorf("Expected fallback 42, got %d", got)
	}

	t.Setenv("GUESTGATE_TEST_INT", "7")
	if got := envInt("GUESTGATE_TEST_INT", 42); got != 7 {
		t.Errorf("Expected 7, got %d", got)
	}

	t.Setenv("GUESTGATE_TEST_INT", "not-a-number")
	if got := envInt("GUESTGATE_TEST_INT", 42); got != 42 {
		t.Errorf("Expected fallback on parse error, got %d", got)
	}
}
