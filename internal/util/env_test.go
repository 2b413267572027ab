package util

import (
	"testing"
	"time"
)

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("IDISLAND_TEST_STRING", "value")
	t.Setenv("IDISLAND_TEST_BLANK", "  ")
	t.Setenv("IDISLAND_TEST_NUMBER", " 42.5 ")
	t.Setenv("IDISLAND_TEST_BAD_NUMBER", "many")
	t.Setenv("IDISLAND_TEST_BOOL", "1")
	t.Setenv("IDISLAND_TEST_BAD_BOOL", "yes please")
	t.Setenv("IDISLAND_TEST_DURATION", "45s")
	t.Setenv("IDISLAND_TEST_NEG_DURATION", "-5s")

	if got := GetEnv("IDISLAND_TEST_STRING"); got != "value" {
		t.Fatalf("GetEnv: got %q", got)
	}
	if got := GetEnv("IDISLAND_TEST_MISSING"); got != "" {
		t.Fatalf("GetEnv missing: got %q", got)
	}
	if got := GetEnvString("IDISLAND_TEST_BLANK", "fallback"); got != "fallback" {
		t.Fatalf("GetEnvString blank: got %q", got)
	}
	if got := GetEnvNumeric("IDISLAND_TEST_NUMBER", 1); got != 42.5 {
		t.Fatalf("GetEnvNumeric: got %v", got)
	}
	if got := GetEnvNumeric("IDISLAND_TEST_BAD_NUMBER", 7); got != 7 {
		t.Fatalf("GetEnvNumeric invalid: got %v", got)
	}
	if got := GetEnvBool("IDISLAND_TEST_BOOL", false); !got {
		t.Fatalf("GetEnvBool: got %v", got)
	}
	if got := GetEnvBool("IDISLAND_TEST_BAD_BOOL", true); !got {
		t.Fatalf("GetEnvBool invalid: got %v", got)
	}
	if got := GetEnvDuration("IDISLAND_TEST_DURATION", time.Second); got != 45*time.Second {
		t.Fatalf("GetEnvDuration: got %v", got)
	}
	if got := GetEnvDuration("IDISLAND_TEST_NEG_DURATION", time.Second); got != time.Second {
		t.Fatalf("GetEnvDuration negative: got %v", got)
	}
}
