package httpx

import (
	"testing"
	"time"
)

func TestConfigureSetsSharedTimeout(t *testing.T) {
	defer Configure(int(defaultExternalTimeout / time.Second))

	got := Configure(45)
	if got != 45*time.Second {
		t.Fatalf("Configure(45) = %v, want 45s", got)
	}
	if Client().Timeout != 45*time.Second {
		t.Fatalf("shared client timeout = %v, want 45s", Client().Timeout)
	}
}

func TestConfigureIgnoresNonPositiveValues(t *testing.T) {
	defer Configure(int(defaultExternalTimeout / time.Second))

	before := Client().Timeout
	if got := Configure(0); got != before {
		t.Fatalf("Configure(0) = %v, want %v", got, before)
	}
	if got := Configure(-5); got != before {
		t.Fatalf("Configure(-5) = %v, want %v", got, before)
	}
}
