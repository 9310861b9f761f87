package main

import (
	"reflect"
	"testing"
	"time"
)

func TestSplitList(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"", nil},
		{"*", []string{"*"}},
		{"https://a.example, https://b.example ,", []string{"https://a.example", "https://b.example"}},
	}
	for _, tt := range tests {
		if got := splitList(tt.input); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("splitList(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestDurationEnv(t *testing.T) {
	t.Setenv("MIREVA_TEST_TTL", "45m")
	if got := durationEnv("MIREVA_TEST_TTL", time.Minute); got != 45*time.Minute {
		t.Errorf("got %v, want 45m", got)
	}

	t.Setenv("MIREVA_TEST_TTL", "soon")
	if got := durationEnv("MIREVA_TEST_TTL", time.Minute); got != time.Minute {
		t.Errorf("got %v, want fallback 1m", got)
	}

	t.Setenv("MIREVA_TEST_TTL", "")
	if got := durationEnv("MIREVA_TEST_TTL", time.Minute); got != time.Minute {
		t.Errorf("got %v, want fallback 1m", got)
	}
}
