package db

import (
	"testing"
	"time"
)

func TestLockTimeoutMillis(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want int64
	}{
		{in: 0, want: 0},
		{in: 500 * time.Microsecond, want: 1},
		{in: time.Nanosecond, want: 1},
		{in: time.Millisecond, want: 1},
		{in: 1500 * time.Microsecond, want: 2},
		{in: 2 * time.Second, want: 2000},
	}
	for _, tt := range tests {
		if got := LockTimeoutMillis(tt.in); got != tt.want {
			t.Errorf("LockTimeoutMillis(%s) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
