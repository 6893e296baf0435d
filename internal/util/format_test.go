package util

import (
	"testing"
	"time"
)

func TestFormatDuration(t *testing.T) {
	cases := map[time.Duration]string{
		-time.Second:                   "0:00",
		0:                              "0:00",
		1500 * time.Millisecond:        "0:01",
		61 * time.Second:               "1:01",
		62*time.Minute + 5*time.Second: "1:02:05",
	}
	for d, want := range cases {
		if got := FormatDuration(d); got != want {
			t.Fatalf("FormatDuration(%v): expected %q, got %q", d, want, got)
		}
	}
}
