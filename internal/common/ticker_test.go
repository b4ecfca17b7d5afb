package common

import (
	"testing"
)

func TestNormalizeTicker(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"AAPL", "AAPL", false},
		{"aapl", "AAPL", false},
		{"  nvda  ", "NVDA", false},
		{"brk.b", "BRK.B", false},
		{"BTC-USD", "BTC-USD", false},
		{"", "", true},
		{"   ", "", true},
		{"AAPL$", "", true},
		{"TOOLONGTOBEREAL", "", true},
	}

	for _, tt := range tests {
		got, err := NormalizeTicker(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("NormalizeTicker(%q) expected error, got %q", tt.input, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("NormalizeTicker(%q) unexpected error: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("NormalizeTicker(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
