package models

import "testing"

func TestTranscriptResult_Valid(t *testing.T) {
	tests := []struct {
		name   string
		result *TranscriptResult
		want   bool
	}{
		{"nil", nil, true},
		{"success", &TranscriptResult{Content: "<p>x</p>", Success: true}, true},
		{"failure", &TranscriptResult{Error: "API request failed with status 500"}, true},
		{"success without content", &TranscriptResult{Success: true}, false},
		{"failure without message", &TranscriptResult{}, false},
		{"success with error", &TranscriptResult{Content: "x", Success: true, Error: "y"}, false},
	}
	for _, tt := range tests {
		if got := tt.result.Valid(); got != tt.want {
			t.Errorf("%s: Valid() = %v, want %v", tt.name, got, tt.want)
		}
	}
}
