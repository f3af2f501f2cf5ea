package assets

import (
	"strings"
	"testing"
)

func TestGetClientJS(t *testing.T) {
	data, err := GetClientJS()
	if err != nil {
		t.Fatalf("GetClientJS failed: %v", err)
	}
	if len(data) == 0 {
		t.Error("GetClientJS returned empty data")
	}
}

func TestGetClientCSS(t *testing.T) {
	data, err := GetClientCSS()
	if err != nil {
		t.Fatalf("GetClientCSS failed: %v", err)
	}
	for _, class := range []string{".mute", ".drop-area", ".page-item"} {
		if !strings.Contains(string(data), class) {
			t.Errorf("stylesheet missing %s", class)
		}
	}
}

func TestGet(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
	}{
		{"pinboard.js", "javascript"},
		{"pinboard.css", "css"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, ct, err := Get(tt.name)
			if err != nil {
				t.Fatalf("Get(%q) failed: %v", tt.name, err)
			}
			if len(data) == 0 {
				t.Errorf("Get(%q) returned empty data", tt.name)
			}
			if !strings.Contains(ct, tt.contentType) {
				t.Errorf("Get(%q) content type = %q, want *%s*", tt.name, ct, tt.contentType)
			}
		})
	}
}

func TestGetRejectsMissingAndNested(t *testing.T) {
	for _, name := range []string{"missing.js", "../assets.go", "client/pinboard.js"} {
		if _, _, err := Get(name); err == nil {
			t.Errorf("Get(%q) expected error", name)
		}
	}
}
