package security

import (
	"strings"
	"testing"

	"github.com/livetemplate/pinboard"
)

func TestValidateMediaURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr string
	}{
		{name: "https", url: "https://picsum.photos/600/300", wantErr: ""},
		{name: "http with port", url: "http://media.example.com:8080/a.png", wantErr: ""},
		{name: "embed url", url: "https://www.youtube.com/embed/t3M6toIflyQ", wantErr: ""},
		{name: "javascript", url: "javascript:alert(1)", wantErr: "URL scheme must be http or https"},
		{name: "data", url: "data:text/html,<script>alert(1)</script>", wantErr: "URL scheme must be http or https"},
		{name: "file", url: "file:///etc/passwd", wantErr: "URL scheme must be http or https"},
		{name: "relative", url: "/assets/pinboard.js", wantErr: "URL scheme must be http or https"},
		{name: "empty", url: "", wantErr: "URL scheme must be http or https"},
		{name: "no host", url: "https:///path", wantErr: "URL must have a host"},
		{name: "credentials", url: "https://user:pw@example.com/a.png", wantErr: "credentials"},
		{name: "whitespace", url: " https://example.com", wantErr: "whitespace"},
		{name: "bad escape", url: "https://example.com/%zz", wantErr: "invalid URL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateMediaURL(tt.url)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("ValidateMediaURL(%q) unexpected error: %v", tt.url, err)
				}
				return
			}
			if err == nil {
				t.Fatalf("ValidateMediaURL(%q) expected error containing %q", tt.url, tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("ValidateMediaURL(%q) error = %q, want containing %q", tt.url, err, tt.wantErr)
			}
		})
	}
}

func TestValidateItem(t *testing.T) {
	for _, spec := range pinboard.DemoItems() {
		if err := ValidateItem(spec); err != nil {
			t.Errorf("demo item %s rejected: %v", spec, err)
		}
	}

	// Text bodies are never URLs.
	if err := ValidateItem(pinboard.ItemSpec{Kind: pinboard.KindNote, Title: "n", Body: "javascript:alert(1)"}); err != nil {
		t.Errorf("note rejected: %v", err)
	}

	err := ValidateItem(pinboard.ItemSpec{Kind: pinboard.KindVideo, Title: "v", Body: "javascript:alert(1)"})
	if err == nil || !strings.Contains(err.Error(), `video "v"`) {
		t.Errorf("expected video error, got %v", err)
	}
}
