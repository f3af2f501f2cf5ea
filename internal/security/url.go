// Package security validates untrusted input before it reaches the board.
package security

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/livetemplate/pinboard"
)

// ValidateMediaURL checks a URL that will be rendered as an img or iframe
// source. Only absolute http and https URLs are accepted.
func ValidateMediaURL(rawURL string) error {
	if strings.TrimSpace(rawURL) != rawURL {
		return fmt.Errorf("URL must not have surrounding whitespace")
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("URL scheme must be http or https, got %q", parsed.Scheme)
	}
	if parsed.Hostname() == "" {
		return fmt.Errorf("URL must have a host")
	}
	if parsed.User != nil {
		return fmt.Errorf("URL must not carry credentials")
	}
	return nil
}

// ValidateItem checks the parts of spec that are rendered as URLs. Note and
// todo bodies are text and always pass.
func ValidateItem(spec pinboard.ItemSpec) error {
	switch spec.Kind {
	case pinboard.KindImage, pinboard.KindVideo:
		if err := ValidateMediaURL(spec.Body); err != nil {
			return fmt.Errorf("%s %q: %w", spec.Kind, spec.Title, err)
		}
	}
	return nil
}
