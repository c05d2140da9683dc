package validation

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

// URLValidator checks URLs before they are used as an API base or handed to
// an external program.
type URLValidator struct {
	// AllowLocalhost determines if localhost URLs are permitted
	AllowLocalhost bool
	// AllowPrivateIPs determines if private IP addresses are permitted
	AllowPrivateIPs bool
	// RequireHTTPS rejects plain http
	RequireHTTPS bool
	// AllowedHosts, when set, restricts the hostname (suffix match)
	AllowedHosts []string
	// MaxLength is the maximum allowed URL length
	MaxLength int
}

// NewBaseURLValidator accepts http(s) endpoints anywhere, including a local
// mock of the API.
func NewBaseURLValidator() *URLValidator {
	return &URLValidator{
		AllowLocalhost:  true,
		AllowPrivateIPs: true,
		MaxLength:       2048,
	}
}

// NewExternalURLValidator only accepts https links to the trailer and image
// hosts the app produces.
func NewExternalURLValidator() *URLValidator {
	return &URLValidator{
		RequireHTTPS: true,
		AllowedHosts: []string{"youtube.com", "youtu.be", "vimeo.com", "image.tmdb.org"},
		MaxLength:    2048,
	}
}

// Validate returns the normalized URL or the reason it was rejected.
func (v *URLValidator) Validate(input string) (string, error) {
	input = strings.TrimSpace(input)

	if input == "" {
		return "", fmt.Errorf("URL cannot be empty")
	}
	if v.MaxLength > 0 && len(input) > v.MaxLength {
		return "", fmt.Errorf("URL too long (max %d characters)", v.MaxLength)
	}
	if strings.ContainsAny(input, "<>\"'` ") {
		return "", fmt.Errorf("URL contains invalid characters")
	}

	parsedURL, err := url.Parse(input)
	if err != nil {
		return "", fmt.Errorf("invalid URL format: %w", err)
	}

	switch parsedURL.Scheme {
	case "https":
	case "http":
		if v.RequireHTTPS {
			return "", fmt.Errorf("URL must use https")
		}
	default:
		return "", fmt.Errorf("URL must use http or https protocol")
	}

	hostname := parsedURL.Hostname()
	if hostname == "" {
		return "", fmt.Errorf("URL must have a valid hostname")
	}

	if err := v.validateHost(hostname); err != nil {
		return "", err
	}

	return parsedURL.String(), nil
}

func (v *URLValidator) validateHost(hostname string) error {
	if !v.AllowLocalhost && isLocalhost(hostname) {
		return fmt.Errorf("localhost URLs are not permitted")
	}

	if !v.AllowPrivateIPs {
		if ip := net.ParseIP(hostname); ip != nil && isPrivateIP(ip) {
			return fmt.Errorf("private IP addresses are not permitted")
		}
	}

	if len(v.AllowedHosts) > 0 {
		host := strings.ToLower(hostname)
		for _, allowed := range v.AllowedHosts {
			if host == allowed || strings.HasSuffix(host, "."+allowed) {
				return nil
			}
		}
		return fmt.Errorf("host %s is not permitted", hostname)
	}

	return nil
}

// ValidateBaseURL checks a configured API or image base URL and strips a
// trailing slash.
func ValidateBaseURL(s string) (string, error) {
	u, err := NewBaseURLValidator().Validate(s)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(u, "/"), nil
}

func isLocalhost(hostname string) bool {
	return hostname == "localhost" ||
		strings.HasSuffix(hostname, ".localhost") ||
		hostname == "::1" ||
		strings.HasPrefix(hostname, "127.")
}

func isPrivateIP(ip net.IP) bool {
	return ip.IsPrivate() || ip.IsLoopback() || ip.IsLinkLocalUnicast() || ip.IsUnspecified()
}
