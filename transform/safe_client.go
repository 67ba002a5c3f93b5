package transform

import (
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/doyensec/safeurl"
	apperrors "github.com/jrsteele09/chatcraft-server/internal/errors"
	"github.com/pkg/errors"
)

var allowedSchemes = []string{"http", "https"}

// blockedNetworks are refused by ValidateURL when the host is an IP literal.
// Hostnames are checked again after DNS resolution by the safeurl dialer.
var blockedNetworks []net.IPNet

func init() {
	cidrs := []string{
		"10.0.0.0/8",
		"172.16.0.0/12",
		"192.168.0.0/16",
		"127.0.0.0/8",
		"169.254.0.0/16", // link local, includes cloud metadata
		"0.0.0.0/8",
		"::1/128",
		"fe80::/10",
		"fc00::/7",
	}
	for _, cidr := range cidrs {
		_, network, err := net.ParseCIDR(cidr)
		if err != nil {
			panic(fmt.Sprintf("invalid CIDR in blockedNetworks: %s: %v", cidr, err))
		}
		blockedNetworks = append(blockedNetworks, *network)
	}
}

// NewSafeClient returns an http.Client that refuses to connect to private,
// loopback, link local and metadata addresses, checked after DNS resolution.
func NewSafeClient(timeout time.Duration) *http.Client {
	config := safeurl.GetConfigBuilder().
		SetTimeout(timeout).
		SetAllowedSchemes(allowedSchemes...).
		SetAllowedPorts(80, 443).
		Build()

	return safeurl.Client(config).Client
}

// ValidateURL is a static pre-check run before any request is made. It does
// no DNS lookups; rebinding is handled by the NewSafeClient dialer.
func ValidateURL(u *url.URL) error {
	host := u.Hostname()
	if host == "" {
		return errors.Wrap(apperrors.ErrInvalidURL, "empty host")
	}

	if ip := net.ParseIP(host); ip != nil {
		for _, network := range blockedNetworks {
			if network.Contains(ip) {
				return errors.Wrapf(apperrors.ErrInvalidURL, "blocked address %s", ip)
			}
		}
		return nil
	}

	lower := strings.ToLower(host)
	if lower == "localhost" || strings.HasSuffix(lower, ".localhost") || strings.HasSuffix(lower, ".internal") {
		return errors.Wrapf(apperrors.ErrInvalidURL, "blocked host %s", host)
	}
	return nil
}
