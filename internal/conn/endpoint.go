package conn

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/soyeahso/agentchat/internal/domain"
)

// Endpoint builds the socket address for an identity from the backend
// origin. The scheme mirrors the origin's: http→ws, https→wss.
func Endpoint(origin string, id domain.ClientIdentity) (string, error) {
	if id == "" {
		return "", errors.New("empty client identity")
	}
	u, err := url.Parse(origin)
	if err != nil {
		return "", fmt.Errorf("parsing origin: %w", err)
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported origin scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("origin %q has no host", origin)
	}

	u.User = nil
	u.Path = "/ws/" + id.String()
	u.RawPath = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u.String(), nil
}
