package ipfs

import (
	"fmt"
	"strings"
)

// https://<host>/ipfs/<cid>
func GatewayURI(host string, cid ContentID) string {
	host = strings.TrimPrefix(host, "https://")
	host = strings.TrimSuffix(host, "/")
	return fmt.Sprintf("https://%s/ipfs/%s", host, cid)
}

// Extracts the identifier from a gateway url. Bare identifiers are returned as is.
func ParseGatewayURI(uri string) (cid ContentID, ok bool) {
	if !strings.Contains(uri, "://") {
		if uri == "" || strings.Contains(uri, "/") {
			return "", false
		}
		return ContentID(uri), true
	}

	_, rest, found := strings.Cut(uri, "/ipfs/")
	if !found {
		return "", false
	}
	rest, _, _ = strings.Cut(rest, "/")
	if rest == "" {
		return "", false
	}
	return ContentID(rest), true
}
