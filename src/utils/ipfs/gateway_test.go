package ipfs

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGatewayURI(t *testing.T) {
	require.Equal(t, "https://ipfs.infura.io/ipfs/cid123", GatewayURI("ipfs.infura.io", "cid123"))
	require.Equal(t, "https://ipfs.infura.io/ipfs/cid123", GatewayURI("https://ipfs.infura.io/", "cid123"))
}

func TestParseGatewayURI(t *testing.T) {
	for _, tc := range []struct {
		in  string
		cid ContentID
		ok  bool
	}{
		{"https://ipfs.infura.io/ipfs/cid123", "cid123", true},
		{"https://ipfs.infura.io/ipfs/cid123/image.png", "cid123", true},
		{"cid123", "cid123", true},
		{"https://example.com/other", "", false},
		{"https://ipfs.infura.io/ipfs/", "", false},
		{"", "", false},
	} {
		cid, ok := ParseGatewayURI(tc.in)
		require.Equal(t, tc.ok, ok, tc.in)
		require.Equal(t, tc.cid, cid, tc.in)
	}
}
