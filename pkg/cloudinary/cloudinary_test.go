package cloudinary

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProofPublicID(t *testing.T) {
	id := proofPublicID("Payment 12 (March).jpg")
	require.True(t, strings.HasPrefix(id, "payment-12--march-"), id)

	// Two uploads for the same payment never share an id.
	require.NotEqual(t, proofPublicID("payment-12.png"), proofPublicID("payment-12.png"))

	// A name with nothing usable still produces an id.
	require.True(t, strings.HasPrefix(proofPublicID("???.pdf"), "proof-"))
}
