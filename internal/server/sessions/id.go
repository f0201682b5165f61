package sessions

import (
	"encoding/base64"
	"fmt"

	"github.com/dmitrijs2005/complaintdesk/internal/common"
)

// idSize is 256 bits of entropy.
const idSize = 32

// GenerateID returns a random, URL-safe session identifier.
func GenerateID() (string, error) {
	b, err := common.GenerateRandByteArray(idSize)
	if err != nil {
		return "", fmt.Errorf("session: failed to generate id: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
