package launcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSignAndVerify(t *testing.T) {
	secret := []byte("host-secret")

	token := &LaunchToken{
		ID:      "abc123",
		App:     "Budget Tracker",
		UserSID: "u123456",
	}
	token.Signature = sign(secret, token.ID, token.App, token.UserSID)

	assert.True(t, Verify(secret, token))
}

func TestVerifyRejectsTamperedToken(t *testing.T) {
	secret := []byte("host-secret")

	token := &LaunchToken{ID: "abc123", App: "Budget Tracker", UserSID: "u123456"}
	token.Signature = sign(secret, token.ID, token.App, token.UserSID)

	token.App = "Other App"
	assert.False(t, Verify(secret, token))
}

func TestVerifyRejectsForeignSecret(t *testing.T) {
	token := &LaunchToken{ID: "abc123", App: "Budget Tracker", UserSID: "u123456"}
	token.Signature = sign([]byte("one secret"), token.ID, token.App, token.UserSID)

	assert.False(t, Verify([]byte("another secret"), token))
}
