// internal/utils/utils_test.go
package utils

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/propshare/propshare-backend/internal/ledger"
)

func TestJWTRoundTrip(t *testing.T) {
	SetJWTSecret("test-secret")

	userID := uuid.New()
	token, err := GenerateJWT(userID, "alice", "investor", 1)
	require.NoError(t, err)

	claims, err := ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "investor", claims.UserType)
	assert.Equal(t, "propshare", claims.Issuer)
}

func TestJWTRejectsTamperedToken(t *testing.T) {
	SetJWTSecret("test-secret")

	token, err := GenerateJWT(uuid.New(), "alice", "investor", 1)
	require.NoError(t, err)

	_, err = ValidateJWT(token + "x")
	assert.Error(t, err)

	SetJWTSecret("other-secret")
	_, err = ValidateJWT(token)
	assert.Error(t, err)
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	SetJWTSecret("test-secret")

	userID := uuid.New()
	token, err := GenerateRefreshToken(userID, 1)
	require.NoError(t, err)

	subject, err := ValidateRefreshToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), subject)
}

func TestValidateFileHash(t *testing.T) {
	data := []byte("deed of sale")
	digest := HashString(string(data))

	assert.True(t, ValidateFileHash(data, digest))
	assert.False(t, ValidateFileHash([]byte("forged deed"), digest))
}

func TestLedgerStatusMapping(t *testing.T) {
	cases := map[error]int{
		ledger.ErrInvalidParameter:         http.StatusBadRequest,
		ledger.ErrInsufficientPayment:      http.StatusBadRequest,
		ledger.ErrBelowMinimumInvestment:   http.StatusBadRequest,
		ledger.ErrUnauthorized:             http.StatusForbidden,
		ledger.ErrNoHolding:                http.StatusForbidden,
		ledger.ErrPropertyNotFound:         http.StatusNotFound,
		ledger.ErrDistributionNotFound:     http.StatusNotFound,
		ledger.ErrFundingClosed:            http.StatusConflict,
		ledger.ErrExceedsSupply:            http.StatusConflict,
		ledger.ErrNoTokensSold:             http.StatusConflict,
		ledger.ErrAlreadyClaimed:           http.StatusConflict,
		ledger.ErrLedgerInconsistent:       http.StatusInternalServerError,
	}
	for err, want := range cases {
		assert.Equal(t, want, ledgerStatus(ledger.ErrorCode(err)), err.Error())
	}
}
