package security

import (
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("unit-test-secret")

// signRaw builds a token outside Generate so tests can produce states
// Generate refuses to emit, like an already expired credential.
func signRaw(t *testing.T, secret []byte, claims jwtlib.MapClaims) string {
	t.Helper()
	tok := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	signed, err := tok.SignedString(secret)
	require.NoError(t, err)
	return signed
}

func TestGenerateVerifyRoundTrip(t *testing.T) {
	opts := DefaultOptions(testSecret)
	token, expireAt, err := Generate(opts, "u1", "alice", 0)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(opts.TTL), expireAt, 5*time.Second)

	claims, err := Verify(opts, token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "alice", claims.Username)
}

func TestVerifyFailureClassification(t *testing.T) {
	opts := DefaultOptions(testSecret)

	expired := signRaw(t, testSecret, jwtlib.MapClaims{
		"sub": "u1", "username": "alice",
		"iat": time.Now().Add(-time.Hour).Unix(),
		"exp": time.Now().Add(-time.Minute).Unix(),
	})
	wrongKey, _, err := Generate(DefaultOptions([]byte("other-secret")), "u1", "alice", 0)
	require.NoError(t, err)

	cases := []struct {
		name  string
		token string
		kind  FailureKind
	}{
		{"garbage", "not.a.jwt", FailureMalformed},
		{"expired", expired, FailureExpired},
		{"wrong secret", wrongKey, FailureBadSignature},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Verify(opts, tc.token)
			require.Error(t, err)
			ve, ok := err.(*VerifyError)
			require.True(t, ok, "want *VerifyError, got %T", err)
			assert.Equal(t, tc.kind, ve.Kind)
		})
	}
}

func TestVerifyRejectsMissingSubject(t *testing.T) {
	opts := DefaultOptions(testSecret)
	token, _, err := Generate(opts, "", "alice", 0)
	require.NoError(t, err)

	_, err = Verify(opts, token)
	require.Error(t, err)
	ve, ok := err.(*VerifyError)
	require.True(t, ok)
	assert.Equal(t, FailureMalformed, ve.Kind)
}

func TestSigningMethodSelection(t *testing.T) {
	for _, alg := range []string{"", "HS256", "hs384", "HS512"} {
		opts := Options{Secret: testSecret, Alg: alg, TTL: time.Minute}
		token, _, err := Generate(opts, "u1", "alice", 0)
		require.NoError(t, err, "alg %q", alg)
		_, err = Verify(opts, token)
		require.NoError(t, err, "alg %q", alg)
	}

	_, _, err := Generate(Options{Secret: testSecret, Alg: "RS256"}, "u1", "alice", 0)
	require.Error(t, err)
}
