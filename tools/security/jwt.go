package security

import (
	"errors"
	"fmt"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

// Options controls signing parameters and TTL.
type Options struct {
	Secret []byte        // HMAC key (from ENV/KMS in production)
	Alg    string        // HS256/HS384/HS512 (default HS256)
	TTL    time.Duration // token validity (default 15m)
}

func DefaultOptions(secret []byte) Options {
	return Options{Secret: secret, Alg: "HS256", TTL: 15 * time.Minute}
}

// Claims is the identity extracted from a verified credential.
type Claims struct {
	UserID   string
	Username string
}

// FailureKind classifies verification failures for observability. Callers
// refuse the credential the same way regardless of kind.
type FailureKind int

const (
	FailureMalformed FailureKind = iota + 1
	FailureExpired
	FailureBadSignature
	FailureOther
)

func (k FailureKind) String() string {
	switch k {
	case FailureMalformed:
		return "malformed"
	case FailureExpired:
		return "expired"
	case FailureBadSignature:
		return "bad_signature"
	default:
		return "invalid"
	}
}

// VerifyError carries the classified reason a credential was rejected.
type VerifyError struct {
	Kind FailureKind
	Err  error
}

func (e *VerifyError) Error() string {
	return fmt.Sprintf("token verify failed (%s): %v", e.Kind, e.Err)
}

func (e *VerifyError) Unwrap() error { return e.Err }

// Generate signs a token carrying the user identity, valid for ttl
// (opts.TTL when ttl <= 0).
func Generate(opts Options, userID, username string, ttl time.Duration) (token string, expireAt time.Time, err error) {
	method, err := signingMethod(opts.Alg)
	if err != nil {
		return "", time.Time{}, err
	}
	if ttl <= 0 {
		ttl = opts.TTL
	}
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	now := time.Now()
	exp := now.Add(ttl)

	claims := jwtlib.MapClaims{
		"sub":      userID,
		"username": username,
		"iat":      now.Unix(),
		"nbf":      now.Unix(),
		"exp":      exp.Unix(),
	}

	tok := jwtlib.NewWithClaims(method, claims)
	signed, err := tok.SignedString(opts.Secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Verify parses and validates token and returns the identity claims.
// Failures come back as *VerifyError.
func Verify(opts Options, token string) (*Claims, error) {
	if _, err := signingMethod(opts.Alg); err != nil {
		return nil, err
	}
	parsed, err := jwtlib.Parse(token, func(t *jwtlib.Token) (interface{}, error) {
		// HMAC family only
		if _, ok := t.Method.(*jwtlib.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected alg: %v", t.Header["alg"])
		}
		return opts.Secret, nil
	})
	if err != nil {
		return nil, &VerifyError{Kind: classify(err), Err: err}
	}
	if !parsed.Valid {
		return nil, &VerifyError{Kind: FailureOther, Err: errors.New("invalid token")}
	}
	mc, ok := parsed.Claims.(jwtlib.MapClaims)
	if !ok {
		return nil, &VerifyError{Kind: FailureMalformed, Err: errors.New("claims type mismatch")}
	}
	sub, _ := mc["sub"].(string)
	if sub == "" {
		return nil, &VerifyError{Kind: FailureMalformed, Err: errors.New("missing sub claim")}
	}
	username, _ := mc["username"].(string)
	return &Claims{UserID: sub, Username: username}, nil
}

func classify(err error) FailureKind {
	switch {
	case errors.Is(err, jwtlib.ErrTokenMalformed):
		return FailureMalformed
	case errors.Is(err, jwtlib.ErrTokenExpired), errors.Is(err, jwtlib.ErrTokenNotValidYet):
		return FailureExpired
	case errors.Is(err, jwtlib.ErrTokenSignatureInvalid):
		return FailureBadSignature
	default:
		return FailureOther
	}
}

func signingMethod(alg string) (jwtlib.SigningMethod, error) {
	switch strings.ToUpper(strings.TrimSpace(alg)) {
	case "", "HS256":
		return jwtlib.SigningMethodHS256, nil
	case "HS384":
		return jwtlib.SigningMethodHS384, nil
	case "HS512":
		return jwtlib.SigningMethodHS512, nil
	default:
		return nil, fmt.Errorf("unsupported alg: %s (use HS256/HS384/HS512)", alg)
	}
}
