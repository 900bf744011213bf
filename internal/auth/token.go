// Package auth verifies the bearer tokens that resolve each request to a
// user id. Tokens are HMAC-SHA256 signed values minted by the auth component;
// this service only needs to verify them.
package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const tokenVersion = "v1"

var (
	ErrInvalidToken = errors.New("token is not valid")
	ErrExpiredToken = errors.New("token has expired")
)

// IssueToken mints a signed token for a user id, valid for ttl. Used by the
// auth component and by test fixtures.
func IssueToken(secret string, userID int64, ttl time.Duration) string {
	payload := fmt.Sprintf("%s:%d:%d", tokenVersion, userID, time.Now().Add(ttl).Unix())
	return encode(payload) + "." + encode(sign(secret, payload))
}

// VerifyToken checks the signature and expiry of a token and returns the
// user id it carries.
func VerifyToken(secret, token string) (int64, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 2 {
		return 0, ErrInvalidToken
	}

	payloadBytes, err := decode(parts[0])
	if err != nil {
		return 0, ErrInvalidToken
	}
	sig, err := decode(parts[1])
	if err != nil {
		return 0, ErrInvalidToken
	}

	payload := string(payloadBytes)
	if !hmac.Equal([]byte(sign(secret, payload)), []byte(sig)) {
		return 0, ErrInvalidToken
	}

	fields := strings.Split(payload, ":")
	if len(fields) != 3 || fields[0] != tokenVersion {
		return 0, ErrInvalidToken
	}

	userID, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil || userID <= 0 {
		return 0, ErrInvalidToken
	}

	expiry, err := strconv.ParseInt(fields[2], 10, 64)
	if err != nil {
		return 0, ErrInvalidToken
	}
	if time.Now().Unix() > expiry {
		return 0, ErrExpiredToken
	}

	return userID, nil
}

func sign(secret, payload string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(payload))
	return string(mac.Sum(nil))
}

func encode(s string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(s))
}

func decode(s string) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(s)
}
