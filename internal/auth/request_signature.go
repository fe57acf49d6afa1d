// Package auth signs and verifies host requests with ed25519. The signed
// message is "METHOD\nPATH\n\nTIMESTAMP\nsha256:BODYHASH".
package auth

import (
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	SignatureHeader = "X-API-Signature"
	TimestampHeader = "X-API-Timestamp"

	signaturePrefix = "ed25519="
	maxClockSkew    = 5 * time.Minute
)

var ErrInvalidSignature = errors.New("invalid request signature")

func canonicalRequest(method, path, timestamp string, body []byte) []byte {
	bodyHash := sha256.Sum256(body)

	return []byte(fmt.Sprintf("%s\n%s\n\n%s\nsha256:%x", method, path, timestamp, bodyHash))
}

type RequestSigner struct {
	privateKey ed25519.PrivateKey
	now        func() time.Time
}

func NewRequestSigner(privateKeyBase64 string) (*RequestSigner, error) {
	privateKey, err := base64.StdEncoding.DecodeString(privateKeyBase64)
	if err != nil {
		return nil, fmt.Errorf("failed to decode private key: %w", err)
	}

	if len(privateKey) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("invalid private key size: expected %d, got %d", ed25519.PrivateKeySize, len(privateKey))
	}

	return &RequestSigner{privateKey: privateKey, now: time.Now}, nil
}

// Sign returns the headers to attach to the request.
func (s *RequestSigner) Sign(method, path string, body []byte) map[string]string {
	timestamp := strconv.FormatInt(s.now().Unix(), 10)
	signature := ed25519.Sign(s.privateKey, canonicalRequest(method, path, timestamp, body))

	return map[string]string{
		SignatureHeader: signaturePrefix + base64.StdEncoding.EncodeToString(signature),
		TimestampHeader: timestamp,
	}
}

type RequestVerifier struct {
	publicKey ed25519.PublicKey
	now       func() time.Time
}

func NewRequestVerifier(publicKeyBase64 string) (*RequestVerifier, error) {
	publicKey, err := base64.StdEncoding.DecodeString(publicKeyBase64)
	if err != nil {
		return nil, fmt.Errorf("failed to decode public key: %w", err)
	}

	if len(publicKey) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("invalid public key size: expected %d, got %d", ed25519.PublicKeySize, len(publicKey))
	}

	return &RequestVerifier{publicKey: publicKey, now: time.Now}, nil
}

func (v *RequestVerifier) Verify(method, path, signatureHeader, timestampHeader string, body []byte) error {
	encoded, ok := strings.CutPrefix(signatureHeader, signaturePrefix)
	if !ok || encoded == "" {
		return fmt.Errorf("%w: unsupported signature format", ErrInvalidSignature)
	}

	signature, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	timestamp, err := strconv.ParseInt(timestampHeader, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: invalid timestamp", ErrInvalidSignature)
	}

	skew := v.now().Sub(time.Unix(timestamp, 0))
	if skew < 0 {
		skew = -skew
	}
	if skew > maxClockSkew {
		return fmt.Errorf("%w: timestamp outside allowed window", ErrInvalidSignature)
	}

	if !ed25519.Verify(v.publicKey, canonicalRequest(method, path, timestampHeader, body), signature) {
		return ErrInvalidSignature
	}

	return nil
}
