package sealer

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"strings"
)

const (
	// Fallback key for local development. Deployments set SEALER_KEY.
	defaultKey = "lfQVRuulcL2iOhOJ2r8BYTweoSKwVAJnIF9U+AL+M60="

	keyEnv = "SEALER_KEY"
)

func sealingKey() ([]byte, error) {
	encoded := os.Getenv(keyEnv)
	if encoded == "" {
		encoded = defaultKey
	}
	return base64.StdEncoding.DecodeString(encoded)
}

// CreateConfirmationToken seals an appointment and patient id pair into an
// opaque reference patients can quote without exposing raw ids.
func CreateConfirmationToken(appointmentID string, patientID string) (string, error) {
	plaintext := []byte(appointmentID + ":" + patientID)

	key, err := sealingKey()
	if err != nil {
		return "", err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}

	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, aesgcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	ct := aesgcm.Seal(nonce, nonce, plaintext, nil)
	return base64.RawURLEncoding.EncodeToString(ct), nil
}

// ParseConfirmationToken opens a confirmation reference and returns the
// appointment id and patient id it was minted for.
func ParseConfirmationToken(token string) (string, string, error) {
	key, err := sealingKey()
	if err != nil {
		return "", "", err
	}

	data, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return "", "", err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", "", err
	}

	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", "", err
	}

	nonceSize := aesgcm.NonceSize()
	if len(data) < nonceSize {
		return "", "", fmt.Errorf("invalid token format")
	}
	nonce := data[:nonceSize]
	ciphertext := data[nonceSize:]

	pt, err := aesgcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", "", err
	}

	parts := strings.SplitN(string(pt), ":", 2)
	if len(parts) != 2 {
		return "", "", fmt.Errorf("invalid token format")
	}

	return parts[0], parts[1], nil
}
