// Package id generates identifiers for stored records.
package id

import (
	"fmt"

	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// referenceAlphabet leaves out characters that are easy to misread over
// the phone (0/O, 1/I/L).
const referenceAlphabet = "23456789ABCDEFGHJKMNPQRSTUVWXYZ"

const referenceLength = 8

// Generate creates a prefixed NanoID, e.g. "reg-V1StGXR8_Z5jdHi6B-myT".
func Generate(prefix string) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}

// MustGenerate is like Generate but panics if ID generation fails.
func MustGenerate(prefix string) string {
	id, err := Generate(prefix)
	if err != nil {
		panic(fmt.Sprintf("failed to generate ID: %v", err))
	}
	return id
}

// ReferenceCode returns a short code a registrant can quote, e.g. "K7M2Q9TX".
func ReferenceCode() (string, error) {
	code, err := gonanoid.Generate(referenceAlphabet, referenceLength)
	if err != nil {
		return "", fmt.Errorf("generate reference code: %w", err)
	}
	return code, nil
}

// RunID identifies one import run across all the files it touches.
func RunID() string {
	return uuid.NewString()
}
