package utils

import (
	"crypto/rand"
	"math/big"
)

const (
	passwordLower   = "abcdefghijklmnopqrstuvwxyz"
	passwordUpper   = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	passwordDigits  = "0123456789"
	passwordSymbols = "!@#$%^&*()-_=+"

	// GeneratedPasswordLength is the length of passwords issued at signup.
	GeneratedPasswordLength = 16
)

// GeneratePassword returns a random password of the given length containing
// at least one lowercase letter, one uppercase letter, one digit and one
// symbol. Lengths below 12 are raised to 12 to keep the minimum-strength
// policy intact.
func GeneratePassword(length int) (string, error) {
	if length < 12 {
		length = 12
	}

	all := passwordLower + passwordUpper + passwordDigits + passwordSymbols

	b := make([]byte, length)
	classes := []string{passwordLower, passwordUpper, passwordDigits, passwordSymbols}
	for i, set := range classes {
		ch, err := randomByte(set)
		if err != nil {
			return "", err
		}
		b[i] = ch
	}
	for i := len(classes); i < length; i++ {
		ch, err := randomByte(all)
		if err != nil {
			return "", err
		}
		b[i] = ch
	}

	// shuffle so the mandatory characters are not always at the front
	for i := len(b) - 1; i > 0; i-- {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return "", err
		}
		j := int(n.Int64())
		b[i], b[j] = b[j], b[i]
	}

	return string(b), nil
}

func randomByte(set string) (byte, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(set))))
	if err != nil {
		return 0, err
	}
	return set[n.Int64()], nil
}
