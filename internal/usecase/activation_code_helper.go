package usecase

import (
	"crypto/rand"
	"io"
	"strings"

	"pure-resume/internal/domain/model"
)

// generateActivationCode creates a secure, random, human-readable activation
// code in canonical form: 5 groups of 5 symbols joined by hyphens, drawn
// from the restricted alphabet.
func generateActivationCode() (string, error) {
	chars := model.CodeAlphabet

	buffer := make([]byte, model.CodeRawLength)
	if _, err := io.ReadFull(rand.Reader, buffer); err != nil {
		return "", err
	}

	for i := 0; i < model.CodeRawLength; i++ {
		buffer[i] = chars[int(buffer[i])%len(chars)]
	}

	groups := make([]string, 0, model.CodeRawLength/5)
	for i := 0; i < model.CodeRawLength; i += 5 {
		groups = append(groups, string(buffer[i:i+5]))
	}
	return strings.Join(groups, "-"), nil
}
