package services

import (
	"strings"

	"business_manager/internal/apperrors"

	"github.com/google/uuid"
)

const (
	codeSuffixLength = 10
	maxCodeAttempts  = 10
)

// randomCodeSuffix returns ten uppercase hex characters from a random UUID.
func randomCodeSuffix() string {
	id := uuid.New()
	return strings.ToUpper(strings.ReplaceAll(id.String(), "-", "")[:codeSuffixLength])
}

type codeGenerator struct {
	suffix func() string
}

// Generate draws codes of the form PREFIX-XXXXXXXXXX until exists reports
// one as free. exists must query the transaction that will insert the order.
func (g codeGenerator) Generate(prefix string, exists func(code string) (bool, error)) (string, error) {
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code := prefix + "-" + g.suffix()
		taken, err := exists(code)
		if err != nil {
			return "", err
		}
		if !taken {
			return code, nil
		}
	}
	return "", &apperrors.CodeGenerationExhaustedError{Attempts: maxCodeAttempts}
}
