package pet

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMissingCredential   = errors.New("missing credential")
	ErrMalformedCredential = errors.New("malformed credential")
)

// Credential is one signed attestation forwarded to the backend.
type Credential struct {
	ContractName string          `json:"contract_name"`
	Data         json.RawMessage `json:"data"`
}

// ProofProducer synthesizes the pair of attestations authorizing one mutation.
type ProofProducer func() ([2]Credential, error)

// StaticProof replays an already produced pair.
func StaticProof(creds [2]Credential) ProofProducer {
	return func() ([2]Credential, error) {
		return creds, nil
	}
}

func ProduceCredentials(proof ProofProducer) ([2]Credential, error) {
	if proof == nil {
		return [2]Credential{}, ErrMissingCredential
	}
	creds, err := proof()
	if err != nil {
		return [2]Credential{}, fmt.Errorf("%w: %v", ErrMissingCredential, err)
	}
	if err := ValidateCredentials(creds); err != nil {
		return [2]Credential{}, err
	}
	return creds, nil
}

func ValidateCredentials(creds [2]Credential) error {
	for i, c := range creds {
		if strings.TrimSpace(c.ContractName) == "" {
			return fmt.Errorf("%w: credential %d has no contract_name", ErrMalformedCredential, i)
		}
		data := bytes.TrimSpace(c.Data)
		if len(data) == 0 || bytes.Equal(data, []byte("null")) || bytes.Equal(data, []byte(`""`)) {
			return fmt.Errorf("%w: credential %d has no data", ErrMalformedCredential, i)
		}
	}
	return nil
}
