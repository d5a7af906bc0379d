// Package tokens loads token descriptors from YAML.
package tokens

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/fd1az/quote-engine/business/arbitrage/domain"
	"github.com/fd1az/quote-engine/internal/apperror"
	"github.com/fd1az/quote-engine/internal/config"
)

type file struct {
	Tokens []domain.TokenDescriptor `yaml:"tokens"`
}

// LoadFile reads and validates the token file at path.
func LoadFile(path string, chains map[string]config.ChainConfig) ([]domain.TokenDescriptor, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, apperror.New(apperror.CodeTokenFileInvalid, apperror.WithContext(path), apperror.WithCause(err))
	}
	return Parse(raw, chains)
}

// Parse decodes a token document. Unknown fields are rejected so that
// typos in fee or modal keys surface at startup.
func Parse(raw []byte, chains map[string]config.ChainConfig) ([]domain.TokenDescriptor, error) {
	var f file
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, apperror.Parse(apperror.CodeTokenFileInvalid, "tokens", err)
	}
	if len(f.Tokens) == 0 {
		return nil, apperror.Config(apperror.CodeTokenFileInvalid, "no tokens defined")
	}

	seen := make(map[string]bool, len(f.Tokens))
	for i := range f.Tokens {
		t := &f.Tokens[i]
		t.Chain = strings.ToLower(strings.TrimSpace(t.Chain))

		chain, ok := chains[t.Chain]
		if t.Chain != "" && !ok {
			return nil, apperror.Config(apperror.CodeInvalidToken, fmt.Sprintf("%s: unknown chain %q", t.Symbol, t.Chain))
		}
		if err := t.Validate(chain.IsEVM()); err != nil {
			return nil, apperror.New(apperror.CodeInvalidToken, apperror.WithContext(fmt.Sprintf("tokens[%d]", i)), apperror.WithCause(err))
		}

		key := t.Symbol + "@" + t.Chain
		if seen[key] {
			return nil, apperror.Config(apperror.CodeInvalidToken, "duplicate token "+key)
		}
		seen[key] = true
	}
	return f.Tokens, nil
}
