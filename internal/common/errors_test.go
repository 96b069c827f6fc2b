package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"direct", ErrCryptoAuth, "CryptoAuth"},
		{"wrapped", fmt.Errorf("decrypt password 3: %w", ErrCryptoAuth), "CryptoAuth"},
		{"double wrapped", fmt.Errorf("insert: %w", fmt.Errorf("%w: unique", ErrSchema)), "Schema"},
		{"key missing", fmt.Errorf("read key: %w", ErrKeyMissing), "KeyMissing"},
		{"unknown", errors.New("boom"), "Internal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}
