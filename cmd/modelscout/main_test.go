package main

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNoViableError(t *testing.T) {
	err := &NoViableError{
		Message: "no viable local candidate; cloud_offload_suggested",
	}

	assert.Equal(t, "no viable local candidate; cloud_offload_suggested", err.Error())
}

func TestErrorTypeDetection(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		isNoViable bool
	}{
		{
			name:       "NoViableError",
			err:        &NoViableError{Message: "nothing fits"},
			isNoViable: true,
		},
		{
			name:       "regular error",
			err:        errors.New("config error"),
			isNoViable: false,
		},
		{
			name:       "wrapped NoViableError",
			err:        fmt.Errorf("recommend: %w", &NoViableError{Message: "nothing fits"}),
			isNoViable: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var noViableErr *NoViableError
			assert.Equal(t, tt.isNoViable, errors.As(tt.err, &noViableErr))
		})
	}
}
