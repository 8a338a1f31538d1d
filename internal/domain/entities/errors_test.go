//go:build unit

package entities_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rios0rios0/autoenable/internal/domain/entities"
)

func TestReasonOf(t *testing.T) {
	t.Parallel()

	t.Run("should classify errors by their wrapped cause", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			name string
			err  error
			want entities.ReasonCode
		}{
			{name: "nil", err: nil, want: ""},
			{
				name: "wrapped host error",
				err:  fmt.Errorf("listing: %w", entities.NewHostError("list", entities.ReasonForbidden, nil)),
				want: entities.ReasonForbidden,
			},
			{
				name: "malformed reference",
				err:  fmt.Errorf("%w: bad", entities.ErrMalformedReference),
				want: entities.ReasonMalformed,
			},
			{name: "billing product", err: entities.ErrBillingProductRequired, want: entities.ReasonUnprocessable},
			{name: "plain error", err: errors.New("connection reset"), want: entities.ReasonTransportError},
		}

		for _, tt := range tests {
			// when
			got := entities.ReasonOf(tt.err)

			// then
			assert.Equal(t, tt.want, got, tt.name)
		}
	})
}

func TestNewInvalidReference(t *testing.T) {
	t.Parallel()

	t.Run("should carry reason, stage and detail", func(t *testing.T) {
		t.Parallel()

		// given
		err := entities.NewHostError("list org", entities.ReasonNotFound, errors.New("404"))

		// when
		record := entities.NewInvalidReference("https://github.com/gone", entities.StageResolve, err)

		// then
		assert.Equal(t, entities.ReasonNotFound, record.Reason)
		assert.Equal(t, entities.StageResolve, record.Stage)
		assert.Equal(t, "list org: not_found: 404", record.Detail)
		assert.ErrorIs(t, err, err.Err)
	})
}
