package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError_Is(t *testing.T) {
	t.Run("matches sentinel with the same code", func(t *testing.T) {
		err := NewDomainError(CodeNotFound, "Product A1 not found")
		assert.True(t, errors.Is(err, ErrNotFound))
		assert.False(t, errors.Is(err, ErrValidation))
	})

	t.Run("matches through wrapping", func(t *testing.T) {
		err := fmt.Errorf("add item: %w", NewDomainError(CodeEmptyCart, "nothing to pay"))
		assert.ErrorIs(t, err, ErrEmptyCart)

		var domainErr *DomainError
		assert.True(t, errors.As(err, &domainErr))
		assert.Equal(t, "nothing to pay", domainErr.Message)
	})

	t.Run("does not match plain errors", func(t *testing.T) {
		assert.False(t, errors.Is(errors.New("NOT_FOUND"), ErrNotFound))
	})
}
