package validate

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type registrationRules struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6"`
	Name     string `validate:"required"`
}

type tradeRules struct {
	Symbol     string  `validate:"required"`
	Direction  string  `validate:"required,oneof=buy sell"`
	Size       float64 `validate:"required,gt=0"`
	EntryPrice float64 `validate:"required,gt=0"`
}

func TestFields_CollectsEveryFailure(t *testing.T) {
	v := validator.New()
	err := v.Struct(registrationRules{Email: "not-an-email", Password: "123", Name: "A"})
	require.Error(t, err)

	fields := Fields(err)
	require.Len(t, fields, 2)

	assert.Equal(t, "email", fields[0].Field)
	assert.Equal(t, "Enter a valid email address", fields[0].Message)
	assert.Equal(t, "password", fields[1].Field)
	assert.Equal(t, "Password must be at least 6 characters long", fields[1].Message)
}

func TestFields_RequiredMessages(t *testing.T) {
	v := validator.New()
	err := v.Struct(registrationRules{})
	require.Error(t, err)

	fields := Fields(err)
	require.Len(t, fields, 3)
	assert.Equal(t, FieldError{Field: "email", Message: "Email is required"}, fields[0])
	assert.Equal(t, FieldError{Field: "password", Message: "Password is required"}, fields[1])
	assert.Equal(t, FieldError{Field: "name", Message: "Name is required"}, fields[2])
}

func TestFields_TradeRules(t *testing.T) {
	v := validator.New()
	err := v.Struct(tradeRules{Symbol: "AAPL", Direction: "hold", Size: -1, EntryPrice: 100})
	require.Error(t, err)

	fields := Fields(err)
	require.Len(t, fields, 2)
	assert.Equal(t, FieldError{Field: "direction", Message: `Direction must be either "buy" or "sell"`}, fields[0])
	assert.Equal(t, FieldError{Field: "size", Message: "Size must be a positive number"}, fields[1])
}

func TestFields_CamelCaseFieldNames(t *testing.T) {
	v := validator.New()
	err := v.Struct(tradeRules{Symbol: "AAPL", Direction: "buy", Size: 1, EntryPrice: -5})
	require.Error(t, err)

	fields := Fields(err)
	require.Len(t, fields, 1)
	assert.Equal(t, "entryPrice", fields[0].Field)
	assert.Equal(t, "Entry price must be a positive number", fields[0].Message)
}

func TestFields_NonValidatorError(t *testing.T) {
	fields := Fields(errors.New("unexpected EOF"))
	require.Len(t, fields, 1)
	assert.Equal(t, FieldError{Field: "body", Message: "Invalid request body"}, fields[0])
}
