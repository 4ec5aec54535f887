package apperror_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-site-api/internal/apperror"
)

var errThingMissing = apperror.New(apperror.KindNotFound, "thing_missing", "thing not found")

func TestKindOfWrappedError(t *testing.T) {
	err := fmt.Errorf("lookup: %w", errThingMissing)
	require.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
	require.ErrorIs(t, err, errThingMissing)
	require.Equal(t, http.StatusNotFound, apperror.KindOf(err).HTTPStatus())
}

func TestSentinelSurvivesDetails(t *testing.T) {
	detailed := errThingMissing.WithDetails(map[string]interface{}{"id": "7"})
	require.ErrorIs(t, detailed, errThingMissing)
	require.Nil(t, errThingMissing.Details)
}

func TestValidatorErrorsBecomeValidationKind(t *testing.T) {
	type payload struct {
		Email string `validate:"required,email"`
	}
	err := validator.New().Struct(payload{Email: "nope"})
	require.Error(t, err)
	require.Equal(t, apperror.KindValidation, apperror.KindOf(err))

	converted := apperror.From(err)
	require.Equal(t, "email", converted.Details["Email"])
}

func TestUnknownErrorIsInternal(t *testing.T) {
	err := apperror.From(errors.New("boom"))
	require.Equal(t, apperror.KindInternal, err.Kind)
	require.Equal(t, http.StatusInternalServerError, err.Kind.HTTPStatus())
}
