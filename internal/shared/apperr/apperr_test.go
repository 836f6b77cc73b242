package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindNotFound, KindOf(NotFound("ticket not found")))
	assert.Equal(t, KindValidation, KindOf(Validation("bad seat")))
	assert.Equal(t, KindConflict, KindOf(Conflict("seat taken")))
	assert.Equal(t, KindForbidden, KindOf(Forbidden("not yours")))
	assert.Equal(t, KindInternal, KindOf(errors.New("plain error")))
	assert.Equal(t, KindInternal, KindOf(Internal(errors.New("db down"), "query failed")))
}

func TestKindSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("creating ticket: %w", Conflict("seat 4 is already taken"))
	assert.True(t, IsKind(err, KindConflict))

	twice := fmt.Errorf("handler: %w", err)
	assert.True(t, IsKind(twice, KindConflict))
	assert.Equal(t, http.StatusConflict, HTTPStatus(twice))
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, HTTPStatus(NotFound("x")))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(Validation("x")))
	assert.Equal(t, http.StatusConflict, HTTPStatus(Conflict("x")))
	assert.Equal(t, http.StatusForbidden, HTTPStatus(Forbidden("x")))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("x")))
}

func TestMessageMasksInternals(t *testing.T) {
	assert.Equal(t, "seat taken", Message(Conflict("seat taken")))

	// Internal details never reach the client
	internal := Internal(errors.New("pq: connection refused"), "query failed")
	assert.NotContains(t, Message(internal), "connection refused")
	assert.NotContains(t, Message(internal), "query failed")

	assert.NotContains(t, Message(errors.New("secret detail")), "secret")
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := Internal(cause, "wrapped")
	assert.True(t, errors.Is(err, cause))
}
