package util

import (
	"fmt"
	"testing"

	"gdl/enums"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExitCodes(t *testing.T) {
	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, 4, ExitCode(NewExtractionError("bad markup")))
	assert.Equal(t, 4, ExitCode(NewHTTPError(500, "500 Internal Server Error", "https://example.org")))
	assert.Equal(t, 8, ExitCode(NewNotFoundError("gallery")))
	assert.Equal(t, 16, ExitCode(NewAuthRequiredError("")))
	assert.Equal(t, 16, ExitCode(NewAuthenticationError("")))
	assert.Equal(t, 16, ExitCode(NewAuthorizationError("")))
	assert.Equal(t, 32, ExitCode(NewInputError("bad format %q", "{")))
	assert.Equal(t, 64, ExitCode(NewNoExtractorError("https://example.org")))
	assert.Equal(t, 1, ExitCode(fmt.Errorf("plain")))

	// signals are never failures
	assert.Equal(t, 0, ExitCode(Stop("")))
	assert.Equal(t, 0, ExitCode(fmt.Errorf("wrapped: %w", Terminate("done"))))
}

func TestErrorHelpers(t *testing.T) {
	err := fmt.Errorf("fetching page: %w", NewNotFoundError("post"))

	e, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, "post", e.Resource)
	assert.Equal(t, "requested post could not be found", e.Error())
	assert.True(t, IsKind(err, enums.ErrorKindNotFound))
	assert.False(t, IsKind(err, enums.ErrorKindHTTP))

	httpErr := NewHTTPError(429, "", "https://example.org/x")
	assert.Equal(t, "429 for url: https://example.org/x", httpErr.Error())

	assert.ErrorIs(t, fmt.Errorf("x: %w", ErrMaxDepth), ErrMaxDepth)
	assert.NotErrorIs(t, ErrMaxDepth, ErrUnsupportedVersion)
}

func TestSignals(t *testing.T) {
	s, ok := AsSignal(fmt.Errorf("wrapped: %w", Restart("token expired")))
	require.True(t, ok)
	assert.Equal(t, enums.SignalKindRestart, s.Kind)
	assert.Equal(t, "restart: token expired", s.Error())
	assert.Equal(t, "stop", Stop("").Error())
	assert.Equal(t, enums.SignalKindAbort, Abort("x").Kind)

	_, ok = AsSignal(NewExtractionError("x"))
	assert.False(t, ok)
}
