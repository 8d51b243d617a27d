package handlerutils

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/eng-by-sjb/blue-harbor-commerce-backend/internal/config"
	"github.com/eng-by-sjb/blue-harbor-commerce-backend/internal/servererrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setAppEnv(t *testing.T, appEnv string) {
	t.Helper()

	previous := config.Env.AppEnv
	config.Env.AppEnv = appEnv
	t.Cleanup(func() {
		config.Env.AppEnv = previous
	})
}

func serve(t *testing.T, h APIHandler) *httptest.ResponseRecorder {
	t.Helper()

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/", nil)
	MakeHandler(h)(recorder, request)

	return recorder
}

func TestMakeHandlerServerError(t *testing.T) {
	recorder := serve(t, func(w http.ResponseWriter, r *http.Request) error {
		return servererrors.New(
			http.StatusNotFound,
			servererrors.ErrOrderNotFound.Error(),
			nil,
		)
	})

	assert.Equal(t, http.StatusNotFound, recorder.Code)
	assert.Contains(t, recorder.Body.String(), servererrors.ErrOrderNotFound.Error())
	assert.Contains(t, recorder.Body.String(), `"success":false`)
}

func TestMakeHandlerDeadlineMapsToUnavailable(t *testing.T) {
	recorder := serve(t, func(w http.ResponseWriter, r *http.Request) error {
		return context.DeadlineExceeded
	})

	assert.Equal(t, http.StatusServiceUnavailable, recorder.Code)
	assert.Contains(t, recorder.Body.String(), servererrors.ErrUnavailable.Error())
}

func TestMakeHandlerUnexpectedErrorDetailInDevelopmentOnly(t *testing.T) {
	boom := errors.New("pq: connection refused")

	setAppEnv(t, "development")
	recorder := serve(t, func(w http.ResponseWriter, r *http.Request) error {
		return boom
	})

	require.Equal(t, http.StatusInternalServerError, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "something went wrong")
	assert.Contains(t, recorder.Body.String(), boom.Error())

	setAppEnv(t, "production")
	recorder = serve(t, func(w http.ResponseWriter, r *http.Request) error {
		return boom
	})

	require.Equal(t, http.StatusInternalServerError, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "something went wrong")
	assert.NotContains(t, recorder.Body.String(), boom.Error())
}
