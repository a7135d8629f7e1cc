package exchange

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jsonServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func Test_PyDolarVeSource_FlatShape(t *testing.T) {
	srv := jsonServer(t, http.StatusOK, `{"price": 36.52}`)
	source := NewPyDolarVeSource(srv.URL, time.Second)

	value, err := source.Fetch(context.Background())
	require.NoError(t, err)
	assert.True(t, value.Equal(dec("36.52")))
}

func Test_PyDolarVeSource_NestedShape(t *testing.T) {
	srv := jsonServer(t, http.StatusOK, `{"data": {"bcv": {"price": 36.52}}}`)
	source := NewPyDolarVeSource(srv.URL, time.Second)

	value, err := source.Fetch(context.Background())
	require.NoError(t, err)
	assert.True(t, value.Equal(dec("36.52")))
}

func Test_PyDolarVeSource_MissingPrice(t *testing.T) {
	srv := jsonServer(t, http.StatusOK, `{"data": {"bcv": {}}}`)
	source := NewPyDolarVeSource(srv.URL, time.Second)

	_, err := source.Fetch(context.Background())
	assert.Error(t, err)
}

func Test_PyDolarVeSource_NonJSON(t *testing.T) {
	srv := jsonServer(t, http.StatusOK, `<html>rate limited</html>`)
	source := NewPyDolarVeSource(srv.URL, time.Second)

	_, err := source.Fetch(context.Background())
	assert.Error(t, err)
}

func Test_PyDolarVeSource_Unreachable(t *testing.T) {
	source := NewPyDolarVeSource("http://127.0.0.1:1", 100*time.Millisecond)

	_, err := source.Fetch(context.Background())
	assert.Error(t, err)
}

func Test_DolarAPISource_SelectsOficial(t *testing.T) {
	srv := jsonServer(t, http.StatusOK, `[
		{"fuente": "paralelo", "promedio": 45.10},
		{"fuente": "oficial", "promedio": 36.48}
	]`)
	source := NewDolarAPISource(srv.URL, time.Second)

	value, err := source.Fetch(context.Background())
	require.NoError(t, err)
	assert.True(t, value.Equal(dec("36.48")))
}

func Test_DolarAPISource_NoOficialEntry(t *testing.T) {
	srv := jsonServer(t, http.StatusOK, `[{"fuente": "paralelo", "promedio": 45.10}]`)
	source := NewDolarAPISource(srv.URL, time.Second)

	_, err := source.Fetch(context.Background())
	assert.Error(t, err)
}

func Test_Sources_Names(t *testing.T) {
	assert.Equal(t, "pydolarve", NewPyDolarVeSource("http://x", time.Second).Name())
	assert.Equal(t, "dolarapi", NewDolarAPISource("http://x", time.Second).Name())
}
