package main

import (
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/brightflow/chronoindex/internal/config"
)

func testServer(t *testing.T) *server {
	t.Helper()
	cfg := config.Default()
	cfg.RecentCacheSize = 16
	return newServer(cfg, zap.NewNop())
}

func TestHandleHealth(t *testing.T) {
	s := testServer(t)
	req := httptest.NewRequest("GET", "/healthz", nil)
	rec := httptest.NewRecorder()

	s.handleHealth(rec, req)

	assert.Equal(t, 200, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestHandlePushAndGreedyQuery(t *testing.T) {
	s := testServer(t)

	push := httptest.NewRequest("POST", "/push?series=reqs&t=1&v=10", nil)
	pushRec := httptest.NewRecorder()
	s.handlePush(pushRec, push)
	require.Equal(t, 204, pushRec.Code)

	query := httptest.NewRequest("GET", "/query/greedy?series=reqs&t=1", nil)
	queryRec := httptest.NewRecorder()
	s.handleGreedyQuery(queryRec, query)

	require.Equal(t, 200, queryRec.Code)
	assert.Equal(t, "10 2\n", queryRec.Body.String())
}

func TestHandlePushRejectsMissingParams(t *testing.T) {
	s := testServer(t)
	req := httptest.NewRequest("POST", "/push?series=reqs", nil)
	rec := httptest.NewRecorder()

	s.handlePush(rec, req)

	assert.Equal(t, 400, rec.Code)
}

func TestHandleQueryUnknownSeries(t *testing.T) {
	s := testServer(t)
	req := httptest.NewRequest("GET", "/query/greedy?series=nope&t=1", nil)
	rec := httptest.NewRecorder()

	s.handleGreedyQuery(rec, req)

	assert.Equal(t, 404, rec.Code)
}

func TestHandleRangeQuery(t *testing.T) {
	s := testServer(t)
	for i, v := range []int{10, 20, 30} {
		url := fmt.Sprintf("/push?series=sum&t=%d&v=%d", i+1, v)
		req := httptest.NewRequest("POST", url, nil)
		rec := httptest.NewRecorder()
		s.handlePush(rec, req)
		require.Equal(t, 204, rec.Code)
	}

	req := httptest.NewRequest("GET", "/query/range?series=sum&l=1&r=4", nil)
	rec := httptest.NewRecorder()
	s.handleRangeQuery(rec, req)

	require.Equal(t, 200, rec.Code)
	assert.Equal(t, "60 4\n", rec.Body.String())
}
