package remote

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/christopherklint97/plantbill/internal/timesheet"
)

func newTestClient(url string) *Client {
	c := NewClient("secret", url+"/", time.Minute, nil)
	c.backoff = func(int) time.Duration { return 0 }
	return c
}

func TestFetchTimesheets_Pages(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/timesheets", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("X-Api-Key"))
		assert.Equal(t, "EXC-01", r.URL.Query().Get("entityId"))
		assert.Equal(t, "2026-03-01", r.URL.Query().Get("from"))

		switch r.URL.Query().Get("page") {
		case "1":
			w.Write([]byte(`[{"id":"a","date":"2026-03-02","assetId":"EXC-01","totalHours":8},{"id":"b","date":"2026-03-03","assetId":"EXC-01","totalHours":"7.5"}]`))
		default:
			w.Write([]byte(`[{"id":"c","date":"2026-03-04","assetId":"EXC-01","totalHours":6.25}]`))
		}
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	c.pageSize = 2

	docs, err := c.FetchTimesheets(context.Background(), "EXC-01", "2026-03-01", "2026-03-31")
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())

	recs := timesheet.NormalizeAll(docs)
	require.Len(t, recs, 3)
	assert.Equal(t, 8.0, recs[0].TotalHours)
	assert.Equal(t, 7.5, recs[1].TotalHours)
	assert.Equal(t, 6.25, recs[2].TotalHours)
}

func TestDoRequest_RetriesThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	docs, err := newTestClient(srv.URL).FetchTimesheets(context.Background(), "", "2026-03-01", "2026-03-31")
	require.NoError(t, err)
	assert.Empty(t, docs)
	assert.Equal(t, int32(3), calls.Load())
}

func TestDoRequest_GivesUp(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).FetchAssets(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
	assert.Equal(t, int32(maxRetries+1), calls.Load())
}

func TestDoRequest_ClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"bad key"}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).FetchAssets(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad key")
	assert.Equal(t, int32(1), calls.Load())
}

func TestDoRequest_MissingURL(t *testing.T) {
	_, err := NewClient("k", "", time.Minute, nil).FetchAssets(context.Background())
	assert.ErrorContains(t, err, "remote URL is empty")
}

func TestFetchAssets_Cached(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/assets", r.URL.Path)
		w.Write([]byte(`[{"id":"EXC-01","name":"Excavator","dryRate":120},{"id":"DOZ-02","dailyRate":900}]`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	assets, err := c.FetchAssets(context.Background())
	require.NoError(t, err)
	require.Len(t, assets, 2)
	assert.Equal(t, 120.0, assets[0].Rates().Resolve())
	assert.Nil(t, assets[1].WetRate)
	assert.Equal(t, 900.0, assets[1].Rates().Resolve())

	_, err = c.FetchAssets(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())

	c.InvalidateAssets()
	_, err = c.FetchAssets(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestAssetCache_Expires(t *testing.T) {
	c := NewAssetCache(time.Millisecond)
	c.Set([]Asset{{ID: "EXC-01"}})
	time.Sleep(5 * time.Millisecond)
	assert.Nil(t, c.Get())

	c = NewAssetCache(time.Hour)
	c.Set([]Asset{{ID: "EXC-01"}})
	got := c.Get()
	got[0].ID = "changed"
	assert.Equal(t, "EXC-01", c.Get()[0].ID)
}
