package platform

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreplane-io/coreplane/internal/wait"
)

func TestListUnwrapsEmbedded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v2/k8scluster", r.URL.Path)
		w.Write([]byte(`{
			"_embedded": {"k8sclusters": [
				{"label": {"name": "one"}, "_links": {"self": {"href": "/api/v2/k8scluster/1"}}},
				{"label": {"name": "two"}, "_links": {"self": {"href": "/api/v2/k8scluster/2"}}}
			]}
		}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	records, err := c.Clusters.List(context.Background())
	require.NoError(t, err)

	require.Len(t, records, 2)
	assert.Equal(t, "/api/v2/k8scluster/1", records[0].ID())
	assert.Equal(t, "/api/v2/k8scluster/2", records[1].ID())
}

func TestListEmptyEmbedded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	records, err := c.Clusters.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestGetByIDPath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v2/worker/k8shost/5", r.URL.Path)
		w.Write([]byte(`{"status": "ready", "hostname": "host5", "_links": {"self": {"href": "/api/v2/worker/k8shost/5"}}}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	record, err := c.Workers.Get(context.Background(), "/api/v2/worker/k8shost/5")
	require.NoError(t, err)
	assert.Equal(t, "ready", record.Status(K8sWorkerType))
	assert.Equal(t, "host5", record["hostname"])
}

func TestDeleteNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	err := c.Workers.Delete(context.Background(), "/api/v2/worker/k8shost/99")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestWaitForStatusReachesTarget(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		status := "creating"
		if calls.Add(1) >= 3 {
			status = "ready"
		}
		fmt.Fprintf(w, `{"status": %q}`, status)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	result, err := c.Clusters.WaitForStatus(context.Background(), "/api/v2/k8scluster/1",
		[]string{"ready"}, 5*time.Second)
	require.NoError(t, err)

	assert.Equal(t, wait.ReachedTarget, result.Outcome)
	assert.Equal(t, "ready", result.Status)
}

func TestWaitForStatusFailureState(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "error"}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	result, err := c.Clusters.WaitForStatus(context.Background(), "/api/v2/k8scluster/1",
		[]string{"ready"}, 5*time.Second)
	require.NoError(t, err)

	assert.Equal(t, wait.ObservedFailure, result.Outcome)
	assert.Equal(t, "error", result.Status)
	assert.Equal(t, 1, result.Fetches)
}

func TestWaitForStatusRejectsUnknownStatus(t *testing.T) {
	c := newTestClient(t, "http://unused.invalid")
	_, err := c.Clusters.WaitForStatus(context.Background(), "/api/v2/k8scluster/1",
		[]string{"sparkling"}, time.Second)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown k8scluster status "sparkling"`)
}

func TestWaitForDelete(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) >= 2 {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(`{"status": "deleting"}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	result, err := c.Clusters.WaitForDelete(context.Background(), "/api/v2/k8scluster/1", 5*time.Second)
	require.NoError(t, err)
	assert.Equal(t, wait.ReachedTarget, result.Outcome)
}
