package probe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	e2eerrors "github.com/jhu-idc/idce2e/internal/errors"
	"github.com/jhu-idc/idce2e/internal/poll"
)

// methodLog records request methods seen by a test server.
type methodLog struct {
	mu      sync.Mutex
	methods []string
}

func (l *methodLog) add(m string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.methods = append(l.methods, m)
}

func (l *methodLog) all() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.methods...)
}

// storageServer answers like an object store: /present exists, /denied is a
// soft-deleted object, anything else is gone.
func storageServer(t *testing.T, log *methodLog) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if log != nil {
			log.add(r.Method)
		}
		switch r.URL.Path {
		case "/present":
			_, _ = w.Write([]byte("bytes"))
		case "/denied":
			w.WriteHeader(http.StatusForbidden)
		case "/moved":
			http.Redirect(w, r, "/present", http.StatusFound)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestProbe_StatusCodes(t *testing.T) {
	t.Parallel()

	log := &methodLog{}
	srv := storageServer(t, log)
	prober := New()

	tests := []struct {
		path string
		want int
	}{
		{"/present", http.StatusOK},
		{"/denied", http.StatusForbidden},
		{"/deleted", http.StatusNotFound},
		{"/moved", http.StatusFound},
	}
	for _, tc := range tests {
		res, err := prober.Probe(context.Background(), srv.URL+tc.path)
		require.NoError(t, err, tc.path)
		assert.Equal(t, tc.want, res.StatusCode, tc.path)
		assert.Equal(t, srv.URL+tc.path, res.URL)
		assert.Equal(t, http.MethodHead, res.Method)
	}
	assert.Equal(t, []string{"HEAD", "HEAD", "HEAD", "HEAD"}, log.all(), "one request per probe, redirects not followed")
}

func TestProbe_GetMethod(t *testing.T) {
	t.Parallel()

	log := &methodLog{}
	srv := storageServer(t, log)
	prober := New(WithMethod("get"))

	res, err := prober.Probe(context.Background(), srv.URL+"/present")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, []string{"GET"}, log.all())
	assert.Equal(t, http.MethodGet, prober.Method())

	assert.Equal(t, http.MethodHead, New(WithMethod("DELETE")).Method(), "only HEAD and GET are allowed")
}

func TestProbe_GetDoesNotReadBody(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(make([]byte, 1024))
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
		// The rest of a large binary never arrives.
		<-r.Context().Done()
	}))
	t.Cleanup(srv.Close)

	start := time.Now()
	res, err := New(WithMethod(http.MethodGet), WithTimeout(3*time.Second)).Probe(context.Background(), srv.URL+"/bucket/large.tiff")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Less(t, time.Since(start), 2*time.Second, "the probe returns on the status line")
}

func TestProbe_TransportFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	_, err := New().Probe(context.Background(), addr+"/file.jpg")
	require.ErrorIs(t, err, e2eerrors.ErrProbeTransport)
	assert.Contains(t, err.Error(), "HEAD "+addr+"/file.jpg")
}

func TestProbe_Timeout(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		srv.Close()
	})

	_, err := New(WithTimeout(20*time.Millisecond)).Probe(context.Background(), srv.URL)
	require.ErrorIs(t, err, e2eerrors.ErrProbeTransport)
}

func TestProbe_ForceHTTPS(t *testing.T) {
	t.Parallel()

	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)

	plain := "http://" + strings.TrimPrefix(srv.URL, "https://") + "/object.tiff"
	prober := New(WithForceHTTPS(true), WithTransport(srv.Client().Transport))

	res, err := prober.Probe(context.Background(), plain)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, res.StatusCode)
	assert.True(t, strings.HasPrefix(res.URL, "https://"), res.URL)
}

func TestProbe_InvalidURL(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"", "/relative/path", "ftp://example.org/file", "http://%zz"} {
		_, err := New().Probe(context.Background(), raw)
		require.ErrorIs(t, err, e2eerrors.ErrInvalidArgument, raw)
	}
}

func TestProbeAll(t *testing.T) {
	t.Parallel()

	srv := storageServer(t, nil)
	urls := []string{srv.URL + "/deleted", srv.URL + "/present", srv.URL + "/denied"}

	results, err := New().ProbeAll(context.Background(), urls)
	require.NoError(t, err)
	require.Len(t, results, 3)
	for i, res := range results {
		assert.Equal(t, urls[i], res.URL)
	}
	assert.Equal(t, []int{404, 200, 403}, []int{results[0].StatusCode, results[1].StatusCode, results[2].StatusCode})

	_, err = New().ProbeAll(context.Background(), append(urls, "not a url"))
	require.ErrorIs(t, err, e2eerrors.ErrInvalidArgument)
}

func TestWaitForStatus(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if hits.Add(1) <= 2 {
			return
		}
		w.WriteHeader(http.StatusForbidden)
	}))
	t.Cleanup(srv.Close)

	prober := New(WithPace(time.Millisecond))
	res, err := prober.WaitForStatus(context.Background(), poll.New(10*time.Second), srv.URL, 0,
		http.StatusForbidden, http.StatusNotFound)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, res.StatusCode)
	assert.Equal(t, int32(3), hits.Load())
}

func TestWaitForStatus_Failures(t *testing.T) {
	t.Parallel()

	t.Run("deadline", func(t *testing.T) {
		t.Parallel()
		srv := storageServer(t, nil)
		prober := New(WithPace(5 * time.Millisecond))

		res, err := prober.WaitForStatus(context.Background(), poll.New(time.Hour), srv.URL+"/present", 60*time.Millisecond, http.StatusNotFound)
		require.ErrorIs(t, err, e2eerrors.ErrPollTimeout)
		require.NotNil(t, res)
		assert.Equal(t, http.StatusOK, res.StatusCode, "last observed status is kept")
	})

	t.Run("transport failure is not retried", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.NotFoundHandler())
		addr := srv.URL
		srv.Close()

		_, err := New().WaitForStatus(context.Background(), poll.New(time.Hour), addr, 0, http.StatusOK)
		require.ErrorIs(t, err, e2eerrors.ErrProbeTransport)
		assert.NotErrorIs(t, err, e2eerrors.ErrPollTimeout)
	})

	t.Run("no expected codes", func(t *testing.T) {
		t.Parallel()
		_, err := New().WaitForStatus(context.Background(), poll.New(0), "https://example.org", 0)
		require.ErrorIs(t, err, e2eerrors.ErrInvalidArgument)
	})

	t.Run("canceled while pacing", func(t *testing.T) {
		t.Parallel()
		srv := storageServer(t, nil)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
		defer cancel()

		_, err := New(WithPace(time.Hour)).WaitForStatus(ctx, poll.New(time.Hour), srv.URL+"/present", 0, http.StatusNotFound)
		require.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestExpect(t *testing.T) {
	t.Parallel()

	res := &Result{URL: "https://s3.example.org/f.jpg", Method: http.MethodHead, StatusCode: http.StatusForbidden}
	require.NoError(t, Expect(res, http.StatusForbidden, http.StatusNotFound))

	err := Expect(res, http.StatusOK)
	require.ErrorIs(t, err, e2eerrors.ErrUnexpectedStatus)
	assert.Contains(t, err.Error(), "got 403")

	require.ErrorIs(t, Expect(nil, http.StatusOK), e2eerrors.ErrInvalidArgument)
}
