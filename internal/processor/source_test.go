package processor

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/transcriptfmt/internal/httputil"
)

type fakeTranscriber struct {
	got string
	out string
	err error
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, mediaURL string) (string, error) {
	f.got = mediaURL
	return f.out, f.err
}

// localResolver can reach httptest servers on loopback.
func localResolver(tr Transcriber) *Resolver {
	return &Resolver{
		httpClient:   httputil.NewClient(httputil.DefaultTimeout),
		transcriber:  tr,
		lookup:       net.DefaultResolver.LookupIPAddr,
		allowPrivate: true,
	}
}

// publicResolver resolves every host to a public address without DNS.
func publicResolver(tr Transcriber) *Resolver {
	r := NewResolver(tr)
	r.lookup = func(ctx context.Context, host string) ([]net.IPAddr, error) {
		return []net.IPAddr{{IP: net.ParseIP("93.184.216.34")}}, nil
	}
	return r
}

func TestResolve_PlainTextPassesThrough(t *testing.T) {
	tr := &fakeTranscriber{out: "unused"}
	got, err := NewResolver(tr).Resolve(context.Background(), "  speaker 1: hello there \n")
	require.NoError(t, err)
	assert.Equal(t, "speaker 1: hello there", got)
	assert.Empty(t, tr.got)
}

func TestResolve_RejectsPrivateHosts(t *testing.T) {
	for _, u := range []string{
		"http://127.0.0.1:1/x",
		"http://169.254.169.254/latest/meta-data/",
		"http://10.0.0.5/",
		"http://192.168.1.1/admin",
		"http://[::1]:8080/",
		"http://0.0.0.0/",
	} {
		t.Run(u, func(t *testing.T) {
			tr := &fakeTranscriber{out: "x"}
			_, err := NewResolver(tr).Resolve(context.Background(), u)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrPrivateHost), "got %v", err)
			assert.Empty(t, tr.got)
		})
	}
}

func TestResolve_RejectsNameResolvingToPrivate(t *testing.T) {
	r := NewResolver(nil)
	r.lookup = func(ctx context.Context, host string) ([]net.IPAddr, error) {
		return []net.IPAddr{{IP: net.ParseIP("203.0.113.9")}, {IP: net.ParseIP("127.0.0.1")}}, nil
	}
	_, err := r.Resolve(context.Background(), "http://rebind.example/")
	assert.ErrorIs(t, err, ErrPrivateHost)
}

func TestResolve_DialGuardBlocksLoopback(t *testing.T) {
	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("secret"))
	}))
	defer page.Close()

	// A lookup that lies about the host still cannot reach loopback.
	_, err := publicResolver(nil).Resolve(context.Background(), page.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrPrivateHost.Error())
}

func TestResolve_TranscribesURL(t *testing.T) {
	tr := &fakeTranscriber{out: "hello world"}
	got, err := publicResolver(tr).Resolve(context.Background(), " https://youtu.be/abc ")
	require.NoError(t, err)
	assert.Equal(t, "hello world", got)
	assert.Equal(t, "https://youtu.be/abc", tr.got)
}

func TestResolve_TranscriberError(t *testing.T) {
	tr := &fakeTranscriber{err: errors.New("transcription failed: bad audio")}
	_, err := publicResolver(tr).Resolve(context.Background(), "https://youtu.be/abc")
	assert.EqualError(t, err, "transcription failed: bad audio")
}

func TestResolve_FetchesPageText(t *testing.T) {
	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, httputil.UserAgent, r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte("<html><body><h1>Talk</h1><p>First line</p></body></html>"))
	}))
	defer page.Close()

	got, err := localResolver(nil).Resolve(context.Background(), page.URL)
	require.NoError(t, err)
	assert.Contains(t, got, "Talk")
	assert.Contains(t, got, "First line")
	assert.NotContains(t, got, "<h1>")
}
