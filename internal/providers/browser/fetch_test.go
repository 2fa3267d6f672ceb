package browser

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/PeakOS/backend/internal/infrastructure/resilience"
)

const samplePage = `<!doctype html>
<html><head>
<title>  Peak
 Docs </title>
<meta name="description" content="Shell kernel notes">
<style>body{}</style>
<script>alert("x")</script>
</head><body>
<h1>Windows</h1>
<p>Windows   live on
workspaces.</p>
<a href="/guide#top">Guide</a>
<a href="guide">Guide again</a>
<a href="#local">Skip</a>
<a href="javascript:void(0)">Script</a>
<a href="mailto:me@peak.test">Mail</a>
<a href="https://other.test/"></a>
</body></html>`

func TestParseHTML(t *testing.T) {
	page, err := Parse([]byte(samplePage), "text/html; charset=utf-8", "https://peak.test/docs/")
	require.NoError(t, err)

	assert.Equal(t, "Peak Docs", page.Title)
	assert.Equal(t, "Shell kernel notes", page.Description)
	assert.Equal(t, []string{"Windows", "Windows live on workspaces."}, page.Blocks)
	assert.Equal(t, []Link{
		{Text: "Guide", Href: "https://peak.test/guide"},
		{Text: "Guide again", Href: "https://peak.test/docs/guide"},
		{Text: "https://other.test/", Href: "https://other.test/"},
	}, page.Links)
	assert.Equal(t, "text/html", page.ContentType)
}

func TestParseTranscodesCharset(t *testing.T) {
	body := []byte("<html><head><title>Caf\xe9</title></head><body><p>Cr\xe8me</p></body></html>")

	page, err := Parse(body, "text/html; charset=iso-8859-1", "http://peak.test")
	require.NoError(t, err)
	assert.Equal(t, "Café", page.Title)
	assert.Equal(t, []string{"Crème"}, page.Blocks)
}

func TestParsePlainText(t *testing.T) {
	page, err := Parse([]byte("first  line\nsame para\n\nsecond"), "text/plain", "http://peak.test/readme.txt")
	require.NoError(t, err)

	assert.Equal(t, "peak.test", page.Title)
	assert.Equal(t, []string{"first line same para", "second"}, page.Blocks)
}

func TestParseRejectsBinary(t *testing.T) {
	_, err := Parse([]byte{0x89, 'P', 'N', 'G'}, "image/png", "http://peak.test/logo.png")
	assert.ErrorIs(t, err, ErrUnsupportedContent)
}

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		raw     string
		want    string
		wantErr error
	}{
		{raw: "peak.test", want: "https://peak.test"},
		{raw: "  HTTP://peak.test/a ", want: "http://peak.test/a"},
		{raw: "", wantErr: ErrNoURL},
		{raw: "ftp://peak.test", wantErr: ErrUnsupportedScheme},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := NormalizeURL(tt.raw)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := NormalizeURL("https://")
	assert.Error(t, err)
}

func TestHTTPFetcherFollowsRedirects(t *testing.T) {
	var agent atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		agent.Store(r.UserAgent())
		if r.URL.Path == "/old" {
			http.Redirect(w, r, "/docs/", http.StatusFound)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(samplePage))
	}))
	defer srv.Close()

	f := NewHTTPFetcher(Config{UserAgent: "peak-test"}, nil)
	defer f.Close()

	page, err := f.Fetch(context.Background(), srv.URL+"/old")
	require.NoError(t, err)

	assert.Equal(t, srv.URL+"/docs/", page.URL)
	assert.Equal(t, http.StatusOK, page.Status)
	assert.Equal(t, "Peak Docs", page.Title)
	assert.Equal(t, srv.URL+"/guide", page.Links[0].Href)
	assert.Equal(t, "peak-test", agent.Load())
}

func TestHTTPFetcherClientErrorDoesNotTrip(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	f := NewHTTPFetcher(Config{MaxFailures: 1}, nil)
	defer f.Close()

	for i := 0; i < 3; i++ {
		_, err := f.Fetch(context.Background(), srv.URL)
		var status *StatusError
		require.ErrorAs(t, err, &status)
		assert.Equal(t, http.StatusNotFound, status.Code)
	}
	assert.Equal(t, resilience.StateClosed, f.Breaker().State())
}

func TestHTTPFetcherServerErrorsOpenBreaker(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	f := NewHTTPFetcher(Config{MaxFailures: 2}, nil)
	defer f.Close()

	for i := 0; i < 2; i++ {
		_, err := f.Fetch(context.Background(), srv.URL)
		var status *StatusError
		require.ErrorAs(t, err, &status)
		assert.Equal(t, http.StatusBadGateway, status.Code)
	}

	_, err := f.Fetch(context.Background(), srv.URL)
	assert.ErrorIs(t, err, resilience.ErrCircuitOpen)
	assert.Equal(t, int32(2), hits.Load())
}

func TestHTTPFetcherCancelledFetchDoesNotTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	f := NewHTTPFetcher(Config{MaxFailures: 1}, nil)
	defer f.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := f.Fetch(ctx, srv.URL)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, resilience.StateClosed, f.Breaker().State())
}
