package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/policywatch/internal/domain/content"
)

const tosHTML = `<!DOCTYPE html>
<html>
<head><title>Terms</title><style>body{color:red}</style></head>
<body>
  <nav>Home | Pricing | Legal</nav>
  <header>Example Corp</header>
  <main>
    <h1>Terms of Service</h1>
    <p>Effective date: January 5, 2026</p>
    <p>We may share your data with partners.</p>
    <p>Session 123e4567-e89b-12d3-a456-426614174000 rendered at 2026-01-05T10:00:00Z.</p>
    <img src="/pixel.gif" width="1" height="1">
    <div class="tracking-banner">consent widget</div>
  </main>
  <footer>© Example Corp</footer>
  <script>analytics()</script>
</body>
</html>`

func TestFetch(t *testing.T) {
	var gotUA, gotLang string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotLang = r.Header.Get("Accept-Language")
		w.Write([]byte(tosHTML))
	}))
	defer srv.Close()

	page, err := New(5 * time.Second).Fetch(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.Contains(t, gotUA, "Mozilla/5.0")
	assert.Equal(t, "en-US,en;q=0.9", gotLang)

	assert.Contains(t, page.Text, "We may share your data with partners.")
	assert.NotContains(t, page.Text, "Home | Pricing")
	assert.NotContains(t, page.Text, "analytics")
	assert.NotContains(t, page.Text, "© Example Corp")
	assert.NotContains(t, page.Text, "consent widget")
	// volatile tokens are scrubbed so they cannot fabricate diffs
	assert.NotContains(t, page.Text, "123e4567")
	assert.NotContains(t, page.Text, "2026-01-05T10:00:00Z")

	assert.Contains(t, page.HTML, "<script>", "raw HTML is kept intact for archiving")
	assert.Equal(t, "January 5, 2026", page.EffectiveDate)
}

func TestFetchNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := New(5 * time.Second).Fetch(context.Background(), srv.URL)
	require.Error(t, err)

	var fe *content.FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, http.StatusForbidden, fe.Status)
	assert.Equal(t, srv.URL, fe.URL)
}

func TestFetchConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	_, err := New(time.Second).Fetch(context.Background(), srv.URL)
	var fe *content.FetchError
	require.ErrorAs(t, err, &fe)
	assert.Zero(t, fe.Status)
	assert.Error(t, fe.Unwrap())
}

func TestNormalizeFallsBackToBody(t *testing.T) {
	text, err := Normalize(`<html><body><p>Plain page without semantic containers.</p></body></html>`)
	require.NoError(t, err)
	assert.Equal(t, "Plain page without semantic containers.", text)
}

func TestNormalizePrefersSemanticContainer(t *testing.T) {
	text, err := Normalize(`<html><body><div>sidebar junk</div><article>The actual terms.</article></body></html>`)
	require.NoError(t, err)
	assert.Equal(t, "The actual terms.", text)
}

func TestNormalizeRemovesHiddenIframes(t *testing.T) {
	text, err := Normalize(`<html><body><main>Visible text.
	  <iframe width="0" height="0">hidden</iframe>
	  <iframe style="display:none">also hidden</iframe>
	</main></body></html>`)
	require.NoError(t, err)
	assert.Equal(t, "Visible text.", text)
}

func TestScrubVolatile(t *testing.T) {
	in := "Token a1b2c3d4e5f60718293a4b5c plus /path?utm_source=x&utm_medium=y&sid=z stays clean.   Extra   spaces."
	got := scrubVolatile(in)
	assert.NotContains(t, got, "a1b2c3d4e5f60718293a4b5c")
	assert.NotContains(t, got, "utm_source")
	assert.NotContains(t, got, "  ")
	assert.Contains(t, got, "stays clean.")
}

func TestExtractEffectiveDate(t *testing.T) {
	cases := map[string]string{
		"Effective date: January 5, 2026 and onwards": "January 5, 2026",
		"Last updated: 2026-01-05":                    "2026-01-05",
		"Last Revised on 5 January 2026":              "5 January 2026",
		"effective as of March 1, 2026":               "March 1, 2026",
		"No dates in sight":                           "",
		"Effective immediately":                       "",
	}
	for in, want := range cases {
		assert.Equal(t, want, ExtractEffectiveDate(in), "input: %s", in)
	}
}
