package catalog_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"TitleCatalog/internal/catalog"
	"TitleCatalog/pkg/kit"
)

const titlesCSV = `show_id,title,release_year,listed_in,description,rating
s1,Stranger Things,2016,"TV Show, Drama",A small town uncovers a mystery.,TV-14
s2,The Haunting of Hill House,2018,"TV Horror, TV Mysteries",A family confronts haunting memories.,TV-MA
s3,"Love, Death & Robots",2019,TV Sci-Fi & Fantasy,Terrifying creatures and dark surprises.,TV-MA
`

const metricsToken = "scrape-me"

type fixture struct {
	srv    *catalog.Server
	reg    *prometheus.Registry
	server *httptest.Server
}

func newFixture(t *testing.T, csv string, limit *kit.IPRateLimiter) fixture {
	t.Helper()

	store, err := catalog.Parse(strings.NewReader(csv),
		catalog.WithTokenizer(catalog.NewWordTokenizer()),
		catalog.WithSynonyms(catalog.DefaultThesaurus()),
	)
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	s := &catalog.Server{Store: store, Log: zap.NewNop(), SearchLimit: limit}

	h := catalog.NewHandler(s, catalog.HTTPDeps{
		Log:            zap.NewNop(),
		Service:        "catalog",
		Registry:       reg,
		MetricsEnabled: true,
		MetricsToken:   metricsToken,
		CORSOrigins:    []string{"https://example.com"},
	})

	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)

	return fixture{srv: s, reg: reg, server: ts}
}

func get(t *testing.T, url string, headers map[string]string) (*http.Response, []byte) {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, raw
}

func TestHome(t *testing.T) {
	f := newFixture(t, titlesCSV, nil)

	resp, raw := get(t, f.server.URL+"/", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	assert.Contains(t, string(raw), "<h1>")
}

func TestHealth(t *testing.T) {
	f := newFixture(t, titlesCSV, nil)

	resp, _ := get(t, f.server.URL+"/healthz", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = get(t, f.server.URL+"/readyz", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestReadyz_NoStore(t *testing.T) {
	h := catalog.NewHandler(&catalog.Server{}, catalog.HTTPDeps{Service: "catalog"})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestListMovies(t *testing.T) {
	f := newFixture(t, titlesCSV, nil)

	resp, raw := get(t, f.server.URL+"/movies", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var got []catalog.TitleRecord
	require.NoError(t, json.Unmarshal(raw, &got))
	require.Len(t, got, 3)
	assert.Equal(t, "s1", got[0].ID)
	assert.Equal(t, "s3", got[2].ID)
	assert.Equal(t, "Love, Death & Robots", got[2].Title)
}

func TestListMovies_EmptyCatalog(t *testing.T) {
	f := newFixture(t, "show_id,title,release_year,listed_in,description,rating\n", nil)

	resp, raw := get(t, f.server.URL+"/movies", nil)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	var er kit.ErrorResponse
	require.NoError(t, json.Unmarshal(raw, &er))
	assert.Equal(t, "no titles available", er.Error)
	assert.NotEmpty(t, er.RequestID)
}

func TestGetMovie(t *testing.T) {
	f := newFixture(t, titlesCSV, nil)

	resp, raw := get(t, f.server.URL+"/movies/s1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got catalog.TitleRecord
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, catalog.TitleRecord{
		ID:       "s1",
		Title:    "Stranger Things",
		Year:     2016,
		Category: "TV Show, Drama",
		Rating:   "A small town uncovers a mystery.",
		Overview: "TV-14",
	}, got)
}

func TestGetMovie_NotFound(t *testing.T) {
	f := newFixture(t, titlesCSV, nil)

	resp, raw := get(t, f.server.URL+"/movies/s404", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	var er struct {
		Error   string         `json:"error"`
		Details map[string]any `json:"details"`
	}
	require.NoError(t, json.Unmarshal(raw, &er))
	assert.Equal(t, "title not found", er.Error)
	assert.Equal(t, "s404", er.Details["id"])
}

func TestMoviesByCategory(t *testing.T) {
	f := newFixture(t, titlesCSV, nil)

	tests := []struct {
		name    string
		path    string
		status  int
		wantIDs []string
	}{
		{name: "case insensitive", path: "/movies/by_category/?category=drama", status: http.StatusOK, wantIDs: []string{"s1"}},
		{name: "without trailing slash", path: "/movies/by_category?category=TV", status: http.StatusOK, wantIDs: []string{"s1", "s2", "s3"}},
		{name: "empty matches all", path: "/movies/by_category/?category=", status: http.StatusOK, wantIDs: []string{"s1", "s2", "s3"}},
		{name: "no match", path: "/movies/by_category/?category=western", status: http.StatusOK, wantIDs: []string{}},
		{name: "parameter required", path: "/movies/by_category/", status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, raw := get(t, f.server.URL+tt.path, nil)
			require.Equal(t, tt.status, resp.StatusCode, string(raw))
			if tt.status != http.StatusOK {
				return
			}

			var got []catalog.TitleRecord
			require.NoError(t, json.Unmarshal(raw, &got))
			ids := make([]string, 0, len(got))
			for _, tr := range got {
				ids = append(ids, tr.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}

	assert.Equal(t, float64(4), testutil.ToFloat64(f.srv.Metrics.CategoryFilters))
}

type chatbotBody struct {
	Response string                `json:"response"`
	Found    bool                  `json:"found"`
	Movies   []catalog.TitleRecord `json:"movies"`
}

func TestChatbot(t *testing.T) {
	f := newFixture(t, titlesCSV, nil)

	resp, raw := get(t, f.server.URL+"/chatbot?query=strange", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body chatbotBody
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.True(t, body.Found)
	assert.Equal(t, "Here are some related titles.", body.Response)
	require.Len(t, body.Movies, 1)
	assert.Equal(t, "s1", body.Movies[0].ID)
}

func TestChatbot_SynonymExpansion(t *testing.T) {
	f := newFixture(t, titlesCSV, nil)

	_, raw := get(t, f.server.URL+"/chatbot?query=phantom%20romance", nil)

	var body chatbotBody
	require.NoError(t, json.Unmarshal(raw, &body))
	require.True(t, body.Found)

	ids := make([]string, 0, len(body.Movies))
	for _, m := range body.Movies {
		ids = append(ids, m.ID)
	}
	assert.Equal(t, []string{"s2", "s3"}, ids)
}

func TestChatbot_NoMatch(t *testing.T) {
	f := newFixture(t, titlesCSV, nil)

	for _, q := range []string{"zebra", ""} {
		resp, raw := get(t, f.server.URL+"/chatbot?query="+q, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body chatbotBody
		require.NoError(t, json.Unmarshal(raw, &body))
		assert.False(t, body.Found, "query %q", q)
		assert.Equal(t, "No titles matched that query.", body.Response)
		assert.NotNil(t, body.Movies)
		assert.Empty(t, body.Movies)
	}

	assert.Equal(t, float64(2), testutil.ToFloat64(f.srv.Metrics.Searches.WithLabelValues("not_found")))
	assert.Equal(t, float64(0), testutil.ToFloat64(f.srv.Metrics.Searches.WithLabelValues("found")))
}

func TestChatbot_QueryRequired(t *testing.T) {
	f := newFixture(t, titlesCSV, nil)

	resp, _ := get(t, f.server.URL+"/chatbot", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestChatbot_RateLimited(t *testing.T) {
	f := newFixture(t, titlesCSV, kit.NewIPRateLimiter(1, time.Minute))

	resp, _ := get(t, f.server.URL+"/chatbot?query=love", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = get(t, f.server.URL+"/chatbot?query=love", nil)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)

	resp, _ = get(t, f.server.URL+"/movies", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode, "only search is limited")
}

func TestStats(t *testing.T) {
	f := newFixture(t, titlesCSV, nil)

	resp, raw := get(t, f.server.URL+"/stats", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var st catalog.Stats
	require.NoError(t, json.Unmarshal(raw, &st))
	assert.Equal(t, 3, st.Total)
	assert.Equal(t, 2016, st.YearMin)
	assert.Equal(t, 2019, st.YearMax)
	assert.Equal(t, 1, st.ByCategory["TV Horror"])
	assert.NotEmpty(t, st.LoadID)
}

func TestMetricsEndpoint(t *testing.T) {
	f := newFixture(t, titlesCSV, nil)

	resp, _ := get(t, f.server.URL+"/metrics", nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, raw := get(t, f.server.URL+"/metrics", map[string]string{"Authorization": "Bearer " + metricsToken})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), "catalog_titles_loaded 3")
	assert.Contains(t, string(raw), "http_requests_total")
}

func TestCORS(t *testing.T) {
	f := newFixture(t, titlesCSV, nil)

	resp, _ := get(t, f.server.URL+"/movies", map[string]string{"Origin": "https://example.com"})
	assert.Equal(t, "https://example.com", resp.Header.Get("Access-Control-Allow-Origin"))

	resp, _ = get(t, f.server.URL+"/movies", map[string]string{"Origin": "https://evil.example"})
	assert.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))
}
