package transform_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jrsteele09/chatcraft-server/transform"
	"github.com/stretchr/testify/require"
)

const testVideoID = "dQw4w9WgXcQ"

func TestVideoID(t *testing.T) {
	tests := []struct {
		in     string
		wantID string
		wantOK bool
	}{
		{"https://www.youtube.com/watch?v=" + testVideoID, testVideoID, true},
		{"https://m.youtube.com/watch?v=" + testVideoID + "&t=42", testVideoID, true},
		{"https://youtu.be/" + testVideoID, testVideoID, true},
		{"https://youtu.be/" + testVideoID + "?si=abc", testVideoID, true},
		{"https://www.youtube.com/shorts/" + testVideoID, testVideoID, true},
		{"https://www.youtube.com/embed/" + testVideoID, testVideoID, true},
		{"https://www.youtube-nocookie.com/embed/" + testVideoID, testVideoID, true},
		{"https://www.youtube.com/live/" + testVideoID, testVideoID, true},
		{"https://www.youtube.com/v/" + testVideoID, testVideoID, true},
		{"https://www.youtube.com/watch", "", false},
		{"https://www.youtube.com/watch?v=short", "", false},
		{"https://www.youtube.com/@channel", "", false},
		{"https://example.com/watch?v=" + testVideoID, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			id, ok := transform.VideoID(mustParse(t, tt.in))
			require.Equal(t, tt.wantOK, ok)
			require.Equal(t, tt.wantID, id)
		})
	}
}

func newYouTubeServer(t *testing.T, watchHits *int32) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	var srv *httptest.Server
	writeWatchPage := func(w http.ResponseWriter) {
		fmt.Fprintf(w, `<html><head>
<meta property="og:title" content="Never Gonna Give You Up">
<title>ignored - YouTube</title></head>
<body><script>var ytInitialPlayerResponse = {"captions":{"playerCaptionsTracklistRenderer":{"captionTracks":[
{"baseUrl":"%[1]s/api/timedtext?v=%[2]s&lang=fr","languageCode":"fr"},
{"baseUrl":"%[1]s/api/timedtext?v=%[2]s&lang=en&kind=asr","languageCode":"en","kind":"asr"},
{"baseUrl":"%[1]s/api/timedtext?v=%[2]s&lang=en","languageCode":"en"}
],"audioTracks":[]}}};</script></body></html>`, srv.URL, testVideoID)
	}
	mux.HandleFunc("/watch", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(watchHits, 1)
		if r.Header.Get("User-Agent") != transform.UserAgent || r.URL.Query().Get("v") != testVideoID {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		writeWatchPage(w)
	})
	// Consent interstitial: the watch page ends up at a URL without ?v=.
	mux.HandleFunc("/consent-watch", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/consent", http.StatusFound)
	})
	mux.HandleFunc("/consent", func(w http.ResponseWriter, _ *http.Request) {
		writeWatchPage(w)
	})
	mux.HandleFunc("/api/timedtext", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("lang") != "en" || r.URL.Query().Get("kind") != "" {
			http.Error(w, "wrong track", http.StatusTeapot)
			return
		}
		fmt.Fprint(w, `<?xml version="1.0" encoding="utf-8" ?><transcript>
<text start="0" dur="1.5">Hello   there.</text>
<text start="1.5" dur="2">It&amp;#39;s a &lt;font color=&quot;#fff&quot;&gt;test&lt;/font&gt;?</text>
<text start="3.5" dur="1">Yes! Done</text>
</transcript>`)
	})

	srv = httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestYouTube_ProcessRendersCaptions(t *testing.T) {
	var hits int32
	srv := newYouTubeServer(t, &hits)

	yt := transform.NewYouTube(transform.NewFetcher(srv.Client()), transform.YouTubeConfig{
		WatchURL: srv.URL + "/watch",
		CacheTTL: time.Minute,
	})
	defer yt.Close()

	u := mustParse(t, "https://youtu.be/"+testVideoID)
	require.True(t, yt.ShouldTransform(u))

	resp, err := yt.Process(context.Background(), u)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "text/markdown; charset=utf-8", resp.Header.Get("Content-Type"))

	want := "# Never Gonna Give You Up\n\n" +
		"[![YouTube Video Thumbnail](https://img.youtube.com/vi/" + testVideoID + "/0.jpg)]" +
		"(https://www.youtube.com/watch?v=" + testVideoID + ")\n\n" +
		"Hello there.\n\nIt's a test?\n\nYes!\n\nDone\n"
	require.Equal(t, want, readBody(t, resp))

	// Served from cache the second time.
	resp, err = yt.Process(context.Background(), mustParse(t, "https://www.youtube.com/watch?v="+testVideoID))
	require.NoError(t, err)
	require.Equal(t, want, readBody(t, resp))
	require.EqualValues(t, 1, atomic.LoadInt32(&hits))
}

func TestYouTube_NoVideoID(t *testing.T) {
	yt := transform.NewYouTube(transform.NewFetcher(nil), transform.YouTubeConfig{})
	defer yt.Close()

	_, err := yt.Process(context.Background(), mustParse(t, "https://www.youtube.com/feed/trending"))
	require.ErrorIs(t, err, transform.ErrNoVideoID)
}

func TestYouTube_NoCaptions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<html><head><title>Silent film - YouTube</title></head></html>`)
	}))
	defer srv.Close()

	yt := transform.NewYouTube(transform.NewFetcher(srv.Client()), transform.YouTubeConfig{WatchURL: srv.URL + "/watch"})
	defer yt.Close()

	_, err := yt.Process(context.Background(), mustParse(t, "https://youtu.be/"+testVideoID))
	require.ErrorIs(t, err, transform.ErrNoCaptions)
}

func TestYouTube_ProcessFollowsRedirectedWatchPage(t *testing.T) {
	var hits int32
	srv := newYouTubeServer(t, &hits)

	yt := transform.NewYouTube(transform.NewFetcher(srv.Client()), transform.YouTubeConfig{
		WatchURL: srv.URL + "/consent-watch",
	})
	defer yt.Close()

	resp, err := yt.Process(context.Background(), mustParse(t, "https://youtu.be/"+testVideoID))
	require.NoError(t, err)
	require.Equal(t, "text/markdown; charset=utf-8", resp.Header.Get("Content-Type"))
	require.Contains(t, readBody(t, resp), "# Never Gonna Give You Up\n\n")
}
