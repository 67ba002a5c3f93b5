package transform

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/jellydator/ttlcache/v3"
	"github.com/microcosm-cc/bluemonday"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const (
	DefaultYouTubeWatchURL = "https://www.youtube.com/watch"
	DefaultCaptionCacheTTL = time.Hour

	thumbnailURLFormat = "https://img.youtube.com/vi/%s/0.jpg"
	videoURLFormat     = "https://www.youtube.com/watch?v=%s"

	maxWatchPageBytes = 8 << 20
	maxCaptionBytes   = 4 << 20
)

var (
	ErrNoVideoID  = errors.New("no youtube video id in url")
	ErrNoCaptions = errors.New("video has no caption tracks")

	videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)
)

// YouTubeConfig holds the tunables for the YouTube transformer.
type YouTubeConfig struct {
	// WatchURL is the page fetched for a video id, with ?v=<id> appended.
	WatchURL string
	// CacheTTL bounds how long a rendered document is reused.
	CacheTTL time.Duration
	// Languages lists caption language codes in order of preference.
	Languages []string
}

// YouTube turns a video URL into a markdown document of its captions.
type YouTube struct {
	fetcher   *Fetcher
	cfg       YouTubeConfig
	cache     *ttlcache.Cache[string, string]
	sanitizer *bluemonday.Policy
}

var _ Transformer = (*YouTube)(nil)

// NewYouTube starts the document cache. Call Close to stop it.
func NewYouTube(fetcher *Fetcher, cfg YouTubeConfig) *YouTube {
	if cfg.WatchURL == "" {
		cfg.WatchURL = DefaultYouTubeWatchURL
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = DefaultCaptionCacheTTL
	}
	if len(cfg.Languages) == 0 {
		cfg.Languages = []string{"en"}
	}

	cache := ttlcache.New(
		ttlcache.WithTTL[string, string](cfg.CacheTTL),
		ttlcache.WithDisableTouchOnHit[string, string](),
	)
	go cache.Start()

	return &YouTube{
		fetcher:   fetcher,
		cfg:       cfg,
		cache:     cache,
		sanitizer: bluemonday.StrictPolicy(),
	}
}

// Close stops the cache cleanup goroutine.
func (y *YouTube) Close() {
	y.cache.Stop()
}

func (y *YouTube) Name() string {
	return "youtube"
}

func (y *YouTube) ShouldTransform(u *url.URL) bool {
	_, ok := VideoID(u)
	return ok
}

// FetchData loads the watch page for the video named by u.
func (y *YouTube) FetchData(ctx context.Context, u *url.URL) (*http.Response, error) {
	id, ok := VideoID(u)
	if !ok {
		return nil, ErrNoVideoID
	}
	watch, err := y.watchURL(id)
	if err != nil {
		return nil, err
	}
	return y.fetcher.Get(ctx, watch)
}

// TransformResponse renders a fetched watch page to markdown. The video id is
// taken from the request that produced resp.
func (y *YouTube) TransformResponse(ctx context.Context, resp *http.Response) (*http.Response, error) {
	if resp.Request == nil || resp.Request.URL == nil {
		resp.Body.Close()
		return nil, ErrNoVideoID
	}
	id := resp.Request.URL.Query().Get("v")
	if !videoIDPattern.MatchString(id) {
		resp.Body.Close()
		return nil, ErrNoVideoID
	}
	return y.renderWatchPage(ctx, id, resp)
}

// renderWatchPage turns the watch page of video id into a markdown response
// and caches the document.
func (y *YouTube) renderWatchPage(ctx context.Context, id string, resp *http.Response) (*http.Response, error) {
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("watch page returned %d", resp.StatusCode)
	}

	page, err := io.ReadAll(io.LimitReader(resp.Body, maxWatchPageBytes))
	if err != nil {
		return nil, errors.Wrap(err, "failed to read watch page")
	}

	doc, err := y.render(ctx, id, page)
	if err != nil {
		return nil, err
	}
	y.cache.Set(id, doc, ttlcache.DefaultTTL)

	return markdownResponse(resp.Request, doc), nil
}

func (y *YouTube) Process(ctx context.Context, u *url.URL) (*http.Response, error) {
	id, ok := VideoID(u)
	if !ok {
		return nil, ErrNoVideoID
	}

	if item := y.cache.Get(id); item != nil {
		zerolog.Ctx(ctx).Debug().Str("video_id", id).Msg("Caption document served from cache")
		return markdownResponse(nil, item.Value()), nil
	}

	resp, err := y.FetchData(ctx, u)
	if err != nil {
		return nil, err
	}
	// The watch page may have redirected away from ?v=, so the id comes from u.
	return y.renderWatchPage(ctx, id, resp)
}

func (y *YouTube) watchURL(id string) (*url.URL, error) {
	u, err := url.Parse(y.cfg.WatchURL)
	if err != nil {
		return nil, errors.Wrap(err, "invalid watch url")
	}
	q := u.Query()
	q.Set("v", id)
	u.RawQuery = q.Encode()
	return u, nil
}

func (y *YouTube) render(ctx context.Context, id string, page []byte) (string, error) {
	title := pageTitle(page)

	tracks, err := captionTracks(page)
	if err != nil {
		return "", err
	}
	track := pickTrack(tracks, y.cfg.Languages)

	trackURL, err := url.Parse(track.BaseURL)
	if err != nil {
		return "", errors.Wrap(err, "invalid caption track url")
	}
	resp, err := y.fetcher.Get(ctx, trackURL)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", errors.Errorf("caption track returned %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxCaptionBytes))
	if err != nil {
		return "", errors.Wrap(err, "failed to read captions")
	}
	lines, err := y.captionLines(raw)
	if err != nil {
		return "", err
	}

	return renderMarkdown(id, title, splitSentences(strings.Join(lines, " "))), nil
}

// VideoID extracts an 11 character video id from the URL forms YouTube
// publishes.
func VideoID(u *url.URL) (string, bool) {
	host := strings.ToLower(u.Hostname())
	for _, prefix := range []string{"www.", "m.", "music."} {
		host = strings.TrimPrefix(host, prefix)
	}
	segs := pathSegments(u.Path)

	var id string
	switch host {
	case "youtu.be":
		if len(segs) > 0 {
			id = segs[0]
		}
	case "youtube.com", "youtube-nocookie.com":
		switch {
		case len(segs) == 1 && segs[0] == "watch":
			id = u.Query().Get("v")
		case len(segs) >= 2:
			switch segs[0] {
			case "shorts", "embed", "live", "v":
				id = segs[1]
			}
		}
	}

	if !videoIDPattern.MatchString(id) {
		return "", false
	}
	return id, true
}

func pageTitle(page []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return ""
	}
	if title, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok && strings.TrimSpace(title) != "" {
		return strings.TrimSpace(title)
	}
	return strings.TrimSuffix(strings.TrimSpace(doc.Find("title").First().Text()), " - YouTube")
}

type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind"`
}

func captionTracks(page []byte) ([]captionTrack, error) {
	const marker = `"captionTracks":`
	idx := bytes.Index(page, []byte(marker))
	if idx < 0 {
		return nil, ErrNoCaptions
	}

	var tracks []captionTrack
	dec := json.NewDecoder(bytes.NewReader(page[idx+len(marker):]))
	if err := dec.Decode(&tracks); err != nil {
		return nil, errors.Wrap(err, "failed to decode caption tracks")
	}
	if len(tracks) == 0 {
		return nil, ErrNoCaptions
	}
	return tracks, nil
}

// pickTrack prefers a manual track in a preferred language, then an
// auto-generated one, then whatever is listed first.
func pickTrack(tracks []captionTrack, languages []string) captionTrack {
	for _, asr := range []bool{false, true} {
		for _, lang := range languages {
			for _, t := range tracks {
				if (t.Kind == "asr") != asr {
					continue
				}
				if t.LanguageCode == lang || strings.HasPrefix(t.LanguageCode, lang+"-") {
					return t
				}
			}
		}
	}
	return tracks[0]
}

type timedText struct {
	Texts      []string     `xml:"text"`
	Paragraphs []timedTextP `xml:"body>p"`
}

type timedTextP struct {
	Inner string `xml:",innerxml"`
}

// captionLines decodes both the legacy <text> and the srv3 <p> timed text
// formats to plain text lines.
func (y *YouTube) captionLines(raw []byte) ([]string, error) {
	var tt timedText
	if err := xml.Unmarshal(raw, &tt); err != nil {
		return nil, errors.Wrap(err, "failed to parse timed text")
	}

	lines := make([]string, 0, len(tt.Texts)+len(tt.Paragraphs))
	for _, t := range tt.Texts {
		lines = append(lines, y.plainText(t))
	}
	for _, p := range tt.Paragraphs {
		lines = append(lines, y.plainText(p.Inner))
	}
	return lines, nil
}

// plainText decodes entities, strips markup and decodes again, since the
// sanitizer escapes its output.
func (y *YouTube) plainText(s string) string {
	s = html.UnescapeString(s)
	s = y.sanitizer.Sanitize(s)
	return strings.TrimSpace(html.UnescapeString(s))
}

func renderMarkdown(id, title string, sentences []string) string {
	var b strings.Builder
	alt := "YouTube Video Thumbnail"
	if title != "" {
		fmt.Fprintf(&b, "# %s\n\n", title)
	}
	fmt.Fprintf(&b, "[![%s]("+thumbnailURLFormat+")]("+videoURLFormat+")\n\n", alt, id, id)
	b.WriteString(strings.Join(sentences, "\n\n"))
	b.WriteString("\n")
	return b.String()
}

func markdownResponse(req *http.Request, body string) *http.Response {
	return &http.Response{
		Status:        "200 OK",
		StatusCode:    http.StatusOK,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        http.Header{"Content-Type": []string{"text/markdown; charset=utf-8"}},
		Body:          io.NopCloser(strings.NewReader(body)),
		ContentLength: int64(len(body)),
		Request:       req,
	}
}
