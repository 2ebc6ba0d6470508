package espn

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/offmue/pickem/internal/platform/cache"
	"github.com/offmue/pickem/internal/platform/logging"
	"github.com/offmue/pickem/internal/platform/resilience"
	"github.com/offmue/pickem/internal/usecase"
)

const (
	defaultBaseURL  = "https://site.api.espn.com/apis/site/v2/sports/football/nfl"
	defaultTimeout  = 10 * time.Second
	defaultCacheTTL = 15 * time.Second
	maxResponseSize = 6 << 20

	// regular season; pre and post season games never enter the pick pool
	regularSeasonType = "2"
)

var errEmptyScoreboard = crerr.New("espn scoreboard carried no events")

type ClientConfig struct {
	HTTPClient *http.Client
	BaseURL    string
	// Year selects the season, e.g. 2025.
	Year    int
	Timeout time.Duration
	Logger  *logging.Logger
	// CacheTTL bounds how long a scoreboard response is reused before ESPN
	// is asked again. Zero selects the default.
	CacheTTL time.Duration
	Breaker  resilience.CircuitBreakerConfig
}

// Client reads NFL schedule and result facts from the public ESPN site API.
// Responses are cached briefly so the poller and the manual sync job do not
// hammer the provider, and a circuit breaker sheds load when ESPN misbehaves.
type Client struct {
	httpClient *http.Client
	baseURL    string
	year       int
	logger     *logging.Logger
	cache      *cache.Store
	breaker    *resilience.CircuitBreaker
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	cacheTTL := cfg.CacheTTL
	if cacheTTL <= 0 {
		cacheTTL = defaultCacheTTL
	}

	breakerCfg := cfg.Breaker
	if breakerCfg == (resilience.CircuitBreakerConfig{}) {
		breakerCfg = resilience.DefaultCircuitBreakerConfig()
	} else {
		breakerCfg = resilience.NormalizeCircuitBreakerConfig(breakerCfg)
	}
	var breaker *resilience.CircuitBreaker
	if breakerCfg.Enabled {
		breaker = resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq)
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		year:       cfg.Year,
		logger:     logger,
		cache:      cache.NewStore(cacheTTL),
		breaker:    breaker,
	}
}

// FetchWeek returns every game ESPN lists for the given regular-season week.
func (c *Client) FetchWeek(ctx context.Context, week int) ([]usecase.FeedMatch, error) {
	if week <= 0 {
		return nil, fmt.Errorf("week must be greater than zero")
	}

	query := map[string]string{
		"week":       strconv.Itoa(week),
		"seasontype": regularSeasonType,
	}
	if c.year > 0 {
		query["year"] = strconv.Itoa(c.year)
	}

	var envelope scoreboardEnvelope
	if err := c.doJSON(ctx, "/scoreboard", query, &envelope); err != nil {
		return nil, fmt.Errorf("fetch scoreboard week=%d: %w", week, err)
	}

	out := make([]usecase.FeedMatch, 0, len(envelope.Events))
	for _, event := range envelope.Events {
		item, ok := mapEvent(event, week)
		if !ok {
			c.logger.WarnContext(ctx, "skipping malformed espn event", "event_id", event.ID)
			continue
		}
		out = append(out, item)
	}

	return out, nil
}

// CurrentWeek returns the week number ESPN reports on the live scoreboard.
func (c *Client) CurrentWeek(ctx context.Context) (int, error) {
	var envelope scoreboardEnvelope
	if err := c.doJSON(ctx, "/scoreboard", nil, &envelope); err != nil {
		return 0, fmt.Errorf("fetch current scoreboard: %w", err)
	}

	if envelope.Week.Number > 0 {
		return envelope.Week.Number, nil
	}
	return 0, crerr.WithDetail(errEmptyScoreboard, "scoreboard week number missing")
}

func (c *Client) doJSON(ctx context.Context, path string, query map[string]string, target any) error {
	values := url.Values{}
	for key, value := range query {
		values.Set(key, value)
	}

	fullURL := c.baseURL + path
	if encoded := values.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	out, err := c.cache.GetOrLoad(ctx, fullURL, func(ctx context.Context) (any, error) {
		return c.executeRequest(ctx, fullURL)
	})
	if err != nil {
		return err
	}

	raw, ok := out.([]byte)
	if !ok {
		return fmt.Errorf("unexpected response payload type %T", out)
	}

	if err := sonic.Unmarshal(raw, target); err != nil {
		return crerr.Wrap(err, "decode espn payload")
	}
	return nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	if c.breaker != nil {
		if err := c.breaker.Allow(); err != nil {
			return nil, crerr.Wrap(usecase.ErrDependencyUnavailable, "espn circuit open")
		}
	}

	raw, err := c.send(ctx, fullURL)
	if c.breaker != nil {
		if err != nil {
			c.breaker.RecordFailure()
		} else {
			c.breaker.RecordSuccess()
		}
	}
	return raw, err
}

func (c *Client) send(ctx context.Context, fullURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, crerr.Wrap(err, "build espn request")
	}
	req.Header.Set("accept", "application/json")
	req.Header.Set("user-agent", "pickem/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, crerr.Wrap(err, "send espn request")
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	if _, err := io.Copy(buf, io.LimitReader(resp.Body, maxResponseSize)); err != nil {
		return nil, crerr.Wrap(err, "read espn response body")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.WarnContext(ctx, "espn request failed", "url", fullURL, "status", resp.StatusCode)
		return nil, crerr.Newf("espn status=%d body=%s", resp.StatusCode, abbreviateBody(buf.Bytes()))
	}

	raw := make([]byte, buf.Len())
	copy(raw, buf.Bytes())
	return raw, nil
}

func mapEvent(event scoreboardEvent, fallbackWeek int) (usecase.FeedMatch, bool) {
	if event.ID == "" || len(event.Competitions) == 0 {
		return usecase.FeedMatch{}, false
	}

	competitors := event.Competitions[0].Competitors
	if len(competitors) != 2 {
		return usecase.FeedMatch{}, false
	}

	var home, away competitor
	for _, item := range competitors {
		switch item.HomeAway {
		case "home":
			home = item
		case "away":
			away = item
		}
	}
	if home.Team.Abbreviation == "" || away.Team.Abbreviation == "" {
		return usecase.FeedMatch{}, false
	}

	startTime, ok := parseEventDate(event.Date)
	if !ok {
		return usecase.FeedMatch{}, false
	}

	week := event.Week.Number
	if week <= 0 {
		week = fallbackWeek
	}

	item := usecase.FeedMatch{
		ExternalID:   "espn-" + event.ID,
		Week:         week,
		HomeTeamAbbr: home.Team.Abbreviation,
		AwayTeamAbbr: away.Team.Abbreviation,
		StartTime:    startTime,
		IsCompleted:  event.Status.Type.Completed,
	}

	if item.IsCompleted {
		if homeScore, err := strconv.Atoi(home.Score); err == nil {
			item.HomeScore = &homeScore
		}
		if awayScore, err := strconv.Atoi(away.Score); err == nil {
			item.AwayScore = &awayScore
		}
		switch {
		case home.Winner:
			item.WinnerAbbr = home.Team.Abbreviation
		case away.Winner:
			item.WinnerAbbr = away.Team.Abbreviation
		}
	}

	return item, true
}

// parseEventDate accepts both RFC 3339 and the minute-precision variant the
// scoreboard uses ("2025-09-07T17:00Z").
func parseEventDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
		return parsed.UTC(), true
	}
	if parsed, err := time.Parse("2006-01-02T15:04Z07:00", raw); err == nil {
		return parsed.UTC(), true
	}
	return time.Time{}, false
}

func abbreviateBody(raw []byte) string {
	const limit = 256
	text := strings.TrimSpace(string(raw))
	if len(text) <= limit {
		return text
	}
	return text[:limit] + "..."
}

type scoreboardEnvelope struct {
	Week struct {
		Number int `json:"number"`
	} `json:"week"`
	Events []scoreboardEvent `json:"events"`
}

type scoreboardEvent struct {
	ID   string `json:"id"`
	Date string `json:"date"`
	Week struct {
		Number int `json:"number"`
	} `json:"week"`
	Competitions []competition `json:"competitions"`
	Status       struct {
		Type struct {
			Completed bool `json:"completed"`
		} `json:"type"`
	} `json:"status"`
}

type competition struct {
	Competitors []competitor `json:"competitors"`
}

type competitor struct {
	HomeAway string `json:"homeAway"`
	Score    string `json:"score"`
	Winner   bool   `json:"winner"`
	Team     struct {
		ID           string `json:"id"`
		DisplayName  string `json:"displayName"`
		Abbreviation string `json:"abbreviation"`
	} `json:"team"`
}
