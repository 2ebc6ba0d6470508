package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/offmue/pickem/internal/domain/match"
	"github.com/offmue/pickem/internal/domain/pick"
	"github.com/offmue/pickem/internal/infrastructure/repository/memory"
	idgen "github.com/offmue/pickem/internal/platform/id"
	"github.com/offmue/pickem/internal/platform/logging"
	"github.com/offmue/pickem/internal/usecase"
)

const testJobToken = "job-secret"

type stubFeed struct {
	byWeek map[int][]usecase.FeedMatch
}

func (f *stubFeed) FetchWeek(_ context.Context, week int) ([]usecase.FeedMatch, error) {
	return f.byWeek[week], nil
}

type apiFixture struct {
	router  http.Handler
	kickoff time.Time
}

func newAPIFixture(t *testing.T, feed usecase.ScheduleFeed) *apiFixture {
	t.Helper()

	kickoff := time.Now().UTC().Add(48 * time.Hour).Truncate(time.Second)
	matches := []match.Match{
		{ID: "espn-100", Week: 1, HomeTeamID: "phi", AwayTeamID: "dal", StartTime: kickoff},
		{ID: "espn-101", Week: 1, HomeTeamID: "kc", AwayTeamID: "den", StartTime: kickoff.Add(3 * time.Hour)},
		{ID: "espn-102", Week: 1, HomeTeamID: "buf", AwayTeamID: "bal", StartTime: time.Now().UTC().Add(-2 * time.Hour)},
		{ID: "espn-200", Week: 2, HomeTeamID: "dal", AwayTeamID: "kc", StartTime: kickoff.Add(7 * 24 * time.Hour)},
	}

	logger := logging.NewNop()
	teamRepo := memory.NewTeamRepository(memory.SeedTeams())
	matchRepo := memory.NewMatchRepository(matches)
	pickRepo := memory.NewPickRepository()
	usageRepo := memory.NewUsageRepository(pickRepo, matchRepo)
	userRepo := memory.NewUserRepository(memory.SeedUsers())

	pickService := usecase.NewPickService(userRepo, teamRepo, matchRepo, pickRepo, usageRepo, pick.DefaultRules(), idgen.NewRandomGenerator(), logger)
	scheduleService := usecase.NewScheduleService(matchRepo)
	scoringService := usecase.NewScoringService(userRepo, matchRepo, pickRepo, logger)
	resultSyncService := usecase.NewResultSyncService(feed, teamRepo, matchRepo, scoringService, 2, logger)

	handler := NewHandler(pickService, scheduleService, scoringService, resultSyncService, logger)
	router := NewRouter(handler, logger, []string{"*"}, testJobToken)

	return &apiFixture{router: router, kickoff: kickoff}
}

func (f *apiFixture) do(t *testing.T, method, path, body string, header map[string]string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, path, reader)
	for key, value := range header {
		req.Header.Set(key, value)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	var envelope map[string]any
	if rec.Body.Len() > 0 {
		if err := sonic.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
			t.Fatalf("unmarshal response body %q: %v", rec.Body.String(), err)
		}
	}

	return rec, envelope
}

func TestHealthz(t *testing.T) {
	fixture := newAPIFixture(t, &stubFeed{})

	rec, envelope := fixture.do(t, http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	data, _ := envelope["data"].(map[string]any)
	if got, _ := data["status"].(string); got != "ok" {
		t.Fatalf("expected status ok, got %v", data["status"])
	}
}

func TestSubmitPick_ThenFetchActivePick(t *testing.T) {
	fixture := newAPIFixture(t, &stubFeed{})

	rec, envelope := fixture.do(t, http.MethodPost, "/v1/picks",
		`{"user_id":"u-manuel","match_id":"espn-100","team_id":"phi"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d body=%s", rec.Code, rec.Body.String())
	}

	data, _ := envelope["data"].(map[string]any)
	pickObj, _ := data["pick"].(map[string]any)
	if got, _ := pickObj["chosenTeamId"].(string); got != "phi" {
		t.Fatalf("expected chosenTeamId=phi, got %v", pickObj["chosenTeamId"])
	}

	rec, envelope = fixture.do(t, http.MethodGet, "/v1/users/u-manuel/picks/1", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	data, _ = envelope["data"].(map[string]any)
	if got, _ := data["matchId"].(string); got != "espn-100" {
		t.Fatalf("expected matchId=espn-100, got %v", data["matchId"])
	}
}

func TestSubmitPick_ValidationFailure(t *testing.T) {
	fixture := newAPIFixture(t, &stubFeed{})

	rec, envelope := fixture.do(t, http.MethodPost, "/v1/picks",
		`{"user_id":"u-manuel","match_id":"espn-100"}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
	errorObj, _ := envelope["error"].(map[string]any)
	if got, _ := errorObj["status"].(string); got != "INVALID_ARGUMENT" {
		t.Fatalf("expected INVALID_ARGUMENT, got %v", errorObj["status"])
	}
}

func TestSubmitPick_DeadlinePassedConflict(t *testing.T) {
	fixture := newAPIFixture(t, &stubFeed{})

	rec, envelope := fixture.do(t, http.MethodPost, "/v1/picks",
		`{"user_id":"u-manuel","match_id":"espn-102","team_id":"buf"}`, nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d body=%s", rec.Code, rec.Body.String())
	}
	errorObj, _ := envelope["error"].(map[string]any)
	items, _ := errorObj["errors"].([]any)
	if len(items) != 1 {
		t.Fatalf("expected one error item, got %d", len(items))
	}
	item, _ := items[0].(map[string]any)
	if got, _ := item["reason"].(string); got != "deadlinePassed" {
		t.Fatalf("expected reason deadlinePassed, got %v", item["reason"])
	}
}

func TestGetActivePick_NoPickYieldsEmptyData(t *testing.T) {
	fixture := newAPIFixture(t, &stubFeed{})

	rec, envelope := fixture.do(t, http.MethodGet, "/v1/users/u-daniel/picks/1", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if _, ok := envelope["data"]; ok {
		t.Fatalf("expected no data key for missing pick, got %v", envelope["data"])
	}
}

func TestGetTeamAvailability(t *testing.T) {
	fixture := newAPIFixture(t, &stubFeed{})

	rec, envelope := fixture.do(t, http.MethodGet, "/v1/users/u-manuel/availability/1", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	items, _ := envelope["data"].([]any)
	if len(items) != len(memory.SeedTeams()) {
		t.Fatalf("expected %d teams, got %d", len(memory.SeedTeams()), len(items))
	}
}

func TestListWeekMatches_InvalidWeekPath(t *testing.T) {
	fixture := newAPIFixture(t, &stubFeed{})

	rec, _ := fixture.do(t, http.MethodGet, "/v1/weeks/nope/matches", "", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestGetCurrentWeek(t *testing.T) {
	fixture := newAPIFixture(t, &stubFeed{})

	rec, envelope := fixture.do(t, http.MethodGet, "/v1/weeks/current", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	data, _ := envelope["data"].(map[string]any)
	if got, _ := data["week"].(float64); got != 1 {
		t.Fatalf("expected current week 1, got %v", data["week"])
	}
}

func TestRunResultSyncJob_ScoresSubmittedPick(t *testing.T) {
	kickoff := time.Now().UTC().Add(48 * time.Hour).Truncate(time.Second)
	homeScore := 24
	awayScore := 17
	feed := &stubFeed{byWeek: map[int][]usecase.FeedMatch{
		1: {
			{
				ExternalID:   "espn-100",
				Week:         1,
				HomeTeamAbbr: "PHI",
				AwayTeamAbbr: "DAL",
				StartTime:    kickoff,
				IsCompleted:  true,
				WinnerAbbr:   "PHI",
				HomeScore:    &homeScore,
				AwayScore:    &awayScore,
			},
		},
	}}
	fixture := newAPIFixture(t, feed)

	rec, _ := fixture.do(t, http.MethodPost, "/v1/picks",
		`{"user_id":"u-manuel","match_id":"espn-100","team_id":"phi"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("submit pick: expected status 200, got %d body=%s", rec.Code, rec.Body.String())
	}

	rec, envelope := fixture.do(t, http.MethodPost, "/v1/internal/jobs/result-sync",
		`{"weeks":[1]}`, map[string]string{"X-Internal-Job-Token": testJobToken})
	if rec.Code != http.StatusOK {
		t.Fatalf("run job: expected status 200, got %d body=%s", rec.Code, rec.Body.String())
	}
	data, _ := envelope["data"].(map[string]any)
	if got, _ := data["picks_scored"].(float64); got != 1 {
		t.Fatalf("expected picks_scored=1, got %v", data["picks_scored"])
	}

	rec, envelope = fixture.do(t, http.MethodGet, "/v1/users/u-manuel/score", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get score: expected status 200, got %d", rec.Code)
	}
	data, _ = envelope["data"].(map[string]any)
	if got, _ := data["score"].(float64); got != 1 {
		t.Fatalf("expected score=1, got %v", data["score"])
	}

	rec, envelope = fixture.do(t, http.MethodGet, "/v1/leaderboard", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get leaderboard: expected status 200, got %d", rec.Code)
	}
	entries, _ := envelope["data"].([]any)
	if len(entries) != len(memory.SeedUsers()) {
		t.Fatalf("expected %d leaderboard rows, got %d", len(memory.SeedUsers()), len(entries))
	}
	top, _ := entries[0].(map[string]any)
	if got, _ := top["userId"].(string); got != "u-manuel" {
		t.Fatalf("expected u-manuel on top, got %v", top["userId"])
	}
}

func TestRunResultSyncJob_RejectsWithoutToken(t *testing.T) {
	fixture := newAPIFixture(t, &stubFeed{})

	rec, _ := fixture.do(t, http.MethodPost, "/v1/internal/jobs/result-sync", `{"weeks":[1]}`, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rec.Code)
	}
}
