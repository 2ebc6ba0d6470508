package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerPickRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("POST /v1/picks", handler.SubmitPick)
	mux.HandleFunc("GET /v1/users/{userID}/picks/{week}", handler.GetActivePick)
	mux.HandleFunc("GET /v1/users/{userID}/team-usage", handler.GetTeamUsage)
	mux.HandleFunc("GET /v1/users/{userID}/availability/{week}", handler.GetTeamAvailability)
}

func registerScheduleRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/weeks/current", handler.GetCurrentWeek)
	mux.HandleFunc("GET /v1/weeks/{week}/matches", handler.ListWeekMatches)
}

func registerStandingsRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/leaderboard", handler.GetLeaderboard)
	mux.HandleFunc("GET /v1/users/{userID}/score", handler.GetUserScore)
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/jobs/result-sync", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunResultSyncJob)))
}
