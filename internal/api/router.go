package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/maturitylab/compass/internal/middleware"
	"github.com/maturitylab/compass/internal/services"
)

// Router wires the engine's services onto an HTTP mux. All services see the
// store only through their narrow adapter interfaces.
type Router struct {
	store         Store
	auth          *services.AuthService
	catalog       *services.CatalogService
	surveys       *services.SurveyService
	reports       *services.ReportService
	benchmarks    *services.BenchmarkService
	subscriptions *services.SubscriptionService
	validate      *validator.Validate
}

func NewRouter(store Store, adminEmails []string) *Router {
	subscriptions := services.NewSubscriptionService(newSubscriptionStoreAdapter(store))
	calc := services.NewCalculator(newCatalogStoreAdapter(store))
	benchmarkStore := newBenchmarkStoreAdapter(store)
	return &Router{
		store:         store,
		auth:          services.NewAuthService(newAuthStoreAdapter(store), middleware.SignToken, adminEmails),
		catalog:       services.NewCatalogService(newCatalogStoreAdapter(store)),
		surveys:       services.NewSurveyService(newSurveyStoreAdapter(store), calc, subscriptions),
		reports:       services.NewReportService(newReportStoreAdapter(store), benchmarkStore, subscriptions, nil),
		benchmarks:    services.NewBenchmarkService(benchmarkStore),
		subscriptions: subscriptions,
		validate:      validator.New(),
	}
}

func (rt *Router) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/auth/register", rt.handleRegister)       // POST
	mux.HandleFunc("/api/auth/login", rt.handleLogin)             // POST
	mux.HandleFunc("/api/questions", rt.handleQuestions)          // GET
	mux.HandleFunc("/api/surveys/baseline", rt.handleBaseline)    // POST
	mux.HandleFunc("/api/surveys/quarterly", rt.handleQuarterly)  // POST
	mux.HandleFunc("/api/surveys/pulse", rt.handlePulse)          // POST
	mux.HandleFunc("/api/surveys/", rt.handleSurveyScoped)        // GET {id}, GET/POST {id}/report
	mux.HandleFunc("/api/benchmarks", rt.handleBenchmarks)        // POST (admin)
	mux.HandleFunc("/api/benchmarks/latest", rt.handleLatestBenchmark)
	mux.HandleFunc("/api/subscriptions", rt.handleSubscriptions) // POST (admin)
	mux.HandleFunc("/api/subscriptions/me", rt.handleMySubscription)
	mux.HandleFunc("/api/audit", rt.handleAudit) // GET (admin)
}

func identityFrom(r *http.Request) services.Identity {
	c, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		return services.Identity{}
	}
	return services.Identity{UserID: c.UID, OrgID: c.OID, Role: c.Role}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func statusForCode(code services.ErrorCode) int {
	switch code {
	case services.ErrorInvalid:
		return http.StatusBadRequest
	case services.ErrorUnauthorized:
		return http.StatusUnauthorized
	case services.ErrorPaymentRequired:
		return http.StatusPaymentRequired
	case services.ErrorForbidden, services.ErrorLocked:
		return http.StatusForbidden
	case services.ErrorNotFound:
		return http.StatusNotFound
	case services.ErrorConflict:
		return http.StatusConflict
	case services.ErrorUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	if se, ok := services.AsServiceError(err); ok {
		body := map[string]any{"error": se.Message}
		if se.NextEligibleAt != nil {
			body["next_eligible_at"] = se.NextEligibleAt.UTC().Format(time.RFC3339)
		}
		writeJSON(w, statusForCode(se.Code), body)
		return
	}
	if errors.Is(err, context.DeadlineExceeded) {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"error": "store temporarily unavailable"})
		return
	}
	log.Printf("api: unexpected error: %v", err)
	writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "internal error"})
}

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	OrgName  string `json:"org_name" validate:"required"`
}

func (rt *Router) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"})
		return
	}
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, services.NewInvalidError("malformed request body"))
		return
	}
	if err := rt.validate.Struct(req); err != nil {
		writeError(w, services.NewInvalidError(err.Error()))
		return
	}
	res, err := rt.auth.Register(req.Email, req.Password, req.OrgName)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"token": res.Token, "org_id": res.OrgID, "user_id": res.UserID})
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (rt *Router) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"})
		return
	}
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, services.NewInvalidError("malformed request body"))
		return
	}
	if err := rt.validate.Struct(req); err != nil {
		writeError(w, services.NewInvalidError(err.Error()))
		return
	}
	res, err := rt.auth.Login(req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"token": res.Token, "org_id": res.OrgID, "user_id": res.UserID})
}

func (rt *Router) handleQuestions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"})
		return
	}
	qs, err := rt.catalog.ActiveQuestions()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"questions": qs})
}

// submitRequest carries either answer encoding; the union stays raw here and
// is resolved by the survey service after its gates pass.
type submitRequest struct {
	Answers        map[string]any `json:"answers"`
	CatalogVersion int            `json:"catalog_version"`
}

type submitFunc func(services.Identity, services.RawAnswers) (*services.SubmissionResult, error)

func (rt *Router) handleSubmit(w http.ResponseWriter, r *http.Request, submit submitFunc) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"})
		return
	}
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, services.NewInvalidError("malformed request body"))
		return
	}
	raw := services.RawAnswers{Answers: req.Answers, CatalogVersion: req.CatalogVersion}
	res, err := submit(identityFrom(r), raw)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"survey_id": res.SurveyID, "scores": res.Scores, "total": res.Total})
}

func (rt *Router) handleBaseline(w http.ResponseWriter, r *http.Request) {
	rt.handleSubmit(w, r, rt.surveys.SubmitBaseline)
}

func (rt *Router) handleQuarterly(w http.ResponseWriter, r *http.Request) {
	rt.handleSubmit(w, r, rt.surveys.SubmitQuarterly)
}

func (rt *Router) handlePulse(w http.ResponseWriter, r *http.Request) {
	rt.handleSubmit(w, r, rt.surveys.SubmitPulse)
}

// GET /api/surveys/{id}
// GET|POST /api/surveys/{id}/report
func (rt *Router) handleSurveyScoped(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/surveys/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	switch {
	case len(parts) == 1 && parts[0] != "":
		if r.Method != http.MethodGet {
			writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"})
			return
		}
		sv, err := rt.surveys.GetSurvey(identityFrom(r), parts[0])
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sv)
	case len(parts) == 2 && parts[1] == "report":
		if r.Method != http.MethodGet && r.Method != http.MethodPost {
			writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"})
			return
		}
		res, err := rt.reports.GenerateReport(identityFrom(r), parts[0])
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"report_id": res.Report.ID,
			"pdf_url":   "/api/reports/" + res.Report.ID + "/pdf",
			"summary":   res.Report.Summary,
			"existed":   res.Existed,
		})
	default:
		http.NotFound(w, r)
	}
}

type benchmarkRequest struct {
	Year   int                `json:"year" validate:"required,gte=2000,lte=2100"`
	Source string             `json:"source" validate:"required"`
	Scores map[string]float64 `json:"scores" validate:"required"`
}

func (rt *Router) handleBenchmarks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"})
		return
	}
	var req benchmarkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, services.NewInvalidError("malformed request body"))
		return
	}
	if err := rt.validate.Struct(req); err != nil {
		writeError(w, services.NewInvalidError(err.Error()))
		return
	}
	bm := &services.Benchmark{Year: req.Year, Source: req.Source, Scores: services.CategoryScores{}}
	for k, v := range req.Scores {
		bm.Scores[services.Category(k)] = v
	}
	res, err := rt.benchmarks.Upsert(identityFrom(r), bm)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (rt *Router) handleLatestBenchmark(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"})
		return
	}
	bm, err := rt.benchmarks.Latest()
	if err != nil {
		writeError(w, err)
		return
	}
	if bm == nil {
		writeError(w, services.NewNotFoundError("no benchmark snapshot"))
		return
	}
	writeJSON(w, http.StatusOK, bm)
}

type subscriptionRequest struct {
	OrgID        string     `json:"org_id" validate:"required"`
	Plan         string     `json:"plan" validate:"required,oneof=free premium"`
	Status       string     `json:"status" validate:"required,oneof=active trialing past_due canceled"`
	ExpiresAt    *time.Time `json:"expires_at"`
	NeverExpires bool       `json:"never_expires"`
}

func (rt *Router) handleSubscriptions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"})
		return
	}
	var req subscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, services.NewInvalidError("malformed request body"))
		return
	}
	if err := rt.validate.Struct(req); err != nil {
		writeError(w, services.NewInvalidError(err.Error()))
		return
	}
	sub := &services.Subscription{
		OrgID:        req.OrgID,
		Plan:         services.Plan(req.Plan),
		Status:       services.SubscriptionStatus(req.Status),
		ExpiresAt:    req.ExpiresAt,
		NeverExpires: req.NeverExpires,
	}
	res, err := rt.subscriptions.SetPlan(identityFrom(r), sub)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (rt *Router) handleAudit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"})
		return
	}
	id := identityFrom(r)
	if id.UserID == "" {
		writeError(w, services.NewUnauthorizedError("authentication required"))
		return
	}
	if id.Role != "admin" {
		writeError(w, services.NewForbiddenError("admin role required"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": rt.store.ListAudit()})
}

func (rt *Router) handleMySubscription(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"})
		return
	}
	sub, err := rt.subscriptions.Current(identityFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}
