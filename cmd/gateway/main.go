package main

import (
	"context"
	"log"
	"net/http"
	"time"

	api "github.com/pathwise/pathwise-gateway/internal/api/http"
	"github.com/pathwise/pathwise-gateway/internal/auth"
	"github.com/pathwise/pathwise-gateway/internal/backend"
	"github.com/pathwise/pathwise-gateway/internal/config"
	"github.com/pathwise/pathwise-gateway/internal/db"
	"github.com/pathwise/pathwise-gateway/internal/progress"
	"github.com/pathwise/pathwise-gateway/internal/quiz"
	"github.com/pathwise/pathwise-gateway/internal/uploads"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func main() {
	cfg := config.FromEnv()

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}
	store := progress.NewStore(dbh, cfg.DBDriver)

	// --- Backend client + services ---
	client := backend.New(cfg.BackendBaseURL, cfg.BackendTimeout)
	authSvc := auth.NewService(cfg.AuthSecret, cfg.SessionTTL)
	mgr := quiz.NewManager(quiz.WallClock{})
	uploader := uploads.NewUploader(client, store)
	onComplete := api.NewAttemptRecorder(store)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(2 * time.Minute))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Use(api.RelayBackendSession)
	r.Use(auth.Middleware(authSvc))

	// Authentication proxy: the backend owns the real session, the gateway
	// relays its cookies and adds its own signed identity cookie.
	r.Post("/auth/login", api.LoginHandler(client, authSvc))
	r.Post("/auth/signup", api.SignupHandler(client, authSvc))
	r.Post("/auth/logout", api.LogoutHandler(client))
	r.Get("/auth/me", api.MeHandler(client))

	// Topic content is readable without signing in; views are only recorded
	// for known users.
	r.Get("/topics/{topic}", api.SearchTopicHandler(client, store))
	r.Get("/topics/{topic}/resources/{kind}", api.TopicResourcesHandler(client))

	// Everything below needs a signed-in user.
	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireUser)

		pr.Route("/quiz", func(qr chi.Router) {
			qr.Post("/", api.CreateQuizHandler(client, mgr, onComplete))
			qr.Route("/{sessionID}", func(sr chi.Router) {
				sr.Get("/", api.GetQuizHandler(mgr))
				sr.Delete("/", api.DeleteQuizHandler(mgr))
				sr.Post("/start", api.StartQuizHandler(mgr))
				sr.Post("/answer", api.AnswerHandler(mgr))
				sr.Post("/clear", api.ClearAnswerHandler(mgr))
				sr.Post("/next", api.NextQuestionHandler(mgr))
				sr.Post("/previous", api.PreviousQuestionHandler(mgr))
				sr.Post("/goto", api.GotoQuestionHandler(mgr))
				sr.Post("/submit", api.SubmitQuizHandler(mgr))
				sr.Get("/results", api.QuizResultsHandler(mgr))
				sr.Get("/export", api.ExportQuizHandler(mgr))
				sr.Post("/report-card", api.ReportCardHandler(mgr))
				sr.Post("/uploads", api.UploadArtifactsHandler(mgr, uploader))
			})
		})

		pr.Route("/profile", func(prr chi.Router) {
			prr.Get("/summary", api.ProfileSummaryHandler(store))
			prr.Get("/attempts", api.ListAttemptsHandler(store))
			prr.Get("/attempts/{attemptID}", api.GetAttemptHandler(store))
			prr.Get("/topics", api.RecentTopicsHandler(store))
		})

		pr.Route("/downloads/{attemptID}/{fileType}", func(dr chi.Router) {
			dr.Get("/", api.DownloadHandler(client, store))
			dr.Get("/url", api.DownloadURLHandler(client, store))
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := dbh.PingContext(r.Context()); err != nil {
			http.Error(w, "db unavailable", 503)
			return
		}
		w.WriteHeader(200)
	})

	log.Printf("listening on %s (backend=%s, db=%s)", cfg.HTTPAddr, cfg.BackendBaseURL, cfg.DBDriver)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}
