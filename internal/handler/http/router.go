package http

import (
	"log/slog"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/httprate"
	"github.com/go-chi/jwtauth/v5"

	"github.com/kintai-hq/kintai-backend-go/internal/config"
	"github.com/kintai-hq/kintai-backend-go/internal/handler/http/middleware"
	"github.com/kintai-hq/kintai-backend-go/internal/pkg/jwt"
)

func NewRouter(
	cfg *config.Config,
	jwtService jwt.Service,
	attendanceHandler AttendanceHandler,
	approvalHandler ApprovalHandler,
	goalHandler GoalHandler,
	notificationHandler NotificationHandler,
) *chi.Mux {
	r := chi.NewRouter()

	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "kintai-backend"),
		slog.String("env", cfg.App.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.App.FrontendURL},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/healthz"))
	r.Use(httprate.LimitByIP(300, 1*time.Minute))

	r.Route("/api/v1", func(r chi.Router) {
		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(jwtService.JWTAuth()))
			r.Use(middleware.AuthRequired(jwtService.JWTAuth()))

			r.Route("/attendance", func(r chi.Router) {
				r.Post("/check-in", attendanceHandler.CheckIn)
				r.Post("/lunch-start", attendanceHandler.StartLunch)
				r.Post("/lunch-end", attendanceHandler.EndLunch)
				r.Post("/check-out", attendanceHandler.CheckOut)

				r.Get("/my", attendanceHandler.GetMyAttendance)
				r.Get("/my/summary", attendanceHandler.GetMonthlySummary)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", attendanceHandler.Get)
					r.Put("/", attendanceHandler.Update)
					r.Delete("/", attendanceHandler.Delete)
				})

				// Admin only
				r.Group(func(r chi.Router) {
					r.Use(middleware.AdminOnly)
					r.Get("/", attendanceHandler.List)
				})
			})

			r.Route("/approvals", func(r chi.Router) {
				r.Post("/", approvalHandler.File)
				r.Get("/my", approvalHandler.GetMyRequests)

				// Admin only
				r.Group(func(r chi.Router) {
					r.Use(middleware.AdminOnly)
					r.Get("/", approvalHandler.List)
					r.Post("/{id}/approve", approvalHandler.Approve)
					r.Post("/{id}/return", approvalHandler.Return)
					r.Post("/{id}/reject", approvalHandler.Reject)
				})
			})

			r.Route("/goals", func(r chi.Router) {
				r.Post("/", goalHandler.Create)
				r.Get("/my", goalHandler.GetMyGoals)
				r.Get("/assigned", goalHandler.GetAssignedGoals)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", goalHandler.Get)
					r.Put("/", goalHandler.Update)
					r.Delete("/", goalHandler.Delete)

					r.Post("/submit", goalHandler.Submit)
					r.Post("/approve-first", goalHandler.ApproveFirst)
					r.Post("/reject-first", goalHandler.RejectFirst)
					r.Post("/evaluate", goalHandler.Evaluate)
					r.Post("/approve-final", goalHandler.ApproveFinal)
					r.Post("/reject-final", goalHandler.RejectFinal)
				})

				// Admin only
				r.Group(func(r chi.Router) {
					r.Use(middleware.AdminOnly)
					r.Get("/", goalHandler.List)
				})
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", notificationHandler.List)
				r.Post("/{id}/read", notificationHandler.MarkRead)
			})
		})
	})

	return r
}
