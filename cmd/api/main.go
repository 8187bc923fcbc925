package main

import (
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/kintai-hq/kintai-backend-go/internal/config"
	appHTTP "github.com/kintai-hq/kintai-backend-go/internal/handler/http"
	"github.com/kintai-hq/kintai-backend-go/internal/pkg/clock"
	"github.com/kintai-hq/kintai-backend-go/internal/pkg/cron"
	"github.com/kintai-hq/kintai-backend-go/internal/pkg/database"
	"github.com/kintai-hq/kintai-backend-go/internal/pkg/email"
	"github.com/kintai-hq/kintai-backend-go/internal/pkg/jwt"
	"github.com/kintai-hq/kintai-backend-go/internal/repository/postgresql"
	approvalService "github.com/kintai-hq/kintai-backend-go/internal/service/approval"
	attendanceService "github.com/kintai-hq/kintai-backend-go/internal/service/attendance"
	goalService "github.com/kintai-hq/kintai-backend-go/internal/service/goal"
	notificationService "github.com/kintai-hq/kintai-backend-go/internal/service/notification"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL())
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		return
	}
	defer db.Close()

	orgClock, err := clock.New(cfg.Attendance.Timezone)
	if err != nil {
		log.Fatal("Failed to load organization time zone:", err)
	}

	attendanceRepo := postgresql.NewAttendanceRepository(db)
	approvalRepo := postgresql.NewApprovalRepository(db)
	goalRepo := postgresql.NewGoalRepository(db)
	employeeRepo := postgresql.NewEmployeeRepository(db)
	notificationRepo := postgresql.NewNotificationRepository(db)

	jwtService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)

	emailService, err := email.NewService(cfg.SMTP)
	if err != nil {
		log.Fatal("Failed to initialize email service:", err)
	}

	notificationSvc := notificationService.NewNotificationService(
		notificationRepo,
		employeeRepo,
		emailService,
		slog.Default(),
	)
	attendanceSvc := attendanceService.NewAttendanceService(
		attendanceRepo,
		approvalRepo,
		orgClock,
		cfg.Attendance,
	)
	approvalSvc := approvalService.NewApprovalService(
		approvalRepo,
		attendanceRepo,
		notificationSvc,
		db,
		orgClock,
	)
	goalSvc := goalService.NewGoalService(goalRepo, notificationSvc, orgClock)

	attendanceHandler := appHTTP.NewAttendanceHandler(attendanceSvc)
	approvalHandler := appHTTP.NewApprovalHandler(approvalSvc)
	goalHandler := appHTTP.NewGoalHandler(goalSvc)
	notificationHandler := appHTTP.NewNotificationHandler(notificationSvc)

	router := appHTTP.NewRouter(
		cfg,
		jwtService,
		attendanceHandler,
		approvalHandler,
		goalHandler,
		notificationHandler,
	)

	scheduler := cron.NewScheduler()
	cron.NewAttendanceJobs(attendanceRepo, employeeRepo, notificationSvc, orgClock).RegisterJobs(scheduler)
	scheduler.Start()
	defer scheduler.Stop()

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.App.Port),
		Handler: router,
	}

	go func() {
		fmt.Printf("Server running at http://localhost%s\n", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Println("Server error:", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("Shutting down...")
	_ = server.Close()
}
