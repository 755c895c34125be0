package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	firebasesdk "firebase.google.com/go/v4"
	"github.com/cmlabs-hris/attendance-backend-go/internal/config"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/duty"
	appHTTP "github.com/cmlabs-hris/attendance-backend-go/internal/handler/http"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/cron"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/docstore"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/firebase"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/location"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/sse"
	"github.com/cmlabs-hris/attendance-backend-go/internal/repository/document"
	firestorerepo "github.com/cmlabs-hris/attendance-backend-go/internal/repository/firestore"
	"github.com/cmlabs-hris/attendance-backend-go/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/attendance-backend-go/internal/service/attendance"
	serviceAuth "github.com/cmlabs-hris/attendance-backend-go/internal/service/auth"
	dutyService "github.com/cmlabs-hris/attendance-backend-go/internal/service/duty"
	employeeService "github.com/cmlabs-hris/attendance-backend-go/internal/service/employee"
	leaveService "github.com/cmlabs-hris/attendance-backend-go/internal/service/leave"
	reportService "github.com/cmlabs-hris/attendance-backend-go/internal/service/report"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	loc, err := cfg.TimeLocation()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var fbApp *firebasesdk.App
	if cfg.Store.Driver == config.StoreFirestore || cfg.Identity.Provider == config.IdentityFirebase {
		fbApp, err = firebase.NewApp(ctx, firebase.Config{
			ProjectID:       cfg.Firebase.ProjectID,
			CredentialsFile: cfg.Firebase.CredentialsFile,
			APIKey:          cfg.Firebase.APIKey,
		})
		if err != nil {
			return err
		}
	}

	store, closeStore, err := openStore(ctx, cfg, fbApp)
	if err != nil {
		return err
	}
	defer closeStore()

	identity, err := openIdentity(ctx, cfg, fbApp, store)
	if err != nil {
		return err
	}

	userRepo := document.NewUserRepository(store)
	attendanceRepo := document.NewAttendanceRepository(store)
	dutyStatusRepo := document.NewDutyStatusRepository(store)
	leaveRequestRepo := document.NewLeaveRequestRepository(store)

	JWTService, err := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	if err != nil {
		return fmt.Errorf("invalid jwt configuration: %w", err)
	}

	hub := sse.NewHub()
	locations := location.NewProvider(time.Now)

	unsubscribe := identity.OnAuthStateChange(func(state auth.AuthState) {
		slog.Info("Auth state changed", "subject_id", state.SubjectID, "event", state.Event)
		hub.Publish(sse.UserChannel(state.SubjectID), sse.Event{
			Event: "auth." + string(state.Event),
			Data:  map[string]any{"subject_id": state.SubjectID, "at": state.At.Format(time.RFC3339)},
		})
	})
	defer unsubscribe()

	dutySvc := dutyService.NewDutyService(
		userRepo,
		attendanceRepo,
		dutyStatusRepo,
		locations,
		hub,
		duty.WatchOptions{
			DistanceInterval: cfg.Location.DistanceInterval,
			TimeInterval:     cfg.Location.TimeInterval,
		},
		loc,
		time.Now,
	)
	defer dutySvc.Shutdown()

	authSvc := serviceAuth.NewAuthService(userRepo, JWTService, identity, dutySvc)
	attendanceSvc := attendanceService.NewAttendanceService(attendanceRepo, userRepo, loc, time.Now)
	reportSvc := reportService.NewReportService(userRepo, attendanceRepo, leaveRequestRepo, loc, time.Now)
	leaveSvc := leaveService.NewLeaveRequestService(leaveRequestRepo, userRepo, hub, time.Now)
	employeeSvc := employeeService.NewEmployeeService(userRepo, attendanceRepo, dutyStatusRepo, identity, time.Now)

	scheduler := cron.NewScheduler()
	cron.NewAttendanceJobs(attendanceSvc, cfg.Cron.StaleSessionInterval).RegisterJobs(scheduler)
	cron.NewAuthJobs(JWTService).RegisterJobs(scheduler)
	scheduler.Start()
	defer scheduler.Stop()

	router := appHTTP.NewRouter(appHTTP.RouterConfig{
		AppName:        cfg.App.Name,
		Version:        cfg.App.Version,
		Env:            cfg.App.Env,
		AllowedOrigins: cfg.App.AllowedOrigins,
		LogLevel:       cfg.SlogLevel(),
	}, JWTService, appHTTP.Handlers{
		Auth:       appHTTP.NewAuthHandler(authSvc),
		Duty:       appHTTP.NewDutyHandler(dutySvc),
		Attendance: appHTTP.NewAttendanceHandler(attendanceSvc, reportSvc),
		Leave:      appHTTP.NewLeaveHandler(leaveSvc),
		Employee:   appHTTP.NewEmployeeHandler(employeeSvc),
		Events:     appHTTP.NewEventsHandler(JWTService, hub),
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server running", "addr", server.Addr, "store", cfg.Store.Driver, "identity", cfg.Identity.Provider)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func openStore(ctx context.Context, cfg *config.Config, fbApp *firebasesdk.App) (docstore.Store, func(), error) {
	switch cfg.Store.Driver {
	case config.StorePostgres:
		db, err := database.NewPostgreSQLDB(cfg.DatabaseURL(), database.PoolOptions{
			MaxConns:        int32(cfg.Database.MaxConns),
			MinConns:        int32(cfg.Database.MinConns),
			MaxConnLifetime: cfg.Database.MaxConnLifetime,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("error connecting to database: %w", err)
		}
		store := postgresql.NewDocumentStore(db)
		if err := store.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		return store, db.Close, nil

	case config.StoreFirestore:
		client, err := fbApp.Firestore(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("error connecting to firestore: %w", err)
		}
		return firestorerepo.NewDocumentStore(client), func() { _ = client.Close() }, nil

	default:
		slog.Warn("Using the in-memory store: data is lost on restart")
		return docstore.NewMemory(), func() {}, nil
	}
}

func openIdentity(ctx context.Context, cfg *config.Config, fbApp *firebasesdk.App, store docstore.Store) (auth.IdentityProvider, error) {
	if cfg.Identity.Provider == config.IdentityFirebase {
		client, err := fbApp.Auth(ctx)
		if err != nil {
			return nil, fmt.Errorf("error initializing firebase auth: %w", err)
		}
		return firebase.NewIdentityProvider(client, cfg.Firebase.APIKey), nil
	}
	return serviceAuth.NewLocalIdentityProvider(store, cfg.Identity.BcryptCost), nil
}
