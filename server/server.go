package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/Daskott/zantag/server/auth/key"
	"github.com/Daskott/zantag/server/gstorage"
	"github.com/Daskott/zantag/server/logger"
	"github.com/Daskott/zantag/server/mailer"
	"github.com/Daskott/zantag/server/models"
	"github.com/Daskott/zantag/server/ocr"
	"github.com/Daskott/zantag/server/ratelimit"
	"github.com/Daskott/zantag/server/twilio"
	"github.com/Daskott/zantag/server/work"
	"github.com/Daskott/zantag/shared"
	"github.com/go-playground/validator"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const DEFAULT_MAX_UPLOAD_MB = 10

var (
	logg     = logger.NewNamedLogger("server")
	validate = validator.New()

	appConfig   shared.ServerConfig
	configDir   string
	authKeyPair *key.KeyPair
	jobQueue    work.Enqueuer
	objectStore gstorage.ObjectStore
	backupStore *gstorage.GStorage
	ocrEngine   ocr.Engine
	mailClient  mailer.Mailer
	smsClient   twilio.Notifier
	limiter     RateLimiter
)

// RateLimiter reports whether the caller id may hit bucket again.
type RateLimiter interface {
	Allow(ctx context.Context, bucket, id string) (bool, error)
}

func init() {
	if err := RegisterValidators(validate); err != nil {
		panic(err)
	}
}

// Start wires every dependency from config, serves the API & blocks until
// SIGINT/SIGTERM, then shuts down gracefully. engine may be nil, card scans
// then always fall back to manual entry.
func Start(config *shared.ServerConfig, devMode bool, engine ocr.Engine) {
	var err error

	appConfig = *config
	configDir = configDirectory(devMode)
	ocrEngine = engine

	authKeyPair, err = loadKeyPair(config.Zantag.PrivateKeyPem, devMode)
	fatalOnError(err)

	storageConfig := config.Google.Storage
	if storageConfig.Configured() {
		gStorage, err := gstorage.NewGStorage(config.Google.ApplicationCredentials, storageConfig.Bucket, storageConfig.Prefix)
		fatalOnError(err)

		objectStore = gStorage
		if storageConfig.EnableSqliteBackupAndSync {
			backupStore = gStorage
			fatalOnError(restoreSqliteDb())
		}
	} else {
		logg.Warn("No storage bucket configured, storing uploads on local disk")
		objectStore, err = gstorage.NewDiskStore(filepath.Join(configDir, "objects"))
		fatalOnError(err)
	}

	err = models.AutoMigrate(config.Sqlite.PassPhrase, configDir)
	fatalOnError(err)

	mailClient = newMailer(config.Google.Gmail, devMode)
	smsClient = twilio.NewClient(config.Twilio, devMode)

	redisClient, err := ratelimit.NewClient(context.Background(), config.Redis.URL)
	if err != nil {
		logg.Warnf("Rate limiting disabled: %v", err)
	}
	limiter = ratelimit.NewLimiter(redisClient, config.Redis)

	workerPool := work.NewWorkerAdapter(config.Zantag.Cron.TimeZone)
	jobQueue = workerPool
	fatalOnError(registerJobHandlers(workerPool))
	fatalOnError(enqueuePeriodicJobs(workerPool))
	fatalOnError(workerPool.Start())

	server := &http.Server{
		Addr:              fmt.Sprintf(":%v", config.Zantag.Listener.Port),
		Handler:           newRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go serve(server)

	// Setting up signal capturing
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	// Waiting for SIGINT (kill -2) or SIGTERM
	<-stop

	cleanup(workerPool, server, backupStore != nil)
}

func newRouter() *mux.Router {
	router := mux.NewRouter()
	router.Use(loggingMiddleware)

	router.HandleFunc("/health", health).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(initialContextMiddleware)

	api.HandleFunc("/signup", signUp).Methods("POST")
	api.HandleFunc("/verify", verifyEmail).Methods("GET")
	api.Handle("/login", rateLimitMiddleware(ratelimit.LoginAttempts, clientIP, logIn)).Methods("POST")
	api.HandleFunc("/jwks", jwks).Methods("GET")
	api.HandleFunc("/settings", publicSettings).Methods("GET")
	api.HandleFunc("/profiles/{username}", publicProfile).Methods("GET")
	api.HandleFunc("/profiles/{username}/vcard", profileVCard).Methods("GET")
	api.HandleFunc("/profiles/{username}/avatar", profileAvatar).Methods("GET")
	api.Handle("/profiles/{username}/leads", rateLimitMiddleware(ratelimit.LeadSubmissions, clientIP, submitLead)).Methods("POST")
	api.HandleFunc("/documents/{id:[0-9]+}/download", downloadDocument).Methods("GET")

	me := api.PathPrefix("/me").Subrouter()
	me.Use(protectedRouteMiddleware, verifiedEmailMiddleware)
	me.HandleFunc("", findMe).Methods("GET")
	me.HandleFunc("/password", changePassword).Methods("PUT")
	me.HandleFunc("/profile", setupProfile).Methods("POST")
	me.HandleFunc("/profile", findMyProfile).Methods("GET")
	me.HandleFunc("/profile", updateMyProfile).Methods("PUT")
	me.HandleFunc("/profile/avatar", uploadAvatar).Methods("POST")
	me.HandleFunc("/leads", fetchMyLeads).Methods("GET")
	me.HandleFunc("/leads", createMyLead).Methods("POST")
	me.HandleFunc("/leads/scan", scanLead).Methods("POST")
	me.HandleFunc("/leads/{id:[0-9]+}", deleteMyLead).Methods("DELETE")
	me.HandleFunc("/documents", fetchMyDocuments).Methods("GET")
	me.HandleFunc("/documents", uploadDocument).Methods("POST")
	me.HandleFunc("/documents/{id:[0-9]+}", deleteMyDocument).Methods("DELETE")
	me.HandleFunc("/analytics", myAnalytics).Methods("GET")

	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(protectedRouteMiddleware, verifiedEmailMiddleware)
	admin.Handle("/users", adminRouteMiddleware(http.HandlerFunc(fetchUsers))).Methods("GET")
	admin.Handle("/users/{id:[0-9]+}", adminRouteMiddleware(http.HandlerFunc(updateUser))).Methods("PUT")
	admin.Handle("/users/{id:[0-9]+}", adminRouteMiddleware(http.HandlerFunc(deleteUser))).Methods("DELETE")
	admin.Handle("/users/{id:[0-9]+}/reset-password", adminRouteMiddleware(http.HandlerFunc(resetUserPassword))).Methods("POST")
	admin.Handle("/organizations", adminRouteMiddleware(http.HandlerFunc(fetchOrganizations))).Methods("GET")
	admin.Handle("/organizations", adminRouteMiddleware(http.HandlerFunc(createOrganization))).Methods("POST")
	admin.Handle("/organizations/{id:[0-9]+}", adminRouteMiddleware(http.HandlerFunc(updateOrganization))).Methods("PUT")
	admin.Handle("/organizations/{id:[0-9]+}", adminRouteMiddleware(http.HandlerFunc(deleteOrganization))).Methods("DELETE")
	admin.Handle("/organizations/{id:[0-9]+}/staff", businessAdminRouteMiddleware(http.HandlerFunc(fetchOrganizationStaff))).Methods("GET")
	admin.Handle("/invitations", businessAdminRouteMiddleware(http.HandlerFunc(fetchInvitations))).Methods("GET")
	admin.Handle("/invitations", businessAdminRouteMiddleware(http.HandlerFunc(createInvitation))).Methods("POST")
	admin.Handle("/invitations/{id:[0-9]+}", businessAdminRouteMiddleware(http.HandlerFunc(deleteInvitation))).Methods("DELETE")
	admin.Handle("/settings", adminRouteMiddleware(http.HandlerFunc(findSettings))).Methods("GET")
	admin.Handle("/settings", adminRouteMiddleware(http.HandlerFunc(updateSettings))).Methods("PUT")
	admin.Handle("/jobs", adminRouteMiddleware(http.HandlerFunc(fetchJobs))).Methods("GET")
	admin.Handle("/jobs/stats", adminRouteMiddleware(http.HandlerFunc(jobsStats))).Methods("GET")

	return router
}

// ---------------------------------------------------------------------------------//
// Helper functions
// --------------------------------------------------------------------------------//

func loadKeyPair(privateKeyPem string, devMode bool) (*key.KeyPair, error) {
	if privateKeyPem != "" {
		return key.NewKeyPairFromRSAPrivateKeyPem(privateKeyPem)
	}

	if !devMode {
		return nil, fmt.Errorf("zantag.privateKeyPem is required outside dev mode")
	}

	logg.Warn("No private key configured, generating a throwaway key pair")
	return key.GenerateKeyPair()
}

func newMailer(config shared.GmailConfig, devMode bool) mailer.Mailer {
	if devMode || !config.Configured() {
		return mailer.LogMailer{}
	}

	gmailMailer, err := mailer.NewGmailMailer(context.Background(), config)
	if err != nil {
		logg.Errorf("Falling back to log mailer: %v", err)
		return mailer.LogMailer{}
	}

	return gmailMailer
}

func maxUploadBytes() int64 {
	mb := appConfig.Zantag.MaxUploadMb
	if mb <= 0 {
		mb = DEFAULT_MAX_UPLOAD_MB
	}
	return int64(mb) << 20
}
