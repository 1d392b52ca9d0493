package httpx

import (
	"log/slog"
	"net/http"

	"github.com/tailfin-labs/tailfin/internal/core"
	"github.com/tailfin-labs/tailfin/internal/service"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Reconciler  *service.Reconciler
	Matcher     *service.Matcher
	Jobs        core.JobRepository
	Credentials core.CredentialRepository
	Queue       core.QueueRepository
	Pools       core.DestinationPools

	MaxBodyBytes int64
	Logger       *slog.Logger
}

// NewRouter creates and configures the HTTP router.
func NewRouter(services RouterServices) http.Handler {
	mux := http.NewServeMux()

	webhookHandlers := NewWebhookHandlers(WebhookHandlersOptions{
		Matcher:      services.Matcher,
		MaxBodyBytes: services.MaxBodyBytes,
		Logger:       services.Logger,
	})
	jobHandlers := NewJobHandlers(JobHandlersOptions{
		Reconciler: services.Reconciler,
		Jobs:       services.Jobs,
		Logger:     services.Logger,
	})
	credentialHandlers := NewCredentialHandlers(CredentialHandlersOptions{
		Credentials: services.Credentials,
		Pools:       services.Pools,
		Logger:      services.Logger,
	})
	queueHandlers := NewQueueHandlers(QueueHandlersOptions{
		Queue:  services.Queue,
		Logger: services.Logger,
	})

	mux.HandleFunc("POST /api/webhook/events", webhookHandlers.Receive)

	mux.HandleFunc("POST /api/jobs", jobHandlers.Create)
	mux.HandleFunc("GET /api/jobs", jobHandlers.List)
	mux.HandleFunc("GET /api/jobs/{id}", jobHandlers.Get)
	mux.HandleFunc("DELETE /api/jobs/{id}", jobHandlers.Delete)
	mux.HandleFunc("POST /api/jobs/{id}/status", jobHandlers.SetStatus)

	mux.HandleFunc("POST /api/credentials", credentialHandlers.Create)
	mux.HandleFunc("GET /api/credentials", credentialHandlers.List)
	mux.HandleFunc("DELETE /api/credentials/{id}", credentialHandlers.Delete)
	mux.HandleFunc("POST /api/credentials/{id}/test", credentialHandlers.TestConnection)

	mux.HandleFunc("GET /api/queue/stats", queueHandlers.Stats)

	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))

	var handler http.Handler = mux
	handler = Logging(services.Logger)(handler)
	handler = Recover(services.Logger)(handler)
	return handler
}
