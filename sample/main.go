package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"workdigest/internal/fakeapi"
	"workdigest/internal/logger"
)

// A local stand-in for the GitHub search and Jira JQL APIs.
// Point GITHUB_API_URL and JIRA_URL at it for a dry run of workdigest.

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           loggingMiddleware(newMux()),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("Fake backends listening", "url", "http://localhost:"+port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", "error", err)
		logger.Sync()
		os.Exit(1)
	}
	logger.Sync()
}

func newMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/search/", &fakeapi.GitHub{Issues: sampleGitHub()})
	mux.Handle("/rest/", &fakeapi.Jira{Pages: sampleJira()})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	return mux
}

func sampleGitHub() []map[string]any {
	return []map[string]any{
		fakeapi.PullRequest("acme/api", 101, "Add rate limiting to public endpoints", "2024-02-12T16:04:00Z",
			"Adds a token bucket in front of every public route."),
		fakeapi.PullRequest("acme/web", 57, "Fix dark mode contrast", "2024-05-03T09:30:00Z", ""),
		fakeapi.PullRequest("acme/api", 133, "Migrate search to the new index", "2024-09-21T11:15:00Z",
			"Cuts p95 search latency roughly in half."),
	}
}

func sampleJira() [][]map[string]any {
	return [][]map[string]any{
		{
			fakeapi.Issue("OPS-12", "Rotate database credentials", "2024-03-14T10:00:00.000+0000",
				fakeapi.Paragraph("Rotate the primary credentials and update the vault."),
				map[string]any{"customfield_10020": fakeapi.Paragraph("Old credentials revoked.")},
				fakeapi.Comment("Dana", "Done, verified in staging."),
			),
		},
		{
			fakeapi.Issue("WEB-88", "Audit accessibility of checkout", "2024-07-02T15:45:00.000+0000",
				"Plain text description.", nil),
		},
	}
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		logger.Info("Request", "method", r.Method, "path", r.URL.Path, "status", rec.status, "took", time.Since(start))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}
