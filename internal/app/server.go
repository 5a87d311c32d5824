package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/specialistvlad/pagegridgo/internal/pageconfig"
	"github.com/specialistvlad/pagegridgo/internal/trigger"
	"github.com/specialistvlad/pagegridgo/internal/value"
)

// shutdownTimeout bounds graceful shutdown of the HTTP server.
const shutdownTimeout = 5 * time.Second

// Router returns the HTTP API.
func (a *App) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(a.requestLogger)

	r.Get("/health", a.healthHandler)
	r.Get("/eventtypes", a.eventTypesHandler)
	r.Get("/eventtypes/{name}/validate", a.validateDefinitionHandler)
	r.Get("/eventtypes/{name}/references", a.referencesHandler)
	r.Get("/pageconfig/{primary}", a.pageConfigHandler)
	r.Get("/validate/{primary}", a.validateHandler)
	r.Post("/actions/{name}", a.actionHandler)
	r.Get("/session", a.sessionHandler)
	return r
}

func (a *App) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a.logger.Debug("Request received",
			"request_id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
		)
		next.ServeHTTP(w, r)
	})
}

// Serve runs the HTTP server until ctx is cancelled, then shuts it down
// gracefully.
func (a *App) Serve(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", a.config.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           a.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("🩺 Server starting", "address", fmt.Sprintf("http://localhost%s", addr))
		// ListenAndServe returns ErrServerClosed on graceful shutdown.
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	a.logger.Info("🩺 Shutting down server...")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("Server shutdown failed", "error", err)
		return err
	}
	a.logger.Debug("Server shut down gracefully.")
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}

func (a *App) eventTypesHandler(w http.ResponseWriter, r *http.Request) {
	res, err := a.discovered(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (a *App) pageConfigHandler(w http.ResponseWriter, r *http.Request) {
	format, err := pageconfig.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	pc, err := a.Generate(r.Context(), chi.URLParam(r, "primary"))
	var missing *pageconfig.MissingPrimaryError
	switch {
	case errors.As(err, &missing):
		writeError(w, http.StatusNotFound, err)
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	data, err := pageconfig.Marshal(pc, format)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	contentType := "application/json"
	if format == pageconfig.FormatYAML {
		contentType = "application/yaml"
	}
	w.Header().Set("Content-Type", contentType)
	_, _ = w.Write(data)
}

func (a *App) validateHandler(w http.ResponseWriter, r *http.Request) {
	report, err := a.Validate(r.Context(), chi.URLParam(r, "primary"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (a *App) validateDefinitionHandler(w http.ResponseWriter, r *http.Request) {
	report, err := a.ValidateDefinition(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (a *App) referencesHandler(w http.ResponseWriter, r *http.Request) {
	refs, err := a.References(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, refs)
}

func (a *App) sessionHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.Session())
}

// actionHandler runs one action with the request body as its content. An
// empty body is null content.
func (a *App) actionHandler(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	content := value.Null()
	if len(body) > 0 {
		if content, err = value.ParseJSON(body); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid content: %w", err))
			return
		}
	}

	result, err := a.ExecAction(r.Context(), chi.URLParam(r, "name"), content)
	var loadErr *trigger.LoadError
	switch {
	case errors.As(err, &loadErr):
		writeError(w, http.StatusNotFound, err)
		return
	case err != nil:
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]value.Value{"result": result})
}
