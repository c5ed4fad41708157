// Package web serves the editable grid over HTTP.
package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/alexanderramin/objetivos/internal/domain"
	"github.com/alexanderramin/objetivos/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

//go:embed templates/*.html
var templateFS embed.FS

var gridTemplate = template.Must(template.ParseFS(templateFS, "templates/grid.html"))

// Pinger reports database reachability.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Options wires the handler's collaborators. Metrics may be nil.
type Options struct {
	Areas   service.AreaService
	DB      Pinger
	Store   *SnapshotStore
	Logger  *slog.Logger
	Metrics http.Handler
}

type handler struct {
	areas  service.AreaService
	db     Pinger
	store  *SnapshotStore
	logger *slog.Logger
}

// NewRouter builds the chi router for the editor.
func NewRouter(opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	h := &handler{areas: opts.Areas, db: opts.DB, store: opts.Store, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)

	r.Get("/", h.index)
	r.Post("/save", h.save)
	r.Get("/reload", h.reload)
	r.Get("/healthz", h.healthz)
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics)
	}
	return r
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.InfoContext(r.Context(), "http_request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}

func (h *handler) index(w http.ResponseWriter, r *http.Request) {
	h.renderFresh(w, r, http.StatusOK, nil)
}

func (h *handler) reload(w http.ResponseWriter, r *http.Request) {
	if token := r.URL.Query().Get("token"); token != "" {
		h.store.Delete(token)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *handler) healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := h.db.PingContext(ctx); err != nil {
		h.logger.WarnContext(ctx, "health check failed", "error", err)
		http.Error(w, "database unavailable", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (h *handler) save(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	token := r.PostForm.Get("token")
	original, ok := h.store.Get(token)
	if !ok {
		h.renderFresh(w, r, http.StatusConflict, []notice{{
			Kind: noticeWarning,
			Text: "A sessão de edição expirou. Os dados foram recarregados; refaça as alterações.",
		}})
		return
	}

	edited := original.Clone()
	overrides := map[string]string{}
	var notices []notice
	for _, row := range original.Rows {
		for _, f := range domain.WatchedFields() {
			key := inputName(row.ID, f)
			vals, posted := r.PostForm[key]
			if !posted || len(vals) == 0 {
				continue
			}
			if err := edited.ApplyInput(row.ID, f, vals[0]); err != nil {
				overrides[key] = vals[0]
				notices = append(notices, notice{
					Kind: noticeError,
					Text: fmt.Sprintf("Valor inválido em %s (id %d): use AAAA-MM-DD.", f.Label(), row.ID),
				})
			}
		}
	}
	if len(overrides) > 0 {
		h.render(w, http.StatusUnprocessableEntity, buildPage(edited, token, overrides, notices))
		return
	}

	res, err := h.areas.Save(r.Context(), original, edited)
	h.store.Delete(token)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "save failed", "error", err)
		h.renderFresh(w, r, http.StatusInternalServerError, []notice{{
			Kind: noticeError,
			Text: fmt.Sprintf("Erro ao salvar alterações: %v", err),
		}})
		return
	}

	switch {
	case res.PersistedCount() > 0:
		notices = append(notices, savedNotice(res.PersistedCount()))
	case len(res.Failed) == 0:
		notices = append(notices, notice{Kind: noticeInfo, Text: "Nenhuma modificação detectada."})
	}
	for _, fe := range res.Failed {
		notices = append(notices, notice{
			Kind: noticeError,
			Text: fmt.Sprintf("Falha ao salvar %s (id %d): %v", fe.Change.Field.Label(), fe.Change.ID, fe.Err),
		})
	}
	h.renderFresh(w, r, http.StatusOK, notices)
}

// renderFresh loads the table, stores the snapshot and renders the grid.
func (h *handler) renderFresh(w http.ResponseWriter, r *http.Request, status int, notices []notice) {
	snap, err := h.areas.Load(r.Context())
	if err != nil {
		msg := fmt.Sprintf("Erro ao carregar dados da tabela '%s': %v", domain.TableName, err)
		if errors.Is(err, domain.ErrConnectionFailed) {
			msg = fmt.Sprintf("Não foi possível conectar ao banco de dados: %v", err)
		}
		h.render(w, http.StatusServiceUnavailable, pageData{Notices: append(notices, notice{Kind: noticeError, Text: msg})})
		return
	}
	if snap.Empty() {
		h.render(w, status, pageData{Notices: append(notices, notice{
			Kind: noticeWarning,
			Text: fmt.Sprintf("Não há dados ou a tabela '%s' não existe nesse banco.", domain.TableName),
		})})
		return
	}
	token := h.store.Put(snap)
	h.render(w, status, buildPage(snap, token, nil, notices))
}

func (h *handler) render(w http.ResponseWriter, status int, page pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := gridTemplate.Execute(w, page); err != nil {
		h.logger.Error("rendering grid", "error", err)
	}
}
