package httphandler

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/niksmo/naran-storefront/internal/core/domain"
	"github.com/niksmo/naran-storefront/internal/core/port"
	"github.com/niksmo/naran-storefront/internal/core/service"
	"github.com/niksmo/naran-storefront/pkg/richtext"
)

// GET  /          current page of the session (200 OK)
// GET  /cart      navigate to the cart (303 See Other)
// GET  /contacts  navigate to the contacts (303 See Other)
// POST /actions   form encoded action (303 See Other, 400 Bad request)
// GET  /healthz   liveness (200 OK)

//go:embed templates/*.html
var templatesFS embed.FS

var pageTmpl = template.Must(
	template.New("storefront.html").ParseFS(templatesFS, "templates/*.html"),
)

type StorefrontHandler struct {
	sf       port.Storefront
	rich     *richtext.Renderer
	currency string
}

type HandlerConfig struct {
	Storefront   port.Storefront
	Currency     string
	SecureCookie bool
}

// NewRouter returns the storefront routes with the middleware stack.
func NewRouter(cfg HandlerConfig) http.Handler {
	h := StorefrontHandler{
		sf:       cfg.Storefront,
		rich:     richtext.New(),
		currency: cfg.Currency,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.Healthz)

	r.Group(func(r chi.Router) {
		r.Use(Session(cfg.Storefront, cfg.SecureCookie))
		r.Get("/", h.GetPage)
		r.Get("/cart", h.navigateTo(domain.PageCart))
		r.Get("/contacts", h.navigateTo(domain.PageContacts))
		r.With(AllowForm).Post("/actions", h.PostAction)
	})

	return r
}

func (h StorefrontHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

func (h StorefrontHandler) GetPage(w http.ResponseWriter, r *http.Request) {
	const op = "StorefrontHandler.GetPage"
	log := slog.With("op", op)

	ctx := r.Context()
	id := sessionID(ctx)

	v, err := h.sf.Present(ctx, id)
	if err != nil {
		h.writeError(w, log, err)
		return
	}

	var buf bytes.Buffer
	if err := pageTmpl.Execute(&buf, h.toPageData(v)); err != nil {
		log.Error("failed to execute template", "err", err)
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if _, err := buf.WriteTo(w); err != nil {
		log.Error("failed to write response body", "err", err)
	}
}

func (h StorefrontHandler) PostAction(w http.ResponseWriter, r *http.Request) {
	const op = "StorefrontHandler.PostAction"
	log := slog.With("op", op)

	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form data", http.StatusBadRequest)
		log.Warn("failed to parse form", "err", err)
		return
	}

	a := actionFromForm(r)
	if err := h.sf.Dispatch(r.Context(), sessionID(r.Context()), a); err != nil {
		h.writeError(w, log, err)
		return
	}

	log.Debug("dispatched", "action", a.Type)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h StorefrontHandler) navigateTo(page domain.Page) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "StorefrontHandler.navigateTo"
		log := slog.With("op", op, "page", page)

		a := domain.Action{Type: domain.ActionNavigate, Page: page}
		if err := h.sf.Dispatch(r.Context(), sessionID(r.Context()), a); err != nil {
			h.writeError(w, log, err)
			return
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

func (h StorefrontHandler) writeError(
	w http.ResponseWriter, log *slog.Logger, err error,
) {
	switch {
	case errors.Is(err, service.ErrUnknownAction):
		http.Error(w, "unknown action", http.StatusBadRequest)
		log.Warn("bad action", "err", err)
	case errors.Is(err, service.ErrSessionNotFound):
		http.Error(w, "session expired", http.StatusConflict)
		log.Warn("session lost", "err", err)
	default:
		http.Error(w, "storefront is unavailable", http.StatusServiceUnavailable)
		log.Error("failed to serve storefront", "err", err)
	}
}
