package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pribylovaa/go-forum-store/internal/http/handlers"
	"github.com/pribylovaa/go-forum-store/internal/http/middleware"
)

// Options - параметры сборки HTTP-роутера.
type Options struct {
	Logger   *slog.Logger
	Timeout  time.Duration
	BasePath string // например, "/api"; если пустой - роуты регистрируются на корне.
	Feed     handlers.FeedOptions

	// Ready - готовность для /healthz (документ загружен). nil - всегда готов.
	Ready func() bool
	// Metrics - обработчик /metrics; nil - эндпойнт не регистрируется.
	Metrics http.Handler
	// Observer - приёмник метрик запросов; nil - запросы не меряются.
	Observer middleware.HTTPObserver
}

// NewRouter собирает http.Handler с chi и подключёнными middleware/роутами.
func NewRouter(forum handlers.Forum, opts Options) http.Handler {
	root := chi.NewRouter()

	// Middleware (внешний -> внутренний).
	root.Use(
		middleware.Recover(),              // безопасно ловим паники
		middleware.RequestID(),            // формируем/прокидываем X-Request-Id (до логирования!)
		middleware.Logging(opts.Logger),   // кладём request-scoped логгер в контекст и логируем
		middleware.Metrics(opts.Observer), // считаем запросы по шаблону маршрута
	)
	if opts.Timeout > 0 {
		root.Use(middleware.Timeout(opts.Timeout)) // общий дедлайн запроса
	}

	// Служебные эндпойнты всегда на корне.
	root.Get("/livez", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	root.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if opts.Ready != nil && !opts.Ready() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	if opts.Metrics != nil {
		root.Method(http.MethodGet, "/metrics", opts.Metrics)
	}

	// Зависимости хендлеров.
	h := handlers.New(forum, opts.Feed)

	// Регистрация маршрутов.
	if opts.BasePath != "" && opts.BasePath != "/" {
		sub := chi.NewRouter()
		registerRoutes(sub, h)
		root.Mount(opts.BasePath, sub)
		return root
	}

	registerRoutes(root, h)
	return root
}

// registerRoutes - единая точка регистрации всех REST-эндпойнтов.
func registerRoutes(r chi.Router, h *handlers.Handlers) {
	// posts
	r.Get("/posts", h.ListPosts)
	r.Post("/posts", h.CreatePost)

	// nodes (посты и ответы любой глубины)
	r.Get("/nodes/{id}", h.GetNode)
	r.Put("/nodes/{id}/content", h.EditContent)
	r.Post("/nodes/{id}/replies", h.AttachReply)
	r.Put("/nodes/{id}/votes", h.SetVotes)
	r.Get("/nodes/{id}/reference", h.GetReference)
	r.Put("/nodes/{id}/reference", h.SetReference)
	r.Delete("/nodes/{id}/reference", h.ClearReference)

	// search
	r.Get("/search", h.Search)

	// feed
	r.Get("/feed.atom", h.Feed)

	// admin
	r.Post("/admin/save", h.Save)
	r.Post("/admin/reload", h.Reload)
}
