package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type ServerOptions struct {
	CORSOrigins []string
	// Gatherer backs /metrics; nil leaves the route out.
	Gatherer prometheus.Gatherer
	// Reminders serves /ws/reminders; nil leaves the route out.
	Reminders http.Handler
}

type Server struct {
	Router *chi.Mux
}

func NewServer(handler *Handler, opts ServerOptions) *Server {
	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(handler.Logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if opts.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}
	if opts.Reminders != nil {
		r.Handle("/ws/reminders", opts.Reminders)
	}

	r.Route("/products", func(r chi.Router) {
		r.Get("/", handler.ListProducts)
		r.Post("/", handler.AddProduct)
		r.Put("/{name}", handler.UpdateProduct)
		r.Delete("/{name}", handler.DeleteProduct)
	})

	r.Route("/orders", func(r chi.Router) {
		r.Get("/", handler.ListOrders)
		r.Post("/", handler.CreateOrder)
		r.Get("/{orderId}", handler.GetOrder)
		r.Put("/{orderId}", handler.EditOrder)
		r.Delete("/{orderId}", handler.DeleteOrder)
		r.Post("/{orderId}/complete", handler.CompleteOrder)
		r.Post("/{orderId}/restore", handler.RestoreOrder)
		r.Put("/{orderId}/price", handler.EditPrice)
		r.Get("/{orderId}/invoice", handler.Invoice)
	})

	r.Get("/dashboard", handler.Dashboard)
	r.Get("/history", handler.History)

	r.Route("/expenses", func(r chi.Router) {
		r.Get("/", handler.ListExpenses)
		r.Post("/", handler.AddExpense)
		r.Get("/summary", handler.ExpenseSummary)
		r.Put("/{index}", handler.UpdateExpense)
		r.Delete("/{index}", handler.DeleteExpense)
	})

	r.Route("/reports", func(r chi.Router) {
		r.Get("/summary", handler.Summary)
		r.Get("/earnings", handler.Earnings)
		r.Get("/earnings.html", handler.EarningsHTML)
	})

	r.Route("/calendar", func(r chi.Router) {
		r.Get("/day/{date}", handler.CalendarDay)
		r.Get("/{year}/{month}", handler.CalendarMonth)
	})

	r.Route("/settings", func(r chi.Router) {
		r.Get("/", handler.GetSettings)
		r.Put("/theme", handler.SetTheme)
		r.Put("/currency", handler.SetCurrency)
	})
	r.Get("/currencies", handler.ListCurrencies)

	r.Route("/backup", func(r chi.Router) {
		r.Get("/", handler.ExportBackup)
		r.Post("/", handler.SaveBackup)
		r.Post("/restore", handler.RestoreBackup)
		r.Post("/restore/{name}", handler.RestoreSavedBackup)
	})

	return &Server{Router: r}
}

func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.Debug("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("elapsed", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}
