package api

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"teamvest/internal/config"
	"teamvest/internal/http-server/handlers/errors"
	"teamvest/internal/http-server/handlers/invest"
	"teamvest/internal/http-server/handlers/projections"
	"teamvest/internal/http-server/handlers/ranks"
	"teamvest/internal/http-server/handlers/rewards"
	"teamvest/internal/http-server/handlers/users"
	"teamvest/internal/metrics"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"teamvest/internal/http-server/middleware/authenticate"
	"teamvest/internal/http-server/middleware/timeout"
	"teamvest/lib/sl"
)

type Server struct {
	conf       *config.Config
	httpServer *http.Server
	log        *slog.Logger
}

type Handler interface {
	authenticate.Authenticate
	ranks.Core
	rewards.Core
	invest.Core
	projections.Core
	users.Core
}

func New(conf *config.Config, log *slog.Logger, handler Handler) error {

	server := Server{
		conf: conf,
		log:  log.With(sl.Module("api.server")),
	}

	router := chi.NewRouter()
	router.Use(timeout.Timeout(30))
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(metrics.Middleware)
	router.Use(render.SetContentType(render.ContentTypeJSON))

	router.NotFound(errors.NotFound(log))
	router.MethodNotAllowed(errors.NotAllowed(log))

	router.Method(http.MethodGet, "/metrics", metrics.Handler())

	router.Route("/v1", func(rootApi chi.Router) {
		rootApi.Use(authenticate.New(log, handler))
		rootApi.Route("/rank", func(rk chi.Router) {
			rk.Post("/process/{email}", ranks.Process(log, handler))
			rk.Post("/process", ranks.ProcessAll(log, handler))
			rk.Get("/dashboard", ranks.Dashboard(log, handler))
		})
		rootApi.With(authenticate.RequireAdmin).
			Post("/reward/{email}/{rewardType}/{action}", rewards.Action(log, handler))
		rootApi.Post("/invest/close", invest.Close(log, handler))
		rootApi.With(authenticate.RequireAdmin).
			Post("/withdrawal/{id}/status", invest.Withdrawal(log, handler))
		rootApi.Get("/projection", projections.Project(log, handler))
		rootApi.Route("/users", func(us chi.Router) {
			us.Get("/", users.List(log, handler))
			us.Post("/{email}/activate", users.SetActive(log, handler, true))
			us.Post("/{email}/deactivate", users.SetActive(log, handler, false))
			us.Put("/{email}", users.Edit(log, handler))
		})
	})

	httpLog := slog.NewLogLogger(log.Handler(), slog.LevelError)
	server.httpServer = &http.Server{
		Handler:      router,
		ErrorLog:     httpLog,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverAddress := fmt.Sprintf("%s:%s", conf.Listen.BindIp, conf.Listen.Port)
	listener, err := net.Listen("tcp", serverAddress)
	if err != nil {
		return err
	}

	server.log.Info("starting api server", slog.String("address", serverAddress))

	return server.httpServer.Serve(listener)
}
