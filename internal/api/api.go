// Package api serves the local HTTP command surface used by the CLI and the
// tray.
package api

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/unrolled/render"
	"github.com/urfave/negroni"
	"golang.org/x/time/rate"

	"github.com/user/dnskeeper/internal/dnstask"
	"github.com/user/dnskeeper/internal/logger"
	"github.com/user/dnskeeper/internal/probe"
)

// Prefix is the path prefix of every API route.
const Prefix = "/api/v1"

var (
	log  = logger.For("api")
	rend = render.New(render.Options{IndentJSON: true})
)

type httperr struct {
	Error string `json:"error"`
}

type route struct {
	Name        string
	Method      string
	Pattern     string
	HandlerFunc func(handlerAccess) http.Handler
}

type handlerAccess struct {
	mon      *dnstask.Monitor
	reg      *dnstask.Registry
	adapters dnstask.AdapterLister
	prober   *probe.Prober
	validate *validator.Validate
	now      func() time.Time
	newID    func() string
}

// Deps are the collaborators the API serves.
type Deps struct {
	Monitor  *dnstask.Monitor
	Adapters dnstask.AdapterLister
	Prober   *probe.Prober
	// Gatherer backs /metrics. Nil leaves the route out.
	Gatherer prometheus.Gatherer
	// RateLimitRPS of zero disables rate limiting.
	RateLimitRPS   float64
	RateLimitBurst int
	Now            func() time.Time
	NewID          func() string
}

// NewHandler builds the router with its middleware chain.
func NewHandler(d Deps) http.Handler {
	ha := handlerAccess{
		mon:      d.Monitor,
		reg:      d.Monitor.Registry(),
		adapters: d.Adapters,
		prober:   d.Prober,
		validate: validator.New(),
		now:      d.Now,
		newID:    d.NewID,
	}
	if ha.now == nil {
		ha.now = time.Now
	}
	if ha.newID == nil {
		ha.newID = newTaskID
	}

	r := mux.NewRouter().StrictSlash(true)
	api := r.PathPrefix(Prefix).Subrouter()
	for _, rt := range apiRoutes {
		api.Methods(rt.Method).Path(rt.Pattern).Name(rt.Name).Handler(rt.HandlerFunc(ha))
	}
	if d.Gatherer != nil {
		r.Methods("GET").Path("/metrics").Name("metrics").Handler(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		rend.JSON(w, http.StatusNotFound, httperr{Error: "route not found"})
	})

	n := negroni.New(negroni.HandlerFunc(HTTPLogger))
	if d.RateLimitRPS > 0 && d.RateLimitBurst > 0 {
		n.Use(RateLimiter(rate.NewLimiter(rate.Limit(d.RateLimitRPS), d.RateLimitBurst)))
	}
	n.UseHandler(r)
	return n
}

// Server is the API's HTTP listener.
type Server struct {
	srv *http.Server
}

// NewServer creates a server for handler on addr.
func NewServer(addr string, handler http.Handler) *Server {
	return &Server{srv: &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}}
}

// Run listens until ctx is done, then shuts the server down.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return errors.Wrapf(err, "failed to listen on %s", s.srv.Addr)
	}
	log.Infof("Listening on http://%s%s", ln.Addr(), Prefix)

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "failed to shut down API server")
	}
	return nil
}
