package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/imdbscrape"
	"github.com/gorilla/mux"
	"golang.org/x/sync/errgroup"
)

// Fixed bodies of the error pages.
const (
	MethodNotAllowedBody = "<h1>Error: server only allows POST methods</h1>"
	InvalidURLBody       = "<h1>Error: URL must correspond to an IMDB title page</h1>"
	FetchFailedBody      = "<h1>Error: could not retrieve the requested page</h1>"
	InternalErrorBody    = "<h1>Error: internal server error</h1>"
)

// MaxRequestBodySize caps the size of a scrape request body.
const MaxRequestBodySize = 64 << 10

// ShutdownTimeout is the time given for outstanding requests to finish.
const ShutdownTimeout = 5 * time.Second

// DefaultWriteTimeout bounds writing a response when the fetch timeout is
// unknown. WriteMargin is added to FetchTimeout otherwise.
const (
	DefaultWriteTimeout = 30 * time.Second
	WriteMargin         = 10 * time.Second
)

// Server answers scrape requests: a POST whose body is a title page URL is
// fetched, extracted and rendered as an HTML fragment. The server keeps no
// state between requests.
type Server struct {
	ln     net.Listener
	server *http.Server
	router *mux.Router

	// Bind address for the server's listener.
	Addr string

	// Services used by the handlers.
	Fetcher   imdbscrape.Fetcher
	Extractor imdbscrape.Extractor

	// Logger receives one line per request. Defaults to discarding output.
	Logger *slog.Logger

	// FetchTimeout is the longest a fetch may take. When set, the response
	// write deadline is FetchTimeout plus WriteMargin, and never below
	// DefaultWriteTimeout.
	FetchTimeout time.Duration
}

// NewServer returns a new instance of Server.
func NewServer() *Server {
	s := &Server{
		server: &http.Server{
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      DefaultWriteTimeout,
			IdleTimeout:       60 * time.Second,

			// OPTIONS * must reach the router like any other non-POST request.
			DisableGeneralOptionsHandler: true,
		},
		router: mux.NewRouter().SkipClean(true),
		Logger: slog.New(slog.DiscardHandler),
	}

	// Every path accepts POST; any other method gets the fixed 405 page.
	// Targets that no path route matches, such as CONNECT authorities and
	// "*", are dispatched by method the same way.
	s.router.PathPrefix("/").Methods(http.MethodPost).HandlerFunc(s.handleScrape)
	s.router.MethodNotAllowedHandler = http.HandlerFunc(s.handleMethodNotAllowed)
	s.router.NotFoundHandler = http.HandlerFunc(s.handleUnrouted)

	// Middleware wraps the router itself so it also sees the 405 responses,
	// which mux serves without running route middleware.
	s.server.Handler = s.logRequests(s.recoverPanics(s.router))

	return s
}

// Open validates the server options and begins listening on the bind
// address. Requests are served in the background until Close is called.
func (s *Server) Open() error {
	if err := s.listen(); err != nil {
		return err
	}
	go func() { _ = s.server.Serve(s.ln) }()
	return nil
}

// Run opens the server and serves until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	if err := s.listen(); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := s.server.Serve(s.ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serving: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		return s.Close()
	})
	return g.Wait()
}

func (s *Server) listen() (err error) {
	if s.FetchTimeout > 0 {
		s.server.WriteTimeout = max(DefaultWriteTimeout, s.FetchTimeout+WriteMargin)
	}
	if s.Fetcher == nil {
		return fmt.Errorf("fetcher required")
	}
	if s.Extractor == nil {
		return fmt.Errorf("extractor required")
	}
	if s.ln, err = net.Listen("tcp", s.Addr); err != nil {
		return fmt.Errorf("listening on %q: %w", s.Addr, err)
	}
	return nil
}

// Close gracefully shuts down the server.
func (s *Server) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// Port returns the TCP port for the running server.
// This is useful in tests where we allocate a random port by using ":0".
func (s *Server) Port() int {
	if s.ln == nil {
		return 0
	}
	return s.ln.Addr().(*net.TCPAddr).Port
}

// URL returns the local base URL of the running server.
func (s *Server) URL() string {
	return fmt.Sprintf("http://127.0.0.1:%d", s.Port())
}

// ServeHTTP serves a request through the full middleware chain.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.server.Handler.ServeHTTP(w, r)
}

// handleScrape validates the requested URL, fetches the page, extracts the
// movie and writes the rendered fragment.
func (s *Server) handleScrape(w http.ResponseWriter, r *http.Request) {
	req, err := decodeRequest(w, r)
	if err != nil {
		s.Error(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.Error(w, r, err)
		return
	}

	html, err := s.Fetcher.Fetch(r.Context(), req.URL)
	if err != nil {
		s.Error(w, r, err)
		return
	}

	fragment := imdbscrape.FormatMovie(s.Extractor.Extract(html))

	w.Header().Set("ETag", fmt.Sprintf(`"%016x"`, xxhash.Sum64String(fragment)))
	writeHTML(w, http.StatusOK, fragment)
}

func (s *Server) handleUnrouted(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		s.handleScrape(w, r)
		return
	}
	s.handleMethodNotAllowed(w, r)
}

func (s *Server) handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	s.Error(w, r, imdbscrape.Errorf(imdbscrape.ENOTALLOWED, "method %s not allowed", r.Method))
}

// Error writes the error page for err. Unexpected errors are logged.
func (s *Server) Error(w http.ResponseWriter, r *http.Request, err error) {
	code := imdbscrape.ErrorCode(err)
	switch code {
	case imdbscrape.EFETCH, imdbscrape.EINTERNAL:
		s.Logger.Error("request failed",
			"request_id", RequestID(r.Context()),
			"code", code,
			"err", err,
		)
	}
	writeHTML(w, ErrorStatusCode(code), errorBody(code))
}

// decodeRequest reads the scrape request from the body. The body is either
// the raw URL or, when sent as JSON, an object with a "url" member.
func decodeRequest(w http.ResponseWriter, r *http.Request) (*imdbscrape.ExtractionRequest, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxRequestBodySize))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, imdbscrape.Errorf(imdbscrape.EINVALID, "request body exceeds %d bytes", maxErr.Limit)
		}
		return nil, imdbscrape.Wrapf(imdbscrape.EINVALID, err, "reading request body")
	}

	text := strings.TrimSpace(string(body))
	if isJSON(r) && strings.HasPrefix(text, "{") {
		var req imdbscrape.ExtractionRequest
		if err := json.Unmarshal([]byte(text), &req); err == nil {
			req.URL = strings.TrimSpace(req.URL)
			return &req, nil
		}
	}
	return &imdbscrape.ExtractionRequest{URL: text}, nil
}

func isJSON(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "application/json"
}

// codes maps application error codes to HTTP status codes.
var codes = map[string]int{
	imdbscrape.EINVALID:    http.StatusBadRequest,
	imdbscrape.ENOTALLOWED: http.StatusMethodNotAllowed,
	imdbscrape.EFETCH:      http.StatusBadGateway,
	imdbscrape.EINTERNAL:   http.StatusInternalServerError,
}

// ErrorStatusCode returns the HTTP status code for an application error code.
func ErrorStatusCode(code string) int {
	if v, ok := codes[code]; ok {
		return v
	}
	return http.StatusInternalServerError
}

// FromErrorStatusCode returns the application error code for an HTTP status code.
func FromErrorStatusCode(status int) string {
	for k, v := range codes {
		if v == status {
			return k
		}
	}
	return imdbscrape.EINTERNAL
}

func errorBody(code string) string {
	switch code {
	case imdbscrape.EINVALID:
		return InvalidURLBody
	case imdbscrape.ENOTALLOWED:
		return MethodNotAllowedBody
	case imdbscrape.EFETCH:
		return FetchFailedBody
	default:
		return InternalErrorBody
	}
}

func writeHTML(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}
