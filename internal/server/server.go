package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	eventbus "github.com/graphmend/graphmend/internal/eventbus"
	events "github.com/graphmend/graphmend/internal/events"
	executor "github.com/graphmend/graphmend/internal/executor"
	language "github.com/graphmend/graphmend/internal/language"
	reqid "github.com/graphmend/graphmend/internal/reqid"
	schema "github.com/graphmend/graphmend/internal/schema"
)

// Handler is an http.Handler that serves a GraphQL endpoint.
// It parses requests, runs the executor, and formats responses per GraphQL spec.
type Handler struct {
	exec *executor.Executor
	opt  Options
}

type Options struct {
	// Timeout sets a default timeout if the incoming request context has none.
	// 0 means no default timeout.
	Timeout time.Duration

	// Pretty enables indented JSON responses (useful for dev).
	Pretty bool

	// MaxBodyBytes limits the size of the request body. 0 means unlimited.
	MaxBodyBytes int64

	// CORS configuration. If AllowedOrigins is empty, CORS is disabled.
	CORS CORSOptions

	// ForwardHeaders lists HTTP headers copied into the request context,
	// retrievable in resolvers via HeaderFromContext. Names are
	// case-insensitive. Default is none.
	ForwardHeaders []string

	// GraphiQL enables the in-browser IDE when true.
	GraphiQL bool
}

type Option func(*Options)

func WithTimeout(d time.Duration) Option { return func(o *Options) { o.Timeout = d } }
func WithPretty() Option                 { return func(o *Options) { o.Pretty = true } }
func WithMaxBodyBytes(n int64) Option    { return func(o *Options) { o.MaxBodyBytes = n } }
func WithCORS(origins ...string) Option {
	return func(o *Options) { o.CORS.AllowedOrigins = origins }
}
func WithForwardHeaders(headers ...string) Option {
	return func(o *Options) { o.ForwardHeaders = headers }
}
func WithGraphiQL(enable bool) Option { return func(o *Options) { o.GraphiQL = enable } }

// CORSOptions holds simple CORS settings.
type CORSOptions struct {
	AllowedOrigins []string
}

// headerKey is the context key for forwarded headers.
type headerKey struct{}

// HeaderFromContext returns the forwarded values of the named header.
func HeaderFromContext(ctx context.Context, name string) []string {
	m, _ := ctx.Value(headerKey{}).(map[string][]string)
	return m[strings.ToLower(name)]
}

// New creates a new GraphQL HTTP handler serving the given executable schema.
func New(s *schema.Schema, opts ...Option) (*Handler, error) {
	op := Options{Timeout: 10 * time.Second, GraphiQL: true}
	for _, f := range opts {
		f(&op)
	}
	return &Handler{exec: executor.New(s), opt: op}, nil
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, ok := ctx.Deadline(); !ok && h.opt.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.opt.Timeout)
		defer cancel()
	}

	ctx, _ = reqid.NewContext(ctx)
	status := http.StatusOK
	start := time.Now()
	eventbus.Publish(ctx, events.HTTPStart{Request: r})
	defer func() {
		eventbus.Publish(ctx, events.HTTPFinish{Request: r, Status: status, Duration: time.Since(start)})
	}()

	if r.Method == http.MethodOptions {
		if len(h.opt.CORS.AllowedOrigins) > 0 {
			setCORSHeaders(w, r, h.opt.CORS)
		}
		status = http.StatusNoContent
		w.WriteHeader(status)
		return
	}

	if r.Method != http.MethodPost && r.Method != http.MethodGet {
		status = http.StatusMethodNotAllowed
		writeJSON(w, status, errorResponse(nil, "method not allowed"), h.opt.Pretty)
		return
	}

	// Serve GraphiQL IDE when enabled and the client expects HTML.
	if r.Method == http.MethodGet && h.opt.GraphiQL && acceptsHTML(r.Header.Get("Accept")) && r.URL.Query().Get("query") == "" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(graphiqlPage)
		return
	}

	if len(h.opt.ForwardHeaders) > 0 {
		forwarded := make(map[string][]string, len(h.opt.ForwardHeaders))
		for _, name := range h.opt.ForwardHeaders {
			if vs := r.Header.Values(name); len(vs) > 0 {
				forwarded[strings.ToLower(name)] = vs
			}
		}
		ctx = context.WithValue(ctx, headerKey{}, forwarded)
	}

	req, batch, berr := parseRequest(r, h.opt.MaxBodyBytes)
	if berr != "" {
		status = http.StatusBadRequest
		if berr == errBodyTooLargeMessage {
			status = http.StatusRequestEntityTooLarge
		}
		writeJSON(w, status, errorResponse(nil, berr), h.opt.Pretty)
		return
	}

	if len(h.opt.CORS.AllowedOrigins) > 0 {
		setCORSHeaders(w, r, h.opt.CORS)
	}

	if batch != nil {
		out := make([]any, len(batch))
		for i := range batch {
			out[i] = h.executeOne(ctx, batch[i])
		}
		writeJSON(w, status, out, h.opt.Pretty)
		return
	}

	writeJSON(w, status, h.executeOne(ctx, req), h.opt.Pretty)
}

func (h *Handler) executeOne(ctx context.Context, req GraphQLRequest) any {
	// Parse query (syntax validation)
	doc, err := language.ParseQuery(req.Query)
	if err != nil {
		return errorResponse(nil, err.Error())
	}

	opDef := doc.Operations.ForName(req.OperationName)
	if opDef == nil && len(doc.Operations) == 1 {
		opDef = doc.Operations[0]
	}
	opType := ""
	if opDef != nil {
		opType = string(opDef.Operation)
	}

	start := time.Now()
	eventbus.Publish(ctx, events.GraphQLStart{Query: req.Query, OperationName: req.OperationName, OperationType: opType})
	result := h.exec.ExecuteRequest(ctx, doc, req.OperationName, req.Variables, nil)
	errs := make([]error, len(result.Errors))
	for i := range result.Errors {
		errs[i] = result.Errors[i]
	}
	eventbus.Publish(ctx, events.GraphQLFinish{
		Query:         req.Query,
		OperationName: req.OperationName,
		OperationType: opType,
		Errors:        errs,
		Duration:      time.Since(start),
	})
	if len(result.Errors) > 0 {
		return toSpecResult(result)
	}
	return result
}

// ------------------ Request parsing ------------------

type GraphQLRequest struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName,omitempty"`
	Variables     map[string]any `json:"variables,omitempty"`
	Extensions    map[string]any `json:"extensions,omitempty"`
}

func parseRequest(r *http.Request, maxBody int64) (GraphQLRequest, []GraphQLRequest, string) {
	if r.Method == http.MethodGet {
		q := r.URL.Query().Get("query")
		if q == "" {
			return GraphQLRequest{}, nil, "missing 'query'"
		}
		vars := map[string]any{}
		if v := r.URL.Query().Get("variables"); v != "" {
			if err := json.Unmarshal([]byte(v), &vars); err != nil {
				return GraphQLRequest{}, nil, "invalid 'variables' JSON"
			}
		}
		op := r.URL.Query().Get("operationName")
		return GraphQLRequest{Query: q, Variables: vars, OperationName: op}, nil, ""
	}

	// POST
	ct := r.Header.Get("Content-Type")
	if ct == "" || ct == "application/json" || strings.HasPrefix(ct, "application/json;") {
		reader := io.Reader(r.Body)
		if maxBody > 0 {
			reader = io.LimitReader(r.Body, maxBody+1)
		}
		body, err := io.ReadAll(reader)
		if err != nil {
			return GraphQLRequest{}, nil, "failed to read body"
		}
		defer r.Body.Close()
		if maxBody > 0 && int64(len(body)) > maxBody {
			return GraphQLRequest{}, nil, errBodyTooLargeMessage
		}

		// Try array (batch)
		if len(body) > 0 && body[0] == '[' {
			var arr []GraphQLRequest
			if err := json.Unmarshal(body, &arr); err != nil {
				return GraphQLRequest{}, nil, "invalid JSON"
			}
			if len(arr) == 0 {
				return GraphQLRequest{}, nil, "empty batch"
			}
			return GraphQLRequest{}, arr, ""
		}
		// Single
		var req GraphQLRequest
		if err := json.Unmarshal(body, &req); err != nil {
			return GraphQLRequest{}, nil, "invalid JSON"
		}
		if req.Query == "" {
			return GraphQLRequest{}, nil, "missing 'query'"
		}
		if req.Variables == nil {
			req.Variables = map[string]any{}
		}
		return req, nil, ""
	}

	return GraphQLRequest{}, nil, "unsupported Content-Type"
}

// ------------------ Response formatting ------------------

type specError struct {
	Message    string         `json:"message"`
	Path       []any          `json:"path,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

type specResult struct {
	Data   any         `json:"data"`
	Errors []specError `json:"errors,omitempty"`
}

func errorResponse(data any, message string) specResult {
	return specResult{Data: data, Errors: []specError{{Message: message}}}
}

func toSpecResult(res *executor.ExecutionResult) specResult {
	out := specResult{Data: res.Data}
	out.Errors = make([]specError, len(res.Errors))
	for i, e := range res.Errors {
		se := specError{Message: e.Message, Extensions: e.Extensions}
		if len(e.Path) > 0 {
			se.Path = append([]any(nil), e.Path...)
		}
		out.Errors[i] = se
	}
	// Per spec, when errors present, data may still be partially present; we preserve it.
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any, pretty bool) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	_ = enc.Encode(v)
}

const errBodyTooLargeMessage = "body too large"

func setCORSHeaders(w http.ResponseWriter, r *http.Request, opts CORSOptions) {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return
	}
	allowed := false
	wildcard := false
	for _, o := range opts.AllowedOrigins {
		if o == "*" {
			allowed = true
			wildcard = true
		} else if o == origin {
			allowed = true
		}
	}
	if !allowed {
		return
	}
	if wildcard {
		w.Header().Set("Access-Control-Allow-Origin", "*")
	} else {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Add("Vary", "Origin")
	}
	if r.Method == http.MethodOptions {
		if hdr := r.Header.Get("Access-Control-Request-Headers"); hdr != "" {
			w.Header().Set("Access-Control-Allow-Headers", hdr)
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
	}
}

func acceptsHTML(accept string) bool {
	for _, p := range strings.Split(accept, ",") {
		p = strings.TrimSpace(p)
		if strings.HasPrefix(p, "text/html") || p == "*/*" {
			return true
		}
	}
	return false
}
