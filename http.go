// Package gqlv serves a GraphQL schema generated from a live object
// metamodel over HTTP.
package gqlv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/gqlerrors"
	"go.uber.org/zap"

	"go.causeway.dev/gqlv/jerrors"
	"go.causeway.dev/gqlv/schemabuilder"
)

// Request is a GraphQL request as posted by clients.
type Request struct {
	Query         string                 `json:"query"`
	Variables     map[string]interface{} `json:"variables"`
	OperationName string                 `json:"operationName"`
}

// HandlerFunc executes one request.
type HandlerFunc func(ctx context.Context, req *Request) *graphql.Result

// MiddlewareFunc wraps the execution of every request.
type MiddlewareFunc func(next HandlerFunc) HandlerFunc

type HandlerOption func(*handlerOptions)

type handlerOptions struct {
	Middlewares     []MiddlewareFunc
	Logger          *zap.Logger
	PlaygroundTitle string
}

// WithMiddlewares adds middlewares. The first one is the outermost.
func WithMiddlewares(mw ...MiddlewareFunc) HandlerOption {
	return func(o *handlerOptions) {
		o.Middlewares = append(o.Middlewares, mw...)
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *zap.Logger) HandlerOption {
	return func(o *handlerOptions) {
		if logger != nil {
			o.Logger = logger
		}
	}
}

// WithPlaygroundTitle sets the title of the playground served on GET.
func WithPlaygroundTitle(title string) HandlerOption {
	return func(o *handlerOptions) {
		o.PlaygroundTitle = title
	}
}

// HTTPHandler implements the handler required for executing the graphql queries and mutations.
// POST requests carry a JSON Request; GET requests are served the playground.
func HTTPHandler(schema graphql.Schema, opts ...HandlerOption) http.Handler {
	o := handlerOptions{
		Logger:          zap.NewNop(),
		PlaygroundTitle: "GraphQL Playground",
	}
	for _, opt := range opts {
		opt(&o)
	}

	h := &httpHandler{schema: schema, logger: o.Logger, title: o.PlaygroundTitle}
	prev := h.execute
	for i := range o.Middlewares {
		prev = o.Middlewares[len(o.Middlewares)-1-i](prev)
	}
	h.exec = prev
	return h
}

type httpHandler struct {
	schema graphql.Schema
	logger *zap.Logger
	title  string

	exec HandlerFunc
}

type httpResponse struct {
	Data   interface{}      `json:"data"`
	Errors []*jerrors.Error `json:"errors"`
}

func (h *httpHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writeResponse := func(value interface{}, errs []*jerrors.Error) {
		response := httpResponse{Data: value, Errors: errs}
		responseJSON, err := json.Marshal(response)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if w.Header().Get("Content-Type") == "" {
			w.Header().Set("Content-Type", "application/json")
		}
		_, _ = w.Write(responseJSON)
	}
	fail := func(err error) {
		writeResponse(nil, []*jerrors.Error{jerrors.ConvertError(err)})
	}

	switch r.Method {
	case http.MethodGet, http.MethodHead:
		PlaygroundHandler(h.title, r.URL.Path).ServeHTTP(w, r)
		return
	case http.MethodPost:
	default:
		fail(errors.New("request must be a POST"))
		return
	}

	if r.Body == nil || r.Body == http.NoBody {
		fail(errors.New("request must include a query"))
		return
	}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(err)
		return
	}
	if req.Query == "" {
		fail(errors.New("must have a single query"))
		return
	}

	requestID := uuid.NewString()
	ctx := schemabuilder.WithRequestContext(addVariables(r.Context(), req.Variables))
	schemabuilder.RequestContextFrom(ctx).Set(RequestIDKey, requestID)

	res := h.exec(ctx, &req)
	if len(res.Errors) > 0 {
		h.logger.Debug("request completed with errors",
			zap.String("request_id", requestID),
			zap.String("operation", req.OperationName),
			zap.Int("errors", len(res.Errors)))
	}
	writeResponse(res.Data, jerrors.FromFormatted(res.Errors))
}

func (h *httpHandler) execute(ctx context.Context, req *Request) *graphql.Result {
	return Execute(ctx, h.schema, *req)
}

// RequestIDKey is the RequestContext key of the identifier the HTTP handler
// assigns to each request.
const RequestIDKey = "requestID"

// Execute runs req against schema. A RequestContext is attached to ctx when
// it carries none.
func Execute(ctx context.Context, schema graphql.Schema, req Request) *graphql.Result {
	if schemabuilder.RequestContextFrom(ctx) == nil {
		ctx = schemabuilder.WithRequestContext(ctx)
	}
	if ExtractVariables(ctx) == nil && req.Variables != nil {
		ctx = addVariables(ctx, req.Variables)
	}
	return graphql.Do(graphql.Params{
		Schema:         schema,
		RequestString:  req.Query,
		VariableValues: req.Variables,
		OperationName:  req.OperationName,
		Context:        ctx,
	})
}

// ErrorResult wraps err as the result of a request that was not executed.
func ErrorResult(err error) *graphql.Result {
	return &graphql.Result{Errors: []gqlerrors.FormattedError{gqlerrors.FormatError(err)}}
}

type graphqlVariableKeyType int

const graphqlVariableKey graphqlVariableKeyType = 0

// ExtractVariables is used to returns the variables received as part of the graphql request.
// This is intended to be used from within the interceptors.
func ExtractVariables(ctx context.Context) map[string]interface{} {
	if v := ctx.Value(graphqlVariableKey); v != nil {
		return v.(map[string]interface{})
	}

	return nil
}

func addVariables(ctx context.Context, v map[string]interface{}) context.Context {
	return context.WithValue(ctx, graphqlVariableKey, v)
}

// playgroundHTML loads GraphiQL from a CDN and points it at the endpoint.
const playgroundHTML = `<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8" />
    <title>%s</title>
    <style>
        body { height: 100%%; margin: 0; overflow: hidden; }
        #graphiql { height: 100vh; }
    </style>
    <link rel="stylesheet" href="https://unpkg.com/graphiql@1.4.0/graphiql.min.css" />
    <script src="https://unpkg.com/react@16.14.0/umd/react.production.min.js"></script>
    <script src="https://unpkg.com/react-dom@16.14.0/umd/react-dom.production.min.js"></script>
    <script src="https://unpkg.com/graphiql@1.4.0/graphiql.min.js"></script>
</head>
<body>
    <div id="graphiql">Loading...</div>
    <script>
      var endpoint = %q;
      function graphQLFetcher(graphQLParams) {
        return fetch(endpoint, {
          method: 'post',
          headers: { Accept: 'application/json', 'Content-Type': 'application/json' },
          body: JSON.stringify(graphQLParams),
          credentials: 'same-origin',
        }).then(function (response) {
          return response.json().catch(function () { return response.text(); });
        });
      }
      ReactDOM.render(
        React.createElement(GraphiQL, { fetcher: graphQLFetcher }),
        document.getElementById('graphiql'),
      );
    </script>
</body>
</html>`

// PlaygroundHandler returns an HTTP handler that serves an interactive
// GraphiQL playground posting to graphqlEndpoint.
//
// Typical usage:
//
//	r.Handle("/graphql", gqlv.HTTPHandler(schema))
//	r.Handle("/playground", gqlv.PlaygroundHandler("Orders", "/graphql"))
func PlaygroundHandler(title, graphqlEndpoint string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if r.Method == http.MethodHead {
			return
		}
		_, _ = fmt.Fprintf(w, playgroundHTML, title, graphqlEndpoint)
	})
}
