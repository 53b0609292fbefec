package account

import (
	"fmt"
	"regexp"

	"github.com/iov-one/custody"
	"github.com/iov-one/custody/errors"
)

// Router maps message paths to their handlers. It dispatches the
// governance and upgrade messages decoded from self-calls.
type Router struct {
	routes map[string]custody.Handler
}

var _ custody.Registry = (*Router)(nil)

// NewRouter initializes a router with no routes.
func NewRouter() *Router {
	return &Router{
		routes: make(map[string]custody.Handler, 8),
	}
}

// paths may contain one namespace separator, eg. "account/set_threshold".
var isPath = regexp.MustCompile(`^[a-zA-Z0-9_]+(/[a-zA-Z0-9_]+)?$`).MatchString

// Handle adds a route, panicking on invalid or duplicate paths. Routing
// tables are wired once at startup, a bad table is a programmer error.
func (r *Router) Handle(path string, h custody.Handler) {
	if !isPath(path) {
		panic(fmt.Sprintf("invalid path: %s", path))
	}
	if _, ok := r.routes[path]; ok {
		panic(fmt.Sprintf("re-registering route: %s", path))
	}
	r.routes[path] = h
}

// Handler returns the registered handler, or a noSuchPathHandler that
// rejects with ErrForbiddenCall.
func (r *Router) Handler(path string) custody.Handler {
	if h, ok := r.routes[path]; ok {
		return h
	}
	return noSuchPathHandler{path: path}
}

// AsHandler exposes the routing table as a single handler resolving by
// message path, usable at the end of a decorator chain.
func (r *Router) AsHandler() custody.Handler {
	return routedHandler{r}
}

type routedHandler struct {
	router *Router
}

var _ custody.Handler = routedHandler{}

func (h routedHandler) Handle(ctx custody.Context, db custody.KVStore, msg custody.Msg) (*custody.CallResult, error) {
	return h.router.Handler(msg.Path()).Handle(ctx, db, msg)
}

type noSuchPathHandler struct {
	path string
}

var _ custody.Handler = noSuchPathHandler{}

func (h noSuchPathHandler) Handle(custody.Context, custody.KVStore, custody.Msg) (*custody.CallResult, error) {
	return nil, errors.Wrapf(ErrForbiddenCall, "selector %q", h.path)
}
