// Package gateway implements the public edge: one reverse proxy that routes
// each API prefix to the service owning it. The gateway terminates TLS,
// strips any inbound service credential and stamps its own on the way through
package gateway

import (
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"

	perr "cardduel/internal/platform/errors"
	"cardduel/internal/platform/logger"
	pnet "cardduel/internal/platform/net"
	phttp "cardduel/internal/platform/net/http"
	"cardduel/internal/platform/trust"
)

// Backends names the upstream base URLs per service
type Backends struct {
	Identity string
	Cards    string
	Games    string
	Reports  string
}

// Proxy routes API prefixes to their owning services
type Proxy struct {
	routes []route
	log    logger.Logger
}

type route struct {
	prefix string
	proxy  *httputil.ReverseProxy
}

// New builds the prefix router; every backend URL must parse
func New(b Backends, serviceKey string, log logger.Logger) (*Proxy, error) {
	p := &Proxy{log: log}

	for _, entry := range []struct {
		prefix string
		target string
	}{
		{"/api/auth", b.Identity},
		{"/api/cards", b.Cards},
		{"/api/games", b.Games},
		{"/api/leaderboard", b.Reports},
		{"/api/logs", b.Reports},
	} {
		u, err := url.Parse(entry.target)
		if err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "gateway: bad backend url for %s", entry.prefix)
		}
		if u.Scheme == "" || u.Host == "" {
			return nil, perr.InvalidArgf("gateway: backend url for %s must be absolute", entry.prefix)
		}
		p.routes = append(p.routes, route{prefix: entry.prefix, proxy: p.reverse(u, serviceKey)})
	}
	return p, nil
}

// reverse builds one upstream proxy with credential hygiene applied
func (p *Proxy) reverse(target *url.URL, serviceKey string) *httputil.ReverseProxy {
	rp := &httputil.ReverseProxy{
		Rewrite: func(r *httputil.ProxyRequest) {
			r.SetURL(target)
			r.SetXForwarded()
			// never let a client-presented service credential through
			r.Out.Header.Del(trust.Header)
			if serviceKey != "" {
				r.Out.Header.Set(trust.Header, serviceKey)
			}
		},
	}
	rp.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		p.log.Warn().Err(err).Str("path", r.URL.Path).Msg("upstream unreachable")
		status, body := pnet.Error(perr.Unavailablef("upstream unavailable"), pnet.RequestID(r.Context()))
		phttp.JSON(w, status, body)
	}
	return rp
}

// ServeHTTP dispatches by longest registered prefix
func (p *Proxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if rt, ok := p.match(r.URL.Path); ok {
		rt.proxy.ServeHTTP(w, r)
		return
	}
	status, body := pnet.Error(perr.NotFoundf("no route for %s", r.URL.Path), pnet.RequestID(r.Context()))
	phttp.JSON(w, status, body)
}

func (p *Proxy) match(path string) (route, bool) {
	var (
		best  route
		found bool
	)
	for _, rt := range p.routes {
		if path != rt.prefix && !strings.HasPrefix(path, rt.prefix+"/") {
			continue
		}
		if !found || len(rt.prefix) > len(best.prefix) {
			best, found = rt, true
		}
	}
	return best, found
}

// Mount hangs the proxy under /api and adds the public health endpoint
func Mount(r phttp.Router, p *Proxy) {
	phttp.GetJSON(r, "/health", func(*http.Request) (any, error) {
		return map[string]string{"status": "ok"}, nil
	})
	r.Handle("/api/*", p)
}
