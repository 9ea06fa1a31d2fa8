// Copyright (C) 2025 SAGE-X Project
//
// This file is part of sage-http-certification.
//
// sage-http-certification is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// sage-http-certification is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with sage-http-certification.  If not, see <https://www.gnu.org/licenses/>.

package gateway

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aviate-labs/agent-go/principal"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sage-x-project/sage-http-certification/pkg/transport"
	"github.com/sage-x-project/sage-http-certification/pkg/verifier"
)

const (
	requestIDHeader = "X-Request-Id"
	requestIDKey    = "request_id"
)

// hop-by-hop headers are never forwarded
var hopHeaders = []string{
	"Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"Proxy-Connection",
	"Te",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
}

// ErrorResponse is the JSON body of every error the gateway returns. Code is
// a verification code name such as ResponseHashMismatch, or one of
// UPSTREAM_UNAVAILABLE and INVALID_REQUEST.
type ErrorResponse struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	CanisterID string `json:"canister_id,omitempty"`
	RequestID  string `json:"request_id,omitempty"`
}

// Gateway is a reverse proxy that forwards requests to an upstream serving
// certified responses and only returns responses that verify.
type Gateway struct {
	upstream  *url.URL
	canister  principal.Principal
	transport *transport.CertifiedHTTPTransport
	client    *http.Client
	r         *gin.Engine
}

// Option configures a Gateway
type Option func(*Gateway)

// WithAllowUncertified forwards upstream responses without an IC-Certificate
// header unverified.
func WithAllowUncertified(allow bool) Option {
	return func(g *Gateway) {
		g.transport.SetOptional(allow)
	}
}

// WithTimeout bounds each upstream round trip.
func WithTimeout(d time.Duration) Option {
	return func(g *Gateway) {
		g.client.Timeout = d
	}
}

// New creates a gateway in front of upstream. Responses are checked by v
// for canister.
func New(upstream string, canister principal.Principal, v verifier.ResponseVerifier, opts ...Option) (*Gateway, error) {
	u, err := url.Parse(upstream)
	if err != nil {
		return nil, fmt.Errorf("invalid upstream url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid upstream url %q: scheme and host are required", upstream)
	}

	tr := transport.NewCertifiedHTTPTransport(v, nil)
	g := &Gateway{
		upstream:  u,
		canister:  canister,
		transport: tr,
		client: &http.Client{
			Transport: tr,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
	for _, opt := range opts {
		opt(g)
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestID(), requestLogger())
	r.GET("/healthz", g.health)
	r.NoRoute(g.proxy)
	g.r = r
	return g, nil
}

// Handler returns the gateway's HTTP handler.
func (g *Gateway) Handler() http.Handler {
	return g.r
}

func (g *Gateway) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "ok",
		"canister_id": g.canister.String(),
		"upstream":    g.upstream.Redacted(),
	})
}

func (g *Gateway) proxy(c *gin.Context) {
	var body io.Reader = c.Request.Body
	if c.Request.ContentLength == 0 {
		body = http.NoBody
	}
	out, err := http.NewRequestWithContext(c.Request.Context(), c.Request.Method, g.target(c.Request.URL), body)
	if err != nil {
		g.writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "request cannot be forwarded")
		return
	}
	out.ContentLength = c.Request.ContentLength
	copyHeaders(out.Header, c.Request.Header)

	resp, err := g.client.Do(out)
	if err != nil {
		var verr *verifier.VerificationError
		if errors.As(err, &verr) {
			log.Printf("request_id=%s verification failed: %v", RequestID(c), err)
			g.writeError(c, http.StatusBadGateway, verr.Code.String(), "response verification failed")
			return
		}
		log.Printf("request_id=%s upstream error: %v", RequestID(c), err)
		g.writeError(c, http.StatusBadGateway, "UPSTREAM_UNAVAILABLE", "upstream request failed")
		return
	}
	defer resp.Body.Close()

	copyHeaders(c.Writer.Header(), resp.Header)
	c.Status(resp.StatusCode)
	if _, err := io.Copy(c.Writer, resp.Body); err != nil {
		log.Printf("request_id=%s writing response: %v", RequestID(c), err)
	}
}

// target maps a request URL onto the upstream, keeping the upstream's base
// path.
func (g *Gateway) target(in *url.URL) string {
	u := *g.upstream
	u.Path = strings.TrimSuffix(g.upstream.Path, "/") + in.Path
	u.RawPath = ""
	if in.RawPath != "" {
		u.RawPath = strings.TrimSuffix(g.upstream.EscapedPath(), "/") + in.RawPath
	}
	u.RawQuery = in.RawQuery
	u.ForceQuery = in.ForceQuery
	return u.String()
}

func (g *Gateway) writeError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, ErrorResponse{
		Code:       code,
		Message:    message,
		CanisterID: g.canister.String(),
		RequestID:  RequestID(c),
	})
}

func copyHeaders(dst, src http.Header) {
	for k, vs := range src {
		if isHop(k) {
			continue
		}
		for _, v := range vs {
			dst.Add(k, v)
		}
	}
}

func isHop(name string) bool {
	for _, h := range hopHeaders {
		if strings.EqualFold(h, name) {
			return true
		}
	}
	return false
}

// requestID reuses the caller's X-Request-Id or assigns a new one.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Printf("request_id=%s method=%s path=%s status=%d duration=%s",
			RequestID(c), c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}

// RequestID returns the id assigned to the request.
func RequestID(c *gin.Context) string {
	if value, ok := c.Get(requestIDKey); ok {
		if id, ok := value.(string); ok {
			return id
		}
	}
	return ""
}
