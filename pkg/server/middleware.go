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

package server

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/sage-x-project/sage-http-certification/pkg/certifier"
	"github.com/sage-x-project/sage-http-certification/pkg/httpcert"
)

// ErrorHandler handles certification errors
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// CertificationMiddleware certifies every response written by the wrapped
// handler and attaches the IC-Certificate headers
type CertificationMiddleware struct {
	certifier    certifier.ResponseCertifier
	errorHandler ErrorHandler
	optional     bool
	now          func() time.Time
}

// NewCertificationMiddleware creates a middleware backed by a
// DefaultResponseCertifier
func NewCertificationMiddleware(source certifier.CertificateSource, policies ...certifier.Policy) *CertificationMiddleware {
	return NewCertificationMiddlewareWithCertifier(certifier.NewDefaultResponseCertifier(source, policies...))
}

// NewCertificationMiddlewareWithCertifier creates middleware with a custom certifier
func NewCertificationMiddlewareWithCertifier(c certifier.ResponseCertifier) *CertificationMiddleware {
	return &CertificationMiddleware{
		certifier:    c,
		errorHandler: defaultErrorHandler,
		now:          time.Now,
	}
}

// SetErrorHandler sets a custom error handler
func (m *CertificationMiddleware) SetErrorHandler(handler ErrorHandler) {
	m.errorHandler = handler
}

// SetOptional sets whether certification is optional.
// If true, responses for paths without a policy are sent uncertified
func (m *CertificationMiddleware) SetOptional(optional bool) {
	m.optional = optional
}

// Wrap wraps an HTTP handler with response certification
func (m *CertificationMiddleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// CORS preflight is never certified
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		var bodyBytes []byte
		if r.Body != nil {
			var err error
			bodyBytes, err = io.ReadAll(r.Body)
			r.Body.Close()
			if err != nil {
				m.errorHandler(w, r, fmt.Errorf("failed to read request body: %w", err))
				return
			}
		}
		r.Body = io.NopCloser(bytes.NewReader(bodyBytes))

		rec := newRecorder()
		next.ServeHTTP(rec, r)
		m.complete(rec, r.Method)

		req := httpcert.FromHTTPRequest(r, bodyBytes)
		resp := httpcert.FromHTTPResponse(rec.status, rec.header, rec.body.Bytes())

		if err := m.certifier.CertifyResponse(r.Context(), req, resp); err != nil {
			if m.optional && errors.Is(err, certifier.ErrNoPolicy) {
				writeResponse(w, resp)
				return
			}
			log.Printf("certification of %s %s failed: %v", r.Method, req.URL, err)
			m.errorHandler(w, r, fmt.Errorf("response certification failed: %w", err))
			return
		}

		writeResponse(w, resp)
	})
}

// complete sets the headers net/http would otherwise add after
// certification.
func (m *CertificationMiddleware) complete(rec *recorder, method string) {
	if rec.header.Get("Date") == "" {
		rec.header.Set("Date", m.now().UTC().Format(http.TimeFormat))
	}
	if rec.body.Len() > 0 && rec.header.Get("Content-Type") == "" {
		rec.header.Set("Content-Type", http.DetectContentType(rec.body.Bytes()))
	}
	if method != http.MethodHead && rec.header.Get("Content-Length") == "" && bodyAllowed(rec.status) {
		rec.header.Set("Content-Length", strconv.Itoa(rec.body.Len()))
	}
}

func bodyAllowed(status int) bool {
	return status >= 200 && status != http.StatusNoContent && status != http.StatusNotModified
}

func writeResponse(w http.ResponseWriter, resp *httpcert.Response) {
	httpcert.SetHTTPHeaders(w.Header(), resp.Headers)
	w.WriteHeader(resp.StatusCode)
	w.Write(resp.Body)
}

// recorder buffers a handler's response so it can be certified before
// anything is sent.
type recorder struct {
	header      http.Header
	body        bytes.Buffer
	status      int
	wroteHeader bool
}

func newRecorder() *recorder {
	return &recorder{header: make(http.Header), status: http.StatusOK}
}

func (r *recorder) Header() http.Header {
	return r.header
}

func (r *recorder) WriteHeader(status int) {
	if r.wroteHeader {
		return
	}
	r.status = status
	r.wroteHeader = true
}

func (r *recorder) Write(p []byte) (int, error) {
	r.wroteHeader = true
	return r.body.Write(p)
}

// defaultErrorHandler is the default error handler
func defaultErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	http.Error(w, fmt.Sprintf("Internal Server Error: %s", err.Error()), http.StatusInternalServerError)
}
