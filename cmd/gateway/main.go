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

package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sage-x-project/sage-http-certification/internal/config"
	"github.com/sage-x-project/sage-http-certification/pkg/certificate"
	"github.com/sage-x-project/sage-http-certification/pkg/gateway"
	"github.com/sage-x-project/sage-http-certification/pkg/verifier"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.UpstreamURL == "" {
		log.Fatal("config: UPSTREAM_URL is required")
	}
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	opts := []verifier.Option{
		verifier.WithMaxCertificateTimeOffset(cfg.MaxCertTimeOffset()),
		verifier.WithMinRequestedVersion(uint8(cfg.MinVerificationVersion)),
	}
	switch {
	case cfg.RedisAddr != "":
		cache, err := certificate.NewRedisSignatureCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, time.Hour)
		if err != nil {
			log.Fatalf("redis signature cache: %v", err)
		}
		defer cache.Close()
		opts = append(opts, verifier.WithSignatureCache(cache))
		log.Printf("signature cache: redis at %s", cfg.RedisAddr)
	case cfg.SignatureCacheSize > 0:
		opts = append(opts, verifier.WithSignatureCache(certificate.NewMemoryCache(cfg.SignatureCacheSize)))
		log.Printf("signature cache: memory, %d entries", cfg.SignatureCacheSize)
	}

	v, err := verifier.NewVerifier(cfg.CanisterID.Raw, cfg.RootKey, opts...)
	if err != nil {
		log.Fatalf("verifier: %v", err)
	}
	g, err := gateway.New(cfg.UpstreamURL, cfg.CanisterID, v,
		gateway.WithAllowUncertified(cfg.AllowUncertified),
		gateway.WithTimeout(30*time.Second),
	)
	if err != nil {
		log.Fatalf("gateway: %v", err)
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           g.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("gateway for canister %s listening on %s, upstream %s", cfg.CanisterID, cfg.HTTPAddr, cfg.UpstreamURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
