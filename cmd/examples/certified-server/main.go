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
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/aviate-labs/agent-go/principal"

	"github.com/sage-x-project/sage-http-certification/internal/certtesting"
	"github.com/sage-x-project/sage-http-certification/pkg/cel"
	"github.com/sage-x-project/sage-http-certification/pkg/certifier"
	"github.com/sage-x-project/sage-http-certification/pkg/httpcert"
	"github.com/sage-x-project/sage-http-certification/pkg/server"
)

// This example serves certified responses signed with a deterministic demo key
func main() {
	addr := flag.String("addr", ":8000", "listen address")
	seed := flag.String("seed", "demo", "seed of the demo root key")
	flag.Parse()

	fmt.Printf("=== Certified Server Example ===\n\n")

	// Step 1: Create the root key and canister id
	// In a real deployment the certificate comes from the network and is
	// signed by the subnet
	root := certtesting.NewKeyPair(*seed)
	canister := principal.Principal{Raw: certtesting.CanisterID}
	fmt.Println("Step 1: Demo identity")
	fmt.Printf("  Canister ID:  %s\n", canister)
	fmt.Printf("  Root key:     %s\n\n", hex.EncodeToString(root.DERPublicKey()))

	// Step 2: Define the certification policies
	fmt.Println("Step 2: Certification policies")
	policies := []certifier.Policy{
		{
			Path:       httpcert.WildcardPath("/"),
			Expression: cel.ResponseOnlyExpression(cel.ResponseHeaderExclusions("Date")),
		},
		{
			Path: httpcert.ExactPath("/api/echo"),
			Expression: cel.FullExpression(
				cel.RequestCertification{Headers: []string{"Content-Type"}},
				cel.CertifiedResponseHeaders("Content-Type"),
			),
		},
		{
			Path:       httpcert.WildcardPath("/public"),
			Expression: cel.SkipExpression(),
		},
	}
	for _, p := range policies {
		fmt.Printf("  %-14s %s\n", p.Path, p.Expression.Kind)
	}
	fmt.Println()

	// Step 3: Wrap the handlers
	mux := http.NewServeMux()
	mux.HandleFunc("/api/echo", func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"echo": payload})
	})
	mux.HandleFunc("/public/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "public content at %s\n", r.URL.Path)
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprintf(w, "certified hello from %s at %s\n", r.URL.Path, time.Now().UTC().Format(time.RFC3339))
	})

	source := &certtesting.Source{Root: root, CanisterID: certtesting.CanisterID}
	middleware := server.NewCertificationMiddleware(source, policies...)

	fmt.Printf("Step 3: Listening on %s\n", *addr)
	fmt.Println("\nTry:")
	fmt.Printf("  go run ./cmd/examples/simple-client -url http://localhost%s/hello -canister %s -root-key %s\n",
		*addr, canister, hex.EncodeToString(root.DERPublicKey()))

	log.Fatal(http.ListenAndServe(*addr, middleware.Wrap(mux)))
}
