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
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/aviate-labs/agent-go/principal"
	"github.com/fatih/color"

	"github.com/sage-x-project/sage-http-certification/pkg/certificate"
	"github.com/sage-x-project/sage-http-certification/pkg/client"
	"github.com/sage-x-project/sage-http-certification/pkg/verifier"
)

func main() {
	url := flag.String("url", "http://localhost:8000/hello", "URL to fetch")
	canisterText := flag.String("canister", "", "textual canister id")
	rootKeyHex := flag.String("root-key", "", "hex root public key (DER or raw)")
	minVersion := flag.Uint("min-version", 1, "minimum verification version")
	optional := flag.Bool("optional", false, "accept uncertified responses")
	flag.Parse()

	color.Cyan("SAGE HTTP Certification - Simple Client Example")
	color.Cyan("===============================================")

	fmt.Println("\n1. Loading canister id and root key...")
	canister, err := principal.Decode(*canisterText)
	if err != nil {
		log.Fatalf("Invalid canister id: %v", err)
	}
	rootKey, err := hex.DecodeString(*rootKeyHex)
	if err != nil {
		log.Fatalf("Invalid root key: %v", err)
	}
	fmt.Printf("   Canister: %s\n", canister)

	fmt.Println("\n2. Creating verifying client...")
	c, err := client.NewCertifiedClientForCanister(canister.Raw, rootKey,
		verifier.WithMinRequestedVersion(uint8(*minVersion)),
		verifier.WithSignatureCache(certificate.NewMemoryCache(100)),
	)
	if err != nil {
		log.Fatalf("Failed to create client: %v", err)
	}
	c.SetOptional(*optional)

	fmt.Printf("\n3. Fetching %s...\n", *url)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	resp, err := c.Get(ctx, *url)
	if err != nil {
		color.Red("   ✗ Verification failed (%s): %v", verifier.CodeOf(err), err)
		return
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Fatalf("Failed to read body: %v", err)
	}
	fmt.Printf("   Status: %d\n", resp.StatusCode)
	for name, values := range resp.Header {
		fmt.Printf("   %s: %v\n", name, values)
	}
	fmt.Printf("   Body: %s\n", body)
	color.Green("\n✓ Response verified successfully!")
}
