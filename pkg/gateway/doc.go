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

// Package gateway implements a verifying reverse proxy.
//
// The gateway forwards every request to an upstream that serves certified
// responses and only returns responses that pass verification. Failures are
// answered with 502 Bad Gateway and a JSON body naming the verification
// error code:
//
//	{"code":"ResponseHashMismatch","message":"response verification failed","canister_id":"...","request_id":"..."}
//
// Each request gets an X-Request-Id, reused from the caller when present,
// which also appears in the log lines of the request.
//
// GET /healthz reports the canister the gateway verifies for.
package gateway
