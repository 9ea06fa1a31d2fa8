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

// Package httpcert certifies HTTP requests and responses.
//
// A server decides per path which parts of a request/response pair are
// certified by attaching a certification expression (see package cel). It
// hashes the selected parts, stores the hashes in a CertificationTree and
// certifies the tree's root hash. Each response then carries the certificate
// and a witness cut from the tree for its path.
//
// Tree layout below the http_expr root:
//
//	<path segments>/<$ or *>/<expr hash>                          skip
//	<path segments>/<$ or *>/<expr hash>/""/<response hash>        response only
//	<path segments>/<$ or *>/<expr hash>/<request hash>/<response hash>
package httpcert
