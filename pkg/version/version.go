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

// Package version reports the library version and the certification
// versions it verifies.
package version

import "github.com/sage-x-project/sage-http-certification/pkg/protocol"

const (
	// Version is the current version of sage-http-certification
	Version = "1.0.0-dev"

	// MinVerificationVersion is the oldest IC-Certificate version accepted
	MinVerificationVersion = protocol.MinVerificationVersion

	// MaxVerificationVersion is the newest IC-Certificate version accepted
	MaxVerificationVersion = protocol.MaxVerificationVersion

	// AgentGoVersion is the agent-go release used for principals
	AgentGoVersion = "v0.4.3"
)

// Info contains detailed version information
type Info struct {
	Version                string
	MinVerificationVersion uint8
	MaxVerificationVersion uint8
	AgentGoVersion         string
}

// Get returns detailed version information
func Get() Info {
	return Info{
		Version:                Version,
		MinVerificationVersion: MinVerificationVersion,
		MaxVerificationVersion: MaxVerificationVersion,
		AgentGoVersion:         AgentGoVersion,
	}
}
