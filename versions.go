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

// Package sagecert provides version information for sage-http-certification.
package sagecert

import "github.com/sage-x-project/sage-http-certification/pkg/version"

const (
	// Version is the current version of sage-http-certification
	Version = version.Version

	// MinVerificationVersion is the oldest IC-Certificate version this library verifies
	MinVerificationVersion = version.MinVerificationVersion

	// MaxVerificationVersion is the newest IC-Certificate version this library verifies
	MaxVerificationVersion = version.MaxVerificationVersion
)

// VersionInfo contains detailed version information
type VersionInfo = version.Info

// GetVersionInfo returns detailed version information
func GetVersionInfo() VersionInfo {
	return version.Get()
}
