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

package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVersionConstants(t *testing.T) {
	// Verify version constants are not empty
	assert.NotEmpty(t, Version, "Version should not be empty")
	assert.NotEmpty(t, AgentGoVersion, "AgentGoVersion should not be empty")

	// Verify expected values
	assert.Equal(t, "1.0.0-dev", Version)
	assert.Equal(t, uint8(1), uint8(MinVerificationVersion))
	assert.Equal(t, uint8(2), uint8(MaxVerificationVersion))
	assert.Equal(t, "v0.4.3", AgentGoVersion)
}

func TestGet(t *testing.T) {
	info := Get()

	// Verify all fields are populated
	assert.Equal(t, Version, info.Version)
	assert.Equal(t, uint8(MinVerificationVersion), info.MinVerificationVersion)
	assert.Equal(t, uint8(MaxVerificationVersion), info.MaxVerificationVersion)
	assert.Equal(t, AgentGoVersion, info.AgentGoVersion)
	assert.LessOrEqual(t, info.MinVerificationVersion, info.MaxVerificationVersion)
}
