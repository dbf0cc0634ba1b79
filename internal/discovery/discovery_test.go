/*
 * Copyright (c) 2026 Firefly Software Solutions Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package discovery

import (
	"net"
	"testing"

	"github.com/hashicorp/mdns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseServiceEntry(t *testing.T) {
	entry := &mdns.ServiceEntry{
		Name:   "ember-1._emberdb._tcp.local.",
		AddrV4: net.ParseIP("192.168.1.20"),
		Port:   5432,
		InfoFields: []string{
			"server_id=ember-1",
			"version=1.2.0",
			"malformed",
		},
	}

	server := parseServiceEntry(entry)
	require.NotNil(t, server)
	assert.Equal(t, "ember-1", server.ID)
	assert.Equal(t, "192.168.1.20:5432", server.Addr)
	assert.Equal(t, "1.2.0", server.Version)
	assert.False(t, server.DiscoveredAt.IsZero())
}

func TestParseServiceEntryFallbackID(t *testing.T) {
	entry := &mdns.ServiceEntry{
		Name:   "anonymous",
		AddrV4: net.ParseIP("10.0.0.5"),
		Port:   6000,
	}

	server := parseServiceEntry(entry)
	require.NotNil(t, server)
	assert.Equal(t, "anonymous", server.ID)
}

func TestParseServiceEntryNoAddress(t *testing.T) {
	assert.Nil(t, parseServiceEntry(&mdns.ServiceEntry{Name: "ghost"}))
	assert.Nil(t, parseServiceEntry(nil))
}

func TestStartRejectsBadAddress(t *testing.T) {
	svc := NewService(Config{ServerID: "ember-1", Addr: "no-port"})
	require.Error(t, svc.Start())
	assert.False(t, svc.IsRunning())
}

func TestStopIdempotent(t *testing.T) {
	svc := NewService(Config{ServerID: "ember-1", Addr: "127.0.0.1:5432"})
	require.NoError(t, svc.Stop())
	require.NoError(t, svc.Stop())
}
