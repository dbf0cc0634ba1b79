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

/*
Package discovery provides mDNS/DNS-SD service discovery for EmberDB.

A server advertises its SQL endpoint as _emberdb._tcp.local. so clients
on the local network can find it without configuration. Each instance
publishes its listen port plus TXT records carrying the server id and
version.
*/
package discovery

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/mdns"

	"emberdb/internal/logging"
)

const (
	// ServiceType is the mDNS service type for EmberDB.
	ServiceType = "_emberdb._tcp"

	// DefaultTimeout is the default timeout for server discovery.
	DefaultTimeout = 5 * time.Second
)

// Server represents an EmberDB instance found via service discovery.
type Server struct {
	ID           string
	Addr         string // host:port of the SQL endpoint
	Version      string
	DiscoveredAt time.Time
}

// Config holds configuration for service advertisement.
type Config struct {
	ServerID string
	Addr     string // address to advertise, host:port
	Version  string
}

// Service advertises this instance over mDNS and can look up others.
type Service struct {
	config  Config
	log     *logging.Logger
	mu      sync.RWMutex
	server  *mdns.Server
	running bool
}

// NewService creates a new discovery service.
func NewService(config Config) *Service {
	return &Service{
		config: config,
		log:    logging.NewLogger("discovery"),
	}
}

// Start begins advertising this instance.
func (d *Service) Start() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.running {
		return nil
	}

	host, portStr, err := net.SplitHostPort(d.config.Addr)
	if err != nil {
		return fmt.Errorf("invalid advertise address: %w", err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return fmt.Errorf("invalid advertise port: %w", err)
	}

	// An unspecified host advertises on every interface.
	var ips []net.IP
	if host == "" || host == "0.0.0.0" {
		ips = localIPs()
	} else if ip := net.ParseIP(host); ip != nil {
		ips = []net.IP{ip}
	}

	txtRecords := []string{
		fmt.Sprintf("server_id=%s", d.config.ServerID),
		fmt.Sprintf("version=%s", d.config.Version),
	}

	zone, err := mdns.NewMDNSService(
		d.config.ServerID, // instance name
		ServiceType,
		"", // domain (empty = .local)
		"", // host name (empty = auto)
		port,
		ips,
		txtRecords,
	)
	if err != nil {
		return fmt.Errorf("failed to create mDNS service: %w", err)
	}

	server, err := mdns.NewServer(&mdns.Config{Zone: zone})
	if err != nil {
		return fmt.Errorf("failed to create mDNS server: %w", err)
	}
	d.server = server
	d.running = true

	d.log.Info("advertising", "server_id", d.config.ServerID, "addr", d.config.Addr, "service_type", ServiceType)
	return nil
}

// Stop stops advertising.
func (d *Service) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.running {
		return nil
	}

	if d.server != nil {
		d.server.Shutdown()
		d.server = nil
	}
	d.running = false
	d.log.Info("stopped advertising")
	return nil
}

// IsRunning reports whether the service is advertising.
func (d *Service) IsRunning() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.running
}

// Discover looks up EmberDB instances on the local network. Instances
// advertised by this service itself are filtered out.
func (d *Service) Discover(timeout time.Duration) ([]*Server, error) {
	return discover(timeout, d.config.ServerID)
}

// Discover looks up EmberDB instances without advertising anything.
func Discover(timeout time.Duration) ([]*Server, error) {
	return discover(timeout, "")
}

func discover(timeout time.Duration, selfID string) ([]*Server, error) {
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	entriesCh := make(chan *mdns.ServiceEntry, 10)
	var mu sync.Mutex
	var servers []*Server

	go func() {
		for entry := range entriesCh {
			server := parseServiceEntry(entry)
			if server != nil && server.ID != selfID {
				mu.Lock()
				servers = append(servers, server)
				mu.Unlock()
			}
		}
	}()

	params := &mdns.QueryParam{
		Service:             ServiceType,
		Domain:              "local",
		Timeout:             timeout,
		Entries:             entriesCh,
		WantUnicastResponse: true,
	}

	if err := mdns.Query(params); err != nil {
		return nil, fmt.Errorf("mDNS query failed: %w", err)
	}

	close(entriesCh)

	mu.Lock()
	defer mu.Unlock()
	return servers, nil
}

// DiscoverWithContext discovers instances with context cancellation support.
func DiscoverWithContext(ctx context.Context, timeout time.Duration) ([]*Server, error) {
	resultCh := make(chan []*Server, 1)
	errCh := make(chan error, 1)

	go func() {
		servers, err := Discover(timeout)
		if err != nil {
			errCh <- err
			return
		}
		resultCh <- servers
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case err := <-errCh:
		return nil, err
	case servers := <-resultCh:
		return servers, nil
	}
}

// parseServiceEntry parses an mDNS service entry into a Server.
func parseServiceEntry(entry *mdns.ServiceEntry) *Server {
	if entry == nil {
		return nil
	}

	var ip string
	if entry.AddrV4 != nil {
		ip = entry.AddrV4.String()
	} else if entry.AddrV6 != nil {
		ip = entry.AddrV6.String()
	}
	if ip == "" {
		return nil
	}

	server := &Server{
		Addr:         fmt.Sprintf("%s:%d", ip, entry.Port),
		DiscoveredAt: time.Now(),
	}

	for _, txt := range entry.InfoFields {
		parts := strings.SplitN(txt, "=", 2)
		if len(parts) != 2 {
			continue
		}
		switch parts[0] {
		case "server_id":
			server.ID = parts[1]
		case "version":
			server.Version = parts[1]
		}
	}

	if server.ID == "" {
		server.ID = entry.Name
	}

	return server
}

// localIPs returns all non-loopback IPv4 addresses.
func localIPs() []net.IP {
	var ips []net.IP

	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return ips
	}

	for _, addr := range addrs {
		if ipnet, ok := addr.(*net.IPNet); ok {
			if ipnet.IP.IsLoopback() {
				continue
			}
			if ipnet.IP.To4() != nil {
				ips = append(ips, ipnet.IP)
			}
		}
	}

	return ips
}
