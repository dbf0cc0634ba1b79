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
Package pgwire is the protocol edge: a TCP server speaking the
PostgreSQL v3 wire protocol, one session per connection.
*/
package pgwire

import (
	"context"
	"net"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgproto3/v2"

	"emberdb/internal/catalog"
	"emberdb/internal/logging"
	"emberdb/internal/session"
	"emberdb/internal/storage"
)

// Server accepts client connections and runs each one on its own
// goroutine.
type Server struct {
	addr    string
	engine  *storage.Engine
	catalog *catalog.Manager
	opts    session.Options
	log     *logging.Logger
}

// NewServer builds a server over the shared engine and catalog.
func NewServer(addr string, engine *storage.Engine, cat *catalog.Manager, opts session.Options) *Server {
	return &Server{
		addr:    addr,
		engine:  engine,
		catalog: cat,
		opts:    opts,
		log:     logging.NewLogger("pgwire"),
	}
}

// Serve listens until the context is canceled, then stops accepting and
// waits for in-flight connections to finish.
func (s *Server) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return errors.Wrap(err, "listening")
	}
	s.log.Info("listening", "addr", ln.Addr().String())

	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()

	var wg sync.WaitGroup
	for {
		conn, err := ln.Accept()
		if err != nil {
			wg.Wait()
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return errors.Wrap(err, "accepting")
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.handle(conn)
		}()
	}
}

func (s *Server) handle(conn net.Conn) {
	id := uuid.NewString()
	log := s.log.With("conn", id, "remote", conn.RemoteAddr().String())
	log.Debug("connection opened")
	c := &connection{
		id:      id,
		conn:    conn,
		backend: pgproto3.NewBackend(pgproto3.NewChunkReader(conn), conn),
		session: session.New(s.engine, s.catalog, s.opts),
		log:     log,
	}
	c.run()
	log.Debug("connection closed")
}
