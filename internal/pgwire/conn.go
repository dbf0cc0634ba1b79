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

package pgwire

import (
	"fmt"
	"net"

	"github.com/jackc/pgproto3/v2"

	"emberdb/internal/logging"
	"emberdb/internal/session"
	"emberdb/internal/types"
)

// connection drives one client over the v3 protocol: startup handshake,
// then a receive loop translating frontend messages into session commands
// and session events into backend messages.
type connection struct {
	id      string
	conn    net.Conn
	backend *pgproto3.Backend
	session *session.Session
	log     *logging.ContextLogger
}

func (c *connection) run() {
	defer func() { _ = c.conn.Close() }()
	if err := c.startup(); err != nil {
		c.log.Debug("startup failed", "error", err)
		return
	}
	for {
		msg, err := c.backend.Receive()
		if err != nil {
			c.log.Debug("receive failed", "error", err)
			return
		}
		cmd, ok := translateMessage(msg)
		if !ok {
			if err := c.send(&pgproto3.ErrorResponse{
				Severity: "ERROR",
				Code:     "08P01",
				Message:  fmt.Sprintf("unsupported message type %T", msg),
			}); err != nil {
				return
			}
			continue
		}
		for _, event := range c.session.Handle(cmd) {
			if err := c.sendEvent(event); err != nil {
				c.log.Debug("send failed", "error", err)
				return
			}
		}
		if _, done := cmd.(session.Terminate); done {
			return
		}
	}
}

// startup performs the handshake: an SSLRequest is declined, the startup
// message is accepted without authentication.
func (c *connection) startup() error {
	for {
		msg, err := c.backend.ReceiveStartupMessage()
		if err != nil {
			return err
		}
		switch msg.(type) {
		case *pgproto3.SSLRequest:
			if _, err := c.conn.Write([]byte{'N'}); err != nil {
				return err
			}
		case *pgproto3.StartupMessage:
			if err := c.send(&pgproto3.AuthenticationOk{}); err != nil {
				return err
			}
			if err := c.send(&pgproto3.ParameterStatus{Name: "server_encoding", Value: "UTF8"}); err != nil {
				return err
			}
			if err := c.send(&pgproto3.ParameterStatus{Name: "client_encoding", Value: "UTF8"}); err != nil {
				return err
			}
			return c.send(&pgproto3.ReadyForQuery{TxStatus: 'I'})
		default:
			return fmt.Errorf("unexpected startup message %T", msg)
		}
	}
}

func (c *connection) send(msg pgproto3.BackendMessage) error {
	return c.backend.Send(msg)
}

// translateMessage maps one frontend message to a session command.
func translateMessage(msg pgproto3.FrontendMessage) (session.Command, bool) {
	switch msg := msg.(type) {
	case *pgproto3.Query:
		return session.Query{SQL: msg.String}, true
	case *pgproto3.Parse:
		declared := make([]types.Type, len(msg.ParameterOIDs))
		for i, o := range msg.ParameterOIDs {
			declared[i] = oidType(o)
		}
		return session.Parse{Name: msg.Name, SQL: msg.Query, ParamTypes: declared}, true
	case *pgproto3.Bind:
		return session.Bind{
			Portal:        msg.DestinationPortal,
			Statement:     msg.PreparedStatement,
			ParamFormats:  msg.ParameterFormatCodes,
			Params:        msg.Parameters,
			ResultFormats: msg.ResultFormatCodes,
		}, true
	case *pgproto3.Describe:
		if msg.ObjectType == 'P' {
			return session.DescribePortal{Name: msg.Name}, true
		}
		return session.DescribeStatement{Name: msg.Name}, true
	case *pgproto3.Execute:
		return session.Execute{Portal: msg.Portal, MaxRows: int32(msg.MaxRows)}, true
	case *pgproto3.Close:
		if msg.ObjectType == 'P' {
			return session.ClosePortal{Name: msg.Name}, true
		}
		return session.CloseStatement{Name: msg.Name}, true
	case *pgproto3.Sync:
		return session.Sync{}, true
	case *pgproto3.Flush:
		return session.Flush{}, true
	case *pgproto3.Terminate:
		return session.Terminate{}, true
	}
	return nil, false
}

// sendEvent renders one session event as a backend message.
func (c *connection) sendEvent(event session.Event) error {
	switch event := event.(type) {
	case session.ParseComplete:
		return c.send(&pgproto3.ParseComplete{})
	case session.BindComplete:
		return c.send(&pgproto3.BindComplete{})
	case session.CloseComplete:
		return c.send(&pgproto3.CloseComplete{})
	case session.QueryComplete:
		return c.send(&pgproto3.ReadyForQuery{TxStatus: 'I'})
	case session.StatementParameters:
		oids := make([]uint32, len(event.Types))
		for i, t := range event.Types {
			oids[i] = uint32(typeOid(t.Family))
		}
		return c.send(&pgproto3.ParameterDescription{ParameterOIDs: oids})
	case session.StatementDescription:
		if len(event.Columns) == 0 {
			return c.send(&pgproto3.NoData{})
		}
		fields := make([]pgproto3.FieldDescription, len(event.Columns))
		for i, col := range event.Columns {
			fields[i] = fieldDescription(col.Name, col.Type, session.FormatText)
		}
		return c.send(&pgproto3.RowDescription{Fields: fields})
	case session.RowDescription:
		fields := make([]pgproto3.FieldDescription, len(event.Columns))
		for i, col := range event.Columns {
			fields[i] = fieldDescription(col.Name, col.Type, col.Format)
		}
		return c.send(&pgproto3.RowDescription{Fields: fields})
	case session.DataRow:
		return c.send(&pgproto3.DataRow{Values: event.Values})
	case session.RecordsSelected:
		return c.complete(fmt.Sprintf("SELECT %d", event.Count))
	case session.RecordsInserted:
		return c.complete(fmt.Sprintf("INSERT 0 %d", event.Count))
	case session.RecordsUpdated:
		return c.complete(fmt.Sprintf("UPDATE %d", event.Count))
	case session.RecordsDeleted:
		return c.complete(fmt.Sprintf("DELETE %d", event.Count))
	case session.SchemaCreated:
		return c.complete("CREATE SCHEMA")
	case session.SchemaDropped:
		return c.complete("DROP SCHEMA")
	case session.TableCreated:
		return c.complete("CREATE TABLE")
	case session.TableDropped:
		return c.complete("DROP TABLE")
	case session.TransactionStarted:
		return c.complete("BEGIN")
	case session.TransactionCommitted:
		return c.complete("COMMIT")
	case session.TransactionRolledBack:
		return c.complete("ROLLBACK")
	case session.SettingApplied:
		return c.complete("SET")
	case session.StatementPrepared:
		return c.complete("PREPARE")
	case session.StatementDeallocated:
		return c.complete("DEALLOCATE")
	case session.ErrorResponse:
		return c.send(&pgproto3.ErrorResponse{
			Severity: "ERROR",
			Code:     event.Code,
			Message:  event.Message,
		})
	}
	return fmt.Errorf("unrenderable event %T", event)
}

func (c *connection) complete(tag string) error {
	return c.send(&pgproto3.CommandComplete{CommandTag: []byte(tag)})
}

func fieldDescription(name string, t types.Type, format int16) pgproto3.FieldDescription {
	return pgproto3.FieldDescription{
		Name:         []byte(name),
		DataTypeOID:  uint32(typeOid(t.Family)),
		DataTypeSize: typeSize(t.Family),
		TypeModifier: typeModifier(t),
		Format:       format,
	}
}
