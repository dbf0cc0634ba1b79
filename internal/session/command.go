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

package session

import "emberdb/internal/types"

// Format codes for parameter and result values on the wire.
const (
	FormatText   int16 = 0
	FormatBinary int16 = 1
)

// Command is one decoded client request. The protocol edge translates
// frontend messages into these; the session is wire-agnostic.
type Command interface {
	command()
}

// Query runs a statement through the simple-query path.
type Query struct {
	SQL string
}

func (Query) command() {}

// Parse creates or reuses a prepared statement. ParamTypes are the
// declared placeholder types; entries with the unknown family are
// undeclared and resolved from context.
type Parse struct {
	Name       string
	SQL        string
	ParamTypes []types.Type
}

func (Parse) command() {}

// Bind creates a portal from a prepared statement and raw parameter
// values. A nil parameter is NULL. Format lists may be empty (all text),
// a single code applied to every value, or one code per value.
type Bind struct {
	Portal        string
	Statement     string
	ParamFormats  []int16
	Params        [][]byte
	ResultFormats []int16
}

func (Bind) command() {}

// DescribeStatement reports a prepared statement's parameter types and
// result columns.
type DescribeStatement struct {
	Name string
}

func (DescribeStatement) command() {}

// DescribePortal reports a portal's result columns.
type DescribePortal struct {
	Name string
}

func (DescribePortal) command() {}

// Execute runs a portal. MaxRows is accepted for wire compatibility;
// portals always run to completion.
type Execute struct {
	Portal  string
	MaxRows int32
}

func (Execute) command() {}

// Sync ends an extended-query batch and clears any error state.
type Sync struct{}

func (Sync) command() {}

// Flush asks the protocol edge to drain its output buffer.
type Flush struct{}

func (Flush) command() {}

// CloseStatement discards a prepared statement. Closing an unknown name
// is not an error.
type CloseStatement struct {
	Name string
}

func (CloseStatement) command() {}

// ClosePortal discards a portal.
type ClosePortal struct {
	Name string
}

func (ClosePortal) command() {}

// Terminate ends the session.
type Terminate struct{}

func (Terminate) command() {}
