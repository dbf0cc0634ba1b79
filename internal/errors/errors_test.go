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

package errors

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSchemaAlreadyExistsMessage(t *testing.T) {
	err := SchemaAlreadyExists("schema_name")
	require.Equal(t, "42P06", err.Code)
	require.Equal(t, `schema "schema_name" already exists`, err.Message)
}

func TestBindParameterCountMismatchMessage(t *testing.T) {
	err := BindParameterCountMismatch("", 0, 1)
	require.Equal(t, "08P01", err.Code)
	require.Equal(t,
		`Bind message supplies 0 parameters, but prepared statement "" requires 1`,
		err.Message)
}

func TestUndefinedBinaryFunctionMessage(t *testing.T) {
	err := UndefinedBinaryFunction("||", "integer", "integer")
	require.Equal(t, "42883", err.Code)
	require.Equal(t, "operator does not exist: (integer || integer)", err.Message)
}

func TestIsMatchesByKind(t *testing.T) {
	require.True(t, stderrors.Is(SchemaDoesNotExist("a"), SchemaDoesNotExist("b")))
	require.False(t, stderrors.Is(SchemaDoesNotExist("a"), TableDoesNotExist("a")))
}

func TestAsSqlError(t *testing.T) {
	require.Nil(t, AsSqlError(stderrors.New("plain")))
	require.NotNil(t, AsSqlError(SyntaxError("near SELEC")))
}
