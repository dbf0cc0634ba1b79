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
Package errors provides the SQL error model for EmberDB.

Every error that can reach a client is a *SqlError carrying a kind, a
five-character SQLSTATE code, and the exact message text PostgreSQL clients
expect for that condition. Pipeline stages return *SqlError directly; the
protocol edge maps it onto an ErrorResponse without further translation.

Infrastructure failures (storage, network) are not SqlErrors. They are wrapped
with github.com/cockroachdb/errors at the layer that observes them and surface
as an internal error (SQLSTATE XX000) if they ever cross the wire.
*/
package errors

import (
	"fmt"
)

// Kind identifies the class of SQL error.
type Kind int

const (
	KindInternal Kind = iota
	KindSchemaAlreadyExists
	KindSchemaDoesNotExist
	KindSchemaHasDependentObjects
	KindTableAlreadyExists
	KindTableDoesNotExist
	KindColumnDoesNotExist
	KindDuplicateColumn
	KindIndeterminateParameterDataType
	KindInvalidParameterValue
	KindPreparedStatementDoesNotExist
	KindPortalDoesNotExist
	KindTypeDoesNotExist
	KindProtocolViolation
	KindFeatureNotSupported
	KindSyntaxError
	KindInvalidTextRepresentation
	KindOutOfRange
	KindMostSpecificTypeMismatch
	KindStringDataRightTruncation
	KindUndefinedBinaryFunction
	KindUndefinedUnaryFunction
	KindAmbiguousColumn
	KindCannotCoerce
	KindDatatypeMismatch
	KindCatalogAlreadyExists
	KindCatalogDoesNotExist
	KindCatalogHasDependentObjects
)

// SQLSTATE codes, per the PostgreSQL error code appendix.
const (
	CodeInternalError              = "XX000"
	CodeDuplicateDatabase          = "42P04"
	CodeInvalidCatalogName         = "3D000"
	CodeDuplicateSchema            = "42P06"
	CodeInvalidSchemaName          = "3F000"
	CodeDependentObjectsStillExist = "2BP01"
	CodeDuplicateTable             = "42P07"
	CodeUndefinedTable             = "42P01"
	CodeUndefinedColumn            = "42703"
	CodeDuplicateColumn            = "42701"
	CodeIndeterminateDatatype      = "42P18"
	CodeInvalidParameterValue      = "22023"
	CodeInvalidSQLStatementName    = "26000"
	CodeInvalidCursorName          = "34000"
	CodeUndefinedObject            = "42704"
	CodeProtocolViolation          = "08P01"
	CodeFeatureNotSupported        = "0A000"
	CodeSyntaxError                = "42601"
	CodeInvalidTextRepresentation  = "22P02"
	CodeNumericValueOutOfRange     = "22003"
	CodeMostSpecificTypeMismatch   = "2200G"
	CodeStringDataRightTruncation  = "22026"
	CodeUndefinedFunction          = "42883"
	CodeAmbiguousColumn            = "42702"
	CodeCannotCoerce               = "42846"
	CodeDatatypeMismatch           = "42804"
)

// SqlError is an error addressed to a SQL client. Severity is always ERROR;
// EmberDB does not raise warnings or notices through this type.
type SqlError struct {
	Kind    Kind
	Code    string
	Message string
}

// Error implements the error interface.
func (e *SqlError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is reports whether target is a *SqlError of the same kind. It makes
// sentinel-style comparison with errors.Is work across constructed instances.
func (e *SqlError) Is(target error) bool {
	t, ok := target.(*SqlError)
	return ok && t.Kind == e.Kind
}

// AsSqlError extracts a *SqlError from err, or nil if err is not one.
func AsSqlError(err error) *SqlError {
	if e, ok := err.(*SqlError); ok {
		return e
	}
	return nil
}

// Internal wraps an unexpected failure as an internal SQL error.
func Internal(cause error) *SqlError {
	return &SqlError{
		Kind:    KindInternal,
		Code:    CodeInternalError,
		Message: fmt.Sprintf("internal error: %v", cause),
	}
}

// CatalogAlreadyExists reports an attempt to create an existing catalog.
func CatalogAlreadyExists(catalog string) *SqlError {
	return &SqlError{
		Kind:    KindCatalogAlreadyExists,
		Code:    CodeDuplicateDatabase,
		Message: fmt.Sprintf("catalog \"%s\" already exists", catalog),
	}
}

// CatalogDoesNotExist reports a reference to an unknown catalog.
func CatalogDoesNotExist(catalog string) *SqlError {
	return &SqlError{
		Kind:    KindCatalogDoesNotExist,
		Code:    CodeInvalidCatalogName,
		Message: fmt.Sprintf("catalog \"%s\" does not exist", catalog),
	}
}

// CatalogHasDependentObjects reports a restricted drop of a non-empty catalog.
func CatalogHasDependentObjects(catalog string) *SqlError {
	return &SqlError{
		Kind:    KindCatalogHasDependentObjects,
		Code:    CodeDependentObjectsStillExist,
		Message: fmt.Sprintf("catalog \"%s\" has dependent objects", catalog),
	}
}

// SchemaAlreadyExists reports an attempt to create an existing schema.
func SchemaAlreadyExists(schema string) *SqlError {
	return &SqlError{
		Kind:    KindSchemaAlreadyExists,
		Code:    CodeDuplicateSchema,
		Message: fmt.Sprintf("schema \"%s\" already exists", schema),
	}
}

// SchemaDoesNotExist reports a reference to an unknown schema.
func SchemaDoesNotExist(schema string) *SqlError {
	return &SqlError{
		Kind:    KindSchemaDoesNotExist,
		Code:    CodeInvalidSchemaName,
		Message: fmt.Sprintf("schema \"%s\" does not exist", schema),
	}
}

// SchemaHasDependentObjects reports a restricted drop of a non-empty schema.
func SchemaHasDependentObjects(schema string) *SqlError {
	return &SqlError{
		Kind:    KindSchemaHasDependentObjects,
		Code:    CodeDependentObjectsStillExist,
		Message: fmt.Sprintf("schema \"%s\" has dependent objects", schema),
	}
}

// TableAlreadyExists reports an attempt to create an existing table.
func TableAlreadyExists(schema, table string) *SqlError {
	return &SqlError{
		Kind:    KindTableAlreadyExists,
		Code:    CodeDuplicateTable,
		Message: fmt.Sprintf("table \"%s.%s\" already exists", schema, table),
	}
}

// TableDoesNotExist reports a reference to an unknown table.
func TableDoesNotExist(table string) *SqlError {
	return &SqlError{
		Kind:    KindTableDoesNotExist,
		Code:    CodeUndefinedTable,
		Message: fmt.Sprintf("table \"%s\" does not exist", table),
	}
}

// ColumnDoesNotExist reports a reference to an unknown column.
func ColumnDoesNotExist(column string) *SqlError {
	return &SqlError{
		Kind:    KindColumnDoesNotExist,
		Code:    CodeUndefinedColumn,
		Message: fmt.Sprintf("column %s does not exist", column),
	}
}

// DuplicateColumn reports the same column named twice in a column list.
func DuplicateColumn(column string) *SqlError {
	return &SqlError{
		Kind:    KindDuplicateColumn,
		Code:    CodeDuplicateColumn,
		Message: fmt.Sprintf("column \"%s\" specified more than once", column),
	}
}

// IndeterminateParameterDataType reports a placeholder whose type could not
// be inferred.
func IndeterminateParameterDataType(index int) *SqlError {
	return &SqlError{
		Kind:    KindIndeterminateParameterDataType,
		Code:    CodeIndeterminateDatatype,
		Message: fmt.Sprintf("could not determine data type of parameter $%d", index),
	}
}

// InvalidParameterValue reports a malformed parameter value.
func InvalidParameterValue(message string) *SqlError {
	return &SqlError{
		Kind:    KindInvalidParameterValue,
		Code:    CodeInvalidParameterValue,
		Message: message,
	}
}

// PreparedStatementDoesNotExist reports a reference to an unknown prepared
// statement.
func PreparedStatementDoesNotExist(name string) *SqlError {
	return &SqlError{
		Kind:    KindPreparedStatementDoesNotExist,
		Code:    CodeInvalidSQLStatementName,
		Message: fmt.Sprintf("prepared statement %s does not exist", name),
	}
}

// PortalDoesNotExist reports a reference to an unknown portal.
func PortalDoesNotExist(name string) *SqlError {
	return &SqlError{
		Kind:    KindPortalDoesNotExist,
		Code:    CodeInvalidCursorName,
		Message: fmt.Sprintf("portal %s does not exist", name),
	}
}

// TypeDoesNotExist reports an unknown type name or OID.
func TypeDoesNotExist(typeName string) *SqlError {
	return &SqlError{
		Kind:    KindTypeDoesNotExist,
		Code:    CodeUndefinedObject,
		Message: fmt.Sprintf("type \"%s\" does not exist", typeName),
	}
}

// ProtocolViolation reports a frontend message that breaks the wire contract.
func ProtocolViolation(message string) *SqlError {
	return &SqlError{
		Kind:    KindProtocolViolation,
		Code:    CodeProtocolViolation,
		Message: message,
	}
}

// BindParameterCountMismatch is the protocol violation raised when a Bind
// message supplies a different number of parameters than the statement needs.
func BindParameterCountMismatch(statement string, actual, expected int) *SqlError {
	return ProtocolViolation(fmt.Sprintf(
		"Bind message supplies %d parameters, but prepared statement \"%s\" requires %d",
		actual, statement, expected,
	))
}

// FeatureNotSupported reports use of SQL the engine does not implement.
func FeatureNotSupported(feature string) *SqlError {
	return &SqlError{
		Kind:    KindFeatureNotSupported,
		Code:    CodeFeatureNotSupported,
		Message: fmt.Sprintf("%s is not supported", feature),
	}
}

// SyntaxError reports unparseable SQL text.
func SyntaxError(detail string) *SqlError {
	return &SqlError{
		Kind:    KindSyntaxError,
		Code:    CodeSyntaxError,
		Message: fmt.Sprintf("syntax error: %s", detail),
	}
}

// InvalidTextRepresentation reports a literal that cannot be read as the
// target type.
func InvalidTextRepresentation(typeName, value string) *SqlError {
	return &SqlError{
		Kind:    KindInvalidTextRepresentation,
		Code:    CodeInvalidTextRepresentation,
		Message: fmt.Sprintf("invalid input syntax for type %s: \"%s\"", typeName, value),
	}
}

// OutOfRange reports a numeric value outside the target type's range.
func OutOfRange(typeName string) *SqlError {
	return &SqlError{
		Kind:    KindOutOfRange,
		Code:    CodeNumericValueOutOfRange,
		Message: fmt.Sprintf("%s out of range", typeName),
	}
}

// MostSpecificTypeMismatch reports a value that does not fit the most
// specific inferred type.
func MostSpecificTypeMismatch(value, typeName, column string, index int) *SqlError {
	return &SqlError{
		Kind: KindMostSpecificTypeMismatch,
		Code: CodeMostSpecificTypeMismatch,
		Message: fmt.Sprintf(
			"invalid input syntax for type %s for column \"%s\" at position %d: \"%s\"",
			typeName, column, index, value,
		),
	}
}

// StringDataRightTruncation reports a string longer than its column allows.
func StringDataRightTruncation(typeName string, length uint32) *SqlError {
	return &SqlError{
		Kind:    KindStringDataRightTruncation,
		Code:    CodeStringDataRightTruncation,
		Message: fmt.Sprintf("value too long for type %s(%d)", typeName, length),
	}
}

// UndefinedBinaryFunction reports a binary operator applied to operand types
// for which it is not defined.
func UndefinedBinaryFunction(operator, left, right string) *SqlError {
	return &SqlError{
		Kind:    KindUndefinedBinaryFunction,
		Code:    CodeUndefinedFunction,
		Message: fmt.Sprintf("operator does not exist: (%s %s %s)", left, operator, right),
	}
}

// UndefinedUnaryFunction reports a unary operator applied to an operand type
// for which it is not defined.
func UndefinedUnaryFunction(operator, operand string) *SqlError {
	return &SqlError{
		Kind:    KindUndefinedUnaryFunction,
		Code:    CodeUndefinedFunction,
		Message: fmt.Sprintf("operator does not exist: %s %s", operator, operand),
	}
}

// AmbiguousColumn reports a column reference that matches more than one
// column.
func AmbiguousColumn(column string) *SqlError {
	return &SqlError{
		Kind:    KindAmbiguousColumn,
		Code:    CodeAmbiguousColumn,
		Message: fmt.Sprintf("column reference \"%s\" is ambiguous", column),
	}
}

// CannotCoerce reports a cast between types with no defined coercion.
func CannotCoerce(from, to string) *SqlError {
	return &SqlError{
		Kind:    KindCannotCoerce,
		Code:    CodeCannotCoerce,
		Message: fmt.Sprintf("cannot cast type %s to %s", from, to),
	}
}

// ArgumentMustBeBoolean reports a clause whose expression does not yield a
// boolean.
func ArgumentMustBeBoolean(clause, actual string) *SqlError {
	return &SqlError{
		Kind:    KindDatatypeMismatch,
		Code:    CodeDatatypeMismatch,
		Message: fmt.Sprintf("argument of %s must be type boolean, not type %s", clause, actual),
	}
}

// DatatypeMismatch reports a value of the wrong type for its target column.
func DatatypeMismatch(expected, actual, column string) *SqlError {
	return &SqlError{
		Kind:    KindDatatypeMismatch,
		Code:    CodeDatatypeMismatch,
		Message: fmt.Sprintf("column \"%s\" is of type %s but expression is of type %s", column, expected, actual),
	}
}
