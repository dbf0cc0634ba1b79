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

package sql

import "emberdb/internal/types"

// Statement is a parsed SQL statement. The statementNode method is a marker
// that restricts the interface to the types below, the same pattern go/ast
// uses for its node interfaces.
type Statement interface {
	statementNode()
}

// TableName is a possibly schema-qualified table reference. An empty Schema
// resolves to the default schema during analysis.
type TableName struct {
	Schema string
	Name   string
}

// String renders the reference in schema.table form.
func (t TableName) String() string {
	if t.Schema == "" {
		return t.Name
	}
	return t.Schema + "." + t.Name
}

// ColumnDef is one column of a CREATE TABLE statement.
type ColumnDef struct {
	Name string
	Type types.Type
}

// CreateSchemaStmt is CREATE SCHEMA [IF NOT EXISTS] name.
type CreateSchemaStmt struct {
	Name        string
	IfNotExists bool
}

func (CreateSchemaStmt) statementNode() {}

// DropSchemaStmt is DROP SCHEMA [IF EXISTS] name [CASCADE | RESTRICT].
type DropSchemaStmt struct {
	Names    []string
	IfExists bool
	Cascade  bool
}

func (DropSchemaStmt) statementNode() {}

// CreateTableStmt is CREATE TABLE [IF NOT EXISTS] name (columns).
type CreateTableStmt struct {
	Table       TableName
	IfNotExists bool
	Columns     []ColumnDef
}

func (CreateTableStmt) statementNode() {}

// DropTableStmt is DROP TABLE [IF EXISTS] name [, ...].
type DropTableStmt struct {
	Tables   []TableName
	IfExists bool
}

func (DropTableStmt) statementNode() {}

// InsertStmt is INSERT INTO table [(columns)] VALUES (...), (...).
type InsertStmt struct {
	Table   TableName
	Columns []string
	Rows    [][]Expression
}

func (InsertStmt) statementNode() {}

// SelectItem is one projection item: either the star or an expression.
type SelectItem struct {
	Star bool
	Expr Expression
}

// SelectStmt is SELECT items FROM table [WHERE cond].
type SelectStmt struct {
	Items []SelectItem
	Table TableName
	Where Expression
}

func (SelectStmt) statementNode() {}

// Assignment is one column = expression pair of an UPDATE SET list.
type Assignment struct {
	Column string
	Value  Expression
}

// UpdateStmt is UPDATE table SET assignments [WHERE cond].
type UpdateStmt struct {
	Table TableName
	Set   []Assignment
	Where Expression
}

func (UpdateStmt) statementNode() {}

// DeleteStmt is DELETE FROM table [WHERE cond].
type DeleteStmt struct {
	Table TableName
	Where Expression
}

func (DeleteStmt) statementNode() {}

// BeginStmt is BEGIN [TRANSACTION | WORK].
type BeginStmt struct{}

func (BeginStmt) statementNode() {}

// CommitStmt is COMMIT [TRANSACTION | WORK].
type CommitStmt struct{}

func (CommitStmt) statementNode() {}

// RollbackStmt is ROLLBACK [TRANSACTION | WORK].
type RollbackStmt struct{}

func (RollbackStmt) statementNode() {}

// SetStmt is SET name = value (or SET name TO value). The engine
// acknowledges these without acting on them; drivers send them on connect.
type SetStmt struct {
	Name  string
	Value string
}

func (SetStmt) statementNode() {}

// PrepareStmt is PREPARE name [(types)] AS statement.
type PrepareStmt struct {
	Name       string
	ParamTypes []types.Type
	Statement  Statement
}

func (PrepareStmt) statementNode() {}

// ExecuteStmt is EXECUTE name [(arguments)].
type ExecuteStmt struct {
	Name string
	Args []Expression
}

func (ExecuteStmt) statementNode() {}

// DeallocateStmt is DEALLOCATE [ALL | name].
type DeallocateStmt struct {
	Name string
	All  bool
}

func (DeallocateStmt) statementNode() {}

// Expression is a parsed scalar expression.
type Expression interface {
	exprNode()
}

// NumberLit is an integer or decimal literal, kept as written so the typing
// pass can pick the narrowest type that holds it.
type NumberLit struct {
	Text string
}

func (NumberLit) exprNode() {}

// StringLit is a quoted string literal.
type StringLit struct {
	Value string
}

func (StringLit) exprNode() {}

// BoolLit is TRUE or FALSE.
type BoolLit struct {
	Value bool
}

func (BoolLit) exprNode() {}

// NullLit is NULL.
type NullLit struct{}

func (NullLit) exprNode() {}

// IsNullExpr is the IS NULL / IS NOT NULL predicate.
type IsNullExpr struct {
	Expr   Expression
	Negate bool
}

func (IsNullExpr) exprNode() {}

// Param is a placeholder $n. Index is 1-based as written in the query.
type Param struct {
	Index int
}

func (Param) exprNode() {}

// ColumnRef is a column reference, optionally qualified by table.
type ColumnRef struct {
	Table string
	Name  string
}

func (ColumnRef) exprNode() {}

// BinaryExpr applies a binary operator.
type BinaryExpr struct {
	Op    types.BinaryOp
	Left  Expression
	Right Expression
}

func (BinaryExpr) exprNode() {}

// UnaryExpr applies a unary operator.
type UnaryExpr struct {
	Op      types.UnaryOp
	Operand Expression
}

func (UnaryExpr) exprNode() {}

// CastExpr is CAST(expr AS type) or expr::type.
type CastExpr struct {
	Expr   Expression
	Target types.Type
}

func (CastExpr) exprNode() {}
