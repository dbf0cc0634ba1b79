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

import (
	"fmt"
	"strconv"

	sqlerr "emberdb/internal/errors"
	"emberdb/internal/types"
)

// Parse parses one SQL statement. Trailing semicolons are accepted; text
// after a complete statement is a syntax error.
func Parse(query string) (Statement, error) {
	p := newParser(query)
	stmt, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	for p.cur.Type == TokenSymbol && p.cur.Value == ";" {
		p.next()
	}
	if p.cur.Type != TokenEOF {
		return nil, p.syntaxError("unexpected input after statement")
	}
	return stmt, nil
}

// Parser consumes the token stream with one token of lookahead.
type Parser struct {
	lexer *Lexer
	cur   Token
	peek  Token
}

func newParser(query string) *Parser {
	p := &Parser{lexer: NewLexer(query)}
	p.next()
	p.next()
	return p
}

func (p *Parser) next() {
	p.cur = p.peek
	p.peek = p.lexer.NextToken()
}

func (p *Parser) syntaxError(detail string) error {
	return sqlerr.SyntaxError(detail)
}

func (p *Parser) errUnexpected() error {
	switch p.cur.Type {
	case TokenEOF:
		return p.syntaxError("unexpected end of statement")
	default:
		return p.syntaxError(fmt.Sprintf("unexpected %q", p.cur.Value))
	}
}

// keyword reports whether the current token is the given reserved word.
func (p *Parser) keyword(kw string) bool {
	return p.cur.Type == TokenKeyword && p.cur.Value == kw
}

// acceptKeyword consumes the keyword when present.
func (p *Parser) acceptKeyword(kw string) bool {
	if p.keyword(kw) {
		p.next()
		return true
	}
	return false
}

func (p *Parser) expectKeyword(kw string) error {
	if !p.acceptKeyword(kw) {
		return p.syntaxError(fmt.Sprintf("expected %s", kw))
	}
	return nil
}

func (p *Parser) symbol(sym string) bool {
	return p.cur.Type == TokenSymbol && p.cur.Value == sym
}

func (p *Parser) acceptSymbol(sym string) bool {
	if p.symbol(sym) {
		p.next()
		return true
	}
	return false
}

func (p *Parser) expectSymbol(sym string) error {
	if !p.acceptSymbol(sym) {
		return p.syntaxError(fmt.Sprintf("expected %q", sym))
	}
	return nil
}

func (p *Parser) expectIdent() (string, error) {
	if p.cur.Type != TokenIdent {
		return "", p.syntaxError("expected identifier")
	}
	name := p.cur.Value
	p.next()
	return name, nil
}

func (p *Parser) parseStatement() (Statement, error) {
	switch {
	case p.keyword("CREATE"):
		return p.parseCreate()
	case p.keyword("DROP"):
		return p.parseDrop()
	case p.keyword("INSERT"):
		return p.parseInsert()
	case p.keyword("SELECT"):
		return p.parseSelect()
	case p.keyword("UPDATE"):
		return p.parseUpdate()
	case p.keyword("DELETE"):
		return p.parseDelete()
	case p.keyword("BEGIN"):
		p.next()
		p.acceptKeyword("TRANSACTION")
		p.acceptKeyword("WORK")
		return BeginStmt{}, nil
	case p.keyword("COMMIT"):
		p.next()
		p.acceptKeyword("TRANSACTION")
		p.acceptKeyword("WORK")
		return CommitStmt{}, nil
	case p.keyword("ROLLBACK"):
		p.next()
		p.acceptKeyword("TRANSACTION")
		p.acceptKeyword("WORK")
		return RollbackStmt{}, nil
	case p.keyword("SET"):
		return p.parseSet()
	case p.keyword("PREPARE"):
		return p.parsePrepare()
	case p.keyword("EXECUTE"):
		return p.parseExecute()
	case p.keyword("DEALLOCATE"):
		return p.parseDeallocate()
	}
	return nil, p.errUnexpected()
}

func (p *Parser) parseCreate() (Statement, error) {
	p.next() // CREATE
	switch {
	case p.acceptKeyword("SCHEMA"):
		return p.parseCreateSchema()
	case p.acceptKeyword("TABLE"):
		return p.parseCreateTable()
	}
	return nil, p.errUnexpected()
}

func (p *Parser) parseIfNotExists() (bool, error) {
	if !p.acceptKeyword("IF") {
		return false, nil
	}
	if err := p.expectKeyword("NOT"); err != nil {
		return false, err
	}
	return true, p.expectKeyword("EXISTS")
}

func (p *Parser) parseIfExists() (bool, error) {
	if !p.acceptKeyword("IF") {
		return false, nil
	}
	return true, p.expectKeyword("EXISTS")
}

func (p *Parser) parseCreateSchema() (Statement, error) {
	ifNotExists, err := p.parseIfNotExists()
	if err != nil {
		return nil, err
	}
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	return CreateSchemaStmt{Name: name, IfNotExists: ifNotExists}, nil
}

func (p *Parser) parseCreateTable() (Statement, error) {
	ifNotExists, err := p.parseIfNotExists()
	if err != nil {
		return nil, err
	}
	table, err := p.parseTableName()
	if err != nil {
		return nil, err
	}
	if err := p.expectSymbol("("); err != nil {
		return nil, err
	}
	var columns []ColumnDef
	for {
		name, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		typ, err := p.parseTypeName()
		if err != nil {
			return nil, err
		}
		columns = append(columns, ColumnDef{Name: name, Type: typ})
		if p.acceptSymbol(",") {
			continue
		}
		break
	}
	if err := p.expectSymbol(")"); err != nil {
		return nil, err
	}
	return CreateTableStmt{Table: table, IfNotExists: ifNotExists, Columns: columns}, nil
}

func (p *Parser) parseDrop() (Statement, error) {
	p.next() // DROP
	switch {
	case p.acceptKeyword("SCHEMA"):
		ifExists, err := p.parseIfExists()
		if err != nil {
			return nil, err
		}
		var names []string
		for {
			name, err := p.expectIdent()
			if err != nil {
				return nil, err
			}
			names = append(names, name)
			if !p.acceptSymbol(",") {
				break
			}
		}
		cascade := false
		if p.acceptKeyword("CASCADE") {
			cascade = true
		} else {
			p.acceptKeyword("RESTRICT")
		}
		return DropSchemaStmt{Names: names, IfExists: ifExists, Cascade: cascade}, nil
	case p.acceptKeyword("TABLE"):
		ifExists, err := p.parseIfExists()
		if err != nil {
			return nil, err
		}
		var tables []TableName
		for {
			table, err := p.parseTableName()
			if err != nil {
				return nil, err
			}
			tables = append(tables, table)
			if !p.acceptSymbol(",") {
				break
			}
		}
		return DropTableStmt{Tables: tables, IfExists: ifExists}, nil
	}
	return nil, p.errUnexpected()
}

func (p *Parser) parseTableName() (TableName, error) {
	first, err := p.expectIdent()
	if err != nil {
		return TableName{}, err
	}
	if p.acceptSymbol(".") {
		second, err := p.expectIdent()
		if err != nil {
			return TableName{}, err
		}
		return TableName{Schema: first, Name: second}, nil
	}
	return TableName{Name: first}, nil
}

func (p *Parser) parseInsert() (Statement, error) {
	p.next() // INSERT
	if err := p.expectKeyword("INTO"); err != nil {
		return nil, err
	}
	table, err := p.parseTableName()
	if err != nil {
		return nil, err
	}
	var columns []string
	if p.acceptSymbol("(") {
		for {
			name, err := p.expectIdent()
			if err != nil {
				return nil, err
			}
			columns = append(columns, name)
			if !p.acceptSymbol(",") {
				break
			}
		}
		if err := p.expectSymbol(")"); err != nil {
			return nil, err
		}
	}
	if err := p.expectKeyword("VALUES"); err != nil {
		return nil, err
	}
	var rows [][]Expression
	for {
		if err := p.expectSymbol("("); err != nil {
			return nil, err
		}
		var row []Expression
		for {
			expr, err := p.parseExpression(0)
			if err != nil {
				return nil, err
			}
			row = append(row, expr)
			if !p.acceptSymbol(",") {
				break
			}
		}
		if err := p.expectSymbol(")"); err != nil {
			return nil, err
		}
		rows = append(rows, row)
		if !p.acceptSymbol(",") {
			break
		}
	}
	return InsertStmt{Table: table, Columns: columns, Rows: rows}, nil
}

func (p *Parser) parseSelect() (Statement, error) {
	p.next() // SELECT
	var items []SelectItem
	for {
		if p.acceptSymbol("*") {
			items = append(items, SelectItem{Star: true})
		} else {
			expr, err := p.parseExpression(0)
			if err != nil {
				return nil, err
			}
			items = append(items, SelectItem{Expr: expr})
		}
		if !p.acceptSymbol(",") {
			break
		}
	}
	if err := p.expectKeyword("FROM"); err != nil {
		return nil, err
	}
	table, err := p.parseTableName()
	if err != nil {
		return nil, err
	}
	where, err := p.parseOptionalWhere()
	if err != nil {
		return nil, err
	}
	return SelectStmt{Items: items, Table: table, Where: where}, nil
}

func (p *Parser) parseUpdate() (Statement, error) {
	p.next() // UPDATE
	table, err := p.parseTableName()
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword("SET"); err != nil {
		return nil, err
	}
	var set []Assignment
	for {
		column, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		if err := p.expectSymbol("="); err != nil {
			return nil, err
		}
		value, err := p.parseExpression(0)
		if err != nil {
			return nil, err
		}
		set = append(set, Assignment{Column: column, Value: value})
		if !p.acceptSymbol(",") {
			break
		}
	}
	where, err := p.parseOptionalWhere()
	if err != nil {
		return nil, err
	}
	return UpdateStmt{Table: table, Set: set, Where: where}, nil
}

func (p *Parser) parseDelete() (Statement, error) {
	p.next() // DELETE
	if err := p.expectKeyword("FROM"); err != nil {
		return nil, err
	}
	table, err := p.parseTableName()
	if err != nil {
		return nil, err
	}
	where, err := p.parseOptionalWhere()
	if err != nil {
		return nil, err
	}
	return DeleteStmt{Table: table, Where: where}, nil
}

func (p *Parser) parseOptionalWhere() (Expression, error) {
	if !p.acceptKeyword("WHERE") {
		return nil, nil
	}
	return p.parseExpression(0)
}

func (p *Parser) parseSet() (Statement, error) {
	p.next() // SET
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if !p.acceptSymbol("=") && !p.acceptKeyword("TO") {
		return nil, p.syntaxError("expected = or TO")
	}
	// The value is a single token; drivers send identifiers, strings,
	// or numbers here.
	switch p.cur.Type {
	case TokenIdent, TokenString, TokenNumber, TokenKeyword:
		value := p.cur.Value
		p.next()
		return SetStmt{Name: name, Value: value}, nil
	}
	return nil, p.errUnexpected()
}

func (p *Parser) parsePrepare() (Statement, error) {
	p.next() // PREPARE
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	var paramTypes []types.Type
	if p.acceptSymbol("(") {
		for {
			typ, err := p.parseTypeName()
			if err != nil {
				return nil, err
			}
			paramTypes = append(paramTypes, typ)
			if !p.acceptSymbol(",") {
				break
			}
		}
		if err := p.expectSymbol(")"); err != nil {
			return nil, err
		}
	}
	if err := p.expectKeyword("AS"); err != nil {
		return nil, err
	}
	stmt, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	return PrepareStmt{Name: name, ParamTypes: paramTypes, Statement: stmt}, nil
}

func (p *Parser) parseExecute() (Statement, error) {
	p.next() // EXECUTE
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	var args []Expression
	if p.acceptSymbol("(") {
		for {
			expr, err := p.parseExpression(0)
			if err != nil {
				return nil, err
			}
			args = append(args, expr)
			if !p.acceptSymbol(",") {
				break
			}
		}
		if err := p.expectSymbol(")"); err != nil {
			return nil, err
		}
	}
	return ExecuteStmt{Name: name, Args: args}, nil
}

func (p *Parser) parseDeallocate() (Statement, error) {
	p.next() // DEALLOCATE
	if p.acceptKeyword("ALL") {
		return DeallocateStmt{All: true}, nil
	}
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	return DeallocateStmt{Name: name}, nil
}

// parseTypeName reads a SQL type, including the multi-word spellings and
// optional length arguments.
func (p *Parser) parseTypeName() (types.Type, error) {
	if p.cur.Type == TokenIdent {
		// A word that is not a known type keyword.
		name := p.cur.Value
		return types.Type{}, sqlerr.TypeDoesNotExist(name)
	}
	if p.cur.Type != TokenKeyword {
		return types.Type{}, p.errUnexpected()
	}
	kw := p.cur.Value
	p.next()
	switch kw {
	case "SMALLINT", "INT2":
		return types.TypeOf(types.SmallInt), nil
	case "INT", "INTEGER", "INT4":
		return types.TypeOf(types.Integer), nil
	case "BIGINT", "INT8":
		return types.TypeOf(types.BigInt), nil
	case "REAL", "FLOAT4":
		return types.TypeOf(types.Real), nil
	case "FLOAT8", "FLOAT":
		return types.TypeOf(types.Double), nil
	case "DOUBLE":
		if err := p.expectKeyword("PRECISION"); err != nil {
			return types.Type{}, err
		}
		return types.TypeOf(types.Double), nil
	case "NUMERIC", "DECIMAL":
		// Precision and scale are accepted and not enforced.
		if p.acceptSymbol("(") {
			if _, err := p.expectNumber(); err != nil {
				return types.Type{}, err
			}
			if p.acceptSymbol(",") {
				if _, err := p.expectNumber(); err != nil {
					return types.Type{}, err
				}
			}
			if err := p.expectSymbol(")"); err != nil {
				return types.Type{}, err
			}
		}
		return types.TypeOf(types.Numeric), nil
	case "BOOL", "BOOLEAN":
		return types.TypeOf(types.Bool), nil
	case "CHAR":
		return p.parseSizedString(types.Char, 1)
	case "CHARACTER":
		if p.acceptKeyword("VARYING") {
			return p.parseSizedString(types.VarChar, 0)
		}
		return p.parseSizedString(types.Char, 1)
	case "VARCHAR":
		return p.parseSizedString(types.VarChar, 0)
	case "TEXT":
		return types.TypeOf(types.Text), nil
	case "DATE":
		return types.TypeOf(types.Date), nil
	case "TIME":
		if err := p.parseTimeZoneSuffix(false); err != nil {
			return types.Type{}, err
		}
		return types.TypeOf(types.Time), nil
	case "TIMESTAMP":
		withTZ, err := p.parseTimestampSuffix()
		if err != nil {
			return types.Type{}, err
		}
		if withTZ {
			return types.TypeOf(types.TimestampTZ), nil
		}
		return types.TypeOf(types.Timestamp), nil
	case "TIMESTAMPTZ":
		return types.TypeOf(types.TimestampTZ), nil
	case "INTERVAL":
		return types.TypeOf(types.Interval), nil
	}
	return types.Type{}, sqlerr.TypeDoesNotExist(kw)
}

func (p *Parser) parseSizedString(f types.Family, defaultLen uint32) (types.Type, error) {
	length := defaultLen
	if p.acceptSymbol("(") {
		n, err := p.expectNumber()
		if err != nil {
			return types.Type{}, err
		}
		if err := p.expectSymbol(")"); err != nil {
			return types.Type{}, err
		}
		v, err := strconv.ParseUint(n, 10, 32)
		if err != nil || v < 1 {
			return types.Type{}, p.syntaxError("invalid length modifier")
		}
		length = uint32(v)
	}
	return types.SizedType(f, length), nil
}

func (p *Parser) parseTimestampSuffix() (bool, error) {
	if p.acceptKeyword("WITH") {
		return true, p.parseTimeZoneWords()
	}
	if p.acceptKeyword("WITHOUT") {
		return false, p.parseTimeZoneWords()
	}
	return false, nil
}

func (p *Parser) parseTimeZoneSuffix(allowWith bool) error {
	if p.acceptKeyword("WITHOUT") {
		return p.parseTimeZoneWords()
	}
	if allowWith && p.acceptKeyword("WITH") {
		return p.parseTimeZoneWords()
	}
	return nil
}

func (p *Parser) parseTimeZoneWords() error {
	if err := p.expectKeyword("TIME"); err != nil {
		return err
	}
	return p.expectKeyword("ZONE")
}

func (p *Parser) expectNumber() (string, error) {
	if p.cur.Type != TokenNumber {
		return "", p.syntaxError("expected number")
	}
	n := p.cur.Value
	p.next()
	return n, nil
}

// Binding powers for the precedence-climbing expression parser. A token
// missing from the table ends the expression.
func (p *Parser) infixPrecedence() (types.BinaryOp, int, bool) {
	if p.cur.Type == TokenKeyword {
		switch p.cur.Value {
		case "OR":
			return types.Or, 1, true
		case "AND":
			return types.And, 2, true
		case "LIKE":
			return types.Like, 4, true
		case "NOT":
			if p.peek.Type == TokenKeyword && p.peek.Value == "LIKE" {
				return types.NotLike, 4, true
			}
		}
		return 0, 0, false
	}
	if p.cur.Type != TokenSymbol {
		return 0, 0, false
	}
	switch p.cur.Value {
	case "=":
		return types.Eq, 4, true
	case "<>", "!=":
		return types.NotEq, 4, true
	case "<":
		return types.Lt, 4, true
	case "<=":
		return types.LtEq, 4, true
	case ">":
		return types.Gt, 4, true
	case ">=":
		return types.GtEq, 4, true
	case "+":
		return types.Add, 5, true
	case "-":
		return types.Sub, 5, true
	case "||":
		return types.Concat, 5, true
	case "|":
		return types.BitOr, 5, true
	case "#":
		return types.BitXor, 5, true
	case "*":
		return types.Mul, 6, true
	case "/":
		return types.Div, 6, true
	case "%":
		return types.Mod, 6, true
	case "&":
		return types.BitAnd, 6, true
	case "<<":
		return types.ShiftLeft, 6, true
	case ">>":
		return types.ShiftRight, 6, true
	case "^":
		return types.Exp, 7, true
	}
	return 0, 0, false
}

func (p *Parser) parseExpression(minPrec int) (Expression, error) {
	left, err := p.parsePrefix()
	if err != nil {
		return nil, err
	}
	for {
		// Postfix cast binds tighter than any infix operator.
		if p.symbol("::") {
			p.next()
			target, err := p.parseTypeName()
			if err != nil {
				return nil, err
			}
			left = CastExpr{Expr: left, Target: target}
			continue
		}
		if p.keyword("IS") && minPrec <= 3 {
			p.next()
			negate := p.acceptKeyword("NOT")
			if err := p.expectKeyword("NULL"); err != nil {
				return nil, err
			}
			left = IsNullExpr{Expr: left, Negate: negate}
			continue
		}
		op, prec, ok := p.infixPrecedence()
		if !ok || prec < minPrec {
			return left, nil
		}
		p.next()
		if op == types.NotLike {
			// The NOT of NOT LIKE was the token just consumed.
			if err := p.expectKeyword("LIKE"); err != nil {
				return nil, err
			}
		}
		right, err := p.parseExpression(prec + 1)
		if err != nil {
			return nil, err
		}
		left = BinaryExpr{Op: op, Left: left, Right: right}
	}
}

func (p *Parser) parsePrefix() (Expression, error) {
	switch {
	case p.cur.Type == TokenNumber:
		text := p.cur.Value
		p.next()
		return NumberLit{Text: text}, nil
	case p.cur.Type == TokenString:
		value := p.cur.Value
		p.next()
		return StringLit{Value: value}, nil
	case p.cur.Type == TokenParam:
		index, err := strconv.Atoi(p.cur.Value)
		if err != nil || index < 1 {
			return nil, p.syntaxError("invalid parameter reference")
		}
		p.next()
		return Param{Index: index}, nil
	case p.keyword("NULL"):
		p.next()
		return NullLit{}, nil
	case p.keyword("TRUE"):
		p.next()
		return BoolLit{Value: true}, nil
	case p.keyword("FALSE"):
		p.next()
		return BoolLit{Value: false}, nil
	case p.keyword("NOT"):
		p.next()
		operand, err := p.parseExpression(3)
		if err != nil {
			return nil, err
		}
		return UnaryExpr{Op: types.Not, Operand: operand}, nil
	case p.keyword("CAST"):
		return p.parseCast()
	case p.symbol("-"):
		p.next()
		operand, err := p.parseExpression(8)
		if err != nil {
			return nil, err
		}
		return UnaryExpr{Op: types.UnaryMinus, Operand: operand}, nil
	case p.symbol("+"):
		p.next()
		operand, err := p.parseExpression(8)
		if err != nil {
			return nil, err
		}
		return UnaryExpr{Op: types.UnaryPlus, Operand: operand}, nil
	case p.symbol("~"):
		p.next()
		operand, err := p.parseExpression(8)
		if err != nil {
			return nil, err
		}
		return UnaryExpr{Op: types.BitNot, Operand: operand}, nil
	case p.symbol("("):
		p.next()
		expr, err := p.parseExpression(0)
		if err != nil {
			return nil, err
		}
		if err := p.expectSymbol(")"); err != nil {
			return nil, err
		}
		return expr, nil
	case p.cur.Type == TokenIdent:
		first := p.cur.Value
		p.next()
		if p.acceptSymbol(".") {
			second, err := p.expectIdent()
			if err != nil {
				return nil, err
			}
			return ColumnRef{Table: first, Name: second}, nil
		}
		return ColumnRef{Name: first}, nil
	}
	return nil, p.errUnexpected()
}

func (p *Parser) parseCast() (Expression, error) {
	p.next() // CAST
	if err := p.expectSymbol("("); err != nil {
		return nil, err
	}
	expr, err := p.parseExpression(0)
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword("AS"); err != nil {
		return nil, err
	}
	target, err := p.parseTypeName()
	if err != nil {
		return nil, err
	}
	if err := p.expectSymbol(")"); err != nil {
		return nil, err
	}
	return CastExpr{Expr: expr, Target: target}, nil
}
