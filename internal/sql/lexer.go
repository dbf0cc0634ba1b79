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
Package sql turns SQL text into the statement AST consumed by the analyzer.

The pipeline inside this package is the classic two stages:

	Lexer:  "SELECT col1 FROM s.t WHERE col1 = $1"
	        -> [SELECT] [col1] [FROM] [s] [.] [t] [WHERE] [col1] [=] [$1]

	Parser: token stream -> Statement tree

The parser is a hand-written recursive-descent parser with precedence
climbing for expressions. It understands the PostgreSQL dialect subset the
engine executes: schema and table DDL, INSERT/SELECT/UPDATE/DELETE,
placeholder parameters ($1, $2, ...), casts, and the session statements
(BEGIN/COMMIT/ROLLBACK, SET, PREPARE/EXECUTE/DEALLOCATE).
*/
package sql

import (
	"strings"
	"unicode"
)

// TokenType classifies a lexical token.
type TokenType int

const (
	TokenEOF     TokenType = iota
	TokenIdent             // bare or quoted identifier
	TokenNumber            // numeric literal, integer or decimal
	TokenString            // string literal with quotes removed
	TokenParam             // placeholder $n; Value holds the digits
	TokenKeyword           // reserved word, uppercased
	TokenSymbol            // operator or punctuation
)

// Token is a single lexical unit.
type Token struct {
	Type  TokenType
	Value string
}

// keywords is the reserved-word set. Everything else that looks like a word
// is an identifier.
var keywords = map[string]struct{}{
	"CREATE": {}, "DROP": {}, "SCHEMA": {}, "TABLE": {}, "IF": {}, "NOT": {},
	"EXISTS": {}, "CASCADE": {}, "RESTRICT": {}, "INSERT": {}, "INTO": {},
	"VALUES": {}, "SELECT": {}, "FROM": {}, "WHERE": {}, "UPDATE": {},
	"SET": {}, "DELETE": {}, "NULL": {}, "TRUE": {}, "FALSE": {},
	"AND": {}, "OR": {}, "LIKE": {}, "AS": {}, "CAST": {},
	"SMALLINT": {}, "INT": {}, "INTEGER": {}, "BIGINT": {}, "INT2": {},
	"INT4": {}, "INT8": {}, "REAL": {}, "FLOAT4": {}, "FLOAT8": {},
	"FLOAT": {}, "DOUBLE": {}, "PRECISION": {}, "NUMERIC": {}, "DECIMAL": {},
	"BOOL": {}, "BOOLEAN": {}, "CHAR": {}, "CHARACTER": {}, "VARCHAR": {},
	"VARYING": {}, "TEXT": {}, "DATE": {}, "TIME": {}, "TIMESTAMP": {},
	"TIMESTAMPTZ": {}, "INTERVAL": {}, "WITH": {}, "WITHOUT": {}, "ZONE": {},
	"BEGIN": {}, "COMMIT": {}, "ROLLBACK": {}, "TRANSACTION": {}, "WORK": {},
	"PREPARE": {}, "EXECUTE": {}, "DEALLOCATE": {}, "ALL": {},
	"IS": {}, "TO": {},
}

// Lexer produces tokens from a SQL string. Each call to NextToken advances
// the position; the lexer never backs up.
type Lexer struct {
	input string
	pos   int
}

// NewLexer returns a lexer over the given SQL text.
func NewLexer(input string) *Lexer {
	return &Lexer{input: input}
}

// NextToken returns the next token, or a TokenEOF at end of input. A
// TokenSymbol with value "?" marks a character the lexer cannot classify;
// the parser turns it into a syntax error with position context.
func (l *Lexer) NextToken() Token {
	l.skipSpace()
	if l.pos >= len(l.input) {
		return Token{Type: TokenEOF}
	}
	ch := l.input[l.pos]

	switch {
	case isIdentStart(ch):
		return l.lexWord()
	case ch >= '0' && ch <= '9':
		return l.lexNumber()
	case ch == '\'':
		return l.lexString()
	case ch == '"':
		return l.lexQuotedIdent()
	case ch == '$':
		return l.lexParam()
	}
	return l.lexSymbol()
}

func (l *Lexer) skipSpace() {
	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		if ch == '-' && l.pos+1 < len(l.input) && l.input[l.pos+1] == '-' {
			// line comment
			for l.pos < len(l.input) && l.input[l.pos] != '\n' {
				l.pos++
			}
			continue
		}
		if !unicode.IsSpace(rune(ch)) {
			return
		}
		l.pos++
	}
}

func isIdentStart(ch byte) bool {
	return ch == '_' || unicode.IsLetter(rune(ch))
}

func isIdentPart(ch byte) bool {
	return ch == '_' || ch == '$' || unicode.IsLetter(rune(ch)) || unicode.IsDigit(rune(ch))
}

func (l *Lexer) lexWord() Token {
	start := l.pos
	for l.pos < len(l.input) && isIdentPart(l.input[l.pos]) {
		l.pos++
	}
	word := l.input[start:l.pos]
	upper := strings.ToUpper(word)
	if _, ok := keywords[upper]; ok {
		return Token{Type: TokenKeyword, Value: upper}
	}
	// Unquoted identifiers fold to lower case, as PostgreSQL does.
	return Token{Type: TokenIdent, Value: strings.ToLower(word)}
}

func (l *Lexer) lexNumber() Token {
	start := l.pos
	seenDot := false
	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		if ch == '.' && !seenDot {
			seenDot = true
			l.pos++
			continue
		}
		if ch < '0' || ch > '9' {
			break
		}
		l.pos++
	}
	// Optional exponent: e or E, optional sign, at least one digit.
	if l.pos < len(l.input) && (l.input[l.pos] == 'e' || l.input[l.pos] == 'E') {
		mark := l.pos
		l.pos++
		if l.pos < len(l.input) && (l.input[l.pos] == '+' || l.input[l.pos] == '-') {
			l.pos++
		}
		if l.pos < len(l.input) && l.input[l.pos] >= '0' && l.input[l.pos] <= '9' {
			for l.pos < len(l.input) && l.input[l.pos] >= '0' && l.input[l.pos] <= '9' {
				l.pos++
			}
		} else {
			l.pos = mark
		}
	}
	return Token{Type: TokenNumber, Value: l.input[start:l.pos]}
}

// lexString reads a single-quoted literal. A doubled quote inside the
// literal is an escaped quote.
func (l *Lexer) lexString() Token {
	l.pos++ // opening quote
	var sb strings.Builder
	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		if ch == '\'' {
			if l.pos+1 < len(l.input) && l.input[l.pos+1] == '\'' {
				sb.WriteByte('\'')
				l.pos += 2
				continue
			}
			l.pos++
			return Token{Type: TokenString, Value: sb.String()}
		}
		sb.WriteByte(ch)
		l.pos++
	}
	// Unterminated literal; surface what we have, the parser rejects it.
	return Token{Type: TokenSymbol, Value: "?"}
}

// lexQuotedIdent reads a double-quoted identifier, preserving case.
func (l *Lexer) lexQuotedIdent() Token {
	l.pos++
	var sb strings.Builder
	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		if ch == '"' {
			if l.pos+1 < len(l.input) && l.input[l.pos+1] == '"' {
				sb.WriteByte('"')
				l.pos += 2
				continue
			}
			l.pos++
			return Token{Type: TokenIdent, Value: sb.String()}
		}
		sb.WriteByte(ch)
		l.pos++
	}
	return Token{Type: TokenSymbol, Value: "?"}
}

func (l *Lexer) lexParam() Token {
	start := l.pos
	l.pos++
	digits := l.pos
	for l.pos < len(l.input) && l.input[l.pos] >= '0' && l.input[l.pos] <= '9' {
		l.pos++
	}
	if l.pos == digits {
		// A lone $ is not a placeholder.
		l.pos = start + 1
		return Token{Type: TokenSymbol, Value: "$"}
	}
	return Token{Type: TokenParam, Value: l.input[digits:l.pos]}
}

// twoByteSymbols are matched before their one-byte prefixes.
var twoByteSymbols = []string{"<=", ">=", "<>", "!=", "||", "<<", ">>", "::"}

func (l *Lexer) lexSymbol() Token {
	if l.pos+1 < len(l.input) {
		two := l.input[l.pos : l.pos+2]
		for _, sym := range twoByteSymbols {
			if two == sym {
				l.pos += 2
				return Token{Type: TokenSymbol, Value: sym}
			}
		}
	}
	ch := l.input[l.pos]
	switch ch {
	case '+', '-', '*', '/', '%', '^', '=', '<', '>', '(', ')', ',', ';', '.', '&', '|', '#', '~':
		l.pos++
		return Token{Type: TokenSymbol, Value: string(ch)}
	}
	l.pos++
	return Token{Type: TokenSymbol, Value: "?"}
}
