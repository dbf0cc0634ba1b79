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
Package main is the interactive shell for EmberDB.

The shell is a small REPL speaking the PostgreSQL wire protocol through
the standard database/sql interface, so it works against any EmberDB
server (and, incidentally, against PostgreSQL itself).

Statements are buffered until a terminating semicolon, so multi-line
input works the way it does in psql:

	emberdb> CREATE TABLE users (
	      ->   id integer,
	      ->   name varchar(40)
	      -> );
	CREATE TABLE

Local commands:

	\q          quit
	\h          help
	\timing     toggle query timing
*/
package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chzyer/readline"
	_ "github.com/lib/pq"

	"emberdb/internal/banner"
)

// completions lists the commands and keywords offered for tab completion.
var completions = []string{
	"\\q", "\\quit", "\\h", "\\help", "\\timing",
	"SELECT", "INSERT", "UPDATE", "DELETE",
	"CREATE", "DROP", "BEGIN", "COMMIT", "ROLLBACK", "SET",
	"PREPARE", "EXECUTE", "DEALLOCATE",
	"FROM", "WHERE", "AND", "OR", "NOT", "LIKE", "VALUES", "INTO",
	"SCHEMA", "TABLE", "IF", "EXISTS", "CASCADE", "RESTRICT",
	"SMALLINT", "INTEGER", "BIGINT", "NUMERIC", "REAL", "DOUBLE", "PRECISION",
	"CHAR", "VARCHAR", "TEXT", "BOOLEAN",
	"DATE", "TIME", "TIMESTAMP", "INTERVAL",
	"NULL", "IS", "TRUE", "FALSE", "AS",
}

type shell struct {
	db     *sql.DB
	timing bool
}

func main() {
	host := flag.String("h", "localhost", "server host")
	port := flag.Int("p", 5432, "server port")
	execute := flag.String("c", "", "execute the statement and exit")
	flag.Parse()

	dsn := fmt.Sprintf("host=%s port=%d user=ember dbname=emberdb sslmode=disable", *host, *port)
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		fmt.Fprintf(os.Stderr, "could not connect to %s:%d: %v\n", *host, *port, err)
		os.Exit(1)
	}

	sh := &shell{db: db}

	if *execute != "" {
		if err := sh.run(*execute); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
		return
	}

	fmt.Printf("EmberDB shell (v%s). Connected to %s:%d.\n", banner.Version, *host, *port)
	fmt.Println(`Type SQL statements terminated by ";", or \h for help.`)
	fmt.Println()

	sh.repl()
}

func completer() *readline.PrefixCompleter {
	items := make([]readline.PrefixCompleterInterface, 0, len(completions))
	for _, word := range completions {
		items = append(items, readline.PcItem(word))
	}
	return readline.NewPrefixCompleter(items...)
}

func historyFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".emberdb_history")
}

func (s *shell) repl() {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:            "emberdb> ",
		HistoryFile:       historyFile(),
		AutoComplete:      completer(),
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer rl.Close()

	var buffer strings.Builder
	for {
		if buffer.Len() == 0 {
			rl.SetPrompt("emberdb> ")
		} else {
			rl.SetPrompt("      -> ")
		}

		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			buffer.Reset()
			continue
		}
		if err != nil {
			return
		}

		trimmed := strings.TrimSpace(line)
		if buffer.Len() == 0 {
			if trimmed == "" {
				continue
			}
			if strings.HasPrefix(trimmed, "\\") {
				if s.localCommand(trimmed) {
					return
				}
				continue
			}
		}

		buffer.WriteString(line)
		buffer.WriteString("\n")

		if !strings.HasSuffix(trimmed, ";") {
			continue
		}

		stmt := strings.TrimSpace(buffer.String())
		buffer.Reset()
		stmt = strings.TrimSuffix(stmt, ";")

		if err := s.run(stmt); err != nil {
			fmt.Printf("ERROR: %v\n", err)
		}
	}
}

// localCommand handles backslash commands. Returns true if the shell
// should exit.
func (s *shell) localCommand(input string) bool {
	switch strings.Fields(input)[0] {
	case "\\q", "\\quit":
		return true
	case "\\h", "\\help":
		fmt.Println(`Local commands:
  \q          quit
  \h          show this help
  \timing     toggle query timing

Everything else is sent to the server as SQL, terminated by ";".`)
	case "\\timing":
		s.timing = !s.timing
		if s.timing {
			fmt.Println("Timing is on.")
		} else {
			fmt.Println("Timing is off.")
		}
	default:
		fmt.Printf("unknown command %s, try \\h\n", input)
	}
	return false
}

// run executes a single statement and prints the result.
func (s *shell) run(stmt string) error {
	start := time.Now()

	var err error
	if returnsRows(stmt) {
		err = s.query(stmt)
	} else {
		err = s.exec(stmt)
	}
	if err != nil {
		return err
	}

	if s.timing {
		fmt.Printf("Time: %.3f ms\n", float64(time.Since(start).Microseconds())/1000.0)
	}
	return nil
}

// returnsRows reports whether the statement produces a result set.
func returnsRows(stmt string) bool {
	fields := strings.Fields(strings.ToUpper(stmt))
	if len(fields) == 0 {
		return false
	}
	switch fields[0] {
	case "SELECT":
		return true
	case "EXECUTE":
		// EXECUTE of a prepared SELECT returns rows; database/sql
		// handles a rowless result from Query fine either way.
		return true
	}
	return false
}

func (s *shell) exec(stmt string) error {
	result, err := s.db.Exec(stmt)
	if err != nil {
		return err
	}
	if affected, err := result.RowsAffected(); err == nil && affected > 0 {
		fmt.Printf("OK, %d row(s)\n", affected)
	} else {
		fmt.Println("OK")
	}
	return nil
}

func (s *shell) query(stmt string) error {
	rows, err := s.db.Query(stmt)
	if err != nil {
		return err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return err
	}

	var table [][]string
	for rows.Next() {
		cells := make([]sql.NullString, len(columns))
		scan := make([]interface{}, len(columns))
		for i := range cells {
			scan[i] = &cells[i]
		}
		if err := rows.Scan(scan...); err != nil {
			return err
		}
		row := make([]string, len(columns))
		for i, cell := range cells {
			if cell.Valid {
				row[i] = cell.String
			} else {
				row[i] = "NULL"
			}
		}
		table = append(table, row)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	printTable(columns, table)
	fmt.Printf("(%d row(s))\n", len(table))
	return nil
}

// printTable renders a result set with aligned columns, psql style.
func printTable(columns []string, rows [][]string) {
	widths := make([]int, len(columns))
	for i, col := range columns {
		widths[i] = len(col)
	}
	for _, row := range rows {
		for i, cell := range row {
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	header := make([]string, len(columns))
	rule := make([]string, len(columns))
	for i, col := range columns {
		header[i] = fmt.Sprintf(" %-*s ", widths[i], col)
		rule[i] = strings.Repeat("-", widths[i]+2)
	}
	fmt.Println(strings.Join(header, "|"))
	fmt.Println(strings.Join(rule, "+"))

	for _, row := range rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = fmt.Sprintf(" %-*s ", widths[i], cell)
		}
		fmt.Println(strings.Join(cells, "|"))
	}
}
