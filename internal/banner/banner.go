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
Package banner provides the startup banner display for EmberDB.

The banner is printed once at server startup, followed by a compact
configuration summary so operators can see at a glance how the server
was configured before log output begins.
*/
package banner

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"emberdb/internal/config"
)

const logo = `
  _____           _                 ____  ____
 | ____|_ __ ___ | |__   ___ _ __  |  _ \| __ )
 |  _| | '_ ` + "`" + ` _ \| '_ \ / _ \ '__| | | | |  _ \
 | |___| | | | | | |_) |  __/ |    | |_| | |_) |
 |_____|_| |_| |_|_.__/ \___|_|    |____/|____/`

// ANSI escape codes for terminal text formatting.
const (
	AnsiRed    = "\033[31m"
	AnsiGreen  = "\033[32m"
	AnsiYellow = "\033[33m"
	AnsiCyan   = "\033[36m"
	AnsiReset  = "\033[0m"
	AnsiBold   = "\033[1m"
	AnsiDim    = "\033[2m"
)

// Version information for the EmberDB application.
const (
	Version   = "01.26.14"
	Copyright = "(c)2026 Firefly Software Solutions Inc"
	License   = "Licensed under Apache 2.0"
)

// Print displays the startup banner with version and copyright information.
func Print() {
	fmt.Println(AnsiRed + logo + AnsiReset)
	fmt.Println(AnsiRed + AnsiBold + ":: EmberDB ::                   (v" + Version + ")" + AnsiReset)
	fmt.Println(AnsiGreen + AnsiBold + Copyright + AnsiReset)
	fmt.Println(AnsiGreen + AnsiBold + License + AnsiReset)
	fmt.Println()
}

// PrintLogSeparator prints a visual separator before logs start.
// This helps users distinguish between configuration display and log output.
func PrintLogSeparator() {
	printLogSeparator(os.Stdout)
}

func printLogSeparator(w io.Writer) {
	const lineWidth = 78
	arrow := "v"
	text := " LOGS START HERE "
	padding := (lineWidth - len(text) - 4) / 2 // 4 for arrows on each side
	if padding < 0 {
		padding = 0
	}
	line := strings.Repeat("-", padding)
	fmt.Fprintf(w, "  %s%s %s%s%s %s%s%s\n",
		AnsiYellow, arrow+arrow+line,
		AnsiBold, text, AnsiReset+AnsiYellow,
		line+arrow+arrow, AnsiReset, "")
	fmt.Fprintln(w)
}

// PrintServerWithConfig prints the server banner with a configuration summary.
func PrintServerWithConfig(cfg *config.Config) {
	PrintServerWithConfigTo(os.Stdout, cfg)
}

// PrintServerWithConfigTo writes the server banner with configuration to the
// specified writer.
func PrintServerWithConfigTo(w io.Writer, cfg *config.Config) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, AnsiRed+logo+AnsiReset)
	fmt.Fprintln(w, AnsiRed+AnsiBold+":: EmberDB Server ::            (v"+Version+")"+AnsiReset)
	fmt.Fprintln(w, AnsiDim+"  Embedded SQL Database, PostgreSQL Wire Protocol"+AnsiReset)
	fmt.Fprintln(w)

	printConfigSource(w, cfg)
	printCompactConfig(w, cfg)

	fmt.Fprintln(w, AnsiDim+"  "+Copyright+AnsiReset)
	fmt.Fprintln(w)

	printLogSeparator(w)
}

func printConfigSource(w io.Writer, cfg *config.Config) {
	fmt.Fprint(w, "  "+AnsiDim+"Config: "+AnsiReset)
	if cfg.ConfigFile != "" {
		fmt.Fprintln(w, AnsiYellow+cfg.ConfigFile+AnsiReset)
	} else {
		fmt.Fprintln(w, AnsiDim+"defaults + environment"+AnsiReset)
	}
	fmt.Fprintln(w)
}

func printCompactConfig(w io.Writer, cfg *config.Config) {
	const lineWidth = 78

	printSectionHeader(w, "Server", lineWidth)
	col1 := fmtKV("Listen", AnsiGreen+cfg.Addr()+AnsiReset)
	col2 := fmtKV("Log", cfg.LogLevel)
	var col3 string
	if cfg.LogJSON {
		col3 = fmtKV("Format", "json")
	} else {
		col3 = fmtKV("Format", "text")
	}
	printRow3(w, col1, col2, col3)
	fmt.Fprintln(w)

	printSectionHeader(w, "Storage", lineWidth)
	if cfg.InMemory {
		printRow2(w, fmtKV("Mode", AnsiYellow+"in-memory"+AnsiReset), AnsiDim+"(data is not persisted)"+AnsiReset)
	} else {
		printRow2(w, fmtKV("Mode", "disk"), fmtKV("Data", cfg.DataDir))
	}
	fmt.Fprintln(w)

	printSectionHeader(w, "Features", lineWidth)
	var enabled, disabled []string
	if cfg.DiscoveryEnabled {
		enabled = append(enabled, "mDNS Discovery")
	} else {
		disabled = append(disabled, "mDNS Discovery")
	}
	if cfg.CreateTableIfNotExists {
		enabled = append(enabled, "CREATE TABLE IF NOT EXISTS")
	} else {
		disabled = append(disabled, "CREATE TABLE IF NOT EXISTS")
	}
	if len(enabled) > 0 {
		fmt.Fprintf(w, "  %sEnabled:%s  %s%s%s\n", AnsiDim, AnsiReset, AnsiGreen, strings.Join(enabled, ", "), AnsiReset)
	}
	if len(disabled) > 0 {
		fmt.Fprintf(w, "  %sDisabled:%s %s\n", AnsiDim, AnsiReset, AnsiDim+strings.Join(disabled, ", ")+AnsiReset)
	}
	fmt.Fprintln(w)

	printSectionHeader(w, "Runtime", lineWidth)
	printRow3(w, fmtKV("CPUs", fmt.Sprintf("%d", runtime.NumCPU())),
		fmtKV("GOMAXPROCS", fmt.Sprintf("%d", runtime.GOMAXPROCS(0))), "")
	fmt.Fprintln(w)
}

func printSectionHeader(w io.Writer, title string, width int) {
	titleLen := len(title) + 4 // "[ title ]"
	leftPad := 2
	rightPad := width - leftPad - titleLen
	if rightPad < 0 {
		rightPad = 0
	}
	fmt.Fprintf(w, "  %s[ %s%s%s ]%s%s\n",
		AnsiDim+strings.Repeat("-", leftPad),
		AnsiReset+AnsiCyan+AnsiBold, title, AnsiReset+AnsiDim,
		strings.Repeat("-", rightPad),
		AnsiReset)
}

func fmtKV(key, value string) string {
	return fmt.Sprintf("%s%s:%s %s", AnsiDim, key, AnsiReset, value)
}

func printRow3(w io.Writer, col1, col2, col3 string) {
	fmt.Fprintf(w, "  %-32s %-26s %s\n", col1, col2, col3)
}

func printRow2(w io.Writer, col1, col2 string) {
	fmt.Fprintf(w, "  %-40s %s\n", col1, col2)
}
