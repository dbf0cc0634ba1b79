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
Package main is the entry point for the EmberDB database server.

Startup flow:

 1. Load configuration (defaults, config file, environment, flags)
 2. Open the storage engine and the catalog
 3. Optionally start mDNS advertisement
 4. Start the wire protocol server and serve until interrupted

Any PostgreSQL client can connect:

	psql "host=localhost port=5432 sslmode=disable"
*/
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"emberdb/internal/banner"
	"emberdb/internal/catalog"
	"emberdb/internal/config"
	"emberdb/internal/discovery"
	"emberdb/internal/logging"
	"emberdb/internal/pgwire"
	"emberdb/internal/session"
	"emberdb/internal/storage"
)

var rootCmd = &cobra.Command{
	Use:   "emberdb",
	Short: "EmberDB is an embeddable SQL database speaking the PostgreSQL wire protocol",
	Long: `EmberDB is an embeddable SQL database server.

It stores data in an embedded key-value engine and exposes it over the
PostgreSQL v3 wire protocol, so any PostgreSQL client or driver can
connect to it.`,
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("emberdb version %s\n", banner.Version)
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the EmberDB server",
	RunE:  runServe,
}

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Discover EmberDB servers on the local network",
	RunE:  runDiscover,
}

var (
	flagConfigFile string
	flagTimeout    time.Duration
)

func init() {
	serveCmd.Flags().StringVar(&flagConfigFile, "config", "", "path to configuration file")
	serveCmd.Flags().String("host", "", "listen address")
	serveCmd.Flags().Int("port", 0, "listen port")
	serveCmd.Flags().String("data-dir", "", "directory for database storage")
	serveCmd.Flags().Bool("in-memory", false, "keep all data in memory")
	serveCmd.Flags().String("log-level", "", "log level: debug, info, warn, error")
	serveCmd.Flags().Bool("log-json", false, "enable JSON log output")
	serveCmd.Flags().Bool("discovery", false, "advertise the server over mDNS")
	serveCmd.Flags().Bool("create-table-if-not-exists", false, "accept CREATE TABLE IF NOT EXISTS")

	discoverCmd.Flags().DurationVar(&flagTimeout, "timeout", discovery.DefaultTimeout, "how long to wait for responses")

	rootCmd.AddCommand(serveCmd, discoverCmd, versionCmd)
}

// loadConfig builds the effective configuration for serve: defaults,
// then config file, then environment, then explicitly set flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	mgr := config.NewManager()

	if flagConfigFile != "" {
		if err := mgr.LoadFromFile(flagConfigFile); err != nil {
			return nil, err
		}
		mgr.LoadFromEnv()
	} else if err := mgr.Load(); err != nil {
		return nil, err
	}

	cfg := mgr.Get()

	flags := cmd.Flags()
	if flags.Changed("host") {
		cfg.Host, _ = flags.GetString("host")
	}
	if flags.Changed("port") {
		cfg.Port, _ = flags.GetInt("port")
	}
	if flags.Changed("data-dir") {
		cfg.DataDir, _ = flags.GetString("data-dir")
	}
	if flags.Changed("in-memory") {
		cfg.InMemory, _ = flags.GetBool("in-memory")
	}
	if flags.Changed("log-level") {
		cfg.LogLevel, _ = flags.GetString("log-level")
	}
	if flags.Changed("log-json") {
		cfg.LogJSON, _ = flags.GetBool("log-json")
	}
	if flags.Changed("discovery") {
		cfg.DiscoveryEnabled, _ = flags.GetBool("discovery")
	}
	if flags.Changed("create-table-if-not-exists") {
		cfg.CreateTableIfNotExists, _ = flags.GetBool("create-table-if-not-exists")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logging.SetGlobalLevel(logging.ParseLevel(cfg.LogLevel))
	logging.SetJSONMode(cfg.LogJSON)
	log := logging.NewLogger("main")

	banner.PrintServerWithConfig(cfg)

	engine, err := storage.Open(cfg.DataDir, cfg.InMemory)
	if err != nil {
		return fmt.Errorf("opening storage engine: %w", err)
	}
	defer func() {
		if err := engine.Close(); err != nil {
			log.Error("Error closing storage engine", "error", err)
		}
	}()

	cat, err := catalog.Open(engine)
	if err != nil {
		return fmt.Errorf("opening catalog: %w", err)
	}

	if cfg.DiscoveryEnabled {
		disco := discovery.NewService(discovery.Config{
			ServerID: "emberdb-" + uuid.NewString()[:8],
			Addr:     cfg.Addr(),
			Version:  banner.Version,
		})
		if err := disco.Start(); err != nil {
			log.Warn("Service discovery unavailable", "error", err)
		} else {
			defer func() { _ = disco.Stop() }()
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := pgwire.NewServer(cfg.Addr(), engine, cat, session.Options{
		CreateTableIfNotExists: cfg.CreateTableIfNotExists,
	})

	log.Info("EmberDB server starting", "version", banner.Version, "addr", cfg.Addr())
	if err := srv.Serve(ctx); err != nil {
		return err
	}
	log.Info("EmberDB server stopped")
	return nil
}

func runDiscover(cmd *cobra.Command, args []string) error {
	fmt.Printf("Searching for EmberDB servers (%s)...\n", flagTimeout)

	servers, err := discovery.Discover(flagTimeout)
	if err != nil {
		return err
	}
	if len(servers) == 0 {
		fmt.Println("No servers found.")
		return nil
	}

	fmt.Printf("%-24s %-22s %s\n", "SERVER", "ADDRESS", "VERSION")
	for _, s := range servers {
		fmt.Printf("%-24s %-22s %s\n", s.ID, s.Addr, s.Version)
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
