package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"launchline/internal/app"
	"launchline/internal/config"
	"launchline/internal/metrics"
	"launchline/internal/server"
	launchsdk "launchline/sdk/go"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "ll",
		Short: "Launchline CLI",
		Long: `Launchline reads upcoming rocket launches from the Launch Library API.
- next: the single next launch.
- upcoming: launches filtered by count, id, name and date range.
- serve: a read-only HTTP gateway with OpenAPI docs and Prometheus metrics.
- config: write or inspect launchline.yml.`,
		SilenceUsage: true,
	}
	addPersistentFlags(root)
	registerCommands(root)
	return root
}

func main() {
	cobra.OnInitialize(initConfig)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Println("error:", err)
		stop()
		os.Exit(1)
	}
}

func initConfig() {
	viper.SetEnvPrefix("LAUNCHLINE")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func addPersistentFlags(root *cobra.Command) {
	flags := root.PersistentFlags()
	flags.StringP("config-dir", "c", ".", "directory holding "+config.FileName)
	flags.Bool("json", false, "output JSON")
	flags.BoolP("verbose", "v", false, "log upstream requests to stderr")
	flags.String("api-root", "", "Launch Library base URL (overrides config)")
	flags.String("api-version", "", "Launch Library API version (overrides config)")
	flags.Duration("timeout", 0, "per-request timeout (overrides config)")
	flags.Int("concurrency", 0, "launches parsed in parallel (overrides config)")
	flags.Int("cache-size", 0, "status and LSP lookup cache entries (overrides config)")
	for _, name := range []string{"config-dir", "json", "verbose", "api-root", "api-version", "timeout", "concurrency", "cache-size"} {
		_ = viper.BindPFlag(name, flags.Lookup(name))
	}
}

func registerCommands(root *cobra.Command) {
	root.AddCommand(nextCmd())
	root.AddCommand(upcomingCmd())
	root.AddCommand(serveCmd())
	root.AddCommand(configCmd())
}

func nextCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "next",
		Short: "Show the next upcoming launch",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(func(c *launchsdk.Client) error {
				ev, err := c.NextLaunch(cmd.Context())
				if err != nil {
					if errors.Is(err, launchsdk.ErrNotFound) && !viper.GetBool("json") {
						fmt.Fprintln(cmd.OutOrStdout(), "no upcoming launches")
						return nil
					}
					return err
				}
				if viper.GetBool("json") {
					return printJSON(cmd.OutOrStdout(), ev)
				}
				renderLaunch(cmd.OutOrStdout(), ev, time.Now())
				return nil
			})
		},
	}
	return cmd
}

func upcomingCmd() *cobra.Command {
	var count, id int
	var name, after, before string
	cmd := &cobra.Command{
		Use:   "upcoming",
		Short: "List upcoming launches",
		RunE: func(cmd *cobra.Command, args []string) error {
			var f launchsdk.LaunchFilter
			if cmd.Flags().Changed("count") {
				f.Count = launchsdk.Int(count)
			}
			if cmd.Flags().Changed("id") {
				f.ID = launchsdk.Int(id)
			}
			if name != "" {
				f.Including = launchsdk.String(name)
			}
			if after != "" {
				f.After = launchsdk.String(after)
			}
			if before != "" {
				f.Before = launchsdk.String(before)
			}
			return withClient(func(c *launchsdk.Client) error {
				launches, err := c.UpcomingLaunches(cmd.Context(), f)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					if launches == nil {
						launches = []launchsdk.LaunchEvent{}
					}
					return printJSON(cmd.OutOrStdout(), launches)
				}
				renderLaunches(cmd.OutOrStdout(), launches, time.Now())
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 0, "number of upcoming launches")
	cmd.Flags().IntVar(&id, "id", 0, "exact launch id")
	cmd.Flags().StringVar(&name, "name", "", "name substring")
	cmd.Flags().StringVar(&after, "after", "", "inclusive start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&before, "before", "", "inclusive end date (YYYY-MM-DD)")
	return cmd
}

func serveCmd() *cobra.Command {
	var addr, basePath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start HTTP gateway",
		RunE: func(cmd *cobra.Command, args []string) error {
			collector := metrics.New()
			cfg, err := resolveConfig()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("addr") && cfg.Server.Addr != "" {
				addr = cfg.Server.Addr
			}
			if !cmd.Flags().Changed("base-path") && cfg.Server.BasePath != "" {
				basePath = cfg.Server.BasePath
			}
			logger := newLogger(os.Stderr, slog.LevelInfo)
			client, err := app.NewClient(cfg, logger, collector)
			if err != nil {
				return err
			}
			authCfg := server.AuthConfig{JWTSecret: viper.GetString("jwt-secret"), Logger: logger}
			if authCfg.JWTSecret == "" {
				logger.Warn("LAUNCHLINE_JWT_SECRET not set; gateway is unauthenticated")
			}
			handler, err := server.New(server.Config{
				Launches: client,
				BasePath: basePath,
				Auth:     authCfg,
				Metrics:  collector,
				Logger:   logger,
			})
			if err != nil {
				return err
			}
			srv := &http.Server{Addr: addr, Handler: handler, ReadHeaderTimeout: 10 * time.Second}
			go func() {
				<-cmd.Context().Done()
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				srv.Shutdown(ctx)
			}()
			fmt.Printf("Serving Launchline API on http://%s%s (OpenAPI at %s/openapi.json, Swagger UI at %s/docs, metrics at /metrics)\n", addr, basePath, basePath, basePath)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8080", "listen address")
	cmd.Flags().StringVar(&basePath, "base-path", "/v0", "API base path")
	return cmd
}

func configCmd() *cobra.Command {
	cfg := &cobra.Command{
		Use:   "config",
		Short: "Manage launchline.yml",
		Long:  "launchline.yml holds the API root and version, request timeout, parse concurrency, lookup cache size and gateway settings. Flags and LAUNCHLINE_* environment variables override it.",
	}
	cfg.AddCommand(configInitCmd())
	cfg.AddCommand(configShowCmd())
	return cfg
}

func configInitCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default launchline.yml",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.Path(viper.GetString("config-dir"))
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			} else if err != nil && !os.IsNotExist(err) {
				return err
			}
			if err := os.WriteFile(path, []byte(config.GenerateDefault()), 0o644); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "wrote", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}

func configShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the effective config",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig()
			if err != nil {
				return err
			}
			if viper.GetBool("json") {
				return printJSON(cmd.OutOrStdout(), cfg)
			}
			out, err := cfg.YAML()
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}
	return cmd
}

// --- helpers ---

func resolveConfig() (*config.Config, error) {
	return app.ResolveConfig(viper.GetString("config-dir"), app.Overrides{
		APIRoot:     viper.GetString("api-root"),
		APIVersion:  viper.GetString("api-version"),
		Timeout:     viper.GetDuration("timeout"),
		Concurrency: viper.GetInt("concurrency"),
		CacheSize:   viper.GetInt("cache-size"),
	})
}

func withClient(fn func(*launchsdk.Client) error) error {
	cfg, err := resolveConfig()
	if err != nil {
		return err
	}
	level := slog.LevelWarn
	if viper.GetBool("verbose") {
		level = slog.LevelDebug
	}
	c, err := app.NewClient(cfg, newLogger(os.Stderr, level), nil)
	if err != nil {
		return err
	}
	return fn(c)
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
