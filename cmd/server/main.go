// Command server runs the RentFront storefront.
//
//	server -config configs/config.yaml
//	server -check    validate the configuration and exit
//
// The config path may also come from RENTFRONT_CONFIG. Any key can be
// overridden with APP__ variables, e.g. APP__SERVER__PORT=9090.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/simp-lee/rentfront/internal/app"
	"github.com/simp-lee/rentfront/internal/config"
)

const defaultConfigPath = "configs/config.yaml"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fset := flag.NewFlagSet("server", flag.ContinueOnError)
	configPath := fset.String("config", configPathFromEnv(), "path to configuration file")
	check := fset.Bool("check", false, "validate the configuration and exit")
	if err := fset.Parse(args); err != nil {
		return 2
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("load config", slog.String("path", *configPath), slog.Any("error", err))
		return 1
	}
	if *check {
		fmt.Printf("%s: ok (mode=%s, backend=%s)\n", *configPath, cfg.Server.Mode, cfg.Backend.Mode)
		return 0
	}

	a, err := app.New(cfg)
	if err != nil {
		slog.Error("create app", slog.Any("error", err))
		return 1
	}
	if err := a.Run(); err != nil {
		slog.Error("server stopped", slog.Any("error", err))
		return 1
	}
	return 0
}

func configPathFromEnv() string {
	if p := os.Getenv("RENTFRONT_CONFIG"); p != "" {
		return p
	}
	return defaultConfigPath
}
