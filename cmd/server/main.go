// Package main is the entry point for the smfcodec API server
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/james-see/smfcodec/pkg/api"
	"github.com/james-see/smfcodec/pkg/config"
)

func main() {
	configFile := flag.String("config", "", "Config file (default ~/.config/smfcodec/config.yaml)")
	port := flag.Int("port", 0, "Server port (default from config)")
	flag.Parse()

	var cfg *config.Config
	var err error
	if *configFile != "" {
		cfg, err = config.LoadFrom(*configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}

	opts, err := cfg.ConverterOptions()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Starting smfcodec API server on port %d...\n", cfg.Server.Port)
	fmt.Printf("Swagger docs available at http://localhost:%d/swagger/index.html\n", cfg.Server.Port)

	if err := api.StartServer(cfg.Server.Port, opts); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}
