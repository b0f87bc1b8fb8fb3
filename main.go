package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/zhangming/respflow/config"
	"github.com/zhangming/respflow/resp"
	"github.com/zhangming/respflow/tcpserver"
)

var banner = `
   ______          ___
  / ____/___  ____/ (_)____
 / / __/ __ \/ __  / / ___/
/ /_/ / /_/ / /_/ / (__  )
\____/\____/\__,_/_/____/
`

var defaultProperties = &config.ServerProperties{
	Bind:       "0.0.0.0",
	Port:       6399,
	MaxClients: 1000,
}

func fileExists(filename string) bool {
	info, err := os.Stat(filename)
	return err == nil && !info.IsDir()
}

func main() {
	print(banner)
	slog.Info("starting resp server...")

	configFilename := os.Getenv("CONFIG")
	switch {
	case configFilename != "":
		if err := config.Load(configFilename); err != nil {
			slog.Error("failed to load config", "file", configFilename, "err", err)
			os.Exit(1)
		}
	case fileExists("resp.conf"):
		if err := config.Load("resp.conf"); err != nil {
			slog.Error("failed to load config", "file", "resp.conf", "err", err)
			os.Exit(1)
		}
	default:
		config.Properties = defaultProperties
	}

	listenAddr := fmt.Sprintf("%s:%d", config.Properties.Bind, config.Properties.Port)
	handler := tcpserver.NewHandler()
	handler.Limits = resp.Limits{
		MaxInlineSize:   config.Properties.MaxInlineSize,
		MaxMultiBulkLen: config.Properties.MaxMultiBulkLen,
		MaxBulkLen:      config.Properties.MaxBulkLen,
	}
	err := tcpserver.ListenAndServeWithSignal(&tcpserver.Config{Address: listenAddr}, handler)
	if err != nil {
		slog.Error("start server failed", "err", err)
		os.Exit(1)
	}
}
