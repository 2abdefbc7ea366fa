package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/lanops/switchmgr"
	"github.com/lanops/switchmgr/config"
	"github.com/lanops/switchmgr/executor"
)

const usage = `usage: switchctl -device NAME [-config PATH] ACTION [args]

actions:
  status                   print the interface table
  enable PORT...           bring ports up
  disable PORT...          shut ports down
  run COMMAND              execute one raw show command
  info                     print device identity
  mac                      print the MAC address table
  arp                      print the ARP table
  counters                 print SNMP port counters
  save                     write the running configuration
  stats                    print executor and cache statistics
`

func main() {
	configPath := flag.String("config", "config.json", "path to config file")
	deviceName := flag.String("device", "", "device name from the config file")
	noCache := flag.Bool("no-cache", false, "bypass caches for read actions")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log := zerolog.New(os.Stderr).With().Timestamp().Logger()
		log.Fatal().Err(err).Msg("failed to load config")
	}

	logger := setupLogger(cfg.LogLevel)

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}
	action := flag.Arg(0)
	args := flag.Args()[1:]

	dev, ok := cfg.Find(*deviceName)
	if !ok {
		logger.Fatal().Str("device", *deviceName).Msg("device not found in config")
	}

	mgr, err := switchmgr.New(dev.DeviceConfig(),
		switchmgr.WithLogger(logger),
		switchmgr.WithCacheSweepInterval(time.Duration(cfg.Cache.SweepIntervalSec)*time.Second),
		switchmgr.WithBulkInterBatchDelay(time.Duration(cfg.Bulk.InterBatchDelayMS)*time.Millisecond),
	)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create manager")
	}

	ctx := context.Background()
	if err := mgr.Connect(ctx); err != nil {
		logger.Fatal().Err(err).Str("host", dev.Host).Msg("failed to connect")
	}
	defer mgr.Disconnect(ctx)

	if err := run(ctx, mgr, cfg, action, args, !*noCache); err != nil {
		logger.Fatal().Err(err).Str("action", action).Msg("action failed")
	}
}

func run(ctx context.Context, mgr *switchmgr.Manager, cfg *config.Config, action string, args []string, useCache bool) error {
	switch action {
	case "status":
		records, err := mgr.GetInterfacesStatus(ctx, useCache)
		if err != nil {
			return err
		}
		names := make([]string, 0, len(records))
		for name := range records {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			r := records[name]
			fmt.Printf("%-24s %-12s vlan=%-6s %s/%s\n", name, r.Status, r.VLAN, r.Duplex, r.Speed)
		}
		return nil

	case "enable", "disable":
		if len(args) == 0 {
			return fmt.Errorf("at least one port is required")
		}
		var results map[string]bool
		if action == "enable" {
			results = mgr.BulkEnable(ctx, args, cfg.Bulk.BatchSize)
		} else {
			results = mgr.BulkDisable(ctx, args, cfg.Bulk.BatchSize)
		}
		failed := 0
		for port, ok := range results {
			if !ok {
				failed++
				fmt.Printf("%s: failed\n", port)
			}
		}
		fmt.Printf("%d ok, %d failed\n", len(results)-failed, failed)
		if failed > 0 {
			return fmt.Errorf("%d ports failed", failed)
		}
		return nil

	case "run":
		if len(args) == 0 {
			return fmt.Errorf("a command is required")
		}
		out, err := mgr.SendCommand(ctx, strings.Join(args, " "), executor.Options{UseCache: useCache})
		if err != nil {
			return err
		}
		fmt.Println(out)
		return nil

	case "info":
		info, err := mgr.GetDeviceInfo(ctx)
		if err != nil {
			return err
		}
		return printJSON(info)

	case "mac":
		entries, err := mgr.GetMACTable(ctx)
		if err != nil {
			return err
		}
		for _, e := range entries {
			fmt.Printf("%-8s %-18s %-10s %s\n", e.VLAN, e.MACAddress, e.Type, e.Ports)
		}
		return nil

	case "arp":
		entries, err := mgr.GetARPTable(ctx)
		if err != nil {
			return err
		}
		for _, e := range entries {
			fmt.Printf("%-16s %-16s %s\n", e.IPAddress, e.MACAddress, e.Interface)
		}
		return nil

	case "counters":
		counters, err := mgr.GetPortCounters(ctx)
		if err != nil {
			return err
		}
		for _, c := range counters {
			oper := "down"
			if c.OperUp {
				oper = "up"
			}
			fmt.Printf("%-24s in=%-14d out=%-14d %s\n", c.Name, c.InOctets, c.OutOctets, oper)
		}
		return nil

	case "save":
		return mgr.SaveConfig(ctx)

	case "stats":
		return printJSON(mgr.Stats())

	default:
		return fmt.Errorf("unknown action %q", action)
	}
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

// setupLogger configures the zerolog logger
func setupLogger(level string) zerolog.Logger {
	var logLevel zerolog.Level
	switch level {
	case "debug":
		logLevel = zerolog.DebugLevel
	case "info":
		logLevel = zerolog.InfoLevel
	case "warn":
		logLevel = zerolog.WarnLevel
	case "error":
		logLevel = zerolog.ErrorLevel
	default:
		logLevel = zerolog.InfoLevel
	}

	zerolog.SetGlobalLevel(logLevel)

	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}

	return zerolog.New(output).With().Timestamp().Logger()
}
