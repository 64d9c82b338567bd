/*
 * Cherry - An OpenFlow Controller
 *
 * Copyright (C) 2015 Samjung Data Service, Inc. All rights reserved.
 * Kitae Kim <superkkt@sds.co.kr>
 */

// Command ofswitchd is the standalone daemon wrapping the flow-table
// pipeline core: it loads configuration, wires the reference in-memory
// egress/controller collaborators, and serves as the process lifecycle
// the core itself deliberately omits (§1 out of scope).
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/superkkt/go-logging"

	"github.com/superkkt/ofswitch/internal/config"
	"github.com/superkkt/ofswitch/internal/ofswitchlog"
	"github.com/superkkt/ofswitch/pkg/ofswitch"
	"github.com/superkkt/ofswitch/pkg/ofswitch/control"
	"github.com/superkkt/ofswitch/pkg/ofswitch/pipeline"
	"github.com/superkkt/ofswitch/pkg/ofswitch/sink"
	"github.com/superkkt/ofswitch/pkg/ofswitch/table"
)

const (
	programName    = "ofswitchd"
	programVersion = "0.1.0"
)

var (
	logger            = ofswitchlog.Get("main")
	showVersion       = flag.Bool("version", false, "Show program version and exit")
	defaultConfigFile = flag.String("config", fmt.Sprintf("/usr/local/etc/%v.yaml", programName), "absolute path of the configuration file")
)

func main() {
	runtime.GOMAXPROCS(runtime.NumCPU())
	flag.Parse()
	if *showVersion {
		fmt.Printf("Version: %v\n", programVersion)
		os.Exit(0)
	}

	cfg, err := config.Load(*defaultConfigFile, func(c config.Config) {
		ofswitchlog.SetLevel(getLogLevel(c.LogLevel))
	})
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	initLog(getLogLevel(cfg.LogLevel))

	registry := table.NewRegistry(cfg.MaxTables)
	surface := control.NewSurface(registry)
	applyDefaultMiss(surface, registry, cfg.DefaultMiss)

	memSink := sink.NewMemory()
	for id := 0; id < registry.MaxTables(); id++ {
		t, _ := registry.Get(uint8(id))
		t.SetFlowRemovedSink(memSink)
	}
	driver := pipeline.New(registry, memSink, memSink)

	_, cancel := context.WithCancel(context.Background())
	initSignalHandler(cancel)

	logger.Infof("%v %v started (configured listen address %v)", programName, programVersion, cfg.ListenAddr)
	_ = driver // the controller-transport and port-I/O loop that would
	// drive driver.Route are external collaborators (§1 out of scope);
	// this daemon only demonstrates wiring the core end to end.
	select {}
}

func applyDefaultMiss(surface *control.Surface, registry *table.Registry, policy string) {
	miss := parseMiss(policy)
	for id := 0; id < registry.MaxTables(); id++ {
		if err := surface.ModifyTable(ofswitch.TableMod{TableID: uint8(id), Miss: miss}); err != nil {
			logger.Errorf("failed to set default miss policy on table %d: %v", id, err)
		}
	}
}

func parseMiss(policy string) ofswitch.MissConfig {
	switch policy {
	case "controller":
		return ofswitch.MissController
	case "continue":
		return ofswitch.MissContinue
	default:
		return ofswitch.MissDrop
	}
}

func initSignalHandler(cancel context.CancelFunc) {
	go func() {
		c := make(chan os.Signal, 5)
		signal.Notify(c)
		for {
			s := <-c
			if s == syscall.SIGTERM || s == syscall.SIGINT {
				logger.Warning("Shutting down...")
				cancel()
				time.Sleep(1 * time.Second)
				os.Exit(0)
			}
		}
	}()
}

func initLog(level logging.Level) {
	if sl, err := ofswitchlog.NewSyslogBackend(programName); err == nil {
		sl.SetLevel(level)
		leveled := logging.AddModuleLevel(sl)
		leveled.SetLevel(level, "")
		logging.SetBackend(leveled)
		ofswitchlog.SetBackend(leveled)
		return
	}

	backend := logging.NewLogBackend(os.Stderr, "", 0)
	formatted := logging.NewBackendFormatter(backend, logging.MustStringFormatter(`%{level}: %{shortpkg}.%{shortfunc}: %{message}`))
	leveled := logging.AddModuleLevel(formatted)
	leveled.SetLevel(level, "")
	logging.SetBackend(leveled)
	ofswitchlog.SetBackend(leveled)
}

func getLogLevel(level string) logging.Level {
	ret, err := logging.LogLevel(level)
	if err != nil {
		return logging.INFO
	}
	return ret
}
