// Copyright 2025 V Kontakte LLC
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/VKCOM/statshouse-go"
	"github.com/cloudflare/tableflip"
	"github.com/gorilla/handlers"
	"github.com/spf13/pflag"

	"github.com/vkcom/historian-metrics/internal/api"
	"github.com/vkcom/historian-metrics/internal/build"
	"github.com/vkcom/historian-metrics/internal/config"
	"github.com/vkcom/historian-metrics/internal/metrics"
)

const (
	shutdownTimeout = 30 * time.Second
	exitTimeout     = 45 * time.Second
	upgradeTimeout  = 60 * time.Second

	httpReadHeaderTimeout = 10 * time.Second
	httpReadTimeout       = 30 * time.Second
	httpIdleTimeout       = 5 * time.Minute
)

var argv struct {
	accessLog         bool
	configFile        string
	dump              string
	help              bool
	listenHTTPAddr    string
	pidFile           string
	statsHouseAddr    string
	statsHouseEnv     string
	statsHouseNetwork string
	version           bool

	api.Config
}

func main() {
	log.SetPrefix("[historian-metrics] ")
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds | log.Lmsgprefix)
	os.Exit(run())
}

func run() int {
	if err := parseCommandLine(os.Args[1:]); err != nil {
		log.Println(err)
		return 1
	}
	if argv.help {
		pflag.Usage()
		return 0
	}
	if argv.version {
		log.Println(build.Info())
		return 0
	}
	if err := metrics.Validate(); err != nil {
		log.Printf("[error] builtin metric tables are inconsistent: %v", err)
		return 1
	}
	registry := metrics.Default()
	if argv.dump != "" {
		if err := dump(os.Stdout, registry, argv.dump); err != nil {
			log.Printf("[error] failed to dump catalog: %v", err)
			return 1
		}
		return 0
	}

	tf, err := tableflip.New(tableflip.Options{
		PIDFile:        argv.pidFile,
		UpgradeTimeout: upgradeTimeout,
	})
	if err != nil {
		log.Printf("failed to init tableflip: %v", err)
		return 1
	}
	defer tf.Stop()

	go func() {
		ch := make(chan os.Signal, 3)
		signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
		for sig := range ch {
			switch sig {
			case syscall.SIGINT, syscall.SIGTERM:
				log.Printf("got %v, exiting...", sig)
				tf.Stop()
			case syscall.SIGHUP:
				log.Printf("got %v, upgrading...", sig)
				err := tf.Upgrade()
				if err != nil {
					log.Printf("upgrade failed: %v", err)
				}
			}
		}
	}()

	httpLn, err := tf.Listen("tcp", argv.listenHTTPAddr)
	if err != nil {
		log.Printf("failed to listen on %q: %v", argv.listenHTTPAddr, err)
		return 1
	}

	statshouse.ConfigureNetwork(log.Printf, argv.statsHouseNetwork, argv.statsHouseAddr, argv.statsHouseEnv)
	defer func() { _ = statshouse.Close() }()

	h := api.NewHandler(registry, &argv.Config)
	listener := config.NewListener(argv.configFile, &argv.Config)
	listener.AddChangeCB(h.SetConfig)
	closeConfig, err := listener.Listen()
	if err != nil {
		log.Printf("failed to load config file %q: %v", argv.configFile, err)
		return 1
	}
	defer closeConfig()

	m := api.NewHTTPRouter(h)
	hh := http.Handler(m)
	hh = handlers.CORS(
		handlers.AllowedOriginValidator(h.OriginAllowed),
		handlers.AllowedMethods([]string{"GET", "HEAD", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"If-None-Match"}),
		handlers.ExposedHeaders([]string{"ETag"}),
	)(hh)
	hh = handlers.RecoveryHandler(handlers.PrintRecoveryStack(true))(hh)
	hh = handlers.CompressHandler(hh)
	if argv.accessLog {
		hh = handlers.CombinedLoggingHandler(os.Stdout, hh)
	}
	hh = handlers.ProxyHeaders(hh)

	s := &http.Server{
		Handler:           hh,
		ReadHeaderTimeout: httpReadHeaderTimeout,
		ReadTimeout:       httpReadTimeout,
		IdleTimeout:       httpIdleTimeout,
	}

	go func() {
		err := s.Serve(httpLn)
		if err != http.ErrServerClosed {
			log.Printf("serving HTTP: %v", err)
		}
	}()

	startTimestamp := time.Now().Unix()
	heartbeatTags := statshouse.Tags{
		1: build.Version(),
		2: build.Commit(),
		3: fmt.Sprint(build.CommitTimestamp()),
	}
	defer statshouse.StopRegularMeasurement(statshouse.StartRegularMeasurement(func(c *statshouse.Client) {
		uptime := float64(time.Now().Unix() - startTimestamp)
		c.Value(api.MetricHeartbeat, heartbeatTags, uptime)
	}))

	err = tf.Ready()
	if err != nil {
		log.Printf("failed to become ready: %v", err)
		return 1
	}

	log.Printf("version %v serving %d metrics, listening HTTP at %q", build.Version(), len(metrics.Keys()), httpLn.Addr().String())
	<-tf.Exit()

	time.AfterFunc(exitTimeout, func() {
		log.Printf("graceful shutdown timeout; exiting")
		os.Exit(1)
	})
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	_ = s.Shutdown(ctx)

	return 0
}

func parseCommandLine(args []string) error {
	f := pflag.CommandLine
	f.BoolVar(&argv.accessLog, "access-log", false, "write HTTP access log to stdout")
	f.StringVar(&argv.configFile, "config-file", "", "YAML file with runtime settings overriding command line, reloaded on change")
	f.StringVar(&argv.dump, "dump", "", "print metric catalog to stdout and exit, json or csv")
	f.BoolVar(&argv.help, "help", false, "print usage instructions and exit")
	f.StringVar(&argv.listenHTTPAddr, "listen-addr", "localhost:8080", "web server listen address")
	f.StringVar(&argv.pidFile, "pid-file", "historian_metrics.pid", "path to PID file") // for table flip
	f.StringVar(&argv.statsHouseNetwork, "statshouse-network", statshouse.DefaultNetwork, "udp or unixgram")
	f.StringVar(&argv.statsHouseAddr, "statshouse-addr", statshouse.DefaultAddr, "address of udp socket or path to unix socket")
	f.StringVar(&argv.statsHouseEnv, "statshouse-env", "dev", "fill key0/environment with this value in StatHouse statistics")
	f.BoolVar(&argv.version, "version", false, "show version information and exit")
	argv.Config.Bind(f, api.DefaultConfig())
	if err := f.Parse(args); err != nil {
		return err
	}

	if len(f.Args()) != 0 {
		return fmt.Errorf("unexpected command line arguments, check command line for typos: %q", f.Args())
	}
	switch argv.dump {
	case "", dumpJSON, dumpCSV:
	default:
		return fmt.Errorf("--dump must be %q or %q", dumpJSON, dumpCSV)
	}
	return argv.Config.ValidateConfig()
}
