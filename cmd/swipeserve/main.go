// Copyright 2025 The WordServe Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package main implements the swipe keyboard core server and CLI [DBG] application.

Note: This is a BETA release. APIs and functionality may rapidly change.

SwipeServe decodes swipe gestures into words, completes prefixes from a
frequency ranked Patricia trie, corrects typed words and predicts the next
word. It runs as a MessagePack IPC server for a keyboard host, or as a CLI for
testing and debugging.

# Usage

Start the server with default settings:

	swipeserve

Use a custom config and data directory with debug logs:

	swipeserve -config ./swipeserve.toml -data /path/to/chunks -d

Run in CLI mode for interactive testing:

	swipeserve -c -limit 10 -prmin 2

The data directory may hold chunked binary dictionaries named dict_0001.bin,
dict_0002.bin, etc. Without them the built-in dictionaries are used.

# Configuration

The TOML config file is created with defaults if it doesn't exist:

	[server]
	max_limit = 64
	min_prefix = 2
	max_prefix = 60
	enable_filter = true

	[swipe]
	width = 1080.0
	height = 720.0
	cell_size = 64.0

	[remote]
	enabled = false
	model = "gpt-4o-mini"
	api_key_env = "OPENAI_API_KEY"

In server mode the file is watched and the [server] limits are applied as
soon as it changes.

# IPC Protocol

See package server. Every request names an op:

	{"id": "s1", "op": "swipe", "pts": [{"x": 450, "y": 50}, ...]}
	{"id": "s1", "tr": "teh", "w": "the", "c": 0, "t": 85}

# Command Line Flags

	-config string
	    Path to the config file (default [UserConfigDir]/swipeserve/config.toml)
	-data string
	    Directory containing binary chunk files
	-d  Enable debug mode with detailed logging
	-c  Run CLI mode instead of server mode
	-limit int
	    Number of suggestions to return
	-prmin int
	    Minimum prefix length for suggestions
	-prmax int
	    Maximum prefix length for suggestions
	-no-filter
	    Disable input filtering for debugging
	-words int
	    Maximum words to load from chunks (0 for all)
	-lang string
	    Default dictionary language
*/
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/bastiangx/swipeserve/internal/cli"
	"github.com/bastiangx/swipeserve/internal/utils"
	"github.com/bastiangx/swipeserve/pkg/config"
	"github.com/bastiangx/swipeserve/pkg/keyboard"
	"github.com/bastiangx/swipeserve/pkg/server"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

const (
	Version = "0.1.0-beta"
	AppName = "swipeserve"
	gh      = "https://github.com/bastiangx/swipeserve"
)

// sigHandler is a simple handler for OS signals to exit normally.
func sigHandler() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		fmt.Fprintf(os.Stderr, "\nExiting...\n")
		os.Exit(0)
	}()
}

// main manages the flow between config, the keyboard core and the chosen mode.
func main() {
	sigHandler()
	defaults := config.DefaultConfig()

	showVersion := flag.Bool("version", false, "Show current version")
	configPath := flag.String("config", "", "Path to the config file")
	dataDir := flag.String("data", defaults.Dict.DataDir, "Directory containing the binary files")
	debugMode := flag.Bool("d", false, "Toggle debug mode")
	cliMode := flag.Bool("c", false, "Run CLI -- useful for testing and debugging")
	limit := flag.Int("limit", defaults.CLI.DefaultLimit, "Number of suggestions to return")
	minPrefix := flag.Int("prmin", defaults.Server.MinPrefix, "Minimum prefix length for suggestions (1 < n <= prmax)")
	maxPrefix := flag.Int("prmax", defaults.Server.MaxPrefix, "Maximum prefix length for suggestions")
	noFilter := flag.Bool("no-filter", false, "Disable input filtering (DBG only)")
	wordLimit := flag.Int("words", defaults.Dict.MaxWords, "Maximum number of words to load from chunks (use 0 for all words)")
	lang := flag.String("lang", defaults.Dict.DefaultLanguage, "Default dictionary language")

	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	if *debugMode {
		log.SetLevel(log.DebugLevel)
		log.SetReportTimestamp(true)
	} else {
		log.SetLevel(log.WarnLevel)
	}

	cfg, activePath, err := config.LoadConfigWithPriority(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Debugf("Using config file: (%s)", config.GetActiveConfigPath(activePath))

	// Flags given on the command line win over the config file.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "data":
			cfg.Dict.DataDir = *dataDir
		case "words":
			cfg.Dict.MaxWords = *wordLimit
		case "lang":
			cfg.Dict.DefaultLanguage = *lang
		case "prmin":
			cfg.Server.MinPrefix = *minPrefix
		case "prmax":
			cfg.Server.MaxPrefix = *maxPrefix
		case "limit":
			cfg.CLI.DefaultLimit = *limit
		case "no-filter":
			cfg.Server.EnableFilter = !*noFilter
		}
	})

	var extra []string
	if activePath != "" {
		extra = append(extra, filepath.Join(filepath.Dir(activePath), "data"))
	}
	cfg.Dict.DataDir = utils.ResolveDataDir(cfg.Dict.DataDir, extra...)
	log.Debugf("Using data dir at: %s", cfg.Dict.DataDir)

	kb, err := keyboard.New(cfg)
	if err != nil {
		log.Fatalf("Failed to init keyboard: %v", err)
	}
	log.Debug("Keyboard init done", "words", kb.Stats()["totalWords"], "remote", kb.RemoteAvailable())

	// CLI would be mainly used for testing and dbg purposes.
	if *cliMode {
		log.SetReportTimestamp(false)
		handler := cli.NewInputHandler(kb, cli.Options{
			MinPrefix:   cfg.Server.MinPrefix,
			MaxPrefix:   cfg.Server.MaxPrefix,
			Limit:       cfg.CLI.DefaultLimit,
			Language:    cfg.CLI.DefaultLanguage,
			NoFilter:    !cfg.Server.EnableFilter,
			ShowReasons: cfg.CLI.ShowReasons,
		})
		if err := handler.Start(); err != nil {
			log.Fatalf("CLI error: %v", err)
		}
		return
	}

	log.Debug("spawning IPC")
	srv := server.NewServer(kb, cfg.Server)

	if activePath != "" {
		watcher, err := config.Watch(activePath, func(c *config.Config) {
			srv.SetLimits(c.Server)
		})
		if err != nil {
			log.Warnf("Config hot reload disabled: %v", err)
		} else {
			defer watcher.Close()
			go func() {
				for err := range watcher.Errors() {
					log.Warnf("Config reload: %v", err)
				}
			}()
		}
	}

	showStartupInfo(cfg.Dict.DataDir, kb)

	if err := srv.Start(); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}

func printVersion() {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportCaller:    false,
		ReportTimestamp: false,
	})

	styles := log.DefaultStyles()
	styles.Values["version"] = lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	logger.SetStyles(styles)

	logger.Print("")
	logger.Print("[ SwipeServe ] Swipe decoding, completions and corrections")
	logger.Print("", "version", Version)
	logger.Print("")
	logger.Print("use -h or --help to see available options")
	logger.Print("Github Repo", "gh", gh)
}

// showStartupInfo displays some basic info about the init process on stderr.
func showStartupInfo(dataDir string, kb *keyboard.Keyboard) {
	currentLevel := log.GetLevel()
	log.SetLevel(log.InfoLevel)

	println("============")
	println(" SwipeServe ")
	println("============")
	log.Infof("Version: %s", Version)
	log.Infof("Process ID: [ %d ]", os.Getpid())
	log.Infof("data dir: ( %s )", dataDir)
	log.Infof("language: %s, words: %s", kb.Language(), utils.FormatWithCommas(kb.Stats()["totalWords"]))
	log.Info("status: ready")
	println("============")
	println("Press Ctrl+C to exit")

	log.SetLevel(currentLevel)
}
