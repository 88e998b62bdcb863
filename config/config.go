package config

import (
	"flag"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"padterm/constants"
)

type Config struct {
	Debug     bool
	Listen    string
	APIListen string
	Command   string
	MOTD      string
	APIKey    string
	Path      string
	InitFile  string
	Record    string
	PadRows   int
}

var CFG = &Config{}

func Load() error {
	home, err := os.UserHomeDir()
	if err != nil {
		return err
	}

	homedir := home + "/.config/padterm"
	fullpath, err := filepath.Abs(homedir)
	if err != nil {
		return err
	}

	err = os.MkdirAll(fullpath, constants.DefaultDirMode)
	if err != nil {
		return err
	}

	CFG.Path = fullpath

	log.Println("CFG.Path:", CFG.Path)

	// Parse environment variables
	CFG.Listen = os.Getenv("PADTERM_LISTEN")
	if CFG.Listen == "" {
		CFG.Listen = "0.0.0.0:2200"
	}
	CFG.APIListen = os.Getenv("PADTERM_API_LISTEN")
	if CFG.APIListen == "" {
		CFG.APIListen = "127.0.0.1:2201"
	}
	CFG.APIKey = os.Getenv("PADTERM_API_KEY")
	CFG.MOTD = os.Getenv("PADTERM_MOTD")
	if CFG.MOTD == "" {
		CFG.MOTD = "Welcome to Padterm"
	}
	CFG.Debug = os.Getenv("PADTERM_DEBUG") == "true"
	CFG.Command = os.Getenv("PADTERM_COMMAND")
	if CFG.Command == "" {
		CFG.Command = os.Getenv("SHELL")
	}
	CFG.Path = os.Getenv("PADTERM_PATH")
	if CFG.Path == "" {
		CFG.Path = fullpath
	}
	CFG.InitFile = os.Getenv("PADTERM_INIT_FILE")
	if CFG.InitFile == "" {
		CFG.InitFile = "init.lua"
	}
	CFG.Record = os.Getenv("PADTERM_RECORD")
	CFG.PadRows = 1000
	if v := os.Getenv("PADTERM_PAD_ROWS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			log.Printf("invalid PADTERM_PAD_ROWS %q, using default", v)
		} else {
			CFG.PadRows = n
		}
	}

	// Parse command line flags
	flag.StringVar(&CFG.Listen, "listen", CFG.Listen, "")
	flag.StringVar(&CFG.APIListen, "api_listen", CFG.APIListen, "")
	flag.StringVar(&CFG.APIKey, "api_key", CFG.APIKey, "")
	flag.StringVar(&CFG.Command, "command", CFG.Command, "")
	flag.StringVar(&CFG.MOTD, "motd", CFG.MOTD, "")
	flag.StringVar(&CFG.Path, "path", CFG.Path, "")
	flag.BoolVar(&CFG.Debug, "debug", CFG.Debug, "")
	flag.StringVar(&CFG.InitFile, "init", CFG.InitFile, "")
	flag.StringVar(&CFG.Record, "record", CFG.Record, "")
	flag.IntVar(&CFG.PadRows, "pad_rows", CFG.PadRows, "")

	p := func(msg string) {
		_, _ = os.Stderr.WriteString(msg)
	}

	flag.Usage = func() {
		p("Padterm - A terminal sharing tool\n")
		p("\n")
		p("Environment variables:\n")
		p("    PADTERM_LISTEN\n")
		p("        Listen address default: \"0.0.0.0:2200\"\n")
		p("    PADTERM_API_LISTEN\n")
		p("        API Listen address default: \"127.0.0.1:2201\"\n")
		p("    PADTERM_API_KEY\n")
		p("        API Key\n")
		p("    PADTERM_COMMAND\n")
		p("        Command to run default: $SHELL\n")
		p("    PADTERM_MOTD\n")
		p("        Message of the day\n")
		p("    PADTERM_PATH\n")
		p("        Path to config files default: $HOME/.config/padterm\n")
		p("    PADTERM_DEBUG\n")
		p("        Enable debug mode default: false\n")
		p("    PADTERM_INIT_FILE\n")
		p("        Init file default: init.lua\n")
		p("    PADTERM_RECORD\n")
		p("        Record session to file\n")
		p("    PADTERM_PAD_ROWS\n")
		p("        Scrollback pad rows default: 1000\n")
		p("\n")
		p("Usage: padterm [options]\n")
		p("Options:\n")
		p("    -listen string\n")
		p("        Listen address default: \"0.0.0.0:2200\"\n")
		p("        Override the environment variable $PADTERM_LISTEN\n")
		p("    -api_listen string\n")
		p("        API Listen address default: \"127.0.0.1:2201\"\n")
		p("        Override the environment variable $PADTERM_API_LISTEN\n")
		p("    -api_key string\n")
		p("        API Key\n")
		p("        Override the environment variable $PADTERM_API_KEY\n")
		p("    -command string\n")
		p("        Command to run default: $SHELL\n")
		p("        Override the environment variable $PADTERM_COMMAND\n")
		p("    -motd string\n")
		p("        Message of the day\n")
		p("        Override the environment variable $PADTERM_MOTD\n")
		p("    -path string\n")
		p("        Path to config files default: $HOME/.config/padterm\n")
		p("        Override the environment variable $PADTERM_PATH\n")
		p("    -debug\n")
		p("        Enable debug mode default: false\n")
		p("        Override the environment variable $PADTERM_DEBUG\n")
		p("    -init string\n")
		p("        Init file default: init.lua\n")
		p("        Override the environment variable $PADTERM_INIT_FILE\n")
		p("    -record string\n")
		p("        Record session to file\n")
		p("        Override the environment variable $PADTERM_RECORD\n")
		p("    -pad_rows int\n")
		p("        Scrollback pad rows default: 1000\n")
		p("        Override the environment variable $PADTERM_PAD_ROWS\n")
		p("\n")
		p("init.lua:\n")
		p("    The init.lua file is located at $HOME/.config/padterm/init.lua\n")
		p("    This file is used to configure padterm and can override all other settings and command line flags except -path and -init\n")
		p("    If the file does not exist it will be created with the default content.\n")
		p("\n")

	}

	flag.Parse()

	return err
}
