package main

import (
	"fmt"
	"os"
	"strings"

	"fjacquet/finance-advisor/cmd/analyze"
	"fjacquet/finance-advisor/cmd/categorize"
	"fjacquet/finance-advisor/cmd/chat"
	"fjacquet/finance-advisor/cmd/goals"
	"fjacquet/finance-advisor/cmd/health"
	"fjacquet/finance-advisor/cmd/root"
	"fjacquet/finance-advisor/cmd/serve"
	"fjacquet/finance-advisor/internal/config"

	"github.com/sirupsen/logrus"
)

func init() {
	// 1. Load .env silently, before any logger exists
	_, _ = config.LoadEnv()

	// 2. LOG_LEVEL is honoured unless the prefixed variable is set
	configureLogLevel()

	// 3. Initialize the root command and its subcommands
	root.Init()
	root.Cmd.AddCommand(categorize.Cmd)
	root.Cmd.AddCommand(analyze.Cmd)
	root.Cmd.AddCommand(health.Cmd)
	root.Cmd.AddCommand(goals.Cmd)
	root.Cmd.AddCommand(chat.Cmd)
	root.Cmd.AddCommand(serve.Cmd)
}

// configureLogLevel maps LOG_LEVEL onto the configuration's log.level and
// the global logrus level.
func configureLogLevel() {
	level := strings.ToLower(config.GetEnv("LOG_LEVEL", ""))
	if level == "" {
		return
	}
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		return
	}
	logrus.SetLevel(parsed)
	if _, ok := os.LookupEnv("FINADV_LOG_LEVEL"); !ok {
		_ = os.Setenv("FINADV_LOG_LEVEL", parsed.String())
	}
}

func main() {
	if err := root.Cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
