package main

import (
	"os"
	"runtime/debug"

	log "github.com/sirupsen/logrus"

	"github.com/satspoint/SatsPoint/cmd/satspoint/commands"
)

// setLogger will initialize the log format
func setLogger() {
	log.SetLevel(log.InfoLevel)
	if os.Getenv("SATSPOINT_DEBUG") != "" {
		log.SetLevel(log.DebugLevel)
	}
	customFormatter := new(log.TextFormatter)
	customFormatter.TimestampFormat = "2006-01-02 15:04:05"
	customFormatter.FullTimestamp = true
	log.SetFormatter(customFormatter)
}

func main() {
	setLogger()
	defer withRecovery()
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}

func withRecovery() {
	if r := recover(); r != nil {
		log.Errorln("Recovered panic: ", r)
		debug.PrintStack()
	}
}
