package main

import (
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/km-arc/go-inject/cli"
)

func main() {
	if err := cli.New().Exec(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}
