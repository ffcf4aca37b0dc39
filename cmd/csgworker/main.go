package main

import (
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/Bitbloq/bitbloq/config"
	"github.com/Bitbloq/bitbloq/solver"
)

func main() {
	config := config.Read()
	initLogger(config)
	log.Debugf("Config: %#v", config)

	local := solver.NewLocalSolverPool(config.Workers)
	defer local.Close()

	log.Infof("Serving csg operations on ws://%s%s", config.Address, solver.ListenPath)
	if err := solver.ListenAndServe(config.Address, local); err != nil {
		log.Error(err.Error())
		os.Exit(1)
	}
}

func initLogger(config config.Config) {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	level, err := log.ParseLevel(config.LoggingLevel)
	if err != nil {
		panic(err)
	}
	log.SetLevel(level)
}
