package main

import (
	"github.com/sirupsen/logrus"

	"github.com/nodewatch/nodewatch/cmd"
)

func main() {
	logrus.SetLevel(logrus.InfoLevel)

	if err := cmd.NewRootCmd().Execute(); err != nil {
		logrus.Fatalf("error executing command: %v", err)
	}
}
