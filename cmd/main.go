package main

import (
	"os"

	"github.com/sirupsen/logrus"

	"github.com/operator-framework/quboform/cmd/root"
)

func main() {
	rootCmd := root.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		logrus.Errorf("quboform: %v", err)
		os.Exit(1)
	}
}
