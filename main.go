package main

import (
	"github.com/sirupsen/logrus"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/dnachev/wg-uapi/cmd"
)

func main() {
	if _, err := maxprocs.Set(maxprocs.Logger(logrus.Debugf)); err != nil {
		logrus.
			WithError(err).
			Warn("failed to set maxprocs")
	}
	cmd.Execute()
}
