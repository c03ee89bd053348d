package main

import (
	"os"

	"github.com/sirupsen/logrus"
)

var logg *logrus.Logger

func init() {
	logg = logrus.New()
	logg.SetFormatter(&logrus.JSONFormatter{})
	logg.SetLevel(logrus.InfoLevel)
	logg.SetOutput(os.Stdout)
}

// logSideEffect records a swallowed side-channel failure (a notification
// push or audit write that must not fail the primary action). The primary
// effect has already happened by the time this runs, so the only trace of
// the loss is this log line.
func logSideEffect(op string, id uint, err error) {
	logg.WithFields(logrus.Fields{
		"op":         op,
		"contractId": id,
	}).Error(err.Error())
}
