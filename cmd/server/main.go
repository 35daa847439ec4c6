package main

import (
	"github.com/sirupsen/logrus"

	"mail-webhook-relay/internal/app"
)

func main() {
	if err := app.Run(); err != nil {
		logrus.Fatalf("Application error: %v", err)
	}
}
