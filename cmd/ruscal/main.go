package main

import (
	"os"

	"github.com/zurustar/ruscal/pkg/app"
)

func main() {
	application := app.New(os.Stdin, os.Stdout, os.Stderr)
	os.Exit(application.Run(os.Args[1:]))
}
