package main

import (
	"os"

	sedstartcmder "github.com/papercomputeco/sedstart-action/cmd/sedstart"
)

func main() {
	cmd := sedstartcmder.NewSedstartCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
