package main

import (
	"os"

	redtutorcmder "github.com/hongxuelab/redtutor/cmd/redtutor"
)

func main() {
	cmd := redtutorcmder.NewRedtutorCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
