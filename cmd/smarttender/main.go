// cmd/smarttender/main.go
package main

import (
	"os"

	"smarttender-engine/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
