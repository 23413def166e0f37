package main

import (
	"log"

	"github.com/thiagokokada/gitpulse/cmd"
)

func main() {
	if err := cmd.Run(); err != nil {
		log.Fatalf("gitpulse: %v", err)
	}
}
