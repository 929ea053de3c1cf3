package main

import (
	"fmt"
	"os"

	"github.com/spec-kit/ticket-bot/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "ticketbot:", err)
		os.Exit(1)
	}
}
