package main

import (
	"fmt"
	"os"

	"github.com/soyeahso/agentchat/internal/cli"
	"github.com/tillberg/autorestart"
)

func main() {
	// Rebuild-and-restart loop for local development only.
	if os.Getenv("AGENTCHAT_DEV_AUTORESTART") == "1" {
		go autorestart.RestartOnChange()
	}

	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "agentchat:", err)
		os.Exit(1)
	}
}
