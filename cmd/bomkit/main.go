package main

import (
	"context"
	"os"

	"github.com/vsinha/bomkit/pkg/interfaces/cli/commands"
)

func main() {
	os.Exit(commands.Execute(context.Background(), commands.Options{}, os.Args[1:]))
}
