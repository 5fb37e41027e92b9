package main

import (
	"context"

	"digicards/cmd/digicards/commands"
)

func main() {
	commands.ExecuteContext(context.Background())
}
