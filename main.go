package main

import (
	"github.com/carson-networks/ledger-server/internal/commands"
)

func main() {
	commands.Execute()
}
