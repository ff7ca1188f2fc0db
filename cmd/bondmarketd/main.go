package main

import "github.com/bondledger/bondmarketd/internal/cli"

func main() {
	cli.Execute()
}
