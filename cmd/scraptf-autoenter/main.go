package main

import "github.com/rvik/scraptf-autoenter/internal/cli"

func main() {
	cli.Execute()
}
