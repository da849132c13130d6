package main

import "github.com/aussiebroadwan/fieldops/cmd/portal/cmd"

func main() {
	cmd.Execute()
}
