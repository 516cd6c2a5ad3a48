// Package main is the entry point for the duoqstats CLI tool, which reports
// teammate and duo-corrected solo-queue win rates from Riot match history.
package main

import "github.com/pable/duoqstats/cmd"

func main() {
	cmd.Execute()
}
