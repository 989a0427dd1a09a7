package main

import "github.com/kdduha/sportsclass/internal/cli"

func main() {
	cli.Execute()
}
