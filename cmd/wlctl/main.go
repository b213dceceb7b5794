package main

import "github.com/7Lumine/whitelistbot/internal/cli"

func main() { cli.Execute() }
