package main

import "github.com/BrandonKowalski/pagestack/cmd/pagestack/cmd"

func main() {
	cmd.Execute()
}
