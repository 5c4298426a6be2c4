package main

import "github.com/pagesmith/ocrqa-cli/cmd"

func main() {
	cmd.Execute()
}
