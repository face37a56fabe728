package main

import "github.com/GriffinCanCode/HTMLReader/internal/cli"

func main() {
	cli.Execute()
}
