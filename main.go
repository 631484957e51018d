package main

import "github.com/chrisdamba/expcheck/cmd"

func main() {
	cmd.Execute()
}
