package main

import "github.com/sambabib/depdrift/cmd"

func main() {
	cmd.Execute()
}
