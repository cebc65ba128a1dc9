package main

import "marketdata-manager/cmd"

func main() {
	cmd.Execute()
}
