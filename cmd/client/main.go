package main

import "fibertrace/cmd/client/cmd"

func main() {
	cmd.Execute()
}
