package main

import "github.com/odhiambo/treasury/treasury/cmd"

func main() {
	cmd.Execute()
}
