package main

import "github.com/ValentinKolb/qnclient/cmd"

func main() {
	cmd.Execute()
}
