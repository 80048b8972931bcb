package main

import "github.com/ValentinKolb/cntd/cmd"

func main() {
	cmd.Execute()
}
