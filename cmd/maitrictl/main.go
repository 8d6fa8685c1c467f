package main

import "github.com/maitriconnect/maitri-api/cmd/maitrictl/cmd"

func main() {
	cmd.Execute()
}
