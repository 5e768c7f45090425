package main

import (
	"purchase-tracking/cmd/purchase-mail/cmd"
)

func main() {
	cmd.Execute()
}
