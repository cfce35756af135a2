package main

import (
	"os"

	"go.withmatt.com/maildigest/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
