package main

import (
	"github.com/ardanlabs/waveportal/app/tooling/portal/cmd"
)

func main() {
	cmd.Execute()
}
