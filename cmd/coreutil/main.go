package main

import (
	"github.com/flow-consensus/ifcore/cmd/coreutil/cmd"
)

func main() {
	cmd.Execute()
}
