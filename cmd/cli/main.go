package main

import (
	"github.com/crucial707/flowchart-api/cmd/cli/auth"
	"github.com/crucial707/flowchart-api/cmd/cli/flowcharts"
	"github.com/crucial707/flowchart-api/cmd/cli/root"
)

func main() {
	auth.InitAuth(root.RootCmd)
	flowcharts.InitFlowcharts(root.RootCmd)
	root.Execute()
}
