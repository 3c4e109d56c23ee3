package main

import "github.com/theirongolddev/feeburn/cmd"

func main() {
	cmd.Execute()
}
