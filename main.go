package main

import "github.com/yeremiapane/table-booking/cmd"

func main() {
	cmd.Execute()
}
