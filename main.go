package main

import (
	"github.com/keccers/apod-frame/cmd"
)

func main() {
	// Ensure that the app is running on a system with 64-bit integers
	if int64(int(1<<60)) != int64(1<<60) {
		panic("This app should only be executed on a 64-bit system")
	}

	cmd.Execute()
}
