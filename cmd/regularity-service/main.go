package main

import (
	"os"

	"github.com/kaezarrex/regularity/trackerservice"
)

func main() {
	if err := trackerservice.Run(); err != nil {
		os.Exit(1)
	}
}
