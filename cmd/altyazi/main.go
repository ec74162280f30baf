package main

import (
	"os"

	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
