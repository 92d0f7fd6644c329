package main

import (
	"fmt"
	"os"

	"github.com/sandeepkv93/estate-admin-backend/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
