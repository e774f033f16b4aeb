package main

import (
	"flag"
	"fmt"
	"os"

	"optiondesk/internal/auth"
)

// Prints a bcrypt hash suitable for INTERNAL_API_TOKEN_HASH.
func main() {
	token := flag.String("token", "", "internal API token to hash")
	flag.Parse()
	if *token == "" {
		fmt.Fprintln(os.Stderr, "usage: genhash -token <value>")
		os.Exit(2)
	}
	hash, err := auth.HashInternalToken(*token)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Printf("INTERNAL_API_TOKEN_HASH=%s\n", hash)
}
