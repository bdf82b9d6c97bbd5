package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"sobel-bench/internal/codec"
)

func main() {
	cmd := newRootCommand()
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "sobel-bench: %v\n", err)
		if errors.Is(err, codec.ErrDecode) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
