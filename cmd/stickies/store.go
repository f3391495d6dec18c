package main

import (
	"io"
	"log/slog"
	"strings"

	"github.com/aretw0/stickies"
	"github.com/aretw0/stickies/pkg/core"
)

func openStore() core.Store {
	store, err := stickies.OpenStore(dataDir, stickies.WithLogger(slog.Default()))
	if err != nil {
		fatal("Failed to open notes", err)
	}
	return store
}

// contentArg returns flagValue, or stdin when it is "-".
func contentArg(flagValue string, stdin io.Reader) (string, error) {
	if flagValue != "-" {
		return flagValue, nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(data), "\n"), nil
}
