// Package main validates WeakAuras import strings from a file or stdin
// and prints what each one decodes to. Useful for checking a batch of
// strings before running a real import.
package main

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/gitrdm/wamerge/pkg/weakauras"
)

func main() {
	log, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger setup:", err)
		os.Exit(1)
	}
	defer log.Sync()

	input, err := readInput()
	if err != nil {
		log.Fatal("reading input", zap.Error(err))
	}

	decoder := weakauras.NewDecoder(weakauras.WithDecoderLogger(log))
	results := decoder.DecodeMultiple(input)
	if len(results) == 0 {
		log.Warn("no import-string candidates found in input")
		return
	}

	valid := 0
	for i, result := range results {
		if result.Err != nil {
			log.Error("decode failed", zap.Int("entry", i+1), zap.Error(result.Err))
			continue
		}
		valid++
		aura := result.Aura
		log.Info("decoded",
			zap.Int("entry", i+1),
			zap.String("id", aura.ID),
			zap.Uint8("encoding", aura.EncodingVersion),
			zap.Bool("group", aura.IsGroup),
			zap.Int("descendants", len(aura.ChildData)))
	}
	log.Info("done", zap.Int("valid", valid), zap.Int("total", len(results)))
}

// readInput returns the contents of the file named on the command line,
// or stdin when no argument is given.
func readInput() (string, error) {
	if len(os.Args) > 1 {
		data, err := os.ReadFile(os.Args[1])
		return string(data), err
	}
	data, err := io.ReadAll(os.Stdin)
	return string(data), err
}
