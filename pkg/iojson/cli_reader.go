package iojson

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"
)

// FileReader reads a JSON value of type T from a file flag, falling back to
// stdin when the flag is unset and stdin is not a terminal.
type FileReader[T any] struct {
	name          string
	aliases       []string
	usage         string
	fileFlagValue string
}

// NewFileReader creates a FileReader whose flag uses the given name.
func NewFileReader[T any](name string, aliases []string, usage string) *FileReader[T] {
	return &FileReader[T]{name: name, aliases: aliases, usage: usage}
}

func (fr *FileReader[T]) Flag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:        fr.name,
		Aliases:     fr.aliases,
		Usage:       fr.usage,
		Destination: &fr.fileFlagValue,
	}
}

func (fr *FileReader[T]) Read() (T, error) {
	var reader io.Reader
	var input T

	if fr.fileFlagValue != "" {
		f, err := os.Open(fr.fileFlagValue)
		if err != nil {
			return input, fmt.Errorf("open file: %w", err)
		}
		defer func() { _ = f.Close() }()
		reader = f
	} else {
		if term.IsTerminal(int(os.Stdin.Fd())) {
			return input, fmt.Errorf("no input provided (stdin is a terminal); use --%s or pipe JSON input", fr.name)
		}
		reader = os.Stdin
	}

	if err := json.NewDecoder(reader).Decode(&input); err != nil {
		return input, fmt.Errorf("decode JSON: %w", err)
	}

	return input, nil
}
