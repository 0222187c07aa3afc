package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// readJSONInput decodes a JSON document from path, or from stdin when path
// is "-".
func readJSONInput(cmd *cobra.Command, path string, target any) error {
	var r io.Reader
	path = strings.TrimSpace(path)
	if path == "-" {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		r = f
	}
	if err := json.NewDecoder(r).Decode(target); err != nil {
		return fmt.Errorf("decode %s: %w", inputName(path), err)
	}
	return nil
}

func inputName(path string) string {
	if path == "-" {
		return "stdin"
	}
	return path
}
