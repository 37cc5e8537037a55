// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newCommand() *cobra.Command {
	var pkg, out string

	cmd := &cobra.Command{
		Use:   "smlgen <grammar-excerpt.txt>",
		Short: "Generate Go schema accessors from an SML grammar excerpt",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("smlgen: %w", err)
			}
			defer f.Close()

			grammar, err := ParseGrammar(f)
			if err != nil {
				return err
			}
			code, err := Render(grammar, pkg)
			if err != nil {
				return err
			}
			if out == "" {
				_, err = os.Stdout.Write(code)
				return err
			}
			return os.WriteFile(out, code, 0o644)
		},
	}

	cmd.Flags().StringVar(&pkg, "package", "types", "package name for the generated file")
	cmd.Flags().StringVar(&out, "out", "", "output path (default: stdout)")

	return cmd
}
