package main

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	luxem "github.com/rendaw/luxem-go"
)

var validateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Check that a luxem document parses cleanly",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	var path string
	if len(args) == 1 {
		path = args[0]
	}

	src, err := readInput(path)
	if err != nil {
		return err
	}

	r := luxem.NewReader(
		luxem.WithObjectBegin(func() { log.Debug().Msg("object_begin") }),
		luxem.WithObjectEnd(func() { log.Debug().Msg("object_end") }),
		luxem.WithArrayBegin(func() { log.Debug().Msg("array_begin") }),
		luxem.WithArrayEnd(func() { log.Debug().Msg("array_end") }),
	)
	if _, err := r.FeedBytes(src, true); err != nil {
		var pe *luxem.ParseError
		if errors.As(err, &pe) {
			return fmt.Errorf("invalid: %s at byte %d", pe.Category, pe.Offset)
		}
		return fmt.Errorf("invalid: %w", err)
	}

	fmt.Println("ok")
	return nil
}
