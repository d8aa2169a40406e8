package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	luxem "github.com/rendaw/luxem-go"
)

var (
	fmtPretty bool
	fmtSpaces bool
	fmtIndent int
)

var fmtCmd = &cobra.Command{
	Use:   "fmt [file]",
	Short: "Reformat a luxem document",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runFmt,
}

func init() {
	fmtCmd.Flags().BoolVar(&fmtPretty, "pretty", false, "pretty-print with newlines and indentation")
	fmtCmd.Flags().BoolVar(&fmtSpaces, "spaces", false, "indent with spaces instead of tabs (implies --pretty indentation unit)")
	fmtCmd.Flags().IntVar(&fmtIndent, "indent", 1, "indent width per nesting level, in --pretty mode")
}

func runFmt(cmd *cobra.Command, args []string) error {
	var path string
	if len(args) == 1 {
		path = args[0]
	}

	src, err := readInput(path)
	if err != nil {
		return err
	}

	events, err := collectEvents(src)
	if err != nil {
		return err
	}

	opts := []luxem.WriterOption{
		luxem.WithPretty(fmtPretty),
		luxem.WithSpaces(fmtSpaces),
		luxem.WithIndentMultiple(fmtIndent),
	}
	w := luxem.NewWriter(opts...)
	replay(w, events)
	if err := w.Err(); err != nil {
		return fmt.Errorf("re-emitting document: %w", err)
	}

	_, werr := os.Stdout.Write(w.Dump())
	return werr
}

// collectEvents parses src in full, tracing container boundaries at debug
// level when --verbose is set.
func collectEvents(src []byte) ([]luxem.Event, error) {
	var events []luxem.Event
	r := luxem.NewReader(
		luxem.WithObjectBegin(func() {
			log.Debug().Msg("object_begin")
			events = append(events, luxem.Event{Kind: luxem.EventObjectBegin})
		}),
		luxem.WithObjectEnd(func() {
			log.Debug().Msg("object_end")
			events = append(events, luxem.Event{Kind: luxem.EventObjectEnd})
		}),
		luxem.WithArrayBegin(func() {
			log.Debug().Msg("array_begin")
			events = append(events, luxem.Event{Kind: luxem.EventArrayBegin})
		}),
		luxem.WithArrayEnd(func() {
			log.Debug().Msg("array_end")
			events = append(events, luxem.Event{Kind: luxem.EventArrayEnd})
		}),
		luxem.WithKey(func(b []byte) {
			events = append(events, luxem.Event{Kind: luxem.EventKey, Data: append([]byte(nil), b...)})
		}),
		luxem.WithType(func(b []byte) {
			events = append(events, luxem.Event{Kind: luxem.EventType, Data: append([]byte(nil), b...)})
		}),
		luxem.WithPrimitive(func(b []byte) {
			events = append(events, luxem.Event{Kind: luxem.EventPrimitive, Data: append([]byte(nil), b...)})
		}),
	)
	if _, err := r.FeedBytes(src, true); err != nil {
		return nil, fmt.Errorf("parsing document: %w", err)
	}
	return events, nil
}

// replay re-emits a captured event stream onto w, in document order.
func replay(w *luxem.Writer, events []luxem.Event) {
	for _, e := range events {
		switch e.Kind {
		case luxem.EventObjectBegin:
			w.ObjectBegin()
		case luxem.EventObjectEnd:
			w.ObjectEnd()
		case luxem.EventArrayBegin:
			w.ArrayBegin()
		case luxem.EventArrayEnd:
			w.ArrayEnd()
		case luxem.EventKey:
			w.Key(e.Data)
		case luxem.EventType:
			w.Type(e.Data)
		case luxem.EventPrimitive:
			w.Primitive(e.Data)
		}
	}
}
