package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"torrentbot/internal/app"
	"torrentbot/internal/render"
	"torrentbot/pkg/logx"
)

const kindError = "error"

func newRenderCommand(cfgPath *string) *cobra.Command {
	var (
		input string
		watch bool
	)

	kinds := make([]string, 0, len(render.Kinds())+1)
	for _, k := range render.Kinds() {
		kinds = append(kinds, string(k))
	}
	kinds = append(kinds, kindError)

	command := &cobra.Command{
		Use:   "render <kind> [error text...]",
		Short: "Render a message from a JSON record",
		Long: `Render a message from a JSON record using Transmission RPC field names.

Kinds: ` + strings.Join(kinds, ", ") + `

torrents_list expects an array of torrents; the other kinds expect one object.
"render error <text...>" renders an error message from the remaining arguments.
With --watch the record is re-rendered whenever the config file changes, which
is handy while editing template overrides.`,
		Args:      cobra.MinimumNArgs(1),
		ValidArgs: kinds,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := app.New(ctx, *cfgPath, false)
			if err != nil {
				return err
			}
			defer a.Close()

			out := cmd.OutOrStdout()

			if strings.EqualFold(args[0], kindError) {
				if len(args) < 2 {
					return fmt.Errorf("render error: missing error text")
				}
				return writeChunks(out, a.Renderer(), a.Renderer().ErrorMessage(strings.Join(args[1:], " ")))
			}
			if len(args) > 1 {
				return fmt.Errorf("render %s: unexpected arguments %q", args[0], args[1:])
			}

			kind, err := render.ParseKind(args[0])
			if err != nil {
				return err
			}
			raw, err := readInput(cmd.InOrStdin(), input)
			if err != nil {
				return err
			}

			run := func(r *render.Renderer) error {
				text, err := renderRecord(r, kind, raw, a.PageSize())
				if err != nil {
					return err
				}
				return writeChunks(out, r, text...)
			}
			if err := run(a.Renderer()); err != nil {
				return err
			}
			if !watch {
				return nil
			}

			a.Logger().Info("watching config for changes", logx.String("kind", string(kind)))
			return a.Watch(ctx, func(r *render.Renderer) {
				fmt.Fprintln(out, "----")
				if err := run(r); err != nil {
					a.Logger().Warn("re-render failed", logx.Err(err))
				}
			})
		},
	}

	command.Flags().StringVarP(&input, "input", "i", "-", `JSON record file, or "-" for stdin`)
	command.Flags().BoolVarP(&watch, "watch", "w", false, "re-render when the config file changes")
	return command
}

func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}

func decodeRecord(raw []byte, v any) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		return fmt.Errorf("input: empty record")
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("input: %w", err)
	}
	return nil
}

// renderRecord decodes raw as the record type of kind and renders it. Only
// the torrent list may produce more than one message (one per page).
func renderRecord(r *render.Renderer, kind render.Kind, raw []byte, pageSize int) ([]string, error) {
	one := func(s string, err error) ([]string, error) {
		if err != nil {
			return nil, err
		}
		return []string{s}, nil
	}

	switch kind {
	case render.KindTorrentsList:
		var items []render.TorrentSummary
		if err := decodeRecord(raw, &items); err != nil {
			return nil, err
		}
		if pageSize > 0 {
			return r.TorrentsListPages(items, pageSize)
		}
		return one(r.TorrentsList(items))
	case render.KindTorrentDetails, render.KindComplete:
		var t render.TorrentDetail
		if err := decodeRecord(raw, &t); err != nil {
			return nil, err
		}
		if kind == render.KindComplete {
			return one(r.Complete(t))
		}
		return one(r.TorrentDetails(t))
	case render.KindNewTorrent:
		var t render.NewTorrent
		if err := decodeRecord(raw, &t); err != nil {
			return nil, err
		}
		return one(r.NewTorrent(t))
	case render.KindSessionDetails:
		var s render.SessionInfo
		if err := decodeRecord(raw, &s); err != nil {
			return nil, err
		}
		return one(r.SessionDetails(s))
	default:
		return nil, fmt.Errorf("%w: %q", render.ErrUnknownKind, kind)
	}
}

// writeChunks prints each message split to the chat size limit, with a blank
// line between messages.
func writeChunks(w io.Writer, r *render.Renderer, texts ...string) error {
	first := true
	for _, text := range texts {
		for _, chunk := range r.Split(text) {
			if !first {
				if _, err := fmt.Fprintln(w); err != nil {
					return err
				}
			}
			first = false
			if _, err := io.WriteString(w, chunk); err != nil {
				return err
			}
			if !strings.HasSuffix(chunk, "\n") {
				if _, err := fmt.Fprintln(w); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
