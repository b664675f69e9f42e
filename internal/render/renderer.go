package render

import (
	"bytes"
	"errors"
	"fmt"
	htmltemplate "html/template"
	"io"
	"strings"
	"text/template"
	"time"

	"torrentbot/pkg/logx"
	"torrentbot/pkg/tgui"
)

// Options configures a Renderer. The zero value renders the built-in
// templates in local time with 1024-based units and no escaping.
type Options struct {
	// Location for formatted dates; nil means time.Local.
	Location *time.Location
	// Now is the clock behind the "0 means now" date rule; nil means time.Now.
	Now func() time.Time

	ByteUnits ByteUnits

	// EscapeHTML escapes every interpolated value (and error text) for
	// Telegram HTML. Off by default: names are trusted as-is.
	EscapeHTML bool

	// MaxNameRunes truncates torrent names; 0 keeps them whole.
	MaxNameRunes int
	// MaxMessageRunes bounds the chunks produced by Split; 0 means tgui.MaxMessageRunes.
	MaxMessageRunes int

	// Templates overrides built-in templates by kind.
	Templates map[Kind]string

	Log logx.Logger
}

type executor interface {
	Execute(w io.Writer, data any) error
}

// Renderer holds compiled templates and the helper table.
// It is immutable after New and safe for concurrent use.
type Renderer struct {
	opts  Options
	loc   *time.Location
	now   func() time.Time
	log   logx.Logger
	funcs map[string]any
	tmpl  map[Kind]executor
}

// New compiles every template and dry-runs it against sample records, so
// syntax errors and references to unknown fields fail here and not at send time.
func New(opts Options) (*Renderer, error) {
	units := opts.ByteUnits
	if units == "" {
		units = UnitsIEC
	}
	if units != UnitsIEC && units != UnitsSI {
		return nil, fmt.Errorf("render: unknown byte units %q", units)
	}
	opts.ByteUnits = units

	r := &Renderer{
		opts: opts,
		loc:  opts.Location,
		now:  opts.Now,
		log:  opts.Log,
		tmpl: make(map[Kind]executor, len(defaultTemplates)),
	}
	if r.loc == nil {
		r.loc = time.Local
	}
	if r.now == nil {
		r.now = time.Now
	}
	if r.log.IsZero() {
		r.log = logx.Nop()
	}
	r.funcs = r.helpers()

	for k := range opts.Templates {
		if _, ok := defaultTemplates[k]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownKind, k)
		}
	}

	for _, k := range Kinds() {
		src := defaultTemplates[k]
		if o := opts.Templates[k]; strings.TrimSpace(o) != "" {
			src = o
		}
		ex, err := r.compile(k, src)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrTemplate, k, err)
		}
		for _, sample := range samples(k) {
			if err := ex.Execute(io.Discard, sample); err != nil {
				return nil, classifyExecErr(k, err)
			}
		}
		r.tmpl[k] = ex
	}
	return r, nil
}

// MustNew is New for startup code: a broken template is fatal.
func MustNew(opts Options) *Renderer {
	r, err := New(opts)
	if err != nil {
		panic(err)
	}
	return r
}

func (r *Renderer) compile(k Kind, src string) (executor, error) {
	if r.opts.EscapeHTML {
		return htmltemplate.New(string(k)).Funcs(htmltemplate.FuncMap(r.funcs)).Parse(src)
	}
	return template.New(string(k)).Funcs(template.FuncMap(r.funcs)).Parse(src)
}

func (r *Renderer) helpers() map[string]any {
	return map[string]any{
		"status":    func(s Status) string { return s.String() },
		"percent":   Percentage,
		"remaining": RemainingTime,
		"bytes":     func(n int64) (string, error) { return FormatBytes(n, r.opts.ByteUnits) },
		"parseDate": func(sec int64) time.Time { return ParseEpoch(sec, r.now()) },
		"formatDate": func(t time.Time, layout string) string {
			return FormatDate(t, layout, r.loc)
		},
		"elapsed": ElapsedBetween,
		"enabled": EnabledPhrase,
		"name":    r.name,
		"esc":     func(s string) string { return tgui.Esc(s).String() },
	}
}

func (r *Renderer) name(s string) string {
	if r.opts.MaxNameRunes > 0 {
		return tgui.TruncRunes(s, r.opts.MaxNameRunes)
	}
	return s
}

func classifyExecErr(k Kind, err error) error {
	if errors.Is(err, ErrInvalidNumber) {
		return err
	}
	msg := err.Error()
	if strings.Contains(msg, "can't evaluate field") || strings.Contains(msg, "map has no entry") {
		return fmt.Errorf("%w: %s: %v", ErrMissingField, k, err)
	}
	return fmt.Errorf("render %s: %w", k, err)
}

// Render executes the template for kind against data.
func (r *Renderer) Render(k Kind, data any) (string, error) {
	ex, ok := r.tmpl[k]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, k)
	}
	var buf bytes.Buffer
	if err := ex.Execute(&buf, data); err != nil {
		err = classifyExecErr(k, err)
		r.log.Warn("render failed", logx.String("kind", string(k)), logx.Err(err))
		return "", err
	}
	return buf.String(), nil
}

// TorrentsList renders the header plus one block per torrent, in input order.
func (r *Renderer) TorrentsList(items []TorrentSummary) (string, error) {
	if items == nil {
		items = []TorrentSummary{}
	}
	return r.Render(KindTorrentsList, items)
}

// TorrentsListPages renders the list in pages of pageSize torrents. Each page
// carries the header; a page label is appended when there is more than one page.
func (r *Renderer) TorrentsListPages(items []TorrentSummary, pageSize int) ([]string, error) {
	pages := tgui.PageCount(len(items), pageSize)
	out := make([]string, 0, pages)
	for p := 0; p < pages; p++ {
		sub, _, _, _, _, _, _ := tgui.PaginateSlice(items, p, pageSize)
		text, err := r.TorrentsList(sub)
		if err != nil {
			return nil, err
		}
		if pages > 1 {
			text += tgui.PageLabel(p, pageSize, len(items))
		}
		out = append(out, text)
	}
	return out, nil
}

// TorrentDetails renders a single torrent.
func (r *Renderer) TorrentDetails(t TorrentDetail) (string, error) {
	return r.Render(KindTorrentDetails, t)
}

// NewTorrent renders the "torrent added" confirmation.
func (r *Renderer) NewTorrent(t NewTorrent) (string, error) {
	return r.Render(KindNewTorrent, t)
}

// Complete renders the download-finished notice.
func (r *Renderer) Complete(t TorrentDetail) (string, error) {
	return r.Render(KindComplete, t)
}

// SessionDetails renders the client's session configuration.
func (r *Renderer) SessionDetails(s SessionInfo) (string, error) {
	return r.Render(KindSessionDetails, s)
}

// ErrorMessage wraps errText in a fixed preamble. errText is never parsed as
// a template; it is only escaped when EscapeHTML is set.
func (r *Renderer) ErrorMessage(errText string) string {
	if r.opts.EscapeHTML {
		errText = tgui.Esc(errText).String()
	}
	return errorPreamble + errText
}

// Split cuts rendered text into chunks that fit a single chat message.
func (r *Renderer) Split(text string) []string {
	return tgui.SplitMessage(text, r.opts.MaxMessageRunes)
}
