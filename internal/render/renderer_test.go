package render

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 3, 4, 16, 0, 0, 0, time.UTC)

func newTestRenderer(t *testing.T, opts Options) *Renderer {
	t.Helper()
	opts.Location = time.UTC
	opts.Now = func() time.Time { return fixedNow }
	r, err := New(opts)
	require.NoError(t, err)
	return r
}

func sampleDetail() TorrentDetail {
	added := time.Date(2024, 3, 4, 14, 5, 0, 0, time.UTC)
	return TorrentDetail{
		TorrentSummary: TorrentSummary{
			ID:           7,
			Name:         "ubuntu-24.04.iso",
			Status:       4,
			PercentDone:  0.5,
			ETA:          90061,
			RateDownload: 1536,
			RateUpload:   0,
		},
		SizeWhenDone:   5 << 20,
		AddedDate:      added.Unix(),
		DoneDate:       added.Add(3661 * time.Second).Unix(),
		DownloadDir:    "/srv/downloads",
		PeersConnected: 12,
	}
}

func TestTorrentsListEmpty(t *testing.T) {
	r := newTestRenderer(t, Options{})
	want := "<strong>List of current torrents and their status:</strong>\n"

	got, err := r.TorrentsList(nil)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	got, err = r.TorrentsList([]TorrentSummary{})
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestTorrentsListKeepsOrder(t *testing.T) {
	r := newTestRenderer(t, Options{})
	items := []TorrentSummary{
		sampleDetail().TorrentSummary,
		{ID: 2, Name: "debian", Status: 9, PercentDone: 1, ETA: -1},
	}
	got, err := r.TorrentsList(items)
	require.NoError(t, err)

	want := "<strong>List of current torrents and their status:</strong>\n" +
		"7) ubuntu-24.04.iso (<strong>Download</strong>)\n" +
		"➗ 50.00%\n" +
		"⌛️ 1 day, 1 hour remaining\n" +
		"⬇️ 1.5 KiB/s - ⬆️ 0 B/s\n\n\n" +
		"2) debian (<strong>Unknown</strong>)\n" +
		"➗ 100.00%\n" +
		"⌛️ remaining time unknown\n" +
		"⬇️ 0 B/s - ⬆️ 0 B/s\n\n\n"
	assert.Equal(t, want, got)
	assert.Equal(t, "ubuntu-24.04.iso", items[0].Name)
}

func TestTorrentsListPages(t *testing.T) {
	r := newTestRenderer(t, Options{})
	items := make([]TorrentSummary, 5)
	for i := range items {
		items[i] = TorrentSummary{ID: int64(i + 1), Name: "t"}
	}

	pages, err := r.TorrentsListPages(items, 2)
	require.NoError(t, err)
	require.Len(t, pages, 3)
	for _, p := range pages {
		assert.True(t, strings.HasPrefix(p, "<strong>List of current torrents"))
	}
	assert.Contains(t, pages[0], "1) t")
	assert.Contains(t, pages[0], "2) t")
	assert.NotContains(t, pages[0], "3) t")
	assert.True(t, strings.HasSuffix(pages[2], "Page 3/3 • 5–5 of 5"))

	single, err := r.TorrentsListPages(items[:1], 10)
	require.NoError(t, err)
	full, err := r.TorrentsList(items[:1])
	require.NoError(t, err)
	assert.Equal(t, []string{full}, single)
}

func TestTorrentDetails(t *testing.T) {
	r := newTestRenderer(t, Options{})
	got, err := r.TorrentDetails(sampleDetail())
	require.NoError(t, err)

	want := "ubuntu-24.04.iso\n\n" +
		"Status = <strong>Download</strong>\n" +
		"⌛️ 1 day, 1 hour remaining\n" +
		"➗ <strong>50.00%</strong>\n" +
		"⬇️ 1.5 KiB/s - ⬆️ 0 B/s\n\n" +
		"Size: 5.0 MiB\n" +
		"📅 Added: Monday, 04 March 14:05\n" +
		"📂 /srv/downloads\n" +
		"👥 Peers connected: 12\n"
	assert.Equal(t, want, got)
}

func TestTorrentDetailsZeroAddedDateIsNow(t *testing.T) {
	r := newTestRenderer(t, Options{})
	d := sampleDetail()
	d.AddedDate = 0
	got, err := r.TorrentDetails(d)
	require.NoError(t, err)
	assert.Contains(t, got, "📅 Added: Monday, 04 March 16:00\n")
}

func TestNewTorrent(t *testing.T) {
	r := newTestRenderer(t, Options{})
	got, err := r.NewTorrent(NewTorrent{ID: 3, Name: "arch.iso"})
	require.NoError(t, err)
	want := "The torrent was added succesfully 👌, here are some information about it:\n" +
		"• <strong>ID torrent:</strong> 3;\n" +
		"• <strong>Name:</strong> arch.iso\n"
	assert.Equal(t, want, got)
}

func TestErrorMessageIsNotInterpreted(t *testing.T) {
	r := newTestRenderer(t, Options{})
	errText := "bad {{.ID}} <b>input</b>"
	assert.Equal(t, "Ops there was an error 😰, here are some details:\n"+errText, r.ErrorMessage(errText))

	esc := newTestRenderer(t, Options{EscapeHTML: true})
	assert.Equal(t,
		"Ops there was an error 😰, here are some details:\nbad {{.ID}} &lt;b&gt;input&lt;/b&gt;",
		esc.ErrorMessage(errText))
}

func TestComplete(t *testing.T) {
	r := newTestRenderer(t, Options{})
	got, err := r.Complete(sampleDetail())
	require.NoError(t, err)

	want := "Oh, a torrent has been downloaded completely 🙌\n" +
		"Here are some details 👇:\n" +
		"<strong>ubuntu-24.04.iso</strong>\n\n" +
		"📅 04/03 14:05 - 04/03 15:06\n" +
		"🕔 1 hours, 1 minutes, 1 seconds\n" +
		"Size: 5.0 MiB\n\n" +
		"📂 /srv/downloads\n"
	assert.Equal(t, want, got)
}

func TestSessionDetails(t *testing.T) {
	r := newTestRenderer(t, Options{})
	s := SessionInfo{
		Version:              "4.0.5 (a6fe2a64aa)",
		ConfigDir:            "/var/lib/transmission",
		DownloadDirFreeSpace: 5 << 20,
		DownloadDir:          "/srv/downloads",
		IncompleteDir:        "/srv/incomplete",
		SpeedLimitDown:       100,
		SpeedLimitUpEnabled:  true,
		SpeedLimitUp:         50,
		PeerLimitGlobal:      200,
		PeerLimitPerTorrent:  50,
		DownloadQueueEnabled: true,
	}
	got, err := r.SessionDetails(s)
	require.NoError(t, err)

	want := "<strong>Transmission version: 4.0.5 (a6fe2a64aa)</strong>\n" +
		"Config dir: <pre>/var/lib/transmission</pre>\n\n" +
		"<strong>Free space: 5.0 MiB</strong>\n" +
		"Download directory: <pre>/srv/downloads</pre>\n" +
		"Incomplete directory <strong>not enabled</strong>\n\n" +
		"⬇️ Speed limit not enabled\n" +
		"⬆️ Speed limit: 50kB/s\n\n" +
		"👥 Peers limit:\n" +
		"• Global = 200\n" +
		"• Per torrent = 50\n\n" +
		"Download queue enabled\n"
	assert.Equal(t, want, got)

	s.IncompleteDirEnabled = true
	s.SpeedLimitDownEnabled = true
	s.DownloadQueueEnabled = false
	got, err = r.SessionDetails(s)
	require.NoError(t, err)
	assert.Contains(t, got, "Incomplete directory: <pre>/srv/incomplete</pre>\n")
	assert.Contains(t, got, "⬇️ Speed limit: 100kB/s\n")
	assert.Contains(t, got, "Download queue not enabled\n")
}

func TestEscapeHTMLMode(t *testing.T) {
	plain := newTestRenderer(t, Options{})
	esc := newTestRenderer(t, Options{EscapeHTML: true})
	in := NewTorrent{ID: 1, Name: "<b>x</b> & y"}

	got, err := plain.NewTorrent(in)
	require.NoError(t, err)
	assert.Contains(t, got, "<strong>Name:</strong> <b>x</b> & y\n")

	got, err = esc.NewTorrent(in)
	require.NoError(t, err)
	assert.Contains(t, got, "<strong>Name:</strong> &lt;b&gt;x&lt;/b&gt; &amp; y\n")
	assert.Contains(t, got, "<strong>ID torrent:</strong> 1;")
}

func TestMaxNameRunes(t *testing.T) {
	r := newTestRenderer(t, Options{MaxNameRunes: 6})
	got, err := r.NewTorrent(NewTorrent{ID: 1, Name: "ubuntu-24.04.iso"})
	require.NoError(t, err)
	assert.Contains(t, got, "<strong>Name:</strong> ubuntu…\n")
}

func TestSIUnits(t *testing.T) {
	r := newTestRenderer(t, Options{ByteUnits: UnitsSI})
	got, err := r.TorrentsList([]TorrentSummary{{ID: 1, RateDownload: 1000}})
	require.NoError(t, err)
	assert.Contains(t, got, "⬇️ 1.0 kB/s - ⬆️ 0 B/s")
}

func TestInvalidNumbersFailRender(t *testing.T) {
	r := newTestRenderer(t, Options{})
	_, err := r.TorrentsList([]TorrentSummary{{ID: 1, RateUpload: -5}})
	assert.ErrorIs(t, err, ErrInvalidNumber)
}

func TestTemplateOverrides(t *testing.T) {
	r := newTestRenderer(t, Options{Templates: map[Kind]string{
		KindNewTorrent: "Added #{{.ID}} {{esc .Name}}",
	}})
	got, err := r.NewTorrent(NewTorrent{ID: 7, Name: "a&b"})
	require.NoError(t, err)
	assert.Equal(t, "Added #7 a&amp;b", got)

	// Other kinds keep their defaults.
	got, err = r.TorrentsList(nil)
	require.NoError(t, err)
	assert.Equal(t, "<strong>List of current torrents and their status:</strong>\n", got)
}

func TestNewRejectsBadTemplates(t *testing.T) {
	_, err := New(Options{Templates: map[Kind]string{KindNewTorrent: "{{.ID"}})
	assert.ErrorIs(t, err, ErrTemplate)

	_, err = New(Options{Templates: map[Kind]string{KindNewTorrent: "{{.Hash}}"}})
	assert.ErrorIs(t, err, ErrMissingField)

	// Fields only reached inside optional branches are checked too.
	_, err = New(Options{Templates: map[Kind]string{
		KindSessionDetails: "{{if .IncompleteDirEnabled}}{{.IncompleteDirectory}}{{end}}",
	}})
	assert.ErrorIs(t, err, ErrMissingField)

	_, err = New(Options{Templates: map[Kind]string{"torrent_deleted": "x"}})
	assert.ErrorIs(t, err, ErrUnknownKind)

	_, err = New(Options{ByteUnits: "furlongs"})
	assert.Error(t, err)

	assert.Panics(t, func() {
		MustNew(Options{Templates: map[Kind]string{KindComplete: "{{"}})
	})
}

func TestRenderUnknownKind(t *testing.T) {
	r := newTestRenderer(t, Options{})
	_, err := r.Render("nope", nil)
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("Torrent-Details")
	require.NoError(t, err)
	assert.Equal(t, KindTorrentDetails, k)

	_, err = ParseKind("error")
	assert.ErrorIs(t, err, ErrUnknownKind)

	assert.Len(t, Kinds(), 5)
	src, ok := DefaultTemplate(KindComplete)
	assert.True(t, ok)
	assert.Contains(t, src, "elapsed")
}

func TestSplit(t *testing.T) {
	r := newTestRenderer(t, Options{MaxMessageRunes: 200})
	items := make([]TorrentSummary, 10)
	for i := range items {
		items[i] = TorrentSummary{ID: int64(i + 1), Name: "torrent"}
	}
	text, err := r.TorrentsList(items)
	require.NoError(t, err)
	chunks := r.Split(text)
	assert.Greater(t, len(chunks), 1)
}
