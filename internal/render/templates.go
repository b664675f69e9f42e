package render

import (
	"fmt"
	"sort"
	"strings"
)

// Kind names a message template.
type Kind string

const (
	KindTorrentsList   Kind = "torrents_list"
	KindTorrentDetails Kind = "torrent_details"
	KindNewTorrent     Kind = "new_torrent"
	KindComplete       Kind = "complete_torrent"
	KindSessionDetails Kind = "session_details"
)

// Kinds returns every templated message kind, sorted.
func Kinds() []Kind {
	out := make([]Kind, 0, len(defaultTemplates))
	for k := range defaultTemplates {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ParseKind resolves a kind name; dashes are accepted in place of underscores.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_"))
	if _, ok := defaultTemplates[k]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
	return k, nil
}

// DefaultTemplate returns the built-in source for kind.
func DefaultTemplate(k Kind) (string, bool) {
	src, ok := defaultTemplates[k]
	return src, ok
}

const errorPreamble = "Ops there was an error 😰, here are some details:\n"

const torrentsListTemplate = `<strong>List of current torrents and their status:</strong>
{{range .}}{{.ID}}) {{name .Name}} (<strong>{{status .Status}}</strong>)
➗ {{percent .PercentDone}}
⌛️ {{remaining .ETA}}
⬇️ {{bytes .RateDownload}}/s - ⬆️ {{bytes .RateUpload}}/s


{{end}}`

const torrentDetailsTemplate = `{{name .Name}}

Status = <strong>{{status .Status}}</strong>
⌛️ {{remaining .ETA}}
➗ <strong>{{percent .PercentDone}}</strong>
⬇️ {{bytes .RateDownload}}/s - ⬆️ {{bytes .RateUpload}}/s

Size: {{bytes .SizeWhenDone}}
📅 Added: {{formatDate (parseDate .AddedDate) "%A, %d %B %H:%M"}}
📂 {{.DownloadDir}}
👥 Peers connected: {{.PeersConnected}}
`

const newTorrentTemplate = `The torrent was added succesfully 👌, here are some information about it:
• <strong>ID torrent:</strong> {{.ID}};
• <strong>Name:</strong> {{name .Name}}
`

const completeTemplate = `Oh, a torrent has been downloaded completely 🙌
Here are some details 👇:
<strong>{{name .Name}}</strong>

📅 {{formatDate (parseDate .AddedDate) "%d/%m %H:%M"}} - {{formatDate (parseDate .DoneDate) "%d/%m %H:%M"}}
🕔 {{elapsed (parseDate .AddedDate) (parseDate .DoneDate)}}
Size: {{bytes .SizeWhenDone}}

📂 {{.DownloadDir}}
`

const sessionDetailsTemplate = `<strong>Transmission version: {{.Version}}</strong>
Config dir: <pre>{{.ConfigDir}}</pre>

<strong>Free space: {{bytes .DownloadDirFreeSpace}}</strong>
Download directory: <pre>{{.DownloadDir}}</pre>
Incomplete directory{{if .IncompleteDirEnabled}}: <pre>{{.IncompleteDir}}</pre>{{else}} <strong>not enabled</strong>{{end}}

⬇️ Speed limit{{if .SpeedLimitDownEnabled}}: {{.SpeedLimitDown}}kB/s{{else}} not enabled{{end}}
⬆️ Speed limit{{if .SpeedLimitUpEnabled}}: {{.SpeedLimitUp}}kB/s{{else}} not enabled{{end}}

👥 Peers limit:
• Global = {{.PeerLimitGlobal}}
• Per torrent = {{.PeerLimitPerTorrent}}

Download queue {{enabled .DownloadQueueEnabled}}
`

var defaultTemplates = map[Kind]string{
	KindTorrentsList:   torrentsListTemplate,
	KindTorrentDetails: torrentDetailsTemplate,
	KindNewTorrent:     newTorrentTemplate,
	KindComplete:       completeTemplate,
	KindSessionDetails: sessionDetailsTemplate,
}

// samples returns records used to dry-run a template at construction time,
// one zero value and one with every optional branch switched on.
func samples(k Kind) []any {
	full := TorrentDetail{
		TorrentSummary: TorrentSummary{ID: 1, Name: "sample", Status: 4, PercentDone: 0.5, ETA: 60, RateDownload: 1, RateUpload: 1},
		SizeWhenDone:   1,
		AddedDate:      1,
		DoneDate:       2,
		DownloadDir:    "/",
		PeersConnected: 1,
	}
	switch k {
	case KindTorrentsList:
		return []any{[]TorrentSummary{{}}, []TorrentSummary{full.TorrentSummary}}
	case KindTorrentDetails, KindComplete:
		return []any{TorrentDetail{}, full}
	case KindNewTorrent:
		return []any{NewTorrent{}, NewTorrent{ID: 1, Name: "sample"}}
	case KindSessionDetails:
		return []any{SessionInfo{}, SessionInfo{
			Version:               "4.0.0",
			ConfigDir:             "/",
			DownloadDir:           "/",
			IncompleteDirEnabled:  true,
			IncompleteDir:         "/",
			SpeedLimitDownEnabled: true,
			SpeedLimitDown:        1,
			SpeedLimitUpEnabled:   true,
			SpeedLimitUp:          1,
			DownloadQueueEnabled:  true,
		}}
	}
	return nil
}
