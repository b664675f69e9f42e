// Package render turns torrent client snapshots into chat message text.
//
// A Renderer is built once at startup: it compiles the message templates
// (defaults or overrides from config) and binds a helper table for status
// labels, percentages, remaining-time and elapsed-time phrases, byte sizes
// and dates. Rendering is synchronous and never mutates its input.
//
// Output uses Telegram's lightweight HTML markup (<strong>, <pre>) and emoji.
// Interpolated values are NOT escaped unless Options.EscapeHTML is set, so
// callers must not feed untrusted names or error text to a chat that parses
// HTML without enabling it.
package render
