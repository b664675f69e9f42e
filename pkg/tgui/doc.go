// Package tgui provides small helpers for chat-bot message text:
//   - HTML escaping for Telegram ParseMode="HTML"
//   - Rune-safe truncation
//   - Slice pagination with compact page labels
//   - Splitting long messages below the per-message size limit
package tgui
