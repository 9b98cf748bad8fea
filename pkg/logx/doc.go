// Package logx configures wordbot's structured logging.
//
// Logger is a small wrapper on top of zerolog that keeps:
//   - Console output readable (short timestamp + short caller)
//   - File output JSON-structured
//   - An optional chat sink that mirrors WARN+ lines to a Telegram chat
//     (min-level + rate limiting)
package logx
