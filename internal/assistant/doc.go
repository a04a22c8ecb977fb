// Package assistant answers plain-language questions about the virtual file
// system from inside the shell.
//
// Queries are matched against an ordered table of case-insensitive
// patterns. The first pattern that matches produces the answer. Queries that
// match no pattern fall back to greetings, thanks, help, or a default reply.
//
// Features:
//   - How-to answers for mkdir, touch, write, rm, cat, ls and cd
//   - How-to answers for compress, uncompress, encrypt and decrypt
//   - Live lookups: largest file in a directory, contents of a directory
//   - Per-command explanations
//
// The assistant only reads the file system through View. It never mutates
// anything.
//
// Example Usage:
//
//	a := assistant.New(ns)
//	fmt.Println(a.Answer("show me the largest file in /logs"))
package assistant
