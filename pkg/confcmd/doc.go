// Package confcmd decodes and applies config frames.
//
// A config frame is [0xAA][cmdType][payload...]. It is not checksummed.
// Structured payloads are size checked before any field is read and
// undersized commands are ignored.
package confcmd
