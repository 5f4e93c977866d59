// Package stream adapts a foreign InputStream to io.ReadCloser.
//
// Each Read attaches to the runtime, allocates a foreign byte[] sized to the
// caller's buffer, invokes read([BII)I and copies the filled region back.
// A foreign exception during read surfaces as an io-kind error.
package stream
