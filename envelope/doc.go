// Package envelope unwraps the result objects returned by the foreign entry
// points.
//
// Every result answers isError first. A failed result carries a status byte
// and a message: status 1 maps to an io error, 2 to a parse error and
// anything else to unknown, with the message kept verbatim. A successful
// result yields its string content, or a reader that is promoted and handed
// to package stream.
package envelope
