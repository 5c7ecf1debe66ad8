// Package decode turns type-tagged JSON payloads into typed records.
//
// A "BOOK" payload is an array of price levels, a "TICK" payload is a single
// trade. Any other tag decodes to nothing. Failures are decode errors
// (fault.KindDecode) and never affect later messages.
package decode
