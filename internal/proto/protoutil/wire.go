// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package protoutil carries the ASCII wire codec and small app-lifecycle
// shapes shared by every protocol family under internal/proto: encoding
// and parsing dot-delimited field payloads, and the Start/Stop state that
// every source/destination application carries.
package protoutil

import (
	"strings"

	"github.com/luxfi/qns/internal/qerr"
)

// Delim is the single-character field delimiter every classical payload
// uses.
const Delim = "."

// Join encodes fields into a single dot-delimited ASCII payload.
func Join(fields ...string) []byte {
	return []byte(strings.Join(fields, Delim))
}

// Split parses payload into exactly want dot-delimited fields. A wrong
// field count is a malformed classical message (taxonomy class 5) and is
// fatal.
func Split(payload []byte, want int) []string {
	fields := strings.Split(string(payload), Delim)
	if len(fields) != want {
		qerr.Panicf("protoutil: malformed payload %q: want %d fields, got %d", payload, want, len(fields))
	}
	return fields
}

// Digit parses a single ASCII '0'/'1' field into an int. Anything else is
// a malformed classical message.
func Digit(field string) int {
	switch field {
	case "0":
		return 0
	case "1":
		return 1
	default:
		qerr.Panicf("protoutil: malformed outcome digit %q", field)
		return 0
	}
}

// DigitString encodes a 0/1 outcome as its ASCII digit.
func DigitString(bit int) string {
	if bit == 0 {
		return "0"
	}
	return "1"
}

const (
	// Win and Lose are Distill's reply payload literals.
	Win  = "win"
	Lose = "lose"
)

// Virtual-time scheduling delays, transcribed from the original
// simulator's quantum-basis constants.
const (
	ClassicalDelay = 0.1   // ms granularity retained from the source's literal value
	TelepDelay     = 0.5   // seconds
	DistEPRDelay   = 0.005 // seconds
	SetupDelay     = 0.1   // seconds

	// NestedOccupyStep is the fixed increment nested distillation's
	// "occupied time" counter advances by after every scheduled sub-event
	// (EPR generation or a pairwise combine), pacing the shared channel.
	NestedOccupyStep = 0.1
)
