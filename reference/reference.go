// Package reference builds human-readable booking references.
//
// A reference is unique because the (event id, sequence) pair is: the
// sequence is the event row's booking counter, bumped under the row lock in
// the same transaction that stores the booking.
package reference

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lithammer/shortuuid/v3"
)

const (
	Prefix    = "BK"
	seqWidth  = 4
	suffixLen = 4
)

// New returns a reference for the seq-th booking of eventID with a random
// suffix so references can't be enumerated.
func New(eventID, seq int64) string {
	suffix := shortuuid.New()
	if len(suffix) > suffixLen {
		suffix = suffix[:suffixLen]
	}
	return FromSequence(eventID, seq, suffix)
}

func FromSequence(eventID, seq int64, suffix string) string {
	s := strconv.FormatInt(seq, 36)
	if len(s) < seqWidth {
		s = strings.Repeat("0", seqWidth-len(s)) + s
	}
	return strings.ToUpper(fmt.Sprintf("%s%s-%s%s", Prefix, strconv.FormatInt(eventID, 36), s, suffix))
}
