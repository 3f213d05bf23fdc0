// SPDX-License-Identifier: MPL-2.0

package cache

import (
	"encoding/hex"

	"github.com/fxamacker/cbor/v2"
	"github.com/zeebo/blake3"
)

// recordVersion is written into every file. Files with another version are
// treated as absent and overwritten on the next successful fetch.
const recordVersion = 1

var (
	// encMode uses Core Deterministic Encoding: identical records produce
	// identical bytes.
	encMode cbor.EncMode

	decMode cbor.DecMode
)

func init() {
	var err error
	encOptions := cbor.CoreDetEncOptions()
	// Keep sub-second precision; staleness is compared against these stamps.
	encOptions.Time = cbor.TimeRFC3339Nano
	encMode, err = encOptions.EncMode()
	if err != nil {
		panic("cache: CBOR encoder initialization failed: " + err.Error())
	}
	decMode, err = cbor.DecOptions{}.DecMode()
	if err != nil {
		panic("cache: CBOR decoder initialization failed: " + err.Error())
	}
}

// hashHex returns the hex-encoded 32-byte BLAKE3 digest of data.
func hashHex(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}
