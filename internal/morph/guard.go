package morph

import "strings"

// AlreadyTransformed reports whether the message carries any mode's marker in
// a position the pipeline stamps: the end of the plain body, the end of a
// block footer, or the end of a block body. The check is a pure function of
// the message content, so a transformed message is recognized across process
// restarts with no per-message state.
func AlreadyTransformed(msg Message) bool {
	for _, mode := range AllModes {
		if strings.HasSuffix(msg.Body, mode.Marker) {
			return true
		}

		for _, block := range msg.Blocks {
			if strings.HasSuffix(block.Footer, mode.Marker) {
				return true
			}

			if strings.HasSuffix(block.Body, mode.Marker) {
				return true
			}
		}
	}

	return false
}
