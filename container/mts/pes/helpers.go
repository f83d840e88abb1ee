/*
DESCRIPTION
  helpers.go maps PMT stream types to PES stream IDs.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package pes

import "github.com/ausocean/tsmon/container/mts/psi"

// Stream IDs as per ITU-T Rec. H.222.0 / ISO/IEC 13818-1, table 2-22.
const (
	PrivateSID = 0xbd // private_stream_1: AC-3, subtitles and teletext.
	AudioSID   = 0xc0 // First MPEG audio stream.
	VideoSID   = 0xe0 // First MPEG video stream.
)

// StreamID returns the stream ID for an elementary stream of PMT stream type
// t.
func StreamID(t uint8) byte {
	switch t {
	case psi.StreamTypeMPEG1Video, psi.StreamTypeMPEG2Video, psi.StreamTypeMPEG4Video,
		psi.StreamTypeH264, psi.StreamTypeH265:
		return VideoSID
	case psi.StreamTypeMPEG1Audio, psi.StreamTypeMPEG2Audio, psi.StreamTypeADTS, psi.StreamTypeLATM:
		return AudioSID
	default:
		return PrivateSID
	}
}
