package encoder

import (
	"fmt"
	"sync"

	"github.com/skykywind/qrcodec"
	"github.com/skykywind/qrcodec/qrcode/decoder"
	"github.com/skykywind/qrcodec/reedsolomon"
)

var rsEncoder = sync.OnceValue(func() *reedsolomon.Encoder {
	return reedsolomon.NewEncoder(reedsolomon.QRCodeField256())
})

// InterleaveWithEC splits data codewords into the blocks of (version,
// ecLevel), appends Reed-Solomon parity to each, and returns the final
// codeword sequence: data codewords column by column across blocks, then
// parity codewords column by column.
func InterleaveWithEC(data []byte, version *decoder.Version, ecLevel decoder.ErrorCorrectionLevel) ([]byte, error) {
	if want := version.DataCodewords(ecLevel); len(data) != want {
		return nil, fmt.Errorf("%w: %d data codewords for version %d-%s, want %d", qrcodec.ErrInvalidArgument, len(data), version.Number, ecLevel, want)
	}
	ecBlocks := version.ECBlocksForLevel(ecLevel)
	ecCount := ecBlocks.ECCodewordsPerBlock

	type block struct {
		data, ec []byte
	}
	var blocks []block
	off, maxData := 0, 0
	for _, g := range ecBlocks.Blocks {
		for i := 0; i < g.Count; i++ {
			d := data[off : off+g.DataCodewords]
			off += g.DataCodewords
			blocks = append(blocks, block{data: d, ec: rsEncoder().Encode(d, ecCount)})
		}
		if g.DataCodewords > maxData {
			maxData = g.DataCodewords
		}
	}

	out := make([]byte, 0, version.TotalCodewords)
	for i := 0; i < maxData; i++ {
		for _, b := range blocks {
			if i < len(b.data) {
				out = append(out, b.data[i])
			}
		}
	}
	for i := 0; i < ecCount; i++ {
		for _, b := range blocks {
			out = append(out, b.ec[i])
		}
	}
	if len(out) != version.TotalCodewords {
		return nil, fmt.Errorf("%w: interleaved %d codewords, want %d", qrcodec.ErrInvalidArgument, len(out), version.TotalCodewords)
	}
	return out, nil
}
