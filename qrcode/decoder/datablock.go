package decoder

import (
	"fmt"

	"github.com/skykywind/qrcodec"
)

// DataBlock is one Reed-Solomon block: NumDataCodewords data codewords
// followed by its error correction codewords.
type DataBlock struct {
	NumDataCodewords int
	Codewords        []byte
}

// GetDataBlocks splits interleaved codewords into the blocks of (version,
// ecLevel). Data codewords are interleaved column-wise across all blocks,
// the longer blocks of the second group contributing one extra column, then
// error correction codewords column-wise.
func GetDataBlocks(rawCodewords []byte, version *Version, ecLevel ErrorCorrectionLevel) ([]DataBlock, error) {
	if len(rawCodewords) != version.TotalCodewords {
		return nil, fmt.Errorf("%w: %d codewords for version %d", qrcodec.ErrInvalidArgument, len(rawCodewords), version.Number)
	}
	ecBlocks := version.ECBlocksForLevel(ecLevel)
	ecCount := ecBlocks.ECCodewordsPerBlock

	var blocks []DataBlock
	maxData := 0
	for _, g := range ecBlocks.Blocks {
		for i := 0; i < g.Count; i++ {
			blocks = append(blocks, DataBlock{
				NumDataCodewords: g.DataCodewords,
				Codewords:        make([]byte, g.DataCodewords+ecCount),
			})
		}
		if g.DataCodewords > maxData {
			maxData = g.DataCodewords
		}
	}

	off := 0
	for i := 0; i < maxData; i++ {
		for j := range blocks {
			if i < blocks[j].NumDataCodewords {
				blocks[j].Codewords[i] = rawCodewords[off]
				off++
			}
		}
	}
	for i := 0; i < ecCount; i++ {
		for j := range blocks {
			blocks[j].Codewords[blocks[j].NumDataCodewords+i] = rawCodewords[off]
			off++
		}
	}
	return blocks, nil
}
