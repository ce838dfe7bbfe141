package qrcode

import (
	"fmt"

	"github.com/skykywind/qrcodec"
	"github.com/skykywind/qrcodec/qrcode/decoder"
	"github.com/skykywind/qrcodec/qrcode/encoder"
)

// Encode encodes message in byte mode at level or better, in the smallest
// version that holds it.
func Encode(message string, level decoder.ErrorCorrectionLevel) (*Symbol, error) {
	code, err := encoder.Encode([]byte(message), level, nil)
	if err != nil {
		return nil, err
	}
	return &Symbol{code: code}, nil
}

// Writer encodes messages with caller-supplied options.
type Writer struct{}

// NewWriter creates a new Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Encode encodes message as configured by opts. A nil opts means level L,
// the smallest version and the best mask.
func (w *Writer) Encode(message string, opts *qrcodec.EncodeOptions) (*Symbol, error) {
	if opts == nil {
		opts = &qrcodec.EncodeOptions{}
	}
	level, err := decoder.ParseECLevel(opts.ErrorCorrection)
	if err != nil {
		return nil, err
	}
	if opts.QRVersion < 0 || opts.MinVersion < 0 || opts.MaxVersion < 0 {
		return nil, fmt.Errorf("%w: negative version bound", qrcodec.ErrInvalidArgument)
	}
	code, err := encoder.Encode([]byte(message), level, &encoder.Params{
		Version:     opts.QRVersion,
		MinVersion:  opts.MinVersion,
		MaxVersion:  opts.MaxVersion,
		MaskPattern: opts.QRMaskPattern,
		ECI:         opts.ECI,
		Logger:      opts.Logger,
	})
	if err != nil {
		return nil, err
	}
	return &Symbol{code: code}, nil
}

// Margin returns the quiet zone requested by opts.
func Margin(opts *qrcodec.EncodeOptions) int {
	if opts == nil || opts.Margin == nil || *opts.Margin < 0 {
		return DefaultMargin
	}
	return *opts.Margin
}
