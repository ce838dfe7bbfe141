package qrcodec

import "github.com/sirupsen/logrus"

// EncodeOptions configures symbol generation. A nil *EncodeOptions means
// defaults: level L, versions 1 to 40, automatic mask, quiet zone of 4.
type EncodeOptions struct {
	// ErrorCorrection is the minimum level, one of "L", "M", "Q" or "H".
	// The encoder raises it while the chosen version still fits.
	ErrorCorrection string

	// Margin is the quiet zone in modules used when rendering.
	Margin *int

	// QRVersion forces a version (1-40). Zero selects the smallest fit.
	QRVersion int

	// MinVersion and MaxVersion restrict the automatic version search.
	MinVersion int
	MaxVersion int

	// QRMaskPattern forces a mask pattern (0-7). Nil selects the mask with
	// the lowest penalty.
	QRMaskPattern *int

	// ECI prefixes the byte segment with the UTF-8 ECI designator.
	ECI bool

	// Logger receives debug traces. Nil disables logging.
	Logger logrus.FieldLogger
}
