package wav

import "errors"

var (
	ErrNotWavFile        = errors.New("not a WAV file")
	ErrMissingFmtChunk   = errors.New("missing fmt chunk")
	ErrMissingDataChunk  = errors.New("missing data chunk")
	ErrUnsupportedFormat = errors.New("unsupported sample format")
	ErrUnsupportedLayout = errors.New("unsupported channel layout")
	ErrOversizedData     = errors.New("data chunk exceeds size limit")
	ErrCaptureFinalized  = errors.New("capture already finalized")
)
