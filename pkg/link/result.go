package link

import "time"

// Result es el resultado de procesar una trama recibida. Se crea una vez por
// trama y no se modifica después.
type Result struct {
	Timestamp          time.Time     `json:"timestamp"`
	Success            bool          `json:"success"`
	FrameHex           string        `json:"original_frame_hex"`
	FrameSize          int           `json:"frame_size"`
	TotalBits          int           `json:"total_bits"`
	MsgType            byte          `json:"msg_type"`
	Algorithm          Algorithm     `json:"algorithm"`
	Message            string        `json:"recovered_message"`
	CorrectedPositions []int         `json:"corrected_positions"`
	CRCValid           bool          `json:"crc_valid"`
	Err                error         `json:"-"`
	ErrorKind          string        `json:"error_kind,omitempty"`
	Cause              string        `json:"error_message,omitempty"`
	ProcessingTime     time.Duration `json:"processing_time"`
}

// Corrections es la cantidad de bits corregidos por Hamming.
func (r Result) Corrections() int {
	return len(r.CorrectedPositions)
}

func (r *Result) fail(err error, cause string) {
	r.Success = false
	r.Err = err
	r.ErrorKind = Kind(err)
	r.Cause = cause
}
