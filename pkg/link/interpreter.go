package link

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Diegoval-Dev/R-Lab2/linklab/pkg/frame"
	"github.com/Diegoval-Dev/R-Lab2/linklab/pkg/log"
	"github.com/Diegoval-Dev/R-Lab2/linklab/pkg/presentation"
)

const (
	causeTooShort       = "Frame too short"
	causeCRCFailed      = "CRC validation failed"
	causeUncorrectable  = "CRC invalid after Hamming correction"
	causeLengthMismatch = "Payload length mismatch"
)

// Interpreter es la lógica de recepción: clasifica la trama, corrige o
// valida según el algoritmo y decodifica el mensaje. No guarda estado entre
// tramas, así que una sola instancia sirve a varias goroutines.
type Interpreter struct {
	log logrus.FieldLogger
	now func() time.Time
}

// NewInterpreter crea un intérprete. Con logger nil no se registra nada.
func NewInterpreter(logger logrus.FieldLogger) *Interpreter {
	if logger == nil {
		logger = log.Discard()
	}
	return &Interpreter{log: logger, now: time.Now}
}

// Process lleva una trama desde bytes crudos hasta un Result. Nunca entra en
// pánico: todo estado final lleva un error clasificado y una causa.
func (in *Interpreter) Process(b []byte) (res Result) {
	start := in.now()
	res = Result{
		Timestamp: start,
		FrameHex:  hex.EncodeToString(b),
		FrameSize: len(b),
		TotalBits: len(b) * 8,
		Algorithm: AlgorithmUnknown,
	}

	defer func() {
		if r := recover(); r != nil {
			in.log.WithField("panic", r).Error("frame processing panicked")
			res.fail(fmt.Errorf("%w: %v", ErrUnexpected, r), "Unexpected error")
		}
		res.ProcessingTime = in.now().Sub(start)
	}()

	logger := in.log.WithField("size", len(b))
	logger.Debug("processing frame")

	if len(b) < frame.MinFrameSize {
		res.fail(fmt.Errorf("%w: %d bytes", frame.ErrFrameTooShort, len(b)), causeTooShort)
		logger.Warn("frame too short")
		return res
	}

	res.MsgType = b[0]
	cls := Classify(res.MsgType)
	res.Algorithm = cls.Algorithm
	logger = logger.WithFields(logrus.Fields{"msg_type": fmt.Sprintf("0x%02x", res.MsgType), "algorithm": cls.Algorithm})
	if !cls.Exact {
		logger.Warn("suspicious message type, assuming nearest algorithm")
	}

	switch cls.Algorithm {
	case AlgorithmCRC:
		in.processCRC(b, &res, logger)
	case AlgorithmHamming:
		in.processHamming(b, &res, logger)
	default:
		res.fail(fmt.Errorf("%w: 0x%02x", ErrUnknownAlgorithm, res.MsgType), "Unknown message type")
	}

	if res.Success {
		logger.WithField("message", res.Message).Info("frame recovered")
	}
	return res
}

func (in *Interpreter) processCRC(b []byte, res *Result, logger logrus.FieldLogger) {
	f, err := frame.ParseFrame(b)
	if errors.Is(err, frame.ErrPayloadLengthMismatch) {
		// el CRC ya coincidió: la trama llegó íntegra pero es inconsistente
		res.CRCValid = true
		res.fail(err, causeLengthMismatch)
		logger.WithError(err).Warn("CRC frame discarded")
		return
	}
	if err != nil {
		res.fail(err, causeCRCFailed)
		logger.WithError(err).Warn("CRC frame discarded")
		return
	}
	res.CRCValid = true

	// Con CRC válido el byte de tipo es el que se envió de verdad.
	if f.MsgType != frame.MsgTypeCRC {
		res.fail(fmt.Errorf("%w: CRC-valid frame with type 0x%02x", ErrUnknownAlgorithm, f.MsgType),
			fmt.Sprintf("Unknown message type: 0x%02x", f.MsgType))
		return
	}

	res.Message = presentation.BitsToText(presentation.BytesToBits(f.Payload))
	res.Success = true
}

// processHamming corrige antes de validar: un bit invertido en el payload
// rompe el CRC, pero la corrección puede devolver los bytes originales. Por
// eso se decodifica, se re-codifica y se reconstruye la trama antes de
// compararla con el CRC recibido.
func (in *Interpreter) processHamming(b []byte, res *Result, logger logrus.FieldLogger) {
	raw, err := frame.SplitFrame(b, true)
	if err != nil {
		res.fail(err, causeTooShort)
		logger.WithError(err).Warn("hamming frame too short")
		return
	}
	if raw.PayloadLength != len(raw.Payload) {
		logger.WithFields(logrus.Fields{"header": raw.PayloadLength, "actual": len(raw.Payload)}).
			Warn("payload length does not match header, continuing")
	}

	// Un bloque parcial al final no se puede corregir y se descarta.
	bits := presentation.BytesToBits(raw.Payload)
	bits = bits[:len(bits)/7*7]

	data, corrected, err := frame.Hamming74Decode(bits)
	if err != nil {
		res.fail(fmt.Errorf("%w: %w", ErrHammingUncorrectable, err), "Hamming decode failed")
		return
	}

	reencoded, err := frame.Hamming74Encode(data)
	if err != nil {
		res.fail(fmt.Errorf("%w: %w", ErrHammingUncorrectable, err), "Hamming re-encode failed")
		return
	}

	rebuilt, err := frame.BuildFrame(presentation.BitsToBytes(reencoded), frame.MsgTypeHamming, raw.Lens)
	if err != nil {
		res.fail(fmt.Errorf("%w: %w", ErrHammingUncorrectable, err), causeUncorrectable)
		return
	}
	binary.BigEndian.PutUint32(rebuilt[len(rebuilt)-frame.TrailerSize:], raw.CRC)

	f, err := frame.ParseFrame(rebuilt)
	if err != nil {
		res.fail(fmt.Errorf("%w: %w", ErrHammingUncorrectable, err), causeUncorrectable)
		logger.WithError(err).WithField("corrections", len(corrected)).Warn("CRC still invalid after Hamming correction")
		return
	}
	res.CRCValid = true
	res.CorrectedPositions = corrected
	if res.CorrectedPositions == nil {
		res.CorrectedPositions = []int{}
	}
	if len(corrected) > 0 {
		logger.WithField("positions", corrected).Infof("hamming corrected %d bits", len(corrected))
	}

	if f.Lens.EncodedBits > len(bits) || f.Lens.OriginalBits > len(data) {
		res.fail(fmt.Errorf("%w: sub-header %d/%d bits, decoded %d/%d", frame.ErrPayloadLengthMismatch,
			f.Lens.OriginalBits, f.Lens.EncodedBits, len(data), len(bits)), causeLengthMismatch)
		return
	}

	res.Message = presentation.BitsToTextN(data, f.Lens.OriginalBits)
	res.Success = true
}
