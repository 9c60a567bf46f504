// Package wavcodec is a hand-rolled RIFF/WAVE import/export codec, in
// the idiom of the teacher's own wav.Writer (encoding/binary plus
// explicit chunk writing) rather than a third-party WAV dependency —
// the teacher's own current code already moved off one.
package wavcodec

import (
	"encoding/binary"
	"io"
	"math"
)

const (
	formatTagPCM   = 1
	formatTagFloat = 3
)

// Decoded is the result of importing a WAV byte stream: interleaved
// float samples plus the metadata the importer extracted.
type Decoded struct {
	Samples      []float32
	ChannelCount int
	SampleRate   int
	BitDepth     int
	FormatTag    int
}

// Decode reads a RIFF/WAVE stream and produces interleaved float
// samples in [-1, 1] plus its format metadata. It supports PCM
// {16, 24, 32}-bit and 32-bit IEEE float, 1-8 channels, any positive
// sample rate.
func Decode(r io.Reader) (*Decoded, error) {
	var riffHeader [12]byte
	if _, err := io.ReadFull(r, riffHeader[:]); err != nil {
		return nil, ErrInvalidData
	}
	if string(riffHeader[0:4]) != "RIFF" || string(riffHeader[8:12]) != "WAVE" {
		return nil, ErrInvalidData
	}

	var (
		haveFmt       bool
		audioFormat   uint16
		channels      uint16
		sampleRate    uint32
		bitsPerSample uint16
		pcmData       []byte
		haveData      bool
	)

	for {
		var chunkHeader [8]byte
		n, err := io.ReadFull(r, chunkHeader[:])
		if err == io.EOF || (err == io.ErrUnexpectedEOF && n == 0) {
			break
		}
		if err != nil {
			return nil, ErrInvalidData
		}
		chunkID := string(chunkHeader[0:4])
		chunkSize := binary.LittleEndian.Uint32(chunkHeader[4:8])

		switch chunkID {
		case "fmt ":
			body := make([]byte, chunkSize)
			if _, err := io.ReadFull(r, body); err != nil || len(body) < 16 {
				return nil, ErrInvalidData
			}
			audioFormat = binary.LittleEndian.Uint16(body[0:2])
			channels = binary.LittleEndian.Uint16(body[2:4])
			sampleRate = binary.LittleEndian.Uint32(body[4:8])
			bitsPerSample = binary.LittleEndian.Uint16(body[14:16])
			haveFmt = true
		case "data":
			body := make([]byte, chunkSize)
			if _, err := io.ReadFull(r, body); err != nil {
				return nil, ErrInvalidData
			}
			pcmData = body
			haveData = true
		default:
			if _, err := io.CopyN(io.Discard, r, int64(chunkSize)); err != nil {
				return nil, ErrInvalidData
			}
		}
		if chunkSize%2 == 1 {
			var pad [1]byte
			io.ReadFull(r, pad[:])
		}
	}

	if !haveFmt || !haveData {
		return nil, ErrInvalidData
	}
	if audioFormat != formatTagPCM && audioFormat != formatTagFloat {
		return nil, ErrInvalidData
	}
	if channels == 0 || channels > 8 {
		return nil, ErrInvalidData
	}

	samples, err := decodeSamples(pcmData, audioFormat, bitsPerSample)
	if err != nil {
		return nil, err
	}

	return &Decoded{
		Samples:      samples,
		ChannelCount: int(channels),
		SampleRate:   int(sampleRate),
		BitDepth:     int(bitsPerSample),
		FormatTag:    int(audioFormat),
	}, nil
}

func decodeSamples(data []byte, formatTag uint16, bitsPerSample uint16) ([]float32, error) {
	switch {
	case formatTag == formatTagFloat && bitsPerSample == 32:
		n := len(data) / 4
		out := make([]float32, n)
		for i := 0; i < n; i++ {
			bits := binary.LittleEndian.Uint32(data[i*4 : i*4+4])
			out[i] = math.Float32frombits(bits)
		}
		return out, nil
	case formatTag == formatTagPCM && bitsPerSample == 16:
		n := len(data) / 2
		out := make([]float32, n)
		for i := 0; i < n; i++ {
			v := int16(binary.LittleEndian.Uint16(data[i*2 : i*2+2]))
			out[i] = float32(v) / 32768.0
		}
		return out, nil
	case formatTag == formatTagPCM && bitsPerSample == 24:
		n := len(data) / 3
		out := make([]float32, n)
		for i := 0; i < n; i++ {
			b0, b1, b2 := data[i*3], data[i*3+1], data[i*3+2]
			raw := int32(b0) | int32(b1)<<8 | int32(b2)<<16
			if raw&0x800000 != 0 {
				raw |= ^int32(0xFFFFFF)
			}
			out[i] = float32(raw) / 8388608.0
		}
		return out, nil
	case formatTag == formatTagPCM && bitsPerSample == 32:
		n := len(data) / 4
		out := make([]float32, n)
		for i := 0; i < n; i++ {
			v := int32(binary.LittleEndian.Uint32(data[i*4 : i*4+4]))
			out[i] = float32(v) / 2147483648.0
		}
		return out, nil
	default:
		return nil, ErrInvalidData
	}
}
