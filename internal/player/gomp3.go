package player

import (
	"encoding/binary"
	"errors"
	"io"

	"github.com/gopxl/beep/v2"
	"github.com/llehouerou/go-mp3"
)

// bytesPerFrame is one stereo 16-bit frame as produced by go-mp3.
const bytesPerFrame = 4

// mp3Stream adapts a go-mp3 decoder to beep.StreamSeekCloser.
type mp3Stream struct {
	dec *mp3.Decoder
	src io.Closer
	err error
	buf []byte
}

// decodeGoMP3 decodes MP3 data using the llehouerou/go-mp3 library.
func decodeGoMP3(src io.ReadSeekCloser) (beep.StreamSeekCloser, beep.Format, error) {
	dec, err := mp3.NewDecoder(src)
	if err != nil {
		return nil, beep.Format{}, err
	}
	if dec.SampleRate() == 0 {
		return nil, beep.Format{}, errors.New("mp3: invalid sample rate")
	}

	format := beep.Format{
		SampleRate:  beep.SampleRate(dec.SampleRate()),
		NumChannels: 2,
		Precision:   2,
	}
	return &mp3Stream{dec: dec, src: src, buf: make([]byte, 8192)}, format, nil
}

func (s *mp3Stream) Stream(samples [][2]float64) (int, bool) {
	if s.err != nil {
		return 0, false
	}

	want := len(samples) * bytesPerFrame
	if cap(s.buf) < want {
		s.buf = make([]byte, want)
	}
	buf := s.buf[:want]

	read, err := io.ReadFull(s.dec, buf)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		s.err = err
		return 0, false
	}

	frames := read / bytesPerFrame
	for i := range frames {
		off := i * bytesPerFrame
		l := int16(binary.LittleEndian.Uint16(buf[off:]))   //nolint:gosec // audio samples
		r := int16(binary.LittleEndian.Uint16(buf[off+2:])) //nolint:gosec // audio samples
		samples[i] = [2]float64{float64(l) / 32768, float64(r) / 32768}
	}
	return frames, frames > 0
}

func (s *mp3Stream) Err() error { return s.err }

func (s *mp3Stream) Len() int {
	return max(int(s.dec.SampleCount()), 0)
}

func (s *mp3Stream) Position() int {
	return int(s.dec.SamplePosition())
}

func (s *mp3Stream) Seek(p int) error {
	p = min(max(p, 0), s.Len())
	if err := s.dec.SeekToSample(int64(p)); err != nil {
		return err
	}
	s.err = nil
	return nil
}

func (s *mp3Stream) Close() error {
	return s.src.Close()
}
