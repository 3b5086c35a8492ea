// Copyright (c) Cutleast
// Use of this source code is governed by the license in the LICENSE file.

package espplugin

import (
	"fmt"
	"io"
)

// TRDTSubrecord is an INFO record's response-data subrecord. Its
// response_id field is what INFO's NAM1 (response text) subrecords are
// indexed against (spec.md §4.3): each TRDT opens a new response, and
// every NAM1 up to the next TRDT belongs to that response_id.
type TRDTSubrecord struct {
	Subrecord
	EmotionType  uint32
	EmotionValue uint32
	Unknown1     int32
	ResponseID   uint8
	Junk1        [3]byte
	SoundFile    string
	UseEmoAnim   uint8
	Junk2        [3]byte
}

func readRaw(r io.Reader, n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTruncatedInput, err)
	}
	return buf, nil
}

func (s *TRDTSubrecord) ParseFrom(r io.Reader, localized bool) error {
	if err := s.parseHeader(r); err != nil {
		return err
	}
	pr := s.payloadReader()

	emotionType, err := ParseInt(pr, UInt32)
	if err != nil {
		return err
	}
	s.EmotionType = uint32(emotionType)

	emotionValue, err := ParseInt(pr, UInt32)
	if err != nil {
		return err
	}
	s.EmotionValue = uint32(emotionValue)

	unknown1, err := ParseInt(pr, Int32)
	if err != nil {
		return err
	}
	s.Unknown1 = int32(unknown1)

	responseID, err := ParseInt(pr, UInt8)
	if err != nil {
		return err
	}
	s.ResponseID = uint8(responseID)

	junk1, err := readRaw(pr, 3)
	if err != nil {
		return err
	}
	copy(s.Junk1[:], junk1)

	soundFile, err := ParseHex(pr, DefaultHexSize)
	if err != nil {
		return err
	}
	s.SoundFile = soundFile

	useEmoAnim, err := ParseInt(pr, UInt8)
	if err != nil {
		return err
	}
	s.UseEmoAnim = uint8(useEmoAnim)

	junk2, err := readRaw(pr, 3)
	if err != nil {
		return err
	}
	copy(s.Junk2[:], junk2)

	return nil
}

func (s *TRDTSubrecord) Dump() []byte {
	data := make([]byte, 0, 24)
	data = append(data, DumpInt(int64(s.EmotionType), UInt32)...)
	data = append(data, DumpInt(int64(s.EmotionValue), UInt32)...)
	data = append(data, DumpInt(int64(s.Unknown1), Int32)...)
	data = append(data, DumpInt(int64(s.ResponseID), UInt8)...)
	data = append(data, s.Junk1[:]...)
	data = append(data, DumpHex(s.SoundFile, DefaultHexSize)...)
	data = append(data, DumpInt(int64(s.UseEmoAnim), UInt8)...)
	data = append(data, s.Junk2[:]...)
	s.Data = data
	return s.Subrecord.Dump()
}
