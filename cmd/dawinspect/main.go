// dawinspect loads one or more WAV files onto tracks of a Session and
// dumps the resulting track/clip layout and clock state to stdout,
// without playing or rendering anything.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/kjthorne/dawcore"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("dawinspect: ")

	if len(os.Args) <= 1 {
		log.Fatal("missing WAV filename(s)")
	}

	session, err := dawcore.NewSession(dawcore.SessionOptions{
		SampleRate:          48000,
		ChannelCount:        2,
		Tempo:               120,
		TimeSignature:       dawcore.TimeSignature{Numerator: 4, Denominator: 4},
		TicksPerQuarterNote: 480,
		MaxExpectedFrames:   2048,
		EventBacklog:        1,
	})
	if err != nil {
		log.Fatal(err)
	}

	for _, path := range os.Args[1:] {
		track := session.NewTrack(path)
		clip, err := dawcore.ImportAudioClipFromWAVFile(path, nil)
		if err != nil {
			log.Fatal(err)
		}
		if err := track.AddClip(clip); err != nil {
			log.Fatal(err)
		}
		session.Mixer.AddTrack(track)
	}

	fmt.Printf("sample_rate=%d channels=%d tempo=%.2f\n",
		session.Mixer.SampleRate(), session.Mixer.ChannelCount(), session.Clock.Tempo())

	for i, t := range session.Mixer.GetTracks() {
		fmt.Printf("track[%d] %q volume=%.2f pan=%.2f\n", i, t.Name, t.Volume(), t.Pan())
		for j, c := range t.Clips() {
			fmt.Printf("  clip[%d] %q start=%d length=%d channels=%d sample_rate=%d\n",
				j, c.Name, c.StartPosition, c.Length, c.Channels(), c.SampleRate())
		}
	}
}
