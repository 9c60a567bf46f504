// dawrender loads one or more WAV files onto tracks of a Session and
// renders the mix offline to a WAV file, without going through a
// hardware audio backend.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/kjthorne/dawcore"
)

const renderBufferFrames = 2048

func main() {
	log.SetFlags(0)
	log.SetPrefix("dawrender: ")

	wavOut := flag.String("wav", "", "output WAV file path")
	hz := flag.Int("hz", 48000, "sample rate")
	seconds := flag.Float64("seconds", 0, "render length in seconds (0 = until every clip has played)")
	flag.Parse()

	if *wavOut == "" {
		log.Fatal("missing -wav output path")
	}
	paths := flag.Args()
	if len(paths) == 0 {
		log.Fatal("usage: dawrender -wav out.wav file.wav [file.wav ...]")
	}

	session, err := dawcore.NewSession(dawcore.SessionOptions{
		SampleRate:          *hz,
		ChannelCount:        2,
		Tempo:               120,
		TimeSignature:       dawcore.TimeSignature{Numerator: 4, Denominator: 4},
		TicksPerQuarterNote: 480,
		MaxExpectedFrames:   renderBufferFrames,
		EventBacklog:        64,
	})
	if err != nil {
		log.Fatal(err)
	}

	var lastEnd int64
	for _, path := range paths {
		track := session.NewTrack(path)
		clip, err := dawcore.ImportAudioClipFromWAVFile(path, session.Events)
		if err != nil {
			log.Fatalf("importing %s: %v", path, err)
		}
		if err := track.AddClip(clip); err != nil {
			log.Fatalf("adding clip for %s: %v", path, err)
		}
		session.Mixer.AddTrack(track)
		if end := clip.EndPosition(); end > lastEnd {
			lastEnd = end
		}
	}

	totalFrames := lastEnd
	if *seconds > 0 {
		totalFrames = session.Clock.SecondsToSamples(*seconds)
	}

	session.Transport.Play()

	out, err := os.Create(*wavOut)
	if err != nil {
		log.Fatal(err)
	}
	defer out.Close()

	mixed := make([]float32, 0, totalFrames*2)
	buf := make([]float32, renderBufferFrames*2)

	var rendered int64
	for rendered < totalFrames {
		frames := renderBufferFrames
		if remaining := totalFrames - rendered; int64(frames) > remaining {
			frames = int(remaining)
		}
		window := buf[:frames*2]
		if err := session.RenderCallback(window, frames); err != nil {
			log.Fatal(err)
		}
		mixed = append(mixed, window...)
		rendered += int64(frames)
	}

	if err := dawcore.ExportWAV(out, mixed, 2, *hz); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("rendered %d frames to %s\n", totalFrames, *wavOut)
}
