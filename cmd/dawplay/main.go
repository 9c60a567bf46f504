// dawplay is an interactive terminal player that loads one or more WAV
// files onto tracks of a Session and drives playback through a
// PortAudio duplex stream, with keyboard transport control.
package main

import (
	"flag"
	"log"
	"os"

	"github.com/kjthorne/dawcore"
)

var (
	flagHz    = flag.Int("hz", 48000, "sample rate")
	flagBufSz = flag.Int("buffer", 512, "frames per audio callback")
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("dawplay: ")
	flag.Parse()

	paths := flag.Args()
	if len(paths) == 0 {
		log.Fatal("usage: dawplay [-hz N] [-buffer N] file.wav [file.wav ...]")
	}

	session, err := dawcore.NewSession(dawcore.SessionOptions{
		SampleRate:          *flagHz,
		ChannelCount:        2,
		Tempo:               120,
		TimeSignature:       dawcore.TimeSignature{Numerator: 4, Denominator: 4},
		TicksPerQuarterNote: 480,
		MaxExpectedFrames:   *flagBufSz * 4,
		EventBacklog:        64,
	})
	if err != nil {
		log.Fatal(err)
	}

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
	}

	player := NewAudioPlayer(session, *flagBufSz)
	if err := player.Run(); err != nil {
		log.Fatal(err)
	}
	os.Exit(0)
}
