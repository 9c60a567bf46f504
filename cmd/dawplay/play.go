package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"atomicgo.dev/keyboard"
	"atomicgo.dev/keyboard/keys"
	"github.com/fatih/color"
	"github.com/gordonklaus/portaudio"

	"github.com/kjthorne/dawcore"
)

var (
	white  = color.New(color.FgWhite).SprintfFunc()
	cyan   = color.New(color.FgCyan).SprintfFunc()
	green  = color.New(color.FgGreen).SprintfFunc()
	yellow = color.New(color.FgYellow).SprintfFunc()
)

const (
	escape     = "\x1b["
	hideCursor = escape + "?25l"
	showCursor = escape + "?25h"
)

// AudioPlayer drives a Session through a PortAudio duplex stream and
// renders a one-line transport/meter readout, with keyboard-driven
// transport control.
type AudioPlayer struct {
	session     *dawcore.Session
	framesPerCb int
	stream      *portaudio.Stream

	selectedTrack int

	ctx            context.Context
	cancelFn       context.CancelFunc
	wg             sync.WaitGroup
	stopOnce       sync.Once
	terminated     bool
	keyboardDoneCh chan struct{}
}

// NewAudioPlayer creates an AudioPlayer for session, with framesPerCb
// frames requested per PortAudio callback.
func NewAudioPlayer(session *dawcore.Session, framesPerCb int) *AudioPlayer {
	ctx, cancel := context.WithCancel(context.Background())
	return &AudioPlayer{
		session:        session,
		framesPerCb:    framesPerCb,
		ctx:            ctx,
		cancelFn:       cancel,
		keyboardDoneCh: make(chan struct{}),
	}
}

// Run initializes PortAudio, starts the stream, installs signal and
// keyboard handlers, and blocks rendering a transport readout until
// the user quits or the process receives SIGINT.
func (ap *AudioPlayer) Run() error {
	if err := portaudio.Initialize(); err != nil {
		return err
	}
	if err := ap.setupAudioStream(); err != nil {
		return err
	}

	ap.setupSignalHandlers()
	ap.setupKeyboardHandlers()

	ap.session.Transport.Play()

	fmt.Print(hideCursor)
	for {
		select {
		case <-ap.ctx.Done():
			fmt.Print(showCursor)
			ap.wg.Wait()
			return nil
		case ev := <-ap.session.Events.Events():
			ap.renderEvent(ev)
		}
	}
}

func (ap *AudioPlayer) setupAudioStream() error {
	stream, err := portaudio.OpenDefaultStream(
		0, ap.session.Mixer.ChannelCount(),
		float64(ap.session.Mixer.SampleRate()),
		ap.framesPerCb,
		ap.streamCallback,
	)
	if err != nil {
		return err
	}
	ap.stream = stream
	return stream.Start()
}

// streamCallback is invoked by PortAudio on its own real-time thread.
// It implements the hardware callback contract verbatim via
// Session.RenderCallback: render the buffer, then advance the
// transport only if it was playing.
func (ap *AudioPlayer) streamCallback(out []float32) {
	if err := ap.session.RenderCallback(out, len(out)/ap.session.Mixer.ChannelCount()); err != nil {
		dawcore.ClearBuffer(out)
	}
}

func (ap *AudioPlayer) setupSignalHandlers() {
	sigch := make(chan os.Signal, 1)
	signal.Notify(sigch, syscall.SIGINT)
	ap.wg.Add(1)
	go func() {
		defer ap.wg.Done()
		select {
		case <-ap.ctx.Done():
		case <-sigch:
			ap.Stop()
		}
	}()
}

func (ap *AudioPlayer) setupKeyboardHandlers() {
	ap.wg.Add(1)
	go func() {
		defer ap.wg.Done()
		keyboard.Listen(func(key keys.Key) (stop bool, err error) {
			if key.Code == keys.CtrlC || key.Code == keys.Escape {
				ap.Stop()
				return true, nil
			}
			ap.handleKeyPress(key)
			return false, nil
		})
		close(ap.keyboardDoneCh)
	}()
}

func (ap *AudioPlayer) handleKeyPress(key keys.Key) {
	tracks := ap.session.Mixer.GetTracks()
	switch key.Code {
	case keys.Space:
		if ap.session.Transport.State() == dawcore.Playing {
			ap.session.Transport.Pause()
		} else {
			ap.session.Transport.Play()
		}
	case keys.Left:
		if ap.selectedTrack > 0 {
			ap.selectedTrack--
		}
	case keys.Right:
		if ap.selectedTrack < len(tracks)-1 {
			ap.selectedTrack++
		}
	case keys.RuneKey:
		if len(key.Runes) == 0 || ap.selectedTrack >= len(tracks) {
			return
		}
		t := tracks[ap.selectedTrack]
		switch key.Runes[0] {
		case 's':
			t.SetMuted(false)
			t.SetSolo(!t.IsSolo())
		case 'm':
			t.SetMuted(!t.IsMuted())
		case '[':
			_ = t.SetPan(clampPan(t.Pan() - 0.1))
		case ']':
			_ = t.SetPan(clampPan(t.Pan() + 0.1))
		}
	}
}

func clampPan(p float64) float64 {
	if p < -1 {
		return -1
	}
	if p > 1 {
		return 1
	}
	return p
}

// Stop performs a clean shutdown: stop and close the audio stream,
// terminate PortAudio, cancel the render loop.
func (ap *AudioPlayer) Stop() {
	ap.stopOnce.Do(func() {
		ap.session.Transport.Stop()
		if ap.stream != nil {
			ap.stream.Stop()
			ap.stream.Close()
		}
		if !ap.terminated {
			portaudio.Terminate()
			ap.terminated = true
		}
		ap.cancelFn()
	})
}

func (ap *AudioPlayer) renderEvent(ev dawcore.Event) {
	if ev.Kind != dawcore.EventTransportPosition || ev.Position == nil {
		return
	}
	p := ev.Position
	fmt.Printf("%s%s %s %s %d:%d.%03d\r",
		escape+"0K",
		white("dawplay"),
		cyan("%s", ap.session.Transport.State()),
		yellow("%.2fs", p.Seconds),
		p.Bar, p.Beat, p.Tick%1000,
	)
}
