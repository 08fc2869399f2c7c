package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"go-mackie/display"
	"go-mackie/encoder"
	mackie "go-mackie/midi"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	match := "mackie"
	if len(os.Args) > 2 {
		match = os.Args[2]
	}

	switch os.Args[1] {
	case "list":
		listPorts()
	case "ping":
		withUnit(match, ping)
	case "sweep":
		withUnit(match, sweep)
	case "rings":
		withUnit(match, rings)
	case "text":
		withUnit(match, text)
	case "segments":
		withUnit(match, segments)
	case "monitor":
		withUnit(match, monitor)
	case "poll":
		pollDevices()
	default:
		usage()
	}
}

func usage() {
	fmt.Println("MCU Test Scripts")
	fmt.Println("")
	fmt.Println("Usage: miditest <command> [port match]")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  list      - List all MIDI ports")
	fmt.Println("  ping      - Send a device query and print the reply")
	fmt.Println("  sweep     - Move every fader bottom to top")
	fmt.Println("  rings     - Step every V-Pot ring through each mode")
	fmt.Println("  text      - Write test text to the scribble strips")
	fmt.Println("  segments  - Count on the timecode display")
	fmt.Println("  monitor   - Print incoming messages")
	fmt.Println("  poll      - Poll for device changes")
}

func listPorts() {
	fmt.Println("=== MIDI Input Ports ===")
	fmt.Println("(waiting up to 3 seconds...)")

	type result struct {
		ins  []drivers.In
		outs []drivers.Out
	}
	ch := make(chan result, 1)
	go func() {
		ins := midi.GetInPorts()
		outs := midi.GetOutPorts()
		ch <- result{ins: ins, outs: outs}
	}()

	select {
	case r := <-ch:
		for i, p := range r.ins {
			fmt.Printf("  %d: %s\n", i, p.String())
		}
		fmt.Println("\n=== MIDI Output Ports ===")
		for i, p := range r.outs {
			fmt.Printf("  %d: %s\n", i, p.String())
		}
	case <-time.After(3 * time.Second):
		fmt.Println("\nTIMEOUT! The MIDI driver is hung.")
	}
}

func findPorts(match string) (drivers.In, drivers.Out) {
	match = strings.ToLower(match)
	var in drivers.In
	var out drivers.Out
	for _, p := range midi.GetInPorts() {
		if strings.Contains(strings.ToLower(p.String()), match) {
			in = p
			break
		}
	}
	for _, p := range midi.GetOutPorts() {
		if strings.Contains(strings.ToLower(p.String()), match) {
			out = p
			break
		}
	}
	return in, out
}

// withUnit attaches a primary unit on the first ports matching match and
// runs fn with it.
func withUnit(match string, fn func(u *mackie.PortPair, in <-chan midi.Message)) {
	inPort, outPort := findPorts(match)
	if inPort == nil || outPort == nil {
		fmt.Printf("No ports matching %q\n", match)
		return
	}
	fmt.Printf("Using input: %s\n", inPort.String())
	fmt.Printf("Using output: %s\n", outPort.String())

	incoming := make(chan midi.Message, 64)
	u := mackie.NewPortPair(0, mackie.Primary, match, nil)
	err := u.Attach(inPort, outPort, func(_ *mackie.PortPair, msg midi.Message) {
		select {
		case incoming <- msg:
		default:
		}
	})
	if err != nil {
		fmt.Printf("Error opening ports: %v\n", err)
		return
	}
	defer u.Close()

	fn(u, incoming)
}

func ping(u *mackie.PortPair, in <-chan midi.Message) {
	fmt.Println("Sending device query...")
	u.SendSysex(nil, []byte{0x00})

	timeout := time.After(2 * time.Second)
	for {
		select {
		case msg := <-in:
			var data []byte
			if msg.GetSysEx(&data) {
				fmt.Printf("Reply: % X\n", data)
				return
			}
		case <-timeout:
			fmt.Println("No reply")
			return
		}
	}
}

func sweep(u *mackie.PortPair, _ <-chan midi.Message) {
	fmt.Println("Sweeping faders...")
	for step := 0; step <= 20; step++ {
		v := float64(step) / 20
		for ch := uint8(0); ch <= mackie.MasterChannel; ch++ {
			u.SendPitchBend(nil, ch, v)
		}
		time.Sleep(50 * time.Millisecond)
	}
	time.Sleep(500 * time.Millisecond)
	for ch := uint8(0); ch <= mackie.MasterChannel; ch++ {
		u.SendPitchBend(nil, ch, 0)
	}
	fmt.Println("Done!")
}

func rings(u *mackie.PortPair, _ <-chan midi.Message) {
	for _, mode := range []encoder.Mode{encoder.SingleDot, encoder.BoostCut, encoder.Wrap, encoder.Spread} {
		fmt.Printf("Mode: %s\n", mode)
		for step := 0; step <= 10; step++ {
			b := encoder.RingByte(mode, float64(step)/10)
			for ch := uint8(0); ch < mackie.ChannelsPerUnit; ch++ {
				u.SendControlChange(nil, mackie.CCRing+ch, b)
			}
			time.Sleep(80 * time.Millisecond)
		}
	}
	for ch := uint8(0); ch < mackie.ChannelsPerUnit; ch++ {
		u.SendControlChange(nil, mackie.CCRing+ch, 0)
	}
	fmt.Println("Done!")
}

func text(u *mackie.PortPair, _ <-chan midi.Message) {
	fmt.Println("Writing strip text...")
	for ch := 0; ch < mackie.ChannelsPerUnit; ch++ {
		top := display.DefaultShaper.Shape(fmt.Sprintf("Ch %d", ch+1))
		bottom := display.DefaultShaper.Shape("Pan")
		for row, s := range []string{top, bottom} {
			body := append([]byte{mackie.SysExStrip, byte(row*56 + ch*mackie.StripWidth)}, s...)
			u.SendSysex(nil, body)
		}
	}

	fmt.Println("Press Enter to clear...")
	fmt.Scanln()

	blank := strings.Repeat(" ", 56)
	for row := 0; row < 2; row++ {
		u.SendSysex(nil, append([]byte{mackie.SysExStrip, byte(row * 56)}, blank...))
	}
	fmt.Println("Done!")
}

func segments(u *mackie.PortPair, _ <-chan midi.Message) {
	fmt.Println("Counting on the timecode display...")
	for i := 0; i < 100; i++ {
		s := fmt.Sprintf("%010d", i*1111)
		for cell := 0; cell < display.TimecodeCells; cell++ {
			digit := s[len(s)-1-cell]
			u.SendControlChange(nil, mackie.CCSegment+uint8(cell), display.CellByte(int(digit-'0'), cell == 2))
		}
		time.Sleep(30 * time.Millisecond)
	}
	fmt.Println("Done!")
}

func monitor(_ *mackie.PortPair, in <-chan midi.Message) {
	fmt.Println("Printing incoming messages. Ctrl+C to exit.")
	for msg := range in {
		fmt.Printf("[%s] %s\n", time.Now().Format("15:04:05.000"), msg.String())
	}
}

func pollDevices() {
	fmt.Println("Polling for device changes every 2 seconds...")
	fmt.Println("Connect/disconnect a unit to test. Ctrl+C to exit.")

	lastIn := ""
	lastOut := ""

	for {
		ins := midi.GetInPorts()
		outs := midi.GetOutPorts()

		var inNames, outNames []string
		for _, p := range ins {
			inNames = append(inNames, p.String())
		}
		for _, p := range outs {
			outNames = append(outNames, p.String())
		}

		currentIn := strings.Join(inNames, ",")
		currentOut := strings.Join(outNames, ",")

		if currentIn != lastIn || currentOut != lastOut {
			fmt.Printf("\n[%s] Device change detected!\n", time.Now().Format("15:04:05"))
			fmt.Printf("  Inputs: %v\n", inNames)
			fmt.Printf("  Outputs: %v\n", outNames)

			lastIn = currentIn
			lastOut = currentOut
		}

		time.Sleep(2 * time.Second)
	}
}
