package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"go-mackie/config"
	"go-mackie/debug"
	"go-mackie/hostlink"
	"go-mackie/midi"
	"go-mackie/surface"
	"go-mackie/theme"
	"go-mackie/tui"
)

const localSession = "local"

var (
	configFile string
	virtual    bool
	headless   bool
)

func init() {
	flag.StringVar(&configFile, "config", "", "Path to configuration file (default ~/.config/go-mackie/config.yaml)")
	flag.BoolVar(&virtual, "virtual", false, "Run without hardware; frames only reach the monitor")
	flag.BoolVar(&headless, "headless", false, "Run without the terminal monitor")
}

func main() {
	flag.Parse()

	if err := run(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	debug.SetLevel(cfg.Logging.Level)
	if err := debug.Enable(cfg.Logging.File); err != nil {
		return fmt.Errorf("debug log: %w", err)
	}
	defer debug.Disable()

	th, err := theme.Load(cfg.Theme.Palette)
	if err != nil {
		return err
	}

	ports, err := unitPorts(cfg)
	if err != nil {
		return err
	}

	// Every unit feeds the mirror, which the monitor draws.
	mirror := midi.NewMirror()
	var devices *midi.DeviceManager
	var units []*midi.PortPair
	if virtual {
		for i, p := range ports {
			units = append(units, midi.NewPortPair(i, p.Role, p.Name, mirror.Output(i, p.Role)))
		}
	} else {
		devices = midi.NewDeviceManager(ports, mirror)
		units = devices.Units()
	}

	opts, err := surface.OptionsFromConfig(cfg)
	if err != nil {
		return err
	}
	desk, err := surface.NewDesk(units, opts)
	if err != nil {
		return err
	}

	host, err := connectHost(cfg)
	if err != nil {
		return err
	}
	defer host.Close()

	manager := surface.NewManager(desk, host, devices, nil, cfg.Timer.Tick)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer cancel()
	go manager.Run(ctx)

	debug.Logger().Info("desk ready", "units", len(units), "params", len(desk.Params()), "virtual", virtual)

	if headless {
		<-ctx.Done()
		return nil
	}

	m := tui.NewModel(manager, mirror, th)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

func loadConfig() (*config.Config, error) {
	if configFile != "" {
		return config.LoadFile(configFile)
	}
	return config.Load()
}

func unitPorts(cfg *config.Config) ([]midi.UnitPorts, error) {
	ports := make([]midi.UnitPorts, 0, len(cfg.Units))
	for _, u := range cfg.Units {
		role, err := midi.ParseRole(u.Role)
		if err != nil {
			return nil, fmt.Errorf("unit %s: %w", u.Name, err)
		}
		ports = append(ports, midi.UnitPorts{
			Role:   role,
			Name:   u.Name,
			Input:  u.Input,
			Output: u.Output,
		})
	}
	return ports, nil
}

// connectHost returns the MQTT link. With MQTT disabled it returns a
// loopback host that echoes surface moves back and already holds an
// active local session, so the desk works on its own.
func connectHost(cfg *config.Config) (hostlink.Host, error) {
	if !cfg.MQTT.Enabled {
		debug.Logger().Info("mqtt disabled, using loopback host")
		lb := hostlink.NewLoopback(256)
		lb.Echo = true
		lb.Keep = 1024
		lb.Push(hostlink.Update{Session: localSession, Kind: hostlink.KindActivate})
		return lb, nil
	}
	return hostlink.Connect(cfg.MQTT)
}
