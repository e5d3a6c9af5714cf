package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"symbex/internal/driver"
	"symbex/internal/ui"
)

// uiMode is the value of --ui. It implements pflag.Value so a bad value is
// rejected while flags are parsed.
type uiMode string

const (
	uiModeAuto uiMode = "auto"
	uiModeOn   uiMode = "on"
	uiModeOff  uiMode = "off"
)

func (m *uiMode) String() string {
	if *m == "" {
		return string(uiModeAuto)
	}
	return string(*m)
}

func (m *uiMode) Set(value string) error {
	switch v := uiMode(strings.ToLower(strings.TrimSpace(value))); v {
	case uiModeAuto, uiModeOn, uiModeOff:
		*m = v
		return nil
	}
	return fmt.Errorf("expected auto|on|off")
}

func (*uiMode) Type() string { return "mode" }

// drawsOn reports whether the progress view should take over out.
func (m uiMode) drawsOn(out *os.File) bool {
	switch m {
	case uiModeOn:
		return true
	case uiModeOff:
		return false
	}
	return isTerminal(out)
}

// specializeWithUI runs the driver in the background and draws its
// progress until the last input is finished. The driver's error wins over
// a UI error.
func specializeWithUI(ctx context.Context, files []string, opts driver.Options) ([]*driver.Result, error) {
	events := make(chan driver.Event, 256)
	var (
		results []*driver.Result
		runErr  error
	)
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		defer close(events)
		opts.Progress = driver.ChannelSink{Ch: events}
		results, runErr = driver.SpecializeFiles(ctx, files, opts)
	}()

	_, uiErr := tea.NewProgram(ui.NewProgressModel("specializing", files, events), tea.WithOutput(os.Stdout)).Run()
	<-finished
	if runErr != nil {
		return results, runErr
	}
	return results, uiErr
}
