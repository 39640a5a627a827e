// Package ui is a desktop bench window for the clock
package ui

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
	"github.com/calvinmclean/rackclock/host"
)

// maxLogLines keeps the log label from growing without bound
const maxLogLines = 500

func createSlider(labelText string, maxValue float64, onJog func(int)) (*fyne.Container, *widget.Slider) {
	valueLabel := widget.NewLabel("0")

	slider := widget.NewSlider(0, maxValue)
	slider.Step = 1
	slider.OnChanged = func(value float64) {
		valueLabel.SetText(fmt.Sprintf("%.0f", value))
	}

	jogEntry := widget.NewEntry()
	jogEntry.SetPlaceHolder("steps")
	jogEntry.OnSubmitted = func(s string) {
		jogEntry.SetText("")

		steps, err := strconv.Atoi(s)
		if err != nil || steps == 0 {
			fmt.Println("Invalid input. Please enter a non-zero number of steps.")
			return
		}
		onJog(steps)
	}

	jogButton := widget.NewButton("Jog", func() {
		jogEntry.OnSubmitted(jogEntry.Text)
	})

	container := container.NewVBox(
		container.NewGridWithColumns(3,
			widget.NewLabel(labelText),
			valueLabel,
			container.NewHBox(jogEntry, jogButton),
		),
		slider,
	)

	return container, slider
}

// ClockUI shows controls for the clock and the firmware output. It is an io.Writer so firmware
// output can be copied into its log
type ClockUI struct {
	app fyne.App

	logMtx     sync.Mutex
	logLines   []string
	logContent *widget.Label
}

func NewClockUI() *ClockUI {
	return &ClockUI{
		app:        app.New(),
		logContent: widget.NewLabel(""),
	}
}

func (ui *ClockUI) Write(p []byte) (int, error) {
	ui.logMtx.Lock()
	lines := strings.Split(strings.TrimRight(string(p), "\r\n"), "\n")
	for _, l := range lines {
		ui.logLines = append(ui.logLines, strings.TrimRight(l, "\r"))
	}
	if len(ui.logLines) > maxLogLines {
		ui.logLines = ui.logLines[len(ui.logLines)-maxLogLines:]
	}
	text := strings.Join(ui.logLines, "\n")
	ui.logMtx.Unlock()

	fyne.Do(func() {
		ui.logContent.SetText(text)
	})

	return len(p), nil
}

func (ui *ClockUI) createLogAccordion() *widget.Accordion {
	logScroll := container.NewVScroll(ui.logContent)
	logScroll.SetMinSize(fyne.NewSize(300, 150))

	return widget.NewAccordion(
		widget.NewAccordionItem("Logs", logScroll),
	)
}

// Run shows the window until it is closed or the context is done. When cfg has no serial port,
// the config window is shown first. connect starts the host controller and returns where console
// commands are written
func (ui *ClockUI) Run(ctx context.Context, cfg *host.Config, connect func(host.Config) (io.Writer, error)) {
	start := func() {
		w, err := connect(*cfg)
		if err != nil {
			window := ui.app.NewWindow("Rack Clock")
			window.Show()
			showError(ui.app, window, err)
			return
		}
		ui.showMain(w)
	}

	if cfg.SerialPort == "" {
		cw := NewConfigWindow(ui.app)
		cw.OnSubmit = start
		cw.Show(cfg)
	} else {
		start()
	}

	go func() {
		<-ctx.Done()
		fyne.Do(func() {
			ui.app.Quit()
		})
	}()

	ui.app.Run()
}

func (ui *ClockUI) showMain(w io.Writer) {
	window := ui.app.NewWindow("Rack Clock")

	lastSetTimer := newTimer()
	lastSetTimer.Go()

	c := &controllerWrapper{writer: w, lastSetTimer: lastSetTimer}

	hourContainer, hourSlider := createSlider("Hour", 23, func(steps int) {
		c.Jog("hour", steps)
	})
	minuteContainer, minuteSlider := createSlider("Minute", 59, func(steps int) {
		c.Jog("minute", steps)
	})

	setTime := func(float64) {
		c.SetTime(hourSlider.Value, minuteSlider.Value)
	}
	hourSlider.OnChangeEnded = setTime
	minuteSlider.OnChangeEnded = setTime

	buttons := container.NewGridWithColumns(5,
		widget.NewButton("Set", func() { setTime(0) }),
		widget.NewButton("Home", func() { c.Run("home") }),
		widget.NewButton("Sync", c.Sync),
		widget.NewButton("Debug", func() { c.Run("debug") }),
		widget.NewButton("Verbose", func() { c.Run("verbose") }),
	)

	contentContainer := container.NewVBox(
		container.NewHBox(
			widget.NewLabel("Since last set:"),
			layout.NewSpacer(),
			container.NewPadded(lastSetTimer.text),
		),
		hourContainer,
		minuteContainer,
		buttons,
		ui.createLogAccordion(),
	)

	window.SetOnClosed(func() {
		lastSetTimer.Stop()
		ui.app.Quit()
	})

	window.SetContent(contentContainer)
	window.Resize(fyne.NewSize(400, 300))
	window.Show()
}
