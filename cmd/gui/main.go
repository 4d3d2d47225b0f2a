package main

import (
	"image/color"
	_ "image/jpeg"
	"log"
	"os"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/Hussein-Mazeh/shroombrella/internal/bio/toggle"
	"github.com/Hussein-Mazeh/shroombrella/internal/config"
	"github.com/Hussein-Mazeh/shroombrella/internal/db"
	"github.com/Hussein-Mazeh/shroombrella/internal/idle"
	"github.com/Hussein-Mazeh/shroombrella/internal/logger"
	"github.com/Hussein-Mazeh/shroombrella/internal/secret"
	"github.com/Hussein-Mazeh/shroombrella/internal/service"
)

var royalBlue = color.NRGBA{R: 18, G: 57, B: 166, A: 255}        // #1239A6 (deep royal)
var royalBlueLight = color.NRGBA{R: 224, G: 233, B: 255, A: 255} // soft tint

const iconPath = "cmd/gui/assets/icon.jpeg"

type accentTheme struct{ fyne.Theme }

func (a accentTheme) Color(n fyne.ThemeColorName, v fyne.ThemeVariant) color.Color {
	switch n {
	case theme.ColorNamePrimary:
		return royalBlue
	case theme.ColorNameFocus:
		return color.NRGBA{R: royalBlue.R, G: royalBlue.G, B: royalBlue.B, A: 200}
	case theme.ColorNameHover:
		return color.NRGBA{R: royalBlue.R, G: royalBlue.G, B: royalBlue.B, A: 30}
	}
	return a.Theme.Color(n, v)
}

// blueHeader creates a royal-blue title bar with white text.
func blueHeader(title string) fyne.CanvasObject {
	bg := canvas.NewRectangle(royalBlue)
	bg.SetMinSize(fyne.NewSize(0, 36))
	t := canvas.NewText(title, color.White)
	t.TextStyle = fyne.TextStyle{Bold: true}
	return container.NewStack(bg, container.NewPadded(t))
}

// sectionCard wraps a header + body with padding and a subtle border.
func sectionCard(title string, body fyne.CanvasObject) *fyne.Container {
	border := canvas.NewRectangle(color.NRGBA{R: 230, G: 230, B: 230, A: 255})
	content := container.NewBorder(
		blueHeader(title), nil, nil, nil,
		container.NewPadded(body),
	)
	return container.NewStack(border, content)
}

// makePrimary makes a button follow the app accent (royal blue).
func makePrimary(btn *widget.Button) *widget.Button {
	btn.Importance = widget.HighImportance
	return btn
}

func main() {
	if err := secret.Harden(); err != nil {
		log.Printf("harden process: %v", err)
	}
	defer secret.Purge()

	cfg, err := config.Load(os.Getenv(config.EnvPrefix + "CONFIG"))
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	lg, err := logger.New("gui", cfg.Log.Level, cfg.Log.File)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	opts := []service.Option{
		service.WithLogger(lg),
		service.WithSessionKeyCache(cfg.CacheSessionKey),
	}
	if cfg.Journal {
		j, err := db.OpenJournal(cfg.JournalPath)
		if err != nil {
			lg.Warn().Err(err).Str("path", cfg.JournalPath).Msg("journal disabled")
		} else {
			defer j.Close()
			opts = append(opts, service.WithRecorder(j))
		}
	}
	if cfg.Biometric {
		opts = append(opts, service.WithUnlockGate(toggle.NewGate()))
	}
	svc := service.New(cfg.Paths(), opts...)

	a := app.New()
	if data, err := os.ReadFile(iconPath); err == nil {
		a.SetIcon(fyne.NewStaticResource("icon.jpeg", data))
	}
	a.Settings().SetTheme(accentTheme{Theme: theme.LightTheme()})

	w := a.NewWindow("Shroombrella")
	if res := a.Icon(); res != nil {
		w.SetIcon(res)
	}
	w.Resize(fyne.NewSize(900, 640))

	u := &ui{
		cfg:  cfg,
		log:  lg,
		svc:  svc,
		w:    w,
		root: container.NewStack(),
	}
	u.idle = idle.New(cfg.AutoLock, func() {
		fyne.Do(func() { u.autoLock() })
	})
	w.SetContent(u.root)
	w.Canvas().SetOnTypedKey(func(*fyne.KeyEvent) { u.idle.Reset() })
	w.SetOnClosed(func() {
		u.lock()
		u.clearClipboard()
	})

	u.showPicker()
	w.ShowAndRun()
}
