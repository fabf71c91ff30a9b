//go:build windows
// +build windows

package daemon

import (
	_ "embed"
	"fmt"
	"syscall"
	"unsafe"

	"fyne.io/systray"
	"go.uber.org/zap"
)

//go:embed icon.ico
var trayIcon []byte

var (
	user32      = syscall.NewLazyDLL("user32.dll")
	messageBoxW = user32.NewProc("MessageBoxW")
)

const (
	MB_OK              = 0x00000000
	MB_ICONINFORMATION = 0x00000040
)

// TrayApp represents system tray application
type TrayApp struct {
	daemon *Daemon
	logger *zap.Logger
	quit   chan struct{}
}

// NewTrayApp creates a new system tray application
func NewTrayApp(daemon *Daemon, logger *zap.Logger) (*TrayApp, error) {
	return &TrayApp{
		daemon: daemon,
		logger: logger,
		quit:   make(chan struct{}),
	}, nil
}

// Run starts the system tray application (blocks until Quit)
func (t *TrayApp) Run() {
	systray.Run(t.onReady, t.onExit)
}

func (t *TrayApp) onReady() {
	systray.SetIcon(trayIcon)
	systray.SetTitle("BP")
	systray.SetTooltip("Budget Planner")

	mGenerate := systray.AddMenuItem("Generate now", "Plan forecasted salary payments now")
	systray.AddSeparator()
	mNext := systray.AddMenuItem("Next payment", "Show the next forecasted payment")
	systray.AddSeparator()
	mQuit := systray.AddMenuItem("Quit", "Exit the application")

	go t.daemon.runScheduledLogic()

	go func() {
		for {
			select {
			case <-mGenerate.ClickedCh:
				t.logger.Info("Generate now clicked from tray")
				go t.daemon.SyncNow()
			case <-mNext.ClickedCh:
				t.logger.Info("Next payment clicked from tray")
				t.showNextPayment()
			case <-mQuit.ClickedCh:
				t.logger.Info("Quit clicked from tray")
				t.daemon.Stop()
				systray.Quit()
				return
			case <-t.quit:
				systray.Quit()
				return
			}
		}
	}()
}

func (t *TrayApp) onExit() {
	t.logger.Info("System tray exited")
}

// Stop stops the system tray application
func (t *TrayApp) Stop() {
	select {
	case <-t.quit:
	default:
		close(t.quit)
	}
}

// ShowNotification shows a notification (Windows only)
func (t *TrayApp) ShowNotification(title, message string) {
	// fyne.io/systray has no balloon notifications
	t.logger.Info("Notification", zap.String("title", title), zap.String("message", message))
	systray.SetTooltip(fmt.Sprintf("Budget Planner\n%s: %s", title, message))
}

func (t *TrayApp) showNextPayment() {
	status := t.daemon.GetStatus()
	t.logger.Info("Current status", zap.Any("status", status))

	var message string
	if p, ok := status["next_payment"].(map[string]interface{}); ok {
		message = fmt.Sprintf(
			"%v: %v ₽ on %v\nNext generation: %v",
			p["kind"],
			p["amount"],
			p["date"],
			status["next_run"],
		)
		systray.SetTooltip(message)
	} else {
		message = "No upcoming payment"
	}

	showMessageBox("Budget Planner", message)
}

func showMessageBox(title, message string) {
	titlePtr, _ := syscall.UTF16PtrFromString(title)
	messagePtr, _ := syscall.UTF16PtrFromString(message)
	messageBoxW.Call(
		0,
		uintptr(unsafe.Pointer(messagePtr)),
		uintptr(unsafe.Pointer(titlePtr)),
		uintptr(MB_OK|MB_ICONINFORMATION),
	)
}
