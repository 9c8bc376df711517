package service

import (
	"os"
	"runtime"
	"syscall"
	"time"

	"github.com/pasarfleet/p-ui/logger"
)

// PanelService restarts the panel process itself. The main loop treats
// SIGHUP as a full reload, so a restart is just a delayed signal to our
// own pid; the delay lets the API response reach the caller first.
type PanelService struct {
}

func (s *PanelService) RestartPanel(delay time.Duration) error {
	proc, err := os.FindProcess(os.Getpid())
	if err != nil {
		return err
	}

	go func() {
		time.Sleep(delay)

		var sigErr error
		if runtime.GOOS == "windows" {
			sigErr = proc.Kill()
		} else {
			sigErr = proc.Signal(syscall.SIGHUP)
		}
		if sigErr != nil {
			logger.Error("panel restart signal failed: ", sigErr)
		}
	}()

	return nil
}
