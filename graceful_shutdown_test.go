package main

import (
	"os"
	"os/exec"
	"syscall"
	"testing"
	"time"
)

// These tests exercise the built binary; they are skipped when it has not
// been compiled yet.
func requireBinary(t *testing.T) {
	if _, err := os.Stat("./mailcast"); err != nil {
		t.Skip("mailcast binary not built, skipping shutdown test")
	}
}

func TestGracefulShutdown(t *testing.T) {
	requireBinary(t)

	cmd := exec.Command("./mailcast")

	err := cmd.Start()
	if err != nil {
		t.Fatalf("Failed to start mailcast: %v", err)
	}

	// Give it a moment to start
	time.Sleep(2 * time.Second)

	// Send SIGTERM
	err = cmd.Process.Signal(syscall.SIGTERM)
	if err != nil {
		t.Fatalf("Failed to send SIGTERM: %v", err)
	}

	// Wait for process to exit with timeout
	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Process exited with error: %v", err)
		} else {
			t.Log("Process exited gracefully")
		}
	case <-time.After(35 * time.Second):
		cmd.Process.Kill()
		t.Error("Process did not exit within 35 seconds")
	}
}

func TestGracefulShutdownSIGINT(t *testing.T) {
	requireBinary(t)

	cmd := exec.Command("./mailcast")

	err := cmd.Start()
	if err != nil {
		t.Fatalf("Failed to start mailcast: %v", err)
	}

	// Give it a moment to start
	time.Sleep(2 * time.Second)

	// Send SIGINT (Ctrl+C)
	err = cmd.Process.Signal(syscall.SIGINT)
	if err != nil {
		t.Fatalf("Failed to send SIGINT: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Process exited with error: %v", err)
		} else {
			t.Log("Process exited gracefully on SIGINT")
		}
	case <-time.After(35 * time.Second):
		cmd.Process.Kill()
		t.Error("Process did not exit within 35 seconds on SIGINT")
	}
}
