package logrich

import (
	"context"
	"testing"
)

func TestSerialInvalidPortReturnsError(t *testing.T) {
	sb := NewSerialBackend(SerialOptions{Port: "COM_DOES_NOT_EXIST_1234", Baud: DefaultSerialBaud})
	defer sb.Close()

	err := sb.Write(context.Background(), LogEvent{Message: "hello"})
	if err == nil {
		t.Fatal("Write with an invalid port should fail")
	}
}

func TestSerialBackendDefaultsBaud(t *testing.T) {
	sb := NewSerialBackend(SerialOptions{Port: "COM_DOES_NOT_EXIST_1234"})
	if sb.opts.Baud != DefaultSerialBaud {
		t.Errorf("Baud = %d, want default %d", sb.opts.Baud, DefaultSerialBaud)
	}
}

func TestSerialBackendCloseWithoutOpenIsNoop(t *testing.T) {
	sb := NewSerialBackend(SerialOptions{Port: "COM_DOES_NOT_EXIST_1234"})
	if err := sb.Close(); err != nil {
		t.Errorf("Close on a never-opened backend = %v, want nil", err)
	}
}

func TestSerialBackendDefaultThreshold(t *testing.T) {
	sb := NewSerialBackend(SerialOptions{Port: "COM_DOES_NOT_EXIST_1234"})
	if got := sb.Threshold(); got != DebugLevel {
		t.Errorf("default Threshold = %v, want DebugLevel", got)
	}
}
