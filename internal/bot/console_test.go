package bot

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lixing-Zhang/broffee-bot/internal/service"
)

func TestConsole_Run(t *testing.T) {
	in := strings.NewReader("/order espresso 2\n\n/order espresso 3\n/cart\n/end\n/cart\n")
	var out bytes.Buffer

	c := NewConsole(newTestDispatcher(), in, &out, "console")
	require.NoError(t, c.Run(context.Background()))

	want := "2 espresso(s) added to your cart!\n\n" +
		"3 espresso(s) added to your cart!\n\n" +
		"Your cart contains:\nEspresso - 5 - $10.00\n\nTotal: $10.00\n\n" +
		service.EndMessage + "\n\n" +
		service.EmptyCartMessage + "\n\n"
	assert.Equal(t, want, out.String())
}

func TestConsole_StopsOnCancelledContext(t *testing.T) {
	in := strings.NewReader("/menu\n/menu\n")
	var out bytes.Buffer

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewConsole(newTestDispatcher(), in, &out, "console")
	require.NoError(t, c.Run(ctx))
	assert.Empty(t, out.String())
}

func TestConsole_StopsWhileReadBlocks(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- NewConsole(newTestDispatcher(), pr, io.Discard, "console").Run(ctx)
	}()

	_, err := pw.Write([]byte("/menu\n"))
	require.NoError(t, err)

	// no more input arrives, yet cancelling must end the session
	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("console did not stop after cancel")
	}
}

// errReader fails on the first read
type errReader struct{}

func (errReader) Read(p []byte) (int, error) {
	return 0, errors.New("tty gone")
}

func TestConsole_ReportsReadErrors(t *testing.T) {
	err := NewConsole(newTestDispatcher(), errReader{}, io.Discard, "console").Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tty gone")
}
