package stream_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zhangming/respflow/stream"
)

func TestReadEmitsCommandsInOrder(t *testing.T) {
	input := "*1\r\n$4\r\nping\r\n*2\r\n$4\r\necho\r\n$2\r\nhi\r\n"
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	ch := stream.Read(ctx, strings.NewReader(input))

	payload := <-ch
	require.NoError(t, payload.Err)
	require.NotNil(t, payload.Cmd)
	require.Equal(t, []byte("ping"), payload.Cmd.Arg(0))

	payload = <-ch
	require.NoError(t, payload.Err)
	require.NotNil(t, payload.Cmd)
	require.Equal(t, []byte("echo"), payload.Cmd.Arg(0))
	require.Equal(t, []byte("hi"), payload.Cmd.Arg(1))

	payload = <-ch
	require.Error(t, payload.Err) // io.EOF surfaces as the terminal payload

	_, open := <-ch
	require.False(t, open)
}

func TestReadSurfacesProtocolError(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	ch := stream.Read(ctx, strings.NewReader("*20000000\r\n"))
	payload := <-ch
	require.Error(t, payload.Err)
	require.Contains(t, payload.Err.Error(), "invalid multibulk length")

	_, open := <-ch
	require.False(t, open)
}
