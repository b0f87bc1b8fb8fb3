package resp_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zhangming/respflow/resp"
)

func TestCommandAccessors(t *testing.T) {
	p := resp.New()
	p.Parse([]byte("*2\r\n$4\r\necho\r\n$2\r\nhi\r\n"))
	cmd := p.TakeCommand()
	require.NotNil(t, cmd)

	require.Equal(t, 2, cmd.ArgCount())
	require.Equal(t, []byte("echo"), cmd.Arg(0))
	require.Equal(t, []byte("hi"), cmd.Arg(1))
	require.Nil(t, cmd.Arg(-1))
	require.Nil(t, cmd.Arg(2))
	require.Equal(t, "{echo, hi}, flow[22]", cmd.String())
}
