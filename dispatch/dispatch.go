// Package dispatch is a minimal command table demonstrating that a
// resp.Command consumer needs no help from the parser to know what a
// command means. It recognizes exactly PING and ECHO; everything else is
// an unknown-command reply. It does not grow beyond these two commands --
// that would make it a command-semantics engine, which is out of scope.
package dispatch

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/zhangming/respflow/resp"
)

// Reply is the RESP-encoded reply a handler should write back to the
// connection, already \r\n-terminated: one line for a status or error
// reply, two lines (length header and payload) for a bulk reply.
type Reply string

type execFunc func(cmd *resp.Command) Reply

var cmdTable = map[string]execFunc{
	"PING": execPing,
	"ECHO": execEcho,
}

// Exec looks up and runs the handler for cmd's first argument (the
// command name), case-insensitively, per RESP convention.
func Exec(cmd *resp.Command) Reply {
	if cmd.ArgCount() == 0 {
		return Reply("-ERR empty command\r\n")
	}
	name := strings.ToUpper(string(cmd.Arg(0)))
	fn, ok := cmdTable[name]
	if !ok {
		return Reply(fmt.Sprintf("-ERR unknown command '%s'\r\n", string(cmd.Arg(0))))
	}
	return fn(cmd)
}

func execPing(cmd *resp.Command) Reply {
	if cmd.ArgCount() >= 2 {
		return bulkReply(cmd.Arg(1))
	}
	return Reply("+PONG\r\n")
}

func execEcho(cmd *resp.Command) Reply {
	if cmd.ArgCount() != 2 {
		return Reply("-ERR wrong number of arguments for 'echo' command\r\n")
	}
	return bulkReply(cmd.Arg(1))
}

func bulkReply(arg []byte) Reply {
	var b bytes.Buffer
	fmt.Fprintf(&b, "$%d\r\n", len(arg))
	b.Write(arg)
	b.WriteString("\r\n")
	return Reply(b.String())
}
