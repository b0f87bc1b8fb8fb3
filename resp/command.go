package resp

import (
	"strconv"
	"strings"
)

// Command is a fully recognized RESP request: an ordered list of opaque
// argument byte-strings plus the number of input bytes that belonged to
// it (its flow). A Command is immutable once emitted by the parser.
type Command struct {
	args [][]byte
	flow int
}

// Args returns the command's arguments in wire order. The caller must not
// mutate the returned slice or its elements.
func (c *Command) Args() [][]byte {
	return c.args
}

// Arg returns argument i, or nil if i is out of range.
func (c *Command) Arg(i int) []byte {
	if i < 0 || i >= len(c.args) {
		return nil
	}
	return c.args[i]
}

// ArgCount returns the number of arguments in the command.
func (c *Command) ArgCount() int {
	return len(c.args)
}

// Flow returns the number of input-stream bytes attributed to this
// command, counted from the end of the previously emitted command (or
// from the start of the stream for the first command).
func (c *Command) Flow() int {
	return c.flow
}

// String renders the command for logging as "{arg, arg, ...}, flow[n]".
func (c *Command) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, a := range c.args {
		if i > 0 {
			b.WriteString(", ")
		}
		b.Write(a)
	}
	b.WriteString("}, flow[")
	b.WriteString(strconv.Itoa(c.flow))
	b.WriteByte(']')
	return b.String()
}
