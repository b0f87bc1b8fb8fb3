// Package stream supplies bytes to a resp.Parser from an io.Reader and
// surfaces completed commands on a channel, in order.
package stream

import (
	"context"
	"io"
	"log/slog"

	"github.com/zhangming/respflow/resp"
)

// Payload is one item off the stream: either a completed command or a
// terminal error (protocol failure or the read side closing).
type Payload struct {
	Cmd *resp.Command
	Err error
}

const chunkSize = 4096

// Read feeds r to a resp.Parser in raw, unbuffered chunks and returns a
// channel of Payloads. Deliberately avoids bufio.Reader: the parser must
// see exactly the chunk boundaries the underlying Read calls produce, not
// boundaries reshaped by an internal buffer, so that a caller exercising
// the chunk-split invariance the parser promises is actually testing it.
// The channel is closed after the first error (read error or protocol
// error) is delivered, or when ctx is done.
func Read(ctx context.Context, r io.Reader) <-chan *Payload {
	return ReadWithLimits(ctx, r, resp.Limits{})
}

// ReadWithLimits is Read with explicit protocol bounds for the
// connection's parser; zero fields mean the resp package defaults.
func ReadWithLimits(ctx context.Context, r io.Reader, limits resp.Limits) <-chan *Payload {
	ch := make(chan *Payload)
	go readLoop(ctx, r, limits, ch)
	return ch
}

func readLoop(ctx context.Context, r io.Reader, limits resp.Limits, ch chan<- *Payload) {
	defer close(ch)
	p := resp.NewWithLimits(limits)
	buf := make([]byte, chunkSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			p.Parse(buf[:n])
			if !drain(ctx, p, ch) {
				return
			}
			if p.Err() != nil {
				send(ctx, ch, &Payload{Err: p.Err()})
				return
			}
		}
		if err != nil {
			if err != io.EOF {
				slog.Error("stream read failed", "err", err)
			}
			send(ctx, ch, &Payload{Err: err})
			return
		}
	}
}

// drain pops every command the last Parse call completed, in order,
// before the loop reads more bytes: resp.Parser queues internally, drain
// empties that queue onto the channel one command at a time.
func drain(ctx context.Context, p *resp.Parser, ch chan<- *Payload) bool {
	for {
		cmd := p.TakeCommand()
		if cmd == nil {
			return true
		}
		if !send(ctx, ch, &Payload{Cmd: cmd}) {
			return false
		}
	}
}

func send(ctx context.Context, ch chan<- *Payload, payload *Payload) bool {
	select {
	case ch <- payload:
		return true
	case <-ctx.Done():
		return false
	}
}
