// Package resp implements an incremental parser for the RESP request
// dialect: binary multi-bulk framing and legacy inline commands, fed in
// chunks of any size split at any byte boundary. The parser performs no
// I/O; it only consumes bytes handed to it and produces Command values.
package resp

// Default protocol size bounds: PROTO_INLINE_MAX_SIZE and the
// multibulk/bulk length ceilings.
const (
	MaxMultiBulkLen = 1024 * 1024
	MaxBulkLen      = 512 * 1024 * 1024
	MaxInlineSize   = 65536
)

// Limits bounds the protocol sizes a Parser enforces. A zero field means
// the package default for that bound. Limits survive Init.
type Limits struct {
	MaxInlineSize   int
	MaxMultiBulkLen int
	MaxBulkLen      int
}

func (l Limits) withDefaults() Limits {
	if l.MaxInlineSize == 0 {
		l.MaxInlineSize = MaxInlineSize
	}
	if l.MaxMultiBulkLen == 0 {
		l.MaxMultiBulkLen = MaxMultiBulkLen
	}
	if l.MaxBulkLen == 0 {
		l.MaxBulkLen = MaxBulkLen
	}
	return l
}

type state int

const (
	stateStart state = iota
	stateMBulkLen
	stateBulkHeader
	stateBulkLen
	stateBulkBody
	stateBulkTrailer
	stateInline
	stateError
)

// Parser is a re-entrant, single-threaded RESP request parser. It owns no
// external resources: at most one growable argument buffer and one
// pending-argument list, both released on Init or once their command is
// taken. Two Parsers never share state.
type Parser struct {
	state  state
	limits Limits

	intAcc        intAccumulator
	crSeen        bool
	remainingArgs int
	pendingArgs   [][]byte
	bulkRemaining int
	arg           argBuilder
	trailerPos    int // 0: expect '\r', 1: expect '\n'

	inline inlineState

	queue  []*Command
	errVal error
	flow   int
}

// New returns an initialized Parser with the default protocol bounds.
func New() *Parser {
	return NewWithLimits(Limits{})
}

// NewWithLimits returns an initialized Parser enforcing the given bounds.
func NewWithLimits(limits Limits) *Parser {
	p := &Parser{limits: limits.withDefaults()}
	p.Init()
	return p
}

// Init resets the parser to its starting state. Idempotent.
func (p *Parser) Init() {
	p.state = stateStart
	p.intAcc.reset()
	p.crSeen = false
	p.remainingArgs = 0
	p.pendingArgs = nil
	p.bulkRemaining = 0
	p.arg = argBuilder{}
	p.trailerPos = 0
	p.inline = inlineState{}
	p.queue = nil
	p.errVal = nil
	p.flow = 0
}

// Parse consumes the full chunk. Once a fatal error has been recorded, it
// is a no-op: the parser is terminal until Init is called again. On the
// first byte of a malformed construct it records the error and stops
// processing the remainder of the chunk; on recognizing a complete
// request it queues the command and continues processing any bytes that
// follow, so a chunk containing several pipelined requests queues all of
// them for TakeCommand to drain in order.
func (p *Parser) Parse(chunk []byte) {
	if p.state == stateError {
		return
	}
	i, n := 0, len(chunk)
	for i < n {
		switch p.state {
		case stateStart:
			i = p.handleStart(chunk, i)
		case stateMBulkLen:
			i = p.handleMBulkLen(chunk, i)
		case stateBulkHeader:
			i = p.handleBulkHeader(chunk, i)
		case stateBulkLen:
			i = p.handleBulkLen(chunk, i)
		case stateBulkBody:
			i = p.handleBulkBody(chunk, i)
		case stateBulkTrailer:
			i = p.handleBulkTrailer(chunk, i)
		case stateInline:
			i = p.handleInline(chunk, i)
		case stateError:
			return
		}
		if p.state == stateError {
			return
		}
	}
}

// TakeCommand returns and dequeues the oldest completed command, or nil if
// none is available. Ownership of the command moves to the caller.
func (p *Parser) TakeCommand() *Command {
	if len(p.queue) == 0 {
		return nil
	}
	cmd := p.queue[0]
	p.queue[0] = nil
	p.queue = p.queue[1:]
	return cmd
}

// Err returns the sticky terminal error, or nil if the parser has not
// failed.
func (p *Parser) Err() error {
	return p.errVal
}

func (p *Parser) fail(err error) {
	p.errVal = err
	p.state = stateError
	p.pendingArgs = nil
	p.arg.reset()
	p.inline = inlineState{}
}

func (p *Parser) emit(args [][]byte) {
	p.queue = append(p.queue, &Command{args: args, flow: p.flow})
	p.flow = 0
}

func (p *Parser) handleStart(chunk []byte, i int) int {
	b := chunk[i]
	switch {
	case b == '\r' || b == '\n':
		p.flow++
		return i + 1
	case b == '*':
		p.flow++
		p.intAcc.reset()
		p.crSeen = false
		p.state = stateMBulkLen
		return i + 1
	default:
		p.state = stateInline
		p.inline = inlineState{}
		return i // reprocess this byte as the first byte of an inline command
	}
}

func (p *Parser) handleMBulkLen(chunk []byte, i int) int {
	b := chunk[i]
	if !p.crSeen {
		if b == '\r' {
			p.crSeen = true
			p.flow++
			return i + 1
		}
		if !p.intAcc.feed(b) {
			p.fail(errInvalidMultiBulkLength)
			return i
		}
		p.flow++
		return i + 1
	}
	if b != '\n' {
		p.fail(errInvalidMultiBulkLength)
		return i
	}
	p.flow++
	p.crSeen = false
	val, ok := p.intAcc.result()
	if !ok {
		p.fail(errInvalidMultiBulkLength)
		return i
	}
	if val < 0 {
		p.emit(nil)
		p.state = stateStart
		return i + 1
	}
	if val > int64(p.limits.MaxMultiBulkLen) {
		p.fail(errInvalidMultiBulkLength)
		return i
	}
	if val == 0 {
		p.emit(nil)
		p.state = stateStart
		return i + 1
	}
	p.remainingArgs = int(val)
	p.pendingArgs = make([][]byte, 0, val)
	p.state = stateBulkHeader
	return i + 1
}

func (p *Parser) handleBulkHeader(chunk []byte, i int) int {
	b := chunk[i]
	if b == '\r' || b == '\n' {
		p.flow++
		return i + 1
	}
	if b == '$' {
		p.flow++
		p.intAcc.reset()
		p.crSeen = false
		p.state = stateBulkLen
		return i + 1
	}
	p.fail(errExpectedDollar(b))
	return i
}

func (p *Parser) handleBulkLen(chunk []byte, i int) int {
	b := chunk[i]
	if !p.crSeen {
		if b == '\r' {
			p.crSeen = true
			p.flow++
			return i + 1
		}
		if !p.intAcc.feed(b) {
			p.fail(errInvalidBulkLength)
			return i
		}
		p.flow++
		return i + 1
	}
	if b != '\n' {
		p.fail(errInvalidBulkLength)
		return i
	}
	p.flow++
	p.crSeen = false
	val, ok := p.intAcc.result()
	if !ok || val < 0 || val > int64(p.limits.MaxBulkLen) {
		p.fail(errInvalidBulkLength)
		return i
	}
	p.bulkRemaining = int(val)
	p.arg.reset()
	p.state = stateBulkBody
	return i + 1
}

// handleBulkBody copies a contiguous run of up to bulkRemaining bytes in
// one slice append, rather than byte by byte, so an argument that arrives
// whole in a single chunk costs exactly one copy.
func (p *Parser) handleBulkBody(chunk []byte, i int) int {
	avail := len(chunk) - i
	take := p.bulkRemaining
	if take > avail {
		take = avail
	}
	if take > 0 {
		p.arg.append(chunk[i : i+take])
		p.flow += take
		p.bulkRemaining -= take
		i += take
	}
	if p.bulkRemaining == 0 {
		p.trailerPos = 0
		p.state = stateBulkTrailer
	}
	return i
}

func (p *Parser) handleBulkTrailer(chunk []byte, i int) int {
	b := chunk[i]
	if p.trailerPos == 0 {
		if b != '\r' {
			p.fail(errInvalidBulkLength)
			return i
		}
		p.trailerPos = 1
		p.flow++
		return i + 1
	}
	if b != '\n' {
		p.fail(errInvalidBulkLength)
		return i
	}
	p.flow++
	p.trailerPos = 0
	p.pendingArgs = append(p.pendingArgs, p.arg.take())
	p.remainingArgs--
	if p.remainingArgs == 0 {
		args := p.pendingArgs
		p.pendingArgs = nil
		p.emit(args)
		p.state = stateStart
	} else {
		p.state = stateBulkHeader
	}
	return i + 1
}

func (p *Parser) handleInline(chunk []byte, i int) int {
	if p.inline.lineLen >= p.limits.MaxInlineSize {
		p.fail(errUnbalancedQuotes)
		return i
	}
	b := chunk[i]
	p.inline.lineLen++
	p.flow++
	if err := p.advanceInline(b); err != nil {
		p.fail(err)
		return i
	}
	return i + 1
}

// advanceInline resolves the "\r before \n is a terminator, \r anywhere
// else is ordinary content" rule. A '\r' is held rather than acted on
// immediately, since whether it belongs to the stream's content or to a
// \r\n terminator can only be known once the following byte arrives.
func (p *Parser) advanceInline(b byte) error {
	in := &p.inline
	for {
		if in.pendingCR {
			in.pendingCR = false
			if b == '\n' {
				return p.finishInlineLine()
			}
			if err := in.consume('\r'); err != nil {
				return err
			}
			continue // re-evaluate b fresh; it may itself be '\r' or '\n'
		}
		if b == '\r' {
			in.pendingCR = true
			return nil
		}
		if b == '\n' {
			return p.finishInlineLine()
		}
		return in.consume(b)
	}
}

func (p *Parser) finishInlineLine() error {
	in := &p.inline
	if in.mode == inlineInToken {
		if in.quote != quoteNone {
			return errUnbalancedQuotes
		}
		in.commitToken()
	}
	argv := in.argv
	p.inline = inlineState{}
	p.state = stateStart
	if len(argv) == 0 {
		// No token on this line: emit nothing, but keep accumulated flow
		// so it folds into whatever command follows, the same way leading
		// skipped \r\n bytes in Start do.
		return nil
	}
	p.emit(argv)
	return nil
}
