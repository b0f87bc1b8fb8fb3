package resp

// inlineMode tracks where we are relative to the current token; inlineState
// as a whole is reset once per inline line (see Parser.finishInlineLine).
type inlineMode int

const (
	inlineBetween    inlineMode = iota // skipping separator space/tab before a token
	inlineInToken                      // building the current token
	inlineAfterQuote                   // just closed a quote; only space/tab/terminator may follow
)

type quoteKind int

const (
	quoteNone quoteKind = iota
	quoteSingle
	quoteDouble
)

// inlineState holds every register the inline tokenizer needs to resume at
// an arbitrary byte boundary: which token-mode it is in, whether a quote is
// open and which kind, a pending backslash escape, an in-progress \xHH
// hex escape, the token bytes built so far, the tokens completed so far on
// this line, the raw byte count of the line (for the PROTO_INLINE_MAX_SIZE
// bound), and a held '\r' waiting to see whether '\n' follows it.
type inlineState struct {
	mode      inlineMode
	quote     quoteKind
	escape    bool
	hexDigits int
	hexVal    byte
	tokBuf    []byte
	argv      [][]byte
	lineLen   int
	pendingCR bool
}

func hexDigitValue(b byte) (byte, bool) {
	switch {
	case b >= '0' && b <= '9':
		return b - '0', true
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10, true
	case b >= 'A' && b <= 'F':
		return b - 'A' + 10, true
	default:
		return 0, false
	}
}

func (in *inlineState) commitToken() {
	tok := make([]byte, len(in.tokBuf))
	copy(tok, in.tokBuf)
	in.argv = append(in.argv, tok)
}

// consume feeds one byte that is known not to be part of a \r\n/\n
// terminator decision (that lookahead lives in Parser.advanceInline).
// A quote character toggles quoting wherever it appears in a token, not
// only at the token's first byte -- matching the reference tokenizer's
// behavior: f"oo" succeeds, f"oo"bar does not.
func (in *inlineState) consume(b byte) error {
	switch in.mode {
	case inlineBetween:
		if b == ' ' || b == '\t' {
			return nil
		}
		in.mode = inlineInToken
		in.quote = quoteNone
		in.tokBuf = in.tokBuf[:0]
		return in.consume(b)
	case inlineAfterQuote:
		if b == ' ' || b == '\t' {
			in.mode = inlineBetween
			return nil
		}
		return errUnbalancedQuotes
	default: // inlineInToken
		return in.consumeInToken(b)
	}
}

func (in *inlineState) consumeInToken(b byte) error {
	switch in.quote {
	case quoteNone:
		switch b {
		case ' ', '\t':
			in.commitToken()
			in.mode = inlineBetween
		case '"':
			in.quote = quoteDouble
		case '\'':
			in.quote = quoteSingle
		default:
			in.tokBuf = append(in.tokBuf, b)
		}
		return nil
	case quoteSingle:
		return in.consumeSingleQuoted(b)
	default: // quoteDouble
		return in.consumeDoubleQuoted(b)
	}
}

// consumeSingleQuoted implements: contents verbatim except the two-byte
// escape \' which contributes a literal '; any other \ is verbatim.
func (in *inlineState) consumeSingleQuoted(b byte) error {
	if in.escape {
		in.escape = false
		if b == '\'' {
			in.tokBuf = append(in.tokBuf, '\'')
		} else {
			in.tokBuf = append(in.tokBuf, '\\', b)
		}
		return nil
	}
	switch b {
	case '\\':
		in.escape = true
	case '\'':
		in.quote = quoteNone
		in.commitToken()
		in.mode = inlineAfterQuote
	default:
		in.tokBuf = append(in.tokBuf, b)
	}
	return nil
}

// consumeDoubleQuoted handles the double-quote escape table, including the
// two-hex-digit \xHH form.
func (in *inlineState) consumeDoubleQuoted(b byte) error {
	if in.hexDigits > 0 {
		v, ok := hexDigitValue(b)
		if !ok {
			return errUnbalancedQuotes
		}
		in.hexVal = in.hexVal<<4 | v
		in.hexDigits--
		if in.hexDigits == 0 {
			in.tokBuf = append(in.tokBuf, in.hexVal)
		}
		return nil
	}
	if in.escape {
		in.escape = false
		switch b {
		case 'n':
			in.tokBuf = append(in.tokBuf, '\n')
		case 'r':
			in.tokBuf = append(in.tokBuf, '\r')
		case 't':
			in.tokBuf = append(in.tokBuf, '\t')
		case 'b':
			in.tokBuf = append(in.tokBuf, '\b')
		case 'a':
			in.tokBuf = append(in.tokBuf, '\a')
		case '"':
			in.tokBuf = append(in.tokBuf, '"')
		case '\\':
			in.tokBuf = append(in.tokBuf, '\\')
		case 'x':
			in.hexDigits = 2
			in.hexVal = 0
		default:
			in.tokBuf = append(in.tokBuf, b)
		}
		return nil
	}
	switch b {
	case '\\':
		in.escape = true
	case '"':
		in.quote = quoteNone
		in.commitToken()
		in.mode = inlineAfterQuote
	default:
		in.tokBuf = append(in.tokBuf, b)
	}
	return nil
}
