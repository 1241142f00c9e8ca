package logs

import "github.com/reusee/dscope"

type Module struct {
	dscope.Module
}

type Span string

type ctxKey int

const SpanKey ctxKey = iota
