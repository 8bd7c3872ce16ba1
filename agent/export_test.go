package agent

import "github.com/fwojciec/toolchat"

// Assembler exposes the stream assembler to external tests.
type Assembler struct{ a *assembler }

func NewAssembler() *Assembler { return &Assembler{a: newAssembler()} }

func (x *Assembler) Apply(evt toolchat.Event) error { return x.a.apply(evt) }

func (x *Assembler) Message() (toolchat.AssistantMessage, error) { return x.a.message() }
