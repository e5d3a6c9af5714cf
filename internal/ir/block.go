package ir

type Block struct {
	ID     BlockID      `msgpack:"id"`
	Params []RegisterID `msgpack:"params"`
	Instrs []Instr      `msgpack:"instrs"`
	Term   Terminator   `msgpack:"term"`
}

func (b *Block) Terminated() bool {
	if b == nil {
		return true
	}
	return b.Term.Kind != TermNone
}
