package ir

// Program is the immutable input of the specialization pass. It is shared
// by all explorations without locking and must not be modified once built.
type Program struct {
	Entrypoint        FunctionID                               `msgpack:"entrypoint"`
	Constants         map[ConstantID]*Constant                 `msgpack:"constants"`
	ExternalFunctions map[ExternalFunctionID]*ExternalFunction `msgpack:"external_functions"`
	Functions         map[FunctionID]*Function                 `msgpack:"functions"`
}

type Constant struct {
	Name    string `msgpack:"name"`
	Payload []byte `msgpack:"payload"`
}

type ExternalFunction struct {
	Name   string    `msgpack:"name"`
	Params []FFIType `msgpack:"params"`
	Return FFIReturn `msgpack:"return"`
}

type Function struct {
	ID     FunctionID         `msgpack:"id"`
	Name   string             `msgpack:"name"`
	Entry  BlockID            `msgpack:"entry"`
	Blocks map[BlockID]*Block `msgpack:"blocks"`
}

// EntryBlock returns the entry block of the function.
func (f *Function) EntryBlock() *Block {
	if f == nil {
		return nil
	}
	return f.Blocks[f.Entry]
}

// Block looks up a block by its program-wide reference.
func (p *Program) Block(ref BlockRef) (*Block, bool) {
	if p == nil {
		return nil, false
	}
	fn := p.Functions[ref.Func]
	if fn == nil {
		return nil, false
	}
	b, ok := fn.Blocks[ref.Block]
	return b, ok && b != nil
}

// EntryRef returns the reference of the entry block of fn.
func (p *Program) EntryRef(fn FunctionID) (BlockRef, bool) {
	if p == nil {
		return BlockRef{}, false
	}
	f := p.Functions[fn]
	if f == nil {
		return BlockRef{}, false
	}
	return BlockRef{Func: fn, Block: f.Entry}, true
}

// Constant returns the payload of a constant.
func (p *Program) Constant(id ConstantID) (*Constant, bool) {
	if p == nil {
		return nil, false
	}
	c, ok := p.Constants[id]
	return c, ok && c != nil
}
