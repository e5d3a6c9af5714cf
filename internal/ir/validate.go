package ir

import (
	"errors"
	"fmt"
	"maps"
	"slices"
)

// Validate checks the structural invariants a correct front end upholds.
// Returns error if any invariant is violated.
func Validate(p *Program) error {
	if p == nil {
		return errors.New("ir: nil program")
	}
	var errs []error

	// 1. Entrypoint exists and takes no parameters
	if entry := p.Functions[p.Entrypoint]; entry == nil {
		errs = append(errs, fmt.Errorf("entrypoint %s does not exist", p.Entrypoint))
	} else if eb := entry.EntryBlock(); eb != nil && len(eb.Params) != 0 {
		errs = append(errs, fmt.Errorf("entrypoint %s takes %d parameters, want 0", entry.Name, len(eb.Params)))
	}

	for _, id := range slices.Sorted(maps.Keys(p.Functions)) {
		fn := p.Functions[id]
		if fn == nil {
			continue
		}
		if err := validateFunc(p, fn); err != nil {
			errs = append(errs, fmt.Errorf("function %s: %w", fn.Name, err))
		}
	}
	return errors.Join(errs...)
}

func validateFunc(p *Program, fn *Function) error {
	var errs []error

	if fn.EntryBlock() == nil {
		errs = append(errs, fmt.Errorf("entry block %s does not exist", fn.Entry))
	}

	for _, id := range slices.Sorted(maps.Keys(fn.Blocks)) {
		bb := fn.Blocks[id]
		if bb == nil {
			errs = append(errs, fmt.Errorf("%s: missing block body", id))
			continue
		}
		if bb.ID != id {
			errs = append(errs, fmt.Errorf("%s: block is stored under id %s", bb.ID, id))
		}
		for i := range bb.Instrs {
			if err := validateInstr(p, &bb.Instrs[i]); err != nil {
				errs = append(errs, fmt.Errorf("%s[%d]: %w", id, i, err))
			}
		}
		if err := validateTerm(fn, bb); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", id, err))
		}
	}
	return errors.Join(errs...)
}

func validateInstr(p *Program, in *Instr) error {
	switch in.Kind {
	case InstrMakeString:
		if _, ok := p.Constant(in.MakeString.Const); !ok {
			return fmt.Errorf("constant %s does not exist", in.MakeString.Const)
		}
	case InstrCall:
		call := &in.Call
		switch call.Callee.Kind {
		case CalleeExternal:
			ext := p.ExternalFunctions[call.Callee.External]
			if ext == nil {
				return fmt.Errorf("external function %s does not exist", call.Callee.External)
			}
			if len(call.Args) != len(ext.Params) {
				return fmt.Errorf("call to %s passes %d arguments, want %d", ext.Name, len(call.Args), len(ext.Params))
			}
			if call.HasDst && ext.Return.Void {
				return fmt.Errorf("call to %s assigns a void result to %s", ext.Name, call.Dst)
			}
		case CalleeStatic:
			callee := p.Functions[call.Callee.Func]
			if callee == nil {
				return fmt.Errorf("function %s does not exist", call.Callee.Func)
			}
			if eb := callee.EntryBlock(); eb != nil && len(call.Args) != len(eb.Params) {
				return fmt.Errorf("call to %s passes %d arguments, want %d", callee.Name, len(call.Args), len(eb.Params))
			}
		default:
			return fmt.Errorf("unknown callee kind %d", call.Callee.Kind)
		}
	}
	return nil
}

func validateTerm(fn *Function, bb *Block) error {
	if !bb.Terminated() {
		return errors.New("unterminated block")
	}
	var errs []error
	for _, j := range bb.Term.Targets() {
		target := fn.Blocks[j.Target]
		if target == nil {
			errs = append(errs, fmt.Errorf("%s target %s does not exist", bb.Term.Kind, j.Target))
			continue
		}
		if len(j.Args) != len(target.Params) {
			errs = append(errs, fmt.Errorf("%s to %s forwards %d arguments, want %d", bb.Term.Kind, j.Target, len(j.Args), len(target.Params)))
		}
	}
	return errors.Join(errs...)
}
