package driver

import (
	"fmt"
	"maps"
	"slices"

	"symbex/internal/ir"
)

// samples are small ready-made programs written by `symbex sample`.
var samples = map[string]func(*ir.ProgramBuilder){
	"hello":    sampleHello,
	"sum":      sampleSum,
	"mismatch": sampleMismatch,
}

// SampleNames lists the available sample programs.
func SampleNames() []string {
	return slices.Sorted(maps.Keys(samples))
}

// Sample builds the named sample program.
func Sample(name string) (*ir.Program, error) {
	build, ok := samples[name]
	if !ok {
		return nil, fmt.Errorf("unknown sample %q (available: %v)", name, SampleNames())
	}
	b := ir.NewProgramBuilder()
	build(b)
	return b.Build()
}

func declarePrint(b *ir.ProgramBuilder) ir.ExternalFunctionID {
	return b.ExternalFunction("print", ir.FFIReturnVoid, ir.FFITypeRuntime, ir.FFITypeAny)
}

func sampleHello(b *ir.ProgramBuilder) {
	printFn := declarePrint(b)
	hello := b.StringConstant("hello", "Hello, World!")
	main := b.Main().Entry()
	rt := main.GetRuntime()
	main.CallExternal(printFn, rt, main.MakeString(hello))
	main.ReturnVoid()
}

// sampleSum computes sum(5) = 5 + sum(4) + ... with one specialization
// per constant argument.
func sampleSum(b *ir.ProgramBuilder) {
	printFn := declarePrint(b)
	sum := b.Function("sum", 1)

	base := sum.Block(0)
	base.Return(base.MakeInteger(0))

	rec := sum.Block(1)
	m := rec.Params()[0]
	next := rec.Add(m, rec.MakeInteger(-1))
	rest := rec.CallResult(sum.ID(), next)
	rec.Return(rec.Add(rest, m))

	entry := sum.Entry()
	n := sum.Params()[0]
	entry.JumpIf(entry.CompareLessThan(n, entry.MakeInteger(1)), base.ID(), nil, rec.ID(), []ir.RegisterID{n})

	main := b.Main().Entry()
	rt := main.GetRuntime()
	total := main.CallResult(sum.ID(), main.MakeInteger(5))
	main.CallExternal(printFn, rt, total)
	main.ReturnVoid()
}

// sampleMismatch adds a string to an integer and fails to specialize.
func sampleMismatch(b *ir.ProgramBuilder) {
	greeting := b.StringConstant("greeting", "hi")
	main := b.Main().Entry()
	main.Add(main.MakeString(greeting), main.MakeInteger(1))
	main.ReturnVoid()
}
