// Package pipeline runs the back-end analysis of one compilation unit:
// flow graph construction, liveness and register allocation for every
// method.
//
// Design: methods share only the read-only label table, so they are
// analysed in parallel. Results keep program order.
package pipeline

import (
	"context"
	"errors"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/GriffinCanCode/spiglet-compiler/pkg/codegen/regalloc"
	"github.com/GriffinCanCode/spiglet-compiler/pkg/config"
	"github.com/GriffinCanCode/spiglet-compiler/pkg/flow"
	"github.com/GriffinCanCode/spiglet-compiler/pkg/kanga"
	"github.com/GriffinCanCode/spiglet-compiler/pkg/liveness"
	"github.com/GriffinCanCode/spiglet-compiler/pkg/logger"
	"github.com/GriffinCanCode/spiglet-compiler/pkg/spiglet"
)

// Pipeline analyses compilation units
type Pipeline struct {
	regs    *regalloc.Config
	workers int

	// check validates each built graph before liveness runs
	check func(method string, g *flow.Graph) error
}

// New creates a pipeline from cfg
func New(cfg config.Config) *Pipeline {
	cfg = cfg.Validate()
	return &Pipeline{
		regs:    cfg.RegAlloc(),
		workers: cfg.Workers,
		check:   flow.Check,
	}
}

// Run analyses every method of prog.
//
// Malformed input is scoped to its method: the method is left out of the
// unit, its siblings are still analysed, and the combined method errors are
// returned next to the partial unit. Internal invariant violations abort the
// whole unit and Run returns a nil unit.
func (p *Pipeline) Run(ctx context.Context, prog *spiglet.Program) (*kanga.Unit, error) {
	logger.LogPhase("labels")
	unit, err := flow.NewUnit(prog)
	if err != nil {
		return nil, err
	}
	logger.LogPhaseComplete("labels")

	procs := prog.All()
	methods := make([]*kanga.Method, len(procs))
	methodErrs := make([]error, len(procs))

	logger.LogPhase("analysis")
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i, proc := range procs {
		i, proc := i, proc
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			m, err := p.analyze(unit, proc)
			var invariant *flow.InvariantError
			if errors.As(err, &invariant) {
				logger.LogMethodError("analysis", proc.Name, err)
				return err
			}
			if err != nil {
				logger.LogMethodError("analysis", proc.Name, err)
				methodErrs[i] = err
				return nil
			}
			methods[i] = m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	logger.LogPhaseComplete("analysis")

	done := make([]*kanga.Method, 0, len(methods))
	for _, m := range methods {
		if m != nil {
			done = append(done, m)
		}
	}
	return kanga.NewUnit(done), multierr.Combine(methodErrs...)
}

// analyze runs every phase for one method
func (p *Pipeline) analyze(unit *flow.Unit, proc *spiglet.Procedure) (*kanga.Method, error) {
	m := kanga.NewMethod(proc.Name, proc.Params, p.regs)

	res, err := flow.Build(unit, proc)
	if err != nil {
		return nil, err
	}
	if err := p.check(proc.Name, res.Graph); err != nil {
		return nil, err
	}

	stats := liveness.Analyze(res.Graph)
	logger.LogLiveness(proc.Name, stats.Iterations, stats.Temps)

	alloc := regalloc.NewAllocator(proc.Name, res.Graph, proc.Params, p.regs)
	if err := alloc.Allocate(); err != nil {
		return nil, err
	}
	if err := regalloc.Verify(proc.Name, alloc.Intervals()); err != nil {
		return nil, err
	}

	m.Record(alloc, res.CallParams)
	logger.LogAllocation(proc.Name, len(m.Locations)-m.StackSlots, m.StackSlots, m.CallParams)
	return m, nil
}
