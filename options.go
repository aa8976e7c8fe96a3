package lsoda

import (
	"io"

	"gopkg.in/yaml.v3"
)

// Options collects the tunables of spec.md section 6's driver parameter
// block. NewSolver starts from DefaultOptions and applies the With*
// functional setters over it, the way the teacher's Config is assembled
// from functional options in simulation.go.
type Options struct {
	Ixpr   int     `yaml:"ixpr"`   // 1 = print a message on every method switch
	MxStep int     `yaml:"mxstep"` // max internal steps per Advance call
	MxHnil int     `yaml:"mxhnil"` // max T+H=T warnings printed
	H0     float64 `yaml:"h0"`     // initial step size, 0 = choose automatically
	MxOrdN int     `yaml:"mxordn"` // max Adams order, 1..12
	MxOrdS int     `yaml:"mxords"` // max BDF order, 1..5
	HMax   float64 `yaml:"hmax"`   // maximum magnitude of h, 0 = unbounded
	HMin   float64 `yaml:"hmin"`   // minimum magnitude of h
	TCrit  float64 `yaml:"tcrit"`  // critical time for itask 4/5
	ML     int     `yaml:"ml"`     // lower Jacobian bandwidth (unsupported, jt=2 only)
	MU     int     `yaml:"mu"`     // upper Jacobian bandwidth (unsupported, jt=2 only)
	JT     int     `yaml:"jt"`     // Jacobian mode selector; only 2 (dense finite-difference) is implemented

	LogResults bool // write a CSV-style row to the Solver's Logger (SetLogger) for every accepted step
	Refine     bool // polish each chord solve with a bounded GMRES pass after the LU solve
}

// DefaultOptions returns the option block spec.md section 6 names as the
// driver's defaults.
func DefaultOptions() Options {
	return Options{
		MxStep: 5000,
		MxHnil: 10,
		MxOrdN: maxOrderAdams,
		MxOrdS: maxOrderBDF,
		JT:     2,
	}
}

// Option mutates an Options in place; NewSolver applies a sequence of them
// over DefaultOptions.
type Option func(*Options)

func WithMaxStep(n int) Option        { return func(o *Options) { o.MxStep = n } }
func WithMaxHnil(n int) Option        { return func(o *Options) { o.MxHnil = n } }
func WithInitialStep(h0 float64) Option { return func(o *Options) { o.H0 = h0 } }
func WithMaxOrderAdams(n int) Option  { return func(o *Options) { o.MxOrdN = n } }
func WithMaxOrderBDF(n int) Option    { return func(o *Options) { o.MxOrdS = n } }
func WithHMax(hmax float64) Option    { return func(o *Options) { o.HMax = hmax } }
func WithHMin(hmin float64) Option    { return func(o *Options) { o.HMin = hmin } }
func WithTCrit(tcrit float64) Option  { return func(o *Options) { o.TCrit = tcrit } }
func WithPrintSwitches() Option       { return func(o *Options) { o.Ixpr = 1 } }
func WithLogResults() Option          { return func(o *Options) { o.LogResults = true } }
func WithRefine() Option              { return func(o *Options) { o.Refine = true } }

// LoadOptionsYAML reads an Options block from r, starting from
// DefaultOptions so an omitted field keeps its default rather than
// zeroing out.
func LoadOptionsYAML(r io.Reader) (Options, error) {
	opt := DefaultOptions()
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&opt); err != nil && err != io.EOF {
		return Options{}, err
	}
	return opt, nil
}
