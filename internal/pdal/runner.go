package pdal

import (
	"fmt"
	"os"
	"os/exec"

	"relief/internal/lib"
)

// Runner invokes the external point-cloud engine. Implementations are
// synchronous and attempt-once; the engine's exit status is deliberately
// not interpreted, so absence of expected output files is the failure
// signal callers must check for.
type Runner interface {
	// RunPipeline serializes and executes a pipeline description
	RunPipeline(p Pipeline) error
	// RunGround runs the engine's dedicated ground-classification mode,
	// labeling point classes in place rather than filtering
	RunGround(in, out string, slope, cellsize float64) error
}

// Engine runs pipelines against a PDAL binary
type Engine struct {
	Path    string // engine binary, e.g. "pdal"
	Verbose bool   // echo pipeline XML and engine diagnostics
	Logger  *lib.Logger
}

// NewEngine creates a runner for the given PDAL binary
func NewEngine(path string, verbose bool, logger *lib.Logger) *Engine {
	if logger == nil {
		logger = lib.DefaultLogger
	}
	return &Engine{Path: path, Verbose: verbose, Logger: logger}
}

// RunPipeline serializes p to a uniquely named temp XML file, invokes
// `pdal pipeline` against it and removes every temp artifact afterward,
// success or failure
func (e *Engine) RunPipeline(p Pipeline) error {
	doc, sidecars, err := Serialize(p)
	if err != nil {
		return err
	}
	defer removeAll(sidecars)

	if e.Verbose {
		fmt.Println(string(doc))
	}

	f, err := os.CreateTemp("", "pipeline-*.xml")
	if err != nil {
		return lib.ErrFileSystem("create", "pipeline temp file", err)
	}
	xmlfile := f.Name()
	defer func() {
		_ = os.Remove(xmlfile)
	}()
	if e.Verbose {
		e.Logger.Debug("Pipeline file", "path", xmlfile)
	}

	if _, err := f.Write(doc); err != nil {
		_ = f.Close()
		return lib.ErrFileSystem("write", xmlfile, err)
	}
	if err := f.Close(); err != nil {
		return lib.ErrFileSystem("close", xmlfile, err)
	}

	return e.run("pipeline", "-i", xmlfile, "-v4")
}

// RunGround invokes the engine's ground-classification mode. The --classify
// flag requests class labeling instead of point filtering.
func (e *Engine) RunGround(in, out string, slope, cellsize float64) error {
	args := []string{
		"ground",
		"-i", in,
		"-o", out,
		"--slope", formatFloat(slope),
		"--cellSize", formatFloat(cellsize),
		"--classify",
	}
	if e.Verbose {
		args = append(args, "-v1")
		e.Logger.Debug("Running ground classification", "cmd", e.Path, "args", args)
	}
	return e.run(args...)
}

// run executes the engine once. A non-zero exit is logged but not treated
// as failure; only the inability to start the process is surfaced. Callers
// verify expected outputs instead.
func (e *Engine) run(args ...string) error {
	cmd := exec.Command(e.Path, args...)
	if e.Verbose {
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
	}
	if err := cmd.Run(); err != nil {
		if _, ok := err.(*exec.ExitError); ok {
			e.Logger.Debug("Engine exited non-zero", "args", args, "error", err)
			return nil
		}
		return lib.ErrEngineStart(e.Path, err)
	}
	return nil
}
