// Command abenics generates the solid geometry of an ABENICS orthogonal
// gear pair and writes both bodies as STL files. Parameters come from
// flags, or from a Lisp script when -script is given.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"os/signal"

	"github.com/chazu/abenics/pkg/engine"
	"github.com/chazu/abenics/pkg/engrave"
	"github.com/chazu/abenics/pkg/export"
	"github.com/chazu/abenics/pkg/gear"
	"github.com/chazu/abenics/pkg/kernel"
	"github.com/chazu/abenics/pkg/kernel/sdfx"
)

func main() {
	var (
		pressureAngle = flag.Float64("pressure-angle", 20, "pressure angle in degrees")
		module        = flag.Float64("module", 1.0, "gear module in mm")
		backlash      = flag.Float64("backlash", 0.05, "backlash in mm")
		thickness     = flag.Float64("thickness", 4.0, "MP-Gear thickness in mm")
		bore          = flag.Float64("bore", 4.0, "MP-Gear bore diameter in mm")
		teeth         = flag.Int("teeth", 40, "drive gear tooth count")
		ratio         = flag.Float64("ratio", 2.0, "gear ratio (drive teeth / driven teeth)")
		steps         = flag.Int("steps", 36, "engrave rotation steps")
		samples       = flag.Int("samples", gear.DefaultFlankSamples, "involute samples per flank")
		script        = flag.String("script", "", "gear DSL script file (overrides parameter flags)")
		out           = flag.String("out", "abenics", "output file prefix")
	)
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	jobs := []engine.Job{{
		Name: *out,
		Params: gear.Params{
			PressureAngle: *pressureAngle * math.Pi / 180,
			Module:        *module,
			Backlash:      *backlash,
			Thickness:     *thickness,
			BoreDiameter:  *bore,
			TeethDrive:    *teeth,
			GearRatio:     *ratio,
			Steps:         *steps,
			FlankSamples:  *samples,
		},
	}}

	if *script != "" {
		source, err := os.ReadFile(*script)
		if err != nil {
			log.Fatalf("read script: %v", err)
		}
		plan, evalErrs, err := engine.NewEngine().Evaluate(string(source))
		if err != nil {
			log.Fatalf("evaluate script: %v", err)
		}
		if len(evalErrs) > 0 {
			for _, e := range evalErrs {
				log.Printf("script error: %v", e)
			}
			os.Exit(1)
		}
		if len(plan.Jobs) == 0 {
			log.Fatal("script produced no gear jobs")
		}
		jobs = plan.Jobs
	}

	kern := sdfx.New()
	for _, job := range jobs {
		if err := run(ctx, kern, job); err != nil {
			log.Fatalf("%s: %v", job.Name, err)
		}
	}
}

func run(ctx context.Context, kern kernel.Kernel, job engine.Job) error {
	ps, err := gear.Derive(job.Params)
	if err != nil {
		return err
	}
	log.Printf("%s: drive gear %d teeth (pitch %.2f mm), ring gear %d teeth (pitch %.2f mm), %d engrave steps",
		job.Name, ps.TeethDrive, ps.PitchDiameterDrive, ps.TeethDriven, ps.PitchDiameterDriven, ps.Steps)

	out, err := engrave.Generate(ctx, kern, ps)
	if err != nil {
		return err
	}
	if out.Cancelled {
		return fmt.Errorf("cancelled after %d of %d engrave steps", out.StepsDone, ps.Steps)
	}

	if err := writeSolid(kern, out.Drive, job.Name+"_sh", job.Name+"_sh.stl"); err != nil {
		return err
	}
	if err := writeSolid(kern, out.Ring, job.Name+"_mp", job.Name+"_mp.stl"); err != nil {
		return err
	}
	return nil
}

func writeSolid(kern kernel.Kernel, s kernel.Solid, name, path string) error {
	mesh, err := kern.ToMesh(s)
	if err != nil {
		return err
	}
	mesh.Name = name
	if err := export.WriteSTL(path, mesh); err != nil {
		return err
	}
	log.Printf("wrote %s (%d triangles)", path, mesh.TriangleCount())
	return nil
}
