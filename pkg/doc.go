// Package pkg provides the core libraries for transfocator optics calculations.
//
// # Overview
//
// A transfocator is a motorized stack of compound refractive lenses (CRLs)
// that focuses an X-ray beam. The libraries under pkg/ lay out the lenses of
// one or more transfocators along the beamline, look up the optical constants
// of the lens material at the photon energy, propagate a Gaussian beam
// through every lens and summarize transmission, gain and the focal spot.
//
// The pkg directory is organized into four main areas:
//
//  1. Domain logic ([optics], [beamline], [geometry], [propagation], [report])
//  2. Data sources ([materials]) for delta, beta and attenuation length
//  3. Infrastructure ([cache], [store], [httputil], [observability], [errors])
//  4. Orchestration ([pipeline]) and outer surfaces ([server], [io], [schematic])
//
// # Architecture
//
// The typical data flow:
//
//	Beamline descriptor (TOML/JSON)
//	         ↓
//	    [beamline] package (source parameters + transfocators)
//	         ↓
//	    [geometry] package (lens positions + optical constants)
//	         ↓
//	    [propagation] package (per-lens beam state)
//	         ↓
//	    [report] package (TF totals, focus, symmetry point)
//	         ↓
//	    Table/JSON/CSV/DOT/SVG output
//
// # Quick Start
//
//	bl, err := beamline.Load("beamline.toml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	runner := pipeline.NewRunner(nil, nil, materials.DefaultTable(), nil)
//	result, err := runner.Execute(ctx, pipeline.Options{Beamline: bl})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("T = %.3f, focus at %.3f m\n",
//	    result.Report.T, result.Report.FocusPosition())
//
// # Testing
//
//	go test ./pkg/...           # All tests
//	go test ./pkg/propagation/  # Specific package
//	go test -run Example        # Examples only
//
// [optics]: https://pkg.go.dev/github.com/matzehuels/transfocator/pkg/optics
// [beamline]: https://pkg.go.dev/github.com/matzehuels/transfocator/pkg/beamline
// [geometry]: https://pkg.go.dev/github.com/matzehuels/transfocator/pkg/geometry
// [propagation]: https://pkg.go.dev/github.com/matzehuels/transfocator/pkg/propagation
// [report]: https://pkg.go.dev/github.com/matzehuels/transfocator/pkg/report
// [materials]: https://pkg.go.dev/github.com/matzehuels/transfocator/pkg/materials
// [cache]: https://pkg.go.dev/github.com/matzehuels/transfocator/pkg/cache
// [store]: https://pkg.go.dev/github.com/matzehuels/transfocator/pkg/store
// [httputil]: https://pkg.go.dev/github.com/matzehuels/transfocator/pkg/httputil
// [observability]: https://pkg.go.dev/github.com/matzehuels/transfocator/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/transfocator/pkg/errors
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/transfocator/pkg/pipeline
// [server]: https://pkg.go.dev/github.com/matzehuels/transfocator/pkg/server
// [io]: https://pkg.go.dev/github.com/matzehuels/transfocator/pkg/io
// [schematic]: https://pkg.go.dev/github.com/matzehuels/transfocator/pkg/schematic
package pkg
