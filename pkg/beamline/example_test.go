package beamline_test

import (
	"fmt"

	"github.com/matzehuels/transfocator/pkg/beamline"
)

func ExamplePresets() {
	for _, p := range beamline.Presets() {
		fmt.Printf("%s R=%.0f µm A=%.0f µm\n", p.Name, p.R*1e6, p.A*1e6)
	}
	// Output:
	// R50 R=50 µm A=440 µm
	// R100 R=100 µm A=600 µm
	// R200 R=200 µm A=800 µm
	// R500 R=500 µm A=1400 µm
}

func ExampleParse() {
	src := `
[source]
energy = 10300
sx = 77.47
sy = 13.89
wx = 22.14
wy = 25.90

[[tf]]
name = "TF1"
type = "vacuum"
position = 27.1
  [[tf.groups]]
  n = 2
  preset = "R500"

[[tf]]
name = "TF2"
type = "air"
position = 64.0
count = 3
preset = "R50"
`
	bl, err := beamline.Parse([]byte(src), beamline.FormatTOML)
	if err != nil {
		fmt.Println(err)
		return
	}
	for _, tf := range bl.TFs {
		fmt.Println(tf.TFName(), tf.Kind())
	}
	// Output:
	// TF1 vacuum
	// TF2 air
}
