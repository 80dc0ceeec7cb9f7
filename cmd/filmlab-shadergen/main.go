// Command filmlab-shadergen writes the generated WGSL programs to disk so
// they can be reviewed and diffed.
//
//	filmlab-shadergen -o shaders/generated
//	filmlab-shadergen -o shaders/generated --disable hsl,grain --check
package main

import (
	"bytes"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/pflag"

	"github.com/gogpu/filmlab/shadergen"
)

// toggles maps a feature name to its field in a Config.
var toggles = map[string]func(*shadergen.Config) *bool{
	"white-balance": func(c *shadergen.Config) *bool { return &c.Master.WhiteBalance },
	"dehaze":        func(c *shadergen.Config) *bool { return &c.Master.Dehaze },
	"tone":          func(c *shadergen.Config) *bool { return &c.Master.Tone },
	"curves":        func(c *shadergen.Config) *bool { return &c.Master.Curves },
	"hsl":           func(c *shadergen.Config) *bool { return &c.Master.HSL },
	"color":         func(c *shadergen.Config) *bool { return &c.Master.Color },
	"grading":       func(c *shadergen.Config) *bool { return &c.Master.ColorGrading },
	"locals":        func(c *shadergen.Config) *bool { return &c.Master.Locals },
	"tone-response": func(c *shadergen.Config) *bool { return &c.Film.ToneResponse },
	"matrix":        func(c *shadergen.Config) *bool { return &c.Film.ColorMatrix },
	"lut":           func(c *shadergen.Config) *bool { return &c.Film.LUT },
	"cast":          func(c *shadergen.Config) *bool { return &c.Film.ColorCast },
	"grain":         func(c *shadergen.Config) *bool { return &c.Film.Grain },
	"vignette":      func(c *shadergen.Config) *bool { return &c.Film.Vignette },
	"halation":      func(c *shadergen.Config) *bool { return &c.Film.Halation },
	"bloom":         func(c *shadergen.Config) *bool { return &c.Film.Bloom },
}

func featureNames() string {
	names := make([]string, 0, len(toggles))
	for n := range toggles {
		names = append(names, n)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

func main() {
	var (
		out      = pflag.StringP("out", "o", "shaders", "output directory")
		disable  = pflag.StringSlice("disable", nil, "features to disable: "+featureNames())
		check    = pflag.Bool("check", false, "compare with the files on disk instead of writing")
		validate = pflag.Bool("validate", true, "compile every program before writing")
	)
	pflag.Parse()

	cfg := shadergen.AllFeatures()
	for _, name := range *disable {
		f, ok := toggles[strings.TrimSpace(name)]
		if !ok {
			log.Fatalf("unknown feature %q (known: %s)", name, featureNames())
		}
		*f(&cfg) = false
	}

	ps, err := shadergen.Generate(cfg)
	if err != nil {
		log.Fatalf("generate: %v", err)
	}
	if *validate {
		if err := ps.ValidateAll(); err != nil {
			log.Fatalf("validate: %v", err)
		}
	}

	if !*check {
		if err := os.MkdirAll(*out, 0o755); err != nil {
			log.Fatalf("create %s: %v", *out, err)
		}
	}
	stale := 0
	for _, p := range ps.All() {
		path := filepath.Join(*out, p.Name+".wgsl")
		if *check {
			have, err := os.ReadFile(path)
			if err != nil || !bytes.Equal(have, []byte(p.Source)) {
				fmt.Printf("stale: %s\n", path)
				stale++
			}
			continue
		}
		if err := os.WriteFile(path, []byte(p.Source), 0o644); err != nil {
			log.Fatalf("write %s: %v", path, err)
		}
		log.Printf("wrote %s (%d bytes, %d uniform bytes)", path, len(p.Source), p.UniformSize())
	}
	if stale > 0 {
		os.Exit(1)
	}
}
