package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gekko3d/autorig"
	"github.com/gekko3d/autorig/preview"
	"github.com/gekko3d/autorig/scene"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run is the whole command; it returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("autorig", flag.ContinueOnError)
	flags.SetOutput(stderr)
	scenePath := flags.String("scene", "", "Path to the scene YAML file")
	rootName := flags.String("root", "", "Name of the root part")
	configFile := flags.String("config", "", "Path to a rig config YAML file")
	outPath := flags.String("out", "", "Write the rig report here (default: stdout)")
	previewPath := flags.String("preview", "", "Render a preview image (.png, .webp or .tga)")
	view := flags.String("view", "front", "Preview view: front, side or top")
	size := flags.Int("size", 0, "Preview size in pixels (default: 512)")
	debug := flags.Bool("debug", false, "Enable debug logging")

	if err := flags.Parse(args); err != nil {
		return 2
	}

	if *scenePath == "" || *rootName == "" {
		fmt.Fprintln(stderr, "Error: -scene and -root are required.")
		flags.Usage()
		return 2
	}

	cfg := autorig.DefaultConfig()
	if *configFile != "" {
		var err error
		cfg, err = autorig.LoadConfig(*configFile)
		if err != nil {
			fmt.Fprintf(stderr, "Error loading config: %v\n", err)
			return 1
		}
	}
	// CLI flags override config file
	if *debug {
		cfg.Debug = true
	}
	// The report may go to stdout, so all logging goes to stderr.
	log := autorig.NewWriterLogger(cfg.LogPrefix, cfg.Debug, stderr, stderr)

	def, err := scene.LoadSceneDef(*scenePath)
	if err != nil {
		fmt.Fprintf(stderr, "Error loading scene: %v\n", err)
		return 1
	}
	s := scene.NewScene()
	if err := scene.LoadScene(s, def, filepath.Dir(*scenePath)); err != nil {
		fmt.Fprintf(stderr, "Error loading scene: %v\n", err)
		return 1
	}
	log.Infof("scene %s: %d part(s)", *scenePath, len(s.Objects()))

	root := s.Object(*rootName)
	if root == nil {
		fmt.Fprintf(stderr, "Error: no part named %q in %s\n", *rootName, *scenePath)
		return 1
	}

	res, err := autorig.NewRigger(s, cfg, log).StartRig(root)
	if err != nil {
		fmt.Fprintf(stderr, "Error rigging: %v\n", err)
		return 1
	}

	if err := writeReport(*outPath, stdout, autorig.NewReport(res, s.Objects())); err != nil {
		fmt.Fprintf(stderr, "Error writing report: %v\n", err)
		return 1
	}

	if *previewPath != "" {
		opts := preview.DefaultOptions()
		v, ok := preview.ParseView(*view)
		if !ok {
			log.Warnf("unknown view %q, using front", *view)
		}
		opts.View = v
		if *size > 0 {
			opts.Size = *size
		}
		img, err := preview.Render(s.Objects(), res.Armature, opts)
		if err != nil {
			fmt.Fprintf(stderr, "Error rendering preview: %v\n", err)
			return 1
		}
		if err := preview.WriteFile(*previewPath, img); err != nil {
			fmt.Fprintf(stderr, "Error writing preview: %v\n", err)
			return 1
		}
		log.Infof("preview: %s", *previewPath)
	}
	return 0
}

// writeReport writes rep to path, or to stdout when path is empty.
func writeReport(path string, stdout io.Writer, rep *autorig.Report) error {
	if path == "" {
		return rep.WriteYAML(stdout)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := rep.WriteYAML(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
