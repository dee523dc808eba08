package main

import (
	"flag"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/tensorplex-labs/pridano/internal/core"
	"github.com/tensorplex-labs/pridano/internal/scoring"
	"github.com/tensorplex-labs/pridano/internal/utils/logger"
)

var seed = flag.Uint64("seed", 42, "placeholder network seed")

// score prints every scorer's verdict for each directory given on the
// command line, typically run directories.
func main() {
	logger.Init()
	defer logger.Sync()

	if flag.NArg() == 0 {
		log.Fatal().Msg("usage: score [--seed N] RUN_DIR...")
	}

	registry := scoring.DefaultRegistry(*seed)
	for _, dir := range flag.Args() {
		files, err := readFileSet(dir)
		if err != nil {
			log.Error().Err(err).Str("dir", dir).Msg("skipping")
			continue
		}

		f := scoring.ExtractFeatures(files)
		evt := log.Info().
			Str("dir", dir).
			Float64("a11y", f.Accessibility).
			Float64("class_density", f.ClassDensity).
			Float64("contrast", f.Contrast)
		for _, name := range registry.Names() {
			s, _ := registry.Get(name)
			evt = evt.Float64(name, s.Score(files))
		}
		evt.Msg("scored")
	}
}

func readFileSet(dir string) (core.FileSet, error) {
	files := core.FileSet{}
	for _, name := range core.RecognizedFiles {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			if name == core.IndexFile {
				return nil, err
			}
			continue
		}
		files[name] = string(data)
	}
	return files, nil
}
