// Command lodis-gc sweeps tracked collections matching a glob pattern
// and removes them, the way the teacher's cmd/bulk-delete walks a
// channel ID range and deletes each one, logging progress per item.
// Unlike bulk-delete it operates through internal/registry rather than
// a fixed ID range, since lodis collections are named, not numbered.
package main

import (
	"fmt"
	"os"
	"path"
	"time"

	flag "github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/edirooss/lodis/internal/arraymap"
	"github.com/edirooss/lodis/internal/codec"
	"github.com/edirooss/lodis/internal/hmap"
	"github.com/edirooss/lodis/internal/list"
	"github.com/edirooss/lodis/internal/registry"
	"github.com/edirooss/lodis/internal/store"
	"github.com/edirooss/lodis/internal/store/badgerstore"
	"github.com/edirooss/lodis/pkg/fmtt"
)

func main() {
	fs := flag.NewFlagSet("lodis-gc", flag.ContinueOnError)
	dataDir := fs.String("data-dir", "./data", "badger data directory")
	pattern := fs.String("pattern", "*", "glob pattern matched against collection names")
	kind := fs.String("type", "all", "collection type to sweep: list, map, arraymap, or all")
	dryRun := fs.Bool("dry-run", false, "list matching collections without deleting them")
	debug := fs.Bool("debug", false, "print the full error chain on remove failure")
	if err := fs.Parse(os.Args[1:]); err != nil {
		os.Exit(2)
	}

	log := buildLogger()
	log = log.Named("main")

	db, err := badgerstore.Open(badgerstore.Options{Dir: *dataDir}, log)
	if err != nil {
		log.Fatal("store open failed", zap.Error(err))
	}
	defer db.Close()

	reg := registry.Open(db)

	flags, err := typeFlags(*kind)
	if err != nil {
		log.Fatal("invalid -type", zap.Error(err))
	}

	var swept int
	for _, tf := range flags {
		entries, err := reg.Glob(tf, *pattern, path.Match)
		if err != nil {
			log.Fatal("registry scan failed", zap.Error(err))
		}
		for _, e := range entries {
			start := time.Now()
			if *dryRun {
				log.Info("would remove",
					zap.String("name", string(e.Name)),
					zap.Time("created", e.Created),
				)
				continue
			}
			if err := removeOne(db, tf, e.Name); err != nil {
				if *debug {
					fmtt.PrintErrChain(err)
				}
				log.Fatal("remove failed", zap.String("name", string(e.Name)), zap.Error(err))
			}
			if err := reg.Untrack(tf, e.Name); err != nil {
				log.Fatal("untrack failed", zap.String("name", string(e.Name)), zap.Error(err))
			}
			swept++
			log.Info("removed",
				zap.String("name", string(e.Name)),
				zap.Duration("took", time.Since(start)),
			)
		}
	}

	log.Info("gc complete", zap.Int("swept", swept), zap.Bool("dry_run", *dryRun))
}

func typeFlags(kind string) ([]byte, error) {
	switch kind {
	case "list":
		return []byte{codec.TypeList}, nil
	case "map":
		return []byte{codec.TypeMap}, nil
	case "arraymap":
		return []byte{codec.TypeArrayMap}, nil
	case "all":
		return []byte{codec.TypeList, codec.TypeMap, codec.TypeArrayMap}, nil
	default:
		return nil, fmt.Errorf("unknown type %q", kind)
	}
}

func removeOne(s store.Store, typeFlag byte, name []byte) error {
	switch typeFlag {
	case codec.TypeList:
		return list.Open(s, name).Remove()
	case codec.TypeMap:
		return hmap.Open(s, name).Remove()
	default:
		return arraymap.Open(s, name).Remove()
	}
}

func buildLogger() *zap.Logger {
	logConfig := zap.NewDevelopmentConfig()
	logConfig.EncoderConfig.TimeKey = ""
	logConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	logConfig.DisableStacktrace = true
	logConfig.DisableCaller = true
	logConfig.Level.SetLevel(zap.DebugLevel)
	return zap.Must(logConfig.Build())
}
