package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"

	"github.com/trellis-data/trellis/api"
	"github.com/trellis-data/trellis/internal/cache"
	"github.com/trellis-data/trellis/internal/manifest"
	"github.com/trellis-data/trellis/internal/schema"
	"github.com/trellis-data/trellis/internal/settings"
	"github.com/trellis-data/trellis/internal/source"
	"github.com/trellis-data/trellis/internal/tasks"
)

// runContext bundles everything a command needs for one dataset.
type runContext struct {
	Dataset  *settings.Dataset
	Session  *settings.Session
	Source   source.Source
	Schema   *schema.Schema
	Manifest *manifest.Manifest
	Tasks    *tasks.Manager
	BaseDir  string
}

// loadRun resolves the dataset (config block or --source override), loads
// its rows, and infers or restores the schema.
func loadRun(withSchema bool) (*runContext, error) {
	mgr := tasks.NewManager()

	ds, baseDir, err := resolveDataset()
	if err != nil {
		return nil, err
	}

	session, sessionPath, err := settings.LoadDefaultSession()
	if err != nil {
		return nil, fmt.Errorf("load session settings: %w", err)
	}
	logger.Debug("session settings loaded", "path", sessionPath)

	fs := osfs.New(baseDir)

	loadID := mgr.Start("load "+ds.Source, tasks.TypeDatasetLoad, "", 0)
	src, err := source.Open(fs, ds.Source)
	if err != nil {
		mgr.SetError(loadID, err)
		return nil, err
	}
	mgr.Report(loadID, src.NumRows())
	mgr.SetCompleted(loadID)
	logger.Info("dataset loaded", "dataset", ds.Name, "rows", src.NumRows())

	rc := &runContext{
		Dataset: ds,
		Session: session,
		Source:  src,
		Tasks:   mgr,
		BaseDir: baseDir,
	}

	if withSchema {
		rc.Schema, err = loadSchema(rc)
		if err != nil {
			return nil, err
		}
	}

	if ds.Manifest != "" {
		rc.Manifest, err = manifest.Load(fs, ds.Manifest)
		if err != nil {
			return nil, err
		}
	}
	return rc, nil
}

// resolveDataset picks the dataset block from the config file, or
// synthesizes one from --source.
func resolveDataset() (*settings.Dataset, string, error) {
	if sourcePath != "" {
		abs, err := filepath.Abs(sourcePath)
		if err != nil {
			return nil, "", err
		}
		name := strings.TrimSuffix(filepath.Base(abs), filepath.Ext(abs))
		return &settings.Dataset{Name: name, Source: filepath.Base(abs)}, filepath.Dir(abs), nil
	}

	file, err := settings.LoadDatasetFile(cfgPath)
	if err != nil {
		return nil, "", err
	}
	ds, err := file.Dataset(datasetName)
	if err != nil {
		return nil, "", err
	}
	abs, err := filepath.Abs(cfgPath)
	if err != nil {
		return nil, "", err
	}
	return ds, filepath.Dir(abs), nil
}

// loadSchema restores the schema from the sidecar cache when the dataset
// file is unchanged, inferring and caching otherwise.
func loadSchema(rc *runContext) (*schema.Schema, error) {
	srcPath := filepath.Join(rc.BaseDir, rc.Dataset.Source)
	info, err := os.Stat(srcPath)
	if err != nil {
		return nil, fmt.Errorf("stat dataset %s: %w", srcPath, err)
	}
	size, mtime := info.Size(), info.ModTime().Unix()

	sidecar, err := cache.Open(filepath.Join(rc.BaseDir, ".trellis.cache.db"))
	if err != nil {
		// The cache is an optimization; fall through to plain inference.
		logger.Warn("schema cache unavailable", "error", err)
		return inferSchema(rc)
	}
	defer func() { _ = sidecar.Close() }() // safe to ignore

	if s, ok, err := sidecar.Get(rc.Dataset.Source, size, mtime); err != nil {
		logger.Warn("schema cache read failed", "error", err)
	} else if ok {
		logger.Debug("schema restored from cache", "dataset", rc.Dataset.Name)
		return s, nil
	}

	s, err := inferSchema(rc)
	if err != nil {
		return nil, err
	}
	if err := sidecar.Put(rc.Dataset.Source, size, mtime, s); err != nil {
		logger.Warn("schema cache write failed", "error", err)
	}
	return s, nil
}

func inferSchema(rc *runContext) (*schema.Schema, error) {
	id := rc.Tasks.Start("infer schema", tasks.TypeSchemaInfer, rc.Dataset.Name, rc.Source.NumRows())
	rows := make([]*api.Value, 0, rc.Source.NumRows())
	for i := 0; i < rc.Source.NumRows(); i++ {
		row, err := rc.Source.Row(i)
		if err != nil {
			rc.Tasks.SetError(id, err)
			return nil, err
		}
		rows = append(rows, row)
		rc.Tasks.Report(id, i+1)
	}
	s := schema.Infer(rows, schema.DefaultInferConfig())
	rc.Tasks.SetCompleted(id)
	if t, ok := rc.Tasks.Get(id); ok {
		logger.Info("schema inferred", "dataset", rc.Dataset.Name, "status", string(t.Status), "message", t.Message)
	}
	return s, nil
}

// patternsFor decides what to render: explicit --pattern flags, then the
// chosen view, then every leaf the schema declares.
func patternsFor(rc *runContext, viewName string, patternFlags []string) ([]api.Path, error) {
	if len(patternFlags) > 0 {
		out := make([]api.Path, 0, len(patternFlags))
		for _, p := range patternFlags {
			pat := api.ParsePath(p)
			if err := pat.Validate(); err != nil {
				return nil, fmt.Errorf("pattern %q: %w", p, err)
			}
			out = append(out, pat)
		}
		return out, nil
	}

	if viewName == "" {
		viewName = rc.Session.ViewFor(rc.Dataset.Name)
	}
	if v := rc.Dataset.View(viewName); v != nil {
		return v.Patterns, nil
	}

	if rc.Schema == nil {
		return nil, fmt.Errorf("no patterns given and no schema available")
	}
	leafs := rc.Schema.Leafs()
	out := make([]api.Path, 0, len(leafs))
	for _, l := range leafs {
		out = append(out, l.Path)
	}
	return out, nil
}
