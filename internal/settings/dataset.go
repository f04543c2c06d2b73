// Package settings holds the two configuration layers: the dataset config
// file (HCL, checked into a project) and the per-user session settings
// (YAML, under the user config dir). Session values win over dataset values
// wherever both apply.
package settings

import (
	"fmt"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/trellis-data/trellis/api"
)

// View is a named set of field patterns to render together.
type View struct {
	Name     string
	Patterns []api.Path
}

// Dataset describes one dataset block from the config file.
type Dataset struct {
	Name               string
	Source             string // dataset file path, relative to the config file
	Manifest           string // embedding manifest path, may be empty
	PreferredEmbedding string
	Views              []View
}

// DatasetFile is the decoded dataset config.
type DatasetFile struct {
	Datasets []*Dataset
}

// hclRoot mirrors the top-level structure of a config file for decoding.
type hclRoot struct {
	Datasets []*hclDataset `hcl:"dataset,block"`
}

type hclDataset struct {
	Name               string     `hcl:"name,label"`
	Source             string     `hcl:"source"`
	Manifest           string     `hcl:"manifest,optional"`
	PreferredEmbedding string     `hcl:"preferred_embedding,optional"`
	Views              []*hclView `hcl:"view,block"`
}

type hclView struct {
	Name     string   `hcl:"name,label"`
	Patterns []string `hcl:"patterns"`
}

// LoadDatasetFile parses a trellis.hcl config file.
func LoadDatasetFile(path string) (*DatasetFile, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parse config %s: %w", path, diags)
	}

	var root hclRoot
	diags = gohcl.DecodeBody(hclFile.Body, nil, &root)
	if diags.HasErrors() {
		return nil, fmt.Errorf("decode config %s: %w", path, diags)
	}

	out := &DatasetFile{}
	for _, d := range root.Datasets {
		ds := &Dataset{
			Name:               d.Name,
			Source:             d.Source,
			Manifest:           d.Manifest,
			PreferredEmbedding: d.PreferredEmbedding,
		}
		for _, v := range d.Views {
			view := View{Name: v.Name}
			for _, p := range v.Patterns {
				pat := api.ParsePath(p)
				if err := pat.Validate(); err != nil {
					return nil, fmt.Errorf("config %s: dataset %q view %q pattern %q: %w",
						path, d.Name, v.Name, p, err)
				}
				view.Patterns = append(view.Patterns, pat)
			}
			ds.Views = append(ds.Views, view)
		}
		out.Datasets = append(out.Datasets, ds)
	}
	return out, nil
}

// Dataset returns the named dataset, or the first one when name is empty.
func (f *DatasetFile) Dataset(name string) (*Dataset, error) {
	if len(f.Datasets) == 0 {
		return nil, fmt.Errorf("config declares no datasets")
	}
	if name == "" {
		return f.Datasets[0], nil
	}
	for _, d := range f.Datasets {
		if d.Name == name {
			return d, nil
		}
	}
	return nil, fmt.Errorf("dataset %q not found in config", name)
}

// View returns the named view, or the first one when name is empty, or nil
// when the dataset declares no views.
func (d *Dataset) View(name string) *View {
	if len(d.Views) == 0 {
		return nil
	}
	if name == "" {
		return &d.Views[0]
	}
	for i := range d.Views {
		if d.Views[i].Name == name {
			return &d.Views[i]
		}
	}
	return nil
}
