// Package tsvstore loads tab-separated data files into an in-memory columnar
// store. Numeric columns are either quantile-binned into compact codes or kept
// as raw float32 values; string columns are dictionary encoded.
//
// # Architecture
//
// A load runs in three phases:
//
// 1. Parse: data files are parsed in parallel into row blocks by a bounded
// worker pool (pkg/workerpool, pkg/tsv).
//
// 2. Fan-out: blocks are handed to the columns strictly in data-file order
// through a reorder buffer (pkg/ordered). Each block is split across the
// columns in parallel, one task per column.
//
// 3. Finalize: every column computes its bins or dictionary once all rows have
// arrived, and the finalized columns are assembled into a columnar.Store.
//
// # Quick Start
//
// Load three columns from a set of files:
//
//	import (
//	    "context"
//	    "github.com/ajitpratap0/tsvstore/internal/pipeline"
//	    "github.com/ajitpratap0/tsvstore/pkg/config"
//	)
//
//	cfg := config.NewLoaderConfig()
//	cfg.HeaderFile = "header.tsv"
//	cfg.DataFiles = []string{"part-0000.tsv", "part-0001.tsv"}
//	cfg.Columns.BinnedFloat = []string{"price"}
//	cfg.Columns.String = []string{"country"}
//
//	p, _ := pipeline.New(pipeline.ConfigFromLoader(cfg))
//	store, err := p.Load(context.Background(), pipeline.RequestFromLoader(cfg))
//
// # Key Packages
//
//	internal/pipeline - Load orchestration
//	pkg/catalog       - Header resolution and column construction
//	pkg/columnar      - Column implementations and the assembled store
//	pkg/tsv           - Block parser with compression detection
//	pkg/ordered       - In-order delivery of out-of-order results
//	pkg/workerpool    - Bounded task execution
//	pkg/staging       - Download of s3:// and gs:// inputs
//	pkg/config        - YAML configuration with ${VAR} substitution
//	pkg/storeerrors   - Structured error handling
//	pkg/logger        - Structured logging
//	pkg/metrics       - Prometheus collectors
//
// # Command Line
//
//	tsvstore init-config load.yaml
//	tsvstore load -c load.yaml --summary-json
//	tsvstore header header.tsv
package tsvstore
