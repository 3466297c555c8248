package config_test

import (
	"fmt"
	"log"

	"github.com/ajitpratap0/tsvstore/pkg/config"
)

// ExampleNewLoaderConfig demonstrates the defaults of a new configuration.
func ExampleNewLoaderConfig() {
	cfg := config.NewLoaderConfig()

	fmt.Printf("Max bins: %d\n", cfg.Binning.MaxBins)
	fmt.Printf("Delimiter: %q\n", cfg.Parsing.Delimiter)
	fmt.Printf("Log level: %s\n", cfg.Observability.LogLevel)

	// Output:
	// Max bins: 256
	// Delimiter: "\t"
	// Log level: info
}

// ExampleLoaderConfig_Validate shows how to validate a configuration
// before starting a load.
func ExampleLoaderConfig_Validate() {
	cfg := config.NewLoaderConfig()
	cfg.HeaderFile = "header.tsv"
	cfg.DataFiles = []string{"part-0.tsv", "part-1.tsv"}
	cfg.Columns.BinnedFloat = []string{"a"}
	cfg.Columns.RawFloat = []string{"c"}
	cfg.Columns.String = []string{"b"}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	fmt.Println("Configuration is valid!")

	// Output:
	// Configuration is valid!
}

// ExampleColumnsConfig_Validate shows duplicate detection across lists.
func ExampleColumnsConfig_Validate() {
	cols := config.ColumnsConfig{
		BinnedFloat: []string{"age"},
		RawFloat:    []string{"age"},
	}

	fmt.Println(cols.Validate())

	// Output:
	// validation: column declared more than once
}
