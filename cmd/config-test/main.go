package main

import (
	"flag"
	"fmt"
	"os"
	"reflect"

	"github.com/chrissnell/powerstats/pkg/config"
)

func main() {
	var (
		yamlFile   = flag.String("yaml", "", "Path to YAML configuration file")
		sqliteFile = flag.String("sqlite", "", "Path to SQLite configuration file")
	)
	flag.Parse()

	if *yamlFile == "" || *sqliteFile == "" {
		fmt.Fprintf(os.Stderr, "Usage: %s -yaml <config.yaml> -sqlite <config.db>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}

	fmt.Println("Configuration Comparison Test")
	fmt.Println("===========================")

	// Load YAML configuration
	fmt.Printf("Loading YAML configuration: %s\n", *yamlFile)
	yamlConfig, err := config.NewYAMLProvider(*yamlFile).LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading YAML config: %v\n", err)
		os.Exit(1)
	}

	// Load SQLite configuration
	fmt.Printf("Loading SQLite configuration: %s\n", *sqliteFile)
	sqliteProvider, err := config.NewSQLiteProvider(*sqliteFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating SQLite provider: %v\n", err)
		os.Exit(1)
	}
	defer sqliteProvider.Close()

	sqliteConfig, err := sqliteProvider.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading SQLite config: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("\nComparison Results:")
	fmt.Println("==================")

	mismatches := compareDataset(yamlConfig.Dataset, sqliteConfig.Dataset)

	fmt.Printf("\nControllers - YAML: %d, SQLite: %d\n", len(yamlConfig.Controllers), len(sqliteConfig.Controllers))
	if len(yamlConfig.Controllers) == len(sqliteConfig.Controllers) {
		fmt.Println("✓ Controller count matches")
		for i, yamlController := range yamlConfig.Controllers {
			if reflect.DeepEqual(yamlController, sqliteConfig.Controllers[i]) {
				fmt.Printf("✓ Controller %s matches\n", yamlController.Type)
			} else {
				fmt.Printf("✗ Controller %s differs\n", yamlController.Type)
				mismatches++
			}
		}
	} else {
		fmt.Println("✗ Controller count mismatch")
		mismatches++
	}

	fmt.Println("\nTest completed!")
	if mismatches > 0 {
		os.Exit(1)
	}
}

func compareDataset(yaml, sqlite config.DatasetData) int {
	fields := []struct {
		name         string
		yaml, sqlite string
	}{
		{"Path", yaml.Path, sqlite.Path},
		{"URL", yaml.URL, sqlite.URL},
		{"Timezone", yaml.Timezone, sqlite.Timezone},
		{"LastUpdateFile", yaml.LastUpdateFile, sqlite.LastUpdateFile},
		{"ReloadInterval", yaml.ReloadInterval, sqlite.ReloadInterval},
	}

	mismatches := 0
	for _, f := range fields {
		if f.yaml != f.sqlite {
			fmt.Printf("✗ Dataset %s: YAML='%s', SQLite='%s'\n", f.name, f.yaml, f.sqlite)
			mismatches++
		}
	}
	if mismatches == 0 {
		fmt.Println("✓ Dataset configuration matches")
	}
	return mismatches
}
