package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"land_proforma/pkg/core/importer"
)

// ExtractedTable is the JSON structure written per input file.
type ExtractedTable struct {
	Source      string              `json:"source"`
	ExtractedAt time.Time           `json:"extracted_at"`
	Rows        []importer.PriceRow `json:"rows"`
}

func main() {
	dir := flag.String("dir", "", "Directory of exported HTML pricing tables")
	out := flag.String("out", "", "Output directory (default <dir>/extracted)")
	flag.Parse()

	if *dir == "" {
		log.Fatal("Error: -dir is required")
	}
	outDir := *out
	if outDir == "" {
		outDir = filepath.Join(*dir, "extracted")
	}
	os.MkdirAll(outDir, 0755)

	entries, err := os.ReadDir(*dir)
	if err != nil {
		log.Fatalf("Error reading directory: %v", err)
	}

	processed := 0
	for _, entry := range entries {
		name := entry.Name()
		ext := strings.ToLower(filepath.Ext(name))
		if entry.IsDir() || (ext != ".html" && ext != ".htm") {
			continue
		}

		fmt.Printf("\n=== Processing %s ===\n", name)

		// 1. Read
		fmt.Println("Step 1: Reading file...")
		html, err := os.ReadFile(filepath.Join(*dir, name))
		if err != nil {
			log.Printf("Error reading %s: %v\n", name, err)
			continue
		}
		fmt.Printf("HTML size: %d bytes\n", len(html))

		// 2. Parse
		fmt.Println("Step 2: Parsing pricing table...")
		rows, err := importer.ParsePricingTable(string(html))
		if err != nil {
			log.Printf("Parse failed for %s: %v\n", name, err)
			continue
		}
		fmt.Printf("Parsed %d rows\n", len(rows))

		// 3. Save
		extracted := ExtractedTable{
			Source:      name,
			ExtractedAt: time.Now(),
			Rows:        rows,
		}
		jsonData, err := json.MarshalIndent(extracted, "", "  ")
		if err != nil {
			log.Printf("JSON marshal error: %v\n", err)
			continue
		}
		outPath := filepath.Join(outDir, strings.TrimSuffix(name, ext)+".json")
		if err := os.WriteFile(outPath, jsonData, 0644); err != nil {
			log.Printf("Error writing %s: %v\n", outPath, err)
			continue
		}
		fmt.Printf("Saved: %s\n", outPath)
		processed++
	}

	fmt.Printf("\n=== Done (%d tables) ===\n", processed)
}
