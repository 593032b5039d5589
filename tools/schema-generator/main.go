package main

import (
	"encoding/json"
	"log"
	"os"

	"github.com/mattsolo1/grove-sync/pkg/config"
)

func main() {
	data, err := json.MarshalIndent(config.Schema(), "", "  ")
	if err != nil {
		log.Fatalf("Error marshaling schema: %v", err)
	}

	// Write to the package root
	if err := os.WriteFile("grove-sync.schema.json", data, 0644); err != nil {
		log.Fatalf("Error writing schema file: %v", err)
	}

	log.Printf("Successfully generated config schema at grove-sync.schema.json")
}
