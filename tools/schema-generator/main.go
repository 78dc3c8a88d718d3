package main

import (
	"encoding/json"
	"log"
	"os"

	"github.com/invopop/jsonschema"

	"github.com/grovetools/meetinglogs/config"
	"github.com/grovetools/meetinglogs/internal/segment"
)

func write(path string, schema *jsonschema.Schema) {
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		log.Fatalf("Error marshaling schema: %v", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		log.Fatalf("Error writing schema file: %v", err)
	}
	log.Printf("Successfully generated schema at %s", path)
}

func main() {
	r := &jsonschema.Reflector{
		AllowAdditionalProperties: true,
		ExpandedStruct:            true,
		FieldNameTag:              "yaml",
	}

	schema := r.Reflect(&config.Config{})
	schema.Title = "Meeting Logs (mlogs) Configuration"
	schema.Description = "Schema for the mlogs config.yaml or config.toml file."
	write("mlogs.schema.json", schema)

	// segments.json is a plain array of records.
	records := (&jsonschema.Reflector{}).Reflect(&[]segment.Record{})
	records.Title = "Meeting Logs segment listing"
	records.Description = "Schema for the segments.json file written next to each merged transcript."
	write("segments.schema.json", records)
}
