package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/invopop/jsonschema"

	"github.com/Rushhhy/sim-game/internal/mapdef"
)

func main() {
	var outPath string
	var example string
	flag.StringVar(&outPath, "out", "", "path to write the JSON schema")
	flag.StringVar(&example, "example", "", "optional path to write the default village map")
	flag.Parse()

	if outPath == "" {
		fmt.Fprintln(os.Stderr, "--out is required")
		os.Exit(1)
	}

	if err := writeJSON(outPath, buildSchema()); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write schema: %v\n", err)
		os.Exit(1)
	}
	if example != "" {
		if err := writeJSON(example, mapdef.Village()); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write example map: %v\n", err)
			os.Exit(1)
		}
	}
}

func buildSchema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
	}
	schema := reflector.Reflect(new(mapdef.Document))
	schema.Title = "Village Map"
	schema.Description = "Boundary, overlay and fixed structure layout loaded through MAP_FILE"
	return schema
}

func writeJSON(outPath string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	tmpPath := outPath + ".tmp"
	if err := os.WriteFile(tmpPath, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}

	if err := os.Rename(tmpPath, outPath); err != nil {
		return fmt.Errorf("replace file: %w", err)
	}

	return nil
}
