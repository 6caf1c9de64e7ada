// Command schema-generator writes the JSON Schema for justrun.yml so editors
// can validate and complete configuration files.
package main

import (
	"flag"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/grovetools/justrun/config"
)

func main() {
	output := flag.String("o", "schema/justrun.schema.json", "Output file")
	flag.Parse()

	log := logrus.WithField("component", "schema-generator")

	schemaBytes, err := config.GenerateSchema()
	if err != nil {
		log.WithError(err).Fatal("Error generating schema")
	}

	if err := os.MkdirAll(filepath.Dir(*output), 0755); err != nil {
		log.WithError(err).Fatal("Error creating schema directory")
	}
	if err := os.WriteFile(*output, append(schemaBytes, '\n'), 0644); err != nil {
		log.WithError(err).Fatal("Error writing schema file")
	}

	log.WithField("path", *output).Info("Generated configuration schema")
}
