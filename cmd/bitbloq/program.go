package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Bitbloq/bitbloq/bloqs"
)

var cmdProgram = &cobra.Command{
	Use:   "program <bundle.json> [output.ino]",
	Short: "compile a block program to arduino code",
	Long:  "reads a bundle with hardware, bloq types and a program and emits the generated arduino source",
	Args:  cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		outputPath := ""
		if len(args) == 2 {
			outputPath = args[1]
		}
		if err := compileProgram(args[0], outputPath); err != nil {
			log.Error(err.Error())
			os.Exit(1)
		}
	},
}

func compileProgram(inputPath, outputPath string) error {
	raw, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("read bundle: %s", err.Error())
	}

	var bundle bloqs.Bundle
	if err := json.Unmarshal(raw, &bundle); err != nil {
		return fmt.Errorf("parse bundle: %s", err.Error())
	}

	code, err := bloqs.CompileBundle(&bundle)
	if err != nil {
		return fmt.Errorf("compile program: %s", err.Error())
	}

	source := renderSource(code)
	if outputPath == "" {
		fmt.Print(source)
		return nil
	}
	if err := os.WriteFile(outputPath, []byte(source), 0644); err != nil {
		return fmt.Errorf("write output: %s", err.Error())
	}
	return nil
}

func renderSource(code *bloqs.ArduinoCode) string {
	var b strings.Builder
	writeSection := func(lines []string) {
		for _, line := range lines {
			b.WriteString(line)
			if !strings.HasSuffix(line, "\n") {
				b.WriteString("\n")
			}
		}
		b.WriteString("\n")
	}
	writeSection(code.Globals)
	writeSection(code.Definitions)
	b.WriteString("void setup() {\n")
	for _, line := range code.Setup {
		b.WriteString("\t" + line + "\n")
	}
	b.WriteString("}\n\nvoid loop() {\n")
	for _, line := range code.Loop {
		b.WriteString("\t" + line + "\n")
	}
	b.WriteString("}\n")
	return b.String()
}
