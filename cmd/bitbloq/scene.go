package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Bitbloq/bitbloq/geometry"
	"github.com/Bitbloq/bitbloq/scene"
	"github.com/Bitbloq/bitbloq/solver"
)

var sceneWorkerAddress string

var cmdScene = &cobra.Command{
	Use:   "scene <scene.json> <output.stl>",
	Short: "export a scene to binary STL",
	Long:  "reads a scene description, resolves constructive solid geometry and writes the result as binary STL",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		if err := exportScene(args[0], args[1]); err != nil {
			log.Error(err.Error())
			os.Exit(1)
		}
	},
}

func init() {
	cmdScene.Flags().StringVar(
		&sceneWorkerAddress, "worker", "",
		"address of a remote csg worker, host:port; empty runs csg in-process",
	)
}

func exportScene(inputPath, outputPath string) error {
	raw, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("read scene: %s", err.Error())
	}

	var sceneJSON scene.SceneJSON
	if err := json.Unmarshal(raw, &sceneJSON); err != nil {
		return fmt.Errorf("parse scene: %s", err.Error())
	}

	ctx := context.Background()

	csgSolver, err := openSolver(ctx)
	if err != nil {
		return err
	}
	defer csgSolver.Close()

	s, err := scene.NewFromJSON(sceneJSON, csgSolver)
	if err != nil {
		return fmt.Errorf("build scene: %s", err.Error())
	}

	items, err := s.Objects(ctx)
	if err != nil {
		return fmt.Errorf("resolve scene: %s", err.Error())
	}

	meshes := make([]*geometry.Mesh, 0, len(items))
	for _, item := range items {
		if !item.Object.ViewOptions.Visible {
			continue
		}
		meshes = append(meshes, item.Mesh)
	}
	merged := geometry.Merge(meshes...)
	log.Infof("Resolved %d objects, %d triangles", len(items), merged.TriangleCount())

	out, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create output: %s", err.Error())
	}
	defer out.Close()

	if err := geometry.WriteSTL(out, merged); err != nil {
		return fmt.Errorf("write stl: %s", err.Error())
	}
	return nil
}

func openSolver(ctx context.Context) (solver.Solver, error) {
	if sceneWorkerAddress == "" {
		return solver.NewLocalSolver(), nil
	}
	log.Infof("Connecting to csg worker %s", sceneWorkerAddress)
	remote, err := solver.Dial(ctx, sceneWorkerAddress)
	if err != nil {
		return nil, fmt.Errorf("connect worker: %s", err.Error())
	}
	return remote, nil
}
