// hordetool is a CLI utility for crowd demo assets: baked animation
// textures, clip manifests and placement lists.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/Faultbox/dwarfhorde/internal/assets"
	"github.com/Faultbox/dwarfhorde/internal/engine/skinning"
	"github.com/Faultbox/dwarfhorde/internal/game/crowd"
	"github.com/Faultbox/dwarfhorde/pkg/formats"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "bake":
		cmdBake(args)
	case "info":
		cmdInfo(args)
	case "placements":
		cmdPlacements(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`hordetool - crowd demo asset utility

Usage:
  hordetool <command> [options]

Commands:
  bake [-texture name] [-manifest name] <dir>     Write the procedural dwarf animations
  info <file.vtfa> [clips.yaml]                   Show an animation texture and its clips
  placements [-n count] [-spacing s] <out.txt>    Write a grid placement list

Examples:
  hordetool bake data
  hordetool info data/dwarf.vtfa data/dwarf.clips.yaml
  hordetool placements -n 10000 -spacing 4 data/Positions.txt`)
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func cmdBake(args []string) {
	fs := flag.NewFlagSet("bake", flag.ExitOnError)
	texture := fs.String("texture", "dwarf.vtfa", "Animation texture file name")
	manifest := fs.String("manifest", "dwarf.clips.yaml", "Clip manifest file name")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: hordetool bake [-texture name] [-manifest name] <dir>")
		os.Exit(1)
	}
	dir := fs.Arg(0)

	skin, err := assets.BakeDwarfAnimations()
	if err != nil {
		fail(err)
	}
	if err := assets.ExportAnimations(dir, *texture, *manifest, skin); err != nil {
		fail(err)
	}

	fmt.Printf("Wrote %s (%d bones x %d rows)\n", filepath.Join(dir, *texture), skin.Texture.Width, skin.Texture.Height)
	fmt.Printf("Wrote %s (%d clips)\n", filepath.Join(dir, *manifest), len(skin.Animations))
}

func cmdInfo(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: hordetool info <file.vtfa> [clips.yaml]")
		os.Exit(1)
	}

	vtfa, err := formats.ParseVTFAFile(args[0])
	if err != nil {
		fail(err)
	}

	fmt.Printf("Texture: %s\n", args[0])
	fmt.Printf("Version: %d\n", vtfa.Version)
	fmt.Printf("Bones:   %d\n", vtfa.Bones)
	fmt.Printf("Rows:    %d\n", vtfa.Rows)
	fmt.Printf("Size:    %.2f KB as RGBA32F\n", float64(len(vtfa.Matrices)*64)/1024)

	if len(args) < 2 {
		return
	}

	clips, err := skinning.LoadManifest(args[1])
	if err != nil {
		fail(err)
	}
	tex, err := assets.TextureFromVTFA(vtfa)
	if err != nil {
		fail(err)
	}
	_, validateErr := skinning.New(tex, clips)

	sorted := make([]*skinning.AnimationClip, 0, len(clips))
	for _, c := range clips {
		sorted = append(sorted, c)
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].StartRow < sorted[j].StartRow
	})

	fmt.Println()
	fmt.Println("Clips:")
	for _, c := range sorted {
		fmt.Printf("  %-10s rows %4d-%-4d %5.1f fps  %v\n", c.Name, c.StartRow, c.EndRow, c.FrameRate, c.Duration)
	}
	if validateErr != nil {
		fmt.Printf("\nNot loadable: %v\n", validateErr)
		os.Exit(1)
	}
}

func cmdPlacements(args []string) {
	fs := flag.NewFlagSet("placements", flag.ExitOnError)
	count := fs.Int("n", 4096, "Number of placements")
	spacing := fs.Float64("spacing", 6, "Grid spacing")
	fs.Parse(args)

	if fs.NArg() < 1 || *count <= 0 {
		fmt.Fprintln(os.Stderr, "Usage: hordetool placements [-n count] [-spacing s] <out.txt>")
		os.Exit(1)
	}

	// Placement files are Z-up; ground point (x, 0, z) is stored as (x, -z, 0).
	grid := crowd.GridPositions(*count, float32(*spacing))
	placements := make([]formats.Placement, len(grid))
	for i, p := range grid {
		placements[i] = formats.TranslationPlacement(p.X, -p.Z, p.Y)
	}

	out := fs.Arg(0)
	if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
		fail(err)
	}
	f, err := os.Create(out)
	if err != nil {
		fail(err)
	}
	if err := formats.WritePlacements(f, placements); err != nil {
		f.Close()
		fail(err)
	}
	if err := f.Close(); err != nil {
		fail(err)
	}

	fmt.Printf("Wrote %d placements to %s\n", len(placements), out)
}
